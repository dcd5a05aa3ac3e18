// Package model contains the general data models and interfaces for the registry.
package model // import "github.com/joincivil/civil-tcr-registry/pkg/model"

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ListingStatus specifies the current state of a listing
type ListingStatus int

const (
	// ListingStatusNone is the zero value, never stored
	ListingStatusNone ListingStatus = iota
	// ListingStatusApplied is a listing in or past its apply stage, unchallenged
	ListingStatusApplied
	// ListingStatusWhitelisted is a listing on the registry
	ListingStatusWhitelisted
	// ListingStatusChallenged is a listing with an open challenge
	ListingStatusChallenged
	// ListingStatusRejected is a listing removed by a successful challenge
	ListingStatusRejected
	// ListingStatusRemoved is a listing withdrawn by its owner
	ListingStatusRemoved
)

var listingStatusNames = map[ListingStatus]string{
	ListingStatusNone:        "none",
	ListingStatusApplied:     "applied",
	ListingStatusWhitelisted: "whitelisted",
	ListingStatusChallenged:  "challenged",
	ListingStatusRejected:    "rejected",
	ListingStatusRemoved:     "removed",
}

// String returns the name of the status
func (s ListingStatus) String() string {
	name, ok := listingStatusNames[s]
	if !ok {
		return "unknown"
	}
	return name
}

// IsTerminal returns true if the listing no longer holds a deposit and its key
// may be proposed again
func (s ListingStatus) IsTerminal() bool {
	return s == ListingStatusRejected || s == ListingStatusRemoved || s == ListingStatusNone
}

// ListingKeyFromName returns the bytes32 key for a listing name. Names up to 32
// bytes are right padded with zeros, longer names are hashed.
func ListingKeyFromName(name string) common.Hash {
	if len(name) > common.HashLength {
		return crypto.Keccak256Hash([]byte(name))
	}
	key := common.Hash{}
	copy(key[:], name)
	return key
}

// NewListingParams are the params used to create a new Listing
type NewListingParams struct {
	Key           common.Hash
	Name          string
	Owner         common.Address
	Deposit       *big.Int
	Whitelisted   bool
	Status        ListingStatus
	ChallengeID   uint64
	AppliedAt     int64
	LastUpdatedAt int64
}

// NewListing is a convenience function to initialize a new Listing struct
func NewListing(params *NewListingParams) *Listing {
	deposit := new(big.Int)
	if params.Deposit != nil {
		deposit.Set(params.Deposit)
	}
	return &Listing{
		key:           params.Key,
		name:          params.Name,
		owner:         params.Owner,
		deposit:       deposit,
		whitelisted:   params.Whitelisted,
		status:        params.Status,
		challengeID:   params.ChallengeID,
		appliedAt:     params.AppliedAt,
		lastUpdatedAt: params.LastUpdatedAt,
	}
}

// Listing represents an entry in the registry
type Listing struct {
	key common.Hash

	name string

	owner common.Address

	deposit *big.Int

	whitelisted bool

	status ListingStatus

	challengeID uint64

	appliedAt int64

	lastUpdatedAt int64
}

// Key returns the listing key
func (l *Listing) Key() common.Hash {
	return l.key
}

// Name returns the name the listing was proposed with
func (l *Listing) Name() string {
	return l.name
}

// Owner returns the address of the proposer
func (l *Listing) Owner() common.Address {
	return l.owner
}

// Deposit returns the deposit currently staked behind the listing
func (l *Listing) Deposit() *big.Int {
	return l.deposit
}

// SetDeposit sets the staked deposit
func (l *Listing) SetDeposit(deposit *big.Int) {
	l.deposit = new(big.Int).Set(deposit)
}

// Whitelisted returns a bool to indicate if the listing is on the registry.
// A whitelisted listing stays whitelisted while it is being challenged.
func (l *Listing) Whitelisted() bool {
	return l.whitelisted
}

// SetWhitelisted sets the whitelisted flag
func (l *Listing) SetWhitelisted(whitelisted bool) {
	l.whitelisted = whitelisted
}

// Status returns the current status of the listing
func (l *Listing) Status() ListingStatus {
	return l.status
}

// SetStatus sets the status of the listing
func (l *Listing) SetStatus(status ListingStatus) {
	l.status = status
}

// ChallengeID returns the id of the open or most recent challenge, 0 if the
// listing was never challenged
func (l *Listing) ChallengeID() uint64 {
	return l.challengeID
}

// SetChallengeID sets the challenge id
func (l *Listing) SetChallengeID(id uint64) {
	l.challengeID = id
}

// AppliedAt returns the timestamp of the application
func (l *Listing) AppliedAt() int64 {
	return l.appliedAt
}

// LastUpdatedAt returns the timestamp of the last state change
func (l *Listing) LastUpdatedAt() int64 {
	return l.lastUpdatedAt
}

// SetLastUpdatedAt sets the timestamp of the last state change
func (l *Listing) SetLastUpdatedAt(ts int64) {
	l.lastUpdatedAt = ts
}

// ApplyStageEnded returns true if the apply stage of given length elapsed at now
func (l *Listing) ApplyStageEnded(applyStageLength int64, now int64) bool {
	return now >= l.appliedAt+applyStageLength
}

// Copy returns a deep copy of the listing
func (l *Listing) Copy() *Listing {
	c := *l
	c.deposit = new(big.Int).Set(l.deposit)
	return &c
}
