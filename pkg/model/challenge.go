// Package model contains the general data models and interfaces for the registry.
package model // import "github.com/joincivil/civil-tcr-registry/pkg/model"

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Outcome is the result of a resolved challenge
type Outcome int

const (
	// OutcomeNone is the outcome of an unresolved challenge
	OutcomeNone Outcome = iota
	// OutcomeKeep means the listing stays on the registry
	OutcomeKeep
	// OutcomeRemove means the challenger won and the listing is rejected
	OutcomeRemove
)

// String returns the name of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeKeep:
		return "keep"
	case OutcomeRemove:
		return "remove"
	}
	return "none"
}

// Matches returns true if a vote in the given direction agrees with the outcome
func (o Outcome) Matches(keep bool) bool {
	if o == OutcomeKeep {
		return keep
	}
	if o == OutcomeRemove {
		return !keep
	}
	return false
}

// NewChallengeParams are the params used to create a new Challenge
type NewChallengeParams struct {
	ID                uint64
	ListingKey        common.Hash
	Challenger        common.Address
	Deposit           *big.Int
	StartedAt         int64
	CommitStageLength int64
	Resolved          bool
	Outcome           Outcome
	KeepWeight        *big.Int
	RemoveWeight      *big.Int
	RewardPool        *big.Int
	ResolvedAt        int64
}

// NewChallenge is a convenience function to initialize a new Challenge struct
func NewChallenge(params *NewChallengeParams) *Challenge {
	return &Challenge{
		id:                params.ID,
		listingKey:        params.ListingKey,
		challenger:        params.Challenger,
		deposit:           copyOrZero(params.Deposit),
		startedAt:         params.StartedAt,
		commitStageLength: params.CommitStageLength,
		resolved:          params.Resolved,
		outcome:           params.Outcome,
		keepWeight:        copyOrZero(params.KeepWeight),
		removeWeight:      copyOrZero(params.RemoveWeight),
		rewardPool:        copyOrZero(params.RewardPool),
		resolvedAt:        params.ResolvedAt,
	}
}

// Challenge represents a dispute opened against a listing
type Challenge struct {
	id uint64

	listingKey common.Hash

	challenger common.Address

	deposit *big.Int

	startedAt int64

	commitStageLength int64

	resolved bool

	outcome Outcome

	keepWeight *big.Int

	removeWeight *big.Int

	rewardPool *big.Int

	resolvedAt int64
}

// ID returns the challenge ID
func (c *Challenge) ID() uint64 {
	return c.id
}

// ListingKey returns the key of the challenged listing
func (c *Challenge) ListingKey() common.Hash {
	return c.listingKey
}

// Challenger returns the challenger address
func (c *Challenge) Challenger() common.Address {
	return c.challenger
}

// Deposit returns the challenger's deposit
func (c *Challenge) Deposit() *big.Int {
	return c.deposit
}

// StartedAt returns the timestamp the commit stage started
func (c *Challenge) StartedAt() int64 {
	return c.startedAt
}

// CommitStageLength returns the commit stage length snapshotted at creation
func (c *Challenge) CommitStageLength() int64 {
	return c.commitStageLength
}

// CommitEndDate returns the first timestamp at which votes are no longer accepted
func (c *Challenge) CommitEndDate() int64 {
	return c.startedAt + c.commitStageLength
}

// Resolved returns whether this challenge was resolved
func (c *Challenge) Resolved() bool {
	return c.resolved
}

// Outcome returns the outcome, OutcomeNone until resolved
func (c *Challenge) Outcome() Outcome {
	return c.outcome
}

// Resolve marks the challenge resolved with the given outcome and reward pool
func (c *Challenge) Resolve(outcome Outcome, rewardPool *big.Int, ts int64) {
	c.resolved = true
	c.outcome = outcome
	c.rewardPool = new(big.Int).Set(rewardPool)
	c.resolvedAt = ts
}

// KeepWeight returns the total weight voted to keep the listing
func (c *Challenge) KeepWeight() *big.Int {
	return c.keepWeight
}

// RemoveWeight returns the total weight voted to remove the listing
func (c *Challenge) RemoveWeight() *big.Int {
	return c.removeWeight
}

// SetWeights sets both tallies
func (c *Challenge) SetWeights(keep *big.Int, remove *big.Int) {
	c.keepWeight = new(big.Int).Set(keep)
	c.removeWeight = new(big.Int).Set(remove)
}

// WinningWeight returns the total weight on the side of the outcome
func (c *Challenge) WinningWeight() *big.Int {
	switch c.outcome {
	case OutcomeKeep:
		return c.keepWeight
	case OutcomeRemove:
		return c.removeWeight
	}
	return new(big.Int)
}

// RewardPool returns the forfeited deposit distributed to winning voters
func (c *Challenge) RewardPool() *big.Int {
	return c.rewardPool
}

// ResolvedAt returns the timestamp of resolution
func (c *Challenge) ResolvedAt() int64 {
	return c.resolvedAt
}

// Copy returns a deep copy of the challenge
func (c *Challenge) Copy() *Challenge {
	cp := *c
	cp.deposit = new(big.Int).Set(c.deposit)
	cp.keepWeight = new(big.Int).Set(c.keepWeight)
	cp.removeWeight = new(big.Int).Set(c.removeWeight)
	cp.rewardPool = new(big.Int).Set(c.rewardPool)
	return &cp
}

func copyOrZero(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i)
}
