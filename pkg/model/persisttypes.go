// Package model contains the general data models and interfaces for the registry.
package model // import "github.com/joincivil/civil-tcr-registry/pkg/model"

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrPersisterNoResults is returned when a query returns nothing
	ErrPersisterNoResults = errors.New("No results from persister")
)

// StateUpdate is a set of records changed together by a single registry
// operation. Nil fields are left untouched. Persisters must apply an update
// atomically.
type StateUpdate struct {
	Listing   *Listing
	Challenge *Challenge
	Vote      *Vote
}

// ListingPersister is the interface to store listing data
type ListingPersister interface {
	// ListingByKey retrieves a listing by key
	ListingByKey(key common.Hash) (*Listing, error)
	// ListingsByStatus retrieves all listings with the given status
	ListingsByStatus(status ListingStatus) ([]*Listing, error)
}

// ChallengePersister is the interface to store challenge data
type ChallengePersister interface {
	// ChallengeByID retrieves a challenge by id
	ChallengeByID(id uint64) (*Challenge, error)
	// MaxChallengeID returns the highest challenge id stored, 0 if none
	MaxChallengeID() (uint64, error)
}

// VotePersister is the interface to store vote data
type VotePersister interface {
	// VoteByVoter retrieves the vote of voter on the challenge
	VoteByVoter(challengeID uint64, voter common.Address) (*Vote, error)
	// VotesByChallengeID retrieves all votes on the challenge
	VotesByChallengeID(challengeID uint64) ([]*Vote, error)
}

// GovernanceEventPersister is the interface to store governance events
type GovernanceEventPersister interface {
	// CreateGovernanceEvent stores a new governance event
	CreateGovernanceEvent(govEvent *GovernanceEvent) error
	// GovernanceEventsByListingKey retrieves the events for a listing in order
	GovernanceEventsByListingKey(key common.Hash) ([]*GovernanceEvent, error)
}

// RegistryPersister is the full storage interface used by the registry
type RegistryPersister interface {
	ListingPersister
	ChallengePersister
	VotePersister
	// ApplyUpdate stores all records in the update atomically
	ApplyUpdate(update *StateUpdate) error
}
