// Package model contains the general data models and interfaces for the registry.
package model // import "github.com/joincivil/civil-tcr-registry/pkg/model"

import (
	"github.com/ethereum/go-ethereum/common"
)

// Event type names emitted by the registry
const (
	EventTypeApplication            = "Application"
	EventTypeApplicationWhitelisted = "ApplicationWhitelisted"
	EventTypeChallenge              = "Challenge"
	EventTypeVote                   = "Vote"
	EventTypeResolveChallenge       = "ResolveChallenge"
	EventTypeRewardClaimed          = "RewardClaimed"
	EventTypeListingWithdrawn       = "ListingWithdrawn"
)

// Metadata represents the payload associated with a governance event
type Metadata map[string]interface{}

// NewGovernanceEvent is a convenience function to init a new GovernanceEvent
// struct
func NewGovernanceEvent(eventType string, listingKey common.Hash, challengeID uint64,
	senderAddr common.Address, metadata Metadata, timestamp int64) *GovernanceEvent {
	return &GovernanceEvent{
		governanceEventType: eventType,
		listingKey:          listingKey,
		challengeID:         challengeID,
		senderAddress:       senderAddr,
		metadata:            metadata,
		timestamp:           timestamp,
	}
}

// GovernanceEvent represents a single state change made by the registry. Meant
// to be a central log of these events for audit and for observers.
type GovernanceEvent struct {
	governanceEventType string

	listingKey common.Hash

	challengeID uint64

	senderAddress common.Address

	metadata Metadata

	timestamp int64
}

// GovernanceEventType returns the type of this event
func (g *GovernanceEvent) GovernanceEventType() string {
	return g.governanceEventType
}

// ListingKey returns the listing key associated with this event
func (g *GovernanceEvent) ListingKey() common.Hash {
	return g.listingKey
}

// ChallengeID returns the challenge id associated with this event, 0 if none
func (g *GovernanceEvent) ChallengeID() uint64 {
	return g.challengeID
}

// SenderAddress returns the address that initiated this event. Empty for
// events triggered by anyone, like resolution.
func (g *GovernanceEvent) SenderAddress() common.Address {
	return g.senderAddress
}

// Metadata returns the Metadata associated with the event
func (g *GovernanceEvent) Metadata() Metadata {
	return g.metadata
}

// Timestamp is the registry time at which the event was emitted
func (g *GovernanceEvent) Timestamp() int64 {
	return g.timestamp
}
