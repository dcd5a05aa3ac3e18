package model // import "github.com/joincivil/civil-tcr-registry/pkg/model"

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NewVote is a convenience function to initialize a new Vote struct
func NewVote(challengeID uint64, voter common.Address, keep bool, weight *big.Int,
	claimed bool, castAt int64) *Vote {
	return &Vote{
		challengeID: challengeID,
		voter:       voter,
		keep:        keep,
		weight:      copyOrZero(weight),
		claimed:     claimed,
		castAt:      castAt,
	}
}

// Vote is the stake a single voter put behind one direction of a challenge
type Vote struct {
	challengeID uint64

	voter common.Address

	keep bool

	weight *big.Int

	claimed bool

	castAt int64
}

// ChallengeID returns the id of the challenge voted on
func (v *Vote) ChallengeID() uint64 {
	return v.challengeID
}

// Voter returns the voter address
func (v *Vote) Voter() common.Address {
	return v.voter
}

// Keep returns true if the vote is to keep the listing
func (v *Vote) Keep() bool {
	return v.keep
}

// Weight returns the staked weight
func (v *Vote) Weight() *big.Int {
	return v.weight
}

// Claimed returns true once the voter has claimed
func (v *Vote) Claimed() bool {
	return v.claimed
}

// SetClaimed marks the vote as claimed
func (v *Vote) SetClaimed() {
	v.claimed = true
}

// CastAt returns the timestamp the vote was cast
func (v *Vote) CastAt() int64 {
	return v.castAt
}

// Copy returns a deep copy of the vote
func (v *Vote) Copy() *Vote {
	c := *v
	c.weight = new(big.Int).Set(v.weight)
	return &c
}
