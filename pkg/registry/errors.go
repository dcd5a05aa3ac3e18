package registry // import "github.com/joincivil/civil-tcr-registry/pkg/registry"

import (
	"github.com/pkg/errors"

	"github.com/joincivil/civil-tcr-registry/pkg/ledger"
)

// Errors returned by registry operations. Returned errors may be wrapped with
// context, compare with errors.Cause.
var (
	ErrInsufficientDeposit  = errors.New("insufficient deposit")
	ErrAlreadyExists        = errors.New("listing already exists")
	ErrNotFound             = errors.New("listing does not exist")
	ErrAlreadyChallenged    = errors.New("listing already challenged")
	ErrNoOpenChallenge      = errors.New("no open challenge")
	ErrVotingClosed         = errors.New("voting closed")
	ErrAlreadyVoted         = errors.New("already voted")
	ErrNotReady             = errors.New("not ready to be updated")
	ErrAlreadyResolved      = errors.New("challenge already resolved")
	ErrChallengeNotFound    = errors.New("challenge does not exist")
	ErrChallengeNotResolved = errors.New("challenge not resolved")
	ErrNotAVoter            = errors.New("not a voter on challenge")
	ErrAlreadyClaimed       = errors.New("reward already claimed")
	ErrZeroStake            = errors.New("stake must be positive")
	ErrNotOwner             = errors.New("caller is not the listing owner")
)

var errorKinds = map[error]string{
	ErrInsufficientDeposit:          "insufficient_deposit",
	ErrAlreadyExists:                "already_exists",
	ErrNotFound:                     "not_found",
	ErrAlreadyChallenged:            "already_challenged",
	ErrNoOpenChallenge:              "no_open_challenge",
	ErrVotingClosed:                 "voting_closed",
	ErrAlreadyVoted:                 "already_voted",
	ErrNotReady:                     "not_ready",
	ErrAlreadyResolved:              "already_resolved",
	ErrChallengeNotFound:            "challenge_not_found",
	ErrChallengeNotResolved:         "challenge_not_resolved",
	ErrNotAVoter:                    "not_a_voter",
	ErrAlreadyClaimed:               "already_claimed",
	ErrZeroStake:                    "zero_stake",
	ErrNotOwner:                     "not_owner",
	ledger.ErrInsufficientAllowance: "insufficient_allowance",
	ledger.ErrInsufficientBalance:   "insufficient_balance",
	ledger.ErrInvalidAmount:         "invalid_amount",
}

// ErrorKind returns a short snake case name for err, "ok" for nil and
// "internal" for errors not raised by the registry or the ledger
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	kind, ok := errorKinds[errors.Cause(err)]
	if !ok {
		return "internal"
	}
	return kind
}
