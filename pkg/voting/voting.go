// Package voting contains the tally and resolution rules for challenges
package voting // import "github.com/joincivil/civil-tcr-registry/pkg/voting"

import (
	"math/big"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	// NoVotesDefault is the outcome of a challenge nobody voted on. The status
	// quo is kept.
	NoVotesDefault = model.OutcomeKeep

	// TiesFavor is the outcome when both sides hold equal non zero weight. The
	// listing has to justify continued inclusion, so the challenger wins.
	TiesFavor = model.OutcomeRemove
)

// NewTally returns a tally seeded with the current weights of a challenge
func NewTally(keep *big.Int, remove *big.Int) *Tally {
	t := &Tally{}
	if keep != nil {
		t.keep.Set(keep)
	}
	if remove != nil {
		t.remove.Set(remove)
	}
	return t
}

// Tally is a running sum of weight per direction
type Tally struct {
	keep   big.Int
	remove big.Int
}

// Add adds weight to one direction
func (t *Tally) Add(keep bool, weight *big.Int) {
	if keep {
		t.keep.Add(&t.keep, weight)
		return
	}
	t.remove.Add(&t.remove, weight)
}

// Keep returns the keep total
func (t *Tally) Keep() *big.Int {
	return new(big.Int).Set(&t.keep)
}

// Remove returns the remove total
func (t *Tally) Remove() *big.Int {
	return new(big.Int).Set(&t.remove)
}

// Outcome resolves the tally
func (t *Tally) Outcome() model.Outcome {
	return Resolve(&t.keep, &t.remove)
}

// Resolve returns the outcome for the given weights. Keep wins only on a strict
// majority, ties go to TiesFavor, and no votes at all go to NoVotesDefault.
func Resolve(keep *big.Int, remove *big.Int) model.Outcome {
	if keep.Sign() == 0 && remove.Sign() == 0 {
		return NoVotesDefault
	}
	switch keep.Cmp(remove) {
	case 1:
		return model.OutcomeKeep
	case 0:
		return TiesFavor
	}
	return model.OutcomeRemove
}

// CommitOpen returns true while votes are accepted
func CommitOpen(startedAt int64, commitStageLength int64, now int64) bool {
	return now < startedAt+commitStageLength
}

// CommitEnded returns true once the challenge may be resolved
func CommitEnded(startedAt int64, commitStageLength int64, now int64) bool {
	return !CommitOpen(startedAt, commitStageLength, now)
}
