package model_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

func setupSampleChallenge() *model.Challenge {
	return model.NewChallenge(&model.NewChallengeParams{
		ID:                1,
		ListingKey:        model.ListingKeyFromName("test_listing"),
		Challenger:        common.HexToAddress(testOwner),
		Deposit:           big.NewInt(100),
		StartedAt:         1257894000,
		CommitStageLength: 60,
	})
}

func TestOutcomeMatches(t *testing.T) {
	if !model.OutcomeKeep.Matches(true) || model.OutcomeKeep.Matches(false) {
		t.Errorf("Keep should match keep votes only")
	}
	if !model.OutcomeRemove.Matches(false) || model.OutcomeRemove.Matches(true) {
		t.Errorf("Remove should match remove votes only")
	}
	if model.OutcomeNone.Matches(true) || model.OutcomeNone.Matches(false) {
		t.Errorf("No outcome should match nothing")
	}
}

func TestChallengeDefaults(t *testing.T) {
	challenge := setupSampleChallenge()
	if challenge.CommitEndDate() != 1257894060 {
		t.Errorf("Wrong commit end date: %v", challenge.CommitEndDate())
	}
	if challenge.KeepWeight().Sign() != 0 || challenge.RemoveWeight().Sign() != 0 ||
		challenge.RewardPool().Sign() != 0 {
		t.Errorf("Nil amounts should default to zero")
	}
	if challenge.WinningWeight().Sign() != 0 {
		t.Errorf("Unresolved challenge should have no winning weight")
	}
}

func TestChallengeResolve(t *testing.T) {
	challenge := setupSampleChallenge()
	challenge.SetWeights(big.NewInt(10), big.NewInt(5))
	challenge.Resolve(model.OutcomeKeep, big.NewInt(100), 1257894060)
	if !challenge.Resolved() || challenge.Outcome() != model.OutcomeKeep {
		t.Errorf("Challenge should be resolved to keep")
	}
	if challenge.WinningWeight().Int64() != 10 {
		t.Errorf("Winning weight should be the keep weight: %v", challenge.WinningWeight())
	}

	cp := challenge.Copy()
	cp.SetWeights(big.NewInt(1), big.NewInt(1))
	if challenge.KeepWeight().Int64() != 10 {
		t.Errorf("Copy should not share weights")
	}
}

func TestVoteCopy(t *testing.T) {
	vote := model.NewVote(1, common.HexToAddress(testOwner), true, big.NewInt(10), false, 1257894001)
	cp := vote.Copy()
	cp.SetClaimed()
	if vote.Claimed() {
		t.Errorf("Copy should not change the original")
	}
	if !cp.Claimed() || cp.Weight().Int64() != 10 || !cp.Keep() {
		t.Errorf("Copy not correct")
	}
}
