package registry // import "github.com/joincivil/civil-tcr-registry/pkg/registry"

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/reward"
)

// ClaimRewards settles the vote of caller on a resolved challenge. A winning
// voter gets back their stake plus a share of the reward pool proportional to
// their weight. A losing voter gets nothing and the vote is marked claimed.
// Returns the amount transferred.
func (r *Registry) ClaimRewards(caller common.Address, challengeID uint64,
	now int64) (payout *big.Int, err error) {
	defer observe(opClaimRewards, time.Now(), &err)
	challenge, err := r.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	unlock := r.lock(challenge.ListingKey())
	defer unlock()

	// Re-read under the listing lock
	challenge, err = r.challenge(challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.Resolved() {
		return nil, ErrChallengeNotResolved
	}
	vote, err := r.GetVote(challengeID, caller)
	if err != nil {
		return nil, err
	}
	if vote.Claimed() {
		return nil, ErrAlreadyClaimed
	}

	vote.SetClaimed()
	if !challenge.Outcome().Matches(vote.Keep()) {
		err = r.commit(&model.StateUpdate{Vote: vote}, common.Address{}, nil)
		if err != nil {
			return nil, errors.Wrap(err, "claim")
		}
		log.Infof("Losing vote of %v on challenge %v settled", caller.Hex(), challengeID)
		return new(big.Int), nil
	}

	payout = reward.Payout(challenge.RewardPool(), vote.Weight(), challenge.WinningWeight())
	share := new(big.Int).Sub(payout, vote.Weight())
	err = r.commit(&model.StateUpdate{Vote: vote}, common.Address{}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "claim")
	}
	err = r.push(caller, payout)
	if err != nil {
		return nil, errors.Wrap(err, "claim")
	}
	log.Infof("Reward of %v claimed by %v on challenge %v", payout, caller.Hex(), challengeID)
	r.emit(model.NewGovernanceEvent(model.EventTypeRewardClaimed, challenge.ListingKey(),
		challengeID, caller, model.Metadata{
			"Reward": share,
			"Stake":  new(big.Int).Set(vote.Weight()),
			"Payout": new(big.Int).Set(payout),
		}, now))
	return payout, nil
}
