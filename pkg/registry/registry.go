// Package registry contains the token curated registry state machine. Listings
// are proposed with a deposit, challenged with a matching deposit and kept or
// rejected by stake weighted votes.
package registry // import "github.com/joincivil/civil-tcr-registry/pkg/registry"

import (
	"hash/fnv"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-tcr-registry/pkg/ledger"
	"github.com/joincivil/civil-tcr-registry/pkg/metrics"
	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/voting"
)

// Operation names used for metrics
const (
	opPropose       = "propose"
	opChallenge     = "challenge"
	opVote          = "vote"
	opUpdateStatus  = "update_status"
	opExit          = "exit"
	opClaimRewards  = "claim_rewards"
	opPromoteListed = "promote_elapsed"
)

const (
	lockStripes = 256
)

// NewRegistry returns a new Registry over the persister and stake ledger.
// Challenge ids continue from the highest id in the persister.
func NewRegistry(config *Config, persister model.RegistryPersister,
	stakeLedger ledger.StakeLedger) (*Registry, error) {
	err := config.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid registry config")
	}
	maxID, err := persister.MaxChallengeID()
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving max challenge id")
	}
	r := &Registry{
		config:    config.Copy(),
		persister: persister,
		ledger:    stakeLedger,
	}
	r.lastChallengeID.Store(maxID)
	return r, nil
}

// Registry is the curated list. All mutating operations are serialized per
// listing key, using a fixed set of lock stripes, and take the caller and the
// current time explicitly.
type Registry struct {
	config          *Config
	persister       model.RegistryPersister
	ledger          ledger.StakeLedger
	feed            event.Feed
	locks           [lockStripes]sync.Mutex
	lastChallengeID atomic.Uint64
}

// Config returns a copy of the registry config
func (r *Registry) Config() *Config {
	return r.config.Copy()
}

// SubscribeEvents registers sink for every governance event the registry
// emits. Events are sent while the listing is locked and sends block until the
// sink receives, so subscribers must receive promptly and keep draining the
// channel until they unsubscribe. events.Recorder queues what it receives.
func (r *Registry) SubscribeEvents(sink chan<- *model.GovernanceEvent) event.Subscription {
	return r.feed.Subscribe(sink)
}

// Propose creates a new listing under key, pulling deposit from caller
func (r *Registry) Propose(caller common.Address, key common.Hash, deposit *big.Int,
	name string, now int64) (err error) {
	defer observe(opPropose, time.Now(), &err)
	if deposit == nil || deposit.Sign() <= 0 || deposit.Cmp(r.config.MinDeposit) < 0 {
		return ErrInsufficientDeposit
	}
	unlock := r.lock(key)
	defer unlock()

	existing, lookupErr := r.persister.ListingByKey(key)
	if lookupErr != nil && errors.Cause(lookupErr) != model.ErrPersisterNoResults {
		return errors.Wrap(lookupErr, "propose: error retrieving listing")
	}
	if lookupErr == nil && !existing.Status().IsTerminal() {
		return ErrAlreadyExists
	}

	err = r.pull(caller, deposit)
	if err != nil {
		return errors.Wrap(err, "propose")
	}
	listing := model.NewListing(&model.NewListingParams{
		Key:           key,
		Name:          name,
		Owner:         caller,
		Deposit:       deposit,
		Status:        model.ListingStatusApplied,
		AppliedAt:     now,
		LastUpdatedAt: now,
	})
	err = r.commit(&model.StateUpdate{Listing: listing}, caller, deposit)
	if err != nil {
		return errors.Wrap(err, "propose")
	}
	log.Infof("Listing %v proposed by %v, deposit %v", key.Hex(), caller.Hex(), deposit)
	r.emit(model.NewGovernanceEvent(model.EventTypeApplication, key, 0, caller,
		model.Metadata{
			"Name":       name,
			"Deposit":    new(big.Int).Set(deposit),
			"AppEndDate": now + r.config.ApplyStageLength,
		}, now))
	return nil
}

// Challenge opens a challenge against the listing under key and returns its
// id. The deposit must at least match the listing deposit.
func (r *Registry) Challenge(caller common.Address, key common.Hash, deposit *big.Int,
	now int64) (id uint64, err error) {
	defer observe(opChallenge, time.Now(), &err)
	unlock := r.lock(key)
	defer unlock()

	listing, err := r.liveListing(key)
	if err != nil {
		return 0, err
	}
	if listing.Status() == model.ListingStatusChallenged {
		return 0, ErrAlreadyChallenged
	}
	if deposit == nil || deposit.Sign() <= 0 || deposit.Cmp(listing.Deposit()) < 0 {
		return 0, ErrInsufficientDeposit
	}

	err = r.pull(caller, deposit)
	if err != nil {
		return 0, errors.Wrap(err, "challenge")
	}
	id = r.lastChallengeID.Add(1)
	challenge := model.NewChallenge(&model.NewChallengeParams{
		ID:                id,
		ListingKey:        key,
		Challenger:        caller,
		Deposit:           deposit,
		StartedAt:         now,
		CommitStageLength: r.config.CommitStageLength,
	})
	if listing.Status() == model.ListingStatusApplied &&
		listing.ApplyStageEnded(r.config.ApplyStageLength, now) {
		listing.SetWhitelisted(true)
	}
	listing.SetStatus(model.ListingStatusChallenged)
	listing.SetChallengeID(id)
	listing.SetLastUpdatedAt(now)

	err = r.commit(&model.StateUpdate{Listing: listing, Challenge: challenge}, caller, deposit)
	if err != nil {
		return 0, errors.Wrap(err, "challenge")
	}
	log.Infof("Challenge %v opened on listing %v by %v", id, key.Hex(), caller.Hex())
	r.emit(model.NewGovernanceEvent(model.EventTypeChallenge, key, id, caller,
		model.Metadata{
			"Deposit":       new(big.Int).Set(deposit),
			"CommitEndDate": challenge.CommitEndDate(),
		}, now))
	return id, nil
}

// Vote stakes on the open challenge of the listing under key. keep is true to
// vote for keeping the listing.
func (r *Registry) Vote(caller common.Address, key common.Hash, stake *big.Int, keep bool,
	now int64) (err error) {
	defer observe(opVote, time.Now(), &err)
	if stake == nil || stake.Sign() <= 0 {
		return ErrZeroStake
	}
	unlock := r.lock(key)
	defer unlock()

	listing, err := r.listing(key)
	if err != nil {
		return err
	}
	challenge, err := r.openChallenge(listing)
	if err != nil {
		return err
	}
	if !voting.CommitOpen(challenge.StartedAt(), challenge.CommitStageLength(), now) {
		return ErrVotingClosed
	}
	_, lookupErr := r.persister.VoteByVoter(challenge.ID(), caller)
	if lookupErr == nil {
		return ErrAlreadyVoted
	}
	if errors.Cause(lookupErr) != model.ErrPersisterNoResults {
		return errors.Wrap(lookupErr, "vote: error retrieving vote")
	}

	err = r.pull(caller, stake)
	if err != nil {
		return errors.Wrap(err, "vote")
	}
	tally := voting.NewTally(challenge.KeepWeight(), challenge.RemoveWeight())
	tally.Add(keep, stake)
	challenge.SetWeights(tally.Keep(), tally.Remove())
	vote := model.NewVote(challenge.ID(), caller, keep, stake, false, now)

	err = r.commit(&model.StateUpdate{Challenge: challenge, Vote: vote}, caller, stake)
	if err != nil {
		return errors.Wrap(err, "vote")
	}
	log.Infof("Vote on challenge %v by %v, keep %v, weight %v", challenge.ID(), caller.Hex(),
		keep, stake)
	r.emit(model.NewGovernanceEvent(model.EventTypeVote, key, challenge.ID(), caller,
		model.Metadata{
			"Keep":   keep,
			"Weight": new(big.Int).Set(stake),
		}, now))
	return nil
}

// UpdateStatus moves the listing under key forward. An Applied listing past
// its apply stage is whitelisted, a challenge past its commit stage is
// resolved.
func (r *Registry) UpdateStatus(key common.Hash, now int64) (err error) {
	defer observe(opUpdateStatus, time.Now(), &err)
	unlock := r.lock(key)
	defer unlock()

	listing, err := r.listing(key)
	if err != nil {
		return err
	}
	if listing.Status() == model.ListingStatusApplied {
		return r.whitelist(listing, now)
	}
	if listing.ChallengeID() == 0 {
		return ErrNoOpenChallenge
	}
	challenge, err := r.challenge(listing.ChallengeID())
	if err != nil {
		return err
	}
	if challenge.Resolved() {
		return ErrAlreadyResolved
	}
	if !voting.CommitEnded(challenge.StartedAt(), challenge.CommitStageLength(), now) {
		return ErrNotReady
	}
	return r.resolve(listing, challenge, now)
}

// Exit withdraws an unchallenged listing on behalf of its owner and returns
// the deposit
func (r *Registry) Exit(caller common.Address, key common.Hash, now int64) (err error) {
	defer observe(opExit, time.Now(), &err)
	unlock := r.lock(key)
	defer unlock()

	listing, err := r.liveListing(key)
	if err != nil {
		return err
	}
	if listing.Owner() != caller {
		return ErrNotOwner
	}
	if listing.Status() == model.ListingStatusChallenged {
		return ErrAlreadyChallenged
	}
	if listing.Status() == model.ListingStatusApplied &&
		!listing.ApplyStageEnded(r.config.ApplyStageLength, now) {
		return ErrNotReady
	}

	deposit := new(big.Int).Set(listing.Deposit())
	listing.SetDeposit(new(big.Int))
	listing.SetStatus(model.ListingStatusRemoved)
	listing.SetWhitelisted(false)
	listing.SetLastUpdatedAt(now)
	err = r.commit(&model.StateUpdate{Listing: listing}, common.Address{}, nil)
	if err != nil {
		return errors.Wrap(err, "exit")
	}
	err = r.push(caller, deposit)
	if err != nil {
		return errors.Wrap(err, "exit")
	}
	log.Infof("Listing %v withdrawn by %v", key.Hex(), caller.Hex())
	r.emit(model.NewGovernanceEvent(model.EventTypeListingWithdrawn, key, listing.ChallengeID(),
		caller, model.Metadata{"Deposit": deposit}, now))
	return nil
}

// PromoteElapsedApplications whitelists every Applied listing whose apply
// stage ended at now. Returns the number of listings promoted.
func (r *Registry) PromoteElapsedApplications(now int64) (promoted int, err error) {
	defer observe(opPromoteListed, time.Now(), &err)
	applied, err := r.persister.ListingsByStatus(model.ListingStatusApplied)
	if err != nil {
		return 0, errors.Wrap(err, "promote: error retrieving applied listings")
	}
	for _, listing := range applied {
		if !listing.ApplyStageEnded(r.config.ApplyStageLength, now) {
			continue
		}
		promoteErr := r.promote(listing.Key(), now)
		switch errors.Cause(promoteErr) {
		case nil:
			promoted++
		case ErrNotReady, ErrNotFound:
			// Changed since the listings were retrieved
		default:
			return promoted, promoteErr
		}
	}
	return promoted, nil
}

// GetListingDetails returns the listing under key
func (r *Registry) GetListingDetails(key common.Hash) (*model.Listing, error) {
	return r.listing(key)
}

// IsWhitelisted returns true if the listing under key is on the registry at
// now. Listings whose apply stage elapsed count as whitelisted before their
// status is updated.
func (r *Registry) IsWhitelisted(key common.Hash, now int64) (bool, error) {
	listing, err := r.listing(key)
	if errors.Cause(err) == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if listing.Whitelisted() {
		return true, nil
	}
	return listing.Status() == model.ListingStatusApplied &&
		listing.ApplyStageEnded(r.config.ApplyStageLength, now), nil
}

// GetChallenge returns the challenge with id
func (r *Registry) GetChallenge(id uint64) (*model.Challenge, error) {
	return r.challenge(id)
}

// GetVote returns the vote of voter on the challenge with id
func (r *Registry) GetVote(id uint64, voter common.Address) (*model.Vote, error) {
	vote, err := r.persister.VoteByVoter(id, voter)
	if err != nil {
		if errors.Cause(err) == model.ErrPersisterNoResults {
			return nil, ErrNotAVoter
		}
		return nil, errors.Wrap(err, "error retrieving vote")
	}
	return vote, nil
}

func (r *Registry) whitelist(listing *model.Listing, now int64) error {
	if !listing.ApplyStageEnded(r.config.ApplyStageLength, now) {
		return ErrNotReady
	}
	listing.SetStatus(model.ListingStatusWhitelisted)
	listing.SetWhitelisted(true)
	listing.SetLastUpdatedAt(now)
	err := r.commit(&model.StateUpdate{Listing: listing}, common.Address{}, nil)
	if err != nil {
		return errors.Wrap(err, "whitelist")
	}
	log.Infof("Listing %v whitelisted", listing.Key().Hex())
	r.emit(model.NewGovernanceEvent(model.EventTypeApplicationWhitelisted, listing.Key(), 0,
		listing.Owner(), model.Metadata{}, now))
	return nil
}

func (r *Registry) promote(key common.Hash, now int64) error {
	unlock := r.lock(key)
	defer unlock()
	listing, err := r.listing(key)
	if err != nil {
		return err
	}
	if listing.Status() != model.ListingStatusApplied {
		return ErrNotReady
	}
	return r.whitelist(listing, now)
}

// resolve closes the challenge and settles deposits. The losing depositor's
// stake becomes the reward pool. When nobody voted on the winning side the
// pool goes to the winning depositor.
func (r *Registry) resolve(listing *model.Listing, challenge *model.Challenge, now int64) error {
	outcome := voting.Resolve(challenge.KeepWeight(), challenge.RemoveWeight())

	var pool, refund *big.Int
	var winner common.Address
	if outcome == model.OutcomeKeep {
		pool = new(big.Int).Set(challenge.Deposit())
		winner = listing.Owner()
		listing.SetStatus(model.ListingStatusWhitelisted)
		listing.SetWhitelisted(true)
	} else {
		pool = new(big.Int).Set(listing.Deposit())
		winner = challenge.Challenger()
		refund = new(big.Int).Set(challenge.Deposit())
		listing.SetDeposit(new(big.Int))
		listing.SetStatus(model.ListingStatusRejected)
		listing.SetWhitelisted(false)
	}
	listing.SetLastUpdatedAt(now)
	challenge.Resolve(outcome, pool, now)

	err := r.commit(&model.StateUpdate{Listing: listing, Challenge: challenge}, common.Address{}, nil)
	if err != nil {
		return errors.Wrap(err, "resolve")
	}
	metrics.RecordResolution(outcome.String())

	if refund != nil {
		err = r.push(challenge.Challenger(), refund)
	}
	if err == nil && challenge.WinningWeight().Sign() == 0 {
		err = r.push(winner, pool)
	}
	log.Infof("Challenge %v on listing %v resolved: %v, keep %v, remove %v, pool %v",
		challenge.ID(), listing.Key().Hex(), outcome, challenge.KeepWeight(),
		challenge.RemoveWeight(), pool)
	r.emit(model.NewGovernanceEvent(model.EventTypeResolveChallenge, listing.Key(), challenge.ID(),
		winner, model.Metadata{
			"Outcome":      outcome.String(),
			"KeepWeight":   new(big.Int).Set(challenge.KeepWeight()),
			"RemoveWeight": new(big.Int).Set(challenge.RemoveWeight()),
			"RewardPool":   pool,
		}, now))
	if err != nil {
		return errors.Wrap(err, "resolve")
	}
	return nil
}

// listing returns the stored listing under key, ErrNotFound if none
func (r *Registry) listing(key common.Hash) (*model.Listing, error) {
	listing, err := r.persister.ListingByKey(key)
	if err != nil {
		if errors.Cause(err) == model.ErrPersisterNoResults {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "error retrieving listing")
	}
	return listing, nil
}

// liveListing returns the listing under key, ErrNotFound if it was rejected
// or removed
func (r *Registry) liveListing(key common.Hash) (*model.Listing, error) {
	listing, err := r.listing(key)
	if err != nil {
		return nil, err
	}
	if listing.Status().IsTerminal() {
		return nil, ErrNotFound
	}
	return listing, nil
}

func (r *Registry) challenge(id uint64) (*model.Challenge, error) {
	challenge, err := r.persister.ChallengeByID(id)
	if err != nil {
		if errors.Cause(err) == model.ErrPersisterNoResults {
			return nil, ErrChallengeNotFound
		}
		return nil, errors.Wrap(err, "error retrieving challenge")
	}
	return challenge, nil
}

func (r *Registry) openChallenge(listing *model.Listing) (*model.Challenge, error) {
	if listing.Status() != model.ListingStatusChallenged {
		return nil, ErrNoOpenChallenge
	}
	challenge, err := r.challenge(listing.ChallengeID())
	if err != nil {
		return nil, err
	}
	if challenge.Resolved() {
		return nil, ErrNoOpenChallenge
	}
	return challenge, nil
}

// lock holds the stripe guarding key. Keys may share a stripe, so no
// operation holds more than one.
func (r *Registry) lock(key common.Hash) func() {
	mutex := &r.locks[lockStripe(key)]
	mutex.Lock()
	return mutex.Unlock
}

func lockStripe(key common.Hash) int {
	h := fnv.New32a()
	_, _ = h.Write(key[:])
	return int(h.Sum32() % lockStripes)
}

func (r *Registry) pull(from common.Address, amount *big.Int) error {
	err := r.ledger.TransferIn(from, amount)
	if err != nil {
		return err
	}
	metrics.RecordEscrowIn(amount)
	return nil
}

func (r *Registry) push(to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	err := r.ledger.TransferOut(to, amount)
	if err != nil {
		log.Errorf("Error transferring %v out of escrow to %v: err: %v", amount, to.Hex(), err)
		return errors.Wrapf(err, "error transferring %v to %v", amount, to.Hex())
	}
	metrics.RecordEscrowOut(amount)
	return nil
}

// commit persists the update. If it fails, any amount pulled from payer for
// this operation is refunded.
func (r *Registry) commit(update *model.StateUpdate, payer common.Address, pulled *big.Int) error {
	err := r.persister.ApplyUpdate(update)
	if err == nil {
		return nil
	}
	log.Errorf("Error persisting registry update: err: %v", err)
	if pulled != nil {
		refundErr := r.push(payer, pulled)
		if refundErr != nil {
			log.Errorf("Error refunding %v to %v: err: %v", pulled, payer.Hex(), refundErr)
		}
	}
	return errors.Wrap(err, "error persisting update")
}

func (r *Registry) emit(govEvent *model.GovernanceEvent) {
	r.feed.Send(govEvent)
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordOperation(operation, ErrorKind(*err), start)
}
