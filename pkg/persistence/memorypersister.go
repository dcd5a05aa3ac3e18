// Package persistence contains components to store registry state
package persistence // import "github.com/joincivil/civil-tcr-registry/pkg/persistence"

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

type voteKey struct {
	challengeID uint64
	voter       common.Address
}

// NewMemoryPersister returns an empty in memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{
		listings:   map[common.Hash]*model.Listing{},
		challenges: map[uint64]*model.Challenge{},
		votes:      map[voteKey]*model.Vote{},
		voters:     map[uint64][]common.Address{},
		govEvents:  map[common.Hash][]*model.GovernanceEvent{},
	}
}

// MemoryPersister keeps registry state in memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryPersister struct {
	mutex      sync.RWMutex
	listings   map[common.Hash]*model.Listing
	challenges map[uint64]*model.Challenge
	votes      map[voteKey]*model.Vote
	voters     map[uint64][]common.Address
	govEvents  map[common.Hash][]*model.GovernanceEvent
	maxID      uint64
}

// ListingByKey retrieves a listing by key
func (m *MemoryPersister) ListingByKey(key common.Hash) (*model.Listing, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	listing, ok := m.listings[key]
	if !ok {
		return nil, model.ErrPersisterNoResults
	}
	return listing.Copy(), nil
}

// ListingsByStatus retrieves all listings with the given status, ordered by
// application time
func (m *MemoryPersister) ListingsByStatus(status model.ListingStatus) ([]*model.Listing, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	listings := []*model.Listing{}
	for _, listing := range m.listings {
		if listing.Status() == status {
			listings = append(listings, listing.Copy())
		}
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].AppliedAt() < listings[j].AppliedAt()
	})
	return listings, nil
}

// ChallengeByID retrieves a challenge by id
func (m *MemoryPersister) ChallengeByID(id uint64) (*model.Challenge, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	challenge, ok := m.challenges[id]
	if !ok {
		return nil, model.ErrPersisterNoResults
	}
	return challenge.Copy(), nil
}

// MaxChallengeID returns the highest challenge id stored
func (m *MemoryPersister) MaxChallengeID() (uint64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.maxID, nil
}

// VoteByVoter retrieves the vote of voter on the challenge
func (m *MemoryPersister) VoteByVoter(challengeID uint64, voter common.Address) (*model.Vote, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	vote, ok := m.votes[voteKey{challengeID, voter}]
	if !ok {
		return nil, model.ErrPersisterNoResults
	}
	return vote.Copy(), nil
}

// VotesByChallengeID retrieves all votes on the challenge in the order cast
func (m *MemoryPersister) VotesByChallengeID(challengeID uint64) ([]*model.Vote, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	voters := m.voters[challengeID]
	votes := make([]*model.Vote, len(voters))
	for i, voter := range voters {
		votes[i] = m.votes[voteKey{challengeID, voter}].Copy()
	}
	return votes, nil
}

// ApplyUpdate stores all records in the update
func (m *MemoryPersister) ApplyUpdate(update *model.StateUpdate) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if update.Listing != nil {
		m.listings[update.Listing.Key()] = update.Listing.Copy()
	}
	if update.Challenge != nil {
		id := update.Challenge.ID()
		m.challenges[id] = update.Challenge.Copy()
		if id > m.maxID {
			m.maxID = id
		}
	}
	if update.Vote != nil {
		key := voteKey{update.Vote.ChallengeID(), update.Vote.Voter()}
		if _, ok := m.votes[key]; !ok {
			m.voters[key.challengeID] = append(m.voters[key.challengeID], key.voter)
		}
		m.votes[key] = update.Vote.Copy()
	}
	return nil
}

// CreateGovernanceEvent stores a new governance event
func (m *MemoryPersister) CreateGovernanceEvent(govEvent *model.GovernanceEvent) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key := govEvent.ListingKey()
	m.govEvents[key] = append(m.govEvents[key], govEvent)
	return nil
}

// GovernanceEventsByListingKey retrieves the events for a listing in order
func (m *MemoryPersister) GovernanceEventsByListingKey(key common.Hash) ([]*model.GovernanceEvent, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	events := make([]*model.GovernanceEvent, len(m.govEvents[key]))
	copy(events, m.govEvents[key])
	return events, nil
}
