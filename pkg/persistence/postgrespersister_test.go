// +build integration

// This is an integration test file for postgrespersister. Postgres needs to be running.
// Run this using go test -tags=integration
package persistence

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"
)

const (
	postgresPort   = 5432
	postgresDBName = "civil_tcr"
	postgresUser   = "docker"
	postgresPswd   = "docker"
	postgresHost   = "localhost"
	testAddress    = "0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d"
)

func setupDBConnection() (*PostgresPersister, error) {
	persister, err := NewPostgresPersister(postgresHost, postgresPort, postgresUser, postgresPswd,
		postgresDBName, 5, 2, 60)
	if err != nil {
		return nil, fmt.Errorf("Error setting up new persister: err: %v", err)
	}
	err = persister.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("Error setting up tables in db: %v", err)
	}
	err = persister.CreateIndices()
	if err != nil {
		return nil, fmt.Errorf("Error setting up indices in db: %v", err)
	}
	return persister, nil
}

func deleteTestRows(t *testing.T, p *PostgresPersister) {
	for _, table := range []string{listingTableName, challengeTableName, voteTableName, govEventTableName} {
		_, err := p.db.Exec(fmt.Sprintf("DELETE FROM %s;", table)) // nolint: gosec
		if err != nil {
			t.Errorf("Error cleaning up %v: %v", table, err)
		}
	}
}

func TestApplyUpdate(t *testing.T) {
	persister, err := setupDBConnection()
	if err != nil {
		t.Fatalf("Error connecting to DB: %v", err)
	}
	defer deleteTestRows(t, persister)

	key := model.ListingKeyFromName("DemoListing")
	listing := model.NewListing(&model.NewListingParams{
		Key:         key,
		Name:        "DemoListing",
		Owner:       common.HexToAddress(testAddress),
		Deposit:     big.NewInt(100),
		Status:      model.ListingStatusChallenged,
		ChallengeID: 1,
		AppliedAt:   1257894000,
	})
	challenge := model.NewChallenge(&model.NewChallengeParams{
		ID:                1,
		ListingKey:        key,
		Challenger:        common.HexToAddress(testAddress),
		Deposit:           big.NewInt(100),
		StartedAt:         1257894010,
		CommitStageLength: 60,
	})
	err = persister.ApplyUpdate(&model.StateUpdate{Listing: listing, Challenge: challenge})
	if err != nil {
		t.Fatalf("Should have applied update: err: %v", err)
	}

	vote := model.NewVote(1, common.HexToAddress(testAddress), true, big.NewInt(10), false, 1257894020)
	challenge.SetWeights(big.NewInt(10), big.NewInt(0))
	err = persister.ApplyUpdate(&model.StateUpdate{Challenge: challenge, Vote: vote})
	if err != nil {
		t.Fatalf("Should have applied vote update: err: %v", err)
	}

	dbListing, err := persister.ListingByKey(key)
	if err != nil {
		t.Fatalf("Should have retrieved listing: err: %v", err)
	}
	if dbListing.Status() != model.ListingStatusChallenged || dbListing.ChallengeID() != 1 {
		t.Errorf("Listing not stored correctly")
	}
	dbChallenge, err := persister.ChallengeByID(1)
	if err != nil {
		t.Fatalf("Should have retrieved challenge: err: %v", err)
	}
	if dbChallenge.KeepWeight().Int64() != 10 {
		t.Errorf("Challenge weights not updated: %v", dbChallenge.KeepWeight())
	}
	maxID, err := persister.MaxChallengeID()
	if err != nil || maxID != 1 {
		t.Errorf("Max challenge id should be 1: %v, err: %v", maxID, err)
	}
	votes, err := persister.VotesByChallengeID(1)
	if err != nil || len(votes) != 1 {
		t.Errorf("Should have 1 vote: err: %v", err)
	}
	_, err = persister.ChallengeByID(2)
	if err != model.ErrPersisterNoResults {
		t.Errorf("Should have returned no results: err: %v", err)
	}
}

func TestGovernanceEvents(t *testing.T) {
	persister, err := setupDBConnection()
	if err != nil {
		t.Fatalf("Error connecting to DB: %v", err)
	}
	defer deleteTestRows(t, persister)

	key := model.ListingKeyFromName("DemoListing")
	govEvent := model.NewGovernanceEvent(model.EventTypeApplication, key, 0,
		common.HexToAddress(testAddress), model.Metadata{"Deposit": big.NewInt(100)}, 1257894000)
	err = persister.CreateGovernanceEvent(govEvent)
	if err != nil {
		t.Fatalf("Should have created governance event: err: %v", err)
	}
	events, err := persister.GovernanceEventsByListingKey(key)
	if err != nil || len(events) != 1 {
		t.Fatalf("Should have 1 event: err: %v", err)
	}
	if events[0].Metadata()["Deposit"].(float64) != 100 {
		t.Errorf("Metadata not stored correctly: %v", events[0].Metadata())
	}
	count := 0
	_ = persister.db.Get(&count, postgres.CheckTableCount(govEventTableName))
	if count != 1 {
		t.Errorf("Table should hold 1 row: %v", count)
	}
}
