package postgres_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"
)

func TestDbFieldNameFromModelName(t *testing.T) {
	listingNameMapping := map[string]string{
		"ListingKey":        "listing_key",
		"Name":              "name",
		"OwnerAddress":      "owner_address",
		"Deposit":           "deposit",
		"Whitelisted":       "whitelisted",
		"Status":            "status",
		"ChallengeID":       "challenge_id",
		"ApplicationDateTs": "application_timestamp",
		"LastUpdatedDateTs": "last_updated_timestamp",
	}
	for modelName, dbName := range listingNameMapping {
		dbNameCheck, err := postgres.DbFieldNameFromModelName(postgres.Listing{}, modelName)
		if err != nil {
			t.Errorf("Error getting db struct name: %v", err)
		}
		if dbName != dbNameCheck {
			t.Errorf("Struct tag names do not match for: %v, %v", dbName, dbNameCheck)
		}
	}
	_, err := postgres.DbFieldNameFromModelName(postgres.Listing{}, "ContractAddress")
	if err == nil {
		t.Errorf("Should have failed on a missing field")
	}
}

func TestUpsertQueryString(t *testing.T) {
	query := postgres.UpsertQueryString("vote", postgres.Vote{}, "challenge_id", "voter_address")
	expected := "INSERT INTO vote (challenge_id, voter_address, keep, weight, claimed, cast_timestamp) " +
		"VALUES (:challenge_id, :voter_address, :keep, :weight, :claimed, :cast_timestamp) " +
		"ON CONFLICT (challenge_id, voter_address) DO UPDATE SET keep = EXCLUDED.keep, " +
		"weight = EXCLUDED.weight, claimed = EXCLUDED.claimed, cast_timestamp = EXCLUDED.cast_timestamp;"
	if query != expected {
		t.Errorf("Upsert query is not what it should be: %v", query)
	}
}

func TestStringToBigInt(t *testing.T) {
	num, err := postgres.StringToBigInt("100000000000000000000")
	if err != nil {
		t.Errorf("Should have converted: err: %v", err)
	}
	if postgres.BigIntToString(num) != "100000000000000000000" {
		t.Errorf("Precision should be kept: %v", num)
	}
	empty, _ := postgres.StringToBigInt("")
	if empty.Sign() != 0 {
		t.Errorf("Empty string should be zero")
	}
	_, err = postgres.StringToBigInt("1.5")
	if err == nil {
		t.Errorf("Should have failed on a non integer")
	}
	if postgres.BigIntToString(nil) != "0" {
		t.Errorf("Nil should be zero")
	}
}

func TestChallengeConversion(t *testing.T) {
	challenge := model.NewChallenge(&model.NewChallengeParams{
		ID:                12,
		ListingKey:        model.ListingKeyFromName("DemoListing"),
		Challenger:        common.HexToAddress("0xDFe273082089bB7f70Ee36Eebcde64832FE97E55"),
		Deposit:           big.NewInt(100),
		StartedAt:         1257894000,
		CommitStageLength: 60,
		KeepWeight:        big.NewInt(10),
		RemoveWeight:      big.NewInt(5),
	})
	challenge.Resolve(model.OutcomeKeep, big.NewInt(100), 1257894100)

	dbChallenge := postgres.NewChallenge(challenge)
	if dbChallenge.RewardPool != "100" || dbChallenge.Outcome != int(model.OutcomeKeep) {
		t.Errorf("Db challenge fields not set correctly: %v", dbChallenge)
	}
	converted, err := dbChallenge.DbToChallengeData()
	if err != nil {
		t.Fatalf("Should have converted: err: %v", err)
	}
	if converted.ListingKey() != challenge.ListingKey() {
		t.Errorf("Listing key should match: %v", converted.ListingKey().Hex())
	}
	if converted.CommitEndDate() != 1257894060 {
		t.Errorf("Commit end should match: %v", converted.CommitEndDate())
	}
	if converted.WinningWeight().Int64() != 10 {
		t.Errorf("Winning weight should match: %v", converted.WinningWeight())
	}
}
