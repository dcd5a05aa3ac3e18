package postgres // import "github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	// ChallengeTableName is the name of the challenge table
	ChallengeTableName = "challenge"
)

// CreateChallengeTableQuery returns the query to create the challenge table
func CreateChallengeTableQuery() string {
	return CreateChallengeTableQueryString(ChallengeTableName)
}

// CreateChallengeTableQueryString returns the query to create this table
func CreateChallengeTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            challenge_id BIGINT PRIMARY KEY,
            listing_key TEXT,
            challenger TEXT,
            deposit NUMERIC,
            started_timestamp BIGINT,
            commit_stage_length BIGINT,
            resolved BOOL,
            outcome INT,
            keep_weight NUMERIC,
            remove_weight NUMERIC,
            reward_pool NUMERIC,
            resolved_timestamp BIGINT
        );
    `, tableName)
	return queryString
}

// CreateChallengeTableIndicesString returns the query to create indices for this table
func CreateChallengeTableIndicesString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS %s_listing_key_idx ON %s (listing_key);
    `, tableName, tableName)
	return queryString
}

// Challenge is postgres definition of model.Challenge
type Challenge struct {
	ChallengeID int64 `db:"challenge_id"`

	ListingKey string `db:"listing_key"`

	Challenger string `db:"challenger"`

	Deposit string `db:"deposit"`

	StartedDateTs int64 `db:"started_timestamp"`

	CommitStageLength int64 `db:"commit_stage_length"`

	Resolved bool `db:"resolved"`

	Outcome int `db:"outcome"`

	KeepWeight string `db:"keep_weight"`

	RemoveWeight string `db:"remove_weight"`

	RewardPool string `db:"reward_pool"`

	ResolvedDateTs int64 `db:"resolved_timestamp"`
}

// NewChallenge creates a new postgres challenge
func NewChallenge(challengeData *model.Challenge) *Challenge {
	return &Challenge{
		ChallengeID:       int64(challengeData.ID()),
		ListingKey:        challengeData.ListingKey().Hex(),
		Challenger:        challengeData.Challenger().Hex(),
		Deposit:           BigIntToString(challengeData.Deposit()),
		StartedDateTs:     challengeData.StartedAt(),
		CommitStageLength: challengeData.CommitStageLength(),
		Resolved:          challengeData.Resolved(),
		Outcome:           int(challengeData.Outcome()),
		KeepWeight:        BigIntToString(challengeData.KeepWeight()),
		RemoveWeight:      BigIntToString(challengeData.RemoveWeight()),
		RewardPool:        BigIntToString(challengeData.RewardPool()),
		ResolvedDateTs:    challengeData.ResolvedAt(),
	}
}

// DbToChallengeData creates a model.Challenge from postgres.Challenge
func (c *Challenge) DbToChallengeData() (*model.Challenge, error) {
	nums, err := StringsToBigInts(c.Deposit, c.KeepWeight, c.RemoveWeight, c.RewardPool)
	if err != nil {
		return nil, err
	}
	return model.NewChallenge(&model.NewChallengeParams{
		ID:                uint64(c.ChallengeID),
		ListingKey:        common.HexToHash(c.ListingKey),
		Challenger:        common.HexToAddress(c.Challenger),
		Deposit:           nums[0],
		StartedAt:         c.StartedDateTs,
		CommitStageLength: c.CommitStageLength,
		Resolved:          c.Resolved,
		Outcome:           model.Outcome(c.Outcome),
		KeepWeight:        nums[1],
		RemoveWeight:      nums[2],
		RewardPool:        nums[3],
		ResolvedAt:        c.ResolvedDateTs,
	}), nil
}
