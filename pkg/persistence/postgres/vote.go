package postgres // import "github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	// VoteTableName is the name of the vote table
	VoteTableName = "vote"
)

// CreateVoteTableQuery returns the query to create the vote table
func CreateVoteTableQuery() string {
	return CreateVoteTableQueryString(VoteTableName)
}

// CreateVoteTableQueryString returns the query to create this table
// NOTE: id only keeps the order votes were cast in
func CreateVoteTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id SERIAL,
            challenge_id BIGINT,
            voter_address TEXT,
            keep BOOL,
            weight NUMERIC,
            claimed BOOL,
            cast_timestamp BIGINT,
            PRIMARY KEY (challenge_id, voter_address)
        );
    `, tableName)
	return queryString
}

// Vote is postgres definition of model.Vote
type Vote struct {
	ChallengeID int64 `db:"challenge_id"`

	VoterAddress string `db:"voter_address"`

	Keep bool `db:"keep"`

	Weight string `db:"weight"`

	Claimed bool `db:"claimed"`

	CastDateTs int64 `db:"cast_timestamp"`
}

// NewVote creates a new postgres vote
func NewVote(vote *model.Vote) *Vote {
	return &Vote{
		ChallengeID:  int64(vote.ChallengeID()),
		VoterAddress: vote.Voter().Hex(),
		Keep:         vote.Keep(),
		Weight:       BigIntToString(vote.Weight()),
		Claimed:      vote.Claimed(),
		CastDateTs:   vote.CastAt(),
	}
}

// DbToVoteData creates a model.Vote from postgres.Vote
func (v *Vote) DbToVoteData() (*model.Vote, error) {
	weight, err := StringToBigInt(v.Weight)
	if err != nil {
		return nil, err
	}
	return model.NewVote(uint64(v.ChallengeID), common.HexToAddress(v.VoterAddress), v.Keep,
		weight, v.Claimed, v.CastDateTs), nil
}
