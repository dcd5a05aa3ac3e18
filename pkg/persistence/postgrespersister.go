// Package persistence contains components to store registry state
package persistence // import "github.com/joincivil/civil-tcr-registry/pkg/persistence"

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	// driver for postgresql
	_ "github.com/lib/pq"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"
)

const (
	listingTableName   = postgres.ListingTableName
	challengeTableName = postgres.ChallengeTableName
	voteTableName      = postgres.VoteTableName
	govEventTableName  = postgres.GovernanceEventTableName
)

// NewPostgresPersister creates a new postgres persister
func NewPostgresPersister(host string, port int, user string, password string,
	dbname string, maxConns int, maxIdle int, connLifetimeSecs int) (*PostgresPersister, error) {
	pgPersister := &PostgresPersister{}
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
	db, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		return pgPersister, errors.Wrap(err, "error connecting to sqlx")
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if connLifetimeSecs > 0 {
		db.SetConnMaxLifetime(time.Second * time.Duration(connLifetimeSecs))
	}
	pgPersister.db = db
	return pgPersister, nil
}

// NewPostgresPersisterFromSqlx creates a new postgres persister from an
// initialized sqlx.DB
func NewPostgresPersisterFromSqlx(db *sqlx.DB) (*PostgresPersister, error) {
	if db == nil {
		return nil, errors.New("nil db given")
	}
	return &PostgresPersister{db: db}, nil
}

// PostgresPersister holds the DB connection and persistence
type PostgresPersister struct {
	db *sqlx.DB
}

// Close closes the DB connection
func (p *PostgresPersister) Close() error {
	return p.db.Close()
}

// CreateTables creates the tables for the registry if they don't exist
func (p *PostgresPersister) CreateTables() error {
	schemas := []struct {
		name  string
		query string
	}{
		{listingTableName, postgres.CreateListingTableQuery()},
		{challengeTableName, postgres.CreateChallengeTableQuery()},
		{voteTableName, postgres.CreateVoteTableQuery()},
		{govEventTableName, postgres.CreateGovernanceEventTableQuery()},
	}
	for _, schema := range schemas {
		_, err := p.db.Exec(schema.query)
		if err != nil {
			return fmt.Errorf("Error creating %v table in postgres: %v", schema.name, err)
		}
	}
	return nil
}

// CreateIndices creates the indices for the registry tables if they don't exist
func (p *PostgresPersister) CreateIndices() error {
	indices := []string{
		postgres.CreateListingTableIndicesString(listingTableName),
		postgres.CreateChallengeTableIndicesString(challengeTableName),
		postgres.CreateGovernanceEventTableIndicesString(govEventTableName),
	}
	for _, index := range indices {
		_, err := p.db.Exec(index)
		if err != nil {
			return fmt.Errorf("Error creating indices in postgres: %v", err)
		}
	}
	return nil
}

// ListingByKey retrieves a listing by key
func (p *PostgresPersister) ListingByKey(key common.Hash) (*model.Listing, error) {
	fields, _ := postgres.StructFieldsForQuery(postgres.Listing{})
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE listing_key=$1;", fields, // nolint: gosec
		listingTableName)
	dbListing := postgres.Listing{}
	err := p.db.Get(&dbListing, queryString, key.Hex())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPersisterNoResults
		}
		return nil, fmt.Errorf("Wasn't able to get listing from postgres table: %v", err)
	}
	return dbListing.DbToListingData()
}

// ListingsByStatus retrieves all listings with the given status
func (p *PostgresPersister) ListingsByStatus(status model.ListingStatus) ([]*model.Listing, error) {
	fields, _ := postgres.StructFieldsForQuery(postgres.Listing{})
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE status=$1 ORDER BY application_timestamp;", // nolint: gosec
		fields, listingTableName)
	dbListings := []postgres.Listing{}
	err := p.db.Select(&dbListings, queryString, int(status))
	if err != nil {
		return nil, fmt.Errorf("Wasn't able to get listings from postgres table: %v", err)
	}
	listings := make([]*model.Listing, len(dbListings))
	for i, dbListing := range dbListings {
		listings[i], err = dbListing.DbToListingData()
		if err != nil {
			return nil, err
		}
	}
	return listings, nil
}

// ChallengeByID retrieves a challenge by id
func (p *PostgresPersister) ChallengeByID(id uint64) (*model.Challenge, error) {
	fields, _ := postgres.StructFieldsForQuery(postgres.Challenge{})
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE challenge_id=$1;", fields, // nolint: gosec
		challengeTableName)
	dbChallenge := postgres.Challenge{}
	err := p.db.Get(&dbChallenge, queryString, int64(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPersisterNoResults
		}
		return nil, fmt.Errorf("Wasn't able to get challenge from postgres table: %v", err)
	}
	return dbChallenge.DbToChallengeData()
}

// MaxChallengeID returns the highest challenge id stored, 0 if none
func (p *PostgresPersister) MaxChallengeID() (uint64, error) {
	queryString := fmt.Sprintf("SELECT COALESCE(MAX(challenge_id), 0) FROM %s;", // nolint: gosec
		challengeTableName)
	var maxID int64
	err := p.db.Get(&maxID, queryString)
	if err != nil {
		return 0, fmt.Errorf("Wasn't able to get max challenge id: %v", err)
	}
	return uint64(maxID), nil
}

// VoteByVoter retrieves the vote of voter on the challenge
func (p *PostgresPersister) VoteByVoter(challengeID uint64, voter common.Address) (*model.Vote, error) {
	fields, _ := postgres.StructFieldsForQuery(postgres.Vote{})
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE challenge_id=$1 AND voter_address=$2;", // nolint: gosec
		fields, voteTableName)
	dbVote := postgres.Vote{}
	err := p.db.Get(&dbVote, queryString, int64(challengeID), voter.Hex())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPersisterNoResults
		}
		return nil, fmt.Errorf("Wasn't able to get vote from postgres table: %v", err)
	}
	return dbVote.DbToVoteData()
}

// VotesByChallengeID retrieves all votes on the challenge in the order cast
func (p *PostgresPersister) VotesByChallengeID(challengeID uint64) ([]*model.Vote, error) {
	fields, _ := postgres.StructFieldsForQuery(postgres.Vote{})
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE challenge_id=$1 ORDER BY id;", // nolint: gosec
		fields, voteTableName)
	dbVotes := []postgres.Vote{}
	err := p.db.Select(&dbVotes, queryString, int64(challengeID))
	if err != nil {
		return nil, fmt.Errorf("Wasn't able to get votes from postgres table: %v", err)
	}
	votes := make([]*model.Vote, len(dbVotes))
	for i, dbVote := range dbVotes {
		votes[i], err = dbVote.DbToVoteData()
		if err != nil {
			return nil, err
		}
	}
	return votes, nil
}

// ApplyUpdate stores all records in the update in a single transaction
func (p *PostgresPersister) ApplyUpdate(update *model.StateUpdate) error {
	tx, err := p.db.Beginx()
	if err != nil {
		return fmt.Errorf("Error starting transaction: %v", err)
	}
	err = p.applyUpdateInTx(tx, update)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("Error rolling back: %v, after: %v", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

func (p *PostgresPersister) applyUpdateInTx(tx *sqlx.Tx, update *model.StateUpdate) error {
	if update.Listing != nil {
		query := postgres.UpsertQueryString(listingTableName, postgres.Listing{}, "listing_key")
		_, err := tx.NamedExec(query, postgres.NewListing(update.Listing))
		if err != nil {
			return fmt.Errorf("Error saving listing to table: %v", err)
		}
	}
	if update.Challenge != nil {
		query := postgres.UpsertQueryString(challengeTableName, postgres.Challenge{}, "challenge_id")
		_, err := tx.NamedExec(query, postgres.NewChallenge(update.Challenge))
		if err != nil {
			return fmt.Errorf("Error saving challenge to table: %v", err)
		}
	}
	if update.Vote != nil {
		query := postgres.UpsertQueryString(voteTableName, postgres.Vote{}, "challenge_id",
			"voter_address")
		_, err := tx.NamedExec(query, postgres.NewVote(update.Vote))
		if err != nil {
			return fmt.Errorf("Error saving vote to table: %v", err)
		}
	}
	return nil
}

// CreateGovernanceEvent stores a new governance event
func (p *PostgresPersister) CreateGovernanceEvent(govEvent *model.GovernanceEvent) error {
	fields, named := postgres.StructFieldsForQuery(postgres.GovernanceEvent{})
	queryString := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", govEventTableName, // nolint: gosec
		fields, named)
	_, err := p.db.NamedExec(queryString, postgres.NewGovernanceEvent(govEvent))
	if err != nil {
		return fmt.Errorf("Error saving governance event to table: %v", err)
	}
	return nil
}

// GovernanceEventsByListingKey retrieves the events for a listing in order
func (p *PostgresPersister) GovernanceEventsByListingKey(key common.Hash) ([]*model.GovernanceEvent, error) {
	fields, _ := postgres.StructFieldsForQuery(postgres.GovernanceEvent{})
	queryString := fmt.Sprintf("SELECT %s FROM %s WHERE listing_key=$1 ORDER BY id;", // nolint: gosec
		fields, govEventTableName)
	dbEvents := []postgres.GovernanceEvent{}
	err := p.db.Select(&dbEvents, queryString, key.Hex())
	if err != nil {
		return nil, fmt.Errorf("Wasn't able to get governance events from postgres table: %v", err)
	}
	events := make([]*model.GovernanceEvent, len(dbEvents))
	for i, dbEvent := range dbEvents {
		events[i] = dbEvent.DbToGovernanceData()
	}
	return events, nil
}
