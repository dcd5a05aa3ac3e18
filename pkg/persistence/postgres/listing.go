package postgres // import "github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	// ListingTableName is the name of the listing table
	ListingTableName = "listing"
)

// CreateListingTableQuery returns the query to create the listing table
func CreateListingTableQuery() string {
	return CreateListingTableQueryString(ListingTableName)
}

// CreateListingTableQueryString returns the query to create this table
func CreateListingTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            listing_key TEXT PRIMARY KEY,
            name TEXT,
            owner_address TEXT,
            deposit NUMERIC,
            whitelisted BOOL,
            status INT,
            challenge_id BIGINT,
            application_timestamp BIGINT,
            last_updated_timestamp BIGINT
        );
    `, tableName)
	return queryString
}

// CreateListingTableIndicesString returns the query to create indices for this table
func CreateListingTableIndicesString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS %s_status_idx ON %s (status);
    `, tableName, tableName)
	return queryString
}

// Listing is the model definition for the listing table
// NOTE: deposit is NUMERIC and moved as a decimal string to keep full precision
type Listing struct {
	ListingKey string `db:"listing_key"`

	Name string `db:"name"`

	OwnerAddress string `db:"owner_address"`

	Deposit string `db:"deposit"`

	Whitelisted bool `db:"whitelisted"`

	Status int `db:"status"`

	ChallengeID int64 `db:"challenge_id"`

	ApplicationDateTs int64 `db:"application_timestamp"`

	LastUpdatedDateTs int64 `db:"last_updated_timestamp"`
}

// NewListing constructs a listing for DB from a model.Listing
func NewListing(listing *model.Listing) *Listing {
	return &Listing{
		ListingKey:        listing.Key().Hex(),
		Name:              listing.Name(),
		OwnerAddress:      listing.Owner().Hex(),
		Deposit:           BigIntToString(listing.Deposit()),
		Whitelisted:       listing.Whitelisted(),
		Status:            int(listing.Status()),
		ChallengeID:       int64(listing.ChallengeID()),
		ApplicationDateTs: listing.AppliedAt(),
		LastUpdatedDateTs: listing.LastUpdatedAt(),
	}
}

// DbToListingData creates a model.Listing from postgres Listing
func (l *Listing) DbToListingData() (*model.Listing, error) {
	deposit, err := StringToBigInt(l.Deposit)
	if err != nil {
		return nil, err
	}
	return model.NewListing(&model.NewListingParams{
		Key:           common.HexToHash(l.ListingKey),
		Name:          l.Name,
		Owner:         common.HexToAddress(l.OwnerAddress),
		Deposit:       deposit,
		Whitelisted:   l.Whitelisted,
		Status:        model.ListingStatus(l.Status),
		ChallengeID:   uint64(l.ChallengeID),
		AppliedAt:     l.ApplicationDateTs,
		LastUpdatedAt: l.LastUpdatedDateTs,
	}), nil
}
