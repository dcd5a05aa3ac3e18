package postgres // import "github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
)

const (
	// GovernanceEventTableName is the name of the governance event table
	GovernanceEventTableName = "governance_event"
)

// CreateGovernanceEventTableQuery returns the query to create the governance_event table
func CreateGovernanceEventTableQuery() string {
	return CreateGovernanceEventTableQueryString(GovernanceEventTableName)
}

// CreateGovernanceEventTableQueryString returns the query to create this table
func CreateGovernanceEventTableQueryString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            id SERIAL PRIMARY KEY,
            gov_event_type TEXT,
            listing_key TEXT,
            challenge_id BIGINT,
            sender_address TEXT,
            metadata JSONB,
            creation_date BIGINT
        );
    `, tableName)
	return queryString
}

// CreateGovernanceEventTableIndicesString returns the query to create indices for this table
func CreateGovernanceEventTableIndicesString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS %s_listing_key_idx ON %s (listing_key);
    `, tableName, tableName)
	return queryString
}

// GovernanceEvent is postgres definition of model.GovernanceEvent
type GovernanceEvent struct {
	GovernanceEventType string `db:"gov_event_type"`

	ListingKey string `db:"listing_key"`

	ChallengeID int64 `db:"challenge_id"`

	SenderAddress string `db:"sender_address"`

	Metadata JsonbPayload `db:"metadata"`

	CreationDateTs int64 `db:"creation_date"`
}

// NewGovernanceEvent creates a new postgres GovernanceEvent
func NewGovernanceEvent(governanceEvent *model.GovernanceEvent) *GovernanceEvent {
	return &GovernanceEvent{
		GovernanceEventType: governanceEvent.GovernanceEventType(),
		ListingKey:          governanceEvent.ListingKey().Hex(),
		ChallengeID:         int64(governanceEvent.ChallengeID()),
		SenderAddress:       governanceEvent.SenderAddress().Hex(),
		Metadata:            JsonbPayload(governanceEvent.Metadata()),
		CreationDateTs:      governanceEvent.Timestamp(),
	}
}

// DbToGovernanceData creates a model.GovernanceEvent from postgres.GovernanceEvent
// NOTE: jsonb numbers come back as float64 and addresses as strings
func (ge *GovernanceEvent) DbToGovernanceData() *model.GovernanceEvent {
	return model.NewGovernanceEvent(
		ge.GovernanceEventType,
		common.HexToHash(ge.ListingKey),
		uint64(ge.ChallengeID),
		common.HexToAddress(ge.SenderAddress),
		model.Metadata(ge.Metadata),
		ge.CreationDateTs,
	)
}
