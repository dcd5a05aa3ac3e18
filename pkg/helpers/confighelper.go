// Package helpers contains various common helper functions.
// Normally they are shared functions used by the cmds.
package helpers

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/jmoiron/sqlx"

	"github.com/joincivil/civil-tcr-registry/pkg/ledger"
	"github.com/joincivil/civil-tcr-registry/pkg/persistence"
	"github.com/joincivil/civil-tcr-registry/pkg/registry"
	"github.com/joincivil/civil-tcr-registry/pkg/utils"
)

// Persister is a helper function to return an interface{} that is a initialized
// persister type. The returned value implements both model.RegistryPersister
// and model.GovernanceEventPersister.
func Persister(config *utils.RegistryConfig) (interface{}, error) {
	if config.PersisterType == utils.PersisterTypePostgresql {
		return postgresPersister(config)
	}
	// Default to the MemoryPersister
	return persistence.NewMemoryPersister(), nil
}

// PersisterFromSqlx is a helper function to return an interface{} given an
// initialized sqlx.DB struct
func PersisterFromSqlx(db *sqlx.DB) (interface{}, error) {
	persister, err := persistence.NewPostgresPersisterFromSqlx(db)
	if err != nil {
		return nil, err
	}
	err = initTables(persister)
	if err != nil {
		return nil, err
	}
	return persister, nil
}

// StakeLedger is a helper function to return the stake ledger for the config.
// Initial mints are credited and approved to escrow.
func StakeLedger(config *utils.RegistryConfig) (*ledger.MemoryLedger, error) {
	if config.LedgerType != utils.LedgerTypeMemory {
		return nil, fmt.Errorf("Unsupported ledger type: %v", config.LedgerTypeName)
	}
	escrow := config.EscrowAddress()
	memLedger := ledger.NewMemoryLedger(escrow)
	mints, err := config.InitialMints()
	if err != nil {
		return nil, err
	}
	for addr, amount := range mints {
		err = memLedger.Mint(addr, amount)
		if err != nil {
			return nil, fmt.Errorf("Error minting for %v: %v", addr.Hex(), err)
		}
		err = memLedger.Approve(addr, escrow, amount)
		if err != nil {
			return nil, fmt.Errorf("Error approving for %v: %v", addr.Hex(), err)
		}
		log.Infof("Minted %v to %v", amount, addr.Hex())
	}
	return memLedger, nil
}

// RegistryConfig is a helper function to return the registry config from the
// registry environment config
func RegistryConfig(config *utils.RegistryConfig) (*registry.Config, error) {
	minDeposit, err := config.MinDepositBig()
	if err != nil {
		return nil, err
	}
	return &registry.Config{
		Name:              config.Name,
		MinDeposit:        minDeposit,
		ApplyStageLength:  config.ApplyStageLength,
		CommitStageLength: config.CommitStageLength,
	}, nil
}

func postgresPersister(config *utils.RegistryConfig) (*persistence.PostgresPersister, error) {
	persister, err := persistence.NewPostgresPersister(
		config.PersisterPostgresAddress,
		config.PersisterPostgresPort,
		config.PersisterPostgresUser,
		config.PersisterPostgresPw,
		config.PersisterPostgresDbname,
		config.PersisterPostgresMaxConns,
		config.PersisterPostgresMaxIdle,
		config.PersisterPostgresConnLifetimeSec,
	)
	if err != nil {
		log.Errorf("Error connecting to Postgresql, stopping...; err: %v", err)
		return nil, err
	}
	err = initTables(persister)
	if err != nil {
		return nil, err
	}
	return persister, nil
}

func initTables(persister *persistence.PostgresPersister) error {
	err := persister.CreateTables()
	if err != nil {
		log.Errorf("Error creating tables, stopping...; err: %v", err)
		return err
	}
	err = persister.CreateIndices()
	if err != nil {
		log.Errorf("Error creating indices, stopping...; err: %v", err)
		return err
	}
	return nil
}
