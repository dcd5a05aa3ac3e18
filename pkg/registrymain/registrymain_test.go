package registrymain_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-tcr-registry/pkg/model"
	"github.com/joincivil/civil-tcr-registry/pkg/registrymain"
	"github.com/joincivil/civil-tcr-registry/pkg/utils"
)

const (
	owner   = "0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d"
	startTs = int64(1257894000)
)

func testConfig() *utils.RegistryConfig {
	return &utils.RegistryConfig{
		Name:                "TestRegistry",
		MinDeposit:          "100",
		ApplyStageLength:    100,
		CommitStageLength:   60,
		CronConfig:          "*/5 * * * *",
		PersisterType:       utils.PersisterTypeMemory,
		PersisterTypeName:   "memory",
		LedgerType:          utils.LedgerTypeMemory,
		LedgerTypeName:      "memory",
		LedgerEscrowAddress: "0x0000000000000000000000000000000000e5c70",
		LedgerInitialMints:  map[string]string{owner: "1000"},
	}
}

func TestInitAndHousekeeping(t *testing.T) {
	initialized, err := registrymain.Init(testConfig())
	if err != nil {
		t.Fatalf("Should have initialized: err: %v", err)
	}
	if initialized.Publisher != nil {
		t.Errorf("Publisher should be nil without a project id")
	}
	initialized.Recorder.Start()

	key := model.ListingKeyFromName("DemoListing")
	err = initialized.Registry.Propose(common.HexToAddress(owner), key, big.NewInt(100),
		"DemoListing", startTs)
	if err != nil {
		t.Fatalf("Should have proposed with the minted balance: err: %v", err)
	}

	if registrymain.RunHousekeeping(initialized.Registry, startTs+99) != 0 {
		t.Errorf("Should not promote during the apply stage")
	}
	if registrymain.RunHousekeeping(initialized.Registry, startTs+100) != 1 {
		t.Errorf("Should have promoted the elapsed application")
	}
	listing, err := initialized.Registry.GetListingDetails(key)
	if err != nil {
		t.Fatalf("Should have retrieved listing: err: %v", err)
	}
	if listing.Status() != model.ListingStatusWhitelisted {
		t.Errorf("Listing should be whitelisted: %v", listing.Status())
	}

	initialized.Close()
	govEvents, err := initialized.EventLog.GovernanceEventsByListingKey(key)
	if err != nil {
		t.Fatalf("Should have retrieved events: err: %v", err)
	}
	if len(govEvents) != 2 {
		t.Errorf("Should have recorded the application and whitelisting: %v", len(govEvents))
	}
}

func TestInitBadConfig(t *testing.T) {
	config := testConfig()
	config.MinDeposit = "lots"
	_, err := registrymain.Init(config)
	if err == nil {
		t.Errorf("Should have failed with a bad min deposit")
	}

	config = testConfig()
	config.LedgerType = utils.LedgerTypeInvalid
	_, err = registrymain.Init(config)
	if err == nil {
		t.Errorf("Should have failed with an invalid ledger")
	}
}

func TestHousekeepingCron(t *testing.T) {
	initialized, err := registrymain.Init(testConfig())
	if err != nil {
		t.Fatalf("Should have initialized: err: %v", err)
	}
	cr, err := registrymain.HousekeepingCron(testConfig(), initialized.Registry)
	if err != nil {
		t.Fatalf("Should have scheduled housekeeping: err: %v", err)
	}
	if len(cr.Entries()) != 1 {
		t.Errorf("Should have one cron entry: %v", len(cr.Entries()))
	}

	config := testConfig()
	config.CronConfig = "every minute"
	_, err = registrymain.HousekeepingCron(config, initialized.Registry)
	if err == nil {
		t.Errorf("Should have failed with a bad cron config")
	}
}
