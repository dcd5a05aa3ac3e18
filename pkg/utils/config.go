// Package utils contains various common utils separate by utility types
package utils

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron"
)

// PersisterType is the type of persister to use.
type PersisterType int

const (
	// PersisterTypeInvalid is an invalid persister value
	PersisterTypeInvalid PersisterType = iota

	// PersisterTypeMemory is a persister that keeps all state in memory
	PersisterTypeMemory

	// PersisterTypePostgresql is a persister that uses PostgreSQL as the backend
	PersisterTypePostgresql
)

var (
	// PersisterNameToType maps valid persister names to the types above
	PersisterNameToType = map[string]PersisterType{
		"memory":     PersisterTypeMemory,
		"postgresql": PersisterTypePostgresql,
	}
)

// LedgerType is the type of stake ledger to use.
type LedgerType int

const (
	// LedgerTypeInvalid is an invalid ledger value
	LedgerTypeInvalid LedgerType = iota

	// LedgerTypeMemory is an in process token ledger
	LedgerTypeMemory
)

var (
	// LedgerNameToType maps valid ledger names to the types above
	LedgerNameToType = map[string]LedgerType{
		"memory": LedgerTypeMemory,
	}
)

const (
	envVarPrefix = "registry"

	usageListFormat = `The registry is configured via environment vars only. The following environment variables can be used:
{{range .}}
{{usage_key .}}
  description: {{usage_description .}}
  type:        {{usage_type .}}
  default:     {{usage_default .}}
  required:    {{usage_required .}}
{{end}}
`
)

// CronParser parses the 5 field cron specs used in the config
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NOTE(PN): After envconfig populates RegistryConfig with the environment vars,
// there is nothing preventing the RegistryConfig fields from being mutated.

// RegistryConfig is the master config for the registry derived from environment
// variables.
type RegistryConfig struct {
	Name              string `envconfig:"name" required:"true" desc:"Name of the registry"`
	MinDeposit        string `split_words:"true" required:"true" desc:"Minimum deposit to apply, as a decimal integer"`
	ApplyStageLength  int64  `split_words:"true" required:"true" desc:"Length of the apply stage in seconds"`
	CommitStageLength int64  `split_words:"true" required:"true" desc:"Length of the commit stage in seconds"`

	HTTPAddress string `envconfig:"http_address" default:":8080" desc:"Address the API listens on"`
	CronConfig  string `envconfig:"cron_config" default:"* * * * *" desc:"Cron config string * * * * * for housekeeping"`

	PersisterType                    PersisterType `ignored:"true"`
	PersisterTypeName                string        `split_words:"true" required:"true" desc:"Sets the persister type to use"`
	PersisterPostgresAddress         string        `split_words:"true" desc:"If persister type is Postgresql, sets the address"`
	PersisterPostgresPort            int           `split_words:"true" desc:"If persister type is Postgresql, sets the port"`
	PersisterPostgresDbname          string        `split_words:"true" desc:"If persister type is Postgresql, sets the database name"`
	PersisterPostgresUser            string        `split_words:"true" desc:"If persister type is Postgresql, sets the database user"`
	PersisterPostgresPw              string        `split_words:"true" desc:"If persister type is Postgresql, sets the database password"`
	PersisterPostgresMaxConns        int           `split_words:"true" default:"10" desc:"If persister type is Postgresql, sets the max open connections"`
	PersisterPostgresMaxIdle         int           `split_words:"true" default:"5" desc:"If persister type is Postgresql, sets the max idle connections"`
	PersisterPostgresConnLifetimeSec int           `split_words:"true" default:"300" desc:"If persister type is Postgresql, sets the max connection lifetime"`

	LedgerType          LedgerType        `ignored:"true"`
	LedgerTypeName      string            `split_words:"true" default:"memory" desc:"Sets the stake ledger type to use"`
	LedgerEscrowAddress string            `split_words:"true" required:"true" desc:"Address holding registry escrow"`
	LedgerInitialMints  map[string]string `split_words:"true" desc:"Memory ledger balances to mint at start, address:amount pairs. Minted balances are approved to escrow"`

	PubSubProjectID       string `split_words:"true" desc:"Sets the GPubSub project ID. If not set, events are not published"`
	PubSubEventsTopicName string `split_words:"true" desc:"Sets the GPubSub topic name for governance events"`
	PubSubCredentialsFile string `split_words:"true" desc:"Path to a GCP credentials file, uses default credentials if not set"`
}

// OutputUsage prints the usage string to os.Stdout
func (c *RegistryConfig) OutputUsage() {
	tabs := tabwriter.NewWriter(os.Stdout, 1, 0, 4, ' ', 0)
	_ = envconfig.Usagef(envVarPrefix, c, tabs, usageListFormat) // nolint: gosec
	_ = tabs.Flush()                                             // nolint: gosec
}

// PopulateFromEnv processes the environment vars, populates RegistryConfig
// with the respective values, and validates the values.
func (c *RegistryConfig) PopulateFromEnv() error {
	err := envconfig.Process(envVarPrefix, c)
	if err != nil {
		return err
	}

	err = c.validateCronConfig()
	if err != nil {
		return err
	}

	err = c.validateStages()
	if err != nil {
		return err
	}

	err = c.populatePersisterType()
	if err != nil {
		return err
	}

	err = c.validatePersister()
	if err != nil {
		return err
	}

	err = c.populateLedgerType()
	if err != nil {
		return err
	}

	err = c.validateLedger()
	if err != nil {
		return err
	}

	return c.validatePubSub()
}

// MinDepositBig returns the min deposit as a big.Int
func (c *RegistryConfig) MinDepositBig() (*big.Int, error) {
	return parseAmount(c.MinDeposit)
}

// EscrowAddress returns the escrow address
func (c *RegistryConfig) EscrowAddress() common.Address {
	return common.HexToAddress(c.LedgerEscrowAddress)
}

// InitialMints returns the parsed initial ledger balances
func (c *RegistryConfig) InitialMints() (map[common.Address]*big.Int, error) {
	mints := make(map[common.Address]*big.Int, len(c.LedgerInitialMints))
	for addr, amountStr := range c.LedgerInitialMints {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("Invalid initial mint address: '%v'", addr)
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("Invalid initial mint for %v: %v", addr, err)
		}
		mints[common.HexToAddress(addr)] = amount
	}
	return mints, nil
}

// PubSubEnabled returns true if governance events should be published
func (c *RegistryConfig) PubSubEnabled() bool {
	return c.PubSubProjectID != ""
}

func (c *RegistryConfig) validateCronConfig() error {
	_, err := CronParser.Parse(c.CronConfig)
	if err != nil {
		return fmt.Errorf("Invalid cron config: '%v'", c.CronConfig)
	}
	return nil
}

func (c *RegistryConfig) validateStages() error {
	minDeposit, err := c.MinDepositBig()
	if err != nil || minDeposit.Sign() == 0 {
		return fmt.Errorf("Invalid min deposit: '%v'", c.MinDeposit)
	}
	if c.ApplyStageLength < 0 {
		return fmt.Errorf("Invalid apply stage length: %v", c.ApplyStageLength)
	}
	if c.CommitStageLength <= 0 {
		return fmt.Errorf("Invalid commit stage length: %v", c.CommitStageLength)
	}
	return nil
}

func (c *RegistryConfig) validatePersister() error {
	var err error
	if c.PersisterType == PersisterTypePostgresql {
		err = c.validatePostgresqlPersister()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *RegistryConfig) validatePostgresqlPersister() error {
	if c.PersisterPostgresAddress == "" {
		return errors.New("Postgresql address required")
	}
	if c.PersisterPostgresPort == 0 {
		return errors.New("Postgresql port required")
	}
	if c.PersisterPostgresDbname == "" {
		return errors.New("Postgresql db name required")
	}
	return nil
}

func (c *RegistryConfig) populatePersisterType() error {
	var err error
	c.PersisterType, err = PersisterTypeFromName(c.PersisterTypeName)
	return err
}

func (c *RegistryConfig) populateLedgerType() error {
	ledgerType, ok := LedgerNameToType[c.LedgerTypeName]
	if !ok {
		return fmt.Errorf("Invalid ledger value: %v; valid types %v", c.LedgerTypeName,
			ledgerNames())
	}
	c.LedgerType = ledgerType
	return nil
}

func (c *RegistryConfig) validateLedger() error {
	if !common.IsHexAddress(c.LedgerEscrowAddress) {
		return fmt.Errorf("Invalid escrow address: '%v'", c.LedgerEscrowAddress)
	}
	_, err := c.InitialMints()
	return err
}

func (c *RegistryConfig) validatePubSub() error {
	if c.PubSubProjectID != "" && c.PubSubEventsTopicName == "" {
		return errors.New("Pubsub topic name should be specified")
	}
	return nil
}

// PersisterTypeFromName returns the correct persisterType from the string name
func PersisterTypeFromName(typeStr string) (PersisterType, error) {
	pType, ok := PersisterNameToType[typeStr]
	if !ok {
		validNames := make([]string, len(PersisterNameToType))
		index := 0
		for name := range PersisterNameToType {
			validNames[index] = name
			index++
		}
		sort.Strings(validNames)
		return PersisterTypeInvalid,
			fmt.Errorf("Invalid persister value: %v; valid types %v", typeStr, validNames)
	}
	return pType, nil
}

func ledgerNames() []string {
	names := make([]string, 0, len(LedgerNameToType))
	for name := range LedgerNameToType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseAmount(amountStr string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok {
		return nil, fmt.Errorf("Not a decimal integer: '%v'", amountStr)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("Amount is negative: '%v'", amountStr)
	}
	return amount, nil
}
