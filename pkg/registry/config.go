package registry // import "github.com/joincivil/civil-tcr-registry/pkg/registry"

import (
	"math/big"

	"github.com/pkg/errors"
)

// Config is the registry configuration, fixed at construction
type Config struct {
	Name              string
	MinDeposit        *big.Int
	ApplyStageLength  int64
	CommitStageLength int64
}

// Validate checks the config values are usable
func (c *Config) Validate() error {
	if c.MinDeposit == nil || c.MinDeposit.Sign() <= 0 {
		return errors.New("min deposit must be set and positive")
	}
	if c.ApplyStageLength < 0 {
		return errors.Errorf("apply stage length must not be negative: %v", c.ApplyStageLength)
	}
	if c.CommitStageLength <= 0 {
		return errors.Errorf("commit stage length must be positive: %v", c.CommitStageLength)
	}
	return nil
}

// Copy returns a deep copy of the config
func (c *Config) Copy() *Config {
	cp := *c
	if c.MinDeposit != nil {
		cp.MinDeposit = new(big.Int).Set(c.MinDeposit)
	}
	return &cp
}
