// Package ledger contains the stake ledger adapter used to move tokens in and
// out of registry escrow
package ledger // import "github.com/joincivil/civil-tcr-registry/pkg/ledger"

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrInsufficientAllowance is returned when the registry is not approved
	// to pull the requested amount
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrInsufficientBalance is returned when the source does not hold the
	// requested amount
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for nil or negative amounts
	ErrInvalidAmount = errors.New("invalid amount")
)

// StakeLedger is the interface to the external token ledger. TransferIn and
// TransferOut move value between an account and registry escrow.
type StakeLedger interface {
	// TransferIn pulls amount from the account into escrow
	TransferIn(from common.Address, amount *big.Int) error
	// TransferOut pushes amount from escrow to the account
	TransferOut(to common.Address, amount *big.Int) error
	// BalanceOf returns the balance of the account
	BalanceOf(who common.Address) *big.Int
}
