package ledger // import "github.com/joincivil/civil-tcr-registry/pkg/ledger"

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
)

// NewMemoryLedger returns an in memory token ledger holding registry escrow
// at escrowAddress
func NewMemoryLedger(escrowAddress common.Address) *MemoryLedger {
	return &MemoryLedger{
		escrow:     escrowAddress,
		balances:   map[common.Address]*big.Int{},
		allowances: map[common.Address]map[common.Address]*big.Int{},
	}
}

// MemoryLedger is an ERC20 style token ledger kept in memory. Allowances are
// granted to spenders; the registry is the spender at the escrow address.
type MemoryLedger struct {
	mutex      sync.Mutex
	escrow     common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	supply     big.Int
}

// EscrowAddress returns the address holding the registry escrow
func (m *MemoryLedger) EscrowAddress() common.Address {
	return m.escrow
}

// Mint credits amount to the account
func (m *MemoryLedger) Mint(to common.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.credit(to, amount)
	m.supply.Add(&m.supply, amount)
	return nil
}

// TotalSupply returns the amount minted so far
func (m *MemoryLedger) TotalSupply() *big.Int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return new(big.Int).Set(&m.supply)
}

// Transfer moves amount between two accounts
func (m *MemoryLedger) Transfer(from common.Address, to common.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.move(from, to, amount)
}

// Approve sets the amount spender may pull from owner
func (m *MemoryLedger) Approve(owner common.Address, spender common.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	spenders, ok := m.allowances[owner]
	if !ok {
		spenders = map[common.Address]*big.Int{}
		m.allowances[owner] = spenders
	}
	spenders[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns the amount spender may still pull from owner
func (m *MemoryLedger) Allowance(owner common.Address, spender common.Address) *big.Int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return new(big.Int).Set(m.allowance(owner, spender))
}

// TransferIn pulls amount from the account into escrow, consuming allowance
// granted to the escrow address
func (m *MemoryLedger) TransferIn(from common.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	allowed := m.allowance(from, m.escrow)
	if allowed.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientAllowance, "%v allowed %v, need %v", from.Hex(),
			allowed, amount)
	}
	err := m.move(from, m.escrow, amount)
	if err != nil {
		return err
	}
	allowed.Sub(allowed, amount)
	return nil
}

// TransferOut pushes amount from escrow to the account
func (m *MemoryLedger) TransferOut(to common.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	err := m.move(m.escrow, to, amount)
	if err != nil {
		log.Errorf("Escrow could not cover transfer out to %v: err: %v", to.Hex(), err)
	}
	return err
}

// BalanceOf returns the balance of the account
func (m *MemoryLedger) BalanceOf(who common.Address) *big.Int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	bal, ok := m.balances[who]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

func (m *MemoryLedger) move(from common.Address, to common.Address, amount *big.Int) error {
	bal, ok := m.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v holds %v, need %v", from.Hex(),
			bal, amount)
	}
	bal.Sub(bal, amount)
	m.credit(to, amount)
	return nil
}

func (m *MemoryLedger) credit(to common.Address, amount *big.Int) {
	bal, ok := m.balances[to]
	if !ok {
		bal = new(big.Int)
		m.balances[to] = bal
	}
	bal.Add(bal, amount)
}

func (m *MemoryLedger) allowance(owner common.Address, spender common.Address) *big.Int {
	spenders, ok := m.allowances[owner]
	if !ok {
		spenders = map[common.Address]*big.Int{}
		m.allowances[owner] = spenders
	}
	allowed, ok := spenders[spender]
	if !ok {
		allowed = new(big.Int)
		spenders[spender] = allowed
	}
	return allowed
}

func validAmount(amount *big.Int) bool {
	return amount != nil && amount.Sign() >= 0
}
