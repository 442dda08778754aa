// Package ledger holds the pool aggregate and the per-account share table.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrRecipientSet is returned when the fee recipient is assigned twice.
	ErrRecipientSet = errors.New("fee recipient already set")
	// ErrInsufficientShares is returned when burning more shares than an account holds.
	ErrInsufficientShares = errors.New("insufficient share balance")
	// ErrReserveUnderflow is returned when a debit exceeds a reserve.
	ErrReserveUnderflow = errors.New("reserve underflow")
)

// Pool is the singleton pool state.
type Pool struct {
	ReserveX    uint256.Int
	ReserveY    uint256.Int
	TotalShares uint256.Int
	TotalFeesX  uint256.Int
	TotalFeesY  uint256.Int

	feeRecipient common.Address
	initialized  bool
}

// FeeRecipient returns the fee recipient and whether the pool has one yet.
// A pool without a fee recipient has never been initialized.
func (p Pool) FeeRecipient() (common.Address, bool) {
	return p.feeRecipient, p.initialized
}

// Initialized reports whether the pool has been initialized.
func (p Pool) Initialized() bool {
	return p.initialized
}

// Ledger owns the pool aggregate and share balances. It is not safe for
// concurrent use; callers serialize access per unit of work.
type Ledger struct {
	pool   Pool
	shares map[common.Address]*uint256.Int
}

// Snapshot is an immutable copy of a ledger used to roll back a unit of work.
type Snapshot struct {
	pool   Pool
	shares map[common.Address]uint256.Int
}

// New returns an uninitialized ledger.
func New() *Ledger {
	return &Ledger{shares: make(map[common.Address]*uint256.Int)}
}

// Pool returns a copy of the pool aggregate.
func (l *Ledger) Pool() Pool {
	return l.pool
}

// SetFeeRecipient assigns the fee recipient. It can happen exactly once.
func (l *Ledger) SetFeeRecipient(addr common.Address) error {
	if l.pool.initialized {
		return ErrRecipientSet
	}
	l.pool.feeRecipient = addr
	l.pool.initialized = true
	return nil
}

// ShareBalance returns the shares held by account; absent accounts hold zero.
func (l *Ledger) ShareBalance(account common.Address) *uint256.Int {
	if bal, ok := l.shares[account]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}

// Holders returns the accounts with a non-zero share balance, sorted.
func (l *Ledger) Holders() []common.Address {
	out := make([]common.Address, 0, len(l.shares))
	for addr, bal := range l.shares {
		if bal.IsZero() {
			continue
		}
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}

// Deposit credits both reserves.
func (l *Ledger) Deposit(x, y *uint256.Int) {
	l.pool.ReserveX.Add(&l.pool.ReserveX, x)
	l.pool.ReserveY.Add(&l.pool.ReserveY, y)
}

// Withdraw debits both reserves.
func (l *Ledger) Withdraw(x, y *uint256.Int) error {
	if x.Gt(&l.pool.ReserveX) || y.Gt(&l.pool.ReserveY) {
		return ErrReserveUnderflow
	}
	l.pool.ReserveX.Sub(&l.pool.ReserveX, x)
	l.pool.ReserveY.Sub(&l.pool.ReserveY, y)
	return nil
}

// RecordFees adds to the cumulative fee totals.
func (l *Ledger) RecordFees(x, y *uint256.Int) {
	l.pool.TotalFeesX.Add(&l.pool.TotalFeesX, x)
	l.pool.TotalFeesY.Add(&l.pool.TotalFeesY, y)
}

// Mint issues shares to account.
func (l *Ledger) Mint(account common.Address, shares *uint256.Int) {
	bal, ok := l.shares[account]
	if !ok {
		bal = new(uint256.Int)
		l.shares[account] = bal
	}
	bal.Add(bal, shares)
	l.pool.TotalShares.Add(&l.pool.TotalShares, shares)
}

// Burn retires shares held by account.
func (l *Ledger) Burn(account common.Address, shares *uint256.Int) error {
	bal, ok := l.shares[account]
	if !ok || bal.Lt(shares) {
		return ErrInsufficientShares
	}
	bal.Sub(bal, shares)
	l.pool.TotalShares.Sub(&l.pool.TotalShares, shares)
	return nil
}

// Snapshot captures the current state.
func (l *Ledger) Snapshot() Snapshot {
	shares := make(map[common.Address]uint256.Int, len(l.shares))
	for addr, bal := range l.shares {
		shares[addr] = *bal
	}
	return Snapshot{pool: l.pool, shares: shares}
}

// Restore replaces the current state with snap.
func (l *Ledger) Restore(snap Snapshot) {
	l.pool = snap.pool
	l.shares = make(map[common.Address]*uint256.Int, len(snap.shares))
	for addr, bal := range snap.shares {
		v := bal
		l.shares[addr] = &v
	}
}

// Check verifies the accounting invariants: share balances sum to the total
// supply, and an uninitialized pool holds nothing.
func (l *Ledger) Check() error {
	sum := new(uint256.Int)
	for addr, bal := range l.shares {
		if _, overflow := sum.AddOverflow(sum, bal); overflow {
			return fmt.Errorf("share sum overflow at %s", addr.Hex())
		}
	}
	if !sum.Eq(&l.pool.TotalShares) {
		return fmt.Errorf("share balances sum to %s, total shares %s", sum.Dec(), l.pool.TotalShares.Dec())
	}
	if !l.pool.initialized && (!l.pool.ReserveX.IsZero() || !l.pool.ReserveY.IsZero() || !sum.IsZero()) {
		return fmt.Errorf("uninitialized pool holds state")
	}
	return nil
}
