package transfer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type balanceKey struct {
	token   common.Address
	account common.Address
}

type journalEntry struct {
	key  balanceKey
	prev uint256.Int
}

// Bank is an in-memory multi-token balance table. Every balance change is
// journaled so it can be reverted to a snapshot.
type Bank struct {
	mu       sync.Mutex
	balances map[balanceKey]*uint256.Int
	journal  []journalEntry
}

var (
	_ Vault     = (*Bank)(nil)
	_ Compactor = (*Bank)(nil)
)

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[balanceKey]*uint256.Int)}
}

// Transfer moves funds between accounts. Self-transfers only validate funds.
func (b *Bank) Transfer(ctx context.Context, t Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.Amount == nil {
		return fmt.Errorf("%w: nil amount", ErrInvalidTransfer)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	from := balanceKey{token: t.Token, account: t.From}
	if b.balanceLocked(from).Lt(t.Amount) {
		return fmt.Errorf("%w: %s has %s of %s, needs %s",
			ErrInsufficientFunds, t.From.Hex(), b.balanceLocked(from).Dec(), t.Token.Hex(), t.Amount.Dec())
	}
	if t.From == t.To {
		return nil
	}

	to := balanceKey{token: t.Token, account: t.To}
	credited, overflow := new(uint256.Int).AddOverflow(b.balanceLocked(to), t.Amount)
	if overflow {
		return fmt.Errorf("%w: balance overflow for %s", ErrInvalidTransfer, t.To.Hex())
	}

	b.setLocked(from, new(uint256.Int).Sub(b.balanceLocked(from), t.Amount))
	b.setLocked(to, credited)
	return nil
}

// Mint credits amount of token to account out of thin air.
func (b *Bank) Mint(token, account common.Address, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := balanceKey{token: token, account: account}
	credited, overflow := new(uint256.Int).AddOverflow(b.balanceLocked(key), amount)
	if overflow {
		return fmt.Errorf("%w: balance overflow for %s", ErrInvalidTransfer, account.Hex())
	}
	b.setLocked(key, credited)
	return nil
}

// BalanceOf returns the balance of account in token.
func (b *Bank) BalanceOf(token, account common.Address) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(uint256.Int).Set(b.balanceLocked(balanceKey{token: token, account: account}))
}

// Snapshot returns an identifier for the current journal position.
func (b *Bank) Snapshot() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.journal)
}

// RevertToSnapshot undoes every balance change made after id.
func (b *Bank) RevertToSnapshot(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id < 0 || id > len(b.journal) {
		panic(fmt.Sprintf("bank: snapshot %d out of range [0, %d]", id, len(b.journal)))
	}
	for i := len(b.journal) - 1; i >= id; i-- {
		entry := b.journal[i]
		prev := entry.prev
		b.balances[entry.key] = &prev
	}
	b.journal = b.journal[:id]
}

// DiscardJournal drops the journal once no snapshot can be reverted to.
func (b *Bank) DiscardJournal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journal = b.journal[:0]
}

// Export returns non-zero balances keyed by token hex then account hex.
func (b *Bank) Export() map[string]map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]balanceKey, 0, len(b.balances))
	for key, bal := range b.balances {
		if bal.IsZero() {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := keys[i].token.Cmp(keys[j].token); c != 0 {
			return c < 0
		}
		return keys[i].account.Cmp(keys[j].account) < 0
	})

	out := make(map[string]map[string]string)
	for _, key := range keys {
		token := key.token.Hex()
		if out[token] == nil {
			out[token] = make(map[string]string)
		}
		out[token][key.account.Hex()] = b.balances[key].Dec()
	}
	return out
}

// ImportBank rebuilds a bank from exported balances.
func ImportBank(balances map[string]map[string]string) (*Bank, error) {
	b := NewBank()
	for token, accounts := range balances {
		if !common.IsHexAddress(token) {
			return nil, fmt.Errorf("invalid token address: %s", token)
		}
		for account, amount := range accounts {
			if !common.IsHexAddress(account) {
				return nil, fmt.Errorf("invalid account address: %s", account)
			}
			v, err := uint256.FromDecimal(amount)
			if err != nil {
				return nil, fmt.Errorf("parse balance of %s: %w", account, err)
			}
			b.balances[balanceKey{token: common.HexToAddress(token), account: common.HexToAddress(account)}] = v
		}
	}
	return b, nil
}

func (b *Bank) balanceLocked(key balanceKey) *uint256.Int {
	if bal, ok := b.balances[key]; ok {
		return bal
	}
	return new(uint256.Int)
}

func (b *Bank) setLocked(key balanceKey, v *uint256.Int) {
	b.journal = append(b.journal, journalEntry{key: key, prev: *b.balanceLocked(key)})
	b.balances[key] = v
}
