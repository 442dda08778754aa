package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammcore/internal/model"
)

// Export writes the pool fields and share table into st.
func (l *Ledger) Export(st *model.PoolState) {
	st.ReserveX = l.pool.ReserveX.Dec()
	st.ReserveY = l.pool.ReserveY.Dec()
	st.TotalShares = l.pool.TotalShares.Dec()
	st.TotalFeesX = l.pool.TotalFeesX.Dec()
	st.TotalFeesY = l.pool.TotalFeesY.Dec()
	st.FeeRecipient = ""
	if l.pool.initialized {
		st.FeeRecipient = l.pool.feeRecipient.Hex()
	}

	st.Shares = make(map[string]string, len(l.shares))
	for _, addr := range l.Holders() {
		st.Shares[addr.Hex()] = l.shares[addr].Dec()
	}
}

// Import rebuilds a ledger from persisted state and verifies its invariants.
func Import(st model.PoolState) (*Ledger, error) {
	l := New()

	fields := []struct {
		name string
		in   string
		out  *uint256.Int
	}{
		{"reserve_x", st.ReserveX, &l.pool.ReserveX},
		{"reserve_y", st.ReserveY, &l.pool.ReserveY},
		{"total_shares", st.TotalShares, &l.pool.TotalShares},
		{"total_fees_x", st.TotalFeesX, &l.pool.TotalFeesX},
		{"total_fees_y", st.TotalFeesY, &l.pool.TotalFeesY},
	}
	for _, f := range fields {
		v, err := parseAmount(f.in)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
		f.out.Set(v)
	}

	if st.FeeRecipient != "" {
		if !common.IsHexAddress(st.FeeRecipient) {
			return nil, fmt.Errorf("invalid fee recipient: %s", st.FeeRecipient)
		}
		l.pool.feeRecipient = common.HexToAddress(st.FeeRecipient)
		l.pool.initialized = true
	}

	for holder, amount := range st.Shares {
		if !common.IsHexAddress(holder) {
			return nil, fmt.Errorf("invalid share holder: %s", holder)
		}
		v, err := parseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("parse shares of %s: %w", holder, err)
		}
		l.shares[common.HexToAddress(holder)] = v
	}

	if err := l.Check(); err != nil {
		return nil, fmt.Errorf("check imported state: %w", err)
	}
	return l, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	return uint256.FromDecimal(s)
}
