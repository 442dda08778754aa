package model

// PoolState is the persisted form of a pool, its share table, and the paper
// bank balances. Amounts are base-10 strings.
type PoolState struct {
	Name         string                       `json:"name"`
	TokenX       string                       `json:"token_x"`
	TokenY       string                       `json:"token_y"`
	Custody      string                       `json:"custody"`
	ReserveX     string                       `json:"reserve_x"`
	ReserveY     string                       `json:"reserve_y"`
	TotalShares  string                       `json:"total_shares"`
	TotalFeesX   string                       `json:"total_fees_x"`
	TotalFeesY   string                       `json:"total_fees_y"`
	FeeRecipient string                       `json:"fee_recipient,omitempty"`
	Shares       map[string]string            `json:"shares"`
	Balances     map[string]map[string]string `json:"balances"`
	Height       uint64                       `json:"height"`
	Sequence     uint64                       `json:"sequence"`
	UpdatedAt    string                       `json:"updated_at"`
}

// PoolMeta describes the static configuration of a pool.
type PoolMeta struct {
	Name      string `json:"name"`
	TokenX    string `json:"token_x"`
	TokenY    string `json:"token_y"`
	FeeBps    uint32 `json:"fee_bps"`
	DecimalsX uint8  `json:"decimals_x"`
	DecimalsY uint8  `json:"decimals_y"`
}
