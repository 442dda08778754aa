package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammcore/internal/amm"
	"ammcore/internal/stats"
)

type swapView struct {
	AmountIn         string `json:"amount_in"`
	AmountOut        string `json:"amount_out"`
	Fee              string `json:"fee"`
	AmountOutDisplay string `json:"amount_out_display"`
	Recipient        string `json:"recipient,omitempty"`
}

type liquidityView struct {
	Shares   string `json:"shares"`
	AmountX  string `json:"amount_x"`
	AmountY  string `json:"amount_y"`
	DisplayX string `json:"amount_x_display"`
	DisplayY string `json:"amount_y_display"`
}

type positionView struct {
	Account string `json:"account"`
	Shares  string `json:"shares"`
	AmountX string `json:"amount_x"`
	AmountY string `json:"amount_y"`
}

type infoView struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	TokenX       string            `json:"token_x"`
	TokenY       string            `json:"token_y"`
	Custody      string            `json:"custody"`
	FeeRate      string            `json:"fee_rate"`
	FeeRecipient string            `json:"fee_recipient,omitempty"`
	Initialized  bool              `json:"initialized"`
	Sequence     uint64            `json:"sequence"`
	ReserveX     string            `json:"reserve_x"`
	ReserveY     string            `json:"reserve_y"`
	DisplayX     string            `json:"reserve_x_display"`
	DisplayY     string            `json:"reserve_y_display"`
	TotalShares  string            `json:"total_shares"`
	TotalFeesX   string            `json:"total_fees_x"`
	TotalFeesY   string            `json:"total_fees_y"`
	Positions    []positionView    `json:"positions,omitempty"`
	BalancesX    map[string]string `json:"balances_x,omitempty"`
	BalancesY    map[string]string `json:"balances_y,omitempty"`
}

type fundView struct {
	Token    string            `json:"token"`
	Balances map[string]string `json:"balances"`
}

// newSwapView renders a swap result; outDecimals belongs to the output token.
func newSwapView(res amm.SwapResult, outDecimals uint8) swapView {
	v := swapView{
		AmountIn:         res.AmountIn.Dec(),
		AmountOut:        res.AmountOut.Dec(),
		Fee:              res.Fee.Dec(),
		AmountOutDisplay: stats.FormatAmount(res.AmountOut, outDecimals),
	}
	if res.Recipient != (common.Address{}) {
		v.Recipient = res.Recipient.Hex()
	}
	return v
}

func newLiquidityView(res amm.LiquidityResult, decimalsX, decimalsY uint8) liquidityView {
	return liquidityView{
		Shares:   dec(res.Shares),
		AmountX:  dec(res.X),
		AmountY:  dec(res.Y),
		DisplayX: stats.FormatAmount(res.X, decimalsX),
		DisplayY: stats.FormatAmount(res.Y, decimalsY),
	}
}

func dec(v *uint256.Int) string {
	return orZero(v).Dec()
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func printJSON(w io.Writer, value interface{}) error {
	if value == nil {
		return nil
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
