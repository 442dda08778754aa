package model

// SwapEventData is the decoded Swap event payload.
type SwapEventData struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	XToY      bool   `json:"x_to_y"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Fee       string `json:"fee"`
}

// LiquidityEventData is the decoded payload shared by Initialized,
// LiquidityAdded, and LiquidityRemoved.
type LiquidityEventData struct {
	Provider string `json:"provider"`
	Shares   string `json:"shares"`
	AmountX  string `json:"amount_x"`
	AmountY  string `json:"amount_y"`
}
