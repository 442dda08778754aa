package model

// WindowStats stores aggregated activity for a block-height window.
type WindowStats struct {
	PoolName       string `json:"pool_name"`
	WindowSize     uint64 `json:"window_size"`
	WindowStart    uint64 `json:"window_start"`
	WindowEnd      uint64 `json:"window_end"`
	SwapCount      uint64 `json:"swap_count"`
	VolumeX        string `json:"volume_x"`
	VolumeY        string `json:"volume_y"`
	FeeX           string `json:"fee_x"`
	FeeY           string `json:"fee_y"`
	AddCount       uint64 `json:"add_count"`
	RemoveCount    uint64 `json:"remove_count"`
	SharesMinted   string `json:"shares_minted"`
	SharesBurned   string `json:"shares_burned"`
	VolumeXDisplay string `json:"volume_x_display,omitempty"`
	VolumeYDisplay string `json:"volume_y_display,omitempty"`
}
