package chain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ammcore/internal/clock"
)

// HeightSource serves the latest block number as the deadline clock.
type HeightSource struct {
	client     *Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

var _ clock.Source = (*HeightSource)(nil)

// NewHeightSource builds a HeightSource that retries failed reads with
// doubling backoff.
func NewHeightSource(client *Client, maxRetries int, backoff time.Duration, logger *zap.Logger) *HeightSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeightSource{
		client:     client,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

// Height returns the latest block number.
func (h *HeightSource) Height(ctx context.Context) (uint64, error) {
	if h.client == nil {
		return 0, fmt.Errorf("chain client is nil")
	}
	var height uint64
	err := withRetry(ctx, h.maxRetries, h.backoff, func(ctx context.Context) error {
		var err error
		height, err = h.client.LatestBlockNumber(ctx)
		if err != nil {
			h.logger.Warn("block number fetch failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("latest block: %w", err)
	}
	return height, nil
}
