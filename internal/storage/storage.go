package storage

import (
	"context"

	"ammcore/internal/model"
)

// EventSink receives the log records of committed units of work.
type EventSink interface {
	PutLogBatch(ctx context.Context, logs []model.LogRecord) error
}

// StateStore persists the pool state between runs.
type StateStore interface {
	// Load returns the stored state and false when nothing was saved yet.
	Load(ctx context.Context) (model.PoolState, bool, error)
	Save(ctx context.Context, st model.PoolState) error
}
