// Package clock provides the monotonic height signal that operation deadlines
// are checked against.
package clock

import (
	"context"
	"sync/atomic"
)

// Source reports the current height of an external monotonic counter.
type Source interface {
	Height(ctx context.Context) (uint64, error)
}

// Manual is a Source whose height is set by its owner.
type Manual struct {
	height atomic.Uint64
}

var _ Source = (*Manual)(nil)

// NewManual returns a Manual clock starting at height.
func NewManual(height uint64) *Manual {
	m := &Manual{}
	m.height.Store(height)
	return m
}

// Height returns the current height.
func (m *Manual) Height(context.Context) (uint64, error) {
	return m.height.Load(), nil
}

// Advance moves the height forward by n and returns the new height.
func (m *Manual) Advance(n uint64) uint64 {
	return m.height.Add(n)
}

// Set moves the height to h. Heights never go backwards; a lower h is ignored.
func (m *Manual) Set(h uint64) {
	for {
		cur := m.height.Load()
		if h <= cur || m.height.CompareAndSwap(cur, h) {
			return
		}
	}
}
