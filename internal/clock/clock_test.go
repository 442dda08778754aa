package clock

import (
	"context"
	"testing"
)

func TestManualIsMonotonic(t *testing.T) {
	ctx := context.Background()
	m := NewManual(10)

	if h, _ := m.Height(ctx); h != 10 {
		t.Fatalf("height mismatch: %d", h)
	}
	if got := m.Advance(5); got != 15 {
		t.Fatalf("advance mismatch: %d", got)
	}

	m.Set(12)
	if h, _ := m.Height(ctx); h != 15 {
		t.Fatalf("height went backwards: %d", h)
	}

	m.Set(40)
	if h, _ := m.Height(ctx); h != 40 {
		t.Fatalf("set mismatch: %d", h)
	}
}
