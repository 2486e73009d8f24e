package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAcquireConsumesSlots(t *testing.T) {
	l := New(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if got := l.Available(); got != 0 {
		t.Fatalf("expected 0 available, got %d", got)
	}
}

func TestAcquireBlocksWhenExhausted(t *testing.T) {
	l := New(1)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(blocked); err == nil {
		t.Fatalf("expected second acquire to block until deadline")
	}
}

func TestReleaseReturnsSlotAfterDelay(t *testing.T) {
	l := New(1)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	l.Release()

	// Zero remaining means the slot comes back after a full second.
	reacquire, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := l.Acquire(reacquire); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
}

func TestNewClampsToOne(t *testing.T) {
	l := New(0)
	if got := l.Available(); got != 1 {
		t.Fatalf("expected clamp to 1 slot, got %d", got)
	}
}
