package lifecycle

import (
	"context"
	"sync"
	"time"
)

// itemLocks serializes lifecycle operations per catalog item. Operations on
// different items proceed fully in parallel; acquisition waits at most the
// configured bound and then fails with ErrBusy instead of hanging.
type itemLocks struct {
	mu    sync.Mutex
	locks map[uint]chan struct{}
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[uint]chan struct{})}
}

func (l *itemLocks) lockFor(itemID uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[itemID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[itemID] = ch
	}
	return ch
}

// Acquire takes the lock for itemID, waiting at most maxWait. Returns ErrBusy
// on timeout and the context error if ctx is cancelled first.
func (l *itemLocks) Acquire(ctx context.Context, itemID uint, maxWait time.Duration) error {
	ch := l.lockFor(itemID)

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the lock for itemID. Must only be called after a successful
// Acquire.
func (l *itemLocks) Release(itemID uint) {
	ch := l.lockFor(itemID)
	select {
	case <-ch:
	default:
	}
}
