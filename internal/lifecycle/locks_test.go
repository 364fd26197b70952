package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemLocksAcquireRelease(t *testing.T) {
	locks := newItemLocks()
	ctx := context.Background()

	require.NoError(t, locks.Acquire(ctx, 1, 10*time.Millisecond))
	locks.Release(1)

	// Reacquire after release succeeds immediately.
	require.NoError(t, locks.Acquire(ctx, 1, 10*time.Millisecond))
	locks.Release(1)
}

func TestItemLocksBusy(t *testing.T) {
	locks := newItemLocks()
	ctx := context.Background()

	require.NoError(t, locks.Acquire(ctx, 1, 10*time.Millisecond))
	defer locks.Release(1)

	err := locks.Acquire(ctx, 1, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestItemLocksIndependentItems(t *testing.T) {
	locks := newItemLocks()
	ctx := context.Background()

	require.NoError(t, locks.Acquire(ctx, 1, 10*time.Millisecond))
	defer locks.Release(1)

	// A different item is unaffected by item 1's lock.
	require.NoError(t, locks.Acquire(ctx, 2, 10*time.Millisecond))
	locks.Release(2)
}

func TestItemLocksContextCancel(t *testing.T) {
	locks := newItemLocks()

	require.NoError(t, locks.Acquire(context.Background(), 1, time.Millisecond))
	defer locks.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := locks.Acquire(ctx, 1, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestItemLocksWaiterGetsLockOnRelease(t *testing.T) {
	locks := newItemLocks()
	ctx := context.Background()

	require.NoError(t, locks.Acquire(ctx, 1, 10*time.Millisecond))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, locks.Acquire(ctx, 1, time.Second))
		locks.Release(1)
	}()

	time.Sleep(10 * time.Millisecond)
	locks.Release(1)
	wg.Wait()
}
