package reservations

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/database"
	"github.com/rujal408/library-management/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), cleanup
}

func pending(itemID, borrowerID uint, at time.Time) *entities.Reservation {
	return &entities.Reservation{
		ItemID:          itemID,
		BorrowerID:      borrowerID,
		ReservationDate: at,
		ExpiryDate:      at.Add(7 * 24 * time.Hour),
		Status:          entities.ReservationStatusPending,
	}
}

func TestQueueOrdering(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	second := pending(1, 10, base.Add(time.Hour))
	require.NoError(t, repo.Create(second))
	first := pending(1, 20, base)
	require.NoError(t, repo.Create(first))
	otherItem := pending(2, 30, base.Add(-time.Hour))
	require.NoError(t, repo.Create(otherItem))

	t.Run("head is the earliest reservation date", func(t *testing.T) {
		head, err := repo.NextPending(1)
		require.NoError(t, err)
		assert.Equal(t, first.ID, head.ID)
	})

	t.Run("ties break by insertion order", func(t *testing.T) {
		tieA := pending(3, 10, base)
		require.NoError(t, repo.Create(tieA))
		tieB := pending(3, 20, base)
		require.NoError(t, repo.Create(tieB))

		head, err := repo.NextPending(3)
		require.NoError(t, err)
		assert.Equal(t, tieA.ID, head.ID)

		ahead, err := repo.CountPendingAhead(tieB)
		require.NoError(t, err)
		assert.EqualValues(t, 1, ahead)
	})

	t.Run("counting ahead ignores other items and settled holds", func(t *testing.T) {
		ahead, err := repo.CountPendingAhead(second)
		require.NoError(t, err)
		assert.EqualValues(t, 1, ahead)

		first.Status = entities.ReservationStatusCancelled
		require.NoError(t, repo.Save(first))

		ahead, err = repo.CountPendingAhead(second)
		require.NoError(t, err)
		assert.EqualValues(t, 0, ahead)
	})

	t.Run("empty queue yields not found", func(t *testing.T) {
		_, err := repo.NextPending(99)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestStalePickups(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	makeReady := func(itemID uint, deadline time.Time) *entities.Reservation {
		r := pending(itemID, itemID, now.Add(-10*24*time.Hour))
		r.Status = entities.ReservationStatusReadyForPickup
		r.PickupDeadline = &deadline
		require.NoError(t, repo.Create(r))
		return r
	}

	stale := makeReady(1, now.Add(-time.Hour))
	makeReady(2, now.Add(time.Hour))
	require.NoError(t, repo.Create(pending(3, 3, now)))

	list, err := repo.ListStalePickups(now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, stale.ID, list[0].ID)

	ready, err := repo.ListReadyForPickup()
	require.NoError(t, err)
	assert.Len(t, ready, 2)
}

func TestHasActiveHold(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	hold := pending(1, 10, now)
	require.NoError(t, repo.Create(hold))

	held, err := repo.HasActiveHold(1, 10)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = repo.HasActiveHold(1, 11)
	require.NoError(t, err)
	assert.False(t, held)

	hold.Status = entities.ReservationStatusExpired
	require.NoError(t, repo.Save(hold))

	held, err = repo.HasActiveHold(1, 10)
	require.NoError(t, err)
	assert.False(t, held)
}
