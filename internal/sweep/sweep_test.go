package sweep

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rujal408/library-management/internal/database"
	itemsrepo "github.com/rujal408/library-management/internal/database/items"
	loansrepo "github.com/rujal408/library-management/internal/database/loans"
	membersrepo "github.com/rujal408/library-management/internal/database/members"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/lifecycle"
	"github.com/rujal408/library-management/internal/policy"
)

type sweepFixture struct {
	db          *database.Database
	sweeper     *Sweeper
	coordinator *lifecycle.Coordinator
	now         time.Time
}

func setupSweepTest(t *testing.T) (*sweepFixture, func()) {
	t.Helper()
	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	f := &sweepFixture{db: db, now: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)}
	f.coordinator = lifecycle.NewCoordinator(db.DB, policy.Default(), func() time.Time { return f.now }, nil, 100*time.Millisecond)
	f.sweeper = New(db.DB, f.coordinator)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return f, cleanup
}

func (f *sweepFixture) createMember(t *testing.T, name string) *entities.Member {
	t.Helper()
	member := &entities.Member{
		Name:   name,
		Email:  strings.ToLower(name) + "@example.com",
		Status: entities.MemberStatusActive,
	}
	require.NoError(t, membersrepo.NewRepository(f.db.DB).Create(member))
	return member
}

func (f *sweepFixture) createItem(t *testing.T, title string) *entities.CatalogItem {
	t.Helper()
	item := &entities.CatalogItem{Title: title, Author: "Author", Status: entities.ItemStatusAvailable}
	require.NoError(t, itemsrepo.NewRepository(f.db.DB).Create(item))
	return item
}

func eventKinds(events []entities.NotificationEvent) []string {
	kinds := make([]string, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, string(e.Kind))
	}
	return kinds
}

func TestSweepDueSoon(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupSweepTest(t)
	defer cleanup()

	member := f.createMember(t, "Alice")
	item := f.createItem(t, "Dracula")
	loan, err := f.coordinator.Checkout(ctx, item.ID, member.ID, nil)
	require.NoError(t, err)

	t.Run("no reminder far from the due date", func(t *testing.T) {
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		assert.Empty(t, result.Events)
	})

	t.Run("seven-day boundary fires once", func(t *testing.T) {
		f.now = loan.DueDate.Add(-7 * 24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, entities.NotificationDueSoon, result.Events[0].Kind)
		assert.Equal(t, 7, result.Events[0].DaysOffset)
		assert.Equal(t, loan.ID, result.Events[0].SubjectID)

		// Re-running at the same instant emits nothing new.
		result, err = f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		assert.Empty(t, result.Events)
	})

	t.Run("closer boundaries fire as the due date approaches", func(t *testing.T) {
		f.now = loan.DueDate.Add(-3 * 24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, 3, result.Events[0].DaysOffset)

		f.now = loan.DueDate.Add(-12 * time.Hour)
		result, err = f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, 1, result.Events[0].DaysOffset)
	})

	t.Run("a skipped sweep catches up on missed boundaries", func(t *testing.T) {
		member2 := f.createMember(t, "Bob")
		item2 := f.createItem(t, "Middlemarch")
		f.now = time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
		loan2, err := f.coordinator.Checkout(ctx, item2.ID, member2.ID, nil)
		require.NoError(t, err)

		// First sweep happens only two days before due: 7, 3 are already
		// inside the window and fire together with nothing lost.
		f.now = loan2.DueDate.Add(-2 * 24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		offsets := []int{}
		for _, e := range result.Events {
			if e.SubjectID == loan2.ID {
				offsets = append(offsets, e.DaysOffset)
			}
		}
		assert.ElementsMatch(t, []int{7, 3}, offsets)
	})
}

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupSweepTest(t)
	defer cleanup()

	member := f.createMember(t, "Alice")
	item := f.createItem(t, "Dracula")
	loan, err := f.coordinator.Checkout(ctx, item.ID, member.ID, nil)
	require.NoError(t, err)

	t.Run("past-due loan is marked overdue and reminded", func(t *testing.T) {
		f.now = loan.DueDate.Add(2 * 24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)

		current, err := loansrepo.NewRepository(f.db.DB).GetByID(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.LoanStatusOverdue, current.Status)

		require.Len(t, result.Events, 1)
		assert.Equal(t, entities.NotificationOverdue, result.Events[0].Kind)
		assert.Equal(t, 1, result.Events[0].DaysOffset)
	})

	t.Run("later boundaries fire as lateness grows", func(t *testing.T) {
		f.now = loan.DueDate.Add(7 * 24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, 7, result.Events[0].DaysOffset)

		f.now = loan.DueDate.Add(20 * 24 * time.Hour)
		result, err = f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, 14, result.Events[0].DaysOffset)

		// Everything has fired; a later sweep stays quiet.
		f.now = loan.DueDate.Add(30 * 24 * time.Hour)
		result, err = f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		assert.Empty(t, result.Events)
	})

	t.Run("returned loan drops out of the sweep", func(t *testing.T) {
		_, _, err := f.coordinator.ReturnItem(ctx, loan.ID, entities.ReturnConditionGood, nil)
		require.NoError(t, err)

		f.now = f.now.Add(24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		assert.Empty(t, result.Events)
		assert.Zero(t, result.Processed)
	})
}

func TestSweepReservations(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupSweepTest(t)
	defer cleanup()

	alice := f.createMember(t, "Alice")
	bob := f.createMember(t, "Bob")
	carol := f.createMember(t, "Carol")
	item := f.createItem(t, "Dracula")

	loan, err := f.coordinator.Checkout(ctx, item.ID, alice.ID, nil)
	require.NoError(t, err)
	_, err = f.coordinator.PlaceHold(ctx, item.ID, bob.ID)
	require.NoError(t, err)
	f.now = f.now.Add(time.Hour)
	_, err = f.coordinator.PlaceHold(ctx, item.ID, carol.ID)
	require.NoError(t, err)

	_, promoted, err := f.coordinator.ReturnItem(ctx, loan.ID, entities.ReturnConditionGood, nil)
	require.NoError(t, err)
	require.NotNil(t, promoted)

	t.Run("ready reservation notifies once", func(t *testing.T) {
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, entities.NotificationReservationReady, result.Events[0].Kind)
		assert.Equal(t, bob.ID, result.Events[0].BorrowerID)

		result, err = f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		assert.Empty(t, result.Events)
	})

	t.Run("expiring warning fires a day before the deadline", func(t *testing.T) {
		f.now = promoted.PickupDeadline.Add(-12 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, entities.NotificationReservationExpiring, result.Events[0].Kind)
		assert.Equal(t, bob.ID, result.Events[0].BorrowerID)
	})

	t.Run("stale pickup expires and the successor is notified", func(t *testing.T) {
		f.now = promoted.PickupDeadline.Add(24 * time.Hour)
		result, err := f.sweeper.Run(ctx, f.now)
		require.NoError(t, err)

		// Bob's hold expired, Carol moved up and gets her ready event.
		kinds := eventKinds(result.Events)
		assert.Contains(t, kinds, string(entities.NotificationReservationReady))
		for _, e := range result.Events {
			assert.Equal(t, carol.ID, e.BorrowerID)
		}

		current, err := itemsrepo.NewRepository(f.db.DB).GetByID(item.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.ItemStatusReserved, current.Status)
		assert.Equal(t, carol.ID, current.ReservedForID)
	})
}

func TestSweepIdempotentAcrossRestart(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupSweepTest(t)
	defer cleanup()

	member := f.createMember(t, "Alice")
	item := f.createItem(t, "Dracula")
	loan, err := f.coordinator.Checkout(ctx, item.ID, member.ID, nil)
	require.NoError(t, err)

	f.now = loan.DueDate.Add(-5 * 24 * time.Hour)
	first, err := f.sweeper.Run(ctx, f.now)
	require.NoError(t, err)
	require.NotEmpty(t, first.Events)

	// A second sweeper over the same store, as after a process restart,
	// sees the persisted marks and emits nothing.
	restarted := New(f.db.DB, f.coordinator)
	second, err := restarted.Run(ctx, f.now)
	require.NoError(t, err)
	assert.Empty(t, second.Events)
	assert.Equal(t, first.Processed, second.Processed)
}
