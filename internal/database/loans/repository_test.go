package loans

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

func loan(itemID, borrowerID uint, due time.Time, status entities.LoanStatus) *entities.Loan {
	return &entities.Loan{
		ItemID:       itemID,
		BorrowerID:   borrowerID,
		CheckoutDate: due.Add(-14 * 24 * time.Hour),
		DueDate:      due,
		Status:       status,
	}
}

func TestOpenLoanQueries(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	open := loan(1, 10, now.Add(24*time.Hour), entities.LoanStatusCheckedOut)
	require.NoError(t, repo.Create(open))

	closed := loan(2, 10, now.Add(-24*time.Hour), entities.LoanStatusReturned)
	ts := now
	closed.ReturnDate = &ts
	require.NoError(t, repo.Create(closed))

	t.Run("open loan is found by item", func(t *testing.T) {
		found, err := repo.GetOpenForItem(1)
		require.NoError(t, err)
		assert.Equal(t, open.ID, found.ID)

		_, err = repo.GetOpenForItem(2)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("overdue loans count as open", func(t *testing.T) {
		overdue := loan(3, 11, now.Add(-48*time.Hour), entities.LoanStatusOverdue)
		require.NoError(t, repo.Create(overdue))

		count, err := repo.CountOpenForItem(3)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		has, err := repo.HasOpenLoan(3, 11)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("closed loans do not block the item", func(t *testing.T) {
		count, err := repo.CountOpenForItem(2)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestListOverdueAsOf(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	pastDue := loan(1, 10, now.Add(-time.Hour), entities.LoanStatusCheckedOut)
	require.NoError(t, repo.Create(pastDue))
	notDue := loan(2, 11, now.Add(time.Hour), entities.LoanStatusCheckedOut)
	require.NoError(t, repo.Create(notDue))
	returned := loan(3, 12, now.Add(-48*time.Hour), entities.LoanStatusReturned)
	ts := now.Add(-24 * time.Hour)
	returned.ReturnDate = &ts
	require.NoError(t, repo.Create(returned))

	list, err := repo.ListOverdueAsOf(now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pastDue.ID, list[0].ID)
}

func TestSumFines(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("empty ledger sums to zero", func(t *testing.T) {
		total, err := repo.SumFines()
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("fines accumulate across loans", func(t *testing.T) {
		now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

		a := loan(1, 10, now, entities.LoanStatusReturned)
		a.FineAmount = 1.50
		require.NoError(t, repo.Create(a))
		b := loan(2, 11, now, entities.LoanStatusLost)
		b.FineAmount = 25.00
		require.NoError(t, repo.Create(b))

		total, err := repo.SumFines()
		require.NoError(t, err)
		assert.InDelta(t, 26.50, total, 1e-9)
	})
}
