package database

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rujal408/library-management/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestDatabaseMigration(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tables := []string{"members", "catalog_items", "loans", "reservations", "notification_marks", "audit_events"}
	for _, table := range tables {
		assert.True(t, db.DB.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestDatabaseRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("catalog item defaults to available", func(t *testing.T) {
		item := entities.CatalogItem{Title: "Dracula", Author: "Bram Stoker"}
		require.NoError(t, db.DB.Create(&item).Error)

		var loaded entities.CatalogItem
		require.NoError(t, db.DB.First(&loaded, item.ID).Error)
		assert.Equal(t, entities.ItemStatusAvailable, loaded.Status)
	})

	t.Run("member email is unique", func(t *testing.T) {
		first := entities.Member{Name: "Alice", Email: "alice@example.com"}
		require.NoError(t, db.DB.Create(&first).Error)

		dup := entities.Member{Name: "Other Alice", Email: "alice@example.com"}
		assert.Error(t, db.DB.Create(&dup).Error)
	})

	t.Run("duplicate notification marks are rejected", func(t *testing.T) {
		mark := entities.NotificationMark{
			SubjectType: entities.SubjectLoan,
			SubjectID:   1,
			Kind:        entities.NotificationDueSoon,
			Boundary:    7,
			FiredAt:     time.Now(),
		}
		require.NoError(t, db.DB.Create(&mark).Error)

		dup := entities.NotificationMark{
			SubjectType: entities.SubjectLoan,
			SubjectID:   1,
			Kind:        entities.NotificationDueSoon,
			Boundary:    7,
			FiredAt:     time.Now(),
		}
		assert.Error(t, db.DB.Create(&dup).Error)
	})
}
