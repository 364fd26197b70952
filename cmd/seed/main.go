// Command seed creates a development database with sample catalog data.
// Usage: go run cmd/seed/main.go [-db path/to/library.db]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/rujal408/library-management/internal/audit"
	"github.com/rujal408/library-management/internal/database"
	auditrepo "github.com/rujal408/library-management/internal/database/audit"
	itemsrepo "github.com/rujal408/library-management/internal/database/items"
	membersrepo "github.com/rujal408/library-management/internal/database/members"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/lifecycle"
	"github.com/rujal408/library-management/internal/policy"
)

const defaultSeedDatabasePath = "./library.db"

func main() {
	dbPath := flag.String("db", defaultSeedDatabasePath, "path to the database file")
	flag.Parse()

	log.Printf("Seeding database at %s...", *dbPath)

	// Delete existing database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	members := createMembers(db)
	items := createItems(db)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	coordinator := lifecycle.NewCoordinator(db.DB, policy.Default(), nil, auditService, 0)
	ctx := context.Background()

	// A current loan, an overdue loan, and a contested item with a queue.
	if _, err := coordinator.Checkout(ctx, items[0].ID, members[0].ID, nil); err != nil {
		log.Fatalf("Failed to check out %q: %v", items[0].Title, err)
	}

	overdueDue := time.Now().Add(-5 * 24 * time.Hour)
	backdated := lifecycle.NewCoordinator(db.DB, policy.Default(), func() time.Time {
		return overdueDue.Add(-policy.Default().LoanPeriod)
	}, auditService, 0)
	if _, err := backdated.Checkout(ctx, items[1].ID, members[1].ID, &overdueDue); err != nil {
		log.Fatalf("Failed to check out %q: %v", items[1].Title, err)
	}

	if _, err := coordinator.Checkout(ctx, items[2].ID, members[0].ID, nil); err != nil {
		log.Fatalf("Failed to check out %q: %v", items[2].Title, err)
	}
	for _, borrower := range []uint{members[1].ID, members[2].ID} {
		if _, err := coordinator.PlaceHold(ctx, items[2].ID, borrower); err != nil {
			log.Fatalf("Failed to place hold on %q: %v", items[2].Title, err)
		}
	}

	log.Println("Database seeded successfully!")
}

func createMembers(db *database.Database) []entities.Member {
	members := []entities.Member{
		{Name: "Alice Hargreaves", Email: "alice@example.com", Status: entities.MemberStatusActive},
		{Name: "Jonathan Harker", Email: "jonathan@example.com", Status: entities.MemberStatusActive},
		{Name: "Lucy Honeychurch", Email: "lucy@example.com", Status: entities.MemberStatusActive},
		{Name: "Edwin Drood", Email: "edwin@example.com", Status: entities.MemberStatusSuspended},
	}

	repo := membersrepo.NewRepository(db.DB)
	for i := range members {
		if err := repo.Create(&members[i]); err != nil {
			log.Fatalf("Failed to create member %s: %v", members[i].Name, err)
		}
	}
	log.Printf("Created %d members", len(members))
	return members
}

func createItems(db *database.Database) []entities.CatalogItem {
	items := []entities.CatalogItem{
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", Category: "fiction"},
		{Title: "Dracula", Author: "Bram Stoker", ISBN: "9780141439846", Category: "fiction"},
		{Title: "The Origin of Species", Author: "Charles Darwin", ISBN: "9780451529060", Category: "science"},
		{Title: "Meditations", Author: "Marcus Aurelius", ISBN: "9780140449334", Category: "philosophy"},
		{Title: "Walden", Author: "Henry David Thoreau", ISBN: "9780140390445", Category: "philosophy"},
		{Title: "Middlemarch", Author: "George Eliot", ISBN: "9780141439549", Category: "fiction"},
	}

	repo := itemsrepo.NewRepository(db.DB)
	for i := range items {
		items[i].Status = entities.ItemStatusAvailable
		if err := repo.Create(&items[i]); err != nil {
			log.Fatalf("Failed to create item %q: %v", items[i].Title, err)
		}
	}
	log.Printf("Created %d catalog items", len(items))
	return items
}
