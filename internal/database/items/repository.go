// Package items provides database operations for catalog items.
//
// The Status column is a projection owned by the lifecycle coordinator;
// nothing outside internal/lifecycle should call UpdateStatus.
package items

import (
	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/entities"
)

// Repository handles all catalog item database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new items repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new catalog item.
func (r *Repository) Create(item *entities.CatalogItem) error {
	return r.db.Create(item).Error
}

// GetByID retrieves an item by ID.
func (r *Repository) GetByID(id uint) (*entities.CatalogItem, error) {
	var item entities.CatalogItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStatus writes the item's projected status. reservedFor is the
// borrower the item is held for (zero unless status is reserved).
func (r *Repository) UpdateStatus(id uint, status entities.ItemStatus, reservedFor uint) error {
	return r.db.Model(&entities.CatalogItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "reserved_for_id": reservedFor}).Error
}

// List retrieves items ordered by title, with total count for pagination.
func (r *Repository) List(limit, offset int) ([]entities.CatalogItem, int64, error) {
	var items []entities.CatalogItem
	var total int64

	if err := r.db.Model(&entities.CatalogItem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("title ASC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

// ListByStatus retrieves all items in the given status.
func (r *Repository) ListByStatus(status entities.ItemStatus) ([]entities.CatalogItem, error) {
	var items []entities.CatalogItem
	err := r.db.Where("status = ?", status).Order("title ASC").Find(&items).Error
	return items, err
}

// SearchByTitleOrAuthor does a case-insensitive partial match.
func (r *Repository) SearchByTitleOrAuthor(query string) ([]entities.CatalogItem, error) {
	var items []entities.CatalogItem
	searchPattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", searchPattern, searchPattern).
		Order("title ASC").Find(&items).Error
	return items, err
}

// Delete soft-deletes an item. Loans and reservations keep referencing the
// row through its ID.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.CatalogItem{}, id).Error
}
