// Package members provides database operations for borrower records.
package members

import (
	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/entities"
)

// Repository handles all member database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new members repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new member.
func (r *Repository) Create(member *entities.Member) error {
	return r.db.Create(member).Error
}

// GetByID retrieves a member by ID.
func (r *Repository) GetByID(id uint) (*entities.Member, error) {
	var member entities.Member
	err := r.db.First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByEmail retrieves a member by email.
func (r *Repository) GetByEmail(email string) (*entities.Member, error) {
	var member entities.Member
	err := r.db.Where("email = ?", email).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// List retrieves members ordered by name, with total count for pagination.
func (r *Repository) List(limit, offset int) ([]entities.Member, int64, error) {
	var members []entities.Member
	var total int64

	if err := r.db.Model(&entities.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("name ASC").Limit(limit).Offset(offset).Find(&members).Error
	return members, total, err
}
