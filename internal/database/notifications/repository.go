// Package notifications provides database operations for the notification
// mark ledger, the record of which (subject, kind, boundary) notifications
// have already fired. Append-only apart from retention pruning.
package notifications

import (
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/entities"
)

// Repository handles all notification mark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notifications repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether a mark for the (subject, kind, boundary) triple has
// been recorded.
func (r *Repository) Exists(subjectType entities.NotificationSubject, subjectID uint, kind entities.NotificationKind, boundary int) (bool, error) {
	var count int64
	err := r.db.Model(&entities.NotificationMark{}).
		Where("subject_type = ? AND subject_id = ? AND kind = ? AND boundary = ?",
			subjectType, subjectID, kind, boundary).
		Count(&count).Error
	return count > 0, err
}

// Record persists a fired mark.
func (r *Repository) Record(mark *entities.NotificationMark) error {
	if mark.FiredAt.IsZero() {
		mark.FiredAt = time.Now()
	}
	return r.db.Create(mark).Error
}

// CountAll returns the total number of recorded marks.
func (r *Repository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&entities.NotificationMark{}).Count(&count).Error
	return count, err
}

// DeleteOldMarks removes marks fired before the given time. Returns the
// number of deleted rows.
func (r *Repository) DeleteOldMarks(olderThan time.Time) (int64, error) {
	result := r.db.Where("fired_at < ?", olderThan).Delete(&entities.NotificationMark{})
	return result.RowsAffected, result.Error
}
