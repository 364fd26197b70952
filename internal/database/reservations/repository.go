// Package reservations provides database operations for hold queues.
//
// Queue order for an item is (reservation_date ASC, id ASC) over pending
// rows; insertion order breaks reservation-date ties so ranking is total.
package reservations

import (
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/entities"
)

// Repository handles all reservation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new reservation row.
func (r *Repository) Create(reservation *entities.Reservation) error {
	return r.db.Create(reservation).Error
}

// Save persists changes to an existing reservation.
func (r *Repository) Save(reservation *entities.Reservation) error {
	return r.db.Save(reservation).Error
}

// GetByID retrieves a reservation by ID.
func (r *Repository) GetByID(id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// HasActiveHold reports whether the borrower already has a pending or
// ready-for-pickup hold on the item.
func (r *Repository) HasActiveHold(itemID, borrowerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).
		Where("item_id = ? AND borrower_id = ? AND status IN ?",
			itemID, borrowerID,
			[]entities.ReservationStatus{entities.ReservationStatusPending, entities.ReservationStatusReadyForPickup}).
		Count(&count).Error
	return count > 0, err
}

// NextPending retrieves the head of the pending queue for an item. Returns
// gorm.ErrRecordNotFound when the queue is empty.
func (r *Repository) NextPending(itemID uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.
		Where("item_id = ? AND status = ?", itemID, entities.ReservationStatusPending).
		Order("reservation_date ASC, id ASC").
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountPendingAhead counts pending holds for the item that sit ahead of the
// given reservation in queue order.
func (r *Repository) CountPendingAhead(reservation *entities.Reservation) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).
		Where("item_id = ? AND status = ?", reservation.ItemID, entities.ReservationStatusPending).
		Where("reservation_date < ? OR (reservation_date = ? AND id < ?)",
			reservation.ReservationDate, reservation.ReservationDate, reservation.ID).
		Count(&count).Error
	return count, err
}

// CountPendingForItem counts pending holds queued on the item.
func (r *Repository) CountPendingForItem(itemID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).
		Where("item_id = ? AND status = ?", itemID, entities.ReservationStatusPending).
		Count(&count).Error
	return count, err
}

// GetReadyForPickup retrieves the ready-for-pickup hold on an item, if any.
func (r *Repository) GetReadyForPickup(itemID uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.
		Where("item_id = ? AND status = ?", itemID, entities.ReservationStatusReadyForPickup).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListReadyForPickup retrieves every ready-for-pickup hold. The sweep walks
// this list for ready/expiring notifications.
func (r *Repository) ListReadyForPickup() ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.
		Where("status = ?", entities.ReservationStatusReadyForPickup).
		Order("pickup_deadline ASC").Find(&reservations).Error
	return reservations, err
}

// ListStalePickups retrieves ready-for-pickup holds whose deadline has passed
// at ts.
func (r *Repository) ListStalePickups(ts time.Time) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.
		Where("status = ? AND pickup_deadline IS NOT NULL AND pickup_deadline < ?",
			entities.ReservationStatusReadyForPickup, ts).
		Order("pickup_deadline ASC").Find(&reservations).Error
	return reservations, err
}

// ListForBorrower retrieves a borrower's reservations, most recent first.
func (r *Repository) ListForBorrower(borrowerID uint) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.Where("borrower_id = ?", borrowerID).
		Order("reservation_date DESC").Find(&reservations).Error
	return reservations, err
}

// CountByStatus counts reservations per status for the reporting read model.
func (r *Repository) CountByStatus(status entities.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
