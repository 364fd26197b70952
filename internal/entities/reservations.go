package entities

import (
	"time"

	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationStatusPending        ReservationStatus = "pending"
	ReservationStatusReadyForPickup ReservationStatus = "ready_for_pickup"
	ReservationStatusFulfilled      ReservationStatus = "fulfilled"
	ReservationStatusCancelled      ReservationStatus = "cancelled"
	ReservationStatusExpired        ReservationStatus = "expired"
)

// Active reports whether the reservation still claims a place for its
// borrower: pending in the queue or waiting at the pickup desk.
func (s ReservationStatus) Active() bool {
	return s == ReservationStatusPending || s == ReservationStatusReadyForPickup
}

// Reservation is one hold request. Among pending reservations for an item,
// ordering by (reservation_date, id) ascending defines the FIFO queue.
type Reservation struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ItemID          uint       `gorm:"index" json:"item_id"`
	BorrowerID      uint       `gorm:"index" json:"borrower_id"`
	ReservationDate time.Time  `gorm:"index" json:"reservation_date"`
	ExpiryDate      time.Time  `json:"expiry_date"`
	PickupDeadline  *time.Time `json:"pickup_deadline,omitempty"`

	Status ReservationStatus `gorm:"index;size:20;default:'pending'" json:"status"`

	Item     CatalogItem `gorm:"foreignKey:ItemID" json:"-"`
	Borrower Member      `gorm:"foreignKey:BorrowerID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}
