package entities

import (
	"time"

	"gorm.io/gorm"
)

type ItemStatus string

const (
	ItemStatusAvailable        ItemStatus = "available"
	ItemStatusCheckedOut       ItemStatus = "checked_out"
	ItemStatusReserved         ItemStatus = "reserved"
	ItemStatusLost             ItemStatus = "lost"
	ItemStatusDamaged          ItemStatus = "damaged"
	ItemStatusUnderMaintenance ItemStatus = "under_maintenance"
	ItemStatusDiscarded        ItemStatus = "discarded"
)

// ValidItemStatuses lists every status a catalog item can carry. Used by the
// administrative override endpoint to reject unknown values.
var ValidItemStatuses = []ItemStatus{
	ItemStatusAvailable,
	ItemStatusCheckedOut,
	ItemStatusReserved,
	ItemStatusLost,
	ItemStatusDamaged,
	ItemStatusUnderMaintenance,
	ItemStatusDiscarded,
}

// CatalogItem is one physical book record. Status is a cached projection of
// the loan ledger and reservation queue for the item; only the lifecycle
// coordinator mutates it.
type CatalogItem struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	ISBN     string     `gorm:"index;size:20" json:"isbn,omitempty"`
	Title    string     `gorm:"index;size:512" json:"title"`
	Author   string     `gorm:"index;size:256" json:"author"`
	Category string     `gorm:"size:100" json:"category,omitempty"`
	Status   ItemStatus `gorm:"index;size:20;default:'available'" json:"status"`

	// ReservedForID identifies the borrower the item is held for while
	// Status is "reserved". Zero otherwise.
	ReservedForID uint `gorm:"index" json:"reserved_for_id,omitempty"`

	Loans        []Loan        `gorm:"foreignKey:ItemID" json:"loans,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:ItemID" json:"reservations,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
