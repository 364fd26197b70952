package entities

import (
	"time"

	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
)

// Member is a library borrower. The lifecycle engine only checks that the
// member exists and is active; registration and permissions live elsewhere.
type Member struct {
	ID     uint         `gorm:"primaryKey" json:"id"`
	Name   string       `gorm:"size:256" json:"name"`
	Email  string       `gorm:"uniqueIndex;size:255" json:"email"`
	Status MemberStatus `gorm:"size:20;default:'active'" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Member) TableName() string {
	return "members"
}
