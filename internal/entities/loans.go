package entities

import (
	"time"

	"gorm.io/gorm"
)

type LoanStatus string

const (
	LoanStatusCheckedOut      LoanStatus = "checked_out"
	LoanStatusReturned        LoanStatus = "returned"
	LoanStatusOverdue         LoanStatus = "overdue"
	LoanStatusLost            LoanStatus = "lost"
	LoanStatusDamaged         LoanStatus = "damaged"
	LoanStatusClaimedReturned LoanStatus = "claimed_returned"
)

// Open reports whether the loan still occupies its item, i.e. no return has
// been processed yet.
func (s LoanStatus) Open() bool {
	return s == LoanStatusCheckedOut || s == LoanStatusOverdue
}

// ReturnCondition is the physical state a staff member records when an item
// comes back over the desk.
type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "good"
	ReturnConditionDamaged ReturnCondition = "damaged"
	ReturnConditionLost    ReturnCondition = "lost"
)

// Loan is one checkout-to-return cycle for a single item and borrower.
// At most one loan with an open status exists per item at any time.
type Loan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ItemID       uint       `gorm:"index" json:"item_id"`
	BorrowerID   uint       `gorm:"index" json:"borrower_id"`
	CheckoutDate time.Time  `gorm:"index" json:"checkout_date"`
	DueDate      time.Time  `gorm:"index" json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`

	// FineAmount is accrued in currency units and never decreases while the
	// loan is unpaid; payments are recorded outside the lifecycle engine.
	FineAmount float64 `json:"fine_amount"`

	Status LoanStatus `gorm:"index;size:20;default:'checked_out'" json:"status"`

	Item     CatalogItem `gorm:"foreignKey:ItemID" json:"-"`
	Borrower Member      `gorm:"foreignKey:BorrowerID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}
