// Package loans provides database operations for the loan ledger.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/entities"
)

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new loan row.
func (r *Repository) Create(loan *entities.Loan) error {
	return r.db.Create(loan).Error
}

// Save persists changes to an existing loan.
func (r *Repository) Save(loan *entities.Loan) error {
	return r.db.Save(loan).Error
}

// GetByID retrieves a loan by ID.
func (r *Repository) GetByID(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetOpenForItem retrieves the open (checked out or overdue) loan for an
// item. Returns gorm.ErrRecordNotFound when the item has no open loan.
func (r *Repository) GetOpenForItem(itemID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.
		Where("item_id = ? AND status IN ?", itemID, []entities.LoanStatus{entities.LoanStatusCheckedOut, entities.LoanStatusOverdue}).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// HasOpenLoan reports whether the borrower currently has an open loan on the
// item.
func (r *Repository) HasOpenLoan(itemID, borrowerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("item_id = ? AND borrower_id = ? AND status IN ?",
			itemID, borrowerID,
			[]entities.LoanStatus{entities.LoanStatusCheckedOut, entities.LoanStatusOverdue}).
		Count(&count).Error
	return count > 0, err
}

// CountOpenForItem counts open loans for an item. Used by the exclusive-loan
// invariant checks in tests.
func (r *Repository) CountOpenForItem(itemID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("item_id = ? AND status IN ?", itemID,
			[]entities.LoanStatus{entities.LoanStatusCheckedOut, entities.LoanStatusOverdue}).
		Count(&count).Error
	return count, err
}

// ListOpen retrieves every open loan, oldest due date first. The sweep walks
// this list.
func (r *Repository) ListOpen() ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.
		Where("status IN ?", []entities.LoanStatus{entities.LoanStatusCheckedOut, entities.LoanStatusOverdue}).
		Order("due_date ASC").Find(&loans).Error
	return loans, err
}

// ListOverdueAsOf retrieves open loans whose due date has passed at ts.
func (r *Repository) ListOverdueAsOf(ts time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.
		Where("status IN ? AND due_date < ? AND return_date IS NULL",
			[]entities.LoanStatus{entities.LoanStatusCheckedOut, entities.LoanStatusOverdue}, ts).
		Order("due_date ASC").Find(&loans).Error
	return loans, err
}

// ListForBorrower retrieves a borrower's loans, most recent first.
func (r *Repository) ListForBorrower(borrowerID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Where("borrower_id = ?", borrowerID).
		Order("checkout_date DESC").Find(&loans).Error
	return loans, err
}

// CountByStatus counts loans per status for the reporting read model.
func (r *Repository) CountByStatus(status entities.LoanStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// SumFines totals the accrued fines across all loans.
func (r *Repository) SumFines() (float64, error) {
	var total *float64
	err := r.db.Model(&entities.Loan{}).Select("SUM(fine_amount)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
