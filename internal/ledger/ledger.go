// Package ledger implements the loan ledger: opening and closing checkout
// transactions, due-date validation, fine settlement, and the overdue
// transition. It never touches catalog item status; that projection belongs
// to the lifecycle coordinator.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/database/loans"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/policy"
)

var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrLoanAlreadyClosed = errors.New("loan is already closed")
	ErrInvalidDueDate    = errors.New("due date must be after the checkout date")

	// ErrOpenLoanExists guards the exclusive-loan invariant: at most one
	// open loan per item. Hitting it means the item status projection has
	// drifted from the ledger.
	ErrOpenLoanExists = errors.New("item already has an open loan")
)

// Ledger runs loan operations against a single repository, typically scoped
// to the coordinator's transaction.
type Ledger struct {
	repo   *loans.Repository
	policy policy.Policy
}

func New(repo *loans.Repository, pol policy.Policy) *Ledger {
	return &Ledger{repo: repo, policy: pol}
}

// OpenLoan creates a checkout transaction for the item and borrower at now.
// When dueDate is nil the policy default applies; a supplied due date must be
// strictly after now.
func (l *Ledger) OpenLoan(itemID, borrowerID uint, now time.Time, dueDate *time.Time) (*entities.Loan, error) {
	due := l.policy.DueDate(now)
	if dueDate != nil {
		if !dueDate.After(now) {
			return nil, ErrInvalidDueDate
		}
		due = *dueDate
	}

	count, err := l.repo.CountOpenForItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open loans for item %d: %w", itemID, err)
	}
	if count > 0 {
		return nil, ErrOpenLoanExists
	}

	loan := &entities.Loan{
		ItemID:       itemID,
		BorrowerID:   borrowerID,
		CheckoutDate: now,
		DueDate:      due,
		Status:       entities.LoanStatusCheckedOut,
	}
	if err := l.repo.Create(loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}
	return loan, nil
}

// CloseLoan settles the loan at returnTs in the given condition, computing
// the fine via the policy. The loan status maps from the condition:
// good→returned, damaged→damaged, lost→lost.
func (l *Ledger) CloseLoan(loanID uint, condition entities.ReturnCondition, returnTs time.Time) (*entities.Loan, error) {
	loan, err := l.repo.GetByID(loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to load loan %d: %w", loanID, err)
	}
	if !loan.Status.Open() {
		return nil, ErrLoanAlreadyClosed
	}

	ts := returnTs
	loan.ReturnDate = &ts
	loan.FineAmount = l.policy.Fine(loan.DueDate, ts, condition)

	switch condition {
	case entities.ReturnConditionDamaged:
		loan.Status = entities.LoanStatusDamaged
	case entities.ReturnConditionLost:
		loan.Status = entities.LoanStatusLost
	default:
		loan.Status = entities.LoanStatusReturned
	}

	if err := l.repo.Save(loan); err != nil {
		return nil, fmt.Errorf("failed to close loan %d: %w", loanID, err)
	}
	return loan, nil
}

// MarkOverdue transitions a checked-out loan to overdue once its due date
// has passed at now. Idempotent: already-overdue and closed loans are left
// untouched.
func (l *Ledger) MarkOverdue(loanID uint, now time.Time) (*entities.Loan, error) {
	loan, err := l.repo.GetByID(loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to load loan %d: %w", loanID, err)
	}

	if loan.Status != entities.LoanStatusCheckedOut {
		return loan, nil
	}
	if loan.ReturnDate != nil || !loan.DueDate.Before(now) {
		return loan, nil
	}

	loan.Status = entities.LoanStatusOverdue
	if err := l.repo.Save(loan); err != nil {
		return nil, fmt.Errorf("failed to mark loan %d overdue: %w", loanID, err)
	}
	return loan, nil
}
