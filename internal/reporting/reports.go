// Package reporting builds typed read-model projections over the loan ledger
// and reservation queues. Strictly read-only and downstream of the lifecycle
// engine; nothing here mutates domain state.
package reporting

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/database/items"
	"github.com/rujal408/library-management/internal/database/loans"
	"github.com/rujal408/library-management/internal/database/reservations"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/policy"
)

// CirculationSummary is the dashboard headline projection.
type CirculationSummary struct {
	LoansOpen         int64   `json:"loans_open"`
	LoansOverdue      int64   `json:"loans_overdue"`
	LoansReturned     int64   `json:"loans_returned"`
	HoldsPending      int64   `json:"holds_pending"`
	HoldsReady        int64   `json:"holds_ready"`
	ItemsAvailable    int64   `json:"items_available"`
	TotalFinesAccrued float64 `json:"total_fines_accrued"`
}

// OverdueRow is one line of the overdue report.
type OverdueRow struct {
	LoanID      uint      `json:"loan_id"`
	ItemID      uint      `json:"item_id"`
	Title       string    `json:"title"`
	BorrowerID  uint      `json:"borrower_id"`
	Borrower    string    `json:"borrower"`
	DueDate     time.Time `json:"due_date"`
	DaysLate    int       `json:"days_late"`
	FineAccrued float64   `json:"fine_accrued"`
}

// QueueDepthRow reports how many borrowers wait on an item.
type QueueDepthRow struct {
	ItemID       uint   `json:"item_id"`
	Title        string `json:"title"`
	PendingHolds int64  `json:"pending_holds"`
}

// Service answers report queries.
type Service struct {
	db     *gorm.DB
	policy policy.Policy
	clock  policy.Clock
}

func NewService(db *gorm.DB, pol policy.Policy, clock policy.Clock) *Service {
	if clock == nil {
		clock = policy.SystemClock
	}
	return &Service{db: db, policy: pol, clock: clock}
}

// CirculationSummary aggregates headline counts across the ledger and queues.
func (s *Service) CirculationSummary() (*CirculationSummary, error) {
	loansRepo := loans.NewRepository(s.db)
	resRepo := reservations.NewRepository(s.db)
	summary := &CirculationSummary{}

	var err error
	if summary.LoansOpen, err = loansRepo.CountByStatus(entities.LoanStatusCheckedOut); err != nil {
		return nil, fmt.Errorf("failed to count open loans: %w", err)
	}
	if summary.LoansOverdue, err = loansRepo.CountByStatus(entities.LoanStatusOverdue); err != nil {
		return nil, fmt.Errorf("failed to count overdue loans: %w", err)
	}
	if summary.LoansReturned, err = loansRepo.CountByStatus(entities.LoanStatusReturned); err != nil {
		return nil, fmt.Errorf("failed to count returned loans: %w", err)
	}
	if summary.HoldsPending, err = resRepo.CountByStatus(entities.ReservationStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending holds: %w", err)
	}
	if summary.HoldsReady, err = resRepo.CountByStatus(entities.ReservationStatusReadyForPickup); err != nil {
		return nil, fmt.Errorf("failed to count ready holds: %w", err)
	}
	if summary.TotalFinesAccrued, err = loansRepo.SumFines(); err != nil {
		return nil, fmt.Errorf("failed to sum fines: %w", err)
	}

	available, err := items.NewRepository(s.db).ListByStatus(entities.ItemStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to list available items: %w", err)
	}
	summary.ItemsAvailable = int64(len(available))

	return summary, nil
}

// OverdueReport lists open loans past due at the report instant, with the
// running fine each would settle at today.
func (s *Service) OverdueReport() ([]OverdueRow, error) {
	now := s.clock()
	overdue, err := loans.NewRepository(s.db).ListOverdueAsOf(now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue loans: %w", err)
	}

	rows := make([]OverdueRow, 0, len(overdue))
	for _, loan := range overdue {
		row := OverdueRow{
			LoanID:      loan.ID,
			ItemID:      loan.ItemID,
			BorrowerID:  loan.BorrowerID,
			DueDate:     loan.DueDate,
			DaysLate:    s.policy.DaysLate(loan.DueDate, now),
			FineAccrued: s.policy.AccruedFine(loan.DueDate, now),
		}

		var item entities.CatalogItem
		if err := s.db.Unscoped().First(&item, loan.ItemID).Error; err == nil {
			row.Title = item.Title
		}
		var borrower entities.Member
		if err := s.db.First(&borrower, loan.BorrowerID).Error; err == nil {
			row.Borrower = borrower.Name
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// QueueDepths lists items with at least one pending hold.
func (s *Service) QueueDepths() ([]QueueDepthRow, error) {
	var rows []QueueDepthRow
	err := s.db.Model(&entities.Reservation{}).
		Select("reservations.item_id AS item_id, catalog_items.title AS title, COUNT(*) AS pending_holds").
		Joins("JOIN catalog_items ON catalog_items.id = reservations.item_id").
		Where("reservations.status = ?", entities.ReservationStatusPending).
		Group("reservations.item_id, catalog_items.title").
		Order("pending_holds DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate queue depths: %w", err)
	}
	return rows, nil
}
