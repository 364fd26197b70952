// Package sweep implements the scheduled notification batch: it derives
// overdue transitions and pickup expiries from current ledger/queue state,
// then emits due/overdue/reservation events exactly once per boundary.
// Delivery is someone else's job; the sweep only produces the event list.
package sweep

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/database/loans"
	"github.com/rujal408/library-management/internal/database/notifications"
	"github.com/rujal408/library-management/internal/database/reservations"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/lifecycle"
)

// Boundaries at which reminder events fire, in days.
var (
	dueSoonBoundaries = []int{7, 3, 1}
	overdueBoundaries = []int{1, 7, 14}
)

// Result summarizes one sweep run so an operator can spot systemic failure
// without one bad record blocking all reminders.
type Result struct {
	Processed int                          `json:"processed"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
	Events    []entities.NotificationEvent `json:"events"`
}

// Sweeper scans the loan ledger and reservation queues. State transitions
// (overdue marking, pickup expiry) go through the coordinator; the
// notification scan itself reads committed state and appends marks, so it
// never contends with live checkout traffic.
type Sweeper struct {
	db          *gorm.DB
	coordinator *lifecycle.Coordinator
}

func New(db *gorm.DB, coordinator *lifecycle.Coordinator) *Sweeper {
	return &Sweeper{db: db, coordinator: coordinator}
}

// Run executes one sweep at the given instant. Each record is processed
// independently: an error for one is logged, counted, and skipped. Safe to
// interrupt between records and idempotent on restart.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (*Result, error) {
	result := &Result{}

	// Phase 1: derive overdue status for open loans past due.
	overdueLoans, err := loans.NewRepository(s.db).ListOverdueAsOf(now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue candidates: %w", err)
	}
	for i := range overdueLoans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.coordinator.MarkOverdue(ctx, overdueLoans[i].ID); err != nil {
			log.Printf("Sweep: failed to mark loan %d overdue: %v", overdueLoans[i].ID, err)
		}
	}

	// Phase 2: expire stale pickups, cascading each queue.
	if _, _, err := s.coordinator.ExpireStalePickups(ctx, now); err != nil {
		return result, err
	}

	// Phase 3: emit once-per-boundary notification events.
	openLoans, err := loans.NewRepository(s.db).ListOpen()
	if err != nil {
		return nil, fmt.Errorf("failed to list open loans: %w", err)
	}
	for i := range openLoans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++
		if err := s.emitLoanEvents(&openLoans[i], now, result); err != nil {
			result.Failed++
			log.Printf("Sweep: loan %d: %v", openLoans[i].ID, err)
			continue
		}
		result.Succeeded++
	}

	ready, err := reservations.NewRepository(s.db).ListReadyForPickup()
	if err != nil {
		return nil, fmt.Errorf("failed to list ready reservations: %w", err)
	}
	for i := range ready {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++
		if err := s.emitReservationEvents(&ready[i], now, result); err != nil {
			result.Failed++
			log.Printf("Sweep: reservation %d: %v", ready[i].ID, err)
			continue
		}
		result.Succeeded++
	}

	return result, nil
}

// emitOnce records the (subject, kind, boundary) mark and appends the event,
// unless that mark has already fired on an earlier sweep.
func (s *Sweeper) emitOnce(event entities.NotificationEvent, now time.Time, result *Result) error {
	marks := notifications.NewRepository(s.db)
	fired, err := marks.Exists(event.SubjectType, event.SubjectID, event.Kind, event.DaysOffset)
	if err != nil {
		return fmt.Errorf("failed to check notification mark: %w", err)
	}
	if fired {
		return nil
	}

	err = marks.Record(&entities.NotificationMark{
		SubjectType: event.SubjectType,
		SubjectID:   event.SubjectID,
		Kind:        event.Kind,
		Boundary:    event.DaysOffset,
		FiredAt:     now,
	})
	if err != nil {
		return fmt.Errorf("failed to record notification mark: %w", err)
	}

	result.Events = append(result.Events, event)
	return nil
}

func (s *Sweeper) emitLoanEvents(loan *entities.Loan, now time.Time, result *Result) error {
	const day = 24 * time.Hour

	if loan.DueDate.After(now) {
		// Days until due, rounded up: an event fires once the remaining
		// time dips to or below the boundary.
		remaining := loan.DueDate.Sub(now)
		daysRemaining := int(remaining / day)
		if remaining%day != 0 {
			daysRemaining++
		}
		for _, boundary := range dueSoonBoundaries {
			if daysRemaining > boundary {
				continue
			}
			event := entities.NotificationEvent{
				Kind:        entities.NotificationDueSoon,
				SubjectType: entities.SubjectLoan,
				SubjectID:   loan.ID,
				BorrowerID:  loan.BorrowerID,
				ItemID:      loan.ItemID,
				DaysOffset:  boundary,
			}
			if err := s.emitOnce(event, now, result); err != nil {
				return err
			}
		}
		return nil
	}

	if loan.Status != entities.LoanStatusOverdue {
		return nil
	}
	daysLate := int(now.Sub(loan.DueDate) / day)
	for _, boundary := range overdueBoundaries {
		if daysLate < boundary {
			continue
		}
		event := entities.NotificationEvent{
			Kind:        entities.NotificationOverdue,
			SubjectType: entities.SubjectLoan,
			SubjectID:   loan.ID,
			BorrowerID:  loan.BorrowerID,
			ItemID:      loan.ItemID,
			DaysOffset:  boundary,
		}
		if err := s.emitOnce(event, now, result); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweeper) emitReservationEvents(reservation *entities.Reservation, now time.Time, result *Result) error {
	ready := entities.NotificationEvent{
		Kind:        entities.NotificationReservationReady,
		SubjectType: entities.SubjectReservation,
		SubjectID:   reservation.ID,
		BorrowerID:  reservation.BorrowerID,
		ItemID:      reservation.ItemID,
	}
	if err := s.emitOnce(ready, now, result); err != nil {
		return err
	}

	if reservation.PickupDeadline == nil {
		return nil
	}
	if reservation.PickupDeadline.Sub(now) > 24*time.Hour {
		return nil
	}
	expiring := entities.NotificationEvent{
		Kind:        entities.NotificationReservationExpiring,
		SubjectType: entities.SubjectReservation,
		SubjectID:   reservation.ID,
		BorrowerID:  reservation.BorrowerID,
		ItemID:      reservation.ItemID,
		DaysOffset:  1,
	}
	return s.emitOnce(expiring, now, result)
}
