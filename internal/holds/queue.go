// Package holds implements the reservation queue: per-item FIFO queues of
// pending holds, promotion to ready-for-pickup, cancellation, and pickup
// expiry. Catalog item status stays with the lifecycle coordinator; this
// package only reports what the queue did so the coordinator can reconcile
// the projection.
package holds

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/database/loans"
	"github.com/rujal408/library-management/internal/database/reservations"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/policy"
)

var (
	ErrItemAvailable       = errors.New("item is available; check it out instead of placing a hold")
	ErrDuplicateHold       = errors.New("borrower already has an active hold or open loan on this item")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidState        = errors.New("reservation is not in a cancellable state")
)

// Queue runs reservation operations against repositories, typically scoped
// to the coordinator's transaction.
type Queue struct {
	reservations *reservations.Repository
	loans        *loans.Repository
	policy       policy.Policy
}

func New(reservationsRepo *reservations.Repository, loansRepo *loans.Repository, pol policy.Policy) *Queue {
	return &Queue{reservations: reservationsRepo, loans: loansRepo, policy: pol}
}

// PlaceHold appends a pending hold for the borrower to the item's queue.
// Holds are only for unavailable items, and a borrower gets at most one
// active claim per item (hold or open loan).
func (q *Queue) PlaceHold(item *entities.CatalogItem, borrowerID uint, now time.Time) (*entities.Reservation, error) {
	if item.Status == entities.ItemStatusAvailable {
		return nil, ErrItemAvailable
	}

	held, err := q.reservations.HasActiveHold(item.ID, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing holds: %w", err)
	}
	if held {
		return nil, ErrDuplicateHold
	}

	borrowed, err := q.loans.HasOpenLoan(item.ID, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open loans: %w", err)
	}
	if borrowed {
		return nil, ErrDuplicateHold
	}

	reservation := &entities.Reservation{
		ItemID:          item.ID,
		BorrowerID:      borrowerID,
		ReservationDate: now,
		ExpiryDate:      now.Add(q.policy.HoldExpiry),
		Status:          entities.ReservationStatusPending,
	}
	if err := q.reservations.Create(reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return reservation, nil
}

// CancelHold cancels a pending or ready-for-pickup hold. When a
// ready-for-pickup hold is cancelled the next pending hold (if any) is
// promoted; the promoted reservation is returned so the caller can update
// the item projection.
func (q *Queue) CancelHold(reservationID uint, now time.Time) (cancelled, promoted *entities.Reservation, err error) {
	reservation, err := q.reservations.GetByID(reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrReservationNotFound
		}
		return nil, nil, fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
	}

	wasReady := reservation.Status == entities.ReservationStatusReadyForPickup
	if !reservation.Status.Active() {
		return nil, nil, ErrInvalidState
	}

	reservation.Status = entities.ReservationStatusCancelled
	if err := q.reservations.Save(reservation); err != nil {
		return nil, nil, fmt.Errorf("failed to cancel reservation %d: %w", reservationID, err)
	}

	if wasReady {
		promoted, err = q.PromoteNext(reservation.ItemID, now)
		if err != nil {
			return nil, nil, err
		}
	}
	return reservation, promoted, nil
}

// QueuePosition is the 1-based rank of a pending hold in its item's queue.
func (q *Queue) QueuePosition(reservationID uint) (int, error) {
	reservation, err := q.reservations.GetByID(reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrReservationNotFound
		}
		return 0, fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
	}
	if reservation.Status != entities.ReservationStatusPending {
		return 0, ErrInvalidState
	}

	ahead, err := q.reservations.CountPendingAhead(reservation)
	if err != nil {
		return 0, fmt.Errorf("failed to rank reservation %d: %w", reservationID, err)
	}
	return int(ahead) + 1, nil
}

// PromoteNext moves the head of the item's pending queue to ready-for-pickup
// with a fresh pickup deadline. Returns nil when the queue is empty.
func (q *Queue) PromoteNext(itemID uint, now time.Time) (*entities.Reservation, error) {
	head, err := q.reservations.NextPending(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load queue head for item %d: %w", itemID, err)
	}

	deadline := now.Add(q.policy.PickupWindow)
	head.Status = entities.ReservationStatusReadyForPickup
	head.PickupDeadline = &deadline
	if err := q.reservations.Save(head); err != nil {
		return nil, fmt.Errorf("failed to promote reservation %d: %w", head.ID, err)
	}
	return head, nil
}

// Fulfill marks a ready-for-pickup hold as converted to a loan.
func (q *Queue) Fulfill(reservation *entities.Reservation) error {
	reservation.Status = entities.ReservationStatusFulfilled
	if err := q.reservations.Save(reservation); err != nil {
		return fmt.Errorf("failed to fulfill reservation %d: %w", reservation.ID, err)
	}
	return nil
}

// Expire marks a stale ready-for-pickup hold as expired and promotes the
// next pending hold. Returns the promoted reservation, or nil when the queue
// emptied out.
func (q *Queue) Expire(reservation *entities.Reservation, now time.Time) (*entities.Reservation, error) {
	reservation.Status = entities.ReservationStatusExpired
	if err := q.reservations.Save(reservation); err != nil {
		return nil, fmt.Errorf("failed to expire reservation %d: %w", reservation.ID, err)
	}
	return q.PromoteNext(reservation.ItemID, now)
}
