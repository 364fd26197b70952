package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/rujal408/library-management/internal/audit"
	"github.com/rujal408/library-management/internal/database/items"
	"github.com/rujal408/library-management/internal/database/loans"
	"github.com/rujal408/library-management/internal/database/members"
	"github.com/rujal408/library-management/internal/database/reservations"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/holds"
	"github.com/rujal408/library-management/internal/ledger"
	"github.com/rujal408/library-management/internal/policy"
)

// Coordinator is the sole mutator of cross-entity state. Every operation
// acquires the per-item lock with a bounded wait, then runs inside a single
// database transaction so a cancelled or failed operation leaves no partial
// state behind.
type Coordinator struct {
	db       *gorm.DB
	locks    *itemLocks
	clock    policy.Clock
	policy   policy.Policy
	audit    *audit.Service
	lockWait time.Duration
}

// NewCoordinator wires the coordinator. clock may be nil (wall clock) and
// auditSvc may be nil (no audit trail, used by some tests).
func NewCoordinator(db *gorm.DB, pol policy.Policy, clock policy.Clock, auditSvc *audit.Service, lockWait time.Duration) *Coordinator {
	if clock == nil {
		clock = policy.SystemClock
	}
	if lockWait <= 0 {
		lockWait = 3 * time.Second
	}
	return &Coordinator{
		db:       db,
		locks:    newItemLocks(),
		clock:    clock,
		policy:   pol,
		audit:    auditSvc,
		lockWait: lockWait,
	}
}

// withItem serializes fn on the item and wraps it in a transaction.
func (c *Coordinator) withItem(ctx context.Context, itemID uint, fn func(tx *gorm.DB) error) error {
	if err := c.locks.Acquire(ctx, itemID, c.lockWait); err != nil {
		return err
	}
	defer c.locks.Release(itemID)

	return c.db.WithContext(ctx).Transaction(fn)
}

func (c *Coordinator) loadMember(tx *gorm.DB, borrowerID uint) (*entities.Member, error) {
	member, err := members.NewRepository(tx).GetByID(borrowerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member %d: %w", borrowerID, err)
	}
	if member.Status != entities.MemberStatusActive {
		return nil, ErrMemberSuspended
	}
	return member, nil
}

func loadItem(tx *gorm.DB, itemID uint) (*entities.CatalogItem, error) {
	item, err := items.NewRepository(tx).GetByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	return item, nil
}

// Checkout opens a loan for the borrower on an available item, or fulfills
// the borrower's ready-for-pickup reservation when the item is held for
// them. Checking out an item reserved for someone else fails.
func (c *Coordinator) Checkout(ctx context.Context, itemID, borrowerID uint, dueDate *time.Time) (*entities.Loan, error) {
	var loan *entities.Loan

	err := c.withItem(ctx, itemID, func(tx *gorm.DB) error {
		if _, err := c.loadMember(tx, borrowerID); err != nil {
			return err
		}
		item, err := loadItem(tx, itemID)
		if err != nil {
			return err
		}

		led := ledger.New(loans.NewRepository(tx), c.policy)
		now := c.clock()

		switch item.Status {
		case entities.ItemStatusAvailable:
			loan, err = led.OpenLoan(itemID, borrowerID, now, dueDate)
			if err != nil {
				return err
			}

		case entities.ItemStatusReserved:
			if item.ReservedForID != borrowerID {
				return ErrItemReservedForAnotherUser
			}
			resRepo := reservations.NewRepository(tx)
			reservation, err := resRepo.GetReadyForPickup(itemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemReservedForAnotherUser
				}
				return fmt.Errorf("failed to load reservation for item %d: %w", itemID, err)
			}
			if reservation.BorrowerID != borrowerID {
				return ErrItemReservedForAnotherUser
			}

			queue := holds.New(resRepo, loans.NewRepository(tx), c.policy)
			if err := queue.Fulfill(reservation); err != nil {
				return err
			}
			loan, err = led.OpenLoan(itemID, borrowerID, now, dueDate)
			if err != nil {
				return err
			}

		default:
			return ErrItemUnavailable
		}

		return items.NewRepository(tx).UpdateStatus(itemID, entities.ItemStatusCheckedOut, 0)
	})
	if err != nil {
		return nil, err
	}
	if c.audit != nil {
		c.audit.LogCheckout(loan)
	}
	return loan, nil
}

// ReturnItem closes the loan at the return timestamp (now unless a backdated
// correction is supplied) and reconciles the item: a good return promotes
// the next queued hold or frees the item; damaged and lost returns park the
// item in the matching status without touching the queue.
func (c *Coordinator) ReturnItem(ctx context.Context, loanID uint, condition entities.ReturnCondition, returnTs *time.Time) (*entities.Loan, *entities.Reservation, error) {
	// The loan row tells us which item to lock; the close is re-validated
	// inside the transaction.
	preview, err := loans.NewRepository(c.db).GetByID(loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ledger.ErrLoanNotFound
		}
		return nil, nil, fmt.Errorf("failed to load loan %d: %w", loanID, err)
	}
	itemID := preview.ItemID

	var closed *entities.Loan
	var promoted *entities.Reservation

	err = c.withItem(ctx, itemID, func(tx *gorm.DB) error {
		now := c.clock()
		ts := now
		if returnTs != nil {
			ts = *returnTs
		}

		led := ledger.New(loans.NewRepository(tx), c.policy)
		closed, err = led.CloseLoan(loanID, condition, ts)
		if err != nil {
			return err
		}

		itemsRepo := items.NewRepository(tx)
		switch condition {
		case entities.ReturnConditionDamaged:
			return itemsRepo.UpdateStatus(itemID, entities.ItemStatusDamaged, 0)
		case entities.ReturnConditionLost:
			return itemsRepo.UpdateStatus(itemID, entities.ItemStatusLost, 0)
		}

		queue := holds.New(reservations.NewRepository(tx), loans.NewRepository(tx), c.policy)
		promoted, err = queue.PromoteNext(itemID, now)
		if err != nil {
			return err
		}
		if promoted != nil {
			return itemsRepo.UpdateStatus(itemID, entities.ItemStatusReserved, promoted.BorrowerID)
		}
		return itemsRepo.UpdateStatus(itemID, entities.ItemStatusAvailable, 0)
	})
	if err != nil {
		return nil, nil, err
	}
	if c.audit != nil {
		c.audit.LogReturn(closed, condition)
	}
	return closed, promoted, nil
}

// PlaceHold appends the borrower to the item's reservation queue.
func (c *Coordinator) PlaceHold(ctx context.Context, itemID, borrowerID uint) (*entities.Reservation, error) {
	var reservation *entities.Reservation

	err := c.withItem(ctx, itemID, func(tx *gorm.DB) error {
		if _, err := c.loadMember(tx, borrowerID); err != nil {
			return err
		}
		item, err := loadItem(tx, itemID)
		if err != nil {
			return err
		}

		queue := holds.New(reservations.NewRepository(tx), loans.NewRepository(tx), c.policy)
		reservation, err = queue.PlaceHold(item, borrowerID, c.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	if c.audit != nil {
		c.audit.LogHold("place_hold", reservation)
	}
	return reservation, nil
}

// CancelHold cancels a hold. Cancelling the ready-for-pickup hold promotes
// the next queued borrower or frees the item.
func (c *Coordinator) CancelHold(ctx context.Context, reservationID uint) (*entities.Reservation, error) {
	preview, err := reservations.NewRepository(c.db).GetByID(reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, holds.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
	}
	itemID := preview.ItemID

	var cancelled *entities.Reservation

	err = c.withItem(ctx, itemID, func(tx *gorm.DB) error {
		resRepo := reservations.NewRepository(tx)
		current, err := resRepo.GetByID(reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return holds.ErrReservationNotFound
			}
			return fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
		}
		wasReady := current.Status == entities.ReservationStatusReadyForPickup

		queue := holds.New(resRepo, loans.NewRepository(tx), c.policy)
		var promoted *entities.Reservation
		cancelled, promoted, err = queue.CancelHold(reservationID, c.clock())
		if err != nil {
			return err
		}

		if !wasReady {
			return nil
		}
		itemsRepo := items.NewRepository(tx)
		if promoted != nil {
			return itemsRepo.UpdateStatus(itemID, entities.ItemStatusReserved, promoted.BorrowerID)
		}
		return itemsRepo.UpdateStatus(itemID, entities.ItemStatusAvailable, 0)
	})
	if err != nil {
		return nil, err
	}
	if c.audit != nil {
		c.audit.LogHold("cancel_hold", cancelled)
	}
	return cancelled, nil
}

// QueuePosition is the 1-based rank of a pending hold. Read-only, no lock.
func (c *Coordinator) QueuePosition(ctx context.Context, reservationID uint) (int, error) {
	tx := c.db.WithContext(ctx)
	queue := holds.New(reservations.NewRepository(tx), loans.NewRepository(tx), c.policy)
	return queue.QueuePosition(reservationID)
}

// ForceStatus is the administrative override: it bypasses every loan and
// reservation check, and every call lands in the audit trail.
func (c *Coordinator) ForceStatus(ctx context.Context, itemID uint, status entities.ItemStatus, reason string) (*entities.CatalogItem, error) {
	var item *entities.CatalogItem
	var from entities.ItemStatus

	err := c.withItem(ctx, itemID, func(tx *gorm.DB) error {
		var err error
		item, err = loadItem(tx, itemID)
		if err != nil {
			return err
		}
		from = item.Status

		reservedFor := uint(0)
		if status == entities.ItemStatusReserved {
			reservedFor = item.ReservedForID
		}
		if err := items.NewRepository(tx).UpdateStatus(itemID, status, reservedFor); err != nil {
			return err
		}
		item.Status = status
		item.ReservedForID = reservedFor
		return nil
	})

	if c.audit != nil {
		c.audit.LogForceStatus(itemID, from, status, reason, err)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// MarkOverdue flips a checked-out loan past its due date to overdue.
// Idempotent; called by the sweep. The transition touches only the loan row,
// never the item projection, so it runs without the item lock and cannot
// stall live checkout traffic.
func (c *Coordinator) MarkOverdue(ctx context.Context, loanID uint) (*entities.Loan, error) {
	var loan *entities.Loan
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		loan, err = ledger.New(loans.NewRepository(tx), c.policy).MarkOverdue(loanID, c.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ExpireStalePickups expires ready-for-pickup holds whose deadline passed at
// now, cascading promotion down each item's queue. Items whose lock cannot
// be acquired in time are skipped and picked up by the next sweep; a skipped
// or failed item never aborts the rest.
func (c *Coordinator) ExpireStalePickups(ctx context.Context, now time.Time) (expired, promoted []entities.Reservation, err error) {
	stale, err := reservations.NewRepository(c.db).ListStalePickups(now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list stale pickups: %w", err)
	}

	for i := range stale {
		reservation := stale[i]

		opErr := c.withItem(ctx, reservation.ItemID, func(tx *gorm.DB) error {
			resRepo := reservations.NewRepository(tx)
			current, err := resRepo.GetByID(reservation.ID)
			if err != nil {
				return err
			}
			// Someone converted or cancelled the hold while we waited.
			if current.Status != entities.ReservationStatusReadyForPickup ||
				current.PickupDeadline == nil || !current.PickupDeadline.Before(now) {
				return nil
			}

			queue := holds.New(resRepo, loans.NewRepository(tx), c.policy)
			next, err := queue.Expire(current, now)
			if err != nil {
				return err
			}

			expired = append(expired, *current)
			itemsRepo := items.NewRepository(tx)
			if next != nil {
				promoted = append(promoted, *next)
				return itemsRepo.UpdateStatus(current.ItemID, entities.ItemStatusReserved, next.BorrowerID)
			}
			return itemsRepo.UpdateStatus(current.ItemID, entities.ItemStatusAvailable, 0)
		})
		if opErr != nil {
			if errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded) {
				return expired, promoted, opErr
			}
			// ErrBusy or a per-record failure: the next sweep retries it.
			log.Printf("Pickup expiry: skipping reservation %d: %v", reservation.ID, opErr)
			continue
		}
	}
	return expired, promoted, nil
}

// Clock exposes the coordinator's time source for collaborators that must
// agree on "now" (the sweep).
func (c *Coordinator) Clock() policy.Clock {
	return c.clock
}

// Policy exposes the active circulation policy.
func (c *Coordinator) Policy() policy.Policy {
	return c.policy
}
