package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rujal408/library-management/internal/database/audit"
	"github.com/rujal408/library-management/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogCheckout records an opened loan.
func (s *Service) LogCheckout(loan *entities.Loan) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCheckout,
		Action:      "checkout",
		Description: fmt.Sprintf("item %d checked out by member %d", loan.ItemID, loan.BorrowerID),
		EntityType:  "loan",
		EntityID:    &loan.ID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"item_id":     loan.ItemID,
		"borrower_id": loan.BorrowerID,
		"due_date":    loan.DueDate,
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogReturn records a closed loan with its settled fine.
func (s *Service) LogReturn(loan *entities.Loan, condition entities.ReturnCondition) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReturn,
		Action:      "return",
		Description: fmt.Sprintf("item %d returned %s", loan.ItemID, condition),
		EntityType:  "loan",
		EntityID:    &loan.ID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"item_id":     loan.ItemID,
		"borrower_id": loan.BorrowerID,
		"condition":   condition,
		"fine_amount": loan.FineAmount,
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogHold records a reservation queue change (placed or cancelled).
func (s *Service) LogHold(action string, reservation *entities.Reservation) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventHold,
		Action:      action,
		Description: fmt.Sprintf("hold on item %d for member %d", reservation.ItemID, reservation.BorrowerID),
		EntityType:  "reservation",
		EntityID:    &reservation.ID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"item_id":     reservation.ItemID,
		"borrower_id": reservation.BorrowerID,
		"status":      reservation.Status,
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogForceStatus records an administrative status override. Overrides bypass
// the loan and reservation checks, so every one of them lands in the trail
// with the operator's reason.
func (s *Service) LogForceStatus(itemID uint, from, to entities.ItemStatus, reason string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventForceStatus,
		Action:      "force_status",
		Description: reason,
		EntityType:  "item",
		EntityID:    &itemID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"from_status": from,
		"to_status":   to,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSweep records the outcome of a notification sweep run.
func (s *Service) LogSweep(description string, processed, succeeded, failed int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSweep,
		Action:      "notification_sweep",
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"processed": processed,
		"succeeded": succeeded,
		"failed":    failed,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// DeleteOldEvents prunes audit events older than the retention window.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
