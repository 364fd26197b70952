// Package mailer defines the delivery sink notification events are handed
// to. Real transport (email, push, webhook) is a deployment concern; the
// default implementation just logs what would have been sent.
package mailer

import (
	"context"
	"log"

	"github.com/rujal408/library-management/internal/entities"
)

// Mailer delivers a single notification event to a borrower.
type Mailer interface {
	Send(ctx context.Context, event entities.NotificationEvent) error
}

// LogMailer writes each notification to the application log. Used when no
// transport is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, event entities.NotificationEvent) error {
	log.Printf("[MAIL] %s: %s %d for borrower %d (item %d, offset %d days)",
		event.Kind, event.SubjectType, event.SubjectID, event.BorrowerID, event.ItemID, event.DaysOffset)
	return nil
}

// DirectSink delivers events inline, without the task queue. Used when the
// queue is disabled.
type DirectSink struct {
	m Mailer
}

func NewDirectSink(m Mailer) DirectSink {
	return DirectSink{m: m}
}

func (s DirectSink) Dispatch(ctx context.Context, events []entities.NotificationEvent) error {
	for _, event := range events {
		if err := s.m.Send(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
