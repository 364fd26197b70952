package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/mailer"
)

// DeliverNotificationTask delivers a single notification event produced by
// the sweep. One task per event so a bad address retries alone.
type DeliverNotificationTask struct {
	Kind        entities.NotificationKind    `json:"kind"`
	SubjectType entities.NotificationSubject `json:"subject_type"`
	SubjectID   uint                         `json:"subject_id"`
	BorrowerID  uint                         `json:"borrower_id"`
	ItemID      uint                         `json:"item_id"`
	DaysOffset  int                          `json:"days_offset"`
}

// Config returns the queue configuration for notification delivery tasks.
func (t DeliverNotificationTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "deliver_notification",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// DeliverNotificationProcessor creates a processor function for
// DeliverNotificationTask.
func DeliverNotificationProcessor(m mailer.Mailer) backlite.QueueProcessor[DeliverNotificationTask] {
	return func(ctx context.Context, task DeliverNotificationTask) error {
		if m == nil {
			return fmt.Errorf("mailer not configured")
		}

		event := entities.NotificationEvent{
			Kind:        task.Kind,
			SubjectType: task.SubjectType,
			SubjectID:   task.SubjectID,
			BorrowerID:  task.BorrowerID,
			ItemID:      task.ItemID,
			DaysOffset:  task.DaysOffset,
		}
		if err := m.Send(ctx, event); err != nil {
			return fmt.Errorf("deliver %s notification for %s %d: %w",
				task.Kind, task.SubjectType, task.SubjectID, err)
		}
		return nil
	}
}

// NewDeliverNotificationQueue creates a backlite queue for delivery tasks.
func NewDeliverNotificationQueue(m mailer.Mailer) backlite.Queue {
	return backlite.NewQueue(DeliverNotificationProcessor(m))
}

// Dispatcher fans sweep events out into the delivery queue.
type Dispatcher struct {
	client *Client
}

func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch enqueues one delivery task per event. Events that fail to enqueue
// are logged and dropped; the mark ledger already recorded them, so they
// will not be re-emitted.
func (d *Dispatcher) Dispatch(ctx context.Context, events []entities.NotificationEvent) error {
	for _, event := range events {
		task := DeliverNotificationTask{
			Kind:        event.Kind,
			SubjectType: event.SubjectType,
			SubjectID:   event.SubjectID,
			BorrowerID:  event.BorrowerID,
			ItemID:      event.ItemID,
			DaysOffset:  event.DaysOffset,
		}
		if _, err := d.client.Add(task).Ctx(ctx).Save(); err != nil {
			log.Printf("Failed to enqueue %s notification for %s %d: %v",
				event.Kind, event.SubjectType, event.SubjectID, err)
		}
	}
	return nil
}
