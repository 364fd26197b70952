package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// MarkLedgerCleaner provides the ability to delete old notification marks.
type MarkLedgerCleaner interface {
	DeleteOldMarks(olderThan time.Time) (int64, error)
}

// CleanupNotificationMarksTask prunes notification marks whose subjects are
// long settled. Marks must outlive the largest boundary window (14 days past
// due) or a pruned mark would re-fire; the default retention stays well
// clear of that.
type CleanupNotificationMarksTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for mark cleanup tasks.
func (t CleanupNotificationMarksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_notification_marks",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupNotificationMarksProcessor creates a processor function for
// CleanupNotificationMarksTask.
func CleanupNotificationMarksProcessor(cleaner MarkLedgerCleaner) backlite.QueueProcessor[CleanupNotificationMarksTask] {
	return func(ctx context.Context, task CleanupNotificationMarksTask) error {
		if cleaner == nil {
			return fmt.Errorf("notification mark cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays < 30 {
			retentionDays = 90
		}

		deleted, err := cleaner.DeleteOldMarks(time.Now().AddDate(0, 0, -retentionDays))
		if err != nil {
			return fmt.Errorf("cleanup notification marks: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d notification marks older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupNotificationMarksQueue creates a backlite queue for mark cleanup
// tasks.
func NewCleanupNotificationMarksQueue(cleaner MarkLedgerCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupNotificationMarksProcessor(cleaner))
}
