package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rujal408/library-management/internal/config"
	"github.com/rujal408/library-management/internal/tasks"
)

// RetentionScheduler enqueues the nightly retention work: pruning old audit
// events and settled notification marks. The pruning itself runs on the task
// queue so a slow delete never holds up the scheduler.
type RetentionScheduler struct {
	client *tasks.Client
	config config.Audit

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewRetentionScheduler(client *tasks.Client, cfg config.Audit) *RetentionScheduler {
	return &RetentionScheduler{
		client: client,
		config: cfg,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the retention enqueue.
func (s *RetentionScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.CleanupSchedule, s.enqueue); err != nil {
		return fmt.Errorf("invalid retention schedule '%s': %w", s.config.CleanupSchedule, err)
	}

	s.cron.Start()
	s.isRunning = true

	log.Printf("Retention scheduler: started with schedule '%s'", s.config.CleanupSchedule)
	return nil
}

// Stop halts the schedule, waiting for an in-flight enqueue to finish.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Retention scheduler: stopped")
}

// RunNow enqueues the retention tasks immediately.
func (s *RetentionScheduler) RunNow() {
	s.enqueue()
}

func (s *RetentionScheduler) enqueue() {
	ctx := context.Background()

	auditTask := tasks.CleanupAuditEventsTask{RetentionDays: s.config.RetentionDays}
	if _, err := s.client.Add(auditTask).Ctx(ctx).Save(); err != nil {
		log.Printf("Retention: failed to enqueue audit event cleanup: %v", err)
	}

	markTask := tasks.CleanupNotificationMarksTask{RetentionDays: s.config.MarkRetentionDays}
	if _, err := s.client.Add(markTask).Ctx(ctx).Save(); err != nil {
		log.Printf("Retention: failed to enqueue notification mark cleanup: %v", err)
	}
}
