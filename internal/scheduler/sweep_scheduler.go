package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rujal408/library-management/internal/audit"
	"github.com/rujal408/library-management/internal/config"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/sweep"
)

// EventSink receives the notification events a sweep produced. The task
// queue dispatcher implements this in production wiring.
type EventSink interface {
	Dispatch(ctx context.Context, events []entities.NotificationEvent) error
}

// SweepScheduler runs the notification sweep on a cron schedule.
type SweepScheduler struct {
	sweeper      *sweep.Sweeper
	sink         EventSink
	auditService *audit.Service
	config       config.Sweep

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewSweepScheduler creates a new scheduler instance.
func NewSweepScheduler(sweeper *sweep.Sweeper, sink EventSink, auditService *audit.Service, cfg config.Sweep) *SweepScheduler {
	return &SweepScheduler{
		sweeper:      sweeper,
		sink:         sink,
		auditService: auditService,
		config:       cfg,
		cron:         cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateCronSchedule checks that a schedule string parses as standard
// 5-field cron.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// Start begins the scheduler if the sweep is enabled.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Notification sweep scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Notification sweep scheduler: started with schedule '%s'", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Notification sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *SweepScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *SweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSweeping returns whether a sweep is currently in progress.
func (s *SweepScheduler) IsSweeping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSweeping
}

// GetNextRunTime returns when the next sweep will occur.
func (s *SweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep performs the actual sweep and dispatches its events.
func (s *SweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Notification sweep: skipped (already sweeping)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	log.Printf("Notification sweep: starting")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.sweeper.Run(ctx, time.Now())
	if err != nil {
		errMsg := fmt.Sprintf("Sweep failed: %v", err)
		log.Printf("Notification sweep: %s", errMsg)
		s.logAudit(errMsg, result, err)
		return
	}

	if s.sink != nil && len(result.Events) > 0 {
		if err := s.sink.Dispatch(ctx, result.Events); err != nil {
			log.Printf("Notification sweep: failed to dispatch events: %v", err)
		}
	}

	duration := time.Since(startTime)
	successMsg := fmt.Sprintf("Processed %d records (%d failed), emitted %d events in %v",
		result.Processed, result.Failed, len(result.Events), duration.Round(time.Millisecond))
	log.Printf("Notification sweep: %s", successMsg)
	s.logAudit(successMsg, result, nil)
}

func (s *SweepScheduler) logAudit(description string, result *sweep.Result, err error) {
	if s.auditService == nil {
		return
	}
	processed, succeeded, failed := 0, 0, 0
	if result != nil {
		processed, succeeded, failed = result.Processed, result.Succeeded, result.Failed
	}
	s.auditService.LogSweep(description, processed, succeeded, failed, err)
}
