package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/audit"
	"github.com/rujal408/library-management/internal/config"
	"github.com/rujal408/library-management/internal/database"
	auditrepo "github.com/rujal408/library-management/internal/database/audit"
	itemsrepo "github.com/rujal408/library-management/internal/database/items"
	loansrepo "github.com/rujal408/library-management/internal/database/loans"
	membersrepo "github.com/rujal408/library-management/internal/database/members"
	notificationsrepo "github.com/rujal408/library-management/internal/database/notifications"
	reservationsrepo "github.com/rujal408/library-management/internal/database/reservations"
	http_controllers "github.com/rujal408/library-management/internal/http"
	"github.com/rujal408/library-management/internal/lifecycle"
	"github.com/rujal408/library-management/internal/mailer"
	"github.com/rujal408/library-management/internal/policy"
	"github.com/rujal408/library-management/internal/reporting"
	"github.com/rujal408/library-management/internal/scheduler"
	"github.com/rujal408/library-management/internal/sweep"
	"github.com/rujal408/library-management/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the scheduler and task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting library lifecycle engine v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	pol := policy.FromConfig(cfg.Policy)

	// Repositories
	itemStore := itemsrepo.NewRepository(db.DB)
	loanStore := loansrepo.NewRepository(db.DB)
	reservationStore := reservationsrepo.NewRepository(db.DB)
	memberStore := membersrepo.NewRepository(db.DB)
	markStore := notificationsrepo.NewRepository(db.DB)
	auditStore := auditrepo.NewRepository(db.DB)

	auditService := audit.NewService(auditStore)

	// Lifecycle coordinator serializes all state transitions per item
	coordinator := lifecycle.NewCoordinator(db.DB, pol, nil, auditService, cfg.Policy.ItemLockWait)
	sweeper := sweep.New(db.DB, coordinator)
	reports := reporting.NewService(db.DB, pol, coordinator.Clock())

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var retentionScheduler *scheduler.RetentionScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewDeliverNotificationQueue(mailer.LogMailer{}),
			tasks.NewCleanupNotificationMarksQueue(markStore),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Nightly retention: prune old audit events and settled
		// notification marks through the queue.
		retentionScheduler = scheduler.NewRetentionScheduler(taskClient, cfg.Audit)
		if err := retentionScheduler.Start(); err != nil {
			log.Printf("WARNING: Failed to start retention scheduler: %v", err)
		}
	}

	// Sweep events go through the task queue when it is running, otherwise
	// straight to the mailer.
	var sink scheduler.EventSink
	if taskClient != nil {
		sink = tasks.NewDispatcher(taskClient)
	} else {
		sink = mailer.NewDirectSink(mailer.LogMailer{})
	}

	// Start the scheduled notification sweep
	sweepScheduler := scheduler.NewSweepScheduler(sweeper, sink, auditService, cfg.Sweep)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	if err := sweepScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: Failed to start sweep scheduler: %v", err)
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:         db,
		Circulation:      coordinator,
		Holds:            coordinator,
		Lifecycle:        coordinator,
		LoanStore:        loanStore,
		ReservationStore: reservationStore,
		ItemStore:        itemStore,
		MemberStore:      memberStore,
		AuditStore:       auditStore,
		Reports:          reports,
		SweepRunner:      sweeper,
		SweepStatus:      sweepScheduler,
		EventSink:        sink,
		Version:          version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		sweepScheduler.Stop()
		schedulerCancel()
		if retentionScheduler != nil {
			retentionScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
