package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Policy
		Sweep
		Tasks
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	// Policy holds the circulation business constants. All of them are
	// environment-overridable so branches with different fine schedules can
	// run the same binary.
	Policy struct {
		LoanPeriodDays   int
		FinePerDiem      float64 // currency units per day late
		DamagedSurcharge float64 // flat charge on a damaged return
		ReplacementCost  float64 // charged on a lost return, replaces the daily fine
		HoldExpiryDays   int     // how long a pending hold stays in the queue
		PickupWindowDays int     // how long a ready-for-pickup hold waits at the desk
		ItemLockWait     time.Duration
	}

	Sweep struct {
		Enabled  bool
		Schedule string // Cron format: "0 6 * * *" = daily at 06:00
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Audit struct {
		RetentionDays     int    // Days to keep audit events (default: 30)
		MarkRetentionDays int    // Days to keep notification marks (default: 90)
		CleanupSchedule   string // Cron for the nightly retention enqueue
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Circulation policy defaults
	v.SetDefault("loan_period_days", DefaultLoanPeriodDays)
	v.SetDefault("fine_per_diem", DefaultFinePerDiem)
	v.SetDefault("damaged_surcharge", DefaultDamagedSurcharge)
	v.SetDefault("replacement_cost", DefaultReplacementCost)
	v.SetDefault("hold_expiry_days", DefaultHoldExpiryDays)
	v.SetDefault("pickup_window_days", DefaultPickupWindowDays)
	v.SetDefault("item_lock_wait", "3s")

	// Notification sweep defaults
	v.SetDefault("sweep_enabled", true)
	v.SetDefault("sweep_schedule", "0 6 * * *") // Daily at 06:00

	// Retention defaults. Marks must outlive the largest overdue boundary
	// window or a pruned mark would re-fire.
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("mark_retention_days", 90)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *") // Daily at 03:30

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Policy: Policy{
			LoanPeriodDays:   v.GetInt("LOAN_PERIOD_DAYS"),
			FinePerDiem:      v.GetFloat64("FINE_PER_DIEM"),
			DamagedSurcharge: v.GetFloat64("DAMAGED_SURCHARGE"),
			ReplacementCost:  v.GetFloat64("REPLACEMENT_COST"),
			HoldExpiryDays:   v.GetInt("HOLD_EXPIRY_DAYS"),
			PickupWindowDays: v.GetInt("PICKUP_WINDOW_DAYS"),
			ItemLockWait:     v.GetDuration("ITEM_LOCK_WAIT"),
		},
		Sweep: Sweep{
			Enabled:  v.GetBool("SWEEP_ENABLED"),
			Schedule: v.GetString("SWEEP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Audit: Audit{
			RetentionDays:     v.GetInt("AUDIT_RETENTION_DAYS"),
			MarkRetentionDays: v.GetInt("MARK_RETENTION_DAYS"),
			CleanupSchedule:   v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
	}
}
