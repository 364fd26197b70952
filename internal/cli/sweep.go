package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rujal408/library-management/internal/audit"
	"github.com/rujal408/library-management/internal/config"
	"github.com/rujal408/library-management/internal/database"
	auditrepo "github.com/rujal408/library-management/internal/database/audit"
	"github.com/rujal408/library-management/internal/lifecycle"
	"github.com/rujal408/library-management/internal/mailer"
	"github.com/rujal408/library-management/internal/policy"
	"github.com/rujal408/library-management/internal/sweep"
)

// SweepCommand runs a single notification sweep against the database and
// exits. Useful from cron on deployments that don't keep the server running
// overnight.
type SweepCommand struct {
	DatabasePath string
	Now          string
	Deliver      bool
	Verbose      bool
}

// NewSweepCommand creates a new SweepCommand
func NewSweepCommand() *SweepCommand {
	return &SweepCommand{}
}

// ParseFlags parses command line flags
func (cmd *SweepCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")
	fs.StringVar(&cmd.Now, "now", "", "Reference instant as RFC 3339 (default: current time)")
	fs.BoolVar(&cmd.Deliver, "deliver", true, "Deliver the emitted events (false: mark and report only)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every emitted event")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sweep [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run one notification sweep: mark overdue loans, expire stale pickups,\n")
		fmt.Fprintf(os.Stderr, "and emit due-date and reservation reminders.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sweep\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sweep -db /var/lib/library/library.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sweep -now 2026-09-01T06:00:00Z -verbose\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the sweep command
func (cmd *SweepCommand) Run() error {
	now := time.Now()
	if cmd.Now != "" {
		parsed, err := time.Parse(time.RFC3339, cmd.Now)
		if err != nil {
			return fmt.Errorf("invalid -now value %q: %w", cmd.Now, err)
		}
		now = parsed
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	coordinator := lifecycle.NewCoordinator(db.DB, policy.Default(), nil, auditService, 0)
	sweeper := sweep.New(db.DB, coordinator)

	ctx := context.Background()
	result, err := sweeper.Run(ctx, now)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Processed %d records (%d succeeded, %d failed), %d events\n",
		result.Processed, result.Succeeded, result.Failed, len(result.Events))

	if cmd.Verbose {
		for _, event := range result.Events {
			fmt.Printf("  %s %s %d (borrower %d, item %d)\n",
				event.Kind, event.SubjectType, event.SubjectID, event.BorrowerID, event.ItemID)
		}
	}

	if cmd.Deliver && len(result.Events) > 0 {
		sink := mailer.NewDirectSink(mailer.LogMailer{})
		if err := sink.Dispatch(ctx, result.Events); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}
	}

	return nil
}
