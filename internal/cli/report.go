package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/rujal408/library-management/internal/config"
	"github.com/rujal408/library-management/internal/database"
	"github.com/rujal408/library-management/internal/policy"
	"github.com/rujal408/library-management/internal/reporting"
)

// ReportCommand prints circulation statistics for the database and exits.
type ReportCommand struct {
	DatabasePath string
	Overdue      bool
	Queues       bool
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand() *ReportCommand {
	return &ReportCommand{}
}

// ParseFlags parses command line flags
func (cmd *ReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")
	fs.BoolVar(&cmd.Overdue, "overdue", false, "List overdue loans with accrued fines")
	fs.BoolVar(&cmd.Queues, "queues", false, "List reservation queue depths per item")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s report [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print circulation statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the report command
func (cmd *ReportCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	reports := reporting.NewService(db.DB, policy.Default(), policy.SystemClock)

	summary, err := reports.CirculationSummary()
	if err != nil {
		return fmt.Errorf("failed to build circulation summary: %w", err)
	}

	fmt.Println("Circulation summary")
	fmt.Println("===================")
	fmt.Printf("Items available:      %d\n", summary.ItemsAvailable)
	fmt.Printf("Loans open:           %d\n", summary.LoansOpen)
	fmt.Printf("Loans overdue:        %d\n", summary.LoansOverdue)
	fmt.Printf("Holds pending:        %d\n", summary.HoldsPending)
	fmt.Printf("Holds ready:          %d\n", summary.HoldsReady)
	fmt.Printf("Loans returned:       %d\n", summary.LoansReturned)
	fmt.Printf("Fines accrued:        %.2f\n", summary.TotalFinesAccrued)

	if cmd.Overdue {
		rows, err := reports.OverdueReport()
		if err != nil {
			return fmt.Errorf("failed to build overdue report: %w", err)
		}
		fmt.Println("\nOverdue loans")
		fmt.Println("=============")
		for _, row := range rows {
			fmt.Printf("loan %d: %q borrower %d, %d days late, fine %.2f\n",
				row.LoanID, row.Title, row.BorrowerID, row.DaysLate, row.FineAccrued)
		}
	}

	if cmd.Queues {
		rows, err := reports.QueueDepths()
		if err != nil {
			return fmt.Errorf("failed to build queue report: %w", err)
		}
		fmt.Println("\nReservation queues")
		fmt.Println("==================")
		for _, row := range rows {
			fmt.Printf("item %d: %q, %d pending\n", row.ItemID, row.Title, row.PendingHolds)
		}
	}

	return nil
}
