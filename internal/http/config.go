package http

import (
	"github.com/rujal408/library-management/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Circulation CirculationService
	Holds       HoldService
	Lifecycle   ItemLifecycle

	// Stores backing the read endpoints
	LoanStore        LoanStore
	ReservationStore ReservationStore
	ItemStore        ItemStore
	MemberStore      MemberStore
	AuditStore       AuditStore
	Reports          ReportProvider

	// Notification sweep
	SweepRunner SweepRunner
	SweepStatus SweepStatus
	EventSink   EventSink

	// Application info
	Version string
}
