package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/rujal408/library-management/internal/audit"
	auditrepo "github.com/rujal408/library-management/internal/database/audit"
	itemsrepo "github.com/rujal408/library-management/internal/database/items"
	loansrepo "github.com/rujal408/library-management/internal/database/loans"
	membersrepo "github.com/rujal408/library-management/internal/database/members"
	notificationsrepo "github.com/rujal408/library-management/internal/database/notifications"
	reservationsrepo "github.com/rujal408/library-management/internal/database/reservations"
	"github.com/rujal408/library-management/internal/http"
	"github.com/rujal408/library-management/internal/lifecycle"
	"github.com/rujal408/library-management/internal/mailer"
	"github.com/rujal408/library-management/internal/reporting"
	"github.com/rujal408/library-management/internal/scheduler"
	"github.com/rujal408/library-management/internal/sweep"
	"github.com/rujal408/library-management/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.ItemStore = (*itemsrepo.Repository)(nil)
var _ http.LoanStore = (*loansrepo.Repository)(nil)
var _ http.ReservationStore = (*reservationsrepo.Repository)(nil)
var _ http.MemberStore = (*membersrepo.Repository)(nil)
var _ http.AuditStore = (*auditrepo.Repository)(nil)

// =============================================================================
// Lifecycle Coordinator
// =============================================================================

var _ http.CirculationService = (*lifecycle.Coordinator)(nil)
var _ http.HoldService = (*lifecycle.Coordinator)(nil)
var _ http.ItemLifecycle = (*lifecycle.Coordinator)(nil)

// =============================================================================
// Notification Sweep
// =============================================================================

var _ http.SweepRunner = (*sweep.Sweeper)(nil)
var _ http.SweepStatus = (*scheduler.SweepScheduler)(nil)
var _ http.ReportProvider = (*reporting.Service)(nil)

// EventSink implementations
var _ scheduler.EventSink = (*tasks.Dispatcher)(nil)
var _ scheduler.EventSink = mailer.DirectSink{}
var _ http.EventSink = (*tasks.Dispatcher)(nil)

// =============================================================================
// Background Cleanup
// =============================================================================

var _ tasks.MarkLedgerCleaner = (*notificationsrepo.Repository)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
