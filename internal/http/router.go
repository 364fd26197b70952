package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	circulation := NewCirculationController(cfg.Circulation, cfg.LoanStore)
	holds := NewHoldsController(cfg.Holds, cfg.ReservationStore)
	items := NewItemsController(cfg.ItemStore, cfg.Lifecycle)
	members := NewMembersController(cfg.MemberStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog endpoints
	router.GET("/api/items", items.ListItems)
	router.POST("/api/items", items.CreateItem)
	router.GET("/api/items/:id", items.GetItem)
	router.POST("/api/items/:id/status", items.ForceStatus)

	// Member endpoints
	router.GET("/api/members", members.ListMembers)
	router.POST("/api/members", members.CreateMember)
	router.GET("/api/members/:id", members.GetMember)
	router.GET("/api/members/:id/loans", circulation.GetLoansForMember)
	router.GET("/api/members/:id/holds", holds.GetHoldsForMember)

	// Circulation endpoints
	router.POST("/api/loans", circulation.Checkout)
	router.GET("/api/loans/:id", circulation.GetLoan)
	router.POST("/api/loans/:id/return", circulation.ReturnItem)

	// Reservation endpoints
	router.POST("/api/holds", holds.PlaceHold)
	router.GET("/api/holds/:id", holds.GetHold)
	router.POST("/api/holds/:id/cancel", holds.CancelHold)

	// Reporting endpoints
	if cfg.Reports != nil {
		reports := NewReportsController(cfg.Reports)
		router.GET("/api/reports/circulation", reports.GetCirculationSummary)
		router.GET("/api/reports/overdue", reports.GetOverdueReport)
		router.GET("/api/reports/queues", reports.GetQueueDepths)
	}

	// Sweep endpoints
	if cfg.SweepRunner != nil {
		sweepController := NewSweepController(cfg.SweepRunner, cfg.EventSink, cfg.SweepStatus)
		router.POST("/api/sweep/run", sweepController.RunSweep)
		router.GET("/api/sweep/status", sweepController.GetSweepStatus)
	}

	// Audit trail endpoints
	if cfg.AuditStore != nil {
		auditController := NewAuditController(cfg.AuditStore)
		router.GET("/api/audit", auditController.GetEvents)
	}

	return router
}
