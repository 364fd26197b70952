package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/database"
	"github.com/rujal408/library-management/internal/entities"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// Status reports database connectivity plus a snapshot of the catalog and
// the open side of the loan ledger.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db == nil {
		checks["database"] = "not configured"
	} else if err := h.ping(); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "ok"

		var items, openLoans, pendingHolds int64
		h.db.DB.Model(&entities.CatalogItem{}).Count(&items)
		h.db.DB.Model(&entities.Loan{}).
			Where("status IN ?", []entities.LoanStatus{entities.LoanStatusCheckedOut, entities.LoanStatusOverdue}).
			Count(&openLoans)
		h.db.DB.Model(&entities.Reservation{}).
			Where("status = ?", entities.ReservationStatusPending).
			Count(&pendingHolds)

		checks["catalog"] = fmt.Sprintf("%d items", items)
		checks["circulation"] = fmt.Sprintf("%d open loans", openLoans)
		checks["holds"] = fmt.Sprintf("%d pending", pendingHolds)
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

func (h *HealthController) ping() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
