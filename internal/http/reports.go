package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/reporting"
)

// ReportProvider defines the read-model queries the report endpoints serve.
type ReportProvider interface {
	CirculationSummary() (*reporting.CirculationSummary, error)
	OverdueReport() ([]reporting.OverdueRow, error)
	QueueDepths() ([]reporting.QueueDepthRow, error)
}

type ReportsController struct {
	provider ReportProvider
}

func NewReportsController(provider ReportProvider) *ReportsController {
	return &ReportsController{provider: provider}
}

// GetCirculationSummary returns aggregate counts across the collection
// GET /api/reports/circulation
func (rc *ReportsController) GetCirculationSummary(c *gin.Context) {
	summary, err := rc.provider.CirculationSummary()
	if err != nil {
		respondInternalError(c, err, "circulation summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetOverdueReport lists overdue loans with accrued fines
// GET /api/reports/overdue
func (rc *ReportsController) GetOverdueReport(c *gin.Context) {
	rows, err := rc.provider.OverdueReport()
	if err != nil {
		respondInternalError(c, err, "overdue report")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetQueueDepths lists pending reservation counts per item
// GET /api/reports/queues
func (rc *ReportsController) GetQueueDepths(c *gin.Context) {
	rows, err := rc.provider.QueueDepths()
	if err != nil {
		respondInternalError(c, err, "queue depths")
		return
	}
	c.JSON(http.StatusOK, rows)
}
