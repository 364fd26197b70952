package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/sweep"
)

// SweepRunner executes one notification sweep at a given instant.
type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (*sweep.Result, error)
}

// SweepStatus exposes the scheduler's current state.
type SweepStatus interface {
	IsRunning() bool
	IsSweeping() bool
	GetNextRunTime() *time.Time
}

// EventSink forwards sweep events for delivery.
type EventSink interface {
	Dispatch(ctx context.Context, events []entities.NotificationEvent) error
}

type SweepController struct {
	runner SweepRunner
	sink   EventSink
	status SweepStatus
}

func NewSweepController(runner SweepRunner, sink EventSink, status SweepStatus) *SweepController {
	return &SweepController{runner: runner, sink: sink, status: status}
}

// RunSweep triggers a sweep immediately. An optional RFC 3339 "now" query
// parameter pins the reference instant, which back-office tooling uses to
// replay a missed day.
// POST /api/sweep/run
func (sc *SweepController) RunSweep(c *gin.Context) {
	now := time.Now()
	if raw := c.Query("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "now must be an RFC 3339 timestamp")
			return
		}
		now = parsed
	}

	result, err := sc.runner.Run(c.Request.Context(), now)
	if err != nil {
		respondInternalError(c, err, "run sweep")
		return
	}

	if sc.sink != nil && len(result.Events) > 0 {
		if err := sc.sink.Dispatch(c.Request.Context(), result.Events); err != nil {
			respondInternalError(c, err, "dispatch sweep events")
			return
		}
	}
	c.JSON(http.StatusOK, result)
}

// GetSweepStatus reports scheduler state
// GET /api/sweep/status
func (sc *SweepController) GetSweepStatus(c *gin.Context) {
	response := gin.H{
		"scheduler_running": false,
		"sweep_in_progress": false,
	}
	if sc.status != nil {
		response["scheduler_running"] = sc.status.IsRunning()
		response["sweep_in_progress"] = sc.status.IsSweeping()
		if next := sc.status.GetNextRunTime(); next != nil {
			response["next_run_at"] = next
		}
	}
	c.JSON(http.StatusOK, response)
}
