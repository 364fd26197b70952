package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/holds"
	"github.com/rujal408/library-management/internal/ledger"
	"github.com/rujal408/library-management/internal/lifecycle"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDomainError maps lifecycle engine errors onto HTTP statuses:
// precondition violations are 409, bad input 400, missing entities 404,
// and lock contention 429 with a retry hint.
func respondDomainError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, lifecycle.ErrBusy):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error(), Code: "busy"})
	case errors.Is(err, lifecycle.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "item_not_found"})
	case errors.Is(err, lifecycle.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "member_not_found"})
	case errors.Is(err, ledger.ErrLoanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "loan_not_found"})
	case errors.Is(err, holds.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "reservation_not_found"})
	case errors.Is(err, ledger.ErrInvalidDueDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_due_date"})
	case errors.Is(err, lifecycle.ErrItemUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "item_unavailable"})
	case errors.Is(err, lifecycle.ErrItemReservedForAnotherUser):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "item_reserved"})
	case errors.Is(err, lifecycle.ErrMemberSuspended):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "member_suspended"})
	case errors.Is(err, ledger.ErrLoanAlreadyClosed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "loan_already_closed"})
	case errors.Is(err, holds.ErrItemAvailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "item_available"})
	case errors.Is(err, holds.ErrDuplicateHold):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "duplicate_hold"})
	case errors.Is(err, holds.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_state"})
	default:
		respondInternalError(c, err, context)
	}
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePagination extracts limit/offset query parameters with defaults.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
