package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/entities"
)

// HoldService defines the reservation operations the hold endpoints forward
// to.
type HoldService interface {
	PlaceHold(ctx context.Context, itemID, borrowerID uint) (*entities.Reservation, error)
	CancelHold(ctx context.Context, reservationID uint) (*entities.Reservation, error)
	QueuePosition(ctx context.Context, reservationID uint) (int, error)
}

// ReservationStore defines read access to reservations.
type ReservationStore interface {
	GetByID(id uint) (*entities.Reservation, error)
	ListForBorrower(borrowerID uint) ([]entities.Reservation, error)
}

type HoldsController struct {
	service HoldService
	store   ReservationStore
}

func NewHoldsController(service HoldService, store ReservationStore) *HoldsController {
	return &HoldsController{service: service, store: store}
}

// PlaceHold appends a borrower to an item's queue
// POST /api/holds
func (hc *HoldsController) PlaceHold(c *gin.Context) {
	var req struct {
		ItemID     uint `json:"item_id" binding:"required"`
		BorrowerID uint `json:"borrower_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "item_id and borrower_id are required")
		return
	}

	reservation, err := hc.service.PlaceHold(c.Request.Context(), req.ItemID, req.BorrowerID)
	if err != nil {
		respondDomainError(c, err, "place hold")
		return
	}

	respondCreated(c, reservation)
}

// CancelHold cancels a pending or ready hold
// POST /api/holds/:id/cancel
func (hc *HoldsController) CancelHold(c *gin.Context) {
	reservationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := hc.service.CancelHold(c.Request.Context(), reservationID)
	if err != nil {
		respondDomainError(c, err, "cancel hold")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// GetHold returns a single reservation with its queue position when pending
// GET /api/holds/:id
func (hc *HoldsController) GetHold(c *gin.Context) {
	reservationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := hc.store.GetByID(reservationID)
	if err != nil {
		respondNotFound(c, "reservation")
		return
	}

	response := gin.H{"reservation": reservation}
	if reservation.Status == entities.ReservationStatusPending {
		if position, err := hc.service.QueuePosition(c.Request.Context(), reservationID); err == nil {
			response["queue_position"] = position
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetHoldsForMember returns a borrower's reservations
// GET /api/members/:id/holds
func (hc *HoldsController) GetHoldsForMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservations, err := hc.store.ListForBorrower(memberID)
	if err != nil {
		respondInternalError(c, err, "list member holds")
		return
	}
	c.JSON(http.StatusOK, reservations)
}
