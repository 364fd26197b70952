package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/entities"
)

// CirculationService defines the lifecycle operations the circulation
// endpoints forward to.
type CirculationService interface {
	Checkout(ctx context.Context, itemID, borrowerID uint, dueDate *time.Time) (*entities.Loan, error)
	ReturnItem(ctx context.Context, loanID uint, condition entities.ReturnCondition, returnTs *time.Time) (*entities.Loan, *entities.Reservation, error)
}

// LoanStore defines read access to the loan ledger.
type LoanStore interface {
	GetByID(id uint) (*entities.Loan, error)
	ListForBorrower(borrowerID uint) ([]entities.Loan, error)
}

type CirculationController struct {
	service CirculationService
	store   LoanStore
}

func NewCirculationController(service CirculationService, store LoanStore) *CirculationController {
	return &CirculationController{service: service, store: store}
}

// Checkout opens a loan
// POST /api/loans
func (cc *CirculationController) Checkout(c *gin.Context) {
	var req struct {
		ItemID     uint       `json:"item_id" binding:"required"`
		BorrowerID uint       `json:"borrower_id" binding:"required"`
		DueDate    *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "item_id and borrower_id are required")
		return
	}

	loan, err := cc.service.Checkout(c.Request.Context(), req.ItemID, req.BorrowerID, req.DueDate)
	if err != nil {
		respondDomainError(c, err, "checkout")
		return
	}

	respondCreated(c, loan)
}

// ReturnItem closes a loan
// POST /api/loans/:id/return
func (cc *CirculationController) ReturnItem(c *gin.Context) {
	loanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Condition  string     `json:"condition"`
		ReturnDate *time.Time `json:"return_date"`
	}
	_ = c.ShouldBindJSON(&req)

	condition := entities.ReturnCondition(req.Condition)
	switch condition {
	case "":
		condition = entities.ReturnConditionGood
	case entities.ReturnConditionGood, entities.ReturnConditionDamaged, entities.ReturnConditionLost:
	default:
		respondBadRequest(c, "condition must be one of: good, damaged, lost")
		return
	}

	loan, promoted, err := cc.service.ReturnItem(c.Request.Context(), loanID, condition, req.ReturnDate)
	if err != nil {
		respondDomainError(c, err, "return item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loan":     loan,
		"promoted": promoted,
	})
}

// GetLoan returns a single loan
// GET /api/loans/:id
func (cc *CirculationController) GetLoan(c *gin.Context) {
	loanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := cc.store.GetByID(loanID)
	if err != nil {
		respondNotFound(c, "loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// GetLoansForMember returns a borrower's loan history
// GET /api/members/:id/loans
func (cc *CirculationController) GetLoansForMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loans, err := cc.store.ListForBorrower(memberID)
	if err != nil {
		respondInternalError(c, err, "list member loans")
		return
	}
	c.JSON(http.StatusOK, loans)
}
