package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/entities"
)

// MemberStore defines borrower access for the member endpoints.
type MemberStore interface {
	Create(member *entities.Member) error
	GetByID(id uint) (*entities.Member, error)
	List(limit, offset int) ([]entities.Member, int64, error)
}

type MembersController struct {
	store MemberStore
}

func NewMembersController(store MemberStore) *MembersController {
	return &MembersController{store: store}
}

// CreateMember registers a borrower
// POST /api/members
func (mc *MembersController) CreateMember(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and a valid email are required")
		return
	}

	member := &entities.Member{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Status: entities.MemberStatusActive,
	}
	if err := mc.store.Create(member); err != nil {
		respondInternalError(c, err, "create member")
		return
	}
	respondCreated(c, member)
}

// GetMember returns a single borrower
// GET /api/members/:id
func (mc *MembersController) GetMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := mc.store.GetByID(memberID)
	if err != nil {
		respondNotFound(c, "member")
		return
	}
	c.JSON(http.StatusOK, member)
}

// ListMembers lists borrowers with pagination
// GET /api/members
func (mc *MembersController) ListMembers(c *gin.Context) {
	limit, offset := parsePagination(c)
	members, total, err := mc.store.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list members")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    members,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	})
}
