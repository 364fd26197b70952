package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rujal408/library-management/internal/entities"
)

// ItemStore defines catalog access for the item endpoints.
type ItemStore interface {
	Create(item *entities.CatalogItem) error
	GetByID(id uint) (*entities.CatalogItem, error)
	List(limit, offset int) ([]entities.CatalogItem, int64, error)
	ListByStatus(status entities.ItemStatus) ([]entities.CatalogItem, error)
	SearchByTitleOrAuthor(query string) ([]entities.CatalogItem, error)
}

// ItemLifecycle exposes the administrative status override.
type ItemLifecycle interface {
	ForceStatus(ctx context.Context, itemID uint, status entities.ItemStatus, reason string) (*entities.CatalogItem, error)
}

type ItemsController struct {
	store     ItemStore
	lifecycle ItemLifecycle
}

func NewItemsController(store ItemStore, lifecycle ItemLifecycle) *ItemsController {
	return &ItemsController{store: store, lifecycle: lifecycle}
}

// CreateItem registers a new catalog item
// POST /api/items
func (ic *ItemsController) CreateItem(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		Author   string `json:"author"`
		ISBN     string `json:"isbn"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	item := &entities.CatalogItem{
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		ISBN:     strings.TrimSpace(req.ISBN),
		Category: strings.TrimSpace(req.Category),
		Status:   entities.ItemStatusAvailable,
	}
	if item.Title == "" {
		respondBadRequest(c, "title must not be blank")
		return
	}

	if err := ic.store.Create(item); err != nil {
		respondInternalError(c, err, "create item")
		return
	}
	respondCreated(c, item)
}

// GetItem returns a single catalog item
// GET /api/items/:id
func (ic *ItemsController) GetItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := ic.store.GetByID(itemID)
	if err != nil {
		respondNotFound(c, "item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems lists the catalog, optionally filtered by status or search query
// GET /api/items?status=available&q=tolkien
func (ic *ItemsController) ListItems(c *gin.Context) {
	if query := strings.TrimSpace(c.Query("q")); query != "" {
		items, err := ic.store.SearchByTitleOrAuthor(query)
		if err != nil {
			respondInternalError(c, err, "search items")
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	if status := c.Query("status"); status != "" {
		itemStatus := entities.ItemStatus(status)
		if !validItemStatus(itemStatus) {
			respondBadRequest(c, "unknown item status: "+status)
			return
		}
		items, err := ic.store.ListByStatus(itemStatus)
		if err != nil {
			respondInternalError(c, err, "list items by status")
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	limit, offset := parsePagination(c)
	items, total, err := ic.store.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list items")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	})
}

// ForceStatus overrides an item's status, recording the operator's reason
// POST /api/items/:id/status
func (ic *ItemsController) ForceStatus(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	status := entities.ItemStatus(req.Status)
	if !validItemStatus(status) {
		respondBadRequest(c, "unknown item status: "+req.Status)
		return
	}

	item, err := ic.lifecycle.ForceStatus(c.Request.Context(), itemID, status, req.Reason)
	if err != nil {
		respondDomainError(c, err, "force status")
		return
	}
	c.JSON(http.StatusOK, item)
}

func validItemStatus(status entities.ItemStatus) bool {
	for _, s := range entities.ValidItemStatuses {
		if s == status {
			return true
		}
	}
	return false
}
