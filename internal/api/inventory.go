package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

type InventoryHandler struct {
	inventory *service.InventoryService
	cache     *middleware.ResponseCache
	logger    *zap.Logger
}

func NewInventoryHandler(inventory *service.InventoryService, cache *middleware.ResponseCache, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, cache: cache, logger: logger}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inv := router.Group("/inventory")
	read := h.cache.Cache(scopeInventory)
	write := h.cache.Invalidate(scopeInventory)
	{
		inv.GET("", read, h.List)
		inv.GET("/:item", read, h.Get)
		inv.POST("", write, h.BulkAdd)
		inv.PUT("", write, h.Update)
		inv.POST("/add", write, h.Add)
		inv.POST("/remove", write, h.Remove)
		inv.DELETE("/category/:category", write, h.ClearCategory)
	}
}

func (h *InventoryHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	minQty, ok := queryIntPtr(c, "minQuantity")
	if !ok {
		return
	}
	maxQty, ok := queryIntPtr(c, "maxQuantity")
	if !ok {
		return
	}

	page, err := h.inventory.List(c.Request.Context(), userID, service.InventoryFilter{
		NameContains: c.Query("search"),
		MinQuantity:  minQty,
		MaxQuantity:  maxQty,
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	item, err := h.inventory.Get(c.Request.Context(), userID, c.Param("item"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "item and a positive quantity are required")
		return
	}
	item, err := h.inventory.Add(c.Request.Context(), userID, req.Item, req.Quantity, req.Unit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "item and a positive quantity are required")
		return
	}
	h.remove(c, userID, req)
}

func (h *InventoryHandler) remove(c *gin.Context, userID uuid.UUID, req types.InventoryItemRequest) {
	item, err := h.inventory.Remove(c.Request.Context(), userID, req.Item, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// BulkAdd adds every item or none of them.
func (h *InventoryHandler) BulkAdd(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.BulkInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "items are required")
		return
	}
	entries := make([]command.InventoryEntry, len(req.Items))
	for i, it := range req.Items {
		entries[i] = command.InventoryEntry{Item: it.Item, Quantity: it.Quantity, Unit: it.Unit}
	}
	items, err := h.inventory.BulkAdd(c.Request.Context(), userID, entries)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Update applies an add or remove operation to one item.
func (h *InventoryHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.InventoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "operation must be add or remove, with an item and a positive quantity")
		return
	}
	if req.Operation == "remove" {
		h.remove(c, userID, req.InventoryItemRequest)
		return
	}
	item, err := h.inventory.Add(c.Request.Context(), userID, req.Item, req.Quantity, req.Unit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) ClearCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	category := c.Param("category")
	removed, err := h.inventory.ClearCategory(c.Request.Context(), userID, category)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "removedItems": removed})
}
