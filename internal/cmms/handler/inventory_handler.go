package handler

import (
	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/gin-gonic/gin"
)

// InventoryHandler 库存处理器
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListItems 库存列表
// GET /api/v1/cmms/inventory?search=xxx&low_stock=true
func (h *InventoryHandler) ListItems(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":    c.Query("search"),
		"low_stock": c.Query("low_stock"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取库存列表失败: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages(total, pageSize),
		},
	})
}

// GetItem 库存项详情
// GET /api/v1/cmms/inventory/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, item)
}

// CreateItem 创建库存项
// POST /api/v1/cmms/inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, item)
}

// AdjustItem 盘点调整
// POST /api/v1/cmms/inventory/:id/adjust
func (h *InventoryHandler) AdjustItem(c *gin.Context) {
	var req struct {
		Delta float64 `json:"delta" binding:"required"`
		Notes string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.Adjust(c.Request.Context(), c.Param("id"), req.Delta, GetUserID(c), req.Notes)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, item)
}

// ListTransactions 库存流水
// GET /api/v1/cmms/inventory/:id/transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListTransactions(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		InternalError(c, "获取库存流水失败: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages(total, pageSize),
		},
	})
}
