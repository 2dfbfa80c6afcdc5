package handler

import (
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/gin-gonic/gin"
)

// WorkOrderHandler 工单处理器
type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// ListWorkOrders 工单列表
// GET /api/v1/cmms/work-orders?status=xxx&asset_id=xxx&assigned_to=xxx
func (h *WorkOrderHandler) ListWorkOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"asset_id":    c.Query("asset_id"),
		"assigned_to": c.Query("assigned_to"),
		"schedule_id": c.Query("schedule_id"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取工单列表失败: "+err.Error())
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

// GetWorkOrder 工单详情
// GET /api/v1/cmms/work-orders/:id
func (h *WorkOrderHandler) GetWorkOrder(c *gin.Context) {
	wo, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}

// CreateWorkOrder 手工创建工单
// POST /api/v1/cmms/work-orders
func (h *WorkOrderHandler) CreateWorkOrder(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, wo)
}

// Transition 状态迁移
// POST /api/v1/cmms/work-orders/:id/transition
func (h *WorkOrderHandler) Transition(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}

// Schedule 显式排期
// POST /api/v1/cmms/work-orders/:id/schedule
func (h *WorkOrderHandler) Schedule(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"` // YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		BadRequest(c, "date 参数格式错误，应为 YYYY-MM-DD")
		return
	}

	wo, err := h.svc.Schedule(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}

// AddLabor 追加工时记录
// POST /api/v1/cmms/work-orders/:id/labor
func (h *WorkOrderHandler) AddLabor(c *gin.Context) {
	var req service.AddLaborRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	labor, err := h.svc.AddLabor(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, labor)
}

// IssueParts 工单发料
// POST /api/v1/cmms/work-orders/:id/parts
func (h *WorkOrderHandler) IssueParts(c *gin.Context) {
	var req service.IssuePartsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.IssueParts(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, part)
}
