package handler

import (
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/gin-gonic/gin"
)

// PMScheduleHandler 保养计划处理器
type PMScheduleHandler struct {
	svc *service.PMScheduleService
}

func NewPMScheduleHandler(svc *service.PMScheduleService) *PMScheduleHandler {
	return &PMScheduleHandler{svc: svc}
}

// ListSchedules 计划列表
// GET /api/v1/cmms/pm-schedules?asset_id=xxx&is_active=true&search=xxx
func (h *PMScheduleHandler) ListSchedules(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"asset_id":         c.Query("asset_id"),
		"is_active":        c.Query("is_active"),
		"maintenance_type": c.Query("maintenance_type"),
		"search":           c.Query("search"),
	}

	items, total, err := h.svc.ListSchedules(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取计划列表失败: "+err.Error())
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

// GetSchedule 计划详情
// GET /api/v1/cmms/pm-schedules/:id
func (h *PMScheduleHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.svc.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, schedule)
}

// CreateSchedule 创建计划
// POST /api/v1/cmms/pm-schedules
func (h *PMScheduleHandler) CreateSchedule(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	schedule, err := h.svc.CreateSchedule(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, schedule)
}

// UpdateSchedule 更新计划
// PUT /api/v1/cmms/pm-schedules/:id
func (h *PMScheduleHandler) UpdateSchedule(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	schedule, err := h.svc.UpdateSchedule(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, schedule)
}

// DeleteSchedule 删除计划
// DELETE /api/v1/cmms/pm-schedules/:id
func (h *PMScheduleHandler) DeleteSchedule(c *gin.Context) {
	if err := h.svc.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// ListOccurrences 期次列表（实时推导）
// GET /api/v1/cmms/pm-schedules/:id/occurrences?today=YYYY-MM-DD
func (h *PMScheduleHandler) ListOccurrences(c *gin.Context) {
	today := time.Now()
	if t := c.Query("today"); t != "" {
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			BadRequest(c, "today 参数格式错误，应为 YYYY-MM-DD")
			return
		}
		today = parsed
	}

	occurrences, err := h.svc.ListOccurrences(c.Request.Context(), c.Param("id"), today)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, occurrences)
}

// MaterializeOccurrence 把期次物化为工单（幂等）
// POST /api/v1/cmms/pm-schedules/:id/occurrences/:index/materialize
func (h *PMScheduleHandler) MaterializeOccurrence(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "期次序号格式错误")
		return
	}

	wo, err := h.svc.MaterializeOccurrence(c.Request.Context(), c.Param("id"), index, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, wo)
}

// ListTechnicians 可分配技师列表
// GET /api/v1/cmms/technicians
func (h *PMScheduleHandler) ListTechnicians(c *gin.Context) {
	users, err := h.svc.ListTechnicians(c.Request.Context())
	if err != nil {
		InternalError(c, "获取技师列表失败: "+err.Error())
		return
	}
	Success(c, users)
}

// AssignTechnicians 整体替换技师分配
// PUT /api/v1/cmms/pm-schedules/:id/technicians
func (h *PMScheduleHandler) AssignTechnicians(c *gin.Context) {
	var req struct {
		TechnicianIDs []string `json:"technician_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.AssignTechnicians(c.Request.Context(), c.Param("id"), req.TechnicianIDs); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
