package handler

import (
	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/gin-gonic/gin"
)

// AssetHandler 资产处理器
type AssetHandler struct {
	svc *service.AssetService
}

func NewAssetHandler(svc *service.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// ListAssets 资产列表
// GET /api/v1/cmms/assets?status=xxx&category=xxx&search=xxx
func (h *AssetHandler) ListAssets(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":   c.Query("status"),
		"category": c.Query("category"),
		"search":   c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取资产列表失败: "+err.Error())
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

// GetAsset 资产详情
// GET /api/v1/cmms/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, asset)
}

// CreateAsset 创建资产
// POST /api/v1/cmms/assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req service.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	asset, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, asset)
}

// UpdateAsset 更新资产
// PUT /api/v1/cmms/assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	var req service.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	asset, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, asset)
}

// DeleteAsset 删除资产
// DELETE /api/v1/cmms/assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
