package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/errs"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/gin-gonic/gin"
)

// Handlers CMMS处理器集合
type Handlers struct {
	PMSchedule *PMScheduleHandler
	WorkOrder  *WorkOrderHandler
	Inventory  *InventoryHandler
	Asset      *AssetHandler
}

// NewHandlers 创建CMMS处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		PMSchedule: NewPMScheduleHandler(svc.PMSchedule),
		WorkOrder:  NewWorkOrderHandler(svc.WorkOrder),
		Inventory:  NewInventoryHandler(svc.Inventory),
		Asset:      NewAssetHandler(svc.Asset),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 把核心错误类型翻译为HTTP状态码与用户消息。
// 校验/配置类 → 400，业务冲突类 → 409，不存在 → 404，其余 → 500。
func RespondError(c *gin.Context, err error) {
	var (
		validationErr   *errs.ValidationError
		configErr       *errs.ConfigurationError
		inactiveErr     *errs.InactiveScheduleError
		outOfRangeErr   *errs.OutOfRangeError
		transitionErr   *errs.InvalidTransitionError
		insufficientErr *errs.InsufficientStockError
		notFoundErr     *errs.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		BadRequest(c, "参数校验失败: "+validationErr.Error())
	case errors.As(err, &configErr):
		BadRequest(c, "计划配置不合法: "+configErr.Error())
	case errors.As(err, &inactiveErr):
		Conflict(c, "计划已停用: "+inactiveErr.ScheduleID)
	case errors.As(err, &outOfRangeErr):
		Conflict(c, "期次序号越界: "+outOfRangeErr.Error())
	case errors.As(err, &transitionErr):
		Conflict(c, "非法状态迁移: "+transitionErr.From+" -> "+transitionErr.To)
	case errors.As(err, &insufficientErr):
		Conflict(c, "库存不足: "+insufficientErr.Error())
	case errors.As(err, &notFoundErr):
		NotFound(c, "记录不存在: "+notFoundErr.Entity)
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
