package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/errs"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/repository"
	"github.com/google/uuid"
)

// WorkOrderService 工单生命周期服务：状态迁移、排期、
// 工时与配件挂载。
type WorkOrderService struct {
	woRepo    *repository.WorkOrderRepository
	userRepo  *repository.UserRepository
	invRepo   *repository.InventoryRepository
	assetRepo *repository.AssetRepository
	notifier  Notifier
}

func NewWorkOrderService(
	woRepo *repository.WorkOrderRepository,
	userRepo *repository.UserRepository,
	invRepo *repository.InventoryRepository,
	assetRepo *repository.AssetRepository,
	notifier Notifier,
) *WorkOrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &WorkOrderService{
		woRepo:    woRepo,
		userRepo:  userRepo,
		invRepo:   invRepo,
		assetRepo: assetRepo,
		notifier:  notifier,
	}
}

// CreateWorkOrderRequest 创建工单请求（手工报修/纠正性维修）
type CreateWorkOrderRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	AssetID        *string `json:"asset_id"`
	Priority       string  `json:"priority"`
	AssignedTo     *string `json:"assigned_to"`
	DateNeeded     string  `json:"date_needed"` // YYYY-MM-DD
	EstimatedHours float64 `json:"estimated_hours"`
	EstimatedCost  float64 `json:"estimated_cost"`
}

// Create 手工创建工单，初始状态 requested
func (s *WorkOrderService) Create(ctx context.Context, userID string, req *CreateWorkOrderRequest) (*entity.WorkOrder, error) {
	if req.AssetID != nil {
		if _, err := s.assetRepo.FindByID(ctx, *req.AssetID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &errs.NotFoundError{Entity: "asset", ID: *req.AssetID}
			}
			return nil, err
		}
	}

	now := time.Now()
	wo := &entity.WorkOrder{
		ID:              uuid.New().String()[:32],
		WorkOrderNumber: generateWorkOrderNumber(now),
		Title:           req.Title,
		Description:     req.Description,
		AssetID:         req.AssetID,
		Priority:        req.Priority,
		Status:          entity.WOStatusRequested,
		RequestedBy:     userID,
		AssignedTo:      req.AssignedTo,
		DateRequested:   now,
		EstimatedHours:  req.EstimatedHours,
		EstimatedCost:   req.EstimatedCost,
	}
	if wo.Priority == "" {
		wo.Priority = entity.PriorityMedium
	}
	if req.DateNeeded != "" {
		t, err := time.Parse("2006-01-02", req.DateNeeded)
		if err != nil {
			return nil, &errs.ValidationError{Field: "date_needed", Reason: "expected YYYY-MM-DD"}
		}
		wo.DateNeeded = &t
	}

	if err := s.woRepo.Create(ctx, wo); err != nil {
		return nil, fmt.Errorf("创建工单失败: %w", err)
	}

	if wo.AssignedTo != nil {
		s.notifier.Publish(ctx, Event{
			Type:       EventWorkOrderAssigned,
			OccurredAt: now,
			Payload: map[string]interface{}{
				"work_order_id":     wo.ID,
				"work_order_number": wo.WorkOrderNumber,
				"assigned_to":       *wo.AssignedTo,
				"title":             wo.Title,
			},
		})
	}
	return wo, nil
}

// Get 工单详情
func (s *WorkOrderService) Get(ctx context.Context, id string) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "work_order", ID: id}
		}
		return nil, err
	}
	return wo, nil
}

// List 工单列表
func (s *WorkOrderService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.WorkOrder, int64, error) {
	return s.woRepo.FindAll(ctx, page, pageSize, filters)
}

// Transition 执行状态迁移。只接受迁移表内的状态对；
// 进入 completed 时补记完成时间并结算实际成本。
// 并发迁移同一张工单时以持久层状态前置条件裁决，落败方被拒绝。
func (s *WorkOrderService) Transition(ctx context.Context, id, target string) (*entity.WorkOrder, error) {
	if !IsWorkOrderStatus(target) {
		return nil, &errs.ValidationError{Field: "status", Reason: "unknown status " + target}
	}

	wo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(wo.Status, target) {
		return nil, &errs.InvalidTransitionError{WorkOrderID: wo.ID, From: wo.Status, To: target}
	}

	var dateCompleted *time.Time
	var actualCost *float64
	if target == entity.WOStatusCompleted {
		if wo.DateCompleted == nil {
			now := time.Now()
			dateCompleted = &now
		}
		cost := CompletionCost(wo)
		actualCost = &cost
	}

	if err := s.woRepo.UpdateStatusGuarded(ctx, wo.ID, wo.Status, target, dateCompleted, actualCost); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			current, refetchErr := s.Get(ctx, id)
			if refetchErr != nil {
				return nil, refetchErr
			}
			return nil, &errs.InvalidTransitionError{WorkOrderID: wo.ID, From: current.Status, To: target}
		}
		return nil, fmt.Errorf("更新工单状态失败: %w", err)
	}

	return s.Get(ctx, id)
}

// Schedule 显式排期：设置 DateScheduled，独立于状态迁移
func (s *WorkOrderService) Schedule(ctx context.Context, id string, date time.Time) (*entity.WorkOrder, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.woRepo.SetDateScheduled(ctx, id, normalizeDay(date)); err != nil {
		return nil, fmt.Errorf("工单排期失败: %w", err)
	}
	return s.Get(ctx, id)
}

// AddLaborRequest 工时记录请求
type AddLaborRequest struct {
	TechnicianID string  `json:"technician_id" binding:"required"`
	Hours        float64 `json:"hours" binding:"required,gt=0"`
	Notes        string  `json:"notes"`
	WorkedAt     string  `json:"worked_at"` // YYYY-MM-DD，缺省当天
}

// AddLabor 追加工时。费率取技师档案当前值并固化到记录上。
// 终态工单（completed/cancelled）不再接受资源挂载。
func (s *WorkOrderService) AddLabor(ctx context.Context, woID string, req *AddLaborRequest) (*entity.WorkOrderLabor, error) {
	wo, err := s.Get(ctx, woID)
	if err != nil {
		return nil, err
	}
	if wo.Status == entity.WOStatusCompleted || wo.Status == entity.WOStatusCancelled {
		return nil, &errs.ValidationError{Field: "status", Reason: "work order is " + wo.Status}
	}

	tech, err := s.userRepo.FindByID(ctx, req.TechnicianID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "user", ID: req.TechnicianID}
		}
		return nil, err
	}

	workedAt := time.Now()
	if req.WorkedAt != "" {
		t, err := time.Parse("2006-01-02", req.WorkedAt)
		if err != nil {
			return nil, &errs.ValidationError{Field: "worked_at", Reason: "expected YYYY-MM-DD"}
		}
		workedAt = t
	}

	labor := &entity.WorkOrderLabor{
		ID:           uuid.New().String()[:32],
		WorkOrderID:  wo.ID,
		TechnicianID: tech.ID,
		Hours:        req.Hours,
		HourlyRate:   tech.HourlyRate,
		Notes:        req.Notes,
		WorkedAt:     workedAt,
	}
	if err := s.woRepo.AddLabor(ctx, labor); err != nil {
		return nil, fmt.Errorf("记录工时失败: %w", err)
	}
	return labor, nil
}

// IssuePartsRequest 发料请求
type IssuePartsRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
}

// IssueParts 向工单发料。库存扣减、配件明细、库存流水在单个
// 事务内完成；数量不足时整体失败且库存不变。
func (s *WorkOrderService) IssueParts(ctx context.Context, woID, userID string, req *IssuePartsRequest) (*entity.WorkOrderPart, error) {
	if req.Quantity <= 0 {
		return nil, &errs.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	wo, err := s.Get(ctx, woID)
	if err != nil {
		return nil, err
	}
	if wo.Status == entity.WOStatusCompleted || wo.Status == entity.WOStatusCancelled {
		return nil, &errs.ValidationError{Field: "status", Reason: "work order is " + wo.Status}
	}

	part := &entity.WorkOrderPart{
		ID:              uuid.New().String()[:32],
		WorkOrderID:     wo.ID,
		InventoryItemID: req.InventoryItemID,
		Quantity:        req.Quantity,
		IssuedBy:        userID,
		IssuedAt:        time.Now(),
	}
	if err := s.woRepo.IssuePart(ctx, part); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "inventory_item", ID: req.InventoryItemID}
		}
		return nil, err
	}

	// 低库存告警：扣减后跌破再订货点时发事件
	if item, err := s.invRepo.FindByID(ctx, req.InventoryItemID); err == nil && item.Quantity <= item.ReorderLevel {
		s.notifier.Publish(ctx, Event{
			Type:       EventInventoryLow,
			OccurredAt: time.Now(),
			Payload: map[string]interface{}{
				"inventory_item_id": item.ID,
				"part_number":       item.PartNumber,
				"quantity":          item.Quantity,
				"reorder_level":     item.ReorderLevel,
			},
		})
	}

	return part, nil
}
