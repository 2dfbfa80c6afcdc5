package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/errs"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/repository"
	"github.com/google/uuid"
)

// InventoryService 备件库存服务
type InventoryService struct {
	repo     *repository.InventoryRepository
	notifier Notifier
}

func NewInventoryService(repo *repository.InventoryRepository, notifier Notifier) *InventoryService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &InventoryService{repo: repo, notifier: notifier}
}

// List 库存列表
func (s *InventoryService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryItem, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get 库存项详情
func (s *InventoryService) Get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "inventory_item", ID: id}
		}
		return nil, err
	}
	return item, nil
}

// CreateItemRequest 创建库存项请求
type CreateItemRequest struct {
	PartNumber   string  `json:"part_number" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
	Location     string  `json:"location"`
}

// Create 创建库存项
func (s *InventoryService) Create(ctx context.Context, req *CreateItemRequest) (*entity.InventoryItem, error) {
	if req.Quantity < 0 {
		return nil, &errs.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	item := &entity.InventoryItem{
		ID:           uuid.New().String()[:32],
		PartNumber:   req.PartNumber,
		Name:         req.Name,
		Description:  req.Description,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		Unit:         req.Unit,
		ReorderLevel: req.ReorderLevel,
		Location:     req.Location,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("创建库存项失败: %w", err)
	}
	return item, nil
}

// Adjust 盘点调整库存数量（delta 可正可负，不允许调成负库存）
func (s *InventoryService) Adjust(ctx context.Context, id string, delta float64, userID, notes string) (*entity.InventoryItem, error) {
	if delta == 0 {
		return nil, &errs.ValidationError{Field: "delta", Reason: "must not be zero"}
	}

	item, err := s.repo.AdjustQuantity(ctx, id, delta, userID, notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "inventory_item", ID: id}
		}
		return nil, err
	}

	if item.Quantity <= item.ReorderLevel {
		s.notifier.Publish(ctx, Event{
			Type:       EventInventoryLow,
			OccurredAt: item.UpdatedAt,
			Payload: map[string]interface{}{
				"inventory_item_id": item.ID,
				"part_number":       item.PartNumber,
				"quantity":          item.Quantity,
				"reorder_level":     item.ReorderLevel,
			},
		})
	}
	return item, nil
}

// ListTransactions 库存流水
func (s *InventoryService) ListTransactions(ctx context.Context, itemID string, page, pageSize int) ([]entity.InventoryTransaction, int64, error) {
	return s.repo.ListTransactions(ctx, itemID, page, pageSize)
}
