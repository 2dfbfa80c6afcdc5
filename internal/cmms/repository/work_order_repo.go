package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/errs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkOrderRepository 工单仓库
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// FindAll 查询工单列表
func (r *WorkOrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.WorkOrder, int64, error) {
	var items []entity.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if assetID := filters["asset_id"]; assetID != "" {
		query = query.Where("asset_id = ?", assetID)
	}
	if assignedTo := filters["assigned_to"]; assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if scheduleID := filters["schedule_id"]; scheduleID != "" {
		query = query.Where("schedule_id = ?", scheduleID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("work_order_number ILIKE ? OR title ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Asset").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找工单（含工时与配件明细）
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Preload("Labor").
		Preload("Parts").
		Where("id = ?", id).
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindByScheduleAndSequence 按期次回溯引用查找已生成的工单
func (r *WorkOrderRepository) FindByScheduleAndSequence(ctx context.Context, scheduleID string, sequenceIndex int) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND sequence_index = ?", scheduleID, sequenceIndex).
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindByScheduleID 查找计划名下所有已生成的工单
func (r *WorkOrderRepository) FindByScheduleID(ctx context.Context, scheduleID string) ([]entity.WorkOrder, error) {
	var items []entity.WorkOrder
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("sequence_index ASC").
		Find(&items).Error
	return items, err
}

// FindLegacyCandidates 查找某资产下无回溯引用的工单，
// 供旧数据的启发式期次匹配使用。
// 固定按申请时间、ID 排序，保证多条候选命中同一期次时每次读取关联到同一条。
func (r *WorkOrderRepository) FindLegacyCandidates(ctx context.Context, assetID string) ([]entity.WorkOrder, error) {
	var items []entity.WorkOrder
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND schedule_id IS NULL", assetID).
		Order("date_requested ASC, id ASC").
		Find(&items).Error
	return items, err
}

// Create 创建工单
func (r *WorkOrderRepository) Create(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

// UpdateStatusGuarded 带前置状态条件的状态更新。并发请求竞争同一张
// 工单时只有一方命中，未命中方返回 ErrStaleStatus。
func (r *WorkOrderRepository) UpdateStatusGuarded(ctx context.Context, id, fromStatus, toStatus string, dateCompleted *time.Time, actualCost *float64) error {
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": time.Now(),
	}
	if dateCompleted != nil {
		updates["date_completed"] = *dateCompleted
	}
	if actualCost != nil {
		updates["actual_cost"] = *actualCost
	}

	result := r.db.WithContext(ctx).
		Model(&entity.WorkOrder{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// SetDateScheduled 显式排期操作，独立于状态迁移
func (r *WorkOrderRepository) SetDateScheduled(ctx context.Context, id string, date time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.WorkOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"date_scheduled": date,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLabor 追加工时记录
func (r *WorkOrderRepository) AddLabor(ctx context.Context, labor *entity.WorkOrderLabor) error {
	return r.db.WithContext(ctx).Create(labor).Error
}

// IssuePart 向工单发料。在单个事务内：条件扣减库存（数量不足则
// 整体失败、库存不变）、写入配件明细（单价固化）、记录库存流水。
func (r *WorkOrderRepository) IssuePart(ctx context.Context, part *entity.WorkOrderPart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entity.InventoryItem
		if err := tx.Where("id = ?", part.InventoryItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// 条件更新保证扣减原子性：数量不足时不命中任何行
		result := tx.Model(&entity.InventoryItem{}).
			Where("id = ? AND quantity >= ?", part.InventoryItemID, part.Quantity).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", part.Quantity),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &errs.InsufficientStockError{
				InventoryItemID: part.InventoryItemID,
				Requested:       part.Quantity,
				Available:       item.Quantity,
			}
		}

		// 发料时点快照单价与名称
		part.PartNumber = item.PartNumber
		part.PartName = item.Name
		part.UnitCost = item.UnitCost
		if err := tx.Create(part).Error; err != nil {
			return err
		}

		journal := entity.InventoryTransaction{
			ID:              uuid.New().String()[:32],
			InventoryItemID: part.InventoryItemID,
			TransactionType: entity.TxTypeIssue,
			Quantity:        -part.Quantity,
			UnitCost:        item.UnitCost,
			ReferenceType:   "WO",
			ReferenceID:     part.WorkOrderID,
			CreatedBy:       part.IssuedBy,
			CreatedAt:       time.Now(),
		}
		return tx.Create(&journal).Error
	})
}
