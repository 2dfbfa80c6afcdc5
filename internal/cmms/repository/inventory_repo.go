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

// InventoryRepository 备件库存仓库
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// FindAll 查询库存列表
func (r *InventoryRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryItem, int64, error) {
	var items []entity.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryItem{})

	if search := filters["search"]; search != "" {
		query = query.Where("part_number ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if filters["low_stock"] == "true" {
		query = query.Where("quantity <= reorder_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("part_number ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找库存项
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create 创建库存项
func (r *InventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// AdjustQuantity 库存盘点调整。负向调整同样以条件更新保护，
// 不允许把库存调成负数。
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, id string, delta float64, userID, notes string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		result := tx.Model(&entity.InventoryItem{}).
			Where("id = ? AND quantity + ? >= 0", id, delta).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", delta),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &errs.InsufficientStockError{
				InventoryItemID: id,
				Requested:       -delta,
				Available:       item.Quantity,
			}
		}

		journal := entity.InventoryTransaction{
			ID:              uuid.New().String()[:32],
			InventoryItemID: id,
			TransactionType: entity.TxTypeAdjustment,
			Quantity:        delta,
			ReferenceType:   "MANUAL",
			Notes:           notes,
			CreatedBy:       userID,
			CreatedAt:       time.Now(),
		}
		if err := tx.Create(&journal).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListTransactions 查询库存流水
func (r *InventoryRepository) ListTransactions(ctx context.Context, itemID string, page, pageSize int) ([]entity.InventoryTransaction, int64, error) {
	var items []entity.InventoryTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryTransaction{})
	if itemID != "" {
		query = query.Where("inventory_item_id = ?", itemID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
