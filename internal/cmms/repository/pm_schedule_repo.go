package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PMScheduleRepository 保养计划仓库
type PMScheduleRepository struct {
	db *gorm.DB
}

func NewPMScheduleRepository(db *gorm.DB) *PMScheduleRepository {
	return &PMScheduleRepository{db: db}
}

// FindAll 查询计划列表
func (r *PMScheduleRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PMSchedule, int64, error) {
	var items []entity.PMSchedule
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PMSchedule{})

	if assetID := filters["asset_id"]; assetID != "" {
		query = query.Where("asset_id = ?", assetID)
	}
	if active := filters["is_active"]; active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if maintType := filters["maintenance_type"]; maintType != "" {
		query = query.Where("maintenance_type = ?", maintType)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Asset").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找计划（含分配）
func (r *PMScheduleRepository) FindByID(ctx context.Context, id string) (*entity.PMSchedule, error) {
	var schedule entity.PMSchedule
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// Create 创建计划
func (r *PMScheduleRepository) Create(ctx context.Context, schedule *entity.PMSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// Update 更新计划
func (r *PMScheduleRepository) Update(ctx context.Context, schedule *entity.PMSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// Delete 软删除计划及其分配
func (r *PMScheduleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", id).Delete(&entity.PMAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.PMSchedule{}).Error
	})
}

// ReplaceAssignments 整体替换计划的技师分配（非追加）。
// technicianIDs 的顺序决定 sort_order，首位为默认受派人。
func (r *PMScheduleRepository) ReplaceAssignments(ctx context.Context, scheduleID string, technicianIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", scheduleID).Delete(&entity.PMAssignment{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for i, techID := range technicianIDs {
			assignment := entity.PMAssignment{
				ID:           uuid.New().String()[:32],
				ScheduleID:   scheduleID,
				TechnicianID: techID,
				SortOrder:    i,
				CreatedAt:    now,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
