package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"gorm.io/gorm"
)

// AssetRepository 资产仓库
type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// FindAll 查询资产列表
func (r *AssetRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Asset, int64, error) {
	var items []entity.Asset
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Asset{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("asset_number ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("asset_number ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找资产
func (r *AssetRepository) FindByID(ctx context.Context, id string) (*entity.Asset, error) {
	var asset entity.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// Create 创建资产
func (r *AssetRepository) Create(ctx context.Context, asset *entity.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

// Update 更新资产
func (r *AssetRepository) Update(ctx context.Context, asset *entity.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

// Delete 软删除资产
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Asset{}).Error
}
