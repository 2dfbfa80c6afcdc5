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

// AssetService 资产服务
type AssetService struct {
	repo *repository.AssetRepository
}

func NewAssetService(repo *repository.AssetRepository) *AssetService {
	return &AssetService{repo: repo}
}

// List 资产列表
func (s *AssetService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Asset, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get 资产详情
func (s *AssetService) Get(ctx context.Context, id string) (*entity.Asset, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "asset", ID: id}
		}
		return nil, err
	}
	return asset, nil
}

// CreateAssetRequest 创建资产请求
type CreateAssetRequest struct {
	AssetNumber  string `json:"asset_number" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	SerialNumber string `json:"serial_number"`
	PurchaseDate string `json:"purchase_date"` // YYYY-MM-DD
}

// Create 创建资产
func (s *AssetService) Create(ctx context.Context, userID string, req *CreateAssetRequest) (*entity.Asset, error) {
	asset := &entity.Asset{
		ID:           uuid.New().String()[:32],
		AssetNumber:  req.AssetNumber,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		SerialNumber: req.SerialNumber,
		Status:       entity.AssetStatusActive,
		CreatedBy:    userID,
	}
	if req.PurchaseDate != "" {
		t, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, &errs.ValidationError{Field: "purchase_date", Reason: "expected YYYY-MM-DD"}
		}
		asset.PurchaseDate = &t
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("创建资产失败: %w", err)
	}
	return asset, nil
}

// UpdateAssetRequest 更新资产请求
type UpdateAssetRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}

// Update 更新资产
func (s *AssetService) Update(ctx context.Context, id string, req *UpdateAssetRequest) (*entity.Asset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Location != nil {
		asset.Location = *req.Location
	}
	if req.Status != nil {
		asset.Status = *req.Status
	}

	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("更新资产失败: %w", err)
	}
	return asset, nil
}

// Delete 删除资产
func (s *AssetService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
