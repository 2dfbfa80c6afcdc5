package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus 带状态前置条件的更新未命中任何行
	ErrStaleStatus = errors.New("work order status changed concurrently")
)

// Repositories CMMS仓库集合
type Repositories struct {
	PMSchedule *PMScheduleRepository
	WorkOrder  *WorkOrderRepository
	Inventory  *InventoryRepository
	Asset      *AssetRepository
	User       *UserRepository
}

// NewRepositories 创建CMMS仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		PMSchedule: NewPMScheduleRepository(db),
		WorkOrder:  NewWorkOrderRepository(db),
		Inventory:  NewInventoryRepository(db),
		Asset:      NewAssetRepository(db),
		User:       NewUserRepository(db),
	}
}
