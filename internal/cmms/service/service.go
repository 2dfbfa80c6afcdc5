package service

import "github.com/bitfantasy/nimo-cmms/internal/cmms/repository"

// Services CMMS服务集合
type Services struct {
	PMSchedule *PMScheduleService
	WorkOrder  *WorkOrderService
	Inventory  *InventoryService
	Asset      *AssetService
}

// NewServices 创建CMMS服务集合
func NewServices(repos *repository.Repositories, notifier Notifier) *Services {
	return &Services{
		PMSchedule: NewPMScheduleService(repos.PMSchedule, repos.WorkOrder, repos.Asset, repos.User, notifier),
		WorkOrder:  NewWorkOrderService(repos.WorkOrder, repos.User, repos.Inventory, repos.Asset, notifier),
		Inventory:  NewInventoryService(repos.Inventory, notifier),
		Asset:      NewAssetService(repos.Asset),
	}
}
