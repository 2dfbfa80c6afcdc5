package service

import "github.com/bitfantasy/nimo-cmms/internal/cmms/entity"

// workOrderTransitions 工单合法状态迁移表。completed 为终态；
// cancelled 只能重新打开回 requested。
var workOrderTransitions = map[string][]string{
	entity.WOStatusRequested:  {entity.WOStatusApproved, entity.WOStatusCancelled},
	entity.WOStatusApproved:   {entity.WOStatusScheduled, entity.WOStatusOnHold, entity.WOStatusCancelled},
	entity.WOStatusScheduled:  {entity.WOStatusInProgress, entity.WOStatusOnHold, entity.WOStatusCancelled},
	entity.WOStatusInProgress: {entity.WOStatusCompleted, entity.WOStatusOnHold},
	entity.WOStatusOnHold:     {entity.WOStatusInProgress, entity.WOStatusCancelled},
	entity.WOStatusCancelled:  {entity.WOStatusRequested},
	entity.WOStatusCompleted:  {},
}

// IsWorkOrderStatus 状态串是否属于已知状态
func IsWorkOrderStatus(status string) bool {
	_, ok := workOrderTransitions[status]
	return ok
}

// CanTransition from→to 是否在合法迁移表内
func CanTransition(from, to string) bool {
	for _, next := range workOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CompletionCost 完工总成本 = Σ(工时×费率) + Σ(数量×发料时点单价)。
// 两侧都使用记录时固化的快照值，不回查当前档案。
func CompletionCost(wo *entity.WorkOrder) float64 {
	var total float64
	for _, l := range wo.Labor {
		total += l.Hours * l.HourlyRate
	}
	for _, p := range wo.Parts {
		total += p.Quantity * p.UnitCost
	}
	return total
}
