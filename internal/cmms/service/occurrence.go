package service

import (
	"strings"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
)

// ResolveOccurrenceStatus 推导单个期次的展示状态。
// 关联工单已完成则恒为 completed，即使到期日在未来。
// 其余按自然日比较：当日为 due，已过为 overdue，未到为 upcoming。
func ResolveOccurrenceStatus(dueDate, today time.Time, linked *entity.WorkOrder) string {
	if linked != nil && linked.Status == entity.WOStatusCompleted {
		return entity.OccStatusCompleted
	}

	due := calendarDay(dueDate)
	day := calendarDay(today)
	switch {
	case due.Equal(day):
		return entity.OccStatusDue
	case due.Before(day):
		return entity.OccStatusOverdue
	default:
		return entity.OccStatusUpcoming
	}
}

// calendarDay 取时间各自时区下的年月日，折算到 UTC 零点。
// 两侧时区不同时（服务器本地时间 vs 库里的 UTC 日期）仍按日历日比较。
func calendarDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// resolveOccurrences 合并期次到期日与已生成的工单，推导每期状态。
// 关联判定以 (schedule_id, sequence_index) 回溯引用为准；
// legacy 候选集（无回溯引用的旧工单）仅在无显式关联时尝试启发式匹配。
func resolveOccurrences(schedule *entity.PMSchedule, dates []time.Time, linked []entity.WorkOrder, legacy []entity.WorkOrder, today time.Time) []entity.Occurrence {
	bySequence := make(map[int]*entity.WorkOrder, len(linked))
	for i := range linked {
		if linked[i].SequenceIndex != nil {
			bySequence[*linked[i].SequenceIndex] = &linked[i]
		}
	}

	occurrences := make([]entity.Occurrence, len(dates))
	for i, due := range dates {
		occ := entity.Occurrence{
			ScheduleID:    schedule.ID,
			SequenceIndex: i,
			DueDate:       due,
		}

		if wo := bySequence[i]; wo != nil {
			occ.WorkOrderID = &wo.ID
			occ.LinkSource = entity.LinkSourceExplicit
			occ.WorkOrder = wo
		} else if wo := matchLegacyWorkOrder(schedule, due, legacy); wo != nil {
			occ.WorkOrderID = &wo.ID
			occ.LinkSource = entity.LinkSourceHeuristic
			occ.WorkOrder = wo
		}

		occ.Status = ResolveOccurrenceStatus(due, today, occ.WorkOrder)
		occurrences[i] = occ
	}
	return occurrences
}

// matchLegacyWorkOrder 旧数据启发式匹配：同资产、同自然日、PM前缀标题。
// 新生成的工单都带回溯引用，不会进入 legacy 候选集。
func matchLegacyWorkOrder(schedule *entity.PMSchedule, due time.Time, legacy []entity.WorkOrder) *entity.WorkOrder {
	if schedule.AssetID == nil {
		return nil
	}
	day := calendarDay(due)
	for i := range legacy {
		wo := &legacy[i]
		if wo.AssetID == nil || *wo.AssetID != *schedule.AssetID {
			continue
		}
		if !strings.HasPrefix(wo.Title, "PM:") {
			continue
		}
		if wo.DateNeeded == nil || !calendarDay(*wo.DateNeeded).Equal(day) {
			continue
		}
		return wo
	}
	return nil
}
