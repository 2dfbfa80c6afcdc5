package entity

import "time"

// OccurrenceStatus 保养期次状态（按读取时点实时推导，不落库）
const (
	OccStatusUpcoming  = "upcoming"
	OccStatusDue       = "due"
	OccStatusOverdue   = "overdue"
	OccStatusCompleted = "completed"
)

// LinkSource 期次与工单的关联来源
const (
	LinkSourceExplicit  = "explicit"  // 工单携带 (schedule_id, sequence_index) 回溯引用
	LinkSourceHeuristic = "heuristic" // 旧数据：同资产+同日+PM标题匹配
)

// Occurrence 保养计划的一个期次。永不持久化，每次读取都由
// 计划定义 + 当前已生成的工单重新推导。
type Occurrence struct {
	ScheduleID    string     `json:"schedule_id"`
	SequenceIndex int        `json:"sequence_index"`
	DueDate       time.Time  `json:"due_date"`
	Status        string     `json:"status"`
	WorkOrderID   *string    `json:"work_order_id,omitempty"`
	LinkSource    string     `json:"link_source,omitempty"`
	WorkOrder     *WorkOrder `json:"work_order,omitempty"`
}
