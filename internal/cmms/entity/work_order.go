package entity

import "time"

// WorkOrderStatus 工单状态
const (
	WOStatusRequested  = "requested"
	WOStatusApproved   = "approved"
	WOStatusScheduled  = "scheduled"
	WOStatusInProgress = "in_progress"
	WOStatusOnHold     = "on_hold"
	WOStatusCompleted  = "completed"
	WOStatusCancelled  = "cancelled"
)

// WorkOrderPriority 工单优先级
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// WorkOrder 维修/保养工单。由PM期次生成的工单携带
// (ScheduleID, SequenceIndex) 回溯引用，且二者联合唯一，
// 防止同一期次被重复生成。
type WorkOrder struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderNumber string     `json:"work_order_number" gorm:"size:50;not null;uniqueIndex"`
	Title           string     `json:"title" gorm:"size:200;not null"`
	Description     string     `json:"description" gorm:"type:text"`
	AssetID         *string    `json:"asset_id" gorm:"size:32;index"`
	Priority        string     `json:"priority" gorm:"size:16;not null;default:medium"`
	Status          string     `json:"status" gorm:"size:20;not null;default:requested"`
	RequestedBy     string     `json:"requested_by" gorm:"size:32;not null"`
	AssignedTo      *string    `json:"assigned_to" gorm:"size:32;index"`
	ScheduleID      *string    `json:"schedule_id" gorm:"size:32;uniqueIndex:uix_wo_schedule_seq"`
	SequenceIndex   *int       `json:"sequence_index" gorm:"uniqueIndex:uix_wo_schedule_seq"`
	DateRequested   time.Time  `json:"date_requested"`
	DateNeeded      *time.Time `json:"date_needed"`
	DateScheduled   *time.Time `json:"date_scheduled"`
	DateCompleted   *time.Time `json:"date_completed"`
	EstimatedHours  float64    `json:"estimated_hours" gorm:"type:decimal(8,2);default:0"`
	EstimatedCost   float64    `json:"estimated_cost" gorm:"type:decimal(12,2);default:0"`
	ActualCost      float64    `json:"actual_cost" gorm:"type:decimal(12,2);default:0"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	Asset *Asset           `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
	Labor []WorkOrderLabor `json:"labor,omitempty" gorm:"foreignKey:WorkOrderID"`
	Parts []WorkOrderPart  `json:"parts,omitempty" gorm:"foreignKey:WorkOrderID"`
}

func (WorkOrder) TableName() string {
	return "cmms_work_orders"
}

// WorkOrderLabor 工时记录，费率取自技师档案并在记录时固化
type WorkOrderLabor struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID  string    `json:"work_order_id" gorm:"size:32;not null;index"`
	TechnicianID string    `json:"technician_id" gorm:"size:32;not null"`
	Hours        float64   `json:"hours" gorm:"type:decimal(8,2);not null"`
	HourlyRate   float64   `json:"hourly_rate" gorm:"type:decimal(10,2);not null"`
	Notes        string    `json:"notes" gorm:"type:text"`
	WorkedAt     time.Time `json:"worked_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (WorkOrderLabor) TableName() string {
	return "cmms_work_order_labor"
}

// WorkOrderPart 领用配件记录。UnitCost 为发料时点快照，
// 库存单价后续变动不回溯重算。
type WorkOrderPart struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID     string    `json:"work_order_id" gorm:"size:32;not null;index"`
	InventoryItemID string    `json:"inventory_item_id" gorm:"size:32;not null"`
	PartNumber      string    `json:"part_number" gorm:"size:64"`
	PartName        string    `json:"part_name" gorm:"size:128"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UnitCost        float64   `json:"unit_cost" gorm:"type:decimal(12,4);not null"`
	IssuedBy        string    `json:"issued_by" gorm:"size:32"`
	IssuedAt        time.Time `json:"issued_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (WorkOrderPart) TableName() string {
	return "cmms_work_order_parts"
}
