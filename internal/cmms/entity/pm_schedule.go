package entity

import "time"

// RecurringPeriod 重复周期
const (
	PeriodDaily      = "daily"
	PeriodWeekly     = "weekly"
	PeriodBiweekly   = "biweekly"
	PeriodMonthly    = "monthly"
	PeriodQuarterly  = "quarterly"
	PeriodSemiannual = "semiannual"
	PeriodAnnual     = "annual"
)

// ValidRecurringPeriods 合法周期集合
var ValidRecurringPeriods = map[string]bool{
	PeriodDaily:      true,
	PeriodWeekly:     true,
	PeriodBiweekly:   true,
	PeriodMonthly:    true,
	PeriodQuarterly:  true,
	PeriodSemiannual: true,
	PeriodAnnual:     true,
}

// MaintenanceType 保养类型
const (
	MaintTypePreventive  = "preventive"
	MaintTypeInspection  = "inspection"
	MaintTypeCalibration = "calibration"
	MaintTypeLubrication = "lubrication"
)

// PMSchedule 预防性保养计划
type PMSchedule struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	AssetID         *string    `json:"asset_id" gorm:"size:32;index"`
	Title           string     `json:"title" gorm:"size:200;not null"`
	Description     string     `json:"description" gorm:"type:text"`
	MaintenanceType string     `json:"maintenance_type" gorm:"size:32;not null;default:preventive"`
	Priority        string     `json:"priority" gorm:"size:16;not null;default:medium"`
	StartDate       time.Time  `json:"start_date" gorm:"not null"`
	DurationHours   float64    `json:"duration_hours" gorm:"type:decimal(8,2);default:1"`
	IsRecurring     bool       `json:"is_recurring" gorm:"not null;default:false"`
	RecurringPeriod string     `json:"recurring_period" gorm:"size:16"`
	Occurrences     int        `json:"occurrences" gorm:"not null;default:1"`
	IsActive        bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedBy       string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	Asset       *Asset         `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
	Assignments []PMAssignment `json:"assignments,omitempty" gorm:"foreignKey:ScheduleID"`
}

func (PMSchedule) TableName() string {
	return "cmms_pm_schedules"
}

// PMAssignment 计划与技师的分配关系，SortOrder=0 为默认受派人
type PMAssignment struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	ScheduleID   string    `json:"schedule_id" gorm:"size:32;not null;index"`
	TechnicianID string    `json:"technician_id" gorm:"size:32;not null"`
	SortOrder    int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PMAssignment) TableName() string {
	return "cmms_pm_assignments"
}
