package entity

import "time"

// User 系统用户/技师。工时成本使用记录时点的 HourlyRate 快照。
type User struct {
	ID         string     `json:"id" gorm:"primaryKey;size:32"`
	Name       string     `json:"name" gorm:"size:100;not null"`
	Email      string     `json:"email" gorm:"size:128;uniqueIndex"`
	Phone      string     `json:"phone" gorm:"size:32"`
	Role       string     `json:"role" gorm:"size:32;not null;default:technician"`
	HourlyRate float64    `json:"hourly_rate" gorm:"type:decimal(10,2);default:0"`
	IsActive   bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at" gorm:"index"`
}

func (User) TableName() string {
	return "cmms_users"
}
