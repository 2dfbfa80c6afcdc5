package entity

import "time"

// AssetStatus 资产状态
const (
	AssetStatusActive   = "active"
	AssetStatusInactive = "inactive"
	AssetStatusRetired  = "retired"
)

// Asset 受维护的设备/资产
type Asset struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	AssetNumber  string     `json:"asset_number" gorm:"size:50;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Category     string     `json:"category" gorm:"size:64"`
	Location     string     `json:"location" gorm:"size:128"`
	SerialNumber string     `json:"serial_number" gorm:"size:100"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	PurchaseDate *time.Time `json:"purchase_date"`
	CreatedBy    string     `json:"created_by" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Asset) TableName() string {
	return "cmms_assets"
}
