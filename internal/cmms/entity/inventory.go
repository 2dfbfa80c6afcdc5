package entity

import "time"

// InventoryTransactionType 库存交易类型
const (
	TxTypeIssue      = "ISSUE"      // 工单领用出库
	TxTypeReceive    = "RECEIVE"    // 入库
	TxTypeAdjustment = "ADJUSTMENT" // 盘点调整
)

// InventoryItem 备件库存
type InventoryItem struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	PartNumber   string     `json:"part_number" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`
	UnitCost     float64    `json:"unit_cost" gorm:"type:decimal(12,4);not null;default:0"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	ReorderLevel float64    `json:"reorder_level" gorm:"type:decimal(12,4);default:0"`
	Location     string     `json:"location" gorm:"size:128"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (InventoryItem) TableName() string {
	return "cmms_inventory_items"
}

// InventoryTransaction 库存流水
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	InventoryItemID string    `json:"inventory_item_id" gorm:"size:32;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"` // 出库为负
	UnitCost        float64   `json:"unit_cost" gorm:"type:decimal(12,4)"`
	ReferenceType   string    `json:"reference_type" gorm:"size:20"` // WO, MANUAL
	ReferenceID     string    `json:"reference_id" gorm:"size:32"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedBy       string    `json:"created_by" gorm:"size:32"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "cmms_inventory_transactions"
}
