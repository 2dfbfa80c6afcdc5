package service

import (
	"context"
	"time"
)

// 通知事件类型。核心只产出结构化事件数据，
// 格式化与投递由外部协作方负责。
const (
	EventWorkOrderAssigned = "work_order.assigned"
	EventPMDue             = "pm.due"
	EventInventoryLow      = "inventory.low"
)

// Event 结构化通知事件
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// Notifier 通知协作方接口
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// NopNotifier 空实现，测试与未配置通知通道时使用
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, event Event) error {
	return nil
}
