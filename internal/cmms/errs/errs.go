// Package errs 定义核心业务的类型化错误。错误携带结构化上下文，
// 不含面向用户的文案；HTTP层负责翻译为响应消息和状态码。
package errs

import "fmt"

// ValidationError 输入数据违反业务约束
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field=%s reason=%s", e.Field, e.Reason)
}

// ConfigurationError 计划定义本身不合法（如未知的重复周期）
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration invalid: field=%s value=%s", e.Field, e.Value)
}

// InactiveScheduleError 对停用计划执行生成操作
type InactiveScheduleError struct {
	ScheduleID string
}

func (e *InactiveScheduleError) Error() string {
	return fmt.Sprintf("schedule inactive: schedule_id=%s", e.ScheduleID)
}

// OutOfRangeError 期次序号超出计划的期次总数
type OutOfRangeError struct {
	ScheduleID    string
	SequenceIndex int
	Occurrences   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("sequence index out of range: schedule_id=%s index=%d occurrences=%d",
		e.ScheduleID, e.SequenceIndex, e.Occurrences)
}

// InvalidTransitionError 工单状态迁移不在合法迁移表内
type InvalidTransitionError struct {
	WorkOrderID string
	From        string
	To          string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid work order transition: work_order_id=%s from=%s to=%s",
		e.WorkOrderID, e.From, e.To)
}

// InsufficientStockError 领用数量超出可用库存
type InsufficientStockError struct {
	InventoryItemID string
	Requested       float64
	Available       float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: item_id=%s requested=%.4f available=%.4f",
		e.InventoryItemID, e.Requested, e.Available)
}

// NotFoundError 记录不存在
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: entity=%s id=%s", e.Entity, e.ID)
}
