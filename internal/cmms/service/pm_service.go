package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/errs"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/repository"
	"github.com/google/uuid"
)

// PMScheduleService 保养计划服务：计划定义、技师分配、
// 期次列表推导与期次生成（物化为真实工单）。
type PMScheduleService struct {
	scheduleRepo *repository.PMScheduleRepository
	woRepo       *repository.WorkOrderRepository
	assetRepo    *repository.AssetRepository
	userRepo     *repository.UserRepository
	notifier     Notifier
}

func NewPMScheduleService(
	scheduleRepo *repository.PMScheduleRepository,
	woRepo *repository.WorkOrderRepository,
	assetRepo *repository.AssetRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
) *PMScheduleService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PMScheduleService{
		scheduleRepo: scheduleRepo,
		woRepo:       woRepo,
		assetRepo:    assetRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

// CreateScheduleRequest 创建计划请求
type CreateScheduleRequest struct {
	AssetID         *string  `json:"asset_id"`
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	MaintenanceType string   `json:"maintenance_type"`
	Priority        string   `json:"priority"`
	StartDate       string   `json:"start_date" binding:"required"` // YYYY-MM-DD
	DurationHours   float64  `json:"duration_hours"`
	IsRecurring     bool     `json:"is_recurring"`
	RecurringPeriod string   `json:"recurring_period"`
	Occurrences     int      `json:"occurrences"`
	TechnicianIDs   []string `json:"technician_ids"`
}

// CreateSchedule 创建保养计划。
// 不变式：重复计划必须带合法周期且期次数 ≥ 1；
// 非重复计划固定为起始日单期。
func (s *PMScheduleService) CreateSchedule(ctx context.Context, userID string, req *CreateScheduleRequest) (*entity.PMSchedule, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, &errs.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"}
	}

	schedule := &entity.PMSchedule{
		ID:              uuid.New().String()[:32],
		AssetID:         req.AssetID,
		Title:           req.Title,
		Description:     req.Description,
		MaintenanceType: req.MaintenanceType,
		Priority:        req.Priority,
		StartDate:       normalizeDay(startDate),
		DurationHours:   req.DurationHours,
		IsRecurring:     req.IsRecurring,
		RecurringPeriod: req.RecurringPeriod,
		Occurrences:     req.Occurrences,
		IsActive:        true,
		CreatedBy:       userID,
	}
	if schedule.MaintenanceType == "" {
		schedule.MaintenanceType = entity.MaintTypePreventive
	}
	if schedule.Priority == "" {
		schedule.Priority = entity.PriorityMedium
	}

	if schedule.IsRecurring {
		if schedule.RecurringPeriod == "" {
			return nil, &errs.ValidationError{Field: "recurring_period", Reason: "required for recurring schedules"}
		}
		if !entity.ValidRecurringPeriods[schedule.RecurringPeriod] {
			return nil, &errs.ConfigurationError{Field: "recurring_period", Value: schedule.RecurringPeriod}
		}
		if schedule.Occurrences < 1 {
			return nil, &errs.ValidationError{Field: "occurrences", Reason: "must be at least 1 for recurring schedules"}
		}
	} else {
		schedule.RecurringPeriod = ""
		schedule.Occurrences = 1
	}

	if schedule.AssetID != nil {
		if _, err := s.assetRepo.FindByID(ctx, *schedule.AssetID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &errs.NotFoundError{Entity: "asset", ID: *schedule.AssetID}
			}
			return nil, err
		}
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("创建保养计划失败: %w", err)
	}

	if len(req.TechnicianIDs) > 0 {
		if err := s.AssignTechnicians(ctx, schedule.ID, req.TechnicianIDs); err != nil {
			return nil, err
		}
	}

	return s.scheduleRepo.FindByID(ctx, schedule.ID)
}

// GetSchedule 计划详情
func (s *PMScheduleService) GetSchedule(ctx context.Context, id string) (*entity.PMSchedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &errs.NotFoundError{Entity: "pm_schedule", ID: id}
		}
		return nil, err
	}
	return schedule, nil
}

// ListSchedules 计划列表
func (s *PMScheduleService) ListSchedules(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PMSchedule, int64, error) {
	return s.scheduleRepo.FindAll(ctx, page, pageSize, filters)
}

// UpdateScheduleRequest 更新计划请求
type UpdateScheduleRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Priority      *string  `json:"priority"`
	DurationHours *float64 `json:"duration_hours"`
	IsActive      *bool    `json:"is_active"`
}

// UpdateSchedule 更新计划。重复定义（起始日/周期/期次数）创建后不可改，
// 改定义等于换计划；需要调整时停用旧计划另建新计划。
func (s *PMScheduleService) UpdateSchedule(ctx context.Context, id string, req *UpdateScheduleRequest) (*entity.PMSchedule, error) {
	schedule, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		schedule.Title = *req.Title
	}
	if req.Description != nil {
		schedule.Description = *req.Description
	}
	if req.Priority != nil {
		schedule.Priority = *req.Priority
	}
	if req.DurationHours != nil {
		schedule.DurationHours = *req.DurationHours
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("更新保养计划失败: %w", err)
	}
	return schedule, nil
}

// DeleteSchedule 删除计划（已生成的工单独立存续，不受影响）
func (s *PMScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := s.GetSchedule(ctx, id); err != nil {
		return err
	}
	return s.scheduleRepo.Delete(ctx, id)
}

// ListOccurrences 推导计划的全部期次。每次读取都从计划定义 +
// 当前已生成的工单重新计算，today 由调用边界显式传入。
func (s *PMScheduleService) ListOccurrences(ctx context.Context, scheduleID string, today time.Time) ([]entity.Occurrence, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	dates, err := scheduleOccurrenceDates(schedule)
	if err != nil {
		return nil, err
	}

	linked, err := s.woRepo.FindByScheduleID(ctx, schedule.ID)
	if err != nil {
		return nil, fmt.Errorf("查询计划工单失败: %w", err)
	}

	var legacy []entity.WorkOrder
	if schedule.AssetID != nil {
		legacy, err = s.woRepo.FindLegacyCandidates(ctx, *schedule.AssetID)
		if err != nil {
			return nil, fmt.Errorf("查询旧工单候选失败: %w", err)
		}
	}

	return resolveOccurrences(schedule, dates, linked, legacy, today), nil
}

// MaterializeOccurrence 把期次物化为真实工单。幂等：该期次已有
// 带回溯引用的工单时原样返回，不重复生成；并发竞争由
// (schedule_id, sequence_index) 唯一约束兜底。
func (s *PMScheduleService) MaterializeOccurrence(ctx context.Context, scheduleID string, sequenceIndex int, userID string) (*entity.WorkOrder, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.IsActive {
		return nil, &errs.InactiveScheduleError{ScheduleID: schedule.ID}
	}
	if sequenceIndex < 0 || sequenceIndex >= schedule.Occurrences {
		return nil, &errs.OutOfRangeError{
			ScheduleID:    schedule.ID,
			SequenceIndex: sequenceIndex,
			Occurrences:   schedule.Occurrences,
		}
	}

	if existing, err := s.woRepo.FindByScheduleAndSequence(ctx, schedule.ID, sequenceIndex); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	dates, err := scheduleOccurrenceDates(schedule)
	if err != nil {
		return nil, err
	}
	dueDate := dates[sequenceIndex]

	now := time.Now()
	seq := sequenceIndex
	wo := &entity.WorkOrder{
		ID:              uuid.New().String()[:32],
		WorkOrderNumber: generateWorkOrderNumber(now),
		Title:           fmt.Sprintf("PM: %s #%d", schedule.Title, sequenceIndex+1),
		Description:     schedule.Description,
		AssetID:         schedule.AssetID,
		Priority:        schedule.Priority,
		Status:          entity.WOStatusRequested,
		RequestedBy:     userID,
		ScheduleID:      &schedule.ID,
		SequenceIndex:   &seq,
		DateRequested:   now,
		DateNeeded:      &dueDate,
		EstimatedHours:  schedule.DurationHours,
	}
	if len(schedule.Assignments) > 0 {
		wo.AssignedTo = &schedule.Assignments[0].TechnicianID
	}

	if err := s.woRepo.Create(ctx, wo); err != nil {
		// 唯一约束兜底：并发物化同一期次时，后到方复用先到方的工单
		if existing, findErr := s.woRepo.FindByScheduleAndSequence(ctx, schedule.ID, sequenceIndex); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("生成工单失败: %w", err)
	}

	s.publishMaterialized(ctx, schedule, wo, dueDate)
	return wo, nil
}

// ListTechnicians 可分配的在职技师列表
func (s *PMScheduleService) ListTechnicians(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.FindTechnicians(ctx)
}

// AssignTechnicians 整体替换计划的技师分配（非追加），
// 首位技师成为后续物化工单的默认受派人。
func (s *PMScheduleService) AssignTechnicians(ctx context.Context, scheduleID string, technicianIDs []string) error {
	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return err
	}

	if len(technicianIDs) > 0 {
		users, err := s.userRepo.FindByIDs(ctx, technicianIDs)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(users))
		for _, u := range users {
			found[u.ID] = true
		}
		for _, id := range technicianIDs {
			if !found[id] {
				return &errs.NotFoundError{Entity: "user", ID: id}
			}
		}
	}

	if err := s.scheduleRepo.ReplaceAssignments(ctx, scheduleID, technicianIDs); err != nil {
		return fmt.Errorf("更新技师分配失败: %w", err)
	}
	return nil
}

func (s *PMScheduleService) publishMaterialized(ctx context.Context, schedule *entity.PMSchedule, wo *entity.WorkOrder, dueDate time.Time) {
	// 通知尽力而为，失败不影响业务结果
	s.notifier.Publish(ctx, Event{
		Type:       EventPMDue,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"schedule_id":    schedule.ID,
			"schedule_title": schedule.Title,
			"sequence_index": *wo.SequenceIndex,
			"due_date":       dueDate.Format("2006-01-02"),
			"work_order_id":  wo.ID,
		},
	})
	if wo.AssignedTo != nil {
		s.notifier.Publish(ctx, Event{
			Type:       EventWorkOrderAssigned,
			OccurredAt: time.Now(),
			Payload: map[string]interface{}{
				"work_order_id":     wo.ID,
				"work_order_number": wo.WorkOrderNumber,
				"assigned_to":       *wo.AssignedTo,
				"title":             wo.Title,
			},
		})
	}
}

// generateWorkOrderNumber 生成工单编号 WO-YYYYMMDD-NNNN
func generateWorkOrderNumber(now time.Time) string {
	return fmt.Sprintf("WO-%s-%04d", now.Format("20060102"), now.UnixNano()%10000)
}
