package service

import (
	"testing"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
)

func TestCanTransitionFullTable(t *testing.T) {
	allowed := map[[2]string]bool{
		{entity.WOStatusRequested, entity.WOStatusApproved}:   true,
		{entity.WOStatusRequested, entity.WOStatusCancelled}:  true,
		{entity.WOStatusApproved, entity.WOStatusScheduled}:   true,
		{entity.WOStatusApproved, entity.WOStatusOnHold}:      true,
		{entity.WOStatusApproved, entity.WOStatusCancelled}:   true,
		{entity.WOStatusScheduled, entity.WOStatusInProgress}: true,
		{entity.WOStatusScheduled, entity.WOStatusOnHold}:     true,
		{entity.WOStatusScheduled, entity.WOStatusCancelled}:  true,
		{entity.WOStatusInProgress, entity.WOStatusCompleted}: true,
		{entity.WOStatusInProgress, entity.WOStatusOnHold}:    true,
		{entity.WOStatusOnHold, entity.WOStatusInProgress}:    true,
		{entity.WOStatusOnHold, entity.WOStatusCancelled}:     true,
		{entity.WOStatusCancelled, entity.WOStatusRequested}:  true,
	}

	statuses := []string{
		entity.WOStatusRequested,
		entity.WOStatusApproved,
		entity.WOStatusScheduled,
		entity.WOStatusInProgress,
		entity.WOStatusOnHold,
		entity.WOStatusCompleted,
		entity.WOStatusCancelled,
	}

	// 全矩阵覆盖：表内放行，表外全部拒绝
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	// completed 是终态，去任何状态都不行
	for _, to := range []string{
		entity.WOStatusRequested,
		entity.WOStatusApproved,
		entity.WOStatusScheduled,
		entity.WOStatusInProgress,
		entity.WOStatusOnHold,
		entity.WOStatusCancelled,
	} {
		if CanTransition(entity.WOStatusCompleted, to) {
			t.Errorf("completed should not transition to %s", to)
		}
	}

	// scheduled 不能跳过 in_progress 直接完工
	if CanTransition(entity.WOStatusScheduled, entity.WOStatusCompleted) {
		t.Error("scheduled should not transition directly to completed")
	}

	// cancelled 只能重新打开回 requested
	if CanTransition(entity.WOStatusCancelled, entity.WOStatusApproved) {
		t.Error("cancelled should only reopen to requested")
	}
}

func TestIsWorkOrderStatus(t *testing.T) {
	for _, s := range []string{"requested", "approved", "scheduled", "in_progress", "on_hold", "completed", "cancelled"} {
		if !IsWorkOrderStatus(s) {
			t.Errorf("expected %q to be a known status", s)
		}
	}
	for _, s := range []string{"", "done", "REQUESTED", "pending"} {
		if IsWorkOrderStatus(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestCompletionCost(t *testing.T) {
	wo := &entity.WorkOrder{
		Labor: []entity.WorkOrderLabor{
			{Hours: 2, HourlyRate: 50},
			{Hours: 1.5, HourlyRate: 80},
		},
		Parts: []entity.WorkOrderPart{
			{Quantity: 3, UnitCost: 12.5},
			{Quantity: 1, UnitCost: 200},
		},
	}

	want := 2*50.0 + 1.5*80.0 + 3*12.5 + 1*200.0
	if got := CompletionCost(wo); got != want {
		t.Errorf("CompletionCost = %v, want %v", got, want)
	}
}

func TestCompletionCostEmpty(t *testing.T) {
	if got := CompletionCost(&entity.WorkOrder{}); got != 0 {
		t.Errorf("CompletionCost of empty work order = %v, want 0", got)
	}
}
