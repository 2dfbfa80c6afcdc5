package service

import (
	"testing"
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
)

func TestResolveOccurrenceStatusByDay(t *testing.T) {
	today := time.Date(2024, time.February, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		due  time.Time
		want string
	}{
		{"same day is due", time.Date(2024, time.February, 1, 23, 59, 0, 0, time.UTC), entity.OccStatusDue},
		{"past day is overdue", date(2024, time.January, 31), entity.OccStatusOverdue},
		{"future day is upcoming", date(2024, time.February, 2), entity.OccStatusUpcoming},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveOccurrenceStatus(tc.due, today, nil)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveOccurrenceStatusAcrossTimezones(t *testing.T) {
	// 到期日按 UTC 存储，today 可能来自非 UTC 的服务器本地时钟，
	// 判定只看各自的日历日，不受时区偏移影响
	due := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"UTC+8 same calendar day", time.Date(2024, time.February, 1, 10, 30, 0, 0, time.FixedZone("UTC+8", 8*3600)), entity.OccStatusDue},
		{"UTC-8 same calendar day", time.Date(2024, time.February, 1, 10, 30, 0, 0, time.FixedZone("UTC-8", -8*3600)), entity.OccStatusDue},
		{"UTC+8 next calendar day", time.Date(2024, time.February, 2, 1, 0, 0, 0, time.FixedZone("UTC+8", 8*3600)), entity.OccStatusOverdue},
		{"UTC-8 previous calendar day", time.Date(2024, time.January, 31, 23, 0, 0, 0, time.FixedZone("UTC-8", -8*3600)), entity.OccStatusUpcoming},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveOccurrenceStatus(due, tc.today, nil); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMatchLegacyWorkOrderAcrossTimezones(t *testing.T) {
	assetID := "asset-001"
	schedule := &entity.PMSchedule{ID: "sched-001", AssetID: &assetID}
	due := date(2024, time.March, 10)
	needed := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))

	legacy := []entity.WorkOrder{
		{ID: "wo-tz", Title: "PM: Pump check", AssetID: &assetID, DateNeeded: &needed},
	}
	wo := matchLegacyWorkOrder(schedule, due, legacy)
	if wo == nil || wo.ID != "wo-tz" {
		t.Fatalf("expected match on same calendar day, got %v", wo)
	}
}

func TestResolveOccurrenceStatusCompletedOverride(t *testing.T) {
	today := date(2024, time.February, 1)
	completed := &entity.WorkOrder{Status: entity.WOStatusCompleted}

	// 完成覆盖一切日期判定，包括未来期次
	for _, due := range []time.Time{
		date(2024, time.January, 1),
		date(2024, time.February, 1),
		date(2024, time.December, 31),
	} {
		if got := ResolveOccurrenceStatus(due, today, completed); got != entity.OccStatusCompleted {
			t.Errorf("due=%v: got %q, want completed", due, got)
		}
	}

	// 未完成的关联工单不影响日期判定
	open := &entity.WorkOrder{Status: entity.WOStatusInProgress}
	if got := ResolveOccurrenceStatus(date(2024, time.January, 1), today, open); got != entity.OccStatusOverdue {
		t.Errorf("got %q, want overdue for in_progress work order", got)
	}
}

func TestResolveOccurrencesExplicitLink(t *testing.T) {
	assetID := "asset-001"
	seq1 := 1
	schedule := &entity.PMSchedule{
		ID:              "sched-001",
		AssetID:         &assetID,
		StartDate:       date(2024, time.January, 1),
		IsRecurring:     true,
		RecurringPeriod: entity.PeriodMonthly,
		Occurrences:     3,
	}
	dates, err := scheduleOccurrenceDates(schedule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	linked := []entity.WorkOrder{
		{
			ID:            "wo-001",
			Status:        entity.WOStatusCompleted,
			ScheduleID:    &schedule.ID,
			SequenceIndex: &seq1,
		},
	}

	occs := resolveOccurrences(schedule, dates, linked, nil, date(2024, time.February, 15))
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}

	// 期次0：无工单，已过期
	if occs[0].WorkOrderID != nil {
		t.Errorf("occ[0]: expected no work order link")
	}
	if occs[0].Status != entity.OccStatusOverdue {
		t.Errorf("occ[0]: got %q, want overdue", occs[0].Status)
	}

	// 期次1：显式关联且已完成
	if occs[1].WorkOrderID == nil || *occs[1].WorkOrderID != "wo-001" {
		t.Errorf("occ[1]: expected link to wo-001")
	}
	if occs[1].LinkSource != entity.LinkSourceExplicit {
		t.Errorf("occ[1]: got link source %q, want explicit", occs[1].LinkSource)
	}
	if occs[1].Status != entity.OccStatusCompleted {
		t.Errorf("occ[1]: got %q, want completed", occs[1].Status)
	}

	// 期次2：未来
	if occs[2].Status != entity.OccStatusUpcoming {
		t.Errorf("occ[2]: got %q, want upcoming", occs[2].Status)
	}
}

func TestResolveOccurrencesLegacyHeuristic(t *testing.T) {
	assetID := "asset-001"
	otherAsset := "asset-002"
	schedule := &entity.PMSchedule{
		ID:              "sched-001",
		AssetID:         &assetID,
		StartDate:       date(2024, time.March, 10),
		IsRecurring:     true,
		RecurringPeriod: entity.PeriodWeekly,
		Occurrences:     2,
	}
	dates, _ := scheduleOccurrenceDates(schedule)

	needed := date(2024, time.March, 10)
	wrongDay := date(2024, time.March, 11)
	legacy := []entity.WorkOrder{
		// 资产不符
		{ID: "wo-a", Title: "PM: Pump check #1", AssetID: &otherAsset, DateNeeded: &needed},
		// 标题不带PM前缀
		{ID: "wo-b", Title: "Fix pump", AssetID: &assetID, DateNeeded: &needed},
		// 日期不符
		{ID: "wo-c", Title: "PM: Pump check #1", AssetID: &assetID, DateNeeded: &wrongDay},
		// 全部匹配
		{ID: "wo-d", Title: "PM: Pump check #1", AssetID: &assetID, DateNeeded: &needed, Status: entity.WOStatusRequested},
	}

	occs := resolveOccurrences(schedule, dates, nil, legacy, date(2024, time.March, 10))

	if occs[0].WorkOrderID == nil || *occs[0].WorkOrderID != "wo-d" {
		t.Fatalf("occ[0]: expected heuristic link to wo-d, got %v", occs[0].WorkOrderID)
	}
	if occs[0].LinkSource != entity.LinkSourceHeuristic {
		t.Errorf("occ[0]: got link source %q, want heuristic", occs[0].LinkSource)
	}
	if occs[1].WorkOrderID != nil {
		t.Errorf("occ[1]: expected no link, got %v", *occs[1].WorkOrderID)
	}
}

func TestResolveOccurrencesExplicitWinsOverHeuristic(t *testing.T) {
	assetID := "asset-001"
	seq0 := 0
	schedule := &entity.PMSchedule{
		ID:              "sched-001",
		AssetID:         &assetID,
		StartDate:       date(2024, time.April, 1),
		IsRecurring:     true,
		RecurringPeriod: entity.PeriodMonthly,
		Occurrences:     1,
	}
	dates, _ := scheduleOccurrenceDates(schedule)

	needed := date(2024, time.April, 1)
	linked := []entity.WorkOrder{
		{ID: "wo-explicit", ScheduleID: &schedule.ID, SequenceIndex: &seq0, Status: entity.WOStatusRequested},
	}
	legacy := []entity.WorkOrder{
		{ID: "wo-legacy", Title: "PM: old", AssetID: &assetID, DateNeeded: &needed},
	}

	occs := resolveOccurrences(schedule, dates, linked, legacy, needed)
	if *occs[0].WorkOrderID != "wo-explicit" {
		t.Errorf("expected explicit link to win, got %v", *occs[0].WorkOrderID)
	}
	if occs[0].LinkSource != entity.LinkSourceExplicit {
		t.Errorf("got link source %q, want explicit", occs[0].LinkSource)
	}
}
