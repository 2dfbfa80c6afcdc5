package service

import (
	"time"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/errs"
)

// normalizeDay 归一到当日零点（保持原时区）。跨时区的日历日比较见 calendarDay。
func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	// 下月第0天即本月最后一天
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonthsClamped 加 n 个自然月，保留原日；目标月没有该日时收敛到
// 目标月最后一天（1月31日 +1月 = 2月28/29日）。不用 AddDate，
// 它会把溢出日滚进下个月。
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) - 1 + months
	y := year + m/12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	target := time.Month(m + 1)
	if last := daysIn(y, target); day > last {
		day = last
	}
	return time.Date(y, target, day, 0, 0, 0, 0, t.Location())
}

// GenerateOccurrenceDates 由计划定义推导期次到期日序列，长度恒等于
// occurrenceCount。第 i 期直接从起始日推进 i 个周期步长计算，
// 不做逐期累加，避免月末收敛误差逐期放大。
func GenerateOccurrenceDates(startDate time.Time, recurringPeriod string, occurrenceCount int) ([]time.Time, error) {
	if occurrenceCount <= 0 {
		return nil, &errs.ValidationError{Field: "occurrences", Reason: "must be at least 1"}
	}

	start := normalizeDay(startDate)
	dates := make([]time.Time, occurrenceCount)
	for i := 0; i < occurrenceCount; i++ {
		switch recurringPeriod {
		case entity.PeriodDaily:
			dates[i] = start.AddDate(0, 0, i)
		case entity.PeriodWeekly:
			dates[i] = start.AddDate(0, 0, 7*i)
		case entity.PeriodBiweekly:
			dates[i] = start.AddDate(0, 0, 14*i)
		case entity.PeriodMonthly:
			dates[i] = addMonthsClamped(start, i)
		case entity.PeriodQuarterly:
			dates[i] = addMonthsClamped(start, 3*i)
		case entity.PeriodSemiannual:
			dates[i] = addMonthsClamped(start, 6*i)
		case entity.PeriodAnnual:
			dates[i] = addMonthsClamped(start, 12*i)
		default:
			return nil, &errs.ConfigurationError{Field: "recurring_period", Value: recurringPeriod}
		}
	}
	return dates, nil
}

// scheduleOccurrenceDates 计划的全部期次到期日。
// 非重复计划固定为起始日单期。
func scheduleOccurrenceDates(schedule *entity.PMSchedule) ([]time.Time, error) {
	if !schedule.IsRecurring {
		return []time.Time{normalizeDay(schedule.StartDate)}, nil
	}
	return GenerateOccurrenceDates(schedule.StartDate, schedule.RecurringPeriod, schedule.Occurrences)
}
