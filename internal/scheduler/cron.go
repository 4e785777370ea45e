package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Gatekeeper/internal/domain"
)

// Классический пятипольный формат:
// "минуты часы день-месяца месяц день-недели".
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CalculateNextDue вычисляет следующее время запуска schedule
// после момента from.
//
// Cron-выражение интерпретируется в timezone schedule (битый
// timezone трактуется как UTC); результат всегда в UTC — в этом
// виде next_due_at хранится в БД и сравнивается планировщиком.
// При заданном CronExpr интервал игнорируется.
func CalculateNextDue(sched *domain.Schedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := from.In(loc)

	switch {
	case sched.IsCron():
		expr, err := cronParser.Parse(sched.CronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", sched.CronExpr, err)
		}
		return expr.Next(local).UTC(), nil

	case sched.IsInterval():
		return local.Add(time.Duration(sched.IntervalSec) * time.Second).UTC(), nil

	default:
		return time.Time{}, fmt.Errorf("schedule has neither cron_expr nor interval_sec")
	}
}

// CalculateInitialNextDue вычисляет первое срабатывание нового
// или перенастроенного schedule. Вызывается API при create/update.
func CalculateInitialNextDue(sched *domain.Schedule) (time.Time, error) {
	return CalculateNextDue(sched, time.Now())
}

// ValidateCronExpr проверяет синтаксис cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}
