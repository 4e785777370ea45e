package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
)

func TestCalculateNextDue_Cron(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 3 * * *", // каждый день в 3:00
		Timezone: "UTC",
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_CronWithTimezone(t *testing.T) {
	// 3:00 по Москве = 0:00 UTC.
	sched := &domain.Schedule{
		CronExpr: "0 3 * * *",
		Timezone: "Europe/Moscow",
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
	// Результат хранится в UTC.
	if next.Location() != time.UTC {
		t.Errorf("expected UTC result, got %v", next.Location())
	}
}

func TestCalculateNextDue_Interval(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 3600,
		Timezone:    "UTC",
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := from.Add(time.Hour)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 60,
		Timezone:    "Mars/Olympus",
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(from.Add(time.Minute)) {
		t.Errorf("unexpected next due: %v", next)
	}
}

func TestCalculateNextDue_NeitherCronNorInterval(t *testing.T) {
	sched := &domain.Schedule{Timezone: "UTC"}

	if _, err := CalculateNextDue(sched, time.Now()); err == nil {
		t.Fatal("expected error for schedule without cron or interval")
	}
}

func TestCalculateNextDue_CronTakesPrecedence(t *testing.T) {
	// При заданном CronExpr интервал игнорируется.
	sched := &domain.Schedule{
		CronExpr:    "0 * * * *",
		IntervalSec: 10,
		Timezone:    "UTC",
	}

	from := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestValidateCronExpr(t *testing.T) {
	valid := []string{
		"0 3 * * *",
		"*/5 * * * *",
		"0 0 * * 0",
	}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("expected %q to be valid: %v", expr, err)
		}
	}

	invalid := []string{
		"",
		"not a cron",
		"61 * * * *",
		"* * * *", // 4 поля вместо 5
	}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("expected %q to be invalid", expr)
		}
	}
}

func TestSchedule_IsDue(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	sched := &domain.Schedule{Enabled: true, NextDueAt: &past}
	if !sched.IsDue(now) {
		t.Error("expected schedule with past next_due_at to be due")
	}

	sched.NextDueAt = &future
	if sched.IsDue(now) {
		t.Error("expected schedule with future next_due_at to not be due")
	}

	// Выключенное расписание никогда не due.
	sched.Enabled = false
	sched.NextDueAt = &past
	if sched.IsDue(now) {
		t.Error("disabled schedule must not be due")
	}

	// Без next_due_at — не due.
	sched.Enabled = true
	sched.NextDueAt = nil
	if sched.IsDue(now) {
		t.Error("schedule without next_due_at must not be due")
	}
}
