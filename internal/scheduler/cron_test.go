package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

func TestCalculateNextDue_Cron(t *testing.T) {
	trigger := &domain.Trigger{
		CronExpr: "0 4 * * *", // каждый день в 4:00
		Timezone: "UTC",
	}

	from := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(trigger, from)
	if err != nil {
		t.Fatalf("CalculateNextDue failed: %v", err)
	}

	expected := time.Date(2025, 6, 16, 4, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("next = %v, expected %v", next, expected)
	}
}

func TestCalculateNextDue_CronTimezone(t *testing.T) {
	trigger := &domain.Trigger{
		CronExpr: "0 4 * * *",
		Timezone: "Europe/Moscow", // UTC+3
	}

	// 10:30 UTC = 13:30 MSK, следующее 4:00 MSK = 01:00 UTC следующего дня
	from := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(trigger, from)
	if err != nil {
		t.Fatalf("CalculateNextDue failed: %v", err)
	}

	expected := time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("next = %v, expected %v", next, expected)
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	trigger := &domain.Trigger{
		CronExpr: "0 4 * * *",
		Timezone: "Not/AZone",
	}

	from := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(trigger, from)
	if err != nil {
		t.Fatalf("CalculateNextDue failed: %v", err)
	}

	// Невалидный timezone трактуется как UTC
	expected := time.Date(2025, 6, 16, 4, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("next = %v, expected %v", next, expected)
	}
}

func TestCalculateNextDue_Interval(t *testing.T) {
	trigger := &domain.Trigger{
		IntervalSec: 300, // каждые 5 минут
		Timezone:    "UTC",
	}

	from := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(trigger, from)
	if err != nil {
		t.Fatalf("CalculateNextDue failed: %v", err)
	}

	expected := from.Add(5 * time.Minute)
	if !next.Equal(expected) {
		t.Errorf("next = %v, expected %v", next, expected)
	}
}

func TestCalculateNextDue_CronTakesPrecedenceOverInterval(t *testing.T) {
	// Когда заданы обе настройки, используется cron
	trigger := &domain.Trigger{
		CronExpr:    "0 4 * * *",
		IntervalSec: 60,
		Timezone:    "UTC",
	}

	from := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(trigger, from)
	if err != nil {
		t.Fatalf("CalculateNextDue failed: %v", err)
	}

	expected := time.Date(2025, 6, 16, 4, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("next = %v, expected %v", next, expected)
	}
}

func TestCalculateNextDue_NeitherCronNorInterval(t *testing.T) {
	trigger := &domain.Trigger{
		Timezone: "UTC",
	}

	_, err := CalculateNextDue(trigger, time.Now())
	if err == nil {
		t.Error("expected error for trigger without cron_expr and interval_sec")
	}
}

func TestCalculateNextDue_InvalidCronExpr(t *testing.T) {
	trigger := &domain.Trigger{
		CronExpr: "not a cron",
		Timezone: "UTC",
	}

	_, err := CalculateNextDue(trigger, time.Now())
	if err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}

	if err := ValidateCronExpr("0 4 * * 1-5"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}

	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("expected error for minute out of range")
	}

	if err := ValidateCronExpr(""); err == nil {
		t.Error("expected error for empty expression")
	}
}
