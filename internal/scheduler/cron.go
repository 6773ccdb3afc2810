package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Conveyor/internal/domain"
)

// cronParser — парсер cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CalculateNextDue вычисляет следующее время срабатывания для trigger.
// Для интервалов просто добавляет IntervalSec к текущему времени.
//
// Учитывает timezone триггера.
func CalculateNextDue(t *domain.Trigger, from time.Time) (time.Time, error) {
	// Загружаем timezone
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		// Fallback на UTC если timezone невалидный
		loc = time.UTC
	}

	// Конвертируем from в нужный timezone
	fromInTz := from.In(loc)

	if t.IsCron() {
		return calculateNextCron(t.CronExpr, fromInTz)
	}

	if t.IsInterval() {
		return calculateNextInterval(t.IntervalSec, fromInTz), nil
	}

	// Ни cron, ни interval — trigger некорректный
	return time.Time{}, fmt.Errorf("trigger has neither cron_expr nor interval_sec")
}

// calculateNextCron вычисляет следующее время по cron-выражению.
func calculateNextCron(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	next := schedule.Next(from)
	return next.UTC(), nil // возвращаем в UTC для хранения в БД
}

// calculateNextInterval вычисляет следующее время по интервалу.
func calculateNextInterval(intervalSec int, from time.Time) time.Time {
	next := from.Add(time.Duration(intervalSec) * time.Second)
	return next.UTC() // возвращаем в UTC для хранения в БД
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// CalculateInitialNextDue вычисляет первое время срабатывания для нового trigger.
// Используется при создании trigger через API.
func CalculateInitialNextDue(t *domain.Trigger) (time.Time, error) {
	return CalculateNextDue(t, time.Now())
}
