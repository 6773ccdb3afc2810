package engine

import (
	"fmt"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Допустимые классификации шагов.
var validStepClasses = map[domain.StepClass]bool{
	domain.StepClassSetup:         true,
	domain.StepClassLint:          true,
	domain.StepClassSecurityAudit: true,
	domain.StepClassBuild:         true,
	domain.StepClassTest:          true,
}

// Допустимые виды предикатов. Пустой Kind — синоним always.
var validPredicateKinds = map[domain.PredicateKind]bool{
	domain.PredicateAlways:           true,
	domain.PredicateKind(""):         true,
	domain.PredicateChannelEquals:    true,
	domain.PredicateChannelNotEquals: true,
	domain.PredicateChannelIn:        true,
}

// Validate выполняет полную валидацию дескриптора.
//
// Проверяет:
// - Наличие шагов и основной ветки
// - Непустые идентификаторы каналов
// - allow-failure ⊆ channels
// - Уникальность и непустоту ID шагов
// - Непустые команды и известные классификации
// - Известные виды предикатов и их ссылки на объявленные каналы
//
// Пустой список каналов — НЕ ошибка: пустая матрица даёт ноль jobs
// и вакуумно успешный pipeline.
//
// Любая ошибка отсюда — ConfigurationError: pipeline не должен
// создать ни одного job и запустить ни одного процесса.
func Validate(d *domain.Descriptor) error {
	if d == nil || len(d.Steps) == 0 {
		return ErrNoSteps
	}

	if d.Mainline == "" {
		return ErrEmptyMainline
	}

	for _, ch := range d.Channels {
		if ch == "" {
			return ErrEmptyChannel
		}
	}

	for _, ch := range d.AllowFailure {
		if !d.HasChannel(ch) {
			return NewValidationError("", "allow_failure",
				fmt.Sprintf("allow-failure channel %q not declared in matrix", ch),
				ErrAllowFailureNotSubset)
		}
	}

	seen := make(map[string]bool, len(d.Steps))
	for i := range d.Steps {
		step := &d.Steps[i]

		if err := validateStep(d, step, seen); err != nil {
			return err
		}
	}

	return nil
}

// validateStep валидирует один шаг и регистрирует его ID.
func validateStep(d *domain.Descriptor, step *domain.StepDef, seen map[string]bool) error {
	if step.ID == "" {
		return NewValidationError("", "id", "step has empty ID", ErrEmptyStepID)
	}

	if seen[step.ID] {
		return NewValidationError(step.ID, "id",
			fmt.Sprintf("duplicate step ID %q", step.ID), ErrDuplicateStepID)
	}
	seen[step.ID] = true

	if step.Command == "" {
		return NewValidationError(step.ID, "command", "step has empty command", ErrEmptyCommand)
	}

	if !validStepClasses[step.Class] {
		return NewValidationError(step.ID, "class",
			fmt.Sprintf("unknown step class %q", step.Class), ErrUnknownStepClass)
	}

	if !validPredicateKinds[step.When.Kind] {
		return NewValidationError(step.ID, "when",
			fmt.Sprintf("unknown predicate kind %q", step.When.Kind), ErrUnknownPredicateKind)
	}

	for _, ch := range step.When.References() {
		if !d.HasChannel(ch) {
			return NewValidationError(step.ID, "when",
				fmt.Sprintf("predicate references undeclared channel %q", ch),
				ErrUndeclaredChannel)
		}
	}

	return nil
}

// ValidateEvent проверяет контекст триггерного события.
// Push и pull request обязаны нести ветку; cron и manual — нет
// (scheduler подставляет ветку триггера, manual по умолчанию mainline).
func ValidateEvent(ev *domain.Event) error {
	if !domain.KnownEventType(ev.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, ev.Type)
	}

	if (ev.Type == domain.EventTypePush || ev.Type == domain.EventTypePullRequest) && ev.Branch == "" {
		return ErrEmptyBranch
	}

	return nil
}
