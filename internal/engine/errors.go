package engine

import "errors"

// Ошибки валидации дескриптора.
var (
	// ErrNoSteps — дескриптор не содержит шагов.
	ErrNoSteps = errors.New("descriptor has no steps")

	// ErrEmptyMainline — не указана основная ветка.
	ErrEmptyMainline = errors.New("descriptor has empty mainline branch")

	// ErrEmptyChannel — пустой идентификатор канала в матрице.
	ErrEmptyChannel = errors.New("empty channel in matrix")

	// ErrEmptyStepID — шаг не имеет ID.
	ErrEmptyStepID = errors.New("step has empty ID")

	// ErrDuplicateStepID — несколько шагов с одинаковым ID.
	ErrDuplicateStepID = errors.New("duplicate step ID")

	// ErrEmptyCommand — шаг не имеет команды.
	ErrEmptyCommand = errors.New("step has empty command")

	// ErrUnknownStepClass — неизвестная классификация шага.
	ErrUnknownStepClass = errors.New("unknown step class")

	// ErrUnknownPredicateKind — неизвестный вид предиката.
	ErrUnknownPredicateKind = errors.New("unknown predicate kind")

	// ErrUndeclaredChannel — предикат ссылается на канал вне матрицы.
	ErrUndeclaredChannel = errors.New("predicate references undeclared channel")

	// ErrAllowFailureNotSubset — allow-failure содержит канал вне матрицы.
	ErrAllowFailureNotSubset = errors.New("allow-failure channel not declared in matrix")
)

// Ошибки валидации события.
var (
	// ErrUnknownEventType — неизвестный тип события.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrEmptyBranch — событие не несёт ветку.
	ErrEmptyBranch = errors.New("event has empty branch")
)

// Ошибки загрузки дескриптора.
var (
	// ErrDescriptorSyntax — дескриптор не парсится как YAML.
	ErrDescriptorSyntax = errors.New("descriptor syntax error")

	// ErrAmbiguousPredicate — в when задано больше одной формы предиката.
	ErrAmbiguousPredicate = errors.New("ambiguous step predicate")
)

// ValidationError — ошибка валидации с контекстом.
//
// На уровне системы это ConfigurationError: фатальная ошибка времени
// инстанциации, фиксируемая до создания jobs и запуска процессов.
type ValidationError struct {
	StepID  string // ID шага, где произошла ошибка (пусто для уровня дескриптора)
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.StepID != "" {
		return "step " + e.StepID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(stepID, field, message string, err error) *ValidationError {
	return &ValidationError{
		StepID:  stepID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
