package domain

// StepClass — классификация шага в дескрипторе.
type StepClass string

const (
	// StepClassSetup — установка компонентов тулчейна.
	StepClassSetup StepClass = "setup"

	// StepClassLint — проверка стиля и статический анализ.
	StepClassLint StepClass = "lint"

	// StepClassSecurityAudit — аудит зависимостей на уязвимости.
	StepClassSecurityAudit StepClass = "security-audit"

	// StepClassBuild — сборка.
	StepClassBuild StepClass = "build"

	// StepClassTest — запуск тестов.
	StepClassTest StepClass = "test"
)

// StepDef — объявление шага в дескрипторе pipeline.
//
// Шаги выполняются строго в порядке объявления. Предикат может
// исключить шаг для конкретного канала, но никогда не меняет порядок
// оставшихся.
type StepDef struct {
	// ID — уникальный идентификатор шага в рамках дескриптора.
	ID string `json:"id" yaml:"id"`

	// Name — человекочитаемое имя шага.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Class — классификация: setup, lint, security-audit, build, test.
	Class StepClass `json:"class" yaml:"class"`

	// Command — shell-команда. Интерпретируется только exit code;
	// семантика самой команды системе не известна.
	Command string `json:"command" yaml:"command"`

	// When — предикат применимости по каналу. Отсутствие = always.
	When Predicate `json:"when,omitempty" yaml:"when,omitempty"`
}

// Descriptor — дескриптор pipeline: матрица каналов и список шагов.
//
// Дескриптор — конфигурация времени запуска. Он сериализуется в
// pipeline при создании и больше не меняется: allow-failure множество
// и порядок шагов зафиксированы на весь жизненный цикл pipeline.
type Descriptor struct {
	// Version — версия формата дескриптора (для обратной совместимости).
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Mainline — имя основной ветки (для run gate).
	Mainline string `json:"mainline" yaml:"mainline"`

	// Channels — упорядоченный список каналов. Каждый канал даёт
	// ровно один job; дубликаты дают независимые jobs.
	Channels []Channel `json:"channels" yaml:"channels"`

	// AllowFailure — подмножество Channels, чьи jobs не влияют
	// на итоговый вердикт pipeline.
	AllowFailure []Channel `json:"allow_failure,omitempty" yaml:"allow_failure,omitempty"`

	// FastFinish — публиковать вердикт, как только судьба всех
	// обязательных jobs известна, не дожидаясь allow-failure jobs.
	FastFinish bool `json:"fast_finish,omitempty" yaml:"fast_finish,omitempty"`

	// Steps — упорядоченный список шагов, общий для всех jobs.
	Steps []StepDef `json:"steps" yaml:"steps"`
}

// AllowsFailure возвращает true, если канал входит в allow-failure множество.
func (d *Descriptor) AllowsFailure(ch Channel) bool {
	for _, c := range d.AllowFailure {
		if c == ch {
			return true
		}
	}
	return false
}

// HasChannel возвращает true, если канал объявлен в матрице.
func (d *Descriptor) HasChannel(ch Channel) bool {
	for _, c := range d.Channels {
		if c == ch {
			return true
		}
	}
	return false
}
