package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Conveyor/internal/domain"
)

// rawDescriptor — YAML-представление дескриптора.
//
// Отделено от domain.Descriptor, чтобы дать авторам короткие формы
// предикатов: when: {channel: stable} вместо явного kind.
type rawDescriptor struct {
	Version      string    `yaml:"version"`
	Mainline     string    `yaml:"mainline"`
	Channels     []string  `yaml:"channels"`
	AllowFailure []string  `yaml:"allow_failure"`
	FastFinish   bool      `yaml:"fast_finish"`
	Steps        []rawStep `yaml:"steps"`
}

type rawStep struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Class   string        `yaml:"class"`
	Command string        `yaml:"command"`
	When    *rawPredicate `yaml:"when"`
}

// rawPredicate — короткие формы предикатов в YAML:
//
//	when: {channel: stable}        — только на канале
//	when: {not_channel: "1.13.0"}  — на всех, кроме канала
//	when: {channels: [beta, nightly]} — на каналах из множества
//
// Отсутствие when означает безусловный шаг.
type rawPredicate struct {
	Channel    string   `yaml:"channel"`
	NotChannel string   `yaml:"not_channel"`
	Channels   []string `yaml:"channels"`
}

// Parse разбирает YAML-дескриптор в domain.Descriptor.
// Синтаксическая ошибка или неоднозначный предикат — ConfigurationError;
// семантическая валидация выполняется отдельно через Validate.
func Parse(data []byte) (*domain.Descriptor, error) {
	var raw rawDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorSyntax, err)
	}

	d := &domain.Descriptor{
		Version:  raw.Version,
		Mainline: raw.Mainline,
	}

	for _, ch := range raw.Channels {
		d.Channels = append(d.Channels, domain.Channel(ch))
	}
	for _, ch := range raw.AllowFailure {
		d.AllowFailure = append(d.AllowFailure, domain.Channel(ch))
	}
	d.FastFinish = raw.FastFinish

	for i := range raw.Steps {
		rs := &raw.Steps[i]

		pred, err := mapPredicate(rs.When)
		if err != nil {
			return nil, NewValidationError(rs.ID, "when", err.Error(), err)
		}

		d.Steps = append(d.Steps, domain.StepDef{
			ID:      rs.ID,
			Name:    rs.Name,
			Class:   domain.StepClass(rs.Class),
			Command: rs.Command,
			When:    pred,
		})
	}

	return d, nil
}

// Load читает дескриптор из файла и валидирует его.
func Load(path string) (*domain.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(d); err != nil {
		return nil, err
	}

	return d, nil
}

// mapPredicate переводит короткую YAML-форму в тегированный предикат.
func mapPredicate(raw *rawPredicate) (domain.Predicate, error) {
	if raw == nil {
		return domain.Always(), nil
	}

	forms := 0
	if raw.Channel != "" {
		forms++
	}
	if raw.NotChannel != "" {
		forms++
	}
	if len(raw.Channels) > 0 {
		forms++
	}

	switch {
	case forms == 0:
		return domain.Always(), nil
	case forms > 1:
		return domain.Predicate{}, ErrAmbiguousPredicate
	case raw.Channel != "":
		return domain.ChannelEquals(domain.Channel(raw.Channel)), nil
	case raw.NotChannel != "":
		return domain.ChannelNotEquals(domain.Channel(raw.NotChannel)), nil
	default:
		channels := make([]domain.Channel, 0, len(raw.Channels))
		for _, ch := range raw.Channels {
			channels = append(channels, domain.Channel(ch))
		}
		return domain.ChannelIn(channels...), nil
	}
}
