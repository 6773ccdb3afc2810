package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Conveyor/internal/domain"
)

const sampleYAML = `
version: "1"
mainline: master
channels:
  - "1.13.0"
  - stable
  - beta
  - nightly
allow_failure:
  - nightly
fast_finish: true
steps:
  - id: install
    class: setup
    command: make deps
  - id: lint
    class: lint
    command: make lint
    when:
      channel: stable
  - id: audit
    class: security-audit
    command: make audit
    when:
      not_channel: "1.13.0"
  - id: smoke
    class: test
    command: make smoke
    when:
      channels: [beta, nightly]
  - id: build
    class: build
    command: make build
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if d.Mainline != "master" {
		t.Errorf("mainline = %q", d.Mainline)
	}
	if len(d.Channels) != 4 {
		t.Errorf("channels = %v", d.Channels)
	}
	if len(d.AllowFailure) != 1 || d.AllowFailure[0] != "nightly" {
		t.Errorf("allow_failure = %v", d.AllowFailure)
	}
	if !d.FastFinish {
		t.Error("fast_finish not parsed")
	}
	if len(d.Steps) != 5 {
		t.Fatalf("steps = %d, expected 5", len(d.Steps))
	}

	// Короткие формы предикатов переводятся в тегированные варианты
	if d.Steps[0].When.Kind != domain.PredicateAlways {
		t.Errorf("install predicate = %s, expected always", d.Steps[0].When.Kind)
	}
	if d.Steps[1].When.Kind != domain.PredicateChannelEquals || d.Steps[1].When.Channel != "stable" {
		t.Errorf("lint predicate = %+v", d.Steps[1].When)
	}
	if d.Steps[2].When.Kind != domain.PredicateChannelNotEquals || d.Steps[2].When.Channel != "1.13.0" {
		t.Errorf("audit predicate = %+v", d.Steps[2].When)
	}
	if d.Steps[3].When.Kind != domain.PredicateChannelIn || len(d.Steps[3].When.Channels) != 2 {
		t.Errorf("smoke predicate = %+v", d.Steps[3].When)
	}

	// Распарсенный дескриптор проходит валидацию
	if err := Validate(d); err != nil {
		t.Errorf("parsed descriptor failed validation: %v", err)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("channels: [unclosed"))
	if !errors.Is(err, ErrDescriptorSyntax) {
		t.Errorf("err = %v, expected ErrDescriptorSyntax", err)
	}
}

func TestParse_AmbiguousPredicate(t *testing.T) {
	yaml := `
mainline: master
channels: [stable, beta]
steps:
  - id: lint
    class: lint
    command: make lint
    when:
      channel: stable
      not_channel: beta
`
	_, err := Parse([]byte(yaml))
	if !errors.Is(err, ErrAmbiguousPredicate) {
		t.Errorf("err = %v, expected ErrAmbiguousPredicate", err)
	}
}

func TestParse_EmptyWhenMeansAlways(t *testing.T) {
	yaml := `
mainline: master
channels: [stable]
steps:
  - id: build
    class: build
    command: make build
    when: {}
`
	d, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !d.Steps[0].When.Eval("stable") {
		t.Error("empty when should mean always")
	}
}
