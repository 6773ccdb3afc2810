package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Conveyor/internal/domain"
)

func validDescriptor() *domain.Descriptor {
	return &domain.Descriptor{
		Mainline:     "master",
		Channels:     []domain.Channel{"stable", "beta", "nightly"},
		AllowFailure: []domain.Channel{"nightly"},
		Steps: []domain.StepDef{
			{ID: "install", Class: domain.StepClassSetup, Command: "make deps"},
			{ID: "build", Class: domain.StepClassBuild, Command: "make build"},
			{ID: "test", Class: domain.StepClassTest, Command: "make test",
				When: domain.ChannelNotEquals("nightly")},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validDescriptor()); err != nil {
		t.Errorf("valid descriptor rejected: %v", err)
	}
}

func TestValidate_EmptyMatrixOK(t *testing.T) {
	// Пустая матрица — не ошибка: ноль jobs, вакуумный успех
	d := validDescriptor()
	d.Channels = nil
	d.AllowFailure = nil
	d.Steps[2].When = domain.Always()

	if err := Validate(d); err != nil {
		t.Errorf("empty matrix rejected: %v", err)
	}
}

func TestValidate_NoSteps(t *testing.T) {
	d := validDescriptor()
	d.Steps = nil

	if err := Validate(d); !errors.Is(err, ErrNoSteps) {
		t.Errorf("err = %v, expected ErrNoSteps", err)
	}
}

func TestValidate_EmptyMainline(t *testing.T) {
	d := validDescriptor()
	d.Mainline = ""

	if err := Validate(d); !errors.Is(err, ErrEmptyMainline) {
		t.Errorf("err = %v, expected ErrEmptyMainline", err)
	}
}

func TestValidate_EmptyChannel(t *testing.T) {
	d := validDescriptor()
	d.Channels = append(d.Channels, "")

	if err := Validate(d); !errors.Is(err, ErrEmptyChannel) {
		t.Errorf("err = %v, expected ErrEmptyChannel", err)
	}
}

func TestValidate_AllowFailureNotSubset(t *testing.T) {
	d := validDescriptor()
	d.AllowFailure = []domain.Channel{"experimental"}

	if err := Validate(d); !errors.Is(err, ErrAllowFailureNotSubset) {
		t.Errorf("err = %v, expected ErrAllowFailureNotSubset", err)
	}
}

func TestValidate_EmptyStepID(t *testing.T) {
	d := validDescriptor()
	d.Steps[0].ID = ""

	if err := Validate(d); !errors.Is(err, ErrEmptyStepID) {
		t.Errorf("err = %v, expected ErrEmptyStepID", err)
	}
}

func TestValidate_DuplicateStepID(t *testing.T) {
	d := validDescriptor()
	d.Steps[1].ID = "install"

	if err := Validate(d); !errors.Is(err, ErrDuplicateStepID) {
		t.Errorf("err = %v, expected ErrDuplicateStepID", err)
	}
}

func TestValidate_EmptyCommand(t *testing.T) {
	d := validDescriptor()
	d.Steps[1].Command = ""

	if err := Validate(d); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("err = %v, expected ErrEmptyCommand", err)
	}
}

func TestValidate_UnknownStepClass(t *testing.T) {
	d := validDescriptor()
	d.Steps[1].Class = "deploy"

	if err := Validate(d); !errors.Is(err, ErrUnknownStepClass) {
		t.Errorf("err = %v, expected ErrUnknownStepClass", err)
	}
}

func TestValidate_UnknownPredicateKind(t *testing.T) {
	d := validDescriptor()
	d.Steps[2].When = domain.Predicate{Kind: "version_matches"}

	if err := Validate(d); !errors.Is(err, ErrUnknownPredicateKind) {
		t.Errorf("err = %v, expected ErrUnknownPredicateKind", err)
	}
}

func TestValidate_UndeclaredChannelInPredicate(t *testing.T) {
	d := validDescriptor()
	d.Steps[2].When = domain.ChannelEquals("experimental")

	if err := Validate(d); !errors.Is(err, ErrUndeclaredChannel) {
		t.Errorf("err = %v, expected ErrUndeclaredChannel", err)
	}
}

func TestValidate_ValidationErrorCarriesStepID(t *testing.T) {
	d := validDescriptor()
	d.Steps[1].Command = ""

	err := Validate(d)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, expected *ValidationError", err)
	}
	if verr.StepID != "build" {
		t.Errorf("validation error step = %q, expected build", verr.StepID)
	}
}

func TestValidateEvent(t *testing.T) {
	// Push без ветки — ошибка
	err := ValidateEvent(&domain.Event{Type: domain.EventTypePush})
	if !errors.Is(err, ErrEmptyBranch) {
		t.Errorf("err = %v, expected ErrEmptyBranch", err)
	}

	// Pull request без ветки — ошибка
	err = ValidateEvent(&domain.Event{Type: domain.EventTypePullRequest})
	if !errors.Is(err, ErrEmptyBranch) {
		t.Errorf("err = %v, expected ErrEmptyBranch", err)
	}

	// Manual и cron без ветки допустимы
	if err := ValidateEvent(&domain.Event{Type: domain.EventTypeManual}); err != nil {
		t.Errorf("manual event rejected: %v", err)
	}
	if err := ValidateEvent(&domain.Event{Type: domain.EventTypeCron}); err != nil {
		t.Errorf("cron event rejected: %v", err)
	}

	// Неизвестный тип — ошибка
	err = ValidateEvent(&domain.Event{Type: "deployment", Branch: "master"})
	if !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("err = %v, expected ErrUnknownEventType", err)
	}
}
