package engine

import (
	"testing"

	"github.com/shaiso/Conveyor/internal/domain"
)

func TestGate_PushWithoutTag(t *testing.T) {
	g := Gate{Mainline: "master"}

	ev := &domain.Event{Type: domain.EventTypePush, Branch: "feature-x"}
	if !g.Allows(ev) {
		t.Error("push without tag should be allowed on any branch")
	}
}

func TestGate_PushWithTagOnMainline(t *testing.T) {
	g := Gate{Mainline: "master"}

	ev := &domain.Event{Type: domain.EventTypePush, Branch: "master", Tag: "v1.2.0"}
	if !g.Allows(ev) {
		t.Error("tagged push to mainline should be allowed")
	}
}

func TestGate_PushWithTagOffMainline(t *testing.T) {
	// Единственный отклоняемый случай: push с тегом в не-mainline ветку
	g := Gate{Mainline: "master"}

	ev := &domain.Event{Type: domain.EventTypePush, Branch: "release-1.2", Tag: "v1.2.0"}
	if g.Allows(ev) {
		t.Error("tagged push off mainline should be rejected")
	}
}

func TestGate_NonPushEventsAlwaysAllowed(t *testing.T) {
	g := Gate{Mainline: "master"}

	// Не-push события проходят даже с тегом в чужой ветке
	for _, typ := range []domain.EventType{
		domain.EventTypePullRequest,
		domain.EventTypeCron,
		domain.EventTypeManual,
	} {
		ev := &domain.Event{Type: typ, Branch: "release-1.2", Tag: "v1.2.0"}
		if !g.Allows(ev) {
			t.Errorf("%s event should always be allowed", typ)
		}
	}
}
