package domain

import "testing"

func TestPredicateAlways(t *testing.T) {
	p := Always()

	if !p.Eval("stable") {
		t.Error("always predicate should match any channel")
	}
	if !p.Eval("") {
		t.Error("always predicate should match empty channel")
	}
}

func TestPredicateEmptyKindMeansAlways(t *testing.T) {
	// Дескриптор может опустить предикат у безусловного шага
	p := Predicate{}

	if !p.Eval("stable") {
		t.Error("empty kind should be treated as always")
	}
}

func TestPredicateChannelEquals(t *testing.T) {
	p := ChannelEquals("stable")

	if !p.Eval("stable") {
		t.Error("expected match on stable")
	}
	if p.Eval("beta") {
		t.Error("expected no match on beta")
	}
}

func TestPredicateChannelNotEquals(t *testing.T) {
	p := ChannelNotEquals("nightly")

	if p.Eval("nightly") {
		t.Error("expected no match on nightly")
	}
	if !p.Eval("stable") {
		t.Error("expected match on stable")
	}
}

func TestPredicateChannelIn(t *testing.T) {
	p := ChannelIn("beta", "nightly")

	if !p.Eval("beta") {
		t.Error("expected match on beta")
	}
	if !p.Eval("nightly") {
		t.Error("expected match on nightly")
	}
	if p.Eval("stable") {
		t.Error("expected no match on stable")
	}
}

func TestPredicateChannelInEmptySet(t *testing.T) {
	// Пустое множество не матчит ни один канал
	p := ChannelIn()

	if p.Eval("stable") {
		t.Error("empty channel set should match nothing")
	}
}

func TestPredicateUnknownKind(t *testing.T) {
	p := Predicate{Kind: "version_matches"}

	if p.Eval("stable") {
		t.Error("unknown predicate kind should evaluate to false")
	}
}

func TestPredicateReferences(t *testing.T) {
	refs := ChannelEquals("stable").References()
	if len(refs) != 1 || refs[0] != "stable" {
		t.Errorf("equals references = %v, expected [stable]", refs)
	}

	refs = ChannelNotEquals("beta").References()
	if len(refs) != 1 || refs[0] != "beta" {
		t.Errorf("not_equals references = %v, expected [beta]", refs)
	}

	refs = ChannelIn("beta", "nightly").References()
	if len(refs) != 2 {
		t.Errorf("in references = %v, expected 2 channels", refs)
	}

	refs = Always().References()
	if len(refs) != 0 {
		t.Errorf("always references = %v, expected none", refs)
	}
}
