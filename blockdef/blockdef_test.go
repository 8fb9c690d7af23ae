package blockdef

import (
	"testing"

	"github.com/arnegrau/lineblock"
	"github.com/arnegrau/lineblock/matcher"
)

func TestNewAutoName(t *testing.T) {
	d1, err := New(Params{})
	if err != nil {
		t.Fatal(err)
	}
	d2, err := New(Params{})
	if err != nil {
		t.Fatal(err)
	}
	if d1.Name() == d2.Name() {
		t.Fatalf("expecting distinct auto-generated names, got %q twice", d1.Name())
	}
}

func TestTailAndLineCountConflict(t *testing.T) {
	_, err := New(Params{
		Tail:      []matcher.Matcher{matcher.NewLiteral("tail", "end", nil)},
		LineCount: 3,
	})
	assertCode(t, err, ContradictoryTerminationError)
}

func TestAllOthersPlacement(t *testing.T) {
	head := []matcher.Matcher{matcher.NewLiteral("h", "head", nil)}
	rest := matcher.NewAllOthers("rest", nil)

	// legal: final element of body, head non-empty
	_, err := New(Params{Head: head, Body: []matcher.Matcher{rest}})
	if err != nil {
		t.Fatalf("expecting legal placement to succeed, got %v", err)
	}

	// illegal: not final
	other := matcher.NewLiteral("b", "x", nil)
	_, err = New(Params{Head: head, Body: []matcher.Matcher{rest, other}})
	assertCode(t, err, AllOthersNotFinalError)

	// illegal: empty head
	_, err = New(Params{Body: []matcher.Matcher{rest}})
	assertCode(t, err, AllOthersNeedsHeadError)

	// illegal: in head
	_, err = New(Params{Head: []matcher.Matcher{rest}})
	assertCode(t, err, AllOthersOnlyInBodyError)
}

func TestNestingShapeValidation(t *testing.T) {
	child, _ := New(Params{})

	if _, err := New(Params{Nested: Nesting{Kind: KindOne}}); err == nil {
		t.Fatal("expecting error for empty One nesting")
	}
	if _, err := New(Params{Nested: Nesting{Kind: KindSequence}}); err == nil {
		t.Fatal("expecting error for empty Sequence nesting")
	}
	if _, err := New(Params{Nested: NestOne(child)}); err != nil {
		t.Fatalf("expecting valid One nesting to succeed, got %v", err)
	}
}

func TestUsageLimitAndCount(t *testing.T) {
	d, err := New(Params{UsageLimit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !d.Usable() {
		t.Fatal("expecting fresh definition to be usable")
	}
	d.IncrementUsage()
	if d.Usable() {
		t.Fatal("expecting definition to be unusable after hitting its limit")
	}
	if d.UsageCount() != 1 {
		t.Fatalf("expecting usage count 1, got %d", d.UsageCount())
	}
}

func TestUnlimitedUsage(t *testing.T) {
	d, err := New(Params{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		d.IncrementUsage()
	}
	if !d.Usable() {
		t.Fatal("expecting unlimited definition to remain usable")
	}
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expecting error code %d, got nil", code)
	}
	le, ok := err.(*lineblock.Error)
	if !ok {
		t.Fatalf("expecting *lineblock.Error, got %T", err)
	}
	if le.Code != code {
		t.Fatalf("expecting error code %d, got %d (%s)", code, le.Code, le.Message)
	}
}
