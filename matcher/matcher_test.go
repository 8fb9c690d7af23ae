package matcher

import "testing"

func TestPatternMatch(t *testing.T) {
	p := MustPattern("head", `^<< (\w+)`, nil)
	if !p.Match(1, 0, "<< head1") {
		t.Fatal("expecting match")
	}
	if p.Match(2, 0, "   body1") {
		t.Fatal("not expecting match")
	}
}

func TestPatternMemoization(t *testing.T) {
	calls := 0
	p, err := NewPattern("counter", "x", func(owner string, gLN, lLN int, line string, capture any) {
		calls++
	})
	if err != nil {
		t.Fatal(err)
	}

	p.Match(1, 0, "xyz")
	p.FireOnMatch()
	p.Match(1, 0, "xyz")
	p.FireOnMatch()
	if calls != 2 {
		t.Fatalf("expecting FireOnMatch to fire every call, got %d", calls)
	}

	// memo avoids recomputation for repeated gLN even with a different line
	if !p.Match(1, 0, "completely different, still memoized") {
		t.Fatal("expecting memoized true result regardless of new line text")
	}
}

func TestLiteralMatch(t *testing.T) {
	l := NewLiteral("lit", "ERROR", nil)
	if !l.Match(1, 0, "this is an ERROR line") {
		t.Fatal("expecting match")
	}
	if l.Match(2, 0, "this is fine") {
		t.Fatal("not expecting match")
	}
}

func TestLineNoGlobalVsLocal(t *testing.T) {
	globalM := NewLineNo("byGLN", "3,7-9", true, nil)
	if !globalM.Match(7, 1, "anything") {
		t.Fatal("expecting gLN 7 to match")
	}
	if globalM.Match(1, 7, "anything") {
		t.Fatal("not expecting lLN 7 to match a global matcher")
	}

	localM := NewLineNo("byLLN", "1-2", false, nil)
	if !localM.Match(99, 2, "anything") {
		t.Fatal("expecting lLN 2 to match")
	}
}

func TestLineNoMalformedSpecNeverMatches(t *testing.T) {
	m := NewLineNo("bad", "not-a-spec-!!", true, nil)
	for gln := 1; gln < 10; gln++ {
		if m.Match(gln, gln, "x") {
			t.Fatalf("malformed spec should never match, but matched gLN %d", gln)
		}
	}
}

func TestAllOthersAlwaysMatches(t *testing.T) {
	a := NewAllOthers("rest", nil)
	if !a.Match(1, 1, "") || !a.Match(2, 2, "anything at all") {
		t.Fatal("AllOthers must always match")
	}
}
