// Package matcher implements the per-line predicates consumed by a block
// definition's head/body/tail lists: Pattern (regex), Literal (substring),
// LineNo (line-number set membership), and AllOthers (an unconditional
// catch-all usable only in a body list's final position).
package matcher

import (
	"regexp"
	"strings"

	"github.com/arnegrau/lineblock/lineset"
)

// OnMatchFunc is invoked by FireOnMatch, on every call, with the memoized
// values of the matcher's last Match call. The block parser calls
// FireOnMatch only for the matcher that claimed a line.
// ownerName identifies the owning BlockDef (set once, at construction).
type OnMatchFunc func(ownerName string, gLN, lLN int, line string, capture any)

// Matcher is the common interface implemented by Pattern, Literal, LineNo,
// and AllOthers. Match is idempotent per gLN: calling it twice with the
// same gLN returns the memoized result instead of recomputing.
type Matcher interface {
	// Name is a human label for diagnostics.
	Name() string

	// Match tests line (with the given global and local line numbers)
	// and reports whether it matched. Matchers memoize on gLN so that
	// several sibling matchers evaluating the same line do not each
	// recompute their own expensive check more than once.
	Match(gLN, lLN int, line string) bool

	// BindOwner records the owning block's name, used by OnMatch hooks.
	// Called once at block construction time.
	BindOwner(ownerName string)

	// FireOnMatch invokes the matcher's hook (if any) with the memoized
	// result of the last Match call. No-op if there's no hook or Match
	// has not been called yet.
	FireOnMatch()
}

type memo struct {
	lastGLN     int
	hasLast     bool
	lastLine    string
	lastLLN     int
	lastCapture any
}

func (m *memo) remember(gLN, lLN int, line string, capture any) {
	m.lastGLN = gLN
	m.hasLast = true
	m.lastLine = line
	m.lastLLN = lLN
	m.lastCapture = capture
}

func (m *memo) sameGLN(gLN int) bool {
	return m.hasLast && m.lastGLN == gLN
}

func capturedOK(capture any) bool {
	if capture == nil {
		return false
	}
	if b, ok := capture.(bool); ok {
		return b
	}
	return true
}

type base struct {
	name      string
	ownerName string
	onMatch   OnMatchFunc
	memo
}

func (b *base) Name() string { return b.name }

func (b *base) BindOwner(ownerName string) { b.ownerName = ownerName }

func (b *base) FireOnMatch() {
	if b.onMatch == nil || !b.hasLast {
		return
	}
	b.onMatch(b.ownerName, b.lastGLN, b.lastLLN, b.lastLine, b.lastCapture)
}

// Pattern matches a line against a compiled regular expression. Capture is
// the regexp submatch slice, or nil if the line did not match.
type Pattern struct {
	base
	re *regexp.Regexp
}

// NewPattern compiles expr and returns a Pattern matcher. Returns an error
// if expr fails to compile (a construction-time DefinitionError in
// blockdef's terms).
func NewPattern(name, expr string, onMatch OnMatchFunc) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pattern{base: base{name: name, onMatch: onMatch}, re: re}, nil
}

// MustPattern is like NewPattern but panics on a bad expression; convenient
// for matchers built from Go literals rather than external config.
func MustPattern(name, expr string, onMatch OnMatchFunc) *Pattern {
	p, err := NewPattern(name, expr, onMatch)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Match(gLN, lLN int, line string) bool {
	if p.sameGLN(gLN) {
		return capturedOK(p.lastCapture)
	}

	var capture any
	if m := p.re.FindStringSubmatch(line); m != nil {
		capture = m
	}
	p.remember(gLN, lLN, line, capture)
	return capturedOK(capture)
}

// Literal matches a line containing substr anywhere in it.
type Literal struct {
	base
	substr string
}

// NewLiteral returns a Literal matcher testing for substr.
func NewLiteral(name, substr string, onMatch OnMatchFunc) *Literal {
	return &Literal{base: base{name: name, onMatch: onMatch}, substr: substr}
}

func (l *Literal) Match(gLN, lLN int, line string) bool {
	if l.sameGLN(gLN) {
		return capturedOK(l.lastCapture)
	}

	var capture any
	if strings.Contains(line, l.substr) {
		capture = true
	}
	l.remember(gLN, lLN, line, capture)
	return capturedOK(capture)
}

// LineNo matches lines whose number (global gLN, or local lLN when Global
// is false) is a member of Set.
type LineNo struct {
	base
	Set    *lineset.Set
	Global bool
}

// NewLineNoSet returns a LineNo matcher over an already-built set.
func NewLineNoSet(name string, set *lineset.Set, global bool, onMatch OnMatchFunc) *LineNo {
	return &LineNo{base: base{name: name, onMatch: onMatch}, Set: set, Global: global}
}

// NewLineNo builds a LineNo matcher from a spec string (see
// lineset.FromSpec), a single int, or a slice of ints.
func NewLineNo(name string, spec any, global bool, onMatch OnMatchFunc) *LineNo {
	var set *lineset.Set
	switch v := spec.(type) {
	case string:
		set = lineset.FromSpec(v)
	case int:
		set = lineset.New(v)
	case []int:
		set = lineset.FromSlice(v)
	default:
		set = lineset.New()
	}
	return NewLineNoSet(name, set, global, onMatch)
}

func (ln *LineNo) Match(gLN, lLN int, line string) bool {
	if ln.sameGLN(gLN) {
		return capturedOK(ln.lastCapture)
	}

	key := lLN
	if ln.Global {
		key = gLN
	}
	var capture any
	if ln.Set.Contains(key) {
		capture = true
	}
	ln.remember(gLN, lLN, line, capture)
	return capturedOK(capture)
}

// AllOthers is an unconditional catch-all matcher. Per the invariant in the
// data model it is only legal as the final element of a body list, and
// only when the owning block's head list is non-empty.
type AllOthers struct {
	base
}

// NewAllOthers returns a catch-all matcher.
func NewAllOthers(name string, onMatch OnMatchFunc) *AllOthers {
	return &AllOthers{base: base{name: name, onMatch: onMatch}}
}

func (a *AllOthers) Match(gLN, lLN int, line string) bool {
	if a.sameGLN(gLN) {
		return capturedOK(a.lastCapture)
	}
	a.remember(gLN, lLN, line, true)
	return true
}
