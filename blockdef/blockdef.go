// Package blockdef defines BlockDef, the immutable declarative recipe for
// recognizing one block of lines, and Nesting, the tagged shape describing
// how a block's children compose (one child, an ordered sequence, or a
// priority-ordered choice-set of alternatives).
package blockdef

import (
	"fmt"
	"sync/atomic"

	"github.com/arnegrau/lineblock/matcher"
)

// ActionFunc receives a successfully recognized block's captured lines and
// its 1-based occurrence index within its enclosing scope, and may return a
// CommitFunc: the deferred, user-visible effect that only runs once every
// enclosing block has also succeeded.
type ActionFunc func(capturedLines []string, occurrenceIndex int) (CommitFunc, error)

// CommitFunc is the user-visible side effect of one successful block match,
// deferred until the whole enclosing parse attempt succeeds.
type CommitFunc func() error

// Kind distinguishes the three Nesting shapes.
type Kind int

const (
	// KindNone means a block has no nested children.
	KindNone Kind = iota
	// KindOne means a single child definition, independently usable.
	KindOne
	// KindSequence means an ordered list of children, advanced one at a time.
	KindSequence
	// KindChoice means a priority-ordered set of independent alternatives.
	KindChoice
)

// Nesting is the tagged sum describing a block's children:
// nothing, One(def), Sequence(defs), or Choice(defs).
type Nesting struct {
	Kind Kind
	Defs []*BlockDef
}

// Nothing is the zero Nesting: a block with no children.
var Nothing = Nesting{Kind: KindNone}

// NestOne wraps a single independently-usable child definition.
func NestOne(def *BlockDef) Nesting {
	return Nesting{Kind: KindOne, Defs: []*BlockDef{def}}
}

// NestSequence wraps an ordered list of children, attempted one after
// another: the sequence only offers its current alternative to the parser,
// advancing to the next once the current one closes.
func NestSequence(defs ...*BlockDef) Nesting {
	return Nesting{Kind: KindSequence, Defs: defs}
}

// NestChoice wraps a priority-ordered set of alternatives, each
// independently usable (its own usage_limit, its own usage count). Per the
// choice-set default, an alternative built without an explicit UsageLimit
// gets 1 here rather than staying unlimited, so it falls through to the
// next-priority sibling after its first match instead of claiming every
// later occurrence for itself.
func NestChoice(defs ...*BlockDef) Nesting {
	for _, d := range defs {
		if d.usageLimit == 0 {
			d.usageLimit = 1
		}
	}
	return Nesting{Kind: KindChoice, Defs: defs}
}

// BlockDef is an immutable, user-built recipe for recognizing one block.
// Build it with New (or NewRoot for the implicit root); do not construct it
// as a struct literal directly, since doing so skips the invariant checks
// in spec.md §3 and §6.
type BlockDef struct {
	name       string
	head       []matcher.Matcher
	body       []matcher.Matcher
	tail       []matcher.Matcher
	lineCount  int // 0 means "unset"
	usageLimit int // 0 means "unlimited"
	strict     bool
	priority   int
	action     ActionFunc
	nested     Nesting

	usageCount int32 // engine-maintained, not part of the declarative recipe
}

// Params groups the constructor arguments for New; all fields are optional
// except where noted.
type Params struct {
	// Name is a unique label; auto-generated (e.g. "Parser7") if empty.
	Name string

	Head, Body, Tail []matcher.Matcher

	// LineCount, if > 0, closes the block exactly after this many matched
	// lines. Mutually exclusive with a non-empty Tail.
	LineCount int

	// UsageLimit, if > 0, caps the number of successful matches of this
	// definition within its enclosing scope.
	UsageLimit int

	// Strict aborts the block on any non-matching line once it has an
	// ending condition (Tail or LineCount); otherwise such lines are
	// silently skipped while the block waits for its tail/line_count.
	Strict bool

	// Priority orders alternatives within a choice-set; smaller runs
	// first. Defaults to 1.
	Priority int

	Action ActionFunc
	Nested Nesting
}

var autoNameCounters = map[string]*int32{}

func nextAutoName(prefix string) string {
	counter, ok := autoNameCounters[prefix]
	if !ok {
		counter = new(int32)
		autoNameCounters[prefix] = counter
	}
	n := atomic.AddInt32(counter, 1)
	return fmt.Sprintf("%s%d", prefix, n)
}

// New validates p and builds a BlockDef, or returns a *blockdef
// construction-time error (see Errors in errors.go) describing the first
// invariant violation found.
func New(p Params) (*BlockDef, error) {
	if p.Name == "" {
		p.Name = nextAutoName("Parser")
	}
	if p.Priority == 0 {
		p.Priority = 1
	}

	if len(p.Tail) > 0 && p.LineCount > 0 {
		return nil, contradictoryTerminationError(p.Name)
	}

	if err := checkAllOthersPlacement(p.Name, p.Head, p.Body); err != nil {
		return nil, err
	}

	if err := checkNestingShape(p.Name, p.Nested); err != nil {
		return nil, err
	}

	for _, ms := range [][]matcher.Matcher{p.Head, p.Body, p.Tail} {
		for _, m := range ms {
			m.BindOwner(p.Name)
		}
	}

	return &BlockDef{
		name:       p.Name,
		head:       p.Head,
		body:       p.Body,
		tail:       p.Tail,
		lineCount:  p.LineCount,
		usageLimit: p.UsageLimit,
		strict:     p.Strict,
		priority:   p.Priority,
		action:     p.Action,
		nested:     p.Nested,
	}, nil
}

// NewRoot builds the implicit root block: no head/body/tail, no ending
// condition, hosting the user's top-level Nesting.
func NewRoot(top Nesting) *BlockDef {
	return &BlockDef{name: "root", nested: top}
}

func isAllOthers(m matcher.Matcher) bool {
	_, ok := m.(*matcher.AllOthers)
	return ok
}

func checkAllOthersPlacement(name string, head, body []matcher.Matcher) error {
	for _, m := range head {
		if isAllOthers(m) {
			return allOthersOnlyInBodyError(name)
		}
	}

	for i, m := range body {
		if !isAllOthers(m) {
			continue
		}
		if i != len(body)-1 {
			return allOthersNotFinalError(name)
		}
		if len(head) == 0 {
			return allOthersNeedsHeadError(name)
		}
	}
	return nil
}

func checkNestingShape(name string, n Nesting) error {
	switch n.Kind {
	case KindNone:
		if len(n.Defs) != 0 {
			return malformedNestingError(name)
		}
	case KindOne:
		if len(n.Defs) != 1 {
			return malformedNestingError(name)
		}
	case KindSequence, KindChoice:
		if len(n.Defs) == 0 {
			return malformedNestingError(name)
		}
	default:
		return malformedNestingError(name)
	}
	return nil
}

// Name returns the block's (possibly auto-generated) name.
func (d *BlockDef) Name() string { return d.name }

// HasEndingCondition reports whether the block has a Tail or a LineCount,
// i.e. whether it terminates on an explicit condition rather than on the
// first non-matching line.
func (d *BlockDef) HasEndingCondition() bool {
	return len(d.tail) > 0 || d.lineCount > 0
}

// Strict reports the block's strict/loose termination mode.
func (d *BlockDef) Strict() bool { return d.strict }

// Priority reports the block's priority (smaller tried earlier).
func (d *BlockDef) Priority() int { return d.priority }

// LineCount reports the configured exact line count, or 0 if unset.
func (d *BlockDef) LineCount() int { return d.lineCount }

// Head, Body, and Tail expose the matcher lists in declaration order.
func (d *BlockDef) Head() []matcher.Matcher { return d.head }
func (d *BlockDef) Body() []matcher.Matcher { return d.body }
func (d *BlockDef) Tail() []matcher.Matcher { return d.tail }

// Nested exposes the child nesting shape.
func (d *BlockDef) Nested() Nesting { return d.nested }

// Action exposes the user action, or nil.
func (d *BlockDef) Action() ActionFunc { return d.action }

// Usable reports whether this definition may still be attempted, i.e.
// its usage count has not reached UsageLimit (0 meaning unlimited).
func (d *BlockDef) Usable() bool {
	if d.usageLimit == 0 {
		return true
	}
	return int(atomic.LoadInt32(&d.usageCount)) < d.usageLimit
}

// UsageCount reports how many times this definition has successfully
// committed so far.
func (d *BlockDef) UsageCount() int {
	return int(atomic.LoadInt32(&d.usageCount))
}

// IncrementUsage is called by the engine when a commit for this definition
// actually runs (not merely when the block is recognized — see spec.md
// §4.2's commit ordering: close, then action, then increment).
func (d *BlockDef) IncrementUsage() {
	atomic.AddInt32(&d.usageCount, 1)
}
