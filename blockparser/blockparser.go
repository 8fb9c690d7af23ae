// Package blockparser implements the recursive, backtracking recognizer:
// it walks a LineSource through one BlockDef's head/body/tail, consulting
// nested children before consuming its own lines, and returns a deferred
// commit on success or rewinds the cursor exactly on failure.
package blockparser

import (
	"context"
	"sort"

	"github.com/arnegrau/lineblock"
	"github.com/arnegrau/lineblock/blockdef"
	"github.com/arnegrau/lineblock/linesource"
	"github.com/arnegrau/lineblock/matcher"
)

// Run-time error codes, within lineblock.ActionErrors' band.
const (
	ActionFaultError = lineblock.ActionErrors + iota
)

func actionFaultError(name string, cause error) error {
	return lineblock.WrapError(ActionFaultError, cause, "block %q: action failed: %v", name, cause)
}

// Trace is an optional, off-by-default diagnostics hook. Set it on a Parser
// before calling ParseRoot to observe attempt boundaries and commits; nil
// fields are simply not invoked. Trace lives strictly outside the
// recognition algorithm's control flow — it never influences a match.
type Trace struct {
	OnAttemptStart func(name string, startGLN int)
	OnAttemptEnd   func(name string, startGLN int, success bool)
	OnCommit       func(name string, occurrenceIndex, startGLN, endGLN int)
}

// Parser walks a single LineSource, recognizing blocks against BlockDefs.
type Parser struct {
	src   *linesource.LineSource
	trace *Trace
}

// New returns a Parser reading from src.
func New(src *linesource.LineSource) *Parser {
	return &Parser{src: src}
}

// SetTrace installs (or clears, with nil) the diagnostics hook.
func (p *Parser) SetTrace(t *Trace) {
	p.trace = t
}

// nestingState holds the per-attempt, per-nested-spec bookkeeping that must
// persist across repeated consultations within a single block attempt: only
// a Sequence needs this (its "current alternative" index advances as
// children close, rather than resetting consultation-to-consultation).
type nestingState struct {
	seqIndex int
}

// ParseRoot recognizes root's nested spec against the stream until EOF (or
// ctx is done), invoking each root-level child's commit immediately once it
// succeeds — a root-level block can never be un-succeeded by an ancestor
// failure, since root itself never fails (it only ever skips an unmatched
// line), so there is nothing left to defer the commit to.
func (p *Parser) ParseRoot(ctx context.Context, root *blockdef.BlockDef) error {
	_, err := p.attempt(ctx, root, true, nil)
	return err
}

// attempt tries to recognize one instance of def starting at the current
// cursor. On success it returns a non-nil commit (the deferred closure for
// non-root defs; already-invoked for root, whose return value is always
// nil). On failure it returns (nil, nil) having rewound the cursor exactly
// to where this attempt started. A non-nil error is an ActionError or a
// context cancellation, and always propagates to the caller unchanged.
//
// ancestorTails carries every still-open ancestor's tail matchers, so a
// trailing AllOthers in def's own body never claims a line one of those
// ancestors needs to close on.
func (p *Parser) attempt(ctx context.Context, def *blockdef.BlockDef, isRoot bool, ancestorTails []matcher.Matcher) (blockdef.CommitFunc, error) {
	startGLN := p.src.CurrentGLN()
	if !isRoot {
		// Root never rewinds (it never fails), so pinning its own start
		// would block DropConsumedPrefix for the whole parse; only
		// attempts that might still unwind need to pin their start.
		p.src.Pin(startGLN)
		defer p.src.Unpin(startGLN)
	}

	if p.trace != nil && p.trace.OnAttemptStart != nil {
		p.trace.OnAttemptStart(def.Name(), startGLN)
	}

	lLN := 0
	var capturedLines []string
	var pendingCommits []blockdef.CommitFunc
	nest := &nestingState{}

	succeeded := false
	defer func() {
		if p.trace != nil && p.trace.OnAttemptEnd != nil {
			p.trace.OnAttemptEnd(def.Name(), startGLN, succeeded)
		}
	}()

	fail := func() (blockdef.CommitFunc, error) {
		cur := p.src.CurrentGLN()
		p.src.RewindBy(cur - startGLN)
		return nil, nil
	}

	// settleRootChild invokes a root-level child's commit right away, since
	// root never un-succeeds an already-closed top-level block, then
	// reclaims the buffer prefix the commit no longer needs.
	settleRootChild := func(commit blockdef.CommitFunc) error {
		if commit != nil {
			if err := commit(); err != nil {
				return err
			}
		}
		p.src.DropConsumedPrefix()
		return nil
	}

	succeed := func() (blockdef.CommitFunc, error) {
		endGLN := p.src.CurrentGLN()
		occurrenceIndex := def.UsageCount() + 1
		commit, err := p.buildCommit(def, capturedLines, occurrenceIndex, pendingCommits, startGLN, endGLN)
		if err != nil {
			return nil, err
		}
		succeeded = true

		if isRoot {
			if err := settleRootChild(commit); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return commit, nil
	}

	childAncestorTails := ancestorTails
	if len(def.Tail()) > 0 {
		childAncestorTails = append(append([]matcher.Matcher(nil), ancestorTails...), def.Tail()...)
	}

	for {
		childCommit, consumed, err := p.tryNested(ctx, def, nest, childAncestorTails)
		if err != nil {
			return nil, err
		}
		if consumed {
			if isRoot {
				if err := settleRootChild(childCommit); err != nil {
					return nil, err
				}
			} else {
				pendingCommits = append(pendingCommits, childCommit)
			}
			continue
		}

		line, ok := p.src.Peek()
		if !ok {
			if p.src.AwaitMoreOrEOF(ctx) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return p.onEOF(def, isRoot, lLN, fail, succeed)
		}

		gLN := line.GLN

		if lLN == 0 {
			if isRoot {
				p.src.Advance()
				continue
			}

			var matched bool
			var err error
			if len(def.Head()) > 0 {
				matched, err = p.tryFirst(def.Head(), gLN, 1, line.Text)
			} else {
				matched, err = p.tryFirst(def.Body(), gLN, 1, line.Text)
			}
			if err != nil {
				return nil, err
			}
			if !matched {
				return fail()
			}

			capturedLines = append(capturedLines, line.Text)
			lLN = 1
			p.src.Advance()
			if def.LineCount() > 0 && lLN == def.LineCount() {
				return succeed()
			}
			continue
		}

		// Subsequent lines (lLN >= 1).
		if len(def.Tail()) > 0 {
			matched, err := p.tryFirst(def.Tail(), gLN, lLN+1, line.Text)
			if err != nil {
				return nil, err
			}
			if matched {
				capturedLines = append(capturedLines, line.Text)
				p.src.Advance()
				return succeed()
			}
		}

		bodyMatched, err := p.tryBody(def.Body(), gLN, lLN+1, line.Text, ancestorTails)
		if err != nil {
			return nil, err
		}
		if bodyMatched {
			capturedLines = append(capturedLines, line.Text)
			lLN++
			p.src.Advance()
			if def.LineCount() > 0 && lLN == def.LineCount() {
				return succeed()
			}
			continue
		}

		switch {
		case def.HasEndingCondition() && def.Strict():
			return fail()
		case def.HasEndingCondition():
			// Loose: tolerate the unrelated line, don't accumulate it.
			p.src.Advance()
			continue
		default:
			// Open-ended: the line doesn't belong; leave it for whoever
			// reads next and close here.
			return succeed()
		}
	}
}

// onEOF resolves what happens when the stream is exhausted mid-attempt.
// Root never fails at EOF (it simply stops). A block that never matched
// its head (lLN == 0) never began, so EOF is a failure, not a vacuous
// success. An in-progress block with an ending condition suffers a
// StreamTruncation (fails silently); an in-progress open-ended block
// succeeds with whatever it already captured.
func (p *Parser) onEOF(def *blockdef.BlockDef, isRoot bool, lLN int, fail, succeed func() (blockdef.CommitFunc, error)) (blockdef.CommitFunc, error) {
	if isRoot {
		return nil, nil
	}
	if lLN == 0 {
		return fail()
	}
	if def.HasEndingCondition() {
		return fail()
	}
	return succeed()
}

// tryFirst returns whether any matcher in ms matches the line, firing that
// matcher's hook on success. Earlier matchers are evaluated first; the
// first to match wins, mirroring "find the first matcher in head/body/tail
// that matches."
func (p *Parser) tryFirst(ms []matcher.Matcher, gLN, lLN int, line string) (bool, error) {
	for _, m := range ms {
		if m.Match(gLN, lLN, line) {
			m.FireOnMatch()
			return true, nil
		}
	}
	return false, nil
}

// tryBody is like tryFirst, except a trailing AllOthers in ms gives every
// still-open ancestor's tail first refusal on the line before claiming it.
// Without this probe, an open-ended AllOthers body would swallow every
// remaining line until EOF and starve whichever enclosing block's tail was
// waiting to close on one of them.
func (p *Parser) tryBody(ms []matcher.Matcher, gLN, lLN int, line string, ancestorTails []matcher.Matcher) (bool, error) {
	for _, m := range ms {
		if _, ok := m.(*matcher.AllOthers); ok && matchesAny(ancestorTails, gLN, lLN, line) {
			continue
		}
		if m.Match(gLN, lLN, line) {
			m.FireOnMatch()
			return true, nil
		}
	}
	return false, nil
}

// matchesAny reports whether any matcher in ms matches the line, without
// firing hooks — used only to probe ancestor tails, never to consume them.
func matchesAny(ms []matcher.Matcher, gLN, lLN int, line string) bool {
	for _, m := range ms {
		if m.Match(gLN, lLN, line) {
			return true
		}
	}
	return false
}

// buildCommit invokes def's action (if any) and wraps the result, the
// already-recorded child commits, and the usage-count increment into a
// single deferred closure — the commit thunk per spec.md's design notes,
// guaranteeing no descendant action is ever observed for an aborted
// subtree.
func (p *Parser) buildCommit(def *blockdef.BlockDef, capturedLines []string, occurrenceIndex int, children []blockdef.CommitFunc, startGLN, endGLN int) (blockdef.CommitFunc, error) {
	var myCommit blockdef.CommitFunc
	if action := def.Action(); action != nil {
		snapshot := make([]string, len(capturedLines))
		copy(snapshot, capturedLines)
		c, err := action(snapshot, occurrenceIndex)
		if err != nil {
			return nil, actionFaultError(def.Name(), err)
		}
		myCommit = c
	}

	trace := p.trace
	name := def.Name()
	commit := func() error {
		for _, c := range children {
			if c == nil {
				continue
			}
			if err := c(); err != nil {
				return err
			}
		}
		if myCommit != nil {
			if err := myCommit(); err != nil {
				return actionFaultError(name, err)
			}
		}
		def.IncrementUsage()
		if trace != nil && trace.OnCommit != nil {
			trace.OnCommit(name, occurrenceIndex, startGLN, endGLN)
		}
		return nil
	}
	return commit, nil
}

// tryNested consults def's nested spec, accepting at most one child per
// call (a choice-set attempts its usable alternatives in priority order
// until one succeeds). consumed reports whether a child claimed the current cursor
// position; when it did, commit is that child's deferred commit (possibly
// nil if the child had no action and produced none).
func (p *Parser) tryNested(ctx context.Context, def *blockdef.BlockDef, nest *nestingState, ancestorTails []matcher.Matcher) (commit blockdef.CommitFunc, consumed bool, err error) {
	n := def.Nested()
	switch n.Kind {
	case blockdef.KindNone:
		return nil, false, nil

	case blockdef.KindOne:
		child := n.Defs[0]
		if !child.Usable() {
			return nil, false, nil
		}
		c, err := p.attempt(ctx, child, false, ancestorTails)
		if err != nil {
			return nil, false, err
		}
		if c == nil {
			return nil, false, nil
		}
		return c, true, nil

	case blockdef.KindChoice:
		ordered := append([]*blockdef.BlockDef(nil), n.Defs...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Priority() < ordered[j].Priority()
		})
		for _, child := range ordered {
			if !child.Usable() {
				continue
			}
			c, err := p.attempt(ctx, child, false, ancestorTails)
			if err != nil {
				return nil, false, err
			}
			if c != nil {
				return c, true, nil
			}
		}
		return nil, false, nil

	case blockdef.KindSequence:
		if nest.seqIndex >= len(n.Defs) {
			return nil, false, nil
		}
		child := n.Defs[nest.seqIndex]
		c, err := p.attempt(ctx, child, false, ancestorTails)
		if err != nil {
			return nil, false, err
		}
		if c == nil {
			return nil, false, nil
		}
		nest.seqIndex++
		return c, true, nil

	default:
		return nil, false, nil
	}
}
