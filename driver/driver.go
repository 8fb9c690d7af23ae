// Package driver wires the engine's pieces together into the two entry
// points a caller actually uses: ParseStream and ParseFile. It builds the
// implicit root BlockDef, pumps lines into a LineSource from a producer
// goroutine, and runs the recognizer to completion.
package driver

import (
	"bufio"
	"context"
	"os"

	"github.com/arnegrau/lineblock/blockdef"
	"github.com/arnegrau/lineblock/blockparser"
	"github.com/arnegrau/lineblock/linesource"
)

// Option configures a parse run.
type Option func(*runConfig)

type runConfig struct {
	trace *blockparser.Trace
}

// WithTrace installs a diagnostics hook on the parser for this run.
func WithTrace(t *blockparser.Trace) Option {
	return func(c *runConfig) { c.trace = t }
}

// ParseStream recognizes def against lines, a lazy sequence of already
// line-split strings. It returns when lines is closed and the recognizer
// has drained the buffer, or immediately if ctx is canceled — cancellation
// stops the pump between lines and is reported back as ctx.Err(), without
// ever invoking a partial commit.
func ParseStream(ctx context.Context, lines <-chan string, def blockdef.Nesting, opts ...Option) error {
	cfg := runConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	src := linesource.New()
	root := blockdef.NewRoot(def)
	p := blockparser.New(src)
	if cfg.trace != nil {
		p.SetTrace(cfg.trace)
	}

	parseDone := make(chan error, 1)
	go func() {
		parseDone <- p.ParseRoot(ctx, root)
	}()

pump:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				src.SetEOF()
				break pump
			}
			src.Feed(line)
		case <-ctx.Done():
			break pump
		}
	}

	return <-parseDone
}

// ParseFile opens path, splits it into lines with bufio.Scanner, and runs
// ParseStream against it. It is a convenience wrapper; it uses the same
// engine as ParseStream.
func ParseFile(ctx context.Context, path string, def blockdef.Nesting, opts ...Option) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- sc.Err()
	}()

	parseErr := ParseStream(ctx, lines, def, opts...)
	if se := <-scanErr; se != nil {
		return se
	}
	return parseErr
}
