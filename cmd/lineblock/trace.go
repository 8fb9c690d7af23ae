package main

import (
	"github.com/rs/zerolog"

	"github.com/arnegrau/lineblock/blockparser"
	"github.com/arnegrau/lineblock/driver"
)

// traceOption wires blockparser's diagnostics hook to structured log
// events, for --explain: debug lines at each attempt's start and end, one
// info line per commit.
func traceOption(log zerolog.Logger) driver.Option {
	return driver.WithTrace(&blockparser.Trace{
		OnAttemptStart: func(name string, startGLN int) {
			log.Debug().Str("block", name).Int("gLN", startGLN).Msg("attempt start")
		},
		OnAttemptEnd: func(name string, startGLN int, success bool) {
			log.Debug().Str("block", name).Int("gLN", startGLN).Bool("success", success).Msg("attempt end")
		},
		OnCommit: func(name string, occurrenceIndex, startGLN, endGLN int) {
			log.Info().Str("block", name).Int("occurrence", occurrenceIndex).
				Int("startGLN", startGLN).Int("endGLN", endGLN).Msg("commit")
		},
	})
}
