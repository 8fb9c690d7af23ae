// Command lineblock runs a YAML block definition against an input file,
// printing one structured log line per committed block when --explain is
// set, and can watch the input for changes and re-run automatically.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arnegrau/lineblock/blockdef"
	"github.com/arnegrau/lineblock/blockdef/blockyaml"
	"github.com/arnegrau/lineblock/driver"
	"github.com/arnegrau/lineblock/internal/config"
	"github.com/arnegrau/lineblock/internal/watch"
)

var (
	defPath    string
	inPath     string
	configPath string
	verbose    bool
	explain    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lineblock",
		Short: "Recognize nested line blocks in a text file against a YAML definition",
	}
	root.PersistentFlags().StringVar(&defPath, "def", "", "path to the YAML block definition (required)")
	root.PersistentFlags().StringVar(&inPath, "in", "", "path to the input text file (required)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file of run defaults (optional)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")
	root.PersistentFlags().BoolVar(&explain, "explain", false, "log block attempt and commit trace events")

	root.AddCommand(newRunCmd(), newWatchCmd())
	return root
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func requireFlags() error {
	if defPath == "" || inPath == "" {
		return fmt.Errorf("both --def and --in are required")
	}
	return nil
}

func loadNesting() (blockdef.Nesting, error) {
	data, err := os.ReadFile(defPath)
	if err != nil {
		return blockdef.Nothing, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return blockdef.Nothing, err
	}
	return blockyaml.LoadNestingWithDefaults(data, blockyaml.Defaults{
		Priority:   cfg.DefaultPriority,
		UsageLimit: cfg.DefaultUsageLimit,
		Strict:     cfg.DefaultStrict,
	})
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Parse --in once against --def and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(); err != nil {
				return err
			}
			log := newLogger()
			nesting, err := loadNesting()
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), log, nesting, inPath)
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Parse --in, then re-parse every time it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(); err != nil {
				return err
			}
			log := newLogger()
			return watch.File(cmd.Context(), inPath, log, func(ctx context.Context, path string) error {
				nesting, err := loadNesting()
				if err != nil {
					return err
				}
				return runOnce(ctx, log, nesting, path)
			})
		},
	}
}

func runOnce(ctx context.Context, log zerolog.Logger, nesting blockdef.Nesting, path string) error {
	opts := []driver.Option{}
	if explain {
		opts = append(opts, traceOption(log))
	}
	return driver.ParseFile(ctx, path, nesting, opts...)
}
