// Package watch re-runs a parse whenever its input file changes, a
// convenience layered on top of the engine (which otherwise only knows how
// to consume a line stream once).
package watch

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// RunFunc performs one full parse of path.
type RunFunc func(ctx context.Context, path string) error

// File watches path's directory for writes to path and invokes run once up
// front and again after every write, until ctx is done.
func File(ctx context.Context, path string, log zerolog.Logger, run RunFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	if err := run(ctx, path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("initial parse failed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug().Str("path", path).Msg("input changed, re-parsing")
			if err := run(ctx, path); err != nil {
				log.Error().Err(err).Str("path", path).Msg("parse failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}
