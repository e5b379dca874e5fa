package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/depgraph"
	"github.com/LegacyCodeHQ/ppfront/driver"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
	"github.com/LegacyCodeHQ/ppfront/internal/pipeline"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

// rebuilder runs the pipeline for one root and remembers which files the
// last run read.
type rebuilder struct {
	cfg    config.Config
	root   string
	output string
	stdout io.Writer
	stderr io.Writer

	files map[string]bool
}

func (r *rebuilder) rebuild(ctx context.Context) error {
	graph := depgraph.NewIncludeGraph(r.root)
	res, err := pipeline.Run(ctx, r.cfg, r.root, graph)

	r.files = make(map[string]bool)
	for _, file := range graph.Files() {
		r.files[file] = true
	}

	if err != nil {
		var engineErr *driver.EngineError
		if errors.As(err, &engineErr) {
			r.stderr.Write(engineErr.Output)
			r.stderr.Write(engineErr.Errors)
		}
		debuglog.Error("rebuild failed", map[string]any{"root": r.root, "error": err.Error()})
		return err
	}

	if len(res.Diagnostics) > 0 {
		r.stderr.Write(res.Diagnostics)
	}
	if r.output == "" {
		_, err = r.stdout.Write(res.Output)
		return err
	}
	return writeFileAtomic(r.output, res.Output)
}

// dirs returns the directories holding the files of the last run.
func (r *rebuilder) dirs() []string {
	seen := make(map[string]bool)
	dirs := []string{filepath.Dir(r.root)}
	seen[dirs[0]] = true
	for file := range r.files {
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (r *rebuilder) isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if r.output != "" && (name == r.output || name == tempPath(r.output)) {
		return false
	}
	if r.files[name] {
		return true
	}
	// a file that failed to resolve may have just been created
	return event.Has(fsnotify.Create)
}

func watchAndRebuild(ctx context.Context, r *rebuilder) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	addDirs := func() {
		for _, dir := range r.dirs() {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				debuglog.Warn("watch failed", map[string]any{"dir": dir, "error": err.Error()})
				continue
			}
			watched[dir] = true
		}
	}
	addDirs()

	rebuild := make(chan struct{}, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.isRelevantChange(event) {
				continue
			}
			debuglog.Debug("change", map[string]any{"path": event.Name, "op": event.Op.String()})

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			r.report(r.rebuild(ctx))
			addDirs()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(r.stderr, "watcher error: %v\n", err)
		}
	}
}

// report writes a failed rebuild to stderr. Engine failures have already
// printed the engine's own text.
func (r *rebuilder) report(err error) {
	if err == nil || isEngineError(err) {
		return
	}
	fmt.Fprintf(r.stderr, "rebuild failed: %v\n", err)
}

func isEngineError(err error) bool {
	var engineErr *driver.EngineError
	return errors.As(err, &engineErr)
}

func tempPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
}

// writeFileAtomic replaces path so readers never see a partial result.
func writeFileAtomic(path string, data []byte) error {
	tmp := tempPath(path)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
