// Package debuglog is the project-wide diagnostic logger. Messages carry a
// free-form metadata map and are rendered to stderr by charmbracelet/log.
package debuglog

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

const appName = "ppfront"

var (
	mu     sync.Mutex
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: appName,
		Level:  log.WarnLevel,
	})
	return l
}

// SetOutput redirects log output. Level is preserved.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level := logger.GetLevel()
	logger = newLogger(w)
	logger.SetLevel(level)
}

// SetVerbose switches between debug and warning level output.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		logger.SetLevel(log.DebugLevel)
		return
	}
	logger.SetLevel(log.WarnLevel)
}

func Info(message string, metadata map[string]any) {
	current().Info(message, keyvals(metadata)...)
}

func Debug(message string, metadata map[string]any) {
	current().Debug(message, keyvals(metadata)...)
}

func Warn(message string, metadata map[string]any) {
	current().Warn(message, keyvals(metadata)...)
}

func Error(message string, metadata map[string]any) {
	current().Error(message, keyvals(metadata)...)
}

func current() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// keyvals flattens metadata in key order so output is stable.
func keyvals(metadata map[string]any) []any {
	if len(metadata) == 0 {
		return nil
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, metadata[k])
	}
	return out
}
