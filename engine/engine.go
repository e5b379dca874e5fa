// Package engine defines the boundary to a directive engine: the component
// that expands macros and evaluates conditionals on text prepared by the
// driver, calling back into an Includer for every #include it meets.
package engine

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/ppfront/include"
)

// ErrNoResult reports that an engine failed without producing any text.
var ErrNoResult = errors.New("directive engine produced no result")

// Define is one macro handed to the engine. Value may be empty.
type Define struct {
	Name  string
	Value string
}

// SortedDefines converts a define table into a list ordered by name.
func SortedDefines(table map[string]string) []Define {
	defines := make([]Define, 0, len(table))
	for name, value := range table {
		defines = append(defines, Define{Name: name, Value: value})
	}
	sort.Slice(defines, func(i, j int) bool {
		return defines[i].Name < defines[j].Name
	})
	return defines
}

// Includer is the include capability an engine calls while it runs. Every
// successful Open must be matched by exactly one Close, in reverse order.
type Includer interface {
	Open(kind include.Kind, name string) (*include.Handle, error)
	Close(h *include.Handle) error
}

// Request is the input of one engine invocation.
type Request struct {
	// Source is the prepared root text.
	Source []byte
	// Name is the root file's absolute path, used in diagnostics.
	Name     string
	Defines  []Define
	Includer Includer
}

// Result is the output of a successful invocation.
type Result struct {
	Output []byte
	// Diagnostics holds warnings the engine reported alongside its output.
	Diagnostics []byte
}

// Failure is returned by engines that fail with text to show for it.
type Failure struct {
	// Output is whatever result text the engine produced before failing.
	Output []byte
	// Errors is the engine's own error text.
	Errors []byte
}

func (f *Failure) Error() string {
	msg := strings.TrimSpace(string(f.Errors))
	if msg == "" {
		return "preprocessing failed"
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return "preprocessing failed: " + msg
}

// Engine runs the directive pass over a request.
type Engine interface {
	Preprocess(ctx context.Context, req Request) (*Result, error)
}
