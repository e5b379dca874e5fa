// Package include resolves #include requests for a directive engine and
// tracks which file is current while includes nest.
package include

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
	"github.com/LegacyCodeHQ/ppfront/textbuf"
)

// Kind distinguishes between local ("file.h") and system (<file.h>) includes.
type Kind int

const (
	Local Kind = iota
	System
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case System:
		return "system"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	// ErrIncludeNotFound reports that no readable candidate exists for an include.
	ErrIncludeNotFound = errors.New("include not found")
	// ErrUnsupportedIncludeKind reports an include kind other than Local or System.
	ErrUnsupportedIncludeKind = errors.New("unsupported include kind")
	// ErrUnbalancedClose reports a Close with no matching Open left.
	ErrUnbalancedClose = errors.New("include closed without matching open")
)

// AccessChecker returns nil when path can be opened for reading.
type AccessChecker func(path string) error

// Loader reads a resolved include into a buffer.
type Loader func(path string) (*textbuf.Buffer, error)

// Transform rewrites included content before it is handed to the engine.
// It may modify content in place.
type Transform func(content []byte) []byte

// Observer is told about every successful include.
type Observer interface {
	Included(from, to string, kind Kind)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAccessChecker replaces the read-access check.
func WithAccessChecker(fn AccessChecker) Option {
	return func(r *Resolver) { r.access = fn }
}

// WithLoader replaces the file loader.
func WithLoader(fn Loader) Option {
	return func(r *Resolver) { r.load = fn }
}

// WithTransform applies fn to the content of every included file.
func WithTransform(fn Transform) Option {
	return func(r *Resolver) { r.transform = fn }
}

// WithObserver reports successful includes to o.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// Resolver implements the open/close include capability a directive engine
// calls back into. It is bound to one run's Stack and is not safe for
// concurrent use.
type Resolver struct {
	stack        *Stack
	includePaths []string
	access       AccessChecker
	load         Loader
	transform    Transform
	observer     Observer
}

// NewResolver returns a resolver that searches includePaths, in order, for
// system includes. Relative include paths are made absolute against the
// working directory.
func NewResolver(stack *Stack, includePaths []string, opts ...Option) *Resolver {
	paths := make([]string, 0, len(includePaths))
	for _, dir := range includePaths {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		paths = append(paths, dir)
	}

	r := &Resolver{
		stack:        stack,
		includePaths: paths,
		access:       readable,
		load:         textbuf.Load,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stack returns the context stack the resolver pushes to.
func (r *Resolver) Stack() *Stack {
	return r.stack
}

// IncludePaths returns the system include search path.
func (r *Resolver) IncludePaths() []string {
	return append([]string(nil), r.includePaths...)
}

// Open resolves name, loads it and makes it the current file. The returned
// handle owns the content until it is closed. A failed Open leaves the
// stack untouched.
func (r *Resolver) Open(kind Kind, name string) (*Handle, error) {
	path, err := r.resolve(kind, name)
	if err != nil {
		debuglog.Debug("include open failed", map[string]any{"kind": kind.String(), "name": name, "error": err.Error()})
		return nil, err
	}

	buf, err := r.load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrIncludeNotFound, name, err)
	}
	if r.transform != nil {
		buf.Replace(r.transform(buf.Bytes()))
	}

	parent := r.stack.Top()
	r.stack.Push(path)
	debuglog.Debug("push include", map[string]any{"path": path, "depth": r.stack.Len()})
	if r.observer != nil {
		r.observer.Included(parent, path, kind)
	}

	return &Handle{resolver: r, path: path, buf: buf}, nil
}

// Close releases the handle's content and pops the stack. Closing a handle
// twice is a no-op. Handles are expected to be closed in reverse order of
// opening; this is not checked.
func (r *Resolver) Close(h *Handle) error {
	if h == nil || h.closed {
		return nil
	}
	path, ok := r.stack.Pop()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnbalancedClose, h.path)
	}
	h.closed = true
	h.buf.Release()
	debuglog.Debug("pop include", map[string]any{"path": path, "depth": r.stack.Len()})
	return nil
}

func (r *Resolver) resolve(kind Kind, name string) (string, error) {
	switch kind {
	case Local:
		candidate := joinInclude(filepath.Dir(r.stack.Top()), name)
		debuglog.Debug("include open local", map[string]any{"candidate": candidate})
		if err := r.access(candidate); err != nil {
			return "", fmt.Errorf("%w: %q (tried %s): %w", ErrIncludeNotFound, name, candidate, err)
		}
		return candidate, nil

	case System:
		for _, dir := range r.includePaths {
			candidate := joinInclude(dir, name)
			debuglog.Debug("include open system", map[string]any{"candidate": candidate})
			if err := r.access(candidate); err == nil {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: <%s> (searched %d include paths)", ErrIncludeNotFound, name, len(r.includePaths))

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedIncludeKind, kind)
	}
}

func joinInclude(dir, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}
