// Package splice is the built-in directive engine. It splices #include
// directives through the request's Includer and copies every other line
// through unchanged; macros and conditionals are left for a later pass.
// Includes in every branch of a conditional are spliced.
package splice

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/LegacyCodeHQ/ppfront/engine"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
)

// MaxIncludeDepth is the default nesting limit.
const MaxIncludeDepth = 64

// Engine splices includes. The zero value is ready to use.
type Engine struct {
	// MaxDepth bounds include nesting; zero means MaxIncludeDepth.
	MaxDepth int
	// OmitDefines drops the #define prologue built from the request's defines.
	OmitDefines bool
}

// New returns an Engine with default settings.
func New() *Engine {
	return &Engine{}
}

// Preprocess implements engine.Engine.
func (e *Engine) Preprocess(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if req.Includer == nil {
		return nil, fmt.Errorf("%w: no includer", engine.ErrNoResult)
	}

	maxDepth := e.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxIncludeDepth
	}
	s := &splicer{
		ctx:      ctx,
		includer: req.Includer,
		maxDepth: maxDepth,
		active:   map[string]bool{req.Name: true},
		file:     req.Name,
	}

	var out bytes.Buffer
	if !e.OmitDefines {
		writeDefines(&out, req.Defines)
	}

	err := s.splice(&out, req.Source, 0)
	if err == nil {
		return &engine.Result{Output: out.Bytes()}, nil
	}

	var se *spliceError
	if errors.As(err, &se) {
		return nil, &engine.Failure{Errors: []byte(se.Error() + "\n")}
	}
	return nil, err
}

func writeDefines(w *bytes.Buffer, defines []engine.Define) {
	for _, d := range defines {
		if d.Value == "" {
			fmt.Fprintf(w, "#define %s\n", d.Name)
			continue
		}
		fmt.Fprintf(w, "#define %s %s\n", d.Name, d.Value)
	}
}

type splicer struct {
	ctx      context.Context
	includer engine.Includer
	maxDepth int
	active   map[string]bool
	// file is the path diagnostics are attributed to.
	file string
}

type spliceError struct {
	file   string
	line   int
	column int
	msg    string
}

func (e *spliceError) Error() string {
	return fmt.Sprintf("%s:%d:%d: error: %s", e.file, e.line, e.column, e.msg)
}

func (s *splicer) errorf(d directive, format string, args ...any) error {
	return &spliceError{file: s.file, line: d.line, column: d.column, msg: fmt.Sprintf(format, args...)}
}

func (s *splicer) splice(w *bytes.Buffer, src []byte, depth int) error {
	includes, err := parseIncludes(s.ctx, src)
	if err != nil {
		return err
	}

	last := 0
	for _, d := range includes {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		w.Write(src[last:d.start])
		last = d.end
		if err := s.include(w, d, depth); err != nil {
			return err
		}
	}
	w.Write(src[last:])
	return nil
}

func (s *splicer) include(w *bytes.Buffer, d directive, depth int) error {
	if depth >= s.maxDepth {
		return s.errorf(d, "#include nested too deeply (limit %d)", s.maxDepth)
	}

	h, err := s.includer.Open(d.kind, d.path)
	if err != nil {
		return s.errorf(d, "failed to open source file: '%s': %v", d.path, err)
	}
	defer func() {
		if err := s.includer.Close(h); err != nil {
			debuglog.Warn("include close failed", map[string]any{"path": h.Path(), "error": err.Error()})
		}
	}()

	if s.active[h.Path()] {
		return s.errorf(d, "include cycle: '%s' is already open", h.Path())
	}
	s.active[h.Path()] = true
	defer delete(s.active, h.Path())

	parent := s.file
	s.file = h.Path()
	defer func() { s.file = parent }()

	start := w.Len()
	if err := s.splice(w, h.Bytes(), depth+1); err != nil {
		return err
	}
	if w.Len() > start && w.Bytes()[w.Len()-1] != '\n' {
		w.WriteByte('\n')
	}
	return nil
}
