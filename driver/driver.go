// Package driver runs one preprocessing pass: load the root file, strip
// block comments, mask ignored directives, hand the text to a directive
// engine with an include resolver, and unmask what comes back.
package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/LegacyCodeHQ/ppfront/engine"
	"github.com/LegacyCodeHQ/ppfront/include"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
	"github.com/LegacyCodeHQ/ppfront/mask"
	"github.com/LegacyCodeHQ/ppfront/textbuf"
)

var (
	ErrRootFileNotFound     = errors.New("root file not found")
	ErrRootFileAccessDenied = errors.New("root file access denied")
	ErrEngineFailure        = errors.New("directive engine failed")
	ErrEngineNoResult       = errors.New("directive engine produced no result")
	ErrInvalidOptions       = errors.New("invalid options")
)

// Options configures a run.
type Options struct {
	RootPath     string
	IncludePaths []string
	Defines      map[string]string
	// Ignore lists directive keywords to hide from the engine, with or
	// without the leading marker.
	Ignore []string
	Engine engine.Engine
	// MaskIncludes applies stripping and masking to included files too.
	MaskIncludes bool
	// Observer, when set, is told about every include the engine opens.
	Observer include.Observer
}

// Result is a successful run's output.
type Result struct {
	RootPath    string
	Output      []byte
	Diagnostics []byte
	// Masked is the number of directives hidden in the root file.
	Masked int
}

// EngineError carries the engine's text from a failed run. Output and
// Errors are exactly what the engine produced.
type EngineError struct {
	kind   error
	Output []byte
	Errors []byte
	cause  error
}

func (e *EngineError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.cause)
}

func (e *EngineError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Run preprocesses opts.RootPath.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: no engine", ErrInvalidOptions)
	}
	root, err := filepath.Abs(opts.RootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootFileNotFound, opts.RootPath, err)
	}
	keywords, err := mask.Keywords(opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	stack := include.NewStack(root)

	buf, err := textbuf.Load(root)
	if err != nil {
		switch {
		case errors.Is(err, textbuf.ErrNotFound):
			return nil, fmt.Errorf("%w: %w", ErrRootFileNotFound, err)
		case errors.Is(err, textbuf.ErrAccessDenied):
			return nil, fmt.Errorf("%w: %w", ErrRootFileAccessDenied, err)
		default:
			return nil, err
		}
	}
	defer buf.Release()

	source, masked := Prepare(buf.Bytes(), keywords)
	debuglog.Debug("prepared root", map[string]any{"path": root, "bytes": len(source), "masked": masked})

	var resolverOpts []include.Option
	if opts.MaskIncludes {
		resolverOpts = append(resolverOpts, include.WithTransform(func(content []byte) []byte {
			out, _ := Prepare(content, keywords)
			return out
		}))
	}
	if opts.Observer != nil {
		resolverOpts = append(resolverOpts, include.WithObserver(opts.Observer))
	}
	resolver := include.NewResolver(stack, opts.IncludePaths, resolverOpts...)

	res, err := opts.Engine.Preprocess(ctx, engine.Request{
		Source:   source,
		Name:     root,
		Defines:  engine.SortedDefines(opts.Defines),
		Includer: resolver,
	})
	if stack.Len() != 1 {
		debuglog.Warn("include stack not unwound", map[string]any{"depth": stack.Len(), "top": stack.Top()})
	}
	if err != nil {
		return nil, engineError(err)
	}
	if res == nil {
		return nil, &EngineError{kind: ErrEngineNoResult}
	}

	return &Result{
		RootPath:    root,
		Output:      mask.Unmask(res.Output),
		Diagnostics: res.Diagnostics,
		Masked:      masked,
	}, nil
}

// Prepare strips block comments from content and masks keywords. content
// may be modified in place.
func Prepare(content []byte, keywords []string) ([]byte, int) {
	stripped := textbuf.StripBlockComments(content)
	if len(keywords) == 0 {
		return stripped, 0
	}
	return mask.MaskCount(stripped, keywords)
}

func engineError(err error) error {
	var failure *engine.Failure
	if errors.As(err, &failure) {
		if len(failure.Output) == 0 && len(failure.Errors) == 0 {
			return &EngineError{kind: ErrEngineNoResult, cause: err}
		}
		return &EngineError{kind: ErrEngineFailure, Output: failure.Output, Errors: failure.Errors, cause: err}
	}
	if errors.Is(err, engine.ErrNoResult) {
		return &EngineError{kind: ErrEngineNoResult, cause: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &EngineError{kind: ErrEngineFailure, cause: err}
}
