// Package external drives an out-of-process directive engine, such as a
// C preprocessor, over the driver's prepared text.
//
// The prepared text goes to the process on stdin. Defines become -D flags
// and include directories -I flags, appended after Command. The process
// resolves includes on its own and never calls back into the Includer.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/LegacyCodeHQ/ppfront/engine"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
)

// DefaultCommand runs the system C preprocessor, keeping comments so masked
// directives survive, and reading the source from stdin.
var DefaultCommand = []string{"cpp", "-E", "-P", "-C", "-"}

// Engine runs Command once per request.
type Engine struct {
	Command      []string
	IncludePaths []string
	// Timeout bounds one invocation; zero means no limit.
	Timeout time.Duration
}

// New returns an engine running command, or DefaultCommand when empty.
// Relative include paths are made absolute against the working directory,
// since the process runs in the root file's directory.
func New(command []string, includePaths []string) *Engine {
	if len(command) == 0 {
		command = DefaultCommand
	}
	paths := make([]string, 0, len(includePaths))
	for _, p := range includePaths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		paths = append(paths, p)
	}
	return &Engine{
		Command:      append([]string(nil), command...),
		IncludePaths: paths,
	}
}

// Args returns the argument list (without the program) for req.
func (e *Engine) Args(req engine.Request) []string {
	args := append([]string(nil), e.Command[1:]...)
	for _, d := range req.Defines {
		if d.Value == "" {
			args = append(args, "-D"+d.Name)
			continue
		}
		args = append(args, "-D"+d.Name+"="+d.Value)
	}
	if req.Name != "" {
		args = append(args, "-I"+filepath.Dir(req.Name))
	}
	for _, dir := range e.IncludePaths {
		args = append(args, "-I"+dir)
	}
	return args
}

// Preprocess implements engine.Engine.
func (e *Engine) Preprocess(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if len(e.Command) == 0 {
		return nil, fmt.Errorf("%w: no command configured", engine.ErrNoResult)
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := e.Args(req)
	debuglog.Debug("run external engine", map[string]any{"command": e.Command[0], "args": args})

	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	if req.Name != "" {
		cmd.Dir = filepath.Dir(req.Name)
	}
	cmd.Stdin = bytes.NewReader(req.Source)
	// children left behind by a killed shell must not hold the pipes open
	cmd.WaitDelay = time.Second

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s", engine.ErrNoResult, e.Command[0], e.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && (stdout.Len() > 0 || stderr.Len() > 0) {
			return nil, &engine.Failure{Output: stdout.Bytes(), Errors: stderr.Bytes()}
		}
		return nil, fmt.Errorf("%w: %s: %w", engine.ErrNoResult, e.Command[0], err)
	}

	return &engine.Result{Output: stdout.Bytes(), Diagnostics: stderr.Bytes()}, nil
}
