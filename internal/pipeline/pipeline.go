// Package pipeline connects loaded configuration to a driver run and writes
// the run's outcome the way every command reports it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/driver"
	"github.com/LegacyCodeHQ/ppfront/engine"
	"github.com/LegacyCodeHQ/ppfront/engine/external"
	"github.com/LegacyCodeHQ/ppfront/engine/splice"
	"github.com/LegacyCodeHQ/ppfront/include"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
	"github.com/spf13/cobra"
)

// NewEngine returns the engine cfg selects.
func NewEngine(cfg config.Config) (engine.Engine, error) {
	switch cfg.Engine {
	case config.EngineSplice, "":
		return splice.New(), nil
	case config.EngineExec:
		if cfg.MaskIncludes {
			// the external process resolves includes itself
			debuglog.Warn("--mask-includes has no effect with the exec engine", nil)
		}
		return external.New(cfg.EngineCommand, cfg.IncludePaths), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// Options builds driver options for root. observer may be nil.
func Options(cfg config.Config, root string, observer include.Observer) (driver.Options, error) {
	eng, err := NewEngine(cfg)
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{
		RootPath:     root,
		IncludePaths: cfg.IncludePaths,
		Defines:      cfg.Defines,
		Ignore:       cfg.Ignore,
		Engine:       eng,
		MaskIncludes: cfg.MaskIncludes,
		Observer:     observer,
	}, nil
}

// Run preprocesses root with cfg.
func Run(ctx context.Context, cfg config.Config, root string, observer include.Observer) (*driver.Result, error) {
	opts, err := Options(cfg, root, observer)
	if err != nil {
		return nil, err
	}
	return driver.Run(ctx, opts)
}

// Write reports a run: the output goes to out and diagnostics to diag. When
// the engine failed, its output and error text go to out as they are.
// The run error is returned unchanged.
func Write(out, diag io.Writer, res *driver.Result, runErr error) error {
	if runErr != nil {
		var engineErr *driver.EngineError
		if errors.As(runErr, &engineErr) {
			if _, err := out.Write(engineErr.Output); err != nil {
				return err
			}
			if _, err := out.Write(engineErr.Errors); err != nil {
				return err
			}
		}
		return runErr
	}
	if _, err := out.Write(res.Output); err != nil {
		return err
	}
	if len(res.Diagnostics) > 0 {
		if _, err := diag.Write(res.Diagnostics); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads cmd's configuration and points the debug log at the
// command's stderr.
func LoadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	debuglog.SetOutput(cmd.ErrOrStderr())
	debuglog.SetVerbose(cfg.Verbose)
	if cfg.File != "" {
		debuglog.Debug("loaded config", map[string]any{"file": cfg.File})
	}
	return cfg, nil
}
