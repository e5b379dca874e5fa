package watch

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/internal/pipeline"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	output string
}

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [flags] <source>",
		Short: "Preprocess a source file again whenever it or anything it includes changes",
		Long: `Preprocess a source file, then watch it and every file it includes. Each
change triggers a new run once edits settle. Results go to stdout, or
replace the file named by -o. Press Ctrl+C to stop.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write each result to this file instead of stdout")

	return cmd
}

func runWatch(cmd *cobra.Command, source string, opts *watchOptions) error {
	cfg, err := pipeline.LoadConfig(cmd)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}
	output := opts.output
	if output != "" {
		if output, err = filepath.Abs(output); err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := &rebuilder{
		cfg:    cfg,
		root:   root,
		output: output,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
	if err := r.rebuild(ctx); err != nil && !isEngineError(err) {
		return fmt.Errorf("initial run failed: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (%d files)\n", root, len(r.files))
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndRebuild(ctx, r)
}
