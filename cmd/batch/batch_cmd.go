package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/driver"
	"github.com/LegacyCodeHQ/ppfront/internal/debuglog"
	"github.com/LegacyCodeHQ/ppfront/internal/pipeline"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type batchOptions struct {
	outDir string
	ext    string
	jobs   int
}

// job is one source file and where its result goes.
type job struct {
	source string
	target string
}

// NewCommand returns a new batch command instance.
func NewCommand() *cobra.Command {
	opts := &batchOptions{ext: ".pp", jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "batch [flags] <glob>...",
		Short: "Preprocess every file matching one or more globs",
		Long: `Preprocess every file matching the given globs. Patterns support ** to
match any number of directories. Each result is written next to its source
with --ext appended, or under --out-dir keeping the path below the glob's
fixed prefix. Files are processed independently and in parallel.

Examples:
  ppfront batch 'shaders/**/*.hlsl'
  ppfront batch --out-dir build/pp --ext .i 'src/**/*.c' 'src/**/*.h'`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, opts)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "Directory for results (default: next to each source)")
	cmd.Flags().StringVar(&opts.ext, "ext", opts.ext, "Suffix appended to each result file name")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "Number of files processed at once")

	return cmd
}

func runBatch(cmd *cobra.Command, patterns []string, opts *batchOptions) error {
	if opts.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1")
	}
	if opts.ext == "" && opts.outDir == "" {
		return fmt.Errorf("--ext cannot be empty without --out-dir: results would overwrite their sources")
	}
	cfg, err := pipeline.LoadConfig(cmd)
	if err != nil {
		return err
	}

	jobs, err := planJobs(patterns, opts.outDir, opts.ext)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no files match %s", strings.Join(patterns, ", "))
	}

	errs := make([]error, len(jobs))
	reports := make([][]byte, len(jobs))
	var failed atomic.Int64
	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(opts.jobs)
	for i, j := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := runJob(ctx, cfg, j)
			reports[i] = report
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", j.source, err)
				failed.Add(1)
				return nil
			}
			debuglog.Info("wrote", map[string]any{"source": j.source, "target": j.target})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, j := range jobs {
		writeReport(cmd.ErrOrStderr(), j.source, reports[i])
		if errs[i] != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", errs[i])
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), j.target)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d files preprocessed, %d failed\n", len(jobs)-int(failed.Load()), failed.Load())

	return errors.Join(errs...)
}

// runJob preprocesses one file. The returned report is the engine's text
// for the user: its diagnostics, or its output and errors on failure.
func runJob(ctx context.Context, cfg config.Config, j job) ([]byte, error) {
	res, err := pipeline.Run(ctx, cfg, j.source, nil)
	if err != nil {
		var engineErr *driver.EngineError
		if errors.As(err, &engineErr) {
			return append(slices.Clone(engineErr.Output), engineErr.Errors...), err
		}
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(j.target), 0o755); err != nil {
		return res.Diagnostics, err
	}
	return res.Diagnostics, os.WriteFile(j.target, res.Output, 0o644)
}

// writeReport copies report to w with every line prefixed by source, so
// reports of files run in parallel stay attributable.
func writeReport(w io.Writer, source string, report []byte) {
	if len(report) == 0 {
		return
	}
	for _, line := range strings.SplitAfter(string(report), "\n") {
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		fmt.Fprintf(w, "%s: %s", source, line)
	}
}

// planJobs expands patterns into sorted, de-duplicated jobs. Results of
// earlier runs (files already ending in ext) are skipped.
func planJobs(patterns []string, outDir, ext string) ([]job, error) {
	seen := make(map[string]bool)
	var jobs []job
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base = filepath.FromSlash(base)

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			source, err := filepath.Abs(match)
			if err != nil {
				return nil, err
			}
			if seen[source] || (ext != "" && strings.HasSuffix(source, ext)) {
				continue
			}
			seen[source] = true

			target := source + ext
			if outDir != "" {
				rel, err := filepath.Rel(base, match)
				if err != nil {
					rel = filepath.Base(match)
				}
				target, err = filepath.Abs(filepath.Join(outDir, rel+ext))
				if err != nil {
					return nil, err
				}
			}
			jobs = append(jobs, job{source: source, target: target})
		}
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].source < jobs[b].source })
	return jobs, nil
}
