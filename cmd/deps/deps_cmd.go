package deps

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/LegacyCodeHQ/ppfront/cmd/deps/formatters"
	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/depgraph"
	"github.com/LegacyCodeHQ/ppfront/driver"
	"github.com/LegacyCodeHQ/ppfront/internal/pipeline"
	"github.com/spf13/cobra"
)

type depsOptions struct {
	format string
	label  string
	to     []string
}

// NewCommand returns a new deps command instance.
func NewCommand() *cobra.Command {
	opts := &depsOptions{format: formatters.OutputFormatList.String()}

	cmd := &cobra.Command{
		Use:   "deps [flags] <source>",
		Short: "Print the include graph of a source file",
		Long: `Resolve every include reachable from a source file with the built-in splice
engine and print the resulting graph. Include cycles are reported.

Examples:
  ppfront deps shader.hlsl                         # indented tree
  ppfront deps -f dot shader.hlsl | dot -Tsvg      # Graphviz
  ppfront deps -f mermaid --to common.h a.c        # only paths to common.h`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0], opts)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "Output format: list, dot, json, mermaid")
	cmd.Flags().StringVar(&opts.label, "label", "", "Graph title")
	cmd.Flags().StringArrayVar(&opts.to, "to", nil, "Only show include paths from the source to this file (repeatable)")

	return cmd
}

func runDeps(cmd *cobra.Command, source string, opts *depsOptions) error {
	formatter, err := formatters.NewFormatter(opts.format)
	if err != nil {
		return err
	}
	cfg, err := pipeline.LoadConfig(cmd)
	if err != nil {
		return err
	}
	// the graph comes from resolver callbacks, which only the splice engine makes
	cfg.Engine = config.EngineSplice

	root, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}
	graph := depgraph.NewIncludeGraph(root)

	_, runErr := pipeline.Run(cmd.Context(), cfg, root, graph)
	var engineErr *driver.EngineError
	if runErr != nil && !errors.As(runErr, &engineErr) {
		return runErr
	}

	if len(opts.to) > 0 {
		graph = graph.Subgraph(append([]string{root}, resolveTargets(graph, opts.to)...))
	}

	output, err := formatter.Format(graph, formatters.RenderOptions{Label: opts.label})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)

	if engineErr != nil {
		cmd.PrintErr(string(engineErr.Errors))
		return runErr
	}
	return nil
}

// resolveTargets maps each --to value to graph files. A value matches a
// file by absolute path or by trailing path elements.
func resolveTargets(graph *depgraph.IncludeGraph, targets []string) []string {
	var matched []string
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		want := filepath.ToSlash(filepath.Clean(target))
		for _, file := range graph.Files() {
			slashed := filepath.ToSlash(file)
			if (err == nil && file == abs) || slashed == want || hasPathSuffix(slashed, want) {
				matched = append(matched, file)
			}
		}
	}
	return matched
}

func hasPathSuffix(path, suffix string) bool {
	return len(path) > len(suffix) && path[len(path)-len(suffix)-1] == '/' && path[len(path)-len(suffix):] == suffix
}
