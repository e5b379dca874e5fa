package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/LegacyCodeHQ/ppfront/cmd/batch"
	"github.com/LegacyCodeHQ/ppfront/cmd/deps"
	"github.com/LegacyCodeHQ/ppfront/cmd/watch"
	"github.com/LegacyCodeHQ/ppfront/config"
	"github.com/LegacyCodeHQ/ppfront/driver"
	"github.com/LegacyCodeHQ/ppfront/internal/pipeline"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// NewRootCommand returns the ppfront command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	var outputPath string

	rootCmd := &cobra.Command{
		Use:   "ppfront [flags] <source>",
		Short: "Resolve includes and preprocess a source file, keeping selected directives intact",
		Long: `ppfront runs a source file through a directive engine. It strips block
comments, hides the directives named with --ignore so the engine copies them
through untouched, resolves #include against the including file's directory
and the -I search path, and prints the result.

Examples:
  ppfront shader.hlsl                           # splice includes
  ppfront -I include -D DEBUG=1 shader.hlsl     # add a search path and a define
  ppfront --ignore pragma --ignore line a.c     # keep #pragma and #line lines
  ppfront --engine exec a.c                     # run the system cpp instead`,
		Version:      version,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipeline.LoadConfig(cmd)
			if err != nil {
				return err
			}

			res, runErr := pipeline.Run(cmd.Context(), cfg, args[0], nil)

			if outputPath == "" || runErr != nil {
				return pipeline.Write(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, runErr)
			}
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			werr := pipeline.Write(f, cmd.ErrOrStderr(), res, runErr)
			if cerr := f.Close(); werr == nil && cerr != nil {
				return fmt.Errorf("failed to write output file: %w", cerr)
			}
			return werr
		},
	}

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result to a file instead of stdout")

	rootCmd.AddCommand(deps.NewCommand())
	rootCmd.AddCommand(watch.NewCommand())
	rootCmd.AddCommand(batch.NewCommand())

	// Initialize annotations for version template
	rootCmd.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	return rootCmd
}

// Execute runs the root command and exits with the status matching the
// outcome. This is called by main.main().
func Execute() {
	err := NewRootCommand().ExecuteContext(context.Background())
	os.Exit(driver.ExitCode(err))
}
