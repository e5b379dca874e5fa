// Package formatters renders include graphs for the deps command.
package formatters

import (
	"fmt"

	"github.com/LegacyCodeHQ/ppfront/depgraph"
)

// OutputFormat names a rendering.
type OutputFormat string

const (
	OutputFormatList    OutputFormat = "list"
	OutputFormatDOT     OutputFormat = "dot"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatMermaid OutputFormat = "mermaid"
)

func (f OutputFormat) String() string {
	return string(f)
}

// RenderOptions holds optional rendering parameters.
type RenderOptions struct {
	// Label is an optional graph title.
	Label string
}

// Formatter renders an include graph.
type Formatter interface {
	Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error)
}

// NewFormatter returns the formatter for format.
func NewFormatter(format string) (Formatter, error) {
	switch OutputFormat(format) {
	case OutputFormatList:
		return &ListFormatter{}, nil
	case OutputFormatDOT:
		return &DOTFormatter{}, nil
	case OutputFormatJSON:
		return &JSONFormatter{}, nil
	case OutputFormatMermaid:
		return &MermaidFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: list, dot, json, mermaid)", format)
	}
}
