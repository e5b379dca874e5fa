package formatters

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/ppfront/depgraph"
	"github.com/LegacyCodeHQ/ppfront/include"
)

// DOTFormatter renders Graphviz DOT. System includes are dashed and
// edges on a cycle are red.
type DOTFormatter struct{}

func (f *DOTFormatter) Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error) {
	files := g.Files()
	names := BuildNodeNames(files)
	colors := nodeColors(g.Root(), files)

	var sb strings.Builder
	sb.WriteString("digraph includes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	if opts.Label != "" {
		fmt.Fprintf(&sb, "  label=%q;\n", opts.Label)
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
	}
	sb.WriteString("\n")

	for _, file := range files {
		fmt.Fprintf(&sb, "  %q [style=filled, fillcolor=%s];\n", names[file], colors[file])
	}

	edges := g.Edges()
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range edges {
		var attrs []string
		if edge.Kind == include.System {
			attrs = append(attrs, "style=dashed")
		}
		if g.InCycle(edge.From, edge.To) {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(&sb, "  %q -> %q", names[edge.From], names[edge.To])
		if len(attrs) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(attrs, ", "))
		}
		sb.WriteString(";\n")
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}
