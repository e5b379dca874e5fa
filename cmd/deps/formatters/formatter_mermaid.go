package formatters

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/ppfront/depgraph"
	"github.com/LegacyCodeHQ/ppfront/include"
)

// MermaidFormatter renders a Mermaid flowchart.
type MermaidFormatter struct{}

func (f *MermaidFormatter) Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error) {
	files := g.Files()
	names := BuildNodeNames(files)

	var sb strings.Builder
	if opts.Label != "" {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", opts.Label)
		sb.WriteString("---\n")
	}
	sb.WriteString("flowchart LR\n")

	cycles := g.Cycles()
	for i, cycle := range cycles {
		parts := make([]string, 0, len(cycle)+1)
		for _, file := range cycle {
			parts = append(parts, names[file])
		}
		parts = append(parts, names[cycle[0]])
		fmt.Fprintf(&sb, "%%%% C%d: %s\n", i+1, strings.Join(parts, " -> "))
	}

	ids := make(map[string]string, len(files))
	for i, file := range files {
		ids[file] = fmt.Sprintf("n%d", i)
		label := strings.ReplaceAll(names[file], "\"", "#quot;")
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ids[file], label)
	}

	edges := g.Edges()
	var cycleEdges []int
	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for i, edge := range edges {
		arrow := "-->"
		if edge.Kind == include.System {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", ids[edge.From], arrow, ids[edge.To])
		if g.InCycle(edge.From, edge.To) {
			cycleEdges = append(cycleEdges, i)
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef root fill:#90EE90,stroke:#228B22,color:#000000\n")
	fmt.Fprintf(&sb, "    class %s root\n", ids[g.Root()])
	for _, idx := range cycleEdges {
		fmt.Fprintf(&sb, "    linkStyle %d stroke:#d62728,stroke-width:3px\n", idx)
	}

	return sb.String(), nil
}
