package formatters

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/ppfront/depgraph"
	"github.com/LegacyCodeHQ/ppfront/include"
)

// ListFormatter renders an indented include tree from the root. A file
// already printed is marked instead of expanded again, and an include
// back into the current chain is marked as a cycle.
type ListFormatter struct{}

func (f *ListFormatter) Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error) {
	names := BuildNodeNames(g.Files())

	var sb strings.Builder
	if opts.Label != "" {
		fmt.Fprintf(&sb, "# %s\n", opts.Label)
	}
	sb.WriteString(names[g.Root()] + "\n")

	shown := map[string]bool{g.Root(): true}
	chain := map[string]bool{g.Root(): true}
	var walk func(file string, depth int)
	walk = func(file string, depth int) {
		for _, target := range g.Includes(file) {
			name := names[target]
			if g.Kind(file, target) == include.System {
				name = "<" + name + ">"
			}
			indent := strings.Repeat("  ", depth)
			switch {
			case chain[target]:
				fmt.Fprintf(&sb, "%s%s (cycle)\n", indent, name)
			case shown[target]:
				fmt.Fprintf(&sb, "%s%s (seen)\n", indent, name)
			default:
				sb.WriteString(indent + name + "\n")
				shown[target] = true
				chain[target] = true
				walk(target, depth+1)
				delete(chain, target)
			}
		}
	}
	walk(g.Root(), 1)

	for _, cycle := range g.Cycles() {
		parts := make([]string, 0, len(cycle)+1)
		for _, file := range cycle {
			parts = append(parts, names[file])
		}
		parts = append(parts, names[cycle[0]])
		fmt.Fprintf(&sb, "cycle: %s\n", strings.Join(parts, " -> "))
	}
	return sb.String(), nil
}
