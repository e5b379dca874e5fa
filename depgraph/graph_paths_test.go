package depgraph

import (
	"testing"

	"github.com/LegacyCodeHQ/ppfront/include"
	"github.com/stretchr/testify/assert"
)

func chain(root string, edges ...[2]string) *IncludeGraph {
	g := NewIncludeGraph(root)
	for _, e := range edges {
		g.Included(e[0], e[1], include.Local)
	}
	return g
}

func TestSubgraph_Linear(t *testing.T) {
	// A → B → C
	g := chain("A", [2]string{"A", "B"}, [2]string{"B", "C"})

	sub := g.Subgraph([]string{"A", "C"})

	assert.Equal(t, []string{"A", "B", "C"}, sub.Files())
}

func TestSubgraph_Diamond(t *testing.T) {
	// A → B, A → C, B → D, C → D, A → E
	g := chain("A",
		[2]string{"A", "B"}, [2]string{"A", "C"},
		[2]string{"B", "D"}, [2]string{"C", "D"},
		[2]string{"A", "E"},
	)

	sub := g.Subgraph([]string{"A", "D"})

	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, sub.Files())
	assert.Equal(t, []string{"B", "C"}, sub.Includes("A"))
}

func TestSubgraph_ReverseDirection(t *testing.T) {
	g := chain("R", [2]string{"R", "X"}, [2]string{"X", "Y"})

	sub := g.Subgraph([]string{"Y", "R"})

	assert.Equal(t, []string{"R", "X", "Y"}, sub.Files())
}

func TestSubgraph_Disconnected(t *testing.T) {
	// R → A → B, R → C → D
	g := chain("R",
		[2]string{"R", "A"}, [2]string{"A", "B"},
		[2]string{"R", "C"}, [2]string{"C", "D"},
	)

	sub := g.Subgraph([]string{"B", "D"})

	assert.Equal(t, []string{"R", "B", "D"}, sub.Files())
	assert.Empty(t, sub.Edges())
}

func TestSubgraph_UnknownTargetsSkipped(t *testing.T) {
	g := chain("A", [2]string{"A", "B"})

	sub := g.Subgraph([]string{"B", "missing"})

	assert.Equal(t, []string{"A", "B"}, sub.Files())
	assert.Empty(t, sub.Edges())
}

func TestSubgraph_KeepsEdgeKinds(t *testing.T) {
	g := NewIncludeGraph("A")
	g.Included("A", "B", include.System)

	sub := g.Subgraph([]string{"A", "B"})

	assert.Equal(t, include.System, sub.Kind("A", "B"))
}
