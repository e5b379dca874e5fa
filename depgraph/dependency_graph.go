// Package depgraph records the include graph of a preprocessing run.
package depgraph

import (
	"errors"
	"slices"

	graphlib "github.com/dominikbraun/graph"

	"github.com/LegacyCodeHQ/ppfront/include"
)

const kindAttribute = "kind"

// DependencyGraph maps each file to the files it includes.
type DependencyGraph map[string][]string

// Edge is one include relation.
type Edge struct {
	From string
	To   string
	Kind include.Kind
}

// IncludeGraph collects the files a run opened. It implements
// include.Observer, so it can be handed to a resolver directly.
type IncludeGraph struct {
	root  string
	g     graphlib.Graph[string, string]
	order []string
}

// NewIncludeGraph returns a graph holding only root.
func NewIncludeGraph(root string) *IncludeGraph {
	g := &IncludeGraph{
		root: root,
		g:    graphlib.New(graphlib.StringHash, graphlib.Directed()),
	}
	g.addFile(root)
	return g
}

// Included records that from included to. Repeated includes of the same
// pair keep the first kind seen.
func (g *IncludeGraph) Included(from, to string, kind include.Kind) {
	g.addFile(from)
	g.addFile(to)
	err := g.g.AddEdge(from, to, graphlib.EdgeAttribute(kindAttribute, kind.String()))
	if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		// both vertices exist, so this cannot happen
		panic(err)
	}
}

func (g *IncludeGraph) addFile(path string) {
	if err := g.g.AddVertex(path); err == nil {
		g.order = append(g.order, path)
	}
}

// Root returns the file the run started from.
func (g *IncludeGraph) Root() string {
	return g.root
}

// Files returns every file in the order it was first seen.
func (g *IncludeGraph) Files() []string {
	return slices.Clone(g.order)
}

// Includes returns the files path includes, sorted.
func (g *IncludeGraph) Includes(path string) []string {
	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	targets := make([]string, 0, len(adjacency[path]))
	for target := range adjacency[path] {
		targets = append(targets, target)
	}
	slices.Sort(targets)
	return targets
}

// Edges returns every include relation ordered by source discovery order,
// then by target path.
func (g *IncludeGraph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.order {
		for _, to := range g.Includes(from) {
			edges = append(edges, Edge{From: from, To: to, Kind: g.Kind(from, to)})
		}
	}
	return edges
}

// Kind returns how from included to. It is Local for unknown pairs.
func (g *IncludeGraph) Kind(from, to string) include.Kind {
	edge, err := g.g.Edge(from, to)
	if err != nil {
		return include.Local
	}
	if edge.Properties.Attributes[kindAttribute] == include.System.String() {
		return include.System
	}
	return include.Local
}

// Adjacency returns the graph as a plain map.
func (g *IncludeGraph) Adjacency() DependencyGraph {
	result := make(DependencyGraph, len(g.order))
	for _, file := range g.order {
		result[file] = g.Includes(file)
	}
	return result
}

// Cycles returns every group of files that include each other, directly or
// through other files. Each cycle is sorted, and cycles are ordered by
// their first file.
func (g *IncludeGraph) Cycles() [][]string {
	components, err := graphlib.StronglyConnectedComponents(g.g)
	if err != nil {
		return nil
	}
	var cycles [][]string
	for _, component := range components {
		if len(component) == 1 && !g.hasEdge(component[0], component[0]) {
			continue
		}
		cycle := slices.Clone(component)
		slices.Sort(cycle)
		cycles = append(cycles, cycle)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles
}

// InCycle reports whether the edge from -> to lies on a cycle.
func (g *IncludeGraph) InCycle(from, to string) bool {
	if !g.hasEdge(from, to) {
		return false
	}
	if from == to {
		return true
	}
	for _, cycle := range g.Cycles() {
		if slices.Contains(cycle, from) && slices.Contains(cycle, to) {
			return true
		}
	}
	return false
}

func (g *IncludeGraph) hasEdge(from, to string) bool {
	_, err := g.g.Edge(from, to)
	return err == nil
}
