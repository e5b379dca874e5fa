package depgraph

import (
	graphlib "github.com/dominikbraun/graph"
)

// Subgraph returns the part of g on any include path between the given
// files, in either direction. Files not in g are skipped. With fewer than
// two known files the result holds just those files. The root is kept in
// the result even when no path passes through it.
func (g *IncludeGraph) Subgraph(targets []string) *IncludeGraph {
	var valid []string
	for _, target := range targets {
		if _, err := g.g.Vertex(target); err == nil {
			valid = append(valid, target)
		}
	}

	keep := make(map[string]bool, len(g.order))
	for _, target := range valid {
		keep[target] = true
	}
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			for node := range g.pathNodes(valid[i], valid[j]) {
				keep[node] = true
			}
			for node := range g.pathNodes(valid[j], valid[i]) {
				keep[node] = true
			}
		}
	}

	sub := NewIncludeGraph(g.root)
	for _, file := range g.order {
		if keep[file] {
			sub.addFile(file)
		}
	}
	for _, edge := range g.Edges() {
		if keep[edge.From] && keep[edge.To] {
			sub.Included(edge.From, edge.To, edge.Kind)
		}
	}
	return sub
}

// pathNodes returns the nodes on any directed path from source to target:
// those reachable from source that can also reach target.
func (g *IncludeGraph) pathNodes(source, target string) map[string]bool {
	fromSource := g.reachable(source)
	if !fromSource[target] {
		return nil
	}
	toTarget := g.reaching(target)

	result := make(map[string]bool)
	for node := range fromSource {
		if toTarget[node] {
			result[node] = true
		}
	}
	return result
}

func (g *IncludeGraph) reachable(source string) map[string]bool {
	seen := make(map[string]bool)
	_ = graphlib.BFS(g.g, source, func(node string) bool {
		seen[node] = true
		return false
	})
	return seen
}

func (g *IncludeGraph) reaching(target string) map[string]bool {
	predecessors, err := g.g.PredecessorMap()
	if err != nil {
		return nil
	}
	seen := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for parent := range predecessors[current] {
			if !seen[parent] {
				seen[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return seen
}
