package compiler

import "github.com/roach88/relgraph/internal/ast"

// patternGraph is the directed adjacency relation over the node indices of
// one pattern. Each relationship contributes a single edge pointing from its
// start node to its end node.
type patternGraph struct {
	out [][]int
}

func newPatternGraph(p ast.Pattern) patternGraph {
	g := patternGraph{out: make([][]int, len(p.Nodes))}
	for i, rel := range p.Relationships {
		switch rel.Direction {
		case ast.Left:
			g.out[i+1] = append(g.out[i+1], i)
		default:
			g.out[i] = append(g.out[i], i+1)
		}
	}
	return g
}

// starts returns the node indices that are never the target of an edge, in
// ascending order.
func (g patternGraph) starts() []int {
	targeted := make([]bool, len(g.out))
	for _, targets := range g.out {
		for _, t := range targets {
			targeted[t] = true
		}
	}
	var out []int
	for i, isTarget := range targeted {
		if !isTarget {
			out = append(out, i)
		}
	}
	return out
}

// pathsFrom returns every maximal path that begins at node and ends at a
// node without outgoing edges. Each call builds and returns fresh slices;
// nothing is shared between the returned paths.
//
// Patterns are linear, so the graph is acyclic and the recursion terminates.
func (g patternGraph) pathsFrom(node int) [][]int {
	if len(g.out[node]) == 0 {
		return [][]int{{node}}
	}
	var paths [][]int
	for _, next := range g.out[node] {
		for _, tail := range g.pathsFrom(next) {
			path := make([]int, 0, len(tail)+1)
			path = append(path, node)
			path = append(path, tail...)
			paths = append(paths, path)
		}
	}
	return paths
}

// decompose returns every start-to-sink path of the pattern, ordered by
// start index.
func decompose(p ast.Pattern) [][]int {
	g := newPatternGraph(p)
	var paths [][]int
	for _, s := range g.starts() {
		paths = append(paths, g.pathsFrom(s)...)
	}
	return paths
}
