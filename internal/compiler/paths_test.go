package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/relgraph/internal/ast"
)

func pattern(dirs ...ast.Direction) ast.Pattern {
	p := ast.Pattern{Nodes: make([]ast.NodePattern, len(dirs)+1)}
	for _, d := range dirs {
		p.Relationships = append(p.Relationships, ast.RelationshipPattern{Direction: d})
	}
	return p
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		dirs  []ast.Direction
		paths [][]int
	}{
		{"single node", nil, [][]int{{0}}},
		{"right chain", []ast.Direction{ast.Right, ast.Right}, [][]int{{0, 1, 2}}},
		{"left chain", []ast.Direction{ast.Left, ast.Left}, [][]int{{2, 1, 0}}},
		{"converging", []ast.Direction{ast.Right, ast.Left}, [][]int{{0, 1}, {2, 1}}},
		{"diverging", []ast.Direction{ast.Left, ast.Right}, [][]int{{1, 0}, {1, 2}}},
		{"zigzag", []ast.Direction{ast.Right, ast.Left, ast.Right}, [][]int{{0, 1}, {2, 1}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.paths, decompose(pattern(tt.dirs...)))
		})
	}
}

func TestPathsDoNotShareBackingArrays(t *testing.T) {
	g := newPatternGraph(pattern(ast.Left, ast.Right))
	paths := g.pathsFrom(1)
	assert.Equal(t, [][]int{{1, 0}, {1, 2}}, paths)

	paths[0][0] = 99
	assert.Equal(t, 1, paths[1][0])
}

func TestStarts(t *testing.T) {
	assert.Equal(t, []int{0, 2}, newPatternGraph(pattern(ast.Right, ast.Left)).starts())
	assert.Equal(t, []int{1}, newPatternGraph(pattern(ast.Left, ast.Right)).starts())
}
