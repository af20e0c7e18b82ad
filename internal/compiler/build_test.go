package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relgraph/internal/ast"
	"github.com/roach88/relgraph/internal/parser"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
)

func build(t *testing.T, query string) queryir.RelExpr {
	t.Helper()
	plan, err := Build(parser.MustParse(query))
	require.NoError(t, err)
	return plan
}

// matchInput strips the Projection (and Selection, if any) off a plan.
func matchInput(t *testing.T, plan queryir.RelExpr) queryir.RelExpr {
	t.Helper()
	proj, ok := plan.(*queryir.Projection)
	require.True(t, ok, "root must be a Projection, got %T", plan)
	if sel, ok := proj.Input.(*queryir.Selection); ok {
		return sel.Input
	}
	return proj.Input
}

func TestBuildSingleNode(t *testing.T) {
	plan := build(t, "MATCH (a:Person) RETURN a")

	assert.Equal(t, &queryir.Projection{
		Input: &queryir.NodeScan{Variable: "a", Label: "Person"},
		Items: []queryir.ProjectItem{{Expr: queryir.Variable{Name: "a"}, Alias: "a"}},
	}, plan)
}

func TestBuildLinearPatternNestsExpands(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d nodes", n), func(t *testing.T) {
			parts := make([]string, n)
			for i := range parts {
				parts[i] = fmt.Sprintf("(n%d:L%d)", i, i)
			}
			query := "MATCH " + strings.Join(parts, "-[:R]->") + " RETURN n0"
			rel := matchInput(t, build(t, query))

			expands := 0
			for {
				e, ok := rel.(*queryir.Expand)
				if !ok {
					break
				}
				expands++
				assert.Equal(t, fmt.Sprintf("n%d", n-expands), e.End)
				assert.Equal(t, fmt.Sprintf("n%d", n-expands-1), e.Start)
				rel = e.Input
			}
			assert.Equal(t, n-1, expands)
			assert.Equal(t, &queryir.NodeScan{Variable: "n0", Label: "L0"}, rel)
		})
	}
}

func TestBuildDirection(t *testing.T) {
	t.Run("right arrow starts at the left node", func(t *testing.T) {
		rel := matchInput(t, build(t, "MATCH (a:Person)-[r:KNOWS]->(b:City) RETURN a"))
		assert.Equal(t, &queryir.Expand{
			Input:    &queryir.NodeScan{Variable: "a", Label: "Person"},
			Start:    "a",
			Rel:      "r",
			RelType:  "KNOWS",
			End:      "b",
			EndLabel: "City",
		}, rel)
	})

	t.Run("left arrow starts at the right node", func(t *testing.T) {
		rel := matchInput(t, build(t, "MATCH (a:Person)<-[r:KNOWS]-(b:City) RETURN a"))
		assert.Equal(t, &queryir.Expand{
			Input:    &queryir.NodeScan{Variable: "b", Label: "City"},
			Start:    "b",
			Rel:      "r",
			RelType:  "KNOWS",
			End:      "a",
			EndLabel: "Person",
		}, rel)
	})
}

func TestBuildConvergingPatternSplitsIntoPaths(t *testing.T) {
	// Two arrows point at b, so a and c both start a path ending at b.
	rel := matchInput(t, build(t, "MATCH (a:A)-[r1:R]->(b:B)<-[r2:R]-(c:C) RETURN b"))

	join, ok := rel.(*queryir.Join)
	require.True(t, ok, "got %T", rel)

	left := join.Left.(*queryir.Expand)
	assert.Equal(t, "a", left.Start)
	assert.Equal(t, "r1", left.Rel)
	assert.Equal(t, "b", left.End)

	right := join.Right.(*queryir.Expand)
	assert.Equal(t, "c", right.Start)
	assert.Equal(t, "r2", right.Rel)
	assert.Equal(t, "b", right.End, "shared variables are not deduplicated")
}

func TestBuildDisconnectedPatternsJoin(t *testing.T) {
	rel := matchInput(t, build(t, "MATCH (a:Person), (a:City) RETURN a"))

	assert.Equal(t, &queryir.Join{
		Left:  &queryir.NodeScan{Variable: "a", Label: "Person"},
		Right: &queryir.NodeScan{Variable: "a", Label: "City"},
	}, rel)
}

func TestBuildJoinFoldsLeft(t *testing.T) {
	rel := matchInput(t, build(t, "MATCH (a), (b), (c) RETURN a"))

	outer := rel.(*queryir.Join)
	assert.Equal(t, &queryir.NodeScan{Variable: "c"}, outer.Right)
	inner := outer.Left.(*queryir.Join)
	assert.Equal(t, &queryir.NodeScan{Variable: "a"}, inner.Left)
	assert.Equal(t, &queryir.NodeScan{Variable: "b"}, inner.Right)
}

func TestBuildSelection(t *testing.T) {
	plan := build(t, "MATCH (a:Person) WHERE a.id = 1 AND a.name <> 'x' RETURN a")
	proj := plan.(*queryir.Projection)
	sel, ok := proj.Input.(*queryir.Selection)
	require.True(t, ok)

	require.Len(t, sel.Predicates, 1)
	assert.Equal(t, queryir.LogicAnd{
		Left: queryir.Equal{
			Left:  queryir.PropertyLookup{Subject: queryir.Variable{Name: "a"}, Property: "id"},
			Right: queryir.NumberLiteral{Value: 1},
		},
		Right: queryir.Compare{
			Op:    queryir.OpNotEqual,
			Left:  queryir.PropertyLookup{Subject: queryir.Variable{Name: "a"}, Property: "name"},
			Right: queryir.StringLiteral{Value: "x"},
		},
	}, sel.Predicates[0])
}

func TestBuildProjection(t *testing.T) {
	t.Run("aliases", func(t *testing.T) {
		proj := build(t, "MATCH (a) RETURN a.name AS n, a.age + 1").(*queryir.Projection)
		assert.False(t, proj.Star)
		require.Len(t, proj.Items, 2)
		assert.Equal(t, "n", proj.Items[0].Alias)
		assert.Equal(t, "a.age + 1", proj.Items[1].Alias)
	})

	t.Run("star", func(t *testing.T) {
		proj := build(t, "MATCH (a) RETURN *, -a.x AS neg").(*queryir.Projection)
		assert.True(t, proj.Star)
		assert.Equal(t, []queryir.ProjectItem{{
			Expr:  queryir.Negate{Operand: queryir.PropertyLookup{Subject: queryir.Variable{Name: "a"}, Property: "x"}},
			Alias: "neg",
		}}, proj.Items)
	})
}

func TestBuildAnonymousElements(t *testing.T) {
	rel := matchInput(t, build(t, "MATCH (a)-->(:City) RETURN a"))
	e := rel.(*queryir.Expand)

	assert.Equal(t, "a", e.Start)
	assert.True(t, queryir.IsInternalName(e.Rel))
	assert.True(t, queryir.IsInternalName(e.End))
	assert.Equal(t, "", e.RelType)
	assert.Equal(t, "City", e.EndLabel)
	assert.True(t, queryir.Validate(rel).OK())
}

func TestBuildUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		query *ast.Query
	}{
		{"nil query", nil},
		{"no unions", &ast.Query{}},
		{"two unions", &ast.Query{Unions: []ast.Union{
			parser.MustParse("MATCH (a) RETURN a").Unions[0],
			parser.MustParse("MATCH (b) RETURN b").Unions[0],
		}}},
		{"limit", func() *ast.Query {
			q := parser.MustParse("MATCH (a) RETURN a")
			q.Limit = ast.Number{Value: 1}
			return q
		}()},
		{"no reading clause", &ast.Query{Unions: []ast.Union{{}}}},
		{"multiple labels", parser.MustParse("MATCH (a:A:B) RETURN a")},
		{"multiple types", parser.MustParse("MATCH (a)-[:X:Y]->(b) RETURN a")},
		{"no patterns", &ast.Query{Unions: []ast.Union{{Reading: ast.Match{}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.query)
			require.Error(t, err)
			assert.True(t, qerr.IsUnsupported(err), "got %v", err)
		})
	}
}

func TestBuildScalarUnsupported(t *testing.T) {
	_, err := BuildScalar(nil)
	assert.True(t, qerr.IsUnsupported(err))

	_, err = BuildScalar(ast.Binary{Op: ast.Add, Left: ast.Variable{Name: "a"}, Right: nil})
	assert.True(t, qerr.IsUnsupported(err))
}

func TestBuildScalarUnaryPlusIsIdentity(t *testing.T) {
	e, err := BuildScalar(ast.Unary{Op: ast.UnaryPlus, Operand: ast.Variable{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, queryir.Variable{Name: "x"}, e)
}
