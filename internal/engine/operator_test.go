package engine

import (
	"context"
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relgraph/internal/compiler"
	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/parser"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
	"github.com/roach88/relgraph/internal/store"
)

func lower(t *testing.T, deps Deps, query string) Operator {
	t.Helper()
	plan, err := compiler.Build(parser.MustParse(query))
	require.NoError(t, err)
	op, err := Implement(plan, deps)
	require.NoError(t, err)
	return op
}

func run(t *testing.T, deps Deps, query string) []ir.Row {
	t.Helper()
	rows, err := Drain(context.Background(), lower(t, deps, query))
	require.NoError(t, err)
	return rows
}

func TestImplementShapes(t *testing.T) {
	deps := socialGraph(t)
	op := lower(t, deps, "MATCH (a:Person)-[r:KNOWS]->(b) WHERE a.id = 1 RETURN b")

	project, ok := op.(*Project)
	require.True(t, ok, "got %T", op)
	filter, ok := project.Child.(*Filter)
	require.True(t, ok, "got %T", project.Child)
	expand, ok := filter.Child.(*Expand)
	require.True(t, ok, "got %T", filter.Child)
	scan, ok := expand.Child.(*Scan)
	require.True(t, ok, "got %T", expand.Child)

	assert.Equal(t, "a", scan.Variable)
	assert.Equal(t, "Person", scan.Label)
	assert.Equal(t, "KNOWS", expand.RelType)
	assert.Equal(t, "", expand.EndLabel)
}

func TestImplementJoinUnsupported(t *testing.T) {
	plan, err := compiler.Build(parser.MustParse("MATCH (a:Person), (c:City) RETURN a"))
	require.NoError(t, err)

	_, err = Implement(plan, socialGraph(t))
	require.Error(t, err)
	assert.True(t, qerr.IsUnsupported(err))

	_, err = Implement(nil, Deps{})
	assert.True(t, qerr.IsUnsupported(err))
}

func TestScan(t *testing.T) {
	rows := run(t, socialGraph(t), "MATCH (a:Person) RETURN a")

	require.Len(t, rows, 3)
	assert.Equal(t, ir.Row{"a": ir.Object{"id": ir.Int(1), "name": ir.String("Alice"), "age": ir.Int(30)}}, rows[0])
	assert.Equal(t, ir.Null{}, rows[2]["a"].(ir.Object)["age"])
}

func TestScanResolvesTableThroughCatalog(t *testing.T) {
	rows := run(t, socialGraph(t), "MATCH (c:City) RETURN c.name AS name")
	assert.Equal(t, []string{"Paris"}, names(rows, "name"))
}

func TestScanWithoutLabelReadsEveryNodeTable(t *testing.T) {
	rows := run(t, socialGraph(t), "MATCH (n) RETURN n.name AS name")
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Paris"}, names(rows, "name"))
}

func TestScanUnknownLabelFallsBackToTableName(t *testing.T) {
	deps := socialGraph(t)
	ctx := context.Background()
	mem := deps.Store.(*store.Memory)
	require.NoError(t, mem.CreateTable(ctx, "Robot", []string{"id"}))
	require.NoError(t, mem.InsertRows(ctx, "Robot", []string{"id"}, [][]ir.Value{{ir.Int(9)}}))

	rows := run(t, deps, "MATCH (r:Robot) RETURN r.id AS id")
	assert.Equal(t, []ir.Row{{"id": ir.Int(9)}}, rows)
}

func TestScanMissingTableIsStoreError(t *testing.T) {
	_, err := Drain(context.Background(), lower(t, socialGraph(t), "MATCH (g:Ghost) RETURN g"))
	require.Error(t, err)
	assert.True(t, qerr.IsStoreError(err))
	assert.ErrorIs(t, err, store.ErrNoTable)
}

func TestScanStoreFailure(t *testing.T) {
	deps := socialGraph(t)
	deps.Store = failingStore{}
	_, err := Drain(context.Background(), lower(t, deps, "MATCH (a:Person) RETURN a"))
	assert.True(t, qerr.IsStoreError(err))
	assert.ErrorIs(t, err, errBoom)
}

func TestExpand(t *testing.T) {
	deps := socialGraph(t)

	t.Run("right arrow", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a.name AS a, b.name AS b, r.since AS since")
		assert.Equal(t, []ir.Row{
			{"a": ir.String("Alice"), "b": ir.String("Bob"), "since": ir.Int(2020)},
			{"a": ir.String("Alice"), "b": ir.String("Carol"), "since": ir.Int(2019)},
			{"a": ir.String("Bob"), "b": ir.String("Carol"), "since": ir.Int(2021)},
		}, rows)
	})

	t.Run("left arrow", func(t *testing.T) {
		rows := run(t, deps, "MATCH (b:Person)<-[:KNOWS]-(a:Person) WHERE b.name = 'Carol' RETURN a.name AS a")
		assert.Equal(t, []string{"Alice", "Bob"}, names(rows, "a"))
	})

	t.Run("two hops", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person)-[:KNOWS]->(b:Person)-[:KNOWS]->(c:Person) RETURN a.name AS a, c.name AS c")
		assert.Equal(t, []ir.Row{{"a": ir.String("Alice"), "c": ir.String("Carol")}}, rows)
	})

	t.Run("unlabeled end reads every node table", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person)-[:LIVES_IN]->(c) RETURN c.name AS city")
		assert.Equal(t, []string{"Paris"}, names(rows, "city"))
	})

	t.Run("untyped relationship reads every relationship table", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person)-[r]->(x) WHERE a.id = 1 RETURN x.name AS name")
		assert.Equal(t, []string{"Bob", "Carol", "Paris"}, names(rows, "name"))
	})

	t.Run("no matches", func(t *testing.T) {
		rows := run(t, deps, "MATCH (c:City)-[:KNOWS]->(p:Person) RETURN p")
		assert.Empty(t, rows)
		assert.NotNil(t, rows)
	})
}

func TestExpandChildErrorAbortsQuery(t *testing.T) {
	child := &stubOperator{
		rows: []ir.Row{{"a": ir.Object{"id": ir.Int(1)}}},
		err:  errBoom,
	}
	deps := socialGraph(t)
	e := &Expand{Child: child, Start: "a", Rel: "r", RelType: "KNOWS", End: "b", EndLabel: "Person", deps: deps}

	err := e.Open(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.NoError(t, e.Close())
	assert.Equal(t, 1, child.closed)
}

func TestFilter(t *testing.T) {
	deps := socialGraph(t)

	t.Run("int property against double literal", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person) WHERE a.id = 1 RETURN a")
		require.Len(t, rows, 1)
		assert.Equal(t, ir.String("Alice"), rows[0]["a"].(ir.Object)["name"])
	})

	t.Run("null drops the row", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person) WHERE a.age > 20 OR a.nothing RETURN a.name AS n")
		assert.Equal(t, []string{"Alice", "Bob"}, names(rows, "n"))
	})

	t.Run("non-boolean predicate fails", func(t *testing.T) {
		_, err := Drain(context.Background(), lower(t, deps, "MATCH (a:Person) WHERE a.name RETURN a"))
		require.Error(t, err)
		assert.Equal(t, qerr.CodeExecution, qerr.CodeOf(err))
	})

	t.Run("every predicate must hold", func(t *testing.T) {
		f := &Filter{
			Child: &stubOperator{rows: []ir.Row{{"x": ir.Boolean(true)}, {"x": ir.Boolean(false)}}},
			Predicates: []queryir.ScalarExpr{
				queryir.BoolLiteral{Value: true},
				queryir.Variable{Name: "x"},
			},
		}
		rows, err := Drain(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, []ir.Row{{"x": ir.Boolean(true)}}, rows)
	})
}

func TestProject(t *testing.T) {
	deps := socialGraph(t)

	t.Run("alias replaces the expression", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person) WHERE a.id = 2 RETURN a.name AS n")
		assert.Equal(t, []ir.Row{{"n": ir.String("Bob")}}, rows)
	})

	t.Run("default alias is the rendering", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person) WHERE a.id = 2 RETURN a.age + 1")
		assert.Equal(t, []ir.Row{{"a.age + 1": ir.Double(26)}}, rows)
	})

	t.Run("star keeps bindings and drops generated names", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person)-->(b) WHERE a.id = 2 RETURN *, b.name AS friend")
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"a", "b", "friend"}, slices.Sorted(maps.Keys(rows[0])))
		assert.Equal(t, ir.String("Carol"), rows[0]["friend"])
	})

	t.Run("star alias overwrites a binding", func(t *testing.T) {
		rows := run(t, deps, "MATCH (a:Person) WHERE a.id = 1 RETURN *, 5 AS a")
		assert.Equal(t, []ir.Row{{"a": ir.Double(5)}}, rows)
	})

	t.Run("star does not mutate the child row", func(t *testing.T) {
		in := ir.Row{"a": ir.Int(1)}
		p := &Project{
			Child: &stubOperator{rows: []ir.Row{in}},
			Items: []queryir.ProjectItem{{Expr: queryir.NumberLiteral{Value: 2}, Alias: "b"}},
			Star:  true,
		}
		rows, err := Drain(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, []ir.Row{{"a": ir.Int(1), "b": ir.Double(2)}}, rows)
		assert.Equal(t, ir.Row{"a": ir.Int(1)}, in)
	})
}

func TestOperatorsStayExhausted(t *testing.T) {
	deps := socialGraph(t)
	queries := []string{
		"MATCH (a:Person) RETURN a",
		"MATCH (a:Person)-[:KNOWS]->(b:Person) RETURN b",
		"MATCH (a:Person) WHERE a.id = 1 RETURN a",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			ctx := context.Background()
			op := lower(t, deps, q)
			require.NoError(t, op.Open(ctx))
			for {
				_, ok, err := op.Next(ctx)
				require.NoError(t, err)
				if !ok {
					break
				}
			}
			for i := 0; i < 3; i++ {
				row, ok, err := op.Next(ctx)
				assert.NoError(t, err)
				assert.False(t, ok)
				assert.Nil(t, row)
			}
			assert.NoError(t, op.Close())
			assert.NoError(t, op.Close())
		})
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	deps := socialGraph(t)
	ops := []Operator{
		&Scan{Variable: "a", Label: "Person", deps: deps},
		&Expand{Child: &stubOperator{}, deps: deps},
		&Filter{Child: &stubOperator{}},
		&Project{Child: &stubOperator{}},
		&Expand{},
		&Filter{},
		&Project{},
	}
	for _, op := range ops {
		assert.NoError(t, op.Close())
		assert.NoError(t, op.Close())
	}
}

func TestCloseAfterFailedOpen(t *testing.T) {
	deps := socialGraph(t)
	deps.Store = failingStore{}
	op := lower(t, deps, "MATCH (a:Person)-[:KNOWS]->(b) WHERE a.id = 1 RETURN a")

	require.Error(t, op.Open(context.Background()))
	assert.NoError(t, op.Close())
	assert.NoError(t, op.Close())
}

func TestDrainIsAllOrNothing(t *testing.T) {
	child := &stubOperator{
		rows: []ir.Row{{"a": ir.Int(1)}, {"a": ir.Int(2)}},
		err:  errBoom,
	}
	rows, err := Drain(context.Background(), &Project{Child: child, Star: true})
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, rows)
	assert.Equal(t, 1, child.closed)
}

func TestDrainOpenFailure(t *testing.T) {
	child := &stubOperator{openErr: errors.New("open failed")}
	rows, err := Drain(context.Background(), &Filter{Child: child})
	assert.EqualError(t, err, "open failed")
	assert.Nil(t, rows)
	assert.Equal(t, 1, child.closed)
}
