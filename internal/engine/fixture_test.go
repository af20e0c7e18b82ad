package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/store"
)

// socialGraph builds a small graph:
//
//	Alice -KNOWS-> Bob -KNOWS-> Carol
//	Alice -KNOWS-> Carol
//	Alice -LIVES_IN-> Paris
func socialGraph(t *testing.T) Deps {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	put := func(table string, columns []string, rows ...[]ir.Value) {
		require.NoError(t, s.CreateTable(ctx, table, columns))
		require.NoError(t, s.InsertRows(ctx, table, columns, rows))
	}
	put("Person", []string{"id", "name", "age"},
		[]ir.Value{ir.Int(1), ir.String("Alice"), ir.Int(30)},
		[]ir.Value{ir.Int(2), ir.String("Bob"), ir.Int(25)},
		[]ir.Value{ir.Int(3), ir.String("Carol"), ir.Null{}},
	)
	put("KNOWS", []string{"id", "start", "end", "since"},
		[]ir.Value{ir.Int(10), ir.Int(1), ir.Int(2), ir.Int(2020)},
		[]ir.Value{ir.Int(11), ir.Int(2), ir.Int(3), ir.Int(2021)},
		[]ir.Value{ir.Int(12), ir.Double(1), ir.Int(3), ir.Int(2019)},
	)
	put("cities", []string{"id", "name"},
		[]ir.Value{ir.Int(100), ir.String("Paris")},
	)
	put("LIVES_IN", []string{"id", "start", "end"},
		[]ir.Value{ir.Int(20), ir.Int(1), ir.Int(100)},
	)

	c := catalog.NewMemory(
		catalog.LabelDesc{Name: "Person", Kind: catalog.KindNode},
		catalog.LabelDesc{Name: "KNOWS", Kind: catalog.KindRelationship},
		catalog.LabelDesc{Name: "City", Kind: catalog.KindNode, Table: "cities"},
		catalog.LabelDesc{Name: "LIVES_IN", Kind: catalog.KindRelationship},
	)
	return Deps{Catalog: c, Store: s}
}

func newTestEngine(t *testing.T, ids ...string) *Engine {
	t.Helper()
	deps := socialGraph(t)
	if len(ids) == 0 {
		ids = []string{"req-1", "req-2", "req-3", "req-4"}
	}
	return New(deps.Catalog, deps.Store, WithRequestIDs(NewFixedGenerator(ids...)))
}

// names collects the string value of key from every row.
func names(rows []ir.Row, key string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if s, ok := r.Get(key).(ir.String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// stubOperator replays rows, then optionally fails.
type stubOperator struct {
	rows    []ir.Row
	err     error
	openErr error

	pos    int
	opened bool
	closed int
}

func (s *stubOperator) Open(context.Context) error {
	s.opened = true
	s.pos = 0
	return s.openErr
}

func (s *stubOperator) Next(context.Context) (ir.Row, bool, error) {
	if s.pos < len(s.rows) {
		s.pos++
		return s.rows[s.pos-1], true, nil
	}
	if s.err != nil {
		return nil, false, s.err
	}
	return nil, false, nil
}

func (s *stubOperator) Close() error {
	s.closed++
	return nil
}

var errBoom = errors.New("boom")

// failingStore fails every read.
type failingStore struct{}

func (failingStore) ScanTable(context.Context, string) (*store.Table, error) {
	return nil, errBoom
}

func (failingStore) Close() error { return nil }
