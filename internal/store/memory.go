package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/relgraph/internal/ir"
)

// ErrNoTable is wrapped by every backend when a scanned table does not exist.
var ErrNoTable = errors.New("no such table")

// Memory is an in-process TableStore used by tests and scenario runs.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*Table)}
}

// ScanTable returns a copy of table.
func (m *Memory) ScanTable(_ context.Context, table string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("scan %q: %w", table, ErrNoTable)
	}
	out := &Table{Columns: slices.Clone(t.Columns), Rows: make([][]ir.Value, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out, nil
}

// CreateTable registers table. New columns are appended to an existing
// table and read as Null for rows inserted before.
func (m *Memory) CreateTable(_ context.Context, table string, columns []string) error {
	if table == "" {
		return fmt.Errorf("create table: empty name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		m.tables[table] = &Table{Columns: slices.Clone(columns)}
		return nil
	}
	for _, c := range columns {
		if !slices.Contains(t.Columns, c) {
			t.Columns = append(t.Columns, c)
		}
	}
	return nil
}

// InsertRows appends rows to table, reordering cells to the table's
// column order.
func (m *Memory) InsertRows(_ context.Context, table string, columns []string, rows [][]ir.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("insert into %q: %w", table, ErrNoTable)
	}
	index := make([]int, len(columns))
	for i, c := range columns {
		index[i] = slices.Index(t.Columns, c)
		if index[i] < 0 {
			return fmt.Errorf("insert into %q: unknown column %q", table, c)
		}
	}
	for _, r := range rows {
		if len(r) != len(columns) {
			return fmt.Errorf("insert into %q: row has %d cells, want %d", table, len(r), len(columns))
		}
		out := make([]ir.Value, len(t.Columns))
		for i := range out {
			out[i] = ir.Null{}
		}
		for i, v := range r {
			if v == nil {
				v = ir.Null{}
			}
			out[index[i]] = v
		}
		t.Rows = append(t.Rows, out)
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
