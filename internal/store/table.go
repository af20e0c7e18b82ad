package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/roach88/relgraph/internal/ir"
)

// Table is the result of one unfiltered table read.
type Table struct {
	Columns []string
	Rows    [][]ir.Value
}

// Objects converts every row into an Object keyed by column name.
func (t *Table) Objects() []ir.Object {
	if t == nil {
		return nil
	}
	out := make([]ir.Object, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(ir.Object, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) && row[i] != nil {
				obj[col] = row[i]
			} else {
				obj[col] = ir.Null{}
			}
		}
		out = append(out, obj)
	}
	return out
}

// TableStore is the storage collaborator of the query engine.
//
// ScanTable reads every row of table. Reading a table that does not exist
// is an error.
type TableStore interface {
	ScanTable(ctx context.Context, table string) (*Table, error)
	Close() error
}

// Writer populates a TableStore. CreateTable is idempotent; InsertRows
// appends rows whose cells follow columns in order.
type Writer interface {
	CreateTable(ctx context.Context, table string, columns []string) error
	InsertRows(ctx context.Context, table string, columns []string, rows [][]ir.Value) error
}

// Backend is a TableStore that can also be populated.
type Backend interface {
	TableStore
	Writer
}

// cellValue converts a driver cell into a Value. Byte strings become
// String; unsigned integers that overflow int64 become Double.
func cellValue(v any) (ir.Value, error) {
	switch v := v.(type) {
	case nil:
		return ir.Null{}, nil
	case []byte:
		return ir.String(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return ir.Double(float64(v)), nil
		}
		return ir.Int(int64(v)), nil
	case time.Time:
		return ir.String(v.UTC().Format(time.RFC3339Nano)), nil
	}
	val, err := ir.FromNative(v)
	if err != nil {
		return nil, fmt.Errorf("convert cell: %w", err)
	}
	switch val.(type) {
	case ir.Object, ir.Array:
		return nil, fmt.Errorf("convert cell: nested %s value", val.Kind())
	}
	return val, nil
}

// cellNative converts a Value into a driver argument.
func cellNative(v ir.Value) (any, error) {
	switch v := v.(type) {
	case nil, ir.Null:
		return nil, nil
	case ir.Int:
		return int64(v), nil
	case ir.Double:
		return float64(v), nil
	case ir.String:
		return string(v), nil
	case ir.Boolean:
		return bool(v), nil
	}
	return nil, fmt.Errorf("unsupported cell value %s", v.Kind())
}
