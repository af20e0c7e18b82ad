package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/parquet-go/parquet-go"

	"github.com/roach88/relgraph/internal/ir"
)

// Parquet is a TableStore over a directory holding one <table>.parquet
// file per table. Files are immutable: InsertRows rewrites the whole file
// with the old and new rows.
//
// Column order follows the file schema, which parquet sorts by name.
type Parquet struct {
	dir string
	mu  sync.Mutex
}

// OpenParquet opens dir, creating it if needed.
func OpenParquet(dir string) (*Parquet, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create parquet dir: %w", err)
	}
	return &Parquet{dir: dir}, nil
}

func (p *Parquet) path(table string) (string, error) {
	if table == "" || strings.ContainsAny(table, `/\`) || table == "." || table == ".." {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return filepath.Join(p.dir, table+".parquet"), nil
}

// ScanTable reads every row of table.
func (p *Parquet) ScanTable(_ context.Context, table string) (*Table, error) {
	path, err := p.path(table)
	if err != nil {
		return nil, err
	}
	return readParquet(path, table)
}

func readParquet(path, table string) (*Table, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("scan %q: %w", table, ErrNoTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	out := &Table{}
	for _, f := range pqFile.Schema().Fields() {
		out.Columns = append(out.Columns, f.Name())
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()
	for {
		row := make(map[string]interface{})
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		cells := make([]ir.Value, len(out.Columns))
		for i, col := range out.Columns {
			v, err := cellValue(row[col])
			if err != nil {
				return nil, fmt.Errorf("%q.%q: %w", table, col, err)
			}
			cells[i] = v
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// CreateTable writes an empty file for table, or adds missing columns to
// an existing one.
func (p *Parquet) CreateTable(_ context.Context, table string, columns []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, err := p.path(table)
	if err != nil {
		return err
	}
	existing, err := readParquet(path, table)
	if errors.Is(err, ErrNoTable) {
		existing = &Table{}
	} else if err != nil {
		return err
	}
	return writeParquet(path, table, mergeColumns(existing, columns))
}

// InsertRows rewrites table with rows appended.
func (p *Parquet) InsertRows(_ context.Context, table string, columns []string, rows [][]ir.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, err := p.path(table)
	if err != nil {
		return err
	}
	existing, err := readParquet(path, table)
	if err != nil {
		return fmt.Errorf("insert into %q: %w", table, err)
	}
	merged := mergeColumns(existing, columns)

	index := make(map[string]int, len(merged.Columns))
	for i, c := range merged.Columns {
		index[c] = i
	}
	for n, r := range rows {
		if len(r) != len(columns) {
			return fmt.Errorf("insert into %q: row %d has %d cells, want %d", table, n, len(r), len(columns))
		}
		out := make([]ir.Value, len(merged.Columns))
		for i, c := range columns {
			out[index[c]] = r[i]
		}
		merged.Rows = append(merged.Rows, out)
	}
	return writeParquet(path, table, merged)
}

// Close is a no-op; files are opened per scan.
func (p *Parquet) Close() error { return nil }

// mergeColumns returns t widened to include columns, with existing rows
// padded with nulls.
func mergeColumns(t *Table, columns []string) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	have := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = true
	}
	for _, c := range columns {
		if !have[c] {
			have[c] = true
			out.Columns = append(out.Columns, c)
		}
	}
	for _, r := range t.Rows {
		row := make([]ir.Value, len(out.Columns))
		copy(row, r)
		out.Rows = append(out.Rows, row)
	}
	return out
}

// writeParquet writes t as a flat schema of optional leaves. Each column's
// type is inferred from its values: Int and Double mixed widen to Double,
// a column with no values is a string column.
func writeParquet(path, table string, t *Table) error {
	kinds, err := columnKinds(t)
	if err != nil {
		return fmt.Errorf("write %q: %w", table, err)
	}

	group := make(parquet.Group, len(t.Columns))
	for i, c := range t.Columns {
		group[c] = parquet.Optional(leafFor(kinds[i]))
	}
	schema := parquet.NewSchema(table, group)

	// Leaf columns are laid out in schema order, not table order.
	leaves := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		leaf, ok := schema.Lookup(c)
		if !ok {
			return fmt.Errorf("write %q: column %q missing from schema", table, c)
		}
		leaves[i] = leaf.ColumnIndex
	}

	rows := make([]parquet.Row, len(t.Rows))
	for n, r := range t.Rows {
		row := make(parquet.Row, len(t.Columns))
		for i := range t.Columns {
			var cell ir.Value = ir.Null{}
			if i < len(r) && r[i] != nil {
				cell = r[i]
			}
			row[leaves[i]] = parquetValue(cell, kinds[i]).Level(0, definitionLevel(cell), leaves[i])
		}
		rows[n] = row
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write %q: %w", table, err)
	}
	writer := parquet.NewWriter(f, schema)
	if _, err := writer.WriteRows(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", table, err)
	}
	if err := writer.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", table, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %q: %w", table, err)
	}
	return os.Rename(tmp, path)
}

func columnKinds(t *Table) ([]ir.Kind, error) {
	kinds := make([]ir.Kind, len(t.Columns))
	for i, c := range t.Columns {
		kind := ir.KindNull
		for _, r := range t.Rows {
			if i >= len(r) || r[i] == nil {
				continue
			}
			k := r[i].Kind()
			switch {
			case k == ir.KindNull || k == kind:
			case kind == ir.KindNull:
				kind = k
			case isNumeric(kind) && isNumeric(k):
				kind = ir.KindDouble
			default:
				return nil, fmt.Errorf("column %q mixes %s and %s values", c, kind, k)
			}
		}
		if kind == ir.KindObject || kind == ir.KindArray {
			return nil, fmt.Errorf("column %q holds %s values", c, kind)
		}
		if kind == ir.KindNull {
			kind = ir.KindString
		}
		kinds[i] = kind
	}
	return kinds, nil
}

func isNumeric(k ir.Kind) bool {
	return k == ir.KindInt || k == ir.KindDouble
}

func leafFor(k ir.Kind) parquet.Node {
	switch k {
	case ir.KindInt:
		return parquet.Int(64)
	case ir.KindDouble:
		return parquet.Leaf(parquet.DoubleType)
	case ir.KindBoolean:
		return parquet.Leaf(parquet.BooleanType)
	}
	return parquet.String()
}

func parquetValue(v ir.Value, kind ir.Kind) parquet.Value {
	switch v := v.(type) {
	case ir.Int:
		if kind == ir.KindDouble {
			return parquet.ValueOf(float64(v))
		}
		return parquet.ValueOf(int64(v))
	case ir.Double:
		return parquet.ValueOf(float64(v))
	case ir.String:
		return parquet.ValueOf(string(v))
	case ir.Boolean:
		return parquet.ValueOf(bool(v))
	}
	return parquet.NullValue()
}

func definitionLevel(v ir.Value) int {
	if ir.IsNull(v) {
		return 0
	}
	return 1
}
