package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/relgraph/internal/ir"
)

// Badger is a TableStore over a badger key-value database.
//
// Key layout:
//
//	c/<table>             JSON array of column names
//	t/<table>/<seq>       JSON object of one row, seq big-endian uint64
//
// Cells carry their kind so Int and Double survive the round trip. Rows
// are read back in seq order, which is insertion order. Table names may
// not contain '/'.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens a badger database in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func columnsKey(table string) []byte {
	return []byte("c/" + table)
}

func rowPrefix(table string) []byte {
	return []byte("t/" + table + "/")
}

func rowKey(table string, seq uint64) []byte {
	key := rowPrefix(table)
	return binary.BigEndian.AppendUint64(key, seq)
}

func checkBadgerTable(table string) error {
	if table == "" || strings.Contains(table, "/") {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// ScanTable reads every row of table.
func (b *Badger) ScanTable(_ context.Context, table string) (*Table, error) {
	if err := checkBadgerTable(table); err != nil {
		return nil, err
	}
	out := &Table{}
	err := b.db.View(func(txn *badger.Txn) error {
		columns, err := readColumns(txn, table)
		if err != nil {
			return err
		}
		out.Columns = columns

		prefix := rowPrefix(table)
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var stored map[string]badgerCell
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return fmt.Errorf("decode row of %q: %w", table, err)
			}
			cells := make([]ir.Value, len(columns))
			for i, c := range columns {
				v, err := stored[c].value()
				if err != nil {
					return fmt.Errorf("decode %q.%q: %w", table, c, err)
				}
				cells[i] = v
			}
			out.Rows = append(out.Rows, cells)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readColumns(txn *badger.Txn, table string) ([]string, error) {
	item, err := txn.Get(columnsKey(table))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("scan %q: %w", table, ErrNoTable)
	}
	if err != nil {
		return nil, fmt.Errorf("read columns of %q: %w", table, err)
	}
	var columns []string
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &columns)
	}); err != nil {
		return nil, fmt.Errorf("decode columns of %q: %w", table, err)
	}
	return columns, nil
}

// CreateTable records table's columns, adding any it is missing.
func (b *Badger) CreateTable(_ context.Context, table string, columns []string) error {
	if err := checkBadgerTable(table); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		existing, err := readColumns(txn, table)
		if err != nil && !errors.Is(err, ErrNoTable) {
			return err
		}
		for _, c := range columns {
			if !slices.Contains(existing, c) {
				existing = append(existing, c)
			}
		}
		data, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		return txn.Set(columnsKey(table), data)
	})
}

// InsertRows appends rows after the last stored row of table.
func (b *Badger) InsertRows(_ context.Context, table string, columns []string, rows [][]ir.Value) error {
	if err := checkBadgerTable(table); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		known, err := readColumns(txn, table)
		if err != nil {
			return fmt.Errorf("insert into %q: %w", table, err)
		}
		for _, c := range columns {
			if !slices.Contains(known, c) {
				return fmt.Errorf("insert into %q: unknown column %q", table, c)
			}
		}

		seq, err := nextSeq(txn, table)
		if err != nil {
			return err
		}
		for n, r := range rows {
			if len(r) != len(columns) {
				return fmt.Errorf("insert into %q: row %d has %d cells, want %d", table, n, len(r), len(columns))
			}
			row := make(map[string]badgerCell, len(columns))
			for i, c := range columns {
				cell, err := newBadgerCell(r[i])
				if err != nil {
					return fmt.Errorf("insert into %q: row %d column %q: %w", table, n, c, err)
				}
				row[c] = cell
			}
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode row %d of %q: %w", n, table, err)
			}
			if err := txn.Set(rowKey(table, seq), data); err != nil {
				return err
			}
			seq++
		}
		return nil
	})
}

// nextSeq returns one past the highest stored seq of table.
func nextSeq(txn *badger.Txn, table string) (uint64, error) {
	prefix := rowPrefix(table)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = true
	iter := txn.NewIterator(opts)
	defer iter.Close()

	// Reverse iteration seeks to the largest key <= seek.
	seek := append(slices.Clone(prefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	iter.Seek(seek)
	if !iter.ValidForPrefix(prefix) {
		return 0, nil
	}
	key := iter.Item().Key()
	if len(key) != len(prefix)+8 {
		return 0, fmt.Errorf("malformed row key %q", key)
	}
	return binary.BigEndian.Uint64(key[len(prefix):]) + 1, nil
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerCell is the stored form of one scalar. Doubles are kept as text so
// NaN and the infinities round-trip.
type badgerCell struct {
	Kind  string `json:"k"`
	Value string `json:"v,omitempty"`
}

func newBadgerCell(v ir.Value) (badgerCell, error) {
	switch v := v.(type) {
	case nil, ir.Null:
		return badgerCell{Kind: "null"}, nil
	case ir.Int:
		return badgerCell{Kind: "int", Value: strconv.FormatInt(int64(v), 10)}, nil
	case ir.Double:
		return badgerCell{Kind: "double", Value: strconv.FormatFloat(float64(v), 'g', -1, 64)}, nil
	case ir.String:
		return badgerCell{Kind: "string", Value: string(v)}, nil
	case ir.Boolean:
		return badgerCell{Kind: "bool", Value: strconv.FormatBool(bool(v))}, nil
	}
	return badgerCell{}, fmt.Errorf("unsupported cell value %s", v.Kind())
}

func (c badgerCell) value() (ir.Value, error) {
	switch c.Kind {
	case "", "null":
		return ir.Null{}, nil
	case "int":
		i, err := strconv.ParseInt(c.Value, 10, 64)
		return ir.Int(i), err
	case "double":
		f, err := strconv.ParseFloat(c.Value, 64)
		return ir.Double(f), err
	case "string":
		return ir.String(c.Value), nil
	case "bool":
		b, err := strconv.ParseBool(c.Value)
		return ir.Boolean(b), err
	}
	return nil, fmt.Errorf("unknown cell kind %q", c.Kind)
}
