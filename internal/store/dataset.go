package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/ir"
)

// Dataset is a YAML description of graph data:
//
//	labels:
//	  - name: Person
//	    kind: node
//	    rows:
//	      - {id: 1, name: Alice}
//	  - name: KNOWS
//	    kind: relationship
//	    table: knows
//	    rows:
//	      - {id: 10, start: 1, end: 2}
type Dataset struct {
	Labels []DatasetLabel `yaml:"labels"`
}

// DatasetLabel is one label and the rows of its backing table.
type DatasetLabel struct {
	Name string            `yaml:"name"`
	Kind catalog.LabelKind `yaml:"kind"`

	// Table defaults to Name.
	Table string `yaml:"table,omitempty"`

	// Columns fixes the column order. When empty the sorted union of the
	// row keys is used.
	Columns []string         `yaml:"columns,omitempty"`
	Rows    []map[string]any `yaml:"rows"`
}

// LoadDataset reads and validates a dataset file.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	defer f.Close()
	return DecodeDataset(f)
}

// DecodeDataset parses a dataset, rejecting unknown fields.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return &ds, nil
}

// Validate checks that every label is named once and has a valid kind.
func (ds *Dataset) Validate() error {
	seen := make(map[string]bool)
	for i, l := range ds.Labels {
		if l.Name == "" {
			return fmt.Errorf("labels[%d]: name is required", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("labels[%d]: duplicate label %q", i, l.Name)
		}
		seen[l.Name] = true
		if !l.Kind.Valid() {
			return fmt.Errorf("label %q: kind must be node or relationship, got %q", l.Name, l.Kind)
		}
	}
	return nil
}

// LoadStats counts what Load wrote.
type LoadStats struct {
	Labels int `json:"labels"`
	Rows   int `json:"rows"`
}

// Load registers every label in c (when c is non-nil) and writes its rows
// through w. Rows are appended to whatever the tables already hold.
func (ds *Dataset) Load(ctx context.Context, w Writer, c catalog.Catalog) (LoadStats, error) {
	return ds.load(ctx, w, c, nil)
}

// Seed is Load for a store that may already hold the dataset. Every label
// is registered, but rows go only to tables that did not exist in b before
// the call, so seeding the same store twice leaves it unchanged.
func (ds *Dataset) Seed(ctx context.Context, b Backend, c catalog.Catalog) (LoadStats, error) {
	present := make(map[string]bool)
	for _, l := range ds.Labels {
		table := l.table()
		if present[table] {
			continue
		}
		_, err := b.ScanTable(ctx, table)
		switch {
		case err == nil:
			present[table] = true
		case errors.Is(err, ErrNoTable):
		default:
			return LoadStats{}, fmt.Errorf("check table %q: %w", table, err)
		}
	}
	return ds.load(ctx, b, c, present)
}

func (ds *Dataset) load(ctx context.Context, w Writer, c catalog.Catalog, skip map[string]bool) (LoadStats, error) {
	var stats LoadStats
	for _, l := range ds.Labels {
		table := l.table()
		columns := l.columns()
		rows, err := l.cells(columns)
		if err != nil {
			return stats, err
		}

		if c != nil {
			if _, err := c.CreateLabel(ctx, l.Name, l.Kind, table); err != nil {
				return stats, fmt.Errorf("register label %q: %w", l.Name, err)
			}
		}
		if skip[table] {
			continue
		}
		if len(columns) == 0 {
			stats.Labels++
			continue
		}
		if err := w.CreateTable(ctx, table, columns); err != nil {
			return stats, fmt.Errorf("create table for %q: %w", l.Name, err)
		}
		if len(rows) > 0 {
			if err := w.InsertRows(ctx, table, columns, rows); err != nil {
				return stats, fmt.Errorf("load rows of %q: %w", l.Name, err)
			}
		}
		stats.Labels++
		stats.Rows += len(rows)
	}
	return stats, nil
}

func (l DatasetLabel) table() string {
	if l.Table == "" {
		return l.Name
	}
	return l.Table
}

func (l DatasetLabel) columns() []string {
	if len(l.Columns) > 0 {
		return l.Columns
	}
	set := make(map[string]bool)
	for _, r := range l.Rows {
		for k := range r {
			set[k] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l DatasetLabel) cells(columns []string) ([][]ir.Value, error) {
	out := make([][]ir.Value, len(l.Rows))
	for i, r := range l.Rows {
		row := make([]ir.Value, len(columns))
		for j, c := range columns {
			v, err := cellValue(r[c])
			if err != nil {
				return nil, fmt.Errorf("label %q row %d column %q: %w", l.Name, i, c, err)
			}
			row[j] = v
		}
		for k := range r {
			if !slices.Contains(columns, k) {
				return nil, fmt.Errorf("label %q row %d: column %q not declared", l.Name, i, k)
			}
		}
		out[i] = row
	}
	return out, nil
}
