package engine

import (
	"context"
	"fmt"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
	"github.com/roach88/relgraph/internal/store"
)

// Operator is a pull-based physical operator.
//
// Open prepares the operator and its children. Next returns the next row;
// ok is false once the stream is exhausted and stays false on every later
// call. Close releases resources, may be called more than once, and is safe
// after a failed or partial Open.
type Operator interface {
	Open(ctx context.Context) error
	Next(ctx context.Context) (row ir.Row, ok bool, err error)
	Close() error
}

// Deps are the collaborators operators read through.
type Deps struct {
	Catalog catalog.Catalog
	Store   store.TableStore
}

// Implement lowers a logical plan 1:1 into an operator tree. Children are
// assembled before their parents. Join has no physical operator yet and
// fails with an UNSUPPORTED error.
func Implement(rel queryir.RelExpr, deps Deps) (Operator, error) {
	switch rel := rel.(type) {
	case *queryir.NodeScan:
		return &Scan{Variable: rel.Variable, Label: rel.Label, deps: deps}, nil

	case *queryir.Expand:
		child, err := Implement(rel.Input, deps)
		if err != nil {
			return nil, err
		}
		return &Expand{
			Child:    child,
			Start:    rel.Start,
			Rel:      rel.Rel,
			RelType:  rel.RelType,
			End:      rel.End,
			EndLabel: rel.EndLabel,
			deps:     deps,
		}, nil

	case *queryir.Selection:
		child, err := Implement(rel.Input, deps)
		if err != nil {
			return nil, err
		}
		return &Filter{Child: child, Predicates: rel.Predicates}, nil

	case *queryir.Projection:
		child, err := Implement(rel.Input, deps)
		if err != nil {
			return nil, err
		}
		return &Project{Child: child, Items: rel.Items, Star: rel.Star}, nil

	case *queryir.Join:
		return nil, qerr.NewUnsupported("cartesian join has no physical operator")

	case nil:
		return nil, qerr.NewUnsupported("empty plan")
	}
	return nil, qerr.NewUnsupported("plan node %T", rel)
}

// Drain opens op, collects every row and closes it. On error no rows are
// returned.
func Drain(ctx context.Context, op Operator) (rows []ir.Row, err error) {
	defer func() {
		if cerr := op.Close(); cerr != nil && err == nil {
			rows, err = nil, qerr.Wrap("close", cerr)
		}
	}()

	if err := op.Open(ctx); err != nil {
		return nil, err
	}
	rows = []ir.Row{}
	for {
		row, ok, err := op.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// buffer is the materialized output shared by Scan and Expand.
type buffer struct {
	rows []ir.Row
	pos  int
}

func (b *buffer) next() (ir.Row, bool) {
	if b.pos >= len(b.rows) {
		return nil, false
	}
	row := b.rows[b.pos]
	b.rows[b.pos] = nil
	b.pos++
	return row, true
}

func (b *buffer) reset() {
	b.rows = nil
	b.pos = 0
}

// readLabel reads the tables backing label and returns one Object per row.
// An empty label reads every label of kind the catalog lists.
func readLabel(ctx context.Context, deps Deps, label string, kind catalog.LabelKind) ([]ir.Object, error) {
	tables, err := tablesFor(ctx, deps.Catalog, label, kind)
	if err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, qerr.NewStoreError("no table store configured", nil)
	}

	var out []ir.Object
	for _, table := range tables {
		t, err := deps.Store.ScanTable(ctx, table)
		if err != nil {
			return nil, qerr.NewStoreError(fmt.Sprintf("scan %q", table), err)
		}
		out = append(out, t.Objects()...)
	}
	return out, nil
}

func tablesFor(ctx context.Context, c catalog.Catalog, label string, kind catalog.LabelKind) ([]string, error) {
	if label != "" {
		table, err := catalog.TableFor(ctx, c, label)
		if err != nil {
			return nil, qerr.NewStoreError(fmt.Sprintf("resolve label %q", label), err)
		}
		return []string{table}, nil
	}
	if c == nil {
		return nil, nil
	}

	labels, err := c.ListLabels(ctx, kind)
	if err != nil {
		return nil, qerr.NewStoreError(fmt.Sprintf("list %s labels", kind), err)
	}
	seen := make(map[string]bool, len(labels))
	var tables []string
	for _, l := range labels {
		table := l.Table
		if table == "" {
			table = l.Name
		}
		if !seen[table] {
			seen[table] = true
			tables = append(tables, table)
		}
	}
	return tables, nil
}
