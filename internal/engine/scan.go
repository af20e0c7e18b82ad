package engine

import (
	"context"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/ir"
)

// Scan binds Variable to every row of the table backing Label.
type Scan struct {
	Variable string
	Label    string

	deps Deps
	out  buffer
}

func (s *Scan) Open(ctx context.Context) error {
	s.out.reset()
	objs, err := readLabel(ctx, s.deps, s.Label, catalog.KindNode)
	if err != nil {
		return err
	}
	rows := make([]ir.Row, len(objs))
	for i, obj := range objs {
		rows[i] = ir.NewRow(s.Variable, obj)
	}
	s.out.rows = rows
	return nil
}

func (s *Scan) Next(context.Context) (ir.Row, bool, error) {
	row, ok := s.out.next()
	return row, ok, nil
}

func (s *Scan) Close() error {
	s.out.reset()
	return nil
}
