package engine

import (
	"context"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/ir"
)

// Join key columns of node and relationship tables.
const (
	IDColumn    = "id"
	StartColumn = "start"
	EndColumn   = "end"
)

// Expand extends each input row by one relationship hop.
//
// Open drains Child into an anchor set and reads the relationship and end
// node tables in full. Stage one keeps (anchor, rel) pairs where
// anchor[Start].id equals rel.start and binds Rel. Stage two keeps
// (pair, end) combinations where rel.end equals end.id and binds End.
type Expand struct {
	Child    Operator
	Start    string
	Rel      string
	RelType  string
	End      string
	EndLabel string

	deps Deps
	out  buffer
}

func (e *Expand) Open(ctx context.Context) error {
	e.out.reset()
	if err := e.Child.Open(ctx); err != nil {
		return err
	}

	var anchors []ir.Row
	for {
		row, ok, err := e.Child.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		anchors = append(anchors, row)
	}

	rels, err := readLabel(ctx, e.deps, e.RelType, catalog.KindRelationship)
	if err != nil {
		return err
	}
	ends, err := readLabel(ctx, e.deps, e.EndLabel, catalog.KindNode)
	if err != nil {
		return err
	}

	var hops []ir.Row
	for _, anchor := range anchors {
		start, ok := anchor.Get(e.Start).(ir.Object)
		if !ok {
			continue
		}
		for _, rel := range rels {
			if Equal(start.Get(IDColumn), rel.Get(StartColumn)) {
				hops = append(hops, anchor.With(e.Rel, rel))
			}
		}
	}

	var out []ir.Row
	for _, hop := range hops {
		rel := hop.Get(e.Rel).(ir.Object)
		for _, end := range ends {
			if Equal(rel.Get(EndColumn), end.Get(IDColumn)) {
				out = append(out, hop.With(e.End, end))
			}
		}
	}
	e.out.rows = out
	return nil
}

func (e *Expand) Next(context.Context) (ir.Row, bool, error) {
	row, ok := e.out.next()
	return row, ok, nil
}

func (e *Expand) Close() error {
	e.out.reset()
	if e.Child == nil {
		return nil
	}
	return e.Child.Close()
}
