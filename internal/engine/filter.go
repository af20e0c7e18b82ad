package engine

import (
	"context"

	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
)

// Filter passes on the child rows for which every predicate is true.
// False and Null drop the row; any other value fails the query.
type Filter struct {
	Child      Operator
	Predicates []queryir.ScalarExpr

	done bool
}

func (f *Filter) Open(ctx context.Context) error {
	f.done = false
	return f.Child.Open(ctx)
}

func (f *Filter) Next(ctx context.Context) (ir.Row, bool, error) {
	for !f.done {
		row, ok, err := f.Child.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			f.done = true
			break
		}
		keep, err := f.accept(row)
		if err != nil {
			return nil, false, err
		}
		if keep {
			return row, true, nil
		}
	}
	return nil, false, nil
}

func (f *Filter) accept(row ir.Row) (bool, error) {
	for _, p := range f.Predicates {
		switch v := Eval(p, row).(type) {
		case ir.Boolean:
			if !v {
				return false, nil
			}
		case ir.Null:
			return false, nil
		default:
			return false, qerr.NewExecutionError("predicate %s evaluated to %s, want boolean", p, v.Kind())
		}
	}
	return true, nil
}

func (f *Filter) Close() error {
	if f.Child == nil {
		return nil
	}
	return f.Child.Close()
}
