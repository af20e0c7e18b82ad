package engine

import (
	"context"

	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/queryir"
)

// Project evaluates Items once per child row. With Star the results are
// added to a copy of the row, minus internal pattern variables; otherwise
// the output row holds only the item aliases.
type Project struct {
	Child Operator
	Items []queryir.ProjectItem
	Star  bool
}

func (p *Project) Open(ctx context.Context) error {
	return p.Child.Open(ctx)
}

func (p *Project) Next(ctx context.Context) (ir.Row, bool, error) {
	row, ok, err := p.Child.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}

	var out ir.Row
	if p.Star {
		out = make(ir.Row, len(row)+len(p.Items))
		for k, v := range row {
			if !queryir.IsInternalName(k) {
				out[k] = v
			}
		}
	} else {
		out = make(ir.Row, len(p.Items))
	}
	for _, item := range p.Items {
		out[item.Alias] = Eval(item.Expr, row)
	}
	return out, true, nil
}

func (p *Project) Close() error {
	if p.Child == nil {
		return nil
	}
	return p.Child.Close()
}
