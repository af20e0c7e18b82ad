package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/relgraph/internal/queryir"
)

// FormatOperator renders an operator tree the way queryir.Format renders
// logical plans.
func FormatOperator(op Operator) string {
	var b strings.Builder
	formatOperator(&b, op, 0)
	return b.String()
}

func formatOperator(b *strings.Builder, op Operator, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(describeOperator(op))
	b.WriteByte('\n')

	var child Operator
	switch op := op.(type) {
	case *Expand:
		child = op.Child
	case *Filter:
		child = op.Child
	case *Project:
		child = op.Child
	}
	if child != nil {
		formatOperator(b, child, depth+1)
	}
}

func describeOperator(op Operator) string {
	switch op := op.(type) {
	case *Scan:
		if op.Label == "" {
			return "Scan " + pattern(op.Variable, "*")
		}
		return "Scan " + pattern(op.Variable, op.Label)
	case *Expand:
		return fmt.Sprintf("Expand nested-loop %s-[%s]->%s",
			pattern(op.Start, ""), binding(op.Rel, op.RelType), pattern(op.End, op.EndLabel))
	case *Filter:
		preds := make([]string, len(op.Predicates))
		for i, p := range op.Predicates {
			preds[i] = p.String()
		}
		return "Filter [" + strings.Join(preds, " AND ") + "]"
	case *Project:
		items := make([]string, 0, len(op.Items)+1)
		if op.Star {
			items = append(items, "*")
		}
		for _, it := range op.Items {
			items = append(items, it.Alias)
		}
		return "Project [" + strings.Join(items, ", ") + "]"
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("<unknown %T>", op)
}

func pattern(name, label string) string {
	return "(" + binding(name, label) + ")"
}

func binding(name, label string) string {
	if queryir.IsInternalName(name) {
		name = ""
	}
	if label == "" {
		return name
	}
	return name + ":" + label
}
