package queryir

import (
	"fmt"
	"strings"
)

// Format renders a plan as an indented tree, one operator per line, with
// inputs indented below their consumer. Generated variable names render
// as empty.
//
// Example:
//
//	Projection [a.name AS n]
//	  Selection [(a.id = 1)]
//	    Expand (a)-[r:KNOWS]->(b:Person)
//	      NodeScan (a:Person)
func Format(rel RelExpr) string {
	var b strings.Builder
	format(&b, rel, 0)
	return b.String()
}

func format(b *strings.Builder, rel RelExpr, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(Describe(rel))
	b.WriteByte('\n')
	for _, c := range rel.Children() {
		format(b, c, depth+1)
	}
}

// Describe renders a single operator without its inputs.
func Describe(rel RelExpr) string {
	switch r := rel.(type) {
	case *NodeScan:
		return "NodeScan " + node(r.Variable, r.Label)
	case *Expand:
		return fmt.Sprintf("Expand %s-[%s]->%s", node(r.Start, ""), labeled(r.Rel, r.RelType), node(r.End, r.EndLabel))
	case *Join:
		return "Join cartesian"
	case *Selection:
		preds := make([]string, len(r.Predicates))
		for i, p := range r.Predicates {
			preds[i] = p.String()
		}
		return "Selection [" + strings.Join(preds, ", ") + "]"
	case *Projection:
		items := make([]string, 0, len(r.Items)+1)
		if r.Star {
			items = append(items, "*")
		}
		for _, it := range r.Items {
			items = append(items, it.Expr.String()+" AS "+it.Alias)
		}
		return "Projection [" + strings.Join(items, ", ") + "]"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<unknown %T>", rel)
	}
}

func node(name, label string) string {
	return "(" + labeled(name, label) + ")"
}

func labeled(name, label string) string {
	if IsInternalName(name) {
		name = ""
	}
	if label == "" {
		return name
	}
	return name + ":" + label
}
