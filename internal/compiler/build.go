// Package compiler builds logical plans from parsed queries.
//
// Build decomposes each MATCH pattern into directed paths and lays each path
// out as a NodeScan followed by one Expand per hop. Independent paths are
// combined with a Cartesian Join, the WHERE predicate becomes a Selection,
// and the RETURN clause becomes a Projection.
package compiler

import (
	"github.com/roach88/relgraph/internal/ast"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
)

// Build converts a parsed query into a logical plan.
//
// Build fails with an UNSUPPORTED error for queries with more than one
// union, a reading clause other than MATCH, ORDER BY/SKIP/LIMIT, node
// patterns with more than one label, or relationship patterns with more
// than one type.
func Build(q *ast.Query) (queryir.RelExpr, error) {
	if q == nil {
		return nil, qerr.NewUnsupported("empty query")
	}
	if len(q.Unions) != 1 {
		return nil, qerr.NewUnsupported("query with %d unions", len(q.Unions))
	}
	if len(q.Order) > 0 || q.Skip != nil || q.Limit != nil {
		return nil, qerr.NewUnsupported("ORDER BY, SKIP and LIMIT")
	}
	return buildUnion(q.Unions[0])
}

func buildUnion(u ast.Union) (queryir.RelExpr, error) {
	var m ast.Match
	switch clause := u.Reading.(type) {
	case ast.Match:
		m = clause
	case *ast.Match:
		m = *clause
	default:
		return nil, qerr.NewUnsupported("reading clause %T", u.Reading)
	}

	plan, err := buildMatch(m)
	if err != nil {
		return nil, err
	}
	return buildProjection(plan, u.Return)
}

func buildMatch(m ast.Match) (queryir.RelExpr, error) {
	if len(m.Patterns) == 0 {
		return nil, qerr.NewUnsupported("MATCH without a pattern")
	}

	var plans []queryir.RelExpr
	for i, p := range m.Patterns {
		pathPlans, err := buildPattern(i, p)
		if err != nil {
			return nil, err
		}
		plans = append(plans, pathPlans...)
	}

	plan := plans[0]
	for _, right := range plans[1:] {
		plan = &queryir.Join{Left: plan, Right: right}
	}

	if m.Where == nil {
		return plan, nil
	}
	predicate, err := BuildScalar(m.Where)
	if err != nil {
		return nil, err
	}
	return &queryir.Selection{Input: plan, Predicates: []queryir.ScalarExpr{predicate}}, nil
}

// buildPattern returns one sub-plan per start-to-sink path of the pattern.
func buildPattern(index int, p ast.Pattern) ([]queryir.RelExpr, error) {
	if len(p.Nodes) == 0 || len(p.Relationships) != len(p.Nodes)-1 {
		return nil, qerr.NewUnsupported("malformed pattern with %d nodes and %d relationships", len(p.Nodes), len(p.Relationships))
	}

	nodes := make([]namedNode, len(p.Nodes))
	for i, n := range p.Nodes {
		node, err := nameNode(index, i, n)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	rels := make([]namedNode, len(p.Relationships))
	for i, r := range p.Relationships {
		rel, err := nameRelationship(index, i, r)
		if err != nil {
			return nil, err
		}
		rels[i] = rel
	}

	var plans []queryir.RelExpr
	for _, path := range decompose(p) {
		first := nodes[path[0]]
		var plan queryir.RelExpr = &queryir.NodeScan{Variable: first.name, Label: first.label}
		for k := 1; k < len(path); k++ {
			start, end := path[k-1], path[k]
			rel := rels[min(start, end)]
			plan = &queryir.Expand{
				Input:    plan,
				Start:    nodes[start].name,
				Rel:      rel.name,
				RelType:  rel.label,
				End:      nodes[end].name,
				EndLabel: nodes[end].label,
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// namedNode is a pattern element with its variable name resolved and its
// label (or relationship type) narrowed to at most one.
type namedNode struct {
	name  string
	label string
}

func nameNode(pattern, i int, n ast.NodePattern) (namedNode, error) {
	if len(n.Labels) > 1 {
		return namedNode{}, qerr.NewUnsupported("node pattern %q with %d labels", n.Name, len(n.Labels))
	}
	out := namedNode{name: n.Name}
	if out.name == "" {
		out.name = queryir.InternalName("node", pattern, i)
	}
	if len(n.Labels) == 1 {
		out.label = n.Labels[0]
	}
	return out, nil
}

func nameRelationship(pattern, i int, r ast.RelationshipPattern) (namedNode, error) {
	if len(r.Types) > 1 {
		return namedNode{}, qerr.NewUnsupported("relationship pattern %q with %d types", r.Name, len(r.Types))
	}
	out := namedNode{name: r.Name}
	if out.name == "" {
		out.name = queryir.InternalName("rel", pattern, i)
	}
	if len(r.Types) == 1 {
		out.label = r.Types[0]
	}
	return out, nil
}

func buildProjection(input queryir.RelExpr, ret ast.Return) (queryir.RelExpr, error) {
	proj := &queryir.Projection{Input: input, Star: ret.Star}
	for _, p := range ret.Projections {
		e, err := BuildScalar(p.Expr)
		if err != nil {
			return nil, err
		}
		alias := p.Alias
		if alias == "" {
			alias = p.Expr.String()
		}
		proj.Items = append(proj.Items, queryir.ProjectItem{Expr: e, Alias: alias})
	}
	return proj, nil
}
