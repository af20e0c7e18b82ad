package parser

import (
	p "github.com/vektah/goparsify"

	"github.com/roach88/relgraph/internal/ast"
)

var (
	// queryRoot is the parser called by Parse.
	queryRoot p.Parser
	// exprRoot is the parser called by ParseExpr.
	exprRoot p.Parser
)

// operand pairs an infix operator with its right-hand operand while a
// left-associative chain is being collected.
type operand struct {
	op   ast.BinaryOp
	expr ast.Expr
}

func init() {
	// If you need to debug what the parser is doing, build with -tags debug;
	// see parser_debug.go.

	var expr, not, unary p.Parser

	name := symbolicName("name")

	// Atoms.
	boolean := p.Any(
		p.Bind(keyword("TRUE"), ast.Bool{Value: true}),
		p.Bind(keyword("FALSE"), ast.Bool{Value: false}),
	)
	parens := p.Seq("(", &expr, ")").Map(child(1))
	atom := p.Any(numberLiteral(), stringLiteral(), boolean, variableName(), parens)

	// a.b.c
	property := p.Seq(atom, p.Some(p.Seq(".", name).Map(func(n *p.Result) {
		n.Result = n.Child[1].Token
	}))).Map(propertyChain)

	// -a, +a
	unary = p.Any(
		p.Seq(p.Any(
			p.Bind("-", ast.UnaryMinus),
			p.Bind("+", ast.UnaryPlus),
		), &unary).Map(unaryExpr),
		property,
	)

	power := chain(unary, p.Bind("^", ast.Power))
	multiplicative := chain(power, p.Any(
		p.Bind("*", ast.Multiply),
		p.Bind("/", ast.Divide),
	))
	additive := chain(multiplicative, p.Any(
		p.Bind("+", ast.Add),
		p.Bind("-", ast.Subtract),
	))
	// Comparisons do not chain: a = b = c is an error.
	comparison := p.Seq(additive, p.Maybe(p.Seq(comparisonOp(), additive).Map(toOperand))).Map(func(n *p.Result) {
		n.Result = n.Child[0].Result
		if o, ok := n.Child[1].Result.(operand); ok {
			n.Result = ast.Binary{Op: o.op, Left: n.Child[0].Result.(ast.Expr), Right: o.expr}
		}
	})
	not = p.Any(
		p.Seq(keyword("NOT"), &not).Map(func(n *p.Result) {
			n.Result = ast.Unary{Op: ast.Not, Operand: n.Child[1].Result.(ast.Expr)}
		}),
		comparison,
	)
	and := chain(not, p.Bind(keyword("AND"), ast.And))
	xor := chain(and, p.Bind(keyword("XOR"), ast.Xor))
	or := chain(xor, p.Bind(keyword("OR"), ast.Or))
	expr = or

	// Patterns.
	labels := p.Some(p.Seq(":", name).Map(func(n *p.Result) {
		n.Result = n.Child[1].Token
	}))
	nodePattern := p.Seq("(", p.Maybe(name), labels, ")").Map(func(n *p.Result) {
		n.Result = ast.NodePattern{
			Name:   n.Child[1].Token,
			Labels: tokens(&n.Child[2]),
		}
	})
	relDetail := p.Seq("[", p.Maybe(name), labels, "]").Map(func(n *p.Result) {
		n.Result = ast.RelationshipPattern{
			Name:  n.Child[1].Token,
			Types: tokens(&n.Child[2]),
		}
	})
	dash := runeClass("-", dashes)
	leftRel := p.Seq(runeClass("<", leftHeads), dash, p.Maybe(relDetail), dash).Map(relationship(ast.Left, 2))
	rightRel := p.Seq(dash, p.Maybe(relDetail), dash, runeClass(">", rightHeads)).Map(relationship(ast.Right, 1))
	hop := p.Seq(p.Any(leftRel, rightRel), nodePattern).Map(func(n *p.Result) {
		n.Result = n.Child
	})
	pattern := p.Seq(nodePattern, p.Some(hop)).Map(patternExpr)

	// Clauses.
	where := p.Seq(keyword("WHERE"), &expr).Map(child(1))
	match := p.Seq(keyword("MATCH"), p.Many(pattern, ","), p.Maybe(where)).Map(func(n *p.Result) {
		m := ast.Match{}
		for _, c := range n.Child[1].Child {
			if pat, ok := c.Result.(ast.Pattern); ok {
				m.Patterns = append(m.Patterns, pat)
			}
		}
		if w, ok := n.Child[2].Result.(ast.Expr); ok {
			m.Where = w
		}
		n.Result = m
	})

	alias := p.Seq(keyword("AS"), name).Map(func(n *p.Result) {
		n.Result = n.Child[1].Token
	})
	projection := p.Seq(&expr, p.Maybe(alias)).Map(func(n *p.Result) {
		e := n.Child[0].Result.(ast.Expr)
		as, ok := n.Child[1].Result.(string)
		if !ok {
			as = e.String()
		}
		n.Result = ast.Projection{Expr: e, Alias: as}
	})
	starItems := p.Seq("*", p.Some(p.Seq(",", projection).Map(child(1)))).Map(func(n *p.Result) {
		n.Result = ast.Return{Star: true, Projections: projections(&n.Child[1])}
	})
	listItems := p.Many(projection, ",").Map(func(n *p.Result) {
		n.Result = ast.Return{Projections: projections(n)}
	})
	returnClause := p.Seq(keyword("RETURN"), p.Any(starItems, listItems)).Map(child(1))

	queryRoot = p.Seq(match, returnClause, p.Maybe(";")).Map(func(n *p.Result) {
		n.Result = &ast.Query{Unions: []ast.Union{{
			Reading: n.Child[0].Result.(ast.Match),
			Return:  n.Child[1].Result.(ast.Return),
		}}}
	})
	exprRoot = expr
}

func child(idx int) func(*p.Result) {
	return func(n *p.Result) {
		n.Result = n.Child[idx].Result
	}
}

func toOperand(n *p.Result) {
	n.Result = operand{op: n.Child[0].Result.(ast.BinaryOp), expr: n.Child[1].Result.(ast.Expr)}
}

// chain matches term (op term)* and folds the matches to the left.
func chain(term p.Parserish, op p.Parserish) p.Parser {
	return p.Seq(term, p.Some(p.Seq(op, term).Map(toOperand))).Map(func(n *p.Result) {
		left := n.Child[0].Result.(ast.Expr)
		for _, c := range n.Child[1].Child {
			if o, ok := c.Result.(operand); ok {
				left = ast.Binary{Op: o.op, Left: left, Right: o.expr}
			}
		}
		n.Result = left
	})
}

func propertyChain(n *p.Result) {
	e := n.Child[0].Result.(ast.Expr)
	for _, c := range n.Child[1].Child {
		if prop, ok := c.Result.(string); ok {
			e = ast.PropertyLookup{Subject: e, Property: prop}
		}
	}
	n.Result = e
}

func unaryExpr(n *p.Result) {
	n.Result = ast.Unary{
		Op:      n.Child[0].Result.(ast.UnaryOp),
		Operand: n.Child[1].Result.(ast.Expr),
	}
}

// relationship builds the RelationshipPattern of an arrow. detail is the
// child index of the optional [...] section.
func relationship(dir ast.Direction, detail int) func(*p.Result) {
	return func(n *p.Result) {
		rel, _ := n.Child[detail].Result.(ast.RelationshipPattern)
		rel.Direction = dir
		n.Result = rel
	}
}

func patternExpr(n *p.Result) {
	pat := ast.Pattern{Nodes: []ast.NodePattern{n.Child[0].Result.(ast.NodePattern)}}
	for _, c := range n.Child[1].Child {
		hop, ok := c.Result.([]p.Result)
		if !ok {
			continue
		}
		pat.Relationships = append(pat.Relationships, hop[0].Result.(ast.RelationshipPattern))
		pat.Nodes = append(pat.Nodes, hop[1].Result.(ast.NodePattern))
	}
	n.Result = pat
}

func tokens(n *p.Result) []string {
	var out []string
	for _, c := range n.Child {
		if s, ok := c.Result.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func projections(n *p.Result) []ast.Projection {
	var out []ast.Projection
	for _, c := range n.Child {
		if proj, ok := c.Result.(ast.Projection); ok {
			out = append(out, proj)
		}
	}
	return out
}
