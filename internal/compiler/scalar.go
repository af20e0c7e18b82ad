package compiler

import (
	"github.com/roach88/relgraph/internal/ast"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
)

var compareOps = map[ast.BinaryOp]queryir.CompareOp{
	ast.NotEqual:     queryir.OpNotEqual,
	ast.Less:         queryir.OpLess,
	ast.LessEqual:    queryir.OpLessEqual,
	ast.Greater:      queryir.OpGreater,
	ast.GreaterEqual: queryir.OpGreaterEqual,
}

var arithOps = map[ast.BinaryOp]queryir.ArithOp{
	ast.Add:      queryir.OpAdd,
	ast.Subtract: queryir.OpSubtract,
	ast.Multiply: queryir.OpMultiply,
	ast.Divide:   queryir.OpDivide,
	ast.Power:    queryir.OpPower,
}

// BuildScalar converts an AST expression into a plan expression.
// Expression kinds without a plan form fail with an UNSUPPORTED error.
func BuildScalar(e ast.Expr) (queryir.ScalarExpr, error) {
	switch x := e.(type) {
	case ast.Variable:
		return queryir.Variable{Name: x.Name}, nil
	case ast.Number:
		return queryir.NumberLiteral{Value: x.Value}, nil
	case ast.String:
		return queryir.StringLiteral{Value: x.Value}, nil
	case ast.Bool:
		return queryir.BoolLiteral{Value: x.Value}, nil

	case ast.PropertyLookup:
		subject, err := BuildScalar(x.Subject)
		if err != nil {
			return nil, err
		}
		return queryir.PropertyLookup{Subject: subject, Property: x.Property}, nil

	case ast.Unary:
		operand, err := BuildScalar(x.Operand)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case ast.UnaryPlus:
			return operand, nil
		case ast.UnaryMinus:
			return queryir.Negate{Operand: operand}, nil
		case ast.Not:
			return queryir.LogicNot{Operand: operand}, nil
		}
		return nil, qerr.NewUnsupported("unary operator %d in %s", x.Op, x)

	case ast.Binary:
		left, err := BuildScalar(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := BuildScalar(x.Right)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case ast.Equal:
			return queryir.Equal{Left: left, Right: right}, nil
		case ast.And:
			return queryir.LogicAnd{Left: left, Right: right}, nil
		case ast.Or:
			return queryir.LogicOr{Left: left, Right: right}, nil
		case ast.Xor:
			return queryir.LogicXor{Left: left, Right: right}, nil
		}
		if op, ok := compareOps[x.Op]; ok {
			return queryir.Compare{Op: op, Left: left, Right: right}, nil
		}
		if op, ok := arithOps[x.Op]; ok {
			return queryir.Arithmetic{Op: op, Left: left, Right: right}, nil
		}
		return nil, qerr.NewUnsupported("binary operator %q in %s", x.Op.Symbol(), x)

	case nil:
		return nil, qerr.NewUnsupported("missing expression")
	default:
		return nil, qerr.NewUnsupported("expression type %T", e)
	}
}
