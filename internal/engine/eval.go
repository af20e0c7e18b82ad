package engine

import (
	"math"

	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/queryir"
)

// Eval evaluates e against row. It never fails: type mismatches, unbound
// variables and missing properties produce Null (or false for comparisons).
func Eval(e queryir.ScalarExpr, row ir.Row) ir.Value {
	switch e := e.(type) {
	case queryir.Variable:
		return row.Get(e.Name)
	case queryir.PropertyLookup:
		if obj, ok := Eval(e.Subject, row).(ir.Object); ok {
			return obj.Get(e.Property)
		}
		return ir.Null{}
	case queryir.NumberLiteral:
		return ir.Double(e.Value)
	case queryir.StringLiteral:
		return ir.String(e.Value)
	case queryir.BoolLiteral:
		return ir.Boolean(e.Value)
	case queryir.Equal:
		return ir.Boolean(Equal(Eval(e.Left, row), Eval(e.Right, row)))
	case queryir.Compare:
		return evalCompare(e.Op, Eval(e.Left, row), Eval(e.Right, row))
	case queryir.Arithmetic:
		return evalArithmetic(e.Op, Eval(e.Left, row), Eval(e.Right, row))
	case queryir.Negate:
		return negate(Eval(e.Operand, row))
	case queryir.LogicAnd:
		return and(Eval(e.Left, row), Eval(e.Right, row))
	case queryir.LogicOr:
		return or(Eval(e.Left, row), Eval(e.Right, row))
	case queryir.LogicXor:
		return xor(Eval(e.Left, row), Eval(e.Right, row))
	case queryir.LogicNot:
		return not(Eval(e.Operand, row))
	default:
		return ir.Null{}
	}
}

// Equal reports whether a and b are the same scalar. Int and Double are
// compared after widening the Int. Null, Object and Array never compare
// equal to anything, themselves included.
func Equal(a, b ir.Value) bool {
	switch a := a.(type) {
	case ir.Int:
		switch b := b.(type) {
		case ir.Int:
			return a == b
		case ir.Double:
			return float64(a) == float64(b)
		}
	case ir.Double:
		switch b := b.(type) {
		case ir.Int:
			return float64(a) == float64(b)
		case ir.Double:
			return a == b
		}
	case ir.String:
		if b, ok := b.(ir.String); ok {
			return a == b
		}
	case ir.Boolean:
		if b, ok := b.(ir.Boolean); ok {
			return a == b
		}
	}
	return false
}

// compare orders a and b. ok is false when the pair is not comparable.
// Two Ints compare exactly; a mixed numeric pair widens the Int.
func compare(a, b ir.Value) (cmp int, ok bool) {
	if x, ok := a.(ir.Int); ok {
		if y, ok := b.(ir.Int); ok {
			return cmpInt(x, y), true
		}
	}
	if x, y, ok := numbers(a, b); ok {
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		case x == y:
			return 0, true
		}
		return 0, false // NaN
	}
	switch a := a.(type) {
	case ir.String:
		if b, ok := b.(ir.String); ok {
			switch {
			case a < b:
				return -1, true
			case a > b:
				return 1, true
			}
			return 0, true
		}
	case ir.Boolean:
		if b, ok := b.(ir.Boolean); ok {
			switch {
			case a == b:
				return 0, true
			case !bool(a):
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func cmpInt(x, y ir.Int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func evalCompare(op queryir.CompareOp, a, b ir.Value) ir.Value {
	cmp, ok := compare(a, b)
	if !ok {
		return ir.Boolean(false)
	}
	switch op {
	case queryir.OpNotEqual:
		return ir.Boolean(!Equal(a, b))
	case queryir.OpLess:
		return ir.Boolean(cmp < 0)
	case queryir.OpLessEqual:
		return ir.Boolean(cmp <= 0)
	case queryir.OpGreater:
		return ir.Boolean(cmp > 0)
	case queryir.OpGreaterEqual:
		return ir.Boolean(cmp >= 0)
	}
	return ir.Boolean(false)
}

// numbers widens a numeric pair to float64.
func numbers(a, b ir.Value) (float64, float64, bool) {
	x, ok := number(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := number(b)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

func number(v ir.Value) (float64, bool) {
	switch v := v.(type) {
	case ir.Int:
		return float64(v), true
	case ir.Double:
		return float64(v), true
	}
	return 0, false
}

func evalArithmetic(op queryir.ArithOp, a, b ir.Value) ir.Value {
	if op == queryir.OpAdd {
		if x, ok := a.(ir.String); ok {
			if y, ok := b.(ir.String); ok {
				return x + y
			}
		}
	}

	if x, ok := a.(ir.Int); ok {
		if y, ok := b.(ir.Int); ok {
			return intArithmetic(op, x, y)
		}
	}

	x, y, ok := numbers(a, b)
	if !ok {
		return ir.Null{}
	}
	switch op {
	case queryir.OpAdd:
		return ir.Double(x + y)
	case queryir.OpSubtract:
		return ir.Double(x - y)
	case queryir.OpMultiply:
		return ir.Double(x * y)
	case queryir.OpDivide:
		if y == 0 {
			return ir.Null{}
		}
		return ir.Double(x / y)
	case queryir.OpPower:
		return ir.Double(math.Pow(x, y))
	}
	return ir.Null{}
}

func intArithmetic(op queryir.ArithOp, x, y ir.Int) ir.Value {
	switch op {
	case queryir.OpAdd:
		return x + y
	case queryir.OpSubtract:
		return x - y
	case queryir.OpMultiply:
		return x * y
	case queryir.OpDivide:
		if y == 0 {
			return ir.Null{}
		}
		if x == math.MinInt64 && y == -1 {
			return ir.Double(-float64(x))
		}
		return x / y
	case queryir.OpPower:
		return ir.Double(math.Pow(float64(x), float64(y)))
	}
	return ir.Null{}
}

func negate(v ir.Value) ir.Value {
	switch v := v.(type) {
	case ir.Int:
		return -v
	case ir.Double:
		return -v
	}
	return ir.Null{}
}

// truth maps a value onto three-valued logic: known is false for Null and
// for any non-boolean value.
func truth(v ir.Value) (value, known bool) {
	if b, ok := v.(ir.Boolean); ok {
		return bool(b), true
	}
	return false, false
}

func and(a, b ir.Value) ir.Value {
	x, xok := truth(a)
	y, yok := truth(b)
	switch {
	case xok && !x, yok && !y:
		return ir.Boolean(false)
	case xok && yok:
		return ir.Boolean(true)
	}
	return ir.Null{}
}

func or(a, b ir.Value) ir.Value {
	x, xok := truth(a)
	y, yok := truth(b)
	switch {
	case xok && x, yok && y:
		return ir.Boolean(true)
	case xok && yok:
		return ir.Boolean(false)
	}
	return ir.Null{}
}

func xor(a, b ir.Value) ir.Value {
	x, xok := truth(a)
	y, yok := truth(b)
	if !xok || !yok {
		return ir.Null{}
	}
	return ir.Boolean(x != y)
}

func not(v ir.Value) ir.Value {
	if x, ok := truth(v); ok {
		return ir.Boolean(!x)
	}
	return ir.Null{}
}
