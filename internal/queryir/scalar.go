package queryir

import (
	"strconv"
	"strings"
)

// ScalarExpr is an expression evaluated against one row.
//
// This is a sealed interface - only types in this package implement it.
// String renders a fully parenthesized form used by plan explanations.
type ScalarExpr interface {
	scalarNode() // Marker method - seals interface to this package
	String() string
}

// Variable is the value bound to Name in the row.
type Variable struct {
	Name string
}

// PropertyLookup is the named property of the object Subject evaluates to.
type PropertyLookup struct {
	Subject  ScalarExpr
	Property string
}

// NumberLiteral is a numeric constant. Every query number literal is a
// double, including integral and hex spellings.
type NumberLiteral struct {
	Value float64
}

// StringLiteral is a text constant.
type StringLiteral struct {
	Value string
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

// Equal compares two values for equality. Int and Double compare
// numerically; any other mix of kinds is unequal.
type Equal struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// CompareOp is a comparison other than equality.
type CompareOp int

const (
	OpNotEqual CompareOp = iota
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var compareSymbols = [...]string{
	OpNotEqual:     "<>",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
}

func (op CompareOp) String() string { return compareSymbols[op] }

// Compare applies an ordering or inequality comparison.
type Compare struct {
	Op    CompareOp
	Left  ScalarExpr
	Right ScalarExpr
}

// ArithOp is an arithmetic operator.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
)

var arithSymbols = [...]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpPower:    "^",
}

func (op ArithOp) String() string { return arithSymbols[op] }

// Arithmetic applies a binary arithmetic operator.
type Arithmetic struct {
	Op    ArithOp
	Left  ScalarExpr
	Right ScalarExpr
}

// Negate is unary minus.
type Negate struct {
	Operand ScalarExpr
}

// LogicAnd is three-valued conjunction.
type LogicAnd struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// LogicOr is three-valued disjunction.
type LogicOr struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// LogicXor is three-valued exclusive or.
type LogicXor struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// LogicNot is three-valued negation.
type LogicNot struct {
	Operand ScalarExpr
}

func (Variable) scalarNode()       {}
func (PropertyLookup) scalarNode() {}
func (NumberLiteral) scalarNode()  {}
func (StringLiteral) scalarNode()  {}
func (BoolLiteral) scalarNode()    {}
func (Equal) scalarNode()          {}
func (Compare) scalarNode()        {}
func (Arithmetic) scalarNode()     {}
func (Negate) scalarNode()         {}
func (LogicAnd) scalarNode()       {}
func (LogicOr) scalarNode()        {}
func (LogicXor) scalarNode()       {}
func (LogicNot) scalarNode()       {}

func (v Variable) String() string       { return v.Name }
func (p PropertyLookup) String() string { return p.Subject.String() + "." + p.Property }
func (n NumberLiteral) String() string  { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (b BoolLiteral) String() string    { return strconv.FormatBool(b.Value) }

func (s StringLiteral) String() string {
	if strings.ContainsRune(s.Value, '\'') {
		return `"` + s.Value + `"`
	}
	return "'" + s.Value + "'"
}

func (e Equal) String() string      { return binary(e.Left, "=", e.Right) }
func (c Compare) String() string    { return binary(c.Left, c.Op.String(), c.Right) }
func (a Arithmetic) String() string { return binary(a.Left, a.Op.String(), a.Right) }
func (l LogicAnd) String() string   { return binary(l.Left, "AND", l.Right) }
func (l LogicOr) String() string    { return binary(l.Left, "OR", l.Right) }
func (l LogicXor) String() string   { return binary(l.Left, "XOR", l.Right) }
func (n Negate) String() string     { return "(-" + n.Operand.String() + ")" }
func (n LogicNot) String() string   { return "(NOT " + n.Operand.String() + ")" }

func binary(left ScalarExpr, op string, right ScalarExpr) string {
	return "(" + left.String() + " " + op + " " + right.String() + ")"
}
