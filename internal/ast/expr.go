package ast

import (
	"strconv"
	"strings"
)

// Expr is a sealed interface over expression nodes.
type Expr interface {
	exprNode()

	// String renders the canonical text form of the expression.
	String() string

	// Precedence is the binding strength of the node, used to decide where
	// String needs parentheses. Higher binds tighter.
	Precedence() int
}

// Binding strengths, loosest first.
const (
	PrecOr = iota + 1
	PrecXor
	PrecAnd
	PrecNot
	PrecComparison
	PrecAdditive
	PrecMultiplicative
	PrecPower
	PrecUnary
	PrecProperty
	PrecAtom
)

// Variable references a name bound by a pattern.
type Variable struct {
	Name string
}

// Number is a numeric literal. Raw keeps the source spelling (decimal or
// 0x-prefixed hex); Value is its float64 value.
type Number struct {
	Value float64
	Raw   string
}

// String is a quoted string literal. No escape sequences are processed.
type String struct {
	Value string
}

// Bool is `true` or `false`.
type Bool struct {
	Value bool
}

// PropertyLookup is `subject.property`.
type PropertyLookup struct {
	Subject  Expr
	Property string
}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	Not
)

// Unary applies a prefix operator.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// BinaryOp is an infix operator.
type BinaryOp int

const (
	Or BinaryOp = iota
	Xor
	And
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	Add
	Subtract
	Multiply
	Divide
	Power
)

// Binary applies an infix operator.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (Variable) exprNode()       {}
func (Number) exprNode()         {}
func (String) exprNode()         {}
func (Bool) exprNode()           {}
func (PropertyLookup) exprNode() {}
func (Unary) exprNode()          {}
func (Binary) exprNode()         {}

func (Variable) Precedence() int       { return PrecAtom }
func (Number) Precedence() int         { return PrecAtom }
func (String) Precedence() int         { return PrecAtom }
func (Bool) Precedence() int           { return PrecAtom }
func (PropertyLookup) Precedence() int { return PrecProperty }

func (u Unary) Precedence() int {
	if u.Op == Not {
		return PrecNot
	}
	return PrecUnary
}

func (b Binary) Precedence() int { return b.Op.Precedence() }

var binaryOps = [...]struct {
	symbol string
	prec   int
}{
	Or:           {"OR", PrecOr},
	Xor:          {"XOR", PrecXor},
	And:          {"AND", PrecAnd},
	Equal:        {"=", PrecComparison},
	NotEqual:     {"<>", PrecComparison},
	Less:         {"<", PrecComparison},
	LessEqual:    {"<=", PrecComparison},
	Greater:      {">", PrecComparison},
	GreaterEqual: {">=", PrecComparison},
	Add:          {"+", PrecAdditive},
	Subtract:     {"-", PrecAdditive},
	Multiply:     {"*", PrecMultiplicative},
	Divide:       {"/", PrecMultiplicative},
	Power:        {"^", PrecPower},
}

// Symbol returns the canonical spelling of the operator.
func (op BinaryOp) Symbol() string { return binaryOps[op].symbol }

// Precedence returns the binding strength of the operator.
func (op BinaryOp) Precedence() int { return binaryOps[op].prec }

func (v Variable) String() string { return v.Name }

func (n Number) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// String renders single-quoted text, switching to double quotes when the
// value itself contains a single quote.
func (s String) String() string {
	if strings.ContainsRune(s.Value, '\'') {
		return `"` + s.Value + `"`
	}
	return "'" + s.Value + "'"
}

func (b Bool) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func (p PropertyLookup) String() string {
	return wrap(p.Subject, PrecProperty) + "." + p.Property
}

func (u Unary) String() string {
	switch u.Op {
	case Not:
		return "NOT " + wrap(u.Operand, PrecNot)
	case UnaryMinus:
		return "-" + wrap(u.Operand, PrecUnary)
	default:
		return "+" + wrap(u.Operand, PrecUnary)
	}
}

// String renders `left op right`. Chains associate to the left, so a right
// operand of equal strength is parenthesized. Comparisons do not chain at
// all, so both sides are parenthesized at equal strength.
func (b Binary) String() string {
	prec := b.Op.Precedence()
	leftMin := prec
	if prec == PrecComparison {
		leftMin = prec + 1
	}
	return wrap(b.Left, leftMin) + " " + b.Op.Symbol() + " " + wrap(b.Right, prec+1)
}

// wrap renders e, parenthesized when it binds looser than min.
func wrap(e Expr, min int) string {
	if e.Precedence() < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}
