package queryir

import (
	"strconv"
	"strings"
)

// RelExpr is a relational operator in the logical plan.
//
// This is a sealed interface - only types in this package implement it.
type RelExpr interface {
	relNode() // Marker method - seals interface to this package

	// Children returns the inputs of the operator, left to right.
	Children() []RelExpr
}

// NodeScan reads every row of the table backing Label and binds each row,
// as an object of its columns, to Variable.
//
// An empty Label scans every node label known to the catalog.
type NodeScan struct {
	Variable string
	Label    string
}

// Expand extends each input row by one relationship hop.
//
// For every input row, relationship rows whose "start" column equals the
// "id" of the object bound to Start are bound to Rel; then end-node rows
// whose "id" equals the relationship's "end" column are bound to End.
//
// Example, for (a)-[r:KNOWS]->(b:Person):
//
//	Expand{Start: "a", Rel: "r", RelType: "KNOWS", End: "b", EndLabel: "Person"}
type Expand struct {
	Input    RelExpr
	Start    string
	Rel      string
	RelType  string
	End      string
	EndLabel string
}

// Join is the Cartesian product of two independent sub-plans. Variable
// names that appear on both sides are not reconciled.
type Join struct {
	Left  RelExpr
	Right RelExpr
}

// Selection keeps the input rows for which every predicate evaluates to
// true. Predicates is a conjunction; the builder currently emits a single
// element holding the whole WHERE expression.
type Selection struct {
	Input      RelExpr
	Predicates []ScalarExpr
}

// Projection computes output columns.
//
// With Star set, each item is added to a copy of the input row (existing
// bindings are kept, equal names are overwritten). Otherwise each output
// row holds exactly the listed aliases.
type Projection struct {
	Input RelExpr
	Items []ProjectItem
	Star  bool
}

// ProjectItem is one `expr AS alias` column.
type ProjectItem struct {
	Expr  ScalarExpr
	Alias string
}

func (*NodeScan) relNode()   {}
func (*Expand) relNode()     {}
func (*Join) relNode()       {}
func (*Selection) relNode()  {}
func (*Projection) relNode() {}

func (*NodeScan) Children() []RelExpr     { return nil }
func (e *Expand) Children() []RelExpr     { return []RelExpr{e.Input} }
func (j *Join) Children() []RelExpr       { return []RelExpr{j.Left, j.Right} }
func (s *Selection) Children() []RelExpr  { return []RelExpr{s.Input} }
func (p *Projection) Children() []RelExpr { return []RelExpr{p.Input} }

// internalPrefix marks variable names generated for anonymous pattern
// elements. It contains a space, so it can never collide with a parsed name.
const internalPrefix = "  "

// InternalName returns the generated variable name for an anonymous node or
// relationship at index i of a pattern.
func InternalName(kind string, pattern, i int) string {
	return internalPrefix + kind + "_" + strconv.Itoa(pattern) + "_" + strconv.Itoa(i)
}

// IsInternalName reports whether name was generated by InternalName.
func IsInternalName(name string) bool {
	return strings.HasPrefix(name, internalPrefix)
}
