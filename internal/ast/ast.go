// Package ast defines the syntax tree produced by the query parser.
//
// The tree is immutable once parsed. Every Expr renders to a canonical text
// form via String; re-parsing that text yields a structurally equal tree,
// and RETURN projections without an alias use it as their column name.
package ast

// Query is a parsed query: an ordered list of unions. Order, Skip, and Limit
// are carried for completeness but no clause in the grammar sets them.
type Query struct {
	Unions []Union
	Order  []Expr
	Skip   Expr
	Limit  Expr
}

// Union is one reading clause followed by one return clause.
type Union struct {
	Reading ReadingClause
	Return  Return
}

// ReadingClause is a sealed interface over the clauses that bind variables.
// MATCH is the only one the grammar produces.
type ReadingClause interface {
	readingClause()
}

// Match binds the variables of one or more comma-separated patterns,
// optionally filtered by Where.
type Match struct {
	Patterns []Pattern
	Where    Expr // nil when absent
}

func (Match) readingClause() {}

// Pattern is a path of alternating nodes and relationships.
// Relationships[i] connects Nodes[i] and Nodes[i+1], so
// len(Relationships) == len(Nodes)-1.
type Pattern struct {
	Nodes         []NodePattern
	Relationships []RelationshipPattern
}

// NodePattern is `(name :Label ...)`. Name is empty for anonymous nodes.
type NodePattern struct {
	Name   string
	Labels []string
}

// Direction is the arrow direction of a relationship pattern.
type Direction int

const (
	// Right is `-[]->`: Nodes[i] is the start, Nodes[i+1] the end.
	Right Direction = iota
	// Left is `<-[]-`: Nodes[i+1] is the start, Nodes[i] the end.
	Left
)

func (d Direction) String() string {
	if d == Left {
		return "Left"
	}
	return "Right"
}

// RelationshipPattern is `-[name :Type ...]->` or `<-[name :Type ...]-`.
type RelationshipPattern struct {
	Name      string
	Direction Direction
	Types     []string
}

// Return is the RETURN clause. When Star is set, Projections are merged into
// each existing row; otherwise they form the whole row.
type Return struct {
	Star        bool
	Projections []Projection
}

// Projection is `expr [AS alias]`. Alias is always set: the parser fills it
// with Expr.String() when the query omits it.
type Projection struct {
	Expr  Expr
	Alias string
}
