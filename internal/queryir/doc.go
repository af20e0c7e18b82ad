// Package queryir defines the logical plan: a relational-algebra tree that
// describes the result of a graph query independent of how it executes.
//
// ARCHITECTURE:
//
//	[query text] → [ast] → [queryir logical plan] → [engine operators]
//
// The compiler package builds a RelExpr from an ast.Query by decomposing
// each MATCH pattern into paths. The engine package lowers the RelExpr 1:1
// into pull-based operators.
//
// RELATIONAL OPERATORS:
//
//   - NodeScan(var, label) - every row of a label's table, bound to var
//   - Expand(input, start, rel, end) - one relationship hop from start
//   - Join(left, right) - Cartesian product of two independent paths
//   - Selection(input, predicates) - rows where every predicate is true
//   - Projection(input, items, star) - computed columns
//
// SEALED INTERFACES:
//
// RelExpr and ScalarExpr are sealed interfaces using the marker method
// pattern. Consumers switch over the concrete types exhaustively:
//
//	switch rel := expr.(type) {
//	case *NodeScan:
//	case *Expand:
//	case *Join:
//	case *Selection:
//	case *Projection:
//	}
//
// Plan nodes are built once, consumed by the engine, and then discarded.
// Every node exclusively owns its children.
package queryir
