// Package engine executes logical plans with pull-based operators.
//
// Implement lowers a plan one node at a time:
//
//	NodeScan   -> Scan
//	Expand     -> Expand (nested-loop, two stages)
//	Selection  -> Filter
//	Projection -> Project
//
// Scan and Expand materialize their output during Open. Filter and
// Project stream one row per Next call. Execution is single-threaded per
// query; nothing is shared between queries except the catalog and store.
//
// Engine wraps parse, build, lower and drain behind Query and Explain.
package engine
