// Package store provides the table storage the query engine reads from.
//
// Every backend implements TableStore (unfiltered table reads) and Writer
// (table creation and row appends):
//   - Memory: in-process maps, for tests and scenarios
//   - SQLite: one SQL table per label, plus the _labels catalog table
//   - Parquet: one immutable <table>.parquet file per label
//   - Badger: rows under t/<table>/<seq> keys in a badger database
//
// Rows are returned in insertion order. Scanning a table that does not
// exist returns an error wrapping ErrNoTable.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Datasets are YAML files listing labels and their rows; Dataset.Load
// writes them through any Writer and registers the labels in a catalog.
package store
