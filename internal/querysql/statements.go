// Package querysql builds the SQL statements the SQLite table store issues.
//
// Identifiers are always double-quoted and values are always bound through
// ? placeholders, never interpolated. Every read carries an ORDER BY so
// repeated scans return rows in the same order.
package querysql

import (
	"fmt"
	"strings"
)

// QuoteIdent quotes a table or column name for SQLite.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func checkIdent(kind, name string) error {
	if name == "" {
		return fmt.Errorf("empty %s name", kind)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%s name %q contains NUL", kind, name)
	}
	return nil
}

// SelectAll reads every row of table in insertion order.
func SelectAll(table string) (string, error) {
	if err := checkIdent("table", table); err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT * FROM %s ORDER BY rowid ASC", QuoteIdent(table)), nil
}

// TableExists takes the table name as its only parameter.
const TableExists = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

// TableColumns lists the columns of table in declaration order.
func TableColumns(table string) (string, error) {
	if err := checkIdent("table", table); err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT name FROM pragma_table_info(%s) ORDER BY cid ASC", quoteString(table)), nil
}

// CreateTable declares columns without a type so SQLite keeps each cell's
// own storage class.
func CreateTable(table string, columns []string) (string, error) {
	if err := checkIdent("table", table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("table %q has no columns", table)
	}
	cols, err := columnList(columns)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QuoteIdent(table), cols), nil
}

// AddColumn appends an untyped column to table.
func AddColumn(table, column string) (string, error) {
	if err := checkIdent("table", table); err != nil {
		return "", err
	}
	if err := checkIdent("column", column); err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", QuoteIdent(table), QuoteIdent(column)), nil
}

// Insert returns a single-row insert with one placeholder per column.
func Insert(table string, columns []string) (string, error) {
	if err := checkIdent("table", table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("insert into %q: no columns", table)
	}
	cols, err := columnList(columns)
	if err != nil {
		return "", err
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", QuoteIdent(table), cols, marks), nil
}

func columnList(columns []string) (string, error) {
	parts := make([]string, len(columns))
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		if err := checkIdent("column", c); err != nil {
			return "", err
		}
		if seen[c] {
			return "", fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
		parts[i] = QuoteIdent(c)
	}
	return strings.Join(parts, ", "), nil
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
