package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/relgraph/internal/catalog"
)

// SQLiteCatalog is a catalog.Catalog persisted in the _labels table.
type SQLiteCatalog struct {
	db *sql.DB
}

var _ catalog.Catalog = (*SQLiteCatalog)(nil)

const labelColumns = `id, name, kind, table_name`

func (c *SQLiteCatalog) ResolveLabelByID(ctx context.Context, id int64) (*catalog.LabelDesc, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM _labels WHERE id = ?`, id)
	return scanLabel(row, fmt.Sprintf("label id %d", id))
}

func (c *SQLiteCatalog) ResolveLabelByName(ctx context.Context, name string) (*catalog.LabelDesc, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM _labels WHERE name = ?`, name)
	return scanLabel(row, fmt.Sprintf("label %q", name))
}

// CreateLabel registers name. An existing label is returned unchanged.
func (c *SQLiteCatalog) CreateLabel(ctx context.Context, name string, kind catalog.LabelKind, table string) (*catalog.LabelDesc, error) {
	if name == "" {
		return nil, fmt.Errorf("create label: empty name: %w", catalog.ErrUnknown)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("create label %q: invalid kind %q: %w", name, kind, catalog.ErrUnknown)
	}
	if table == "" {
		table = name
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO _labels (name, kind, table_name) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		name, string(kind), table)
	if err != nil {
		return nil, fmt.Errorf("create label %q: %v: %w", name, err, catalog.ErrUnknown)
	}
	return c.ResolveLabelByName(ctx, name)
}

// ListLabels returns labels of kind ordered by id; an empty kind lists all.
func (c *SQLiteCatalog) ListLabels(ctx context.Context, kind catalog.LabelKind) ([]catalog.LabelDesc, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+labelColumns+` FROM _labels WHERE ? = '' OR kind = ? ORDER BY id ASC`,
		string(kind), string(kind))
	if err != nil {
		return nil, fmt.Errorf("list labels: %v: %w", err, catalog.ErrUnknown)
	}
	defer rows.Close()

	out := []catalog.LabelDesc{}
	for rows.Next() {
		var d catalog.LabelDesc
		var k string
		if err := rows.Scan(&d.ID, &d.Name, &k, &d.Table); err != nil {
			return nil, fmt.Errorf("list labels: %v: %w", err, catalog.ErrUnknown)
		}
		d.Kind = catalog.LabelKind(k)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list labels: %v: %w", err, catalog.ErrUnknown)
	}
	return out, nil
}

func scanLabel(row *sql.Row, what string) (*catalog.LabelDesc, error) {
	var d catalog.LabelDesc
	var k string
	err := row.Scan(&d.ID, &d.Name, &k, &d.Table)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", what, err, catalog.ErrUnknown)
	}
	d.Kind = catalog.LabelKind(k)
	return &d, nil
}
