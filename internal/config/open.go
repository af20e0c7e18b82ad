package config

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/store"
)

// Backend is an opened store with the catalog that describes it.
type Backend struct {
	Store   store.Backend
	Catalog catalog.Catalog
}

// Close closes the store.
func (b *Backend) Close() error {
	return b.Store.Close()
}

// Open opens the configured store and catalog, registers the configured
// labels, and seeds the dataset when one is set. Seeding writes rows only
// to tables the store does not already hold, so reopening a persistent
// store does not duplicate them.
//
// The sqlite store keeps its catalog in the same database. The other
// backends use an in-process catalog seeded from the config, so labels
// registered at runtime last as long as the process.
func (c *Config) Open(ctx context.Context, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var b Backend
	switch c.Store.Kind {
	case StoreSQLite:
		s, err := store.OpenSQLite(c.Store.DSN)
		if err != nil {
			return nil, err
		}
		b = Backend{Store: s, Catalog: s.Catalog()}
	case StoreParquet:
		s, err := store.OpenParquet(c.Store.DSN)
		if err != nil {
			return nil, err
		}
		b = Backend{Store: s, Catalog: catalog.NewMemory()}
	case StoreBadger:
		s, err := store.OpenBadger(c.Store.DSN)
		if err != nil {
			return nil, err
		}
		b = Backend{Store: s, Catalog: catalog.NewMemory()}
	case StoreMemory:
		b = Backend{Store: store.NewMemory(), Catalog: catalog.NewMemory()}
	default:
		return nil, fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	logger.Info("store opened", "kind", c.Store.Kind, "dsn", c.Store.DSN)

	if err := c.registerLabels(ctx, b.Catalog); err != nil {
		_ = b.Close()
		return nil, err
	}

	if c.Dataset != "" {
		ds, err := store.LoadDataset(c.Dataset)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		stats, err := ds.Seed(ctx, b.Store, b.Catalog)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("load dataset %s: %w", c.Dataset, err)
		}
		logger.Info("dataset loaded", "path", c.Dataset, "labels", stats.Labels, "rows", stats.Rows)
	}
	return &b, nil
}

// registerLabels creates the configured labels in name order, so ids are
// stable across runs.
func (c *Config) registerLabels(ctx context.Context, cat catalog.Catalog) error {
	names := make([]string, 0, len(c.Labels))
	for name := range c.Labels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		l := c.Labels[name]
		if _, err := cat.CreateLabel(ctx, name, catalog.LabelKind(l.Kind), l.Table); err != nil {
			return fmt.Errorf("register label %q: %w", name, err)
		}
	}
	return nil
}
