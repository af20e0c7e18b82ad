// Package catalog resolves graph labels to the tables that materialize them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a label id or name is not registered.
// Callers resolving tables fall back to using the label name as the table.
var ErrNotFound = errors.New("label not found")

// ErrUnknown wraps any other catalog failure.
var ErrUnknown = errors.New("catalog failure")

// LabelKind separates node labels from relationship types.
type LabelKind string

const (
	KindNode         LabelKind = "node"
	KindRelationship LabelKind = "relationship"
)

// Valid reports whether k is a known kind.
func (k LabelKind) Valid() bool {
	return k == KindNode || k == KindRelationship
}

// LabelDesc describes one registered label.
type LabelDesc struct {
	ID    int64     `json:"id" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Kind  LabelKind `json:"kind" yaml:"kind"`
	Table string    `json:"table" yaml:"table"`
}

// Catalog is the metadata collaborator of the query engine.
//
// Resolve methods return an error wrapping ErrNotFound for unregistered
// labels and ErrUnknown for any other failure. CreateLabel of an existing
// name returns the existing descriptor.
type Catalog interface {
	ResolveLabelByID(ctx context.Context, id int64) (*LabelDesc, error)
	ResolveLabelByName(ctx context.Context, name string) (*LabelDesc, error)
	CreateLabel(ctx context.Context, name string, kind LabelKind, table string) (*LabelDesc, error)
	ListLabels(ctx context.Context, kind LabelKind) ([]LabelDesc, error)
}

// TableFor returns the table backing label. A label the catalog does not
// know is its own table name; other catalog failures are returned.
func TableFor(ctx context.Context, c Catalog, label string) (string, error) {
	if c == nil {
		return label, nil
	}
	desc, err := c.ResolveLabelByName(ctx, label)
	if errors.Is(err, ErrNotFound) {
		return label, nil
	}
	if err != nil {
		return "", err
	}
	if desc.Table == "" {
		return desc.Name, nil
	}
	return desc.Table, nil
}

// Memory is an in-process Catalog. The zero value is ready to use.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	byName map[string]*LabelDesc
	byID   map[int64]*LabelDesc
	nextID int64
}

// NewMemory creates a Memory catalog holding labels. IDs are assigned in
// order starting at 1; a zero Table defaults to the label name.
func NewMemory(labels ...LabelDesc) *Memory {
	m := &Memory{}
	for _, l := range labels {
		_, _ = m.CreateLabel(context.Background(), l.Name, l.Kind, l.Table)
	}
	return m
}

func (m *Memory) ResolveLabelByID(_ context.Context, id int64) (*LabelDesc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.byID[id]; ok {
		out := *d
		return &out, nil
	}
	return nil, fmt.Errorf("label id %d: %w", id, ErrNotFound)
}

func (m *Memory) ResolveLabelByName(_ context.Context, name string) (*LabelDesc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.byName[name]; ok {
		out := *d
		return &out, nil
	}
	return nil, fmt.Errorf("label %q: %w", name, ErrNotFound)
}

func (m *Memory) CreateLabel(_ context.Context, name string, kind LabelKind, table string) (*LabelDesc, error) {
	if name == "" {
		return nil, fmt.Errorf("create label: empty name: %w", ErrUnknown)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("create label %q: invalid kind %q: %w", name, kind, ErrUnknown)
	}
	if table == "" {
		table = name
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.byName[name]; ok {
		out := *d
		return &out, nil
	}
	if m.byName == nil {
		m.byName = make(map[string]*LabelDesc)
		m.byID = make(map[int64]*LabelDesc)
	}
	m.nextID++
	d := &LabelDesc{ID: m.nextID, Name: name, Kind: kind, Table: table}
	m.byName[name] = d
	m.byID[d.ID] = d
	out := *d
	return &out, nil
}

// ListLabels returns the labels of kind ordered by ID. An empty kind lists
// every label.
func (m *Memory) ListLabels(_ context.Context, kind LabelKind) ([]LabelDesc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LabelDesc, 0, len(m.byID))
	for _, d := range m.byID {
		if kind == "" || d.Kind == kind {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
