package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/relgraph/internal/catalog"
	"github.com/roach88/relgraph/internal/compiler"
	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/parser"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/queryir"
	"github.com/roach88/relgraph/internal/store"
)

// Engine runs queries against a catalog and a table store.
//
// Thread-safety: Query and Explain are safe for concurrent use as long as
// the catalog and store are. Each call builds its own plan and operators.
type Engine struct {
	catalog catalog.Catalog
	store   store.TableStore
	ids     RequestIDGenerator
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRequestIDs replaces the UUIDv7 request id generator.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock replaces time.Now for query timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine. A nil catalog resolves every label to a table of
// the same name.
func New(c catalog.Catalog, s store.TableStore, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		store:   s,
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the output of one query.
type Result struct {
	RequestID string   `json:"request_id"`
	Docs      []ir.Row `json:"docs"`
}

// Explain holds the plans a query would run.
type Explain struct {
	Logical  string `json:"logical"`
	Physical string `json:"physical,omitempty"`
}

// Query parses, plans and runs text. Results are all-or-nothing: if any
// stage fails no rows are returned. The result is non-nil even on failure
// so callers can report its RequestID.
func (e *Engine) Query(ctx context.Context, text string) (*Result, error) {
	id := e.ids.Generate()
	log := e.logger.With("request_id", id)
	start := e.now()
	log.Debug("query started", "query", text)

	docs, err := e.run(ctx, text)
	if err != nil {
		log.Warn("query failed", "code", qerr.CodeOf(err), "error", err)
		return &Result{RequestID: id}, err
	}

	log.Debug("query finished", "rows", len(docs), "duration", e.now().Sub(start))
	return &Result{RequestID: id, Docs: docs}, nil
}

func (e *Engine) run(ctx context.Context, text string) ([]ir.Row, error) {
	plan, err := e.plan(text)
	if err != nil {
		return nil, err
	}
	op, err := Implement(plan, Deps{Catalog: e.catalog, Store: e.store})
	if err != nil {
		return nil, err
	}
	return Drain(ctx, op)
}

func (e *Engine) plan(text string) (queryir.RelExpr, error) {
	q, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	plan, err := compiler.Build(q)
	if err != nil {
		return nil, err
	}
	if res := queryir.Validate(plan); !res.OK() {
		return nil, qerr.NewUnsupported("invalid plan: %s", res.Problems[0])
	}
	return plan, nil
}

// Explain returns the logical plan of text and, when it can be lowered,
// the operator tree. A plan that cannot be lowered is not an error here;
// Physical is left empty.
func (e *Engine) Explain(text string) (*Explain, error) {
	plan, err := e.plan(text)
	if err != nil {
		return nil, err
	}
	out := &Explain{Logical: queryir.Format(plan)}
	op, err := Implement(plan, Deps{Catalog: e.catalog, Store: e.store})
	switch {
	case err == nil:
		out.Physical = FormatOperator(op)
	case !qerr.IsUnsupported(err):
		return nil, err
	}
	return out, nil
}
