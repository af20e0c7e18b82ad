package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/relgraph/internal/config"
	"github.com/roach88/relgraph/internal/engine"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh, empty store of the requested kind.
// Request ids are "<scenario name>-1", "<scenario name>-2", ... so
// results are reproducible.
//
// Execution flow:
// 1. Open the store and catalog
// 2. Load the dataset
// 3. Run every query, recording docs or the error
// 4. Check each outcome against its expectation
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Store:   config.StoreConfig{Kind: scenario.Store},
		Dataset: scenario.datasetPath(),
	}
	switch cfg.Store.Kind {
	case "":
		cfg.Store.Kind = config.StoreMemory
	case config.StoreSQLite:
		cfg.Store.DSN = ":memory:"
	case config.StoreParquet:
		dir, err := os.MkdirTemp("", "relgraph-scenario-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create parquet dir: %w", err)
		}
		defer os.RemoveAll(dir)
		cfg.Store.DSN = dir
	}

	backend, err := cfg.Open(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	if scenario.Data != nil {
		if _, err := scenario.Data.Load(ctx, backend.Store, backend.Catalog); err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
	}

	eng := engine.New(backend.Catalog, backend.Store,
		engine.WithRequestIDs(testutil.NewSequentialIDs(scenario.Name)),
		engine.WithClock(testutil.NewDeterministicClock(time.Millisecond).Now),
		engine.WithLogger(logger),
	)

	result := NewResult()
	for _, step := range scenario.Queries {
		outcome := QueryOutcome{Name: step.Name, Query: step.Query}
		res, err := eng.Query(ctx, step.Query)
		if res != nil {
			outcome.RequestID = res.RequestID
		}
		if err != nil {
			outcome.ErrorCode = string(qerr.CodeOf(err))
			outcome.Error = err.Error()
		} else {
			outcome.Docs = res.Docs
		}
		result.Queries = append(result.Queries, outcome)

		for _, msg := range checkExpect(step, outcome) {
			result.AddError(fmt.Sprintf("%s: %s", step.Name, msg))
		}
	}
	return result, nil
}
