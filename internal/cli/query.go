package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/relgraph/internal/engine"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <cypher>",
		Short: "Run one query against the configured store",
		Long: `Run one query and print the resulting documents.

Exit codes:
  0 - Query succeeded
  1 - Query failed (the error code is printed)
  2 - Command error (bad config, store unavailable)

Examples:
  relgraph query --store sqlite --dsn ./graph.db "MATCH (p:Person) RETURN p.name AS name"
  relgraph query -c relgraph.cue --format json "MATCH (a)-[:KNOWS]->(b) RETURN a, b"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], cmd)
		},
	}
}

func runQuery(opts *RootOptions, text string, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend, err := cfg.Open(ctx, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer backend.Close()

	eng := engine.New(backend.Catalog, backend.Store, engine.WithLogger(logger))
	formatter := opts.formatter(cmd)

	res, err := eng.Query(ctx, text)
	if err != nil {
		if ferr := formatter.Error(res.RequestID, err); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "query failed", err)
	}
	return formatter.Docs(res.RequestID, res.Docs)
}

// NewExplainCommand creates the explain command. Explaining needs no
// store: plans are built from the query text alone.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "explain <cypher>",
		Short:   "Print the logical and physical plan of a query",
		Example: `  relgraph explain "MATCH (a:Person)-[:KNOWS]->(b) WHERE a.id = 1 RETURN b"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}
}

func runExplain(opts *RootOptions, text string, cmd *cobra.Command) error {
	eng := engine.New(nil, nil, engine.WithLogger(opts.newLogger(cmd.ErrOrStderr())))
	formatter := opts.formatter(cmd)

	plan, err := eng.Explain(text)
	if err != nil {
		if ferr := formatter.Error("", err); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "explain failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(plan)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Logical plan:")
	fmt.Fprintln(w, plan.Logical)
	if plan.Physical != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Physical plan:")
		fmt.Fprintln(w, plan.Physical)
	}
	return nil
}
