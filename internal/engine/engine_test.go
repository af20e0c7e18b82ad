package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relgraph/internal/ir"
	"github.com/roach88/relgraph/internal/qerr"
)

func TestQueryReturnsEveryRow(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Query(context.Background(), "MATCH (a:Person) RETURN a")
	require.NoError(t, err)
	assert.Equal(t, "req-1", res.RequestID)
	require.Len(t, res.Docs, 3)
	for _, doc := range res.Docs {
		assert.Len(t, doc, 1)
		assert.Contains(t, doc, "a")
	}
}

func TestQueryDocsJSON(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Query(context.Background(), "MATCH (a:Person) WHERE a.id = 1 RETURN a, a.name AS n")
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"request_id": "req-1",
		"docs": [{"a": {"age": 30, "id": 1, "name": "Alice"}, "n": "Alice"}]
	}`, string(data))
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  qerr.Code
	}{
		{"parse", "MATCH (a RETURN a", qerr.CodeParse},
		{"unsupported build", "MATCH (a:A:B) RETURN a", qerr.CodeUnsupported},
		{"unsupported join", "MATCH (a:Person), (c:City) RETURN a", qerr.CodeUnsupported},
		{"store", "MATCH (g:Ghost) RETURN g", qerr.CodeStore},
		{"execution", "MATCH (a:Person) WHERE a.id RETURN a", qerr.CodeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, "req-err")
			res, err := e.Query(context.Background(), tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.code, qerr.CodeOf(err))
			require.NotNil(t, res)
			assert.Equal(t, "req-err", res.RequestID)
			assert.Nil(t, res.Docs)
		})
	}
}

func TestQueryLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	deps := socialGraph(t)
	e := New(deps.Catalog, deps.Store,
		WithRequestIDs(NewFixedGenerator("req-log", "req-fail")),
		WithLogger(logger),
	)

	_, err := e.Query(context.Background(), "MATCH (a:Person) RETURN a")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "request_id=req-log")
	assert.Contains(t, buf.String(), "rows=3")

	_, err = e.Query(context.Background(), "MATCH (")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "request_id=req-fail")
	assert.Contains(t, buf.String(), "code=PARSE_ERROR")
}

func TestQueryWithoutCatalog(t *testing.T) {
	deps := socialGraph(t)
	e := New(nil, deps.Store, WithRequestIDs(NewFixedGenerator("req-1")))

	res, err := e.Query(context.Background(), "MATCH (c:cities) RETURN c.name AS name")
	require.NoError(t, err)
	assert.Equal(t, []ir.Row{{"name": ir.String("Paris")}}, res.Docs)
}

func TestExplainGolden(t *testing.T) {
	e := newTestEngine(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name  string
		query string
	}{
		{"explain_expand_filter", "MATCH (a:Person)-[r:KNOWS]->(b:Person) WHERE a.id = 1 RETURN a.name AS n, b"},
		{"explain_join", "MATCH (a:Person), (c:City) RETURN *"},
		{"explain_anonymous", "MATCH (a)-->(:City) RETURN a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Explain(tt.query)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(out.Logical+"---\n"+out.Physical))
		})
	}
}

func TestExplainErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Explain("RETURN a")
	assert.True(t, qerr.IsParseError(err))

	_, err = e.Explain("MATCH (a)-[:X:Y]->(b) RETURN a")
	assert.True(t, qerr.IsUnsupported(err))
}
