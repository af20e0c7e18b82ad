package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/relgraph/internal/ir"
)

func intp(n int) *int { return &n }

func TestCheckExpect_Error(t *testing.T) {
	step := QueryStep{Name: "q", Expect: Expect{Error: "PARSE_ERROR"}}

	assert.Empty(t, checkExpect(step, QueryOutcome{ErrorCode: "PARSE_ERROR", Error: "PARSE_ERROR: bad"}))

	errs := checkExpect(step, QueryOutcome{ErrorCode: "STORE_ERROR", Error: "STORE_ERROR: scan"})
	assert.Equal(t, []string{"expected error PARSE_ERROR, got STORE_ERROR: scan"}, errs)

	errs = checkExpect(step, QueryOutcome{Docs: []ir.Row{{}}})
	assert.Equal(t, []string{"expected error PARSE_ERROR, got 1 docs"}, errs)
}

func TestCheckExpect_UnexpectedError(t *testing.T) {
	step := QueryStep{Name: "q", Expect: Expect{Count: intp(0)}}
	errs := checkExpect(step, QueryOutcome{ErrorCode: "EXECUTION_ERROR", Error: "EXECUTION_ERROR: boom"})
	assert.Equal(t, []string{"unexpected error: EXECUTION_ERROR: boom"}, errs)
}

func TestCheckExpect_Count(t *testing.T) {
	step := QueryStep{Expect: Expect{Count: intp(2)}}
	assert.Empty(t, checkExpect(step, QueryOutcome{Docs: []ir.Row{{}, {}}}))
	assert.Equal(t, []string{"expected 2 docs, got 1"}, checkExpect(step, QueryOutcome{Docs: []ir.Row{{}}}))
}

func TestCheckExpect_NoExpectation(t *testing.T) {
	assert.Empty(t, checkExpect(QueryStep{}, QueryOutcome{Docs: []ir.Row{{"a": ir.Int(1)}}}))
}

func TestCheckExpect_EmptyDocs(t *testing.T) {
	step := QueryStep{Expect: Expect{Docs: []map[string]any{}}}
	assert.Empty(t, checkExpect(step, QueryOutcome{}))
	assert.Len(t, checkExpect(step, QueryOutcome{Docs: []ir.Row{{}}}), 1)
}

func TestCheckExpect_BadExpectedValue(t *testing.T) {
	step := QueryStep{Expect: Expect{Docs: []map[string]any{{"x": struct{}{}}}}}
	errs := checkExpect(step, QueryOutcome{Docs: []ir.Row{{}}})
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], `expected doc 0 field "x"`)
}

func TestCompareDocs_Ordered(t *testing.T) {
	want := []ir.Row{{"n": ir.String("a")}, {"n": ir.String("b")}}

	assert.Empty(t, compareDocs(want, []ir.Row{{"n": ir.String("a")}, {"n": ir.String("b")}}, false))
	assert.Equal(t, `doc 0: expected {"n":"a"}, got {"n":"b"}`,
		compareDocs(want, []ir.Row{{"n": ir.String("b")}, {"n": ir.String("a")}}, false))
}

func TestCompareDocs_Unordered(t *testing.T) {
	want := []ir.Row{{"n": ir.String("a")}, {"n": ir.String("a")}, {"n": ir.String("b")}}

	got := []ir.Row{{"n": ir.String("b")}, {"n": ir.String("a")}, {"n": ir.String("a")}}
	assert.Empty(t, compareDocs(want, got, true))

	// Multiset semantics: one "a" cannot satisfy two expectations.
	got = []ir.Row{{"n": ir.String("b")}, {"n": ir.String("a")}, {"n": ir.String("b")}}
	assert.Contains(t, compareDocs(want, got, true), `expected doc {"n":"a"} not in result`)
}

func TestCompareDocs_Length(t *testing.T) {
	msg := compareDocs([]ir.Row{{}}, nil, false)
	assert.Equal(t, "expected 1 docs, got 0: null", msg)
}

func TestCompareDocs_KindsDiffer(t *testing.T) {
	want := []ir.Row{{"n": ir.Int(1)}}
	got := []ir.Row{{"n": ir.Double(1)}}
	assert.NotEmpty(t, compareDocs(want, got, false))
}

func TestExpectedRows(t *testing.T) {
	rows, err := expectedRows([]map[string]any{
		{"name": "Alice", "age": 30, "score": 1.5, "tags": []any{"a"}, "gone": nil},
	})
	assert.NoError(t, err)
	assert.Equal(t, []ir.Row{{
		"name":  ir.String("Alice"),
		"age":   ir.Int(30),
		"score": ir.Double(1.5),
		"tags":  ir.Array{ir.String("a")},
		"gone":  ir.Null{},
	}}, rows)
}
