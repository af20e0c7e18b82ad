package harness

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/roach88/relgraph/internal/ir"
)

// checkExpect returns one message per way outcome misses step's
// expectation.
func checkExpect(step QueryStep, outcome QueryOutcome) []string {
	want := step.Expect
	if want.Error != "" {
		switch {
		case outcome.ErrorCode == "":
			return []string{fmt.Sprintf("expected error %s, got %d docs", want.Error, len(outcome.Docs))}
		case outcome.ErrorCode != want.Error:
			return []string{fmt.Sprintf("expected error %s, got %s", want.Error, outcome.Error)}
		}
		return nil
	}
	if outcome.ErrorCode != "" {
		return []string{fmt.Sprintf("unexpected error: %s", outcome.Error)}
	}

	var errs []string
	if want.Count != nil && len(outcome.Docs) != *want.Count {
		errs = append(errs, fmt.Sprintf("expected %d docs, got %d", *want.Count, len(outcome.Docs)))
	}
	if want.Docs != nil {
		expected, err := expectedRows(want.Docs)
		if err != nil {
			return append(errs, err.Error())
		}
		if msg := compareDocs(expected, outcome.Docs, want.Unordered); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// expectedRows converts YAML-decoded docs into rows.
func expectedRows(docs []map[string]any) ([]ir.Row, error) {
	out := make([]ir.Row, len(docs))
	for i, doc := range docs {
		row := make(ir.Row, len(doc))
		for k, v := range doc {
			val, err := ir.FromNative(v)
			if err != nil {
				return nil, fmt.Errorf("expected doc %d field %q: %w", i, k, err)
			}
			row[k] = val
		}
		out[i] = row
	}
	return out, nil
}

// compareDocs reports the first difference between want and got. Values
// must match in kind as well as value, so Int 1 and Double 1 differ.
func compareDocs(want, got []ir.Row, unordered bool) string {
	if len(want) != len(got) {
		return fmt.Sprintf("expected %d docs, got %d: %s", len(want), len(got), render(got))
	}
	if !unordered {
		for i := range want {
			if !reflect.DeepEqual(want[i], got[i]) {
				return fmt.Sprintf("doc %d: expected %s, got %s", i, render(want[i]), render(got[i]))
			}
		}
		return ""
	}

	used := make([]bool, len(got))
	for _, w := range want {
		found := false
		for j, g := range got {
			if !used[j] && reflect.DeepEqual(w, g) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("expected doc %s not in result %s", render(w), render(got))
		}
	}
	return ""
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
