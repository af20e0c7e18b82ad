package harness

import "github.com/roach88/relgraph/internal/ir"

// QueryOutcome is what one query produced.
type QueryOutcome struct {
	Name      string   `json:"name"`
	Query     string   `json:"query"`
	RequestID string   `json:"request_id"`
	Docs      []ir.Row `json:"docs,omitempty"`

	// ErrorCode and Error are set when the query failed.
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every query met its expectation.
	Pass bool `json:"pass"`

	// Queries holds one outcome per scenario query, in order.
	Queries []QueryOutcome `json:"queries"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryOutcome{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
