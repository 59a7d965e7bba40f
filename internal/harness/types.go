package harness

import "github.com/miles-bartnik/tyr/internal/build"

// TraceEvent is one statement the engine was asked to execute.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Statement string `json:"statement"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every statement sent to the engine, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Report is nil when planning failed.
	Report *build.Report `json:"report,omitempty"`

	// PlanError is the planning error, if any.
	PlanError string `json:"plan_error,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Statements returns the traced statements in order.
func (r *Result) Statements() []string {
	out := make([]string, len(r.Trace))
	for i, e := range r.Trace {
		out[i] = e.Statement
	}
	return out
}
