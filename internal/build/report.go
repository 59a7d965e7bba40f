package build

import (
	"errors"
	"fmt"
	"time"
)

// Status is the result of one table in a run.
type Status string

const (
	StatusBuilt   Status = "built"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one table.
type Outcome struct {
	Table       string        `json:"table"`
	Status      Status        `json:"status"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`

	err error
}

// Err returns the *StatementError of a failed outcome, nil otherwise.
func (o Outcome) Err() error {
	return o.err
}

// Report is the end-of-run summary. Outcomes are in build order; under
// FailFast the tables after the failing one are absent.
type Report struct {
	RunID      string    `json:"run_id"`
	Schema     string    `json:"schema"`
	Dialect    string    `json:"dialect"`
	Mode       Mode      `json:"mode"`
	Policy     Policy    `json:"policy"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Statements counts the statements sent to the engine.
	Statements int       `json:"statements"`
	Aborted    bool      `json:"aborted"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Tables returns the tables with the given status, in build order.
func (r *Report) Tables(status Status) []string {
	out := []string{}
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o.Table)
		}
	}
	return out
}

// Outcome returns the outcome recorded for table.
func (r *Report) Outcome(table string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Table == table {
			return o, true
		}
	}
	return Outcome{}, false
}

// Err joins the errors of every failed table. It is nil when nothing
// failed.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}
	return errors.Join(errs...)
}

// Summary returns a one-line count of outcomes.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d built, %d skipped, %d failed",
		len(r.Tables(StatusBuilt)), len(r.Tables(StatusSkipped)), len(r.Tables(StatusFailed)))
}
