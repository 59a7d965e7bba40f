package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/miles-bartnik/tyr/internal/build"
)

// TraceSnapshot is the golden form of a scenario run. Timings are left
// out; the run id comes from the scenario.
type TraceSnapshot struct {
	ScenarioName string            `json:"scenario_name"`
	RunID        string            `json:"run_id,omitempty"`
	PlanError    string            `json:"plan_error,omitempty"`
	Aborted      bool              `json:"aborted,omitempty"`
	Trace        []TraceEvent      `json:"trace"`
	Outcomes     []SnapshotOutcome `json:"outcomes"`
}

// SnapshotOutcome is build.Outcome without its duration.
type SnapshotOutcome struct {
	Table       string       `json:"table"`
	Status      build.Status `json:"status"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Snapshot renders the golden bytes of a result.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: scenarioName,
		PlanError:    result.PlanError,
		Trace:        result.Trace,
		Outcomes:     []SnapshotOutcome{},
	}
	if snap.Trace == nil {
		snap.Trace = []TraceEvent{}
	}
	if r := result.Report; r != nil {
		snap.RunID = r.RunID
		snap.Aborted = r.Aborted
		for _, o := range r.Outcomes {
			snap.Outcomes = append(snap.Outcomes, SnapshotOutcome{
				Table:       o.Table,
				Status:      o.Status,
				Fingerprint: o.Fingerprint,
				Error:       o.Error,
			})
		}
	}

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
