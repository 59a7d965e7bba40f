package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/compiler"
	"github.com/miles-bartnik/tyr/internal/dialect"
	"github.com/miles-bartnik/tyr/internal/store"
	"github.com/miles-bartnik/tyr/internal/testutil"
)

// tracingEngine records what the wrapped engine was asked to do, with a
// sequence number from the deterministic clock.
type tracingEngine struct {
	inner build.Engine
	clock *testutil.DeterministicClock

	mu    sync.Mutex
	trace []TraceEvent
}

func (e *tracingEngine) Exec(ctx context.Context, sql string) error {
	err := e.inner.Exec(ctx, sql)

	ev := TraceEvent{Seq: e.clock.Next(), Statement: sql}
	if err != nil {
		ev.Error = err.Error()
	}
	e.mu.Lock()
	e.trace = append(e.trace, ev)
	e.mu.Unlock()
	return err
}

func (e *tracingEngine) ListTables(ctx context.Context, schema string) ([]store.TableInfo, error) {
	return e.inner.ListTables(ctx, schema)
}

// Run executes a scenario and evaluates its assertions.
//
// The returned error covers problems with the scenario itself: a schema
// that fails to compile or an unknown dialect. Build failures, including
// planning errors, are part of the result and are checked by assertions.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	schema, err := compiler.LoadDir(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	d, err := dialect.Lookup(scenario.Dialect)
	if err != nil {
		return nil, err
	}
	mode, err := build.ParseMode(scenario.Mode)
	if err != nil {
		return nil, err
	}
	policy, err := build.ParsePolicy(scenario.Policy)
	if err != nil {
		return nil, err
	}

	rec := testutil.NewRecordingEngine().WithTables(schema.Name(), scenario.Existing...)
	for _, f := range scenario.Failures {
		rec.FailOn(f.Match, errors.New(f.Error))
	}
	engine := &tracingEngine{inner: rec, clock: testutil.NewDeterministicClock()}

	builder := build.New(engine,
		build.WithDialect(d),
		build.WithMode(mode),
		build.WithPolicy(policy),
		build.WithTargets(scenario.Targets...),
		build.WithRunIDGenerator(testutil.NewFixedIDGenerator(scenario.RunID)),
		build.WithClock(testutil.NewDeterministicClock().Now),
	)

	result := NewResult()
	report, runErr := builder.Run(ctx, schema)
	result.Report = report
	if report == nil && runErr != nil {
		result.PlanError = runErr.Error()
	}

	engine.mu.Lock()
	result.Trace = append(result.Trace, engine.trace...)
	engine.mu.Unlock()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
