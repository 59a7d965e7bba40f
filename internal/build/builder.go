package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/miles-bartnik/tyr/internal/dialect"
	"github.com/miles-bartnik/tyr/internal/ir"
	"github.com/miles-bartnik/tyr/internal/render"
	"github.com/miles-bartnik/tyr/internal/store"
)

// Engine is the external SQL engine tables are built in.
// *store.Store implements it.
type Engine interface {
	// Exec runs one statement to completion.
	Exec(ctx context.Context, sql string) error

	// ListTables returns the tables present in schema.
	ListTables(ctx context.Context, schema string) ([]store.TableInfo, error)
}

var _ Engine = (*store.Store)(nil)

// Builder runs builds against one engine. The engine is used by one run
// at a time and statements are issued strictly in sequence.
type Builder struct {
	engine  Engine
	dialect *dialect.Dialect
	mode    Mode
	policy  Policy
	logger  *slog.Logger
	ids     RunIDGenerator
	now     func() time.Time
	targets []string
}

// New returns a Builder for engine. Defaults: DuckDB, FullRebuild,
// FailFast, UUIDv7 run ids, time.Now, no logging.
func New(engine Engine, opts ...Option) *Builder {
	b := &Builder{
		engine:  engine,
		dialect: dialect.DuckDB,
		mode:    FullRebuild,
		policy:  FailFast,
		ids:     UUIDv7Generator{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = discardLogger()
	}
	return b
}

// Run plans s and executes the plan.
//
// Planning errors (cycles, invalid or unrenderable IR) are returned with
// a nil report and no statement issued. A rejected setup statement, a
// catalog failure or, under FailFast, a rejected table statement ends the
// run: the partial report is returned with the error. Under SkipErrors
// table failures only appear in the report; see Report.Err.
func (b *Builder) Run(ctx context.Context, s *ir.Schema) (*Report, error) {
	runID := b.ids.Generate()
	log := b.logger.With("run_id", runID)

	report := &Report{
		RunID:     runID,
		Schema:    s.Name(),
		Dialect:   b.dialect.Name,
		Mode:      b.mode,
		Policy:    b.policy,
		StartedAt: b.now(),
		Outcomes:  []Outcome{},
	}

	plan, err := b.Plan(s)
	if err != nil {
		log.Error("build planning failed", "schema", s.Name(), "error", err)
		return nil, err
	}

	log.Info("build started",
		"schema", s.Name(),
		"dialect", b.dialect.Name,
		"mode", b.mode,
		"policy", b.policy,
		"tables", len(plan.Steps),
	)

	for _, stmt := range plan.Setup {
		if err := b.exec(ctx, log, report, "", stmt); err != nil {
			log.Error("build setup failed", "error", err)
			return b.abort(log, report), err
		}
	}

	existing := map[string]bool{}
	if b.mode == Incremental {
		tables, err := b.engine.ListTables(ctx, s.Name())
		if err != nil {
			log.Error("listing existing tables failed", "error", err)
			return b.abort(log, report), fmt.Errorf("list tables of %s: %w", s.Name(), err)
		}
		for _, t := range tables {
			existing[t.Name] = true
		}
	}

	for _, step := range plan.Steps {
		if existing[step.Table] {
			log.Info("table skipped", "table", step.Table, "reason", "exists")
			report.Outcomes = append(report.Outcomes, Outcome{
				Table:       step.Table,
				Status:      StatusSkipped,
				Fingerprint: step.Fingerprint,
			})
			continue
		}

		outcome, err := b.buildTable(ctx, log, report, step)
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil && b.policy == FailFast {
			return b.abort(log, report), err
		}
	}

	b.finish(log, report)
	return report, nil
}

// buildTable issues the statements of one step and stops at the first
// rejected one.
func (b *Builder) buildTable(ctx context.Context, log *slog.Logger, report *Report, step Step) (Outcome, error) {
	start := b.now()
	outcome := Outcome{Table: step.Table, Fingerprint: step.Fingerprint}

	for _, stmt := range step.Statements {
		if err := b.exec(ctx, log, report, step.Table, stmt); err != nil {
			outcome.Status = StatusFailed
			outcome.Error = err.Error()
			if se, ok := err.(*StatementError); ok {
				outcome.Error = se.Err.Error()
			}
			outcome.err = err
			outcome.Duration = b.now().Sub(start)
			log.Warn("table failed", "table", step.Table, "error", outcome.Error)
			return outcome, err
		}
	}

	outcome.Status = StatusBuilt
	outcome.Duration = b.now().Sub(start)
	log.Info("table built", "table", step.Table, "duration", outcome.Duration)
	return outcome, nil
}

// exec sends one statement. Engine errors come back as *StatementError.
func (b *Builder) exec(ctx context.Context, log *slog.Logger, report *Report, table, stmt string) error {
	report.Statements++
	log.Debug("executing statement", "table", table, "fingerprint", render.Fingerprint(stmt))
	if err := b.engine.Exec(ctx, stmt); err != nil {
		return &StatementError{Table: table, Statement: stmt, Err: err}
	}
	return nil
}

func (b *Builder) abort(log *slog.Logger, report *Report) *Report {
	report.Aborted = true
	b.finish(log, report)
	return report
}

func (b *Builder) finish(log *slog.Logger, report *Report) {
	report.FinishedAt = b.now()
	log.Info("build finished",
		"built", len(report.Tables(StatusBuilt)),
		"skipped", len(report.Tables(StatusSkipped)),
		"failed", len(report.Tables(StatusFailed)),
		"aborted", report.Aborted,
		"duration", report.Duration(),
	)
}
