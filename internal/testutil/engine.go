package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/miles-bartnik/tyr/internal/store"
)

// RecordingEngine is an in-memory stand-in for the external SQL engine.
// It records every statement it is asked to execute, in order, and fails
// the ones matching a configured rule.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingEngine struct {
	mu         sync.Mutex
	statements []string
	rules      []failRule
	tables     []store.TableInfo
	listErr    error
	listCalls  int
}

type failRule struct {
	substr string
	err    error
}

// NewRecordingEngine returns an engine with no tables that accepts every
// statement.
func NewRecordingEngine() *RecordingEngine {
	return &RecordingEngine{}
}

// FailOn makes Exec return err for every statement containing substr.
// Rules are checked in the order they were added.
func (e *RecordingEngine) FailOn(substr string, err error) *RecordingEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, failRule{substr: substr, err: err})
	return e
}

// WithTables sets the tables ListTables reports for schema.
func (e *RecordingEngine) WithTables(schema string, names ...string) *RecordingEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range names {
		e.tables = append(e.tables, store.TableInfo{Schema: schema, Name: n})
	}
	return e
}

// FailListTables makes ListTables return err.
func (e *RecordingEngine) FailListTables(err error) *RecordingEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listErr = err
	return e
}

// Exec records query and applies the failure rules.
func (e *RecordingEngine) Exec(_ context.Context, query string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statements = append(e.statements, query)
	for _, r := range e.rules {
		if strings.Contains(query, r.substr) {
			return r.err
		}
	}
	return nil
}

// ListTables returns the configured tables of schema. An empty schema
// matches every table.
func (e *RecordingEngine) ListTables(_ context.Context, schema string) ([]store.TableInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listCalls++
	if e.listErr != nil {
		return nil, e.listErr
	}
	out := []store.TableInfo{}
	for _, t := range e.tables {
		if schema == "" || t.Schema == schema {
			out = append(out, t)
		}
	}
	return out, nil
}

// Statements returns a copy of every statement executed so far.
func (e *RecordingEngine) Statements() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.statements)
}

// ListCalls returns how many times ListTables was called.
func (e *RecordingEngine) ListCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listCalls
}

// Reset forgets the recorded statements. Rules and tables are kept.
func (e *RecordingEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statements = nil
	e.listCalls = 0
}
