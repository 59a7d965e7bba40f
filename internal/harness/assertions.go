package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/miles-bartnik/tyr/internal/build"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Statement)
			if event.Error != "" {
				fmt.Fprintf(&buf, " (error: %s)", event.Error)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// assertTables checks that exactly the given tables ended with status.
func assertTables(result *Result, status build.Status, a Assertion) error {
	var actual []string
	if result.Report != nil {
		actual = result.Report.Tables(status)
	}
	return compareTables(result, a, actual)
}

// assertOrder checks the tables the run reached, whatever their status.
func assertOrder(result *Result, a Assertion) error {
	var actual []string
	if result.Report != nil {
		for _, o := range result.Report.Outcomes {
			actual = append(actual, o.Table)
		}
	}
	return compareTables(result, a, actual)
}

func compareTables(result *Result, a Assertion, actual []string) error {
	if slices.Equal(actual, a.Tables) || (len(actual) == 0 && len(a.Tables) == 0) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%v", a.Tables),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    result.Trace,
	}
}

func assertAborted(result *Result, a Assertion) error {
	if result.Report != nil && result.Report.Aborted {
		return nil
	}
	actual := "run completed"
	if result.Report == nil {
		actual = "no run (planning failed)"
	}
	return &AssertionError{Type: a.Type, Expected: "run aborted", Actual: actual, Trace: result.Trace}
}

func assertStatementContains(result *Result, a Assertion) error {
	for _, e := range result.Trace {
		if strings.Contains(e.Statement, a.Contains) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("a statement containing %q", a.Contains),
		Actual:   fmt.Sprintf("%d statements, none matching", len(result.Trace)),
		Trace:    result.Trace,
	}
}

func assertStatementCount(result *Result, a Assertion) error {
	if len(result.Trace) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d statements", a.Count),
		Actual:   fmt.Sprintf("%d statements", len(result.Trace)),
		Trace:    result.Trace,
	}
}

func assertPlanError(result *Result, a Assertion) error {
	if result.PlanError != "" && strings.Contains(result.PlanError, a.Contains) {
		return nil
	}
	actual := "planning succeeded"
	if result.PlanError != "" {
		actual = result.PlanError
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("planning error containing %q", a.Contains),
		Actual:   actual,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertBuilt:
			err = assertTables(result, build.StatusBuilt, a)
		case AssertSkipped:
			err = assertTables(result, build.StatusSkipped, a)
		case AssertFailed:
			err = assertTables(result, build.StatusFailed, a)
		case AssertOrder:
			err = assertOrder(result, a)
		case AssertAborted:
			err = assertAborted(result, a)
		case AssertStatementContains:
			err = assertStatementContains(result, a)
		case AssertStatementCount:
			err = assertStatementCount(result, a)
		case AssertPlanError:
			err = assertPlanError(result, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
