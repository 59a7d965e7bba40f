package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/dialect"
)

// Scenario defines a build scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the directory of CUE schema files, relative to the
	// scenario file.
	Schema string `yaml:"schema"`

	// Dialect defaults to duckdb.
	Dialect string `yaml:"dialect,omitempty"`

	// Mode and Policy default to full_rebuild and fail_fast.
	Mode   string `yaml:"mode,omitempty"`
	Policy string `yaml:"policy,omitempty"`

	// Targets limits the build to these tables and their dependencies.
	Targets []string `yaml:"targets,omitempty"`

	// Existing lists the tables the engine reports as already built.
	Existing []string `yaml:"existing,omitempty"`

	// Failures make the engine reject matching statements.
	Failures []Failure `yaml:"failures,omitempty"`

	// RunID is the fixed run id. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Failure rejects every statement containing Match with Error.
type Failure struct {
	Match string `yaml:"match"`
	Error string `yaml:"error"`
}

// Assertion checks one property of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "built", "skipped", "failed": exactly these tables, in build order
	// - "order": the tables the run reached, in order
	// - "aborted": the run stopped early
	// - "statement_contains": some issued statement contains Contains
	// - "statement_count": exactly Count statements were issued
	// - "plan_error": planning failed with an error containing Contains
	Type string `yaml:"type"`

	Tables   []string `yaml:"tables,omitempty"`
	Contains string   `yaml:"contains,omitempty"`
	Count    int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBuilt             = "built"
	AssertSkipped           = "skipped"
	AssertFailed            = "failed"
	AssertOrder             = "order"
	AssertAborted           = "aborted"
	AssertStatementContains = "statement_contains"
	AssertStatementCount    = "statement_count"
	AssertPlanError         = "plan_error"
)

// LoadScenario reads and validates a scenario file. Unknown keys are
// rejected. The schema path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}
	scenario.applyDefaults()

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func (s *Scenario) applyDefaults() {
	if s.Dialect == "" {
		s.Dialect = dialect.DuckDB.Name
	}
	if s.Mode == "" {
		s.Mode = string(build.FullRebuild)
	}
	if s.Policy == "" {
		s.Policy = string(build.FailFast)
	}
	if s.RunID == "" {
		s.RunID = "test-run-default"
	}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if info, err := os.Stat(s.Schema); err != nil || !info.IsDir() {
		return fmt.Errorf("schema directory not found: %s", s.Schema)
	}
	if _, err := dialect.Lookup(s.Dialect); err != nil {
		return err
	}
	if _, err := build.ParseMode(s.Mode); err != nil {
		return err
	}
	if _, err := build.ParsePolicy(s.Policy); err != nil {
		return err
	}

	for i, f := range s.Failures {
		if f.Match == "" {
			return fmt.Errorf("failures[%d]: match is required", i)
		}
		if f.Error == "" {
			return fmt.Errorf("failures[%d]: error is required", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertBuilt, AssertSkipped, AssertFailed, AssertOrder:
		if a.Tables == nil {
			return fmt.Errorf("assertions[%d]: tables is required for %s (use [] for none)", index, a.Type)
		}
	case AssertStatementContains, AssertPlanError:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for %s", index, a.Type)
		}
	case AssertStatementCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for statement_count", index)
		}
	case AssertAborted:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
