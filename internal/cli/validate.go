package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/graph"
)

// ValidationResult summarises a valid schema.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Schema  string   `json:"schema"`
	Dialect string   `json:"dialect"`
	Tables  int      `json:"tables"`
	Edges   int      `json:"edges"`
	Order   []string `json:"order"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &ProjectFlags{}

	cmd := &cobra.Command{
		Use:   "validate [schema-dir]",
		Short: "Check a schema without touching a database",
		Long: `Compile the CUE schema, run the static IR checks, look for dependency
cycles and render every table in the selected dialect.

Exit codes:
  0 - Schema is valid
  1 - Schema compiles but is invalid (cycle, bad IR, unrenderable node)
  2 - Command error (missing directory, CUE errors, bad config)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, flags, cmd, args)
		},
	}
	flags.bindDialect(cmd)

	return cmd
}

func runValidate(opts *RootOptions, flags *ProjectFlags, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts, cmd)

	proj, res, err := loadProject(opts, flags, cmd, args, formatter)
	if err != nil {
		return err
	}

	g, err := graph.Build(res.Schema, nil)
	if err != nil {
		return analysisFailure(formatter, err)
	}

	plan, err := build.New(nil, build.WithDialect(proj.Dialect)).Plan(res.Schema)
	if err != nil {
		return analysisFailure(formatter, err)
	}

	result := ValidationResult{
		Valid:   true,
		Schema:  res.Schema.Name(),
		Dialect: proj.Dialect.Name,
		Tables:  res.Schema.Len(),
		Edges:   g.EdgeCount(),
		Order:   plan.Order,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Schema %s valid: %d table(s), %d dependency edge(s), renders in %s\n",
		result.Schema, result.Tables, result.Edges, result.Dialect)
	return nil
}

// analysisFailure reports a schema that compiled but cannot be planned.
func analysisFailure(f *OutputFormatter, err error) error {
	var details any
	if ce, ok := asCycle(err); ok {
		details = map[string]any{"path": ce.Path, "others": ce.Others}
	}
	return f.Fail(ExitFailure, AnalysisErrorCode(err), err.Error(), details)
}

func asCycle(err error) (*graph.CycleError, bool) {
	var ce *graph.CycleError
	ok := errors.As(err, &ce)
	return ce, ok
}
