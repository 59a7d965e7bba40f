package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/graph"
)

// OrderEntry is one table of the build order with its direct
// dependencies.
type OrderEntry struct {
	Table     string   `json:"table"`
	DependsOn []string `json:"depends_on"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &ProjectFlags{}

	cmd := &cobra.Command{
		Use:   "order [schema-dir]",
		Short: "Print the build order of a schema",
		Long: `Print the tables of a schema in the order a build creates them.
Tables come after everything they read from; among ready tables the one
with fewer dependents goes first, then declaration order.

Examples:
  tyr order ./schema
  tyr order ./schema --target daily --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(rootOpts, flags, cmd, args)
		},
	}
	flags.bindTargets(cmd)

	return cmd
}

func runOrder(opts *RootOptions, flags *ProjectFlags, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts, cmd)

	proj, res, err := loadProject(opts, flags, cmd, args, formatter)
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if opts.Verbose {
		logger = opts.Logger(formatter.GetErrWriter())
	}
	g, err := graph.Build(res.Schema, logger)
	if err != nil {
		return analysisFailure(formatter, err)
	}
	order, err := build.Order(g, proj.Config.Targets)
	if err != nil {
		return analysisFailure(formatter, err)
	}

	entries := make([]OrderEntry, len(order))
	for i, name := range order {
		entries[i] = OrderEntry{Table: name, DependsOn: g.Dependencies(name)}
		if entries[i].DependsOn == nil {
			entries[i].DependsOn = []string{}
		}
	}

	if formatter.JSON() {
		return formatter.Success(entries)
	}
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s", i+1, e.Table)
		if len(e.DependsOn) > 0 {
			line += " <- " + strings.Join(e.DependsOn, ", ")
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}
