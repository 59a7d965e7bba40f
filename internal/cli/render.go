package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/miles-bartnik/tyr/internal/build"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	ProjectFlags
	Output      string
	Incremental bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render [schema-dir]",
		Short: "Render the SQL a build would run",
		Long: `Render the statements of a full rebuild as a SQL script, in build
order: namespace, extensions, then DROP and CREATE per table. Nothing is
sent to a database.

With --format json the plan is printed with per-table statement
fingerprints.

Examples:
  tyr render ./schema --dialect postgres
  tyr render ./schema -o build.sql`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, opts, cmd, args)
		},
	}
	opts.bindDialect(cmd)
	opts.bindTargets(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the script to a file")
	cmd.Flags().BoolVar(&opts.Incremental, "incremental", false, "render the incremental setup (no namespace drop)")

	return cmd
}

func runRender(opts *RootOptions, ropts *RenderOptions, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts, cmd)

	proj, res, err := loadProject(opts, &ropts.ProjectFlags, cmd, args, formatter)
	if err != nil {
		return err
	}

	bopts := proj.builderOptions()
	if ropts.Incremental {
		bopts = append(bopts, build.WithMode(build.Incremental))
	} else {
		bopts = append(bopts, build.WithMode(build.FullRebuild))
	}
	plan, err := build.New(nil, bopts...).Plan(res.Schema)
	if err != nil {
		return analysisFailure(formatter, err)
	}

	script := plan.Script()
	if ropts.Output != "" {
		if err := os.WriteFile(ropts.Output, []byte(script), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote %d statement(s) to %s", len(plan.Statements()), ropts.Output)
	}

	if formatter.JSON() {
		return formatter.Success(plan)
	}
	if ropts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Rendered %d table(s) for %s to %s\n", len(plan.Steps), plan.Dialect, ropts.Output)
		return nil
	}
	fmt.Fprint(formatter.Writer, script)
	return nil
}
