package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	ProjectFlags

	// RunIDs overrides the run id source (for testing). Defaults to
	// UUIDv7.
	RunIDs build.RunIDGenerator
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build [schema-dir]",
		Short: "Build the schema's tables in a database",
		Long: `Build every table of the schema in dependency order.

full_rebuild drops and recreates the schema namespace and every table.
incremental keeps the namespace and skips tables that already exist.
fail_fast stops at the first rejected statement; skip_errors records the
failure and carries on with the remaining tables.

Exit codes:
  0 - Every table built or skipped
  1 - Planning failed or one or more tables failed
  2 - Command error (bad config, schema not loadable, engine unreachable)

Examples:
  tyr build ./schema --driver duckdb --db warehouse.duckdb
  tyr build ./schema --driver sqlite3 --db dev.db --policy skip_errors
  tyr build --config tyr.yaml --mode incremental`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, opts, cmd, args)
		},
	}
	opts.bindDialect(cmd)
	opts.bindTargets(cmd)
	opts.bindEngine(cmd)

	return cmd
}

func runBuild(opts *RootOptions, bopts *BuildOptions, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts, cmd)
	logger := opts.Logger(formatter.GetErrWriter())

	proj, res, err := loadProject(opts, &bopts.ProjectFlags, cmd, args, formatter)
	if err != nil {
		return err
	}

	driver, _ := store.ParseDriver(proj.Config.Database.Driver)
	logger.Info("opening database", "driver", driver, "dsn", store.RedactDSN(proj.Config.Database.DSN))
	st, err := store.Open(driver, proj.Config.Database.DSN)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEngine, fmt.Sprintf("open %s database: %v", driver, err), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := append(proj.builderOptions(), build.WithLogger(logger))
	if bopts.RunIDs != nil {
		options = append(options, build.WithRunIDGenerator(bopts.RunIDs))
	}
	report, err := build.New(st, options...).Run(ctx, res.Schema)
	if report == nil {
		return analysisFailure(formatter, err)
	}
	if err == nil {
		err = report.Err()
	}

	if formatter.JSON() {
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeBuildTables, err.Error(), report)
		}
		return formatter.Success(report)
	}

	printReport(formatter, report)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeBuildTables, err.Error(), nil)
	}
	return nil
}

func printReport(f *OutputFormatter, r *build.Report) {
	fmt.Fprintf(f.Writer, "Run %s: schema %s (%s, %s, %s)\n", r.RunID, r.Schema, r.Dialect, r.Mode, r.Policy)
	for _, o := range r.Outcomes {
		switch o.Status {
		case build.StatusBuilt:
			fmt.Fprintf(f.Writer, "  ✓ %s\n", o.Table)
		case build.StatusSkipped:
			fmt.Fprintf(f.Writer, "  - %s (exists)\n", o.Table)
		default:
			fmt.Fprintf(f.Writer, "  ✗ %s: %s\n", o.Table, o.Error)
		}
	}
	if r.Aborted {
		fmt.Fprintln(f.Writer, "Build aborted.")
	}
	fmt.Fprintf(f.Writer, "%s in %s (%d statement(s))\n", r.Summary(), r.Duration(), r.Statements)
}
