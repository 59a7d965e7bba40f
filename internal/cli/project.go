package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/dialect"
)

// ProjectFlags are the config overrides shared by schema commands. A flag
// only overrides the config when it was set on the command line.
type ProjectFlags struct {
	Dialect string
	Driver  string
	DSN     string
	Mode    string
	Policy  string
	Targets []string
}

func (p *ProjectFlags) bindDialect(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.Dialect, "dialect", "", "SQL dialect (duckdb|postgres|sqlite); defaults to the driver's")
}

func (p *ProjectFlags) bindTargets(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&p.Targets, "target", "t", nil, "limit to these tables and their dependencies")
}

func (p *ProjectFlags) bindEngine(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.Driver, "driver", "", "database driver (sqlite3|sqlite|duckdb|pgx)")
	cmd.Flags().StringVar(&p.DSN, "db", "", "database DSN; empty opens an in-memory database")
	cmd.Flags().StringVar(&p.Mode, "mode", "", "build mode (full_rebuild|incremental)")
	cmd.Flags().StringVar(&p.Policy, "policy", "", "failure policy (fail_fast|skip_errors)")
}

// Project is a resolved command environment.
type Project struct {
	Config  *Config
	Dir     string
	Dialect *dialect.Dialect
}

// resolveProject loads the config, applies set flags and the optional
// schema directory argument, and validates the result.
func resolveProject(opts *RootOptions, flags *ProjectFlags, cmd *cobra.Command, args []string) (*Project, error) {
	cfg, err := ResolveConfig(opts.Config)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("dialect") {
		cfg.Dialect = flags.Dialect
	}
	if changed("driver") {
		cfg.Database.Driver = flags.Driver
	}
	if changed("db") {
		cfg.Database.DSN = flags.DSN
	}
	if changed("mode") {
		cfg.Mode = flags.Mode
	}
	if changed("policy") {
		cfg.Policy = flags.Policy
	}
	if changed("target") {
		cfg.Targets = flags.Targets
	}
	if len(args) > 0 {
		cfg.Specs = args[0]
	}

	d, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &Project{Config: cfg, Dir: cfg.Specs, Dialect: d}, nil
}

// builderOptions returns the build options the project config selects.
// Mode and policy were checked by Config.Validate.
func (p *Project) builderOptions() []build.Option {
	mode, _ := build.ParseMode(p.Config.Mode)
	policy, _ := build.ParsePolicy(p.Config.Policy)
	return []build.Option{
		build.WithDialect(p.Dialect),
		build.WithMode(mode),
		build.WithPolicy(policy),
		build.WithTargets(p.Config.Targets...),
	}
}

// loadProject resolves the project and compiles its schema, reporting
// failures through f.
func loadProject(opts *RootOptions, flags *ProjectFlags, cmd *cobra.Command, args []string, f *OutputFormatter) (*Project, *LoadResult, error) {
	proj, err := resolveProject(opts, flags, cmd, args)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	res, err := LoadSchema(proj.Dir)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			return nil, nil, f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		msg := le.Message
		var details any
		if le.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", le.Pos.Filename(), le.Pos.Line(), le.Pos.Column(), le.Message)
			details = map[string]any{"file": le.Pos.Filename(), "line": le.Pos.Line(), "column": le.Pos.Column()}
		}
		return nil, nil, f.Fail(ExitCommandError, le.Code, msg, details)
	}
	f.VerboseLog("Loaded %d table(s) from %d CUE file(s) in %s", res.Schema.Len(), res.FileCount, proj.Dir)
	return proj, res, nil
}
