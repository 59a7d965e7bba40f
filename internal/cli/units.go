package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miles-bartnik/tyr/internal/units"
)

// ConversionResult is the output of units convert and units si.
type ConversionResult struct {
	Value  float64    `json:"value"`
	From   units.Unit `json:"from"`
	To     units.Unit `json:"to"`
	Result float64    `json:"result"`
	Plan   units.Plan `json:"plan"`
}

// NewUnitsCommand creates the units command group.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Inspect unit conversions",
		Long: `Inspect the unit registry and the conversion plans used when columns
in different units meet.

Units are written as symbols with optional prefixes and exponents, joined
by * and /: km, m/s, kg*m^2/s^2, degF.`,
	}

	cmd.AddCommand(newUnitsConvertCommand(rootOpts))
	cmd.AddCommand(newUnitsSICommand(rootOpts))
	cmd.AddCommand(newUnitsListCommand(rootOpts))
	return cmd
}

func newUnitsConvertCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "convert <value> <from> <to>",
		Short:         "Convert a value between units",
		Example:       "  tyr units convert 32 degF degC\n  tyr units convert 100 km/h m/s",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			x, from, err := parseQuantity(f, args[0], args[1])
			if err != nil {
				return err
			}
			to, err := units.Parse(args[2])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidUnit, err.Error(), nil)
			}
			plan, err := units.Resolve(from, to)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeInvalidUnit, err.Error(), nil)
			}
			return writeConversion(f, ConversionResult{Value: x, From: from, To: to, Result: plan.Apply(x), Plan: plan})
		},
	}
}

func newUnitsSICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "si <value> <unit>",
		Short:         "Convert a value into SI base units",
		Example:       "  tyr units si 1 kWh",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			x, from, err := parseQuantity(f, args[0], args[1])
			if err != nil {
				return err
			}
			plan, err := units.ResolveSI(from)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeInvalidUnit, err.Error(), nil)
			}
			return writeConversion(f, ConversionResult{Value: x, From: from, To: plan.To, Result: plan.Apply(x), Plan: plan})
		},
	}
}

func newUnitsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the registered unit symbols",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			symbols := units.Symbols()
			if f.JSON() {
				return f.Success(symbols)
			}
			fmt.Fprintln(f.Writer, strings.Join(symbols, " "))
			return nil
		},
	}
}

func parseQuantity(f *OutputFormatter, value, unit string) (float64, units.Unit, error) {
	x, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "", f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid value %q", value), nil)
	}
	u, err := units.Parse(unit)
	if err != nil {
		return 0, "", f.Fail(ExitCommandError, ErrCodeInvalidUnit, err.Error(), nil)
	}
	return x, u, nil
}

func writeConversion(f *OutputFormatter, r ConversionResult) error {
	if f.JSON() {
		return f.Success(r)
	}
	fmt.Fprintf(f.Writer, "%g %s = %g %s\n", r.Value, r.From, r.Result, r.To)
	f.VerboseLog("%s", r.Plan)
	return nil
}
