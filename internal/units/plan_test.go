package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Identity(t *testing.T) {
	plan, err := Resolve(MustParse("m/s"), MustParse("m/s"))
	require.NoError(t, err)
	assert.Empty(t, plan.Steps)
	assert.True(t, plan.IsIdentity())
	assert.Equal(t, 42.0, plan.Apply(42))
}

func TestResolve_MissingUnit(t *testing.T) {
	_, err := Resolve(None, Kelvin)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingUnit)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, Kelvin, convErr.To)
	assert.Contains(t, err.Error(), "<none>")
}

func TestResolve_IncompatibleUnits(t *testing.T) {
	_, err := Resolve(MustParse("m"), MustParse("s"))
	assert.ErrorIs(t, err, ErrIncompatibleUnits)

	_, err = Resolve(Kelvin, MustParse("m"))
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestResolve_PrefixSteps(t *testing.T) {
	plan, err := Resolve(MustParse("km"), MustParse("m"))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)

	step := plan.Steps[0]
	assert.Equal(t, Unit("km^1"), step.Source)
	assert.Equal(t, Unit("m^1"), step.Target)
	assert.Equal(t, 1000.0, step.PrefixMultiplier)
	assert.Equal(t, 1.0, step.ConversionMultiplier)
	assert.Equal(t, 2500.0, plan.Apply(2.5))
}

func TestResolve_CompoundUnits(t *testing.T) {
	plan, err := Resolve(MustParse("km/h"), MustParse("m/s"))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	// h^-1 -> s^-1 first (segments are sorted), then km -> m
	assert.Equal(t, Unit("h^-1"), plan.Steps[0].Source)
	assert.Equal(t, 0.00028, plan.Steps[0].Multiplier())
	assert.Equal(t, Unit("km^1"), plan.Steps[1].Source)

	assert.InDelta(t, 28.0, plan.Apply(100), 1e-9)
}

func TestResolve_RoundsStepConstants(t *testing.T) {
	plan, err := Resolve(MustParse("m"), MustParse("ft"))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, 3.28084, plan.Steps[0].Multiplier())
}

func TestResolve_MassThroughKilogram(t *testing.T) {
	v, err := Convert(2, MustParse("kg"), MustParse("g"))
	require.NoError(t, err)
	assert.InDelta(t, 2000, v, 1e-9)

	v, err = Convert(1, MustParse("lb"), MustParse("kg"))
	require.NoError(t, err)
	assert.InDelta(t, 0.45359, v, 1e-9)
}

func TestResolveSI(t *testing.T) {
	plan, err := ResolveSI(MustParse("kWh"))
	require.NoError(t, err)
	assert.Equal(t, Unit("kg^1m^2s^-2"), plan.To)
	assert.InDelta(t, 3.6e6, plan.Apply(1), 1e-6)

	_, err = ResolveSI(None)
	assert.ErrorIs(t, err, ErrMissingUnit)
}

func TestTemperature_FreezingAndBoiling(t *testing.T) {
	c, err := Convert(32, Fahrenheit, Celsius)
	require.NoError(t, err)
	assert.InDelta(t, 0, c, 1e-9)

	f, err := Convert(100, Celsius, Fahrenheit)
	require.NoError(t, err)
	assert.InDelta(t, 212, f, 1e-9)
}

func TestTemperature_BridgeRoutes(t *testing.T) {
	plan, err := Resolve(Fahrenheit, Celsius)
	require.NoError(t, err)
	require.True(t, plan.IsAffine())

	route := []Unit{plan.Steps[0].Source}
	for _, s := range plan.Steps {
		route = append(route, s.Target)
	}
	assert.Equal(t, []Unit{Fahrenheit, Rankine, Kelvin, Celsius}, route)

	plan, err = Resolve(Celsius, Kelvin)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, 273.15, plan.Steps[0].Offset)
}

func TestTemperature_AllPairsRoundTrip(t *testing.T) {
	scales := []Unit{Fahrenheit, Celsius, Rankine, Kelvin}
	for _, a := range scales {
		for _, b := range scales {
			there, err := Convert(300, a, b)
			require.NoError(t, err)
			back, err := Convert(there, b, a)
			require.NoError(t, err)
			assert.InDelta(t, 300, back, 1e-9, "%s -> %s -> %s", a, b, a)
		}
	}
}

func TestTemperature_KelvinToSI(t *testing.T) {
	plan, err := ResolveSI(Celsius)
	require.NoError(t, err)
	assert.Equal(t, Kelvin, plan.To)
	assert.InDelta(t, 273.15, plan.Apply(0), 1e-9)
}

func TestRoundDecimal(t *testing.T) {
	assert.Equal(t, 1000.0, RoundDecimal(1000, 5))
	assert.Equal(t, 0.3048, RoundDecimal(0.3048, 5))
	assert.Equal(t, 0.00028, RoundDecimal(1.0/3600.0, 5))
	assert.Equal(t, 123456.789, RoundDecimal(123456.789, 5))
	assert.Equal(t, 0.0, RoundDecimal(1e-6, 5))
	assert.Equal(t, 0.0, RoundDecimal(0, 5))
}

func TestPlan_String(t *testing.T) {
	plan, err := Resolve(MustParse("km"), MustParse("m"))
	require.NoError(t, err)
	assert.Equal(t, "km^1 -> m^1: [km^1 -> m^1 x1000]", plan.String())

	id, err := Resolve(Kelvin, Kelvin)
	require.NoError(t, err)
	assert.Equal(t, "K^1 -> K^1: identity", id.String())
}
