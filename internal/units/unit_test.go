package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Canonicalises(t *testing.T) {
	cases := []struct {
		in   string
		want Unit
	}{
		{"K", "K^1"},
		{"K^1", "K^1"},
		{"m/s", "m^1s^-1"},
		{"m s^-1", "m^1s^-1"},
		{"s^-1 m", "m^1s^-1"},
		{"m^1s^-1", "m^1s^-1"},
		{"km*h^-1", "h^-1km^1"},
		{"m2", "m^2"},
		{"m m", "m^2"},
		{"m/m", ""},
		{"", ""},
		{"degC", "degC^1"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_UnknownSymbol(t *testing.T) {
	_, err := Parse("furlong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = Parse("m/")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = Parse("m^x")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestParse_PrefixedSymbols(t *testing.T) {
	for _, s := range []string{"km", "mm", "kg", "ms", "hPa", "kWh", "cm", "dam", "µm", "um"} {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			assert.NoError(t, err)
		})
	}

	// temperatures are not prefixable
	_, err := Parse("kK")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestReciprocal_Involution(t *testing.T) {
	for _, s := range []string{"K", "m/s", "kg m^2 s^-2", "h^-1", "mol/L", ""} {
		u := MustParse(s)
		assert.Equal(t, u, Reciprocal(Reciprocal(u)), "unit %q", s)
	}
}

func TestReciprocal_NegatesExponents(t *testing.T) {
	assert.Equal(t, Unit("m^-1s^1"), Reciprocal(MustParse("m/s")))
	assert.Equal(t, Unit("K^-1"), Reciprocal(Kelvin))
}

func TestMultiply(t *testing.T) {
	speed := MustParse("m/s")
	time := MustParse("s")

	assert.Equal(t, Unit("m^1"), Multiply(speed, time))
	assert.Equal(t, Unit("m^1s^-2"), Divide(speed, time))
	assert.Equal(t, None, Multiply(speed, Reciprocal(speed)), "full cancellation collapses to None")
	assert.Equal(t, speed, Multiply(speed, None))
	assert.Equal(t, Unit("m^2s^-2"), Pow(speed, 2))
}

func TestMultiply_Commutative(t *testing.T) {
	a := MustParse("kg m")
	b := MustParse("s^-2 m")
	assert.Equal(t, Multiply(a, b), Multiply(b, a))
}

func TestDimensionAndSI(t *testing.T) {
	si, err := SI(MustParse("km/h"))
	require.NoError(t, err)
	assert.Equal(t, Unit("m^1s^-1"), si)

	si, err = SI(MustParse("kWh"))
	require.NoError(t, err)
	assert.Equal(t, Unit("kg^1m^2s^-2"), si)

	si, err = SI(Fahrenheit)
	require.NoError(t, err)
	assert.Equal(t, Kelvin, si)

	assert.True(t, Compatible(MustParse("J"), MustParse("Wh")))
	assert.False(t, Compatible(MustParse("m"), MustParse("s")))

	_, err = SI(None)
	assert.ErrorIs(t, err, ErrMissingUnit)
}

func TestIsTemperature(t *testing.T) {
	assert.True(t, IsTemperature(Celsius))
	assert.True(t, IsTemperature(Kelvin))
	assert.False(t, IsTemperature(MustParse("K^2")))
	assert.False(t, IsTemperature(MustParse("degC/m")))
	assert.False(t, IsTemperature(None))
}

func TestSymbols_Sorted(t *testing.T) {
	syms := Symbols()
	require.NotEmpty(t, syms)
	assert.IsIncreasing(t, syms)
	assert.Contains(t, syms, "degF")
}
