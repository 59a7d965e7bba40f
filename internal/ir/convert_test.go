package ir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miles-bartnik/tyr/internal/units"
)

// eval folds a numeric conversion tree to a number.
func eval(t *testing.T, n Node) float64 {
	t.Helper()
	switch v := n.(type) {
	case *Float:
		return v.V
	case *Integer:
		return float64(v.V)
	case *Function:
		require.Equal(t, FuncCast, v.Kind)
		return eval(t, v.Args[0])
	case *Operator:
		l, r := eval(t, v.Left), eval(t, v.Right)
		switch v.Kind {
		case OpAdd:
			return l + r
		case OpSub:
			return l - r
		case OpMul:
			return l * r
		case OpDiv:
			return l / r
		}
	}
	t.Fatalf("eval: unexpected node %T", n)
	return 0
}

func TestConvertToUnit_Identity(t *testing.T) {
	v := Quantity(21.5, units.Kelvin)
	got, err := ConvertToUnit(v, units.Kelvin)
	require.NoError(t, err)
	assert.Same(t, v, got, "identity must not insert anything")
}

func TestConvertToUnit_MissingUnit(t *testing.T) {
	v := Num(3)
	got, err := ConvertToUnit(v, units.Kelvin)
	require.Error(t, err)
	assert.ErrorIs(t, err, units.ErrMissingUnit)
	assert.Nil(t, got)
	assert.Equal(t, units.None, v.Unit, "input must be left untouched")
	assert.Equal(t, 3.0, v.V)
}

func TestConvertToUnit_Incompatible(t *testing.T) {
	_, err := ConvertToUnit(Quantity(1, units.MustParse("m")), units.MustParse("s"))
	assert.ErrorIs(t, err, units.ErrIncompatibleUnits)

	_, err = ConvertToUnit(Quantity(1, units.Celsius), units.MustParse("m"))
	assert.ErrorIs(t, err, units.ErrIncompatibleUnits)
}

func TestConvertToUnit_Linear(t *testing.T) {
	km := units.MustParse("km")
	m := units.MustParse("m")
	v := Quantity(2, km)

	got, err := ConvertToUnit(v, m)
	require.NoError(t, err)

	cast, ok := got.(*Function)
	require.True(t, ok)
	assert.Equal(t, FuncCast, cast.Kind)
	assert.Equal(t, TypeDouble, cast.Target)
	assert.Equal(t, m, UnitOf(got))

	mul, ok := cast.Args[0].(*Operator)
	require.True(t, ok)
	assert.Equal(t, OpMul, mul.Kind)
	assert.Same(t, v, mul.Left)

	factor, ok := mul.Right.(*Function)
	require.True(t, ok)
	assert.Equal(t, TypeDouble, factor.Target)
	assert.Equal(t, Num(1000), factor.Args[0])

	assert.InDelta(t, 2000, eval(t, got), 1e-9)
	assert.Equal(t, km, v.Unit, "input keeps its unit")
}

func TestConvertToUnit_PreservesType(t *testing.T) {
	v := Int(3).WithUnit(units.MustParse("km"))
	got, err := ConvertToUnit(v, units.MustParse("m"))
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, TypeOf(got))
}

func TestConvertToUnit_UnitFactorIsPlainCast(t *testing.T) {
	// J and N m are the same unit under different symbols
	col := Col("readings", "energy", TypeDouble).WithUnit(units.MustParse("J"))
	got, err := ConvertToUnit(col, units.MustParse("N m"))
	require.NoError(t, err)

	cast, ok := got.(*Function)
	require.True(t, ok)
	assert.Equal(t, FuncCast, cast.Kind)
	assert.Same(t, col, cast.Args[0], "no multiplication inserted")
	assert.Equal(t, units.MustParse("N m"), cast.Unit)
}

func TestConvertToUnit_Temperature(t *testing.T) {
	cases := []struct {
		from, to units.Unit
		in, want float64
	}{
		{units.Fahrenheit, units.Celsius, 32, 0},
		{units.Celsius, units.Fahrenheit, 100, 212},
		{units.Celsius, units.Kelvin, 0, 273.15},
		{units.Kelvin, units.Rankine, 100, 180},
		{units.Rankine, units.Fahrenheit, 0, -459.67},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_to_%s", tc.from, tc.to), func(t *testing.T) {
			got, err := ConvertToUnit(Quantity(tc.in, tc.from), tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.to, UnitOf(got))
			assert.Equal(t, TypeDouble, TypeOf(got))
			assert.InDelta(t, tc.want, eval(t, got), 1e-9)
		})
	}
}

func TestConvertToUnit_FahrenheitToCelsiusShape(t *testing.T) {
	v := Quantity(32, units.Fahrenheit)
	got, err := ConvertToUnit(v, units.Celsius)
	require.NoError(t, err)

	// CAST(((v + 459.67) * 5/9) - 273.15 AS DOUBLE)
	sub := got.(*Function).Args[0].(*Operator)
	require.Equal(t, OpSub, sub.Kind)
	assert.Equal(t, Num(273.15), sub.Right)

	mul := sub.Left.(*Operator)
	require.Equal(t, OpMul, mul.Kind)

	add := mul.Left.(*Operator)
	require.Equal(t, OpAdd, add.Kind)
	assert.Same(t, v, add.Left)
	assert.Equal(t, Num(459.67), add.Right)
}

func TestConvertToSI(t *testing.T) {
	got, err := ConvertToSI(Quantity(1, units.MustParse("km/h")))
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("m/s"), UnitOf(got))
	assert.InDelta(t, 0.28, eval(t, got), 1e-9)

	got, err = ConvertToSI(Quantity(0, units.Celsius))
	require.NoError(t, err)
	assert.Equal(t, units.Kelvin, UnitOf(got))
	assert.InDelta(t, 273.15, eval(t, got), 1e-9)

	_, err = ConvertToSI(Num(1))
	assert.ErrorIs(t, err, units.ErrMissingUnit)
}
