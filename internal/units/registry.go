package units

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Dimension is an exponent vector over the SI base dimensions
// length, mass, time, temperature, current and amount.
type Dimension [6]int

const (
	dimLength = iota
	dimMass
	dimTime
	dimTemperature
	dimCurrent
	dimAmount
)

// siSymbols names the SI representative of each base dimension.
var siSymbols = [6]string{"m", "kg", "s", "K", "A", "mol"}

// baseUnit describes a registered symbol.
type baseUnit struct {
	dim         Dimension
	factor      float64 // multiplier into the SI representative
	prefixable  bool
	temperature bool
}

func dim(l, m, t, th, i, n int) Dimension {
	return Dimension{l, m, t, th, i, n}
}

var registry = map[string]baseUnit{
	// length
	"m":   {dim: dim(1, 0, 0, 0, 0, 0), factor: 1, prefixable: true},
	"in":  {dim: dim(1, 0, 0, 0, 0, 0), factor: 0.0254},
	"ft":  {dim: dim(1, 0, 0, 0, 0, 0), factor: 0.3048},
	"yd":  {dim: dim(1, 0, 0, 0, 0, 0), factor: 0.9144},
	"mi":  {dim: dim(1, 0, 0, 0, 0, 0), factor: 1609.344},
	"nmi": {dim: dim(1, 0, 0, 0, 0, 0), factor: 1852},

	// mass, SI representative is kg so the gram carries 1e-3
	"g":  {dim: dim(0, 1, 0, 0, 0, 0), factor: 1e-3, prefixable: true},
	"t":  {dim: dim(0, 1, 0, 0, 0, 0), factor: 1e3},
	"lb": {dim: dim(0, 1, 0, 0, 0, 0), factor: 0.45359237},
	"oz": {dim: dim(0, 1, 0, 0, 0, 0), factor: 0.028349523125},

	// time
	"s":   {dim: dim(0, 0, 1, 0, 0, 0), factor: 1, prefixable: true},
	"min": {dim: dim(0, 0, 1, 0, 0, 0), factor: 60},
	"h":   {dim: dim(0, 0, 1, 0, 0, 0), factor: 3600},
	"d":   {dim: dim(0, 0, 1, 0, 0, 0), factor: 86400},

	// temperature scales
	"K":    {dim: dim(0, 0, 0, 1, 0, 0), factor: 1, temperature: true},
	"degC": {dim: dim(0, 0, 0, 1, 0, 0), factor: 1, temperature: true},
	"degF": {dim: dim(0, 0, 0, 1, 0, 0), factor: 5.0 / 9.0, temperature: true},
	"degR": {dim: dim(0, 0, 0, 1, 0, 0), factor: 5.0 / 9.0, temperature: true},

	// current, amount
	"A":   {dim: dim(0, 0, 0, 0, 1, 0), factor: 1, prefixable: true},
	"mol": {dim: dim(0, 0, 0, 0, 0, 1), factor: 1, prefixable: true},

	// derived
	"L":   {dim: dim(3, 0, 0, 0, 0, 0), factor: 1e-3, prefixable: true},
	"N":   {dim: dim(1, 1, -2, 0, 0, 0), factor: 1, prefixable: true},
	"J":   {dim: dim(2, 1, -2, 0, 0, 0), factor: 1, prefixable: true},
	"W":   {dim: dim(2, 1, -3, 0, 0, 0), factor: 1, prefixable: true},
	"Pa":  {dim: dim(-1, 1, -2, 0, 0, 0), factor: 1, prefixable: true},
	"bar": {dim: dim(-1, 1, -2, 0, 0, 0), factor: 1e5, prefixable: true},
	"Hz":  {dim: dim(0, 0, -1, 0, 0, 0), factor: 1, prefixable: true},
	"V":   {dim: dim(2, 1, -3, 0, -1, 0), factor: 1, prefixable: true},
	"Wh":  {dim: dim(2, 1, -2, 0, 0, 0), factor: 3600, prefixable: true},
}

// prefixes are metric prefixes, ordered longest first at lookup time so that
// "da" wins over "d".
var prefixes = map[string]float64{
	"G":  1e9,
	"M":  1e6,
	"k":  1e3,
	"h":  1e2,
	"da": 1e1,
	"d":  1e-1,
	"c":  1e-2,
	"m":  1e-3,
	"u":  1e-6,
	"µ":  1e-6,
	"n":  1e-9,
}

// symbolInfo is a resolved (prefix, base) pair.
type symbolInfo struct {
	prefix       string
	prefixFactor float64
	base         string
	unit         baseUnit
}

// lookup resolves a symbol to its base unit. Exact base symbols win over
// prefixed readings ("min" is minutes, not milli-inches).
func lookup(symbol string) (symbolInfo, error) {
	if b, ok := registry[symbol]; ok {
		return symbolInfo{prefixFactor: 1, base: symbol, unit: b}, nil
	}
	for _, p := range sortedPrefixes() {
		if !strings.HasPrefix(symbol, p) {
			continue
		}
		rest := strings.TrimPrefix(symbol, p)
		if b, ok := registry[rest]; ok && b.prefixable {
			return symbolInfo{prefix: p, prefixFactor: prefixes[p], base: rest, unit: b}, nil
		}
	}
	return symbolInfo{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
}

func sortedPrefixes() []string {
	ps := make([]string, 0, len(prefixes))
	for p := range prefixes {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if len(ps[i]) != len(ps[j]) {
			return len(ps[i]) > len(ps[j])
		}
		return ps[i] < ps[j]
	})
	return ps
}

// DimensionOf returns the dimension vector of u.
func DimensionOf(u Unit) (Dimension, error) {
	var d Dimension
	if u == None {
		return d, ErrMissingUnit
	}
	for _, seg := range mustSegments(u) {
		info, err := lookup(seg.symbol)
		if err != nil {
			return d, err
		}
		for i := range d {
			d[i] += info.unit.dim[i] * seg.exp
		}
	}
	return d, nil
}

// Compatible reports whether a and b measure the same dimension.
func Compatible(a, b Unit) bool {
	da, errA := DimensionOf(a)
	db, errB := DimensionOf(b)
	return errA == nil && errB == nil && da == db
}

// SI returns the SI representative of u, built from base SI symbols.
// Temperature scales map to "K^1".
func SI(u Unit) (Unit, error) {
	d, err := DimensionOf(u)
	if err != nil {
		return None, err
	}
	return siUnit(d), nil
}

func siUnit(d Dimension) Unit {
	segs := make([]segment, 0, len(d))
	for i, exp := range d {
		if exp != 0 {
			segs = append(segs, segment{symbol: siSymbols[i], exp: exp})
		}
	}
	return format(segs)
}

// Symbols lists every registered base symbol in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsTemperature reports whether u is exactly one of the four temperature
// scales raised to the first power.
func IsTemperature(u Unit) bool {
	_, ok := temperatureScale(u)
	return ok
}

func temperatureScale(u Unit) (string, bool) {
	if u == None {
		return "", false
	}
	segs := mustSegments(u)
	if len(segs) != 1 || segs[0].exp != 1 {
		return "", false
	}
	b, ok := registry[segs[0].symbol]
	if !ok || !b.temperature {
		return "", false
	}
	return segs[0].symbol, true
}

// segmentFactor returns the prefix and base multipliers of one segment,
// each raised to the segment exponent.
func segmentFactor(seg segment) (prefix, conversion float64, err error) {
	info, err := lookup(seg.symbol)
	if err != nil {
		return 0, 0, err
	}
	e := float64(seg.exp)
	return math.Pow(info.prefixFactor, e), math.Pow(info.unit.factor, e), nil
}
