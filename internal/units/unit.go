package units

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Unit is a canonical unit token such as "m^1s^-1".
// The zero value None means "no unit".
type Unit string

// None is the absence of a unit. Dimensionless results of Multiply also
// collapse to None.
const None Unit = ""

// segment is one <symbol>^<exponent> factor of a unit.
type segment struct {
	symbol string
	exp    int
}

// String returns the canonical token.
func (u Unit) String() string {
	return string(u)
}

// IsNone reports whether u carries no unit.
func (u Unit) IsNone() bool {
	return u == None
}

// Parse reads a unit expression and returns its canonical form.
//
// Accepted input is the canonical form itself ("m^1s^-1") and the usual
// loose spellings: "m/s", "m s^-1", "km*h^-1", "m2". A term following '/'
// has its exponent negated. Every symbol must be known to the registry,
// optionally with a metric prefix.
func Parse(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, nil
	}
	segs, err := parseSegments(s)
	if err != nil {
		return None, err
	}
	for _, seg := range segs {
		if _, err := lookup(seg.symbol); err != nil {
			return None, err
		}
	}
	return format(segs), nil
}

// MustParse is like Parse but panics on error.
// Use only with constant input.
func MustParse(s string) Unit {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Multiply combines two units, adding exponents of shared symbols.
// Symbols whose exponents cancel are dropped.
func Multiply(a, b Unit) Unit {
	sa := mustSegments(a)
	sb := mustSegments(b)
	return format(append(sa, sb...))
}

// Reciprocal negates every exponent of u.
// Reciprocal(Reciprocal(u)) == u for every canonical u.
func Reciprocal(u Unit) Unit {
	segs := mustSegments(u)
	for i := range segs {
		segs[i].exp = -segs[i].exp
	}
	return format(segs)
}

// Divide returns a / b.
func Divide(a, b Unit) Unit {
	return Multiply(a, Reciprocal(b))
}

// Pow raises every exponent of u to the n-th power.
func Pow(u Unit, n int) Unit {
	segs := mustSegments(u)
	for i := range segs {
		segs[i].exp *= n
	}
	return format(segs)
}

// mustSegments decodes a unit produced by this package. Units are always
// canonical once constructed, so a decode failure is a programming error.
func mustSegments(u Unit) []segment {
	if u == None {
		return nil
	}
	segs, err := parseSegments(string(u))
	if err != nil {
		panic(fmt.Sprintf("units: non-canonical unit %q: %v", u, err))
	}
	return segs
}

// format merges duplicate symbols, drops zero exponents, sorts by symbol and
// renders the canonical token.
func format(segs []segment) Unit {
	merged := make(map[string]int, len(segs))
	for _, s := range segs {
		merged[s.symbol] += s.exp
	}
	symbols := make([]string, 0, len(merged))
	for sym, exp := range merged {
		if exp != 0 {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)

	var b strings.Builder
	for _, sym := range symbols {
		b.WriteString(sym)
		b.WriteByte('^')
		b.WriteString(strconv.Itoa(merged[sym]))
	}
	return Unit(b.String())
}

// parseSegments tokenises a unit expression into raw segments.
func parseSegments(s string) ([]segment, error) {
	var segs []segment
	runes := []rune(s)
	negateNext := false

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ' ' || r == '*' || r == '.' || r == '·':
			i++
			continue
		case r == '/':
			if negateNext {
				return nil, fmt.Errorf("%w: %q: repeated '/'", ErrUnknownUnit, s)
			}
			negateNext = true
			i++
			continue
		case !isSymbolRune(r):
			return nil, fmt.Errorf("%w: %q: unexpected %q", ErrUnknownUnit, s, r)
		}

		start := i
		for i < len(runes) && isSymbolRune(runes[i]) {
			i++
		}
		sym := string(runes[start:i])

		exp := 1
		if i < len(runes) && (runes[i] == '^' || unicode.IsDigit(runes[i]) || runes[i] == '-') {
			if runes[i] == '^' {
				i++
			}
			numStart := i
			if i < len(runes) && (runes[i] == '-' || runes[i] == '+') {
				i++
			}
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			n, err := strconv.Atoi(string(runes[numStart:i]))
			if err != nil {
				return nil, fmt.Errorf("%w: %q: bad exponent for %s", ErrUnknownUnit, s, sym)
			}
			exp = n
		}
		if negateNext {
			exp = -exp
			negateNext = false
		}
		segs = append(segs, segment{symbol: sym, exp: exp})
	}
	if negateNext {
		return nil, fmt.Errorf("%w: %q: dangling '/'", ErrUnknownUnit, s)
	}
	return segs, nil
}

func isSymbolRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == 'µ'
}
