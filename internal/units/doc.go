// Package units implements the physical-unit algebra carried by IR values.
//
// A Unit is a canonical string of <symbol>^<exponent> segments sorted by
// symbol, e.g. "K^1" or "m^1s^-1". Equality is plain string equality on the
// canonical form, so every constructor in this package canonicalises.
//
// CONVERSION MODEL:
//
// Linear units convert through their SI representative. Resolve builds an
// ordered Plan of Steps (one per segment into SI, one per segment out of SI);
// applying a plan folds a value through the steps in order. Step constants
// are rounded to five decimal places before they are applied.
//
// The four temperature scales (degF, degC, degR, K) are affine and cannot be
// expressed as a single factor. They are bridged through a fixed network:
//
//	degF <-> degR   offset 459.67
//	degR <-> K      factor 5/9
//	degC <-> K      offset 273.15
//
// Temperature steps keep their exact constants.
//
// This package is pure: it never touches IR nodes. IR-level conversion (which
// wraps a node in CAST/multiply expressions) lives in internal/ir.
package units
