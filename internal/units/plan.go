package units

import (
	"fmt"
	"math"
)

// roundingDigits is the number of decimal places kept for every linear step
// constant. Resolve always applies it; callers must not expect exact factors
// such as 1/3600.
const roundingDigits = 5

// Step is one elementary conversion.
//
// Linear steps multiply by PrefixMultiplier*ConversionMultiplier (rounded).
// Affine steps belong to the temperature bridge; they multiply by
// ConversionMultiplier and then add Offset, with exact constants.
type Step struct {
	Source               Unit    `json:"source"`
	Target               Unit    `json:"target"`
	PrefixMultiplier     float64 `json:"prefix_multiplier"`
	ConversionMultiplier float64 `json:"conversion_multiplier"`
	Offset               float64 `json:"offset,omitempty"`
	Affine               bool    `json:"affine,omitempty"`
}

// Multiplier returns the constant a value is multiplied by in this step.
func (s Step) Multiplier() float64 {
	if s.Affine {
		return s.PrefixMultiplier * s.ConversionMultiplier
	}
	return RoundDecimal(s.PrefixMultiplier*s.ConversionMultiplier, roundingDigits)
}

// IsIdentity reports whether applying the step leaves a value unchanged.
func (s Step) IsIdentity() bool {
	return s.Multiplier() == 1 && s.Offset == 0
}

// Apply folds x through the step.
func (s Step) Apply(x float64) float64 {
	return x*s.Multiplier() + s.Offset
}

// Plan is an ordered conversion from one unit to another.
// An empty plan is the identity.
type Plan struct {
	From  Unit   `json:"from"`
	To    Unit   `json:"to"`
	Steps []Step `json:"steps"`
}

// Apply folds x through every step in order.
func (p Plan) Apply(x float64) float64 {
	for _, s := range p.Steps {
		x = s.Apply(x)
	}
	return x
}

// IsIdentity reports whether the plan changes nothing.
func (p Plan) IsIdentity() bool {
	for _, s := range p.Steps {
		if !s.IsIdentity() {
			return false
		}
	}
	return true
}

// IsAffine reports whether the plan contains temperature bridge steps.
func (p Plan) IsAffine() bool {
	for _, s := range p.Steps {
		if s.Affine {
			return true
		}
	}
	return false
}

// Factor returns the product of all step multipliers. It is only meaningful
// for linear plans.
func (p Plan) Factor() float64 {
	f := 1.0
	for _, s := range p.Steps {
		f *= s.Multiplier()
	}
	return f
}

// Resolve computes the plan converting values in from to values in to.
//
// Errors:
//   - ErrMissingUnit if either side is None
//   - ErrIncompatibleUnits if the dimensions differ
//   - ErrUnknownUnit if a symbol is not registered
func Resolve(from, to Unit) (Plan, error) {
	if from == None || to == None {
		return Plan{}, &ConversionError{From: from, To: to, Err: ErrMissingUnit}
	}
	if from == to {
		return Plan{From: from, To: to}, nil
	}

	fromScale, fromTemp := temperatureScale(from)
	toScale, toTemp := temperatureScale(to)
	if fromTemp && toTemp {
		steps, err := bridge(fromScale, toScale)
		if err != nil {
			return Plan{}, &ConversionError{From: from, To: to, Err: err}
		}
		return Plan{From: from, To: to, Steps: steps}, nil
	}

	df, err := DimensionOf(from)
	if err != nil {
		return Plan{}, &ConversionError{From: from, To: to, Err: err}
	}
	dt, err := DimensionOf(to)
	if err != nil {
		return Plan{}, &ConversionError{From: from, To: to, Err: err}
	}
	if df != dt {
		return Plan{}, &ConversionError{From: from, To: to, Err: ErrIncompatibleUnits}
	}

	plan := Plan{From: from, To: to}

	// into SI, one step per source segment
	for _, seg := range mustSegments(from) {
		prefix, conv, err := segmentFactor(seg)
		if err != nil {
			return Plan{}, &ConversionError{From: from, To: to, Err: err}
		}
		step := Step{
			Source:               format([]segment{seg}),
			Target:               segmentSI(seg),
			PrefixMultiplier:     prefix,
			ConversionMultiplier: conv,
		}
		if !step.IsIdentity() {
			plan.Steps = append(plan.Steps, step)
		}
	}

	// out of SI, one step per target segment
	for _, seg := range mustSegments(to) {
		prefix, conv, err := segmentFactor(seg)
		if err != nil {
			return Plan{}, &ConversionError{From: from, To: to, Err: err}
		}
		step := Step{
			Source:               segmentSI(seg),
			Target:               format([]segment{seg}),
			PrefixMultiplier:     1 / prefix,
			ConversionMultiplier: 1 / conv,
		}
		if !step.IsIdentity() {
			plan.Steps = append(plan.Steps, step)
		}
	}

	return plan, nil
}

// ResolveSI computes the plan converting u into its SI representative.
func ResolveSI(u Unit) (Plan, error) {
	if u == None {
		return Plan{}, &ConversionError{From: u, Err: ErrMissingUnit}
	}
	si, err := SI(u)
	if err != nil {
		return Plan{}, &ConversionError{From: u, Err: err}
	}
	return Resolve(u, si)
}

// Convert evaluates a numeric conversion.
func Convert(x float64, from, to Unit) (float64, error) {
	plan, err := Resolve(from, to)
	if err != nil {
		return 0, err
	}
	return plan.Apply(x), nil
}

// segmentSI returns the SI representative of a single segment.
func segmentSI(seg segment) Unit {
	info, err := lookup(seg.symbol)
	if err != nil {
		return None
	}
	var d Dimension
	for i := range d {
		d[i] = info.unit.dim[i] * seg.exp
	}
	return siUnit(d)
}

// RoundDecimal rounds x to the given number of decimal places.
func RoundDecimal(x float64, digits int) float64 {
	if x == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

// String renders the plan for diagnostics.
func (p Plan) String() string {
	if len(p.Steps) == 0 {
		return fmt.Sprintf("%s -> %s: identity", p.From, p.To)
	}
	s := fmt.Sprintf("%s -> %s:", p.From, p.To)
	for _, st := range p.Steps {
		if st.Affine {
			s += fmt.Sprintf(" [%s -> %s x%g %+g]", st.Source, st.Target, st.Multiplier(), st.Offset)
			continue
		}
		s += fmt.Sprintf(" [%s -> %s x%g]", st.Source, st.Target, st.Multiplier())
	}
	return s
}
