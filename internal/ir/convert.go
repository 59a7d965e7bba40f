package ir

import (
	"github.com/miles-bartnik/tyr/internal/units"
)

// ConvertToUnit returns an expression evaluating n in the target unit.
//
// The input is never modified:
//   - n without a unit fails with units.ErrMissingUnit
//   - n already in target is returned as-is
//   - temperature pairs fold the affine bridge steps and cast to DOUBLE
//   - other pairs fold one multiplication per plan step and cast back to
//     the type of n; a plan whose factor is 1 is a plain cast
//
// Dimension mismatches fail with units.ErrIncompatibleUnits.
func ConvertToUnit(n Node, target units.Unit) (Node, error) {
	from := UnitOf(n)
	plan, err := units.Resolve(from, target)
	if err != nil {
		return nil, err
	}
	if from == target {
		return n, nil
	}

	if plan.IsAffine() {
		return castWithUnit(foldAffine(n, plan), TypeDouble, target), nil
	}

	typ := TypeOf(n)
	if typ == TypeUnknown {
		typ = TypeDouble
	}
	if plan.IsIdentity() {
		return castWithUnit(n, typ, target), nil
	}

	expr := n
	for _, step := range plan.Steps {
		if step.IsIdentity() {
			continue
		}
		expr = &Operator{Kind: OpMul, Left: expr, Right: Cast(Num(step.Multiplier()), TypeDouble)}
	}
	return castWithUnit(expr, typ, target), nil
}

// ConvertToSI converts n to the SI representative of its unit.
// Temperatures convert to kelvin.
func ConvertToSI(n Node) (Node, error) {
	from := UnitOf(n)
	si, err := units.SI(from)
	if err != nil {
		return nil, &units.ConversionError{From: from, Err: err}
	}
	return ConvertToUnit(n, si)
}

func foldAffine(n Node, plan units.Plan) Node {
	expr := n
	for _, step := range plan.Steps {
		if m := step.Multiplier(); m != 1 {
			expr = &Operator{Kind: OpMul, Left: expr, Right: Num(m)}
		}
		switch {
		case step.Offset > 0:
			expr = &Operator{Kind: OpAdd, Left: expr, Right: Num(step.Offset)}
		case step.Offset < 0:
			expr = &Operator{Kind: OpSub, Left: expr, Right: Num(-step.Offset)}
		}
	}
	return expr
}

func castWithUnit(n Node, t DataType, u units.Unit) *Function {
	return &Function{Kind: FuncCast, Args: []Node{n}, Target: t, Unit: u}
}
