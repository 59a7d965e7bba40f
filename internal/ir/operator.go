package ir

import (
	"fmt"

	"github.com/miles-bartnik/tyr/internal/units"
)

// OperatorKind identifies a binary operator. The value is the SQL token.
type OperatorKind string

const (
	OpAdd    OperatorKind = "+"
	OpSub    OperatorKind = "-"
	OpMul    OperatorKind = "*"
	OpDiv    OperatorKind = "/"
	OpMod    OperatorKind = "%"
	OpEq     OperatorKind = "="
	OpNe     OperatorKind = "<>"
	OpLt     OperatorKind = "<"
	OpLe     OperatorKind = "<="
	OpGt     OperatorKind = ">"
	OpGe     OperatorKind = ">="
	OpAnd    OperatorKind = "AND"
	OpOr     OperatorKind = "OR"
	OpLike   OperatorKind = "LIKE"
	OpILike  OperatorKind = "ILIKE"
	OpConcat OperatorKind = "||"
	OpIn     OperatorKind = "IN"
	OpNotIn  OperatorKind = "NOT IN"
	OpIs     OperatorKind = "IS"
	OpIsNot  OperatorKind = "IS NOT"
)

// AllOperatorKinds lists every operator kind.
var AllOperatorKinds = []OperatorKind{
	OpAdd, OpSub, OpMul, OpDiv, OpMod,
	OpEq, OpNe, OpLt, OpLe, OpGt, OpGe,
	OpAnd, OpOr, OpLike, OpILike, OpConcat,
	OpIn, OpNotIn, OpIs, OpIsNot,
}

// aligning kinds require both operands in the same unit.
func (k OperatorKind) aligning() bool {
	switch k {
	case OpAdd, OpSub, OpMod, OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// IsComparison reports whether k yields a boolean from two values.
func (k OperatorKind) IsComparison() bool {
	switch k {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpLike, OpILike, OpIn, OpNotIn, OpIs, OpIsNot:
		return true
	}
	return false
}

// Operator is a binary operator application.
type Operator struct {
	Kind  OperatorKind
	Left  Node
	Right Node
}

// NewOperator returns left <kind> right. For additive, modulo and
// comparison kinds a right operand in a different unit is converted to the
// unit of the left operand. An operand without a unit is taken as-is.
func NewOperator(kind OperatorKind, left, right Node) (*Operator, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("operator %s: nil operand", kind)
	}
	if kind.aligning() {
		lu, ru := UnitOf(left), UnitOf(right)
		if lu != units.None && ru != units.None && lu != ru {
			converted, err := ConvertToUnit(right, lu)
			if err != nil {
				return nil, fmt.Errorf("operator %s: %w", kind, err)
			}
			right = converted
		}
	}
	return &Operator{Kind: kind, Left: left, Right: right}, nil
}

// Add returns left + right in the unit of left.
func Add(left, right Node) (*Operator, error) { return NewOperator(OpAdd, left, right) }

// Sub returns left - right in the unit of left.
func Sub(left, right Node) (*Operator, error) { return NewOperator(OpSub, left, right) }

// Mul returns left * right; units multiply.
func Mul(left, right Node) (*Operator, error) { return NewOperator(OpMul, left, right) }

// Div returns left / right; units divide.
func Div(left, right Node) (*Operator, error) { return NewOperator(OpDiv, left, right) }

// Eq compares left = right after unit alignment.
func Eq(left, right Node) (*Operator, error) { return NewOperator(OpEq, left, right) }

// Ne compares left <> right after unit alignment.
func Ne(left, right Node) (*Operator, error) { return NewOperator(OpNe, left, right) }

// Lt compares left < right after unit alignment.
func Lt(left, right Node) (*Operator, error) { return NewOperator(OpLt, left, right) }

// Le compares left <= right after unit alignment.
func Le(left, right Node) (*Operator, error) { return NewOperator(OpLe, left, right) }

// Gt compares left > right after unit alignment.
func Gt(left, right Node) (*Operator, error) { return NewOperator(OpGt, left, right) }

// Ge compares left >= right after unit alignment.
func Ge(left, right Node) (*Operator, error) { return NewOperator(OpGe, left, right) }

// And conjoins conditions left to right. A single condition is returned
// unchanged; no conditions yields TRUE.
func And(conds ...Node) Node {
	return fold(OpAnd, Bool(true), conds)
}

// Or disjoins conditions left to right. No conditions yields FALSE.
func Or(conds ...Node) Node {
	return fold(OpOr, Bool(false), conds)
}

func fold(kind OperatorKind, empty Node, conds []Node) Node {
	if len(conds) == 0 {
		return empty
	}
	acc := conds[0]
	for _, c := range conds[1:] {
		acc = &Operator{Kind: kind, Left: acc, Right: c}
	}
	return acc
}

// Like matches n against a SQL LIKE pattern.
func Like(n Node, pattern string) *Operator {
	return &Operator{Kind: OpLike, Left: n, Right: Str(pattern)}
}

// ILike matches n case-insensitively against a SQL LIKE pattern.
func ILike(n Node, pattern string) *Operator {
	return &Operator{Kind: OpILike, Left: n, Right: Str(pattern)}
}

// Concat joins two strings.
func Concat(left, right Node) *Operator {
	return &Operator{Kind: OpConcat, Left: left, Right: right}
}

// In tests membership of n in items.
func In(n Node, items ...Node) *Operator {
	return &Operator{Kind: OpIn, Left: n, Right: &Tuple{Items: items}}
}

// NotIn tests non-membership of n in items.
func NotIn(n Node, items ...Node) *Operator {
	return &Operator{Kind: OpNotIn, Left: n, Right: &Tuple{Items: items}}
}

// InSubquery tests membership of n in the rows of t.
func InSubquery(n Node, t *Table) *Operator {
	return &Operator{Kind: OpIn, Left: n, Right: t.AsSubquery()}
}

func (*Operator) Category() Category { return CategoryOperator }
func (*Operator) irNode()            {}
