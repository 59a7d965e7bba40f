package ir

// ExpressionKind identifies a non-binary expression form.
type ExpressionKind string

const (
	ExprCase      ExpressionKind = "case"
	ExprNot       ExpressionKind = "not"
	ExprNegate    ExpressionKind = "negate"
	ExprIsNull    ExpressionKind = "is_null"
	ExprIsNotNull ExpressionKind = "is_not_null"
	ExprBetween   ExpressionKind = "between"
	ExprExists    ExpressionKind = "exists"
	ExprParen     ExpressionKind = "paren"
)

// AllExpressionKinds lists every expression kind.
var AllExpressionKinds = []ExpressionKind{
	ExprCase, ExprNot, ExprNegate, ExprIsNull, ExprIsNotNull,
	ExprBetween, ExprExists, ExprParen,
}

// Expression is a fixed-shape expression over Operands.
//
// Operand layout by kind:
//
//	Case:       when1, then1, ..., whenN, thenN [, else]
//	Between:    value, low, high
//	Exists:     a single *Subquery
//	all others: a single operand
type Expression struct {
	Kind     ExpressionKind
	Operands []Node
}

// When is one branch of a CASE expression.
type When struct {
	Cond Node
	Then Node
}

// Case returns CASE WHEN ... THEN ... [ELSE els] END. els may be nil.
func Case(branches []When, els Node) *Expression {
	ops := make([]Node, 0, 2*len(branches)+1)
	for _, b := range branches {
		ops = append(ops, b.Cond, b.Then)
	}
	if els != nil {
		ops = append(ops, els)
	}
	return &Expression{Kind: ExprCase, Operands: ops}
}

// Not negates a condition.
func Not(n Node) *Expression { return &Expression{Kind: ExprNot, Operands: []Node{n}} }

// Negate returns -n, keeping the unit of n.
func Negate(n Node) *Expression { return &Expression{Kind: ExprNegate, Operands: []Node{n}} }

// IsNull tests n IS NULL.
func IsNull(n Node) *Expression { return &Expression{Kind: ExprIsNull, Operands: []Node{n}} }

// IsNotNull tests n IS NOT NULL.
func IsNotNull(n Node) *Expression { return &Expression{Kind: ExprIsNotNull, Operands: []Node{n}} }

// Between tests low <= n <= high.
func Between(n, low, high Node) *Expression {
	return &Expression{Kind: ExprBetween, Operands: []Node{n, low, high}}
}

// Exists tests whether t returns any row.
func Exists(t *Table) *Expression {
	return &Expression{Kind: ExprExists, Operands: []Node{t.AsSubquery()}}
}

// Paren groups n explicitly.
func Paren(n Node) *Expression { return &Expression{Kind: ExprParen, Operands: []Node{n}} }

// CaseBranches splits the operands of a CASE into branches and the optional
// else operand.
func (e *Expression) CaseBranches() ([]When, Node) {
	var out []When
	ops := e.Operands
	for len(ops) >= 2 {
		out = append(out, When{Cond: ops[0], Then: ops[1]})
		ops = ops[2:]
	}
	if len(ops) == 1 {
		return out, ops[0]
	}
	return out, nil
}

func (*Expression) Category() Category { return CategoryExpression }
func (*Expression) irNode()            {}
