package ir

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks every table of s for problems that would otherwise only
// surface on the engine: missing sources, duplicate or unknown columns,
// GROUP BY without a key, malformed expressions and unknown kinds.
//
// All problems are reported together via errors.Join; nil means valid.
func Validate(s *Schema) error {
	var errs []error
	for _, t := range s.tables {
		for _, msg := range validateTable(s, t) {
			errs = append(errs, &ValidationError{Table: t.Name, Message: msg})
		}
	}
	return errors.Join(errs...)
}

func validateTable(s *Schema, t *Table) []string {
	var out []string
	if t.Source == nil {
		out = append(out, "no source")
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c == nil {
			out = append(out, "nil column")
			continue
		}
		if c.Name == "" {
			out = append(out, "column without a name")
			continue
		}
		if seen[c.Name] {
			out = append(out, fmt.Sprintf("duplicate column %s", c.Name))
		}
		seen[c.Name] = true
	}

	for _, pk := range t.PrimaryKey {
		if pk == nil {
			out = append(out, "nil primary key column")
			continue
		}
		if len(t.Columns) > 0 && !seen[pk.Name] {
			out = append(out, fmt.Sprintf("primary key column %s is not projected", pk.Name))
		}
	}
	if t.GroupBy && len(t.PrimaryKey) == 0 {
		out = append(out, "group by requires a primary key")
	}
	if t.OrderBy != nil && slices.Contains(t.OrderBy.Columns, nil) {
		out = append(out, "nil order by column")
	}

	Walk(t, func(n Node) bool {
		if msg := validateNode(s, t, n); msg != "" {
			out = append(out, msg)
		}
		return true
	})
	return out
}

func validateNode(s *Schema, owner *Table, n Node) string {
	switch v := n.(type) {
	case *Function:
		if !slices.Contains(AllFunctionKinds, v.Kind) {
			return fmt.Sprintf("unknown function kind %q", v.Kind)
		}
		if (v.Kind == FuncCast || v.Kind == FuncTryCast) && v.Target == TypeUnknown {
			return "cast without a target type"
		}
	case *Operator:
		if !slices.Contains(AllOperatorKinds, v.Kind) {
			return fmt.Sprintf("unknown operator kind %q", v.Kind)
		}
		if v.Left == nil || v.Right == nil {
			return fmt.Sprintf("operator %s with a nil operand", v.Kind)
		}
	case *Expression:
		return validateExpression(v)
	case *Union:
		if len(v.Members) == 0 {
			return "empty union"
		}
		if slices.Contains(v.Members, nil) {
			return "nil union member"
		}
		width := len(v.Members[0].Columns)
		for _, m := range v.Members[1:] {
			if len(m.Columns) != width {
				return fmt.Sprintf("union member %s has %d columns, want %d", m.Name, len(m.Columns), width)
			}
		}
	case *Column:
		if v.Expr != nil || v.Table == "" || v.Table == owner.Name {
			return ""
		}
		upstream, ok := s.Table(v.Table)
		if !ok || len(upstream.Columns) == 0 {
			return ""
		}
		if _, ok := upstream.Column(v.Name); !ok {
			return fmt.Sprintf("column %s.%s does not exist", v.Table, v.Name)
		}
	}
	return ""
}

func validateExpression(e *Expression) string {
	want := 1
	switch e.Kind {
	case ExprCase:
		if len(e.Operands) < 2 {
			return "case without a branch"
		}
		return ""
	case ExprBetween:
		want = 3
	case ExprExists:
		if len(e.Operands) != 1 {
			return "exists needs one subquery"
		}
		if _, ok := e.Operands[0].(*Subquery); !ok {
			return "exists needs one subquery"
		}
		return ""
	case ExprNot, ExprNegate, ExprIsNull, ExprIsNotNull, ExprParen:
	default:
		return fmt.Sprintf("unknown expression kind %q", e.Kind)
	}
	if len(e.Operands) != want {
		return fmt.Sprintf("%s takes %d operands, got %d", e.Kind, want, len(e.Operands))
	}
	return ""
}
