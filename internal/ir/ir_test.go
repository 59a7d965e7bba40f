package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miles-bartnik/tyr/internal/units"
)

func TestWithUnit_CopiesValue(t *testing.T) {
	shared := Num(10)
	a := shared.WithUnit(units.Kelvin)

	assert.Equal(t, units.None, shared.Unit, "original must not change")
	assert.Equal(t, units.Kelvin, a.Unit)
	assert.NotSame(t, shared, a)

	col := Col("readings", "temp", TypeDouble)
	withUnit := col.WithUnit(units.Celsius)
	assert.Equal(t, units.None, col.Unit)
	assert.Equal(t, units.Celsius, withUnit.Unit)
}

func TestNewOperator_AlignsRightOperand(t *testing.T) {
	left := Col("trips", "distance", TypeDouble).WithUnit(units.MustParse("m"))
	right := Quantity(2, units.MustParse("km"))

	op, err := Add(left, right)
	require.NoError(t, err)
	assert.Same(t, left, op.Left)
	assert.Equal(t, units.MustParse("m"), UnitOf(op.Right))
	assert.Equal(t, units.MustParse("m"), UnitOf(op))

	cmp, err := Gt(left, right)
	require.NoError(t, err)
	assert.Equal(t, TypeBoolean, TypeOf(cmp))
	assert.Equal(t, units.None, UnitOf(cmp))
}

func TestNewOperator_LeavesUnitlessOperands(t *testing.T) {
	left := Col("trips", "distance", TypeDouble).WithUnit(units.MustParse("m"))
	right := Num(5)

	op, err := Add(left, right)
	require.NoError(t, err)
	assert.Same(t, right, op.Right)
}

func TestNewOperator_IncompatibleUnits(t *testing.T) {
	_, err := Add(Quantity(1, units.MustParse("m")), Quantity(1, units.MustParse("s")))
	assert.ErrorIs(t, err, units.ErrIncompatibleUnits)

	_, err = NewOperator(OpAdd, nil, Num(1))
	assert.Error(t, err)
}

func TestNewOperator_MultiplicativeUnits(t *testing.T) {
	dist := Col("trips", "distance", TypeDouble).WithUnit(units.MustParse("m"))
	dur := Col("trips", "duration", TypeDouble).WithUnit(units.MustParse("s"))

	speed, err := Div(dist, dur)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("m/s"), UnitOf(speed))
	assert.Equal(t, TypeDouble, TypeOf(speed))

	area, err := Mul(dist, dist)
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("m^2"), UnitOf(area))
}

func TestAndOr_Fold(t *testing.T) {
	a, b, c := Bool(true), Bool(false), Bool(true)

	assert.Equal(t, Bool(true), And())
	assert.Same(t, a, And(a))

	got := And(a, b, c).(*Operator)
	assert.Equal(t, OpAnd, got.Kind)
	assert.Same(t, c, got.Right)
	inner := got.Left.(*Operator)
	assert.Same(t, a, inner.Left)
	assert.Same(t, b, inner.Right)

	assert.Equal(t, Bool(false), Or())
}

func TestDerive_InfersTypeAndUnit(t *testing.T) {
	temp := Col("readings", "temp", TypeDouble).WithUnit(units.Celsius)

	c := Derive("avg_temp", Avg(temp))
	assert.Equal(t, TypeDouble, c.Type)
	assert.Equal(t, units.Celsius, c.Unit)
	assert.False(t, c.IsReference())

	n := Derive("n", Count(&WildCard{}))
	assert.Equal(t, TypeBigint, n.Type)
	assert.Equal(t, units.None, n.Unit)
}

func TestTypeOf_Functions(t *testing.T) {
	ts := Col("events", "at", TypeTimestamp)
	tags := Col("events", "tags", ListType(TypeVarchar))

	assert.Equal(t, TypeVarchar, TypeOf(Strftime(ts, "%Y")))
	assert.Equal(t, TypeTimestamp, TypeOf(DateTrunc(PartDay, ts)))
	assert.Equal(t, TypeVarchar, TypeOf(ListExtract(tags, 1)))
	assert.Equal(t, TypeInterval, TypeOf(IntervalCast(Int(3), PartDay)))
	assert.Equal(t, TypeBigint, TypeOf(RowNumber(nil, []Node{ts})))
	assert.Equal(t, TypeBoolean, TypeOf(IsNull(ts)))
}

func TestTableCol_ReferencesOwner(t *testing.T) {
	raw := NewTable("raw", ReadFile("raw.csv", FormatCSV, "raw"),
		Col("", "id", TypeInteger),
		Col("", "temp", TypeDouble).WithUnit(units.Celsius),
	)

	ref := raw.Col("temp")
	assert.Equal(t, "raw", ref.Table)
	assert.Equal(t, units.Celsius, ref.Unit)
	assert.True(t, ref.IsReference())

	missing := raw.Col("nope")
	assert.Equal(t, TypeUnknown, missing.Type)
}

func TestTable_WithMethodsCopy(t *testing.T) {
	base := NewTable("t", From("src"), Col("src", "a", TypeInteger))
	grouped := base.WithPrimaryKey(base.Columns[0]).WithGroupBy()

	assert.False(t, base.GroupBy)
	assert.Empty(t, base.PrimaryKey)
	assert.True(t, grouped.GroupBy)
	assert.Same(t, base.Columns[0], grouped.PrimaryKey[0], "subtrees are shared")

	ordered := base.WithOrderBy([]*Column{base.Columns[0]}, Desc)
	assert.Nil(t, base.OrderBy)
	assert.Equal(t, Desc, ordered.OrderBy.DirectionAt(0))
	assert.Equal(t, Asc, ordered.OrderBy.DirectionAt(3))
}

func TestCompoundJoin_ThenCopies(t *testing.T) {
	base := &CompoundJoin{Base: From("a")}
	one := base.Then(LeftJoin, From("b"), Bool(true))
	two := one.Then(InnerJoin, From("c"), Bool(true))

	assert.Empty(t, base.Steps)
	assert.Len(t, one.Steps, 1)
	assert.Len(t, two.Steps, 2)
}

func TestCaseBranches(t *testing.T) {
	e := Case([]When{{Cond: Bool(true), Then: Int(1)}, {Cond: Bool(false), Then: Int(2)}}, Int(3))
	branches, els := e.CaseBranches()
	assert.Len(t, branches, 2)
	assert.Equal(t, Int(3), els)

	e = Case([]When{{Cond: Bool(true), Then: Int(1)}}, nil)
	_, els = e.CaseBranches()
	assert.Nil(t, els)
}

func TestNewSchema(t *testing.T) {
	a := NewTable("a", From("x"))
	b := NewTable("b", From("a"))

	s, err := NewSchema(Settings{Name: "analytics"}, a, b)
	require.NoError(t, err)
	assert.Equal(t, "analytics", s.Name())
	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.Equal(t, 2, s.Len())

	got, ok := s.Table("b")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, err = NewSchema(Settings{Name: "analytics"}, a, a)
	assert.ErrorIs(t, err, ErrDuplicateTable)

	_, err = NewSchema(Settings{}, NewTable("", From("x")))
	assert.Error(t, err)
}

func TestSchemaTables_ReturnsCopy(t *testing.T) {
	s, err := NewSchema(Settings{}, NewTable("a", From("x")))
	require.NoError(t, err)

	tables := s.Tables()
	tables[0] = nil
	got, _ := s.Table("a")
	assert.NotNil(t, got)
	assert.NotNil(t, s.Tables()[0])
}

func TestWalk_VisitsNestedSources(t *testing.T) {
	inner := NewTable("inner", From("a"), Col("a", "x", TypeInteger))
	outer := NewTable("outer",
		&Join{
			Kind:  LeftJoin,
			Left:  inner.AsSubquery(),
			Right: UnionAll("u", NewTable("m1", From("b")), NewTable("m2", From("c"))),
			On:    Bool(true),
		},
		Derive("y", Sum(Col("d", "y", TypeInteger))),
	)

	var refs []string
	Walk(outer, func(n Node) bool {
		if r, ok := n.(*TableRef); ok {
			refs = append(refs, r.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, refs)

	var cols []string
	Walk(outer, func(n Node) bool {
		if c, ok := n.(*Column); ok && c.IsReference() {
			cols = append(cols, c.Table+"."+c.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a.x", "d.y"}, cols)
}

func TestWalk_Prune(t *testing.T) {
	tbl := NewTable("t", NewTable("inner", From("hidden")).AsSubquery())
	var seen []string
	Walk(tbl, func(n Node) bool {
		if r, ok := n.(*TableRef); ok {
			seen = append(seen, r.Name)
		}
		_, isSub := n.(*Subquery)
		return !isSub
	})
	assert.Empty(t, seen)
}

func TestValidate(t *testing.T) {
	src := NewTable("src", ReadFile("s.csv", FormatCSV, "s"),
		Col("s", "id", TypeInteger),
		Col("s", "v", TypeDouble),
	)
	bad := &Table{
		Name:    "bad",
		Source:  From("src"),
		Columns: []*Column{src.Col("id"), src.Col("id"), Col("src", "missing", TypeInteger)},
		GroupBy: true,
		Where:   &Expression{Kind: ExprBetween, Operands: []Node{Int(1)}},
	}
	noSource := &Table{Name: "orphan"}
	unknown := NewTable("weird", From("src"), Derive("x", Call("frobnicate", Int(1))))

	s, err := NewSchema(Settings{}, src, bad, noSource, unknown)
	require.NoError(t, err)

	err = Validate(s)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	msg := err.Error()
	assert.Contains(t, msg, "table bad: duplicate column id")
	assert.Contains(t, msg, "table bad: group by requires a primary key")
	assert.Contains(t, msg, "table bad: column src.missing does not exist")
	assert.Contains(t, msg, "table bad: between takes 3 operands, got 1")
	assert.Contains(t, msg, "table orphan: no source")
	assert.Contains(t, msg, `table weird: unknown function kind "frobnicate"`)
	assert.NotContains(t, msg, "table src:")
}

func TestValidate_UnionWidth(t *testing.T) {
	u := NewTable("u", UnionAll("u",
		NewTable("a", From("x"), Col("x", "p", TypeInteger)),
		NewTable("b", From("y"), Col("y", "p", TypeInteger), Col("y", "q", TypeInteger)),
	))
	s, err := NewSchema(Settings{}, u)
	require.NoError(t, err)
	assert.ErrorContains(t, Validate(s), "union member b has 2 columns, want 1")
}

func TestValidate_NilEntries(t *testing.T) {
	src := NewTable("src", ReadFile("s.csv", FormatCSV, "s"), Col("s", "id", TypeInteger))
	holes := &Table{
		Name:       "holes",
		Source:     From("src"),
		Columns:    []*Column{src.Col("id"), nil},
		PrimaryKey: []*Column{nil},
		OrderBy:    &OrderBy{Columns: []*Column{nil}},
	}
	s, err := NewSchema(Settings{}, src, holes)
	require.NoError(t, err)

	require.NotPanics(t, func() { err = Validate(s) })
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "table holes: nil column")
	assert.Contains(t, msg, "table holes: nil primary key column")
	assert.Contains(t, msg, "table holes: nil order by column")

	_, ok := holes.Column("missing")
	assert.False(t, ok)
}

func TestValidate_NilUnionMember(t *testing.T) {
	u := NewTable("u", UnionAll("u", NewTable("a", From("x"), Col("x", "p", TypeInteger)), nil))
	s, err := NewSchema(Settings{}, u)
	require.NoError(t, err)

	require.NotPanics(t, func() { err = Validate(s) })
	assert.ErrorContains(t, err, "nil union member")
}

func TestChildren_SkipsTypedNil(t *testing.T) {
	var missing *Column
	tbl := &Table{Name: "t", Source: From("x"), Columns: []*Column{missing, Col("x", "a", TypeInteger)}}

	kids := Children(tbl)
	for _, k := range kids {
		assert.NotNil(t, k)
	}
	assert.Len(t, kids, 2, "source and the one real column")

	visited := 0
	Walk(missing, func(Node) bool { visited++; return true })
	assert.Zero(t, visited)
}

func TestInfer_EmptyOperands(t *testing.T) {
	var c *Column
	for _, kind := range []ExpressionKind{ExprNegate, ExprParen} {
		e := &Expression{Kind: kind}
		assert.NotPanics(t, func() {
			col := Derive("n", e)
			assert.Equal(t, units.None, col.Unit)
			assert.Equal(t, TypeUnknown, col.Type)
		})
	}
	assert.Equal(t, units.None, UnitOf(c))
	assert.Equal(t, TypeUnknown, TypeOf(c))
}

func TestChecks(t *testing.T) {
	readings := NewTable("readings", ReadFile("r.csv", FormatCSV, "r"),
		Col("r", "id", TypeInteger),
		Col("r", "temp", TypeDouble).WithUnit(units.Celsius),
	)

	nn := NotNullCheck("readings_id_not_null", readings, "id")
	assert.Equal(t, From("readings"), nn.Source)
	assert.Equal(t, ExprIsNull, nn.Where.(*Expression).Kind)

	uq := UniqueCheck("readings_id_unique", readings, "id")
	sub, ok := uq.Source.(*Subquery)
	require.True(t, ok)
	assert.True(t, sub.Table.GroupBy)
	assert.Equal(t, []string{"id", "occurrences"}, []string{uq.Columns[0].Name, uq.Columns[1].Name})

	rc, err := RangeCheck("readings_temp_range", readings, "temp",
		Quantity(-40, units.Fahrenheit), Quantity(100, units.Celsius))
	require.NoError(t, err)
	between := rc.Where.(*Expression).Operands[0].(*Expression)
	require.Equal(t, ExprBetween, between.Kind)
	assert.Equal(t, units.Celsius, UnitOf(between.Operands[1]), "low bound converted")
	assert.Equal(t, units.Celsius, UnitOf(between.Operands[2]))

	_, err = RangeCheck("bad", readings, "temp", Quantity(0, units.MustParse("m")), Num(1))
	assert.ErrorIs(t, err, units.ErrIncompatibleUnits)

	s, err := NewSchema(Settings{}, readings, nn, uq, rc)
	require.NoError(t, err)
	assert.NoError(t, Validate(s))
}
