// Copyright 2025 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package translator

import (
	"math"
	"testing"

	"github.com/pingcap/ranger"
	"github.com/pingcap/ranger/expression"
	"github.com/pingcap/ranger/metrics"
	"github.com/pingcap/ranger/types"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tr *Translator
	// One column per type class: a and b are bigint, i is int, d is double,
	// r is float, s is varchar, bs is bytes, c is bool, j is json and dt is
	// date.
	a, b, i, d, r, s, bs, c, j, dt *expression.Column
}

func newFixture() *fixture {
	fx := &fixture{
		a:  newTypedCol("a", 1, types.TypeBigInt),
		b:  newTypedCol("b", 2, types.TypeBigInt),
		i:  newTypedCol("i", 3, types.TypeInt),
		d:  newTypedCol("d", 4, types.TypeDouble),
		r:  newTypedCol("r", 5, types.TypeFloat),
		s:  newTypedCol("s", 6, types.TypeVarchar),
		bs: newTypedCol("bs", 7, types.TypeBytes),
		c:  newTypedCol("c", 8, types.TypeBool),
		j:  newTypedCol("j", 9, types.TypeJSON),
		dt: newTypedCol("dt", 10, types.TypeDate),
	}
	fx.tr = NewTranslator(expression.NewSchema(
		fx.a, fx.b, fx.i, fx.d, fx.r, fx.s, fx.bs, fx.c, fx.j, fx.dt))
	return fx
}

func newTypedCol(name string, uniqueID int64, tp types.TypeKind) *expression.Column {
	return &expression.Column{
		ColName:  name,
		UniqueID: uniqueID,
		RetType:  types.NewFieldType(tp),
	}
}

func intConst(v int64) *expression.Constant {
	return &expression.Constant{
		Value:   types.NewIntDatum(v),
		RetType: types.NewFieldType(types.TypeBigInt),
	}
}

func doubleConst(f float64) *expression.Constant {
	return &expression.Constant{
		Value:   types.NewFloat64Datum(f),
		RetType: types.NewFieldType(types.TypeDouble),
	}
}

func stringConst(s string) *expression.Constant {
	return &expression.Constant{
		Value:   types.NewStringDatum(s),
		RetType: types.NewFieldType(types.TypeVarchar),
	}
}

func bytesConst(b string) *expression.Constant {
	return &expression.Constant{
		Value:   types.NewBytesDatum([]byte(b)),
		RetType: types.NewFieldType(types.TypeBytes),
	}
}

func jsonConst(doc string) *expression.Constant {
	return &expression.Constant{
		Value:   types.NewJSONDatum(doc),
		RetType: types.NewFieldType(types.TypeJSON),
	}
}

func dateConst(days int64) *expression.Constant {
	return &expression.Constant{
		Value:   types.NewDateDatum(days),
		RetType: types.NewFieldType(types.TypeDate),
	}
}

func decimalConst(t *testing.T, s string, precision, scale int) *expression.Constant {
	t.Helper()
	dec, err := types.ParseDecimal(s)
	require.NoError(t, err)
	return &expression.Constant{
		Value:   types.NewDecimalDatum(dec),
		RetType: types.NewDecimalFieldType(precision, scale),
	}
}

func nullConst(tp types.TypeKind) *expression.Constant {
	return expression.NewNullWithFieldType(types.NewFieldType(tp))
}

func fn(name string, args ...expression.Expression) *expression.ScalarFunction {
	return expression.NewFunction(name, types.NewFieldType(types.TypeBool), args...)
}

func not(e expression.Expression) *expression.ScalarFunction {
	return fn(expression.UnaryNot, e)
}

func castAs(col *expression.Column, tp types.TypeKind) *expression.ScalarFunction {
	return expression.NewCast(col, types.NewFieldType(tp))
}

func checkExtract(t *testing.T, tr *Translator, pred expression.Expression, wantDomain, wantRemained string) {
	t.Helper()
	res := tr.FromPredicate(pred)
	require.Equal(t, wantDomain, res.TupleDomain.String(), "predicate %s", pred)
	require.Equal(t, wantRemained, res.Remained.String(), "predicate %s", pred)
}

func TestFromPredicateComparisons(t *testing.T) {
	fx := newFixture()
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.EQ, fx.a, intConst(5)), "{a: [5,5]}", "1"},
		{fn(expression.NE, fx.a, intConst(5)), "{a: [-inf,4] [6,+inf]}", "1"},
		{fn(expression.LT, fx.a, intConst(5)), "{a: [-inf,4]}", "1"},
		{fn(expression.LE, fx.a, intConst(5)), "{a: [-inf,5]}", "1"},
		{fn(expression.GT, fx.a, intConst(5)), "{a: [6,+inf]}", "1"},
		{fn(expression.GE, fx.a, intConst(5)), "{a: [5,+inf]}", "1"},
		// A literal on the left mirrors the operator.
		{fn(expression.LT, intConst(5), fx.a), "{a: [6,+inf]}", "1"},
		{fn(expression.GE, intConst(5), fx.a), "{a: [-inf,5]}", "1"},
		{fn(expression.EQ, intConst(5), fx.a), "{a: [5,5]}", "1"},
		// Continuous types keep exclusive bounds.
		{fn(expression.LT, fx.d, doubleConst(5)), "{d: [-inf,5)}", "1"},
		{fn(expression.GE, fx.d, doubleConst(1.5)), "{d: [1.5,+inf]}", "1"},
		{fn(expression.GT, fx.s, stringConst("abc")), `{s: ("abc",+inf]}`, "1"},
		{fn(expression.EQ, fx.dt, dateConst(19)), "{dt: [1970-01-20,1970-01-20]}", "1"},
		{fn(expression.LT, fx.dt, dateConst(19)), "{dt: [-inf,1970-01-19]}", "1"},
		// Comparing against NULL is unsatisfiable under both polarities.
		{fn(expression.EQ, fx.a, nullConst(types.TypeBigInt)), "none", "1"},
		{not(fn(expression.LT, fx.a, nullConst(types.TypeBigInt))), "none", "1"},
		// Negation flips the operator for totally ordered types.
		{not(fn(expression.LT, fx.a, intConst(5))), "{a: [5,+inf]}", "1"},
		{not(fn(expression.GE, fx.a, intConst(5))), "{a: [-inf,4]}", "1"},
		{not(fn(expression.EQ, fx.a, intConst(5))), "{a: [-inf,4] [6,+inf]}", "1"},
		{not(not(fn(expression.EQ, fx.a, intConst(5)))), "{a: [5,5]}", "1"},
		// Column to column comparisons stay residual.
		{fn(expression.LT, fx.a, fx.b), "all", "lt(a, b)"},
		// Constant comparisons fold before extraction.
		{fn(expression.EQ, intConst(1), intConst(1)), "all", "1"},
		{fn(expression.EQ, intConst(1), intConst(2)), "none", "1"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateCastTranslation(t *testing.T) {
	fx := newFixture()
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		// 2.1 floors to 2, so >= 2.1 over the int column becomes > 2.
		{fn(expression.GE, castAs(fx.i, types.TypeDouble), doubleConst(2.1)), "{i: [3,2147483647]}", "1"},
		{fn(expression.GT, castAs(fx.i, types.TypeDouble), doubleConst(2.1)), "{i: [3,2147483647]}", "1"},
		{fn(expression.LE, castAs(fx.i, types.TypeDouble), doubleConst(2.9)), "{i: [-2147483648,2]}", "1"},
		{fn(expression.LT, castAs(fx.i, types.TypeDouble), doubleConst(2.9)), "{i: [-2147483648,2]}", "1"},
		// An exactly representable literal keeps the operator's strictness.
		{fn(expression.GE, castAs(fx.i, types.TypeDouble), doubleConst(2)), "{i: [2,2147483647]}", "1"},
		{fn(expression.GT, castAs(fx.i, types.TypeDouble), doubleConst(2)), "{i: [3,2147483647]}", "1"},
		// No int value maps onto a fractional literal.
		{fn(expression.EQ, castAs(fx.i, types.TypeDouble), doubleConst(2.5)), "none", "1"},
		{fn(expression.NE, castAs(fx.i, types.TypeDouble), doubleConst(2.5)), "{i: not NULL}", "1"},
		// Saturation beyond the type bounds empties or fills the range.
		{fn(expression.LT, castAs(fx.i, types.TypeDouble), doubleConst(-3e9)), "none", "1"},
		{fn(expression.GE, castAs(fx.i, types.TypeDouble), doubleConst(3e9)), "none", "1"},
		{fn(expression.LE, castAs(fx.i, types.TypeDouble), doubleConst(3e9)), "{i: not NULL}", "1"},
		{fn(expression.GT, castAs(fx.i, types.TypeDouble), doubleConst(-3e9)), "{i: not NULL}", "1"},
		// Decimal literals translate through the same saturating path.
		{fn(expression.GE, castAs(fx.i, types.TypeDecimal), decimalConst(t, "2.10", 12, 2)), "{i: [3,2147483647]}", "1"},
		{fn(expression.EQ, castAs(fx.i, types.TypeDecimal), decimalConst(t, "7.00", 12, 2)), "{i: [7,7]}", "1"},
		// Narrowing a double literal to float moves the bound to the
		// nearest representable value.
		{fn(expression.GE, castAs(fx.r, types.TypeDouble), doubleConst(2.5)), "{r: [2.5,+inf]}", "1"},
		{fn(expression.GE, castAs(fx.r, types.TypeDouble), doubleConst(2.1)), "{r: (2.0999999046325684,+inf]}", "1"},
		// bigint to double is lossy above 2^53 and does not translate.
		{
			fn(expression.GE, castAs(fx.a, types.TypeDouble), doubleConst(2.1)),
			"all",
			"ge(cast(a), 2.1)",
		},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateDecimalColumnInt64Extremes(t *testing.T) {
	// The int64 extremes overflow a decimal(10,0) column, so comparing
	// against them must saturate the bound rather than admit rows the
	// predicate rejects.
	dc := &expression.Column{
		ColName:  "dc",
		UniqueID: 1,
		RetType:  types.NewDecimalFieldType(10, 0),
	}
	tr := NewTranslator(expression.NewSchema(dc))
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.LE, dc, intConst(math.MinInt64)), "{dc: [-inf,-9999999999)}", "1"},
		{fn(expression.LT, dc, intConst(math.MinInt64)), "{dc: [-inf,-9999999999)}", "1"},
		{fn(expression.GE, dc, intConst(math.MinInt64)), "{dc: [-9999999999,+inf]}", "1"},
		{fn(expression.GT, dc, intConst(math.MaxInt64)), "{dc: (9999999999,+inf]}", "1"},
		{fn(expression.LE, dc, intConst(math.MaxInt64)), "{dc: [-inf,9999999999]}", "1"},
		{fn(expression.EQ, dc, intConst(math.MinInt64)), "none", "1"},
		{fn(expression.NE, dc, intConst(math.MaxInt64)), "{dc: not NULL}", "1"},
	}
	for _, ca := range cases {
		checkExtract(t, tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateFloatNaN(t *testing.T) {
	fx := newFixture()
	nan := doubleConst(math.NaN())
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		// NaN literal: only ne holds, and it holds everywhere non null.
		{fn(expression.EQ, fx.d, nan), "none", "1"},
		{fn(expression.LT, fx.d, nan), "none", "1"},
		{fn(expression.GE, fx.d, nan), "none", "1"},
		{fn(expression.NE, fx.d, nan), "{d: not NULL}", "1"},
		{not(fn(expression.NE, fx.d, nan)), "none", "1"},
		{not(fn(expression.LT, fx.d, nan)), "{d: not NULL}", "1"},
		// Sets that include NaN are not range representable: keep a not
		// null bound and re-check rows against the original.
		{fn(expression.NE, fx.d, doubleConst(5)), "{d: not NULL}", "ne(d, 5)"},
		{not(fn(expression.EQ, fx.d, doubleConst(5))), "{d: not NULL}", "not(eq(d, 5))"},
		{not(fn(expression.LT, fx.d, doubleConst(5))), "{d: not NULL}", "not(lt(d, 5))"},
		{not(fn(expression.GE, fx.r, doubleConst(1))), "{r: not NULL}", "not(ge(r, 1))"},
		// NOT <> collapses back to equality, which never matches NaN.
		{not(fn(expression.NE, fx.d, doubleConst(5))), "{d: [5,5]}", "1"},
		// Range comparisons themselves exclude NaN and stay exact.
		{fn(expression.GT, fx.d, doubleConst(1)), "{d: (1,+inf]}", "1"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}

	// The union of d > 1.0 and d < 5.0 covers every number yet proves
	// nothing about NaN, so the domain weakens to not null and the original
	// predicate stays as the filter.
	or := fn(expression.LogicOr,
		fn(expression.GT, fx.d, doubleConst(1)),
		fn(expression.LT, fx.d, doubleConst(5)))
	checkExtract(t, fx.tr, or, "{d: not NULL}", "or(gt(d, 1), lt(d, 5))")

	// The same shape over bigint has no NaN and extracts exactly.
	orInt := fn(expression.LogicOr,
		fn(expression.GT, fx.a, intConst(1)),
		fn(expression.LT, fx.a, intConst(5)))
	checkExtract(t, fx.tr, orInt, "{a: not NULL}", "1")

	// A branch that already carries the all set genuinely includes NaN.
	orNull := fn(expression.LogicOr,
		fn(expression.IsNull, fx.d),
		not(fn(expression.IsNull, fx.d)))
	checkExtract(t, fx.tr, orNull, "all", "1")
}

func TestFromPredicateNullSafeEQ(t *testing.T) {
	fx := newFixture()
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.NullEQ, fx.a, nullConst(types.TypeBigInt)), "{a: NULL}", "1"},
		{not(fn(expression.NullEQ, fx.a, nullConst(types.TypeBigInt))), "{a: not NULL}", "1"},
		{fn(expression.NullEQ, fx.a, intConst(5)), "{a: [5,5]}", "1"},
		{fn(expression.NullEQ, intConst(5), fx.a), "{a: [5,5]}", "1"},
		// The complement of a point keeps NULL, unlike ne.
		{not(fn(expression.NullEQ, fx.a, intConst(5))), "{a: [-inf,4] [6,+inf] or NULL}", "1"},
		// A literal outside the column type decides the predicate outright.
		{fn(expression.NullEQ, castAs(fx.i, types.TypeDouble), doubleConst(2.5)), "none", "1"},
		{not(fn(expression.NullEQ, castAs(fx.i, types.TypeDouble), doubleConst(2.5))), "all", "1"},
		// Floating point distinct sets keep NaN and NULL both, so nothing
		// useful can be extracted.
		{not(fn(expression.NullEQ, fx.d, doubleConst(5))), "all", "not(nulleq(d, 5))"},
		{fn(expression.NullEQ, fx.d, doubleConst(math.NaN())), "all", "nulleq(d, NaN)"},
		{fn(expression.NullEQ, fx.d, doubleConst(5)), "{d: [5,5]}", "1"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateLogic(t *testing.T) {
	fx := newFixture()
	rand := fn("rand")
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{
			fn(expression.LogicAnd, fn(expression.EQ, fx.a, intConst(5)), fn(expression.GT, fx.b, intConst(7))),
			"{a: [5,5], b: [8,+inf]}",
			"1",
		},
		// Contradictory conjuncts collapse to none and drop residuals.
		{
			fn(expression.LogicAnd, fn(expression.EQ, fx.a, intConst(5)), fn(expression.EQ, fx.a, intConst(6))),
			"none",
			"1",
		},
		// Unsupported conjuncts stay behind as residual filters.
		{
			fn(expression.LogicAnd, fn(expression.EQ, fx.a, intConst(5)), rand),
			"{a: [5,5]}",
			"rand()",
		},
		// A single column disjunction unions exactly.
		{
			fn(expression.LogicOr, fn(expression.EQ, fx.a, intConst(1)), fn(expression.EQ, fx.a, intConst(5))),
			"{a: [1,1] [5,5]}",
			"1",
		},
		// Disjunctions across columns cannot be represented column wise.
		{
			fn(expression.LogicOr, fn(expression.EQ, fx.a, intConst(5)), fn(expression.EQ, fx.b, intConst(7))),
			"all",
			"or(eq(a, 5), eq(b, 7))",
		},
		// One branch covering the other makes the union that branch.
		{
			fn(expression.LogicOr,
				fn(expression.LogicAnd, fn(expression.EQ, fx.a, intConst(1)), fn(expression.EQ, fx.b, intConst(2))),
				fn(expression.EQ, fx.a, intConst(1))),
			"{a: [1,1]}",
			"1",
		},
		// De Morgan drives negation through the combiners.
		{
			not(fn(expression.LogicOr, fn(expression.EQ, fx.a, intConst(5)), fn(expression.EQ, fx.a, intConst(7)))),
			"{a: [-inf,4] [6,6] [8,+inf]}",
			"1",
		},
		{
			not(fn(expression.LogicAnd, fn(expression.EQ, fx.a, intConst(5)), fn(expression.EQ, fx.b, intConst(7)))),
			"all",
			"not(and(eq(a, 5), eq(b, 7)))",
		},
		// Nested trees compose per column.
		{
			fn(expression.LogicAnd,
				fn(expression.LogicOr, fn(expression.EQ, fx.a, intConst(1)), fn(expression.EQ, fx.a, intConst(5))),
				fn(expression.LT, fx.b, intConst(10))),
			"{a: [1,1] [5,5], b: [-inf,9]}",
			"1",
		},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}

	// The conjunction domain is the intersection of the conjunct domains
	// whenever both sides extract fully.
	lhs := fx.tr.FromPredicate(fn(expression.GT, fx.a, intConst(1)))
	rhs := fx.tr.FromPredicate(fn(expression.LE, fx.a, intConst(9)))
	both := fx.tr.FromPredicate(fn(expression.LogicAnd,
		fn(expression.GT, fx.a, intConst(1)), fn(expression.LE, fx.a, intConst(9))))
	require.True(t, both.TupleDomain.Equal(lhs.TupleDomain.Intersect(rhs.TupleDomain)))
	require.Equal(t, "{a: [2,9]}", both.TupleDomain.String())

	// None absorbs any intersection.
	none := ranger.NoneTupleDomain[*expression.Column]()
	require.True(t, none.Intersect(lhs.TupleDomain).IsNone())
	require.True(t, none.Intersect(ranger.AllTupleDomain[*expression.Column]()).IsNone())
}

func TestFromPredicateIn(t *testing.T) {
	fx := newFixture()
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.In, fx.a, intConst(1), intConst(5)), "{a: [1,1] [5,5]}", "1"},
		// Adjacent integers merge into one range.
		{fn(expression.In, fx.a, intConst(1), intConst(2)), "{a: [1,2]}", "1"},
		{fn(expression.In, fx.a, intConst(7)), "{a: [7,7]}", "1"},
		// A NULL item can never turn the membership check true.
		{fn(expression.In, fx.a, intConst(1), nullConst(types.TypeBigInt), intConst(5)), "{a: [1,1] [5,5]}", "1"},
		{not(fn(expression.In, fx.a, intConst(1), intConst(5))), "{a: [-inf,0] [2,4] [6,+inf]}", "1"},
		// NOT IN over a list with NULL is never satisfiable.
		{not(fn(expression.In, fx.a, intConst(1), intConst(2), nullConst(types.TypeBigInt))), "none", "1"},
		// A non literal item leaves its equality behind as residual.
		{not(fn(expression.In, fx.a, intConst(1), fx.b)), "{a: [-inf,0] [2,+inf]}", "not(eq(a, b))"},
		// Floating point NOT IN keeps NaN, only a not null bound extracts.
		{
			not(fn(expression.In, fx.d, doubleConst(1), doubleConst(5))),
			"{d: not NULL}",
			"and(not(eq(d, 1)), not(eq(d, 5)))",
		},
		{fn(expression.In, fx.d, doubleConst(1), doubleConst(5)), "{d: [1,1] [5,5]}", "1"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateBetween(t *testing.T) {
	fx := newFixture()
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.Between, fx.a, intConst(1), intConst(10)), "{a: [1,10]}", "1"},
		{fn(expression.Between, fx.d, doubleConst(1), doubleConst(10)), "{d: [1,10]}", "1"},
		// A NULL bound makes the conjunction unsatisfiable.
		{fn(expression.Between, fx.a, intConst(1), nullConst(types.TypeBigInt)), "none", "1"},
		{fn(expression.Between, fx.a, nullConst(types.TypeBigInt), intConst(10)), "none", "1"},
		{not(fn(expression.Between, fx.a, intConst(1), intConst(10))), "{a: [-inf,0] [11,+inf]}", "1"},
		// The complement over doubles includes NaN on both sides.
		{
			not(fn(expression.Between, fx.d, doubleConst(1), doubleConst(10))),
			"{d: not NULL}",
			"not(between(d, 1, 10))",
		},
		// One non literal bound still extracts the other.
		{fn(expression.Between, fx.a, fx.b, intConst(10)), "{a: [-inf,10]}", "ge(a, b)"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateLikePrefix(t *testing.T) {
	fx := newFixture()
	abcLike := fn(expression.Like, fx.s, stringConst("abc%"))
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		// The prefix range is a pre filter, the pattern still runs on rows.
		{abcLike, `{s: ["abc","abd")}`, `like(s, "abc%")`},
		{fn(expression.Like, fx.s, stringConst("abc%def")), `{s: ["abc","abd")}`, `like(s, "abc%def")`},
		// '_' consumes exactly one character, so the bare prefix itself
		// cannot match.
		{fn(expression.Like, fx.s, stringConst("abc_")), `{s: ("abc","abd")}`, `like(s, "abc_")`},
		// Patterns without wildcards degenerate to equality.
		{fn(expression.Like, fx.s, stringConst("abc")), `{s: ["abc","abc"]}`, "1"},
		{not(fn(expression.Like, fx.s, stringConst("abc"))), `{s: [-inf,"abc") ("abc",+inf]}`, "1"},
		// An escaped wildcard is a literal.
		{fn(expression.Like, fx.s, stringConst(`ab\%c`)), `{s: ["ab%c","ab%c"]}`, "1"},
		{fn(expression.Like, fx.s, stringConst(`x#%y%`), stringConst("#")), `{s: ["x%y","x%z")}`, `like(s, "x#%y%", "#")`},
		// No usable prefix, nothing to push down.
		{fn(expression.Like, fx.s, stringConst("%abc")), "all", `like(s, "%abc")`},
		{fn(expression.Like, fx.s, stringConst("_bc")), "all", `like(s, "_bc")`},
		{not(abcLike), "all", `not(like(s, "abc%"))`},
		{fn(expression.Like, fx.s, nullConst(types.TypeVarchar)), "none", "1"},
		{fn(expression.Like, fx.s, fx.b), "all", "like(s, b)"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}

	// A prefix of 0xff bytes has no upper sibling, the range runs to +inf.
	res := fx.tr.FromPredicate(fn(expression.Like, fx.s, stringConst("\xff\xff%")))
	want := ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{
		fx.s: ranger.NewDomain(ranger.SortedRanges(ranger.NewRange(
			fx.s.RetType,
			types.NewStringDatum("\xff\xff"), false,
			types.MaxValueDatum(), false)), false),
	})
	require.True(t, res.TupleDomain.Equal(want))
}

func TestFromPredicateStartsWith(t *testing.T) {
	fx := newFixture()
	starts := fn(expression.StartsWith, fx.s, stringConst("abc"))
	checkExtract(t, fx.tr, starts, `{s: ["abc","abd")}`, `startswith(s, "abc")`)
	checkExtract(t, fx.tr, fn(expression.StartsWith, fx.s, nullConst(types.TypeVarchar)), "none", "1")
	checkExtract(t, fx.tr, fn(expression.StartsWith, fx.s, stringConst("")), "all", `startswith(s, "")`)
	checkExtract(t, fx.tr, not(starts), "all", `not(startswith(s, "abc"))`)

	// Incrementing the prefix carries through trailing 0xff bytes.
	res := fx.tr.FromPredicate(fn(expression.StartsWith, fx.s, stringConst("a\xff")))
	want := ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{
		fx.s: ranger.NewDomain(ranger.SortedRanges(ranger.NewRange(
			fx.s.RetType,
			types.NewStringDatum("a\xff"), false,
			types.NewStringDatum("b"), true)), false),
	})
	require.True(t, res.TupleDomain.Equal(want))

	// Byte string columns bound with byte datums.
	res = fx.tr.FromPredicate(fn(expression.StartsWith, fx.bs, bytesConst("ab")))
	want = ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{
		fx.bs: ranger.NewDomain(ranger.SortedRanges(ranger.NewRange(
			fx.bs.RetType,
			types.NewBytesDatum([]byte("ab")), false,
			types.NewBytesDatum([]byte("ac")), true)), false),
	})
	require.True(t, res.TupleDomain.Equal(want))
}

func TestFromPredicateIsNullAndConstants(t *testing.T) {
	fx := newFixture()
	z := newTypedCol("z", 99, types.TypeBigInt)
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.IsNull, fx.a), "{a: NULL}", "1"},
		{not(fn(expression.IsNull, fx.a)), "{a: not NULL}", "1"},
		{fn(expression.IsNull, fx.j), "{j: NULL}", "1"},
		// Columns outside the schema cannot be constrained.
		{fn(expression.IsNull, z), "all", "isnull(z)"},
		{expression.NewTrue(), "all", "1"},
		{expression.NewFalse(), "none", "1"},
		{expression.NewNull(), "none", "1"},
		{not(expression.NewTrue()), "none", "1"},
		// A bare boolean column constrains itself to TRUE.
		{fx.c, "{c: [1,1]}", "1"},
		{not(fx.c), "{c: [0,0]}", "1"},
		{fn(expression.EQ, fx.c, expression.NewTrue()), "{c: [1,1]}", "1"},
		// Non boolean bare columns stay residual.
		{fx.a, "all", "a"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestFromPredicateJSON(t *testing.T) {
	fx := newFixture()
	cases := []struct {
		pred     expression.Expression
		domain   string
		remained string
	}{
		{fn(expression.EQ, fx.j, jsonConst("1")), "{j: {1}}", "1"},
		{fn(expression.NE, fx.j, jsonConst("1")), "{j: not {1}}", "1"},
		{not(fn(expression.EQ, fx.j, jsonConst("1"))), "{j: not {1}}", "1"},
		{fn(expression.In, fx.j, jsonConst("1"), jsonConst("2")), "{j: {1, 2}}", "1"},
		{not(fn(expression.In, fx.j, jsonConst("1"), jsonConst("2"))), "{j: not {1, 2}}", "1"},
		{fn(expression.NullEQ, fx.j, jsonConst("1")), "{j: {1}}", "1"},
		{not(fn(expression.NullEQ, fx.j, jsonConst("1"))), "{j: not {1} or NULL}", "1"},
		// JSON values have no order, range comparisons stay residual.
		{fn(expression.LT, fx.j, jsonConst("1")), "all", "lt(j, 1)"},
		{not(fn(expression.GE, fx.j, jsonConst("1"))), "all", "not(ge(j, 1))"},
	}
	for _, ca := range cases {
		checkExtract(t, fx.tr, ca.pred, ca.domain, ca.remained)
	}
}

func TestExtractionMetrics(t *testing.T) {
	fx := newFixture()
	full := metrics.ReadCounter(metrics.ExtractionCounter.WithLabelValues(metrics.LblFull))
	partial := metrics.ReadCounter(metrics.ExtractionCounter.WithLabelValues(metrics.LblPartial))
	none := metrics.ReadCounter(metrics.ExtractionCounter.WithLabelValues(metrics.LblNone))

	fx.tr.FromPredicate(fn(expression.EQ, fx.a, intConst(5)))
	fx.tr.FromPredicate(fn(expression.Like, fx.s, stringConst("abc%")))
	fx.tr.FromPredicate(fn("rand"))

	require.Equal(t, full+1, metrics.ReadCounter(metrics.ExtractionCounter.WithLabelValues(metrics.LblFull)))
	require.Equal(t, partial+1, metrics.ReadCounter(metrics.ExtractionCounter.WithLabelValues(metrics.LblPartial)))
	require.Equal(t, none+1, metrics.ReadCounter(metrics.ExtractionCounter.WithLabelValues(metrics.LblNone)))
}
