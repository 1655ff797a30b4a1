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

// Package ranger implements the per-column constraint algebra: ranges over
// ordered value spaces, value sets, nullable domains and the per-column
// conjunction TupleDomain. Everything here is immutable, operations return
// new values.
package ranger

import (
	"fmt"
	"math"

	"github.com/pingcap/ranger/types"
)

// Range represents a contiguous interval over one ordered type. Both ends
// carry their own exclusive flag, a sentinel datum marks an unbounded end.
// Ranges over discrete types are canonicalized at construction to inclusive
// bounds with the type minimum and maximum materialized, so [nil, 5) over an
// int32 column is stored as [-2147483648, 4].
type Range struct {
	LowVal      types.Datum
	HighVal     types.Datum
	LowExclude  bool
	HighExclude bool
	Tp          *types.FieldType
}

// NewRange builds a validated range. Bound datums must match the value kind
// of tp, a NULL or NaN bound or a range that canonicalizes to the empty set
// is an engine bug and panics.
func NewRange(tp *types.FieldType, low types.Datum, lowExclude bool, high types.Datum, highExclude bool) *Range {
	r, ok := makeRange(tp, low, lowExclude, high, highExclude)
	if !ok {
		panic(fmt.Sprintf("empty range over %s: low %s high %s", tp, low, high))
	}
	return r
}

// PointRange builds the single value range [v, v].
func PointRange(tp *types.FieldType, v types.Datum) *Range {
	return NewRange(tp, v, false, v, false)
}

// FullRange builds the range covering every non-null value of tp.
func FullRange(tp *types.FieldType) *Range {
	return NewRange(tp, types.MinNotNullDatum(), false, types.MaxValueDatum(), false)
}

// MakeRange builds a validated range like NewRange but reports ok=false
// instead of panicking when the bounds denote the empty set, as happens for
// ranges derived from contradictory predicates such as (5, 5).
func MakeRange(tp *types.FieldType, low types.Datum, lowExclude bool, high types.Datum, highExclude bool) (*Range, bool) {
	return makeRange(tp, low, lowExclude, high, highExclude)
}

// makeRange canonicalizes and validates, reporting ok=false when the range
// denotes the empty set. Kind mismatches still panic, they cannot arise from
// well formed predicates.
func makeRange(tp *types.FieldType, low types.Datum, lowExclude bool, high types.Datum, highExclude bool) (*Range, bool) {
	checkBound(tp, low, true)
	checkBound(tp, high, false)
	if tp.IsDiscrete() {
		if lo, hi, ok := tp.Bounds(); ok {
			if low.Kind() == types.KindMinNotNull {
				low, lowExclude = lo, false
			}
			if high.Kind() == types.KindMaxValue {
				high, highExclude = hi, false
			}
		}
		if lowExclude && !low.IsSentinel() {
			next, ok := tp.Successor(low)
			if !ok {
				return nil, false
			}
			low, lowExclude = next, false
		}
		if highExclude && !high.IsSentinel() {
			prev, ok := tp.Predecessor(high)
			if !ok {
				return nil, false
			}
			high, highExclude = prev, false
		}
	}
	cmp := mustCompare(low, high)
	if cmp > 0 || (cmp == 0 && (lowExclude || highExclude)) {
		return nil, false
	}
	return &Range{
		LowVal:      low,
		HighVal:     high,
		LowExclude:  lowExclude,
		HighExclude: highExclude,
		Tp:          tp,
	}, true
}

func checkBound(tp *types.FieldType, d types.Datum, isLow bool) {
	if !tp.IsOrdered() {
		panic(fmt.Sprintf("ranges are undefined over %s", tp))
	}
	switch d.Kind() {
	case types.KindNull:
		panic("NULL is not a range bound, null admission lives on the domain")
	case types.KindMinNotNull:
		if !isLow {
			panic("-inf as a high bound")
		}
		return
	case types.KindMaxValue:
		if isLow {
			panic("+inf as a low bound")
		}
		return
	}
	if d.IsNaN() {
		panic("NaN is not a range bound")
	}
	if want := kindForType(tp); d.Kind() != want {
		panic(fmt.Sprintf("range bound kind %d does not fit type %s", d.Kind(), tp))
	}
}

func kindForType(tp *types.FieldType) byte {
	switch tp.Tp {
	case types.TypeBool, types.TypeTinyInt, types.TypeSmallInt, types.TypeInt, types.TypeBigInt:
		return types.KindInt64
	case types.TypeFloat:
		return types.KindFloat32
	case types.TypeDouble:
		return types.KindFloat64
	case types.TypeDecimal:
		return types.KindDecimal
	case types.TypeVarchar:
		return types.KindString
	case types.TypeBytes:
		return types.KindBytes
	case types.TypeDate:
		return types.KindDate
	}
	panic(fmt.Sprintf("no range bound kind for type %s", tp))
}

// mustCompare compares two bound datums of one range set. The set holds a
// single type, a comparison error here means a broken invariant.
func mustCompare(a, b types.Datum) int {
	cmp, err := a.Compare(b)
	if err != nil {
		panic(fmt.Sprintf("comparing range bounds: %v", err))
	}
	return cmp
}

// LowUnbounded reports whether the range has no effective lower limit,
// either a sentinel or the materialized type minimum.
func (ran *Range) LowUnbounded() bool {
	if ran.LowVal.Kind() == types.KindMinNotNull {
		return true
	}
	if lo, _, ok := ran.Tp.Bounds(); ok {
		return !ran.LowExclude && mustCompare(ran.LowVal, lo) == 0
	}
	return false
}

// HighUnbounded reports whether the range has no effective upper limit.
func (ran *Range) HighUnbounded() bool {
	if ran.HighVal.Kind() == types.KindMaxValue {
		return true
	}
	if _, hi, ok := ran.Tp.Bounds(); ok {
		return !ran.HighExclude && mustCompare(ran.HighVal, hi) == 0
	}
	return false
}

// IsPoint returns if the range is a single value point.
func (ran *Range) IsPoint() bool {
	if ran.LowVal.IsSentinel() || ran.HighVal.IsSentinel() {
		return false
	}
	return !ran.LowExclude && !ran.HighExclude && mustCompare(ran.LowVal, ran.HighVal) == 0
}

// IsFullRange returns if the range covers the whole non-null value space.
func (ran *Range) IsFullRange() bool {
	return ran.LowUnbounded() && ran.HighUnbounded()
}

// ContainsValue reports whether v falls inside the range. v must be a
// non-null value of the range's type.
func (ran *Range) ContainsValue(v types.Datum) bool {
	cmp := mustCompare(v, ran.LowVal)
	if cmp < 0 || (cmp == 0 && ran.LowExclude) {
		return false
	}
	cmp = mustCompare(v, ran.HighVal)
	if cmp > 0 || (cmp == 0 && ran.HighExclude) {
		return false
	}
	return true
}

// Overlaps reports whether the two ranges share at least one value.
func (ran *Range) Overlaps(other *Range) bool {
	cmp := mustCompare(ran.HighVal, other.LowVal)
	if cmp < 0 || (cmp == 0 && (ran.HighExclude || other.LowExclude)) {
		return false
	}
	cmp = mustCompare(other.HighVal, ran.LowVal)
	if cmp < 0 || (cmp == 0 && (other.HighExclude || ran.LowExclude)) {
		return false
	}
	return true
}

// Span returns the convex hull of the two ranges.
func (ran *Range) Span(other *Range) *Range {
	low, lowExclude := ran.LowVal, ran.LowExclude
	if cmp := mustCompare(other.LowVal, low); cmp < 0 || (cmp == 0 && !other.LowExclude) {
		low, lowExclude = other.LowVal, other.LowExclude
	}
	high, highExclude := ran.HighVal, ran.HighExclude
	if cmp := mustCompare(other.HighVal, high); cmp > 0 || (cmp == 0 && !other.HighExclude) {
		high, highExclude = other.HighVal, other.HighExclude
	}
	return NewRange(ran.Tp, low, lowExclude, high, highExclude)
}

// Equal reports deep equality. Canonicalization at construction makes this
// a meaningful set equality for ranges of one type.
func (ran *Range) Equal(other *Range) bool {
	return ran.Tp.Equal(other.Tp) &&
		ran.LowExclude == other.LowExclude &&
		ran.HighExclude == other.HighExclude &&
		mustCompare(ran.LowVal, other.LowVal) == 0 &&
		mustCompare(ran.HighVal, other.HighVal) == 0
}

// Clone returns a copy of the range.
func (ran *Range) Clone() *Range {
	if ran == nil {
		return nil
	}
	newRange := *ran
	return &newRange
}

// String implements the Stringer interface.
func (ran *Range) String() string {
	l, r := "[", "]"
	if ran.LowExclude {
		l = "("
	}
	if ran.HighExclude {
		r = ")"
	}
	return l + formatBound(ran.Tp, ran.LowVal, true) + "," + formatBound(ran.Tp, ran.HighVal, false) + r
}

// formatBound renders a range bound. Sentinels and the materialized int64
// extremes render as -inf and +inf so an unbounded bigint range reads the
// same as an unbounded string range.
func formatBound(tp *types.FieldType, d types.Datum, isLeftSide bool) string {
	switch d.Kind() {
	case types.KindMinNotNull:
		return "-inf"
	case types.KindMaxValue:
		return "+inf"
	case types.KindInt64:
		if tp.Tp == types.TypeBigInt {
			switch d.GetInt64() {
			case math.MinInt64:
				if isLeftSide {
					return "-inf"
				}
			case math.MaxInt64:
				if !isLeftSide {
					return "+inf"
				}
			}
		}
	}
	return d.String()
}
