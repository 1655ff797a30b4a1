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

package ranger

import (
	"fmt"

	"github.com/pingcap/ranger/types"
)

// ValueSet is the set of non-null values one column may take. It is a
// closed sum of two variants picked by the type capability, *SortedRangeSet
// for ordered types and *DiscreteSet for equatable-only types. Operations
// never convert between the variants; combining sets of different variants
// or types is an engine bug and panics.
//
// For the floating point types the canonical all set is the only set that
// contains NaN. Every other set is built from ranges and ranges never hold
// NaN, callers that need NaN-aware complements must handle that above this
// package.
type ValueSet interface {
	fmt.Stringer
	// Tp returns the value type of the set.
	Tp() *types.FieldType
	IsNone() bool
	IsAll() bool
	IsSingleValue() bool
	// SingleValue returns the sole member of a single value set.
	SingleValue() (types.Datum, bool)
	ContainsValue(v types.Datum) bool
	Union(other ValueSet) ValueSet
	Intersect(other ValueSet) ValueSet
	Subtract(other ValueSet) ValueSet
	Complement() ValueSet
	Equal(other ValueSet) bool
	// DiscreteValues lists the members of a finitely enumerated set, in
	// canonical order. ok is false when the set is not an enumeration.
	DiscreteValues() ([]types.Datum, bool)
	// Simplify returns a possibly looser set that still contains this one,
	// collapsing representations wider than threshold entries.
	Simplify(threshold int) ValueSet
}

// NoneValueSet returns the empty set of tp.
func NoneValueSet(tp *types.FieldType) ValueSet {
	if tp.IsOrdered() {
		return &SortedRangeSet{tp: tp}
	}
	return &DiscreteSet{tp: tp, whitelist: true}
}

// AllValueSet returns the set of every non-null value of tp, NaN included
// for the floating point types.
func AllValueSet(tp *types.FieldType) ValueSet {
	if tp.IsOrdered() {
		return &SortedRangeSet{tp: tp, ranges: []*Range{FullRange(tp)}}
	}
	return &DiscreteSet{tp: tp}
}

// ValueSetOf returns the set holding exactly the given values, in the
// variant tp calls for.
func ValueSetOf(tp *types.FieldType, values ...types.Datum) ValueSet {
	if !tp.IsOrdered() {
		return newDiscreteSet(tp, true, values)
	}
	ranges := make([]*Range, 0, len(values))
	for _, v := range values {
		ranges = append(ranges, PointRange(tp, v))
	}
	if len(ranges) == 0 {
		return NoneValueSet(tp)
	}
	return SortedRanges(ranges...)
}

// SortedRanges builds a normalized range set covering the union of the
// given ranges, which must share one type.
func SortedRanges(ranges ...*Range) *SortedRangeSet {
	if len(ranges) == 0 {
		panic("building a range set from no ranges, use NoneValueSet")
	}
	tp := ranges[0].Tp
	for _, ran := range ranges[1:] {
		if !tp.Equal(ran.Tp) {
			panic(fmt.Sprintf("range type mismatch: %s vs %s", tp, ran.Tp))
		}
	}
	normalized := rangesFromPoints(tp, mergePoints(pointsFromRanges(ranges), true))
	return &SortedRangeSet{tp: tp, ranges: normalized}
}
