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
	"sort"
	"strings"

	"github.com/pingcap/ranger/types"
)

// SortedRangeSet is the ValueSet variant for ordered types: disjoint,
// non-adjacent ranges sorted ascending. The canonical form lets Equal work
// structurally and lets binary operations run as a single merge sweep.
type SortedRangeSet struct {
	tp     *types.FieldType
	ranges []*Range
}

// Tp implements ValueSet interface.
func (s *SortedRangeSet) Tp() *types.FieldType {
	return s.tp
}

// Ranges returns the normalized ranges. Callers must not mutate them.
func (s *SortedRangeSet) Ranges() []*Range {
	return s.ranges
}

// RangeCount returns the number of ranges in the set.
func (s *SortedRangeSet) RangeCount() int {
	return len(s.ranges)
}

// IsNone implements ValueSet interface.
func (s *SortedRangeSet) IsNone() bool {
	return len(s.ranges) == 0
}

// IsAll implements ValueSet interface.
func (s *SortedRangeSet) IsAll() bool {
	return len(s.ranges) == 1 && s.ranges[0].IsFullRange()
}

// IsSingleValue implements ValueSet interface.
func (s *SortedRangeSet) IsSingleValue() bool {
	return len(s.ranges) == 1 && s.ranges[0].IsPoint()
}

// SingleValue implements ValueSet interface.
func (s *SortedRangeSet) SingleValue() (types.Datum, bool) {
	if !s.IsSingleValue() {
		return types.Datum{}, false
	}
	return s.ranges[0].LowVal, true
}

// Span returns the convex hull of the set, ok is false for the empty set.
func (s *SortedRangeSet) Span() (*Range, bool) {
	if s.IsNone() {
		return nil, false
	}
	first, last := s.ranges[0], s.ranges[len(s.ranges)-1]
	return NewRange(s.tp, first.LowVal, first.LowExclude, last.HighVal, last.HighExclude), true
}

// ContainsValue implements ValueSet interface. A NaN probe is a member of
// the canonical all set only.
func (s *SortedRangeSet) ContainsValue(v types.Datum) bool {
	if v.IsNaN() {
		return s.IsAll()
	}
	idx := sort.Search(len(s.ranges), func(i int) bool {
		ran := s.ranges[i]
		cmp := mustCompare(v, ran.HighVal)
		return cmp < 0 || (cmp == 0 && !ran.HighExclude)
	})
	return idx < len(s.ranges) && s.ranges[idx].ContainsValue(v)
}

// Union implements ValueSet interface.
func (s *SortedRangeSet) Union(other ValueSet) ValueSet {
	o := s.sibling(other)
	points := append(pointsFromRanges(s.ranges), pointsFromRanges(o.ranges)...)
	return &SortedRangeSet{tp: s.tp, ranges: rangesFromPoints(s.tp, mergePoints(points, true))}
}

// Intersect implements ValueSet interface.
func (s *SortedRangeSet) Intersect(other ValueSet) ValueSet {
	o := s.sibling(other)
	points := append(pointsFromRanges(s.ranges), pointsFromRanges(o.ranges)...)
	return &SortedRangeSet{tp: s.tp, ranges: rangesFromPoints(s.tp, mergePoints(points, false))}
}

// Subtract implements ValueSet interface.
func (s *SortedRangeSet) Subtract(other ValueSet) ValueSet {
	return s.Intersect(other.Complement())
}

// Complement implements ValueSet interface. The complement covers the rest
// of the ordered value space; all and none trade places, which is where the
// floating point NaN membership flips with them.
func (s *SortedRangeSet) Complement() ValueSet {
	if s.IsNone() {
		return AllValueSet(s.tp)
	}
	var points []point
	low := point{value: types.MinNotNullDatum(), start: true}
	for _, ran := range s.ranges {
		if ran.LowVal.Kind() != types.KindMinNotNull {
			points = append(points, low, point{value: ran.LowVal, excl: !ran.LowExclude})
		}
		low = point{value: ran.HighVal, excl: !ran.HighExclude, start: true}
	}
	if low.value.Kind() != types.KindMaxValue {
		points = append(points, low, point{value: types.MaxValueDatum()})
	}
	return &SortedRangeSet{tp: s.tp, ranges: rangesFromPoints(s.tp, points)}
}

// Equal implements ValueSet interface.
func (s *SortedRangeSet) Equal(other ValueSet) bool {
	o, ok := other.(*SortedRangeSet)
	if !ok || !s.tp.Equal(o.tp) || len(s.ranges) != len(o.ranges) {
		return false
	}
	for i, ran := range s.ranges {
		if !ran.Equal(o.ranges[i]) {
			return false
		}
	}
	return true
}

// DiscreteValues implements ValueSet interface. Only a set of pure point
// ranges enumerates.
func (s *SortedRangeSet) DiscreteValues() ([]types.Datum, bool) {
	values := make([]types.Datum, 0, len(s.ranges))
	for _, ran := range s.ranges {
		if !ran.IsPoint() {
			return nil, false
		}
		values = append(values, ran.LowVal)
	}
	return values, true
}

// Enumerate lists every value of a discrete typed set, walking each range
// through the type successor. ok is false when the type is not discrete or
// the set holds more than limit values.
func (s *SortedRangeSet) Enumerate(limit int) ([]types.Datum, bool) {
	if !s.tp.IsDiscrete() {
		return nil, false
	}
	values := make([]types.Datum, 0, limit)
	for _, ran := range s.ranges {
		if ran.LowVal.IsSentinel() || ran.HighVal.IsSentinel() {
			return nil, false
		}
		for v := ran.LowVal; ; {
			if len(values) == limit {
				return nil, false
			}
			values = append(values, v)
			if mustCompare(v, ran.HighVal) == 0 {
				break
			}
			next, ok := s.tp.Successor(v)
			if !ok {
				return nil, false
			}
			v = next
		}
	}
	return values, true
}

// Simplify implements ValueSet interface, collapsing a wide set to its span.
func (s *SortedRangeSet) Simplify(threshold int) ValueSet {
	if len(s.ranges) <= threshold {
		return s
	}
	span, _ := s.Span()
	return &SortedRangeSet{tp: s.tp, ranges: []*Range{span}}
}

// String implements the Stringer interface.
func (s *SortedRangeSet) String() string {
	if s.IsNone() {
		return "none"
	}
	strs := make([]string, 0, len(s.ranges))
	for _, ran := range s.ranges {
		strs = append(strs, ran.String())
	}
	return strings.Join(strs, " ")
}

func (s *SortedRangeSet) sibling(other ValueSet) *SortedRangeSet {
	o, ok := other.(*SortedRangeSet)
	if !ok || !s.tp.Equal(o.tp) {
		panic(fmt.Sprintf("combining range set of %s with value set of %s", s.tp, other.Tp()))
	}
	return o
}
