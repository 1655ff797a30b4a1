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
	"slices"

	"github.com/pingcap/ranger/types"
)

// point is one end of a range interval in the sweep representation. Every
// range contributes a start and an end point; set operations sort all points
// of both operands and count how many ranges cover each stretch.
type point struct {
	value types.Datum
	excl  bool
	start bool
}

func (p point) String() string {
	val := p.value.String()
	switch p.value.Kind() {
	case types.KindMinNotNull:
		val = "-inf"
	case types.KindMaxValue:
		val = "+inf"
	}
	if p.start {
		symbol := "["
		if p.excl {
			symbol = "("
		}
		return symbol + val
	}
	symbol := "]"
	if p.excl {
		symbol = ")"
	}
	return val + symbol
}

// pointWeight orders points sharing one value as [v < v) < (v < v]. Starts
// sort before the ends they connect with, so a union merges touching ranges
// like (1,2) and [2,3]; the degenerate [v,v) pairs this hands an
// intersection are dropped when ranges are rebuilt.
func pointWeight(p point) int {
	switch {
	case p.start && !p.excl:
		return 0
	case !p.start && p.excl:
		return 1
	case p.start && p.excl:
		return 2
	default:
		return 3
	}
}

func comparePoints(a, b point) int {
	if cmp := mustCompare(a.value, b.value); cmp != 0 {
		return cmp
	}
	return pointWeight(a) - pointWeight(b)
}

func pointsFromRanges(ranges []*Range) []point {
	points := make([]point, 0, 2*len(ranges))
	for _, ran := range ranges {
		points = append(points,
			point{value: ran.LowVal, excl: ran.LowExclude, start: true},
			point{value: ran.HighVal, excl: ran.HighExclude})
	}
	return points
}

// mergePoints runs the sweep over the concatenated points of the operands.
// With union a value belongs to the result when any one operand covers it,
// otherwise both operands must. Union also accepts more than two operands in
// a single pass, which is how IN lists collapse their duplicate values.
func mergePoints(points []point, union bool) []point {
	slices.SortFunc(points, comparePoints)
	requiredInRangeCount := 2
	if union {
		requiredInRangeCount = 1
	}
	var merged []point
	inRangeCount := 0
	for _, p := range points {
		if p.start {
			inRangeCount++
			if inRangeCount == requiredInRangeCount {
				// just reached the required in range count, a new range started.
				merged = append(merged, p)
			}
		} else {
			if inRangeCount == requiredInRangeCount {
				// just about to leave the required in range count, the range is ended.
				merged = append(merged, p)
			}
			inRangeCount--
		}
	}
	return merged
}

// rangesFromPoints rebuilds canonical ranges from swept points, dropping the
// pairs that canonicalize to empty and coalescing discrete neighbors.
func rangesFromPoints(tp *types.FieldType, points []point) []*Range {
	ranges := make([]*Range, 0, len(points)/2)
	for i := 0; i < len(points); i += 2 {
		ran, ok := makeRange(tp, points[i].value, points[i].excl, points[i+1].value, points[i+1].excl)
		if !ok {
			continue
		}
		ranges = append(ranges, ran)
	}
	if tp.IsDiscrete() {
		ranges = coalesceDiscrete(tp, ranges)
	}
	return ranges
}

// coalesceDiscrete merges sorted inclusive ranges whose gap holds no value
// of the type, [1,3] and [4,6] become [1,6].
func coalesceDiscrete(tp *types.FieldType, ranges []*Range) []*Range {
	if len(ranges) < 2 {
		return ranges
	}
	merged := make([]*Range, 0, len(ranges))
	merged = append(merged, ranges[0])
	for _, ran := range ranges[1:] {
		last := merged[len(merged)-1]
		if !last.HighVal.IsSentinel() {
			if next, ok := tp.Successor(last.HighVal); ok && mustCompare(ran.LowVal, next) == 0 {
				merged[len(merged)-1] = NewRange(tp, last.LowVal, last.LowExclude, ran.HighVal, ran.HighExclude)
				continue
			}
		}
		merged = append(merged, ran)
	}
	return merged
}
