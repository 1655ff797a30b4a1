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
	"slices"
	"strings"

	"github.com/pingcap/ranger/types"
)

// DiscreteSet is the ValueSet variant for equatable-only types. A whitelist
// holds exactly its values, a blacklist holds everything except them. The
// values are deduplicated and kept sorted by their encoded key so equal sets
// compare structurally.
type DiscreteSet struct {
	tp        *types.FieldType
	values    []types.Datum
	keys      map[string]struct{}
	whitelist bool
}

func newDiscreteSet(tp *types.FieldType, whitelist bool, values []types.Datum) *DiscreteSet {
	keys := make(map[string]struct{}, len(values))
	uniq := make([]types.Datum, 0, len(values))
	for _, v := range values {
		if v.IsNull() || v.IsSentinel() {
			panic("a discrete set holds plain values only")
		}
		k := v.Key()
		if _, ok := keys[k]; ok {
			continue
		}
		keys[k] = struct{}{}
		uniq = append(uniq, v)
	}
	slices.SortFunc(uniq, func(a, b types.Datum) int {
		return strings.Compare(a.Key(), b.Key())
	})
	return &DiscreteSet{tp: tp, values: uniq, keys: keys, whitelist: whitelist}
}

// Tp implements ValueSet interface.
func (s *DiscreteSet) Tp() *types.FieldType {
	return s.tp
}

// Values returns the listed values. Callers must not mutate the slice.
func (s *DiscreteSet) Values() []types.Datum {
	return s.values
}

// IsWhitelist reports whether the set lists its members rather than its
// complement.
func (s *DiscreteSet) IsWhitelist() bool {
	return s.whitelist
}

// IsNone implements ValueSet interface.
func (s *DiscreteSet) IsNone() bool {
	return s.whitelist && len(s.values) == 0
}

// IsAll implements ValueSet interface.
func (s *DiscreteSet) IsAll() bool {
	return !s.whitelist && len(s.values) == 0
}

// IsSingleValue implements ValueSet interface.
func (s *DiscreteSet) IsSingleValue() bool {
	return s.whitelist && len(s.values) == 1
}

// SingleValue implements ValueSet interface.
func (s *DiscreteSet) SingleValue() (types.Datum, bool) {
	if !s.IsSingleValue() {
		return types.Datum{}, false
	}
	return s.values[0], true
}

// ContainsValue implements ValueSet interface.
func (s *DiscreteSet) ContainsValue(v types.Datum) bool {
	_, listed := s.keys[v.Key()]
	return listed == s.whitelist
}

// Union implements ValueSet interface.
func (s *DiscreteSet) Union(other ValueSet) ValueSet {
	o := s.sibling(other)
	switch {
	case s.whitelist && o.whitelist:
		return newDiscreteSet(s.tp, true, append(slices.Clone(s.values), o.values...))
	case s.whitelist:
		// values outside the blacklist stay out of the union's complement.
		return newDiscreteSet(s.tp, false, subtractValues(o, s))
	case o.whitelist:
		return newDiscreteSet(s.tp, false, subtractValues(s, o))
	default:
		return newDiscreteSet(s.tp, false, intersectValues(s, o))
	}
}

// Intersect implements ValueSet interface.
func (s *DiscreteSet) Intersect(other ValueSet) ValueSet {
	o := s.sibling(other)
	switch {
	case s.whitelist && o.whitelist:
		return newDiscreteSet(s.tp, true, intersectValues(s, o))
	case s.whitelist:
		return newDiscreteSet(s.tp, true, subtractValues(s, o))
	case o.whitelist:
		return newDiscreteSet(s.tp, true, subtractValues(o, s))
	default:
		return newDiscreteSet(s.tp, false, append(slices.Clone(s.values), o.values...))
	}
}

// Subtract implements ValueSet interface.
func (s *DiscreteSet) Subtract(other ValueSet) ValueSet {
	return s.Intersect(other.Complement())
}

// Complement implements ValueSet interface.
func (s *DiscreteSet) Complement() ValueSet {
	return &DiscreteSet{tp: s.tp, values: s.values, keys: s.keys, whitelist: !s.whitelist}
}

// Equal implements ValueSet interface.
func (s *DiscreteSet) Equal(other ValueSet) bool {
	o, ok := other.(*DiscreteSet)
	if !ok || !s.tp.Equal(o.tp) || s.whitelist != o.whitelist || len(s.values) != len(o.values) {
		return false
	}
	for i, v := range s.values {
		if !v.Equal(o.values[i]) {
			return false
		}
	}
	return true
}

// DiscreteValues implements ValueSet interface. A blacklist does not
// enumerate.
func (s *DiscreteSet) DiscreteValues() ([]types.Datum, bool) {
	if !s.whitelist {
		return nil, false
	}
	return s.values, true
}

// Simplify implements ValueSet interface.
func (s *DiscreteSet) Simplify(threshold int) ValueSet {
	if len(s.values) <= threshold {
		return s
	}
	return AllValueSet(s.tp)
}

// String implements the Stringer interface.
func (s *DiscreteSet) String() string {
	strs := make([]string, 0, len(s.values))
	for _, v := range s.values {
		strs = append(strs, v.String())
	}
	body := "{" + strings.Join(strs, ", ") + "}"
	if s.whitelist {
		return body
	}
	return "not " + body
}

func (s *DiscreteSet) sibling(other ValueSet) *DiscreteSet {
	o, ok := other.(*DiscreteSet)
	if !ok || !s.tp.Equal(o.tp) {
		panic(fmt.Sprintf("combining discrete set of %s with value set of %s", s.tp, other.Tp()))
	}
	return o
}

func intersectValues(a, b *DiscreteSet) []types.Datum {
	kept := make([]types.Datum, 0, len(a.values))
	for _, v := range a.values {
		if _, ok := b.keys[v.Key()]; ok {
			kept = append(kept, v)
		}
	}
	return kept
}

func subtractValues(a, b *DiscreteSet) []types.Datum {
	kept := make([]types.Datum, 0, len(a.values))
	for _, v := range a.values {
		if _, ok := b.keys[v.Key()]; !ok {
			kept = append(kept, v)
		}
	}
	return kept
}
