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
)

// TupleDomain constrains a tuple of columns keyed by K. It is the
// conjunction of one Domain per listed column, columns not listed are
// unconstrained. A tuple domain is kept normalized: no column maps to an
// all domain, and the unsatisfiable tuple domain carries no map at all.
type TupleDomain[K comparable] struct {
	none    bool
	domains map[K]*Domain
}

// NoneTupleDomain returns the tuple domain no tuple satisfies.
func NoneTupleDomain[K comparable]() *TupleDomain[K] {
	return &TupleDomain[K]{none: true}
}

// AllTupleDomain returns the tuple domain every tuple satisfies.
func AllTupleDomain[K comparable]() *TupleDomain[K] {
	return &TupleDomain[K]{domains: map[K]*Domain{}}
}

// WithColumnDomains builds a tuple domain from per-column constraints. The
// map is copied and normalized, a column with a none domain collapses the
// whole tuple domain and all domains are dropped.
func WithColumnDomains[K comparable](domains map[K]*Domain) *TupleDomain[K] {
	normalized := make(map[K]*Domain, len(domains))
	for key, domain := range domains {
		if domain.IsNone() {
			return NoneTupleDomain[K]()
		}
		if domain.IsAll() {
			continue
		}
		normalized[key] = domain
	}
	return &TupleDomain[K]{domains: normalized}
}

// IsNone reports whether no tuple satisfies the tuple domain.
func (td *TupleDomain[K]) IsNone() bool {
	return td.none
}

// IsAll reports whether every tuple satisfies the tuple domain.
func (td *TupleDomain[K]) IsAll() bool {
	return !td.none && len(td.domains) == 0
}

// Domains returns the per-column constraints. It reports false for the none
// tuple domain, which has no per-column form. Callers must not mutate the
// returned map.
func (td *TupleDomain[K]) Domains() (map[K]*Domain, bool) {
	if td.none {
		return nil, false
	}
	return td.domains, true
}

// ColumnDomain returns the constraint on one column. It reports false when
// the column is unconstrained or the tuple domain is none.
func (td *TupleDomain[K]) ColumnDomain(key K) (*Domain, bool) {
	if td.none {
		return nil, false
	}
	domain, ok := td.domains[key]
	return domain, ok
}

// Intersect returns the tuple domain satisfied by both operands.
func (td *TupleDomain[K]) Intersect(other *TupleDomain[K]) *TupleDomain[K] {
	if td.none || other.none {
		return NoneTupleDomain[K]()
	}
	merged := make(map[K]*Domain, len(td.domains)+len(other.domains))
	for key, domain := range td.domains {
		merged[key] = domain
	}
	for key, domain := range other.domains {
		if existing, ok := merged[key]; ok {
			merged[key] = existing.Intersect(domain)
		} else {
			merged[key] = domain
		}
	}
	return WithColumnDomains(merged)
}

// ColumnWiseUnion returns a tuple domain satisfied by every tuple some
// operand admits. It unions column by column, so it may also admit tuples no
// operand does, that is it computes a superset of the exact union. Columns
// missing from any operand are unconstrained there and stay unconstrained in
// the result.
func ColumnWiseUnion[K comparable](operands ...*TupleDomain[K]) *TupleDomain[K] {
	if len(operands) == 0 {
		panic("ColumnWiseUnion requires at least one operand")
	}
	remaining := make([]*TupleDomain[K], 0, len(operands))
	for _, operand := range operands {
		if !operand.none {
			remaining = append(remaining, operand)
		}
	}
	if len(remaining) == 0 {
		return NoneTupleDomain[K]()
	}
	unioned := make(map[K]*Domain, len(remaining[0].domains))
	for key, domain := range remaining[0].domains {
		unioned[key] = domain
	}
	for _, operand := range remaining[1:] {
		for key := range unioned {
			domain, ok := operand.domains[key]
			if !ok {
				delete(unioned, key)
				continue
			}
			unioned[key] = unioned[key].Union(domain)
		}
	}
	return WithColumnDomains(unioned)
}

// Contains reports whether every tuple satisfying other also satisfies td.
func (td *TupleDomain[K]) Contains(other *TupleDomain[K]) bool {
	return other.none || ColumnWiseUnion(td, other).Equal(td)
}

// Overlaps reports whether some tuple satisfies both tuple domains.
func (td *TupleDomain[K]) Overlaps(other *TupleDomain[K]) bool {
	return !td.Intersect(other).IsNone()
}

// Equal reports whether the two tuple domains admit the same tuples.
func (td *TupleDomain[K]) Equal(other *TupleDomain[K]) bool {
	if td.none != other.none {
		return false
	}
	if td.none {
		return true
	}
	if len(td.domains) != len(other.domains) {
		return false
	}
	for key, domain := range td.domains {
		otherDomain, ok := other.domains[key]
		if !ok || !domain.Equal(otherDomain) {
			return false
		}
	}
	return true
}

// Simplify loosens every column domain whose representation exceeds
// threshold entries.
func (td *TupleDomain[K]) Simplify(threshold int) *TupleDomain[K] {
	if td.none {
		return td
	}
	simplified := make(map[K]*Domain, len(td.domains))
	for key, domain := range td.domains {
		simplified[key] = domain.Simplify(threshold)
	}
	return WithColumnDomains(simplified)
}

// TransformKeys rekeys a tuple domain through f. It panics when f maps two
// constrained columns to the same key.
func TransformKeys[K, L comparable](td *TupleDomain[K], f func(K) L) *TupleDomain[L] {
	if td.none {
		return NoneTupleDomain[L]()
	}
	transformed := make(map[L]*Domain, len(td.domains))
	for key, domain := range td.domains {
		newKey := f(key)
		if _, ok := transformed[newKey]; ok {
			panic(fmt.Sprintf("TransformKeys maps two columns to %v", newKey))
		}
		transformed[newKey] = domain
	}
	return &TupleDomain[L]{domains: transformed}
}

// FilterKeys drops the constraints on columns the predicate rejects.
func FilterKeys[K comparable](td *TupleDomain[K], keep func(K) bool) *TupleDomain[K] {
	if td.none {
		return td
	}
	filtered := make(map[K]*Domain, len(td.domains))
	for key, domain := range td.domains {
		if keep(key) {
			filtered[key] = domain
		}
	}
	return &TupleDomain[K]{domains: filtered}
}

// String implements the Stringer interface. Columns render in lexicographic
// order of their formatted keys.
func (td *TupleDomain[K]) String() string {
	if td.none {
		return "none"
	}
	if len(td.domains) == 0 {
		return "all"
	}
	entries := make([]string, 0, len(td.domains))
	for key, domain := range td.domains {
		entries = append(entries, fmt.Sprintf("%v: %s", key, domain))
	}
	slices.Sort(entries)
	var sb strings.Builder
	sb.WriteString("{")
	sb.WriteString(strings.Join(entries, ", "))
	sb.WriteString("}")
	return sb.String()
}
