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
	"github.com/pingcap/ranger/types"
)

// DefaultSimplifyThreshold bounds how many ranges or listed values a
// simplified domain may keep before collapsing to a looser form.
const DefaultSimplifyThreshold = 32

// Domain constrains a single column: the set of non-null values it may take
// plus whether NULL is admitted.
type Domain struct {
	values      ValueSet
	nullAllowed bool
}

// NewDomain pairs a value set with a null admission flag.
func NewDomain(values ValueSet, nullAllowed bool) *Domain {
	return &Domain{values: values, nullAllowed: nullAllowed}
}

// NoneDomain returns the unsatisfiable domain, no values and no NULL.
func NoneDomain(tp *types.FieldType) *Domain {
	return &Domain{values: NoneValueSet(tp)}
}

// AllDomain returns the unconstrained domain, every value or NULL.
func AllDomain(tp *types.FieldType) *Domain {
	return &Domain{values: AllValueSet(tp), nullAllowed: true}
}

// OnlyNullDomain returns the domain admitting NULL and nothing else.
func OnlyNullDomain(tp *types.FieldType) *Domain {
	return &Domain{values: NoneValueSet(tp), nullAllowed: true}
}

// NotNullDomain returns the domain of every non-null value.
func NotNullDomain(tp *types.FieldType) *Domain {
	return &Domain{values: AllValueSet(tp)}
}

// SingleValueDomain returns the domain holding exactly v.
func SingleValueDomain(tp *types.FieldType, v types.Datum) *Domain {
	return &Domain{values: ValueSetOf(tp, v)}
}

// MultipleValuesDomain returns the domain holding exactly the given values,
// NULL excluded.
func MultipleValuesDomain(tp *types.FieldType, values ...types.Datum) *Domain {
	return &Domain{values: ValueSetOf(tp, values...)}
}

// Tp returns the column type of the domain.
func (d *Domain) Tp() *types.FieldType {
	return d.values.Tp()
}

// Values returns the non-null portion of the domain.
func (d *Domain) Values() ValueSet {
	return d.values
}

// NullAllowed reports whether NULL satisfies the domain.
func (d *Domain) NullAllowed() bool {
	return d.nullAllowed
}

// IsNone reports whether no value satisfies the domain.
func (d *Domain) IsNone() bool {
	return !d.nullAllowed && d.values.IsNone()
}

// IsAll reports whether every value satisfies the domain.
func (d *Domain) IsAll() bool {
	return d.nullAllowed && d.values.IsAll()
}

// IsOnlyNull reports whether NULL is the only admitted value.
func (d *Domain) IsOnlyNull() bool {
	return d.nullAllowed && d.values.IsNone()
}

// IsNotNull reports whether the domain admits exactly the non-null values.
func (d *Domain) IsNotNull() bool {
	return !d.nullAllowed && d.values.IsAll()
}

// IsSingleValue reports whether exactly one non-null value satisfies the
// domain.
func (d *Domain) IsSingleValue() bool {
	return !d.nullAllowed && d.values.IsSingleValue()
}

// IsNullableSingleValue reports whether the domain is satisfied by one value
// that may be NULL, either a plain single value or only NULL.
func (d *Domain) IsNullableSingleValue() bool {
	if d.nullAllowed {
		return d.values.IsNone()
	}
	return d.values.IsSingleValue()
}

// SingleValue returns the sole non-null value of a single value domain.
func (d *Domain) SingleValue() (types.Datum, bool) {
	if d.nullAllowed {
		return types.Datum{}, false
	}
	return d.values.SingleValue()
}

// ContainsValue reports whether the given value, NULL included, satisfies
// the domain.
func (d *Domain) ContainsValue(v types.Datum) bool {
	if v.IsNull() {
		return d.nullAllowed
	}
	return d.values.ContainsValue(v)
}

// Intersect returns the domain satisfied by both operands.
func (d *Domain) Intersect(other *Domain) *Domain {
	return &Domain{
		values:      d.values.Intersect(other.values),
		nullAllowed: d.nullAllowed && other.nullAllowed,
	}
}

// Union returns the domain satisfied by either operand.
func (d *Domain) Union(other *Domain) *Domain {
	return &Domain{
		values:      d.values.Union(other.values),
		nullAllowed: d.nullAllowed || other.nullAllowed,
	}
}

// Subtract returns the domain satisfied by d but not by other.
func (d *Domain) Subtract(other *Domain) *Domain {
	return &Domain{
		values:      d.values.Subtract(other.values),
		nullAllowed: d.nullAllowed && !other.nullAllowed,
	}
}

// Complement returns the domain satisfied exactly when d is not.
func (d *Domain) Complement() *Domain {
	return &Domain{
		values:      d.values.Complement(),
		nullAllowed: !d.nullAllowed,
	}
}

// Contains reports whether every value satisfying other also satisfies d.
func (d *Domain) Contains(other *Domain) bool {
	return d.Union(other).Equal(d)
}

// Overlaps reports whether some value satisfies both domains.
func (d *Domain) Overlaps(other *Domain) bool {
	return !d.Intersect(other).IsNone()
}

// Equal reports whether the two domains admit the same values.
func (d *Domain) Equal(other *Domain) bool {
	return d.nullAllowed == other.nullAllowed && d.values.Equal(other.values)
}

// Simplify returns a possibly looser domain with a representation no wider
// than threshold entries.
func (d *Domain) Simplify(threshold int) *Domain {
	simplified := d.values.Simplify(threshold)
	if simplified == d.values {
		return d
	}
	return &Domain{values: simplified, nullAllowed: d.nullAllowed}
}

// String implements the Stringer interface.
func (d *Domain) String() string {
	switch {
	case d.IsNone():
		return "none"
	case d.IsAll():
		return "all"
	case d.IsOnlyNull():
		return "NULL"
	case d.IsNotNull():
		return "not NULL"
	}
	if d.nullAllowed {
		return d.values.String() + " or NULL"
	}
	return d.values.String()
}
