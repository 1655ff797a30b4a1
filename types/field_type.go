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

package types

import (
	"fmt"
	"math"
)

// TypeKind is the kind of a field type.
type TypeKind byte

// Field type kinds. Every column and literal carries exactly one of these.
const (
	TypeUnspecified TypeKind = iota
	TypeBool
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDouble
	TypeDecimal
	TypeVarchar
	TypeBytes
	TypeDate
	TypeJSON
)

// String implements fmt.Stringer interface.
func (tp TypeKind) String() string {
	switch tp {
	case TypeBool:
		return "bool"
	case TypeTinyInt:
		return "tinyint"
	case TypeSmallInt:
		return "smallint"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeDecimal:
		return "decimal"
	case TypeVarchar:
		return "varchar"
	case TypeBytes:
		return "bytes"
	case TypeDate:
		return "date"
	case TypeJSON:
		return "json"
	}
	return "unspecified"
}

// FieldType describes the value space of a column or a literal. It is an
// explicit descriptor passed through every operation, there is no global
// type registry.
type FieldType struct {
	// Tp is the type kind.
	Tp TypeKind
	// Flen is the precision for TypeDecimal and is unused for other kinds.
	Flen int
	// Decimal is the scale for TypeDecimal and is unused for other kinds.
	Decimal int
}

// NewFieldType builds a FieldType with the given kind.
func NewFieldType(tp TypeKind) *FieldType {
	return &FieldType{Tp: tp}
}

// NewDecimalFieldType builds a decimal FieldType with the given precision and
// scale. Precision is capped at MaxDecimalPrecision.
func NewDecimalFieldType(precision, scale int) *FieldType {
	return &FieldType{Tp: TypeDecimal, Flen: precision, Decimal: scale}
}

// Equal checks whether two field types describe the same value space.
func (ft *FieldType) Equal(other *FieldType) bool {
	if ft.Tp != other.Tp {
		return false
	}
	if ft.Tp == TypeDecimal {
		return ft.Flen == other.Flen && ft.Decimal == other.Decimal
	}
	return true
}

// IsOrdered reports whether values of this type have a total order. Only
// ordered types can be constrained by ranges.
func (ft *FieldType) IsOrdered() bool {
	return ft.Tp != TypeJSON && ft.Tp != TypeUnspecified
}

// IsDiscrete reports whether the type has unit granularity, so that adjacent
// ranges such as [1, 3] and [4, 6] cover a contiguous value space.
func (ft *FieldType) IsDiscrete() bool {
	switch ft.Tp {
	case TypeBool, TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt, TypeDate:
		return true
	}
	return false
}

// HasNaN reports whether the value space contains the unordered NaN value.
func (ft *FieldType) HasNaN() bool {
	return ft.Tp == TypeFloat || ft.Tp == TypeDouble
}

// IsIntegerKind reports whether the type is stored as an integer, bool and
// date included.
func (ft *FieldType) IsIntegerKind() bool {
	switch ft.Tp {
	case TypeBool, TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt, TypeDate:
		return true
	}
	return false
}

// IsStringKind reports whether values compare as byte strings.
func (ft *FieldType) IsStringKind() bool {
	return ft.Tp == TypeVarchar || ft.Tp == TypeBytes
}

// Bounds returns the minimum and maximum value of the type when the value
// space is finite. The third return value is false for unbounded types.
func (ft *FieldType) Bounds() (low, high Datum, ok bool) {
	switch ft.Tp {
	case TypeBool:
		return NewBoolDatum(false), NewBoolDatum(true), true
	case TypeTinyInt:
		return NewIntDatum(math.MinInt8), NewIntDatum(math.MaxInt8), true
	case TypeSmallInt:
		return NewIntDatum(math.MinInt16), NewIntDatum(math.MaxInt16), true
	case TypeInt:
		return NewIntDatum(math.MinInt32), NewIntDatum(math.MaxInt32), true
	case TypeBigInt:
		return NewIntDatum(math.MinInt64), NewIntDatum(math.MaxInt64), true
	}
	return Datum{}, Datum{}, false
}

// Successor returns the next value in a discrete value space, saturating at
// the type upper bound. The second return value is false when d is the
// maximum or the type is not discrete.
func (ft *FieldType) Successor(d Datum) (Datum, bool) {
	if !ft.IsDiscrete() || d.Kind() != KindInt64 && d.Kind() != KindDate {
		return Datum{}, false
	}
	v := d.GetInt64()
	if _, high, ok := ft.Bounds(); ok && v >= high.GetInt64() {
		return Datum{}, false
	}
	if v == math.MaxInt64 {
		return Datum{}, false
	}
	next := d
	next.i = v + 1
	return next, true
}

// Predecessor returns the previous value in a discrete value space,
// saturating at the type lower bound.
func (ft *FieldType) Predecessor(d Datum) (Datum, bool) {
	if !ft.IsDiscrete() || d.Kind() != KindInt64 && d.Kind() != KindDate {
		return Datum{}, false
	}
	v := d.GetInt64()
	if low, _, ok := ft.Bounds(); ok && v <= low.GetInt64() {
		return Datum{}, false
	}
	if v == math.MinInt64 {
		return Datum{}, false
	}
	prev := d
	prev.i = v - 1
	return prev, true
}

// String implements fmt.Stringer interface.
func (ft *FieldType) String() string {
	if ft.Tp == TypeDecimal {
		return fmt.Sprintf("decimal(%d,%d)", ft.Flen, ft.Decimal)
	}
	return ft.Tp.String()
}
