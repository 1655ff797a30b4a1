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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pingcap/errors"
)

// Datum kinds.
const (
	KindNull byte = iota
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindDecimal
	KindDate
	KindJSON
	// KindMinNotNull sorts above NULL and below every non-null value of every
	// type. It marks an unbounded low range end.
	KindMinNotNull
	// KindMaxValue sorts above every value of every type. It marks an
	// unbounded high range end.
	KindMaxValue
)

// Datum is a single typed value. The zero value is the NULL datum.
// Datums are immutable once constructed.
type Datum struct {
	k     byte
	scale int8
	i     int64
	b     []byte
}

// NewNullDatum creates the NULL Datum, same as the zero value.
func NewNullDatum() Datum {
	return Datum{}
}

// NewIntDatum creates a Datum from an int64 value. Bool, the integer widths
// and date values all use the int64 representation.
func NewIntDatum(i int64) Datum {
	return Datum{k: KindInt64, i: i}
}

// NewBoolDatum creates a Datum holding a bool, stored as 0 or 1.
func NewBoolDatum(b bool) Datum {
	var i int64
	if b {
		i = 1
	}
	return Datum{k: KindInt64, i: i}
}

// NewFloat64Datum creates a Datum from a float64. Negative zero is
// normalized to positive zero so equal values share one representation.
func NewFloat64Datum(f float64) Datum {
	if f == 0 {
		f = 0
	}
	return Datum{k: KindFloat64, i: int64(math.Float64bits(f))}
}

// NewFloat32Datum creates a Datum from a float32, stored widened. Widening
// to float64 is exact.
func NewFloat32Datum(f float32) Datum {
	if f == 0 {
		f = 0
	}
	return Datum{k: KindFloat32, i: int64(math.Float64bits(float64(f)))}
}

// NewStringDatum creates a Datum from a string.
func NewStringDatum(s string) Datum {
	return Datum{k: KindString, b: []byte(s)}
}

// NewBytesDatum creates a Datum from a byte slice. The slice is not copied.
func NewBytesDatum(b []byte) Datum {
	return Datum{k: KindBytes, b: b}
}

// NewDecimalDatum creates a Datum from a Decimal value.
func NewDecimalDatum(d Decimal) Datum {
	return Datum{k: KindDecimal, i: d.unscaled, scale: d.scale}
}

// NewDateDatum creates a date Datum from a day count since 1970-01-01.
func NewDateDatum(days int64) Datum {
	return Datum{k: KindDate, i: days}
}

// NewJSONDatum creates a Datum holding a serialized JSON document. Equality
// is byte equality, so callers must serialize canonically.
func NewJSONDatum(doc string) Datum {
	return Datum{k: KindJSON, b: []byte(doc)}
}

// MinNotNullDatum returns the datum marking an unbounded low range end.
func MinNotNullDatum() Datum {
	return Datum{k: KindMinNotNull}
}

// MaxValueDatum returns the datum marking an unbounded high range end.
func MaxValueDatum() Datum {
	return Datum{k: KindMaxValue}
}

// ParseDate parses a date in 2006-01-02 form into a date Datum.
func ParseDate(s string) (Datum, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Datum{}, errors.Trace(err)
	}
	return NewDateDatum(t.Unix() / 86400), nil
}

// Kind returns the datum kind.
func (d Datum) Kind() byte {
	return d.k
}

// IsNull reports whether the datum is NULL.
func (d Datum) IsNull() bool {
	return d.k == KindNull
}

// IsSentinel reports whether the datum is one of the unbounded range end
// markers.
func (d Datum) IsSentinel() bool {
	return d.k == KindMinNotNull || d.k == KindMaxValue
}

// GetInt64 returns the int64 payload. Valid for KindInt64 and KindDate.
func (d Datum) GetInt64() int64 {
	return d.i
}

// GetFloat64 returns the float payload, widened for KindFloat32.
func (d Datum) GetFloat64() float64 {
	return math.Float64frombits(uint64(d.i))
}

// GetFloat32 returns the float32 payload.
func (d Datum) GetFloat32() float32 {
	return float32(math.Float64frombits(uint64(d.i)))
}

// GetString returns the string payload.
func (d Datum) GetString() string {
	return string(d.b)
}

// GetBytes returns the raw byte payload. Valid for string, bytes and JSON
// kinds. The slice must not be modified.
func (d Datum) GetBytes() []byte {
	return d.b
}

// GetDecimal returns the decimal payload.
func (d Datum) GetDecimal() Decimal {
	return Decimal{unscaled: d.i, scale: d.scale}
}

// IsNaN reports whether the datum is a floating-point NaN.
func (d Datum) IsNaN() bool {
	return (d.k == KindFloat32 || d.k == KindFloat64) && math.IsNaN(d.GetFloat64())
}

// ToBool interprets the datum as a truth value. The second return value is
// false when the kind has no truth interpretation.
func (d Datum) ToBool() (bool, bool) {
	switch d.k {
	case KindInt64:
		return d.i != 0, true
	case KindFloat32, KindFloat64:
		f := d.GetFloat64()
		return f != 0 && !math.IsNaN(f), true
	}
	return false, false
}

func kindRank(k byte) int {
	switch k {
	case KindNull:
		return 0
	case KindMinNotNull:
		return 1
	case KindMaxValue:
		return 3
	}
	return 2
}

// Compare compares two datums of the same type class and returns -1, 0 or 1.
// NULL sorts below MinNotNull, MaxValue sorts above everything, matching the
// range end ordering. Comparing values of incompatible kinds returns an
// error. NaN sorts below every ordered float so sorting stays deterministic;
// range construction rejects NaN outright.
func (d Datum) Compare(other Datum) (int, error) {
	dr, or := kindRank(d.k), kindRank(other.k)
	if dr != 2 || or != 2 {
		return cmpInt(int64(dr), int64(or)), nil
	}
	switch d.k {
	case KindInt64:
		if other.k != KindInt64 {
			return 0, errors.Errorf("cannot compare %s with %s", kindStr(d.k), kindStr(other.k))
		}
		return cmpInt(d.i, other.i), nil
	case KindDate:
		if other.k != KindDate {
			return 0, errors.Errorf("cannot compare %s with %s", kindStr(d.k), kindStr(other.k))
		}
		return cmpInt(d.i, other.i), nil
	case KindFloat32, KindFloat64:
		if other.k != KindFloat32 && other.k != KindFloat64 {
			return 0, errors.Errorf("cannot compare %s with %s", kindStr(d.k), kindStr(other.k))
		}
		return cmpFloat(d.GetFloat64(), other.GetFloat64()), nil
	case KindString, KindBytes:
		if other.k != KindString && other.k != KindBytes {
			return 0, errors.Errorf("cannot compare %s with %s", kindStr(d.k), kindStr(other.k))
		}
		return bytes.Compare(d.b, other.b), nil
	case KindDecimal:
		if other.k != KindDecimal {
			return 0, errors.Errorf("cannot compare %s with %s", kindStr(d.k), kindStr(other.k))
		}
		return d.GetDecimal().Compare(other.GetDecimal()), nil
	}
	return 0, errors.Errorf("kind %s is not ordered", kindStr(d.k))
}

// Equal reports whether two datums hold the same value. JSON documents
// compare by bytes, every other kind by Compare.
func (d Datum) Equal(other Datum) bool {
	if d.k == KindJSON || other.k == KindJSON {
		return d.k == other.k && bytes.Equal(d.b, other.b)
	}
	c, err := d.Compare(other)
	return err == nil && c == 0
}

// Key returns an identity encoding of the datum usable as a map key. Datums
// holding the same value produce the same key.
func (d Datum) Key() string {
	var buf [10]byte
	buf[0] = d.k
	if d.k == KindFloat32 {
		// Distinct float kinds holding the same number are the same value.
		buf[0] = KindFloat64
	}
	switch d.k {
	case KindNull, KindMinNotNull, KindMaxValue:
		return string(buf[:1])
	case KindString, KindBytes, KindJSON:
		if d.k == KindBytes {
			// A string and a byte string with the same contents compare
			// equal, so they must share the key.
			buf[0] = KindString
		}
		return string(buf[:1]) + string(d.b)
	case KindDecimal:
		buf[1] = byte(d.scale)
		binary.BigEndian.PutUint64(buf[2:], uint64(d.i))
		return string(buf[:10])
	}
	binary.BigEndian.PutUint64(buf[1:9], uint64(d.i))
	return string(buf[:9])
}

// String implements fmt.Stringer interface.
func (d Datum) String() string {
	switch d.k {
	case KindNull:
		return "NULL"
	case KindMinNotNull:
		return "-inf"
	case KindMaxValue:
		return "+inf"
	case KindInt64:
		return strconv.FormatInt(d.i, 10)
	case KindFloat32, KindFloat64:
		return strconv.FormatFloat(d.GetFloat64(), 'g', -1, 64)
	case KindString, KindBytes:
		return fmt.Sprintf("%q", string(d.b))
	case KindDecimal:
		return d.GetDecimal().String()
	case KindDate:
		return time.Unix(d.i*86400, 0).UTC().Format(time.DateOnly)
	case KindJSON:
		return string(d.b)
	}
	return "unknown"
}

func kindStr(k byte) string {
	switch k {
	case KindNull:
		return "null"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindJSON:
		return "json"
	case KindMinNotNull:
		return "min_not_null"
	case KindMaxValue:
		return "max_value"
	}
	return "unknown"
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN || bNaN {
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
