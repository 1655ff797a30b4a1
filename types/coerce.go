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
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pingcap/failpoint"
)

// integer digits each integer kind may need, used to decide whether a
// decimal target can hold every value of the kind.
var intDigitsNeeded = map[TypeKind]int{
	TypeBool:     1,
	TypeTinyInt:  3,
	TypeSmallInt: 5,
	TypeInt:      10,
	TypeBigInt:   19,
}

func intRank(tp TypeKind) int {
	switch tp {
	case TypeBool:
		return 0
	case TypeTinyInt:
		return 1
	case TypeSmallInt:
		return 2
	case TypeInt:
		return 3
	case TypeBigInt:
		return 4
	}
	return -1
}

// CastPreservesOrder reports whether CAST(native AS target) is injective and
// order preserving, so a comparison against the cast can be translated back
// to the native value space. Widening casts qualify, lossy ones do not.
func CastPreservesOrder(native, target *FieldType) bool {
	if native.Tp == target.Tp {
		if native.Tp == TypeDecimal {
			return target.Flen-target.Decimal >= native.Flen-native.Decimal &&
				target.Decimal >= native.Decimal
		}
		return native.Tp != TypeJSON && native.Tp != TypeUnspecified
	}
	nr, tr := intRank(native.Tp), intRank(target.Tp)
	if nr >= 0 && tr >= 0 {
		return nr < tr
	}
	switch {
	case nr >= 0 && target.Tp == TypeFloat:
		// float32 has a 24-bit significand.
		return nr <= intRank(TypeSmallInt)
	case nr >= 0 && target.Tp == TypeDouble:
		// float64 has a 53-bit significand, so int64 does not fit.
		return nr <= intRank(TypeInt)
	case nr >= 0 && target.Tp == TypeDecimal:
		return target.Flen-target.Decimal >= intDigitsNeeded[native.Tp]
	case native.Tp == TypeFloat && target.Tp == TypeDouble:
		return true
	case native.Tp == TypeDecimal && target.Tp == TypeDouble:
		return native.Flen <= 15
	}
	return false
}

// SaturatingCast coerces a literal in the value space of from into the value
// space of to, saturating at the bounds of to. The second return value is
// the sign of compare(original, coerced): 0 when the coercion was exact, 1
// when the value was rounded or clamped down, -1 when up. The caller adjusts
// bound strictness from that sign. The third return value is false when no
// coercion between the two spaces exists (NaN included).
func SaturatingCast(d Datum, from, to *FieldType) (casted Datum, cmp int, ok bool) {
	failpoint.Inject("coerceFailure", func() {
		failpoint.Return(Datum{}, 0, false)
	})
	if d.IsNull() || d.IsSentinel() {
		return Datum{}, 0, false
	}
	switch {
	case to.IsIntegerKind():
		return castToInt(d, to)
	case to.Tp == TypeFloat:
		return castToFloat32(d)
	case to.Tp == TypeDouble:
		return castToFloat64(d)
	case to.Tp == TypeDecimal:
		return castToDecimal(d, to)
	case to.IsStringKind():
		if d.k != KindString && d.k != KindBytes {
			return Datum{}, 0, false
		}
		return d, 0, true
	}
	return Datum{}, 0, false
}

func castToInt(d Datum, to *FieldType) (Datum, int, bool) {
	lo, hi, bounded := to.Bounds()
	switch d.k {
	case KindInt64, KindDate:
		if to.Tp == TypeDate {
			if d.k != KindDate {
				return Datum{}, 0, false
			}
			return d, 0, true
		}
		if d.k != KindInt64 {
			return Datum{}, 0, false
		}
		v := d.GetInt64()
		switch {
		case bounded && v < lo.GetInt64():
			return intAs(lo.GetInt64(), to), -1, true
		case bounded && v > hi.GetInt64():
			return intAs(hi.GetInt64(), to), 1, true
		}
		return intAs(v, to), 0, true
	case KindFloat32, KindFloat64:
		f := d.GetFloat64()
		if math.IsNaN(f) || !bounded {
			return Datum{}, 0, false
		}
		fv := math.Floor(f)
		cmp := 0
		if fv != f {
			cmp = 1
		}
		switch {
		case fv < float64(lo.GetInt64()):
			return intAs(lo.GetInt64(), to), -1, true
		// 2^63 catches +Inf and the values float64 cannot narrow safely.
		case fv >= 9223372036854775808.0:
			return intAs(hi.GetInt64(), to), 1, true
		case fv > float64(hi.GetInt64()):
			return intAs(hi.GetInt64(), to), 1, true
		}
		return intAs(int64(fv), to), cmp, true
	case KindDecimal:
		if !bounded {
			return Datum{}, 0, false
		}
		v, exact := d.GetDecimal().FloorInt()
		cmp := 0
		if !exact {
			cmp = 1
		}
		switch {
		case v < lo.GetInt64():
			return intAs(lo.GetInt64(), to), -1, true
		case v > hi.GetInt64():
			return intAs(hi.GetInt64(), to), 1, true
		}
		return intAs(v, to), cmp, true
	}
	return Datum{}, 0, false
}

func intAs(v int64, to *FieldType) Datum {
	if to.Tp == TypeBool {
		return NewBoolDatum(v != 0)
	}
	return NewIntDatum(v)
}

func castToFloat32(d Datum) (Datum, int, bool) {
	switch d.k {
	case KindFloat32:
		return d, 0, true
	case KindFloat64:
		f := d.GetFloat64()
		if math.IsNaN(f) {
			return Datum{}, 0, false
		}
		// Narrowing rounds to nearest and may overflow to infinity, both of
		// which the comparison sign captures.
		c := float32(f)
		return NewFloat32Datum(c), cmpFloat(f, float64(c)), true
	case KindInt64:
		// int64 never overflows float32, the conversion only rounds.
		c := NewFloat32Datum(float32(d.GetInt64()))
		cmp, _ := CompareLiterals(d, c)
		return c, cmp, true
	case KindDecimal:
		c := NewFloat32Datum(float32(d.GetDecimal().Float64()))
		cmp, _ := CompareLiterals(d, c)
		return c, cmp, true
	}
	return Datum{}, 0, false
}

func castToFloat64(d Datum) (Datum, int, bool) {
	switch d.k {
	case KindFloat64:
		return d, 0, true
	case KindFloat32:
		if d.IsNaN() {
			return Datum{}, 0, false
		}
		return NewFloat64Datum(d.GetFloat64()), 0, true
	case KindInt64:
		c := NewFloat64Datum(float64(d.GetInt64()))
		cmp, _ := CompareLiterals(d, c)
		return c, cmp, true
	case KindDecimal:
		c := NewFloat64Datum(d.GetDecimal().Float64())
		cmp, _ := CompareLiterals(d, c)
		return c, cmp, true
	}
	return Datum{}, 0, false
}

func castToDecimal(d Datum, to *FieldType) (Datum, int, bool) {
	p, s := to.Flen, to.Decimal
	switch d.k {
	case KindInt64:
		v := d.GetInt64()
		dec := NewDecimalFromInt(v)
		return clampDecimal(dec, p, s, 0)
	case KindDecimal:
		dec, exact := d.GetDecimal().FloorRescale(s)
		cmp := 0
		if !exact {
			cmp = 1
		}
		return clampDecimal(dec, p, s, cmp)
	case KindFloat32, KindFloat64:
		f := d.GetFloat64()
		if math.IsNaN(f) {
			return Datum{}, 0, false
		}
		if math.IsInf(f, 1) {
			return NewDecimalDatum(MaxDecimal(p, s)), 1, true
		}
		if math.IsInf(f, -1) {
			return NewDecimalDatum(MinDecimal(p, s)), -1, true
		}
		dec, cmp, overflow := decimalFromFloat(f, s)
		if overflow {
			if f > 0 {
				return NewDecimalDatum(MaxDecimal(p, s)), 1, true
			}
			return NewDecimalDatum(MinDecimal(p, s)), -1, true
		}
		return clampDecimal(dec, p, s, cmp)
	}
	return Datum{}, 0, false
}

func clampDecimal(d Decimal, p, s, cmp int) (Datum, int, bool) {
	if max := MaxDecimal(p, s); d.Compare(max) > 0 {
		return NewDecimalDatum(max), 1, true
	}
	if min := MinDecimal(p, s); d.Compare(min) < 0 {
		return NewDecimalDatum(min), -1, true
	}
	return NewDecimalDatum(d), cmp, true
}

// decimalFromFloat truncates f toward negative infinity at the given scale.
// It works on the shortest decimal rendering of f, which round-trips
// exactly. overflow reports that the integer digits alone exceed what an
// int64 unscaled value can hold.
func decimalFromFloat(f float64, scale int) (dec Decimal, cmp int, overflow bool) {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(fracPart) > scale {
		for _, c := range []byte(fracPart[scale:]) {
			if c != '0' {
				cmp = 1
				break
			}
		}
		fracPart = fracPart[:scale]
	}
	var unscaled int64
	for _, c := range []byte(intPart + fracPart) {
		digit := int64(c - '0')
		if unscaled > (math.MaxInt64-digit)/10 {
			return Decimal{}, 0, true
		}
		unscaled = unscaled*10 + digit
	}
	for i := 0; i < scale-len(fracPart); i++ {
		if unscaled > math.MaxInt64/10 {
			return Decimal{}, 0, true
		}
		unscaled *= 10
	}
	if neg {
		unscaled = -unscaled
		if cmp == 1 {
			// Truncation moved a negative value toward zero; step down to
			// floor.
			if unscaled == math.MinInt64 {
				return Decimal{}, 0, true
			}
			unscaled--
		}
	}
	return NewDecimal(unscaled, scale), cmp, false
}

// CompareLiterals compares two literals that may be of different numeric
// kinds, exactly. The second return value is false when the kinds are not
// comparable or either side is NaN.
func CompareLiterals(a Datum, b Datum) (int, bool) {
	if a.IsNaN() || b.IsNaN() {
		return 0, false
	}
	if c, err := a.Compare(b); err == nil {
		return c, true
	}
	ar, aok := literalRat(a)
	br, bok := literalRat(b)
	if !aok || !bok {
		return 0, false
	}
	return ar.Cmp(br), true
}

func literalRat(d Datum) (*big.Rat, bool) {
	switch d.k {
	case KindInt64:
		return new(big.Rat).SetInt64(d.GetInt64()), true
	case KindFloat32, KindFloat64:
		f := d.GetFloat64()
		if math.IsInf(f, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(f), true
	case KindDecimal:
		dec := d.GetDecimal()
		return new(big.Rat).SetFrac64(dec.Unscaled(), pow10[dec.Scale()]), true
	}
	return nil, false
}
