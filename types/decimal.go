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
	"strconv"
	"strings"

	"github.com/pingcap/errors"
)

// MaxDecimalPrecision is the widest decimal this package represents. The
// unscaled value is held in an int64, so eighteen significant digits is the
// limit.
const MaxDecimalPrecision = 18

var pow10 = [MaxDecimalPrecision + 1]int64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000, 10000000000000,
	100000000000000, 1000000000000000, 10000000000000000, 100000000000000000,
	1000000000000000000,
}

// Decimal is a compact fixed-point value: unscaled * 10^-scale. It is
// normalized on construction so that equal values share one representation.
type Decimal struct {
	unscaled int64
	scale    int8
}

// NewDecimal builds a normalized Decimal from an unscaled value and a scale.
// The scale must be in [0, MaxDecimalPrecision].
func NewDecimal(unscaled int64, scale int) Decimal {
	if scale < 0 || scale > MaxDecimalPrecision {
		panic(fmt.Sprintf("decimal scale %d out of range", scale))
	}
	for scale > 0 && unscaled%10 == 0 {
		unscaled /= 10
		scale--
	}
	if unscaled == 0 {
		scale = 0
	}
	return Decimal{unscaled: unscaled, scale: int8(scale)}
}

// NewDecimalFromInt builds a Decimal holding an integer value.
func NewDecimalFromInt(i int64) Decimal {
	return Decimal{unscaled: i}
}

// ParseDecimal parses a plain decimal literal such as "-12.50".
func ParseDecimal(s string) (Decimal, error) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	neg := false
	switch {
	case strings.HasPrefix(intPart, "-"):
		neg = true
		intPart = intPart[1:]
	case strings.HasPrefix(intPart, "+"):
		intPart = intPart[1:]
	}
	if len(fracPart) > MaxDecimalPrecision {
		return Decimal{}, errors.Errorf("decimal %q exceeds max scale %d", s, MaxDecimalPrecision)
	}
	if intPart == "" && fracPart == "" {
		return Decimal{}, errors.Errorf("invalid decimal %q", s)
	}
	var unscaled int64
	for _, part := range []string{intPart, fracPart} {
		for _, c := range []byte(part) {
			if c < '0' || c > '9' {
				return Decimal{}, errors.Errorf("invalid decimal %q", s)
			}
			digit := int64(c - '0')
			if unscaled > (math.MaxInt64-digit)/10 {
				return Decimal{}, errors.Errorf("decimal %q overflows", s)
			}
			unscaled = unscaled*10 + digit
		}
	}
	if neg {
		unscaled = -unscaled
	}
	return NewDecimal(unscaled, len(fracPart)), nil
}

// MaxDecimal returns the largest value of decimal(precision, scale).
func MaxDecimal(precision, scale int) Decimal {
	if precision > MaxDecimalPrecision {
		precision = MaxDecimalPrecision
	}
	return NewDecimal(pow10[precision]-1, scale)
}

// MinDecimal returns the smallest value of decimal(precision, scale).
func MinDecimal(precision, scale int) Decimal {
	if precision > MaxDecimalPrecision {
		precision = MaxDecimalPrecision
	}
	return NewDecimal(-(pow10[precision] - 1), scale)
}

// Unscaled returns the unscaled value.
func (d Decimal) Unscaled() int64 {
	return d.unscaled
}

// Scale returns the scale.
func (d Decimal) Scale() int {
	return int(d.scale)
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sign64(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// split returns the magnitude as integer digits and fraction digits padded
// to MaxDecimalPrecision places, so magnitudes compare lexicographically.
// The magnitude is computed in uint64 because negating a math.MinInt64
// unscaled value overflows int64.
func (d Decimal) split() (intPart uint64, frac uint64) {
	u := uint64(d.unscaled)
	if d.unscaled < 0 {
		u = -u
	}
	p := uint64(pow10[d.scale])
	return u / p, (u % p) * uint64(pow10[MaxDecimalPrecision-int(d.scale)])
}

// Compare compares two decimals of any scales and returns -1, 0 or 1.
func (d Decimal) Compare(other Decimal) int {
	ds, os := sign64(d.unscaled), sign64(other.unscaled)
	if ds != os {
		return cmpInt(int64(ds), int64(os))
	}
	if ds == 0 {
		return 0
	}
	di, df := d.split()
	oi, of := other.split()
	c := cmpUint(di, oi)
	if c == 0 {
		c = cmpUint(df, of)
	}
	if ds < 0 {
		return -c
	}
	return c
}

// FloorRescale truncates the decimal toward negative infinity to the given
// scale. The second return value is false when digits were dropped.
func (d Decimal) FloorRescale(scale int) (Decimal, bool) {
	if int(d.scale) <= scale {
		return d, true
	}
	p := pow10[int(d.scale)-scale]
	q, r := d.unscaled/p, d.unscaled%p
	if r != 0 && d.unscaled < 0 {
		q--
	}
	return NewDecimal(q, scale), r == 0
}

// FloorInt truncates the decimal toward negative infinity to an integer.
// The second return value is false when a fraction was dropped.
func (d Decimal) FloorInt() (int64, bool) {
	f, exact := d.FloorRescale(0)
	return f.unscaled, exact
}

// Float64 returns the nearest float64.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.String(), 64)
	return f
}

// String implements fmt.Stringer interface.
func (d Decimal) String() string {
	if d.scale == 0 {
		return strconv.FormatInt(d.unscaled, 10)
	}
	u := uint64(d.unscaled)
	sign := ""
	if d.unscaled < 0 {
		sign = "-"
		u = -u
	}
	p := uint64(pow10[d.scale])
	return fmt.Sprintf("%s%d.%0*d", sign, u/p, int(d.scale), u%p)
}
