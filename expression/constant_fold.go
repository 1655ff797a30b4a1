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

package expression

import (
	"github.com/pingcap/ranger/types"
)

// foldHandler stores folding functions per scalar function name.
var foldHandler = map[string]func(*ScalarFunction) Expression{}

func init() {
	foldHandler = map[string]func(*ScalarFunction) Expression{
		LogicAnd: foldLogicAnd,
		LogicOr:  foldLogicOr,
		UnaryNot: foldUnaryNot,
		EQ:       foldCompare,
		NE:       foldCompare,
		LT:       foldCompare,
		LE:       foldCompare,
		GT:       foldCompare,
		GE:       foldCompare,
		NullEQ:   foldNullEQ,
		IsNull:   foldIsNull,
		In:       foldIn,
		Cast:     foldCast,
	}
}

// FoldConstant does constant folding optimization on an expression. Folding
// follows three valued logic and only rewrites what it can prove, an
// expression it does not understand comes back untouched.
func FoldConstant(expr Expression) Expression {
	sf, ok := expr.(*ScalarFunction)
	if !ok {
		return expr
	}
	newArgs := make([]Expression, len(sf.Args))
	changed := false
	for i, arg := range sf.Args {
		newArgs[i] = FoldConstant(arg)
		if newArgs[i] != arg {
			changed = true
		}
	}
	folded := sf
	if changed {
		folded = &ScalarFunction{FuncName: sf.FuncName, RetType: sf.RetType, Args: newArgs}
	}
	if handler, ok := foldHandler[sf.FuncName]; ok {
		return handler(folded)
	}
	return folded
}

func foldLogicAnd(sf *ScalarFunction) Expression {
	items := FlattenCNFConditions(sf)
	remained := make([]Expression, 0, len(items))
	nullCount := 0
	for _, item := range items {
		switch {
		case IsFalseLiteral(item):
			// FALSE annihilates the whole conjunction.
			return NewFalse()
		case IsTrueLiteral(item):
		case IsNullLiteral(item):
			nullCount++
		default:
			remained = append(remained, item)
		}
	}
	if len(remained) == 0 {
		if nullCount > 0 {
			return NewNull()
		}
		return NewTrue()
	}
	if nullCount == 0 && len(remained) == len(items) {
		return sf
	}
	if nullCount > 0 {
		remained = append(remained, NewNull())
	}
	return ComposeCNFCondition(remained...)
}

func foldLogicOr(sf *ScalarFunction) Expression {
	items := FlattenDNFConditions(sf)
	remained := make([]Expression, 0, len(items))
	nullCount := 0
	for _, item := range items {
		switch {
		case IsTrueLiteral(item):
			return NewTrue()
		case IsFalseLiteral(item):
		case IsNullLiteral(item):
			nullCount++
		default:
			remained = append(remained, item)
		}
	}
	if len(remained) == 0 {
		if nullCount > 0 {
			return NewNull()
		}
		return NewFalse()
	}
	if nullCount == 0 && len(remained) == len(items) {
		return sf
	}
	if nullCount > 0 {
		remained = append(remained, NewNull())
	}
	return ComposeDNFCondition(remained...)
}

func foldUnaryNot(sf *ScalarFunction) Expression {
	arg := sf.Args[0]
	switch {
	case IsTrueLiteral(arg):
		return NewFalse()
	case IsFalseLiteral(arg):
		return NewTrue()
	case IsNullLiteral(arg):
		return NewNull()
	}
	return sf
}

func foldCompare(sf *ScalarFunction) Expression {
	lhs, lok := sf.Args[0].(*Constant)
	rhs, rok := sf.Args[1].(*Constant)
	if !lok || !rok {
		return sf
	}
	if lhs.Value.IsNull() || rhs.Value.IsNull() {
		return NewNull()
	}
	if lhs.Value.IsNaN() || rhs.Value.IsNaN() {
		// NaN fails every ordered comparison and only not-equal holds.
		if sf.FuncName == NE {
			return NewTrue()
		}
		return NewFalse()
	}
	cmp, ok := types.CompareLiterals(lhs.Value, rhs.Value)
	if !ok {
		return sf
	}
	var res bool
	switch sf.FuncName {
	case EQ:
		res = cmp == 0
	case NE:
		res = cmp != 0
	case LT:
		res = cmp < 0
	case LE:
		res = cmp <= 0
	case GT:
		res = cmp > 0
	case GE:
		res = cmp >= 0
	}
	if res {
		return NewTrue()
	}
	return NewFalse()
}

func foldNullEQ(sf *ScalarFunction) Expression {
	lhs, lok := sf.Args[0].(*Constant)
	rhs, rok := sf.Args[1].(*Constant)
	if !lok || !rok {
		return sf
	}
	lnull, rnull := lhs.Value.IsNull(), rhs.Value.IsNull()
	switch {
	case lnull && rnull:
		return NewTrue()
	case lnull != rnull:
		return NewFalse()
	}
	// Null safe equality is an identity check, so NaN matches itself here
	// even though eq(NaN, NaN) does not hold.
	if lhs.Value.IsNaN() || rhs.Value.IsNaN() {
		if lhs.Value.IsNaN() && rhs.Value.IsNaN() {
			return NewTrue()
		}
		return NewFalse()
	}
	cmp, ok := types.CompareLiterals(lhs.Value, rhs.Value)
	if !ok {
		return sf
	}
	if cmp == 0 {
		return NewTrue()
	}
	return NewFalse()
}

func foldIsNull(sf *ScalarFunction) Expression {
	con, ok := sf.Args[0].(*Constant)
	if !ok {
		return sf
	}
	if con.Value.IsNull() {
		return NewTrue()
	}
	return NewFalse()
}

func foldIn(sf *ScalarFunction) Expression {
	lhs, ok := sf.Args[0].(*Constant)
	if !ok {
		return sf
	}
	if lhs.Value.IsNull() {
		return NewNull()
	}
	undecided := false
	hasNull := false
	for _, item := range sf.Args[1:] {
		con, ok := item.(*Constant)
		if !ok {
			undecided = true
			continue
		}
		if con.Value.IsNull() {
			hasNull = true
			continue
		}
		if lhs.Value.IsNaN() || con.Value.IsNaN() {
			continue
		}
		cmp, ok := types.CompareLiterals(lhs.Value, con.Value)
		if !ok {
			undecided = true
			continue
		}
		if cmp == 0 {
			return NewTrue()
		}
	}
	if undecided {
		return sf
	}
	if hasNull {
		return NewNull()
	}
	return NewFalse()
}

func foldCast(sf *ScalarFunction) Expression {
	con, ok := sf.Args[0].(*Constant)
	if !ok {
		return sf
	}
	if con.Value.IsNull() {
		return NewNullWithFieldType(sf.RetType)
	}
	casted, cmp, ok := types.SaturatingCast(con.Value, con.RetType, sf.RetType)
	if !ok || cmp != 0 {
		// An inexact conversion would change the literal, keep the cast.
		return sf
	}
	return &Constant{Value: casted, RetType: sf.RetType}
}
