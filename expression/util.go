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

// NewTrue stands for the boolean constant TRUE.
func NewTrue() *Constant {
	return &Constant{
		Value:   types.NewBoolDatum(true),
		RetType: types.NewFieldType(types.TypeBool),
	}
}

// NewFalse stands for the boolean constant FALSE.
func NewFalse() *Constant {
	return &Constant{
		Value:   types.NewBoolDatum(false),
		RetType: types.NewFieldType(types.TypeBool),
	}
}

// NewNull stands for the boolean constant NULL.
func NewNull() *Constant {
	return &Constant{
		Value:   types.NewNullDatum(),
		RetType: types.NewFieldType(types.TypeBool),
	}
}

// NewNullWithFieldType stands for a null constant with the specified type.
func NewNullWithFieldType(fieldType *types.FieldType) *Constant {
	return &Constant{
		Value:   types.NewNullDatum(),
		RetType: fieldType,
	}
}

// IsTrueLiteral checks if an expression is the boolean constant TRUE.
func IsTrueLiteral(e Expression) bool {
	con, ok := e.(*Constant)
	if !ok || con.Value.Kind() == types.KindNull {
		return false
	}
	b, ok := con.Value.ToBool()
	return ok && b
}

// IsFalseLiteral checks if an expression is the boolean constant FALSE.
func IsFalseLiteral(e Expression) bool {
	con, ok := e.(*Constant)
	if !ok || con.Value.Kind() == types.KindNull {
		return false
	}
	b, ok := con.Value.ToBool()
	return ok && !b
}

// IsNullLiteral checks if an expression is a null constant.
func IsNullLiteral(e Expression) bool {
	con, ok := e.(*Constant)
	return ok && con.Value.Kind() == types.KindNull
}

// composeConditionWithBinaryOp composes condition with binary operator into a balance deep tree.
func composeConditionWithBinaryOp(conditions []Expression, funcName string) Expression {
	length := len(conditions)
	if length == 0 {
		return nil
	}
	if length == 1 {
		return conditions[0]
	}
	expr := NewFunction(funcName,
		types.NewFieldType(types.TypeBool),
		composeConditionWithBinaryOp(conditions[:length/2], funcName),
		composeConditionWithBinaryOp(conditions[length/2:], funcName))
	return expr
}

// ComposeCNFCondition composes CNF items into a balance deep CNF tree.
func ComposeCNFCondition(conditions ...Expression) Expression {
	return composeConditionWithBinaryOp(conditions, LogicAnd)
}

// ComposeDNFCondition composes DNF items into a balance deep DNF tree.
func ComposeDNFCondition(conditions ...Expression) Expression {
	return composeConditionWithBinaryOp(conditions, LogicOr)
}

func extractBinaryOpItems(conditions *ScalarFunction, funcName string) []Expression {
	ret := make([]Expression, 0, len(conditions.Args))
	for _, arg := range conditions.Args {
		if sf, ok := arg.(*ScalarFunction); ok && sf.FuncName == funcName {
			ret = append(ret, extractBinaryOpItems(sf, funcName)...)
		} else {
			ret = append(ret, arg)
		}
	}
	return ret
}

// FlattenDNFConditions extracts DNF expression's leaf item.
// e.g. or(or(a=1, a=2), or(a=3, a=4)), we'll get [a=1, a=2, a=3, a=4].
func FlattenDNFConditions(dnfCondition *ScalarFunction) []Expression {
	return extractBinaryOpItems(dnfCondition, LogicOr)
}

// FlattenCNFConditions extracts CNF expression's leaf item.
// e.g. and(and(a>1, a>2), and(a>3, a>4)), we'll get [a>1, a>2, a>3, a>4].
func FlattenCNFConditions(cnfCondition *ScalarFunction) []Expression {
	return extractBinaryOpItems(cnfCondition, LogicAnd)
}

// SplitCNFItems splits CNF items.
// CNF means conjunctive normal form, e.g. "a and b and c".
func SplitCNFItems(onExpr Expression) []Expression {
	return splitNormalFormItems(onExpr, LogicAnd)
}

// SplitDNFItems splits DNF items.
// DNF means disjunctive normal form, e.g. "a or b or c".
func SplitDNFItems(onExpr Expression) []Expression {
	return splitNormalFormItems(onExpr, LogicOr)
}

func splitNormalFormItems(onExpr Expression, funcName string) []Expression {
	if sf, ok := onExpr.(*ScalarFunction); ok && sf.FuncName == funcName {
		var ret []Expression
		for _, arg := range sf.Args {
			ret = append(ret, splitNormalFormItems(arg, funcName)...)
		}
		return ret
	}
	return []Expression{onExpr}
}

// ExtractColumns extracts all columns from an expression, deduplicated by
// unique ID in discovery order.
func ExtractColumns(expr Expression) []*Column {
	var cols []*Column
	seen := make(map[int64]struct{})
	var extract func(e Expression)
	extract = func(e Expression) {
		switch v := e.(type) {
		case *Column:
			if _, ok := seen[v.UniqueID]; !ok {
				seen[v.UniqueID] = struct{}{}
				cols = append(cols, v)
			}
		case *ScalarFunction:
			for _, arg := range v.Args {
				extract(arg)
			}
		}
	}
	extract(expr)
	return cols
}
