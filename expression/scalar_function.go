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
	"encoding/binary"
	"strings"

	"github.com/pingcap/ranger/types"
)

// Scalar function names. The comparison, logic and predicate names form the
// vocabulary the domain translator understands; anything else passes through
// as an opaque residual.
const (
	LogicAnd   = "and"
	LogicOr    = "or"
	UnaryNot   = "not"
	EQ         = "eq"
	NE         = "ne"
	LT         = "lt"
	LE         = "le"
	GT         = "gt"
	GE         = "ge"
	NullEQ     = "nulleq"
	In         = "in"
	Between    = "between"
	Like       = "like"
	StartsWith = "startswith"
	IsNull     = "isnull"
	Cast       = "cast"
)

// ScalarFunction is a function call over argument expressions. There is no
// evaluation engine behind it; only constant folding interprets the
// well-known names.
type ScalarFunction struct {
	FuncName string
	// RetType is the type that ScalarFunction returns.
	RetType *types.FieldType
	Args    []Expression
}

// NewFunction creates a new scalar function.
func NewFunction(funcName string, retType *types.FieldType, args ...Expression) *ScalarFunction {
	funcArgs := make([]Expression, len(args))
	copy(funcArgs, args)
	return &ScalarFunction{
		FuncName: funcName,
		RetType:  retType,
		Args:     funcArgs,
	}
}

// NewCast wraps an expression with a cast to the target type.
func NewCast(arg Expression, target *types.FieldType) *ScalarFunction {
	return &ScalarFunction{
		FuncName: Cast,
		RetType:  target,
		Args:     []Expression{arg},
	}
}

// String implements fmt.Stringer interface.
func (sf *ScalarFunction) String() string {
	var sb strings.Builder
	sb.WriteString(sf.FuncName)
	sb.WriteString("(")
	for i, arg := range sf.Args {
		sb.WriteString(arg.String())
		if i+1 != len(sf.Args) {
			sb.WriteString(", ")
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// GetType implements Expression interface.
func (sf *ScalarFunction) GetType() *types.FieldType {
	return sf.RetType
}

// Equal implements Expression interface.
func (sf *ScalarFunction) Equal(e Expression) bool {
	other, ok := e.(*ScalarFunction)
	if !ok || sf.FuncName != other.FuncName || len(sf.Args) != len(other.Args) {
		return false
	}
	if sf.FuncName == Cast && !sf.RetType.Equal(other.RetType) {
		return false
	}
	for i, arg := range sf.Args {
		if !arg.Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// Clone implements Expression interface.
func (sf *ScalarFunction) Clone() Expression {
	newArgs := make([]Expression, 0, len(sf.Args))
	for _, arg := range sf.Args {
		newArgs = append(newArgs, arg.Clone())
	}
	return &ScalarFunction{
		FuncName: sf.FuncName,
		RetType:  sf.RetType,
		Args:     newArgs,
	}
}

// HashCode implements Expression interface.
func (sf *ScalarFunction) HashCode() []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, scalarFlag)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(sf.FuncName)))
	buf = append(buf, sf.FuncName...)
	for _, arg := range sf.Args {
		argCode := arg.HashCode()
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(argCode)))
		buf = append(buf, argCode...)
	}
	return buf
}
