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
	"fmt"

	"github.com/pingcap/ranger/types"
)

// Expression represents a scalar expression tree. An expression is one of
// *Column, *Constant and *ScalarFunction; consumers dispatch with a type
// switch and treat unknown function names conservatively.
type Expression interface {
	fmt.Stringer

	// GetType gets the expression return type.
	GetType() *types.FieldType

	// Equal checks whether two expressions are identical.
	Equal(e Expression) bool

	// Clone copies an expression totally.
	Clone() Expression

	// HashCode produces a stable identity encoding of the tree, usable as a
	// map key.
	HashCode() []byte
}

// Column represents a column reference. Columns with the same UniqueID refer
// to the same column.
type Column struct {
	ColName  string
	UniqueID int64
	RetType  *types.FieldType
}

// String implements fmt.Stringer interface.
func (col *Column) String() string {
	if col.ColName != "" {
		return col.ColName
	}
	return fmt.Sprintf("Column#%d", col.UniqueID)
}

// GetType implements Expression interface.
func (col *Column) GetType() *types.FieldType {
	return col.RetType
}

// Equal implements Expression interface.
func (col *Column) Equal(e Expression) bool {
	other, ok := e.(*Column)
	return ok && col.UniqueID == other.UniqueID
}

// Clone implements Expression interface.
func (col *Column) Clone() Expression {
	newCol := *col
	return &newCol
}

// HashCode implements Expression interface.
func (col *Column) HashCode() []byte {
	buf := make([]byte, 9)
	buf[0] = columnFlag
	binary.BigEndian.PutUint64(buf[1:], uint64(col.UniqueID))
	return buf
}

// Constant represents a literal value.
type Constant struct {
	Value   types.Datum
	RetType *types.FieldType
}

// String implements fmt.Stringer interface.
func (c *Constant) String() string {
	return c.Value.String()
}

// GetType implements Expression interface.
func (c *Constant) GetType() *types.FieldType {
	return c.RetType
}

// Equal implements Expression interface.
func (c *Constant) Equal(e Expression) bool {
	other, ok := e.(*Constant)
	return ok && c.RetType.Tp == other.RetType.Tp && c.Value.Equal(other.Value)
}

// Clone implements Expression interface.
func (c *Constant) Clone() Expression {
	newCon := *c
	return &newCon
}

// HashCode implements Expression interface.
func (c *Constant) HashCode() []byte {
	key := c.Value.Key()
	buf := make([]byte, 0, len(key)+1)
	buf = append(buf, constantFlag)
	return append(buf, key...)
}

const (
	constantFlag byte = 0
	columnFlag   byte = 1
	scalarFlag   byte = 3
)

// Schema stands for the column set a predicate may reference. It
// canonicalizes column pointers so the same column is always represented by
// the same *Column.
type Schema []*Column

// NewSchema builds a schema from columns.
func NewSchema(cols ...*Column) Schema {
	return cols
}

// RetrieveColumn returns the schema's own column with the same unique ID, or
// nil when the column is not in the schema.
func (s Schema) RetrieveColumn(col *Column) *Column {
	for _, c := range s {
		if c.UniqueID == col.UniqueID {
			return c
		}
	}
	return nil
}

// Contains checks whether the schema holds the column.
func (s Schema) Contains(col *Column) bool {
	return s.RetrieveColumn(col) != nil
}
