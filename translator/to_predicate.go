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

package translator

import (
	"cmp"
	"slices"

	"github.com/pingcap/ranger"
	"github.com/pingcap/ranger/expression"
	"github.com/pingcap/ranger/metrics"
	"github.com/pingcap/ranger/types"
)

// inListThreshold bounds how many values a discrete range may expand into
// when reconstruction prefers an IN list over bound comparisons. Kept small
// so that wider ranges stay rendered as their bounds.
const inListThreshold = 4

// ToPredicate renders a tuple domain back into an equivalent predicate. The
// output is deterministic: columns follow schema order with unknown columns
// trailing by unique ID, and each column picks the tightest of =, IN, <>,
// NOT IN, IS NULL or range conjunctions that reproduces its domain exactly.
func (t *Translator) ToPredicate(td *ranger.TupleDomain[*expression.Column]) expression.Expression {
	metrics.ReconstructionCounter.Inc()
	if td.IsNone() {
		return expression.NewFalse()
	}
	domains, ok := td.Domains()
	if !ok || len(domains) == 0 {
		return expression.NewTrue()
	}
	cols := make([]*expression.Column, 0, len(domains))
	for _, col := range t.schema {
		if _, ok := domains[col]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) < len(domains) {
		rest := make([]*expression.Column, 0, len(domains)-len(cols))
		for col := range domains {
			if t.schema.RetrieveColumn(col) != col {
				rest = append(rest, col)
			}
		}
		slices.SortFunc(rest, func(a, b *expression.Column) int {
			return cmp.Compare(a.UniqueID, b.UniqueID)
		})
		cols = append(cols, rest...)
	}
	conjuncts := make([]expression.Expression, 0, len(cols))
	for _, col := range cols {
		conjuncts = append(conjuncts, columnPredicate(col, domains[col]))
	}
	return expression.ComposeCNFCondition(conjuncts...)
}

func columnPredicate(col *expression.Column, d *ranger.Domain) expression.Expression {
	switch {
	case d.IsOnlyNull():
		return newIsNull(col)
	case d.IsNotNull():
		return newNot(newIsNull(col))
	}
	pred := valuesPredicate(col, d.Values())
	if d.NullAllowed() {
		return expression.NewFunction(expression.LogicOr, boolType(), pred, newIsNull(col))
	}
	return pred
}

func valuesPredicate(col *expression.Column, values ranger.ValueSet) expression.Expression {
	if ds, ok := values.(*ranger.DiscreteSet); ok {
		if ds.IsWhitelist() {
			return equalityPredicate(col, ds.Values())
		}
		return negatedEqualityPredicate(col, ds.Values())
	}
	s := values.(*ranger.SortedRangeSet)
	if vals, ok := s.DiscreteValues(); ok {
		return equalityPredicate(col, vals)
	}
	// Short discrete ranges read better enumerated: [44,45] becomes
	// IN (44, 45) rather than a pair of bound comparisons.
	if vals, ok := s.Enumerate(inListThreshold); ok {
		return equalityPredicate(col, vals)
	}
	if !col.RetType.HasNaN() {
		// A complement of finitely many points renders as <> or NOT IN.
		// Floating point columns must not: those forms hold on NaN while
		// the range set never does.
		if vals, ok := s.Complement().DiscreteValues(); ok {
			return negatedEqualityPredicate(col, vals)
		}
	}
	ranges := s.Ranges()
	disjuncts := make([]expression.Expression, 0, len(ranges))
	for _, r := range ranges {
		disjuncts = append(disjuncts, rangePredicate(col, r))
	}
	return expression.ComposeDNFCondition(disjuncts...)
}

func rangePredicate(col *expression.Column, r *ranger.Range) expression.Expression {
	if r.IsPoint() {
		return newCompare(expression.EQ, col, r.LowVal)
	}
	conjuncts := make([]expression.Expression, 0, 2)
	if !r.LowUnbounded() {
		op := expression.GE
		if r.LowExclude {
			op = expression.GT
		}
		conjuncts = append(conjuncts, newCompare(op, col, r.LowVal))
	}
	if !r.HighUnbounded() {
		op := expression.LE
		if r.HighExclude {
			op = expression.LT
		}
		conjuncts = append(conjuncts, newCompare(op, col, r.HighVal))
	}
	if len(conjuncts) == 0 {
		return expression.NewTrue()
	}
	return expression.ComposeCNFCondition(conjuncts...)
}

func equalityPredicate(col *expression.Column, values []types.Datum) expression.Expression {
	if len(values) == 1 {
		return newCompare(expression.EQ, col, values[0])
	}
	args := make([]expression.Expression, 0, len(values)+1)
	args = append(args, col)
	for _, v := range values {
		args = append(args, &expression.Constant{Value: v, RetType: col.RetType})
	}
	return expression.NewFunction(expression.In, boolType(), args...)
}

func negatedEqualityPredicate(col *expression.Column, values []types.Datum) expression.Expression {
	if len(values) == 1 {
		return newCompare(expression.NE, col, values[0])
	}
	return newNot(equalityPredicate(col, values))
}

func newCompare(op string, col *expression.Column, v types.Datum) expression.Expression {
	return expression.NewFunction(op, boolType(), col, &expression.Constant{Value: v, RetType: col.RetType})
}

func newIsNull(col *expression.Column) expression.Expression {
	return expression.NewFunction(expression.IsNull, boolType(), col)
}

func newNot(e expression.Expression) expression.Expression {
	return expression.NewFunction(expression.UnaryNot, boolType(), e)
}
