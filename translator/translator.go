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

// Package translator converts predicate expressions into per column tuple
// domains and back. Extraction is total and conservative: anything the
// translator cannot prove sargable stays in the residual expression, so the
// domain is always a sound pre filter over the original predicate.
package translator

import (
	"github.com/pingcap/failpoint"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/pingcap/ranger"
	"github.com/pingcap/ranger/expression"
	"github.com/pingcap/ranger/metrics"
	"github.com/pingcap/ranger/types"
)

// ExtractionResult pairs the tuple domain pulled out of a predicate with the
// residual expression that still has to run on every row. The invariant is
// P(row) => domain(row) AND remained(row), with equality whenever the
// remained expression captures all looseness.
type ExtractionResult struct {
	TupleDomain *ranger.TupleDomain[*expression.Column]
	Remained    expression.Expression
}

// Translator converts predicates over a fixed schema. The schema
// canonicalizes column pointers, which the tuple domain uses as map keys.
type Translator struct {
	schema expression.Schema
}

// NewTranslator creates a translator over schema.
func NewTranslator(schema expression.Schema) *Translator {
	return &Translator{schema: schema}
}

// FromPredicate extracts the tuple domain implied by pred. It never fails:
// unsupported shapes come back as the unconstrained domain with pred itself
// as the residual.
func (t *Translator) FromPredicate(pred expression.Expression) ExtractionResult {
	failpoint.Inject("forceDecline", func() {
		failpoint.Return(ExtractionResult{
			TupleDomain: ranger.AllTupleDomain[*expression.Column](),
			Remained:    pred,
		})
	})
	res := t.extract(expression.FoldConstant(pred), false)
	switch {
	case expression.IsTrueLiteral(res.Remained):
		metrics.ExtractionCounter.WithLabelValues(metrics.LblFull).Inc()
	case res.TupleDomain.IsAll():
		metrics.ExtractionCounter.WithLabelValues(metrics.LblNone).Inc()
		log.Debug("predicate yields no tuple domain", zap.String("predicate", pred.String()))
	default:
		metrics.ExtractionCounter.WithLabelValues(metrics.LblPartial).Inc()
		log.Debug("predicate partially extracted",
			zap.String("predicate", pred.String()),
			zap.String("remained", res.Remained.String()))
	}
	return res
}

// extract walks the predicate tree. complement asks for the domain of NOT
// expr instead, which lets negation push down without rewriting the tree
// first.
func (t *Translator) extract(expr expression.Expression, complement bool) ExtractionResult {
	switch v := expr.(type) {
	case *expression.Constant:
		return t.extractFromConstant(v, complement)
	case *expression.Column:
		return t.extractFromColumn(v, complement)
	case *expression.ScalarFunction:
		switch v.FuncName {
		case expression.LogicAnd:
			if complement {
				return t.extractFromDisjunction(expression.FlattenCNFConditions(v), v, complement)
			}
			return t.extractFromConjunction(expression.FlattenCNFConditions(v), complement)
		case expression.LogicOr:
			if complement {
				return t.extractFromConjunction(expression.FlattenDNFConditions(v), complement)
			}
			return t.extractFromDisjunction(expression.FlattenDNFConditions(v), v, complement)
		case expression.UnaryNot:
			return t.extract(v.Args[0], !complement)
		case expression.EQ, expression.NE, expression.LT, expression.LE, expression.GT, expression.GE:
			return t.extractFromComparison(v, complement)
		case expression.NullEQ:
			return t.extractFromNullSafeEQ(v, complement)
		case expression.In:
			return t.extractFromIn(v, complement)
		case expression.Between:
			return t.extractFromBetween(v, complement)
		case expression.Like:
			return t.extractFromLike(v, complement)
		case expression.StartsWith:
			return t.extractFromStartsWith(v, complement)
		case expression.IsNull:
			return t.extractFromIsNull(v, complement)
		}
	}
	return t.decline(expr, complement)
}

// decline gives up on a node, keeping it whole in the residual. Under
// complement the residual wraps the node in NOT, which preserves three
// valued logic since NOT NULL stays NULL.
func (t *Translator) decline(expr expression.Expression, complement bool) ExtractionResult {
	return ExtractionResult{
		TupleDomain: ranger.AllTupleDomain[*expression.Column](),
		Remained:    complementIfNecessary(expr, complement),
	}
}

func complementIfNecessary(expr expression.Expression, complement bool) expression.Expression {
	if !complement {
		return expr
	}
	return expression.NewFunction(expression.UnaryNot, boolType(), expr)
}

func noneResult() ExtractionResult {
	return ExtractionResult{
		TupleDomain: ranger.NoneTupleDomain[*expression.Column](),
		Remained:    expression.NewTrue(),
	}
}

func allResult() ExtractionResult {
	return ExtractionResult{
		TupleDomain: ranger.AllTupleDomain[*expression.Column](),
		Remained:    expression.NewTrue(),
	}
}

// columnResult builds the exact single column result for domain d.
func (t *Translator) columnResult(col *expression.Column, d *ranger.Domain) ExtractionResult {
	return ExtractionResult{
		TupleDomain: ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{col: d}),
		Remained:    expression.NewTrue(),
	}
}

func (t *Translator) extractFromConstant(con *expression.Constant, complement bool) ExtractionResult {
	if con.Value.IsNull() {
		// NULL is not satisfied under either polarity.
		return noneResult()
	}
	b, ok := con.Value.ToBool()
	if !ok {
		return t.decline(con, complement)
	}
	if b != complement {
		return allResult()
	}
	return noneResult()
}

// extractFromColumn handles a bare boolean column used as a predicate,
// which constrains the column to TRUE, or FALSE under complement.
func (t *Translator) extractFromColumn(col *expression.Column, complement bool) ExtractionResult {
	canonical := t.schema.RetrieveColumn(col)
	if canonical == nil || canonical.RetType.Tp != types.TypeBool {
		return t.decline(col, complement)
	}
	d := ranger.SingleValueDomain(canonical.RetType, types.NewBoolDatum(!complement))
	return t.columnResult(canonical, d)
}

func (t *Translator) extractFromConjunction(items []expression.Expression, complement bool) ExtractionResult {
	td := ranger.AllTupleDomain[*expression.Column]()
	residuals := make([]expression.Expression, 0, len(items))
	for _, item := range items {
		res := t.extract(item, complement)
		td = td.Intersect(res.TupleDomain)
		if !expression.IsTrueLiteral(res.Remained) {
			residuals = append(residuals, res.Remained)
		}
	}
	if td.IsNone() {
		// An unsatisfiable conjunct absorbs everything, residuals included.
		return ExtractionResult{TupleDomain: td, Remained: expression.NewTrue()}
	}
	remained := expression.ComposeCNFCondition(residuals...)
	if remained == nil {
		remained = expression.NewTrue()
	}
	return ExtractionResult{TupleDomain: td, Remained: remained}
}

func (t *Translator) extractFromDisjunction(items []expression.Expression, original expression.Expression, complement bool) ExtractionResult {
	results := make([]ExtractionResult, 0, len(items))
	operands := make([]*ranger.TupleDomain[*expression.Column], 0, len(items))
	for _, item := range items {
		res := t.extract(item, complement)
		results = append(results, res)
		operands = append(operands, res.TupleDomain)
	}
	union := ranger.ColumnWiseUnion(operands...)
	// The column wise union is an upper bound of the true union. Claiming it
	// exact needs every branch to share one residual and the union itself to
	// collapse to a genuine set union.
	shared := results[0].Remained
	for _, res := range results[1:] {
		if !shared.Equal(res.Remained) {
			return ExtractionResult{TupleDomain: union, Remained: complementIfNecessary(original, complement)}
		}
	}
	if !unionIsExact(union, operands) {
		return ExtractionResult{TupleDomain: union, Remained: complementIfNecessary(original, complement)}
	}
	return ExtractionResult{TupleDomain: union, Remained: shared}
}

// unionIsExact reports whether the column wise union of the operands equals
// their true row set union.
func unionIsExact(union *ranger.TupleDomain[*expression.Column], operands []*ranger.TupleDomain[*expression.Column]) bool {
	// One operand covering all others makes the union that operand itself.
	for _, cand := range operands {
		covers := true
		for _, other := range operands {
			if !cand.Contains(other) {
				covers = false
				break
			}
		}
		if covers {
			return true
		}
	}
	// Operands constraining one shared column union column wise into the
	// true set union.
	var shared *expression.Column
	anyAllValues := false
	for _, op := range operands {
		if op.IsNone() {
			continue
		}
		domains, ok := op.Domains()
		if !ok || len(domains) != 1 {
			return false
		}
		for col, d := range domains {
			if shared == nil {
				shared = col
			} else if shared != col {
				return false
			}
			if d.Values().IsAll() {
				anyAllValues = true
			}
		}
	}
	if shared == nil || !shared.RetType.HasNaN() {
		return shared != nil
	}
	// A floating point union that degenerates to the all set admits NaN
	// rows no branch allowed, unless a branch already carried the all set.
	if anyAllValues {
		return true
	}
	if d, ok := union.ColumnDomain(shared); ok {
		return !d.Values().IsAll()
	}
	return false
}

// flipOperator mirrors a comparison when its arguments swap sides.
func flipOperator(op string) string {
	switch op {
	case expression.LT:
		return expression.GT
	case expression.LE:
		return expression.GE
	case expression.GT:
		return expression.LT
	case expression.GE:
		return expression.LE
	}
	return op
}

// negateOperator rewrites a comparison under logical NOT. Only valid when
// the column values are totally ordered; NaN breaks every case except ne to
// eq, which callers must rule out first.
func negateOperator(op string) string {
	switch op {
	case expression.EQ:
		return expression.NE
	case expression.NE:
		return expression.EQ
	case expression.LT:
		return expression.GE
	case expression.LE:
		return expression.GT
	case expression.GT:
		return expression.LE
	case expression.GE:
		return expression.LT
	}
	return op
}

// comparisonColumn resolves the column side of a comparison, seeing through
// one order preserving cast. ok is false when the side is neither a schema
// column nor a losslessly castable one.
func (t *Translator) comparisonColumn(e expression.Expression) (*expression.Column, bool) {
	switch v := e.(type) {
	case *expression.Column:
		if col := t.schema.RetrieveColumn(v); col != nil {
			return col, true
		}
	case *expression.ScalarFunction:
		if v.FuncName != expression.Cast {
			return nil, false
		}
		inner, ok := v.Args[0].(*expression.Column)
		if !ok {
			return nil, false
		}
		if !types.CastPreservesOrder(inner.RetType, v.RetType) {
			return nil, false
		}
		if col := t.schema.RetrieveColumn(inner); col != nil {
			return col, true
		}
	}
	return nil, false
}

// literalAsColumnType maps a comparison literal into the column's value
// space. cmp reports which side the value moved to when the mapping was
// inexact, following the saturating cast contract.
func literalAsColumnType(con *expression.Constant, colTp *types.FieldType) (val types.Datum, cmp int, ok bool) {
	if con.RetType.Tp == colTp.Tp {
		return con.Value, 0, true
	}
	return types.SaturatingCast(con.Value, con.RetType, colTp)
}

func (t *Translator) extractFromComparison(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	op := sf.FuncName
	lhs, rhs := sf.Args[0], sf.Args[1]
	if _, isCon := lhs.(*expression.Constant); isCon {
		lhs, rhs = rhs, lhs
		op = flipOperator(op)
	}
	con, ok := rhs.(*expression.Constant)
	if !ok {
		return t.decline(sf, complement)
	}
	if con.Value.IsNull() {
		// Comparing against NULL is never satisfied, under either polarity.
		return noneResult()
	}
	col, ok := t.comparisonColumn(lhs)
	if !ok {
		return t.decline(sf, complement)
	}
	colTp := col.RetType
	if con.Value.IsNaN() {
		// No ordered comparison holds against NaN. Only ne does, and it
		// holds for every non null value including NaN itself.
		if (op == expression.NE) != complement {
			return t.columnResult(col, ranger.NotNullDomain(colTp))
		}
		return noneResult()
	}
	if colTp.HasNaN() && complement != (op == expression.NE) {
		// The satisfied set includes NaN, which no range representation can
		// hold. Keep a not null bound and leave the check to the residual.
		return ExtractionResult{
			TupleDomain: ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{
				col: ranger.NotNullDomain(colTp),
			}),
			Remained: complementIfNecessary(sf, complement),
		}
	}
	if complement {
		op = negateOperator(op)
	}
	val, cmp, ok := literalAsColumnType(con, colTp)
	if !ok {
		return t.decline(sf, complement)
	}
	return t.comparisonDomain(col, op, val, cmp, sf, complement)
}

func (t *Translator) comparisonDomain(col *expression.Column, op string, val types.Datum, cmp int, original *expression.ScalarFunction, complement bool) ExtractionResult {
	colTp := col.RetType
	switch op {
	case expression.EQ:
		if cmp != 0 {
			return noneResult()
		}
		return t.columnResult(col, ranger.SingleValueDomain(colTp, val))
	case expression.NE:
		if cmp != 0 {
			// No column value maps onto the literal, every non null value
			// differs from it.
			return t.columnResult(col, ranger.NotNullDomain(colTp))
		}
		return t.columnResult(col, ranger.NewDomain(ranger.ValueSetOf(colTp, val).Complement(), false))
	}
	if !colTp.IsOrdered() {
		return t.decline(original, complement)
	}
	var (
		low, high               types.Datum
		lowExclude, highExclude bool
	)
	switch op {
	case expression.LT:
		low, high, highExclude = types.MinNotNullDatum(), val, true
	case expression.LE:
		low, high = types.MinNotNullDatum(), val
	case expression.GT:
		low, lowExclude, high = val, true, types.MaxValueDatum()
	case expression.GE:
		low, high = val, types.MaxValueDatum()
	default:
		return t.decline(original, complement)
	}
	// An inexact literal sits strictly between two column values, so the
	// bound it produces never matches exactly and its strictness depends
	// only on which side the saturation moved to.
	if cmp != 0 {
		if op == expression.LT || op == expression.LE {
			highExclude = cmp < 0
		} else {
			lowExclude = cmp > 0
		}
	}
	r, ok := ranger.MakeRange(colTp, low, lowExclude, high, highExclude)
	if !ok {
		return noneResult()
	}
	return t.columnResult(col, ranger.NewDomain(ranger.SortedRanges(r), false))
}

// extractFromNullSafeEQ handles nulleq, the IS NOT DISTINCT FROM comparison.
// It never evaluates to NULL, so its complement is satisfied exactly where
// it is not.
func (t *Translator) extractFromNullSafeEQ(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	lhs, rhs := sf.Args[0], sf.Args[1]
	if _, isCon := lhs.(*expression.Constant); isCon {
		lhs, rhs = rhs, lhs
	}
	con, ok := rhs.(*expression.Constant)
	if !ok {
		return t.decline(sf, complement)
	}
	col, ok := t.comparisonColumn(lhs)
	if !ok {
		return t.decline(sf, complement)
	}
	colTp := col.RetType
	if con.Value.IsNull() {
		if complement {
			return t.columnResult(col, ranger.NotNullDomain(colTp))
		}
		return t.columnResult(col, ranger.OnlyNullDomain(colTp))
	}
	if con.Value.IsNaN() {
		// Null safe equality matches NaN by identity and no range holds NaN.
		return t.decline(sf, complement)
	}
	val, cmp, ok := literalAsColumnType(con, colTp)
	if !ok {
		return t.decline(sf, complement)
	}
	if !complement {
		if cmp != 0 {
			return noneResult()
		}
		return t.columnResult(col, ranger.SingleValueDomain(colTp, val))
	}
	if colTp.HasNaN() {
		// The distinct set keeps NaN and NULL both, which only the all
		// domain could cover. That constrains nothing, so give up.
		return t.decline(sf, complement)
	}
	if cmp != 0 {
		// Being distinct from an unrepresentable literal always holds.
		return allResult()
	}
	return t.columnResult(col, ranger.NewDomain(ranger.ValueSetOf(colTp, val).Complement(), true))
}

// extractFromIn desugars IN into a disjunction of equalities, which the
// logic combiners reduce with the three valued NULL rules for free. Under
// complement the same items form a conjunction of negated equalities.
func (t *Translator) extractFromIn(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	if len(sf.Args) < 2 {
		return t.decline(sf, complement)
	}
	branches := make([]expression.Expression, 0, len(sf.Args)-1)
	for _, item := range sf.Args[1:] {
		branches = append(branches, expression.NewFunction(expression.EQ, boolType(), sf.Args[0], item))
	}
	if complement {
		return t.extractFromConjunction(branches, complement)
	}
	return t.extractFromDisjunction(branches, sf, complement)
}

// extractFromBetween desugars BETWEEN into its bound comparisons. A NULL
// bound then degenerates to NONE through the comparison rules.
func (t *Translator) extractFromBetween(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	if len(sf.Args) != 3 {
		return t.decline(sf, complement)
	}
	lower := expression.NewFunction(expression.GE, boolType(), sf.Args[0], sf.Args[1])
	upper := expression.NewFunction(expression.LE, boolType(), sf.Args[0], sf.Args[2])
	bounds := []expression.Expression{lower, upper}
	if complement {
		return t.extractFromDisjunction(bounds, sf, complement)
	}
	return t.extractFromConjunction(bounds, complement)
}

// likePrefix extracts the literal prefix of a LIKE pattern up to its first
// wildcard. underscore reports that wildcard being '_', which forces a match
// strictly longer than the prefix.
func likePrefix(pattern string, escape byte) (prefix []byte, hasWildcard, underscore bool) {
	buf := make([]byte, 0, len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == escape && i+1 < len(pattern):
			i++
			buf = append(buf, pattern[i])
		case c == '%' || c == '_':
			return buf, true, c == '_'
		default:
			buf = append(buf, c)
		}
	}
	return buf, false, false
}

func (t *Translator) extractFromLike(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	if len(sf.Args) < 2 {
		return t.decline(sf, complement)
	}
	colArg, ok := sf.Args[0].(*expression.Column)
	if !ok {
		return t.decline(sf, complement)
	}
	col := t.schema.RetrieveColumn(colArg)
	if col == nil || !col.RetType.IsStringKind() {
		return t.decline(sf, complement)
	}
	pat, ok := sf.Args[1].(*expression.Constant)
	if !ok {
		return t.decline(sf, complement)
	}
	if pat.Value.IsNull() {
		return noneResult()
	}
	if pat.Value.Kind() != types.KindString {
		return t.decline(sf, complement)
	}
	escape := byte('\\')
	if len(sf.Args) > 2 {
		esc, ok := sf.Args[2].(*expression.Constant)
		if !ok || esc.Value.Kind() != types.KindString || len(esc.Value.GetString()) != 1 {
			return t.decline(sf, complement)
		}
		escape = esc.Value.GetString()[0]
	}
	prefix, hasWildcard, underscore := likePrefix(pat.Value.GetString(), escape)
	if !hasWildcard {
		// A pattern without wildcards degenerates to equality.
		d := ranger.SingleValueDomain(col.RetType, stringDatum(col.RetType, string(prefix)))
		if complement {
			d = ranger.NewDomain(d.Values().Complement(), false)
		}
		return t.columnResult(col, d)
	}
	if complement || len(prefix) == 0 {
		return t.decline(sf, complement)
	}
	d, ok := prefixDomain(col.RetType, prefix, underscore)
	if !ok {
		return t.decline(sf, complement)
	}
	// The prefix range is only a pre filter, the pattern still runs on rows.
	return ExtractionResult{
		TupleDomain: ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{col: d}),
		Remained:    sf,
	}
}

func (t *Translator) extractFromStartsWith(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	if len(sf.Args) != 2 {
		return t.decline(sf, complement)
	}
	colArg, ok := sf.Args[0].(*expression.Column)
	if !ok {
		return t.decline(sf, complement)
	}
	col := t.schema.RetrieveColumn(colArg)
	if col == nil || !col.RetType.IsStringKind() {
		return t.decline(sf, complement)
	}
	con, ok := sf.Args[1].(*expression.Constant)
	if !ok {
		return t.decline(sf, complement)
	}
	if con.Value.IsNull() {
		return noneResult()
	}
	if complement {
		return t.decline(sf, complement)
	}
	var prefix []byte
	switch con.Value.Kind() {
	case types.KindString:
		prefix = []byte(con.Value.GetString())
	case types.KindBytes:
		prefix = con.Value.GetBytes()
	default:
		return t.decline(sf, complement)
	}
	if len(prefix) == 0 {
		return t.decline(sf, complement)
	}
	d, ok := prefixDomain(col.RetType, prefix, false)
	if !ok {
		return t.decline(sf, complement)
	}
	return ExtractionResult{
		TupleDomain: ranger.WithColumnDomains(map[*expression.Column]*ranger.Domain{col: d}),
		Remained:    sf,
	}
}

// prefixDomain builds the range covering all values starting with prefix.
// tighterLow excludes the bare prefix itself.
func prefixDomain(tp *types.FieldType, prefix []byte, tighterLow bool) (*ranger.Domain, bool) {
	low := stringDatum(tp, string(prefix))
	var (
		high        types.Datum
		highExclude bool
	)
	if next, ok := types.PrefixNext(prefix); ok {
		high, highExclude = stringDatum(tp, string(next)), true
	} else {
		// The prefix is all 0xff bytes and has no upper sibling.
		high = types.MaxValueDatum()
	}
	r, ok := ranger.MakeRange(tp, low, tighterLow, high, highExclude)
	if !ok {
		return nil, false
	}
	return ranger.NewDomain(ranger.SortedRanges(r), false), true
}

func stringDatum(tp *types.FieldType, s string) types.Datum {
	if tp.Tp == types.TypeBytes {
		return types.NewBytesDatum([]byte(s))
	}
	return types.NewStringDatum(s)
}

func (t *Translator) extractFromIsNull(sf *expression.ScalarFunction, complement bool) ExtractionResult {
	colArg, ok := sf.Args[0].(*expression.Column)
	if !ok {
		return t.decline(sf, complement)
	}
	col := t.schema.RetrieveColumn(colArg)
	if col == nil {
		return t.decline(sf, complement)
	}
	if complement {
		return t.columnResult(col, ranger.NotNullDomain(col.RetType))
	}
	return t.columnResult(col, ranger.OnlyNullDomain(col.RetType))
}

func boolType() *types.FieldType {
	return types.NewFieldType(types.TypeBool)
}
