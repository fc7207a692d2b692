// Package sphinxql compiles search criteria into SphinxQL and executes them
// over the engine's MySQL-protocol listener.
package sphinxql

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
)

const weightColumn = "WEIGHT() AS weight"

// Compiler renders criteria.Query into SphinxQL. It holds no per-call state.
type Compiler struct {
	defaultQueryTimeout int
}

// NewCompiler creates a compiler. defaultQueryTimeoutMs is emitted as
// max_query_time whenever the criteria carry no override.
func NewCompiler(defaultQueryTimeoutMs int) *Compiler {
	return &Compiler{defaultQueryTimeout: defaultQueryTimeoutMs}
}

// Compile renders q. Errors wrap domain.ErrCompile or domain.ErrInvalidCriteria.
func (c *Compiler) Compile(q criteria.Query) (*CompiledQuery, error) {
	crit := q.Criteria
	if crit == nil {
		crit = criteria.New()
	}
	if err := crit.Validate(); err != nil {
		return nil, err
	}
	for _, idx := range q.Indexes {
		if idx != criteria.AllIndexes && !db.IsValidIdentifier(idx) {
			return nil, compileErr("indexes", fmt.Errorf("%w: index %q", domain.ErrCompile, idx))
		}
	}

	if err := validateNames(crit); err != nil {
		return nil, err
	}

	cq := &CompiledQuery{
		indexes: q.IndexList(),
		offset:  crit.Offset,
		limit:   crit.Limit,
	}

	if err := c.where(cq, q.Text, crit); err != nil {
		return nil, err
	}
	if err := c.grouping(cq, crit); err != nil {
		return nil, err
	}
	cq.options = c.options(crit)

	return cq, nil
}

// validateNames checks the identifiers that are rendered inline rather than bound.
func validateNames(crit *criteria.Criteria) error {
	for _, w := range crit.IndexWeights {
		if !db.IsValidIdentifier(w.Name) {
			return compileErr("index_weights", fmt.Errorf("%w: index %q", domain.ErrCompile, w.Name))
		}
	}
	for _, w := range crit.FieldWeights {
		if !db.IsValidIdentifier(w.Name) {
			return compileErr("field_weights", fmt.Errorf("%w: field %q", domain.ErrCompile, w.Name))
		}
	}
	if (crit.SortMode == criteria.SortAttrAsc || crit.SortMode == criteria.SortAttrDesc) &&
		crit.SortBy != "" && !db.IsValidIdentifier(crit.SortBy) {
		return compileErr("sort_by", fmt.Errorf("%w: attribute %q", domain.ErrCompile, crit.SortBy))
	}
	// Inline text must not carry '?': the driver counts every one as a placeholder.
	for _, inline := range []struct{ field, value string }{
		{"select", crit.Select},
		{"comment", crit.Comment},
		{"idf", crit.IDF},
		{"ranking_expression", crit.RankingExpression},
	} {
		if strings.Contains(inline.value, "?") {
			return compileErr(inline.field, fmt.Errorf("%w: '?' is not allowed in inline text", domain.ErrCompile))
		}
	}
	switch crit.SortMethod {
	case "", "pq", "kbuffer":
	default:
		return compileErr("sort_method", fmt.Errorf("%w: %q", domain.ErrCompile, crit.SortMethod))
	}
	return nil
}

func (c *Compiler) where(cq *CompiledQuery, text string, crit *criteria.Criteria) error {
	if text != "" {
		cq.conditions = append(cq.conditions, "MATCH(?)")
		cq.args = append(cq.args, text)
	}
	if crit.MinID > 0 {
		cq.conditions = append(cq.conditions, "id >= ?")
		cq.args = append(cq.args, idArg(crit.MinID))
	}
	if crit.MaxID > 0 {
		cq.conditions = append(cq.conditions, "id <= ?")
		cq.args = append(cq.args, idArg(crit.MaxID))
	}

	for _, f := range crit.Filters() {
		if !db.IsValidIdentifier(f.Attribute) {
			return compileErr("filters", fmt.Errorf("%w: attribute %q", domain.ErrCompile, f.Attribute))
		}
		op := " IN ("
		if f.Exclude {
			op = " NOT IN ("
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Values)), ", ")
		cq.conditions = append(cq.conditions, f.Attribute+op+placeholders+")")
		cq.args = append(cq.args, f.Values...)
	}

	for _, r := range crit.Ranges() {
		if !db.IsValidIdentifier(r.Attribute) {
			return compileErr("ranges", fmt.Errorf("%w: attribute %q", domain.ErrCompile, r.Attribute))
		}
		op := " BETWEEN ? AND ?"
		if r.Exclude {
			op = " NOT BETWEEN ? AND ?"
		}
		cq.conditions = append(cq.conditions, r.Attribute+op)
		cq.args = append(cq.args, rangeArg(r.Min), rangeArg(r.Max))
	}
	return nil
}

func (c *Compiler) grouping(cq *CompiledQuery, crit *criteria.Criteria) error {
	selectList := crit.Select
	if selectList == "" {
		selectList = "*"
	}

	order, err := sortClause(crit)
	if err != nil {
		return err
	}

	if crit.GroupBy == "" {
		cq.selectList = selectList + ", " + weightColumn
		cq.orderBy = order
		return nil
	}

	if !db.IsValidIdentifier(crit.GroupBy) {
		return compileErr("group_by", fmt.Errorf("%w: attribute %q", domain.ErrCompile, crit.GroupBy))
	}
	switch crit.GroupFunc {
	case criteria.GroupNone, criteria.GroupAttr:
		cq.groupBy = crit.GroupBy
	case criteria.GroupDay, criteria.GroupWeek, criteria.GroupMonth, criteria.GroupYear:
		cq.groupBy = strings.ToUpper(string(crit.GroupFunc)) + "(" + crit.GroupBy + ")"
	default:
		return compileErr("group_func", fmt.Errorf("%w: %q", domain.ErrUnknownGroupFunc, crit.GroupFunc))
	}

	if crit.GroupDistinct != "" {
		if !db.IsValidIdentifier(crit.GroupDistinct) {
			return compileErr("group_distinct", fmt.Errorf("%w: attribute %q", domain.ErrCompile, crit.GroupDistinct))
		}
		selectList += ", COUNT(DISTINCT " + crit.GroupDistinct + ") AS @distinct"
	}
	groupOrder, err := orderList("group_sort", criteria.ParseOrders(crit.GroupSort))
	if err != nil {
		return err
	}
	cq.selectList = selectList + ", " + weightColumn
	cq.withinGroup = order
	cq.orderBy = groupOrder
	return nil
}

func sortClause(crit *criteria.Criteria) (string, error) {
	switch crit.SortMode {
	case criteria.SortRelevance:
		return "WEIGHT() DESC", nil
	case criteria.SortAttrAsc, criteria.SortAttrDesc:
		if crit.SortBy == "" {
			return "", compileErr("sort_by", fmt.Errorf("%w: attribute sort requires sort_by", domain.ErrCompile))
		}
		dir := criteria.Asc
		if crit.SortMode == criteria.SortAttrDesc {
			dir = criteria.Desc
		}
		return crit.SortBy + " " + string(dir), nil
	case criteria.SortExtended:
		return orderList("orders", crit.Orders)
	default:
		return "", compileErr("sort_mode", fmt.Errorf("%w: %q", domain.ErrUnsupportedSort, crit.SortMode))
	}
}

// orderList renders field/direction pairs. Fields must be attributes, select
// aliases or WEIGHT(); an empty list renders nothing.
func orderList(field string, orders []criteria.Order) (string, error) {
	pairs := make([]string, len(orders))
	for i, o := range orders {
		if !db.IsValidIdentifier(o.Field) && !strings.EqualFold(o.Field, "WEIGHT()") {
			return "", compileErr(field, fmt.Errorf("%w: order field %q", domain.ErrCompile, o.Field))
		}
		if o.Direction != criteria.Asc && o.Direction != criteria.Desc {
			return "", compileErr(field, fmt.Errorf("%w: order direction %q", domain.ErrCompile, o.Direction))
		}
		pairs[i] = o.Field + " " + string(o.Direction)
	}
	return strings.Join(pairs, ", "), nil
}

func (c *Compiler) options(crit *criteria.Criteria) []string {
	var opts []string
	if crit.MaxMatches != nil {
		opts = append(opts, "max_matches="+strconv.Itoa(*crit.MaxMatches))
	}
	if crit.Cutoff != nil {
		opts = append(opts, "cutoff="+strconv.Itoa(*crit.Cutoff))
	}
	if len(crit.IndexWeights) > 0 {
		opts = append(opts, "index_weights="+weights(crit.IndexWeights))
	}
	if len(crit.FieldWeights) > 0 {
		opts = append(opts, "field_weights="+weights(crit.FieldWeights))
	}
	if crit.Comment != "" {
		opts = append(opts, "comment="+quote(crit.Comment))
	}
	if crit.BooleanSimplify != nil {
		opts = append(opts, "boolean_simplify="+flag(*crit.BooleanSimplify))
	}
	if crit.ReverseScan != nil {
		opts = append(opts, "reverse_scan="+flag(*crit.ReverseScan))
	}
	if crit.SortMethod != "" {
		opts = append(opts, "sort_method="+crit.SortMethod)
	}
	if crit.GlobalIDF != nil {
		opts = append(opts, "global_idf="+flag(*crit.GlobalIDF))
	}
	if crit.IDF != "" {
		opts = append(opts, "idf="+quote(crit.IDF))
	}

	timeout := c.defaultQueryTimeout
	if crit.QueryTimeout != nil {
		timeout = *crit.QueryTimeout
	}
	opts = append(opts, "max_query_time="+strconv.Itoa(timeout))

	switch crit.RankingMode {
	case criteria.RankDefault:
	case criteria.RankExpr:
		opts = append(opts, "ranker=expr("+quote(crit.RankingExpression)+")")
	default:
		opts = append(opts, "ranker="+string(crit.RankingMode))
	}
	return opts
}

func weights(ws []criteria.Weight) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.Name + "=" + strconv.Itoa(w.Value)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// rangeArg binds integral bounds as integers so integer attributes compare exactly.
func rangeArg(v float64) any {
	if v == math.Trunc(v) && v >= math.MinInt64 && v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}

func idArg(id uint64) any {
	if id > math.MaxInt64 {
		return id
	}
	return int64(id)
}

func compileErr(field string, err error) error {
	return &domain.CompileError{Field: field, Err: err}
}
