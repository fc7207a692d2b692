package criteria

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
)

// AllIndexes selects every local index on the engine.
const AllIndexes = "*"

// Order is a single (field, direction) pair for extended sorting.
type Order struct {
	Field     string
	Direction Direction
}

// Weight is a named relevance multiplier for an index or a field.
type Weight struct {
	Name  string
	Value int
}

// Filter restricts matches to (or away from) a set of discrete attribute values.
type Filter struct {
	Attribute string
	Values    []any
	Exclude   bool
}

// Range restricts matches to (or away from) an inclusive attribute interval.
type Range struct {
	Attribute string
	Min       float64
	Max       float64
	Exclude   bool
}

// Criteria is the backend-agnostic description of a search: filters, ranges,
// sort, grouping, ranking and pagination. Optional knobs left nil or empty are
// not sent to the engine.
type Criteria struct {
	Select            string
	MatchMode         MatchMode
	RankingMode       RankingMode
	RankingExpression string

	SortMode SortMode
	SortBy   string
	Orders   []Order

	GroupBy       string
	GroupFunc     GroupFunc
	GroupDistinct string
	GroupSort     string

	IndexWeights []Weight
	FieldWeights []Weight

	MinID uint64
	MaxID uint64

	MaxMatches      *int
	Cutoff          *int
	QueryTimeout    *int // milliseconds
	BooleanSimplify *bool
	ReverseScan     *bool
	SortMethod      string // pq | kbuffer
	GlobalIDF       *bool
	IDF             string
	Comment         string

	Limit  int
	Offset int

	filters []Filter
	ranges  []Range
}

// New creates criteria selecting all attributes in extended match mode.
func New() *Criteria {
	return &Criteria{Select: "*", MatchMode: MatchExtended}
}

// AddFilter adds an inclusion filter. Values are normalized: numeric-looking
// values become int64 and empty values are dropped. A filter left with no
// values is ignored.
func (c *Criteria) AddFilter(attribute string, values ...any) *Criteria {
	c.addFilter(attribute, values, false)
	return c
}

// AddExcludeFilter adds an exclusion filter with the same normalization as AddFilter.
func (c *Criteria) AddExcludeFilter(attribute string, values ...any) *Criteria {
	c.addFilter(attribute, values, true)
	return c
}

func (c *Criteria) addFilter(attribute string, values []any, exclude bool) {
	normalized := make([]any, 0, len(values))
	for _, v := range values {
		if nv, ok := NormalizeValue(v); ok {
			normalized = append(normalized, nv)
		}
	}
	if attribute == "" || len(normalized) == 0 {
		return
	}
	c.filters = append(c.filters, Filter{Attribute: attribute, Values: normalized, Exclude: exclude})
}

// AddRange adds an inclusive range filter.
func (c *Criteria) AddRange(attribute string, minVal, maxVal float64) *Criteria {
	c.ranges = append(c.ranges, Range{Attribute: attribute, Min: minVal, Max: maxVal})
	return c
}

// AddExcludeRange adds a negated range filter.
func (c *Criteria) AddExcludeRange(attribute string, minVal, maxVal float64) *Criteria {
	c.ranges = append(c.ranges, Range{Attribute: attribute, Min: minVal, Max: maxVal, Exclude: true})
	return c
}

// AddOrder appends an extended sort pair.
func (c *Criteria) AddOrder(field string, dir Direction) *Criteria {
	c.Orders = append(c.Orders, Order{Field: field, Direction: dir})
	return c
}

// ParseOrders splits an ORDER BY list such as "price DESC, @id" into pairs.
// A missing direction means ascending. Entries are not validated here.
func ParseOrders(list string) []Order {
	var out []Order
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		switch len(fields) {
		case 1:
			out = append(out, Order{Field: fields[0], Direction: Asc})
		case 2:
			out = append(out, Order{Field: fields[0], Direction: Direction(strings.ToUpper(fields[1]))})
		default:
			out = append(out, Order{Field: part, Direction: Asc})
		}
	}
	return out
}

// Filters returns the filters in insertion order.
func (c *Criteria) Filters() []Filter {
	out := make([]Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// Ranges returns the range filters in insertion order.
func (c *Criteria) Ranges() []Range {
	out := make([]Range, len(c.ranges))
	copy(out, c.ranges)
	return out
}

// Validate checks enum values and field combinations.
func (c *Criteria) Validate() error {
	if !c.MatchMode.IsValid() {
		return fmt.Errorf("%w: match mode %q", domain.ErrInvalidCriteria, c.MatchMode)
	}
	if !c.RankingMode.IsValid() {
		return fmt.Errorf("%w: ranking mode %q", domain.ErrInvalidCriteria, c.RankingMode)
	}
	if c.RankingMode == RankExpr && c.RankingExpression == "" {
		return fmt.Errorf("%w: expr ranking requires an expression", domain.ErrInvalidCriteria)
	}
	if !c.SortMode.IsValid() {
		return fmt.Errorf("%w: sort mode %q", domain.ErrInvalidCriteria, c.SortMode)
	}
	for _, o := range c.Orders {
		if o.Field == "" {
			return fmt.Errorf("%w: order field is required", domain.ErrInvalidCriteria)
		}
		if o.Direction != Asc && o.Direction != Desc {
			return fmt.Errorf("%w: order direction %q", domain.ErrInvalidCriteria, o.Direction)
		}
	}
	if c.Limit < 0 || c.Offset < 0 {
		return fmt.Errorf("%w: limit and offset must not be negative", domain.ErrInvalidCriteria)
	}
	if c.MinID != 0 && c.MaxID != 0 && c.MinID > c.MaxID {
		return fmt.Errorf("%w: min id %d exceeds max id %d", domain.ErrInvalidCriteria, c.MinID, c.MaxID)
	}
	return nil
}

// NormalizeValue coerces a filter value for the engine. Numeric-looking
// strings and floats truncate to int64 and saturate at its bounds, bools map
// to 0/1, other strings pass through. Returns false for nil and blank strings.
func NormalizeValue(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintValue(uint64(x)), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintValue(x), true
	case float32:
		return floatValue(float64(x)), true
	case float64:
		return floatValue(x), true
	case bool:
		if x {
			return int64(1), true
		}
		return int64(0), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		switch {
		case errors.Is(err, strconv.ErrRange):
			return floatValue(f), true
		case err == nil && !math.IsNaN(f) && !math.IsInf(f, 0):
			return floatValue(f), true
		}
		return x, true
	default:
		return fmt.Sprint(x), true
	}
}

// floatValue truncates f toward zero, saturating at the int64 bounds.
func floatValue(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func uintValue(u uint64) any {
	if u > math.MaxInt64 {
		return u
	}
	return int64(u)
}

// Int returns a pointer to v, for optional criteria knobs.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for optional criteria knobs.
func Bool(v bool) *bool { return &v }
