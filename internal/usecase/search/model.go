package search

import (
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/criteria"
)

// Filter is a configured attribute restriction for a model.
type Filter struct {
	Attribute string
	Values    []any
}

// Sort is a model's configured result order. Mode defaults to relevance.
type Sort struct {
	Attribute string
	Mode      criteria.SortMode
}

// Model is a named search profile: which indexes to query and how.
type Model struct {
	Name           string
	Indexes        []string
	MaxMatches     int
	PageSize       int
	Filters        []Filter
	ExcludeFilters []Filter
	Sort           Sort
}

// buildCriteria builds the search criteria for one page of results.
func (m *Model) buildCriteria(page int) *criteria.Criteria {
	c := criteria.New()
	if m.MaxMatches > 0 {
		c.MaxMatches = criteria.Int(m.MaxMatches)
	}
	for _, f := range m.Filters {
		c.AddFilter(f.Attribute, f.Values...)
	}
	for _, f := range m.ExcludeFilters {
		c.AddExcludeFilter(f.Attribute, f.Values...)
	}
	switch m.Sort.Mode {
	case criteria.SortRelevance:
	case criteria.SortExtended:
		c.SortMode = m.Sort.Mode
		c.Orders = criteria.ParseOrders(m.Sort.Attribute)
	default:
		c.SortMode = m.Sort.Mode
		c.SortBy = m.Sort.Attribute
	}
	c.Limit = m.PageSize
	c.Offset = (page - 1) * m.PageSize
	return c
}
