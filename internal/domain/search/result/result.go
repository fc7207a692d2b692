package result

import "strconv"

// Match is a single search hit.
type Match struct {
	id     uint64
	weight int64
	attrs  map[string]string
}

// NewMatch creates a match. attrs holds every selected column except id and weight.
func NewMatch(id uint64, weight int64, attrs map[string]string) Match {
	return Match{id: id, weight: weight, attrs: attrs}
}

// ID returns the document identifier.
func (m *Match) ID() uint64 { return m.id }

// Weight returns the relevance weight computed by the engine.
func (m *Match) Weight() int64 { return m.weight }

// Attrs returns the selected attributes.
func (m *Match) Attrs() map[string]string { return m.attrs }

// Attr returns a single attribute value.
func (m *Match) Attr(name string) (string, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// IntAttr returns an attribute parsed as an integer.
func (m *Match) IntAttr(name string) (int64, bool) {
	v, ok := m.attrs[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SearchResult is the outcome of one executed query.
type SearchResult struct {
	total      int
	totalFound int
	matches    []Match
}

// New creates a search result. total is the number of matches the engine
// returned, totalFound the pre-limit count.
func New(total, totalFound int, matches []Match) *SearchResult {
	return &SearchResult{total: total, totalFound: totalFound, matches: matches}
}

// Total returns the number of matches returned by the engine.
func (r *SearchResult) Total() int { return r.total }

// TotalFound returns the number of matches found before LIMIT was applied.
func (r *SearchResult) TotalFound() int { return r.totalFound }

// Matches returns the matches in engine order.
func (r *SearchResult) Matches() []Match { return r.matches }

// IDs returns the match identifiers in engine order.
func (r *SearchResult) IDs() []uint64 {
	ids := make([]uint64, len(r.matches))
	for i := range r.matches {
		ids[i] = r.matches[i].id
	}
	return ids
}
