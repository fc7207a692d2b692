package sphinxsuggest

// SortMode orders a model's results.
type SortMode string

// Sort mode constants.
const (
	SortRelevance SortMode = ""
	SortAttrAsc   SortMode = "attr_asc"
	SortAttrDesc  SortMode = "attr_desc"
	SortExtended  SortMode = "extended"
)

// Filter restricts an attribute to a set of values.
type Filter struct {
	Attribute string
	Values    []any
}

// Model is a named search profile.
type Model struct {
	Name           string
	Indexes        []string // empty searches every index
	MaxMatches     int      // default 1000
	PageSize       int      // default 20
	Filters        []Filter
	ExcludeFilters []Filter
	SortAttribute  string // attribute, or a full ORDER BY list for SortExtended
	SortMode       SortMode
}

// SuggestOptions tunes the suggestion engine.
type SuggestOptions struct {
	Index                string   // trigram dictionary index, default "suggest"
	Indexes              []string // a candidate must match here to be offered; empty means all
	LengthThreshold      int      // default 3
	LevenshteinThreshold int      // default 2
	TopCount             int      // default 10
	MaxPerSecond         float64  // suggestion passes per second, 0 = unlimited
}

// Match is a single search hit.
type Match struct {
	ID     uint64
	Weight int64
	Attrs  map[string]string
}

// Suggestion is a corrected query. Text wraps replaced words in
// <strong><i>...</i></strong>; Query is the plain corrected text.
type Suggestion struct {
	Text  string
	Query string
}

// SearchResult is one page of a model search.
type SearchResult struct {
	Query      string
	Page       int
	PageSize   int
	Total      int
	TotalFound int
	Matches    []Match
	Suggestion *Suggestion
}

// Keyword is one tokenized keyword as the index would store it.
type Keyword struct {
	QPos       int
	Tokenized  string
	Normalized string
	Docs       int
	Hits       int
}

// SnippetOptions control excerpt highlighting. Zero values keep engine defaults.
type SnippetOptions struct {
	BeforeMatch string
	AfterMatch  string
	Limit       int
	Around      int
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"empty"/"error"
}
