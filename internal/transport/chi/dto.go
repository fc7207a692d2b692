package chi

import (
	"math"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/sphinxsuggest/internal/usecase/search"
)

// ErrorCode is a machine-readable error identifier returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInvalidCriteria  ErrorCode = "invalid_criteria"
	ErrorCodeCompileFailed    ErrorCode = "compile_failed"
	ErrorCodeModelNotFound    ErrorCode = "model_not_found"
	ErrorCodeIndexingDisabled ErrorCode = "indexing_disabled"
	ErrorCodeNotConnected     ErrorCode = "engine_unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// MatchItem is one search hit.
type MatchItem struct {
	ID     uint64            `json:"id"`
	Weight int64             `json:"weight"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// SuggestionItem is a spelling correction offered alongside thin results.
type SuggestionItem struct {
	Text  string `json:"text"`
	Query string `json:"query"`
}

// SearchResponse is the body of GET /models/{model}/search.
type SearchResponse struct {
	Query      string          `json:"query"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalFound int             `json:"total_found"`
	Matches    []MatchItem     `json:"matches"`
	Suggestion *SuggestionItem `json:"suggestion,omitempty"`
}

// KeywordItem is one tokenized keyword from CALL KEYWORDS.
type KeywordItem struct {
	QPos       int    `json:"qpos"`
	Tokenized  string `json:"tokenized"`
	Normalized string `json:"normalized"`
	Docs       int    `json:"docs,omitempty"`
	Hits       int    `json:"hits,omitempty"`
}

// KeywordsResponse is the body of GET /indexes/{index}/keywords.
type KeywordsResponse struct {
	Keywords []KeywordItem `json:"keywords"`
}

// SnippetsRequest is the body of POST /indexes/{index}/snippets.
type SnippetsRequest struct {
	Words       string   `json:"words"`
	Docs        []string `json:"docs"`
	BeforeMatch string   `json:"before_match,omitempty"`
	AfterMatch  string   `json:"after_match,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Around      int      `json:"around,omitempty"`
}

// SnippetsResponse is the body returned for a snippets request.
type SnippetsResponse struct {
	Snippets []string `json:"snippets"`
}

// DocumentRequest is the body of PUT /indexes/{index}/documents/{id}.
type DocumentRequest struct {
	Fields map[string]any `json:"fields"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFrom(resp *searchuc.Response) SearchResponse {
	out := SearchResponse{
		Query:    resp.Query,
		Page:     resp.Page,
		PageSize: resp.PageSize,
		Matches:  []MatchItem{},
	}
	if resp.Result != nil {
		out.Total = resp.Result.Total()
		out.TotalFound = resp.Result.TotalFound()
		out.Matches = matchesFrom(resp.Result.Matches())
	}
	if resp.Suggestion != nil {
		out.Suggestion = &SuggestionItem{
			Text:  resp.Suggestion.Text,
			Query: resp.Suggestion.Query,
		}
	}
	return out
}

func matchesFrom(matches []result.Match) []MatchItem {
	items := make([]MatchItem, len(matches))
	for i := range matches {
		m := &matches[i]
		items[i] = MatchItem{ID: m.ID(), Weight: m.Weight()}
		if len(m.Attrs()) > 0 {
			items[i].Attrs = m.Attrs()
		}
	}
	return items
}

func keywordsFrom(kws []db.Keyword) []KeywordItem {
	items := make([]KeywordItem, len(kws))
	for i, kw := range kws {
		items[i] = KeywordItem{
			QPos:       kw.QPos,
			Tokenized:  kw.Tokenized,
			Normalized: kw.Normalized,
			Docs:       kw.Docs,
			Hits:       kw.Hits,
		}
	}
	return items
}

// documentFromRequest converts decoded JSON fields into engine values.
// JSON numbers arrive as float64; whole numbers are bound as integers so
// uint and bigint attributes accept them.
func documentFromRequest(id uint64, req DocumentRequest) db.Document {
	fields := make(map[string]any, len(req.Fields))
	for k, v := range req.Fields {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			fields[k] = int64(f)
			continue
		}
		fields[k] = v
	}
	return db.Document{ID: id, Fields: fields}
}
