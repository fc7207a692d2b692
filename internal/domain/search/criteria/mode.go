package criteria

// MatchMode is the full-text matching strategy.
// SphinxQL always parses MATCH() in extended syntax; the mode is kept for
// callers that share criteria with the native API protocol.
type MatchMode string

// Match mode constants.
const (
	MatchExtended  MatchMode = "extended"
	MatchExtended2 MatchMode = "extended2"
	MatchBoolean   MatchMode = "boolean"
	MatchPhrase    MatchMode = "phrase"
	MatchAll       MatchMode = "all"
	MatchAny       MatchMode = "any"
)

// IsValid checks if the match mode is one of the supported values.
func (m MatchMode) IsValid() bool {
	switch m {
	case "", MatchExtended, MatchExtended2, MatchBoolean, MatchPhrase, MatchAll, MatchAny:
		return true
	}
	return false
}

// RankingMode names the engine ranker used to compute match weight.
type RankingMode string

// Ranking mode constants. RankDefault leaves the engine default in place.
const (
	RankDefault       RankingMode = ""
	RankProximityBM25 RankingMode = "proximity_bm25"
	RankBM25          RankingMode = "bm25"
	RankNone          RankingMode = "none"
	RankWordCount     RankingMode = "wordcount"
	RankProximity     RankingMode = "proximity"
	RankMatchAny      RankingMode = "matchany"
	RankFieldMask     RankingMode = "fieldmask"
	RankSPH04         RankingMode = "sph04"
	RankExpr          RankingMode = "expr"
	RankExport        RankingMode = "export"
)

// IsValid checks if the ranking mode is one of the supported values.
func (r RankingMode) IsValid() bool {
	switch r {
	case RankDefault, RankProximityBM25, RankBM25, RankNone, RankWordCount,
		RankProximity, RankMatchAny, RankFieldMask, RankSPH04, RankExpr, RankExport:
		return true
	}
	return false
}

// SortMode selects how matches are ordered.
type SortMode string

// Sort mode constants. The zero value sorts by relevance.
const (
	SortRelevance    SortMode = ""
	SortAttrAsc      SortMode = "attr_asc"
	SortAttrDesc     SortMode = "attr_desc"
	SortTimeSegments SortMode = "time_segments"
	SortExtended     SortMode = "extended"
	SortExpr         SortMode = "expr"
)

// IsValid checks if the sort mode is one of the known values.
// Known does not mean compilable: see the SphinxQL compiler for support.
func (s SortMode) IsValid() bool {
	switch s {
	case SortRelevance, SortAttrAsc, SortAttrDesc, SortTimeSegments, SortExtended, SortExpr:
		return true
	}
	return false
}

// GroupFunc is the grouping function applied to the group-by attribute.
type GroupFunc string

// Group function constants.
const (
	GroupNone  GroupFunc = ""
	GroupAttr  GroupFunc = "attr"
	GroupDay   GroupFunc = "day"
	GroupWeek  GroupFunc = "week"
	GroupMonth GroupFunc = "month"
	GroupYear  GroupFunc = "year"
)

// Direction is an ORDER BY direction.
type Direction string

// Direction constants.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)
