package suggest

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Default tuning for the suggestion workflow.
const (
	// DefaultLengthThreshold is how many characters a candidate may differ in length.
	DefaultLengthThreshold = 3
	// DefaultLevenshteinThreshold is the largest edit distance a candidate may have.
	DefaultLevenshteinThreshold = 2
	// DefaultTopCount is how many dictionary candidates are fetched per word.
	DefaultTopCount = 10
	// DefaultMinResultCount triggers suggestions when a search finds fewer matches.
	DefaultMinResultCount = 10
	// DefaultIndex is the dictionary index name.
	DefaultIndex = "suggest"
)

// Suggestion is a ranked dictionary candidate for one query word.
type Suggestion struct {
	Keyword  string
	Rank     int64
	Distance int
}

// Correction is a rewritten query in which at least one word changed.
// Text marks replaced words for display, Query is the plain corrected query.
type Correction struct {
	Text  string
	Query string
}

// Distance returns the Levenshtein edit distance between a and b, by codepoint.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Length returns the codepoint length used for dictionary length windows.
func Length(word string) int {
	return utf8.RuneCountInString(word)
}

// Emphasize marks a replaced word in the display text.
func Emphasize(word string) string {
	return "<strong><i>" + word + "</i></strong>"
}

// Builder reassembles a query word by word.
type Builder struct {
	words   []string
	display []string
	changed bool
}

// Keep adds an unchanged word.
func (b *Builder) Keep(word string) {
	b.words = append(b.words, word)
	b.display = append(b.display, word)
}

// Replace adds a corrected word.
func (b *Builder) Replace(word string) {
	b.words = append(b.words, word)
	b.display = append(b.display, Emphasize(word))
	b.changed = true
}

// Correction returns the rewritten query, or nil when no word changed.
func (b *Builder) Correction() *Correction {
	if !b.changed {
		return nil
	}
	return &Correction{
		Text:  strings.Join(b.display, " "),
		Query: strings.Join(b.words, " "),
	}
}
