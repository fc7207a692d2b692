package suggest

import "strings"

// trigramPad surrounds a keyword on both sides before windowing.
const trigramPad = "__"

// Trigrams returns the space-joined 3-rune windows of "__keyword__".
// Dictionary rows and lookup queries must both be built with this function
// or candidates never match.
func Trigrams(keyword string) string {
	runes := []rune(trigramPad + keyword + trigramPad)
	windows := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		windows = append(windows, string(runes[i:i+3]))
	}
	return strings.Join(windows, " ")
}
