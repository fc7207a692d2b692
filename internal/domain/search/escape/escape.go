// Package escape neutralizes query-language operators in user-supplied search text.
package escape

import (
	"net/url"
	"strings"
)

// queryEscaper covers every character the extended query parser treats as an
// operator. strings.Replacer substitutes in a single pass, so the backslashes
// it inserts are never escaped again.
var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`!`, `\!`,
	`@`, `\@`,
	`~`, `\~`,
	`"`, `\"`,
	`&`, `\&`,
	`/`, `\/`,
	`^`, `\^`,
	`$`, `\$`,
	`=`, `\=`,
)

// SpecialChars lists the characters Query escapes.
const SpecialChars = `\()|-!@~"&/^$=`

// Query escapes s for use inside MATCH(). When s is a URL carrying a query
// string, the query string is stripped first.
func Query(s string) string {
	return queryEscaper.Replace(StripURLQuery(s))
}

// StripURLQuery removes the "?..." suffix when s is a well-formed http(s) URL
// with a non-empty query string. Other input is returned unchanged.
func StripURLQuery(s string) string {
	if !strings.HasPrefix(s, "http") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || u.RawQuery == "" {
		return s
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}

// Wildcard wraps the whole escaped text in prefix/infix wildcards for partial matching.
func Wildcard(escaped string) string {
	if escaped == "" {
		return escaped
	}
	return "*" + escaped + "*"
}

// Display turns compiled query text back into what the user typed: the
// partial-match wildcards and escaping backslashes are removed.
func Display(s string) string {
	s = strings.TrimPrefix(s, "*")
	s = strings.TrimSuffix(s, "*")

	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
