// Package matcher matches recommended titles against the cached catalog.
//
// Matching is tiered: exact normalized title, then containment, then
// Levenshtein similarity. Every tier requires the release years to be within
// the year tolerance, and items without a year never match.
package matcher

import "strings"

// Normalize lowercases s and drops every character outside [a-z0-9].
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
