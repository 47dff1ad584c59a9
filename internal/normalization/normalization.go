package normalization

import "strings"

// ParseInputString trims surrounding whitespace and collapses inner runs of
// whitespace to a single space.
func ParseInputString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseEmail lowercases in addition to trimming.
func ParseEmail(s string) string {
	return strings.ToLower(ParseInputString(s))
}

// ParseKey lowercases and snake_cases a free-form label so it can be used as a
// lookup key (e.g. wizard question keys, meter type labels).
func ParseKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(ParseInputString(s)), " ", "_")
}
