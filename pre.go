package heli

import (
	"strings"
	"unicode"
)

// Preprocess normalizes an arbitrary Unicode string into a lowercased,
// alphabetic-only sequence of whitespace-separated tokens (§4.1).
// Rules, in order: replace every non-letter code point with ASCII
// space, lowercase the remainder, then collapse runs of whitespace to
// a single space and trim. An empty result means the line has no
// alphabetic content and must be labeled Zxx (§4.1, §4.7).
//
// Deliberately absent: URL/mention stripping and proper-noun word
// duplication, both present in the reference HeLI algorithm. Neither
// is restored here (§9, two documented divergences) — empirical gains
// were not observed for the former and gains did not justify the cost
// for the latter.
func Preprocess(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}
	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Tokens splits a preprocessed string (as returned by Preprocess) into
// its whitespace-separated tokens. Returns nil for an empty string.
func Tokens(preprocessed string) []string {
	if preprocessed == "" {
		return nil
	}
	return strings.Split(preprocessed, " ")
}
