// Package detector decides whether a group-chat message is a cryptocurrency
// sell offer and pulls the advertised amount out of it. Everything in this
// package is pure pattern matching over strings: no side effects, no I/O.
package detector

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining diacritical marks, so
// "vendó" and "vendo" classify the same.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical form of message text used by the classifier
// and the identity resolver: decomposed, diacritics stripped, lower-cased and
// trimmed.
func Normalize(text string) string {
	out, _, err := transform.String(stripMarks, text)
	if err != nil {
		// The transform chain cannot fail on valid UTF-8; fall back to the
		// input so a malformed message still gets case folding.
		out = text
	}
	return strings.TrimSpace(strings.ToLower(out))
}
