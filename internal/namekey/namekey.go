// Package namekey canonicalizes guest names for matching and display.
package namekey

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes,
// so "José" and "Jose" end up byte-identical.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var titleCaser = cases.Title(language.Und)

// Normalize produces the comparison key for a raw name: trimmed, internal
// whitespace collapsed, lowercased, diacritics stripped. It is pure, total
// and idempotent; empty input yields an empty key.
func Normalize(raw string) string {
	s := collapseWhitespace(raw)
	s = strings.ToLower(s)
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Malformed UTF-8; the lowercased form is still a usable key.
		return s
	}
	return stripped
}

// FormatDisplay produces the human-presentable form of a raw name: trimmed,
// internal whitespace collapsed, each token title-cased. Diacritics are kept.
func FormatDisplay(raw string) string {
	s := collapseWhitespace(raw)
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
