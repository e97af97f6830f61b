// Package khmer holds the text rules shared by stored values and search input.
package khmer

import (
	"strings"
	"unicode"
)

// ZeroWidthSpace is the informal word separator used in Khmer text.
const ZeroWidthSpace = '\u200b'

// Normalize removes every zero-width space from text.
// The same function backs the normalize_khmer_search SQL function, so stored
// values and search input are compared under identical rules.
func Normalize(text string) string {
	if !strings.ContainsRune(text, ZeroWidthSpace) {
		return text
	}
	return strings.ReplaceAll(text, string(ZeroWidthSpace), "")
}

// IsSeparator reports whether r separates words: Unicode whitespace or U+200B.
func IsSeparator(r rune) bool {
	return r == ZeroWidthSpace || unicode.IsSpace(r)
}

// SplitWords splits text on runs of separators and drops empty tokens.
func SplitWords(text string) []string {
	return strings.FieldsFunc(text, IsSeparator)
}

// Trim strips leading and trailing separators.
func Trim(text string) string {
	return strings.TrimFunc(text, IsSeparator)
}

// IsBlank reports whether text has nothing but separators.
func IsBlank(text string) bool {
	return Trim(text) == ""
}

// IsKhmer reports whether r belongs to the Khmer or Khmer Symbols blocks.
func IsKhmer(r rune) bool {
	return (r >= 0x1780 && r <= 0x17FF) || (r >= 0x19E0 && r <= 0x19FF)
}
