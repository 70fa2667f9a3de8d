package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HasPrefixIgnoreCase checks if string has prefix case-insensitively
func HasPrefixIgnoreCase(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// CapitalizeFirst upper-cases the first rune of a word, leaving the rest
// untouched. Words already starting with an uppercase or non-letter rune
// come back unchanged.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// HasUpperInitial reports whether the word starts with an uppercase letter.
func HasUpperInitial(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// HasLowerInitial reports whether the word starts with a lowercase letter.
func HasLowerInitial(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}

// IsSentenceEnd reports whether the rune ends a sentence.
func IsSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
