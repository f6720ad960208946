// Package normalize turns extracted résumé text into the canonical form the
// matcher searches.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// separators are the non-alphanumeric runes kept so tokens such as "c++",
// "c#", "gd&t", "node.js" and "ci/cd" survive normalization.
const separators = "-&+#./"

// Normalize lowercases text, replaces every rune that is not a letter, a
// digit or a permitted separator with a space, collapses whitespace runs and
// trims. It is idempotent and returns "" for empty or symbol-only input.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(lowered))
	pendingSpace := false
	for _, r := range lowered {
		if !keep(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func keep(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(separators, r)
}
