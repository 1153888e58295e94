package models

import (
	"strings"
	"unicode"
)

// CountWords counts the words in a markdown string. Fenced code blocks are
// excluded and formatting markers are not counted as words. The service
// computes the authoritative figure the same way; the client uses this only
// for optimistic display before a save round-trips.
func CountWords(markdown string) int {
	text := stripCodeFences(markdown)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})

	count := 0
	for _, w := range words {
		if isMarkdownMarker(w) {
			continue
		}
		count++
	}
	return count
}

// isMarkdownMarker reports whether the token consists solely of markdown
// punctuation (emphasis, headings, list bullets, rules, quotes).
func isMarkdownMarker(token string) bool {
	for _, r := range token {
		switch r {
		case '#', '*', '_', '-', '>', '`', '~', '=', '+', '|':
		default:
			return false
		}
	}
	return true
}

// stripCodeFences removes ```...``` blocks. An unterminated fence swallows
// the rest of the input, matching how editors render it.
func stripCodeFences(text string) string {
	var b strings.Builder
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		rest := text[start+3:]
		end := strings.Index(rest, "```")
		if end == -1 {
			break
		}
		b.WriteString(" ")
		text = rest[end+3:]
	}
	return b.String()
}
