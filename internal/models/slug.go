package models

import "strings"

// Slugify derives a URL-safe public slug from a document title: lowercase
// alphanumeric runs joined by single dashes, truncated to 64 characters.
// Falls back to "untitled" when the title has no usable characters.
func Slugify(title string) string {
	const maxSlugLen = 64

	slug := make([]rune, 0, len(title))
	lastDash := false
	for _, raw := range strings.ToLower(strings.TrimSpace(title)) {
		ch := raw
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			slug = append(slug, ch)
			lastDash = false
			continue
		}
		if !lastDash {
			slug = append(slug, '-')
			lastDash = true
		}
	}

	text := strings.Trim(string(slug), "-")
	if len(text) > maxSlugLen {
		text = strings.TrimRight(text[:maxSlugLen], "-")
	}
	if text == "" {
		return "untitled"
	}
	return text
}
