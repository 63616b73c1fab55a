package form

import (
	"strings"
	"unicode"
)

// maxFieldNameLen bounds generated technical names so they stay usable as
// map keys and column identifiers.
const maxFieldNameLen = 50

// GenerateFieldName derives a stable technical key from a display label:
// lowercase, everything outside [a-z0-9\s] stripped, whitespace runs
// collapsed to single underscores, edge underscores trimmed, truncated to 50
// characters. Re-applying to the same label always yields the same key.
func GenerateFieldName(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	lastUnderscore := true // suppress leading underscore
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	name := strings.TrimRight(b.String(), "_")
	if len(name) > maxFieldNameLen {
		name = strings.TrimRight(name[:maxFieldNameLen], "_")
	}
	return name
}
