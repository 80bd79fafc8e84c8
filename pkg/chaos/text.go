package chaos

import (
	"regexp"
	"strings"
)

var nonKeyRunes = regexp.MustCompile(`[^A-Z0-9_:]+`)

// NormKey upper-cases s and collapses every run of characters outside
// [A-Z0-9_:] into a single underscore, giving consumers a stable symbol
// key: "Warm day" becomes "WARM_DAY". Colons survive so pair keys like
// OBJECT:BOX keep their shape.
func NormKey(s string) string {
	return nonKeyRunes.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "_")
}

// Snippet flattens text to one line and truncates it to limit runes,
// marking the cut with an ellipsis.
func Snippet(text string, limit int) string {
	flat := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit-1]) + "…"
}
