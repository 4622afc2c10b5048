package utils

// Truncate shortens s to at most maxLen runes, appending "..." when it
// cuts. Cutting on rune boundaries keeps multibyte incident descriptions
// from being split mid-character.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
