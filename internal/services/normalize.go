package services

import "strings"

// NormalizeCity canonicalizes a free-text place ("City, State, Country") for the
// search API: the first comma-delimited segment, trimmed. When the input contains
// "dc" anywhere (case-insensitive substring, not a word match) " DC" is appended,
// so "Washington, DC" becomes "Washington DC".
func NormalizeCity(city string) string {
	base, _, _ := strings.Cut(city, ",")
	base = strings.TrimSpace(base)
	if strings.Contains(strings.ToLower(city), "dc") {
		return base + " DC"
	}
	return base
}
