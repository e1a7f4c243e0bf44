package models

import (
	"strings"
	"unicode"
)

// Slug lowercases title and drops every rune that is not a letter or digit.
// Two titles with the same slug are treated as the same game.
func Slug(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, title)
}

// PlatformOf returns the platform tag of a release key ("steam_123" -> "steam").
// A key without an underscore has no tag and yields "".
func PlatformOf(releaseKey string) string {
	platform, _, found := strings.Cut(releaseKey, "_")
	if !found {
		return ""
	}
	return platform
}
