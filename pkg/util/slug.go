package util

import (
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases text, drops anything outside [a-z0-9_ -] and joins words with single dashes.
// "Nakshi Kantha (Large)" becomes "nakshi-kantha-large".
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
