package normalize

import (
	"regexp"
	"strings"
)

var (
	labelWord      = regexp.MustCompile(`(?i)^(name|claimant|insured|complainant|compliant)$`)
	reservedPrefix = regexp.MustCompile(`(?i)^(amount|policy|date|claim|reference)\b`)
	hasLetter      = regexp.MustCompile(`[A-Za-z]`)
)

// IsPlausiblePerson rejects label-adjacent text that cannot be a person's
// name: label words, other field labels, and token counts outside 2..5.
func IsPlausiblePerson(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if labelWord.MatchString(s) {
		return false
	}
	if n := len(strings.Fields(s)); n < 2 || n > 5 {
		return false
	}
	if !hasLetter.MatchString(s) {
		return false
	}
	return !reservedPrefix.MatchString(s)
}
