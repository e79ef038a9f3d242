package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

var (
	reDigit  = regexp.MustCompile(`\d`)
	reLetter = regexp.MustCompile(`[A-Za-z]`)
)

// Cascade applies a field's patterns to the ranked pool, then to the full
// text. The first structural match wins.
type Cascade struct {
	table PatternTable
}

// NewCascade creates a cascade over table.
func NewCascade(table PatternTable) *Cascade {
	return &Cascade{table: table}
}

// Resolve returns the first match for field, tagged with the tier it came from.
func (c *Cascade) Resolve(field model.Field, pool, full string) (model.FieldCandidate, bool) {
	patterns := c.table.For(field)

	if value, match, ok := firstMatch(patterns, pool); ok {
		return model.FieldCandidate{Field: field, Value: value, Match: match, Tier: model.TierPoolPattern}, true
	}
	if value, match, ok := firstMatch(patterns, full); ok {
		return model.FieldCandidate{Field: field, Value: value, Match: match, Tier: model.TierFullPattern}, true
	}
	return model.FieldCandidate{Field: field}, false
}

func firstMatch(patterns []*regexp.Regexp, text string) (value, match string, ok bool) {
	if text == "" {
		return "", "", false
	}
	for _, re := range patterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		match = strings.TrimSpace(text[loc[0]:loc[1]])
		value = selectGroup(text, loc)
		if value == "" {
			continue
		}
		return value, match, true
	}
	return "", "", false
}

// selectGroup picks the first capture group containing a digit, else the
// first containing a letter, else the first non-empty group, else the
// whole match.
func selectGroup(text string, loc []int) string {
	var groups []string
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			continue
		}
		if g := strings.TrimSpace(text[loc[i]:loc[i+1]]); g != "" {
			groups = append(groups, g)
		}
	}

	for _, g := range groups {
		if reDigit.MatchString(g) {
			return g
		}
	}
	for _, g := range groups {
		if reLetter.MatchString(g) {
			return g
		}
	}
	if len(groups) > 0 {
		return groups[0]
	}
	return strings.TrimSpace(text[loc[0]:loc[1]])
}
