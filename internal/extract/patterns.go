package extract

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/claimlens/internal/model"
)

// PatternTable holds the ordered expressions tried for each field.
// It is immutable once built and safe to share between goroutines.
type PatternTable struct {
	patterns map[model.Field][]*regexp.Regexp
}

// For returns the patterns registered for f, in priority order.
func (t PatternTable) For(f model.Field) []*regexp.Regexp {
	return t.patterns[f]
}

// Fields reports how many fields carry patterns.
func (t PatternTable) Fields() int {
	return len(t.patterns)
}

// CompilePatterns builds a table from source expressions.
func CompilePatterns(src map[model.Field][]string) (PatternTable, error) {
	table := PatternTable{patterns: make(map[model.Field][]*regexp.Regexp, len(src))}
	for field, exprs := range src {
		compiled := make([]*regexp.Regexp, 0, len(exprs))
		for i, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return PatternTable{}, fmt.Errorf("compile %s pattern %d: %w", field, i, err)
			}
			compiled = append(compiled, re)
		}
		table.patterns[field] = compiled
	}
	return table, nil
}

// Labels are matched case-insensitively; captured values keep their case
// so that "Policy holder" does not yield a policy number of "holder".
var defaultPatternSource = map[model.Field][]string{
	model.FieldPolicyNumber: {
		`(?i:Policy\s*(?:No\.?|Number|#)?)[:\s-]*([A-Z0-9][A-Z0-9\-/]{3,})`,
		`(?i:Pol\.?\s*No\.?)[:\s-]*([A-Z0-9][A-Z0-9\-/]{3,})`,
	},
	model.FieldClaimantName: {
		`(?i:Claimant\s*Name)[:\s-]*([A-Z][A-Za-z ,.'-]{2,80})`,
		`(?i:Claimant)[:\s-]*([A-Z][A-Za-z ,.'-]{2,80})`,
		`(?i:Insured\s*Name)[:\s-]*([A-Z][A-Za-z ,.'-]{2,80})`,
		`(?i:Insured)[:\s-]*([A-Z][A-Za-z ,.'-]{2,80})`,
		`(?i:Complainant)[:\s-]*([A-Z][A-Za-z ,.'-]{2,80})`,
	},
	model.FieldDateOfLoss: {
		`(?i)(?:Date\s*of\s*Loss|Loss\s*Date|Date\s*of\s*Accident|Date)[:\s-]*([0-3]?\d[-/ .][A-Za-z0-9]{1,11}[-/ .]\d{2,4})`,
		`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`,
		`\b(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`,
	},
	model.FieldAmountClaimed: {
		`(?i)(?:Amount\s*(?:Claimed)?|Claim\s*Amount)\s*[:=]?\s*(?:-\s+)?((?:\b(?:INR|Rs\.?)|[₹$£€])?\s?-?\d[\d,]*(?:\.\d{1,2})?)`,
		`(?i)(\b(?:INR|Rs\.?)|₹)\s*(\d[\d,]*(?:\.\d{1,2})?)`,
		`(?i)(\d[\d,]*(?:\.\d{1,2})?\s?(?:INR|Rs\.|rupees))`,
		`([₹$£€]\s?\d[\d,]*(?:\.\d{1,2})?)`,
	},
}

var defaultTable = mustCompile(defaultPatternSource)

// DefaultPatterns returns the built-in pattern table.
func DefaultPatterns() PatternTable {
	return defaultTable
}

func mustCompile(src map[model.Field][]string) PatternTable {
	t, err := CompilePatterns(src)
	if err != nil {
		panic(err)
	}
	return t
}
