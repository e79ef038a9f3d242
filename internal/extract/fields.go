package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/normalize"
)

const (
	// descriptionLimit bounds the leading-text description fallback.
	descriptionLimit = 1000
	// amountWindow is how far around a bare number a currency word may sit.
	amountWindow = 40
	// nameLookahead is how many lines after a name label are inspected.
	nameLookahead = 3
)

var (
	rePolicyToken = regexp.MustCompile(`\b([A-Z]{2,4}\d{2,8})\b`)
	reNameLabel   = regexp.MustCompile(`(?i)\b(Name|Claimant|Insured|Complainant)\b`)
	reLossLabel   = regexp.MustCompile(`(?i)date\s+of\s+loss`)
	reYear        = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	reNumber      = regexp.MustCompile(`\d[\d,]*(?:\.\d{1,2})?`)
	reDescKeyword = regexp.MustCompile(`(?i)\b(damage|loss|cause|accident|reason|description)\b`)

	dateShapes = []*regexp.Regexp{
		regexp.MustCompile(`\b((?:19|20)\d{2}[-/]\d{1,2}[-/]\d{1,2})\b`),
		regexp.MustCompile(`\b(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?,?\s+\d{4})\b`),
		regexp.MustCompile(`(?i)\b((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`),
	}
)

// fieldContext is the shared input of every field strategy.
type fieldContext struct {
	full    string
	pool    string
	ranked  []model.ScoredChunk
	cascade *Cascade
}

// strategy is one named, fallible step in resolving a field.
type strategy struct {
	name string
	run  func(fc *fieldContext, field model.Field) (model.FieldCandidate, bool)
}

func fallback(field model.Field, value string) (model.FieldCandidate, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.FieldCandidate{Field: field}, false
	}
	return model.FieldCandidate{Field: field, Value: value, Match: value, Tier: model.TierFallback}, true
}

// fieldStrategies lists, per field, the steps tried in order.
var fieldStrategies = map[model.Field][]strategy{
	model.FieldPolicyNumber: {
		{name: "patterns", run: patternValue},
		{name: "bare-token", run: policyToken},
	},
	model.FieldClaimantName: {
		{name: "patterns", run: patternValue},
		{name: "line-scan", run: nameLineScan},
	},
	model.FieldDateOfLoss: {
		{name: "patterns", run: datePattern},
		{name: "candidates", run: dateCandidates},
		{name: "bare-year", run: bareYear},
	},
	model.FieldAmountClaimed: {
		{name: "patterns", run: amountPattern},
		{name: "currency-context", run: amountNearCurrency},
	},
	model.FieldClaimDescription: {
		{name: "keyword-chunk", run: descriptionChunk},
		{name: "leading-text", run: leadingText},
	},
}

func patternValue(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	return fc.cascade.Resolve(field, fc.pool, fc.full)
}

func policyToken(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	m := rePolicyToken.FindStringSubmatch(fc.full)
	if m == nil {
		return model.FieldCandidate{Field: field}, false
	}
	return fallback(field, m[1])
}

// nameLineScan looks for a name label line. Text after a colon on that
// line is preferred; otherwise the following lines are inspected.
func nameLineScan(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	lines := nonBlankLines(fc.full)
	for i, line := range lines {
		if !reNameLabel.MatchString(line) {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			if cand := strings.TrimSpace(line[idx+1:]); normalize.IsPlausiblePerson(cand) {
				return fallback(field, cand)
			}
		}
		for j := i + 1; j < len(lines) && j <= i+nameLookahead; j++ {
			if cand := strings.TrimSpace(lines[j]); normalize.IsPlausiblePerson(cand) {
				return fallback(field, cand)
			}
		}
	}
	return model.FieldCandidate{Field: field}, false
}

func datePattern(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	c, ok := fc.cascade.Resolve(field, fc.pool, fc.full)
	if !ok {
		return c, false
	}
	v, ok := normalize.FullDate(c.Value)
	if !ok {
		return model.FieldCandidate{Field: field}, false
	}
	c.Value = v
	return c, true
}

type dateToken struct {
	text  string
	start int
}

func findDateTokens(text string) []dateToken {
	var tokens []dateToken
	for _, re := range dateShapes {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			tokens = append(tokens, dateToken{text: text[loc[2]:loc[3]], start: loc[2]})
		}
	}
	return tokens
}

// dateCandidates collects date-shaped tokens from the pool (or the full
// text when the pool has none). The token nearest a "date of loss" label
// in the same text is tried first, then the rest in order.
func dateCandidates(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	source := fc.pool
	tokens := findDateTokens(source)
	if len(tokens) == 0 {
		source = fc.full
		tokens = findDateTokens(source)
	}
	if len(tokens) == 0 {
		return model.FieldCandidate{Field: field}, false
	}

	if loc := reLossLabel.FindStringIndex(source); loc != nil {
		best := tokens[0]
		bestDist := abs(best.start - loc[0])
		for _, tok := range tokens[1:] {
			if d := abs(tok.start - loc[0]); d < bestDist {
				best, bestDist = tok, d
			}
		}
		if v, ok := normalize.FullDate(best.text); ok {
			return fallback(field, v)
		}
	}

	for _, tok := range tokens {
		if v, ok := normalize.FullDate(tok.text); ok {
			return fallback(field, v)
		}
	}
	return model.FieldCandidate{Field: field}, false
}

// bareYear is the degraded date tier: only a year could be recovered.
func bareYear(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	m := reYear.FindStringSubmatch(fc.full)
	if m == nil {
		return model.FieldCandidate{Field: field}, false
	}
	return fallback(field, m[1])
}

func amountPattern(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	c, ok := fc.cascade.Resolve(field, fc.pool, fc.full)
	if !ok {
		return c, false
	}
	value, ok := normalize.Amount(c.Match)
	if !ok {
		return model.FieldCandidate{Field: field}, false
	}
	c.Value = value
	return c, true
}

// amountNearCurrency accepts the first standalone number that has a
// currency word or symbol within amountWindow bytes.
func amountNearCurrency(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	text := fc.full
	for _, loc := range reNumber.FindAllStringIndex(text, -1) {
		if !standalone(text, loc[0]) {
			continue
		}
		lo := max(0, loc[0]-amountWindow)
		hi := min(len(text), loc[1]+amountWindow)
		if code := normalize.CurrencyIn(text[lo:hi]); code != "" {
			return fallback(field, normalize.FormatAmount(text[loc[0]:loc[1]], code))
		}
	}
	return model.FieldCandidate{Field: field}, false
}

// standalone reports whether the number at start is not glued to an
// identifier such as "PL-12345".
func standalone(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '/' || r == '_')
}

func descriptionChunk(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	for _, sc := range fc.ranked {
		if reDescKeyword.MatchString(sc.Text) {
			return fallback(field, sc.Text)
		}
	}
	return model.FieldCandidate{Field: field}, false
}

func leadingText(fc *fieldContext, field model.Field) (model.FieldCandidate, bool) {
	text := strings.TrimSpace(fc.full)
	if utf8.RuneCountInString(text) > descriptionLimit {
		text = string([]rune(text)[:descriptionLimit])
	}
	return fallback(field, text)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
