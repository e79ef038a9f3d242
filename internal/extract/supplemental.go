package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

// labelledField extracts "Label: value" text, or the line after a bare label.
type labelledField struct {
	sameLine *regexp.Regexp
	bare     *regexp.Regexp
}

func newLabelledField(labels string) labelledField {
	return labelledField{
		sameLine: regexp.MustCompile(`(?i)\b(?:` + labels + `)\s*[:\-]\s*(.+)`),
		bare:     regexp.MustCompile(`(?i)^\s*(?:` + labels + `)\s*[:\-]?\s*$`),
	}
}

func (l labelledField) find(text string) string {
	if m := l.sameLine.FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	lines := nonBlankLines(text)
	for i, line := range lines {
		if l.bare.MatchString(line) && i+1 < len(lines) {
			return strings.TrimSpace(lines[i+1])
		}
	}
	return ""
}

var (
	insuredField   = newLabelledField(`insured\s*name|insured`)
	contactField   = newLabelledField(`contact\s*(?:no\.?|number)?|phone|mobile|tel\.?`)
	locationField  = newLabelledField(`location\s*of\s*loss|place\s*of\s*loss|location|place`)
	causeField     = newLabelledField(`cause\s*of\s*loss|cause|reason`)
	itemsField     = newLabelledField(`items\s*damaged|damaged\s*items|items`)
	referenceField = newLabelledField(`claim\s*reference|claim\s*ref\.?(?:\s*no\.?)?|reference\s*no\.?|claim\s*no\.?`)

	rePhone        = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
	reClaimRefCode = regexp.MustCompile(`(?i)\bCLM[-\s]?\d{3,}\b`)
	reDigits       = regexp.MustCompile(`\d`)
)

// addSupplemental fills the optional labelled fields.
func addSupplemental(rec *model.ClaimRecord, text string) {
	rec.InsuredName = model.StringPtr(insuredField.find(text))
	rec.Contact = model.StringPtr(findContact(text))
	rec.LocationOfLoss = model.StringPtr(locationField.find(text))
	rec.CauseOfLoss = model.StringPtr(causeField.find(text))
	rec.ItemsDamaged = model.StringPtr(itemsField.find(text))
	rec.ClaimReference = model.StringPtr(findReference(text))
	rec.RawClaimDescription = model.StringPtr(strings.TrimSpace(text))
}

// findContact prefers a phone number on a contact line, then any token
// with at least ten digits.
func findContact(text string) string {
	if v := contactField.find(text); v != "" {
		if m := rePhone.FindString(v); m != "" {
			return strings.TrimSpace(m)
		}
	}
	for _, m := range rePhone.FindAllString(text, -1) {
		if len(reDigits.FindAllString(m, -1)) >= 10 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func findReference(text string) string {
	if v := referenceField.find(text); v != "" {
		return v
	}
	return strings.ToUpper(reClaimRefCode.FindString(text))
}
