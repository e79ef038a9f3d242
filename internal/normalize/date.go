// Package normalize canonicalises raw OCR field values and filters
// implausible person names.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISODateLayout is the canonical date_of_loss format.
const ISODateLayout = "2006-01-02"

var (
	ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	isoDate       = regexp.MustCompile(`\b((?:19|20)\d{2})[-/](0[1-9]|1[0-2])[-/](0[1-9]|[12]\d|3[01])\b`)
	bareYear      = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	digitRun      = regexp.MustCompile(`\d+`)
	monthName     = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\b`)
	abbrevDot     = regexp.MustCompile(`([A-Za-z])\.`)
	spaces        = regexp.MustCompile(`\s+`)
	hasDigit      = regexp.MustCompile(`\d`)
	monthWord     = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*,?$`)
)

// dateLayouts are tried in order; the first that consumes the whole
// input wins. Numeric forms are day-first, with four-digit years before
// two-digit ones. Space-separated numbers fall back to month-first.
var dateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2/1/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2.1.2006",
	"2 January, 2006",
	"2 Jan, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2-1-06",
	"2/1/06",
	"2.1.06",
	"2 1 2006",
	"1 2 2006",
}

// Date canonicalises a free-form date to YYYY-MM-DD. When no full date can
// be recovered but a plausible year is present, the bare year is returned.
// It reports false when nothing usable was found.
func Date(s string) (string, bool) {
	if v, ok := FullDate(s); ok {
		return v, true
	}
	if m := bareYear.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// FullDate is Date without the bare-year tier. An ISO-shaped value that is
// not a real calendar day ("2025-02-30") is returned as written, dash-joined,
// so validation reports it instead of it being lost.
func FullDate(s string) (string, bool) {
	if t, ok := ParseTime(s); ok {
		return t.Format(ISODateLayout), true
	}
	if m := isoDate.FindStringSubmatch(cleanDate(s)); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3], true
	}
	return "", false
}

// ParseTime recovers a full calendar date from s. It never falls back to a
// bare year.
func ParseTime(s string) (time.Time, bool) {
	s = cleanDate(s)
	if s == "" || !hasDigit.MatchString(s) {
		return time.Time{}, false
	}

	if m := isoDate.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse(ISODateLayout, m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return t, true
		}
	}

	if t, ok := byLayout(s); ok {
		return t, true
	}

	if !looksLikeDate(s) {
		return time.Time{}, false
	}
	reduced := dropNoise(s)
	useReduced := reduced != s && looksLikeDate(reduced)
	if useReduced {
		if t, ok := byLayout(reduced); ok {
			return t, true
		}
	}
	if t, ok := permissive(s); ok {
		return t, true
	}
	if useReduced {
		return permissive(reduced)
	}
	return time.Time{}, false
}

func byLayout(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// looksLikeDate requires two numeric runs, or a month name and one numeric
// run. A lone year is left to the bare-year tier of Date.
func looksLikeDate(s string) bool {
	runs := len(digitRun.FindAllString(s, -1))
	if runs >= 2 {
		return true
	}
	return runs == 1 && monthName.MatchString(s)
}

func permissive(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() < 1900 || t.Year() > 2100 {
		return time.Time{}, false
	}
	return t, true
}

// dropNoise keeps only tokens that can belong to a date.
func dropNoise(s string) string {
	var kept []string
	for _, tok := range strings.Fields(s) {
		if hasDigit.MatchString(tok) || monthWord.MatchString(tok) {
			kept = append(kept, strings.Trim(tok, ":;()"))
		}
	}
	return strings.Join(kept, " ")
}

func cleanDate(s string) string {
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = abbrevDot.ReplaceAllString(s, "$1")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
