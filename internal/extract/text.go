package extract

import (
	"regexp"
	"strings"
)

var (
	reLineEnd       = regexp.MustCompile(`\r\n?`)
	reNBSP          = regexp.MustCompile("[\u00a0\u2007\u202f]")
	reLoneCurrency  = regexp.MustCompile(`\n[ \t]*(INR|Rs\.?|₹)[ \t]*\n`)
	reTrailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// PrepareText normalises OCR line endings and rejoins currency markers that
// OCR split onto their own line ("Amount\nINR\n45,000").
func PrepareText(s string) string {
	if s == "" {
		return s
	}
	s = reLineEnd.ReplaceAllString(s, "\n")
	s = reNBSP.ReplaceAllString(s, " ")
	s = reTrailingSpace.ReplaceAllString(s, "")
	return reLoneCurrency.ReplaceAllString(s, " $1 ")
}

// nonBlankLines returns the lines of s that contain visible text.
func nonBlankLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \t"))
		}
	}
	return lines
}
