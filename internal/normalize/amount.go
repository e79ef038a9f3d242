package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const currencyMarker = `(?:\b(?:INR|USD|GBP|EUR|Rs\.?)|[₹$£€])`

var (
	labelAmount    = regexp.MustCompile(`(?i)Amount\s*(?:Claimed)?\s*[:=]?\s*(?:-\s+)?(` + currencyMarker + `)?\s*(-?\d[\d,]*(?:\.\d{1,2})?)`)
	currencyAmount = regexp.MustCompile(`(?i)(` + currencyMarker + `)\s*(-?\d[\d,]*(?:\.\d{1,2})?)`)
	suffixAmount   = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d{1,2})?)\s?(INR|Rs\.|rupees?)\b`)
	anyNumber      = regexp.MustCompile(`\d[\d,]*(?:\.\d{1,2})?`)
	currencyWord   = regexp.MustCompile(`(?i)(\bINR\b|\bRs\b\.?|₹|\brupees?\b|\$|\bUSD\b|£|\bGBP\b|€|\bEUR\b)`)
	currencyStrip  = regexp.MustCompile(`(?i)\b(?:INR|USD|GBP|EUR|RUPEES?|RS)\b\.?|[₹$£€,\s]`)
)

// CurrencyCode maps a currency marker to its ISO code.
// Rupee variants map to INR; unknown markers return "".
func CurrencyCode(marker string) string {
	m := strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(marker), "."))
	switch m {
	case "INR", "RS", "₹", "RUPEE", "RUPEES":
		return "INR"
	case "$", "USD":
		return "USD"
	case "£", "GBP":
		return "GBP"
	case "€", "EUR":
		return "EUR"
	}
	return ""
}

// Amount canonicalises a monetary amount to "<CUR> <n>.<dd>", or a bare
// "<n>.<dd>" when no currency context exists. A label-anchored amount keeps
// its sign. It reports false when s contains no number.
func Amount(s string) (string, bool) {
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	if s == "" {
		return "", false
	}

	if m := labelAmount.FindStringSubmatch(s); m != nil {
		code := CurrencyCode(m[1])
		if code == "" {
			code = CurrencyIn(s)
		}
		return FormatAmount(m[2], code), true
	}

	if m := currencyAmount.FindStringSubmatch(s); m != nil {
		return FormatAmount(m[2], CurrencyCode(m[1])), true
	}

	if m := suffixAmount.FindStringSubmatch(s); m != nil {
		return FormatAmount(m[1], CurrencyCode(m[2])), true
	}

	if num := anyNumber.FindString(s); num != "" {
		return FormatAmount(num, CurrencyIn(s)), true
	}

	return "", false
}

// ParseAmount reads the numeric value of an amount string after removing
// thousands separators, currency symbols and currency codes.
func ParseAmount(s string) (float64, bool) {
	cleaned := currencyStrip.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CurrencyIn returns the code of the first currency word or symbol in s.
func CurrencyIn(s string) string {
	if m := currencyWord.FindString(s); m != "" {
		return CurrencyCode(m)
	}
	return ""
}

// FormatAmount renders num with two decimals. A number that does not parse
// is returned as captured.
func FormatAmount(num, code string) string {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return num
	}
	if code == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%s %.2f", code, v)
}
