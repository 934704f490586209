package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	unsignedChars = regexp.MustCompile(`[^\d.,]`)
	signedChars   = regexp.MustCompile(`[^\d.,-]`)
)

// ParseNumber coerces a locale-formatted cell into a number. Everything but
// digits, commas and periods is dropped. A comma marks the decimal part, in
// which case periods are thousands separators; without a comma, more than one
// period also means thousands separators. Empty or invalid input yields 0.
func ParseNumber(s string) float64 {
	return parseDecimal(unsignedChars.ReplaceAllString(s, ""))
}

// ParseSignedNumber is ParseNumber that keeps a leading minus sign
func ParseSignedNumber(s string) float64 {
	cleaned := signedChars.ReplaceAllString(strings.TrimSpace(s), "")
	negative := strings.HasPrefix(cleaned, "-")
	v := parseDecimal(strings.ReplaceAll(cleaned, "-", ""))
	if negative {
		return -v
	}
	return v
}

// ParsePercent parses a CTR cell already expressed in percent, so "0,5"
// is half a percent. Values above 100 are capped.
func ParsePercent(s string) float64 {
	return math.Min(ParseNumber(s), 100)
}

func parseDecimal(s string) float64 {
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		s = strings.ReplaceAll(s, ",", "")
	} else if strings.Count(s, ".") > 1 {
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatCount renders a count the way the reports show it, e.g. 12.345
func FormatCount(v float64) string {
	return ptBR.Sprintf("%d", int64(math.Round(v)))
}

// FormatPosition renders an average position with one decimal, e.g. 5,3
func FormatPosition(v float64) string {
	return ptBR.Sprintf("%.1f", v)
}

// FormatPercent renders a CTR with two decimals, e.g. 1,20%
func FormatPercent(v float64) string {
	return ptBR.Sprintf("%.2f", v) + "%"
}
