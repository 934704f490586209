package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	invalidRe   = regexp.MustCompile(`[<>:"/\\|?*]`)
	urlRe       = regexp.MustCompile(`(?i)^(https?://|data:)`)
	numericRe   = regexp.MustCompile(`^\d+([.,]\d+)?%?$`)
	numberishRe = regexp.MustCompile(`^[\d\s.,+-]+$`)
	slugDashRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// CleanText removes extra whitespace and normalizes text
func CleanText(text string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// TruncateText truncates text to at most maxLength runes, preserving word
// boundaries when it can
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	truncated := string([]rune(text)[:maxLength])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// IsLikelyURL reports whether s is an http(s) or data URL
func IsLikelyURL(s string) bool {
	return urlRe.MatchString(strings.TrimSpace(s))
}

// IsNumericOrPlaceholder reports whether s is empty, a dash placeholder or
// a number-like value such as "1.234", "12,5%" or "+3"
func IsNumericOrPlaceholder(s string) bool {
	t := strings.TrimSpace(s)
	switch t {
	case "", "—", "–", "-":
		return true
	}
	return numericRe.MatchString(t) || numberishRe.MatchString(t)
}

// SanitizeFilename removes invalid characters from a filename
func SanitizeFilename(filename string) string {
	filename = invalidRe.ReplaceAllString(filename, "_")

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)

	if len(cleaned) > 255 {
		cleaned = string([]rune(cleaned)[:255])
		for len(cleaned) > 255 {
			_, size := utf8.DecodeLastRuneInString(cleaned)
			cleaned = cleaned[:len(cleaned)-size]
		}
	}

	return cleaned
}

// Slugify lowercases s, strips accents and joins the words with dashes:
// "Padaria São João" becomes "padaria-sao-joao"
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	return strings.Trim(slugDashRe.ReplaceAllString(strings.ToLower(plain), "-"), "-")
}
