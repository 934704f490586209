package reporter

import (
	"math"
	"strconv"
	"strings"

	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

// Section data is free-form JSON; these accessors read it leniently so a
// half-filled section still renders.

func field(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return nil
}

func str(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return extractor.FormatCount(val)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return extractor.FormatCount(float64(val))
	case bool:
		if val {
			return "sim"
		}
		return "não"
	}
	return ""
}

func fieldStr(v any, key string) string {
	return str(field(v, key))
}

func list(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = m
		}
		return out
	}
	return nil
}

func fieldList(v any, key string) []any {
	return list(field(v, key))
}

func num(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

// change formats a metric change like "+20,5%"
func change(v any) string {
	f, ok := num(v)
	if !ok {
		return str(v)
	}
	s := strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
	s = strings.Replace(s, ".", ",", 1)
	if f > 0 {
		s = "+" + s
	}
	return s + "%"
}

// tone maps the change types used in section data onto css classes
func tone(changeType string) string {
	switch changeType {
	case "increase", "positive", "normal", "finalizadas":
		return "up"
	case "decrease", "negative", "critico", "alto":
		return "down"
	}
	return "flat"
}

// width clamps a percentage to [0, 100] for bar widths
func width(v any) float64 {
	f, _ := num(v)
	return math.Max(0, math.Min(100, f))
}

// text returns the prose of a text-like section
func text(data map[string]any) string {
	for _, k := range []string{"analysis", "content", "summary", "text"} {
		if s := str(data[k]); s != "" {
			return s
		}
	}
	return ""
}
