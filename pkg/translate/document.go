package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// keptKeys hold identifiers, URLs and search data rather than prose
var keptKeys = map[string]bool{
	"id":         true,
	"url":        true,
	"href":       true,
	"src":        true,
	"logo":       true,
	"domain":     true,
	"clientName": true,
	"keyword":    true,
	"rows":       true,
	"changeType": true,
	"color":      true,
	"icon":       true,
}

// snake_case values like "ano_anterior" are enum codes
var codeRe = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)+$`)

// TranslateDocument returns a translated deep copy of doc. Report and
// section titles, image captions and prose inside section data are
// translated; ids, types, colors, dates and metadata are not. Each distinct
// string goes to the engine once.
func (t *Translator) TranslateDocument(ctx context.Context, doc *models.ReportDocument, lang Lang) (*models.ReportDocument, error) {
	if _, err := ParseLang(string(lang)); err != nil {
		return nil, err
	}
	out, err := clone(doc)
	if err != nil {
		return nil, err
	}

	seen := map[string]string{}
	tr := func(s string) string {
		if s == "" {
			return s
		}
		if v, ok := seen[s]; ok {
			return v
		}
		v := t.Text(ctx, s, lang)
		seen[s] = v
		return v
	}

	out.Name = tr(out.Name)
	for i := range out.Sections {
		s := &out.Sections[i]
		s.Title = tr(s.Title)
		for k, v := range s.Data {
			s.Data[k] = walk(k, v, tr)
		}
	}
	for i := range out.Images {
		out.Images[i].Alt = tr(out.Images[i].Alt)
		out.Images[i].Caption = tr(out.Images[i].Caption)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.log.WithField("lang", string(lang)).WithField("strings", len(seen)).Info("Report translated")
	return out, nil
}

func walk(key string, v any, tr func(string) string) any {
	if keptKeys[key] {
		return v
	}
	switch val := v.(type) {
	case string:
		if codeRe.MatchString(val) {
			return val
		}
		return tr(val)
	case []any:
		for i := range val {
			val[i] = walk("", val[i], tr)
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = walk(k, val[k], tr)
		}
		return val
	}
	return v
}

// clone copies through JSON so section data holds only generic JSON values
func clone(doc *models.ReportDocument) (*models.ReportDocument, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("copy report: %w", err)
	}
	var out models.ReportDocument
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copy report: %w", err)
	}
	return &out, nil
}
