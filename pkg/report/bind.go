package report

import (
	"errors"
	"math"
	"sort"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

// DefaultSampleSize bounds the keyword table when no size is given
const DefaultSampleSize = 20

// KeywordTableHeaders are the column titles of the keyword table section
var KeywordTableHeaders = []string{"Palavra-chave", "Cliques", "Impressões", "CTR", "Posição"}

// BindReconciled writes reconciled GSC data into the document: metrics into
// the KPI grid, the gains and losses lists, the top keywords into the table
// section and the periods into the header. Missing target sections are
// added at the end. Section data only ever holds JSON-shaped values.
func BindReconciled(d *Document, res *models.ReconciledResult, sampleSize int) error {
	if res == nil || res.Current == nil {
		return errors.New("nothing to bind: reconciled result is empty")
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	cur := res.Current

	kpi, err := d.ensure(models.SectionKPIGrid, "Principais Métricas do Site")
	if err != nil {
		return err
	}
	metrics := make([]any, 0, len(cur.Metrics))
	for _, m := range cur.Metrics {
		metrics = append(metrics, map[string]any{
			"label":      m.Label,
			"value":      m.Value,
			"change":     round2(m.Change),
			"changeType": changeType(m.Change),
		})
	}
	kpi.Data["metrics"] = metrics

	if len(cur.GainsLosses) > 0 {
		gl, err := d.ensure(models.SectionGainsLosses, "Palavras-chave")
		if err != nil {
			return err
		}
		lists := make([]any, 0, len(cur.GainsLosses))
		for _, l := range cur.GainsLosses {
			items := make([]any, 0, len(l.Items))
			for _, it := range l.Items {
				item := map[string]any{
					"keyword":    it.Keyword,
					"change":     it.Change,
					"changeType": it.ChangeType,
				}
				if it.URL != "" {
					item["url"] = it.URL
				}
				items = append(items, item)
			}
			lists = append(lists, map[string]any{"title": l.Title, "items": items})
		}
		gl.Data["gainsLosses"] = lists
	}

	table, err := d.ensure(models.SectionTable, "Principais consultas")
	if err != nil {
		return err
	}
	table.Data["table"] = keywordTable(cur.Keywords, sampleSize)

	header, err := d.ensure(models.SectionHeader, "")
	if err != nil {
		return err
	}
	if p := cur.Period(); p != "" {
		header.Data["periodInfo"] = p
		d.doc.Period = p
	}
	if c := res.Comparison; c != nil && c.HasComparison && c.PreviousStart != "" {
		header.Data["previousPeriod"] = c.PreviousStart + " a " + c.PreviousEnd
	}
	if cur.Filter.Type == models.FilterBlog {
		d.doc.HasBlog = true
	}

	d.touch()
	return nil
}

// SetAnalysis fills the first analysis section, adding one when missing
func SetAnalysis(d *Document, text string) error {
	s, err := d.ensure(models.SectionAnalysis, "")
	if err != nil {
		return err
	}
	s.Data["analysis"] = text
	if _, ok := s.Data["title"]; !ok {
		s.Data["title"] = "Análise"
	}
	d.touch()
	return nil
}

func (d *Document) ensure(t models.SectionType, title string) (*models.ReportSection, error) {
	if s := d.FirstOfType(t); s != nil {
		if s.Data == nil {
			s.Data = map[string]any{}
		}
		return s, nil
	}
	if _, err := d.Add(t, title); err != nil {
		return nil, err
	}
	// Add may have grown the slice; look the section up again
	return d.FirstOfType(t), nil
}

func keywordTable(keywords []models.KeywordRecord, n int) map[string]any {
	sorted := append([]models.KeywordRecord(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Clicks > sorted[j].Clicks })
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	headers := make([]any, len(KeywordTableHeaders))
	for i, h := range KeywordTableHeaders {
		headers[i] = h
	}
	rows := make([]any, 0, len(sorted))
	for _, k := range sorted {
		rows = append(rows, []any{
			k.Keyword,
			extractor.FormatCount(k.Clicks),
			extractor.FormatCount(k.Impressions),
			extractor.FormatPercent(k.CTR),
			extractor.FormatPosition(k.Position),
		})
	}
	return map[string]any{"headers": headers, "rows": rows}
}

func changeType(change float64) string {
	switch {
	case change > 0:
		return "increase"
	case change < 0:
		return "decrease"
	}
	return "neutral"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
