package reconciler

import (
	"math"
	"strings"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

// MixedSources labels the filter of a merge whose inputs disagree
const MixedSources = "Múltiplos arquivos"

// Kind selects the delta rule of a metric
type Kind int

const (
	KindClicks Kind = iota
	KindImpressions
	KindCTR
	KindPosition
)

// Delta is the percentage change from previous to current. Position is
// inverted so that a lower (better) position is a positive change. A zero,
// NaN or infinite previous value gives 0.
func Delta(kind Kind, current, previous float64) float64 {
	if previous == 0 || math.IsNaN(previous) || math.IsInf(previous, 0) || math.IsNaN(current) || math.IsInf(current, 0) {
		return 0
	}
	var d float64
	if kind == KindPosition {
		d = (previous - current) / previous * 100
	} else {
		d = (current - previous) / previous * 100
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// Deltas computes the four metric deltas between two aggregates
func Deltas(current, previous models.Totals) models.Deltas {
	return models.Deltas{
		Clicks:      Delta(KindClicks, current.TotalClicks, previous.TotalClicks),
		Impressions: Delta(KindImpressions, current.TotalImpressions, previous.TotalImpressions),
		CTR:         Delta(KindCTR, current.AvgCTR, previous.AvgCTR),
		Position:    Delta(KindPosition, current.AvgPosition, previous.AvgPosition),
	}
}

// Merge unions same-period results with the default list length
func Merge(results []*models.ExtractionResult) *models.ExtractionResult {
	return merge(results, extractor.DefaultTopN)
}

// merge unions the keywords and pages of same-period results. A keyword
// found in several inputs is folded with extractor.Combine, which weights
// position by impressions. The aggregates are rebuilt: counts are the sums
// of the input totals, while CTR and position follow extractor.Aggregate
// over the merged keywords so a bucket reads the same whether its rows came
// from one file or several. The inputs are left untouched.
func merge(results []*models.ExtractionResult, topN int) *models.ExtractionResult {
	var in []*models.ExtractionResult
	for _, r := range results {
		if r != nil {
			in = append(in, r)
		}
	}
	switch len(in) {
	case 0:
		return nil
	case 1:
		return clone(in[0])
	}

	out := &models.ExtractionResult{}
	kwIdx := make(map[string]int)
	pageIdx := make(map[string]int)
	var sources []string
	var weightedPos float64

	for _, r := range in {
		for _, k := range r.Keywords {
			key := strings.TrimSpace(k.Keyword)
			if i, ok := kwIdx[key]; ok {
				out.Keywords[i] = extractor.Combine(out.Keywords[i], k)
				continue
			}
			kwIdx[key] = len(out.Keywords)
			out.Keywords = append(out.Keywords, k)
		}
		for _, p := range r.Pages {
			if i, ok := pageIdx[p.URL]; ok {
				out.Pages[i] = combinePage(out.Pages[i], p)
				continue
			}
			pageIdx[p.URL] = len(out.Pages)
			out.Pages = append(out.Pages, p)
		}

		out.Totals.TotalClicks += r.Totals.TotalClicks
		out.Totals.TotalImpressions += r.Totals.TotalImpressions
		weightedPos += r.Totals.AvgPosition * r.Totals.TotalImpressions

		out.Header.RawLines = append(out.Header.RawLines, r.Header.RawLines...)
		if out.Header.Period == "" {
			out.Header.Period = r.Header.Period
		}
		if r.Source != "" {
			sources = append(sources, r.Source)
		}
	}

	out.Source = strings.Join(sources, ", ")
	out.Totals.KeywordCount = len(out.Keywords)
	switch {
	case len(out.Keywords) > 0:
		out.Totals.AvgCTR = extractor.Aggregate(out.Keywords).AvgCTR
	case out.Totals.TotalImpressions > 0:
		out.Totals.AvgCTR = out.Totals.TotalClicks / out.Totals.TotalImpressions * 100
	}
	out.Totals.AvgPosition = meanPosition(out.Keywords)
	if out.Totals.AvgPosition == 0 && out.Totals.TotalImpressions > 0 {
		// only summary figures carried a position
		out.Totals.AvgPosition = weightedPos / out.Totals.TotalImpressions
	}

	out.Filter = mergeFilters(in)
	out.PeriodHint = commonHint(in)
	out.Header.Clicks = extractor.FormatCount(out.Totals.TotalClicks)
	out.Header.Impressions = extractor.FormatCount(out.Totals.TotalImpressions)
	out.Header.CTR = extractor.FormatPercent(out.Totals.AvgCTR)
	out.Header.Position = extractor.FormatPosition(out.Totals.AvgPosition)
	out.Metrics = extractor.Metrics(out.Totals, models.Deltas{})
	out.GainsLosses = extractor.TopGainsLosses(out.Keywords, topN)
	return out
}

func combinePage(a, b models.PageRecord) models.PageRecord {
	k := extractor.Combine(
		models.KeywordRecord{Clicks: a.Clicks, Impressions: a.Impressions, CTR: a.CTR, Position: a.Position},
		models.KeywordRecord{Clicks: b.Clicks, Impressions: b.Impressions, CTR: b.CTR, Position: b.Position},
	)
	return models.PageRecord{URL: a.URL, Clicks: k.Clicks, Impressions: k.Impressions, CTR: k.CTR, Position: k.Position}
}

func meanPosition(keywords []models.KeywordRecord) float64 {
	var sum float64
	var n int
	for _, k := range keywords {
		if k.Position > 0 {
			sum += k.Position
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func mergeFilters(in []*models.ExtractionResult) models.Filter {
	f := in[0].Filter
	for _, r := range in[1:] {
		if r.Filter.Type != f.Type {
			return models.Filter{Type: models.FilterAll, DetectedFrom: MixedSources}
		}
		if r.Filter.DetectedFrom != f.DetectedFrom {
			f.DetectedFrom = MixedSources
		}
	}
	return f
}

func commonHint(in []*models.ExtractionResult) models.PeriodHint {
	h := in[0].PeriodHint
	for _, r := range in[1:] {
		if r.PeriodHint != h {
			return models.HintNone
		}
	}
	return h
}

// clone copies a result deep enough that edits to the copy never reach the
// original's slices.
func clone(r *models.ExtractionResult) *models.ExtractionResult {
	c := *r
	c.Metrics = append([]models.Metric(nil), r.Metrics...)
	c.Keywords = append([]models.KeywordRecord(nil), r.Keywords...)
	c.Pages = append([]models.PageRecord(nil), r.Pages...)
	c.Header.RawLines = append([]string(nil), r.Header.RawLines...)
	if r.GainsLosses != nil {
		c.GainsLosses = make([]models.GainsLosses, len(r.GainsLosses))
		for i, gl := range r.GainsLosses {
			c.GainsLosses[i] = models.GainsLosses{
				Title: gl.Title,
				Items: append([]models.GainLossItem(nil), gl.Items...),
			}
		}
	}
	return &c
}
