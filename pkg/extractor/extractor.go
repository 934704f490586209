package extractor

import (
	"strings"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/columns"
)

// DefaultTopN is the length of the gains and losses lists
const DefaultTopN = 5

// Options tunes an extraction
type Options struct {
	// Source names the input, usually the file name
	Source string
	// Period is used as the period label when the grid carries none
	Period string
	// TopN bounds the gains and losses lists
	TopN int
}

// Extractor turns a mapped grid into an ExtractionResult
type Extractor struct {
	opts Options
}

// New creates a new Extractor instance
func New(opts Options) *Extractor {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	return &Extractor{opts: opts}
}

// Extract is New(opts).Extract(grid, m)
func Extract(grid [][]string, m columns.Mapping, opts Options) (*models.ExtractionResult, error) {
	return New(opts).Extract(grid, m)
}

// Extract walks the data rows below the mapped header row. It fails only when
// the keyword column is missing; absent numeric columns read as zero.
func (e *Extractor) Extract(grid [][]string, m columns.Mapping) (*models.ExtractionResult, error) {
	if err := columns.Require(m); err != nil {
		return nil, err
	}

	keywords := Keywords(grid, m)
	totals := Aggregate(keywords)

	header := ScanHeader(grid)
	if header.Period == "" {
		header.Period = e.opts.Period
	}

	return &models.ExtractionResult{
		Source:      e.opts.Source,
		Metrics:     Metrics(totals, models.Deltas{}),
		Keywords:    keywords,
		GainsLosses: TopGainsLosses(keywords, e.opts.TopN),
		Totals:      totals,
		Filter:      DetectFilter(grid, m.HeaderRow),
		Header:      header,
		Raw:         grid,
	}, nil
}

// Keywords reads one record per distinct keyword. Rows with an empty keyword
// are skipped; a keyword seen again is folded into its first record with
// Combine.
func Keywords(grid [][]string, m columns.Mapping) []models.KeywordRecord {
	var keywords []models.KeywordRecord
	seen := make(map[string]int)

	for r := m.HeaderRow + 1; r < len(grid); r++ {
		row := grid[r]
		kw := strings.TrimSpace(cell(row, m.Query))
		if kw == "" {
			continue
		}
		rec := models.KeywordRecord{
			Keyword:     kw,
			Clicks:      ParseNumber(cell(row, m.Clicks)),
			Impressions: ParseNumber(cell(row, m.Impressions)),
			CTR:         ParsePercent(cell(row, m.CTR)),
			Position:    ParseNumber(cell(row, m.Position)),
		}
		if i, ok := seen[kw]; ok {
			keywords[i] = Combine(keywords[i], rec)
			continue
		}
		seen[kw] = len(keywords)
		keywords = append(keywords, rec)
	}
	return keywords
}

// Combine merges two records of the same keyword. Counts add up, position is
// weighted by each side's impressions and CTR is recomputed from the sums.
func Combine(a, b models.KeywordRecord) models.KeywordRecord {
	out := models.KeywordRecord{
		Keyword:     a.Keyword,
		Clicks:      a.Clicks + b.Clicks,
		Impressions: a.Impressions + b.Impressions,
		CTR:         a.CTR,
		Position:    a.Position,
	}
	if out.Impressions > 0 {
		out.Position = (a.Position*a.Impressions + b.Position*b.Impressions) / out.Impressions
		out.CTR = out.Clicks / out.Impressions * 100
	} else if out.Position == 0 {
		out.Position = b.Position
	}
	if out.CTR == 0 {
		out.CTR = b.CTR
	}
	return out
}

// Aggregate computes the headline totals of a keyword list. CTR is the mean
// of the per-row CTRs that are set, falling back to clicks over impressions;
// position is the plain mean of the positions that are set.
func Aggregate(keywords []models.KeywordRecord) models.Totals {
	t := models.Totals{KeywordCount: len(keywords)}

	var ctrSum, posSum float64
	var ctrRows, posRows int
	for _, k := range keywords {
		t.TotalClicks += k.Clicks
		t.TotalImpressions += k.Impressions
		if k.CTR > 0 {
			ctrSum += k.CTR
			ctrRows++
		}
		if k.Position > 0 {
			posSum += k.Position
			posRows++
		}
	}

	switch {
	case ctrRows > 0:
		t.AvgCTR = ctrSum / float64(ctrRows)
	case t.TotalImpressions > 0:
		t.AvgCTR = t.TotalClicks / t.TotalImpressions * 100
	}
	if posRows > 0 {
		t.AvgPosition = posSum / float64(posRows)
	}
	return t
}

// Metrics builds the four canonical metrics from totals, carrying each
// metric's change from d.
func Metrics(t models.Totals, d models.Deltas) []models.Metric {
	return []models.Metric{
		{Label: models.MetricClicks, Value: FormatCount(t.TotalClicks), Change: d.Clicks},
		{Label: models.MetricImpressions, Value: FormatCount(t.TotalImpressions), Change: d.Impressions},
		{Label: models.MetricPosition, Value: FormatPosition(t.AvgPosition), Change: d.Position},
		{Label: models.MetricCTR, Value: FormatPercent(t.AvgCTR), Change: d.CTR},
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
