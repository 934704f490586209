package extractor

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/columns"
)

// ErrSummaryLayout is returned when a summary sheet lacks its period rows
var ErrSummaryLayout = errors.New("summary sheet needs a header row and two period rows")

var (
	currentHints  = []string{"análise", "analise", "atual", "current"}
	previousHints = []string{"comparação", "comparacao", "anterior", "previous", "comparison"}
	diffHints     = []string{"diferença", "diferenca", "difference", "variação", "variacao"}
	percentHints  = []string{"%", "porcentagem", "percentual", "percentage"}
	periodHints   = []string{"período", "periodo", "data", "date", "period"}

	// roles are tried in this order so "taxa de cliques" is read as CTR
	metricRoles = []columns.Role{columns.RolePosition, columns.RoleImpressions, columns.RoleCTR, columns.RoleClicks}
)

// PeriodTotals is one row of a summary sheet
type PeriodTotals struct {
	Label  string
	Totals models.Totals
}

// ParseSummary reads a period table: a header row naming the metrics, the
// analysed period on the next row and the comparison period after it.
func ParseSummary(grid [][]string) (current, previous PeriodTotals, err error) {
	headerRow := columns.FindHeaderRow(grid, columns.HeaderScanLimit)
	if headerRow < 0 || len(grid) < headerRow+3 {
		return current, previous, ErrSummaryLayout
	}

	m := columns.MapHeader(grid[headerRow])
	periodCol := 0
	for i, h := range grid[headerRow] {
		if containsAny(strings.ToLower(h), periodHints) {
			periodCol = i
			break
		}
	}

	read := func(row []string) PeriodTotals {
		return PeriodTotals{
			Label: strings.TrimSpace(cell(row, periodCol)),
			Totals: models.Totals{
				TotalClicks:      ParseNumber(cell(row, m.Clicks)),
				TotalImpressions: ParseNumber(cell(row, m.Impressions)),
				AvgCTR:           ParsePercent(cell(row, m.CTR)),
				AvgPosition:      ParseNumber(cell(row, m.Position)),
			},
		}
	}
	return read(grid[headerRow+1]), read(grid[headerRow+2]), nil
}

// ComparisonMapping locates the columns of a keyword sheet that carries the
// analysed and the comparison period side by side.
type ComparisonMapping struct {
	Keyword    int
	Current    columns.Mapping
	Previous   columns.Mapping
	Difference int
	Percentage int
}

// MapComparisonHeader maps a side-by-side header. It succeeds only when
// clicks are found for both periods.
func MapComparisonHeader(headers []string) (ComparisonMapping, bool) {
	cm := ComparisonMapping{
		Keyword:    -1,
		Current:    columns.Empty(),
		Previous:   columns.Empty(),
		Difference: -1,
		Percentage: -1,
	}

	for idx, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		if lower == "" {
			continue
		}

		isDiff := containsAny(lower, diffHints)
		isPercent := isDiff && containsAny(lower, percentHints)
		switch {
		case isPercent:
			cm.Percentage = idx
			continue
		case isDiff:
			if cm.Difference < 0 {
				cm.Difference = idx
			}
			continue
		}

		if columns.MatchRole(columns.RoleQuery, h) {
			cm.Keyword = idx
			continue
		}

		role, ok := metricRole(h)
		if !ok {
			continue
		}
		switch {
		case containsAny(lower, previousHints):
			setRole(&cm.Previous, role, idx)
		case containsAny(lower, currentHints):
			setRole(&cm.Current, role, idx)
		case cm.Current.Index(role) < 0:
			setRole(&cm.Current, role, idx)
		}
	}

	cm.Current.Query = cm.Keyword
	cm.Previous.Query = cm.Keyword
	return cm, cm.Keyword >= 0 && cm.Current.Clicks >= 0 && cm.Previous.Clicks >= 0
}

func metricRole(header string) (columns.Role, bool) {
	for _, role := range metricRoles {
		if columns.MatchRole(role, header) {
			return role, true
		}
	}
	return 0, false
}

func setRole(m *columns.Mapping, role columns.Role, idx int) {
	switch role {
	case columns.RoleClicks:
		m.Clicks = idx
	case columns.RoleImpressions:
		m.Impressions = idx
	case columns.RoleCTR:
		m.CTR = idx
	case columns.RolePosition:
		m.Position = idx
	}
}

// Comparison is the output of a side-by-side keyword sheet
type Comparison struct {
	Current     []models.KeywordRecord
	Previous    []models.KeywordRecord
	GainsLosses []models.GainsLosses
}

// ExtractComparison reads a side-by-side keyword sheet whose header is row
// headerRow. When the sheet lacks impressions they are estimated from the
// summary totals in proportion to clicks, and a missing position falls back
// to the summary average. Gains and losses come from the difference columns
// when present, otherwise from the clicks of the two periods.
func ExtractComparison(grid [][]string, headerRow int, cm ComparisonMapping, summary *[2]PeriodTotals, n int) Comparison {
	if n <= 0 {
		n = DefaultTopN
	}

	type change struct {
		item      models.GainLossItem
		magnitude float64
	}
	var out Comparison
	var gains, losses []change

	for r := headerRow + 1; r < len(grid); r++ {
		row := grid[r]
		kw := strings.TrimSpace(cell(row, cm.Keyword))
		if kw == "" {
			continue
		}

		cur := periodRecord(kw, row, cm.Current, summaryAt(summary, 0))
		prev := periodRecord(kw, row, cm.Previous, summaryAt(summary, 1))
		out.Current = append(out.Current, cur)
		out.Previous = append(out.Previous, prev)

		diff := cur.Clicks - prev.Clicks
		if cm.Difference >= 0 {
			diff = ParseSignedNumber(cell(row, cm.Difference))
		}
		var pct float64
		switch {
		case cm.Percentage >= 0:
			pct = ParseSignedNumber(cell(row, cm.Percentage))
		case prev.Clicks > 0:
			pct = (cur.Clicks - prev.Clicks) / prev.Clicks * 100
		}

		switch {
		case diff > 0 || pct > 0:
			gains = append(gains, change{
				item:      models.GainLossItem{Keyword: kw, Change: changeText(pct, diff, "+"), ChangeType: "increase"},
				magnitude: magnitude(pct, diff),
			})
		case diff < 0 || pct < 0:
			losses = append(losses, change{
				item:      models.GainLossItem{Keyword: kw, Change: changeText(pct, diff, "-"), ChangeType: "decrease"},
				magnitude: magnitude(pct, diff),
			})
		}
	}

	top := func(list []change) []models.GainLossItem {
		sort.SliceStable(list, func(i, j int) bool { return list[i].magnitude > list[j].magnitude })
		items := []models.GainLossItem{}
		for i := 0; i < len(list) && i < n; i++ {
			items = append(items, list[i].item)
		}
		return items
	}
	out.GainsLosses = []models.GainsLosses{
		{Title: GainsTitle, Items: top(gains)},
		{Title: LossesTitle, Items: top(losses)},
	}
	return out
}

func summaryAt(summary *[2]PeriodTotals, i int) *models.Totals {
	if summary == nil {
		return nil
	}
	return &summary[i].Totals
}

func periodRecord(kw string, row []string, m columns.Mapping, summary *models.Totals) models.KeywordRecord {
	rec := models.KeywordRecord{
		Keyword:     kw,
		Clicks:      ParseNumber(cell(row, m.Clicks)),
		Impressions: ParseNumber(cell(row, m.Impressions)),
		CTR:         ParsePercent(cell(row, m.CTR)),
		Position:    ParseNumber(cell(row, m.Position)),
	}
	if summary != nil {
		if rec.Impressions == 0 && summary.TotalClicks > 0 && summary.TotalImpressions > 0 {
			rec.Impressions = rec.Clicks / summary.TotalClicks * summary.TotalImpressions
		}
		if rec.Position == 0 {
			rec.Position = summary.AvgPosition
		}
	}
	if rec.CTR == 0 && rec.Impressions > 0 {
		rec.CTR = math.Min(rec.Clicks/rec.Impressions*100, 100)
	}
	return rec
}

func changeText(pct, diff float64, sign string) string {
	if pct != 0 {
		return fmt.Sprintf("%s%.2f%%", sign, math.Abs(pct))
	}
	return fmt.Sprintf("%s%.0f cliques", sign, math.Abs(diff))
}

func magnitude(pct, diff float64) float64 {
	if pct != 0 {
		return math.Abs(pct)
	}
	return math.Abs(diff)
}
