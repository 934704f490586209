package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

func TestParseSummary(t *testing.T) {
	grid := [][]string{
		{"Período", "Cliques", "Impressões", "CTR", "Posição média"},
		{"01/01/2025 - 31/03/2025", "1.200", "40.000", "3%", "8,2"},
		{"01/01/2024 - 31/03/2024", "1.000", "50.000", "2%", "9,0"},
	}
	cur, prev, err := ParseSummary(grid)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2025 - 31/03/2025", cur.Label)
	assert.InDelta(t, 1200, cur.Totals.TotalClicks, 1e-9)
	assert.InDelta(t, 40000, cur.Totals.TotalImpressions, 1e-9)
	assert.InDelta(t, 3, cur.Totals.AvgCTR, 1e-9)
	assert.InDelta(t, 8.2, cur.Totals.AvgPosition, 1e-9)
	assert.Equal(t, "01/01/2024 - 31/03/2024", prev.Label)
	assert.InDelta(t, 9, prev.Totals.AvgPosition, 1e-9)

	_, _, err = ParseSummary(grid[:2])
	assert.ErrorIs(t, err, ErrSummaryLayout)
}

func TestMapComparisonHeader(t *testing.T) {
	headers := []string{
		"Palavras-chave",
		"Cliques no período de análise",
		"Cliques no período de comparação",
		"Diferença entre esses períodos",
		"% de diferença",
	}
	cm, ok := MapComparisonHeader(headers)
	require.True(t, ok)
	assert.Equal(t, 0, cm.Keyword)
	assert.Equal(t, 1, cm.Current.Clicks)
	assert.Equal(t, 2, cm.Previous.Clicks)
	assert.Equal(t, 3, cm.Difference)
	assert.Equal(t, 4, cm.Percentage)
	assert.Equal(t, -1, cm.Current.Impressions)

	_, ok = MapComparisonHeader([]string{"Consulta", "Cliques", "Impressões"})
	assert.False(t, ok)
}

func TestExtractComparison(t *testing.T) {
	grid := [][]string{
		{"Palavras-chave", "Cliques atual", "Cliques anterior", "Diferença"},
		{"seo", "100", "50", "50"},
		{"agência", "10", "40", "-30"},
		{"consultoria", "20", "20", "0"},
		{"marketing", "5", "10", "-5"},
	}
	cm, ok := MapComparisonHeader(grid[0])
	require.True(t, ok)

	summary := [2]PeriodTotals{
		{Totals: totalsOf(135, 13500, 4)},
		{Totals: totalsOf(120, 6000, 6)},
	}
	got := ExtractComparison(grid, 0, cm, &summary, 5)

	require.Len(t, got.Current, 4)
	require.Len(t, got.Previous, 4)
	// impressions estimated from the summary in proportion to clicks
	assert.InDelta(t, 10000, got.Current[0].Impressions, 1e-9)
	assert.InDelta(t, 1, got.Current[0].CTR, 1e-9)
	assert.InDelta(t, 4, got.Current[0].Position, 1e-9)
	assert.InDelta(t, 2500, got.Previous[0].Impressions, 1e-9)

	require.Len(t, got.GainsLosses, 2)
	gains := got.GainsLosses[0].Items
	require.Len(t, gains, 1)
	assert.Equal(t, "seo", gains[0].Keyword)
	assert.Equal(t, "+100.00%", gains[0].Change)

	losses := got.GainsLosses[1].Items
	require.Len(t, losses, 2)
	assert.Equal(t, "agência", losses[0].Keyword)
	assert.Equal(t, "-75.00%", losses[0].Change)
	assert.Equal(t, "marketing", losses[1].Keyword)
	assert.Equal(t, "decrease", losses[1].ChangeType)
}

func totalsOf(clicks, impressions, position float64) models.Totals {
	return models.Totals{TotalClicks: clicks, TotalImpressions: impressions, AvgPosition: position}
}
