package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

func reconciled(d models.Deltas, withPrevious bool, keywords ...models.KeywordRecord) *models.ReconciledResult {
	if keywords == nil {
		keywords = []models.KeywordRecord{
			{Keyword: "seo", Clicks: 40, Impressions: 400, Position: 3},
			{Keyword: "agência", Clicks: 35, Impressions: 500, Position: 4},
			{Keyword: "curso", Clicks: 30, Impressions: 450, Position: 6},
		}
	}
	totals := extractor.Aggregate(keywords)
	res := &models.ReconciledResult{
		Current: &models.ExtractionResult{
			Keywords: keywords,
			Totals:   totals,
			Metrics:  extractor.Metrics(totals, d),
			Header:   models.HeaderInfo{Period: "01/01/2025 a 31/03/2025"},
		},
		Deltas:  d,
		Sources: []string{"a.xlsx"},
	}
	if withPrevious {
		res.Previous = &models.ExtractionResult{}
	}
	return res
}

func findingTypes(in *models.Insights) []string {
	var out []string
	for _, f := range in.KeyFindings {
		out = append(out, f.Type)
	}
	return out
}

func TestAnalyzeGrowth(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	a := New()
	a.config.Now = func() time.Time { return now }

	in, err := a.Analyze(reconciled(models.Deltas{Clicks: 20, Impressions: 10, CTR: 5, Position: 50}, true))
	require.NoError(t, err)

	assert.Equal(t, now, in.GeneratedAt)
	assert.True(t, in.HasComparison)
	assert.InDelta(t, 61.25, in.Scores.Overall, 1e-9)
	assert.Equal(t, "B", in.ExecutiveSummary.OverallGrade)
	assert.Equal(t, []string{FindingClicksUp}, findingTypes(in))
	assert.Empty(t, in.Recommendations)
	assert.Equal(t, []string{"Crescimento de cliques", "Mais visibilidade nas buscas", "Melhora no posicionamento"}, in.ExecutiveSummary.Strengths)
	assert.Empty(t, in.ExecutiveSummary.Weaknesses)

	assert.Contains(t, in.Paragraph, "01/01/2025 a 31/03/2025")
	assert.Contains(t, in.Paragraph, "os cliques cresceram 20,0%")
	assert.Contains(t, in.Paragraph, "a posição média melhorou 50,0%")
	assert.Equal(t, []string{"a.xlsx"}, in.DataSources)
}

func TestAnalyzeDecline(t *testing.T) {
	in, err := New().Analyze(reconciled(models.Deltas{Clicks: -30, Impressions: -10, CTR: -2, Position: -25}, true))
	require.NoError(t, err)

	assert.Equal(t, "D", in.ExecutiveSummary.OverallGrade)
	assert.Equal(t, []string{FindingClicksDown, FindingPositionDrop, FindingImpressionsDown, FindingCTRDrop}, findingTypes(in))
	assert.Equal(t, []string{
		"Revisar páginas que perderam tráfego",
		"Recuperar posições perdidas",
		"Otimizar títulos e meta descriptions",
	}, in.ExecutiveSummary.TopPriorities)
	assert.Equal(t, "Ganhos relevantes possíveis com um plano focado", in.ExecutiveSummary.EstimatedImpact)
	assert.Len(t, in.ExecutiveSummary.Weaknesses, 3)
	assert.Contains(t, in.Paragraph, "revisar páginas que perderam tráfego")
}

func TestAnalyzeWithoutComparison(t *testing.T) {
	in, err := New().Analyze(reconciled(models.Deltas{}, false))
	require.NoError(t, err)
	assert.False(t, in.HasComparison)
	assert.Equal(t, NoGrade, in.ExecutiveSummary.OverallGrade)
	assert.Empty(t, in.ExecutiveSummary.Strengths)
	assert.NotContains(t, in.Paragraph, "comparação")
	assert.Contains(t, in.Paragraph, "105 cliques")
}

func TestAnalyzeKeywordFindings(t *testing.T) {
	res := reconciled(models.Deltas{}, false,
		models.KeywordRecord{Keyword: "marca", Clicks: 90, Impressions: 300},
		models.KeywordRecord{Keyword: "seo", Clicks: 10, Impressions: 200},
		models.KeywordRecord{Keyword: "curso", Clicks: 0, Impressions: 50},
	)
	in, err := New().Analyze(res)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{FindingZeroClick, FindingConcentration}, findingTypes(in))
	require.Len(t, in.Recommendations, 2)
	assert.Equal(t, "Melhorias pontuais com otimizações direcionadas", in.ExecutiveSummary.EstimatedImpact)
}

func TestMetricScore(t *testing.T) {
	tests := []struct {
		delta, want float64
	}{
		{0, 50}, {20, 60}, {-20, 40}, {250, 100}, {-400, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, metricScore(tt.delta), 1e-9)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := New().Analyze(nil)
	assert.Error(t, err)
	_, err = New().Analyze(&models.ReconciledResult{})
	assert.Error(t, err)
}
