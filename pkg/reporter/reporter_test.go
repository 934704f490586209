package reporter

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/models"
)

func sampleDoc() *models.ReportDocument {
	return &models.ReportDocument{
		ID:         "report-1",
		Name:       "Relatório Acme - 01/01/2025 a 31/03/2025",
		ClientName: "Padaria São João",
		Period:     "01/01/2025 a 31/03/2025",
		Colors:     models.Colors{Primary: "#123456"},
		Sections: []models.ReportSection{
			{ID: "f", Type: models.SectionFooter, Visible: true, Order: 9, Data: map[string]any{}},
			{ID: "h", Type: models.SectionHeader, Visible: true, Order: 0, Data: map[string]any{
				"clientName":       "Padaria São João",
				"domain":           "padaria.com.br",
				"periodInfo":       "01/01/2025 a 31/03/2025",
				"comparisonPeriod": "Ano anterior",
				"previousPeriod":   "01/01/2024 a 31/03/2024",
				"logo":             "javascript:alert(1)",
			}},
			{ID: "k", Type: models.SectionKPIGrid, Title: "Principais Métricas do Site", Visible: true, Order: 1, Data: map[string]any{
				"metrics": []any{
					map[string]any{"label": "Cliques", "value": "1.234", "change": 20.46, "changeType": "increase"},
					map[string]any{"label": "Posição média", "value": "8,2", "change": -5.0, "changeType": "decrease"},
				},
			}},
			{ID: "g", Type: models.SectionGainsLosses, Title: "Palavras-chave", Visible: true, Order: 2, Data: map[string]any{
				"gainsLosses": []any{
					map[string]any{"title": "Maiores ganhos", "items": []any{
						map[string]any{"keyword": "pão de queijo", "change": "+120 cliques", "changeType": "increase"},
					}},
				},
			}},
			{ID: "t", Type: models.SectionTable, Title: "Principais consultas", Visible: true, Order: 3, Data: map[string]any{
				"table": map[string]any{
					"headers": []any{"Palavra-chave", "Cliques"},
					"rows":    []any{[]any{"pão | francês", "1.200"}, []any{"bolo", 35.0}},
				},
			}},
			{ID: "a", Type: models.SectionAnalysis, Visible: true, Order: 4, Data: map[string]any{
				"title":    "Análise",
				"analysis": "Trimestre **forte**.\n\n<script>alert(1)</script>",
			}},
			{ID: "c", Type: models.SectionCompetitorAnalysis, Title: "Concorrentes", Visible: false, Order: 5, Data: map[string]any{}},
			{ID: "s", Type: models.SectionStatusCards, Title: "Destaques", Visible: true, Order: 6, Data: map[string]any{
				"cards": []any{map[string]any{"title": "Sitemap", "description": "Corrigido", "status": "normal"}},
			}},
			{ID: "x", Type: models.SectionActions, Title: "Ações em andamento", Visible: true, Order: 7, Data: map[string]any{
				"actions": []any{map[string]any{"text": "Novo blog", "url": "https://padaria.com.br/blog", "status": "andamento"}},
			}},
		},
		Images:   []models.ReportImage{},
		Metadata: models.Metadata{CreatedAt: "2025-04-02T10:00:00Z", CreatedBy: "Equipe de SEO"},
	}
}

func newReporter(t *testing.T) *Reporter {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"json", FormatJSON, "json"},
		{"HTML", FormatHTML, "html"},
		{".md", FormatMarkdown, "md"},
		{"markdown", FormatMarkdown, "md"},
		{"pdf", FormatPDF, "pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.ext, f.Ext())
		})
	}
	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderHTML(t *testing.T) {
	out, err := newReporter(t).Render(sampleDoc(), FormatHTML)
	require.NoError(t, err)

	page, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Relatório Acme - 01/01/2025 a 31/03/2025", page.Find("title").Text())
	assert.Contains(t, page.Find("style").Text(), "--primary: #123456")
	// missing colors fall back to the default theme
	assert.Contains(t, page.Find("style").Text(), "--background: #f4f6f9")

	var order []string
	page.Find("[data-section]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-section")
		order = append(order, id)
	})
	assert.Equal(t, []string{"h", "k", "g", "t", "a", "s", "x", "f"}, order, "visible sections in order")

	header := page.Find(`[data-section="h"]`)
	assert.Equal(t, "Padaria São João", header.Find("h1").Text())
	assert.Contains(t, header.Find(".comparison").Text(), "01/01/2024 a 31/03/2024")
	logo, _ := header.Find("img.logo").Attr("src")
	assert.NotContains(t, logo, "javascript")

	kpis := page.Find(".kpi")
	require.Equal(t, 2, kpis.Length())
	assert.Equal(t, "1.234", kpis.First().Find(".kpi-value").Text())
	assert.Equal(t, "+20,5%", kpis.First().Find(".kpi-change").Text())
	assert.True(t, kpis.First().Find(".kpi-change").HasClass("up"))
	assert.True(t, kpis.Last().Find(".kpi-change").HasClass("down"))

	assert.Contains(t, page.Find(".gains-losses li.up").Text(), "pão de queijo")

	cells := page.Find(`[data-section="t"] tbody td`)
	require.Equal(t, 4, cells.Length())
	assert.Equal(t, "pão | francês", cells.Eq(0).Text())
	assert.Equal(t, "35", cells.Eq(3).Text())

	analysis := page.Find(`[data-section="a"]`)
	assert.Equal(t, "Análise", analysis.Find("h2").Text())
	assert.Equal(t, "forte", analysis.Find("strong").Text())
	assert.Zero(t, page.Find("script").Length(), "raw html in markdown is dropped")

	href, _ := page.Find(".actions a").Attr("href")
	assert.Equal(t, "https://padaria.com.br/blog", href)

	footer := page.Find("footer")
	assert.Contains(t, footer.Text(), defaultFooter)
	assert.Contains(t, footer.Text(), "Criado por Equipe de SEO em 02/04/2025")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := newReporter(t).Render(sampleDoc(), FormatMarkdown)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Padaria São João\n"))
	assert.Contains(t, out, "**Comparação:** Ano anterior (01/01/2024 a 31/03/2024)")
	assert.Contains(t, out, "| Cliques | 1.234 | +20,5% |")
	assert.Contains(t, out, "- pão de queijo: +120 cliques")
	assert.Contains(t, out, `| pão \| francês | 1.200 |`)
	assert.Contains(t, out, "## Análise\n\nTrimestre **forte**.")
	assert.Contains(t, out, "- **Sitemap** (normal): Corrigido")
	assert.Contains(t, out, "- `andamento` [Novo blog](https://padaria.com.br/blog)")
	assert.NotContains(t, out, "Concorrentes", "hidden sections are skipped")
	assert.Less(t, strings.Index(out, "Principais Métricas"), strings.Index(out, "Principais consultas"))
}

func TestRenderJSON(t *testing.T) {
	doc := sampleDoc()
	out, err := newReporter(t).Render(doc, FormatJSON)
	require.NoError(t, err)

	var back models.ReportDocument
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	assert.Equal(t, doc.ID, back.ID)
	assert.Len(t, back.Sections, len(doc.Sections), "json keeps hidden sections")
}

func TestRenderUnsupported(t *testing.T) {
	_, err := newReporter(t).Render(sampleDoc(), FormatPDF)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderImagesFromDocument(t *testing.T) {
	doc := sampleDoc()
	doc.Sections = []models.ReportSection{{ID: "i", Type: models.SectionImage, Title: "Prints", Visible: true}}
	doc.Images = []models.ReportImage{{ID: "1", URL: "data:image/png;base64,AAAA", Alt: "gráfico"}}

	out, err := newReporter(t).Render(doc, FormatHTML)
	require.NoError(t, err)
	page, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	src, _ := page.Find("figure img").Attr("src")
	assert.Equal(t, "data:image/png;base64,AAAA", src)
}

func TestRenderInsights(t *testing.T) {
	in := &models.Insights{
		Period:        "01/01/2025 a 31/03/2025",
		GeneratedAt:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		HasComparison: true,
		ExecutiveSummary: models.ExecutiveSummary{
			OverallGrade: "B", OverallScore: 61.25,
			Strengths: []string{"Crescimento de cliques"},
		},
		Scores:          models.OverallScores{Clicks: 60, Overall: 61.25},
		Recommendations: []models.Recommendation{{Priority: "high", Action: "Revisar páginas"}},
		Paragraph:       "Bom trimestre.",
	}
	r := newReporter(t)

	md, err := r.RenderInsights(in, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, md, "**Nota geral:** B (61/100)")
	assert.Contains(t, md, "| Cliques | 60 |")
	assert.Contains(t, md, "### 1. Revisar páginas")
	assert.Contains(t, md, "## Análise\n\nBom trimestre.")

	js, err := r.RenderInsights(in, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, js, `"overall_grade": "B"`)

	_, err = r.RenderInsights(in, FormatHTML)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileName(t *testing.T) {
	now := time.Unix(1735689600, 0)
	assert.Equal(t, "relatorio-padaria-sao-joao-1735689600.pdf", FileName(sampleDoc(), FormatPDF, now))
	assert.Equal(t, "relatorio-cliente-1735689600.md", FileName(&models.ReportDocument{}, FormatMarkdown, now))
}

func chromePath() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func TestPDFRenderer(t *testing.T) {
	path := chromePath()
	if path == "" {
		t.Skip("no Chrome available")
	}
	p := NewPDFRenderer(newReporter(t), config.ExportConfig{ChromePath: path, Timeout: 30 * time.Second}, nil)
	pdf, err := p.Render(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
