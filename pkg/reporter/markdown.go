package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(doc *models.ReportDocument) (string, error) {
	var buf bytes.Buffer
	v := r.view(doc)

	for _, s := range v.Sections {
		d := s.Data
		switch models.SectionType(s.Type) {
		case models.SectionHeader:
			name := fieldStr(d, "clientName")
			if name == "" {
				name = v.ClientName
			}
			fmt.Fprintf(&buf, "# %s\n\n", name)
			if domain := fieldStr(d, "domain"); domain != "" {
				fmt.Fprintf(&buf, "**Domínio:** %s\n\n", domain)
			}
			period := fieldStr(d, "periodInfo")
			if period == "" {
				period = v.Period
			}
			if period != "" {
				fmt.Fprintf(&buf, "**Período:** %s\n\n", period)
			}
			if cmp := fieldStr(d, "comparisonPeriod"); cmp != "" {
				fmt.Fprintf(&buf, "**Comparação:** %s", cmp)
				if prev := fieldStr(d, "previousPeriod"); prev != "" {
					fmt.Fprintf(&buf, " (%s)", prev)
				}
				fmt.Fprintf(&buf, "\n\n")
			}

		case models.SectionMetaSEO:
			m := field(d, "metaSEO")
			heading(&buf, s.Title, "Meta SEO")
			if desc := fieldStr(m, "description"); desc != "" {
				fmt.Fprintf(&buf, "%s\n\n", desc)
			}
			if metas := fieldList(m, "metas"); len(metas) > 0 {
				rows := make([][]string, 0, len(metas))
				for _, meta := range metas {
					rows = append(rows, []string{
						fieldStr(meta, "label"), fieldStr(meta, "current"),
						fieldStr(meta, "target"), fieldStr(meta, "growth"),
					})
				}
				table(&buf, []string{"Meta", "Atual", "Alvo", "Crescimento"}, rows)
			}
			if a := fieldStr(m, "analysis"); a != "" {
				fmt.Fprintf(&buf, "%s\n\n", a)
			}

		case models.SectionKPIGrid, models.SectionMetrics:
			heading(&buf, s.Title, "")
			metrics := fieldList(d, "metrics")
			rows := make([][]string, 0, len(metrics))
			for _, m := range metrics {
				var delta string
				if c := field(m, "change"); c != nil {
					delta = change(c)
				}
				rows = append(rows, []string{fieldStr(m, "label"), fieldStr(m, "value"), delta})
			}
			table(&buf, []string{"Métrica", "Valor", "Variação"}, rows)

		case models.SectionGainsLosses:
			heading(&buf, s.Title, "")
			for _, l := range fieldList(d, "gainsLosses") {
				fmt.Fprintf(&buf, "### %s\n\n", fieldStr(l, "title"))
				for _, it := range fieldList(l, "items") {
					fmt.Fprintf(&buf, "- %s: %s\n", fieldStr(it, "keyword"), fieldStr(it, "change"))
				}
				fmt.Fprintf(&buf, "\n")
			}

		case models.SectionTable:
			heading(&buf, s.Title, "")
			t := field(d, "table")
			var headers []string
			for _, h := range fieldList(t, "headers") {
				headers = append(headers, str(h))
			}
			var rows [][]string
			for _, row := range fieldList(t, "rows") {
				var cells []string
				for _, c := range list(row) {
					cells = append(cells, str(c))
				}
				rows = append(rows, cells)
			}
			table(&buf, headers, rows)

		case models.SectionChart:
			heading(&buf, s.Title, "")
			c := field(d, "chart")
			headers := []string{""}
			for _, l := range fieldList(c, "labels") {
				headers = append(headers, str(l))
			}
			var rows [][]string
			for _, ds := range fieldList(c, "datasets") {
				cells := []string{fieldStr(ds, "label")}
				for _, p := range fieldList(ds, "data") {
					cells = append(cells, str(p))
				}
				rows = append(rows, cells)
			}
			table(&buf, headers, rows)

		case models.SectionImage:
			heading(&buf, s.Title, "")
			for _, img := range fieldList(d, "images") {
				fmt.Fprintf(&buf, "![%s](%s)\n", fieldStr(img, "alt"), fieldStr(img, "url"))
				if c := fieldStr(img, "caption"); c != "" {
					fmt.Fprintf(&buf, "*%s*\n", c)
				}
				fmt.Fprintf(&buf, "\n")
			}

		case models.SectionCompetitorAnalysis:
			heading(&buf, s.Title, "")
			for _, g := range fieldList(d, "barGroups") {
				fmt.Fprintf(&buf, "### %s\n\n", fieldStr(g, "label"))
				for _, c := range fieldList(g, "competitors") {
					fmt.Fprintf(&buf, "- %s: %s\n", fieldStr(c, "name"), fieldStr(c, "value"))
				}
				fmt.Fprintf(&buf, "\n")
			}

		case models.SectionStatusCards:
			heading(&buf, s.Title, "")
			for _, c := range fieldList(d, "cards") {
				fmt.Fprintf(&buf, "- **%s** (%s): %s\n", fieldStr(c, "title"), fieldStr(c, "status"), fieldStr(c, "description"))
			}
			fmt.Fprintf(&buf, "\n")

		case models.SectionActions:
			heading(&buf, s.Title, "")
			for _, a := range fieldList(d, "actions") {
				label := fieldStr(a, "text")
				if u := fieldStr(a, "url"); u != "" {
					label = fmt.Sprintf("[%s](%s)", label, u)
				}
				if st := fieldStr(a, "status"); st != "" {
					label = fmt.Sprintf("`%s` %s", st, label)
				}
				fmt.Fprintf(&buf, "- %s\n", label)
			}
			fmt.Fprintf(&buf, "\n")

		case models.SectionFooter:
			footer := fieldStr(d, "text")
			if footer == "" {
				footer = v.FooterText
			}
			fmt.Fprintf(&buf, "---\n\n*%s*\n", footer)
			if v.CreatedBy != "" {
				fmt.Fprintf(&buf, "\n*Criado por %s", v.CreatedBy)
				if v.CreatedAt != "" {
					fmt.Fprintf(&buf, " em %s", v.CreatedAt)
				}
				fmt.Fprintf(&buf, "*\n")
			}
			fmt.Fprintf(&buf, "\n")

		default:
			title := fieldStr(d, "title")
			if title == "" {
				title = s.Title
			}
			heading(&buf, title, "")
			if body := text(d); body != "" {
				fmt.Fprintf(&buf, "%s\n\n", body)
			}
			for _, h := range fieldList(d, "highlights") {
				fmt.Fprintf(&buf, "- %s\n", str(h))
			}
		}
	}

	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func heading(buf *bytes.Buffer, title, fallback string) {
	if title == "" {
		title = fallback
	}
	if title != "" {
		fmt.Fprintf(buf, "## %s\n\n", title)
	}
}

func table(buf *bytes.Buffer, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	cell := func(s string) string { return strings.ReplaceAll(s, "|", `\|`) }
	fmt.Fprintf(buf, "|")
	for _, h := range headers {
		fmt.Fprintf(buf, " %s |", cell(h))
	}
	fmt.Fprintf(buf, "\n|")
	for range headers {
		fmt.Fprintf(buf, "---|")
	}
	fmt.Fprintf(buf, "\n")
	for _, row := range rows {
		fmt.Fprintf(buf, "|")
		for i := range headers {
			var c string
			if i < len(row) {
				c = row[i]
			}
			fmt.Fprintf(buf, " %s |", cell(c))
		}
		fmt.Fprintf(buf, "\n")
	}
	fmt.Fprintf(buf, "\n")
}

// RenderInsights writes an analysis as JSON or Markdown
func (r *Reporter) RenderInsights(in *models.Insights, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal insights: %w", err)
		}
		return string(data), nil
	case FormatMarkdown:
		return r.insightsMarkdown(in), nil
	}
	return "", fmt.Errorf("%w for insights: %s", ErrUnsupportedFormat, format)
}

func (r *Reporter) insightsMarkdown(in *models.Insights) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Análise %s\n\n", in.Period)
	fmt.Fprintf(&buf, "*Gerada em %s*\n\n", in.GeneratedAt.Format("02/01/2006"))

	fmt.Fprintf(&buf, "## Resumo executivo\n\n")
	fmt.Fprintf(&buf, "**Nota geral:** %s (%.0f/100)\n\n",
		in.ExecutiveSummary.OverallGrade,
		in.ExecutiveSummary.OverallScore)

	if in.HasComparison {
		fmt.Fprintf(&buf, "### Pontuação\n\n")
		fmt.Fprintf(&buf, "| Métrica | Pontuação |\n")
		fmt.Fprintf(&buf, "|---------|-----------|\n")
		fmt.Fprintf(&buf, "| Cliques | %.0f |\n", in.Scores.Clicks)
		fmt.Fprintf(&buf, "| Impressões | %.0f |\n", in.Scores.Impressions)
		fmt.Fprintf(&buf, "| CTR | %.0f |\n", in.Scores.CTR)
		fmt.Fprintf(&buf, "| Posição | %.0f |\n", in.Scores.Position)
		fmt.Fprintf(&buf, "| **Geral** | **%.0f** |\n\n", in.Scores.Overall)
	}

	if len(in.ExecutiveSummary.Strengths) > 0 {
		fmt.Fprintf(&buf, "### Pontos fortes\n\n")
		for _, strength := range in.ExecutiveSummary.Strengths {
			fmt.Fprintf(&buf, "- %s\n", strength)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(in.ExecutiveSummary.Weaknesses) > 0 {
		fmt.Fprintf(&buf, "### Pontos de atenção\n\n")
		for _, weakness := range in.ExecutiveSummary.Weaknesses {
			fmt.Fprintf(&buf, "- %s\n", weakness)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(in.KeyFindings) > 0 {
		fmt.Fprintf(&buf, "## Principais achados\n\n")
		for _, finding := range in.KeyFindings {
			fmt.Fprintf(&buf, "### %s\n", finding.Type)
			fmt.Fprintf(&buf, "- **Categoria:** %s\n", finding.Category)
			fmt.Fprintf(&buf, "- **Severidade:** %s\n", finding.Severity)
			fmt.Fprintf(&buf, "- **Descrição:** %s\n", finding.Description)
			if finding.Details != "" {
				fmt.Fprintf(&buf, "- **Detalhes:** %s\n", finding.Details)
			}
			fmt.Fprintf(&buf, "\n")
		}
	}

	if len(in.Recommendations) > 0 {
		fmt.Fprintf(&buf, "## Recomendações\n\n")
		for i, rec := range in.Recommendations {
			fmt.Fprintf(&buf, "### %d. %s\n", i+1, rec.Action)
			fmt.Fprintf(&buf, "- **Prioridade:** %s\n", rec.Priority)
			fmt.Fprintf(&buf, "- **Categoria:** %s\n", rec.Category)
			fmt.Fprintf(&buf, "- **Impacto:** %s\n", rec.Impact)
			fmt.Fprintf(&buf, "- **Esforço:** %s\n", rec.Effort)
			fmt.Fprintf(&buf, "- **Descrição:** %s\n", rec.Description)
			fmt.Fprintf(&buf, "\n")
		}
	}

	if in.Paragraph != "" {
		fmt.Fprintf(&buf, "## Análise\n\n%s\n", in.Paragraph)
	}

	return buf.String()
}
