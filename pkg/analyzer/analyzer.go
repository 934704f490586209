package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

// Finding types
const (
	FindingClicksUp        = "Clicks Growth"
	FindingClicksDown      = "Clicks Decline"
	FindingImpressionsDown = "Impressions Decline"
	FindingCTRDrop         = "CTR Drop"
	FindingPositionDrop    = "Position Decline"
	FindingZeroClick       = "Zero-Click Queries"
	FindingConcentration   = "Traffic Concentration"
)

// NoGrade is the grade of a period without a comparison
const NoGrade = "N/A"

// Analyzer grades a reconciled period and explains it
type Analyzer struct {
	config *Config
}

// Config holds analyzer configuration
type Config struct {
	// Weights of each metric in the overall score; they should sum to 1
	ClicksWeight      float64
	ImpressionsWeight float64
	CTRWeight         float64
	PositionWeight    float64
	// ConcentrationShare flags a top query holding more than this share of clicks
	ConcentrationShare float64
	// Now stamps GeneratedAt; nil means time.Now
	Now func() time.Time
}

// New creates a new Analyzer instance
func New() *Analyzer {
	return &Analyzer{
		config: &Config{
			ClicksWeight:       0.35,
			ImpressionsWeight:  0.2,
			CTRWeight:          0.2,
			PositionWeight:     0.25,
			ConcentrationShare: 0.5,
		},
	}
}

// NewWithConfig creates an Analyzer with custom configuration
func NewWithConfig(config *Config) *Analyzer {
	return &Analyzer{config: config}
}

// Analyze scores the deltas of a reconciled result and derives findings,
// recommendations and a short pt-BR paragraph
func (a *Analyzer) Analyze(res *models.ReconciledResult) (*models.Insights, error) {
	if res == nil || res.Current == nil {
		return nil, errors.New("analyze: reconciled result is empty")
	}
	now := time.Now
	if a.config.Now != nil {
		now = a.config.Now
	}

	insights := &models.Insights{
		Period:        res.Current.Period(),
		GeneratedAt:   now(),
		HasComparison: res.Previous != nil || res.Deltas != (models.Deltas{}),
		DataSources:   res.Sources,
	}

	insights.Scores = a.score(res.Deltas)
	insights.KeyFindings = a.generateFindings(res)
	insights.Recommendations = a.generateRecommendations(insights.KeyFindings)
	insights.ExecutiveSummary = a.generateExecutiveSummary(insights)
	insights.Paragraph = paragraph(res, insights)
	return insights, nil
}

// metricScore maps a delta to 0..100: flat is 50, ±100% or more saturates
func metricScore(delta float64) float64 {
	d := math.Max(-100, math.Min(100, delta))
	return 50 + d/2
}

func (a *Analyzer) score(d models.Deltas) models.OverallScores {
	s := models.OverallScores{
		Clicks:      metricScore(d.Clicks),
		Impressions: metricScore(d.Impressions),
		CTR:         metricScore(d.CTR),
		Position:    metricScore(d.Position),
	}
	s.Overall = s.Clicks*a.config.ClicksWeight +
		s.Impressions*a.config.ImpressionsWeight +
		s.CTR*a.config.CTRWeight +
		s.Position*a.config.PositionWeight
	return s
}

func severity(drop float64) string {
	switch {
	case drop >= 20:
		return "high"
	case drop >= 5:
		return "medium"
	}
	return "low"
}

// generateFindings lists what changed and what stands out in the keywords
func (a *Analyzer) generateFindings(res *models.ReconciledResult) []models.Finding {
	findings := []models.Finding{}
	d := res.Deltas
	cur := res.Current

	switch {
	case d.Clicks > 0:
		findings = append(findings, models.Finding{
			Category:    "Traffic",
			Type:        FindingClicksUp,
			Description: fmt.Sprintf("Cliques cresceram %s%%", pct(d.Clicks)),
			Severity:    "low",
		})
	case d.Clicks < 0:
		findings = append(findings, models.Finding{
			Category:    "Traffic",
			Type:        FindingClicksDown,
			Description: fmt.Sprintf("Cliques caíram %s%%", pct(-d.Clicks)),
			Severity:    severity(-d.Clicks),
		})
	}

	if d.Impressions < 0 {
		findings = append(findings, models.Finding{
			Category:    "Visibility",
			Type:        FindingImpressionsDown,
			Description: fmt.Sprintf("Impressões caíram %s%%", pct(-d.Impressions)),
			Severity:    severity(-d.Impressions),
		})
	}

	if d.CTR < 0 {
		sev := severity(-d.CTR)
		if d.Impressions > 0 && sev == "low" {
			sev = "medium"
		}
		findings = append(findings, models.Finding{
			Category:    "Snippets",
			Type:        FindingCTRDrop,
			Description: fmt.Sprintf("CTR médio caiu %s%%", pct(-d.CTR)),
			Severity:    sev,
		})
	}

	if d.Position < 0 {
		findings = append(findings, models.Finding{
			Category:    "Rankings",
			Type:        FindingPositionDrop,
			Description: fmt.Sprintf("Posição média piorou %s%%", pct(-d.Position)),
			Severity:    severity(-d.Position),
		})
	}

	zero := 0
	for _, k := range cur.Keywords {
		if k.Clicks == 0 && k.Impressions > 0 {
			zero++
		}
	}
	if zero > 0 {
		findings = append(findings, models.Finding{
			Category:    "Snippets",
			Type:        FindingZeroClick,
			Description: fmt.Sprintf("%d consultas com impressões e nenhum clique", zero),
			Severity:    "medium",
		})
	}

	if top, share := topShare(cur.Keywords); share > a.config.ConcentrationShare {
		findings = append(findings, models.Finding{
			Category:    "Traffic",
			Type:        FindingConcentration,
			Description: fmt.Sprintf("A consulta %q concentra %s%% dos cliques", top, pct(share*100)),
			Severity:    "medium",
		})
	}

	return findings
}

func topShare(keywords []models.KeywordRecord) (string, float64) {
	var total, best float64
	var name string
	for _, k := range keywords {
		total += k.Clicks
		if k.Clicks > best {
			best, name = k.Clicks, k.Keyword
		}
	}
	if total == 0 || len(keywords) < 2 {
		return "", 0
	}
	return name, best / total
}

// generateRecommendations creates actionable recommendations based on findings
func (a *Analyzer) generateRecommendations(findings []models.Finding) []models.Recommendation {
	recommendations := []models.Recommendation{}

	// Sort findings by severity
	severityOrder := map[string]int{"critical": 0, "high": 1, "medium": 2, "low": 3}
	sort.SliceStable(findings, func(i, j int) bool {
		return severityOrder[findings[i].Severity] < severityOrder[findings[j].Severity]
	})

	for _, finding := range findings {
		var rec models.Recommendation

		switch finding.Type {
		case FindingClicksDown, FindingImpressionsDown:
			rec = models.Recommendation{
				Priority:    "high",
				Category:    "Content",
				Action:      "Revisar páginas que perderam tráfego",
				Impact:      "high",
				Effort:      "medium",
				Description: "Atualizar o conteúdo das páginas com maior queda e reforçar os links internos para elas",
			}
		case FindingCTRDrop, FindingZeroClick:
			rec = models.Recommendation{
				Priority:    "high",
				Category:    "Snippets",
				Action:      "Otimizar títulos e meta descriptions",
				Impact:      "high",
				Effort:      "low",
				Description: "Reescrever title e meta description das consultas com impressões e poucos cliques",
			}
		case FindingPositionDrop:
			rec = models.Recommendation{
				Priority:    "critical",
				Category:    "Rankings",
				Action:      "Recuperar posições perdidas",
				Impact:      "high",
				Effort:      "medium",
				Description: "Comparar as páginas que caíram com os concorrentes e ampliar a cobertura do tema",
			}
		case FindingConcentration:
			rec = models.Recommendation{
				Priority:    "medium",
				Category:    "Content",
				Action:      "Diversificar as consultas",
				Impact:      "medium",
				Effort:      "medium",
				Description: "Produzir conteúdo para consultas relacionadas e reduzir a dependência de um único termo",
			}
		default:
			continue
		}

		if !hasAction(recommendations, rec.Action) {
			recommendations = append(recommendations, rec)
		}
	}

	return recommendations
}

func hasAction(recs []models.Recommendation, action string) bool {
	for _, r := range recs {
		if r.Action == action {
			return true
		}
	}
	return false
}

// generateExecutiveSummary creates a high-level summary
func (a *Analyzer) generateExecutiveSummary(in *models.Insights) models.ExecutiveSummary {
	summary := models.ExecutiveSummary{
		OverallScore: in.Scores.Overall,
	}

	// Determine grade
	switch {
	case !in.HasComparison:
		summary.OverallGrade = NoGrade
	case summary.OverallScore >= 70:
		summary.OverallGrade = "A"
	case summary.OverallScore >= 60:
		summary.OverallGrade = "B"
	case summary.OverallScore >= 50:
		summary.OverallGrade = "C"
	case summary.OverallScore >= 40:
		summary.OverallGrade = "D"
	default:
		summary.OverallGrade = "F"
	}

	if in.HasComparison {
		labels := []struct {
			score    float64
			strength string
			weakness string
		}{
			{in.Scores.Clicks, "Crescimento de cliques", "Queda de cliques"},
			{in.Scores.Impressions, "Mais visibilidade nas buscas", "Menos impressões"},
			{in.Scores.CTR, "CTR em alta", "CTR em queda"},
			{in.Scores.Position, "Melhora no posicionamento", "Piora no posicionamento"},
		}
		for _, l := range labels {
			switch {
			case l.score >= 55:
				summary.Strengths = append(summary.Strengths, l.strength)
			case l.score <= 45:
				summary.Weaknesses = append(summary.Weaknesses, l.weakness)
			}
		}
	}

	// Top priorities
	for i, rec := range in.Recommendations {
		if i >= 3 {
			break
		}
		summary.TopPriorities = append(summary.TopPriorities, rec.Action)
	}

	// Estimated impact
	if len(in.Recommendations) > 0 {
		highPriority := 0
		for _, rec := range in.Recommendations {
			if rec.Priority == "critical" || rec.Priority == "high" {
				highPriority++
			}
		}
		if highPriority >= 2 {
			summary.EstimatedImpact = "Ganhos relevantes possíveis com um plano focado"
		} else {
			summary.EstimatedImpact = "Melhorias pontuais com otimizações direcionadas"
		}
	}

	return summary
}

// paragraph writes the analysis text used when no AI analysis is available
func paragraph(res *models.ReconciledResult, in *models.Insights) string {
	cur := res.Current
	var b strings.Builder

	if in.Period != "" {
		fmt.Fprintf(&b, "No período de %s, ", in.Period)
	} else {
		b.WriteString("No período analisado, ")
	}
	fmt.Fprintf(&b, "o site registrou %s cliques e %s impressões, com CTR médio de %s e posição média de %s.",
		extractor.FormatCount(cur.Totals.TotalClicks),
		extractor.FormatCount(cur.Totals.TotalImpressions),
		extractor.FormatPercent(cur.Totals.AvgCTR),
		extractor.FormatPosition(cur.Totals.AvgPosition))

	if in.HasComparison {
		d := res.Deltas
		fmt.Fprintf(&b, " Em relação ao período de comparação, os cliques %s, as impressões %s e a posição média %s.",
			direction(d.Clicks), direction(d.Impressions), positionDirection(d.Position))
	}

	if len(in.ExecutiveSummary.TopPriorities) > 0 {
		fmt.Fprintf(&b, " Prioridade para o próximo ciclo: %s.",
			strings.ToLower(in.ExecutiveSummary.TopPriorities[0]))
	}
	return b.String()
}

func direction(delta float64) string {
	switch {
	case delta > 0:
		return "cresceram " + pct(delta) + "%"
	case delta < 0:
		return "caíram " + pct(-delta) + "%"
	}
	return "ficaram estáveis"
}

func positionDirection(delta float64) string {
	switch {
	case delta > 0:
		return "melhorou " + pct(delta) + "%"
	case delta < 0:
		return "piorou " + pct(-delta) + "%"
	}
	return "ficou estável"
}

// pct formats a percentage magnitude with a decimal comma
func pct(v float64) string {
	return strings.Replace(fmt.Sprintf("%.1f", v), ".", ",", 1)
}
