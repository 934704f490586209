package models

import "time"

// Insights is the deterministic analysis of a reconciled period
type Insights struct {
	ClientName       string           `json:"client_name,omitempty"`
	Period           string           `json:"period"`
	GeneratedAt      time.Time        `json:"generated_at"`
	HasComparison    bool             `json:"has_comparison"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	Scores           OverallScores    `json:"scores"`
	KeyFindings      []Finding        `json:"key_findings"`
	Recommendations  []Recommendation `json:"recommendations"`
	// Paragraph is a pt-BR summary suitable for the analysis section
	Paragraph   string   `json:"paragraph"`
	DataSources []string `json:"data_sources"`
}

// ExecutiveSummary provides high-level performance insights
type ExecutiveSummary struct {
	OverallGrade    string   `json:"overall_grade"`
	OverallScore    float64  `json:"overall_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	TopPriorities   []string `json:"top_priorities"`
	EstimatedImpact string   `json:"estimated_impact"`
}

// OverallScores rates each metric's change from 0 to 100, 50 being flat
type OverallScores struct {
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
	Overall     float64 `json:"overall"`
}

// Finding represents an observation about the period
type Finding struct {
	Category    string `json:"category"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Details     string `json:"details,omitempty"`
}

// Recommendation represents an actionable improvement
type Recommendation struct {
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Action      string `json:"action"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
	Description string `json:"description"`
}
