package models

// SectionType is the closed set of section kinds a report can hold
type SectionType string

const (
	SectionHeader             SectionType = "header"
	SectionSummary            SectionType = "summary"
	SectionMetrics            SectionType = "metrics"
	SectionChart              SectionType = "chart"
	SectionTable              SectionType = "table"
	SectionImage              SectionType = "image"
	SectionText               SectionType = "text"
	SectionFooter             SectionType = "footer"
	SectionMetaSEO            SectionType = "metaSEO"
	SectionKPIGrid            SectionType = "kpiGrid"
	SectionGainsLosses        SectionType = "gainsLosses"
	SectionAnalysis           SectionType = "analysis"
	SectionCompetitorAnalysis SectionType = "competitorAnalysis"
	SectionStatusCards        SectionType = "statusCards"
	SectionActions            SectionType = "actions"
)

// SectionTypes lists every valid section type
var SectionTypes = []SectionType{
	SectionHeader, SectionSummary, SectionMetrics, SectionChart, SectionTable,
	SectionImage, SectionText, SectionFooter, SectionMetaSEO, SectionKPIGrid,
	SectionGainsLosses, SectionAnalysis, SectionCompetitorAnalysis,
	SectionStatusCards, SectionActions,
}

// Valid reports whether t is one of the known section types
func (t SectionType) Valid() bool {
	for _, st := range SectionTypes {
		if st == t {
			return true
		}
	}
	return false
}

// ReportSection is one typed, orderable block of report content
type ReportSection struct {
	ID      string            `json:"id"`
	Type    SectionType       `json:"type"`
	Title   string            `json:"title,omitempty"`
	Visible bool              `json:"visible"`
	Order   int               `json:"order"`
	Data    map[string]any    `json:"data"`
	Style   map[string]string `json:"style,omitempty"`
}

// Colors is the report theme
type Colors struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Text       string `json:"text" yaml:"text"`
	Background string `json:"background" yaml:"background"`
}

// ReportImage is an image attached to a report
type ReportImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// Metadata tracks authorship and timestamps (RFC 3339 strings)
type Metadata struct {
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	CreatedBy string `json:"createdBy"`
}

// ReportDocument is a complete client report
type ReportDocument struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	ClientName string          `json:"clientName"`
	Period     string          `json:"period"`
	Logo       string          `json:"logo,omitempty"`
	HasBlog    bool            `json:"hasBlog,omitempty"`
	Colors     Colors          `json:"colors"`
	Sections   []ReportSection `json:"sections"`
	Images     []ReportImage   `json:"images"`
	Metadata   Metadata        `json:"metadata"`
}

// LastTouched returns updatedAt, falling back to createdAt
func (d *ReportDocument) LastTouched() string {
	if d.Metadata.UpdatedAt != "" {
		return d.Metadata.UpdatedAt
	}
	return d.Metadata.CreatedAt
}
