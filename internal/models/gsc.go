package models

// Canonical metric labels, in the order they appear in every ExtractionResult.
const (
	MetricClicks      = "Cliques"
	MetricImpressions = "Impressões"
	MetricPosition    = "Posição média"
	MetricCTR         = "CTR médio"
)

// MetricOrder lists the canonical metric labels in display order
var MetricOrder = []string{MetricClicks, MetricImpressions, MetricPosition, MetricCTR}

// Metric indices into ExtractionResult.Metrics
const (
	IdxClicks = iota
	IdxImpressions
	IdxPosition
	IdxCTR
)

// FilterType classifies which part of a site an export covers
type FilterType string

const (
	FilterSite FilterType = "site"
	FilterBlog FilterType = "blog"
	FilterAll  FilterType = "all"
)

// PeriodHint tells the reconciler which period a result belongs to when the
// source itself says so, as in a summary sheet with a comparison row.
type PeriodHint string

const (
	HintNone     PeriodHint = ""
	HintCurrent  PeriodHint = "current"
	HintPrevious PeriodHint = "previous"
)

// KeywordRecord holds the search metrics of one query
type KeywordRecord struct {
	Keyword     string  `json:"keyword"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// PageRecord holds the search metrics of one landing page
type PageRecord struct {
	URL         string  `json:"url"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// Metric is one headline figure with its period-over-period change
type Metric struct {
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Change float64 `json:"change"`
}

// Totals are the numeric aggregates behind the formatted metrics
type Totals struct {
	TotalClicks      float64 `json:"totalClicks"`
	TotalImpressions float64 `json:"totalImpressions"`
	AvgCTR           float64 `json:"avgCTR"`
	AvgPosition      float64 `json:"avgPosition"`
	KeywordCount     int     `json:"keywordCount"`
}

// GainLossItem is one keyword entry of a gains or losses list
type GainLossItem struct {
	Keyword    string `json:"keyword"`
	Change     string `json:"change"`
	ChangeType string `json:"changeType"` // "increase" or "decrease"
	URL        string `json:"url,omitempty"`
}

// GainsLosses is a titled keyword list
type GainsLosses struct {
	Title string         `json:"title"`
	Items []GainLossItem `json:"items"`
}

// Filter records the detected site/blog classification
type Filter struct {
	Type         FilterType `json:"type"`
	DetectedFrom string     `json:"detectedFrom,omitempty"`
}

// HeaderInfo keeps the descriptive lines found above a data table
type HeaderInfo struct {
	Period      string   `json:"period,omitempty"`
	Clicks      string   `json:"clicks,omitempty"`
	Impressions string   `json:"impressions,omitempty"`
	CTR         string   `json:"ctr,omitempty"`
	Position    string   `json:"position,omitempty"`
	RawLines    []string `json:"rawLines,omitempty"`
}

// ExtractionResult is the normalized output of one input file (or one
// period of a multi-period file). It is not mutated once produced.
type ExtractionResult struct {
	Source      string          `json:"source,omitempty"`
	Metrics     []Metric        `json:"metrics"`
	Keywords    []KeywordRecord `json:"keywords"`
	Pages       []PageRecord    `json:"pages,omitempty"`
	GainsLosses []GainsLosses   `json:"gainsLosses,omitempty"`
	Totals      Totals          `json:"rawData"`
	Filter      Filter          `json:"filters"`
	Header      HeaderInfo      `json:"headerInfo"`
	PeriodHint  PeriodHint      `json:"periodHint,omitempty"`

	// Raw is the grid the result was read from, when there was one.
	Raw [][]string `json:"-"`
}

// Period returns the best available period text of the result
func (r *ExtractionResult) Period() string {
	if r == nil {
		return ""
	}
	return r.Header.Period
}

// Deltas are percentage changes where positive always means better
type Deltas struct {
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// PeriodComparison describes the ranges used to classify the inputs
type PeriodComparison struct {
	HasComparison bool   `json:"hasComparison"`
	CurrentStart  string `json:"currentStart,omitempty"`
	CurrentEnd    string `json:"currentEnd,omitempty"`
	PreviousStart string `json:"previousStart,omitempty"`
	PreviousEnd   string `json:"previousEnd,omitempty"`
}

// ReconciledResult combines every input into a current/previous comparison
type ReconciledResult struct {
	Current    *ExtractionResult `json:"current"`
	Previous   *ExtractionResult `json:"previousYearData,omitempty"`
	Deltas     Deltas            `json:"deltas"`
	Comparison *PeriodComparison `json:"periodComparison,omitempty"`
	Sources    []string          `json:"sources,omitempty"`
}
