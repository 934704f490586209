package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
	"github.com/amosWeiskopf/reportsmith/pkg/utils"
)

// ErrInvalidResponse is returned when the model reply lacks the metrics,
// keywords or pages tables
var ErrInvalidResponse = errors.New("invalid extraction response")

// DefaultPeriod labels a PDF whose text names no date range
const DefaultPeriod = "Período do PDF"

// maxTextChars bounds the PDF text sent to the model
const maxTextChars = 60000

var dateRe = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)

// FieldExtractor turns free text into an extraction result
type FieldExtractor interface {
	Extract(ctx context.Context, text, fileName string) (*models.ExtractionResult, error)
}

// Agent extracts Search Console figures from PDF text with a language model
type Agent struct {
	completer Completer
	topN      int
	log       logrus.FieldLogger
}

var _ FieldExtractor = (*Agent)(nil)

// New creates an Agent. A nil logger discards output.
func New(c Completer, topN int, log logrus.FieldLogger) *Agent {
	if topN <= 0 {
		topN = extractor.DefaultTopN
	}
	return &Agent{completer: c, topN: topN, log: logger.OrNop(log)}
}

type metricValue struct {
	Current  *float64 `json:"current"`
	Previous *float64 `json:"previous"`
	Change   *float64 `json:"change"`
}

type tableRow struct {
	Keyword         string   `json:"keyword"`
	URL             string   `json:"url"`
	Clicks          float64  `json:"clicks"`
	Impressions     float64  `json:"impressions"`
	CTR             float64  `json:"ctr"`
	Position        float64  `json:"position"`
	ClicksDiff      *float64 `json:"clicksDiff"`
	ImpressionsDiff *float64 `json:"impressionsDiff"`
	PositionDiff    *float64 `json:"positionDiff"`
}

type reply struct {
	Metrics *struct {
		Clicks      metricValue `json:"clicks"`
		Impressions metricValue `json:"impressions"`
		CTR         metricValue `json:"ctr"`
		Position    metricValue `json:"position"`
	} `json:"metrics"`
	Keywords *[]tableRow `json:"keywords"`
	Pages    *[]tableRow `json:"pages"`
}

func (r *reply) validate() error {
	var missing []string
	if r.Metrics == nil {
		missing = append(missing, "metrics")
	}
	if r.Keywords == nil {
		missing = append(missing, "keywords")
	}
	if r.Pages == nil {
		missing = append(missing, "pages")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidResponse, strings.Join(missing, ", "))
	}
	return nil
}

// Extract sends the PDF text to the model and converts the reply
func (a *Agent) Extract(ctx context.Context, text, fileName string) (*models.ExtractionResult, error) {
	log := a.log.WithField("file", fileName)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: no text to extract", fileName)
	}
	if truncated := utils.TruncateText(text, maxTextChars); truncated != text {
		log.WithField("chars", len(text)).Warn("PDF text truncated before extraction")
		text = truncated
	}

	raw, err := a.completer.Complete(ctx, systemPrompt, fmt.Sprintf(userPromptTemplate, text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	var r reply
	if err := smartParse(raw, &r); err != nil {
		log.WithError(err).Debug("Unparseable model reply")
		return nil, fmt.Errorf("%s: %w: %v", fileName, ErrInvalidResponse, err)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	res := a.convert(&r, text, fileName)
	log.WithFields(logrus.Fields{
		"keywords": len(res.Keywords),
		"pages":    len(res.Pages),
	}).Info("PDF extracted")
	return res, nil
}

func (a *Agent) convert(r *reply, text, fileName string) *models.ExtractionResult {
	keywords := make([]models.KeywordRecord, 0, len(*r.Keywords))
	for _, row := range *r.Keywords {
		kw := strings.TrimSpace(row.Keyword)
		if kw == "" {
			continue
		}
		keywords = append(keywords, models.KeywordRecord{
			Keyword:     kw,
			Clicks:      row.Clicks,
			Impressions: row.Impressions,
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}
	pages := make([]models.PageRecord, 0, len(*r.Pages))
	for _, row := range *r.Pages {
		u := strings.TrimSpace(row.URL)
		if u == "" {
			continue
		}
		pages = append(pages, models.PageRecord{
			URL:         u,
			Clicks:      row.Clicks,
			Impressions: row.Impressions,
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}

	m := r.Metrics
	totals := models.Totals{
		TotalClicks:      value(m.Clicks.Current),
		TotalImpressions: value(m.Impressions.Current),
		AvgCTR:           value(m.CTR.Current),
		AvgPosition:      value(m.Position.Current),
		KeywordCount:     len(keywords),
	}
	deltas := models.Deltas{
		Clicks:      change(m.Clicks, false),
		Impressions: change(m.Impressions, false),
		CTR:         change(m.CTR, false),
		Position:    change(m.Position, true),
	}

	period := DefaultPeriod
	if dates := dateRe.FindAllString(text, 2); len(dates) == 2 {
		period = dates[0] + " a " + dates[1]
	}

	return &models.ExtractionResult{
		Source:      fileName,
		Metrics:     extractor.Metrics(totals, deltas),
		Keywords:    keywords,
		Pages:       pages,
		GainsLosses: diffGainsLosses(*r.Keywords, keywords, a.topN),
		Totals:      totals,
		Filter:      models.Filter{Type: models.FilterAll, DetectedFrom: "Arquivo PDF: " + fileName},
		Header: models.HeaderInfo{
			Period:      period,
			Clicks:      extractor.FormatCount(totals.TotalClicks),
			Impressions: extractor.FormatCount(totals.TotalImpressions),
			CTR:         extractor.FormatPercent(totals.AvgCTR),
			Position:    extractor.FormatPosition(totals.AvgPosition),
		},
	}
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// change prefers the reported change and otherwise derives it from the two
// period values. A falling position is an improvement.
func change(v metricValue, inverted bool) float64 {
	if v.Change != nil {
		return *v.Change
	}
	cur, prev := value(v.Current), value(v.Previous)
	if prev == 0 {
		return 0
	}
	d := (cur - prev) / prev * 100
	if inverted {
		d = -d
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// diffGainsLosses ranks keywords by their reported click difference. Without
// any differences in the reply it falls back to the single-period lists.
func diffGainsLosses(rows []tableRow, keywords []models.KeywordRecord, n int) []models.GainsLosses {
	type diff struct {
		keyword string
		value   float64
	}
	var ups, downs []diff
	for _, row := range rows {
		kw := strings.TrimSpace(row.Keyword)
		if kw == "" || row.ClicksDiff == nil {
			continue
		}
		switch d := *row.ClicksDiff; {
		case d > 0:
			ups = append(ups, diff{kw, d})
		case d < 0:
			downs = append(downs, diff{kw, d})
		}
	}
	if len(ups) == 0 && len(downs) == 0 {
		return extractor.TopGainsLosses(keywords, n)
	}

	sort.SliceStable(ups, func(i, j int) bool { return ups[i].value > ups[j].value })
	sort.SliceStable(downs, func(i, j int) bool { return downs[i].value < downs[j].value })

	gains := []models.GainLossItem{}
	for _, d := range ups {
		if len(gains) == n {
			break
		}
		gains = append(gains, models.GainLossItem{
			Keyword:    d.keyword,
			Change:     "+" + extractor.FormatCount(d.value) + " cliques",
			ChangeType: "increase",
		})
	}
	losses := []models.GainLossItem{}
	for _, d := range downs {
		if len(losses) == n {
			break
		}
		losses = append(losses, models.GainLossItem{
			Keyword:    d.keyword,
			Change:     "-" + extractor.FormatCount(-d.value) + " cliques",
			ChangeType: "decrease",
		})
	}
	return []models.GainsLosses{
		{Title: extractor.GainsTitle, Items: gains},
		{Title: extractor.LossesTitle, Items: losses},
	}
}
