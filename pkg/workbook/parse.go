package workbook

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/columns"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

// Options tunes Parse
type Options struct {
	// FileName is recorded as the source and mined for period dates
	FileName string
	TopN     int
	// Chain resolves keyword sheet columns; nil means columns.DefaultChain
	Chain  columns.Chain
	Logger logrus.FieldLogger
}

// Parse turns a workbook into one or more extraction results. The layout
// decides how:
//   - a summary sheet next to a keyword sheet yields the analysed period and
//     the comparison period, with totals taken from the summary;
//   - a keyword sheet with side-by-side period columns yields both periods;
//   - a single sheet holding several periods named in the file name yields
//     one result per period section;
//   - anything else is one result read through the column chain.
func Parse(wb *Workbook, opts Options) ([]*models.ExtractionResult, error) {
	if wb == nil || wb.empty() {
		return nil, ErrEmptyWorkbook
	}
	if opts.Chain == nil {
		opts.Chain = columns.DefaultChain()
	}
	if opts.TopN <= 0 {
		opts.TopN = extractor.DefaultTopN
	}
	p := &parser{
		opts:    opts,
		log:     logger.OrNop(opts.Logger).WithField("file", opts.FileName),
		periods: PeriodFromFileName(opts.FileName),
	}

	summary := wb.summarySheet()
	sheet := wb.keywordSheet(summary)
	if sheet == nil {
		// a lone sheet named like a summary is still read as keywords
		sheet, summary = summary, nil
	}
	if sheet == nil {
		return nil, ErrEmptyWorkbook
	}

	if summary != nil {
		return p.withSummary(summary, sheet)
	}
	if results, ok := p.sideBySide(sheet, nil); ok {
		return results, nil
	}
	if len(p.periods) >= 2 {
		return p.sections(sheet)
	}

	res, err := p.single(sheet.Name, sheet.Rows, p.period(0))
	if err != nil {
		return nil, err
	}
	return []*models.ExtractionResult{res}, nil
}

type parser struct {
	opts    Options
	log     logrus.FieldLogger
	periods []string
}

func (p *parser) period(i int) string {
	if i < len(p.periods) {
		return p.periods[i]
	}
	return ""
}

func (p *parser) single(sheetName string, rows [][]string, period string) (*models.ExtractionResult, error) {
	m, strategy := p.opts.Chain.Resolve(rows)
	log := p.log.WithFields(logrus.Fields{
		"sheet":      sheetName,
		"strategy":   strategy,
		"confidence": m.Confidence.String(),
	})
	if m.Confidence == columns.ConfidenceGuess {
		log.Warn("Column roles guessed from numeric magnitude, check the extracted values")
	} else {
		log.Debug("Columns mapped")
	}

	res, err := extractor.Extract(rows, m, extractor.Options{
		Source: p.opts.FileName,
		Period: period,
		TopN:   p.opts.TopN,
	})
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}
	log.WithField("keywords", len(res.Keywords)).Debug("Sheet extracted")
	return res, nil
}

func (p *parser) withSummary(summary, sheet *Sheet) ([]*models.ExtractionResult, error) {
	cur, prev, err := extractor.ParseSummary(summary.Rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", summary.Name, err)
	}
	if cur.Label == "" {
		cur.Label = p.period(0)
	}
	if prev.Label == "" {
		prev.Label = p.period(1)
	}
	totals := [2]extractor.PeriodTotals{cur, prev}

	if results, ok := p.sideBySide(sheet, &totals); ok {
		return results, nil
	}

	// single-period keyword sheet: keywords belong to the analysed period
	m, _ := p.opts.Chain.Resolve(sheet.Rows)
	if err := columns.Require(m); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
	}
	keywords := extractor.Keywords(sheet.Rows, m)
	return []*models.ExtractionResult{
		p.fromSummary(cur, keywords, extractor.TopGainsLosses(keywords, p.opts.TopN), models.HintCurrent, sheet.Rows),
		p.fromSummary(prev, nil, nil, models.HintPrevious, sheet.Rows),
	}, nil
}

// sideBySide handles a keyword sheet with analysed and comparison columns
func (p *parser) sideBySide(sheet *Sheet, summary *[2]extractor.PeriodTotals) ([]*models.ExtractionResult, bool) {
	headerRow := columns.FindHeaderRow(sheet.Rows, columns.HeaderScanLimit)
	if headerRow < 0 {
		return nil, false
	}
	cm, ok := extractor.MapComparisonHeader(sheet.Rows[headerRow])
	if !ok {
		return nil, false
	}

	comp := extractor.ExtractComparison(sheet.Rows, headerRow, cm, summary, p.opts.TopN)
	p.log.WithFields(logrus.Fields{
		"sheet":    sheet.Name,
		"keywords": len(comp.Current),
	}).Debug("Side-by-side keyword sheet extracted")

	var cur, prev extractor.PeriodTotals
	if summary != nil {
		cur, prev = summary[0], summary[1]
	} else {
		cur = extractor.PeriodTotals{Label: p.period(0), Totals: extractor.Aggregate(comp.Current)}
		prev = extractor.PeriodTotals{Label: p.period(1), Totals: extractor.Aggregate(comp.Previous)}
	}
	return []*models.ExtractionResult{
		p.fromSummary(cur, comp.Current, comp.GainsLosses, models.HintCurrent, sheet.Rows),
		p.fromSummary(prev, comp.Previous, nil, models.HintPrevious, sheet.Rows),
	}, true
}

// sections reads each period section on its own. A section that cannot be
// read is skipped with a warning; the sheet fails only when none can.
func (p *parser) sections(sheet *Sheet) ([]*models.ExtractionResult, error) {
	var results []*models.ExtractionResult
	var firstErr error
	for _, sec := range splitByPeriod(sheet.Rows, p.periods) {
		res, err := p.single(sheet.Name, sec.rows, sec.label)
		if err != nil {
			p.log.WithError(err).WithField("period", sec.label).Warn("Skipping unreadable period section")
			if firstErr == nil {
				firstErr = fmt.Errorf("period %s: %w", sec.label, err)
			}
			continue
		}
		res.Header.Period = sec.label
		results = append(results, res)
	}
	if len(results) == 0 {
		return nil, firstErr
	}
	return results, nil
}

func (p *parser) fromSummary(pt extractor.PeriodTotals, keywords []models.KeywordRecord, gl []models.GainsLosses, hint models.PeriodHint, raw [][]string) *models.ExtractionResult {
	if keywords == nil {
		keywords = []models.KeywordRecord{}
	}
	totals := pt.Totals
	totals.KeywordCount = len(keywords)

	return &models.ExtractionResult{
		Source:      p.opts.FileName,
		Metrics:     extractor.Metrics(totals, models.Deltas{}),
		Keywords:    keywords,
		GainsLosses: gl,
		Totals:      totals,
		Filter:      models.Filter{Type: models.FilterAll, DetectedFrom: "Arquivo padrão"},
		Header: models.HeaderInfo{
			Period:      pt.Label,
			Clicks:      extractor.FormatCount(totals.TotalClicks),
			Impressions: extractor.FormatCount(totals.TotalImpressions),
			CTR:         extractor.FormatPercent(totals.AvgCTR),
			Position:    extractor.FormatPosition(totals.AvgPosition),
			RawLines: []string{
				"Período: " + pt.Label,
				"Cliques: " + extractor.FormatCount(totals.TotalClicks),
				"Impressões: " + extractor.FormatCount(totals.TotalImpressions),
			},
		},
		PeriodHint: hint,
		Raw:        raw,
	}
}
