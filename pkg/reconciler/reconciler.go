package reconciler

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

// ErrNoResults is returned when there is nothing to reconcile
var ErrNoResults = errors.New("no extraction results to reconcile")

// DefaultTolerance is how far period endpoints may drift from the target
const DefaultTolerance = 30 * 24 * time.Hour

// Bucket is the period a result was classified into
type Bucket int

const (
	BucketCurrent Bucket = iota
	BucketPrevious
)

func (b Bucket) String() string {
	if b == BucketPrevious {
		return "previous"
	}
	return "current"
}

// Classify places a result into the current or the previous-year bucket.
// Endpoints within tol of the target win first, then strict containment,
// then the result's own period hint. Anything left is current; a result is
// never dropped.
func Classify(res *models.ExtractionResult, target *DateRange, tol time.Duration) Bucket {
	fallback := BucketCurrent
	if res != nil && res.PeriodHint == models.HintPrevious {
		fallback = BucketPrevious
	}
	if target == nil {
		return fallback
	}
	r, ok := PeriodOf(res)
	if !ok {
		return fallback
	}

	prev := PreviousYear(*target)
	switch {
	case target.Near(r, tol):
		return BucketCurrent
	case prev.Near(r, tol):
		return BucketPrevious
	case target.Contains(r):
		return BucketCurrent
	case prev.Contains(r):
		return BucketPrevious
	}
	return fallback
}

// Options tunes Reconcile
type Options struct {
	// Target is the current period; nil infers it from the inputs
	Target *DateRange
	// Tolerance defaults to DefaultTolerance
	Tolerance time.Duration
	TopN      int
	Logger    logrus.FieldLogger
}

// Reconcile classifies every result, merges each bucket and computes the
// deltas of the current period against the previous one. The deltas are
// also written into the change fields of the current metrics. When nothing
// lands in the current bucket every result is treated as current.
func Reconcile(results []*models.ExtractionResult, opts Options) (*models.ReconciledResult, error) {
	var in []*models.ExtractionResult
	for _, r := range results {
		if r != nil {
			in = append(in, r)
		}
	}
	if len(in) == 0 {
		return nil, ErrNoResults
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	if opts.TopN <= 0 {
		opts.TopN = extractor.DefaultTopN
	}
	log := logger.OrNop(opts.Logger)

	target := opts.Target
	if target == nil {
		target = InferTarget(in)
	}

	var current, previous []*models.ExtractionResult
	for _, r := range in {
		b := Classify(r, target, opts.Tolerance)
		log.WithFields(logrus.Fields{
			"file":   r.Source,
			"period": r.Period(),
			"bucket": b.String(),
		}).Debug("Result classified")
		if b == BucketPrevious {
			previous = append(previous, r)
		} else {
			current = append(current, r)
		}
	}
	if len(current) == 0 {
		log.Warn("No result matched the current period, treating every file as current")
		current, previous = in, nil
	}

	out := &models.ReconciledResult{
		Current: merge(current, opts.TopN),
	}
	for _, r := range in {
		if r.Source != "" {
			out.Sources = append(out.Sources, r.Source)
		}
	}

	if len(previous) > 0 {
		out.Previous = merge(previous, opts.TopN)
		out.Deltas = Deltas(out.Current.Totals, out.Previous.Totals)
		out.Current.Metrics = extractor.Metrics(out.Current.Totals, out.Deltas)
	} else {
		// keep changes the source reported itself, as a PDF overview does
		out.Deltas = deltasFromMetrics(out.Current.Metrics)
	}
	out.Comparison = comparison(out, target)
	return out, nil
}

// InferTarget picks the latest-ending period among the results not marked
// as previous. It returns nil when no such result has a readable period.
func InferTarget(results []*models.ExtractionResult) *DateRange {
	var best *DateRange
	for _, r := range results {
		if r == nil || r.PeriodHint == models.HintPrevious {
			continue
		}
		p, ok := PeriodOf(r)
		if !ok {
			continue
		}
		if best == nil || p.End.After(best.End) {
			p := p
			best = &p
		}
	}
	return best
}

func comparison(out *models.ReconciledResult, target *DateRange) *models.PeriodComparison {
	pc := &models.PeriodComparison{HasComparison: out.Previous != nil}

	cur, ok := PeriodOf(out.Current)
	if target != nil {
		cur, ok = *target, true
	}
	if ok {
		pc.CurrentStart = cur.Start.Format(DateLayout)
		pc.CurrentEnd = cur.End.Format(DateLayout)
	}

	if out.Previous != nil {
		prev, ok := PeriodOf(out.Previous)
		if !ok && target != nil {
			prev, ok = PreviousYear(*target), true
		}
		if ok {
			pc.PreviousStart = prev.Start.Format(DateLayout)
			pc.PreviousEnd = prev.End.Format(DateLayout)
		}
	}
	return pc
}

func deltasFromMetrics(metrics []models.Metric) models.Deltas {
	var d models.Deltas
	for _, m := range metrics {
		switch m.Label {
		case models.MetricClicks:
			d.Clicks = m.Change
		case models.MetricImpressions:
			d.Impressions = m.Change
		case models.MetricCTR:
			d.CTR = m.Change
		case models.MetricPosition:
			d.Position = m.Change
		}
	}
	return d
}
