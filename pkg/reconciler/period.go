package reconciler

import (
	"regexp"
	"strings"
	"time"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// DateLayout is the dd/mm/yyyy layout used in every period label
const DateLayout = "02/01/2006"

var periodDateRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String formats the range as "dd/mm/yyyy a dd/mm/yyyy"
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " a " + r.End.Format(DateLayout)
}

// Contains reports whether o lies entirely inside r
func (r DateRange) Contains(o DateRange) bool {
	return !o.Start.Before(r.Start) && !o.End.After(r.End)
}

// Near reports whether both endpoints of o are within tol of those of r
func (r DateRange) Near(o DateRange, tol time.Duration) bool {
	return absDuration(o.Start.Sub(r.Start)) <= tol && absDuration(o.End.Sub(r.End)) <= tol
}

// NewDateRange parses two dd/mm/yyyy dates. The endpoints are swapped when
// given in reverse.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, normalizeDate(start))
	if err != nil {
		return DateRange{}, err
	}
	e, err := time.Parse(DateLayout, normalizeDate(end))
	if err != nil {
		return DateRange{}, err
	}
	if e.Before(s) {
		s, e = e, s
	}
	return DateRange{Start: s, End: e}, nil
}

// ParsePeriod finds the dd/mm/yyyy dates in text; the first and the last
// one define the range. Fewer than two valid dates yields false.
func ParsePeriod(text string) (DateRange, bool) {
	var dates []time.Time
	for _, m := range periodDateRe.FindAllString(text, -1) {
		t, err := time.Parse(DateLayout, normalizeDate(m))
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	if len(dates) < 2 {
		return DateRange{}, false
	}
	r := DateRange{Start: dates[0], End: dates[len(dates)-1]}
	if r.End.Before(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	return r, true
}

// PeriodOf reads the period of a result from its period text, then from the
// raw header lines.
func PeriodOf(res *models.ExtractionResult) (DateRange, bool) {
	if res == nil {
		return DateRange{}, false
	}
	if r, ok := ParsePeriod(res.Header.Period); ok {
		return r, true
	}
	return ParsePeriod(strings.Join(res.Header.RawLines, "\n"))
}

// PreviousYear moves both endpoints one year back
func PreviousYear(r DateRange) DateRange {
	return DateRange{Start: r.Start.AddDate(-1, 0, 0), End: r.End.AddDate(-1, 0, 0)}
}

// normalizeDate pads d/m/yyyy to dd/mm/yyyy
func normalizeDate(s string) string {
	m := periodDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	return pad(m[1]) + "/" + pad(m[2]) + "/" + m[3]
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
