package report

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
)

var fixedNow = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func newDoc(t *testing.T, n int, opts ...Option) *Document {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithIDs(seqIDs())}, opts...)
	d := Wrap(&models.ReportDocument{ID: "r1"}, opts...)
	for i := 0; i < n; i++ {
		_, err := d.Add(models.SectionText, fmt.Sprintf("T%d", i))
		require.NoError(t, err)
	}
	return d
}

func orders(d *Document) map[string]int {
	out := map[string]int{}
	for _, s := range d.Doc().Sections {
		out[s.ID] = s.Order
	}
	return out
}

func TestAdd(t *testing.T) {
	d := newDoc(t, 3)
	assert.Equal(t, map[string]int{"s1": 0, "s2": 1, "s3": 2}, orders(d))
	assert.True(t, d.IsDense())
	assert.Equal(t, fixedNow.Format(time.RFC3339), d.Doc().Metadata.UpdatedAt)

	_, err := d.Add("carousel", "x")
	assert.ErrorIs(t, err, ErrUnknownSectionType)
	assert.Len(t, d.Doc().Sections, 3)
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		newOrder int
		want     map[string]int
	}{
		{"last to second", "s4", 1, map[string]int{"s1": 0, "s2": 2, "s3": 3, "s4": 1}},
		{"first to last", "s1", 3, map[string]int{"s1": 3, "s2": 0, "s3": 1, "s4": 2}},
		{"adjacent down", "s2", 2, map[string]int{"s1": 0, "s2": 2, "s3": 1, "s4": 3}},
		{"same order is a no-op", "s3", 2, map[string]int{"s1": 0, "s2": 1, "s3": 2, "s4": 3}},
		{"clamped high", "s1", 99, map[string]int{"s1": 3, "s2": 0, "s3": 1, "s4": 2}},
		{"clamped low", "s4", -5, map[string]int{"s1": 1, "s2": 2, "s3": 3, "s4": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t, 4)
			require.NoError(t, d.Reorder(tt.id, tt.newOrder))
			assert.Equal(t, tt.want, orders(d))
			assert.True(t, d.IsDense())
		})
	}

	d := newDoc(t, 2)
	assert.ErrorIs(t, d.Reorder("nope", 0), ErrSectionNotFound)
}

func TestDeletePolicies(t *testing.T) {
	keep := newDoc(t, 4)
	require.NoError(t, keep.Delete("s2"))
	assert.Equal(t, map[string]int{"s1": 0, "s3": 2, "s4": 3}, orders(keep))
	assert.False(t, keep.IsDense())

	// appending after a gap never duplicates an order
	s, err := keep.Add(models.SectionFooter, "")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Order)

	keep.Normalize()
	assert.Equal(t, map[string]int{"s1": 0, "s3": 1, "s4": 2, "s5": 3}, orders(keep))
	assert.True(t, keep.IsDense())

	renumber := newDoc(t, 4, WithDeletePolicy(Renumber))
	require.NoError(t, renumber.Delete("s2"))
	assert.Equal(t, map[string]int{"s1": 0, "s3": 1, "s4": 2}, orders(renumber))
	assert.ErrorIs(t, renumber.Delete("s2"), ErrSectionNotFound)
}

func TestReorderClosesGaps(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		newOrder int
		want     map[string]int
	}{
		{"last to first", "s4", 0, map[string]int{"s4": 0, "s1": 1, "s3": 2}},
		{"first to last", "s1", 2, map[string]int{"s3": 0, "s4": 1, "s1": 2}},
		{"to its ranked position", "s3", 1, map[string]int{"s1": 0, "s3": 1, "s4": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t, 4)
			require.NoError(t, d.Delete("s2"))
			require.False(t, d.IsDense())

			require.NoError(t, d.Reorder(tt.id, tt.newOrder))
			assert.Equal(t, tt.want, orders(d))
			assert.True(t, d.IsDense())
		})
	}
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ParseDeletePolicy("renumber")
	require.NoError(t, err)
	assert.Equal(t, Renumber, p)
	p, err = ParseDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, KeepGaps, p)
	_, err = ParseDeletePolicy("shuffle")
	assert.Error(t, err)
}

func TestFieldUpdatesLeaveOrderAlone(t *testing.T) {
	d := newDoc(t, 3)
	before := orders(d)

	visible, err := d.ToggleVisibility("s2")
	require.NoError(t, err)
	assert.False(t, visible)
	require.NoError(t, d.Rename("s2", "Novo título"))
	require.NoError(t, d.UpdateData("s2", map[string]any{"content": "olá"}))
	require.NoError(t, d.UpdateData("s2", map[string]any{"extra": 1.0}))

	assert.Equal(t, before, orders(d))
	s, err := d.Section("s2")
	require.NoError(t, err)
	assert.Equal(t, "Novo título", s.Title)
	assert.Equal(t, map[string]any{"content": "olá", "extra": 1.0}, s.Data)

	var ids []string
	for _, v := range d.Visible() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"s1", "s3"}, ids)

	_, err = d.ToggleVisibility("zz")
	assert.ErrorIs(t, err, ErrSectionNotFound)
	assert.ErrorIs(t, d.Rename("zz", ""), ErrSectionNotFound)
	assert.ErrorIs(t, d.UpdateData("zz", nil), ErrSectionNotFound)
}

func TestJSONRoundTripKeepsOrderAndVisibility(t *testing.T) {
	d := newDoc(t, 4)
	require.NoError(t, d.Reorder("s4", 0))
	_, err := d.ToggleVisibility("s3")
	require.NoError(t, err)

	data, err := json.Marshal(d.Doc())
	require.NoError(t, err)
	var back models.ReportDocument
	require.NoError(t, json.Unmarshal(data, &back))

	again := Wrap(&back)
	require.Len(t, again.Sorted(), 4)
	for i, s := range d.Sorted() {
		got := again.Sorted()[i]
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, s.Order, got.Order)
		assert.Equal(t, s.Visible, got.Visible)
	}
}

func validSetup() Setup {
	return Setup{
		ClientName:  "Acme",
		Domain:      "acme.com.br",
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewFromTemplate(t *testing.T) {
	d, err := NewFromTemplate(validSetup(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	doc := d.Doc()

	assert.Equal(t, "Relatório Acme - 01/01/2025 a 31/03/2025", doc.Name)
	assert.Equal(t, "01/01/2025 a 31/03/2025", doc.Period)
	assert.Equal(t, "#ff9a05", doc.Colors.Primary)
	assert.Equal(t, fixedNow.Format(time.RFC3339), doc.Metadata.CreatedAt)
	assert.NotEmpty(t, doc.Metadata.CreatedBy)
	assert.True(t, d.IsDense())

	header := d.FirstOfType(models.SectionHeader)
	require.NotNil(t, header)
	assert.Equal(t, 0, header.Order)
	assert.Equal(t, "acme.com.br", header.Data["domain"])
	assert.Equal(t, ComparisonPreviousYear, header.Data["comparisonPeriod"])

	competitors := d.FirstOfType(models.SectionCompetitorAnalysis)
	require.NotNil(t, competitors)
	assert.False(t, competitors.Visible)

	// documents never share template data
	other, err := NewFromTemplate(validSetup())
	require.NoError(t, err)
	other.FirstOfType(models.SectionHeader).Data["domain"] = "outro.com"
	assert.Equal(t, "acme.com.br", header.Data["domain"])
}

func TestSetupValidate(t *testing.T) {
	s := validSetup()
	s.ClientName = " "
	s.PeriodStart, s.PeriodEnd = s.PeriodEnd, s.PeriodStart
	err := s.Validate()
	require.ErrorIs(t, err, ErrInvalidSetup)
	assert.Contains(t, err.Error(), "client name")
	assert.Contains(t, err.Error(), "start")

	_, err = NewFromTemplate(Setup{})
	assert.ErrorIs(t, err, ErrInvalidSetup)

	s = validSetup()
	s.Template = "missing"
	_, err = NewFromTemplate(s)
	assert.Error(t, err)
}

func TestParseTemplateRejectsUnknownTypes(t *testing.T) {
	_, err := ParseTemplate([]byte("sections:\n  - type: carousel\n"))
	assert.ErrorIs(t, err, ErrUnknownSectionType)
}

func TestBindReconciled(t *testing.T) {
	keywords := []models.KeywordRecord{
		{Keyword: "seo", Clicks: 120, Impressions: 1000, CTR: 12, Position: 3.5},
		{Keyword: "agência", Clicks: 300, Impressions: 2000, CTR: 15, Position: 2},
		{Keyword: "marketing", Clicks: 0, Impressions: 50, Position: 30},
	}
	totals := extractor.Aggregate(keywords)
	deltas := models.Deltas{Clicks: 20, Position: -3.333}
	res := &models.ReconciledResult{
		Current: &models.ExtractionResult{
			Metrics:     extractor.Metrics(totals, deltas),
			Keywords:    keywords,
			GainsLosses: extractor.TopGainsLosses(keywords, 5),
			Totals:      totals,
			Filter:      models.Filter{Type: models.FilterBlog},
			Header:      models.HeaderInfo{Period: "01/01/2025 a 31/03/2025"},
		},
		Deltas: deltas,
		Comparison: &models.PeriodComparison{
			HasComparison: true,
			PreviousStart: "01/01/2024",
			PreviousEnd:   "31/03/2024",
		},
	}

	d, err := NewFromTemplate(validSetup())
	require.NoError(t, err)
	require.NoError(t, BindReconciled(d, res, 2))

	kpi := d.FirstOfType(models.SectionKPIGrid)
	metrics := kpi.Data["metrics"].([]any)
	require.Len(t, metrics, 4)
	clicks := metrics[0].(map[string]any)
	assert.Equal(t, models.MetricClicks, clicks["label"])
	assert.Equal(t, "420", clicks["value"])
	assert.Equal(t, "increase", clicks["changeType"])
	assert.Equal(t, -3.33, metrics[2].(map[string]any)["change"])

	table := d.FirstOfType(models.SectionTable).Data["table"].(map[string]any)
	rows := table["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "agência", rows[0].([]any)[0])

	gl := d.FirstOfType(models.SectionGainsLosses).Data["gainsLosses"].([]any)
	require.Len(t, gl, 2)

	header := d.FirstOfType(models.SectionHeader)
	assert.Equal(t, "01/01/2024 a 31/03/2024", header.Data["previousPeriod"])
	assert.True(t, d.Doc().HasBlog)

	// bound data survives a JSON round trip
	_, err = json.Marshal(d.Doc())
	require.NoError(t, err)

	assert.Error(t, BindReconciled(d, nil, 0))
}

func TestBindAddsMissingSections(t *testing.T) {
	d := newDoc(t, 1)
	res := &models.ReconciledResult{Current: &models.ExtractionResult{
		Metrics: extractor.Metrics(models.Totals{}, models.Deltas{}),
	}}
	require.NoError(t, BindReconciled(d, res, 0))
	require.NoError(t, SetAnalysis(d, "Crescimento consistente."))

	assert.NotNil(t, d.FirstOfType(models.SectionKPIGrid))
	assert.NotNil(t, d.FirstOfType(models.SectionTable))
	assert.NotNil(t, d.FirstOfType(models.SectionHeader))
	assert.Nil(t, d.FirstOfType(models.SectionGainsLosses))
	assert.Equal(t, "Crescimento consistente.", d.FirstOfType(models.SectionAnalysis).Data["analysis"])
	assert.True(t, d.IsDense())
}
