package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/columns"
	"github.com/amosWeiskopf/reportsmith/pkg/extractor"
	"github.com/amosWeiskopf/reportsmith/pkg/reconciler"
	"github.com/amosWeiskopf/reportsmith/pkg/workbook"
)

func xlsx(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for r, row := range rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &cells))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type fakeExtractor struct {
	res *models.ExtractionResult
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, text, fileName string) (*models.ExtractionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := *f.res
	r.Source = fileName
	r.Header.RawLines = []string{text}
	return &r, nil
}

func newIngestor(fx *fakeExtractor) *Ingestor {
	cfg := config.IngestConfig{MaxConcurrency: 2, ToleranceDays: 30, TopN: 5}
	var in *Ingestor
	if fx == nil {
		in = New(cfg, nil, nil)
	} else {
		in = New(cfg, fx, nil)
	}
	in.pdfText = func(io.ReaderAt, int64) (string, error) { return "texto do pdf", nil }
	return in
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
		err  bool
	}{
		{"a.xlsx", FormatWorkbook, false},
		{"A.XLSM", FormatWorkbook, false},
		{"dados.csv", FormatCSV, false},
		{"gsc.pdf", FormatPDF, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunReconcilesTwoPeriods(t *testing.T) {
	header := []string{"Consulta", "Cliques", "Impressões", "CTR", "Posição"}
	sources := []Source{
		{Name: "gsc_01_01_2025-31_01_2025.xlsx", Data: xlsx(t, [][]string{header, {"seo", "120", "1000", "12%", "5"}})},
		{Name: "gsc_01_01_2024-31_01_2024.xlsx", Data: xlsx(t, [][]string{header, {"seo", "100", "800", "12,5%", "10"}})},
		{Name: "extra_01_01_2025-31_01_2025.csv", Data: []byte("Consulta,Cliques,Impressões\nmarketing,30,200\n")},
	}

	target, err := reconciler.NewDateRange("01/01/2025", "31/01/2025")
	require.NoError(t, err)

	out, err := newIngestor(nil).Run(context.Background(), sources, &target)
	require.NoError(t, err)
	require.NotNil(t, out.Previous)

	assert.Len(t, out.Current.Keywords, 2)
	assert.InDelta(t, 150, out.Current.Totals.TotalClicks, 1e-9)
	assert.InDelta(t, 100, out.Previous.Totals.TotalClicks, 1e-9)
	assert.InDelta(t, 50, out.Deltas.Clicks, 1e-9)
	assert.Equal(t, []string{
		"gsc_01_01_2025-31_01_2025.xlsx",
		"gsc_01_01_2024-31_01_2024.xlsx",
		"extra_01_01_2025-31_01_2025.csv",
	}, out.Sources)
}

func TestExtractAllKeepsInputOrder(t *testing.T) {
	var sources []Source
	for _, name := range []string{"a.csv", "b.csv", "c.csv", "d.csv", "e.csv"} {
		sources = append(sources, Source{Name: name, Data: []byte("Consulta;Cliques;Impressões\n" + name + ";1;10\n")})
	}
	results, err := newIngestor(nil).ExtractAll(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, sources[i].Name, r.Source)
	}
}

func TestExtractPDF(t *testing.T) {
	fx := &fakeExtractor{res: &models.ExtractionResult{
		Keywords: []models.KeywordRecord{{Keyword: "seo", Clicks: 10, Impressions: 100}},
		Totals:   models.Totals{TotalClicks: 10, TotalImpressions: 100},
		Metrics:  extractor.Metrics(models.Totals{TotalClicks: 10}, models.Deltas{Clicks: 12.5}),
	}}
	results, err := newIngestor(fx).Extract(context.Background(), Source{Name: "gsc.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gsc.pdf", results[0].Source)
	assert.Equal(t, []string{"texto do pdf"}, results[0].Header.RawLines)
}

func TestBatchAbortsOnAnyFailure(t *testing.T) {
	good := Source{Name: "ok.csv", Data: []byte("Consulta,Cliques,Impressões\nseo,1,10\n")}
	boom := errors.New("model unavailable")

	tests := []struct {
		name    string
		in      *Ingestor
		bad     Source
		wantErr error
	}{
		{"unsupported", newIngestor(nil), Source{Name: "notes.txt"}, ErrUnsupportedFormat},
		{"pdf without agent", newIngestor(nil), Source{Name: "r.pdf"}, ErrNoExtractor},
		{"agent failure", newIngestor(&fakeExtractor{err: boom}), Source{Name: "r.pdf"}, boom},
		{"no keyword column", newIngestor(nil), Source{Name: "bad.csv", Data: []byte("Cliques,Impressões\n1,10\n")}, columns.ErrNoKeywordColumn},
		{"empty workbook", newIngestor(nil), Source{Name: "blank.csv", Data: []byte("\n")}, workbook.ErrEmptyWorkbook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.in.Run(context.Background(), []Source{good, tt.bad}, nil)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.bad.Name)
		})
	}
}

func TestRunNoSources(t *testing.T) {
	_, err := newIngestor(nil).Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoSources)
}
