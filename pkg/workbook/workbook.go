package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned for a workbook without any non-empty sheet
var ErrEmptyWorkbook = errors.New("workbook is empty or has no data")

// Sheet is one worksheet as a grid of cell strings
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is every sheet of a spreadsheet, in workbook order
type Workbook struct {
	Sheets []Sheet
}

// Read opens an xlsx workbook and reads every sheet with formatted cell
// values, the way a user sees them.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	if wb.empty() {
		return nil, ErrEmptyWorkbook
	}
	return wb, nil
}

// ReadCSV reads a CSV export as a single-sheet workbook. The delimiter is a
// comma unless the first line has more semicolons than commas.
func ReadCSV(r io.Reader, name string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	firstLine, _, _ := strings.Cut(string(data), "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		reader.Comma = ';'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	wb := &Workbook{Sheets: []Sheet{{Name: name, Rows: rows}}}
	if wb.empty() {
		return nil, ErrEmptyWorkbook
	}
	return wb, nil
}

// Grids returns the raw grid of every sheet keyed by sheet name
func (wb *Workbook) Grids() map[string][][]string {
	out := make(map[string][][]string, len(wb.Sheets))
	for _, s := range wb.Sheets {
		out[s.Name] = s.Rows
	}
	return out
}

func (wb *Workbook) empty() bool {
	for _, s := range wb.Sheets {
		for _, row := range s.Rows {
			for _, c := range row {
				if strings.TrimSpace(c) != "" {
					return false
				}
			}
		}
	}
	return true
}

var (
	summaryHints = []string{"summary", "resumo", "grafico", "gráfico"}
	keywordHints = []string{"query", "queries", "keyword", "palavra", "consulta"}
)

// summarySheet returns the period summary sheet, if any
func (wb *Workbook) summarySheet() *Sheet {
	for i := range wb.Sheets {
		if nameHas(wb.Sheets[i].Name, summaryHints) {
			return &wb.Sheets[i]
		}
	}
	return nil
}

// keywordSheet picks the sheet holding the keyword table: a sheet named like
// one, else the first sheet that is not the summary.
func (wb *Workbook) keywordSheet(summary *Sheet) *Sheet {
	for i := range wb.Sheets {
		if &wb.Sheets[i] != summary && nameHas(wb.Sheets[i].Name, keywordHints) {
			return &wb.Sheets[i]
		}
	}
	for i := range wb.Sheets {
		if &wb.Sheets[i] != summary && len(wb.Sheets[i].Rows) > 0 {
			return &wb.Sheets[i]
		}
	}
	return nil
}

func nameHas(name string, hints []string) bool {
	lower := strings.ToLower(name)
	for _, h := range hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
