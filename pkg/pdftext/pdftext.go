package pdftext

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF holds no extractable text, e.g. a scan
var ErrNoText = errors.New("pdf has no extractable text")

// Item is one positioned run of text on a page
type Item struct {
	X, Y float64
	S    string
}

// ExtractText reads every page and returns its text grouped into lines,
// top to bottom. Pages are separated by a newline.
func ExtractText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		items := make([]Item, 0, len(content.Text))
		for _, t := range content.Text {
			items = append(items, Item{X: t.X, Y: t.Y, S: t.S})
		}
		if lines := GroupLines(items); len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// GroupLines joins items sharing a rounded Y coordinate into one line. PDF
// coordinates grow upwards, so lines come out in descending Y order; items
// within a line are ordered left to right and joined with a space.
func GroupLines(items []Item) []string {
	rows := make(map[float64][]Item)
	for _, it := range items {
		if strings.TrimSpace(it.S) == "" {
			continue
		}
		y := math.Round(it.Y)
		rows[y] = append(rows[y], it)
	}

	ys := make([]float64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		parts := make([]string, 0, len(row))
		for _, it := range row {
			parts = append(parts, strings.TrimSpace(it.S))
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
