package columns

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// HeaderScanLimit is how many leading rows are searched for a header
const HeaderScanLimit = 10

// magnitudeThreshold is the value above which a number is taken for a count
const magnitudeThreshold = 100

// Strategy resolves a column mapping from a raw grid
type Strategy interface {
	Name() string
	Resolve(grid [][]string) (Mapping, bool)
}

// Chain tries strategies in order and returns the first success
type Chain []Strategy

// DefaultChain is the header match followed by the magnitude guess
func DefaultChain() Chain {
	return Chain{HeaderStrategy{}, MagnitudeStrategy{}}
}

// Resolve returns the mapping of the first strategy that succeeds. When none
// succeeds, the partial mapping of the first strategy is returned with an
// empty strategy name; its keyword and optional roles may still be usable.
func (c Chain) Resolve(grid [][]string) (Mapping, string) {
	partial := Empty()
	for i, s := range c {
		m, ok := s.Resolve(grid)
		if ok {
			return m, s.Name()
		}
		if i == 0 {
			partial = m
		}
	}
	return partial, ""
}

// HeaderStrategy finds a header row and maps it by synonym matching. It
// succeeds only when both clicks and impressions are resolved.
type HeaderStrategy struct{}

func (HeaderStrategy) Name() string { return "header" }

func (HeaderStrategy) Resolve(grid [][]string) (Mapping, bool) {
	row := FindHeaderRow(grid, HeaderScanLimit)
	if row < 0 {
		return Empty(), false
	}
	m := MapHeader(grid[row])
	m.HeaderRow = row
	m.Confidence = ConfidenceHeader
	return m, m.HasCounts()
}

// MagnitudeStrategy is the low-confidence fallback: it looks for a row with
// two or more large numbers and assumes those are clicks and impressions,
// with CTR and position in the next two columns.
type MagnitudeStrategy struct {
	// Rows limits how many leading rows are inspected; 0 means HeaderScanLimit.
	Rows int
}

func (MagnitudeStrategy) Name() string { return "magnitude" }

func (s MagnitudeStrategy) Resolve(grid [][]string) (Mapping, bool) {
	limit := s.Rows
	if limit <= 0 {
		limit = HeaderScanLimit
	}
	for i := 0; i < limit && i < len(grid); i++ {
		var large []int
		for col, cell := range grid[i] {
			if v, ok := looseNumber(cell); ok && v > magnitudeThreshold {
				large = append(large, col)
			}
		}
		if len(large) < 2 {
			continue
		}

		m := Empty()
		m.Clicks = large[0]
		m.Impressions = large[1]
		m.CTR = m.Impressions + 1
		m.Position = m.Impressions + 2
		if m.CTR >= len(grid[i]) {
			m.CTR = -1
		}
		if m.Position >= len(grid[i]) {
			m.Position = -1
		}
		// the first text column left of the counts carries the query
		for col := 0; col < m.Clicks; col++ {
			if _, numeric := looseNumber(grid[i][col]); !numeric && strings.TrimSpace(grid[i][col]) != "" {
				m.Query = col
				break
			}
		}
		// rows above holding numbers are data with small counts
		if h := lastTextRow(grid[:i]); h >= 0 {
			m.HeaderRow = h
			if m.Query < 0 {
				m.Query = headerQueryColumn(grid[h])
			}
		}
		m.Confidence = ConfidenceGuess
		return m, true
	}
	return Empty(), false
}

// lastTextRow walks up from the end of rows to the nearest row with no
// numeric cell. It returns -1 when every row holds a number.
func lastTextRow(rows [][]string) int {
	for i := len(rows) - 1; i >= 0; i-- {
		numeric := false
		for _, cell := range rows[i] {
			if _, ok := looseNumber(cell); ok {
				numeric = true
				break
			}
		}
		if !numeric {
			return i
		}
	}
	return -1
}

func headerQueryColumn(row []string) int {
	for col, cell := range row {
		if MatchRole(RoleQuery, cell) {
			return col
		}
	}
	return -1
}

var looseNumberRe = regexp.MustCompile(`[^\d.,]`)

// looseNumber parses a cell holding only a number, optionally with separators,
// a percent sign or spaces. Cells with letters are text.
func looseNumber(cell string) (float64, bool) {
	if strings.IndexFunc(cell, unicode.IsLetter) >= 0 {
		return 0, false
	}
	s := looseNumberRe.ReplaceAllString(cell, "")
	if s == "" || strings.Trim(s, ".,") == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		s = strings.ReplaceAll(s, ",", "")
	} else if strings.Count(s, ".") > 1 {
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
