package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var fileDateRe = regexp.MustCompile(`(\d{1,2})[_\-.](\d{1,2})[_\-.](\d{4})`)

// PeriodFromFileName reads date pairs such as 01_01_2025-31_03_2025 from a
// file name and returns them as "dd/mm/yyyy a dd/mm/yyyy" labels, in order.
// An unpaired trailing date is ignored.
func PeriodFromFileName(name string) []string {
	matches := fileDateRe.FindAllStringSubmatch(name, -1)
	var dates []string
	for _, m := range matches {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		dates = append(dates, fmt.Sprintf("%02d/%02d/%s", day, month, m[3]))
	}

	var labels []string
	for i := 0; i+1 < len(dates); i += 2 {
		labels = append(labels, dates[i]+" a "+dates[i+1])
	}
	return labels
}

// periodSection is a slice of a sheet that belongs to one period
type periodSection struct {
	label string
	rows  [][]string
}

// splitByPeriod cuts a sheet holding several periods one after another. A
// row mentioning the start or end date of the next expected period opens its
// section. When no boundary is found the whole sheet belongs to the first
// period.
func splitByPeriod(rows [][]string, labels []string) []periodSection {
	var sections []periodSection
	start, next := 0, 0

	for i, row := range rows {
		if next >= len(labels) {
			break
		}
		text := strings.ToLower(strings.Join(row, " "))
		if text == "" {
			continue
		}
		from, to, _ := strings.Cut(labels[next], " a ")
		if strings.Contains(text, from) || strings.Contains(text, to) {
			if next > 0 && start < i {
				sections = append(sections, periodSection{label: labels[next-1], rows: rows[start:i]})
			}
			start = i
			next++
		}
	}

	if next > 0 && start < len(rows) {
		sections = append(sections, periodSection{label: labels[next-1], rows: rows[start:]})
	}
	if len(sections) == 0 && len(labels) > 0 {
		sections = append(sections, periodSection{label: labels[0], rows: rows})
	}
	return sections
}
