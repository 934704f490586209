package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

const (
	headerScanRows   = 10
	filterScanRows   = 5
	blogScanRows     = 100
	blogKeywordLimit = 10
)

var (
	blogTerms = []string{"blog", "/blog", "blog/", "artigo", "post"}
	siteTerms = []string{"site", "página", "page", "home", "principal"}

	dateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
)

// DetectFilter guesses whether an export covers the blog, the site or
// everything. The rows above the header are checked for blog or site terms
// first; failing that, a keyword column dominated by "blog" means blog.
func DetectFilter(grid [][]string, headerRow int) models.Filter {
	for i := 0; i < filterScanRows && i < headerRow && i < len(grid); i++ {
		text := strings.ToLower(strings.Join(grid[i], " "))
		if containsAny(text, blogTerms) {
			return models.Filter{Type: models.FilterBlog, DetectedFrom: fmt.Sprintf("Linha %d", i+1)}
		}
		if containsAny(text, siteTerms) {
			return models.Filter{Type: models.FilterSite, DetectedFrom: fmt.Sprintf("Linha %d", i+1)}
		}
	}

	blogKeywords := 0
	for i := headerRow + 1; i < headerRow+blogScanRows && i < len(grid); i++ {
		if i < 0 || len(grid[i]) == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(grid[i][0]), "blog") {
			blogKeywords++
		}
	}
	if blogKeywords > blogKeywordLimit {
		return models.Filter{Type: models.FilterBlog, DetectedFrom: `Palavras-chave com "blog"`}
	}

	return models.Filter{Type: models.FilterAll, DetectedFrom: "Não detectado"}
}

// ScanHeader keeps the descriptive lines at the top of a grid. Each of the
// first non-empty rows becomes a raw line with its cells joined by " | ", and
// the first one that looks like a date range becomes the period.
func ScanHeader(grid [][]string) models.HeaderInfo {
	var info models.HeaderInfo
	for i := 0; i < headerScanRows && i < len(grid); i++ {
		var cells []string
		for _, c := range grid[i] {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		line := strings.Join(cells, " | ")
		info.RawLines = append(info.RawLines, line)

		lower := strings.ToLower(line)
		if info.Period == "" && looksLikePeriod(lower) {
			info.Period = line
		}
		if containsAny(lower, []string{"cliques", "clicks"}) {
			info.Clicks = line
		}
		if containsAny(lower, []string{"impressões", "impressions"}) {
			info.Impressions = line
		}
		if strings.Contains(lower, "ctr") {
			info.CTR = line
		}
		if containsAny(lower, []string{"posição", "position"}) {
			info.Position = line
		}
	}
	return info
}

func looksLikePeriod(lower string) bool {
	switch {
	case strings.Contains(lower, "período"), strings.Contains(lower, "periodo"):
		return true
	case strings.Contains(lower, "data"):
		return true
	case strings.Contains(lower, "de ") && strings.Contains(lower, "até"):
		return true
	case strings.Contains(lower, "from ") && strings.Contains(lower, " to "):
		return true
	}
	return dateRe.MatchString(lower)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
