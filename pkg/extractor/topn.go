package extractor

import (
	"fmt"
	"sort"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// TopSlice is how many of the best keywords by clicks feed the lists
const TopSlice = 20

const (
	GainsTitle  = "Maiores ganhos em palavras-chave"
	LossesTitle = "Maiores perdas em palavras-chave"
)

// TopGainsLosses derives the gains and losses lists of a single-period
// export. Both come from the top keywords by clicks: gains are those with
// clicks, losses are those with impressions but no clicks. The losses list
// does not look at any change between periods.
func TopGainsLosses(keywords []models.KeywordRecord, n int) []models.GainsLosses {
	if n <= 0 {
		n = DefaultTopN
	}

	sorted := make([]models.KeywordRecord, len(keywords))
	copy(sorted, keywords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Clicks > sorted[j].Clicks
	})
	if len(sorted) > TopSlice {
		sorted = sorted[:TopSlice]
	}

	gains := []models.GainLossItem{}
	losses := []models.GainLossItem{}
	for _, k := range sorted {
		switch {
		case k.Clicks > 0 && len(gains) < n:
			gains = append(gains, models.GainLossItem{
				Keyword:    k.Keyword,
				Change:     fmt.Sprintf("+%.0f cliques", k.Clicks),
				ChangeType: "increase",
			})
		case k.Clicks == 0 && k.Impressions > 0 && len(losses) < n:
			losses = append(losses, models.GainLossItem{
				Keyword:    k.Keyword,
				Change:     "-100% cliques",
				ChangeType: "decrease",
			})
		}
	}

	return []models.GainsLosses{
		{Title: GainsTitle, Items: gains},
		{Title: LossesTitle, Items: losses},
	}
}
