package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHeader(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Mapping
	}{
		{
			name:    "portuguese export",
			headers: []string{"Principais consultas", "Cliques", "Impressões", "CTR", "Posição"},
			want:    Mapping{Query: 0, Clicks: 1, Impressions: 2, CTR: 3, Position: 4, HeaderRow: -1},
		},
		{
			name:    "english export",
			headers: []string{"Top queries", "Clicks", "Impressions", "CTR", "Position"},
			want:    Mapping{Query: 0, Clicks: 1, Impressions: 2, CTR: 3, Position: 4, HeaderRow: -1},
		},
		{
			name:    "mixed case and padding",
			headers: []string{"  PALAVRA-CHAVE ", "cliques", "  Exposições", "ctr", "Avg. Position"},
			want:    Mapping{Query: 0, Clicks: 1, Impressions: 2, CTR: 3, Position: 4, HeaderRow: -1},
		},
		{
			name:    "missing numeric roles",
			headers: []string{"Consulta", "Cliques"},
			want:    Mapping{Query: 0, Clicks: 1, Impressions: -1, CTR: -1, Position: -1, HeaderRow: -1},
		},
		{
			name:    "later column overwrites earlier match",
			headers: []string{"Consulta", "Cliques", "Cliques (anterior)"},
			want:    Mapping{Query: 0, Clicks: 2, Impressions: -1, CTR: -1, Position: -1, HeaderRow: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapHeader(tt.headers))
		})
	}
}

func TestClicksSynonymResolvesToItsColumn(t *testing.T) {
	for _, syn := range Synonyms[RoleClicks] {
		for col := 0; col < 4; col++ {
			headers := []string{"", "", "", ""}
			headers[col] = "Total de " + syn
			m := MapHeader(headers)
			assert.Equal(t, col, m.Clicks, "synonym %q at column %d", syn, col)
		}
	}
}

func TestFindHeaderRow(t *testing.T) {
	grid := [][]string{
		{"Relatório de desempenho"},
		{"Período: 01/01/2025 a 31/03/2025"},
		{},
		{"Consulta", "Cliques", "Impressões"},
		{"seo", "10", "100"},
	}
	assert.Equal(t, 3, FindHeaderRow(grid, HeaderScanLimit))
	assert.Equal(t, -1, FindHeaderRow(grid, 2))
	assert.Equal(t, -1, FindHeaderRow(nil, HeaderScanLimit))
}

func TestRequire(t *testing.T) {
	err := Require(MapHeader([]string{"Cliques", "Impressões"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoKeywordColumn)
	assert.Contains(t, err.Error(), "Top consultas")

	assert.NoError(t, Require(MapHeader([]string{"Query"})))
}

func TestChainPrefersHeader(t *testing.T) {
	grid := [][]string{
		{"Consulta", "Cliques", "Impressões", "CTR", "Posição"},
		{"seo", "1.200", "45.000", "2,6%", "4,5"},
	}
	m, name := DefaultChain().Resolve(grid)
	assert.Equal(t, "header", name)
	assert.Equal(t, ConfidenceHeader, m.Confidence)
	assert.Equal(t, 0, m.HeaderRow)
	assert.Equal(t, 1, m.Clicks)
	assert.Equal(t, 2, m.Impressions)
}

func TestChainFallsBackToMagnitude(t *testing.T) {
	grid := [][]string{
		{"Q", "A", "B", "C", "D"},
		{"agência seo", "1532", "48210", "3,2", "7,4"},
		{"consultoria", "820", "12004", "6,8", "5,1"},
	}
	m, name := DefaultChain().Resolve(grid)
	require.Equal(t, "magnitude", name)
	assert.Equal(t, ConfidenceGuess, m.Confidence)
	assert.Equal(t, 0, m.Query)
	assert.Equal(t, 1, m.Clicks)
	assert.Equal(t, 2, m.Impressions)
	assert.Equal(t, 3, m.CTR)
	assert.Equal(t, 4, m.Position)
	assert.Equal(t, 0, m.HeaderRow)
}

func TestChainOnlyFallsBackWhenCountsMissing(t *testing.T) {
	// header resolves the query but not impressions, and the data holds no
	// large numbers, so the partial header mapping is returned
	grid := [][]string{
		{"Consulta", "Cliques"},
		{"seo", "12"},
	}
	m, name := DefaultChain().Resolve(grid)
	assert.Empty(t, name)
	assert.Equal(t, 0, m.Query)
	assert.Equal(t, 1, m.Clicks)
	assert.Equal(t, -1, m.Impressions)
}

func TestMagnitudeIgnoresTextWithDigits(t *testing.T) {
	grid := [][]string{
		{"curso seo 2024", "melhores 500 dicas", "12"},
	}
	_, ok := MagnitudeStrategy{}.Resolve(grid)
	assert.False(t, ok)
}

func TestMagnitudeKeepsSmallLeadingRows(t *testing.T) {
	tests := []struct {
		name      string
		grid      [][]string
		headerRow int
	}{
		{"small row under the header", [][]string{
			{"Q", "A", "B"},
			{"seo local", "12", "90"},
			{"agência seo", "1532", "48210"},
		}, 0},
		{"small rows and no header", [][]string{
			{"seo local", "12", "90"},
			{"curso seo", "7", "64"},
			{"agência seo", "1532", "48210"},
		}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := MagnitudeStrategy{}.Resolve(tt.grid)
			require.True(t, ok)
			assert.Equal(t, tt.headerRow, m.HeaderRow)
			assert.Equal(t, 0, m.Query)
			assert.Equal(t, 1, m.Clicks)
			assert.Equal(t, 2, m.Impressions)
		})
	}
}

func TestMagnitudeAtFirstRow(t *testing.T) {
	grid := [][]string{{"seo", "250", "9.000,00"}}
	m, ok := MagnitudeStrategy{}.Resolve(grid)
	require.True(t, ok)
	assert.Equal(t, -1, m.HeaderRow)
	assert.Equal(t, -1, m.CTR)
	assert.Equal(t, -1, m.Position)
}
