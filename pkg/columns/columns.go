package columns

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoKeywordColumn is returned when no column can hold the query text
var ErrNoKeywordColumn = errors.New("keyword column not found")

// Role is the semantic meaning of a column
type Role int

const (
	RoleQuery Role = iota
	RoleClicks
	RoleImpressions
	RoleCTR
	RolePosition
)

func (r Role) String() string {
	switch r {
	case RoleQuery:
		return "query"
	case RoleClicks:
		return "clicks"
	case RoleImpressions:
		return "impressions"
	case RoleCTR:
		return "ctr"
	case RolePosition:
		return "position"
	default:
		return "unknown"
	}
}

// Roles lists every role in scan order
var Roles = []Role{RoleQuery, RoleClicks, RoleImpressions, RoleCTR, RolePosition}

// Synonyms are the lower-case header fragments that identify each role.
var Synonyms = map[Role][]string{
	RoleQuery: {
		"query", "palavra", "keyword", "consulta", "top consultas",
		"search query", "consulta de pesquisa",
	},
	RoleClicks: {"cliques", "clicks", "clique"},
	RoleImpressions: {
		"impressões", "impressoes", "impressions", "impressão", "impressao",
		"exposições", "exposicoes",
	},
	RoleCTR: {"ctr", "taxa de cliques", "click-through rate"},
	RolePosition: {
		"posição", "posicao", "position", "pos.", "avg. position", "posição média",
	},
}

// Confidence tells callers how much to trust a Mapping
type Confidence int

const (
	ConfidenceNone Confidence = iota
	// ConfidenceGuess comes from the numeric-magnitude fallback. Do not trust it
	// beyond "the numbers are probably clicks and impressions".
	ConfidenceGuess
	ConfidenceHeader
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHeader:
		return "header"
	case ConfidenceGuess:
		return "guess"
	default:
		return "none"
	}
}

// Mapping holds the column index of each role, -1 when absent
type Mapping struct {
	Query       int
	Clicks      int
	Impressions int
	CTR         int
	Position    int

	// HeaderRow is the grid row holding the headers; data starts after it.
	// -1 means the data starts at row 0.
	HeaderRow  int
	Confidence Confidence
}

// Empty returns a mapping with every role unresolved
func Empty() Mapping {
	return Mapping{Query: -1, Clicks: -1, Impressions: -1, CTR: -1, Position: -1, HeaderRow: -1}
}

// Index returns the column assigned to role
func (m Mapping) Index(role Role) int {
	switch role {
	case RoleQuery:
		return m.Query
	case RoleClicks:
		return m.Clicks
	case RoleImpressions:
		return m.Impressions
	case RoleCTR:
		return m.CTR
	case RolePosition:
		return m.Position
	}
	return -1
}

func (m *Mapping) set(role Role, idx int) {
	switch role {
	case RoleQuery:
		m.Query = idx
	case RoleClicks:
		m.Clicks = idx
	case RoleImpressions:
		m.Impressions = idx
	case RoleCTR:
		m.CTR = idx
	case RolePosition:
		m.Position = idx
	}
}

// HasCounts reports whether both clicks and impressions were resolved
func (m Mapping) HasCounts() bool {
	return m.Clicks >= 0 && m.Impressions >= 0
}

// MatchRole reports whether a header cell names role
func MatchRole(role Role, header string) bool {
	h := normalize(header)
	if h == "" {
		return false
	}
	for _, syn := range Synonyms[role] {
		if strings.Contains(h, syn) {
			return true
		}
	}
	return false
}

// MapHeader assigns roles to columns by header text. Columns are scanned left
// to right and a later match overwrites an earlier one.
func MapHeader(headers []string) Mapping {
	m := Empty()
	for idx, header := range headers {
		for _, role := range Roles {
			if MatchRole(role, header) {
				m.set(role, idx)
			}
		}
	}
	return m
}

// FindHeaderRow returns the first row among the first limit rows whose text
// mentions any role synonym, or -1.
func FindHeaderRow(grid [][]string, limit int) int {
	for i := 0; i < limit && i < len(grid); i++ {
		rowText := normalize(strings.Join(grid[i], " "))
		if rowText == "" {
			continue
		}
		for _, role := range Roles {
			for _, syn := range Synonyms[role] {
				if strings.Contains(rowText, syn) {
					return i
				}
			}
		}
	}
	return -1
}

// Require fails when the mandatory keyword role is missing
func Require(m Mapping) error {
	if m.Query < 0 {
		return fmt.Errorf("%w: look for a header such as \"Top consultas\", \"Query\", \"Palavra-chave\" or \"Consulta\" and check the file is a Search Console export", ErrNoKeywordColumn)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
