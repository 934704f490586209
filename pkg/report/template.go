package report

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// DefaultTemplate is the template used when none is named
const DefaultTemplate = "default"

// Comparison labels accepted by Setup
const (
	ComparisonPreviousYear   = "Ano anterior"
	ComparisonPreviousPeriod = "Período anterior"
)

// ErrInvalidSetup is returned when a Setup misses a required field
var ErrInvalidSetup = errors.New("invalid report setup")

// Template is a named starting document
type Template struct {
	Name      string            `yaml:"name"`
	CreatedBy string            `yaml:"createdBy"`
	Logo      string            `yaml:"logo"`
	Colors    models.Colors     `yaml:"colors"`
	Sections  []SectionTemplate `yaml:"sections"`
}

// SectionTemplate is one section of a template. Visible defaults to true.
type SectionTemplate struct {
	Type    models.SectionType `yaml:"type"`
	Title   string             `yaml:"title"`
	Visible *bool              `yaml:"visible"`
	Data    map[string]any     `yaml:"data"`
}

// LoadTemplate reads an embedded template by name
func LoadTemplate(name string) (*Template, error) {
	if name == "" {
		name = DefaultTemplate
	}
	data, err := templateFS.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("template %q not found: %w", name, err)
	}
	return ParseTemplate(data)
}

// DefaultColors is the theme of the default template
func DefaultColors() models.Colors {
	if t, err := LoadTemplate(DefaultTemplate); err == nil {
		return t.Colors
	}
	return models.Colors{Primary: "#ff9a05", Secondary: "#ffb74d", Accent: "#ff9a05", Text: "#333333", Background: "#f4f6f9"}
}

// ParseTemplate decodes a YAML template and checks its section types
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	for i, s := range t.Sections {
		if !s.Type.Valid() {
			return nil, fmt.Errorf("template section %d: %w: %q", i, ErrUnknownSectionType, s.Type)
		}
	}
	return &t, nil
}

// Setup is what a user provides to start a report
type Setup struct {
	ClientName  string
	Domain      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	// Comparison is ComparisonPreviousYear or ComparisonPreviousPeriod
	Comparison string
	Logo       string
	HasBlog    bool
	CreatedBy  string
	Template   string
}

// Validate checks the required fields
func (s Setup) Validate() error {
	var problems []string
	if strings.TrimSpace(s.ClientName) == "" {
		problems = append(problems, "client name is required")
	}
	if strings.TrimSpace(s.Domain) == "" {
		problems = append(problems, "domain is required")
	}
	switch {
	case s.PeriodStart.IsZero() || s.PeriodEnd.IsZero():
		problems = append(problems, "analysis period is required")
	case s.PeriodStart.After(s.PeriodEnd):
		problems = append(problems, "period start must not be after its end")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSetup, strings.Join(problems, "; "))
	}
	return nil
}

// PeriodLabel formats the analysis period as "dd/mm/yyyy a dd/mm/yyyy"
func (s Setup) PeriodLabel() string {
	return s.PeriodStart.Format("02/01/2006") + " a " + s.PeriodEnd.Format("02/01/2006")
}

// NewFromTemplate builds a new document from the setup's template
func NewFromTemplate(setup Setup, opts ...Option) (*Document, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	tmpl, err := LoadTemplate(setup.Template)
	if err != nil {
		return nil, err
	}

	doc := &models.ReportDocument{}
	d := Wrap(doc, opts...)
	now := d.now().UTC().Format(time.RFC3339)

	period := setup.PeriodLabel()
	comparison := setup.Comparison
	if comparison == "" {
		comparison = ComparisonPreviousYear
	}
	logo := setup.Logo
	if logo == "" {
		logo = tmpl.Logo
	}
	createdBy := setup.CreatedBy
	if createdBy == "" {
		createdBy = tmpl.CreatedBy
	}

	doc.ID = "report-" + d.newID()
	doc.Name = fmt.Sprintf("Relatório %s - %s", setup.ClientName, period)
	doc.ClientName = setup.ClientName
	doc.Period = period
	doc.Logo = logo
	doc.HasBlog = setup.HasBlog
	doc.Colors = tmpl.Colors
	doc.Metadata = models.Metadata{CreatedAt: now, UpdatedAt: now, CreatedBy: createdBy}

	for i, st := range tmpl.Sections {
		visible := true
		if st.Visible != nil {
			visible = *st.Visible
		}
		doc.Sections = append(doc.Sections, models.ReportSection{
			ID:      d.newID(),
			Type:    st.Type,
			Title:   st.Title,
			Visible: visible,
			Order:   i,
			Data:    copyData(st.Data),
		})
	}

	if h := d.FirstOfType(models.SectionHeader); h != nil {
		h.Data["clientName"] = setup.ClientName
		h.Data["domain"] = setup.Domain
		h.Data["periodInfo"] = period
		h.Data["comparisonPeriod"] = comparison
		h.Data["logo"] = logo
	}
	if k := d.FirstOfType(models.SectionKPIGrid); k != nil {
		k.Data["comparisonPeriod"] = kpiComparison(comparison)
	}
	return d, nil
}

func kpiComparison(label string) string {
	if label == ComparisonPreviousPeriod {
		return "periodo_anterior"
	}
	return "ano_anterior"
}

// copyData deep copies the maps and slices of template data so documents
// never share state with the parsed template
func copyData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyData(t)
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = copyValue(e)
		}
		return s
	}
	return v
}
