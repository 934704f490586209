package reporter

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/report"
	"github.com/amosWeiskopf/reportsmith/pkg/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Format is an export format
type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// ErrUnsupportedFormat is returned for unknown export formats
var ErrUnsupportedFormat = errors.New("unsupported format")

const defaultFooter = "Relatório gerado pela Equipe de SEO"

// ParseFormat accepts a format name or a common extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// Ext is the file extension for the format
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Reporter renders report documents
type Reporter struct {
	md   goldmark.Markdown
	html *template.Template
}

// New creates a new Reporter instance
func New() (*Reporter, error) {
	r := &Reporter{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	t, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"field":     field,
		"fieldStr":  fieldStr,
		"fieldList": fieldList,
		"list":      list,
		"str":       str,
		"change":    change,
		"tone":      tone,
		"width":     width,
		"text":      text,
		"md":        r.markdownHTML,
		"safeURL":   safeURL,
	}).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	r.html = t
	return r, nil
}

// Render writes the document in one of the text formats. PDF goes through
// PDFRenderer.
func (r *Reporter) Render(doc *models.ReportDocument, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.generateJSON(doc)
	case FormatHTML:
		return r.generateHTML(doc)
	case FormatMarkdown:
		return r.generateMarkdown(doc)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(doc *models.ReportDocument) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

type sectionView struct {
	ID    string
	Type  string
	Title string
	Data  map[string]any
}

type pageView struct {
	Title      string
	ClientName string
	Period     string
	Colors     models.Colors
	Sections   []sectionView
	FooterText string
	CreatedBy  string
	CreatedAt  string
}

func (r *Reporter) view(doc *models.ReportDocument) pageView {
	v := pageView{
		Title:      doc.Name,
		ClientName: doc.ClientName,
		Period:     doc.Period,
		Colors:     withDefaultColors(doc.Colors),
		FooterText: defaultFooter,
		CreatedBy:  doc.Metadata.CreatedBy,
		CreatedAt:  displayDate(doc.Metadata.CreatedAt),
	}
	if v.Title == "" {
		v.Title = "Relatório " + doc.ClientName
	}
	for _, s := range report.Wrap(doc).Visible() {
		data := s.Data
		if data == nil {
			data = map[string]any{}
		}
		// image sections without their own list show the document images
		if s.Type == models.SectionImage && data["images"] == nil && len(doc.Images) > 0 {
			images := make([]any, 0, len(doc.Images))
			for _, img := range doc.Images {
				images = append(images, map[string]any{"url": img.URL, "alt": img.Alt, "caption": img.Caption})
			}
			data = map[string]any{"images": images}
		}
		v.Sections = append(v.Sections, sectionView{ID: s.ID, Type: string(s.Type), Title: s.Title, Data: data})
	}
	return v
}

// generateHTML creates a standalone HTML page
func (r *Reporter) generateHTML(doc *models.ReportDocument) (string, error) {
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, r.view(doc)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (r *Reporter) markdownHTML(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	// goldmark drops raw HTML from the source unless told otherwise
	return template.HTML(buf.String())
}

// safeURL lets http(s) links and inline images through the html escaper
func safeURL(s string) template.URL {
	t := strings.TrimSpace(s)
	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, "data:image/") || utils.IsLikelyURL(lower) && !strings.HasPrefix(lower, "data:") {
		return template.URL(t)
	}
	return ""
}

func withDefaultColors(c models.Colors) models.Colors {
	def := report.DefaultColors()
	if c.Primary == "" {
		c.Primary = def.Primary
	}
	if c.Secondary == "" {
		c.Secondary = def.Secondary
	}
	if c.Accent == "" {
		c.Accent = def.Accent
	}
	if c.Text == "" {
		c.Text = def.Text
	}
	if c.Background == "" {
		c.Background = def.Background
	}
	return c
}

// displayDate turns an RFC 3339 timestamp into dd/mm/yyyy
func displayDate(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// FileName builds relatorio-<client>-<unix>.<ext>
func FileName(doc *models.ReportDocument, format Format, now time.Time) string {
	client := utils.Slugify(doc.ClientName)
	if client == "" {
		client = "cliente"
	}
	return utils.SanitizeFilename(fmt.Sprintf("relatorio-%s-%d.%s", client, now.Unix(), format.Ext()))
}
