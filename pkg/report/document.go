package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

var (
	// ErrSectionNotFound is returned when no section has the given id
	ErrSectionNotFound = errors.New("section not found")
	// ErrUnknownSectionType is returned for a type outside models.SectionTypes
	ErrUnknownSectionType = errors.New("unknown section type")
)

// DeletePolicy decides what happens to the order of the remaining sections
// when one is deleted
type DeletePolicy int

const (
	// KeepGaps leaves the remaining orders untouched
	KeepGaps DeletePolicy = iota
	// Renumber closes the gap so orders stay 0..N-1
	Renumber
)

func (p DeletePolicy) String() string {
	if p == Renumber {
		return "renumber"
	}
	return "keep-gaps"
}

// ParseDeletePolicy reads "keep-gaps" or "renumber"; empty means KeepGaps
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep-gaps", "keep_gaps":
		return KeepGaps, nil
	case "renumber":
		return Renumber, nil
	}
	return KeepGaps, fmt.Errorf("unknown delete policy %q", s)
}

// Option configures a Document
type Option func(*Document)

// WithDeletePolicy sets the deletion policy
func WithDeletePolicy(p DeletePolicy) Option {
	return func(d *Document) { d.policy = p }
}

// WithClock replaces time.Now for metadata timestamps
func WithClock(now func() time.Time) Option {
	return func(d *Document) { d.now = now }
}

// WithIDs replaces the uuid section id generator
func WithIDs(next func() string) Option {
	return func(d *Document) { d.newID = next }
}

// Document wraps a ReportDocument with the editing operations. Orders stay
// unique under every operation; they stay dense unless a deletion with
// KeepGaps leaves a hole. It is not safe for concurrent use.
type Document struct {
	doc    *models.ReportDocument
	policy DeletePolicy
	now    func() time.Time
	newID  func() string
}

// Wrap edits doc in place
func Wrap(doc *models.ReportDocument, opts ...Option) *Document {
	d := &Document{
		doc:   doc,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.doc.Sections == nil {
		d.doc.Sections = []models.ReportSection{}
	}
	if d.doc.Images == nil {
		d.doc.Images = []models.ReportImage{}
	}
	return d
}

// Doc returns the underlying document
func (d *Document) Doc() *models.ReportDocument {
	return d.doc
}

// Section returns the section with the given id
func (d *Document) Section(id string) (*models.ReportSection, error) {
	for i := range d.doc.Sections {
		if d.doc.Sections[i].ID == id {
			return &d.doc.Sections[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

// FirstOfType returns the lowest-ordered section of type t, or nil
func (d *Document) FirstOfType(t models.SectionType) *models.ReportSection {
	var found *models.ReportSection
	for i := range d.doc.Sections {
		s := &d.doc.Sections[i]
		if s.Type == t && (found == nil || s.Order < found.Order) {
			found = s
		}
	}
	return found
}

// Add appends a new visible section after every existing one. Its order is
// the section count, or one past the highest order when gaps were left.
func (d *Document) Add(t models.SectionType, title string) (*models.ReportSection, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSectionType, t)
	}
	order := len(d.doc.Sections)
	for _, s := range d.doc.Sections {
		if s.Order >= order {
			order = s.Order + 1
		}
	}
	d.doc.Sections = append(d.doc.Sections, models.ReportSection{
		ID:      d.newID(),
		Type:    t,
		Title:   title,
		Visible: true,
		Order:   order,
		Data:    map[string]any{},
	})
	d.touch()
	return &d.doc.Sections[len(d.doc.Sections)-1], nil
}

// Delete removes a section, renumbering the rest only under Renumber
func (d *Document) Delete(id string) error {
	for i, s := range d.doc.Sections {
		if s.ID != id {
			continue
		}
		d.doc.Sections = append(d.doc.Sections[:i], d.doc.Sections[i+1:]...)
		if d.policy == Renumber {
			d.normalize()
		}
		d.touch()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

// Reorder moves a section to newOrder, clamped into [0, N-1], and shifts
// every section between the old and the new position by one. Gaps left by
// earlier deletions are closed first, so the orders are 0..N-1 afterwards.
// Moving a section of a dense document to its current order is a no-op.
func (d *Document) Reorder(id string, newOrder int) error {
	s, err := d.Section(id)
	if err != nil {
		return err
	}
	compacted := !d.IsDense()
	if compacted {
		d.normalize()
	}
	if newOrder < 0 {
		newOrder = 0
	}
	if last := len(d.doc.Sections) - 1; newOrder > last {
		newOrder = last
	}
	old := s.Order
	if newOrder == old {
		if compacted {
			d.touch()
		}
		return nil
	}

	for i := range d.doc.Sections {
		o := &d.doc.Sections[i]
		if o.ID == id {
			continue
		}
		switch {
		case old < newOrder && o.Order > old && o.Order <= newOrder:
			o.Order--
		case old > newOrder && o.Order >= newOrder && o.Order < old:
			o.Order++
		}
	}
	s.Order = newOrder
	d.touch()
	return nil
}

// ToggleVisibility flips the visible flag and returns the new value
func (d *Document) ToggleVisibility(id string) (bool, error) {
	s, err := d.Section(id)
	if err != nil {
		return false, err
	}
	s.Visible = !s.Visible
	d.touch()
	return s.Visible, nil
}

// Rename sets the section title
func (d *Document) Rename(id, title string) error {
	s, err := d.Section(id)
	if err != nil {
		return err
	}
	s.Title = title
	d.touch()
	return nil
}

// UpdateData merges patch into the section data, key by key
func (d *Document) UpdateData(id string, patch map[string]any) error {
	s, err := d.Section(id)
	if err != nil {
		return err
	}
	if s.Data == nil {
		s.Data = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		s.Data[k] = v
	}
	d.touch()
	return nil
}

// Sorted returns the sections by ascending order, ties by id
func (d *Document) Sorted() []models.ReportSection {
	out := append([]models.ReportSection(nil), d.doc.Sections...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Visible returns the visible sections in display order
func (d *Document) Visible() []models.ReportSection {
	var out []models.ReportSection
	for _, s := range d.Sorted() {
		if s.Visible {
			out = append(out, s)
		}
	}
	return out
}

// Normalize renumbers the sections to 0..N-1 keeping their relative order
func (d *Document) Normalize() {
	d.normalize()
	d.touch()
}

func (d *Document) normalize() {
	pos := make(map[string]int, len(d.doc.Sections))
	for i, s := range d.Sorted() {
		pos[s.ID] = i
	}
	for i := range d.doc.Sections {
		d.doc.Sections[i].Order = pos[d.doc.Sections[i].ID]
	}
}

// IsDense reports whether the orders are exactly 0..N-1
func (d *Document) IsDense() bool {
	seen := make([]bool, len(d.doc.Sections))
	for _, s := range d.doc.Sections {
		if s.Order < 0 || s.Order >= len(seen) || seen[s.Order] {
			return false
		}
		seen[s.Order] = true
	}
	return true
}

func (d *Document) touch() {
	d.doc.Metadata.UpdatedAt = d.now().UTC().Format(time.RFC3339)
}
