// Package form is the link builder screen: three table sections over the
// field values, answering row queries from any renderer and accepting its
// events. It holds no renderer state and is touched from a single goroutine.
package form

import (
	"errors"
	"fmt"
	"net/url"

	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/link"
	"tableflip.dev/dynlink/pkg/section"
)

// ErrBuildPending is returned by OnBuildRequested while the previous
// request has not delivered its result.
var ErrBuildPending = errors.New("form: build already in progress")

// ErrUnknownSection is returned for section ids outside the screen.
var ErrUnknownSection = errors.New("form: unknown section")

// SectionID names a table section.
type SectionID int

const (
	SectionComponents SectionID = iota
	SectionParameters
	SectionGenerate

	numSections
)

var sectionTitles = [numSections]string{
	SectionComponents: "Components",
	SectionParameters: "Optional Parameters",
	SectionGenerate:   "Click to Generate Links",
}

// Sections lists every section in display order.
func Sections() []SectionID {
	return []SectionID{SectionComponents, SectionParameters, SectionGenerate}
}

// Title is the section header text.
func (s SectionID) Title() string {
	if s < 0 || s >= numSections {
		return fmt.Sprintf("Section(%d)", int(s))
	}
	return sectionTitles[s]
}

func (s SectionID) String() string { return s.Title() }

// Kind says how a cell should be drawn.
type Kind int

const (
	KindHeader Kind = iota
	KindField
	KindResult
)

// Result rows in SectionGenerate.
const (
	RowLong = iota
	RowShort

	numResultRows
)

var resultLabels = [numResultRows]string{
	RowLong:  "Long Link",
	RowShort: "Short Link",
}

// Cell is what a renderer needs to draw one row.
type Cell struct {
	Kind      Kind
	Label     string
	Value     string
	Field     field.ID
	Group     int
	Collapsed bool
}

// Defaults seed inputs the first time the screen is rendered.
type Defaults struct {
	Link              string
	Domain            string
	BundleID          string
	MinimumAppVersion string
}

// DefaultDefaults are the stock seed values.
func DefaultDefaults() Defaults {
	return Defaults{
		Link:              "https://www.google.com?q=jump",
		Domain:            "test3p.app.goo.gl",
		MinimumAppVersion: "1.0",
	}
}

// Heights for the fixed sections. The parameter section uses the heights
// of its section.Store.
type Heights struct {
	Component float64
	Result    float64
}

// DefaultHeights matches section.DefaultHeights.
var DefaultHeights = Heights{Component: 80, Result: 44}

// Config configures a Screen.
type Config struct {
	Builder        *link.Builder
	Defaults       Defaults
	Schema         []field.Spec
	Heights        Heights
	SectionHeights section.Heights
}

// Screen is the view model.
type Screen struct {
	builder  *link.Builder
	defaults Defaults
	heights  Heights
	groups   []field.Group
	params   *section.Store[field.ID]
	values   field.Values
	seeded   bool
	realized map[field.ID]bool

	pending  *link.Request
	long     *url.URL
	short    *url.URL
	warnings []string
	lastErr  error
}

// New builds a Screen. Zero-valued Config fields take their defaults; the
// schema defaults to field.DefaultSchema with every group collapsed. A
// schema that repeats a parameter, or places a component field or an
// unknown field in a group, is rejected.
func New(cfg Config) (*Screen, error) {
	schema := cfg.Schema
	if schema == nil {
		schema = field.DefaultSchema()
	}
	heights := cfg.Heights
	if heights == (Heights{}) {
		heights = DefaultHeights
	}
	sh := cfg.SectionHeights
	if sh == (section.Heights{}) {
		sh = section.DefaultHeights
	}
	groups := make([]section.Group[field.ID], len(schema))
	names := make([]field.Group, len(schema))
	for i, spec := range schema {
		for _, id := range spec.Items {
			if !id.Valid() || id.Required() {
				return nil, fmt.Errorf("form: field %d (%s) cannot be listed in group %q", int(id), id, spec.Group.Label())
			}
		}
		groups[i] = section.Group[field.ID]{Name: spec.Group.Label(), Items: spec.Items}
		names[i] = spec.Group
	}
	params, err := section.NewChecked(groups, section.WithHeights(sh))
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return &Screen{
		builder:  cfg.Builder,
		defaults: cfg.Defaults,
		heights:  heights,
		groups:   names,
		params:   params,
		values:   make(field.Values),
		realized: make(map[field.ID]bool),
	}, nil
}

// seed realizes the component defaults once. The components section is
// always on screen, so its rows count as rendered from the first query.
func (s *Screen) seed() {
	if s.seeded {
		return
	}
	s.seeded = true
	for _, id := range field.Required() {
		s.realize(id)
	}
}

// realize fills id's default the first time its row is rendered. Values
// already edited win.
func (s *Screen) realize(id field.ID) {
	if s.realized[id] {
		return
	}
	s.realized[id] = true
	v := s.defaultFor(id)
	if v == "" {
		return
	}
	if _, ok := s.values.Get(id); !ok {
		s.values.Set(id, v)
	}
}

func (s *Screen) defaultFor(id field.ID) string {
	switch id {
	case field.Link:
		return s.defaults.Link
	case field.Domain:
		return s.defaults.Domain
	case field.BundleID:
		return s.defaults.BundleID
	case field.MinimumAppVersion:
		return s.defaults.MinimumAppVersion
	}
	return ""
}

// Parameters exposes the collapsible group store.
func (s *Screen) Parameters() *section.Store[field.ID] { return s.params }

// NumberOfRows is the row count for a section.
func (s *Screen) NumberOfRows(id SectionID) (int, error) {
	s.seed()
	switch id {
	case SectionComponents:
		return len(field.Required()), nil
	case SectionParameters:
		return s.params.Mapper().TotalRows(), nil
	case SectionGenerate:
		return numResultRows, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownSection, int(id))
}

// RowHeight is the drawn height of a row; collapsed items report zero.
func (s *Screen) RowHeight(id SectionID, row int) (float64, error) {
	n, err := s.NumberOfRows(id)
	if err != nil {
		return 0, err
	}
	if id == SectionParameters {
		return s.params.FlatHeight(row)
	}
	if row < 0 || row >= n {
		return 0, fmt.Errorf("%w: row %d of %s", section.ErrIndexOutOfRange, row, id)
	}
	if id == SectionComponents {
		return s.heights.Component, nil
	}
	return s.heights.Result, nil
}

// CellContent returns what to draw for a row.
func (s *Screen) CellContent(id SectionID, row int) (Cell, error) {
	n, err := s.NumberOfRows(id)
	if err != nil {
		return Cell{}, err
	}
	if id != SectionParameters && (row < 0 || row >= n) {
		return Cell{}, fmt.Errorf("%w: row %d of %s", section.ErrIndexOutOfRange, row, id)
	}
	switch id {
	case SectionComponents:
		fid := field.Required()[row]
		return s.fieldCell(fid, -1), nil
	case SectionGenerate:
		c := Cell{Kind: KindResult, Label: resultLabels[row], Group: -1}
		switch row {
		case RowLong:
			c.Value = urlString(s.long)
		case RowShort:
			c.Value = urlString(s.short)
		}
		return c, nil
	}

	pos, err := s.params.Mapper().Locate(row)
	if err != nil {
		return Cell{}, err
	}
	g, err := s.params.Group(pos.Group)
	if err != nil {
		return Cell{}, err
	}
	if pos.IsHeader() {
		return Cell{Kind: KindHeader, Label: g.Name, Group: pos.Group, Collapsed: g.Collapsed}, nil
	}
	c := s.fieldCell(g.Items[pos.Item()], pos.Group)
	c.Collapsed = g.Collapsed
	return c, nil
}

func (s *Screen) fieldCell(id field.ID, group int) Cell {
	s.realize(id)
	v, _ := s.values.Get(id)
	return Cell{Kind: KindField, Label: id.Label(), Value: v, Field: id, Group: group}
}

// GroupLabel is the field.Group behind a parameter group index.
func (s *Screen) GroupLabel(groupIndex int) (field.Group, error) {
	if groupIndex < 0 || groupIndex >= len(s.groups) {
		return 0, fmt.Errorf("%w: group %d", section.ErrIndexOutOfRange, groupIndex)
	}
	return s.groups[groupIndex], nil
}

// OnToggle flips a parameter group and returns the half-open flat row range
// in SectionParameters whose heights changed, header included.
func (s *Screen) OnToggle(groupIndex int) (start, end int, err error) {
	if err := s.params.Toggle(groupIndex); err != nil {
		return 0, 0, err
	}
	return s.params.Mapper().RowRange(groupIndex)
}

// OnFieldEdited stores new text for a parameter.
func (s *Screen) OnFieldEdited(id field.ID, value string) error {
	if !id.Valid() {
		return fmt.Errorf("form: unknown field %d", int(id))
	}
	s.seed()
	s.realized[id] = true
	s.values.Set(id, value)
	return nil
}

// Values returns a copy of the current inputs.
func (s *Screen) Values() field.Values {
	s.seed()
	return s.values.Clone()
}

// OnBuildRequested validates the inputs and marks a request pending. The
// caller runs Shorten on the returned request and feeds its result to
// OnShortened. Validation errors are recorded for display and returned;
// the previous links are left untouched.
func (s *Screen) OnBuildRequested() (*link.Request, error) {
	if s.pending != nil {
		return nil, ErrBuildPending
	}
	if s.builder == nil {
		return nil, link.ErrNoLinker
	}
	s.seed()
	r, err := s.builder.Prepare(s.values)
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	s.pending = r
	s.lastErr = nil
	return r, nil
}

// OnShortened delivers the outcome of the pending request. Results for any
// other request are ignored. On error the previous links are kept.
func (s *Screen) OnShortened(r *link.Request, res link.Result) bool {
	if r == nil || r != s.pending {
		return false
	}
	s.pending = nil
	if res.Err != nil {
		s.lastErr = res.Err
		return true
	}
	s.lastErr = nil
	s.long = res.Long
	s.short = res.Short
	s.warnings = res.Warnings
	return true
}

// Release drops the pending marker without a result, for a screen that is
// going away.
func (s *Screen) Release() { s.pending = nil }

// Pending reports whether a request is awaiting its result.
func (s *Screen) Pending() bool { return s.pending != nil }

// Long is the last successfully generated long link.
func (s *Screen) Long() *url.URL { return s.long }

// Short is the last successfully generated short link.
func (s *Screen) Short() *url.URL { return s.short }

// Warnings from the last successful shorten.
func (s *Screen) Warnings() []string { return s.warnings }

// Err is the last validation or service error, cleared by a success.
func (s *Screen) Err() error { return s.lastErr }

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
