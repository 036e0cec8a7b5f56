package form

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/link"
	"tableflip.dev/dynlink/pkg/section"
)

type fakeLinker struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeLinker) LongLink(c *link.Components) (*url.URL, error) {
	q := url.Values{}
	q.Set("link", c.Link.String())
	return &url.URL{Scheme: "https", Host: c.Domain, Path: "/", RawQuery: q.Encode()}, nil
}

func (f *fakeLinker) Shorten(_ context.Context, long *url.URL, _ link.Options) (*link.Shortened, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &link.Shortened{URL: &url.URL{Scheme: "https", Host: long.Host, Path: "/short"}}, nil
}

func newScreen(fl *fakeLinker) *Screen {
	s, err := New(Config{Builder: &link.Builder{Linker: fl}, Defaults: DefaultDefaults()})
	if err != nil {
		panic(err)
	}
	return s
}

func TestRowCounts(t *testing.T) {
	s := newScreen(&fakeLinker{})
	for _, tt := range []struct {
		id   SectionID
		want int
	}{
		{SectionComponents, 2},
		{SectionParameters, 26},
		{SectionGenerate, 2},
	} {
		got, err := s.NumberOfRows(tt.id)
		if err != nil {
			t.Fatalf("NumberOfRows(%s): %v", tt.id, err)
		}
		if got != tt.want {
			t.Fatalf("NumberOfRows(%s) = %d, want %d", tt.id, got, tt.want)
		}
	}
	if _, err := s.NumberOfRows(SectionID(7)); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestDefaultsAppearOnFirstRender(t *testing.T) {
	s := newScreen(&fakeLinker{})
	c, err := s.CellContent(SectionComponents, 0)
	if err != nil {
		t.Fatalf("CellContent: %v", err)
	}
	if c.Label != "Link Value" || c.Field != field.Link {
		t.Fatalf("unexpected first component %+v", c)
	}
	if c.Value != "https://www.google.com?q=jump" {
		t.Fatalf("link default missing: %q", c.Value)
	}
	c, _ = s.CellContent(SectionComponents, 1)
	if c.Field != field.Domain || c.Value != "test3p.app.goo.gl" {
		t.Fatalf("domain default missing: %+v", c)
	}
	// iOS header is row 6; minimum app version is its third item.
	c, err = s.CellContent(SectionParameters, 9)
	if err != nil {
		t.Fatalf("CellContent: %v", err)
	}
	if c.Field != field.MinimumAppVersion || c.Value != "1.0" {
		t.Fatalf("minimum app version default missing: %+v", c)
	}
}

func TestParameterDefaultsWaitForTheirRow(t *testing.T) {
	d := DefaultDefaults()
	d.BundleID = "com.example"
	s, err := New(Config{Builder: &link.Builder{Linker: &fakeLinker{}}, Defaults: d})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.NumberOfRows(SectionGenerate); err != nil {
		t.Fatalf("NumberOfRows: %v", err)
	}
	v := s.Values()
	if _, ok := v.Get(field.BundleID); ok {
		t.Fatalf("bundle id realized before its row was rendered")
	}
	if got, _ := v.Get(field.Link); got != d.Link {
		t.Fatalf("component default missing: %q", got)
	}

	// iOS header is row 6; bundle id is its first item.
	c, err := s.CellContent(SectionParameters, 7)
	if err != nil {
		t.Fatalf("CellContent: %v", err)
	}
	if c.Field != field.BundleID || c.Value != "com.example" {
		t.Fatalf("bundle id default missing after render: %+v", c)
	}
	if got, _ := s.Values().Get(field.BundleID); got != "com.example" {
		t.Fatalf("rendered default not kept in values: %q", got)
	}
}

func TestEditBeforeRenderSuppressesParameterDefault(t *testing.T) {
	s := newScreen(&fakeLinker{})
	if err := s.OnFieldEdited(field.MinimumAppVersion, ""); err != nil {
		t.Fatalf("OnFieldEdited: %v", err)
	}
	c, _ := s.CellContent(SectionParameters, 9)
	if c.Field != field.MinimumAppVersion || c.Value != "" {
		t.Fatalf("default replaced an edit: %+v", c)
	}
}

func TestNewRejectsBadSchema(t *testing.T) {
	tests := map[string][]field.Spec{
		"duplicate across groups": {
			{Group: field.GoogleAnalytics, Items: []field.ID{field.Source, field.Medium}},
			{Group: field.Social, Items: []field.ID{field.Source}},
		},
		"component field in group": {
			{Group: field.GoogleAnalytics, Items: []field.ID{field.Link}},
		},
		"unknown field": {
			{Group: field.GoogleAnalytics, Items: []field.ID{field.ID(-1)}},
		},
	}
	for name, schema := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := New(Config{Schema: schema}); err == nil {
				t.Fatalf("expected schema error")
			}
		})
	}

	_, err := New(Config{Schema: tests["duplicate across groups"]})
	if !errors.Is(err, section.ErrDuplicateItem) {
		t.Fatalf("expected section.ErrDuplicateItem, got %v", err)
	}
}

func TestEditsBeforeRenderWinOverDefaults(t *testing.T) {
	s := newScreen(&fakeLinker{})
	if err := s.OnFieldEdited(field.Link, "https://example.com/x"); err != nil {
		t.Fatalf("OnFieldEdited: %v", err)
	}
	c, _ := s.CellContent(SectionComponents, 0)
	if c.Value != "https://example.com/x" {
		t.Fatalf("edit overwritten by default: %q", c.Value)
	}
	if err := s.OnFieldEdited(field.ID(-1), "x"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParameterHeadersAndHeights(t *testing.T) {
	s := newScreen(&fakeLinker{})
	c, err := s.CellContent(SectionParameters, 6)
	if err != nil {
		t.Fatalf("CellContent: %v", err)
	}
	if c.Kind != KindHeader || c.Label != "iOS" || c.Group != 1 || !c.Collapsed {
		t.Fatalf("row 6 should be the collapsed iOS header, got %+v", c)
	}
	if h, _ := s.RowHeight(SectionParameters, 6); h != 44 {
		t.Fatalf("header height = %v", h)
	}
	if h, _ := s.RowHeight(SectionParameters, 7); h != 0 {
		t.Fatalf("collapsed item height = %v", h)
	}
	if h, _ := s.RowHeight(SectionComponents, 0); h != 80 {
		t.Fatalf("component height = %v", h)
	}
	if h, _ := s.RowHeight(SectionGenerate, 1); h != 44 {
		t.Fatalf("result height = %v", h)
	}
	if _, err := s.RowHeight(SectionGenerate, 2); !errors.Is(err, section.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := s.CellContent(SectionParameters, 26); !errors.Is(err, section.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestOnToggleReturnsGroupRange(t *testing.T) {
	s := newScreen(&fakeLinker{})
	start, end, err := s.OnToggle(1)
	if err != nil {
		t.Fatalf("OnToggle: %v", err)
	}
	if start != 6 || end != 14 {
		t.Fatalf("range = [%d,%d), want [6,14)", start, end)
	}
	for row := start + 1; row < end; row++ {
		if h, _ := s.RowHeight(SectionParameters, row); h != 80 {
			t.Fatalf("row %d height %v after expand", row, h)
		}
	}
	if h, _ := s.RowHeight(SectionParameters, 14); h != 44 {
		t.Fatalf("next header changed: %v", h)
	}
	if _, _, err := s.OnToggle(5); !errors.Is(err, section.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	g, err := s.GroupLabel(3)
	if err != nil || g != field.Android {
		t.Fatalf("GroupLabel(3) = %v, %v", g, err)
	}
}

func TestBuildFlow(t *testing.T) {
	fl := &fakeLinker{}
	s := newScreen(fl)

	r, err := s.OnBuildRequested()
	if err != nil {
		t.Fatalf("OnBuildRequested: %v", err)
	}
	if !s.Pending() {
		t.Fatalf("expected pending request")
	}
	if _, err := s.OnBuildRequested(); !errors.Is(err, ErrBuildPending) {
		t.Fatalf("expected ErrBuildPending, got %v", err)
	}

	res := r.Shorten(context.Background())
	if !s.OnShortened(r, res) {
		t.Fatalf("result for pending request ignored")
	}
	if s.Pending() {
		t.Fatalf("pending marker not released")
	}
	if fl.calls != 1 {
		t.Fatalf("expected one shorten call, got %d", fl.calls)
	}
	c, _ := s.CellContent(SectionGenerate, RowShort)
	if c.Kind != KindResult || c.Label != "Short Link" || c.Value != "https://test3p.app.goo.gl/short" {
		t.Fatalf("unexpected short cell %+v", c)
	}
	c, _ = s.CellContent(SectionGenerate, RowLong)
	if c.Value == "" {
		t.Fatalf("long link not shown")
	}
	if s.OnShortened(r, res) {
		t.Fatalf("stale result accepted")
	}
}

func TestFailedShortenKeepsPreviousLinks(t *testing.T) {
	fl := &fakeLinker{}
	s := newScreen(fl)
	r, _ := s.OnBuildRequested()
	s.OnShortened(r, r.Shorten(context.Background()))
	before := s.Short().String()

	fl.err = errors.New("quota exceeded")
	_ = s.OnFieldEdited(field.Link, "https://example.com/other")
	r, err := s.OnBuildRequested()
	if err != nil {
		t.Fatalf("OnBuildRequested: %v", err)
	}
	s.OnShortened(r, r.Shorten(context.Background()))
	if s.Short().String() != before {
		t.Fatalf("short link changed after failure")
	}
	if s.Err() == nil {
		t.Fatalf("service error not surfaced")
	}
}

func TestBuildWithoutLinkNeverShortens(t *testing.T) {
	fl := &fakeLinker{}
	s := newScreen(fl)
	_ = s.OnFieldEdited(field.Link, "")
	if _, err := s.OnBuildRequested(); !errors.Is(err, link.ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	if s.Pending() || fl.calls != 0 {
		t.Fatalf("invalid build must not start a request")
	}
	if !errors.Is(s.Err(), link.ErrMissingRequiredField) {
		t.Fatalf("validation error not recorded: %v", s.Err())
	}
}

func TestReleaseDropsPending(t *testing.T) {
	s := newScreen(&fakeLinker{})
	r, _ := s.OnBuildRequested()
	s.Release()
	if s.Pending() {
		t.Fatalf("pending after release")
	}
	if s.OnShortened(r, link.Result{}) {
		t.Fatalf("released request accepted")
	}
}

func TestSectionTitles(t *testing.T) {
	want := []string{"Components", "Optional Parameters", "Click to Generate Links"}
	for i, id := range Sections() {
		if id.Title() != want[i] {
			t.Fatalf("title %d = %q", i, id.Title())
		}
	}
}
