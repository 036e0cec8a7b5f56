package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/form"
	"tableflip.dev/dynlink/pkg/history"
	"tableflip.dev/dynlink/pkg/link"
)

type fakeLinker struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeLinker) LongLink(c *link.Components) (*url.URL, error) {
	return &url.URL{Scheme: "https", Host: c.Domain, Path: "/", RawQuery: "link=" + url.QueryEscape(c.Link.String())}, nil
}

func (f *fakeLinker) Shorten(_ context.Context, long *url.URL, _ link.Options) (*link.Shortened, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &link.Shortened{URL: &url.URL{Scheme: "https", Host: long.Host, Path: "/xyz"}}, nil
}

func (f *fakeLinker) shortenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testClipboard struct{ got []string }

func (c *testClipboard) write(s string) error {
	c.got = append(c.got, s)
	return nil
}

func newTestModel(t *testing.T, fl *fakeLinker) (Model, *testClipboard) {
	t.Helper()
	svc := &app.Service{Linker: fl}
	cb := &testClipboard{}
	screen, err := svc.Screen(form.DefaultDefaults())
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	m := New(svc, screen, WithClipboard(cb.write))
	return m, cb
}

func keyPress(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Text: s, Code: []rune(s)[0]}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", next)
	}
	return nm, cmd
}

// drain runs cmd and any batched commands, returning their messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findShortened(t *testing.T, msgs []tea.Msg) shortenedMsg {
	t.Helper()
	for _, msg := range msgs {
		if sm, ok := msg.(shortenedMsg); ok {
			return sm
		}
	}
	t.Fatalf("no shortened message in %v", msgs)
	return shortenedMsg{}
}

func moveTo(t *testing.T, m Model, key rowKey) Model {
	t.Helper()
	for i := 0; i < 64; i++ {
		if m.cursor == key {
			return m
		}
		m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	}
	t.Fatalf("row %+v never reached", key)
	return m
}

func iosHeader() rowKey {
	return rowKey{section: form.SectionParameters, row: 6}
}

func TestEnterTogglesGroup(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	if strings.Contains(m.View(), "App Bundle ID") {
		t.Fatalf("collapsed items should not be drawn")
	}

	m = moveTo(t, m, iosHeader())
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if collapsed, _ := m.screen.Parameters().Collapsed(1); collapsed {
		t.Fatalf("expected iOS group expanded")
	}
	if view := m.View(); !strings.Contains(view, "App Bundle ID") || !strings.Contains(view, "▾ iOS") {
		t.Fatalf("expanded items missing from view:\n%s", view)
	}

	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if collapsed, _ := m.screen.Parameters().Collapsed(1); !collapsed {
		t.Fatalf("expected iOS group collapsed again")
	}
}

func TestCollapseAllMovesCursorToHeader(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	m, _ = update(t, m, keyPress("e"))
	for g := 0; g < m.screen.Parameters().Len(); g++ {
		if collapsed, _ := m.screen.Parameters().Collapsed(g); collapsed {
			t.Fatalf("group %d still collapsed after expand all", g)
		}
	}
	m = moveTo(t, m, rowKey{section: form.SectionParameters, row: 8})
	m, _ = update(t, m, keyPress("c"))
	if m.cursor != iosHeader() {
		t.Fatalf("cursor should fall back to the group header, got %+v", m.cursor)
	}
}

func TestEditField(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeEdit || m.editing != field.Link {
		t.Fatalf("expected to edit the link, mode=%v field=%v", m.mode, m.editing)
	}
	m.input.SetValue("https://example.com/app")
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeNormal {
		t.Fatalf("expected normal mode after save")
	}
	if got := m.screen.Values()[field.Link]; got != "https://example.com/app" {
		t.Fatalf("link not saved: %q", got)
	}
}

func TestEditCancelKeepsValue(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m.input.SetValue("changed")
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if got := m.screen.Values()[field.Link]; got != "https://www.google.com?q=jump" {
		t.Fatalf("cancel should keep the old value, got %q", got)
	}
}

func TestBuildShortensOnceAndShowsResult(t *testing.T) {
	fl := &fakeLinker{}
	m, cb := newTestModel(t, fl)

	m, cmd := update(t, m, keyPress("b"))
	if !m.screen.Pending() {
		t.Fatalf("expected pending request")
	}

	m, again := update(t, m, keyPress("b"))
	if again != nil && len(drain(again)) != 0 {
		t.Fatalf("second build should not start a request")
	}
	if !m.statusErr || !strings.Contains(m.status, "Still generating") {
		t.Fatalf("expected pending status, got %q", m.status)
	}

	sm := findShortened(t, drain(cmd))
	m, _ = update(t, m, sm)
	if fl.shortenCalls() != 1 {
		t.Fatalf("expected one shorten call, got %d", fl.shortenCalls())
	}
	if m.screen.Short() == nil || m.screen.Short().String() != "https://test3p.app.goo.gl/xyz" {
		t.Fatalf("short link not stored: %v", m.screen.Short())
	}
	if !strings.Contains(m.View(), "https://test3p.app.goo.gl/xyz") {
		t.Fatalf("short link not drawn")
	}

	m, _ = update(t, m, keyPress("y"))
	if len(cb.got) != 1 || cb.got[0] != "https://test3p.app.goo.gl/xyz" {
		t.Fatalf("clipboard got %v", cb.got)
	}
}

func TestBuildOnGenerateTitle(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	m = moveTo(t, m, rowKey{section: form.SectionGenerate, title: true})
	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil || !m.screen.Pending() {
		t.Fatalf("enter on the generate title should build")
	}
}

func TestBuildWithoutLinkShowsInlineError(t *testing.T) {
	fl := &fakeLinker{}
	m, _ := newTestModel(t, fl)
	m, _ = update(t, m, keyPress("x"))
	m, cmd := update(t, m, keyPress("b"))
	if len(drain(cmd)) != 0 {
		t.Fatalf("no command expected for invalid input")
	}
	if !m.statusErr || m.status != "Link Value is required" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if fl.shortenCalls() != 0 {
		t.Fatalf("shorten called for invalid input")
	}
}

func TestFailedShortenKeepsLinks(t *testing.T) {
	fl := &fakeLinker{}
	m, _ := newTestModel(t, fl)
	_, cmd := update(t, m, keyPress("b"))
	m, _ = update(t, m, findShortened(t, drain(cmd)))

	fl.mu.Lock()
	fl.err = errors.New("quota exceeded")
	fl.mu.Unlock()
	m, cmd = update(t, m, keyPress("b"))
	m, _ = update(t, m, findShortened(t, drain(cmd)))
	if m.screen.Short() == nil {
		t.Fatalf("previous short link lost")
	}
	if !m.statusErr || !strings.Contains(m.status, "quota exceeded") {
		t.Fatalf("service error not shown: %q", m.status)
	}
}

func TestLatestHistoryInFooter(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	e := &history.Entry{Short: "https://a.page.link/last", Created: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)}
	m, _ = update(t, m, latestMsg{entry: e})
	if !strings.Contains(m.View(), "https://a.page.link/last") {
		t.Fatalf("latest link missing from footer")
	}
}

func TestQuitReleasesPending(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	m, _ = update(t, m, keyPress("b"))
	m, cmd := update(t, m, keyPress("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if m.screen.Pending() {
		t.Fatalf("pending marker should be released on quit")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m, _ := newTestModel(t, &fakeLinker{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})
	m, _ = update(t, m, keyPress("e"))
	m, _ = update(t, m, keyPress("G"))
	rows, err := visibleRows(m.screen)
	if err != nil {
		t.Fatalf("visibleRows: %v", err)
	}
	idx := indexOf(m.screen, rows, m.cursor)
	if idx != len(rows)-1 {
		t.Fatalf("cursor not at bottom: %d of %d", idx, len(rows))
	}
	if idx < m.offset || idx >= m.offset+m.bodyHeight() {
		t.Fatalf("cursor %d outside window [%d,%d)", idx, m.offset, m.offset+m.bodyHeight())
	}
	if !strings.Contains(m.View(), "Short Link") {
		t.Fatalf("bottom row not drawn")
	}
}
