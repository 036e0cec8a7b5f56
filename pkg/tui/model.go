// Package tui is the terminal front end for building dynamic links.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/form"
	"tableflip.dev/dynlink/pkg/history"
	"tableflip.dev/dynlink/pkg/link"
	"tableflip.dev/dynlink/pkg/tui/theme"
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
)

// footerLines is the space reserved below the rows: status, last link and
// help.
const footerLines = 4

// Model contains UI state.
type Model struct {
	svc    *app.Service
	screen *form.Screen
	ctx    context.Context
	log    *slog.Logger

	keys  keyMap
	help  help.Model
	theme theme.Theme
	input textinput.Model

	mode    mode
	editing field.ID
	cursor  rowKey
	offset  int

	width  int
	height int

	status    string
	statusErr bool
	latest    *history.Entry

	copyText func(string) error
}

// Option customises a Model.
type Option func(*Model)

// WithContext sets the context used for shorten calls and the history
// watch.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copyText = fn }
}

// WithLogger sets the logger. The terminal is owned by the program, so
// this should not write to stdout or stderr.
func WithLogger(log *slog.Logger) Option {
	return func(m *Model) { m.log = log }
}

// New creates a UI model over screen, building through svc.
func New(svc *app.Service, screen *form.Screen, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 2048

	m := Model{
		svc:      svc,
		screen:   screen,
		ctx:      context.Background(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		keys:     defaultKeyMap,
		help:     help.New(),
		theme:    theme.Default(),
		input:    ti,
		status:   "enter toggles groups and edits fields, b generates",
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.cursor = rowKey{section: form.SectionComponents, row: 0}
	return m
}

// messages
type shortenedMsg struct {
	req *link.Request
	res link.Result
}
type watchStartedMsg struct{ ch <-chan history.Event }
type historyChangedMsg struct{ ch <-chan history.Event }
type latestMsg struct{ entry *history.Entry }
type errMsg struct{ err error }

// Init loads the latest history entry and subscribes to history changes.
func (m Model) Init() tea.Cmd {
	if m.svc == nil || m.svc.History == nil {
		return nil
	}
	return tea.Batch(m.loadLatest(), m.startWatch())
}

func (m *Model) loadLatest() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		e, ok := svc.Latest(ctx)
		if !ok {
			return latestMsg{}
		}
		return latestMsg{entry: &e}
	}
}

func (m *Model) startWatch() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		ch, err := svc.Watch(ctx)
		if err != nil {
			return errMsg{err}
		}
		return watchStartedMsg{ch}
	}
}

func waitForHistory(ch <-chan history.Event) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return historyChangedMsg{ch}
	}
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case errMsg:
		m.setError(msg.err)
	case latestMsg:
		m.latest = msg.entry
	case watchStartedMsg:
		cmds = append(cmds, waitForHistory(msg.ch))
	case historyChangedMsg:
		cmds = append(cmds, m.loadLatest(), waitForHistory(msg.ch))
	case shortenedMsg:
		if m.screen.OnShortened(msg.req, msg.res) {
			if msg.res.Err != nil {
				m.setError(msg.res.Err)
			} else {
				m.setStatus(shortenedStatus(msg.res))
			}
		}
	case tea.KeyPressMsg:
		switch m.mode {
		case modeEdit:
			cmds = append(cmds, m.updateEdit(msg))
		default:
			cmds = append(cmds, m.updateNormal(msg))
		}
	}

	m.scrollToCursor()
	return m, tea.Batch(cmds...)
}

func (m *Model) updateEdit(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Save):
		if err := m.screen.OnFieldEdited(m.editing, m.input.Value()); err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("%s updated", m.editing.Label()))
		}
		m.stopEdit()
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.stopEdit()
		m.setStatus("Edit cancelled")
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateNormal(msg tea.KeyPressMsg) tea.Cmd {
	rows, err := visibleRows(m.screen)
	if err != nil {
		m.setError(err)
		return nil
	}
	idx := indexOf(m.screen, rows, m.cursor)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.screen.Release()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if idx > 0 {
			m.cursor = rows[idx-1].key
		}
	case key.Matches(msg, m.keys.Down):
		if idx < len(rows)-1 {
			m.cursor = rows[idx+1].key
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = rows[0].key
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = rows[len(rows)-1].key
	case key.Matches(msg, m.keys.Expand):
		m.screen.Parameters().ExpandAll()
	case key.Matches(msg, m.keys.Collapse):
		m.screen.Parameters().CollapseAll()
	case key.Matches(msg, m.keys.Build):
		return m.build()
	case key.Matches(msg, m.keys.Copy):
		m.copyRow(rows[idx])
	case key.Matches(msg, m.keys.Clear):
		r := rows[idx]
		if r.cell.Kind == form.KindField && !r.key.title {
			if err := m.screen.OnFieldEdited(r.cell.Field, ""); err != nil {
				m.setError(err)
			} else {
				m.setStatus(fmt.Sprintf("%s cleared", r.cell.Field.Label()))
			}
		}
	case key.Matches(msg, m.keys.Select):
		return m.activate(rows[idx])
	}
	return nil
}

// activate handles enter on a row.
func (m *Model) activate(r viewRow) tea.Cmd {
	if r.key.title {
		if r.key.section == form.SectionGenerate {
			return m.build()
		}
		return nil
	}
	switch r.cell.Kind {
	case form.KindHeader:
		if _, _, err := m.screen.OnToggle(r.cell.Group); err != nil {
			m.setError(err)
		}
	case form.KindField:
		return m.startEdit(r.cell)
	case form.KindResult:
		m.copyRow(r)
	}
	return nil
}

func (m *Model) startEdit(c form.Cell) tea.Cmd {
	m.mode = modeEdit
	m.editing = c.Field
	m.input.Placeholder = c.Field.Label()
	m.input.SetValue(c.Value)
	m.input.CursorEnd()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) stopEdit() {
	m.mode = modeNormal
	m.input.Reset()
	m.input.Blur()
}

// build starts the shorten call off the update loop. Its result comes
// back as a shortenedMsg.
func (m *Model) build() tea.Cmd {
	req, err := m.screen.OnBuildRequested()
	if err != nil {
		m.setError(err)
		return nil
	}
	for _, id := range req.Dropped {
		m.log.Warn("ignored malformed parameter", "field", id.Key())
	}
	m.setStatus("Generating…")
	svc, ctx, values := m.svc, m.ctx, m.screen.Values()
	return func() tea.Msg {
		res := req.Shorten(ctx)
		if svc != nil {
			svc.Record(values, res)
		}
		return shortenedMsg{req: req, res: res}
	}
}

func (m *Model) copyRow(r viewRow) {
	text := r.cell.Value
	if r.key.section != form.SectionGenerate || r.key.title {
		if s := m.screen.Short(); s != nil {
			text = s.String()
		} else {
			text = ""
		}
	}
	if text == "" {
		m.setStatus("Nothing to copy")
		return
	}
	if err := m.copyText(text); err != nil {
		m.setError(fmt.Errorf("copy: %w", err))
		return
	}
	m.setStatus("Copied " + text)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = errorText(err)
	m.statusErr = true
	if !link.IsValidation(err) && !errors.Is(err, form.ErrBuildPending) {
		m.log.Error("link builder", "err", err)
	}
}

func errorText(err error) string {
	var fe *link.FieldError
	switch {
	case errors.As(err, &fe) && errors.Is(err, link.ErrMissingRequiredField):
		return fmt.Sprintf("%s is required", fe.Field.Label())
	case errors.As(err, &fe):
		return fmt.Sprintf("%s is not valid", fe.Field.Label())
	case errors.Is(err, form.ErrBuildPending):
		return "Still generating the previous link"
	}
	return "Error: " + err.Error()
}

func shortenedStatus(res link.Result) string {
	if len(res.Warnings) == 0 {
		return "Links generated"
	}
	return "Links generated with warnings: " + strings.Join(res.Warnings, "; ")
}

// scrollToCursor keeps the cursor inside the drawn window.
func (m *Model) scrollToCursor() {
	body := m.bodyHeight()
	if body <= 0 {
		m.offset = 0
		return
	}
	rows, err := visibleRows(m.screen)
	if err != nil {
		return
	}
	idx := indexOf(m.screen, rows, m.cursor)
	m.cursor = rows[idx].key
	if idx < m.offset {
		m.offset = idx
	}
	if idx >= m.offset+body {
		m.offset = idx - body + 1
	}
	if maxOffset := max(len(rows)-body, 0); m.offset > maxOffset {
		m.offset = maxOffset
	}
}

func (m *Model) bodyHeight() int {
	if m.height == 0 {
		return 0
	}
	return max(m.height-footerLines-2, 1)
}

// Run launches the program and blocks until it exits.
func Run(ctx context.Context, svc *app.Service, screen *form.Screen, opts ...Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts = append([]Option{WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(svc, screen, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
