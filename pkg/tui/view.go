package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/dynlink/pkg/form"
)

const appTitle = "Dynamic Link Builder"

// View renders the title, the visible rows and the footer.
func (m Model) View() string {
	rows, err := visibleRows(m.screen)
	if err != nil {
		return errorText(err)
	}
	cur := indexOf(m.screen, rows, m.cursor)

	start, end := 0, len(rows)
	if body := m.bodyHeight(); body > 0 {
		start = min(m.offset, len(rows))
		end = min(start+body, len(rows))
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(appTitle))
	b.WriteString("\n\n")
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(rows[i], i == cur))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderRow(r viewRow, selected bool) string {
	marker := "  "
	if selected {
		marker = "› "
	}
	if r.key.title {
		return marker + m.theme.Section.Render(r.key.section.Title())
	}

	c := r.cell
	switch c.Kind {
	case form.KindHeader:
		arrow := "▾"
		if c.Collapsed {
			arrow = "▸"
		}
		line := m.theme.Row.Header.Render(fmt.Sprintf("%s %s", arrow, c.Label))
		return m.selectLine(marker+"  "+line, selected)
	case form.KindResult:
		prefix := marker + "  " + c.Label + ": "
		value := m.fit(c.Value, prefix)
		if value == "" {
			return m.selectLine(prefix+m.theme.Row.Empty.Render("not generated"), selected)
		}
		return m.selectLine(prefix+m.theme.Row.Result.Render(value), selected)
	}

	indent := "  "
	if r.key.section == form.SectionParameters {
		indent = "    "
	}
	prefix := marker + indent + m.theme.Row.Label.Render(c.Label) + ": "
	if m.mode == modeEdit && c.Field == m.editing {
		return prefix + m.theme.Row.Editing.Render(m.input.View())
	}
	value := m.fit(c.Value, prefix)
	if value == "" {
		return m.selectLine(prefix+m.theme.Row.Empty.Render("empty"), selected)
	}
	return m.selectLine(prefix+m.theme.Row.Value.Render(value), selected)
}

func (m Model) selectLine(line string, selected bool) string {
	if !selected {
		return line
	}
	return m.theme.Row.Selected.Render(line)
}

// fit truncates value so prefix+value fits the terminal width.
func (m Model) fit(value, prefix string) string {
	if m.width <= 0 {
		return value
	}
	room := m.width - ansi.PrintableRuneWidth(prefix)
	if room <= 1 {
		return ""
	}
	return truncate.StringWithTail(value, uint(room), "…")
}

func (m Model) renderFooter() string {
	var lines []string
	if m.statusErr {
		lines = append(lines, m.theme.Footer.Error.Render(m.status))
	} else {
		lines = append(lines, m.theme.Footer.Status.Render(m.status))
	}
	if m.latest != nil {
		last := fmt.Sprintf("Last: %s (%s)", m.latest.Link(), m.latest.Created.Local().Format("Jan 2 15:04"))
		if m.width > 0 {
			last = truncate.StringWithTail(last, uint(m.width), "…")
		}
		lines = append(lines, m.theme.Footer.Last.Render(last))
	}
	if m.mode == modeEdit {
		lines = append(lines, m.help.View(editKeys{m.keys}))
	} else {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}
