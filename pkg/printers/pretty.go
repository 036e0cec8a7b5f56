package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/history"
	"tableflip.dev/dynlink/pkg/link"
	"tableflip.dev/dynlink/pkg/timeutil"
)

// PrettyPrint renders CLI output for humans.
type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
	// MaxWidth truncates long links in tables and wraps warnings when > 0.
	MaxWidth uint
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " link")
	default:
		_, _ = c.Fprintln(pp.out(), " links")
	}
}

// Result prints the long and short link of a build.
func (pp *PrettyPrint) Result(res link.Result, dropped []string) {
	label := color.New(color.Faint)
	value := color.New(color.FgHiGreen)
	warn := color.New(color.FgYellow)

	if res.Long != nil {
		_, _ = label.Fprint(pp.out(), "Long Link:  ")
		_, _ = fmt.Fprintln(pp.out(), res.Long.String())
	}
	if res.Short != nil {
		_, _ = label.Fprint(pp.out(), "Short Link: ")
		_, _ = value.Fprintln(pp.out(), res.Short.String())
	}
	for _, w := range res.Warnings {
		text := "warning: " + w
		if pp.MaxWidth > 0 {
			text = wordwrap.String(text, int(pp.MaxWidth))
		}
		_, _ = warn.Fprintln(pp.out(), text)
	}
	if len(dropped) > 0 {
		_, _ = warn.Fprintf(pp.out(), "ignored malformed: %s\n", strings.Join(dropped, ", "))
	}
}

// Parameters prints the flattened optional-parameter layout.
func (pp *PrettyPrint) Parameters(rows []app.LayoutRow) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Row"), bold.Sprint("Key"), bold.Sprint("Label"))
	for _, r := range rows {
		if r.Header {
			tbl.AddRow(faint.Sprint(r.Flat), "", bold.Sprint(r.Label))
			continue
		}
		label := "  " + r.Label
		if r.URL {
			label += faint.Sprint(" (url)")
		}
		tbl.AddRow(r.Flat, r.Key, label)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// History prints history entries, newest first.
func (pp *PrettyPrint) History(entries []history.Entry) {
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Faint)
	r := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Created"), bold.Sprint("Age"), bold.Sprint("Link"), bold.Sprint("ID"))
	for _, e := range entries {
		text := pp.fit(e.Link())
		if e.Error != "" {
			text = r.Sprintf("%s (%s)", text, e.Error)
		}
		age := timeutil.FormatAge(time.Since(e.Created))
		tbl.AddRow(e.Created.Local().Format("2006-01-02 15:04"), age, text, y.Sprint(e.ID))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func (pp *PrettyPrint) fit(s string) string {
	if pp.MaxWidth == 0 {
		return s
	}
	return truncate.StringWithTail(s, pp.MaxWidth, "…")
}
