package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/form"
	"tableflip.dev/dynlink/pkg/history"
	"tableflip.dev/dynlink/pkg/link"
	"tableflip.dev/dynlink/pkg/section"
)

// Service provides the link operations shared by the TUI, the CLI and the
// MCP server. It wraps the Linker and the history store.
type Service struct {
	Linker  link.Linker
	History history.Store
	Options link.Options
	Log     *slog.Logger
}

// ErrNoHistory is returned when history access is requested but no store
// is configured.
var ErrNoHistory = errors.New("app: no history configured")

func (s *Service) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Builder returns a link.Builder bound to the service's Linker.
func (s *Service) Builder() *link.Builder {
	return &link.Builder{Linker: s.Linker, Options: s.Options, Log: s.logger()}
}

// Screen creates a form screen that builds through this service.
func (s *Service) Screen(d form.Defaults) (*form.Screen, error) {
	return form.New(form.Config{Builder: s.Builder(), Defaults: d})
}

// Assemble validates values and returns the long link without shortening.
func (s *Service) Assemble(values field.Values) (*link.Request, error) {
	return s.Builder().Prepare(values)
}

// Build validates, shortens once and records the outcome. Validation
// errors are returned before the Linker is contacted. A service error is
// returned alongside a Result carrying the long link.
func (s *Service) Build(ctx context.Context, values field.Values) (link.Result, error) {
	r, err := s.Builder().Prepare(values)
	if err != nil {
		return link.Result{}, err
	}
	res := r.Shorten(ctx)
	s.Record(values, res)
	return res, res.Err
}

// Record writes a finished build to history. Failures to record are logged
// and never fail the build.
func (s *Service) Record(values field.Values, res link.Result) *history.Entry {
	if s.History == nil || res.Long == nil {
		return nil
	}
	e := &history.Entry{
		Created:  time.Now().UTC(),
		Long:     res.Long.String(),
		Warnings: res.Warnings,
		Params:   values.Strings(),
	}
	if res.Short != nil {
		e.Short = res.Short.String()
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if err := s.History.Record(e); err != nil {
		s.logger().Warn("history record failed", "err", err)
		return nil
	}
	return e
}

// Entries lists history, newest first.
func (s *Service) Entries(ctx context.Context) ([]history.Entry, error) {
	if s.History == nil {
		return nil, ErrNoHistory
	}
	return s.History.List(ctx), nil
}

// Latest returns the newest history entry.
func (s *Service) Latest(ctx context.Context) (history.Entry, bool) {
	if s.History == nil {
		return history.Entry{}, false
	}
	all := s.History.List(ctx)
	if len(all) == 0 {
		return history.Entry{}, false
	}
	return all[0], true
}

// ClearHistory removes every history entry.
func (s *Service) ClearHistory() error {
	if s.History == nil {
		return ErrNoHistory
	}
	return s.History.Clear()
}

// Watch subscribes to history change events.
func (s *Service) Watch(ctx context.Context) (<-chan history.Event, error) {
	if s.History == nil {
		return nil, ErrNoHistory
	}
	return s.History.Watch(ctx)
}

// LayoutRow describes one row of the optional-parameter section.
type LayoutRow struct {
	Flat   int    `json:"flat"`
	Group  string `json:"group"`
	Row    int    `json:"row"`
	Header bool   `json:"header,omitempty"`
	Key    string `json:"key,omitempty"`
	Label  string `json:"label"`
	URL    bool   `json:"url,omitempty"`
}

// Layout flattens the default schema into the row space a renderer sees.
func (s *Service) Layout() []LayoutRow {
	specs := field.DefaultSchema()
	groups := make([]section.Group[field.ID], len(specs))
	for i, spec := range specs {
		groups[i] = section.Group[field.ID]{Name: spec.Group.Label(), Items: spec.Items}
	}
	m := section.New(groups).Mapper()

	rows := make([]LayoutRow, 0, m.TotalRows())
	for flat := 0; flat < m.TotalRows(); flat++ {
		pos, err := m.Locate(flat)
		if err != nil {
			s.logger().Error("layout", "flat", flat, "err", err)
			break
		}
		g := groups[pos.Group]
		row := LayoutRow{Flat: flat, Group: g.Name, Row: pos.Row}
		if pos.IsHeader() {
			row.Header = true
			row.Label = g.Name
		} else {
			id := g.Items[pos.Item()]
			row.Key = id.Key()
			row.Label = id.Label()
			row.URL = id.IsURL()
		}
		rows = append(rows, row)
	}
	return rows
}
