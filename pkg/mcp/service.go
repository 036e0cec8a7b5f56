// Package mcp exposes the link builder over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/field"
	"tableflip.dev/dynlink/pkg/history"
	"tableflip.dev/dynlink/pkg/link"
)

// Service adapts app.Service to transport-friendly shapes.
type Service struct {
	App *app.Service
	// Domain is used when a build request names no domain.
	Domain string
}

// ErrUnknownParameter is returned for parameter keys outside the schema.
var ErrUnknownParameter = errors.New("unknown parameter")

// ParameterDTO describes one input a build request accepts.
type ParameterDTO struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Group    string `json:"group"`
	URL      bool   `json:"url,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// BuildRequest is the build_link argument set.
type BuildRequest struct {
	Link    string            `json:"link"`
	Domain  string            `json:"domain"`
	Params  map[string]string `json:"params"`
	Shorten *bool             `json:"shorten"`
}

// LinkDTO is the outcome of a build.
type LinkDTO struct {
	Long     string   `json:"long"`
	Short    string   `json:"short,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Dropped  []string `json:"dropped,omitempty"`
}

// HistoryDTO is a history entry.
type HistoryDTO struct {
	ID       string   `json:"id"`
	Created  string   `json:"created"`
	Long     string   `json:"long"`
	Short    string   `json:"short,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Parameters lists required inputs followed by the grouped optional ones.
func (s *Service) Parameters() []ParameterDTO {
	var out []ParameterDTO
	for _, id := range field.Required() {
		out = append(out, ParameterDTO{Key: id.Key(), Label: id.Label(), Group: "Components", URL: id.IsURL(), Required: true})
	}
	for _, row := range s.App.Layout() {
		if row.Header {
			continue
		}
		out = append(out, ParameterDTO{Key: row.Key, Label: row.Label, Group: row.Group, URL: row.URL})
	}
	return out
}

// BuildLink validates the request, assembles the long link and, unless
// Shorten is false, shortens it once.
func (s *Service) BuildLink(ctx context.Context, req BuildRequest) (LinkDTO, error) {
	values, unknown := field.FromStrings(req.Params)
	if len(unknown) > 0 {
		return LinkDTO{}, fmt.Errorf("%w: %s", ErrUnknownParameter, strings.Join(unknown, ", "))
	}
	if req.Link != "" {
		values.Set(field.Link, req.Link)
	}
	if req.Domain != "" {
		values.Set(field.Domain, req.Domain)
	}
	if _, ok := values.Lookup(field.Domain); !ok && s.Domain != "" {
		values.Set(field.Domain, s.Domain)
	}

	r, err := s.App.Assemble(values)
	if err != nil {
		return LinkDTO{}, err
	}
	out := LinkDTO{Long: r.Long.String(), Dropped: keys(r.Dropped)}
	if req.Shorten != nil && !*req.Shorten {
		return out, nil
	}

	res := r.Shorten(ctx)
	s.App.Record(values, res)
	if res.Err != nil {
		return out, res.Err
	}
	out.Short = res.Short.String()
	out.Warnings = res.Warnings
	return out, nil
}

// History lists up to limit entries, newest first. limit <= 0 means all.
func (s *Service) History(ctx context.Context, limit int) ([]HistoryDTO, error) {
	entries, err := s.App.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]HistoryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryDTO(e))
	}
	return out, nil
}

func toHistoryDTO(e history.Entry) HistoryDTO {
	return HistoryDTO{
		ID:       e.ID,
		Created:  e.Created.Format("2006-01-02T15:04:05Z07:00"),
		Long:     e.Long,
		Short:    e.Short,
		Error:    e.Error,
		Warnings: e.Warnings,
	}
}

func keys(ids []field.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Key()
	}
	return out
}

// isInputError reports errors the caller can fix by changing arguments.
func isInputError(err error) bool {
	return link.IsValidation(err) || errors.Is(err, ErrUnknownParameter)
}
