package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"tableflip.dev/dynlink/pkg/field"
)

// Linker is the external link service. LongLink is pure assembly with no
// network access; Shorten is the only call that leaves the process.
type Linker interface {
	LongLink(c *Components) (*url.URL, error)
	Shorten(ctx context.Context, long *url.URL, opts Options) (*Shortened, error)
}

// Shortened is what a Linker returns on success.
type Shortened struct {
	URL      *url.URL
	Warnings []string
}

// Result is delivered exactly once per Request.
type Result struct {
	Long     *url.URL
	Short    *url.URL
	Warnings []string
	Err      error
}

// Builder validates field values and assembles requests for a Linker.
type Builder struct {
	Linker  Linker
	Options Options
	Log     *slog.Logger
}

var hostLabel = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// Components validates values and maps them onto a structured request. The
// Linker is never consulted here.
func (b *Builder) Components(values field.Values) (*Components, []field.ID, error) {
	raw, ok := values.Lookup(field.Link)
	if !ok {
		return nil, nil, &FieldError{Field: field.Link, Err: ErrMissingRequiredField}
	}
	target, err := parseAbsolute(raw)
	if err != nil {
		return nil, nil, &FieldError{Field: field.Link, Value: raw, Err: ErrInvalidURL}
	}
	domainRaw, ok := values.Lookup(field.Domain)
	if !ok {
		return nil, nil, &FieldError{Field: field.Domain, Err: ErrMissingRequiredField}
	}
	domain, err := parseDomain(domainRaw)
	if err != nil {
		return nil, nil, &FieldError{Field: field.Domain, Value: domainRaw, Err: ErrInvalidURL}
	}

	var dropped []field.ID
	optionalURL := func(id field.ID) *url.URL {
		s, ok := values.Lookup(id)
		if !ok {
			return nil
		}
		u, err := parseAbsolute(s)
		if err != nil {
			b.logger().Warn("ignoring malformed url", "field", id.Key(), "value", s)
			dropped = append(dropped, id)
			return nil
		}
		return u
	}
	text := func(id field.ID) string {
		s, _ := values.Lookup(id)
		return s
	}

	c := &Components{
		Link:   target,
		Domain: domain,
		Analytics: Analytics{
			Source:   text(field.Source),
			Medium:   text(field.Medium),
			Campaign: text(field.Campaign),
			Term:     text(field.Term),
			Content:  text(field.Content),
		},
		ITunes: ITunes{
			AffiliateToken: text(field.AffiliateToken),
			CampaignToken:  text(field.CampaignToken),
			ProviderToken:  text(field.ProviderToken),
		},
		Social: Social{
			Title:           text(field.Title),
			DescriptionText: text(field.DescriptionText),
			ImageURL:        optionalURL(field.ImageURL),
		},
	}

	if bundleID, ok := values.Lookup(field.BundleID); ok {
		c.IOS = &IOS{
			BundleID:          bundleID,
			FallbackURL:       optionalURL(field.FallbackURL),
			MinimumAppVersion: text(field.MinimumAppVersion),
			CustomScheme:      text(field.CustomScheme),
			IPadBundleID:      text(field.IPadBundleID),
			IPadFallbackURL:   optionalURL(field.IPadFallbackURL),
			AppStoreID:        text(field.AppStoreID),
		}
	}

	if pkg, ok := values.Lookup(field.PackageName); ok {
		c.Android = &Android{
			PackageName: pkg,
			FallbackURL: optionalURL(field.AndroidFallbackURL),
		}
		if s, ok := values.Lookup(field.MinimumVersion); ok {
			if v, err := strconv.Atoi(s); err == nil && v > 0 {
				c.Android.MinimumVersion = v
			} else {
				b.logger().Warn("ignoring minimum version", "value", s)
				dropped = append(dropped, field.MinimumVersion)
			}
		}
	}

	return c, dropped, nil
}

// Prepare validates values and assembles the long link. On validation
// failure the Linker is not called and the error wraps
// ErrMissingRequiredField or ErrInvalidURL.
func (b *Builder) Prepare(values field.Values) (*Request, error) {
	c, dropped, err := b.Components(values)
	if err != nil {
		return nil, err
	}
	if b.Linker == nil {
		return nil, ErrNoLinker
	}
	long, err := b.Linker.LongLink(c)
	if err != nil {
		return nil, fmt.Errorf("link: assemble long link: %w", err)
	}
	opts := b.Options
	if opts.PathLength == "" {
		opts.PathLength = PathUnguessable
	}
	return &Request{
		Components: c,
		Long:       long,
		Dropped:    dropped,
		opts:       opts,
		linker:     b.Linker,
		log:        b.logger(),
	}, nil
}

// Build prepares a request and shortens it in the background. notify is
// called exactly once with the outcome. Validation errors are returned
// synchronously and notify is never called for them.
func (b *Builder) Build(ctx context.Context, values field.Values, notify func(Result)) (*Request, error) {
	r, err := b.Prepare(values)
	if err != nil {
		return nil, err
	}
	go func() {
		res := r.Shorten(ctx)
		if notify != nil {
			notify(res)
		}
	}()
	return r, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Log == nil {
		return slog.Default()
	}
	return b.Log
}

// Request is one build action. It holds the pending marker for the single
// outstanding shorten call.
type Request struct {
	Components *Components
	Long       *url.URL
	// Dropped lists optional parameters that were ignored because they did
	// not parse.
	Dropped []field.ID

	opts   Options
	linker Linker
	log    *slog.Logger

	once   sync.Once
	result Result
}

// Options reports the shorten options used for this request.
func (r *Request) Options() Options { return r.opts }

// Shorten calls the Linker once. Later calls return the first result
// without contacting the service again.
func (r *Request) Shorten(ctx context.Context) Result {
	r.once.Do(func() {
		r.result = r.shorten(ctx)
	})
	return r.result
}

func (r *Request) shorten(ctx context.Context) (res Result) {
	res.Long = r.Long
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("link: shorten panicked: %v", p)
		}
		if res.Err != nil {
			r.log.Error("shorten failed", "long", r.Long.String(), "err", res.Err)
		}
	}()
	short, err := r.linker.Shorten(ctx, r.Long, r.opts)
	if err != nil {
		res.Err = err
		return res
	}
	if short == nil || short.URL == nil {
		res.Err = ErrEmptyShortLink
		return res
	}
	res.Short = short.URL
	res.Warnings = short.Warnings
	for _, w := range short.Warnings {
		r.log.Warn("shorten warning", "warning", w)
	}
	return res
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// parseDomain accepts a bare host such as "example.page.link" and tolerates
// an https:// prefix with no path.
func parseDomain(raw string) (string, error) {
	host := raw
	if strings.Contains(raw, "://") {
		u, err := parseAbsolute(raw)
		if err != nil {
			return "", err
		}
		if u.Path != "" && u.Path != "/" {
			return "", errors.New("domain must not contain a path")
		}
		host = u.Host
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || len(host) > 253 {
		return "", errors.New("bad host length")
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("host %q is not fully qualified", host)
	}
	for _, l := range labels {
		if !hostLabel.MatchString(l) {
			return "", fmt.Errorf("bad host label %q", l)
		}
	}
	return host, nil
}
