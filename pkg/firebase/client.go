// Package firebase talks to the Firebase Dynamic Links REST API. It assembles
// long links from the documented query parameters and shortens them through
// the shortLinks endpoint.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-retryablehttp"

	"tableflip.dev/dynlink/pkg/link"
)

// DefaultEndpoint is the public shortLinks endpoint.
const DefaultEndpoint = "https://firebasedynamiclinks.googleapis.com/v1/shortLinks"

// ErrNoAPIKey is returned by Shorten when no API key is configured.
var ErrNoAPIKey = errors.New("firebase: api key not configured")

// Config configures a Client.
type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	RetryMax int
	Log      *slog.Logger
}

// Client implements link.Linker.
type Client struct {
	apiKey   string
	endpoint string
	http     *retryablehttp.Client
	log      *slog.Logger
}

var _ link.Linker = (*Client)(nil)

// New builds a Client.
func New(cfg Config) *Client {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.RetryMax
	hc.RetryWaitMin = 200 * time.Millisecond
	hc.RetryWaitMax = 2 * time.Second
	hc.Logger = log
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		hc.HTTPClient.Timeout = cfg.Timeout
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		http:     hc,
		log:      log,
	}
}

type longLinkParams struct {
	Link string `url:"link"`

	PackageName        string `url:"apn,omitempty"`
	AndroidFallbackURL string `url:"afl,omitempty"`
	MinimumVersion     int    `url:"amv,omitempty"`

	BundleID          string `url:"ibi,omitempty"`
	FallbackURL       string `url:"ifl,omitempty"`
	CustomScheme      string `url:"ius,omitempty"`
	IPadFallbackURL   string `url:"ipfl,omitempty"`
	IPadBundleID      string `url:"ipbi,omitempty"`
	AppStoreID        string `url:"isi,omitempty"`
	MinimumAppVersion string `url:"imv,omitempty"`

	Source   string `url:"utm_source,omitempty"`
	Medium   string `url:"utm_medium,omitempty"`
	Campaign string `url:"utm_campaign,omitempty"`
	Term     string `url:"utm_term,omitempty"`
	Content  string `url:"utm_content,omitempty"`

	AffiliateToken string `url:"at,omitempty"`
	CampaignToken  string `url:"ct,omitempty"`
	ProviderToken  string `url:"pt,omitempty"`

	Title           string `url:"st,omitempty"`
	DescriptionText string `url:"sd,omitempty"`
	ImageURL        string `url:"si,omitempty"`
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

// LongLink encodes c as https://<domain>/?link=...&... without touching the
// network.
func (c *Client) LongLink(comp *link.Components) (*url.URL, error) {
	if comp == nil || comp.Link == nil {
		return nil, errors.New("firebase: components missing link")
	}
	p := longLinkParams{
		Link:            comp.Link.String(),
		Source:          comp.Analytics.Source,
		Medium:          comp.Analytics.Medium,
		Campaign:        comp.Analytics.Campaign,
		Term:            comp.Analytics.Term,
		Content:         comp.Analytics.Content,
		AffiliateToken:  comp.ITunes.AffiliateToken,
		CampaignToken:   comp.ITunes.CampaignToken,
		ProviderToken:   comp.ITunes.ProviderToken,
		Title:           comp.Social.Title,
		DescriptionText: comp.Social.DescriptionText,
		ImageURL:        urlString(comp.Social.ImageURL),
	}
	if ios := comp.IOS; ios != nil {
		p.BundleID = ios.BundleID
		p.FallbackURL = urlString(ios.FallbackURL)
		p.MinimumAppVersion = ios.MinimumAppVersion
		p.CustomScheme = ios.CustomScheme
		p.IPadBundleID = ios.IPadBundleID
		p.IPadFallbackURL = urlString(ios.IPadFallbackURL)
		p.AppStoreID = ios.AppStoreID
	}
	if android := comp.Android; android != nil {
		p.PackageName = android.PackageName
		p.AndroidFallbackURL = urlString(android.FallbackURL)
		p.MinimumVersion = android.MinimumVersion
	}
	v, err := query.Values(p)
	if err != nil {
		return nil, fmt.Errorf("firebase: encode parameters: %w", err)
	}
	return &url.URL{
		Scheme:   "https",
		Host:     comp.Domain,
		Path:     "/",
		RawQuery: v.Encode(),
	}, nil
}

type shortenRequest struct {
	LongDynamicLink string `json:"longDynamicLink"`
	Suffix          struct {
		Option string `json:"option"`
	} `json:"suffix"`
}

type shortenResponse struct {
	ShortLink   string `json:"shortLink"`
	PreviewLink string `json:"previewLink"`
	Warning     []struct {
		WarningCode    string `json:"warningCode"`
		WarningMessage string `json:"warningMessage"`
	} `json:"warning"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("firebase: http %d", e.StatusCode)
	}
	return fmt.Sprintf("firebase: http %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Shorten exchanges a long link for a short one.
func (c *Client) Shorten(ctx context.Context, long *url.URL, opts link.Options) (*link.Shortened, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if long == nil {
		return nil, errors.New("firebase: nil long link")
	}
	var body shortenRequest
	body.LongDynamicLink = long.String()
	body.Suffix.Option = string(opts.PathLength)
	if body.Suffix.Option == "" {
		body.Suffix.Option = string(link.PathUnguessable)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("firebase: bad endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("shortening link", "endpoint", c.endpoint, "option", body.Suffix.Option)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firebase: shorten: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("firebase: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: strconv.Itoa(resp.StatusCode)}
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
			apiErr.Message = er.Error.Message
			if er.Error.Status != "" {
				apiErr.Status = er.Error.Status
			}
		}
		return nil, apiErr
	}

	var sr shortenResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("firebase: decode response: %w", err)
	}
	if sr.ShortLink == "" {
		return nil, link.ErrEmptyShortLink
	}
	short, err := url.Parse(sr.ShortLink)
	if err != nil {
		return nil, fmt.Errorf("firebase: bad short link %q: %w", sr.ShortLink, err)
	}
	out := &link.Shortened{URL: short}
	for _, w := range sr.Warning {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %s", w.WarningCode, w.WarningMessage))
	}
	return out, nil
}
