// Package link turns field values into a structured dynamic-link request and
// drives the external service that encodes and shortens it.
package link

import (
	"net/url"
	"strings"
)

// PathLength selects how the short link suffix is generated.
type PathLength string

const (
	// PathUnguessable produces a long random suffix that cannot be guessed.
	PathUnguessable PathLength = "UNGUESSABLE"
	// PathShort produces the shortest suffix that avoids collisions.
	PathShort PathLength = "SHORT"
)

// ParsePathLength accepts "unguessable" or "short" in any case.
func ParsePathLength(raw string) (PathLength, bool) {
	switch PathLength(strings.ToUpper(strings.TrimSpace(raw))) {
	case PathUnguessable, "":
		return PathUnguessable, true
	case PathShort:
		return PathShort, true
	}
	return PathUnguessable, false
}

// Options controls shortening.
type Options struct {
	PathLength PathLength `json:"pathLength"`
}

// Analytics carries campaign tags.
type Analytics struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// IOS carries Apple platform behaviour. It is only set when a bundle ID is
// provided.
type IOS struct {
	BundleID          string
	FallbackURL       *url.URL
	MinimumAppVersion string
	CustomScheme      string
	IPadBundleID      string
	IPadFallbackURL   *url.URL
	AppStoreID        string
}

// ITunes carries App Store analytics tokens.
type ITunes struct {
	AffiliateToken string
	CampaignToken  string
	ProviderToken  string
}

// Android carries Android behaviour. It is only set when a package name is
// provided.
type Android struct {
	PackageName    string
	FallbackURL    *url.URL
	MinimumVersion int
}

// Social carries preview metadata for social posts.
type Social struct {
	Title           string
	DescriptionText string
	ImageURL        *url.URL
}

// Components is the structured request handed to a Linker.
type Components struct {
	Link      *url.URL
	Domain    string
	Analytics Analytics
	IOS       *IOS
	ITunes    ITunes
	Android   *Android
	Social    Social
}
