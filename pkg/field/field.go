// Package field defines the typed identifiers for every link parameter the
// builder understands and the groups they are presented in.
package field

import (
	"fmt"
	"strings"
)

// ID identifies a single link parameter. Display labels are derived from the
// ID and are never used as lookup keys.
type ID int

const (
	Link ID = iota
	Domain
	Source
	Medium
	Campaign
	Term
	Content
	BundleID
	FallbackURL
	MinimumAppVersion
	CustomScheme
	IPadBundleID
	IPadFallbackURL
	AppStoreID
	AffiliateToken
	CampaignToken
	ProviderToken
	PackageName
	AndroidFallbackURL
	MinimumVersion
	Title
	DescriptionText
	ImageURL

	numIDs
)

type info struct {
	key   string
	label string
	url   bool
}

var ids = [numIDs]info{
	Link:               {key: "link", label: "Link Value", url: true},
	Domain:             {key: "domain", label: "App Domain"},
	Source:             {key: "source", label: "Source"},
	Medium:             {key: "medium", label: "Medium"},
	Campaign:           {key: "campaign", label: "Campaign"},
	Term:               {key: "term", label: "Term"},
	Content:            {key: "content", label: "Content"},
	BundleID:           {key: "bundle-id", label: "App Bundle ID"},
	FallbackURL:        {key: "fallback-url", label: "Fallback URL", url: true},
	MinimumAppVersion:  {key: "minimum-app-version", label: "Minimum App Version"},
	CustomScheme:       {key: "custom-scheme", label: "Custom Scheme"},
	IPadBundleID:       {key: "ipad-bundle-id", label: "iPad Bundle ID"},
	IPadFallbackURL:    {key: "ipad-fallback-url", label: "iPad Fallback URL", url: true},
	AppStoreID:         {key: "appstore-id", label: "AppStore ID"},
	AffiliateToken:     {key: "affiliate-token", label: "Affiliate Token"},
	CampaignToken:      {key: "campaign-token", label: "Campaign Token"},
	ProviderToken:      {key: "provider-token", label: "Provider Token"},
	PackageName:        {key: "package-name", label: "Package Name"},
	AndroidFallbackURL: {key: "android-fallback-url", label: "Android Fallback URL", url: true},
	MinimumVersion:     {key: "minimum-version", label: "Minimum Version"},
	Title:              {key: "title", label: "Title"},
	DescriptionText:    {key: "description", label: "Description Text"},
	ImageURL:           {key: "image-url", label: "Image URL", url: true},
}

// All returns every known ID in declaration order.
func All() []ID {
	out := make([]ID, 0, numIDs)
	for i := ID(0); i < numIDs; i++ {
		out = append(out, i)
	}
	return out
}

// Valid reports whether id is a known parameter.
func (id ID) Valid() bool {
	return id >= 0 && id < numIDs
}

// Label is the human readable name shown next to the input.
func (id ID) Label() string {
	if !id.Valid() {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return ids[id].label
}

// Key is the stable machine name used on the command line, in config and
// in JSON payloads.
func (id ID) Key() string {
	if !id.Valid() {
		return ""
	}
	return ids[id].key
}

// IsURL reports whether the parameter is expected to hold a URL.
func (id ID) IsURL() bool {
	return id.Valid() && ids[id].url
}

// Required reports whether the parameter must be present to build a link.
func (id ID) Required() bool {
	return id == Link || id == Domain
}

func (id ID) String() string {
	return id.Key()
}

// MarshalText implements encoding.TextMarshaler so IDs can key JSON maps.
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("field: unknown id %d", int(id))
	}
	return []byte(id.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID resolves a key such as "bundle-id". Underscores and case are
// tolerated so "BUNDLE_ID" and "bundle_id" resolve too.
func ParseID(raw string) (ID, error) {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = strings.ReplaceAll(k, "_", "-")
	for i := ID(0); i < numIDs; i++ {
		if ids[i].key == k {
			return i, nil
		}
	}
	return 0, fmt.Errorf("field: unknown parameter %q", raw)
}

// Keys returns the keys of all parameters, handy for flag completion.
func Keys() []string {
	out := make([]string, 0, numIDs)
	for i := ID(0); i < numIDs; i++ {
		out = append(out, ids[i].key)
	}
	return out
}
