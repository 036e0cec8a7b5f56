package field

import "fmt"

// Group identifies a named cluster of optional parameters.
type Group int

const (
	GoogleAnalytics Group = iota
	IOS
	ITunes
	Android
	Social

	numGroups
)

var groupLabels = [numGroups]string{
	GoogleAnalytics: "Google Analytics",
	IOS:             "iOS",
	ITunes:          "iTunes Connect Analytics",
	Android:         "Android",
	Social:          "Social Meta Tag",
}

// Label is the header text for the group.
func (g Group) Label() string {
	if g < 0 || g >= numGroups {
		return fmt.Sprintf("Group(%d)", int(g))
	}
	return groupLabels[g]
}

func (g Group) String() string { return g.Label() }

// Spec pairs a group with the ordered parameters it contains.
type Spec struct {
	Group Group
	Items []ID
}

// Required lists the parameters that live outside the collapsible groups.
func Required() []ID {
	return []ID{Link, Domain}
}

// DefaultSchema is the optional-parameter layout, in display order.
func DefaultSchema() []Spec {
	return []Spec{
		{Group: GoogleAnalytics, Items: []ID{Source, Medium, Campaign, Term, Content}},
		{Group: IOS, Items: []ID{BundleID, FallbackURL, MinimumAppVersion, CustomScheme,
			IPadBundleID, IPadFallbackURL, AppStoreID}},
		{Group: ITunes, Items: []ID{AffiliateToken, CampaignToken, ProviderToken}},
		{Group: Android, Items: []ID{PackageName, AndroidFallbackURL, MinimumVersion}},
		{Group: Social, Items: []ID{Title, DescriptionText, ImageURL}},
	}
}
