package domain

// Settings store keys. Stores namespace them with the integration prefix.
const (
	KeySiteID        = "site_id"
	KeyLinked        = "linked"
	KeyNeedsRevision = "config_needs_revision"
	KeyInstallToken  = "install_token"
	KeySignature     = "site_signature"
	KeySettings      = "settings"
	KeyInstallBase   = "install_endpoint"
	KeyStatusBase    = "status_endpoint"
)

// LinkState is the persisted link status of the store
type LinkState struct {
	Linked    bool   `json:"linked"`
	SiteID    string `json:"site_id"`
	Signature string `json:"signature"`
}

// StoreMetadata describes the storefront this relay runs for
type StoreMetadata struct {
	Name               string
	URL                string
	AdminEmail         string
	Currency           string
	PlatformVersion    string
	CommerceVersion    string
	APIURL             string
	PermalinkStructure string
	SettingsURL        string
}

// PermalinksEnabled reports whether pretty permalinks are configured
func (m StoreMetadata) PermalinksEnabled() bool {
	return m.PermalinkStructure != ""
}

// SiteInfo is the status descriptor polled by the ad platform
type SiteInfo struct {
	Site      string `json:"site"`
	Linked    bool   `json:"linked"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Currency  string `json:"currency"`
	WPVersion string `json:"wp_version"`
	WCVersion string `json:"wc_version"`
	Version   string `json:"version"`
	API       string `json:"api"`
	Permalink string `json:"permalink"`
}

// LinkRequest carries the callback parameters of the link_site action
type LinkRequest struct {
	Site      string
	ReturnURL string
	Signature string
	Intent    string
}

// Empty reports whether no parameter was supplied at all
func (r LinkRequest) Empty() bool {
	return r.Site == "" && r.ReturnURL == "" && r.Signature == "" && r.Intent == ""
}

// StatusNotification is the body posted to the platform status endpoint
type StatusNotification struct {
	Site   string `json:"site"`
	Sign   string `json:"sign"`
	Status int    `json:"status"`
}

const (
	StatusInactive = 0
	StatusActive   = 1
)
