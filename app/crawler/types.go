package crawler

// SiteType selects how a site's listing is read.
type SiteType string

const (
	SiteTypeHTML SiteType = "html"
	SiteTypeRSS  SiteType = "rss"
)

// Site is one configured news source.
type Site struct {
	Name      string   // derived from the config filename
	URL       string   `yaml:"url"`
	Type      SiteType `yaml:"type"`
	Source    string   `yaml:"source"`    // collection name; defaults to the URL host with dots replaced
	Selectors []string `yaml:"selectors"` // listing link selectors, HTML sites only
	Enabled   bool     `yaml:"enabled"`
}

// Candidate is one listing entry before the detail fetch. PostTime and
// Description are pre-filled for RSS items and zero otherwise.
type Candidate struct {
	Title       string
	URL         string
	Description string
	PostTime    int64
}

// Detail is the resolved metadata of one article page.
type Detail struct {
	Description string
	PostTime    int64
}
