package crawler

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache loads and caches site configurations from a directory of
// YAML files, one site per file.
type ConfigCache struct {
	sitesDir string
	cache    map[string]*Site
	mu       sync.RWMutex
}

func NewConfigCache(sitesDir string) *ConfigCache {
	return &ConfigCache{
		sitesDir: sitesDir,
		cache:    make(map[string]*Site),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sitesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sitesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		siteName := strings.TrimSuffix(fileName, ".yml")

		site, err := cc.LoadSite(siteName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Site configuration loaded", "site", siteName, "source", site.Source, "type", site.Type, "enabled", site.Enabled)
	}

	return nil
}

func (cc *ConfigCache) LoadSite(siteName string) (*Site, error) {
	configFile := filepath.Join(cc.sitesDir, siteName+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	site.Name = siteName
	if site.Type == "" {
		site.Type = SiteTypeHTML
	}
	if site.Source == "" {
		site.Source = sourceFromURL(site.URL)
	}

	if err := validateSite(&site); err != nil {
		return nil, fmt.Errorf("invalid site config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[site.Name] = &site

	return &site, nil
}

func (cc *ConfigCache) GetSites() []*Site {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	sites := make([]*Site, 0, len(cc.cache))
	for _, site := range cc.cache {
		sites = append(sites, site)
	}
	return sites
}

func (cc *ConfigCache) GetEnabledSites() []*Site {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	sites := make([]*Site, 0, len(cc.cache))
	for _, site := range cc.cache {
		if site.Enabled {
			sites = append(sites, site)
		}
	}
	return sites
}

// Sources lists the distinct source collection names of all configured
// sites, enabled or not; queries span every collection ever crawled into.
func (cc *ConfigCache) Sources() []string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	seen := make(map[string]struct{}, len(cc.cache))
	sources := make([]string, 0, len(cc.cache))
	for _, site := range cc.cache {
		if _, ok := seen[site.Source]; ok {
			continue
		}
		seen[site.Source] = struct{}{}
		sources = append(sources, site.Source)
	}
	return sources
}

func (cc *ConfigCache) GetSiteCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func validateSite(site *Site) error {
	if site.URL == "" {
		return fmt.Errorf("site URL is required")
	}
	if site.Source == "" {
		return fmt.Errorf("site source is required")
	}
	switch site.Type {
	case SiteTypeHTML:
		if len(site.Selectors) == 0 {
			return fmt.Errorf("html site must have at least one listing selector")
		}
	case SiteTypeRSS:
	default:
		return fmt.Errorf("invalid site type: %s", site.Type)
	}
	return nil
}

func sourceFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ReplaceAll(parsed.Host, ".", "_")
}
