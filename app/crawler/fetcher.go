package crawler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	lru "github.com/hashicorp/golang-lru/v2"
)

const contentCacheSize = 1000

var whitespaceRe = regexp.MustCompile(`\s+`)

// DomainExtractor holds the CSS selectors known to isolate the article body
// on a given news site.
type DomainExtractor struct {
	Selectors string
}

var genericSelectors = []string{
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"article",
	".detail-content",
}

// Fetcher downloads article pages and extracts their body text. Successful
// extractions are memoized so re-analysis of the same URL within a run does
// not hit the site again, and a fixed delay between requests keeps the
// crawl polite.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	delay      time.Duration
	domains    map[string]DomainExtractor
	cache      *lru.Cache[string, string]
	sleep      func(time.Duration)
}

func NewFetcher(userAgent string, timeout time.Duration, delay time.Duration) *Fetcher {
	cache, _ := lru.New[string, string](contentCacheSize)

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		delay:      delay,
		domains: map[string]DomainExtractor{
			"cafef.vn":              {Selectors: ".detail-content, .contentdetail"},
			"vnexpress.net":         {Selectors: ".fck_detail, .article-content"},
			"tinnhanhchungkhoan.vn": {Selectors: ".detail-content, .article-body"},
		},
		cache: cache,
		sleep: time.Sleep,
	}
}

// Register adds or replaces the extractor used for a host.
func (f *Fetcher) Register(host string, extractor DomainExtractor) {
	f.domains[host] = extractor
}

// Content returns the extracted body text for an article URL, or "" when
// the page cannot be fetched or yields no text. Empty extractions are
// cached like any other result so a content-less page is not re-fetched;
// transport failures are not cached and get retried on the next call.
func (f *Fetcher) Content(articleURL string) string {
	if cached, ok := f.cache.Get(articleURL); ok {
		return cached
	}

	f.sleep(f.delay)

	doc, err := f.fetchDocument(articleURL)
	if err != nil {
		slog.Warn("Failed to fetch article content", "url", articleURL, "error", err)
		return ""
	}

	text := f.extractText(doc, articleURL)
	f.cache.Add(articleURL, text)
	return text
}

func (f *Fetcher) fetchDocument(articleURL string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return doc, nil
}

func (f *Fetcher) extractText(doc *goquery.Document, articleURL string) string {
	if host := hostOf(articleURL); host != "" {
		if extractor, ok := f.domains[host]; ok {
			if text := joinParagraphs(doc.Find(extractor.Selectors)); text != "" {
				return text
			}
		}
	}

	for _, selector := range genericSelectors {
		if text := joinParagraphs(doc.Find(selector)); text != "" {
			return text
		}
	}

	if text := f.readabilityText(doc, articleURL); text != "" {
		return text
	}

	if text := joinParagraphs(doc.Find("main, #main, .main, .content, #content, .container")); text != "" {
		return text
	}

	return joinParagraphs(doc.Selection)
}

func (f *Fetcher) readabilityText(doc *goquery.Document, articleURL string) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}

	parsedURL, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return ""
	}

	return collapseWhitespace(article.TextContent)
}

func joinParagraphs(selection *goquery.Selection) string {
	var parts []string

	selection.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func hostOf(articleURL string) string {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
