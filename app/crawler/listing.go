package crawler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// listCandidates returns the article links a site's front page (or feed)
// currently advertises, deduplicated by URL in listing order.
func (s *Service) listCandidates(site *Site) ([]Candidate, error) {
	switch site.Type {
	case SiteTypeRSS:
		return s.listFeedCandidates(site)
	default:
		return s.listPageCandidates(site)
	}
}

func (s *Service) listPageCandidates(site *Site) ([]Candidate, error) {
	body, err := s.fetchURL(site.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	baseURL, err := url.Parse(site.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse site url: %w", err)
	}

	var candidates []Candidate
	seen := map[string]bool{}

	for _, selector := range site.Selectors {
		doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
			href, ok := link.Attr("href")
			if !ok {
				return
			}

			title := strings.TrimSpace(link.Text())
			if title == "" {
				title = strings.TrimSpace(link.AttrOr("title", ""))
			}
			if title == "" || strings.TrimSpace(href) == "" {
				return
			}

			ref, err := url.Parse(strings.TrimSpace(href))
			if err != nil {
				return
			}
			absolute := baseURL.ResolveReference(ref).String()

			if seen[absolute] {
				return
			}
			seen[absolute] = true

			candidates = append(candidates, Candidate{Title: title, URL: absolute})
		})
	}

	return candidates, nil
}

func (s *Service) listFeedCandidates(site *Site) ([]Candidate, error) {
	body, err := s.fetchURL(site.URL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var candidates []Candidate
	seen := map[string]bool{}

	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" || seen[link] {
			continue
		}
		seen[link] = true

		candidate := Candidate{
			Title:       title,
			URL:         link,
			Description: strings.TrimSpace(item.Description),
		}
		if item.PublishedParsed != nil {
			candidate.PostTime = item.PublishedParsed.Unix()
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func (s *Service) fetchURL(pageURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,vi;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
