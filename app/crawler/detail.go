package crawler

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

const noDescription = "Không có mô tả"

// fetchDetail loads an article page and resolves its description and publish
// time. Every failure degrades to a usable default, so the returned Detail is
// always populated even when err is non-nil.
func (s *Service) fetchDetail(articleURL string, now time.Time) (Detail, error) {
	detail := Detail{Description: noDescription, PostTime: now.Unix()}

	body, err := s.fetchURL(articleURL)
	if err != nil {
		return detail, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return detail, fmt.Errorf("failed to parse article page: %w", err)
	}

	if description := extractDescription(doc); description != "" {
		detail.Description = description
	}
	detail.PostTime = extractPostTime(doc, now)

	return detail, nil
}

func extractDescription(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	if text := strings.TrimSpace(doc.Find("p.sapo, div.article__sapo, div.sapo").First().Text()); text != "" {
		return text
	}

	if text := strings.TrimSpace(doc.Find("article p, .detail-content p").First().Text()); text != "" {
		return text
	}

	// Last resort: the leading slice of the page text.
	if text := collapseWhitespace(doc.Find("body").Text()); text != "" {
		runes := []rune(text)
		if len(runes) > 500 {
			runes = runes[:500]
		}
		return string(runes)
	}

	return ""
}

func extractPostTime(doc *goquery.Document, now time.Time) int64 {
	if content, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		if parsed, err := dateparse.ParseAny(strings.TrimSpace(content)); err == nil {
			return parsed.Unix()
		}
	}

	if raw := strings.TrimSpace(doc.Find("span.time-ago").First().Text()); raw != "" {
		return ParseSiteTime(raw, now)
	}

	if raw := strings.TrimSpace(doc.Find("span.time, div.time, span.date").First().Text()); raw != "" {
		return ParseSiteTime(raw, now)
	}

	return now.Unix()
}
