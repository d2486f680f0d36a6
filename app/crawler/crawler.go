package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonilab/marketmood/app/database"
	"github.com/sonilab/marketmood/app/tickers"
)

// Service runs the incremental crawl cycle: list each enabled site, pull the
// articles newer than the global watermark, tag them with tickers and store
// the tagged ones.
type Service struct {
	sites      *ConfigCache
	fetcher    *Fetcher
	dictionary *tickers.Dictionary
	articles   database.ArticleRepository
	watermarks database.WatermarkRepository
	httpClient *http.Client
	userAgent  string
	now        func() time.Time
}

func NewService(sites *ConfigCache, fetcher *Fetcher, dictionary *tickers.Dictionary,
	articles database.ArticleRepository, watermarks database.WatermarkRepository,
	userAgent string, timeout time.Duration) *Service {
	return &Service{
		sites:      sites,
		fetcher:    fetcher,
		dictionary: dictionary,
		articles:   articles,
		watermarks: watermarks,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		now:        time.Now,
	}
}

// RunCycle crawls every enabled site once and returns the number of articles
// inserted. The watermark only advances when at least one article made it in,
// so a cycle that fails halfway gets retried from the same point.
func (s *Service) RunCycle(ctx context.Context) (int, error) {
	watermark, err := s.watermarks.GetWatermark(ctx)
	if err != nil {
		return 0, err
	}

	inserted := 0
	maxPost := watermark

	for _, site := range s.sites.GetEnabledSites() {
		if ctx.Err() != nil {
			return inserted, ctx.Err()
		}

		count, siteMax, err := s.crawlSite(ctx, site, watermark)
		if err != nil {
			slog.Error("Site crawl failed", "site", site.Name, "error", err)
			continue
		}

		inserted += count
		if siteMax > maxPost {
			maxPost = siteMax
		}
	}

	if inserted > 0 && maxPost > watermark {
		if err := s.watermarks.SetWatermark(ctx, maxPost); err != nil {
			return inserted, err
		}
	}

	slog.Info("Crawl cycle finished", "inserted", inserted, "watermark", maxPost)

	return inserted, nil
}

func (s *Service) crawlSite(ctx context.Context, site *Site, watermark int64) (int, int64, error) {
	candidates, err := s.listCandidates(site)
	if err != nil {
		return 0, watermark, err
	}

	slog.Debug("Listed site candidates", "site", site.Name, "count", len(candidates))

	inserted := 0
	maxPost := watermark

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return inserted, maxPost, ctx.Err()
		}

		detail := Detail{Description: candidate.Description, PostTime: candidate.PostTime}
		if detail.Description == "" || detail.PostTime == 0 {
			fetched, err := s.fetchDetail(candidate.URL, s.now())
			if err != nil {
				slog.Warn("Failed to fetch article detail", "url", candidate.URL, "error", err)
			}
			if detail.Description == "" {
				detail.Description = fetched.Description
			}
			if detail.PostTime == 0 {
				detail.PostTime = fetched.PostTime
			}
		}

		if detail.PostTime <= watermark {
			continue
		}
		if detail.PostTime > maxPost {
			maxPost = detail.PostTime
		}

		// Only the article body decides the tagging. A ticker that shows up
		// in the title or teaser but never in the body is noise.
		content := s.fetcher.Content(candidate.URL)
		matched := s.dictionary.Extract(content)
		if len(matched) == 0 {
			continue
		}

		exists, err := s.articles.ExistsByURL(ctx, site.Source, candidate.URL)
		if err != nil {
			slog.Error("Failed to check article existence", "url", candidate.URL, "error", err)
			continue
		}
		if exists {
			continue
		}

		article := database.Article{
			Source:         site.Source,
			Title:          candidate.Title,
			FullURL:        candidate.URL,
			Description:    detail.Description,
			PostTime:       detail.PostTime,
			CrawlTimestamp: s.now().Unix(),
			Tickers:        matched,
		}

		if err := s.articles.InsertArticle(ctx, article); err != nil {
			slog.Error("Failed to insert article", "url", candidate.URL, "error", err)
			continue
		}

		inserted++
		slog.Info("Stored article", "site", site.Name, "tickers", matched, "title", candidate.Title)
	}

	return inserted, maxPost, nil
}
