package aggregator

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/sonilab/marketmood/app/database"
)

const defaultFanoutLimit = 1000

// Aggregator fans queries out across every configured news source and merges
// the per-source results. A failing source is logged and treated as empty, so
// one bad collection never takes the whole query down.
type Aggregator struct {
	articles database.ArticleRepository
	sources  func() []string
}

func New(articles database.ArticleRepository, sources func() []string) *Aggregator {
	return &Aggregator{articles: articles, sources: sources}
}

// QueryAll returns matching articles from every source, newest first,
// truncated to limit. Each source is over-fetched so the merged cut still
// holds the true newest articles.
func (a *Aggregator) QueryAll(ctx context.Context, filter database.ArticleFilter, limit int) []database.Article {
	perSource := defaultFanoutLimit
	if limit > 0 {
		perSource = limit * 3
	}

	results := a.fanOut(ctx, func(ctx context.Context, source string) ([]database.Article, error) {
		return a.articles.FindArticles(ctx, source, filter, perSource)
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PostTime > results[j].PostTime
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results
}

// TrendingTickers ranks tickers by mention count across all sources since the
// given timestamp.
func (a *Aggregator) TrendingTickers(ctx context.Context, since int64, limit int) []database.TickerCount {
	return a.mergeCounts(ctx, limit, func(ctx context.Context, source string, perSource int) ([]database.TickerCount, error) {
		return a.articles.TickerCounts(ctx, source, since, perSource)
	})
}

// RelatedTickers ranks the tickers most often co-mentioned with the given one.
func (a *Aggregator) RelatedTickers(ctx context.Context, ticker string, limit int) []database.TickerCount {
	return a.mergeCounts(ctx, limit, func(ctx context.Context, source string, perSource int) ([]database.TickerCount, error) {
		return a.articles.CoMentionedTickers(ctx, source, ticker, perSource)
	})
}

// CountBySource returns the number of matching articles per source.
func (a *Aggregator) CountBySource(ctx context.Context, filter database.ArticleFilter) map[string]int {
	counts := make(map[string]int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, source := range a.sources() {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()

			count, err := a.articles.CountArticles(ctx, source, filter)
			if err != nil {
				slog.Error("Failed to count articles", "source", source, "error", err)
				return
			}

			mu.Lock()
			counts[source] = count
			mu.Unlock()
		}(source)
	}

	wg.Wait()
	return counts
}

func (a *Aggregator) fanOut(ctx context.Context, query func(ctx context.Context, source string) ([]database.Article, error)) []database.Article {
	var merged []database.Article
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, source := range a.sources() {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()

			articles, err := query(ctx, source)
			if err != nil {
				slog.Error("Source query failed", "source", source, "error", err)
				return
			}

			mu.Lock()
			merged = append(merged, articles...)
			mu.Unlock()
		}(source)
	}

	wg.Wait()
	return merged
}

func (a *Aggregator) mergeCounts(ctx context.Context, limit int,
	query func(ctx context.Context, source string, perSource int) ([]database.TickerCount, error)) []database.TickerCount {
	perSource := defaultFanoutLimit
	if limit > 0 {
		perSource = limit * 2
	}

	totals := make(map[string]int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, source := range a.sources() {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()

			counts, err := query(ctx, source, perSource)
			if err != nil {
				slog.Error("Source count query failed", "source", source, "error", err)
				return
			}

			mu.Lock()
			for _, count := range counts {
				totals[count.Ticker] += count.Count
			}
			mu.Unlock()
		}(source)
	}

	wg.Wait()

	ranked := make([]database.TickerCount, 0, len(totals))
	for ticker, count := range totals {
		ranked = append(ranked, database.TickerCount{Ticker: ticker, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}
