package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sonilab/marketmood/app/aggregator"
	"github.com/sonilab/marketmood/app/analysis"
	"github.com/sonilab/marketmood/app/crawler"
	"github.com/sonilab/marketmood/app/database"
)

const (
	defaultAnalysisLimit = 30
	minAnalyzableChars   = 10
	topNewsPerDay        = 2

	resultCacheSize = 200
	resultCacheTTL  = time.Hour

	positiveVerdict = "Tích cực"
	negativeVerdict = "Tiêu cực"
	neutralVerdict  = "Trung lập"

	verdictThreshold = 0.3

	noSummary = "Không có mô tả."
)

// Engine computes the sentiment views served by the API: analyzed article
// lists, daily summaries, distributions and timelines. Finished results are
// cached with a TTL so repeated dashboard queries do not re-run the model.
type Engine struct {
	aggregator *aggregator.Aggregator
	analyzer   *analysis.Analyzer
	fetcher    *crawler.Fetcher
	location   *time.Location

	analysisCache *expirable.LRU[string, []AnalyzedArticle]
	dailyCache    *expirable.LRU[string, []DailySummary]
}

func New(agg *aggregator.Aggregator, analyzer *analysis.Analyzer, fetcher *crawler.Fetcher, location *time.Location) *Engine {
	return &Engine{
		aggregator:    agg,
		analyzer:      analyzer,
		fetcher:       fetcher,
		location:      location,
		analysisCache: expirable.NewLRU[string, []AnalyzedArticle](resultCacheSize, nil, resultCacheTTL),
		dailyCache:    expirable.NewLRU[string, []DailySummary](resultCacheSize, nil, resultCacheTTL),
	}
}

// AnalyzeNews returns the newest articles mentioning a ticker with sentiment
// and commentary attached. Articles whose title and description together
// carry almost no text are skipped rather than sent to the model.
func (e *Engine) AnalyzeNews(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) ([]AnalyzedArticle, error) {
	if limit <= 0 {
		limit = defaultAnalysisLimit
	}
	filter.Ticker = ticker

	cacheKey := fmt.Sprintf("%s|%d|%d|%d", ticker, filter.From, filter.To, limit)
	if cached, ok := e.analysisCache.Get(cacheKey); ok {
		return cached, nil
	}

	articles := e.aggregator.QueryAll(ctx, filter, limit)

	analyzed := make([]AnalyzedArticle, 0, len(articles))
	for _, article := range articles {
		if ctx.Err() != nil {
			return analyzed, ctx.Err()
		}

		text := strings.TrimSpace(article.Title + " " + article.Description)
		if len([]rune(text)) < minAnalyzableChars {
			continue
		}

		item := AnalyzedArticle{
			Title:     article.Title,
			URL:       article.FullURL,
			Source:    article.Source,
			PostTime:  article.PostTime,
			Sentiment: e.analyzer.Sentiment(ctx, text),
			Summary:   e.summaryFor(ctx, article),
		}

		if content := e.fetcher.Content(article.FullURL); content != "" {
			item.Insight = e.analyzer.Insight(ctx, content, ticker)
			if item.Insight != "" {
				item.Recommendation = e.analyzer.Recommendation(ctx, content, ticker)
				item.KeyMetrics = e.analyzer.KeyMetrics(ctx, content, ticker)
			}
		}

		analyzed = append(analyzed, item)
	}

	e.analysisCache.Add(cacheKey, analyzed)

	return analyzed, nil
}

func (e *Engine) summaryFor(ctx context.Context, article database.Article) string {
	description := strings.TrimSpace(article.Description)
	if description != "" && description != "Không có mô tả" {
		return description
	}
	if len([]rune(article.Title)) > 10 {
		return e.analyzer.Summarize(ctx, article.Title)
	}
	return noSummary
}

// DailySummaries groups a ticker's analyzed articles by calendar day and
// produces counts, a verdict and a narrative per day, newest day first.
func (e *Engine) DailySummaries(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) ([]DailySummary, error) {
	cacheKey := fmt.Sprintf("%s|%d|%d|%d", ticker, filter.From, filter.To, limit)
	if cached, ok := e.dailyCache.Get(cacheKey); ok {
		return cached, nil
	}

	analyzed, err := e.AnalyzeNews(ctx, ticker, filter, limit)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]AnalyzedArticle)
	for _, item := range analyzed {
		date := time.Unix(item.PostTime, 0).In(e.location).Format("2006-01-02")
		byDate[date] = append(byDate[date], item)
	}

	summaries := make([]DailySummary, 0, len(byDate))
	for date, items := range byDate {
		summaries = append(summaries, e.summarizeDay(ctx, ticker, date, items))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date > summaries[j].Date
	})

	e.dailyCache.Add(cacheKey, summaries)

	return summaries, nil
}

func (e *Engine) summarizeDay(ctx context.Context, ticker, date string, items []AnalyzedArticle) DailySummary {
	summary := DailySummary{Date: date, ArticleCount: len(items)}

	for _, item := range items {
		switch item.Sentiment {
		case analysis.LabelPositive:
			summary.PositiveCount++
		case analysis.LabelNegative:
			summary.NegativeCount++
		default:
			summary.NeutralCount++
		}
	}

	summary.Score = scoreOf(summary.PositiveCount, summary.NegativeCount, summary.ArticleCount)
	summary.Verdict = verdictOf(summary.Score)
	summary.Narrative = e.narrativeFor(ctx, ticker, items)

	ranked := make([]AnalyzedArticle, 0, len(items))
	for _, item := range items {
		if item.Insight != "" {
			ranked = append(ranked, item)
		}
	}
	for _, item := range items {
		if item.Insight == "" {
			ranked = append(ranked, item)
		}
	}

	top := len(ranked)
	if top > topNewsPerDay {
		top = topNewsPerDay
	}
	summary.TopNews = ranked[:top]

	return summary
}

// narrativeFor builds the day's one-line story. Model insights are preferred;
// with none, three or more headlines are summarized together; otherwise a
// representative title stands in, positive over negative over first.
func (e *Engine) narrativeFor(ctx context.Context, ticker string, items []AnalyzedArticle) string {
	var insights []string
	for _, item := range items {
		if item.Insight != "" {
			insights = append(insights, item.Insight)
		}
	}
	if len(insights) > 0 {
		if narrative := e.analyzer.SummarizeInsights(ctx, ticker, insights); narrative != "" {
			return narrative
		}
	}

	if len(items) >= 3 {
		titles := make([]string, 0, len(items))
		for _, item := range items {
			titles = append(titles, item.Title)
		}
		if narrative := e.analyzer.SummarizeHeadlines(ctx, titles); narrative != "" {
			return narrative
		}
	}

	for _, item := range items {
		if item.Sentiment == analysis.LabelPositive {
			return item.Title
		}
	}
	for _, item := range items {
		if item.Sentiment == analysis.LabelNegative {
			return item.Title
		}
	}
	if len(items) > 0 {
		return items[0].Title
	}
	return ""
}

// SentimentDistribution reports the sentiment split of a ticker's coverage,
// overall and per source.
func (e *Engine) SentimentDistribution(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) (Distribution, error) {
	analyzed, err := e.AnalyzeNews(ctx, ticker, filter, limit)
	if err != nil {
		return Distribution{}, err
	}

	dist := Distribution{Total: len(analyzed), BySource: make(map[string]SourceStats)}

	for _, item := range analyzed {
		stats := dist.BySource[item.Source]
		stats.Total++

		switch item.Sentiment {
		case analysis.LabelPositive:
			dist.Positive++
			stats.Positive++
		case analysis.LabelNegative:
			dist.Negative++
			stats.Negative++
		default:
			dist.Neutral++
			stats.Neutral++
		}

		dist.BySource[item.Source] = stats
	}

	dist.PositivePct, dist.NeutralPct, dist.NegativePct = percentages(dist.Positive, dist.Neutral, dist.Negative)

	return dist, nil
}

// Timeline returns one point per day with the mean polarity of that day's
// articles, oldest day first.
func (e *Engine) Timeline(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) ([]TimelinePoint, error) {
	analyzed, err := e.AnalyzeNews(ctx, ticker, filter, limit)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, item := range analyzed {
		date := time.Unix(item.PostTime, 0).In(e.location).Format("2006-01-02")
		counts[date]++
		switch item.Sentiment {
		case analysis.LabelPositive:
			sums[date]++
		case analysis.LabelNegative:
			sums[date]--
		}
	}

	points := make([]TimelinePoint, 0, len(counts))
	for date, count := range counts {
		points = append(points, TimelinePoint{
			Date:  date,
			Score: float64(sums[date]) / float64(count),
			Count: count,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return points, nil
}

// TrendingTickers ranks tickers by cross-source mention count over a window.
func (e *Engine) TrendingTickers(ctx context.Context, since int64, limit int) []database.TickerCount {
	return e.aggregator.TrendingTickers(ctx, since, limit)
}

// RelatedTickers ranks the tickers most co-mentioned with the given one.
func (e *Engine) RelatedTickers(ctx context.Context, ticker string, limit int) []database.TickerCount {
	return e.aggregator.RelatedTickers(ctx, ticker, limit)
}

// ArticlesBySource counts stored articles per source for the given filter.
func (e *Engine) ArticlesBySource(ctx context.Context, filter database.ArticleFilter) map[string]int {
	return e.aggregator.CountBySource(ctx, filter)
}

func scoreOf(positive, negative, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}

func verdictOf(score float64) string {
	switch {
	case score > verdictThreshold:
		return positiveVerdict
	case score < -verdictThreshold:
		return negativeVerdict
	default:
		return neutralVerdict
	}
}

// percentages converts counts into integer shares summing to exactly 100,
// assigning leftover points to the buckets with the largest remainders.
// Remainder ties resolve in positive, neutral, negative order.
func percentages(positive, neutral, negative int) (int, int, int) {
	total := positive + neutral + negative
	if total == 0 {
		return 0, 0, 0
	}

	counts := [3]int{positive, neutral, negative}
	floors := [3]int{}
	remainders := [3]float64{}
	assigned := 0

	for i, count := range counts {
		exact := float64(count) * 100 / float64(total)
		floors[i] = int(exact)
		remainders[i] = exact - float64(floors[i])
		assigned += floors[i]
	}

	for leftover := 100 - assigned; leftover > 0; leftover-- {
		best := 0
		for i := 1; i < 3; i++ {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		floors[best]++
		remainders[best] = -1
	}

	return floors[0], floors[1], floors[2]
}
