package api

import (
	"context"
	"time"

	"github.com/sonilab/marketmood/app/crawler"
	"github.com/sonilab/marketmood/app/database"
	"github.com/sonilab/marketmood/app/engine"
	"github.com/sonilab/marketmood/app/marketdata"
	"github.com/sonilab/marketmood/app/tickers"
)

type EngineInterface interface {
	AnalyzeNews(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) ([]engine.AnalyzedArticle, error)
	DailySummaries(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) ([]engine.DailySummary, error)
	SentimentDistribution(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) (engine.Distribution, error)
	Timeline(ctx context.Context, ticker string, filter database.ArticleFilter, limit int) ([]engine.TimelinePoint, error)
	TrendingTickers(ctx context.Context, since int64, limit int) []database.TickerCount
	RelatedTickers(ctx context.Context, ticker string, limit int) []database.TickerCount
	ArticlesBySource(ctx context.Context, filter database.ArticleFilter) map[string]int
}

var _ EngineInterface = (*engine.Engine)(nil)

type QuoteClientInterface interface {
	History(ctx context.Context, symbol string, start, end time.Time, interval string) []marketdata.Quote
}

var _ QuoteClientInterface = (*marketdata.Client)(nil)

type CrawlerInterface interface {
	RunCycle(ctx context.Context) (int, error)
}

var _ CrawlerInterface = (*crawler.Service)(nil)

type Handler struct {
	engine     EngineInterface
	quotes     QuoteClientInterface
	crawler    CrawlerInterface
	dictionary *tickers.Dictionary
	articles   database.ArticleRepository
	sites      *crawler.ConfigCache
	location   *time.Location
}
