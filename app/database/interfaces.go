package database

import (
	"context"
)

type ArticleRepository interface {
	InsertArticle(ctx context.Context, article Article) error
	ExistsByURL(ctx context.Context, source, fullURL string) (bool, error)

	FindArticles(ctx context.Context, source string, filter ArticleFilter, limit int) ([]Article, error)
	CountArticles(ctx context.Context, source string, filter ArticleFilter) (int, error)

	TickerCounts(ctx context.Context, source string, since int64, limit int) ([]TickerCount, error)
	CoMentionedTickers(ctx context.Context, source, ticker string, limit int) ([]TickerCount, error)

	TotalArticleCount(ctx context.Context) (int, error)
}

type WatermarkRepository interface {
	GetWatermark(ctx context.Context) (int64, error)
	SetWatermark(ctx context.Context, timestamp int64) error
}
