package database

import (
	"time"
)

// Article is one crawled news article. Rows are immutable once inserted;
// sentiment, insights and recommendations are derived on read, never stored.
type Article struct {
	ID             string
	Source         string // source name the article was crawled into
	Title          string
	FullURL        string // unique within a source
	Description    string
	PostTime       int64 // resolved publish time, epoch seconds
	CrawlTimestamp int64 // epoch seconds at crawl
	Tickers        []string
	Embedding      []float32 // optional, unused by the pipeline
	CreatedAt      time.Time
}

// ArticleFilter narrows article queries. Zero values leave a dimension
// unbounded; Ticker matches membership of the stored ticker set.
type ArticleFilter struct {
	Ticker string
	From   int64 // post_time >= From when > 0
	To     int64 // post_time <= To when > 0
}

// TickerCount is one row of a group-by-ticker aggregation.
type TickerCount struct {
	Ticker string
	Count  int
}
