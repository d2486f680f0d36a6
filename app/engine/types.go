package engine

import "github.com/sonilab/marketmood/app/analysis"

// AnalyzedArticle is one news item with its model-derived commentary.
type AnalyzedArticle struct {
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Source         string         `json:"source"`
	PostTime       int64          `json:"post_time"`
	Sentiment      analysis.Label `json:"sentiment"`
	Summary        string         `json:"summary"`
	Insight        string         `json:"insight,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
	KeyMetrics     string         `json:"key_metrics,omitempty"`
}

// DailySummary condenses one calendar day of coverage for a ticker.
type DailySummary struct {
	Date          string            `json:"date"`
	ArticleCount  int               `json:"article_count"`
	PositiveCount int               `json:"positive_count"`
	NegativeCount int               `json:"negative_count"`
	NeutralCount  int               `json:"neutral_count"`
	Score         float64           `json:"score"`
	Verdict       string            `json:"verdict"`
	Narrative     string            `json:"narrative"`
	TopNews       []AnalyzedArticle `json:"top_news"`
}

// Distribution reports sentiment shares over a query window. Percentages are
// integers summing to exactly 100 whenever Total is non-zero.
type Distribution struct {
	Total       int                    `json:"total"`
	Positive    int                    `json:"positive"`
	Negative    int                    `json:"negative"`
	Neutral     int                    `json:"neutral"`
	PositivePct int                    `json:"positive_pct"`
	NegativePct int                    `json:"negative_pct"`
	NeutralPct  int                    `json:"neutral_pct"`
	BySource    map[string]SourceStats `json:"by_source"`
}

// SourceStats is the per-source slice of a distribution.
type SourceStats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// TimelinePoint is one day on a sentiment timeline. Score is the mean of the
// day's article polarities, each counted as +1, 0 or -1.
type TimelinePoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
}
