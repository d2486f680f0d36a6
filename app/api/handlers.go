package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sonilab/marketmood/app/crawler"
	"github.com/sonilab/marketmood/app/database"
	"github.com/sonilab/marketmood/app/tickers"
)

const (
	defaultWindowDays   = 7
	defaultTrendingDays = 3
	defaultListLimit    = 10
)

func NewHandler(eng EngineInterface, quotes QuoteClientInterface, crawlSvc CrawlerInterface,
	dictionary *tickers.Dictionary, articles database.ArticleRepository,
	sites *crawler.ConfigCache, location *time.Location) *Handler {
	return &Handler{
		engine:     eng,
		quotes:     quotes,
		crawler:    crawlSvc,
		dictionary: dictionary,
		articles:   articles,
		sites:      sites,
		location:   location,
	}
}

func (h *Handler) GetSentiment(c *gin.Context) {
	ticker, ok := h.tickerParam(c)
	if !ok {
		return
	}

	filter := h.windowFilter(c, defaultWindowDays)
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, h.location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		filter.From = day.Unix()
		filter.To = day.AddDate(0, 0, 1).Unix() - 1
	}

	analyzed, err := h.engine.AnalyzeNews(c.Request.Context(), ticker, filter, h.limitParam(c, 0))
	if err != nil {
		slog.Error("Sentiment analysis failed", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":   ticker,
		"company":  h.dictionary.CompanyName(ticker),
		"count":    len(analyzed),
		"articles": analyzed,
	})
}

func (h *Handler) GetDaily(c *gin.Context) {
	ticker, ok := h.tickerParam(c)
	if !ok {
		return
	}

	summaries, err := h.engine.DailySummaries(c.Request.Context(), ticker, h.windowFilter(c, defaultWindowDays), h.limitParam(c, 0))
	if err != nil {
		slog.Error("Daily summary failed", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker": ticker,
		"days":   summaries,
	})
}

func (h *Handler) GetDistribution(c *gin.Context) {
	ticker, ok := h.tickerParam(c)
	if !ok {
		return
	}

	dist, err := h.engine.SentimentDistribution(c.Request.Context(), ticker, h.windowFilter(c, defaultWindowDays), h.limitParam(c, 0))
	if err != nil {
		slog.Error("Distribution failed", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":       ticker,
		"distribution": dist,
	})
}

func (h *Handler) GetTimeline(c *gin.Context) {
	ticker, ok := h.tickerParam(c)
	if !ok {
		return
	}

	points, err := h.engine.Timeline(c.Request.Context(), ticker, h.windowFilter(c, defaultWindowDays), h.limitParam(c, 0))
	if err != nil {
		slog.Error("Timeline failed", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":   ticker,
		"timeline": points,
	})
}

func (h *Handler) GetTrending(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -h.daysParam(c, defaultTrendingDays)).Unix()
	ranked := h.engine.TrendingTickers(c.Request.Context(), since, h.limitParam(c, defaultListLimit))

	c.JSON(http.StatusOK, gin.H{"trending": h.withCompanyNames(ranked)})
}

func (h *Handler) GetRelated(c *gin.Context) {
	ticker, ok := h.tickerParam(c)
	if !ok {
		return
	}

	ranked := h.engine.RelatedTickers(c.Request.Context(), ticker, h.limitParam(c, defaultListLimit))

	c.JSON(http.StatusOK, gin.H{
		"ticker":  ticker,
		"related": h.withCompanyNames(ranked),
	})
}

func (h *Handler) GetSources(c *gin.Context) {
	filter := h.windowFilter(c, defaultWindowDays)
	if ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker"))); ticker != "" {
		filter.Ticker = ticker
	}

	c.JSON(http.StatusOK, gin.H{"sources": h.engine.ArticlesBySource(c.Request.Context(), filter)})
}

func (h *Handler) GetQuotes(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if raw := c.Query("start"); raw != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", raw, h.location); err == nil {
			start = parsed
		}
	}
	if raw := c.Query("end"); raw != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", raw, h.location); err == nil {
			end = parsed
		}
	}

	interval := c.DefaultQuery("interval", "1D")

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"quotes": h.quotes.History(c.Request.Context(), symbol, start, end, interval),
	})
}

func (h *Handler) TriggerCrawl(c *gin.Context) {
	inserted, err := h.crawler.RunCycle(c.Request.Context())
	if err != nil {
		slog.Error("Manual crawl failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "crawl failed", "inserted": inserted})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(h.location).Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	total, err := h.articles.TotalArticleCount(c.Request.Context())
	if err != nil {
		slog.Error("Failed to count articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": total,
		"sites":    h.sites.GetSiteCount(),
		"sources":  h.sites.Sources(),
		"tickers":  h.dictionary.Size(),
	})
}

func (h *Handler) tickerParam(c *gin.Context) (string, bool) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return "", false
	}
	return ticker, true
}

// windowFilter resolves the days query parameter into a lower time bound
// aligned to local midnight, so equal windows map to equal filters and the
// engine's result cache can actually hit across requests.
func (h *Handler) windowFilter(c *gin.Context, defaultDays int) database.ArticleFilter {
	from := time.Now().In(h.location).AddDate(0, 0, -h.daysParam(c, defaultDays))
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, h.location)
	return database.ArticleFilter{From: from.Unix()}
}

func (h *Handler) daysParam(c *gin.Context, fallback int) int {
	if days, err := strconv.Atoi(c.Query("days")); err == nil && days > 0 {
		return days
	}
	return fallback
}

func (h *Handler) limitParam(c *gin.Context, fallback int) int {
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		return limit
	}
	return fallback
}

func (h *Handler) withCompanyNames(ranked []database.TickerCount) []gin.H {
	out := make([]gin.H, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, gin.H{
			"ticker":  entry.Ticker,
			"company": h.dictionary.CompanyName(entry.Ticker),
			"count":   entry.Count,
		})
	}
	return out
}
