package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP router with all routes configured.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	api := r.Group("/api")
	{
		api.GET("/sentiment/:ticker", handler.GetSentiment)
		api.GET("/daily/:ticker", handler.GetDaily)
		api.GET("/distribution/:ticker", handler.GetDistribution)
		api.GET("/timeline/:ticker", handler.GetTimeline)
		api.GET("/trending", handler.GetTrending)
		api.GET("/related/:ticker", handler.GetRelated)
		api.GET("/sources", handler.GetSources)
		api.GET("/quotes/:symbol", handler.GetQuotes)
	}

	// Mutating endpoints require authentication
	if apiAccessKey != "" {
		api.POST("/crawl", authMiddleware(apiAccessKey), handler.TriggerCrawl)
		slog.Info("Manual crawl endpoint enabled with authentication")
	} else {
		slog.Info("Manual crawl endpoint disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "MarketMood",
			"description": "Vietnamese financial news crawler with ticker tagging and LLM sentiment analysis",
			"endpoints": map[string]string{
				"sentiment":    "/api/sentiment/<ticker>",
				"daily":        "/api/daily/<ticker>",
				"distribution": "/api/distribution/<ticker>",
				"timeline":     "/api/timeline/<ticker>",
				"trending":     "/api/trending",
				"related":      "/api/related/<ticker>",
				"sources":      "/api/sources",
				"quotes":       "/api/quotes/<symbol>",
				"crawl":        "/api/crawl (POST, requires X-API-Key header)",
				"health":       "/health",
				"stats":        "/stats",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
