package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./marketmood.db" description:"Path to the SQLite database file"`

	// Crawler configuration
	SitesDir      string `long:"sites-dir" env:"SITES_DIR" default:"./sites" description:"Directory containing news site configuration files"`
	TickerFile    string `long:"ticker-file" env:"TICKER_FILE" default:"./vnstock.json" description:"JSON file mapping ticker codes to company names"`
	CrawlInterval int    `long:"crawl-interval" env:"CRAWL_INTERVAL" default:"3600" description:"Crawl cycle interval in seconds"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"HTTP timeout for article fetches in seconds"`
	FetchDelayMs  int    `long:"fetch-delay-ms" env:"FETCH_DELAY_MS" default:"500" description:"Politeness delay before each article fetch in milliseconds"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for scheduled tasks"`

	// LLM configuration
	GoogleAPIKey     string `long:"google-api-key" env:"GOOGLE_API_KEY" description:"Google API key for the Gemini model (required for sentiment analysis)"`
	LLMModel         string `long:"llm-model" env:"LLM_MODEL" default:"gemini-2.0-flash" description:"Gemini model name"`
	LLMMaxTokens     int    `long:"llm-max-tokens" env:"LLM_MAX_TOKENS" default:"1000" description:"Maximum output tokens per model call"`
	CallsPerMinute   int    `long:"llm-calls-per-minute" env:"LLM_CALLS_PER_MINUTE" default:"10" description:"Model call ceiling per sliding minute"`
	DailyTokenBudget int    `long:"llm-daily-token-budget" env:"LLM_DAILY_TOKEN_BUDGET" default:"1000000" description:"Daily token spend ceiling (UTC day)"`

	// Market data configuration
	MarketDataURL string `long:"market-data-url" env:"MARKET_DATA_URL" default:"https://api.vnquote.example.com" description:"Base URL of the OHLCV market data provider"`

	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Ho_Chi_Minh" description:"Timezone for timestamps (e.g., UTC, Asia/Ho_Chi_Minh)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		SitesDir:         raw.SitesDir,
		TickerFile:       raw.TickerFile,
		CrawlInterval:    raw.CrawlInterval,
		FetchTimeout:     raw.FetchTimeout,
		FetchDelayMs:     raw.FetchDelayMs,
		WorkerCount:      raw.WorkerCount,
		GoogleAPIKey:     raw.GoogleAPIKey,
		LLMModel:         raw.LLMModel,
		LLMMaxTokens:     raw.LLMMaxTokens,
		CallsPerMinute:   raw.CallsPerMinute,
		DailyTokenBudget: raw.DailyTokenBudget,
		MarketDataURL:    raw.MarketDataURL,
		Port:             raw.Port,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the process configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
