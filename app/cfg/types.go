package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Crawler configuration
	SitesDir      string
	TickerFile    string
	CrawlInterval int
	FetchTimeout  int
	FetchDelayMs  int
	WorkerCount   int

	// LLM configuration
	GoogleAPIKey     string
	LLMModel         string
	LLMMaxTokens     int
	CallsPerMinute   int
	DailyTokenBudget int

	// Market data configuration
	MarketDataURL string

	// HTTP server configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
