package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

type Config struct {
	HTTPPort         int
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	CoinGeckoBaseURL   string
	CoinGeckoPerPage   int
	CoinGeckoRateLimit int
	ListingCacheSecs   int
	HistoryCacheSecs   int
	ListingRefreshCron string

	DefaultCoinIDs []string
	OverridesFile  string

	NewsProvider    string
	NewsFeeds       []string
	RedditSubreddit string

	OpenAIAPIKey string
	OpenAIModel  string

	SSHPort        int
	SSHHostKeyPath string

	MCPTransport       string
	MCPHTTPBind        string
	MCPHTTPPort        int
	MCPRateLimitPerMin int
}

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		OverridesFile:    strings.TrimSpace(os.Getenv("OVERRIDES_FILE")),
	}

	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, price history will not be persisted")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.CoinGeckoBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")), "/")
	if cfg.CoinGeckoBaseURL == "" {
		cfg.CoinGeckoBaseURL = defaultCoinGeckoBaseURL
	}
	cfg.CoinGeckoPerPage = positiveInt("COINGECKO_PER_PAGE", 100)
	if cfg.CoinGeckoPerPage > 250 {
		log.Printf("Warning: COINGECKO_PER_PAGE=%d exceeds 250, clamping", cfg.CoinGeckoPerPage)
		cfg.CoinGeckoPerPage = 250
	}
	cfg.CoinGeckoRateLimit = positiveInt("COINGECKO_RATE_LIMIT_PER_MIN", 25)
	cfg.ListingCacheSecs = positiveInt("LISTING_CACHE_SECS", 60)
	cfg.HistoryCacheSecs = positiveInt("HISTORY_CACHE_SECS", 900)

	cfg.ListingRefreshCron = strings.TrimSpace(os.Getenv("LISTING_REFRESH_CRON"))
	if cfg.ListingRefreshCron == "" {
		cfg.ListingRefreshCron = "@every 1m"
	}
	if _, err := cron.ParseStandard(cfg.ListingRefreshCron); err != nil {
		log.Printf("Warning: invalid LISTING_REFRESH_CRON=%q (%v), defaulting to @every 1m", cfg.ListingRefreshCron, err)
		cfg.ListingRefreshCron = "@every 1m"
	}

	cfg.DefaultCoinIDs = splitList(os.Getenv("DEFAULT_COIN_IDS"))
	if len(cfg.DefaultCoinIDs) == 0 {
		cfg.DefaultCoinIDs = []string{"pi-network", "bitcoin"}
	}

	cfg.NewsProvider = strings.ToLower(strings.TrimSpace(os.Getenv("NEWS_PROVIDER")))
	switch cfg.NewsProvider {
	case "":
		cfg.NewsProvider = "mock"
	case "mock", "rss", "reddit":
	default:
		log.Printf("Warning: unsupported NEWS_PROVIDER=%q, defaulting to mock", cfg.NewsProvider)
		cfg.NewsProvider = "mock"
	}
	cfg.NewsFeeds = splitList(os.Getenv("NEWS_FEEDS"))
	if cfg.NewsProvider == "rss" && len(cfg.NewsFeeds) == 0 {
		cfg.NewsFeeds = []string{
			"https://www.coindesk.com/arc/outboundfeeds/rss/",
			"https://cointelegraph.com/rss",
		}
	}
	cfg.RedditSubreddit = strings.TrimSpace(os.Getenv("REDDIT_SUBREDDIT"))

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" && cfg.NewsProvider != "mock" {
		log.Println("Warning: OPENAI_API_KEY not set, headlines will be labeled heuristically")
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SSHPort = positiveInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}
	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}
	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRateLimitPerMin = positiveInt("MCP_RATE_LIMIT_PER_MIN", 60)

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
