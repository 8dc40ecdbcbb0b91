package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
	Sources  SourcesConfig
	OpenAI   OpenAIConfig
	Kafka    KafkaConfig
	Telegram TelegramConfig
	MCP      MCPConfig
}

type AppConfig struct {
	Name      string `envconfig:"APP_NAME" default:"alpha-signal"`
	Env       string `envconfig:"APP_ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

type HTTPConfig struct {
	Port   int    `envconfig:"HTTP_PORT" default:"8080"`
	APIKey string `envconfig:"API_KEY"`
}

type StorageConfig struct {
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	RedisURL       string        `envconfig:"REDIS_URL" default:"localhost:6379"`
	ResultCacheTTL time.Duration `envconfig:"RESULT_CACHE_TTL" default:"15m"`
}

type AnalysisConfig struct {
	Workers       int           `envconfig:"ANALYSIS_WORKERS" default:"8"`
	SymbolTimeout time.Duration `envconfig:"ANALYSIS_SYMBOL_TIMEOUT" default:"20s"`
	JobEnabled    bool          `envconfig:"ANALYSIS_JOB_ENABLED" default:"false"`
	PollInterval  time.Duration `envconfig:"ANALYSIS_POLL_INTERVAL" default:"15m"`
	TopN          int           `envconfig:"ANALYSIS_TOP_N" default:"50"`
	MinNetScore   float64       `envconfig:"MIN_NET_SCORE" default:"2.0"`
	FuturesFile   string        `envconfig:"FUTURES_INPUT_FILE"`
}

type SourcesConfig struct {
	SampleOnly bool `envconfig:"SOURCES_SAMPLE_ONLY" default:"false"`

	LunarCrushAPIKey  string `envconfig:"LUNARCRUSH_API_KEY"`
	LunarCrushBaseURL string `envconfig:"LUNARCRUSH_BASE_URL" default:"https://lunarcrush.com/api4/public"`

	CryptoPanicToken   string   `envconfig:"CRYPTOPANIC_TOKEN"`
	CryptoPanicBaseURL string   `envconfig:"CRYPTOPANIC_BASE_URL" default:"https://cryptopanic.com/api/developer/v2"`
	NewsAPIKey         string   `envconfig:"NEWSAPI_KEY"`
	NewsAPIBaseURL     string   `envconfig:"NEWSAPI_BASE_URL" default:"https://newsapi.org/v2"`
	NewsFeeds          []string `envconfig:"NEWS_FEEDS" default:"https://www.coindesk.com/arc/outboundfeeds/rss/,https://cointelegraph.com/rss"`
	RedditSubreddits   []string `envconfig:"REDDIT_SUBREDDITS" default:"CryptoCurrency"`

	FREDAPIKey       string `envconfig:"FRED_API_KEY"`
	FREDBaseURL      string `envconfig:"FRED_BASE_URL" default:"https://api.stlouisfed.org/fred"`
	FREDVIXSeries    string `envconfig:"FRED_VIX_SERIES" default:"VIXCLS"`
	FREDDXYSeries    string `envconfig:"FRED_DXY_SERIES" default:"DTWEXBGS"`
	FREDYieldSeries  string `envconfig:"FRED_YIELD_SERIES" default:"DGS10"`
	FREDSP500Series  string `envconfig:"FRED_SP500_SERIES" default:"SP500"`
	FREDNasdaqSeries string `envconfig:"FRED_NASDAQ_SERIES" default:"NASDAQCOM"`

	FearGreedEnabled bool `envconfig:"FEAR_GREED_ENABLED" default:"true"`
	DefiTVLEnabled   bool `envconfig:"DEFI_TVL_ENABLED" default:"true"`

	DefiLlamaBaseURL string `envconfig:"DEFILLAMA_BASE_URL" default:"https://api.llama.fi"`
	CoinGeckoBaseURL string `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com/api/v3"`

	RateLimitPerMin int           `envconfig:"SOURCE_RATE_LIMIT_PER_MIN" default:"30"`
	BreakerFailures uint32        `envconfig:"SOURCE_BREAKER_FAILURES" default:"3"`
	BreakerTimeout  time.Duration `envconfig:"SOURCE_BREAKER_TIMEOUT" default:"60s"`
}

// SocialLive reports whether social data should come from the live API.
func (s SourcesConfig) SocialLive() bool {
	return !s.SampleOnly && s.LunarCrushAPIKey != ""
}

func (s SourcesConfig) NewsLive() bool {
	return !s.SampleOnly && (s.CryptoPanicToken != "" || s.NewsAPIKey != "")
}

func (s SourcesConfig) MacroLive() bool {
	return !s.SampleOnly && s.FREDAPIKey != ""
}

type OpenAIConfig struct {
	APIKey string `envconfig:"OPENAI_API_KEY"`
	Model  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"alpha-signal.results"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
}

type MCPConfig struct {
	Transport       string        `envconfig:"MCP_TRANSPORT" default:"stdio"`
	HTTPBind        string        `envconfig:"MCP_HTTP_BIND" default:"127.0.0.1"`
	HTTPPort        int           `envconfig:"MCP_HTTP_PORT" default:"8090"`
	AuthToken       string        `envconfig:"MCP_AUTH_TOKEN"`
	RequestTimeout  time.Duration `envconfig:"MCP_REQUEST_TIMEOUT" default:"60s"`
	RateLimitPerMin int           `envconfig:"MCP_RATE_LIMIT_PER_MIN" default:"60"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.Storage.RedisURL) == "" {
		c.Storage.RedisURL = "localhost:6379"
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = 8
	}
	if c.Analysis.SymbolTimeout <= 0 {
		c.Analysis.SymbolTimeout = 20 * time.Second
	}
	if c.Analysis.TopN <= 0 {
		c.Analysis.TopN = 50
	}
	if c.Analysis.MinNetScore <= 0 {
		log.Warn().Float64("min_net_score", c.Analysis.MinNetScore).Msg("MIN_NET_SCORE must be positive, defaulting to 2.0")
		c.Analysis.MinNetScore = 2.0
	}
	if c.Sources.RateLimitPerMin <= 0 {
		c.Sources.RateLimitPerMin = 30
	}
	if c.Sources.BreakerFailures == 0 {
		c.Sources.BreakerFailures = 3
	}

	c.MCP.Transport = strings.ToLower(strings.TrimSpace(c.MCP.Transport))
	if c.MCP.Transport != "stdio" && c.MCP.Transport != "http" {
		log.Warn().Str("transport", c.MCP.Transport).Msg("unsupported MCP_TRANSPORT, defaulting to stdio")
		c.MCP.Transport = "stdio"
	}
	if c.MCP.RateLimitPerMin <= 0 {
		c.MCP.RateLimitPerMin = 60
	}
}

// WarnMissing logs the optional integrations that are disabled or running
// on sample data.
func (c *Config) WarnMissing() {
	if c.Storage.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, results will not be persisted")
	}
	if !c.Sources.SocialLive() {
		log.Warn().Msg("LUNARCRUSH_API_KEY not set, using sample social data")
	}
	if !c.Sources.NewsLive() {
		log.Warn().Msg("CRYPTOPANIC_TOKEN and NEWSAPI_KEY not set, using sample news data")
	}
	if !c.Sources.MacroLive() {
		log.Warn().Msg("FRED_API_KEY not set, using sample macro data")
	}
	if c.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, headlines scored heuristically")
	}
	if c.Telegram.BotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
}
