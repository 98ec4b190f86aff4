package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger       `mapstructure:"logger"`
	DB        Database     `mapstructure:"database"`
	API       API          `mapstructure:"api"`
	Yahoo     YahooFinance `mapstructure:"yahoo_finance"`
	Cache     Cache        `mapstructure:"cache"`
	Engine    Engine       `mapstructure:"engine"`
	Watchlist Watchlist    `mapstructure:"watchlist"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port              int     `mapstructure:"port"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type YahooFinance struct {
	ChartBaseURL        string        `mapstructure:"chart_base_url"`
	QuoteBaseURL        string        `mapstructure:"quote_base_url"`
	SearchBaseURL       string        `mapstructure:"search_base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	DefaultRange        string        `mapstructure:"default_range"`
	DefaultInterval     string        `mapstructure:"default_interval"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// Strategy exposes every indicator and trade-management parameter. Zero
// values fall back to the engine defaults.
type Strategy struct {
	RSIPeriod      int     `mapstructure:"rsi_period"`
	RSIOversold    float64 `mapstructure:"rsi_oversold"`
	RSIOverbought  float64 `mapstructure:"rsi_overbought"`
	MAShort        int     `mapstructure:"ma_short"`
	MALong         int     `mapstructure:"ma_long"`
	MALongTerm     int     `mapstructure:"ma_long_term"`
	BollingerWin   int     `mapstructure:"bollinger_window"`
	BollingerWidth float64 `mapstructure:"bollinger_width"`
	MACDFast       int     `mapstructure:"macd_fast"`
	MACDSlow       int     `mapstructure:"macd_slow"`
	MACDSignal     int     `mapstructure:"macd_signal"`
	ATRWindow      int     `mapstructure:"atr_window"`
	ATRMultiplier  float64 `mapstructure:"atr_multiplier"`
	StopLossPct    float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct  float64 `mapstructure:"take_profit_pct"`
	AllowShort     bool    `mapstructure:"allow_short"`
}

type Risk struct {
	PortfolioValue   float64 `mapstructure:"portfolio_value"`
	MaxRiskPerTrade  float64 `mapstructure:"max_risk_per_trade"`
	KellyFractionCap float64 `mapstructure:"kelly_fraction_cap"`
}

type DecisionWeights struct {
	Technical   float64 `mapstructure:"technical"`
	Fundamental float64 `mapstructure:"fundamental"`
	Risk        float64 `mapstructure:"risk"`
	Backtest    float64 `mapstructure:"backtest"`
	Sentiment   float64 `mapstructure:"sentiment"`
}

type DecisionThresholds struct {
	StrongBuy  float64 `mapstructure:"strong_buy"`
	Buy        float64 `mapstructure:"buy"`
	Sell       float64 `mapstructure:"sell"`
	StrongSell float64 `mapstructure:"strong_sell"`
}

type Engine struct {
	Strategy        Strategy           `mapstructure:"strategy"`
	Risk            Risk               `mapstructure:"risk"`
	Weights         DecisionWeights    `mapstructure:"weights"`
	Thresholds      DecisionThresholds `mapstructure:"thresholds"`
	InitialCapital  float64            `mapstructure:"initial_capital"`
	EnableSentiment bool               `mapstructure:"enable_sentiment"`
}

// Watchlist drives the scheduled analysis runs.
type Watchlist struct {
	Tickers        []string      `mapstructure:"tickers"`
	CronSpec       string        `mapstructure:"cron_spec"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.requests_per_second", 10)
	viper.SetDefault("api.burst", 30)

	viper.SetDefault("yahoo_finance.chart_base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo_finance.quote_base_url", "https://query1.finance.yahoo.com/v10/finance/quoteSummary")
	viper.SetDefault("yahoo_finance.search_base_url", "https://query1.finance.yahoo.com/v1/finance/search")
	viper.SetDefault("yahoo_finance.timeout", 15*time.Second)
	viper.SetDefault("yahoo_finance.max_request_per_minute", 30)
	viper.SetDefault("yahoo_finance.default_range", "1y")
	viper.SetDefault("yahoo_finance.default_interval", "1d")

	viper.SetDefault("cache.default_expiration", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)

	viper.SetDefault("engine.risk.portfolio_value", 100_000)
	viper.SetDefault("engine.initial_capital", 10_000)
	viper.SetDefault("engine.enable_sentiment", true)
	viper.SetDefault("engine.weights.technical", 0.35)
	viper.SetDefault("engine.weights.fundamental", 0.25)
	viper.SetDefault("engine.weights.risk", 0.10)
	viper.SetDefault("engine.weights.backtest", 0.25)
	viper.SetDefault("engine.weights.sentiment", 0.05)
	viper.SetDefault("engine.thresholds.strong_buy", 0.6)
	viper.SetDefault("engine.thresholds.buy", 0.2)
	viper.SetDefault("engine.thresholds.sell", -0.2)
	viper.SetDefault("engine.thresholds.strong_sell", -0.6)

	viper.SetDefault("watchlist.cron_spec", "0 18 * * MON-FRI")
	viper.SetDefault("watchlist.max_concurrency", 4)
	viper.SetDefault("watchlist.timeout", 5*time.Minute)
}
