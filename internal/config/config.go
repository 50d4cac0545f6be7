package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	LINZ     LINZConfig     `yaml:"linz" mapstructure:"linz"`
	Matcher  MatcherConfig  `yaml:"matcher" mapstructure:"matcher"`
	Brackets BracketsConfig `yaml:"brackets" mapstructure:"brackets"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// LINZConfig holds LINZ Data Service WFS settings.
type LINZConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Layer        string  `yaml:"layer" mapstructure:"layer"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Count        int     `yaml:"count" mapstructure:"count"`
	RateLimitQPS float64 `yaml:"rate_limit_qps" mapstructure:"rate_limit_qps"`
	// RetryAfter429Secs is how long to wait before the single retry after a
	// 429. The matcher's own inter-attempt delay is separate and
	// unconditional; the inconsistency is inherited deliberately.
	RetryAfter429Secs int `yaml:"retry_after_429_secs" mapstructure:"retry_after_429_secs"`
}

// Timeout returns the per-request timeout for roll queries.
func (l LINZConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// MatcherConfig configures the tiered address resolver.
type MatcherConfig struct {
	AttemptDelayMs int `yaml:"attempt_delay_ms" mapstructure:"attempt_delay_ms"`
	ListingDelayMs int `yaml:"listing_delay_ms" mapstructure:"listing_delay_ms"`
}

// AttemptDelay returns the inter-attempt courtesy delay.
func (m MatcherConfig) AttemptDelay() time.Duration {
	return time.Duration(m.AttemptDelayMs) * time.Millisecond
}

// ListingDelay returns the pause between listings in a batch run.
func (m MatcherConfig) ListingDelay() time.Duration {
	return time.Duration(m.ListingDelayMs) * time.Millisecond
}

// BracketsConfig configures price-bracket generation.
type BracketsConfig struct {
	Min  int `yaml:"min" mapstructure:"min"`
	Max  int `yaml:"max" mapstructure:"max"`
	Step int `yaml:"step" mapstructure:"step"`
}

// StoreConfig configures the run-log database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CacheConfig configures the opt-in valuation query cache. Disabled by
// default: the matcher's contract is a fresh fetch per query.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	TTLHours int  `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("linz.base_url", "https://data.linz.govt.nz/services")
	v.SetDefault("linz.layer", "table-114085")
	v.SetDefault("linz.timeout_secs", 15)
	v.SetDefault("linz.count", 10)
	v.SetDefault("linz.rate_limit_qps", 5.0)
	v.SetDefault("linz.retry_after_429_secs", 65)
	v.SetDefault("matcher.attempt_delay_ms", 50)
	v.SetDefault("matcher.listing_delay_ms", 200)
	v.SetDefault("brackets.min", 0)
	v.SetDefault("brackets.max", 2_000_000)
	v.SetDefault("brackets.step", 50_000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "propscan.db")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate(component string) error {
	switch component {
	case "linz":
		if c.LINZ.Key == "" {
			return eris.New("config: linz.key is required (set PROPSCAN_LINZ_KEY)")
		}
	case "store":
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
		}
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required")
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
