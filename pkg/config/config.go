package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Backoff policy names accepted by RETRY_BACKOFF.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Robots failure policies accepted by ROBOTS_ON_FAILURE.
const (
	RobotsFailAllow = "allow"
	RobotsFailDeny  = "deny"
)

// Robots evaluators accepted by ROBOTS_EVALUATOR.
const (
	RobotsEvalPrefix   = "prefix"
	RobotsEvalStandard = "standard"
)

// Config holds the immutable configuration snapshot for one crawl run.
type Config struct {
	StartURL  string `mapstructure:"START_URL"`
	UserAgent string `mapstructure:"USER_AGENT"`

	MaxDepth     int `mapstructure:"MAX_DEPTH"`
	MaxPages     int `mapstructure:"MAX_PAGES"`
	CrawlWorkers int `mapstructure:"CRAWL_WORKERS"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxRetries     int           `mapstructure:"MAX_RETRIES"`
	RetryDelay     time.Duration `mapstructure:"RETRY_DELAY"`
	RetryBackoff   string        `mapstructure:"RETRY_BACKOFF"`
	MaxBodyBytes   int64         `mapstructure:"MAX_BODY_BYTES"`

	DomainDelay time.Duration `mapstructure:"DOMAIN_DELAY"`

	RespectRobotsTxt bool          `mapstructure:"RESPECT_ROBOTS_TXT"`
	RobotsTimeout    time.Duration `mapstructure:"ROBOTS_TIMEOUT"`
	RobotsOnFailure  string        `mapstructure:"ROBOTS_ON_FAILURE"`
	RobotsEvaluator  string        `mapstructure:"ROBOTS_EVALUATOR"`

	SameDomainOnly bool `mapstructure:"SAME_DOMAIN_ONLY"`

	ServerPort string `mapstructure:"SERVER_PORT"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	DedupTTL      time.Duration `mapstructure:"DEDUP_TTL"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from an optional .env file and the environment.
// Missing keys fall back to defaults matching the crawler's historical
// behavior: depth 3, 5s request timeout, 3 attempts with a fixed 2s retry
// delay, 1s per-domain delay, robots respected and fail-open.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; production configures purely through
	// environment variables.
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("START_URL", "")
	v.SetDefault("USER_AGENT", "Mozilla/5.0 (compatible; webcrawler/1.0)")
	v.SetDefault("MAX_DEPTH", 3)
	v.SetDefault("MAX_PAGES", 0)
	v.SetDefault("CRAWL_WORKERS", 1)
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("RETRY_DELAY", "2s")
	v.SetDefault("RETRY_BACKOFF", BackoffFixed)
	v.SetDefault("MAX_BODY_BYTES", 6*1024*1024)
	v.SetDefault("DOMAIN_DELAY", "1s")
	v.SetDefault("RESPECT_ROBOTS_TXT", true)
	v.SetDefault("ROBOTS_TIMEOUT", "3s")
	v.SetDefault("ROBOTS_ON_FAILURE", RobotsFailAllow)
	v.SetDefault("ROBOTS_EVALUATOR", RobotsEvalPrefix)
	v.SetDefault("SAME_DOMAIN_ONLY", true)
	v.SetDefault("SERVER_PORT", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DEDUP_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
}

// Validate checks enum-valued options and numeric bounds.
func (c *Config) Validate() error {
	switch c.RetryBackoff {
	case BackoffFixed, BackoffExponential:
	default:
		return fmt.Errorf("invalid RETRY_BACKOFF %q", c.RetryBackoff)
	}
	switch c.RobotsOnFailure {
	case RobotsFailAllow, RobotsFailDeny:
	default:
		return fmt.Errorf("invalid ROBOTS_ON_FAILURE %q", c.RobotsOnFailure)
	}
	switch c.RobotsEvaluator {
	case RobotsEvalPrefix, RobotsEvalStandard:
	default:
		return fmt.Errorf("invalid ROBOTS_EVALUATOR %q", c.RobotsEvaluator)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("MAX_DEPTH must be >= 0, got %d", c.MaxDepth)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be >= 1, got %d", c.MaxRetries)
	}
	if c.CrawlWorkers < 1 {
		return fmt.Errorf("CRAWL_WORKERS must be >= 1, got %d", c.CrawlWorkers)
	}
	return nil
}
