// Package config loads settings from defaults, an optional YAML file and
// TRANSFERRADAR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "TRANSFERRADAR"
	DefaultFile = "transferradar.yaml"
)

type Config struct {
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	News      NewsConfig      `mapstructure:"news" yaml:"news"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

type DataConfig struct {
	PlayerStats string `mapstructure:"player_stats" yaml:"player_stats"`
	TeamStats   string `mapstructure:"team_stats" yaml:"team_stats"`
	Database    string `mapstructure:"database" yaml:"database"`
	AliasRules  string `mapstructure:"alias_rules" yaml:"alias_rules"`
}

type NewsConfig struct {
	FeedURL           string        `mapstructure:"feed_url" yaml:"feed_url"`
	WindowHours       int           `mapstructure:"window_hours" yaml:"window_hours"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl" yaml:"idle_ttl"`
}

// SetDefaults registers every key so environment overrides apply to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("data.player_stats", "player-stats.sql")
	v.SetDefault("data.team_stats", "team-stats.sql")
	v.SetDefault("data.database", ":memory:")
	v.SetDefault("data.alias_rules", "")

	v.SetDefault("news.feed_url", "https://news.google.com/rss/search?q=%s")
	v.SetDefault("news.window_hours", 48)
	v.SetDefault("news.request_timeout", 15*time.Second)
	v.SetDefault("news.retry_attempts", 3)
	v.SetDefault("news.retry_delay", 2*time.Second)
	v.SetDefault("news.requests_per_second", 1.0)
	v.SetDefault("news.user_agent", "transferradar/1.0")

	v.SetDefault("ratelimit.requests_per_second", 2.0)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("ratelimit.idle_ttl", 10*time.Minute)
}

// Load reads path, or ./transferradar.yaml when path is empty and that file
// exists, then applies environment overrides and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Data.PlayerStats == "" {
		errs = append(errs, errors.New("data.player_stats is required"))
	}
	if c.Data.Database == "" {
		errs = append(errs, errors.New("data.database is required"))
	}
	if c.News.WindowHours <= 0 {
		errs = append(errs, fmt.Errorf("news.window_hours must be positive, got %d", c.News.WindowHours))
	}
	if strings.Count(c.News.FeedURL, "%s") != 1 {
		errs = append(errs, fmt.Errorf("news.feed_url must contain exactly one %%s, got %q", c.News.FeedURL))
	}
	if c.News.RetryAttempts < 1 {
		errs = append(errs, errors.New("news.retry_attempts must be at least 1"))
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.News.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests_per_second must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
