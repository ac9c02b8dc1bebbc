package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"reddit-overlay/internal/comments"
	"reddit-overlay/internal/reddit"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
}

// RedditConfig controls how feeds and threads are fetched.
type RedditConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	UserAgent         string  `mapstructure:"user_agent"`
	Timeout           string  `mapstructure:"timeout"` // duration string, e.g., "15s"
	MaxRetries        int     `mapstructure:"max_retries"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Subreddit         string  `mapstructure:"subreddit"` // default for browse/feed
}

// CommentsConfig controls comment extraction.
type CommentsConfig struct {
	Discovery string `mapstructure:"discovery"` // union or cascade
}

// DebugConfig controls where debug snapshots go.
type DebugConfig struct {
	Backend string `mapstructure:"backend"` // file, redis or none
	Dir     string `mapstructure:"dir"`
	TTL     string `mapstructure:"ttl"` // redis only, e.g., "168h"
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenAIConfig configures thread summaries.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
}

// WatchConfig controls the feed watcher.
type WatchConfig struct {
	Subreddits []string `mapstructure:"subreddits"`
	Interval   string   `mapstructure:"interval"` // e.g., "10m"
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Comments CommentsConfig `mapstructure:"comments"`
	Debug    DebugConfig    `mapstructure:"debug"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.Reddit.BaseURL == "" {
		c.Reddit.BaseURL = reddit.DefaultBaseURL
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = reddit.DefaultUserAgent
	}
	if c.Reddit.Timeout == "" {
		c.Reddit.Timeout = "15s"
	}
	if c.Reddit.RequestsPerSecond == 0 {
		c.Reddit.RequestsPerSecond = 1
	}
	if c.Reddit.Subreddit == "" {
		c.Reddit.Subreddit = "popular"
	}
	if c.Comments.Discovery == "" {
		c.Comments.Discovery = string(comments.Union)
	}
	if c.Debug.Backend == "" {
		c.Debug.Backend = "file"
	}
	if c.Debug.Dir == "" {
		c.Debug.Dir = "./debug"
	}
	if c.Debug.TTL == "" {
		c.Debug.TTL = "168h"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "English"
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = "10m"
	}
	if len(c.Watch.Subreddits) == 0 {
		c.Watch.Subreddits = []string{c.Reddit.Subreddit}
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := comments.ParseDiscovery(c.Comments.Discovery); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Debug.Backend) {
	case "file", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("config: debug.backend %q: want file, redis or none", c.Debug.Backend))
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: app.log_format %q: want text or json", c.App.LogFormat))
	}
	for key, v := range map[string]string{
		"reddit.timeout": c.Reddit.Timeout,
		"debug.ttl":      c.Debug.TTL,
		"watch.interval": c.Watch.Interval,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("config: %s %q: want a positive duration", key, v))
		}
	}
	if c.Reddit.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("config: reddit.max_retries %d: must not be negative", c.Reddit.MaxRetries))
	}
	return errors.Join(errs...)
}

// TimeoutDuration returns reddit.timeout; call after Validate.
func (c RedditConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// TTLDuration returns debug.ttl; call after Validate.
func (c DebugConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// IntervalDuration returns watch.interval; call after Validate.
func (c WatchConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}
