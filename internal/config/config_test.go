package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()
	require.NoError(t, c.Validate())

	assert.Equal(t, "info", c.App.LogLevel)
	assert.Equal(t, "https://www.reddit.com", c.Reddit.BaseURL)
	assert.Equal(t, "reddit-overlay-app/1.0", c.Reddit.UserAgent)
	assert.Equal(t, 15*time.Second, c.Reddit.TimeoutDuration())
	assert.Zero(t, c.Reddit.MaxRetries)
	assert.Equal(t, "union", c.Comments.Discovery)
	assert.Equal(t, "file", c.Debug.Backend)
	assert.Equal(t, 7*24*time.Hour, c.Debug.TTLDuration())
	assert.Equal(t, 10*time.Minute, c.Watch.IntervalDuration())
	assert.Equal(t, []string{"popular"}, c.Watch.Subreddits)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"discovery", func(c *Config) { c.Comments.Discovery = "both" }, "discovery"},
		{"backend", func(c *Config) { c.Debug.Backend = "s3" }, "debug.backend"},
		{"log format", func(c *Config) { c.App.LogFormat = "xml" }, "app.log_format"},
		{"timeout", func(c *Config) { c.Reddit.Timeout = "soon" }, "reddit.timeout"},
		{"interval", func(c *Config) { c.Watch.Interval = "-1m" }, "watch.interval"},
		{"retries", func(c *Config) { c.Reddit.MaxRetries = -1 }, "reddit.max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.FillDefaults()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshalFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	yml := `
reddit:
  subreddit: golang
  max_retries: 2
comments:
  discovery: cascade
watch:
  subreddits: [golang, rust]
  interval: 30m
`
	require.NoError(t, v.ReadConfig(strings.NewReader(yml)))
	var c Config
	require.NoError(t, v.Unmarshal(&c))
	c.FillDefaults()
	require.NoError(t, c.Validate())

	assert.Equal(t, "golang", c.Reddit.Subreddit)
	assert.Equal(t, 2, c.Reddit.MaxRetries)
	assert.Equal(t, "cascade", c.Comments.Discovery)
	assert.Equal(t, []string{"golang", "rust"}, c.Watch.Subreddits)
	assert.Equal(t, 30*time.Minute, c.Watch.IntervalDuration())
}
