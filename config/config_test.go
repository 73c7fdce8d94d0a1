package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/bgmbot/bangumi"
	"github.com/s0up4200/bgmbot/imageconv"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "api:\n  access_token: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.AccessToken)
	assert.Equal(t, bangumi.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1100*time.Millisecond, cfg.API.MinInterval)
	assert.Equal(t, 5*time.Minute, cfg.API.CacheTTL)
	assert.Equal(t, 256, cfg.API.CacheSize)
	assert.False(t, cfg.API.InsecureSkipVerify)
	assert.Equal(t, 5, cfg.Bot.MaxFuzzyResults)
	assert.Equal(t, "Bangumi", cfg.Bot.ForwardNamePrefix)
	assert.True(t, cfg.Image.Enabled)
	assert.Equal(t, imageconv.FormatJPEG, cfg.ImageFormat())
	assert.Equal(t, 85, cfg.Image.Quality)
	assert.Equal(t, "127.0.0.1:8686", cfg.Server.Listen)
	assert.Equal(t, time.Minute, cfg.Server.CleanupDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
api:
  access_token: secret
  min_interval: 2s
  cache_ttl: 1m
bot:
  max_fuzzy_results: 10
  use_forward: true
image:
  format: png
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.API.MinInterval)
	assert.Equal(t, time.Minute, cfg.API.CacheTTL)
	assert.Equal(t, 10, cfg.Bot.MaxFuzzyResults)
	assert.True(t, cfg.Bot.UseForward)
	assert.Equal(t, imageconv.FormatPNG, cfg.ImageFormat())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BGMBOT_API_ACCESS_TOKEN", "from-env")
	t.Setenv("BGMBOT_BOT_MAX_FUZZY_RESULTS", "7")

	cfg, err := Load(writeConfig(t, "api:\n  access_token: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.API.AccessToken)
	assert.Equal(t, 7, cfg.Bot.MaxFuzzyResults)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MissingToken(t *testing.T) {
	_, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.access_token")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: APIConfig{
				AccessToken: "token",
				BaseURL:     bangumi.DefaultBaseURL,
				Timeout:     time.Second,
				MinInterval: time.Second,
			},
			Bot:     BotConfig{MaxFuzzyResults: 5},
			Image:   ImageConfig{Format: "jpeg", Quality: 85},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "placeholder token", mutate: func(c *Config) { c.API.AccessToken = "your-access-token-here" }, wantErr: "api.access_token"},
		{name: "zero interval", mutate: func(c *Config) { c.API.MinInterval = 0 }, wantErr: "api.min_interval"},
		{name: "negative cache", mutate: func(c *Config) { c.API.CacheSize = -1 }, wantErr: "api.cache_size"},
		{name: "negative cleanup delay", mutate: func(c *Config) { c.Server.CleanupDelay = -time.Second }, wantErr: "server.image_cleanup_delay"},
		{name: "zero fuzzy results", mutate: func(c *Config) { c.Bot.MaxFuzzyResults = 0 }, wantErr: "bot.max_fuzzy_results"},
		{name: "bad image format", mutate: func(c *Config) { c.Image.Format = "bmp" }, wantErr: "image.format"},
		{name: "bad quality", mutate: func(c *Config) { c.Image.Quality = 101 }, wantErr: "image.quality"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_YAMLRedactsToken(t *testing.T) {
	cfg := Config{API: APIConfig{AccessToken: "secret", MinInterval: 1100 * time.Millisecond}}

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.True(t, strings.Contains(string(out), redacted))
	assert.Equal(t, "secret", cfg.API.AccessToken, "original is untouched")

	var back map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "1.1s", back["api"]["min_interval"])
}
