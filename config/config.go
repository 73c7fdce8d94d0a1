package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/bgmbot/bangumi"
	"github.com/s0up4200/bgmbot/imageconv"
	"github.com/s0up4200/bgmbot/server"
)

// EnvPrefix prefixes environment overrides, e.g. BGMBOT_API_ACCESS_TOKEN
const EnvPrefix = "BGMBOT"

const redacted = "********"

// Load loads the configuration from file and environment. Without an
// explicit path a missing file is not an error, so a token supplied
// through the environment is enough to run.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bgmbot"))
		}
		v.AddConfigPath("/etc/bgmbot/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.access_token", "")
	v.SetDefault("api.base_url", bangumi.DefaultBaseURL)
	v.SetDefault("api.user_agent", bangumi.DefaultUserAgent)
	v.SetDefault("api.timeout", bangumi.DefaultTimeout)
	v.SetDefault("api.min_interval", bangumi.DefaultMinInterval)
	v.SetDefault("api.cache_ttl", bangumi.DefaultCacheTTL)
	v.SetDefault("api.cache_size", bangumi.DefaultCacheSize)
	v.SetDefault("api.insecure_skip_verify", false)

	// Bot defaults
	v.SetDefault("bot.max_fuzzy_results", 5)
	v.SetDefault("bot.use_forward", false)
	v.SetDefault("bot.image_from_filesystem", false)
	v.SetDefault("bot.forward_name_prefix", "Bangumi")

	// Image defaults
	v.SetDefault("image.enabled", true)
	v.SetDefault("image.temp_dir", filepath.Join(os.TempDir(), "bgmbot"))
	v.SetDefault("image.format", string(imageconv.FormatJPEG))
	v.SetDefault("image.quality", imageconv.DefaultQuality)

	v.SetDefault("server.listen", server.DefaultListen)
	v.SetDefault("server.image_cleanup_delay", server.DefaultCleanupDelay)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	token := strings.TrimSpace(cfg.API.AccessToken)
	if token == "" || token == "your-access-token-here" {
		return fmt.Errorf("api.access_token must be set to a valid access token")
	}

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	if cfg.API.MinInterval <= 0 {
		return fmt.Errorf("api.min_interval must be positive")
	}

	if cfg.API.CacheTTL < 0 || cfg.API.CacheSize < 0 {
		return fmt.Errorf("api.cache_ttl and api.cache_size must not be negative")
	}

	if cfg.Bot.MaxFuzzyResults < 1 || cfg.Bot.MaxFuzzyResults > 50 {
		return fmt.Errorf("invalid bot.max_fuzzy_results: %d (must be between 1 and 50)", cfg.Bot.MaxFuzzyResults)
	}

	if _, err := imageconv.ParseFormat(cfg.Image.Format); err != nil {
		return fmt.Errorf("invalid image.format: %s (must be 'jpeg' or 'png')", cfg.Image.Format)
	}

	if cfg.Image.Quality < 1 || cfg.Image.Quality > 100 {
		return fmt.Errorf("invalid image.quality: %d (must be between 1 and 100)", cfg.Image.Quality)
	}

	if cfg.Server.CleanupDelay < 0 {
		return fmt.Errorf("server.image_cleanup_delay must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.API.AccessToken != "" {
		c.API.AccessToken = redacted
	}
	return c
}

// YAML renders the configuration with secrets redacted
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}

// ImageFormat returns the parsed image.format
func (c Config) ImageFormat() imageconv.Format {
	f, err := imageconv.ParseFormat(c.Image.Format)
	if err != nil {
		return imageconv.FormatJPEG
	}
	return f
}
