package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Bot     BotConfig     `mapstructure:"bot" yaml:"bot"`
	Image   ImageConfig   `mapstructure:"image" yaml:"image"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig holds Bangumi API connection details
type APIConfig struct {
	AccessToken        string        `mapstructure:"access_token" yaml:"access_token"`
	BaseURL            string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MinInterval        time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CacheSize          int           `mapstructure:"cache_size" yaml:"cache_size"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// BotConfig controls how command replies are built
type BotConfig struct {
	MaxFuzzyResults     int    `mapstructure:"max_fuzzy_results" yaml:"max_fuzzy_results"`
	UseForward          bool   `mapstructure:"use_forward" yaml:"use_forward"`
	ImageFromFilesystem bool   `mapstructure:"image_from_filesystem" yaml:"image_from_filesystem"`
	ForwardNamePrefix   string `mapstructure:"forward_name_prefix" yaml:"forward_name_prefix"`
}

// ImageConfig controls cover and avatar conversion
type ImageConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
	Format  string `mapstructure:"format" yaml:"format"`
	Quality int    `mapstructure:"quality" yaml:"quality"`
}

// ServerConfig configures the webhook server
type ServerConfig struct {
	Listen       string        `mapstructure:"listen" yaml:"listen"`
	CleanupDelay time.Duration `mapstructure:"image_cleanup_delay" yaml:"image_cleanup_delay"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Color  bool   `mapstructure:"color" yaml:"color"`
}
