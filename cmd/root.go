package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/bgmbot/bangumi"
	"github.com/s0up4200/bgmbot/bot"
	"github.com/s0up4200/bgmbot/config"
	"github.com/s0up4200/bgmbot/format"
	"github.com/s0up4200/bgmbot/imageconv"
)

// skipInit marks commands that run without configuration
const skipInit = "skip-init"

var (
	cfgFile   string
	logLevel  string
	cfg       *config.Config
	logger    zerolog.Logger
	client    *bangumi.Client
	converter *imageconv.Converter
	formatter *format.Formatter
	chatBot   *bot.Bot
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bgmbot",
	Short: "Look up Bangumi subjects, characters, persons and users",
	Long: `bgmbot answers chat commands with data from the Bangumi API.

It can be used directly from the terminal, run a single chat message
through the bot, or serve the bot over HTTP for a chat framework.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// initializeApp loads the configuration and wires the client, the image
// converter and the bot
func initializeApp(cmd *cobra.Command, args []string) error {
	if _, ok := cmd.Annotations[skipInit]; ok {
		logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger = setupLogger(cfg.Logging)

	opts := []bangumi.Option{
		bangumi.WithBaseURL(cfg.API.BaseURL),
		bangumi.WithUserAgent(userAgent(cfg.API.UserAgent)),
		bangumi.WithTimeout(cfg.API.Timeout),
		bangumi.WithMinInterval(cfg.API.MinInterval),
		bangumi.WithCacheTTL(cfg.API.CacheTTL),
		bangumi.WithCacheSize(cfg.API.CacheSize),
	}
	if cfg.API.InsecureSkipVerify {
		logger.Warn().Msg("TLS certificate verification is disabled for the Bangumi API")
		opts = append(opts, bangumi.WithInsecureSkipVerify())
	}

	client, err = bangumi.NewClient(cfg.API.AccessToken, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Bangumi client: %w", err)
	}

	converter = imageconv.NewConverter(logger, imageconv.WithQuality(cfg.Image.Quality))
	formatter = format.New()

	chatBot = bot.New(client, converter, bot.Settings{
		MaxFuzzyResults:     cfg.Bot.MaxFuzzyResults,
		UseForward:          cfg.Bot.UseForward,
		ForwardNamePrefix:   cfg.Bot.ForwardNamePrefix,
		ImageEnabled:        cfg.Image.Enabled,
		ImageFromFilesystem: cfg.Bot.ImageFromFilesystem,
		ImageDir:            cfg.Image.TempDir,
		ImageFormat:         cfg.ImageFormat(),
	}, logger)

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Dur("min_interval", client.MinInterval()).
		Dur("cache_ttl", cfg.API.CacheTTL).
		Msg("Bangumi client ready")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Colour only when a human is watching
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// userAgent appends the build version to the default user agent
func userAgent(configured string) string {
	if configured != "" && configured != bangumi.DefaultUserAgent {
		return configured
	}
	return fmt.Sprintf("bgmbot/%s (https://github.com/s0up4200/bgmbot)", version)
}
