package bot

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/s0up4200/bgmbot/bangumi"
	"github.com/s0up4200/bgmbot/format"
	"github.com/s0up4200/bgmbot/imageconv"
)

// ErrUnknownCommand is returned when a message is not addressed to the bot
var ErrUnknownCommand = errors.New("unknown command")

// User facing messages
const (
	msgNotConfigured = "❌ Bangumi插件未正确配置"
	msgRateLimited   = "⚠️ 请求过于频繁，请稍后再试"
	msgNetwork       = "❌ API错误: 网络连接异常，请稍后再试"
	msgInternal      = "❌ 内部错误，请查看日志"
)

// ImageFetcher downloads and converts images for replies
type ImageFetcher interface {
	FetchAndConvert(ctx context.Context, url, dir string, format imageconv.Format) (string, error)
}

// Settings controls reply construction
type Settings struct {
	MaxFuzzyResults     int
	UseForward          bool
	ForwardNamePrefix   string
	ImageEnabled        bool
	ImageFromFilesystem bool
	ImageDir            string
	ImageFormat         imageconv.Format
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		MaxFuzzyResults:   5,
		ForwardNamePrefix: "Bangumi",
		ImageEnabled:      true,
		ImageDir:          os.TempDir(),
		ImageFormat:       imageconv.FormatJPEG,
	}
}

// Bot turns chat messages into replies
type Bot struct {
	api       bangumi.API
	images    ImageFetcher
	formatter *format.Formatter
	settings  Settings
	logger    zerolog.Logger
}

// New creates a bot. A nil api yields a bot that answers every command
// with a configuration error; a nil images disables pictures.
func New(api bangumi.API, images ImageFetcher, settings Settings, logger zerolog.Logger) *Bot {
	if settings.MaxFuzzyResults <= 0 {
		settings.MaxFuzzyResults = DefaultSettings().MaxFuzzyResults
	}
	if settings.ImageFormat == "" {
		settings.ImageFormat = imageconv.FormatJPEG
	}
	if settings.ImageDir == "" {
		settings.ImageDir = os.TempDir()
	}

	return &Bot{
		api:       api,
		images:    images,
		formatter: format.New(),
		settings:  settings,
		logger:    logger,
	}
}

// Handle answers one chat message. Messages that are not bot commands
// return ErrUnknownCommand; every other outcome, failures included, is
// a reply for the user.
func (b *Bot) Handle(ctx context.Context, message string) (*Reply, error) {
	cmd, arg, ok := parseMessage(message)
	if !ok {
		return nil, ErrUnknownCommand
	}

	if b.api == nil {
		return textReply(msgNotConfigured), nil
	}
	if arg == "" {
		return textReply(usageMessage(cmd)), nil
	}

	b.logger.Info().
		Str("command", cmd.Name).
		Str("query", arg).
		Msg("Handling command")

	var (
		reply *Reply
		err   error
	)
	switch cmd.action {
	case actionList:
		reply, err = b.list(ctx, cmd, arg)
	default:
		reply, err = b.lookup(ctx, cmd, arg)
	}
	if err != nil {
		return b.errorReply(cmd, arg, err), nil
	}
	return reply, nil
}

func (b *Bot) list(ctx context.Context, cmd *Command, keyword string) (*Reply, error) {
	limit := b.settings.MaxFuzzyResults
	page, err := b.api.Search(ctx, cmd.Kind, keyword, limit)
	if err != nil {
		return nil, err
	}

	reply := textReply(b.formatter.List(cmd.Kind, page, limit))
	if b.settings.UseForward {
		reply.Forward = true
		reply.ForwardName = b.settings.ForwardNamePrefix + cmd.forwardName
	}
	return reply, nil
}

func (b *Bot) lookup(ctx context.Context, cmd *Command, query string) (*Reply, error) {
	entity, err := b.api.Resolve(ctx, cmd.Kind, query)
	if err != nil {
		return nil, err
	}

	text, imageURL := b.formatter.Entity(cmd.Kind, entity)

	reply := &Reply{}
	b.attachImage(ctx, reply, imageURL)
	reply.Segments = append(reply.Segments, Segment{Type: SegmentText, Text: text})
	return reply, nil
}

// attachImage adds the converted picture to the reply. Failures only
// cost the picture.
func (b *Bot) attachImage(ctx context.Context, reply *Reply, imageURL string) {
	if imageURL == "" || b.images == nil || !b.settings.ImageEnabled {
		return
	}

	path, err := b.images.FetchAndConvert(ctx, imageURL, b.settings.ImageDir, b.settings.ImageFormat)
	if err != nil {
		b.logger.Warn().Err(err).Str("url", imageURL).Msg("Image processing failed")
		return
	}

	if b.settings.ImageFromFilesystem {
		reply.AddImageFile(path)
		return
	}

	data, err := os.ReadFile(path)
	if rmErr := os.Remove(path); rmErr != nil {
		b.logger.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove converted image")
	}
	if err != nil {
		b.logger.Warn().Err(err).Str("path", path).Msg("Failed to read converted image")
		return
	}
	reply.Segments = append(reply.Segments, Segment{Type: SegmentImage, Data: data})
}

// errorReply maps a failure to the one fixed message for its kind
func (b *Bot) errorReply(cmd *Command, query string, err error) *Reply {
	var apiErr *bangumi.APIError

	switch {
	case errors.Is(err, bangumi.ErrNotFound):
		return textReply(fmt.Sprintf("❌ 未找到相关%s: %s", cmd.Noun, query))
	case errors.Is(err, bangumi.ErrRateLimited):
		return textReply(msgRateLimited)
	case errors.As(err, &apiErr):
		b.logger.Error().
			Err(err).
			Str("command", cmd.Name).
			Int("status", apiErr.StatusCode).
			Str("body", apiErr.Body).
			Msg("Bangumi API error")
		if apiErr.IsNetwork() {
			return textReply(msgNetwork)
		}
		return textReply(fmt.Sprintf("❌ API错误: API服务异常 (%d)", apiErr.StatusCode))
	case errors.Is(err, bangumi.ErrValidation):
		return textReply(usageMessage(cmd))
	default:
		b.logger.Error().
			Err(err).
			Str("command", cmd.Name).
			Str("query", query).
			Msg("Command failed")
		return textReply(msgInternal)
	}
}

func usageMessage(cmd *Command) string {
	return "❌ 格式错误，用法: " + cmd.Usage
}
