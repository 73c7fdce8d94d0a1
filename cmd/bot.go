package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bgmbot/bot"
	"github.com/s0up4200/bgmbot/server"
)

var (
	saveImages string
	listenAddr string
)

var botCmd = &cobra.Command{
	Use:   "bot <message>",
	Short: "Run one chat message through the bot",
	Long: `Run a chat message through the command layer and print the reply,
exactly as a chat user would receive it.

  bgmbot bot "/bgm搜索 CLANNAD"
  bgmbot bot "/bgm角色搜索 古河渚"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBot,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bot over HTTP",
	Long: `Start the webhook server. Chat frameworks POST messages to
/api/command and send the returned segments back to the user.`,
	RunE: runServe,
}

var commandsCmd = &cobra.Command{
	Use:         "commands",
	Short:       "List the chat commands the bot understands",
	Annotations: map[string]string{skipInit: ""},
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range bot.Commands() {
			line := fmt.Sprintf("  %-24s", c.Usage)
			if len(c.Aliases) > 0 {
				line += " aliases: " + strings.Join(c.Aliases, ", ")
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(commandsCmd)

	botCmd.Flags().StringVar(&saveImages, "save-images", "", "write reply images into this directory")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default server.listen)")
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reply, err := chatBot.Handle(ctx, strings.Join(args, " "))
	if errors.Is(err, bot.ErrUnknownCommand) {
		return fmt.Errorf("not a bot command, see 'bgmbot commands'")
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := reply.Cleanup(); err != nil {
			logger.Warn().Err(err).Msg("Failed to clean up reply images")
		}
	}()

	if reply.Forward {
		fmt.Printf("[forward: %s]\n", reply.ForwardName)
	}

	for i, seg := range reply.Segments {
		switch seg.Type {
		case bot.SegmentImage:
			fmt.Println(describeImage(seg, i))
		default:
			fmt.Println(seg.Text)
		}
	}
	return nil
}

// describeImage prints where an image segment can be found, saving
// in-memory images when --save-images is set
func describeImage(seg bot.Segment, index int) string {
	if seg.Path != "" {
		return fmt.Sprintf("[image: %s]", seg.Path)
	}
	if saveImages == "" {
		return fmt.Sprintf("[image: %d bytes]", len(seg.Data))
	}

	if err := os.MkdirAll(saveImages, 0o755); err != nil {
		logger.Warn().Err(err).Msg("Failed to create image directory")
		return fmt.Sprintf("[image: %d bytes]", len(seg.Data))
	}
	p := filepath.Join(saveImages, fmt.Sprintf("reply_%d.%s", index, cfg.ImageFormat().Extension()))
	if err := os.WriteFile(p, seg.Data, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", p).Msg("Failed to save image")
		return fmt.Sprintf("[image: %d bytes]", len(seg.Data))
	}
	return fmt.Sprintf("[image: %s]", p)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := listenAddr
	if addr == "" {
		addr = cfg.Server.Listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(addr, chatBot, logger,
		server.WithCleanupDelay(cfg.Server.CleanupDelay),
	).Run(ctx)
}
