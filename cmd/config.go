package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the Bangumi API",
	Long:  `Verify the access token by fetching the account it belongs to.`,
	RunE:  runTest,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to Bangumi at %s...\n", cfg.API.BaseURL)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %s", describeError(err))
	}

	fmt.Println("✓ Connection successful!")
	text, _ := formatter.User(me)
	fmt.Printf("\nAuthenticated as:\n%s\n", text)
	return nil
}
