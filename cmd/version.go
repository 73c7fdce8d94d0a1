package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records build information injected through ldflags
func SetVersion(v, bt string) {
	if v != "" {
		version = v
	}
	if bt != "" {
		buildTime = bt
	}
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipInit: ""},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bgmbot %s\n", version)
		fmt.Printf("  built:   %s\n", buildTime)
		fmt.Printf("  go:      %s\n", runtime.Version())
		fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
