package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hooktrap",
	Short: "Hooktrap - ephemeral HTTP callback collector",
	Long: `Hooktrap is an ephemeral HTTP callback collector for security testing
and webhook debugging.

It accepts arbitrary inbound HTTP requests at a token-scoped path,
records each as a structured event, and republishes events through:
  - A paginated polling surface (/{token}/logs)
  - A live Server-Sent Events stream (/{token}/events)
  - Aggregate statistics and bulk export endpoints

The token is an opaque capability embedded in the URL path; unknown
tokens get the same 404 as unknown routes.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
