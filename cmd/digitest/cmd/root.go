package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version of the digitest CLI and server.
var Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "digitest",
	Short: "DigitMatch credential verification and bot-link service",
	Long: `digitest issues short-lived session credentials after an OAuth-style
redirect, validates opaque API tokens, and generates deep links that carry
trading-account credentials to the bot page.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
