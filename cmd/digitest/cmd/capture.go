package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BasilOkoth/digitest/session"
)

var dataDir string

var captureCmd = &cobra.Command{
	Use:   "capture <redirect-url>",
	Short: "Capture credentials from a post-redirect URL",
	Long: `Extracts the indexed token/account/currency triples from an upstream
redirect URL, persists the primary credential locally, and prints the
cleaned URL with all query parameters stripped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil {
			return fmt.Errorf("parsing redirect URL: %w", err)
		}

		store, err := openSessionStore()
		if err != nil {
			return err
		}
		defer store.Close()

		accounts, clean, err := session.Capture(store, u)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No credentials found in URL; nothing captured.")
			return nil
		}

		for acct, cred := range accounts {
			fmt.Printf("Captured account %s (%s)\n", acct, cred.Currency)
		}
		if cred, ok := store.Get(); ok {
			fmt.Printf("Primary credential stored for %s\n", cred.ActiveAccount)
		}
		fmt.Printf("Clean URL: %s\n", clean)
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear the stored primary credential",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the protected bot page would load",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cred, ok := session.Guard(store)
		if !ok {
			fmt.Printf("No credential stored; the bot page redirects to %s\n", session.EntryPath)
			return nil
		}
		fmt.Printf("Authenticated as %s\n", cred.ActiveAccount)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored primary credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

func openSessionStore() (*session.FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return session.NewFileStore(filepath.Join(dataDir, "session.db"))
}

func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	for _, c := range []*cobra.Command{captureCmd, sessionCmd} {
		c.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Directory for the local session store")
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}
