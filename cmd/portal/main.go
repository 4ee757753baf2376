package main

import (
	"context"
	"os"
	"time"

	"carrier-search-portal/internal/config"
	"carrier-search-portal/internal/platform/logger"

	"github.com/spf13/cobra"
)

var (
	cfg        config.Portal
	apiURL     string
	storageKey string
	timeout    time.Duration
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Carrier search portal",
	Long: `Search truck carriers between two cities, browse recent searches and
manage display preferences. Run "portal serve" for the HTTP portal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiURL != "" {
			cfg.CarrierAPIURL = apiURL
		}
		if storageKey != "" {
			cfg.StorageBackend = storageKey
		}
		return nil
	},
}

func init() {
	config.LoadDotEnv()
	logger.Init()
	cfg = config.LoadPortal()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "carrier search API base URL (or set CARRIER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&storageKey, "storage", "", "storage backend: sqlite, postgres, redis or memory (or set STORAGE_BACKEND)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "operation timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// commandContext bounds a one-shot command by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
