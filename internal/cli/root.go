package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "snapfest",
		Short: "CLI tool for the event photo album API",
		Long: `snapfest is a CLI tool for interacting with the event photo album JSON API.

It supports signing in by name, browsing guests and photos, uploading,
liking, and real-time SSE event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load saved guest identity if not provided via flag/env
			if err := cfg.LoadGuestID(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.GuestID)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SNAPFEST_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.GuestID, "guest", cfg.GuestID, "Guest ID (env: SNAPFEST_GUEST)")
	rootCmd.PersistentFlags().StringVar(&cfg.GuestFile, "guest-file", cfg.GuestFile, "Guest ID file path (env: SNAPFEST_GUEST_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSignInCmd())
	rootCmd.AddCommand(newGuestCmd())
	rootCmd.AddCommand(newPhotoCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
