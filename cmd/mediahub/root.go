package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "mediahub",
	Short: "CLI client for the mediahub daemon",
	Long: `mediahub - CLI client for the mediahub daemon

Search video sites through pluggable providers, hand links to
download daemons and manage the plugins that do the work.

Run 'mediahubd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mediahub {{.Version}}\n")
}

func defaultServerURL() string {
	if u := os.Getenv("MEDIAHUB_SERVER"); u != "" {
		return u
	}
	return "http://localhost:8484"
}
