package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediahub/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long: `Validates config.toml syntax, required fields, and environment variable
substitution without starting the server. Without a path the file is
discovered the same way mediahubd finds it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigTest,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	explicit := ""
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := config.Resolve(explicit)
	if err != nil {
		return err
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, err := range e.Errors {
			fmt.Printf("  - %s\n", err)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server:     %s (log: %s)\n", cfg.Addr(), cfg.Server.LogLevel)
	fmt.Printf("  Database:   %s\n", cfg.Database.Path)

	discover := "no"
	if cfg.Plugins.DiscoverOnStart {
		discover = "yes"
	}
	fmt.Printf("  Plugins:    %s (discover on start: %s)\n", cfg.Plugins.Dir, discover)

	builtins := "all"
	if len(cfg.Plugins.Builtins) > 0 {
		builtins = strings.Join(cfg.Plugins.Builtins, ", ")
	}
	fmt.Printf("  Builtins:   %s\n", builtins)

	fanout := "unlimited"
	if cfg.Search.Concurrency > 0 {
		fanout = fmt.Sprint(cfg.Search.Concurrency)
	}
	fmt.Printf("  Search:     fan-out %s, timeout %s, ranked %t\n", fanout, cfg.Search.Timeout, cfg.Search.Rank)
	fmt.Printf("  Tasks:      retention %s, sweep every %s\n", cfg.Tasks.Retention, cfg.Tasks.SweepInterval)
	fmt.Printf("  Downloads:  poll every %s\n", cfg.Downloads.PollInterval)
	if cfg.Events.Retention > 0 {
		fmt.Printf("  Events:     retention %s\n", cfg.Events.Retention)
	} else {
		fmt.Println("  Events:     kept forever")
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
