package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediahub/internal/plugin"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Show server status: plugin counts and live search tasks.

Examples:
  mediahub status            # Show status
  mediahub status --check    # Also check every enabled download daemon`,
	Args: cobra.NoArgs,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("check", false, "Probe download daemons")
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")

	status, err := NewClient(serverURL).Status(check)
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}
	printStatus(serverURL, status)
	return nil
}

func printStatus(server string, s *StatusResponse) {
	fmt.Printf("mediahub %s | Server: %s (%s)\n\n", s.Version, server, s.Status)

	fmt.Println("Plugins")
	for _, t := range plugin.Types {
		c := s.Plugins[t]
		fmt.Printf("  %-10s %d registered, %d enabled\n", t+":", c.Registered, c.Enabled)
	}
	fmt.Println()
	fmt.Printf("Search tasks: %d\n", s.SearchTasks)

	if len(s.Downloaders) > 0 {
		fmt.Println()
		fmt.Println("Download daemons")
		for _, name := range sortedKeys(s.Downloaders) {
			state := s.Downloaders[name]
			if state != "ok" {
				state = "FAIL " + state
			}
			fmt.Printf("  %-14s %s\n", name+":", state)
		}
	}
}
