package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/tasks"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <keyword>...",
	Short: "Search every enabled search plugin",
	Long: `Search every enabled search plugin, or a chosen subset.

Examples:
  mediahub search "big buck bunny"
  mediahub search --plugin seacms --plugin youtube "big buck bunny"
  mediahub search --async --plugin seacms "big buck bunny"
  mediahub search -v "big buck bunny"      # Show episodes and parsed links`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

var taskCmd = &cobra.Command{
	Use:   "task <id>",
	Short: "Show an async search task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskCmd,
}

var videoCmd = &cobra.Command{
	Use:   "video <plugin> <url>",
	Short: "Fetch details for one video page",
	Args:  cobra.ExactArgs(2),
	RunE:  runVideoCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringSliceP("plugin", "p", nil, "Search only these plugins")
	searchCmd.Flags().BoolP("verbose", "v", false, "Show episodes and parsed links")
	searchCmd.Flags().Bool("async", false, "Run as a background task (requires exactly one --plugin)")
	searchCmd.Flags().Bool("wait", false, "With --async, wait for the task to finish")
	searchCmd.Flags().Duration("timeout", 2*time.Minute, "With --wait, how long to wait")

	rootCmd.AddCommand(taskCmd)
	taskCmd.Flags().Bool("wait", false, "Wait for the task to finish")
	taskCmd.Flags().Duration("timeout", 2*time.Minute, "With --wait, how long to wait")

	rootCmd.AddCommand(videoCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")
	plugins, _ := cmd.Flags().GetStringSlice("plugin")
	verbose, _ := cmd.Flags().GetBool("verbose")
	async, _ := cmd.Flags().GetBool("async")

	client := NewClient(serverURL)

	if async {
		if len(plugins) != 1 {
			return fmt.Errorf("--async needs exactly one --plugin")
		}
		created, err := client.CreateSearchTask(plugins[0], keyword)
		if err != nil {
			return fmt.Errorf("create task failed: %w", err)
		}
		wait, _ := cmd.Flags().GetBool("wait")
		if !wait {
			if jsonOutput {
				printJSON(created)
				return nil
			}
			fmt.Printf("Task %s %s (check with 'mediahub task %s')\n", created.TaskID, created.Status, created.TaskID)
			return nil
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return showTask(client, created.TaskID, true, timeout, verbose)
	}

	var (
		results *SearchResponse
		err     error
	)
	if len(plugins) == 1 {
		results, err = client.SearchOne(plugins[0], keyword)
	} else {
		results, err = client.Search(keyword, plugins)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		printJSON(results)
		return nil
	}
	printSearchResults(results.Keyword, results.Results, verbose)
	if len(results.Errors) > 0 {
		fmt.Println("\nWarnings:")
		for _, name := range sortedKeys(results.Errors) {
			fmt.Printf("  %s: %s\n", name, results.Errors[name])
		}
	}
	return nil
}

func printSearchResults(keyword string, results []plugin.SearchResult, verbose bool) {
	if len(results) == 0 {
		fmt.Printf("No results for %q\n", keyword)
		return
	}

	fmt.Printf("Found %d results for %q:\n\n", len(results), keyword)
	fmt.Printf("  # │ %-42s │ %-12s │ %s\n", "TITLE", "PLATFORM", "EPISODES")
	fmt.Println("────┼────────────────────────────────────────────┼──────────────┼──────────")

	for i, r := range results {
		fmt.Printf(" %2d │ %-42s │ %-12s │ %d\n", i+1, truncate(r.Title, 42), truncate(r.Platform, 12), len(r.Episodes))
		if !verbose {
			continue
		}
		fmt.Printf("    │ %s\n", r.URL)
		for _, ep := range r.Episodes {
			fmt.Printf("    │   %s  %s\n", ep.Name, ep.PlayURL)
			for _, link := range ep.ParsedURLs {
				fmt.Printf("    │     -> %s  %s\n", link.Name, link.URL)
			}
		}
	}
}

func runTaskCmd(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetBool("wait")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return showTask(NewClient(serverURL), args[0], wait, timeout, true)
}

func showTask(client *Client, id string, wait bool, timeout time.Duration, verbose bool) error {
	var (
		task *tasks.SearchTask
		err  error
	)
	if wait {
		task, err = client.WaitSearchTask(id, 500*time.Millisecond, timeout)
	} else {
		task, err = client.SearchTask(id)
	}
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("task %s not found (tasks expire after the retention window)", id)
		}
		return fmt.Errorf("fetch task failed: %w", err)
	}

	if jsonOutput {
		printJSON(task)
		return nil
	}

	fmt.Printf("Task %s | %s | %s %q\n", task.ID, task.Status, task.PluginName, task.Keyword)
	fmt.Printf("  Progress: %d%% %s\n", task.Progress, task.ProgressMessage)
	fmt.Printf("  Created:  %s\n", formatTimeAgo(task.CreatedAt))
	if task.Error != "" {
		fmt.Printf("  Error:    %s\n", task.Error)
	}
	if task.Status == tasks.StatusCompleted {
		fmt.Println()
		printSearchResults(task.Keyword, task.Results, verbose)
	}
	return nil
}

func runVideoCmd(cmd *cobra.Command, args []string) error {
	info, err := NewClient(serverURL).VideoInfo(args[0], args[1])
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if jsonOutput {
		printJSON(info)
		return nil
	}

	fmt.Printf("%s\n", info.Title)
	fmt.Printf("  URL:      %s\n", info.URL)
	if info.Platform != "" {
		fmt.Printf("  Platform: %s\n", info.Platform)
	}
	if info.Duration != "" {
		fmt.Printf("  Duration: %s\n", info.Duration)
	}
	if info.Description != "" {
		fmt.Printf("  %s\n", truncate(info.Description, 200))
	}
	for _, ep := range info.Episodes {
		fmt.Printf("  %s  %s\n", ep.Name, ep.PlayURL)
	}
	return nil
}
