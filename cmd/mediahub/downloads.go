package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediahub/internal/plugin"
)

// Valid download states for --status flag validation
var validStates = []string{
	string(plugin.DownloadPending),
	string(plugin.DownloadDownloading),
	string(plugin.DownloadCompleted),
	string(plugin.DownloadFailed),
}

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Send a link to a download plugin",
	Long: `Send a link to a download plugin. Without --plugin the server picks
the first enabled downloader that handles the link's protocol.

Examples:
  mediahub download https://cdn.example/show/01.m3u8 --title "Show 01"
  mediahub download "magnet:?xt=urn:btih:..." --plugin qbittorrent`,
	Args: cobra.ExactArgs(1),
	RunE: runDownloadCmd,
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "Show downloads reported by the download daemons",
	Long: `Show downloads reported by the download daemons.

Examples:
  mediahub downloads                       # Every download plugin
  mediahub downloads --platform metube     # One plugin
  mediahub downloads tasks --active        # Tasks mediahub dispatched
  mediahub downloads cancel metube abc123`,
	Args: cobra.NoArgs,
	RunE: runDownloadsCmd,
}

var downloadsCancelCmd = &cobra.Command{
	Use:   "cancel <platform> <download-id>",
	Short: "Cancel a download",
	Args:  cobra.ExactArgs(2),
	RunE:  runDownloadsCancel,
}

var downloadsTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List dispatched download tasks",
	Args:  cobra.NoArgs,
	RunE:  runDownloadsTasks,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().String("title", "", "Title for the download (defaults to the URL)")
	downloadCmd.Flags().StringP("plugin", "p", "", "Download plugin to use")
	downloadCmd.Flags().StringToString("meta", nil, "Extra metadata (key=value)")

	rootCmd.AddCommand(downloadsCmd)
	downloadsCmd.Flags().String("platform", "", "Only this download plugin")

	downloadsCmd.AddCommand(downloadsCancelCmd)
	downloadsCmd.AddCommand(downloadsTasksCmd)
	downloadsTasksCmd.Flags().BoolP("active", "a", false, "Only pending and downloading tasks")
	downloadsTasksCmd.Flags().StringP("status", "s", "", "Filter by status ("+strings.Join(validStates, ", ")+")")
	downloadsTasksCmd.Flags().StringP("plugin", "p", "", "Filter by plugin")
	downloadsTasksCmd.Flags().IntP("limit", "n", 50, "Maximum tasks to show")
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	pluginName, _ := cmd.Flags().GetString("plugin")
	meta, _ := cmd.Flags().GetStringToString("meta")

	req := DownloadRequest{URL: args[0], Title: title, Plugin: pluginName}
	if req.Title == "" {
		req.Title = args[0]
	}
	if len(meta) > 0 {
		req.Metadata = make(map[string]any, len(meta))
		for k, v := range meta {
			req.Metadata[k] = v
		}
	}

	task, err := NewClient(serverURL).Download(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if jsonOutput {
		printJSON(task)
		return nil
	}
	fmt.Printf("Queued %q on %s (task %s, status %s)\n", task.Title, task.Plugin, task.ID, task.Status)
	return nil
}

func runDownloadsCmd(cmd *cobra.Command, args []string) error {
	platform, _ := cmd.Flags().GetString("platform")

	resp, err := NewClient(serverURL).Downloads(platform)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printDownloads(os.Stdout, resp)
	return nil
}

func printDownloads(w io.Writer, resp *DownloadsResponse) {
	if len(resp.Downloads) == 0 {
		fmt.Fprintln(w, "No downloads")
	} else {
		fmt.Fprintf(w, "Downloads (%d):\n\n", len(resp.Downloads))
		fmt.Fprintf(w, "  %-12s │ %-36s │ %-12s │ %6s │ %8s\n", "PLATFORM", "TITLE", "STATUS", "PCT", "SIZE")
		fmt.Fprintln(w, "  ─────────────┼──────────────────────────────────────┼──────────────┼────────┼─────────")
		for _, d := range resp.Downloads {
			fmt.Fprintf(w, "  %-12s │ %-36s │ %-12s │ %5.1f%% │ %8s\n",
				truncate(d.Platform, 12), truncate(d.Title, 36), truncate(d.Status, 12), d.Progress, formatSize(d.Size))
		}
	}

	var webUIs []PlatformInfo
	for _, p := range resp.Platforms {
		if p.WebUIURL != "" {
			webUIs = append(webUIs, p)
		}
	}
	if len(webUIs) > 0 {
		fmt.Fprintln(w, "\nWeb UI:")
		for _, p := range webUIs {
			fmt.Fprintf(w, "  %-12s %s (%d)\n", p.Name, p.WebUIURL, p.Count)
		}
	}

	if len(resp.Errors) > 0 {
		fmt.Fprintln(w, "\nUnreachable:")
		for _, name := range sortedKeys(resp.Errors) {
			fmt.Fprintf(w, "  %s: %s\n", name, resp.Errors[name])
		}
	}
}

func runDownloadsCancel(cmd *cobra.Command, args []string) error {
	if err := NewClient(serverURL).CancelDownload(args[0], args[1]); err != nil {
		return fmt.Errorf("cancel failed: %w", err)
	}
	if !jsonOutput {
		fmt.Printf("Download %s on %s canceled\n", args[1], args[0])
	}
	return nil
}

func runDownloadsTasks(cmd *cobra.Command, args []string) error {
	q := TaskQuery{}
	q.Active, _ = cmd.Flags().GetBool("active")
	q.Status, _ = cmd.Flags().GetString("status")
	q.Plugin, _ = cmd.Flags().GetString("plugin")
	q.Limit, _ = cmd.Flags().GetInt("limit")

	if q.Status != "" {
		q.Status = strings.ToLower(q.Status)
		if !slices.Contains(validStates, q.Status) {
			return fmt.Errorf("invalid status %q, valid statuses: %s", q.Status, strings.Join(validStates, ", "))
		}
	}

	resp, err := NewClient(serverURL).DownloadTasks(q)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Items) == 0 {
		fmt.Println("No download tasks")
		return nil
	}
	fmt.Printf("Download tasks (%d of %d):\n\n", len(resp.Items), resp.Total)
	fmt.Printf("  %-8s │ %-36s │ %-12s │ %-12s │ %6s │ %s\n", "ID", "TITLE", "PLUGIN", "STATUS", "PCT", "ADDED")
	fmt.Println("  ─────────┼──────────────────────────────────────┼──────────────┼──────────────┼────────┼──────────")
	for _, t := range resp.Items {
		fmt.Printf("  %-8s │ %-36s │ %-12s │ %-12s │ %5.1f%% │ %s\n",
			truncate(t.ID, 8), truncate(t.Title, 36), truncate(t.Plugin, 12), t.Status, t.Progress, formatTimeAgo(t.CreatedAt))
	}
	return nil
}
