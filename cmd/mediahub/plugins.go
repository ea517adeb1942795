package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediahub/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List and manage plugins",
	Long: `List and manage search, download and parser plugins.

Examples:
  mediahub plugins                          # List every plugin
  mediahub plugins --type search            # List search plugins only
  mediahub plugins config download metube   # Show a plugin's config
  mediahub plugins set download metube url=http://nas:8081
  mediahub plugins disable search youtube
  mediahub plugins load search mysite       # Hot-load a script plugin
  mediahub plugins discover                 # Scan the plugin directory`,
	Args: cobra.NoArgs,
	RunE: runPluginsCmd,
}

var pluginsConfigCmd = &cobra.Command{
	Use:   "config <type> <name>",
	Short: "Show a plugin's stored config",
	Args:  cobra.ExactArgs(2),
	RunE:  runPluginsConfig,
}

var pluginsSetCmd = &cobra.Command{
	Use:   "set <type> <name> <key=value>...",
	Short: "Replace a plugin's config",
	Long:  "Replaces the stored config with the given settings. Keys not listed are dropped; defaults from the plugin's schema fill the gaps.",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runPluginsSet,
}

var pluginsEnableCmd = &cobra.Command{
	Use:   "enable <type> <name>",
	Short: "Enable a plugin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPluginsToggle(args, true)
	},
}

var pluginsDisableCmd = &cobra.Command{
	Use:   "disable <type> <name>",
	Short: "Disable a plugin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPluginsToggle(args, false)
	},
}

var pluginsLoadCmd = &cobra.Command{
	Use:   "load <type> <name>",
	Short: "Load or reload a single plugin",
	Args:  cobra.ExactArgs(2),
	RunE:  runPluginsLoad,
}

var pluginsUnloadCmd = &cobra.Command{
	Use:   "unload <type> <name>",
	Short: "Unregister a plugin",
	Args:  cobra.ExactArgs(2),
	RunE:  runPluginsUnload,
}

var pluginsDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Load every plugin found on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPluginsScan(NewClient(serverURL).DiscoverPlugins, "Discovery")
	},
}

var pluginsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload every registered plugin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPluginsScan(NewClient(serverURL).ReloadPlugins, "Reload")
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.Flags().StringP("type", "t", "", "Filter by type (search, download, parser)")

	pluginsCmd.AddCommand(pluginsConfigCmd)
	pluginsCmd.AddCommand(pluginsSetCmd)
	pluginsCmd.AddCommand(pluginsEnableCmd)
	pluginsCmd.AddCommand(pluginsDisableCmd)
	pluginsCmd.AddCommand(pluginsLoadCmd)
	pluginsCmd.AddCommand(pluginsUnloadCmd)
	pluginsCmd.AddCommand(pluginsDiscoverCmd)
	pluginsCmd.AddCommand(pluginsReloadCmd)
}

func runPluginsCmd(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	client := NewClient(serverURL)

	all := make(map[plugin.Type][]plugin.Info)
	if typeFlag != "" {
		t, err := plugin.ParseType(typeFlag)
		if err != nil {
			return err
		}
		infos, err := client.PluginsOfType(t)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		all[t] = infos
	} else {
		var err error
		if all, err = client.Plugins(); err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
	}

	if jsonOutput {
		printJSON(all)
		return nil
	}
	printPlugins(all)
	return nil
}

func printPlugins(all map[plugin.Type][]plugin.Info) {
	for _, t := range plugin.Types {
		infos, ok := all[t]
		if !ok {
			continue
		}
		fmt.Printf("%s plugins (%d):\n", strings.ToUpper(string(t[:1]))+string(t[1:]), len(infos))
		if len(infos) == 0 {
			fmt.Println("  (none)")
			fmt.Println()
			continue
		}
		fmt.Printf("  %-20s %-10s %-8s %s\n", "NAME", "VERSION", "ENABLED", "DETAILS")
		for _, info := range infos {
			enabled := "yes"
			if !info.Enabled {
				enabled = "no"
			}
			details := info.Description
			if len(info.SupportedProtocols) > 0 {
				details = "protocols: " + strings.Join(info.SupportedProtocols, ", ")
			}
			fmt.Printf("  %-20s %-10s %-8s %s\n", truncate(info.Name, 20), truncate(info.Version, 10), enabled, truncate(details, 50))
		}
		fmt.Println()
	}
}

func pluginArgs(args []string) (plugin.Type, string, error) {
	t, err := plugin.ParseType(args[0])
	if err != nil {
		return "", "", err
	}
	return t, args[1], nil
}

func runPluginsConfig(cmd *cobra.Command, args []string) error {
	t, name, err := pluginArgs(args)
	if err != nil {
		return err
	}
	resp, err := NewClient(serverURL).PluginConfig(t, name)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	if jsonOutput {
		printJSON(resp)
		return nil
	}
	printPluginConfig(resp)
	return nil
}

func printPluginConfig(resp *PluginConfigResponse) {
	fmt.Printf("%s/%s config:\n", resp.Type, resp.Name)
	if len(resp.Config) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, k := range sortedKeys(resp.Config) {
		fmt.Printf("  %-20s %v\n", k, resp.Config[k])
	}
}

func runPluginsSet(cmd *cobra.Command, args []string) error {
	t, name, err := pluginArgs(args)
	if err != nil {
		return err
	}
	cfg, err := parseConfigArgs(args[2:])
	if err != nil {
		return err
	}
	resp, err := NewClient(serverURL).SetPluginConfig(t, name, cfg)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if jsonOutput {
		printJSON(resp)
		return nil
	}
	printPluginConfig(resp)
	return nil
}

func runPluginsToggle(args []string, enabled bool) error {
	t, name, err := pluginArgs(args)
	if err != nil {
		return err
	}
	resp, err := NewClient(serverURL).TogglePlugin(t, name, enabled)
	if err != nil {
		return fmt.Errorf("toggle failed: %w", err)
	}
	if jsonOutput {
		printJSON(resp)
		return nil
	}
	state := "enabled"
	if !resp.Enabled {
		state = "disabled"
	}
	fmt.Printf("%s/%s %s\n", resp.Type, resp.Name, state)
	return nil
}

func runPluginsLoad(cmd *cobra.Command, args []string) error {
	t, name, err := pluginArgs(args)
	if err != nil {
		return err
	}
	info, err := NewClient(serverURL).LoadPlugin(t, name)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	if jsonOutput {
		printJSON(info)
		return nil
	}
	fmt.Printf("Loaded %s/%s v%s\n", info.Type, info.Name, info.Version)
	return nil
}

func runPluginsUnload(cmd *cobra.Command, args []string) error {
	t, name, err := pluginArgs(args)
	if err != nil {
		return err
	}
	if err := NewClient(serverURL).UnloadPlugin(t, name); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("plugin %s/%s is not registered", t, name)
		}
		return fmt.Errorf("unload failed: %w", err)
	}
	if !jsonOutput {
		fmt.Printf("Unloaded %s/%s\n", t, name)
	}
	return nil
}

func runPluginsScan(scan func() (*DiscoverResponse, error), label string) error {
	res, err := scan()
	if err != nil {
		return fmt.Errorf("%s failed: %w", strings.ToLower(label), err)
	}
	if jsonOutput {
		printJSON(res)
		return nil
	}
	fmt.Printf("%s: %d loaded, %d failed\n", label, res.Succeeded, res.Failed)
	for _, k := range sortedKeys(res.Errors) {
		fmt.Printf("  %s: %s\n", k, res.Errors[k])
	}
	return nil
}
