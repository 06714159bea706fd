package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/libgen"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and modify libgenfic configuration.

Configuration is stored in ~/.config/libgenfic/config.yaml and can be
overridden with LIBGENFIC_* environment variables or a .env file.

Examples:
  libgenfic config get site.mirror
  libgenfic config set site.mirror libgen.is
  libgenfic config set network.proxy 127.0.0.1:9050
  libgenfic config set downloads.path ~/Books
  libgenfic config mirrors`,
	Annotations: skipDB,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := config.GetValue(key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}
		fmt.Printf("%s = %v\n", key, value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if key == "site.layout" && value != "" {
			if _, ok := libgen.LookupLayout(value); !ok {
				return fmt.Errorf("unknown layout %q (known: %v)", value, libgen.LayoutNames())
			}
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("failed to set config: %w", err)
		}

		Successf("Set %s = %s", key, value)
		fmt.Printf("Config saved to: %s\n", config.GetConfigPath())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config file: %s\n", config.GetConfigPath())
		fmt.Printf("Database:    %s\n", config.GetDBPath())
		fmt.Printf("Config dir:  %s\n", config.GetConfigDir())
	},
}

var configMirrorsCmd = &cobra.Command{
	Use:   "mirrors",
	Short: "List known catalog mirrors and layouts",
	Run: func(cmd *cobra.Command, args []string) {
		active := libgen.SelectSite(config.Get().Site.Mirror)
		fmt.Println("Mirrors:")
		for _, s := range libgen.DefaultSites {
			marker := " "
			if s.Host == active.Host {
				marker = "*"
			}
			fmt.Printf("  %s %-16s %s\n", marker, s.Host, s.Layout)
		}

		fmt.Println("\nLayouts:")
		for _, n := range libgen.LayoutNames() {
			fmt.Printf("    %s\n", n)
		}
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configMirrorsCmd)
}
