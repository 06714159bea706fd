package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/db"
	"github.com/billmal071/libgenfic/internal/libgen"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for libgenfic.

Bash:
  $ source <(libgenfic completion bash)

Zsh:
  $ libgenfic completion zsh > "${fpath[1]}/_libgenfic"

Fish:
  $ libgenfic completion fish | source

PowerShell:
  PS> libgenfic completion powershell | Out-String | Invoke-Expression`,
	Annotations:           skipDB,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(os.Stdout)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	downloadCmd.ValidArgsFunction = completeDownloadMD5s
	searchCmd.ValidArgsFunction = completeHistoryQueries

	rootCmd.RegisterFlagCompletionFunc("mirror", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		hosts := make([]string, len(libgen.DefaultSites))
		for i, s := range libgen.DefaultSites {
			hosts[i] = s.Host
		}
		return hosts, cobra.ShellCompDirectiveNoFileComp
	})
}

// Completion functions run without PersistentPreRunE, so they open the
// database themselves.
func withDB(fn func() []string) []string {
	if db.DB() == nil {
		if err := initForCompletion(); err != nil {
			return nil
		}
		defer db.Close()
	}
	return fn()
}

func completeDownloadMD5s(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	completions := withDB(func() []string {
		downloads, err := db.ListDownloads("", 100)
		if err != nil {
			return nil
		}
		var out []string
		seen := map[string]bool{}
		for _, d := range downloads {
			if d.MD5Hash == "" || seen[d.MD5Hash] {
				continue
			}
			seen[d.MD5Hash] = true
			out = append(out, fmt.Sprintf("%s\t%s (%s)", d.MD5Hash, truncateTitle(d.Title, 40), d.Status))
		}
		return out
	})
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func completeHistoryQueries(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	completions := withDB(func() []string {
		history, err := db.GetUniqueSearchHistory(30)
		if err != nil {
			return nil
		}
		out := make([]string, 0, len(history))
		for _, h := range history {
			out = append(out, fmt.Sprintf("%s\t%d results", h.Query, h.ResultCount))
		}
		return out
	})
	return completions, cobra.ShellCompDirectiveNoFileComp
}
