package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/db"
)

var (
	cfgFile string
	verbose bool
	mirror  string
	browser bool
)

var rootCmd = &cobra.Command{
	Use:   "libgenfic",
	Short: "Search the Library Genesis fiction catalog",
	Long: `libgenfic searches the fiction catalog of Library Genesis mirrors and
resolves direct download links for the results.

Examples:
  libgenfic search "stormlight archive"        Search and pick a result
  libgenfic search -a "brandon sanderson"      Search by author
  libgenfic search -f epub --no-interactive dune
  libgenfic debug                              Dump parsed results for a sample query
  libgenfic download 2B9F5C4E...               Download by MD5
  libgenfic list                               List downloads`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if !needsDB(cmd) {
			return nil
		}
		if err := db.Init(config.GetDBPath()); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
	},
}

// Execute runs the root command; Ctrl-C cancels in-flight requests
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		Errorf("%v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/libgenfic/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&mirror, "mirror", "", "catalog host, overrides site.mirror")
	rootCmd.PersistentFlags().BoolVar(&browser, "browser", false, "fetch pages with headless Chrome, overrides network.browser")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

func initForCompletion() error {
	if err := config.Init(cfgFile); err != nil {
		return err
	}
	return db.Init(config.GetDBPath())
}

// skipDB marks commands that never touch the database
var skipDB = map[string]string{"db": "skip"}

func needsDB(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["db"] == "skip" {
			return false
		}
	}
	return true
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// Printf prints if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

// logf adapts Printf to the line-oriented loggers of the library packages
func logf(format string, args ...any) {
	Printf(format+"\n", args...)
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message
func Successf(format string, args ...interface{}) {
	fmt.Printf("✓ "+format+"\n", args...)
}
