package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/db"
	"github.com/billmal071/libgenfic/internal/tui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View and manage search history",
	Long: `View and manage your search history.

Examples:
  libgenfic history              List recent searches
  libgenfic history clear        Clear all search history
  libgenfic history prune 720h   Remove searches older than 30 days`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSearchHistory(20)
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return showSearchHistory(limit)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all search history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.ClearSearchHistory(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		Successf("Search history cleared.")
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune [age]",
	Short: "Remove searches older than a duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		age, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid age %q: %w", args[0], err)
		}
		if err := db.DeleteSearchHistoryOlderThan(age); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		Successf("Removed searches older than %s.", age)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "number of entries to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

func showSearchHistory(limit int) error {
	history, err := db.GetUniqueSearchHistory(limit)
	if err != nil {
		return fmt.Errorf("failed to get search history: %w", err)
	}

	if len(history) == 0 {
		fmt.Println("No search history.")
		fmt.Println("\nSearches are saved automatically when history.enabled is true.")
		return nil
	}

	fmt.Printf("Recent Searches (%d):\n\n", len(history))
	for i, h := range history {
		fmt.Printf("  %d. %q (%d results)\n", i+1, h.Query, h.ResultCount)
		if f := h.Filters.String(); f != "" {
			fmt.Printf("     Filters: %s\n", f)
		}
		fmt.Printf("     %s\n\n", h.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// pickFromHistory returns nil without error when the user cancels
func pickFromHistory() (*db.SearchHistory, error) {
	history, err := db.GetUniqueSearchHistory(50)
	if err != nil {
		return nil, fmt.Errorf("failed to get search history: %w", err)
	}
	picked, err := tui.PickHistory(history)
	if errors.Is(err, tui.ErrNothingToPick) {
		return nil, fmt.Errorf("no search words given and no search history yet")
	}
	return picked, err
}
