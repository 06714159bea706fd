package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/db"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloads",
	Long: `List recorded downloads and their status, newest first.

Examples:
  libgenfic list                  List recent downloads
  libgenfic list -s failed        List failed downloads
  libgenfic list -n 100           List up to 100 downloads`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "filter by status (pending, downloading, completed, failed)")
	listCmd.Flags().IntP("limit", "n", 50, "maximum number of downloads to show")
}

func runList(cmd *cobra.Command, args []string) error {
	statusFilter, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	downloads, err := db.ListDownloads(db.DownloadStatus(strings.ToLower(statusFilter)), limit)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	if len(downloads) == 0 {
		if statusFilter != "" {
			fmt.Printf("No downloads with status '%s'.\n", statusFilter)
		} else {
			fmt.Println("No downloads yet.")
		}
		return nil
	}

	fmt.Printf("Downloads (%d):\n\n", len(downloads))
	for _, d := range downloads {
		printDownload(d)
	}
	return nil
}

func statusIcon(s db.DownloadStatus) string {
	switch s {
	case db.StatusPending:
		return "⏳"
	case db.StatusDownloading:
		return "⬇️ "
	case db.StatusCompleted:
		return "✅"
	case db.StatusFailed:
		return "❌"
	}
	return "  "
}

func printDownload(d *db.Download) {
	fmt.Printf("%s [%d] %s\n", statusIcon(d.Status), d.ID, truncateTitle(d.Title, 50))
	if d.Authors != "" {
		fmt.Printf("   Author: %s\n", d.Authors)
	}

	fmt.Printf("   Status: %s", d.Status)
	if d.ErrorMessage != "" {
		fmt.Printf(" - %s", d.ErrorMessage)
	}
	if d.Status == db.StatusCompleted && d.Verified {
		fmt.Printf(" (verified)")
	}
	fmt.Println()

	if d.FilePath != "" {
		fmt.Printf("   File: %s\n", d.FilePath)
	}
	if d.MD5Hash != "" {
		fmt.Printf("   MD5: %s\n", d.MD5Hash)
	}
	fmt.Printf("   Updated: %s\n\n", d.UpdatedAt.Format("2006-01-02 15:04"))
}

func truncateTitle(title string, maxLen int) string {
	r := []rune(title)
	if len(r) <= maxLen {
		return title
	}
	return string(r[:maxLen-3]) + "..."
}
