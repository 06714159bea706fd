package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/db"
	"github.com/billmal071/libgenfic/internal/downloader"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file md5]",
	Short: "Verify the MD5 checksum of downloaded files",
	Long: `Verify a file against an MD5, or every completed download with --all.

Examples:
  libgenfic verify ~/Books/Dune.epub 2B9F5C4E0A0B8D1C3E4F5A6B7C8D9E0F
  libgenfic verify --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Bool("all", false, "verify all completed downloads")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if len(args) == 2 {
		if err := downloader.VerifyChecksum(args[0], args[1]); err != nil {
			return err
		}
		Successf("Checksum verified: %s", args[0])
		return nil
	}

	downloads, err := db.ListDownloads(db.StatusCompleted, 1000)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}
	if len(downloads) == 0 {
		fmt.Println("No downloads to verify")
		return nil
	}

	fmt.Printf("Verifying %d download(s)...\n\n", len(downloads))

	var verified, failed, missing, skipped int
	for _, d := range downloads {
		fmt.Printf("[%d] %s\n", d.ID, truncateTitle(d.Title, 60))

		if d.MD5Hash == "" {
			fmt.Printf("    - No MD5 recorded, skipped\n\n")
			skipped++
			continue
		}
		if _, err := os.Stat(d.FilePath); errors.Is(err, os.ErrNotExist) {
			fmt.Printf("    ❌ File not found: %s\n\n", d.FilePath)
			missing++
			continue
		}

		err := downloader.VerifyChecksum(d.FilePath, d.MD5Hash)
		if markErr := db.MarkCompleted(d.ID, d.DownloadURL, d.FilePath, err == nil); markErr != nil {
			Printf("Could not update record: %v\n", markErr)
		}
		if err != nil {
			fmt.Printf("    ❌ %v\n\n", err)
			failed++
			continue
		}
		fmt.Printf("    ✓ Checksum verified\n\n")
		verified++
	}

	fmt.Println("─────────────────────────────────")
	fmt.Printf("Verified: %d\n", verified)
	if failed > 0 {
		fmt.Printf("Failed: %d\n", failed)
	}
	if missing > 0 {
		fmt.Printf("Missing: %d\n", missing)
	}
	if skipped > 0 {
		fmt.Printf("Skipped: %d\n", skipped)
	}
	if failed > 0 {
		fmt.Println("\nTip: run 'libgenfic download --force <md5>' to fetch a corrupted file again")
	}
	return nil
}
