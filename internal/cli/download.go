package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/db"
	"github.com/billmal071/libgenfic/internal/downloader"
	"github.com/billmal071/libgenfic/internal/libgen"
)

var downloadCmd = &cobra.Command{
	Use:   "download [md5 | mirror-url]",
	Short: "Download a book by MD5 or mirror page",
	Long: `Resolve a direct link for a book and download it.

The argument is either the MD5 shown in search results or a mirror page URL.
MD5 downloads are verified against the hash when downloads.verify is set.

Examples:
  libgenfic download 2B9F5C4E0A0B8D1C3E4F5A6B7C8D9E0F
  libgenfic download -o ~/Books http://library.lol/fiction/2B9F5C4E0A0B8D1C3E4F5A6B7C8D9E0F`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		outputDir, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")

		target := strings.TrimSpace(args[0])
		if md5 := md5FromInput(target); md5 != "" && !force {
			if existing, err := db.GetLatestDownload(md5); err == nil && existing != nil && existing.Status == db.StatusCompleted {
				fmt.Printf("Already downloaded: %s\n", existing.FilePath)
				fmt.Println("Use --force to download again.")
				return nil
			}
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		return downloadBook(cmd.Context(), client, cfg, target, nil, outputDir)
	},
}

func init() {
	downloadCmd.Flags().StringP("output", "o", "", "output directory (default downloads.path)")
	downloadCmd.Flags().Bool("force", false, "download even if already completed")
}

var md5Pattern = regexp.MustCompile(`^[0-9A-Fa-f]{32}$`)

// md5FromInput returns the MD5 named by a bare hash or by the last path
// segment or md5 query parameter of a mirror URL, upper-cased
func md5FromInput(s string) string {
	if md5Pattern.MatchString(s) {
		return strings.ToUpper(s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if q := u.Query().Get("md5"); md5Pattern.MatchString(q) {
		return strings.ToUpper(q)
	}
	if seg := path.Base(u.Path); md5Pattern.MatchString(seg) {
		return strings.ToUpper(seg)
	}
	return ""
}

// downloadBook resolves target (MD5 or mirror page) and saves the file.
// book may be nil when only the identifier is known.
func downloadBook(ctx context.Context, client *libgen.Client, cfg *config.Config, target string, book *libgen.Book, outputDir string) error {
	if outputDir == "" {
		outputDir = cfg.Downloads.Path
	}
	md5 := md5FromInput(target)

	record := &db.Download{MD5Hash: md5, Title: md5}
	if book != nil {
		record.Title = book.Title
		record.Authors = book.Author()
		if book.HasMirrors() {
			record.Format = strings.ToUpper(book.Mirrors[0].Format)
			record.MirrorURL = book.Mirrors[0].URL
			if md5 == "" {
				target = record.MirrorURL
			}
		}
	}
	if record.Title == "" {
		record.Title = target
	}
	if record.MirrorURL == "" && isURL(target) {
		record.MirrorURL = target
	}
	if err := db.CreateDownload(record); err != nil {
		Printf("Could not record download: %v\n", err)
	}

	notifier := newNotifier(cfg)
	fail := func(err error) error {
		if record.ID != 0 {
			db.UpdateStatus(record.ID, db.StatusFailed, err.Error())
		}
		notifier.DownloadFailed(record.Title, err.Error())
		return err
	}

	Printf("Resolving download link...\n")
	rctx, cancel := context.WithTimeout(ctx, cfg.Network.Timeout*2)
	direct, err := client.DownloadURL(rctx, target)
	cancel()
	if err != nil {
		if errors.Is(err, libgen.ErrNoDownloadAvailable) {
			return fail(fmt.Errorf("no mirror offered a download link for %s: %w", target, err))
		}
		return fail(fmt.Errorf("resolving %s: %w", target, err))
	}
	Printf("Direct link: %s\n", direct)
	if record.ID != 0 {
		db.UpdateStatus(record.ID, db.StatusDownloading, "")
	}

	dl, err := newDownloader(cfg)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Downloading: %s\n", record.Title)
	filePath, err := dl.Download(ctx, direct, outputDir, fallbackFileName(record))
	if err != nil {
		return fail(fmt.Errorf("download failed: %w", err))
	}

	verified := false
	if cfg.Downloads.Verify && md5 != "" {
		if err := downloader.VerifyChecksum(filePath, md5); err != nil {
			fmt.Printf("⚠ Verification failed: %v\n", err)
		} else {
			verified = true
			Printf("Checksum verified\n")
		}
	}

	if record.ID != 0 {
		if err := db.MarkCompleted(record.ID, direct, filePath, verified); err != nil {
			Printf("Could not record completion: %v\n", err)
		}
	}
	notifier.DownloadComplete(record.Title, filePath)
	Successf("Downloaded: %s", filePath)
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fallbackFileName(d *db.Download) string {
	name := d.Title
	if d.Authors != "" {
		name = d.Authors + " - " + name
	}
	if d.Format != "" {
		name += "." + strings.ToLower(d.Format)
	}
	return downloader.SanitizeFilename(name)
}
