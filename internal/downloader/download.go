package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// ErrHTMLContent indicates the download returned HTML instead of a file
var ErrHTMLContent = errors.New("received HTML content instead of file")

// Options configures a Downloader
type Options struct {
	// Transport is shared with the catalog fetcher so downloads use the same proxy
	Transport http.RoundTripper
	UserAgent string
	Retry     RetryConfig
	// Progress receives the progress bar; nil disables it
	Progress io.Writer
	// Logf receives one line per failed attempt
	Logf func(format string, args ...any)
}

// Downloader saves direct download links to disk
type Downloader struct {
	httpClient *http.Client
	opts       Options
}

// New creates a downloader. Downloads have no overall timeout; cancel the
// context to abort one.
func New(opts Options) *Downloader {
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:              http.ProxyFromEnvironment,
			DisableCompression: true,
		}
	}
	return &Downloader{
		httpClient: &http.Client{Transport: transport},
		opts:       opts,
	}
}

// Download fetches url into dir and returns the written path. The file name
// comes from Content-Disposition, then the URL path, then fallbackName.
// Data is written to a .part file that is renamed once complete.
func (d *Downloader) Download(ctx context.Context, url, dir, fallbackName string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	var written string
	err := RetryOperation(ctx, d.opts.Retry, func(attempt int) error {
		p, err := d.fetchOnce(ctx, url, dir, fallbackName)
		if err != nil {
			d.opts.Logf("download attempt %d/%d failed: %v", attempt+1, d.opts.Retry.MaxAttempts, err)
			return err
		}
		written = p
		return nil
	})
	if err != nil {
		return "", err
	}
	return written, nil
}

func (d *Downloader) fetchOnce(ctx context.Context, url, dir, fallbackName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if d.opts.UserAgent != "" {
		req.Header.Set("User-Agent", d.opts.UserAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", ErrHTMLContent
	}

	// Mirrors sometimes serve an error page with a binary content type
	header := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	header = header[:n]
	if looksLikeHTML(header) {
		return "", ErrHTMLContent
	}

	name := fileName(resp, fallbackName)
	finalPath := filepath.Join(dir, name)
	tempPath := finalPath + ".part"

	file, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}

	var sink io.Writer = file
	if d.opts.Progress != nil {
		bar := newProgressBar(resp.ContentLength, name, d.opts.Progress)
		sink = io.MultiWriter(file, bar)
		defer fmt.Fprintln(d.opts.Progress)
	}

	if _, err := sink.Write(header); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", err
	}
	if _, err := io.Copy(sink, resp.Body); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	return finalPath, os.Rename(tempPath, finalPath)
}

func newProgressBar(size int64, name string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func looksLikeHTML(b []byte) bool {
	head := strings.ToLower(string(b))
	return strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<head")
}

func fileName(resp *http.Response, fallback string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := SanitizeFilename(params["filename"]); name != "" {
				return name
			}
		}
	}
	if base := path.Base(resp.Request.URL.Path); strings.Contains(base, ".") && !strings.HasSuffix(base, ".php") {
		if name := SanitizeFilename(base); name != "" {
			return name
		}
	}
	if name := SanitizeFilename(fallback); name != "" {
		return name
	}
	return "download"
}

// SanitizeFilename strips path separators and characters most filesystems reject
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	if len(name) > 200 {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:200-len(ext)] + ext
	}
	return name
}
