package libgen

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// silentLogger discards all chromedp log output
var silentLogger = log.New(io.Discard, "", 0)

// BrowserFetcher loads pages in a headless browser. It is slower than
// CollyFetcher but gets past mirrors that serve a script challenge first.
type BrowserFetcher struct {
	cfg    FetchConfig
	settle time.Duration
}

// NewBrowserFetcher creates a headless browser fetcher
func NewBrowserFetcher(cfg FetchConfig) *BrowserFetcher {
	return &BrowserFetcher{
		cfg:    cfg.withDefaults(),
		settle: 2 * time.Second,
	}
}

func (f *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(f.cfg.UserAgent),
	)
	if f.cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer("socks5://"+f.cfg.Proxy))
	}
	return opts
}

// Fetch implements Fetcher
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(silentLogger.Printf),
		chromedp.WithErrorf(silentLogger.Printf),
	)
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, f.cfg.Timeout+f.settle)
	defer timeoutCancel()

	resp, err := chromedp.RunResponse(browserCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	if err := checkStatus(pageURL, resp); err != nil {
		return nil, err
	}

	var htmlContent string
	err = chromedp.Run(browserCtx,
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	return []byte(htmlContent), nil
}

// checkStatus rejects a main document answered with a non-2xx status
func checkStatus(pageURL string, resp *network.Response) error {
	if resp == nil {
		return nil
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return &FetchError{URL: pageURL, StatusCode: int(resp.Status), Err: fmt.Errorf("unexpected status %s", resp.StatusText)}
	}
	return nil
}
