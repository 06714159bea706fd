package cli

import (
	"os"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/downloader"
	"github.com/billmal071/libgenfic/internal/libgen"
	"github.com/billmal071/libgenfic/internal/notify"
	"github.com/billmal071/libgenfic/internal/store"
)

func fetchConfig(cfg *config.Config) libgen.FetchConfig {
	return libgen.FetchConfig{
		Timeout:   cfg.Network.Timeout,
		UserAgent: cfg.Network.UserAgent,
		Proxy:     cfg.Network.Proxy,
	}
}

// newClient builds the catalog client from config and the global flags
func newClient(cfg *config.Config) (*libgen.Client, error) {
	var fetcher libgen.Fetcher
	if browser || cfg.Network.Browser {
		Printf("Using headless browser fetcher\n")
		fetcher = libgen.NewBrowserFetcher(fetchConfig(cfg))
	} else {
		f, err := libgen.NewCollyFetcher(fetchConfig(cfg))
		if err != nil {
			return nil, err
		}
		fetcher = f
	}

	host := cfg.Site.Mirror
	if mirror != "" {
		host = mirror
	}

	return libgen.NewClient(
		libgen.WithMirror(host),
		libgen.WithLayout(cfg.Site.Layout),
		libgen.WithScheme(cfg.Site.Scheme),
		libgen.WithCandidates(cfg.Resolver.Candidates),
		libgen.WithFetcher(fetcher),
		libgen.WithLogf(logf),
	)
}

func newStore(client libgen.Searcher, cfg *config.Config, req libgen.SearchRequest) *store.Store {
	return store.New(client, store.Options{
		Decorate: cfg.Search.Decorate,
		Request:  req,
	})
}

func newDownloader(cfg *config.Config) (*downloader.Downloader, error) {
	transport, err := libgen.NewTransport(fetchConfig(cfg))
	if err != nil {
		return nil, err
	}
	transport.DisableCompression = true

	return downloader.New(downloader.Options{
		Transport: transport,
		UserAgent: cfg.Network.UserAgent,
		Retry:     downloader.RetryConfigFrom(cfg.Network),
		Progress:  os.Stderr,
		Logf:      logf,
	}), nil
}

func newNotifier(cfg *config.Config) *notify.Notifier {
	return notify.New(cfg.Downloads.Notifications)
}
