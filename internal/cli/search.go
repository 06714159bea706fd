package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/db"
	"github.com/billmal071/libgenfic/internal/libgen"
	"github.com/billmal071/libgenfic/internal/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search [words...]",
	Short: "Search the fiction catalog",
	Long: `Search the fiction catalog of the selected mirror.

By default, shows an interactive selector to choose from the results.
Without words, pick a previous search from the history instead.

Examples:
  libgenfic search "the way of kings"
  libgenfic search -t "mistborn"
  libgenfic search -a "ursula le guin" -l ""
  libgenfic search -s "discworld" -f epub
  libgenfic search --no-interactive -n 3 dune
  libgenfic search -d "the left hand of darkness"`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolP("title", "t", false, "match the words against titles only")
	searchCmd.Flags().BoolP("author", "a", false, "match the words against authors only")
	searchCmd.Flags().BoolP("series", "s", false, "match the words against series only")
	searchCmd.MarkFlagsMutuallyExclusive("title", "author", "series")

	searchCmd.Flags().StringP("language", "l", "", "language filter (default search.language, empty string for any)")
	searchCmd.Flags().StringP("format", "f", "", "format filter (epub, mobi, fb2, ...)")
	searchCmd.Flags().IntP("limit", "n", 0, "number of results to show (default search.limit)")
	searchCmd.Flags().BoolP("download", "d", false, "immediately download the selected book")
	searchCmd.Flags().Bool("no-interactive", false, "print results with resolved download links")
}

// criteriaFromFlags maps -t/-a/-s to the catalog search column
func criteriaFromFlags(cmd *cobra.Command) libgen.Criteria {
	for flag, c := range map[string]libgen.Criteria{
		"title":  libgen.CriteriaTitle,
		"author": libgen.CriteriaAuthors,
		"series": libgen.CriteriaSeries,
	} {
		if on, _ := cmd.Flags().GetBool(flag); on {
			return c
		}
	}
	return libgen.CriteriaAny
}

// requestFromFlags builds the request, letting explicit flags win over config
func requestFromFlags(cmd *cobra.Command, query string, cfg *config.Config) libgen.SearchRequest {
	req := libgen.NewSearchRequest(query)
	req.Criteria = criteriaFromFlags(cmd)
	req.Language = cfg.Search.Language
	req.Format = cfg.Search.Format

	if cmd.Flags().Changed("language") {
		req.Language, _ = cmd.Flags().GetString("language")
	}
	if cmd.Flags().Changed("format") {
		req.Format, _ = cmd.Flags().GetString("format")
	}
	return req
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	query := strings.Join(args, " ")
	req := requestFromFlags(cmd, query, cfg)

	if query == "" {
		picked, err := pickFromHistory()
		if err != nil || picked == nil {
			return err
		}
		req = requestFromHistory(picked)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	autoDownload, _ := cmd.Flags().GetBool("download")
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	Printf("Searching %s for: %s\n", client.Site().Host, req.Query)

	if noInteractive {
		return printResolvedResults(cmd.Context(), client, cfg, req, limit)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Network.Timeout)
	defer cancel()

	found, err := client.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	recordSearch(req, found.Total, client.Site().Host)

	books := found.Books
	if len(books) > limit {
		books = books[:limit]
	}
	if len(books) == 0 {
		fmt.Println("No books found matching your query.")
		return nil
	}
	Printf("Found %d result(s)\n\n", found.Total)

	selected, err := tui.PickBook(books, fmt.Sprintf("Results for %q", req.Query))
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if selected == nil {
		return nil
	}

	fmt.Println(tui.BookCard(selected, client.DetailURL(selected.ContentID)))

	if autoDownload {
		return downloadBook(cmd.Context(), client, cfg, selected.ContentID, selected, "")
	}

	fmt.Printf("\nTo download, run:\n")
	fmt.Printf("  libgenfic download %s\n", selected.ContentID)
	return nil
}

// printResolvedResults prints each result with its direct download link,
// resolving links one result at a time
func printResolvedResults(ctx context.Context, client *libgen.Client, cfg *config.Config, req libgen.SearchRequest, limit int) error {
	st := newStore(client, cfg, req)

	results, err := st.Search(ctx, req.Query, limit, cfg.Network.Timeout)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	recordSearch(req, len(results), client.Site().Host)

	if len(results) == 0 {
		fmt.Println("No books found matching your query.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s\n", i+1, r.Title)
		fmt.Printf("   Author: %s\n", r.Author)
		if r.Series != "" {
			fmt.Printf("   Series: %s\n", r.Series)
		}
		m := r.Mirror()
		fmt.Printf("   Format: %s | Size: %s %s\n", r.Formats, m.Size, m.Unit)
		fmt.Printf("   Detail: %s\n", r.DetailURL)

		rctx, cancel := context.WithTimeout(ctx, cfg.Network.Timeout)
		err := st.ResolveDownloads(rctx, r)
		cancel()
		switch {
		case errors.Is(err, libgen.ErrNoDownloadAvailable):
			fmt.Printf("   Download: none available\n")
		case err != nil:
			fmt.Printf("   Download: %v\n", err)
		default:
			for format, link := range r.Downloads {
				fmt.Printf("   Download (%s): %s\n", format, link)
			}
		}
		fmt.Println()
	}
	return nil
}

func recordSearch(req libgen.SearchRequest, count int, host string) {
	if !config.Get().History.Enabled || db.DB() == nil {
		return
	}
	filters := db.SearchFilters{
		Criteria: string(req.Criteria),
		Language: req.Language,
		Format:   req.Format,
		Mirror:   host,
	}
	if err := db.AddSearchHistory(req.Query, count, filters); err != nil {
		Printf("Could not save search history: %v\n", err)
	}
}

func requestFromHistory(h *db.SearchHistory) libgen.SearchRequest {
	req := libgen.NewSearchRequest(h.Query)
	req.Criteria, _ = libgen.ParseCriteria(h.Filters.Criteria)
	req.Language = h.Filters.Language
	req.Format = h.Filters.Format
	return req
}
