package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/libgenfic/internal/config"
	"github.com/billmal071/libgenfic/internal/libgen"
)

const debugDefaultQuery = "Stormlight Archive"

var debugCmd = &cobra.Command{
	Use:   "debug [words...]",
	Short: "Print every parsed field of a search",
	Long: `Run a search and print the parsed fields of every result, to check that
the selected mirror and layout still match the catalog markup.

Examples:
  libgenfic debug
  libgenfic debug --mirror libgen.is "the name of the wind"`,
	Annotations: skipDB,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		if query == "" {
			query = debugDefaultQuery
		}

		cfg := config.Get()
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		req := libgen.NewSearchRequest(query)
		fmt.Fprintf(cmd.OutOrStdout(), "Mirror: %s (layout %s)\nURL:    %s\n", client.Site().Host, client.Site().Layout, client.SearchURL(req))

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Network.Timeout)
		defer cancel()

		found, err := client.Search(ctx, req)
		if err != nil {
			return err
		}
		printDebugResults(cmd.OutOrStdout(), found)
		return nil
	},
}

const debugRule = "----------------------------------------"

func printDebugResults(w io.Writer, found *libgen.SearchResults) {
	fmt.Fprintln(w, debugRule)
	for _, b := range found.Books {
		fmt.Fprintf(w, "Title:    %s\n", b.Title)
		fmt.Fprintf(w, "Author:   %s\n", b.Author())
		fmt.Fprintf(w, "Series:   %s\n", b.Series)
		fmt.Fprintf(w, "Language: %s\n", b.Language)
		fmt.Fprintf(w, "MD5:      %s\n", b.ContentID)
		fmt.Fprintf(w, "Mirrors:  %d\n", len(b.Mirrors))
		fmt.Fprintln(w, debugRule)
	}
	fmt.Fprintf(w, "%d result(s)\n", found.Total)
}
