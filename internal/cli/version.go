package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "0.1.0"
	// Commit is set at build time
	Commit = "dev"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: skipDB,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("libgenfic version %s (%s)\n", Version, Commit)
	},
}
