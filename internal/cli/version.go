package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaani/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "vaani v%s (commit %s, built %s)\n",
				version.Resolve(), version.Commit, version.Date)
			return nil
		},
	}
}
