package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legaltech-cl/extracto/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		v, commit, date := version.Info()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "extracto %s (commit: %s, built: %s)\n", v, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
