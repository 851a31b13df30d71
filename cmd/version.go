package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Monthcal",
	Args:  cobra.NoArgs,
	// Skip config loading; a broken config should not hide the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Monthcal %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
