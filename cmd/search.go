package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find events by title",
	Long:  `Print every event whose title contains the query, ignoring case.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, closeStore, err := loadStore()
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	results := s.Search(strings.Join(args, " "))
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-10s  [%d] %s\n", r.DateKey, r.ID, r.Title)
	}
	return nil
}
