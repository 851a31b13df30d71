package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwarden/monthcal/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file.ics>",
	Short: "Add events from an iCalendar file",
	Long: `Add every single-day VEVENT in the file as an event on its start day.
Recurring and multi-day events are skipped; attendees become participants.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := store.ImportICS(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	s, closeStore, err := loadStore()
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := s.Import(entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d events\n", n, len(entries))
	return nil
}
