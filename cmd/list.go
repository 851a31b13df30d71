package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/parser"
)

var listDate string

// now is the clock used to resolve relative dates.
var now = time.Now

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one day's events and exit",
	Long: `List the events for a day in a simple text format and exit.
Without --date the day is today.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listDate, "date", "d", "today", "Day to list, e.g. 2024-02-14, tomorrow, next friday")
	rootCmd.AddCommand(listCmd)
}

// resolveDate turns user input into a date key, relative to now.
func resolveDate(input string) (calendar.DateKey, error) {
	p := parser.NewDateParser()
	p.SetNow(now())
	return p.ParseKey(input)
}

func runList(cmd *cobra.Command, args []string) error {
	key, err := resolveDate(listDate)
	if err != nil {
		return err
	}

	s, closeStore, err := loadStore()
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	day, _ := key.Time(time.Local)
	fmt.Fprintf(out, "Events for %s:\n", day.Format(cfg.DateFormat))

	events := s.EventsFor(key)
	if len(events) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	for _, ev := range events {
		fmt.Fprintf(out, "  [%d] %s\n", ev.ID, ev.Title)
		if ev.Participants != "" {
			fmt.Fprintf(out, "    With: %s\n", ev.Participants)
		}
		if ev.Description != "" {
			fmt.Fprintf(out, "    %s\n", ev.Description)
		}
	}
	return nil
}
