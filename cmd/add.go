package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/store"
)

var (
	addDate         string
	addParticipants string
	addDescription  string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an event without opening the calendar",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "today", "Day of the event")
	addCmd.Flags().StringVarP(&addParticipants, "participants", "p", "", "Who is attending")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Longer notes")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	key, err := resolveDate(addDate)
	if err != nil {
		return err
	}

	s, closeStore, err := loadStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ev, err := s.Add(key, calendar.Event{
		Title:        strings.TrimSpace(strings.Join(args, " ")),
		Participants: strings.TrimSpace(addParticipants),
		Description:  strings.TrimSpace(addDescription),
	})
	if errors.Is(err, store.ErrEmptyTitle) {
		return fmt.Errorf("a title is required")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added [%d] %s on %s\n", ev.ID, ev.Title, key)
	return nil
}
