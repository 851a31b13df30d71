package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event by id",
	Long:  `Delete an event by the id shown by list and search.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event id %q", args[0])
	}

	s, closeStore, err := loadStore()
	if err != nil {
		return err
	}
	defer closeStore()

	key, ev, ok := s.Find(id)
	if !ok {
		return fmt.Errorf("no event with id %d", id)
	}
	if _, err := s.Remove(id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q from %s\n", ev.Title, key)
	return nil
}
