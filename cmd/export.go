package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwarden/monthcal/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all events as iCalendar",
	Long:  `Write every event as an all-day VEVENT to stdout or to --out.`,
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "File to write instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, closeStore, err := loadStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if exportOut == "" {
		return store.ExportICS(s.Index(), cmd.OutOrStdout(), now())
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	if err := store.ExportICS(s.Index(), f, now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d events to %s\n", s.Index().Count(), exportOut)
	return nil
}
