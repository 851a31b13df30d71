package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cwarden/monthcal/internal/config"
	"github.com/cwarden/monthcal/internal/engine"
	appLog "github.com/cwarden/monthcal/internal/log"
	"github.com/cwarden/monthcal/internal/store"
	"github.com/cwarden/monthcal/internal/ui"
)

var (
	cfgFile  string
	storage  string
	dataFile string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "monthcal",
	Short: "A month-view terminal calendar",
	Long: `Monthcal shows one month at a time as a grid of days. Select a day to
list its events, add new ones, or open an event to read or delete it.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: search the usual locations)")
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "", "Storage backend: json, sqlite or memory")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "file", "f", "", "Events file to use instead of the configured one")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg = config.DefaultConfig()
		err = cfg.LoadFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command-line flags override the config file
	if storage != "" {
		cfg.Storage = strings.ToLower(storage)
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}

	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	return cfg.Validate()
}

// openStore builds the configured persistence backend. The returned close
// function releases it.
func openStore(cfg *config.Config) (*store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage {
	case config.StorageMemory:
		return store.New(store.NewMemory(nil)), noop, nil

	case config.StorageSQLite:
		db, err := store.OpenSQLite(cfg.DataPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", cfg.DataPath(), err)
		}
		return store.New(db), db.Close, nil

	default:
		return store.New(store.NewJSONFile(cfg.DataPath())), noop, nil
	}
}

// loadStore opens and hydrates the configured store.
func loadStore() (*store.Store, func() error, error) {
	s, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Hydrate(); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to load events: %w", err)
	}
	return s, closeStore, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI; log to a file instead.
	if err := appLog.SetFile(cfg.LogPath()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
	}
	defer appLog.Close()

	s, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := engine.DefaultOptions()
	opts.ResetOnNavigate = cfg.ResetPopupOnNavigate
	opts.YearSpan = cfg.YearSpan
	eng := engine.New(s, opts)
	if err := eng.Init(); err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	model := ui.NewModel(cfg, eng)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if jf, ok := s.Persister().(*store.JSONFile); ok && cfg.WatchDataFile {
		watcher, err := watchDataFile(jf.Path, func(path string) {
			if jf.Changed() {
				p.Send(ui.ReloadMsg{Path: path})
			}
		})
		if err != nil {
			appLog.Error("file watching disabled", err, "path", jf.Path)
		} else {
			defer watcher.Close()
		}
	}

	appLog.Info("starting", "storage", cfg.Storage, "data", cfg.DataPath())
	_, runErr := p.Run()

	if err := eng.Dispose(); err != nil {
		appLog.Error("final save failed", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: some changes could not be saved: %v\n", err)
	}
	if runErr != nil {
		return fmt.Errorf("error running program: %w", runErr)
	}
	return nil
}

func watchDataFile(path string, onChange func(string)) (*store.FileWatcher, error) {
	// The directory must exist before it can be watched.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	watcher, err := store.NewFileWatcher(onChange)
	if err != nil {
		return nil, err
	}
	if err := watcher.AddFile(path); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}
