package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage != StorageJSON {
		t.Errorf("Wrong default storage: %s", cfg.Storage)
	}

	if !cfg.ResetPopupOnNavigate {
		t.Error("Navigation should close popups by default")
	}

	if cfg.YearSpan != 3 {
		t.Errorf("Wrong default year span: %d", cfg.YearSpan)
	}

	if cfg.MaxCellEvents != 2 {
		t.Errorf("Wrong default max cell events: %d", cfg.MaxCellEvents)
	}

	if len(cfg.KeyBindings) == 0 {
		t.Error("Default key bindings should not be empty")
	}

	if cfg.KeyBindings["q"] != "quit" {
		t.Errorf("Wrong quit key binding: %s", cfg.KeyBindings["q"])
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestParseLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		line     string
		check    func(*Config) bool
		hasError bool
	}{
		{
			line: "set storage SQLite",
			check: func(c *Config) bool {
				return c.Storage == StorageSQLite
			},
		},
		{
			line: "set reset_popup_on_navigate false",
			check: func(c *Config) bool {
				return !c.ResetPopupOnNavigate
			},
		},
		{
			line: "set max_cell_events 4",
			check: func(c *Config) bool {
				return c.MaxCellEvents == 4
			},
		},
		{
			line: `set date_format "2006-01-02"`,
			check: func(c *Config) bool {
				return c.DateFormat == "2006-01-02"
			},
		},
		{
			line: "bind J next_month",
			check: func(c *Config) bool {
				return c.KeyBindings["J"] == "next_month"
			},
		},
		{
			line: "color today cyan",
			check: func(c *Config) bool {
				return c.Colors["today"] == "cyan"
			},
		},
		{
			line:     "invalid command",
			hasError: true,
		},
		{
			line: "# comment line",
		},
		{
			line: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := cfg.parseLine(tt.line)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for line: %s", tt.line)
			}
		})
	}
}

func TestSetVariable(t *testing.T) {
	cfg := DefaultConfig()
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		value    string
		check    func(*Config) bool
		hasError bool
	}{
		{
			name:  "data_file",
			value: "~/cal/events.json",
			check: func(c *Config) bool {
				return c.DataFile == filepath.Join(home, "cal", "events.json")
			},
		},
		{
			name:  "watch_data_file",
			value: "no",
			check: func(c *Config) bool {
				return !c.WatchDataFile
			},
		},
		{
			name:  "year_span",
			value: "5",
			check: func(c *Config) bool {
				return c.YearSpan == 5
			},
		},
		{
			name:     "year_span",
			value:    "many",
			hasError: true,
		},
		{
			name:     "max_cell_events",
			value:    "invalid",
			hasError: true,
		},
		{
			name:  "confirm_delete",
			value: "1",
			check: func(c *Config) bool {
				return c.ConfirmDelete
			},
		},
		{
			name:  "log_level",
			value: "debug",
			check: func(c *Config) bool {
				return c.LogLevel == "debug"
			},
		},
		{
			name:     "unknown_variable",
			value:    "something",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.setVariable(tt.name, tt.value)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for %s = %s", tt.name, tt.value)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "test_monthcalrc")

	content := `# Test config file
set storage sqlite
set data_file /tmp/monthcal-test.db
set watch_data_file false
set year_span 2

bind Q quit
bind N quick_add

color today cyan
color selected reverse
`

	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(configFile); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if cfg.Storage != StorageSQLite {
		t.Errorf("Wrong storage: %s", cfg.Storage)
	}

	if cfg.DataPath() != "/tmp/monthcal-test.db" {
		t.Errorf("Wrong data path: %s", cfg.DataPath())
	}

	if cfg.WatchDataFile {
		t.Error("Watching should be disabled")
	}

	if cfg.YearSpan != 2 {
		t.Errorf("Wrong year span: %d", cfg.YearSpan)
	}

	if cfg.Action("Q") != "quit" || cfg.Action("q") != "quit" {
		t.Errorf("Quit should be bound to both q and Q")
	}

	if cfg.Colors["today"] != "cyan" {
		t.Errorf("Wrong today color: %s", cfg.Colors["today"])
	}
}

func TestLoadFileReportsLineNumbers(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "monthcalrc")
	content := "set storage json\nset bogus 1\n"
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := DefaultConfig().LoadFile(configFile)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected a line 2 error, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := `storage: memory
max_cell_events: 3
reset_popup_on_navigate: false
bindings:
  Z: today
colors:
  today: magenta
`
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(configFile); err != nil {
		t.Fatalf("Failed to load yaml config: %v", err)
	}

	if cfg.Storage != StorageMemory || cfg.DataPath() != "" {
		t.Errorf("Wrong storage: %s (%q)", cfg.Storage, cfg.DataPath())
	}
	if cfg.MaxCellEvents != 3 {
		t.Errorf("Wrong max cell events: %d", cfg.MaxCellEvents)
	}
	if cfg.ResetPopupOnNavigate {
		t.Error("reset_popup_on_navigate should be false")
	}
	if cfg.Action("Z") != "today" || cfg.Action("t") != "today" {
		t.Error("YAML bindings should merge with the defaults")
	}
	if cfg.Colors["today"] != "magenta" || cfg.Colors["event"] != "green" {
		t.Errorf("YAML colors should merge with the defaults: %v", cfg.Colors)
	}
	if !cfg.WatchDataFile {
		t.Error("Unset keys keep their defaults")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected unknown storage to be rejected")
	}

	cfg = DefaultConfig()
	cfg.MaxCellEvents = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected negative max_cell_events to be rejected")
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	cfg := DefaultConfig()
	if got := cfg.DataPath(); got != filepath.Join("/data", "monthcal", "events.json") {
		t.Errorf("Wrong json data path: %s", got)
	}

	cfg.Storage = StorageSQLite
	if got := cfg.DataPath(); got != filepath.Join("/data", "monthcal", "events.db") {
		t.Errorf("Wrong sqlite data path: %s", got)
	}

	if got := cfg.LogPath(); got != filepath.Join("/state", "monthcal", "monthcal.log") {
		t.Errorf("Wrong log path: %s", got)
	}
}

func TestLoadConfigSearchOrder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", "")

	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("storage: sqlite\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".monthcalrc"), []byte("set storage memory\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MONTHCAL_CONFIG", explicit)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage != StorageSQLite {
		t.Errorf("MONTHCAL_CONFIG should win, got %s", cfg.Storage)
	}

	t.Setenv("MONTHCAL_CONFIG", "")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("~/.monthcalrc should be used, got %s", cfg.Storage)
	}
}

func TestKeysFor(t *testing.T) {
	cfg := DefaultConfig()
	keys := cfg.KeysFor("next_day")
	if len(keys) != 2 || keys[0] != "l" || keys[1] != "right" {
		t.Errorf("Unexpected keys for next_day: %v", keys)
	}
}
