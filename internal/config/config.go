package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	// Storage settings
	Storage       string `yaml:"storage"`
	DataFile      string `yaml:"data_file"`
	WatchDataFile bool   `yaml:"watch_data_file"`

	// Display settings
	DateFormat    string `yaml:"date_format"`
	MaxCellEvents int    `yaml:"max_cell_events"`
	YearSpan      int    `yaml:"year_span"`
	WrapText      bool   `yaml:"wrap_text"`

	// UI settings
	Colors      map[string]string `yaml:"colors"`
	KeyBindings map[string]string `yaml:"bindings"`

	// Behavior settings
	ResetPopupOnNavigate bool `yaml:"reset_popup_on_navigate"`
	ConfirmDelete        bool `yaml:"confirm_delete"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage:       StorageJSON,
		WatchDataFile: true,

		DateFormat:    "Mon Jan 2, 2006",
		MaxCellEvents: 2,
		YearSpan:      3,
		WrapText:      true,

		Colors: map[string]string{
			"normal":   "default",
			"muted":    "8",
			"today":    "yellow",
			"selected": "reverse",
			"event":    "green",
			"error":    "red",
			"header":   "bold",
			"border":   "63",
		},

		KeyBindings: map[string]string{
			"q":      "quit",
			"?":      "help",
			"t":      "today",
			"r":      "refresh",
			"n":      "quick_add",
			"enter":  "select",
			"a":      "add_from_list",
			"d":      "delete_event",
			"esc":    "close",
			"h":      "prev_day",
			"l":      "next_day",
			"k":      "prev_week",
			"j":      "next_week",
			"left":   "prev_day",
			"right":  "next_day",
			"up":     "prev_week",
			"down":   "next_week",
			"<":      "prev_month",
			">":      "next_month",
			"m":      "pick_month",
			"y":      "pick_year",
			"g":      "goto_date",
			"/":      "search",
			"x":      "clear_search",
			"ctrl+c": "quit",
		},

		ResetPopupOnNavigate: true,
		ConfirmDelete:        true,

		LogLevel: "info",
	}
}

// LoadConfig reads the first config file found in the usual places and
// applies it over the defaults.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	home := os.Getenv("HOME")
	configPaths := []string{
		os.Getenv("MONTHCAL_CONFIG"),
		xdgPath("XDG_CONFIG_HOME", "monthcalrc"),
		xdgPath("XDG_CONFIG_HOME", "config.yaml"),
		filepath.Join(home, ".config", "monthcal", "monthcalrc"),
		filepath.Join(home, ".config", "monthcal", "config.yaml"),
		filepath.Join(home, ".monthcalrc"),
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			if err := config.LoadFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			break
		}
	}

	return config, nil
}

func xdgPath(env, name string) string {
	base := os.Getenv(env)
	if base == "" {
		return ""
	}
	return filepath.Join(base, "monthcal", name)
}

// LoadFile applies one config file. Files ending in .yaml or .yml are
// read as YAML; anything else uses the rc line format.
func (c *Config) LoadFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := c.loadYAML(path); err != nil {
			return err
		}
	default:
		if err := c.loadFromFile(path); err != nil {
			return err
		}
	}
	return c.Validate()
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	c.DataFile = expandHome(c.DataFile)
	c.LogFile = expandHome(c.LogFile)
	return nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if err := c.parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func (c *Config) parseLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip comments and empty lines
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		c.KeyBindings[matches[1]] = matches[2]
		return nil
	}

	// color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.Trim(matches[2], `"'`)
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(value, `"'`)

	switch name {
	case "storage":
		c.Storage = strings.ToLower(value)

	case "data_file":
		c.DataFile = expandHome(value)

	case "watch_data_file":
		c.WatchDataFile = parseBool(value)

	case "date_format":
		c.DateFormat = value

	case "max_cell_events":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_cell_events: %s", value)
		}
		c.MaxCellEvents = n

	case "year_span":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid year_span: %s", value)
		}
		c.YearSpan = n

	case "wrap_text":
		c.WrapText = parseBool(value)

	case "reset_popup_on_navigate":
		c.ResetPopupOnNavigate = parseBool(value)

	case "confirm_delete":
		c.ConfirmDelete = parseBool(value)

	case "log_file":
		c.LogFile = expandHome(value)

	case "log_level":
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// Validate rejects settings the rest of the program cannot use.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageJSON, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("invalid storage: %q (want json, sqlite or memory)", c.Storage)
	}
	if c.MaxCellEvents < 0 {
		return fmt.Errorf("invalid max_cell_events: %d", c.MaxCellEvents)
	}
	if c.YearSpan < 0 {
		return fmt.Errorf("invalid year_span: %d", c.YearSpan)
	}
	return nil
}

// DataPath is the file the configured storage reads and writes. It is
// empty for memory storage.
func (c *Config) DataPath() string {
	if c.Storage == StorageMemory {
		return ""
	}
	if c.DataFile != "" {
		return c.DataFile
	}
	name := "events.json"
	if c.Storage == StorageSQLite {
		name = "events.db"
	}
	return filepath.Join(dataHome(), "monthcal", name)
}

// LogPath is where the terminal UI writes its log.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "monthcal", "monthcal.log")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "monthcal", "monthcal.log")
}

// Action returns the action bound to key, if any.
func (c *Config) Action(key string) string {
	return c.KeyBindings[key]
}

// KeysFor lists the keys bound to action, sorted for display.
func (c *Config) KeysFor(action string) []string {
	var keys []string
	for k, a := range c.KeyBindings {
		if a == action {
			keys = append(keys, k)
		}
	}
	// Short keys first so single letters lead the help text.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseBool(value string) bool {
	v := strings.ToLower(value)
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
