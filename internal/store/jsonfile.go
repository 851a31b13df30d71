package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cwarden/monthcal/internal/calendar"
)

// JSONFile persists the index as a single JSON object keyed by date:
//
//	{"2024-2-29": [{"id": 1709164800000, "title": "Standup"}]}
type JSONFile struct {
	Path string

	mu   sync.Mutex
	last []byte // contents as last read or written by this process
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load reads the snapshot. A missing or empty file yields nil.
func (f *JSONFile) Load() (*calendar.Index, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	f.remember(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	ix := calendar.NewIndex()
	if err := json.Unmarshal(data, ix); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Path, err)
	}
	return ix, nil
}

// Save writes the snapshot atomically via a temp file in the same
// directory, leaving the final file with 0600 permissions.
func (f *JSONFile) Save(index *calendar.Index) error {
	if f.Path == "" {
		return errors.New("data file path is empty")
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".monthcal-events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return err
	}
	f.remember(data)
	return nil
}

// Changed reports whether the file on disk differs from what this
// process last read or wrote, so watchers can ignore their own saves.
func (f *JSONFile) Changed() bool {
	data, err := os.ReadFile(f.Path)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return f.last != nil
	}
	return !bytes.Equal(data, f.last)
}

func (f *JSONFile) remember(data []byte) {
	f.mu.Lock()
	f.last = append([]byte(nil), data...)
	f.mu.Unlock()
}
