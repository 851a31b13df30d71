package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "github.com/cwarden/monthcal/internal/log"
)

const debounceDelay = 100 * time.Millisecond

// FileWatcher reports changes to a set of data files. It watches each
// file's parent directory because atomic saves replace the file rather
// than writing to it.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	dirs     map[string]int
	timers   map[string]*time.Timer
	onChange func(string)
	mu       sync.Mutex
	done     chan struct{}
	once     sync.Once
}

func NewFileWatcher(onChange func(string)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  watcher,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		onChange: onChange,
		done:     make(chan struct{}),
	}

	go fw.watch()
	return fw, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[absPath]; exists {
		return nil
	}

	dir := filepath.Dir(absPath)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}
	fw.dirs[dir]++
	fw.files[absPath] = struct{}{}
	return nil
}

func (fw *FileWatcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[absPath]; !exists {
		return nil
	}
	delete(fw.files, absPath)

	dir := filepath.Dir(absPath)
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		return fw.watcher.Remove(dir)
	}
	return nil
}

func (fw *FileWatcher) watch() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.schedule(filepath.Clean(event.Name))

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			appLog.Error("file watcher error", err)

		case <-fw.done:
			return
		}
	}
}

// schedule coalesces bursts of events on name into one callback.
func (fw *FileWatcher) schedule(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, watching := fw.files[name]; !watching {
		return
	}
	if timer, exists := fw.timers[name]; exists {
		timer.Stop()
	}
	fw.timers[name] = time.AfterFunc(debounceDelay, func() {
		fw.mu.Lock()
		delete(fw.timers, name)
		_, watching := fw.files[name]
		fw.mu.Unlock()

		select {
		case <-fw.done:
			return
		default:
		}
		if watching && fw.onChange != nil {
			fw.onChange(name)
		}
	})
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		fw.mu.Lock()
		for name, timer := range fw.timers {
			timer.Stop()
			delete(fw.timers, name)
		}
		fw.mu.Unlock()
		err = fw.watcher.Close()
	})
	return err
}
