package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/monthcal/internal/calendar"
	appLog "github.com/cwarden/monthcal/internal/log"
)

var (
	// ErrEmptyTitle is returned by Add when the event title is blank.
	ErrEmptyTitle = errors.New("event title is empty")
	// ErrFlush wraps persistence failures. The in-memory change it
	// accompanies has still been applied.
	ErrFlush = errors.New("failed to persist events")
)

// Persister loads and saves whole snapshots of the event index.
type Persister interface {
	// Load returns the stored index, or nil when nothing has been stored yet.
	Load() (*calendar.Index, error)
	Save(index *calendar.Index) error
}

// SearchResult is a matching event together with the day it belongs to.
type SearchResult struct {
	calendar.Event
	DateKey calendar.DateKey
}

// Store owns the date-keyed event index and flushes it to its persister
// after every mutation.
type Store struct {
	index     *calendar.Index
	persister Persister
	ids       *IDSource
	dirty     bool
}

type Option func(*Store)

// WithClock sets the clock used to derive event ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.ids = NewIDSource(now)
	}
}

func New(p Persister, opts ...Option) *Store {
	s := &Store{
		index:     calendar.NewIndex(),
		persister: p,
		ids:       NewIDSource(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the in-memory index with the persisted snapshot.
func (s *Store) Hydrate() error {
	if s.persister == nil {
		return nil
	}

	ix, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	if ix == nil {
		ix = calendar.NewIndex()
	}

	s.index = ix
	s.ids.Observe(ix.MaxID())
	s.dirty = false
	appLog.Debug("events hydrated", "dates", ix.Len(), "events", ix.Count())
	return nil
}

// Add appends ev to the list for key and assigns it a fresh id.
func (s *Store) Add(key calendar.DateKey, ev calendar.Event) (calendar.Event, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return calendar.Event{}, ErrEmptyTitle
	}

	ev.ID = s.ids.Next()
	s.index.Append(key, ev)
	return ev, s.flush()
}

// Remove deletes the event with the given id. It reports whether anything
// was removed; a miss does not touch storage.
func (s *Store) Remove(id int64) (bool, error) {
	if _, ok := s.index.Remove(id); !ok {
		return false, nil
	}
	return true, s.flush()
}

// EventsFor returns a copy of the events on key.
func (s *Store) EventsFor(key calendar.DateKey) []calendar.Event {
	return s.index.Events(key)
}

// Find locates an event by id.
func (s *Store) Find(id int64) (calendar.DateKey, calendar.Event, bool) {
	return s.index.Find(id)
}

// Search matches query case-insensitively against event titles only.
// An empty query matches nothing. Results follow the index's iteration
// order, which is not chronological.
func (s *Store) Search(query string) []SearchResult {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)

	var results []SearchResult
	s.index.Each(func(key calendar.DateKey, evs []calendar.Event) bool {
		for _, ev := range evs {
			if strings.Contains(strings.ToLower(ev.Title), q) {
				results = append(results, SearchResult{Event: ev, DateKey: key})
			}
		}
		return true
	})
	return results
}

// Persister returns the backend the store flushes to.
func (s *Store) Persister() Persister {
	return s.persister
}

// Index returns the live index. Callers must treat it as read-only.
func (s *Store) Index() *calendar.Index {
	return s.index
}

// Snapshot returns a deep copy of the index.
func (s *Store) Snapshot() *calendar.Index {
	return s.index.Clone()
}

// Dirty reports whether the last flush failed.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Flush writes the current index to the persister.
func (s *Store) Flush() error {
	return s.flush()
}

func (s *Store) flush() error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(s.index); err != nil {
		s.dirty = true
		appLog.Error("event flush failed", err, "dates", s.index.Len())
		return fmt.Errorf("%w: %v", ErrFlush, err)
	}
	s.dirty = false
	return nil
}
