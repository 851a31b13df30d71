package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event is a single titled entry on one calendar day.
type Event struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Participants string `json:"participants,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Index maps date keys to the events on that day. Keys iterate in the
// order their first event was added, events in insertion order. A key is
// present only while it has at least one event.
//
// A nil *Index behaves as an empty index for all read operations.
type Index struct {
	keys   []DateKey
	events map[DateKey][]Event
}

func NewIndex() *Index {
	return &Index{events: make(map[DateKey][]Event)}
}

// Events returns a copy of the events stored under key.
func (ix *Index) Events(key DateKey) []Event {
	if ix == nil {
		return nil
	}
	evs := ix.events[key]
	if len(evs) == 0 {
		return nil
	}
	out := make([]Event, len(evs))
	copy(out, evs)
	return out
}

// Keys returns the date keys in iteration order.
func (ix *Index) Keys() []DateKey {
	if ix == nil {
		return nil
	}
	out := make([]DateKey, len(ix.keys))
	copy(out, ix.keys)
	return out
}

// Len returns the number of dates with events.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

// Count returns the total number of events.
func (ix *Index) Count() int {
	if ix == nil {
		return 0
	}
	n := 0
	for _, evs := range ix.events {
		n += len(evs)
	}
	return n
}

// Each calls fn for every date in iteration order until fn returns false.
func (ix *Index) Each(fn func(key DateKey, events []Event) bool) {
	if ix == nil {
		return
	}
	for _, k := range ix.keys {
		if !fn(k, ix.events[k]) {
			return
		}
	}
}

// Append adds ev at the end of key's list, creating the list if needed.
func (ix *Index) Append(key DateKey, ev Event) {
	if ix.events == nil {
		ix.events = make(map[DateKey][]Event)
	}
	if _, ok := ix.events[key]; !ok {
		ix.keys = append(ix.keys, key)
	}
	ix.events[key] = append(ix.events[key], ev)
}

// Remove deletes every event with the given id and drops dates left empty.
// It reports the date the event lived on.
func (ix *Index) Remove(id int64) (DateKey, bool) {
	if ix == nil {
		return "", false
	}

	var (
		found DateKey
		ok    bool
	)
	kept := ix.keys[:0]
	for _, k := range ix.keys {
		evs := ix.events[k]
		filtered := evs[:0]
		for _, ev := range evs {
			if ev.ID == id {
				found, ok = k, true
				continue
			}
			filtered = append(filtered, ev)
		}
		if len(filtered) == 0 {
			delete(ix.events, k)
			continue
		}
		ix.events[k] = filtered
		kept = append(kept, k)
	}
	ix.keys = kept
	return found, ok
}

// Find locates an event by id.
func (ix *Index) Find(id int64) (DateKey, Event, bool) {
	if ix == nil {
		return "", Event{}, false
	}
	for _, k := range ix.keys {
		for _, ev := range ix.events[k] {
			if ev.ID == id {
				return k, ev, true
			}
		}
	}
	return "", Event{}, false
}

// MaxID returns the largest event id in the index, or 0.
func (ix *Index) MaxID() int64 {
	var max int64
	ix.Each(func(_ DateKey, evs []Event) bool {
		for _, ev := range evs {
			if ev.ID > max {
				max = ev.ID
			}
		}
		return true
	})
	return max
}

// Clone returns a deep copy.
func (ix *Index) Clone() *Index {
	out := NewIndex()
	ix.Each(func(k DateKey, evs []Event) bool {
		for _, ev := range evs {
			out.Append(k, ev)
		}
		return true
	})
	return out
}

// MarshalJSON encodes the index as an object keyed by date, preserving key order.
func (ix *Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	ix.Each(func(k DateKey, evs []Event) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var kb, vb []byte
		if kb, err = json.Marshal(string(k)); err != nil {
			return false
		}
		if vb, err = json.Marshal(evs); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a date-keyed object. Parseable keys are
// canonicalized, empty lists are dropped and the document's key order
// becomes the iteration order.
func (ix *Index) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to parse event index: %w", err)
	}
	if tok == nil {
		*ix = *NewIndex()
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to parse event index: expected object, got %v", tok)
	}

	out := NewIndex()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse event index: %w", err)
		}
		raw, _ := tok.(string)

		var evs []Event
		if err := dec.Decode(&evs); err != nil {
			return fmt.Errorf("failed to parse events for %q: %w", raw, err)
		}

		key := DateKey(raw)
		if canon, err := ParseDateKey(raw); err == nil {
			key = canon
		}
		for _, ev := range evs {
			out.Append(key, ev)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to parse event index: %w", err)
	}

	*ix = *out
	return nil
}
