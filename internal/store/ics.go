package store

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/cwarden/monthcal/internal/calendar"
	appLog "github.com/cwarden/monthcal/internal/log"
)

const productID = "-//cwarden//monthcal//EN"

// ImportedEvent is a single all-day event read from an iCalendar stream.
// Its ID is zero; the store assigns one on import.
type ImportedEvent struct {
	DateKey calendar.DateKey
	calendar.Event
}

// ExportICS writes every event in index as an all-day VEVENT.
func ExportICS(index *calendar.Index, w io.Writer, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)

	var err error
	index.Each(func(key calendar.DateKey, evs []calendar.Event) bool {
		var day time.Time
		day, err = key.Time(time.UTC)
		if err != nil {
			err = fmt.Errorf("event date %q: %w", key, err)
			return false
		}
		for _, ev := range evs {
			vev := cal.AddEvent(fmt.Sprintf("%d@monthcal", ev.ID))
			vev.SetDtStampTime(now.UTC())
			vev.SetAllDayStartAt(day)
			vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
			vev.SetSummary(ev.Title)
			if ev.Description != "" {
				vev.SetDescription(ev.Description)
			}
			for _, p := range splitParticipants(ev.Participants) {
				vev.AddAttendee(p)
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, cal.Serialize())
	return err
}

// ImportICS reads single-day events from r. Recurring and multi-day
// events are skipped, as are events without a summary or start date.
// TEXT values arrive already unescaped by the parser.
func ImportICS(r io.Reader) ([]ImportedEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var out []ImportedEvent
	for _, vev := range cal.Events() {
		ev, ok := importVEvent(vev)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	appLog.Info("ics import parsed", "vevents", len(cal.Events()), "accepted", len(out))
	return out, nil
}

func importVEvent(vev *ical.VEvent) (ImportedEvent, bool) {
	var out ImportedEvent

	if vev.GetProperty(ical.ComponentPropertyRrule) != nil {
		return out, false
	}
	sum := vev.GetProperty(ical.ComponentPropertySummary)
	if sum == nil || strings.TrimSpace(sum.Value) == "" {
		return out, false
	}
	startProp := vev.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, false
	}

	allDay := !strings.Contains(startProp.Value, "T")
	var start time.Time
	var err error
	if allDay {
		start, err = vev.GetAllDayStartAt()
		if err != nil {
			return out, false
		}
		if e, err := vev.GetAllDayEndAt(); err == nil && e.After(start.AddDate(0, 0, 1)) {
			return out, false
		}
	} else {
		start, err = vev.GetStartAt()
		if err != nil {
			return out, false
		}
		start = start.In(time.Local)
		if end, err := vev.GetEndAt(); err == nil && end.After(nextMidnight(start)) {
			return out, false
		}
	}

	out.DateKey = calendar.KeyOf(start.Year(), start.Month(), start.Day())
	out.Title = sum.Value
	if p := vev.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	var people []string
	for _, p := range vev.GetProperties(ical.ComponentPropertyAttendee) {
		v := strings.TrimSpace(p.Value)
		if len(v) >= 7 && strings.EqualFold(v[:7], "mailto:") {
			v = v[7:]
		}
		if v != "" {
			people = append(people, v)
		}
	}
	out.Participants = strings.Join(people, ", ")
	return out, true
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

func splitParticipants(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Import adds every entry to the store and flushes once.
func (s *Store) Import(entries []ImportedEvent) (int, error) {
	n := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" || !e.DateKey.Valid() {
			continue
		}
		ev := e.Event
		ev.ID = s.ids.Next()
		s.index.Append(e.DateKey, ev)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	appLog.Info("events imported", "count", n)
	return n, s.flush()
}
