// Package engine holds the month view's state: which month is shown, which
// day is selected, which popup is open, and the form drafts. Every change
// goes through Dispatch, one intent at a time.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/monthcal/internal/calendar"
	appLog "github.com/cwarden/monthcal/internal/log"
	"github.com/cwarden/monthcal/internal/store"
)

type Mode int

const (
	ModeClosed Mode = iota
	ModeQuickAdd
	ModeFullAdd
	ModeList
	ModeDetails
)

func (m Mode) String() string {
	switch m {
	case ModeQuickAdd:
		return "quickAdd"
	case ModeFullAdd:
		return "fullAdd"
	case ModeList:
		return "list"
	case ModeDetails:
		return "details"
	default:
		return "closed"
	}
}

type Draft struct {
	Title        string
	Participants string
	Description  string
}

// Errors flags the form fields that failed validation on the last save.
type Errors struct {
	Title        bool
	Participants bool
}

func (e Errors) Any() bool {
	return e.Title || e.Participants
}

type Options struct {
	Now func() time.Time
	// ResetOnNavigate closes the popup whenever the shown month changes.
	ResetOnNavigate bool
	// YearSpan is how many years either side of the base year the year
	// picker offers.
	YearSpan int
}

func DefaultOptions() Options {
	return Options{
		Now:             time.Now,
		ResetOnNavigate: true,
		YearSpan:        3,
	}
}

type Engine struct {
	store *store.Store
	opts  Options

	year     int
	month    time.Month
	yearBase int

	selected      calendar.DateKey
	mode          Mode
	selectedEvent *calendar.Event
	draft         Draft
	errs          Errors

	query   string
	results []store.SearchResult

	unsaved bool
}

func New(s *store.Store, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.YearSpan < 0 {
		opts.YearSpan = 0
	}
	e := &Engine{store: s, opts: opts}
	e.resetSelection()
	return e
}

// Init loads events from storage and resets the selection to today with
// no popup open.
func (e *Engine) Init() error {
	if err := e.store.Hydrate(); err != nil {
		return err
	}
	e.resetSelection()
	e.unsaved = e.store.Dirty()
	appLog.Debug("engine initialized", "month", e.MonthLabel(), "selected", e.selected)
	return nil
}

// Dispose closes any popup and makes a last attempt to persist changes
// that failed to save earlier.
func (e *Engine) Dispose() error {
	e.closePopup()
	e.results = nil
	e.query = ""
	if !e.unsaved {
		return nil
	}
	err := e.store.Flush()
	e.unsaved = e.store.Dirty()
	return err
}

func (e *Engine) resetSelection() {
	now := e.opts.Now()
	e.year, e.month = now.Year(), now.Month()
	e.yearBase = now.Year()
	e.selected = calendar.KeyForTime(now)
	e.closePopup()
}

func (e *Engine) today() calendar.DateKey {
	return calendar.KeyForTime(e.opts.Now())
}

// Dispatch applies one intent. Invalid input and lookup misses leave the
// state as it was.
func (e *Engine) Dispatch(in Intent) {
	switch in := in.(type) {
	case OpenQuickAdd:
		if e.selected == "" {
			e.selected = e.today()
		}
		e.mode = ModeQuickAdd
		e.draft = Draft{}
		e.errs = Errors{}
		e.selectedEvent = nil

	case SelectCell:
		e.selectCell(in.DateKey)

	case OpenAddFromList:
		if e.mode != ModeList {
			return
		}
		e.mode = ModeFullAdd
		e.draft = Draft{}
		e.errs = Errors{}

	case SelectEvent:
		if e.mode != ModeList {
			return
		}
		for _, ev := range e.store.EventsFor(e.selected) {
			if ev.ID == in.ID {
				e.selectedEvent = &ev
				e.mode = ModeDetails
				return
			}
		}

	case SaveQuick:
		e.saveQuick(in)

	case SaveFull:
		e.saveFull(in)

	case EditDraft:
		e.editDraft(in)

	case DeleteEvent:
		e.deleteEvent(in.ID)

	case Close:
		e.closePopup()

	case PrevMonth:
		e.navigate(calendar.AddMonths(e.year, e.month, -1))

	case NextMonth:
		e.navigate(calendar.AddMonths(e.year, e.month, 1))

	case SetMonth:
		if in.Month < time.January || in.Month > time.December {
			return
		}
		e.navigate(e.year, in.Month)

	case SetYear:
		if in.Year < 1 || in.Year > 9999 {
			return
		}
		e.yearBase = in.Year
		e.navigate(in.Year, e.month)

	case Today:
		now := e.opts.Now()
		e.navigate(now.Year(), now.Month())
		e.selected = calendar.KeyForTime(now)

	case GoTo:
		year, month, _, err := in.DateKey.Date()
		if err != nil {
			return
		}
		e.navigate(year, month)
		e.selected = canonical(in.DateKey)

	case Search:
		e.query = in.Query
		e.results = e.store.Search(in.Query)

	case ClearSearch:
		e.query = ""
		e.results = nil

	case SelectSearchResult:
		year, month, _, err := in.DateKey.Date()
		if err != nil {
			return
		}
		e.year, e.month = year, month
		e.selected = canonical(in.DateKey)
		e.closePopup()
		e.query = ""
		e.results = nil

	case Reload:
		e.reload()
	}
}

func canonical(k calendar.DateKey) calendar.DateKey {
	if c, err := calendar.ParseDateKey(string(k)); err == nil {
		return c
	}
	return k
}

func (e *Engine) selectCell(key calendar.DateKey) {
	key, err := calendar.ParseDateKey(string(key))
	if err != nil {
		return
	}

	if e.mode == ModeQuickAdd {
		e.selected = key
		return
	}

	next := ModeFullAdd
	if len(e.store.EventsFor(key)) > 0 {
		next = ModeList
	}
	if key == e.selected && next == e.mode {
		return
	}

	e.selected = key
	e.selectedEvent = nil
	e.mode = next
	if next == ModeFullAdd {
		e.draft = Draft{}
		e.errs = Errors{}
	}
}

func (e *Engine) saveQuick(in SaveQuick) {
	if e.mode != ModeQuickAdd {
		return
	}
	e.draft.Title = in.Title

	title := strings.TrimSpace(in.Title)
	if title == "" {
		e.errs = Errors{Title: true}
		return
	}

	if _, err := e.add(calendar.Event{Title: title}); err != nil {
		return
	}
	e.closePopup()
}

func (e *Engine) saveFull(in SaveFull) {
	if e.mode != ModeFullAdd {
		return
	}
	e.draft = Draft{Title: in.Title, Participants: in.Participants, Description: in.Description}

	ev := calendar.Event{
		Title:        strings.TrimSpace(in.Title),
		Participants: strings.TrimSpace(in.Participants),
		Description:  strings.TrimSpace(in.Description),
	}
	errs := Errors{Title: ev.Title == "", Participants: ev.Participants == ""}
	if errs.Any() {
		e.errs = errs
		return
	}

	added, err := e.add(ev)
	if err != nil {
		return
	}
	e.mode = ModeDetails
	e.selectedEvent = &added
	e.draft = Draft{}
	e.errs = Errors{}
}

// add stores ev on the selected date. A failed flush still counts as added;
// it only marks the engine unsaved.
func (e *Engine) add(ev calendar.Event) (calendar.Event, error) {
	added, err := e.store.Add(e.selected, ev)
	e.unsaved = e.store.Dirty()
	if err != nil && !errors.Is(err, store.ErrFlush) {
		appLog.Error("event add rejected", err, "date", e.selected)
		return calendar.Event{}, err
	}
	appLog.Info("event added", "date", e.selected, "id", added.ID)
	return added, nil
}

func (e *Engine) editDraft(in EditDraft) {
	if e.mode != ModeQuickAdd && e.mode != ModeFullAdd {
		return
	}
	switch in.Field {
	case FieldTitle:
		e.draft.Title = in.Value
	case FieldParticipants:
		e.draft.Participants = in.Value
	case FieldDescription:
		e.draft.Description = in.Value
	default:
		return
	}
	e.errs = Errors{}
}

func (e *Engine) deleteEvent(id int64) {
	if e.mode != ModeDetails || e.selectedEvent == nil {
		return
	}
	if id == 0 {
		id = e.selectedEvent.ID
	}
	if id != e.selectedEvent.ID {
		return
	}

	removed, err := e.store.Remove(id)
	e.unsaved = e.store.Dirty()
	if !removed {
		return
	}
	if err != nil {
		appLog.Error("event delete not persisted", err, "id", id)
	}
	appLog.Info("event deleted", "date", e.selected, "id", id)

	e.selectedEvent = nil
	if len(e.store.EventsFor(e.selected)) > 0 {
		e.mode = ModeList
	} else {
		e.mode = ModeClosed
	}
	if e.query != "" {
		e.results = e.store.Search(e.query)
	}
}

func (e *Engine) closePopup() {
	e.mode = ModeClosed
	e.selectedEvent = nil
	e.draft = Draft{}
	e.errs = Errors{}
}

func (e *Engine) navigate(year int, month time.Month) {
	e.year, e.month = year, month
	if e.opts.ResetOnNavigate {
		e.closePopup()
	}
}

// reload re-reads storage. Changes that have not reached storage yet are
// flushed first; if that still fails the reload is skipped so they are
// not lost.
func (e *Engine) reload() {
	if e.store.Dirty() {
		if err := e.store.Flush(); err != nil {
			e.unsaved = true
			appLog.Error("reload skipped, unsaved changes", err)
			return
		}
	}
	if err := e.store.Hydrate(); err != nil {
		appLog.Error("event reload failed", err)
		return
	}
	e.unsaved = false

	if e.selectedEvent != nil {
		if _, ev, ok := e.store.Find(e.selectedEvent.ID); ok {
			e.selectedEvent = &ev
		} else {
			e.selectedEvent = nil
		}
	}

	switch {
	case e.mode == ModeDetails && e.selectedEvent == nil:
		e.mode = ModeList
		fallthrough
	case e.mode == ModeList:
		if len(e.store.EventsFor(e.selected)) == 0 {
			e.mode = ModeClosed
		}
	}

	if e.query != "" {
		e.results = e.store.Search(e.query)
	}
	appLog.Debug("engine reloaded", "mode", e.mode)
}

// Views

func (e *Engine) Year() int { return e.year }
func (e *Engine) Month() time.Month { return e.month }
func (e *Engine) Mode() Mode { return e.mode }
func (e *Engine) SelectedDateKey() calendar.DateKey { return e.selected }

func (e *Engine) MonthLabel() string {
	return calendar.MonthLabel(e.year, e.month)
}

func (e *Engine) Cells() []calendar.Cell {
	return calendar.BuildGrid(e.year, e.month, e.selected, e.store.Index(), e.today())
}

func (e *Engine) IsQuickAddMode() bool { return e.mode == ModeQuickAdd }
func (e *Engine) IsFullAddMode() bool { return e.mode == ModeFullAdd }
func (e *Engine) IsListMode() bool { return e.mode == ModeList }
func (e *Engine) IsDetailsMode() bool { return e.mode == ModeDetails }

func (e *Engine) EventsForSelectedDate() []calendar.Event {
	return e.store.EventsFor(e.selected)
}

// SelectedEvent is only set while the details popup is open.
func (e *Engine) SelectedEvent() (calendar.Event, bool) {
	if e.selectedEvent == nil {
		return calendar.Event{}, false
	}
	return *e.selectedEvent, true
}

func (e *Engine) Draft() Draft { return e.draft }
func (e *Engine) Errors() Errors { return e.errs }
func (e *Engine) Query() string { return e.query }

func (e *Engine) SearchResults() []store.SearchResult {
	if len(e.results) == 0 {
		return nil
	}
	out := make([]store.SearchResult, len(e.results))
	copy(out, e.results)
	return out
}

// Unsaved reports whether the latest change could not be persisted.
func (e *Engine) Unsaved() bool { return e.unsaved }

func (e *Engine) YearOptions() []int {
	return calendar.YearOptions(e.yearBase, e.opts.YearSpan)
}

func (e *Engine) String() string {
	return fmt.Sprintf("%s selected=%s mode=%s", e.MonthLabel(), e.selected, e.mode)
}
