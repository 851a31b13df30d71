package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/store"
)

// newTestEngine builds an engine whose clock reads 2024-02-10 and whose
// store is seeded from seed.
func newTestEngine(t *testing.T, seed *calendar.Index, mutate ...func(*Options)) (*Engine, *store.Memory) {
	t.Helper()

	now := func() time.Time { return time.Date(2024, time.February, 10, 9, 30, 0, 0, time.Local) }
	mem := store.NewMemory(seed)
	s := store.New(mem, store.WithClock(now))

	opts := DefaultOptions()
	opts.Now = now
	for _, m := range mutate {
		m(&opts)
	}

	e := New(s, opts)
	require.NoError(t, e.Init())
	return e, mem
}

func twoEventSeed() *calendar.Index {
	ix := calendar.NewIndex()
	ix.Append("2024-2-14", calendar.Event{ID: 100, Title: "Breakfast"})
	ix.Append("2024-2-14", calendar.Event{ID: 200, Title: "Dinner", Participants: "Sam"})
	return ix
}

func TestInitialState(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	assert.Equal(t, "February 2024", e.MonthLabel())
	assert.Equal(t, calendar.DateKey("2024-2-10"), e.SelectedDateKey())
	assert.Equal(t, ModeClosed, e.Mode())
	assert.False(t, e.Unsaved())
	assert.Equal(t, []int{2021, 2022, 2023, 2024, 2025, 2026, 2027}, e.YearOptions())

	cells := e.Cells()
	assert.Len(t, cells, 35)
	var today, selected int
	for _, c := range cells {
		if c.IsToday {
			today++
		}
		if c.IsSelected {
			selected++
		}
	}
	assert.Equal(t, 1, today)
	assert.Equal(t, 1, selected)
}

func TestLeapDayQuickAdd(t *testing.T) {
	e, mem := newTestEngine(t, nil)

	e.Dispatch(SelectCell{DateKey: "2024-2-29"})
	assert.True(t, e.IsFullAddMode(), "empty day opens the full form")

	var leap *calendar.Cell
	for _, c := range e.Cells() {
		if c.DateKey == "2024-2-29" {
			leap = &c
		}
	}
	require.NotNil(t, leap)
	assert.False(t, leap.HasEvents)

	e.Dispatch(OpenQuickAdd{})
	require.True(t, e.IsQuickAddMode())
	e.Dispatch(SaveQuick{Title: "Standup"})

	assert.Equal(t, ModeClosed, e.Mode())
	evs := e.EventsForSelectedDate()
	require.Len(t, evs, 1)
	assert.Equal(t, "Standup", evs[0].Title)
	assert.Equal(t, 1, mem.Saves)

	for _, c := range e.Cells() {
		if c.DateKey == "2024-2-29" {
			assert.True(t, c.HasEvents)
		}
	}
}

func TestListDetailsDeleteScenario(t *testing.T) {
	e, _ := newTestEngine(t, twoEventSeed())

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	require.True(t, e.IsListMode())
	assert.Len(t, e.EventsForSelectedDate(), 2)

	e.Dispatch(SelectEvent{ID: 200})
	require.True(t, e.IsDetailsMode())
	ev, ok := e.SelectedEvent()
	require.True(t, ok)
	assert.Equal(t, "Dinner", ev.Title)

	e.Dispatch(DeleteEvent{ID: 200})
	assert.True(t, e.IsListMode(), "one event remains so the list stays open")
	_, ok = e.SelectedEvent()
	assert.False(t, ok)
	require.Len(t, e.EventsForSelectedDate(), 1)

	e.Dispatch(SelectEvent{ID: 100})
	e.Dispatch(DeleteEvent{})
	assert.Equal(t, ModeClosed, e.Mode())
	assert.Empty(t, e.EventsForSelectedDate())
}

func TestFullAddValidation(t *testing.T) {
	e, mem := newTestEngine(t, nil)

	e.Dispatch(SelectCell{DateKey: "2024-2-20"})
	require.True(t, e.IsFullAddMode())

	e.Dispatch(SaveFull{Title: "Review", Participants: "  "})
	assert.True(t, e.IsFullAddMode())
	assert.Equal(t, Errors{Participants: true}, e.Errors())
	assert.Equal(t, "Review", e.Draft().Title)
	assert.Empty(t, e.EventsForSelectedDate())
	assert.Equal(t, 0, mem.Saves)

	e.Dispatch(EditDraft{Field: FieldParticipants, Value: "Kim"})
	assert.False(t, e.Errors().Any())
	assert.Equal(t, "Kim", e.Draft().Participants)

	e.Dispatch(SaveFull{Title: " Review ", Participants: "Kim", Description: "Q1 goals"})
	require.True(t, e.IsDetailsMode())
	ev, ok := e.SelectedEvent()
	require.True(t, ok)
	assert.Equal(t, "Review", ev.Title)
	assert.Equal(t, "Q1 goals", ev.Description)
	assert.NotZero(t, ev.ID)
	assert.Equal(t, Draft{}, e.Draft())
}

func TestQuickAddRejectsBlankTitle(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	e.Dispatch(OpenQuickAdd{})
	e.Dispatch(SaveQuick{Title: "   "})
	assert.True(t, e.IsQuickAddMode())
	assert.True(t, e.Errors().Title)
	assert.Empty(t, e.EventsForSelectedDate())
}

func TestQuickAddStaysOnTopWhenSelectingCells(t *testing.T) {
	e, _ := newTestEngine(t, twoEventSeed())

	e.Dispatch(OpenQuickAdd{})
	e.Dispatch(SelectCell{DateKey: "2024-2-14"})

	assert.True(t, e.IsQuickAddMode())
	assert.Equal(t, calendar.DateKey("2024-2-14"), e.SelectedDateKey())

	e.Dispatch(SaveQuick{Title: "Lunch"})
	assert.Len(t, e.EventsForSelectedDate(), 3)
}

func TestSelectCellTransitions(t *testing.T) {
	e, _ := newTestEngine(t, twoEventSeed())

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	assert.True(t, e.IsListMode())

	e.Dispatch(OpenAddFromList{})
	assert.True(t, e.IsFullAddMode())

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	assert.True(t, e.IsListMode(), "full add goes back to list for a busy day")

	e.Dispatch(SelectEvent{ID: 100})
	e.Dispatch(SelectCell{DateKey: "2024-2-15"})
	assert.True(t, e.IsFullAddMode())
	_, ok := e.SelectedEvent()
	assert.False(t, ok)

	// Padded keys are canonicalized; muted and garbage keys are ignored.
	e.Dispatch(SelectCell{DateKey: "2024-02-14"})
	assert.Equal(t, calendar.DateKey("2024-2-14"), e.SelectedDateKey())
	e.Dispatch(SelectCell{DateKey: ""})
	e.Dispatch(SelectCell{DateKey: "2024-2-30"})
	assert.Equal(t, calendar.DateKey("2024-2-14"), e.SelectedDateKey())
	assert.True(t, e.IsListMode())
}

func TestReselectingIsANoOp(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	e.Dispatch(SelectCell{DateKey: "2024-2-20"})
	e.Dispatch(EditDraft{Field: FieldTitle, Value: "half typed"})
	e.Dispatch(SelectCell{DateKey: "2024-2-20"})

	assert.True(t, e.IsFullAddMode())
	assert.Equal(t, "half typed", e.Draft().Title)

	e.Dispatch(Close{})
	e.Dispatch(Close{})
	assert.Equal(t, ModeClosed, e.Mode())
	assert.Equal(t, Draft{}, e.Draft())
}

func TestGuardsIgnoreIntentsFromTheWrongMode(t *testing.T) {
	e, mem := newTestEngine(t, twoEventSeed())

	e.Dispatch(SelectEvent{ID: 100})
	e.Dispatch(OpenAddFromList{})
	e.Dispatch(DeleteEvent{ID: 100})
	e.Dispatch(SaveQuick{Title: "x"})
	e.Dispatch(SaveFull{Title: "x", Participants: "y"})
	e.Dispatch(EditDraft{Field: FieldTitle, Value: "x"})

	assert.Equal(t, ModeClosed, e.Mode())
	assert.Equal(t, 0, mem.Saves)
	assert.Equal(t, Draft{}, e.Draft())

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	e.Dispatch(SelectEvent{ID: 999})
	assert.True(t, e.IsListMode())

	e.Dispatch(SelectEvent{ID: 100})
	e.Dispatch(DeleteEvent{ID: 200})
	assert.True(t, e.IsDetailsMode(), "only the shown event can be deleted")
	assert.Equal(t, 0, mem.Saves)
}

func TestNavigation(t *testing.T) {
	e, _ := newTestEngine(t, twoEventSeed())

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	e.Dispatch(NextMonth{})
	assert.Equal(t, "March 2024", e.MonthLabel())
	assert.Equal(t, ModeClosed, e.Mode())

	e.Dispatch(PrevMonth{})
	e.Dispatch(PrevMonth{})
	e.Dispatch(PrevMonth{})
	assert.Equal(t, "December 2023", e.MonthLabel())

	e.Dispatch(SetMonth{Month: time.July})
	assert.Equal(t, "July 2023", e.MonthLabel())
	e.Dispatch(SetMonth{Month: 13})
	assert.Equal(t, "July 2023", e.MonthLabel())

	e.Dispatch(SetYear{Year: 2030})
	assert.Equal(t, "July 2030", e.MonthLabel())
	assert.Equal(t, []int{2027, 2028, 2029, 2030, 2031, 2032, 2033}, e.YearOptions())

	e.Dispatch(Today{})
	assert.Equal(t, "February 2024", e.MonthLabel())
	assert.Equal(t, calendar.DateKey("2024-2-10"), e.SelectedDateKey())

	e.Dispatch(GoTo{DateKey: "2025-12-25"})
	assert.Equal(t, "December 2025", e.MonthLabel())
	assert.Equal(t, calendar.DateKey("2025-12-25"), e.SelectedDateKey())
	e.Dispatch(GoTo{DateKey: "nope"})
	assert.Equal(t, "December 2025", e.MonthLabel())
}

func TestNavigationCanKeepThePopup(t *testing.T) {
	e, _ := newTestEngine(t, twoEventSeed(), func(o *Options) { o.ResetOnNavigate = false })

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	e.Dispatch(NextMonth{})
	assert.True(t, e.IsListMode())
	assert.Equal(t, "March 2024", e.MonthLabel())
}

func TestSearch(t *testing.T) {
	ix := twoEventSeed()
	ix.Append("2024-5-1", calendar.Event{ID: 300, Title: "dinner party"})
	e, _ := newTestEngine(t, ix)

	e.Dispatch(Search{Query: ""})
	assert.Nil(t, e.SearchResults())

	e.Dispatch(Search{Query: "DINNER"})
	res := e.SearchResults()
	require.Len(t, res, 2)
	assert.Equal(t, calendar.DateKey("2024-2-14"), res[0].DateKey)
	assert.Equal(t, calendar.DateKey("2024-5-1"), res[1].DateKey)

	e.Dispatch(Search{Query: "sam"})
	assert.Empty(t, e.SearchResults(), "participants are not searched")

	e.Dispatch(Search{Query: "dinner"})
	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	e.Dispatch(SelectSearchResult{DateKey: "2024-5-1"})
	assert.Equal(t, "May 2024", e.MonthLabel())
	assert.Equal(t, calendar.DateKey("2024-5-1"), e.SelectedDateKey())
	assert.Equal(t, ModeClosed, e.Mode())
	assert.Nil(t, e.SearchResults())
	assert.Empty(t, e.Query())

	e.Dispatch(Search{Query: "breakfast"})
	e.Dispatch(ClearSearch{})
	assert.Nil(t, e.SearchResults())
}

func TestDeleteRefreshesSearchResults(t *testing.T) {
	e, _ := newTestEngine(t, twoEventSeed())

	e.Dispatch(Search{Query: "d"})
	require.Len(t, e.SearchResults(), 1)

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	e.Dispatch(SelectEvent{ID: 200})
	e.Dispatch(DeleteEvent{})
	assert.Empty(t, e.SearchResults())
}

func TestUnsavedFlag(t *testing.T) {
	e, mem := newTestEngine(t, nil)
	mem.SaveErr = errors.New("disk full")

	e.Dispatch(OpenQuickAdd{})
	e.Dispatch(SaveQuick{Title: "Kept in memory"})
	assert.Equal(t, ModeClosed, e.Mode())
	assert.True(t, e.Unsaved())
	assert.Len(t, e.EventsForSelectedDate(), 1)

	mem.SaveErr = nil
	require.NoError(t, e.Dispose())
	assert.False(t, e.Unsaved())
	assert.Equal(t, 1, mem.Saves)
}

func TestReloadRepairsSelection(t *testing.T) {
	e, mem := newTestEngine(t, twoEventSeed())

	e.Dispatch(SelectCell{DateKey: "2024-2-14"})
	e.Dispatch(SelectEvent{ID: 200})
	require.True(t, e.IsDetailsMode())

	// Another process drops the selected event.
	ix := calendar.NewIndex()
	ix.Append("2024-2-14", calendar.Event{ID: 100, Title: "Breakfast"})
	require.NoError(t, mem.Save(ix))

	e.Dispatch(Reload{})
	assert.True(t, e.IsListMode())
	assert.Len(t, e.EventsForSelectedDate(), 1)

	require.NoError(t, mem.Save(calendar.NewIndex()))
	e.Dispatch(Reload{})
	assert.Equal(t, ModeClosed, e.Mode())
}

func TestReloadKeepsUnsavedEvents(t *testing.T) {
	e, mem := newTestEngine(t, nil)
	mem.SaveErr = errors.New("disk full")

	e.Dispatch(OpenQuickAdd{})
	e.Dispatch(SaveQuick{Title: "Standup"})
	require.True(t, e.Unsaved())

	e.Dispatch(Reload{})
	assert.True(t, e.Unsaved(), "still unsaved while storage fails")
	require.Len(t, e.EventsForSelectedDate(), 1)
	assert.Equal(t, "Standup", e.EventsForSelectedDate()[0].Title)

	// Once storage recovers the reload writes the event before reading back.
	mem.SaveErr = nil
	e.Dispatch(Reload{})
	assert.False(t, e.Unsaved())
	assert.Len(t, e.EventsForSelectedDate(), 1)

	stored, err := mem.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Count())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "closed", ModeClosed.String())
	assert.Equal(t, "quickAdd", ModeQuickAdd.String())
	assert.Equal(t, "details", ModeDetails.String())
}
