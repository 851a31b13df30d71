package calendar

import "time"

// Weekdays are the column headers of the grid, Monday first.
var Weekdays = [7]string{
	"Monday", "Tuesday", "Wednesday",
	"Thursday", "Friday", "Saturday", "Sunday",
}

// ShortWeekday abbreviates a weekday header for narrow layouts.
func ShortWeekday(name string) string {
	if len(name) <= 3 {
		return name
	}
	return name[:3]
}

// Cell is one square of the month grid. Muted cells belong to the
// neighbouring months and never carry a date key or events.
type Cell struct {
	Label      int
	Muted      bool
	DateKey    DateKey
	Events     []Event
	HasEvents  bool
	IsSelected bool
	IsToday    bool
	// Weekday is set on the first row only.
	Weekday string
}

// Visible returns at most limit events plus the number left out.
// A limit <= 0 shows everything.
func (c Cell) Visible(limit int) ([]Event, int) {
	if limit <= 0 || len(c.Events) <= limit {
		return c.Events, 0
	}
	return c.Events[:limit], len(c.Events) - limit
}

// LeadingDays returns how many cells of the previous month precede the
// 1st when weeks start on Monday.
func LeadingDays(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return (int(first.Weekday()) + 6) % 7
}

// BuildGrid lays out the month as whole Monday-first weeks: muted tail days
// of the previous month, every day of the month, then muted leading days of
// the next month until the last row is full. The result has 35 or 42
// cells, except a 28-day February starting on Monday, which fills exactly
// four rows (28 cells).
func BuildGrid(year int, month time.Month, selected DateKey, index *Index, today DateKey) []Cell {
	lead := LeadingDays(year, month)
	days := DaysIn(year, month)
	prevYear, prevMonth := AddMonths(year, month, -1)
	prevDays := DaysIn(prevYear, prevMonth)

	cells := make([]Cell, 0, 42)

	for i := lead - 1; i >= 0; i-- {
		cells = append(cells, Cell{Label: prevDays - i, Muted: true})
	}

	for day := 1; day <= days; day++ {
		key := KeyOf(year, month, day)
		evs := index.Events(key)
		cells = append(cells, Cell{
			Label:      day,
			DateKey:    key,
			Events:     evs,
			HasEvents:  len(evs) > 0,
			IsSelected: key == selected,
			IsToday:    key == today,
		})
	}

	for next := 1; len(cells)%7 != 0; next++ {
		cells = append(cells, Cell{Label: next, Muted: true})
	}

	for i := 0; i < len(Weekdays) && i < len(cells); i++ {
		cells[i].Weekday = Weekdays[i]
	}

	return cells
}
