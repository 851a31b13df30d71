package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/engine"
)

var helpSections = []struct {
	title   string
	actions [][2]string
}{
	{"Navigation:", [][2]string{
		{"prev_day", "Previous day"},
		{"next_day", "Next day"},
		{"prev_week", "Previous week"},
		{"next_week", "Next week"},
		{"prev_month", "Previous month"},
		{"next_month", "Next month"},
		{"pick_month", "Choose month"},
		{"pick_year", "Choose year"},
		{"goto_date", "Go to date"},
		{"today", "Go to today"},
	}},
	{"Events:", [][2]string{
		{"select", "Open the selected day"},
		{"quick_add", "Quick add"},
		{"add_from_list", "Add from the day list"},
		{"delete_event", "Delete the open event"},
		{"close", "Close popup"},
		{"search", "Search titles"},
		{"clear_search", "Clear search"},
	}},
	{"Other:", [][2]string{
		{"refresh", "Reload from disk"},
		{"help", "Toggle help"},
		{"quit", "Quit"},
	}},
}

func (m *Model) viewHelp() string {
	help := []string{
		m.styles.Header.Render("Monthcal Help"),
		"",
	}

	for _, section := range helpSections {
		help = append(help, m.styles.Normal.Render(section.title))
		for _, entry := range section.actions {
			keys := m.config.KeysFor(entry[0])
			if len(keys) == 0 {
				continue
			}
			help = append(help, m.styles.Help.Render(fmt.Sprintf("  %-12s - %s", strings.Join(keys, "/"), entry[1])))
		}
		help = append(help, "")
	}

	help = append(help, m.styles.Help.Render("Press any key to return..."))
	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) selectedDateLabel() string {
	return m.dateKeyLabel(m.engine.SelectedDateKey())
}

func (m *Model) quickAddLines(width int) []string {
	m.inputs[engine.FieldTitle].Width = max(width-1, 1)

	lines := []string{
		m.styles.Header.Render(fit("Add event · "+m.selectedDateLabel(), width)),
		"",
		m.inputs[engine.FieldTitle].View(),
	}
	if m.engine.Errors().Title {
		lines = append(lines, m.styles.Error.Render("Title is required"))
	}
	lines = append(lines, "", m.styles.Help.Render(fit("enter save · esc cancel", width)))
	return lines
}

func (m *Model) fullAddLines(width int) []string {
	errs := m.engine.Errors()
	fields := []struct {
		label   string
		field   engine.Field
		invalid bool
		message string
	}{
		{"Title", engine.FieldTitle, errs.Title, "Title is required"},
		{"Participants", engine.FieldParticipants, errs.Participants, "Participants are required"},
		{"Description", engine.FieldDescription, false, ""},
	}

	lines := []string{
		m.styles.Header.Render(fit("New event · "+m.selectedDateLabel(), width)),
	}
	for _, f := range fields {
		m.inputs[f.field].Width = max(width-1, 1)
		label := f.label
		if f.field == m.focus {
			label = m.styles.Today.Render(label)
		}
		lines = append(lines, "", label, m.inputs[f.field].View())
		if f.invalid {
			lines = append(lines, m.styles.Error.Render(fit(f.message, width)))
		}
	}
	lines = append(lines, "", m.styles.Help.Render(fit("tab next · enter save · esc cancel", width)))
	return lines
}

func (m *Model) listLines(width int) []string {
	events := m.engine.EventsForSelectedDate()
	lines := []string{
		m.styles.Header.Render(fit(m.selectedDateLabel(), width)),
		m.styles.Muted.Render(plural(len(events), "event")),
		"",
	}
	for i, ev := range events {
		line := fit("  "+ev.Title, width)
		if i == m.listIndex {
			line = m.styles.Selected.Render(fit("› "+ev.Title, width))
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", m.styles.Help.Render(fit("enter open · a add · esc close", width)))
	return lines
}

func (m *Model) detailsLines(width, height int) []string {
	ev, ok := m.engine.SelectedEvent()
	if !ok {
		return nil
	}

	lines := []string{
		m.styles.Header.Render(fit(ev.Title, width)),
		m.styles.Muted.Render(fit(m.selectedDateLabel(), width)),
		"",
	}
	if ev.Participants != "" {
		lines = append(lines, fit("With: "+ev.Participants, width))
	}

	footer := []string{"", m.styles.Help.Render(fit("d delete · ⌫ back · esc close", width))}
	if ev.Description != "" {
		room := height - len(lines) - len(footer) - 1
		if room > 0 {
			lines = append(lines, "")
			if m.config.WrapText {
				lines = append(lines, wrapLines(ev.Description, width, room)...)
			} else {
				lines = append(lines, fit(ev.Description, width))
			}
		}
	}
	return append(lines, footer...)
}

func (m *Model) monthPickerLines() []string {
	lines := []string{m.styles.Header.Render("Month"), ""}
	for i := 0; i < 12; i++ {
		name := time.Month(i + 1).String()
		if i == m.pickerIndex {
			lines = append(lines, m.styles.Selected.Render("› "+name))
		} else {
			lines = append(lines, "  "+name)
		}
	}
	return lines
}

func (m *Model) yearPickerLines() []string {
	lines := []string{m.styles.Header.Render("Year"), ""}
	for i, y := range m.engine.YearOptions() {
		label := fmt.Sprintf("%d", y)
		if i == m.pickerIndex {
			lines = append(lines, m.styles.Selected.Render("› "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	return lines
}

func (m *Model) gotoLines() []string {
	return []string{
		m.styles.Header.Render("Go to date"),
		"",
		m.prompt.View(),
		"",
		m.styles.Help.Render("enter go · esc cancel"),
	}
}

func (m *Model) searchLines(width, height int) []string {
	m.prompt.Width = max(width-3, 1)
	lines := []string{
		m.styles.Header.Render("Search"),
		m.prompt.View(),
		"",
	}

	results := m.engine.SearchResults()
	switch {
	case m.engine.Query() == "":
	case len(results) == 0:
		lines = append(lines, m.styles.Muted.Render("No matches"))
	default:
		// Keep the highlighted result on screen.
		room := max(height-len(lines)-2, 1)
		start := max(m.resultIndex-room+1, 0)
		for i := start; i < len(results) && i < start+room; i++ {
			r := results[i]
			line := fit(m.dateKeyLabel(r.DateKey)+"  "+r.Title, width)
			if i == m.resultIndex {
				line = m.styles.Selected.Render(line)
			}
			lines = append(lines, line)
		}
	}
	return append(lines, "", m.styles.Help.Render(fit("enter jump · esc clear", width)))
}

func (m *Model) confirmLines() []string {
	title := ""
	if ev, ok := m.engine.SelectedEvent(); ok {
		title = ev.Title
	}
	return []string{
		m.styles.Error.Render("Delete event?"),
		fit(title, 28),
		"",
		m.styles.Help.Render("y delete · any other key cancels"),
	}
}

func (m *Model) monthEventCount() int {
	n := 0
	for _, c := range m.engine.Cells() {
		if !c.Muted {
			n += len(c.Events)
		}
	}
	return n
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | %s", m.selectedDateLabel(), plural(m.monthEventCount(), "event"))
	if q := m.engine.Query(); q != "" {
		left += fmt.Sprintf(" | search %q: %d", q, len(m.engine.SearchResults()))
	}

	right := "? for help | q to quit"
	if m.message != "" {
		right = m.styles.Message.Render(m.message)
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	return m.styles.Help.Render(left) + strings.Repeat(" ", width) + right
}

// dateKeyLabel formats a key for lists; invalid keys print as stored.
func (m *Model) dateKeyLabel(key calendar.DateKey) string {
	t, err := key.Time(time.Local)
	if err != nil {
		return string(key)
	}
	return t.Format(m.config.DateFormat)
}
