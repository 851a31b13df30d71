package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/config"
	"github.com/cwarden/monthcal/internal/engine"
	appLog "github.com/cwarden/monthcal/internal/log"
	"github.com/cwarden/monthcal/internal/parser"
)

// overlay is a UI-only layer drawn above the month grid. Popups that the
// engine owns (add forms, list, details) are not overlays.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayMonthPicker
	overlayYearPicker
	overlayGoto
	overlaySearch
	overlayConfirmDelete
)

type Model struct {
	// Core components
	config *config.Config
	engine *engine.Engine
	parser *parser.DateParser
	now    func() time.Time

	// Overlay state
	overlay     overlay
	pickerIndex int
	listIndex   int
	resultIndex int

	// Form inputs, indexed by engine.Field
	inputs [3]textinput.Model
	focus  engine.Field
	prompt textinput.Model

	// UI state
	width     int
	height    int
	message   string
	messageID int

	styles Styles
}

func NewModel(cfg *config.Config, eng *engine.Engine) *Model {
	m := &Model{
		config: cfg,
		engine: eng,
		parser: parser.NewDateParser(),
		now:    time.Now,
		styles: NewStyles(cfg.Colors),
	}

	placeholders := [3]string{"Title", "Who is coming", "Notes"}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		m.inputs[i] = in
	}

	m.prompt = textinput.New()
	m.prompt.Prompt = "> "
	m.prompt.CharLimit = 100

	return m
}

// ReloadMsg tells the model that the data file changed on disk.
type ReloadMsg struct {
	Path string
}

// Message types
type dayChangedMsg struct{}
type messageTimeoutMsg struct {
	id int
}

func (m *Model) Init() tea.Cmd {
	return m.midnightCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case ReloadMsg:
		appLog.Debug("data file changed", "path", msg.Path)
		return m, m.reload("Reloaded " + filepath.Base(msg.Path))

	case dayChangedMsg:
		// Cells recompute "today" on every render; only the timer needs
		// rearming.
		return m, m.midnightCmd()

	case messageTimeoutMsg:
		if msg.id == m.messageID {
			m.message = ""
		}
		return m, nil
	}

	return m, m.updateInputs(msg)
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.overlay == overlayHelp {
		return m.viewHelp()
	}
	return m.renderCanvasView()
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayHelp:
		m.overlay = overlayNone
		return m, nil
	case overlayMonthPicker, overlayYearPicker:
		return m.handlePickerKeys(msg)
	case overlayGoto:
		return m.handleGotoKeys(msg)
	case overlaySearch:
		return m.handleSearchKeys(msg)
	case overlayConfirmDelete:
		return m.handleConfirmKeys(msg)
	}

	switch m.engine.Mode() {
	case engine.ModeQuickAdd, engine.ModeFullAdd:
		return m.handleFormKeys(msg)
	case engine.ModeList:
		if handled, cmd := m.handleListKeys(msg); handled {
			return m, cmd
		}
	case engine.ModeDetails:
		if handled, cmd := m.handleDetailsKeys(msg); handled {
			return m, cmd
		}
	}

	return m.handleCalendarKeys(msg)
}

func (m *Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	closed := m.engine.Mode() == engine.ModeClosed

	switch m.config.Action(msg.String()) {
	case "quit":
		return m, tea.Quit

	case "help":
		m.overlay = overlayHelp

	case "today":
		m.engine.Dispatch(engine.Today{})

	case "refresh":
		return m, m.reload("Refreshed")

	case "quick_add":
		m.engine.Dispatch(engine.OpenQuickAdd{})
		return m, m.openForm()

	case "select":
		return m, m.selectCell(m.engine.SelectedDateKey())

	case "close":
		m.engine.Dispatch(engine.Close{})

	case "prev_day":
		if closed {
			m.moveSelection(-1)
		}
	case "next_day":
		if closed {
			m.moveSelection(1)
		}
	case "prev_week":
		if closed {
			m.moveSelection(-7)
		}
	case "next_week":
		if closed {
			m.moveSelection(7)
		}

	case "prev_month":
		m.engine.Dispatch(engine.PrevMonth{})
	case "next_month":
		m.engine.Dispatch(engine.NextMonth{})

	case "pick_month":
		m.overlay = overlayMonthPicker
		m.pickerIndex = int(m.engine.Month()) - 1

	case "pick_year":
		m.overlay = overlayYearPicker
		m.pickerIndex = 0
		for i, y := range m.engine.YearOptions() {
			if y == m.engine.Year() {
				m.pickerIndex = i
			}
		}

	case "goto_date":
		m.overlay = overlayGoto
		m.prompt.Placeholder = "tomorrow, next fri, 2024-02-29"
		m.prompt.SetValue("")
		return m, m.prompt.Focus()

	case "search":
		m.overlay = overlaySearch
		m.prompt.Placeholder = "Search titles"
		m.prompt.SetValue(m.engine.Query())
		m.prompt.CursorEnd()
		m.resultIndex = 0
		return m, m.prompt.Focus()

	case "clear_search":
		m.engine.Dispatch(engine.ClearSearch{})
	}

	return m, nil
}

// moveSelection moves the selected day by delta days, following it into
// the neighbouring month when it leaves the grid. A selection outside the
// shown month first snaps back onto it.
func (m *Model) moveSelection(delta int) {
	year, month := m.engine.Year(), m.engine.Month()
	sy, sm, sd, err := m.engine.SelectedDateKey().Date()
	if err != nil || sy != year || sm != month {
		day := min(max(sd, 1), calendar.DaysIn(year, month))
		m.engine.Dispatch(engine.GoTo{DateKey: calendar.KeyOf(year, month, day)})
		return
	}

	target := time.Date(sy, sm, sd+delta, 0, 0, 0, 0, time.UTC)
	m.engine.Dispatch(engine.GoTo{DateKey: calendar.KeyForTime(target)})
}

// selectCell hands a cell click to the engine and prepares the form the
// engine opened, if any.
func (m *Model) selectCell(key calendar.DateKey) tea.Cmd {
	beforeMode, beforeKey := m.engine.Mode(), m.engine.SelectedDateKey()
	m.engine.Dispatch(engine.SelectCell{DateKey: key})

	switch m.engine.Mode() {
	case engine.ModeFullAdd:
		// Moving the form to another day starts a fresh draft.
		if beforeMode != engine.ModeFullAdd || m.engine.SelectedDateKey() != beforeKey {
			return m.openForm()
		}
	case engine.ModeList:
		m.listIndex = 0
	}
	return nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	events := m.engine.EventsForSelectedDate()

	switch m.config.Action(msg.String()) {
	case "prev_week":
		if m.listIndex > 0 {
			m.listIndex--
		}
		return true, nil

	case "next_week":
		if m.listIndex < len(events)-1 {
			m.listIndex++
		}
		return true, nil

	case "select":
		if m.listIndex < len(events) {
			m.engine.Dispatch(engine.SelectEvent{ID: events[m.listIndex].ID})
		}
		return true, nil

	case "add_from_list":
		m.engine.Dispatch(engine.OpenAddFromList{})
		return true, m.openForm()

	case "prev_day", "next_day":
		return true, nil
	}

	return false, nil
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyBackspace {
		// Reselecting the day from details goes back to its list.
		m.engine.Dispatch(engine.SelectCell{DateKey: m.engine.SelectedDateKey()})
		return true, nil
	}

	switch m.config.Action(msg.String()) {
	case "delete_event":
		if m.config.ConfirmDelete {
			m.overlay = overlayConfirmDelete
			return true, nil
		}
		return true, m.deleteSelected()

	case "prev_day", "next_day", "prev_week", "next_week", "select":
		return true, nil
	}

	return false, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.overlay = overlayNone
	switch msg.String() {
	case "y", "Y", "enter":
		return m, m.deleteSelected()
	}
	return m, m.showMessage("Delete cancelled")
}

func (m *Model) deleteSelected() tea.Cmd {
	ev, ok := m.engine.SelectedEvent()
	if !ok {
		return nil
	}
	m.engine.Dispatch(engine.DeleteEvent{ID: ev.ID})
	m.clampCursors()
	return m.showMessage(fmt.Sprintf("Deleted %q", ev.Title))
}

// openForm loads the engine's draft into the inputs and focuses the title.
func (m *Model) openForm() tea.Cmd {
	draft := m.engine.Draft()
	values := [3]string{draft.Title, draft.Participants, draft.Description}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].Blur()
	}
	m.focus = engine.FieldTitle
	return m.inputs[m.focus].Focus()
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	quick := m.engine.IsQuickAddMode()

	switch msg.String() {
	case "esc":
		m.engine.Dispatch(engine.Close{})
		m.inputs[m.focus].Blur()
		return m, nil

	case "tab", "down":
		if !quick {
			return m, m.focusField((m.focus + 1) % 3)
		}
		return m, nil

	case "shift+tab", "up":
		if !quick {
			return m, m.focusField((m.focus + 2) % 3)
		}
		return m, nil

	case "enter":
		if quick {
			return m, m.saveQuick()
		}
		if m.focus != engine.FieldDescription {
			return m, m.focusField(m.focus + 1)
		}
		return m, m.saveFull()

	case "ctrl+s":
		if quick {
			return m, m.saveQuick()
		}
		return m, m.saveFull()
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if value := m.inputs[m.focus].Value(); value != before {
		m.engine.Dispatch(engine.EditDraft{Field: m.focus, Value: value})
	}
	return m, cmd
}

func (m *Model) focusField(f engine.Field) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = f
	return m.inputs[f].Focus()
}

func (m *Model) saveQuick() tea.Cmd {
	title := m.inputs[engine.FieldTitle].Value()
	m.engine.Dispatch(engine.SaveQuick{Title: title})
	if m.engine.IsQuickAddMode() {
		return nil
	}
	m.inputs[engine.FieldTitle].Blur()
	return m.savedMessage()
}

func (m *Model) saveFull() tea.Cmd {
	m.engine.Dispatch(engine.SaveFull{
		Title:        m.inputs[engine.FieldTitle].Value(),
		Participants: m.inputs[engine.FieldParticipants].Value(),
		Description:  m.inputs[engine.FieldDescription].Value(),
	})
	if m.engine.IsFullAddMode() {
		if m.engine.Errors().Title {
			return m.focusField(engine.FieldTitle)
		}
		return m.focusField(engine.FieldParticipants)
	}
	m.inputs[m.focus].Blur()
	return m.savedMessage()
}

func (m *Model) savedMessage() tea.Cmd {
	if m.engine.Unsaved() {
		return m.showMessage("Added, but could not save to disk")
	}
	return m.showMessage("Added")
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := 12
	years := m.engine.YearOptions()
	if m.overlay == overlayYearPicker {
		count = len(years)
	}

	switch msg.String() {
	case "up", "k", "left", "h":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j", "right", "l":
		if m.pickerIndex < count-1 {
			m.pickerIndex++
		}
	case "enter":
		if m.overlay == overlayMonthPicker {
			m.engine.Dispatch(engine.SetMonth{Month: time.Month(m.pickerIndex + 1)})
		} else if m.pickerIndex < len(years) {
			m.engine.Dispatch(engine.SetYear{Year: years[m.pickerIndex]})
		}
		m.overlay = overlayNone
	case "esc", "q":
		m.overlay = overlayNone
	}
	return m, nil
}

func (m *Model) handleGotoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil

	case "enter":
		input := m.prompt.Value()
		m.closePrompt()
		m.parser.SetNow(m.now())
		key, err := m.parser.ParseKey(input)
		if err != nil {
			appLog.Debug("goto rejected", "input", input, "error", err)
			return m, m.showMessage(fmt.Sprintf("Unknown date: %q", input))
		}
		m.engine.Dispatch(engine.GoTo{DateKey: key})
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.engine.SearchResults()

	switch msg.String() {
	case "esc":
		m.engine.Dispatch(engine.ClearSearch{})
		m.closePrompt()
		return m, nil

	case "up":
		if m.resultIndex > 0 {
			m.resultIndex--
		}
		return m, nil

	case "down":
		if m.resultIndex < len(results)-1 {
			m.resultIndex++
		}
		return m, nil

	case "enter":
		if m.resultIndex < len(results) {
			m.engine.Dispatch(engine.SelectSearchResult{DateKey: results[m.resultIndex].DateKey})
			m.closePrompt()
		}
		return m, nil
	}

	before := m.prompt.Value()
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	if query := m.prompt.Value(); query != before {
		if query == "" {
			m.engine.Dispatch(engine.ClearSearch{})
		} else {
			m.engine.Dispatch(engine.Search{Query: query})
		}
		m.resultIndex = 0
	}
	return m, cmd
}

func (m *Model) closePrompt() {
	m.overlay = overlayNone
	m.prompt.Blur()
	m.prompt.SetValue("")
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.overlay != overlayNone {
		return m, nil
	}
	if p, ok := m.popupPlacement(); ok && inside(p.Left, p.Top, p.Width, p.Height, msg.X, msg.Y) {
		return m, nil
	}

	cells := m.engine.Cells()
	i, ok := m.layout(len(cells)).cellAt(msg.X, msg.Y)
	if !ok || i >= len(cells) {
		return m, nil
	}
	// Muted cells carry no key and the engine ignores them.
	return m, m.selectCell(cells[i].DateKey)
}

// updateInputs forwards non-key messages (cursor blink) to whichever input
// has focus.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.overlay == overlayGoto || m.overlay == overlaySearch:
		m.prompt, cmd = m.prompt.Update(msg)
	case m.engine.IsQuickAddMode() || m.engine.IsFullAddMode():
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return cmd
}

// clampCursors keeps list cursors inside their lists after the data
// changed underneath them.
func (m *Model) clampCursors() {
	if n := len(m.engine.EventsForSelectedDate()); m.listIndex >= n {
		m.listIndex = max(n-1, 0)
	}
	if n := len(m.engine.SearchResults()); m.resultIndex >= n {
		m.resultIndex = max(n-1, 0)
	}
	if m.overlay == overlayConfirmDelete && !m.engine.IsDetailsMode() {
		m.overlay = overlayNone
	}
}

// reload re-reads storage and reports done, or that unsaved changes
// blocked it.
func (m *Model) reload(done string) tea.Cmd {
	m.engine.Dispatch(engine.Reload{})
	m.clampCursors()
	if m.engine.Unsaved() {
		return m.showMessage("Not reloaded: changes could not be saved")
	}
	return m.showMessage(done)
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageID++
	id := m.messageID
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return messageTimeoutMsg{id: id}
	})
}

func (m *Model) midnightCmd() tea.Cmd {
	now := m.now()
	y, mo, d := now.Date()
	next := time.Date(y, mo, d+1, 0, 0, 0, 0, now.Location())
	return tea.Tick(next.Sub(now), func(time.Time) tea.Msg {
		return dayChangedMsg{}
	})
}

func inside(left, top, width, height, x, y int) bool {
	return x >= left && x < left+width && y >= top && y < top+height
}
