package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/engine"
	"github.com/cwarden/monthcal/internal/placement"
)

const (
	headerRows = 2 // month title and weekday names
	statusRows = 1
)

// gridLayout is the screen geometry of the month grid.
type gridLayout struct {
	top        int
	cellWidth  int
	cellHeight int
	rows       int
}

func (m *Model) layout(cells int) gridLayout {
	rows := max(cells/7, 1)
	return gridLayout{
		top:        headerRows,
		cellWidth:  max(m.width/7, 4),
		cellHeight: max((m.height-headerRows-statusRows)/rows, 2),
		rows:       rows,
	}
}

func (l gridLayout) cellRect(i int) placement.Rect {
	return placement.Rect{
		Left:   (i % 7) * l.cellWidth,
		Top:    l.top + (i/7)*l.cellHeight,
		Width:  l.cellWidth,
		Height: l.cellHeight,
	}
}

// cellAt maps a screen position to a cell index.
func (l gridLayout) cellAt(x, y int) (int, bool) {
	if x < 0 || y < l.top {
		return 0, false
	}
	col := x / l.cellWidth
	row := (y - l.top) / l.cellHeight
	if col >= 7 || row >= l.rows {
		return 0, false
	}
	return row*7 + col, true
}

// renderCanvasView renders the entire screen using a lipgloss Canvas
func (m *Model) renderCanvasView() string {
	cells := m.engine.Cells()
	grid := m.layout(len(cells))

	var layers []*lipgloss.Layer

	layers = append(layers, m.createHeaderLayers(cells, grid)...)
	for i, cell := range cells {
		layers = append(layers, m.createCellLayer(cell, grid.cellRect(i)))
	}

	layers = append(layers, m.createPopupLayers()...)
	layers = append(layers, m.createOverlayLayers()...)
	layers = append(layers, m.createStatusBarLayer())

	return lipgloss.NewCanvas(layers...).Render()
}

func (m *Model) createHeaderLayers(cells []calendar.Cell, grid gridLayout) []*lipgloss.Layer {
	title := m.engine.MonthLabel()
	if m.engine.Unsaved() {
		title += " " + m.styles.Error.Render("[unsaved]")
	}
	titleLine := lipgloss.NewStyle().
		Width(grid.cellWidth * 7).
		Align(lipgloss.Center).
		Render(m.styles.Header.Render(title))

	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(titleLine).X(0).Y(0).Z(0),
	}

	for i := 0; i < 7 && i < len(cells); i++ {
		name := cells[i].Weekday
		if grid.cellWidth < len(name)+1 {
			name = calendar.ShortWeekday(name)
		}
		layers = append(layers, lipgloss.NewLayer(m.styles.Muted.Render(fit(name, grid.cellWidth-1))).
			X(i*grid.cellWidth).
			Y(1).
			Z(0))
	}
	return layers
}

func (m *Model) createCellLayer(cell calendar.Cell, rect placement.Rect) *lipgloss.Layer {
	width := rect.Width - 1

	label := fmt.Sprintf("%2d", cell.Label)
	switch {
	case cell.Muted:
		label = m.styles.Muted.Render(label)
	case cell.IsToday:
		label = m.styles.Today.Render(label)
	}
	lines := []string{label}

	shown, hidden := cell.Visible(m.config.MaxCellEvents)
	room := rect.Height - 1
	if hidden > 0 {
		room--
	}
	for i, ev := range shown {
		if i >= room {
			hidden += len(shown) - i
			break
		}
		lines = append(lines, m.styles.Event.Render(fit("• "+ev.Title, width)))
	}
	if hidden > 0 && len(lines) < rect.Height {
		lines = append(lines, m.styles.Muted.Render(fit(fmt.Sprintf("+%d more", hidden), width)))
	}

	style := lipgloss.NewStyle().Width(width).Height(rect.Height)
	if cell.IsSelected {
		style = style.Inherit(m.styles.Selected)
	}

	return lipgloss.NewLayer(style.Render(strings.Join(lines, "\n"))).
		X(rect.Left).
		Y(rect.Top).
		Z(1)
}

// popupPlacement positions the engine's popup next to the selected cell.
func (m *Model) popupPlacement() (placement.Placement, bool) {
	if m.engine.Mode() == engine.ModeClosed {
		return placement.Placement{}, false
	}

	cells := m.engine.Cells()
	grid := m.layout(len(cells))
	anchor := placement.Rect{Left: m.width / 2, Top: m.height / 2}
	for i, c := range cells {
		if c.IsSelected {
			anchor = grid.cellRect(i)
			break
		}
	}

	addMode := m.engine.IsQuickAddMode() || m.engine.IsFullAddMode()
	viewport := placement.Size{Width: m.width, Height: m.height - statusRows}
	return placement.Place(anchor, viewport, addMode, placement.TerminalMetrics), true
}

func (m *Model) createPopupLayers() []*lipgloss.Layer {
	p, ok := m.popupPlacement()
	if !ok {
		return nil
	}

	inner := max(p.Width-4, 1)
	var lines []string
	switch m.engine.Mode() {
	case engine.ModeQuickAdd:
		lines = m.quickAddLines(inner)
	case engine.ModeFullAdd:
		lines = m.fullAddLines(inner)
	case engine.ModeList:
		lines = m.listLines(inner)
	case engine.ModeDetails:
		lines = m.detailsLines(inner, p.Height-2)
	}
	if len(lines) > p.Height-2 {
		lines = lines[:max(p.Height-2, 0)]
	}

	box := m.styles.Border.
		Padding(0, 1).
		Width(p.Width).
		Render(strings.Join(lines, "\n"))

	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(box).X(p.Left).Y(p.Top).Z(100),
	}

	if !p.Centered {
		// The caret sits on the border facing the anchor.
		caret, x := "▶", p.Left+lipgloss.Width(box)-1
		if p.Flipped {
			caret, x = "◀", p.Left
		}
		y := min(p.Top+p.CaretTop+placement.TerminalMetrics.Caret/2, p.Top+lipgloss.Height(box)-2)
		layers = append(layers, lipgloss.NewLayer(m.styles.Caret.Render(caret)).X(x).Y(y).Z(101))
	}
	return layers
}

func (m *Model) createOverlayLayers() []*lipgloss.Layer {
	var lines []string
	width := 32

	switch m.overlay {
	case overlayMonthPicker:
		lines = m.monthPickerLines()
		width = 20
	case overlayYearPicker:
		lines = m.yearPickerLines()
		width = 16
	case overlayGoto:
		lines = m.gotoLines()
	case overlaySearch:
		width = min(max(m.width/2, 32), m.width)
		lines = m.searchLines(width-4, max(m.height-8, 1))
	case overlayConfirmDelete:
		lines = m.confirmLines()
	default:
		return nil
	}

	box := m.styles.Border.Padding(0, 1).Width(width).Render(strings.Join(lines, "\n"))
	x := max((m.width-lipgloss.Width(box))/2, 0)
	y := max((m.height-lipgloss.Height(box))/2, 0)
	if m.overlay == overlaySearch {
		x, y = max(m.width-lipgloss.Width(box), 0), 1
	}
	return []*lipgloss.Layer{
		lipgloss.NewLayer(box).X(x).Y(y).Z(200),
	}
}

// createStatusBarLayer creates the status line at the bottom of the screen
func (m *Model) createStatusBarLayer() *lipgloss.Layer {
	return lipgloss.NewLayer(m.renderStatusBar()).
		X(0).
		Y(max(m.height-statusRows, 0)).
		Z(2000)
}
