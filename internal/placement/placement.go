// Package placement positions a popup next to the grid cell that opened it.
//
// Narrow viewports get a centred popup. Wide viewports put the popup beside
// the anchor, on its left when there is room and otherwise on its right,
// with a caret pointing back at the anchor's vertical centre.
package placement

// Rect is an anchor rectangle in viewport coordinates.
type Rect struct {
	Left, Top, Width, Height int
}

func (r Rect) Right() int  { return r.Left + r.Width }
func (r Rect) Bottom() int { return r.Top + r.Height }

type Size struct {
	Width, Height int
}

// Metrics holds the geometry constants. Units are whatever the caller
// measures the viewport in.
type Metrics struct {
	Offset      int // gap between anchor and popup
	Caret       int
	Padding     int // minimum distance from the viewport edge
	Height      int
	Width       int
	WidthAdd    int
	TabletWidth int
	TabletAdd   int
	CaretMin    int
	CaretMargin int // caret keeps this far from the popup's bottom
	Mobile      int // viewport widths up to this are "mobile"
	Tablet      int // and up to this are "tablet"
}

// DefaultMetrics uses CSS pixels.
var DefaultMetrics = Metrics{
	Offset:      8,
	Caret:       12,
	Padding:     8,
	Height:      260,
	Width:       320,
	WidthAdd:    370,
	TabletWidth: 260,
	TabletAdd:   300,
	CaretMin:    12,
	CaretMargin: 24,
	Mobile:      768,
	Tablet:      1024,
}

// TerminalMetrics uses character cells.
var TerminalMetrics = Metrics{
	Offset:      1,
	Caret:       2,
	Padding:     1,
	Height:      14,
	Width:       36,
	WidthAdd:    42,
	TabletWidth: 30,
	TabletAdd:   34,
	CaretMin:    1,
	CaretMargin: 2,
	Mobile:      60,
	Tablet:      100,
}

type Placement struct {
	Top, Left     int
	Width, Height int
	CaretTop      int
	CaretLeft     int
	// Flipped is set when the popup sits to the right of the anchor.
	Flipped bool
	// Centered popups carry no caret.
	Centered bool
}

// PopupWidth picks the popup width for a viewport. addMode selects the wider
// variant used by the add forms.
func (m Metrics) PopupWidth(viewport Size, addMode bool) int {
	switch {
	case viewport.Width <= m.Mobile:
		w := m.Width
		if addMode {
			w = m.WidthAdd
		}
		return min(w, max(viewport.Width-2*m.Padding, 1))
	case viewport.Width <= m.Tablet:
		if addMode {
			return m.TabletAdd
		}
		return m.TabletWidth
	default:
		if addMode {
			return m.WidthAdd
		}
		return m.Width
	}
}

// Place computes where the popup goes for the given anchor.
func Place(anchor Rect, viewport Size, addMode bool, m Metrics) Placement {
	width := m.PopupWidth(viewport, addMode)
	height := min(m.Height, max(viewport.Height-2*m.Padding, 1))

	if viewport.Width <= m.Tablet {
		return Placement{
			Top:      max((viewport.Height-height)/2, 0),
			Left:     max((viewport.Width-width)/2, 0),
			Width:    width,
			Height:   height,
			Centered: true,
		}
	}

	anchorY := anchor.Top + anchor.Height/2

	top := anchorY - height/2
	left := anchor.Left - width - m.Offset
	placedLeft := true
	if left < m.Padding {
		left = anchor.Right() + m.Offset
		placedLeft = false
	}

	top = max(m.Padding, min(top, viewport.Height-height-m.Padding))

	caretTop := max(m.CaretMin, min(anchorY-top-m.Caret/2, height-m.CaretMargin))
	caretLeft := -m.Caret / 2
	if placedLeft {
		caretLeft = width - m.Caret/2 - 1
	}

	return Placement{
		Top:       top,
		Left:      left,
		Width:     width,
		Height:    height,
		CaretTop:  caretTop,
		CaretLeft: caretLeft,
		Flipped:   !placedLeft,
	}
}
