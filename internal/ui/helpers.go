package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

type Styles struct {
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
	Event    lipgloss.Style
	Error    lipgloss.Style
	Header   lipgloss.Style
	Border   lipgloss.Style
	Caret    lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
}

// NewStyles builds the UI styles from the config's color table. Each entry
// is a space separated list of attributes (bold, reverse, underline, faint)
// and at most one color: a name, an ANSI number or a #hex value.
func NewStyles(colors map[string]string) Styles {
	spec := func(name string) lipgloss.Style {
		return applyColorSpec(lipgloss.NewStyle(), colors[name])
	}

	border := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())
	caret := lipgloss.NewStyle()
	if c, ok := parseColor(firstColor(colors["border"])); ok {
		border = border.BorderForeground(c)
		caret = caret.Foreground(c)
	}

	return Styles{
		Normal:   spec("normal"),
		Muted:    spec("muted"),
		Today:    spec("today").Bold(true),
		Selected: spec("selected"),
		Event:    spec("event"),
		Error:    spec("error"),
		Header:   spec("header"),
		Border:   border,
		Caret:    caret,
		Help:     lipgloss.NewStyle().Faint(true),
		Message:  spec("header").Padding(0, 1),
	}
}

var namedColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
	"grey":    "8",
}

func applyColorSpec(style lipgloss.Style, spec string) lipgloss.Style {
	for _, field := range strings.Fields(strings.ToLower(spec)) {
		switch field {
		case "default", "normal", "none":
		case "bold":
			style = style.Bold(true)
		case "reverse":
			style = style.Reverse(true)
		case "underline":
			style = style.Underline(true)
		case "faint", "dim":
			style = style.Faint(true)
		default:
			if c, ok := parseColor(field); ok {
				style = style.Foreground(c)
			}
		}
	}
	return style
}

func firstColor(spec string) string {
	for _, field := range strings.Fields(strings.ToLower(spec)) {
		if _, ok := parseColor(field); ok {
			return field
		}
	}
	return ""
}

func parseColor(s string) (color.Color, bool) {
	if n, ok := namedColors[s]; ok {
		s = n
	}
	if s == "" {
		return nil, false
	}
	if strings.HasPrefix(s, "#") {
		return lipgloss.Color(s), true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, false
		}
	}
	return lipgloss.Color(s), true
}

// fit cuts s to width cells, marking the cut with an ellipsis.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// wrapLines word-wraps s to width and returns at most limit lines. Words
// longer than width are cut.
func wrapLines(s string, width, limit int) []string {
	if width <= 0 || limit <= 0 {
		return nil
	}
	var out []string
	for _, line := range strings.Split(wordwrap.String(s, width), "\n") {
		if len(out) == limit {
			out[limit-1] = fit(out[limit-1]+" …", width)
			break
		}
		out = append(out, fit(line, width))
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
