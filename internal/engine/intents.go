package engine

import (
	"time"

	"github.com/cwarden/monthcal/internal/calendar"
)

// Intent is a user action handed to Engine.Dispatch.
type Intent interface {
	intent()
}

// OpenQuickAdd opens the title-only form for the selected date.
type OpenQuickAdd struct{}

// SelectCell is a click on a day of the current grid. Muted cells have no
// DateKey, so selecting one does nothing.
type SelectCell struct {
	DateKey calendar.DateKey
}

// OpenAddFromList switches the list popup to the full add form.
type OpenAddFromList struct{}

type SelectEvent struct {
	ID int64
}

type SaveQuick struct {
	Title string
}

type SaveFull struct {
	Title        string
	Participants string
	Description  string
}

type Field int

const (
	FieldTitle Field = iota
	FieldParticipants
	FieldDescription
)

// EditDraft records typing in one of the form fields.
type EditDraft struct {
	Field Field
	Value string
}

// DeleteEvent removes the event shown in the details popup. A zero ID
// means "the selected event".
type DeleteEvent struct {
	ID int64
}

type Close struct{}

type PrevMonth struct{}

type NextMonth struct{}

type SetMonth struct {
	Month time.Month
}

type SetYear struct {
	Year int
}

// Today shows the current month and selects today.
type Today struct{}

// GoTo shows the month containing DateKey and selects it.
type GoTo struct {
	DateKey calendar.DateKey
}

type Search struct {
	Query string
}

type ClearSearch struct{}

type SelectSearchResult struct {
	DateKey calendar.DateKey
}

// Reload re-reads events from storage after an outside change.
type Reload struct{}

func (OpenQuickAdd) intent()       {}
func (SelectCell) intent()         {}
func (OpenAddFromList) intent()    {}
func (SelectEvent) intent()        {}
func (SaveQuick) intent()          {}
func (SaveFull) intent()           {}
func (EditDraft) intent()          {}
func (DeleteEvent) intent()        {}
func (Close) intent()              {}
func (PrevMonth) intent()          {}
func (NextMonth) intent()          {}
func (SetMonth) intent()           {}
func (SetYear) intent()            {}
func (Today) intent()              {}
func (GoTo) intent()               {}
func (Search) intent()             {}
func (ClearSearch) intent()        {}
func (SelectSearchResult) intent() {}
func (Reload) intent()             {}
