// Package view orchestrates one mini-app session: tab/view switching,
// calendar navigation, the active reminder draft, and submission through
// the gateway. All session state lives on the Controller; nothing is
// process-global.
package view

import (
	"remindcal/internal/calendar"
	"remindcal/internal/editor"
	"remindcal/internal/model"
)

// Mode is the surface the session was launched into.
type Mode string

const (
	ModeEdit     Mode = "edit"
	ModeCalendar Mode = "calendar"
	ModeNotes    Mode = "notes"
)

// Params are the launch parameters handed over by the host container. They
// are read once at startup and seed the initial state; they are not
// re-validated afterwards.
type Params struct {
	UserID     string
	Mode       Mode
	ReminderID int64
	Message    string
	DateTime   string // "YYYY-MM-DD HH:MM:SS"
	Recurrence string
}

// CalendarView is the rendered month state.
type CalendarView struct {
	Label        string
	Cells        []calendar.Cell
	SelectedDay  string // date key, "" when no day is selected
	DayReminders []model.Reminder
}

// EditorView is the rendered edit form state.
type EditorView struct {
	Mode      editor.Mode
	ID        int64
	Message   string
	Date      string // "YYYY-MM-DD", "" when cleared
	Time      string // "HH:MM", "" when cleared
	Days      []string
	CanDelete bool
}

// NotesView is the rendered notes list.
type NotesView struct {
	Notes []model.Note
}

// Renderer is the output surface of a session. Implementations range from
// the embedded web UI to a plain text dump; the controller never knows
// which. ShowError surfaces an inline, non-fatal message; Close asks the
// host container to dismiss the mini app.
type Renderer interface {
	RenderCalendar(CalendarView)
	RenderEditor(EditorView)
	RenderNotes(NotesView)
	ShowError(msg string)
	Close()
}
