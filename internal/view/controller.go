package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"remindcal/internal/calendar"
	"remindcal/internal/editor"
	"remindcal/internal/gateway"
	applog "remindcal/internal/log"
	"remindcal/internal/model"
	"remindcal/internal/recurrence"
)

// Command names accepted by Controller.Dispatch. Keeping dispatch keyed by
// action name decouples the session logic from any particular input surface.
const (
	CmdPrevMonth    = "prev-month"
	CmdNextMonth    = "next-month"
	CmdSelectDay    = "select-day"
	CmdOpenReminder = "open-reminder"
	CmdNewReminder  = "new-reminder"
	CmdSetMessage   = "set-message"
	CmdSetDate      = "set-date"
	CmdSetTime      = "set-time"
	CmdToggleDay    = "toggle-day"
	CmdSave         = "save"
	CmdDelete       = "delete"
	CmdCancel       = "cancel"
	CmdNoteSave     = "note-save"
	CmdNoteDelete   = "note-delete"
	CmdRefresh      = "refresh"
)

// Command is one user action. Only the fields the named command reads are
// meaningful.
type Command struct {
	Name    string
	Day     string // select-day: date key
	ID      int64  // open-reminder / note-save / note-delete
	Value   string // set-message / set-date / set-time / note-save content
	Weekday string // toggle-day: two-letter token
}

// Controller owns one view session. It is single-flow by design: the host
// UI serializes user actions, and in-flight mutations are guarded by a
// busy flag rather than a lock (the triggering control is disabled until
// the request resolves).
type Controller struct {
	gw  gateway.Gateway
	out Renderer

	params Params
	loc    *time.Location
	now    func() time.Time

	month     calendar.Month
	selected  string
	reminders []model.Reminder
	notes     []model.Note
	draft     *editor.Draft
	busy      bool

	commands map[string]func(context.Context, Command)
}

// NewController wires a session. loc is the session timezone (nil means
// time.Local); it governs "today" marking and the recurring-submission
// date.
func NewController(gw gateway.Gateway, out Renderer, p Params, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	if p.Mode == "" {
		p.Mode = ModeEdit
	}
	c := &Controller{
		gw:     gw,
		out:    out,
		params: p,
		loc:    loc,
		now:    time.Now,
	}
	c.commands = map[string]func(context.Context, Command){
		CmdPrevMonth:    func(ctx context.Context, _ Command) { c.shiftMonth(c.month.Prev()) },
		CmdNextMonth:    func(ctx context.Context, _ Command) { c.shiftMonth(c.month.Next()) },
		CmdSelectDay:    func(_ context.Context, cmd Command) { c.selectDay(cmd.Day) },
		CmdOpenReminder: func(_ context.Context, cmd Command) { c.openReminder(cmd.ID) },
		CmdNewReminder:  func(_ context.Context, _ Command) { c.newReminder() },
		CmdSetMessage:   func(_ context.Context, cmd Command) { c.setMessage(cmd.Value) },
		CmdSetDate:      func(_ context.Context, cmd Command) { c.setField((*editor.Draft).SetDate, cmd.Value) },
		CmdSetTime:      func(_ context.Context, cmd Command) { c.setField((*editor.Draft).SetTime, cmd.Value) },
		CmdToggleDay:    func(_ context.Context, cmd Command) { c.toggleDay(cmd.Weekday) },
		CmdSave:         c.save,
		CmdDelete:       c.deleteReminder,
		CmdCancel:       c.cancel,
		CmdNoteSave:     c.noteSave,
		CmdNoteDelete:   c.noteDelete,
		CmdRefresh:      func(ctx context.Context, _ Command) { c.showCalendar(ctx) },
	}
	return c
}

// Start seeds the session from the launch parameters and renders the first
// view.
func (c *Controller) Start(ctx context.Context) {
	c.month = calendar.MonthOf(c.now().In(c.loc))

	switch c.params.Mode {
	case ModeCalendar:
		c.showCalendar(ctx)
	case ModeNotes:
		c.showNotes(ctx)
	default:
		c.draft = editor.New(editor.Init{
			ID:         c.params.ReminderID,
			Message:    c.params.Message,
			DateTime:   c.params.DateTime,
			Recurrence: c.params.Recurrence,
		}, c.now)
		c.renderEditor()
	}
}

// Dispatch executes one named command. Mutating commands are no-ops while a
// request is in flight; unknown names are an error.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	handler, ok := c.commands[cmd.Name]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd.Name)
	}
	if c.busy && mutating(cmd.Name) {
		applog.Debug("command ignored while request in flight", "command", cmd.Name)
		return nil
	}
	handler(ctx, cmd)
	return nil
}

func mutating(name string) bool {
	switch name {
	case CmdSave, CmdDelete, CmdNoteSave, CmdNoteDelete:
		return true
	}
	return false
}

// --- calendar flow ---

func (c *Controller) showCalendar(ctx context.Context) {
	c.draft = nil
	c.refreshReminders(ctx)
	c.renderCalendar()
}

// refreshReminders reloads the cached list. A failed read degrades to an
// empty list so the view still renders; navigation must not be blocked.
func (c *Controller) refreshReminders(ctx context.Context) {
	reminders, err := c.gw.ListReminders(ctx, c.params.UserID)
	if err != nil {
		applog.Error("listing reminders failed; rendering empty calendar", err, "user", c.params.UserID)
		reminders = nil
	}
	c.reminders = reminders
}

func (c *Controller) renderCalendar() {
	v := CalendarView{
		Label:       c.month.Label(),
		Cells:       calendar.Layout(c.month, c.reminders, c.now().In(c.loc)),
		SelectedDay: c.selected,
	}
	if c.selected != "" {
		v.DayReminders = calendar.RemindersOn(c.selected, c.reminders)
	}
	c.out.RenderCalendar(v)
}

func (c *Controller) shiftMonth(m calendar.Month) {
	c.month = m
	c.selected = ""
	c.renderCalendar()
}

func (c *Controller) selectDay(dateKey string) {
	c.selected = dateKey
	c.renderCalendar()
}

// --- editor flow ---

func (c *Controller) openReminder(id int64) {
	for _, r := range c.reminders {
		if r.ID != id {
			continue
		}
		init := editor.Init{
			ID:       r.ID,
			Message:  r.Message,
			DateTime: r.Occurrence.FiresAt().Format(model.WireTimeLayout),
		}
		if rec, ok := r.Occurrence.(model.Recurring); ok {
			init.Recurrence = rec.Rule
		}
		c.draft = editor.New(init, c.now)
		c.renderEditor()
		return
	}
	applog.Debug("open-reminder for unknown id", "id", id)
}

func (c *Controller) newReminder() {
	c.draft = editor.New(editor.Init{}, c.now)
	c.renderEditor()
}

func (c *Controller) renderEditor() {
	d := c.draft
	days := make([]string, 0, d.Days().Len())
	for _, w := range d.Days().Days() {
		days = append(days, w.String())
	}
	c.out.RenderEditor(EditorView{
		Mode:      d.Mode(),
		ID:        d.ID(),
		Message:   d.Message(),
		Date:      d.DateKey(),
		Time:      d.TimeValue(),
		Days:      days,
		CanDelete: d.CanDelete(),
	})
}

func (c *Controller) setMessage(value string) {
	if c.draft != nil {
		c.draft.SetMessage(value)
	}
}

func (c *Controller) setField(set func(*editor.Draft, string) error, value string) {
	if c.draft == nil {
		return
	}
	if err := set(c.draft, value); err != nil {
		c.out.ShowError(err.Error())
	}
}

func (c *Controller) toggleDay(token string) {
	if c.draft == nil {
		return
	}
	if day, ok := recurrence.ParseToken(token); ok {
		c.draft.ToggleDay(day)
	}
}

// save validates the draft and submits it. Validation failures stay local:
// inline message, no network call, form still editable.
func (c *Controller) save(ctx context.Context, _ Command) {
	if c.draft == nil {
		return
	}
	sub, err := c.draft.Submission()
	if err != nil {
		c.out.ShowError(validationMessage(err))
		return
	}

	c.busy = true
	defer func() { c.busy = false }()

	id, err := c.gw.SubmitReminder(ctx, c.params.UserID, sub)
	if err != nil {
		c.out.ShowError("Could not save: " + serverDetail(err))
		return
	}
	applog.Info("reminder saved", "user", c.params.UserID, "id", id)
	c.finishMutation(ctx)
}

// deleteReminder removes the reminder behind the current draft. The
// destructive confirmation dialog belongs to the host chrome; by the time
// this command arrives the user has already confirmed.
func (c *Controller) deleteReminder(ctx context.Context, _ Command) {
	if c.draft == nil || !c.draft.CanDelete() {
		return
	}

	c.busy = true
	defer func() { c.busy = false }()

	if err := c.gw.DeleteReminder(ctx, c.params.UserID, c.draft.ID()); err != nil {
		c.out.ShowError("Could not delete: " + serverDetail(err))
		return
	}
	applog.Info("reminder deleted", "user", c.params.UserID, "id", c.draft.ID())
	c.finishMutation(ctx)
}

// finishMutation enforces the ordering guarantee: a successful mutation is
// followed by a full re-fetch-and-re-render before the next user action, or
// by closing the app when the session was launched straight into the editor.
func (c *Controller) finishMutation(ctx context.Context) {
	c.draft = nil
	if c.params.Mode == ModeCalendar {
		c.showCalendar(ctx)
		return
	}
	c.out.Close()
}

func (c *Controller) cancel(ctx context.Context, _ Command) {
	if c.params.Mode == ModeCalendar && c.draft != nil {
		c.showCalendar(ctx)
		return
	}
	c.out.Close()
}

// --- notes flow ---

func (c *Controller) showNotes(ctx context.Context) {
	notes, err := c.gw.ListNotes(ctx, c.params.UserID)
	if err != nil {
		applog.Error("listing notes failed; rendering empty list", err, "user", c.params.UserID)
		notes = nil
	}
	c.notes = notes
	c.out.RenderNotes(NotesView{Notes: c.notes})
}

func (c *Controller) noteSave(ctx context.Context, cmd Command) {
	if strings.TrimSpace(cmd.Value) == "" {
		c.out.ShowError("Note content must not be empty.")
		return
	}

	c.busy = true
	defer func() { c.busy = false }()

	if err := c.gw.UpdateNote(ctx, cmd.ID, cmd.Value); err != nil {
		c.out.ShowError("Could not save note: " + serverDetail(err))
		return
	}
	c.showNotes(ctx)
}

func (c *Controller) noteDelete(ctx context.Context, cmd Command) {
	c.busy = true
	defer func() { c.busy = false }()

	if err := c.gw.DeleteNote(ctx, cmd.ID); err != nil {
		c.out.ShowError("Could not delete note: " + serverDetail(err))
		return
	}
	c.showNotes(ctx)
}

// --- error surfacing ---

func validationMessage(err error) string {
	switch {
	case errors.Is(err, editor.ErrEmptyRecurrenceSet):
		return "Please select at least one day."
	case errors.Is(err, editor.ErrMissingDate):
		return "Please choose a date."
	case errors.Is(err, editor.ErrMissingMessage):
		return "Please enter a message."
	case errors.Is(err, editor.ErrMissingTime):
		return "Please choose a time."
	}
	return err.Error()
}

// serverDetail prefers the backend's own error text when there is one.
func serverDetail(err error) string {
	var se *gateway.ServerError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return err.Error()
}
