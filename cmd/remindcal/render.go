package main

import (
	"fmt"
	"io"
	"strings"

	"remindcal/internal/editor"
	"remindcal/internal/model"
	"remindcal/internal/view"
)

// textRenderer writes session views as plain text. It exists for one-shot
// runs and manual poking; the embedded UI talks to internal/web instead.
type textRenderer struct {
	w io.Writer
}

func newTextRenderer(w io.Writer) *textRenderer {
	return &textRenderer{w: w}
}

func (t *textRenderer) RenderCalendar(v view.CalendarView) {
	fmt.Fprintf(t.w, "%s\n", v.Label)
	fmt.Fprintln(t.w, "Mo Tu We Th Fr Sa Su")

	col := 0
	for _, cell := range v.Cells {
		switch {
		case cell.Empty:
			fmt.Fprint(t.w, "   ")
		case cell.HasReminders:
			fmt.Fprintf(t.w, "%2d*", cell.Day)
		default:
			fmt.Fprintf(t.w, "%2d ", cell.Day)
		}
		col++
		if col%7 == 0 {
			fmt.Fprintln(t.w)
		}
	}
	if col%7 != 0 {
		fmt.Fprintln(t.w)
	}

	if v.SelectedDay != "" {
		fmt.Fprintf(t.w, "\nReminders on %s:\n", v.SelectedDay)
		for _, r := range v.DayReminders {
			fmt.Fprintf(t.w, "  %s  %s\n", r.Occurrence.FiresAt().Format("15:04"), r.Message)
		}
	}
}

func (t *textRenderer) RenderEditor(v view.EditorView) {
	switch v.Mode {
	case editor.ModeRecurring:
		fmt.Fprintf(t.w, "Edit recurring reminder #%d\n", v.ID)
		fmt.Fprintf(t.w, "  message: %s\n", v.Message)
		fmt.Fprintf(t.w, "  time:    %s\n", v.Time)
		fmt.Fprintf(t.w, "  days:    %s\n", strings.Join(v.Days, ","))
	case editor.ModeOneTime:
		fmt.Fprintf(t.w, "Reschedule reminder #%d\n", v.ID)
		fmt.Fprintf(t.w, "  message: %s\n", v.Message)
		fmt.Fprintf(t.w, "  date:    %s %s\n", v.Date, v.Time)
	default:
		fmt.Fprintln(t.w, "New reminder")
		fmt.Fprintf(t.w, "  message: %s\n", v.Message)
		fmt.Fprintf(t.w, "  date:    %s %s\n", v.Date, v.Time)
	}
}

func (t *textRenderer) RenderNotes(v view.NotesView) {
	if len(v.Notes) == 0 {
		fmt.Fprintln(t.w, "No notes.")
		return
	}
	for _, n := range v.Notes {
		created := ""
		if !n.CreatedAt.IsZero() {
			created = n.CreatedAt.Format(model.DateKeyLayout)
		}
		fmt.Fprintf(t.w, "#%d [%s] %s\n", n.ID, created, n.Content)
	}
}

func (t *textRenderer) ShowError(msg string) {
	fmt.Fprintf(t.w, "error: %s\n", msg)
}

func (t *textRenderer) Close() {}
