package editor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/teambition/rrule-go"

	"remindcal/internal/editor"
	"remindcal/internal/recurrence"
)

// clock returns a fixed session clock: Saturday 2025-03-15, 09:30:45.
func clock() func() time.Time {
	at := time.Date(2025, time.March, 15, 9, 30, 45, 0, time.UTC)
	return func() time.Time { return at }
}

func TestNewDraftDefaultsToNow(t *testing.T) {
	d := editor.New(editor.Init{}, clock())

	if d.Mode() != editor.ModeNew {
		t.Fatalf("mode = %v, want ModeNew", d.Mode())
	}
	if d.DateKey() != "2025-03-15" {
		t.Fatalf("default date = %q", d.DateKey())
	}
	if d.TimeValue() != "09:30" {
		t.Fatalf("default time = %q (seconds must be truncated)", d.TimeValue())
	}
	if d.CanDelete() {
		t.Fatal("a not-yet-created reminder must not be deletable")
	}
}

func TestInitOneTimeRoundTrip(t *testing.T) {
	d := editor.New(editor.Init{
		Message:  "Buy milk",
		DateTime: "2025-03-10 14:30:00",
	}, clock())

	sub, err := d.Submission()
	if err != nil {
		t.Fatalf("Submission: %v", err)
	}
	if sub.ID != 0 || sub.Message != "Buy milk" || sub.Recurrence != "" {
		t.Fatalf("unexpected payload: %+v", sub)
	}
	if sub.Date != "2025-03-10 14:30:00" {
		t.Fatalf("date = %q, want unchanged 2025-03-10 14:30:00", sub.Date)
	}
}

func TestInitWithIDEntersOneTimeEdit(t *testing.T) {
	d := editor.New(editor.Init{ID: 12, Message: "x", DateTime: "2025-03-10 14:30:00"}, clock())
	if d.Mode() != editor.ModeOneTime {
		t.Fatalf("mode = %v, want ModeOneTime", d.Mode())
	}
	if !d.CanDelete() {
		t.Fatal("existing reminder must be deletable")
	}
}

func TestInitRecurringDecodesRule(t *testing.T) {
	d := editor.New(editor.Init{
		ID:         7,
		Message:    "stretch",
		Recurrence: "FREQ=WEEKLY;BYDAY=MO,WE,FR",
	}, clock())

	if d.Mode() != editor.ModeRecurring {
		t.Fatalf("mode = %v, want ModeRecurring", d.Mode())
	}
	want := recurrence.NewDaySet(rrule.MO, rrule.WE, rrule.FR)
	if !d.Days().Equal(want) {
		t.Fatalf("days = %v, want MO,WE,FR", d.Days().Days())
	}
}

func TestRecurringToggleAndSubmit(t *testing.T) {
	d := editor.New(editor.Init{
		ID:         7,
		Message:    "stretch",
		DateTime:   "2025-03-12 08:00:00",
		Recurrence: "FREQ=WEEKLY;BYDAY=MO,WE,FR",
	}, clock())

	d.ToggleDay(rrule.WE)

	sub, err := d.Submission()
	if err != nil {
		t.Fatalf("Submission: %v", err)
	}
	if sub.Recurrence != "FREQ=WEEKLY;BYDAY=MO,FR" {
		t.Fatalf("recurrence = %q", sub.Recurrence)
	}
	// Recurring submissions always carry today's date with the chosen
	// time; the backend derives the real next occurrence.
	if sub.Date != "2025-03-15 08:00:00" {
		t.Fatalf("date = %q, want today's date + chosen time", sub.Date)
	}
	if sub.ID != 7 {
		t.Fatalf("id = %d", sub.ID)
	}
}

func TestRecurringEmptySetRejected(t *testing.T) {
	d := editor.New(editor.Init{
		ID:         7,
		Message:    "stretch",
		Recurrence: "FREQ=WEEKLY;BYDAY=MO",
	}, clock())
	d.ToggleDay(rrule.MO)

	_, err := d.Submission()
	if !errors.Is(err, editor.ErrEmptyRecurrenceSet) {
		t.Fatalf("err = %v, want ErrEmptyRecurrenceSet", err)
	}
}

func TestMissingDate(t *testing.T) {
	d := editor.New(editor.Init{Message: "x"}, clock())
	if err := d.SetDate(""); err != nil {
		t.Fatal(err)
	}
	_, err := d.Submission()
	if !errors.Is(err, editor.ErrMissingDate) {
		t.Fatalf("err = %v, want ErrMissingDate", err)
	}
}

func TestMissingMessage(t *testing.T) {
	d := editor.New(editor.Init{Message: "   "}, clock())
	_, err := d.Submission()
	if !errors.Is(err, editor.ErrMissingMessage) {
		t.Fatalf("err = %v, want ErrMissingMessage", err)
	}
}

func TestMissingTime(t *testing.T) {
	d := editor.New(editor.Init{Message: "x"}, clock())
	if err := d.SetTime(""); err != nil {
		t.Fatal(err)
	}
	_, err := d.Submission()
	if !errors.Is(err, editor.ErrMissingTime) {
		t.Fatalf("err = %v, want ErrMissingTime", err)
	}
}

func TestMessageAndTimeCheckedForRecurringToo(t *testing.T) {
	d := editor.New(editor.Init{ID: 3, Recurrence: "FREQ=WEEKLY;BYDAY=TU"}, clock())
	_, err := d.Submission()
	if !errors.Is(err, editor.ErrMissingMessage) {
		t.Fatalf("err = %v, want ErrMissingMessage", err)
	}
}

func TestToggleDayIsNoOpOutsideRecurring(t *testing.T) {
	d := editor.New(editor.Init{Message: "x", DateTime: "2025-03-10 14:30:00"}, clock())
	d.ToggleDay(rrule.MO)

	if !d.Days().Empty() {
		t.Fatalf("toggle leaked into a one-time draft: %v", d.Days().Days())
	}
	sub, err := d.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if sub.Recurrence != "" {
		t.Fatalf("one-time submission grew a recurrence: %q", sub.Recurrence)
	}
}

func TestFieldEdits(t *testing.T) {
	d := editor.New(editor.Init{Message: "old", DateTime: "2025-03-10 14:30:00"}, clock())
	d.SetMessage("new text")
	if err := d.SetDate("2025-04-01"); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTime("07:05"); err != nil {
		t.Fatal(err)
	}

	sub, err := d.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if sub.Message != "new text" || sub.Date != "2025-04-01 07:05:00" {
		t.Fatalf("payload = %+v", sub)
	}
}

func TestSetDateRejectsGarbage(t *testing.T) {
	d := editor.New(editor.Init{}, clock())
	if err := d.SetDate("not-a-date"); err == nil {
		t.Fatal("SetDate accepted garbage")
	}
	if err := d.SetTime("99:99"); err == nil {
		t.Fatal("SetTime accepted garbage")
	}
}

func TestMalformedInitDateFallsBackToNow(t *testing.T) {
	d := editor.New(editor.Init{DateTime: "yesterday-ish"}, clock())
	if d.DateKey() != "2025-03-15" {
		t.Fatalf("date = %q, want the session clock's date", d.DateKey())
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := editor.ParseTimeOfDay("14:30:59")
	if err != nil {
		t.Fatal(err)
	}
	if got := tod.String(); got != "14:30" {
		t.Fatalf("tod = %q", got)
	}
}
