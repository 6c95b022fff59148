// Package editor owns the in-progress edit of a single reminder and builds
// the submission payload. A draft lives for exactly one edit surface: it is
// created when the surface opens, mutated by user input, and either
// discarded on cancel or consumed by a successful submission.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"remindcal/internal/model"
	"remindcal/internal/recurrence"
)

// Mode identifies which edit surface the draft drives.
type Mode int

const (
	// ModeNew creates a reminder; no id exists yet.
	ModeNew Mode = iota
	// ModeOneTime reschedules a concrete date-time reminder.
	ModeOneTime
	// ModeRecurring edits the weekday set of a recurring reminder.
	ModeRecurring
)

// Validation failures. All are recovered locally: the form stays editable
// and no network call is made.
var (
	ErrMissingMessage     = errors.New("message is required")
	ErrMissingDate        = errors.New("date is required")
	ErrMissingTime        = errors.New("time is required")
	ErrEmptyRecurrenceSet = errors.New("at least one weekday must be selected")
)

// TimeOfDay is a wall-clock time at minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS"; seconds are discarded.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		s = s[:5]
	}
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// Init seeds a new draft. All fields are optional; a non-empty Recurrence
// selects the recurring editor regardless of the other fields.
type Init struct {
	ID         int64
	Message    string
	DateTime   string // "YYYY-MM-DD HH:MM[:SS]"; defaults to now when empty
	Recurrence string // wire-format rule
}

// Draft is the mutable state of one edit session.
type Draft struct {
	mode    Mode
	id      int64
	message string
	date    *time.Time
	tod     *TimeOfDay
	days    recurrence.DaySet
	now     func() time.Time
}

// New builds a draft from launch parameters or a selected reminder. The
// clock is injectable for tests; nil means time.Now.
func New(p Init, now func() time.Time) *Draft {
	if now == nil {
		now = time.Now
	}
	d := &Draft{id: p.ID, message: p.Message, now: now}

	if p.Recurrence != "" {
		d.mode = ModeRecurring
		d.days = recurrence.Decode(p.Recurrence)
	} else if p.ID != 0 {
		d.mode = ModeOneTime
	} else {
		d.mode = ModeNew
	}

	if p.DateTime != "" {
		if date, tod, err := splitDateTime(p.DateTime); err == nil {
			d.date = &date
			d.tod = &tod
		}
	}
	if d.date == nil {
		n := now()
		date := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		d.date = &date
	}
	if d.tod == nil {
		n := now()
		d.tod = &TimeOfDay{Hour: n.Hour(), Minute: n.Minute()}
	}
	return d
}

func splitDateTime(s string) (time.Time, TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(parts) != 2 {
		return time.Time{}, TimeOfDay{}, fmt.Errorf("malformed date-time %q", s)
	}
	date, err := time.Parse(model.DateKeyLayout, parts[0])
	if err != nil {
		return time.Time{}, TimeOfDay{}, err
	}
	tod, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return time.Time{}, TimeOfDay{}, err
	}
	return date, tod, nil
}

// Mode returns the active edit surface.
func (d *Draft) Mode() Mode { return d.mode }

// ID returns the reminder id, 0 for a not-yet-created reminder.
func (d *Draft) ID() int64 { return d.id }

// CanDelete reports whether deletion is meaningful for this draft. The
// destructive confirmation itself is the host chrome's job.
func (d *Draft) CanDelete() bool { return d.id != 0 }

// Message returns the current message text.
func (d *Draft) Message() string { return d.message }

// SetMessage replaces the message text.
func (d *Draft) SetMessage(s string) { d.message = s }

// DateKey returns the chosen date as "YYYY-MM-DD", or "" when cleared.
func (d *Draft) DateKey() string {
	if d.date == nil {
		return ""
	}
	return d.date.Format(model.DateKeyLayout)
}

// SetDate sets the chosen date from a "YYYY-MM-DD" value; an empty value
// clears it.
func (d *Draft) SetDate(key string) error {
	if strings.TrimSpace(key) == "" {
		d.date = nil
		return nil
	}
	date, err := time.Parse(model.DateKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return err
	}
	d.date = &date
	return nil
}

// TimeValue returns the chosen time as "HH:MM", or "" when cleared.
func (d *Draft) TimeValue() string {
	if d.tod == nil {
		return ""
	}
	return d.tod.String()
}

// SetTime sets the chosen time from an "HH:MM[:SS]" value; an empty value
// clears it.
func (d *Draft) SetTime(s string) error {
	if strings.TrimSpace(s) == "" {
		d.tod = nil
		return nil
	}
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	d.tod = &tod
	return nil
}

// ToggleDay flips membership of the weekday in the recurrence set. Outside
// the recurring editor the day pills are not shown, so this is a no-op
// rather than an error.
func (d *Draft) ToggleDay(day rrule.Weekday) {
	if d.mode != ModeRecurring {
		return
	}
	d.days.Toggle(day)
}

// Days returns the current recurrence set (empty outside ModeRecurring).
func (d *Draft) Days() recurrence.DaySet {
	return recurrence.NewDaySet(d.days.Days()...)
}

// Submission is the payload sent to the backend.
type Submission struct {
	ID         int64  `json:"id,omitempty"`
	Message    string `json:"message"`
	Date       string `json:"date"` // "YYYY-MM-DD HH:MM:00"
	Recurrence string `json:"recurrence,omitempty"`
}

// Submission validates the draft and builds the payload.
//
// For a recurring draft the date field is today's calendar date combined
// with the chosen time: deriving the actual next occurrence from the rule
// is the backend's documented responsibility, never this client's.
func (d *Draft) Submission() (Submission, error) {
	var sub Submission

	switch d.mode {
	case ModeRecurring:
		rule, ok := d.days.Encode()
		if !ok {
			return sub, ErrEmptyRecurrenceSet
		}
		if err := recurrence.Validate(rule); err != nil {
			return sub, fmt.Errorf("built recurrence rule %q: %w", rule, err)
		}
		sub.Recurrence = rule
	default:
		if d.date == nil {
			return sub, ErrMissingDate
		}
	}

	msg := strings.TrimSpace(d.message)
	if msg == "" {
		return sub, ErrMissingMessage
	}
	if d.tod == nil {
		return sub, ErrMissingTime
	}

	var date time.Time
	if d.mode == ModeRecurring {
		n := d.now()
		date = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
	} else {
		date = *d.date
	}

	sub.ID = d.id
	sub.Message = msg
	sub.Date = date.Format(model.DateKeyLayout) + " " + d.tod.String() + ":00"
	return sub, nil
}
