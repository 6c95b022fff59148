// Package model holds the domain types shared by the calendar, editor and
// gateway layers.
package model

import (
	"time"

	"remindcal/internal/recurrence"
)

// WireTimeLayout is the date-time format used by the backend for reminder
// fire times, note timestamps and submissions ("YYYY-MM-DD HH:MM:SS").
const WireTimeLayout = "2006-01-02 15:04:05"

// DateKeyLayout identifies a calendar day ("YYYY-MM-DD"). Day grouping is
// done by this prefix of the wire date, independent of time of day.
const DateKeyLayout = "2006-01-02"

// Reminder is a scheduled message. Its temporal identity is exactly one of
// OneTime or Recurring; which variant is active also decides which edit
// surface opens for it.
type Reminder struct {
	ID      int64
	Message string

	Occurrence Occurrence
}

// Occurrence is the temporal identity of a reminder.
type Occurrence interface {
	// FiresAt returns the concrete date-time used to place the reminder on
	// the calendar. For recurring reminders this is the backend-computed
	// next occurrence; the client only carries it.
	FiresAt() time.Time

	isOccurrence()
}

// OneTime fires once at a concrete date-time (minute precision).
type OneTime struct {
	At time.Time
}

func (o OneTime) FiresAt() time.Time { return o.At }
func (OneTime) isOccurrence()        {}

// Recurring fires weekly on a non-empty set of weekdays. NextAt is the
// backend-computed next fire time; rescheduling a recurring reminder never
// updates it locally.
type Recurring struct {
	Rule   string            // wire-format rule as received
	Days   recurrence.DaySet // decoded BYDAY set
	NextAt time.Time
}

func (r Recurring) FiresAt() time.Time { return r.NextAt }
func (Recurring) isOccurrence()        {}

// Note is a free-form text note. CreatedAt is display-only.
type Note struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}
