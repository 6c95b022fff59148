// Package calendar aggregates a flat reminder list into a month grid with
// day-level drill-down. Its output is a derived projection: never stored,
// always rebuilt from the latest fetched reminders plus the displayed month.
package calendar

import (
	"time"

	"remindcal/internal/model"
)

// Cell is one grid position in the month view: either padding before the
// first day of the month, or a concrete day.
type Cell struct {
	Empty        bool   `json:"empty"`
	Day          int    `json:"day,omitempty"`
	DateKey      string `json:"date,omitempty"`
	Today        bool   `json:"today,omitempty"`
	HasReminders bool   `json:"has_reminders,omitempty"`
}

// Month is a year/month cursor.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month, rolling January back into December.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, rolling December into January.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Label returns the display header, e.g. "March 2025".
func (m Month) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Days returns the number of days in the month, computed as day 0 of the
// next month so leap-year February comes out right.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// leadingBlanks returns how many padding cells precede day 1 in a
// Monday-first week.
func (m Month) leadingBlanks() int {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return (int(first.Weekday()) + 6) % 7
}

// DateKey formats t as a calendar-day key.
func DateKey(t time.Time) string {
	return t.Format(model.DateKeyLayout)
}

// Layout computes the grid for m: leadingBlanks empty cells followed by one
// cell per day of the month. Each day cell carries whether any reminder
// falls on it and whether it is the caller-supplied current date (a display
// flag only).
func Layout(m Month, reminders []model.Reminder, today time.Time) []Cell {
	blanks := m.leadingBlanks()
	days := m.Days()
	todayKey := DateKey(today)

	marked := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		marked[DateKey(r.Occurrence.FiresAt())] = true
	}

	cells := make([]Cell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Empty: true})
	}
	for day := 1; day <= days; day++ {
		key := DateKey(time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC))
		cells = append(cells, Cell{
			Day:          day,
			DateKey:      key,
			Today:        key == todayKey,
			HasReminders: marked[key],
		})
	}
	return cells
}

// RemindersOn returns the reminders falling on the given day, preserving
// the order of the source list. Any ordering beyond that is the backend's
// responsibility; this projection must not re-sort.
func RemindersOn(dateKey string, reminders []model.Reminder) []model.Reminder {
	out := make([]model.Reminder, 0)
	for _, r := range reminders {
		if DateKey(r.Occurrence.FiresAt()) == dateKey {
			out = append(out, r)
		}
	}
	return out
}
