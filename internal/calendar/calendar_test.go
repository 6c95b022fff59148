package calendar_test

import (
	"testing"
	"time"

	"remindcal/internal/calendar"
	"remindcal/internal/model"
)

func day(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func oneTime(id int64, msg string, at time.Time) model.Reminder {
	return model.Reminder{ID: id, Message: msg, Occurrence: model.OneTime{At: at}}
}

func TestLayoutCellCounts(t *testing.T) {
	// Every month of a leap and a non-leap year: day cells must match the
	// month length and padding must match the Monday-first weekday of the
	// 1st.
	for _, year := range []int{2023, 2024} {
		for m := time.January; m <= time.December; m++ {
			month := calendar.Month{Year: year, Month: m}
			cells := calendar.Layout(month, nil, day(2000, 1, 1, 0, 0))

			first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
			wantBlanks := (int(first.Weekday()) + 6) % 7
			wantDays := time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()

			blanks, days := 0, 0
			for i, c := range cells {
				if c.Empty {
					if i >= wantBlanks {
						t.Fatalf("%d-%02d: empty cell at position %d", year, m, i)
					}
					blanks++
				} else {
					days++
				}
			}
			if blanks != wantBlanks || days != wantDays {
				t.Fatalf("%d-%02d: got %d blanks / %d days, want %d / %d",
					year, m, blanks, days, wantBlanks, wantDays)
			}
		}
	}
}

func TestLayoutFebruaryLengths(t *testing.T) {
	if got := (calendar.Month{Year: 2024, Month: time.February}).Days(); got != 29 {
		t.Fatalf("2024-02 has %d days, want 29", got)
	}
	if got := (calendar.Month{Year: 2023, Month: time.February}).Days(); got != 28 {
		t.Fatalf("2023-02 has %d days, want 28", got)
	}
}

func TestMonthNavigationRollsYears(t *testing.T) {
	if got := (calendar.Month{Year: 2024, Month: time.January}).Prev(); got != (calendar.Month{Year: 2023, Month: time.December}) {
		t.Fatalf("Prev(2024-01) = %v", got)
	}
	if got := (calendar.Month{Year: 2024, Month: time.December}).Next(); got != (calendar.Month{Year: 2025, Month: time.January}) {
		t.Fatalf("Next(2024-12) = %v", got)
	}
}

func TestLayoutMarksRemindersAndToday(t *testing.T) {
	month := calendar.Month{Year: 2025, Month: time.March}
	reminders := []model.Reminder{
		oneTime(1, "dentist", day(2025, time.March, 10, 14, 30)),
		oneTime(2, "late one", day(2025, time.March, 10, 23, 59)),
		oneTime(3, "elsewhere", day(2025, time.April, 2, 9, 0)),
	}
	cells := calendar.Layout(month, reminders, day(2025, time.March, 15, 11, 5))

	var marked, today []int
	for _, c := range cells {
		if c.Empty {
			continue
		}
		if c.HasReminders {
			marked = append(marked, c.Day)
		}
		if c.Today {
			today = append(today, c.Day)
		}
	}
	if len(marked) != 1 || marked[0] != 10 {
		t.Fatalf("marked days = %v, want [10]", marked)
	}
	if len(today) != 1 || today[0] != 15 {
		t.Fatalf("today days = %v, want [15]", today)
	}
}

func TestLayoutDateKeys(t *testing.T) {
	cells := calendar.Layout(calendar.Month{Year: 2025, Month: time.March}, nil, day(2000, 1, 1, 0, 0))
	for _, c := range cells {
		if c.Empty {
			continue
		}
		if c.Day == 9 && c.DateKey != "2025-03-09" {
			t.Fatalf("day 9 has key %q", c.DateKey)
		}
	}
}

func TestRemindersOnPreservesSourceOrder(t *testing.T) {
	// Deliberately not time-sorted: the aggregator must not reorder.
	reminders := []model.Reminder{
		oneTime(5, "evening", day(2025, time.March, 10, 20, 0)),
		oneTime(6, "morning", day(2025, time.March, 10, 8, 0)),
		oneTime(7, "other day", day(2025, time.March, 11, 8, 0)),
		oneTime(8, "noon", day(2025, time.March, 10, 12, 0)),
	}

	got := calendar.RemindersOn("2025-03-10", reminders)
	wantIDs := []int64{5, 6, 8}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d reminders, want %d", len(got), len(wantIDs))
	}
	for i, r := range got {
		if r.ID != wantIDs[i] {
			t.Fatalf("position %d has id %d, want %d", i, r.ID, wantIDs[i])
		}
	}
}

func TestRemindersOnEmptyDay(t *testing.T) {
	if got := calendar.RemindersOn("2025-03-10", nil); len(got) != 0 {
		t.Fatalf("got %d reminders for empty input", len(got))
	}
}

func TestMonthLabel(t *testing.T) {
	if got := (calendar.Month{Year: 2025, Month: time.March}).Label(); got != "March 2025" {
		t.Fatalf("Label = %q", got)
	}
}
