// Package recurrence converts between the weekly recurrence rule carried on
// the wire (`FREQ=WEEKLY;BYDAY=MO,WE,FR`) and a structured day-of-week set.
// The codec is pure; the backend owns the derivation of concrete fire times
// from a rule.
package recurrence

import (
	"strings"

	"github.com/teambition/rrule-go"
)

const rulePrefix = "FREQ=WEEKLY"

// canonical is the fixed weekday order used both for the day checkbox list
// and for rule encoding, Monday first. Tokens come from rrule-go's weekday
// vocabulary (rrule.MO.String() == "MO", etc).
var canonical = []rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

var byToken = func() map[string]rrule.Weekday {
	m := make(map[string]rrule.Weekday, len(canonical))
	for _, d := range canonical {
		m[d.String()] = d
	}
	return m
}()

// Weekdays returns the canonical weekday order (Monday..Sunday).
func Weekdays() []rrule.Weekday {
	out := make([]rrule.Weekday, len(canonical))
	copy(out, canonical)
	return out
}

// ParseToken maps a two-letter weekday token to its weekday. ok is false
// for anything outside the canonical vocabulary.
func ParseToken(tok string) (rrule.Weekday, bool) {
	d, ok := byToken[strings.ToUpper(strings.TrimSpace(tok))]
	return d, ok
}

// DaySet is a duplicate-free set of weekdays held in canonical order.
// The zero value is the empty set.
type DaySet struct {
	days []rrule.Weekday
}

// NewDaySet builds a set from the given weekdays; duplicates and values
// outside the canonical vocabulary are dropped.
func NewDaySet(days ...rrule.Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		if !s.Contains(d) {
			s.Toggle(d)
		}
	}
	return s
}

// Contains reports membership of d.
func (s DaySet) Contains(d rrule.Weekday) bool {
	for _, have := range s.days {
		if have == d {
			return true
		}
	}
	return false
}

// Toggle flips membership of d, keeping the set in canonical order.
// Weekdays outside the canonical vocabulary are ignored.
func (s *DaySet) Toggle(d rrule.Weekday) {
	for i, have := range s.days {
		if have == d {
			s.days = append(s.days[:i], s.days[i+1:]...)
			return
		}
	}
	if _, ok := byToken[d.String()]; !ok {
		return
	}
	s.days = append(s.days, d)
	reorder(s.days)
}

func reorder(days []rrule.Weekday) {
	// Tiny fixed-size set; rebuild in canonical order in place.
	present := make(map[rrule.Weekday]bool, len(days))
	for _, d := range days {
		present[d] = true
	}
	i := 0
	for _, d := range canonical {
		if present[d] {
			days[i] = d
			i++
		}
	}
}

// Days returns the members in canonical order.
func (s DaySet) Days() []rrule.Weekday {
	out := make([]rrule.Weekday, len(s.days))
	copy(out, s.days)
	return out
}

// Len returns the number of members.
func (s DaySet) Len() int { return len(s.days) }

// Empty reports whether no weekday is selected.
func (s DaySet) Empty() bool { return len(s.days) == 0 }

// Equal reports whether both sets contain the same weekdays.
func (s DaySet) Equal(other DaySet) bool {
	if len(s.days) != len(other.days) {
		return false
	}
	for i := range s.days {
		if s.days[i] != other.days[i] {
			return false
		}
	}
	return true
}

// Decode extracts the BYDAY set from a weekly recurrence rule. Tokens that
// are not a known weekday are ignored, and a rule without a BYDAY segment
// decodes to the empty set; malformed input is never an error, mirroring
// how the stored rules are treated as best-effort display state.
func Decode(rule string) DaySet {
	var s DaySet
	for _, segment := range strings.Split(rule, ";") {
		segment = strings.TrimSpace(segment)
		rest, ok := strings.CutPrefix(strings.ToUpper(segment), "BYDAY=")
		if !ok {
			continue
		}
		for _, tok := range strings.Split(rest, ",") {
			if d, known := ParseToken(tok); known && !s.Contains(d) {
				s.Toggle(d)
			}
		}
	}
	return s
}

// Encode renders the set as a wire rule. ok is false for the empty set,
// which must never be persisted; callers reject the edit instead.
func (s DaySet) Encode() (rule string, ok bool) {
	if s.Empty() {
		return "", false
	}
	toks := make([]string, len(s.days))
	for i, d := range s.days {
		toks[i] = d.String()
	}
	return rulePrefix + ";BYDAY=" + strings.Join(toks, ","), true
}

// Validate checks that rule is a well-formed RRULE. Used as a final guard
// before submission; rules produced by Encode always pass.
func Validate(rule string) error {
	_, err := rrule.StrToROption(rule)
	return err
}
