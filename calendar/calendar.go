/*
Package calendar provides the date arithmetic the league runs on.

PURPOSE:
  Recurring trivia events are keyed by day-of-week, payroll is keyed by a
  weekly payday, and salaries are prorated by business days. This package
  holds those pure calculations so the schedule and payroll packages never
  do their own weekday math.

KEY CONCEPTS:
  - Day: day-of-week enum, Monday=0 through Sunday=6 (recurrence rules and
    paydays are stored as Days, never as time.Weekday)
  - ClockTime: wall-clock time of day (events nominally start at 20:00)
  - NextWeekday: first date strictly after a reference that falls on a Day
  - BusinessDaysBetween: weekday count, inclusive start, exclusive end

SEE ALSO:
  - schedule: consumes Day/ClockTime for events and occurrences
  - payroll: consumes NextWeekday (payday resolution) and BusinessDaysBetween
*/
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DAY - Day of week, Monday = 0 .. Sunday = 6
// =============================================================================

type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var (
	dayAbbr = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	dayName = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

func (d Day) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayAbbr[d]
}

func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

// ParseDay accepts a three-letter abbreviation ("Mon") or a full name
// ("Monday"), case-insensitively.
func ParseDay(s string) (Day, error) {
	for i := range dayAbbr {
		if strings.EqualFold(s, dayAbbr[i]) || strings.EqualFold(s, dayName[i]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("invalid day %q", s)
}

// FromWeekday converts time.Weekday (Sunday=0) to Day (Monday=0).
func FromWeekday(wd time.Weekday) Day {
	return Day((int(wd) + 6) % 7)
}

// ToWeekday converts Day (Monday=0) to time.Weekday (Sunday=0).
func (d Day) ToWeekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// DayOf returns the Day a concrete date falls on.
func DayOf(t time.Time) Day { return FromWeekday(t.Weekday()) }

// =============================================================================
// CLOCK TIME - Wall-clock time of day
// =============================================================================

// ClockTime is a time of day with minute precision, independent of any date.
type ClockTime struct {
	Hour   int
	Minute int
}

// DefaultEventTime is the nominal trivia start time.
var DefaultEventTime = ClockTime{Hour: 20, Minute: 0}

func NewClockTime(hour, minute int) ClockTime { return ClockTime{Hour: hour, Minute: minute} }

// ParseClockTime accepts "15:04".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) Equal(other ClockTime) bool { return c.Minutes() == other.Minutes() }

func (c ClockTime) IsZero() bool { return c.Hour == 0 && c.Minute == 0 }

// Combine anchors a clock time onto a concrete date.
func Combine(date time.Time, clock ClockTime) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour, clock.Minute, 0, 0, date.Location())
}

// MinutesBetween returns end minus start in minutes. Negative spans mean the
// end time reads earlier on the clock than the start (possible midnight cross).
func MinutesBetween(start, end ClockTime) int { return end.Minutes() - start.Minutes() }

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

// Midnight truncates a time to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two times fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextWeekday returns the first date strictly after from that falls on day.
// If from is already on day, the result is a full week later. Payroll relies
// on this: a payment submitted on payday lands on the following payday.
func NextWeekday(from time.Time, day Day) time.Time {
	delta := int(day) - int(DayOf(from))
	if delta <= 0 {
		delta += 7
	}
	return Midnight(from).AddDate(0, 0, delta)
}

// BusinessDaysBetween counts weekdays in [start, end): inclusive of start,
// exclusive of end. A Monday-to-Saturday span is 5; Friday-to-Tuesday is 2.
func BusinessDaysBetween(start, end time.Time) int {
	start, end = Midnight(start), Midnight(end)
	if !start.Before(end) {
		return 0
	}
	count := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// WeeklyDatesUntil generates dates at 7-day steps from first (inclusive)
// until horizon (inclusive). Used to materialize recurring occurrences.
func WeeklyDatesUntil(first, horizon time.Time) []time.Time {
	var dates []time.Time
	for d := Midnight(first); !d.After(Midnight(horizon)); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}
