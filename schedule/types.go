/*
Package schedule owns the lifecycle of recurring trivia events and their
dated occurrences.

PURPOSE:
  An Event is the recurring template (venue, host, day-of-week, time, rate
  curve). An Occurrence is one concrete dated instance, carrying its own
  possibly-overridden day/time/host plus the outcome of the night: either a
  completed Game (start/end time, team count, scoresheet) or No Game with a
  cancellation reason.

KEY CONCEPTS:
  - Event status (Starting/Active/Ending/Terminated) is derived from today's
    date against the start/end bounds and recomputed on every save.
  - Occurrence predicates (IsComplete, HasPassed, CanBeEdited, IsLate) are
    never stored; they are computed against a caller-supplied clock.
  - Host handoff is a compare-and-set on the ChangeHost flag: RequestOff
    releases a future occurrence, PickUp claims it, first actor wins.

SEE ALSO:
  - validate.go: save-time validation rules
  - service.go: the operations (complete / request-off / pick-up / generate)
  - store/sqlite: persistence with the CAS guards
*/
package schedule

import (
	"time"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/calendar"
)

// =============================================================================
// EVENT - Recurring template
// =============================================================================

type EventStatus string

const (
	EventStarting   EventStatus = "starting"   // start date in the future
	EventActive     EventStatus = "active"     // running, no end in sight
	EventEnding     EventStatus = "ending"     // end date within 14 days
	EventTerminated EventStatus = "terminated" // end date has passed
)

// EndingWindow is how close an end date has to be before an event counts
// as Ending.
const EndingWindow = 14 * 24 * time.Hour

type Event struct {
	ID      string
	VenueID string
	HostID  string

	Day  calendar.Day
	Time calendar.ClockTime

	StartDate *time.Time
	EndDate   *time.Time

	FirstPlacePrize     string
	SecondPlacePrize    string
	ThirdPlacePrize     string
	AdditionalPrizeInfo string

	Private bool
	Rates   accounts.RateSchedule

	Status               EventStatus
	RequestFutureRestart bool
}

// NewEvent returns an event with the default time and rate curve.
func NewEvent(venueID, hostID string, day calendar.Day) Event {
	return Event{
		VenueID: venueID,
		HostID:  hostID,
		Day:     day,
		Time:    calendar.DefaultEventTime,
		Rates:   accounts.DefaultEventRates(),
	}
}

// RecomputeStatus derives the lifecycle status from today's date. Order
// matters: future start wins over everything, then a passed end, then an
// approaching end, then a passed start. An event with no date bounds
// keeps whatever status it already has.
func (e *Event) RecomputeStatus(today time.Time) {
	today = calendar.Midnight(today)
	switch {
	case e.StartDate != nil && e.StartDate.After(today):
		e.Status = EventStarting
	case e.EndDate != nil && e.EndDate.Before(today):
		e.Status = EventTerminated
	case e.EndDate != nil && e.EndDate.Before(today.Add(EndingWindow)):
		e.Status = EventEnding
	case e.StartDate != nil && e.StartDate.Before(today):
		e.Status = EventActive
	}
}

// =============================================================================
// OCCURRENCE - One dated instance
// =============================================================================

type OccurrenceStatus string

const (
	StatusGame   OccurrenceStatus = "Game"
	StatusNoGame OccurrenceStatus = "No Game"
)

type CancellationReason string

const (
	ReasonLowAttendance    CancellationReason = "Low/No Attendance"
	ReasonAlternateEvent   CancellationReason = "Alternate Event"
	ReasonHoliday          CancellationReason = "Holiday"
	ReasonInclementWeather CancellationReason = "Inclement Weather"
	ReasonRenovations      CancellationReason = "Renovations"
	ReasonEmergency        CancellationReason = "Emergency"
	ReasonOther            CancellationReason = "Other"
)

// ValidReason reports whether r is one of the known cancellation reasons.
func ValidReason(r CancellationReason) bool {
	switch r {
	case ReasonLowAttendance, ReasonAlternateEvent, ReasonHoliday,
		ReasonInclementWeather, ReasonRenovations, ReasonEmergency, ReasonOther:
		return true
	}
	return false
}

type Occurrence struct {
	ID      string
	EventID string

	Day  calendar.Day
	Time calendar.ClockTime
	Date time.Time

	HostID     string
	ChangeHost bool

	Status             OccurrenceStatus
	CancelledAhead     bool
	CancellationReason CancellationReason

	TimeStarted   *calendar.ClockTime
	TimeEnded     *calendar.ClockTime
	NumberOfTeams *int
	Scoresheet    string
	Notes         string
}

// StartsAt is the concrete datetime the occurrence is scheduled for.
func (o Occurrence) StartsAt() time.Time {
	return calendar.Combine(o.Date, o.Time)
}

// IsComplete reports whether the night's outcome has been recorded: a Game
// with both clock times, or a No Game with a reason.
func (o Occurrence) IsComplete() bool {
	if o.Status == StatusGame && o.TimeStarted != nil && o.TimeEnded != nil {
		return true
	}
	if o.Status == StatusNoGame && o.CancellationReason != "" {
		return true
	}
	return false
}

// HasPassed reports whether the scheduled datetime is in the past.
func (o Occurrence) HasPassed(now time.Time) bool {
	return o.StartsAt().Before(now)
}

// CanBeEdited reports whether the completion form applies: the night has
// happened and its outcome is recorded.
func (o Occurrence) CanBeEdited(now time.Time) bool {
	return o.HasPassed(now) && o.IsComplete()
}

// DataEntryGrace is how long a host has after the scheduled time before an
// incomplete occurrence counts as late.
const DataEntryGrace = 48 * time.Hour

// IsLate reports whether the occurrence is overdue for data entry.
func (o Occurrence) IsLate(now time.Time) bool {
	return !o.IsComplete() && o.StartsAt().Add(DataEntryGrace).Before(now)
}

// IsDifferentTime flags an occurrence whose time deviates from its event's.
func (o Occurrence) IsDifferentTime(e Event) bool { return !o.Time.Equal(e.Time) }

// IsDifferentDay flags an occurrence whose day deviates from its event's.
func (o Occurrence) IsDifferentDay(e Event) bool { return o.Day != e.Day }

// IsDifferentHost flags an occurrence covered by someone other than the
// event's regular host.
func (o Occurrence) IsDifferentHost(e Event) bool { return o.HostID != e.HostID }

// GameLength returns the recorded game duration. Games that run past
// midnight wrap around the clock.
func (o Occurrence) GameLength() (time.Duration, bool) {
	if o.TimeStarted == nil || o.TimeEnded == nil {
		return 0, false
	}
	minutes := calendar.MinutesBetween(*o.TimeStarted, *o.TimeEnded)
	if minutes < 0 {
		minutes += 24 * 60
	}
	return time.Duration(minutes) * time.Minute, true
}
