package schedule

import (
	"fmt"
	"time"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/calendar"
)

// =============================================================================
// DAY / DATE COINCIDENCE
// =============================================================================

// checkDayAndDate verifies a concrete date falls on the stored day of week.
// The message names the correct abbreviation, since the usual mistake is a
// typo in the date, not the day.
func checkDayAndDate(day calendar.Day, date time.Time, field string, fe accounts.FieldErrors) {
	if !day.Valid() {
		fe[field] = "please specify the day of the week"
		return
	}
	if actual := calendar.DayOf(date); actual != day {
		fe[field] = fmt.Sprintf(
			"the %s and day of the week do not coincide. Did you mean %s?",
			field, actual)
	}
}

// =============================================================================
// EVENT VALIDATION
// =============================================================================

// Validate checks an event before save and recomputes its derived status.
// Returns nil or accounts.FieldErrors.
func (e *Event) Validate(today time.Time) error {
	fe := accounts.FieldErrors{}

	if e.StartDate != nil {
		checkDayAndDate(e.Day, *e.StartDate, "start date", fe)
	}
	if e.EndDate != nil {
		checkDayAndDate(e.Day, *e.EndDate, "end date", fe)
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		fe["end date"] = "the start date is later than the end date. Please correct."
	}

	if len(fe) > 0 {
		return fe
	}

	e.RecomputeStatus(today)
	return nil
}

// =============================================================================
// OCCURRENCE VALIDATION
// =============================================================================

// Validate checks the cross-field invariants of an occurrence row.
func (o *Occurrence) Validate() error {
	fe := accounts.FieldErrors{}

	if !o.Date.IsZero() {
		checkDayAndDate(o.Day, o.Date, "date", fe)
	}
	if o.CancelledAhead && o.CancellationReason == "" {
		fe["cancellation_reason"] = "please put a reason for cancelling ahead"
	}
	if o.Status == StatusNoGame && o.CancellationReason == "" {
		fe["cancellation_reason"] = "please put a reason for cancelling"
	}
	if o.Status == StatusGame && o.CancellationReason != "" {
		fe["cancellation_reason"] = "you have a cancellation reason when there was a game. Please correct."
	}
	if o.CancellationReason != "" && !ValidReason(o.CancellationReason) {
		fe["cancellation_reason"] = "unknown cancellation reason"
	}

	if len(fe) > 0 {
		return fe
	}
	return nil
}

// =============================================================================
// OCCURRENCE UPDATE - the completion form
// =============================================================================

// MaxGameLength rejects outlier time entries; trivia runs about two hours.
const MaxGameLength = 3 * time.Hour

// OccurrenceUpdate carries the host's end-of-night report. Exactly one of
// the Game field set or the No Game field set survives Apply; the other
// branch is cleared.
type OccurrenceUpdate struct {
	Status             OccurrenceStatus
	CancellationReason CancellationReason
	TimeStarted        *calendar.ClockTime
	TimeEnded          *calendar.ClockTime
	NumberOfTeams      *int
	Scoresheet         string
	Notes              string
}

// Validate enforces the per-status required fields and the game-length
// outlier check.
func (u OccurrenceUpdate) Validate() error {
	fe := accounts.FieldErrors{}

	switch u.Status {
	case StatusGame:
		if u.TimeStarted == nil {
			fe["time_started"] = "this field is required"
		}
		if u.TimeEnded == nil {
			fe["time_ended"] = "this field is required"
		}
		if u.NumberOfTeams == nil {
			fe["number_of_teams"] = "this field is required"
		}
		if u.Scoresheet == "" {
			fe["scoresheet"] = "this field is required"
		}
		if u.CancellationReason != "" {
			fe["cancellation_reason"] = "you have a cancellation reason when there was a game. Please correct."
		}
	case StatusNoGame:
		if u.CancellationReason == "" {
			fe["cancellation_reason"] = "this field is required"
		} else if !ValidReason(u.CancellationReason) {
			fe["cancellation_reason"] = "unknown cancellation reason"
		}
	default:
		fe["status"] = "status must be Game or No Game"
	}

	if u.TimeStarted != nil && u.TimeEnded != nil {
		// Normalize a crossed-midnight span before the length check, so a
		// 9pm-11pm game passes and a 9pm-3am one does not.
		minutes := calendar.MinutesBetween(*u.TimeStarted, *u.TimeEnded)
		if minutes < 0 {
			minutes += 24 * 60
		}
		if time.Duration(minutes)*time.Minute > MaxGameLength {
			fe["time_ended"] = "the duration of the game should be around 2 hours. Double check your inputted time."
		}
	}

	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Apply writes the report onto the occurrence, clearing whichever field set
// does not belong to the chosen status.
func (u OccurrenceUpdate) Apply(o *Occurrence) {
	o.Status = u.Status
	o.Notes = u.Notes

	if u.Status == StatusGame {
		o.TimeStarted = u.TimeStarted
		o.TimeEnded = u.TimeEnded
		o.NumberOfTeams = u.NumberOfTeams
		o.Scoresheet = u.Scoresheet
		o.CancellationReason = ""
	} else {
		o.TimeStarted = nil
		o.TimeEnded = nil
		o.NumberOfTeams = nil
		o.Scoresheet = ""
		o.CancellationReason = u.CancellationReason
	}
}
