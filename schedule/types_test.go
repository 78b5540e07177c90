package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quizworks/league-engine/calendar"
	"github.com/quizworks/league-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func datePtr(t time.Time) *time.Time { return &t }

func clockPtr(h, m int) *calendar.ClockTime {
	c := calendar.NewClockTime(h, m)
	return &c
}

func intPtr(n int) *int { return &n }

// tuesdayOccurrence is a Game-night occurrence on Tuesday 2025-06-03 at 20:00.
func tuesdayOccurrence() schedule.Occurrence {
	return schedule.Occurrence{
		ID:     "occ-1",
		Day:    calendar.Tuesday,
		Time:   calendar.DefaultEventTime,
		Date:   time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC),
		HostID: "host-1",
		Status: schedule.StatusGame,
	}
}

// =============================================================================
// EVENT STATUS TESTS
// =============================================================================

func TestEvent_RecomputeStatus(t *testing.T) {
	today := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC) // a Monday

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  schedule.EventStatus
	}{
		{"future start is starting", datePtr(today.AddDate(0, 0, 7)), nil, schedule.EventStarting},
		{"past end is terminated", datePtr(today.AddDate(0, 0, -70)), datePtr(today.AddDate(0, 0, -7)), schedule.EventTerminated},
		{"end within two weeks is ending", datePtr(today.AddDate(0, 0, -70)), datePtr(today.AddDate(0, 0, 7)), schedule.EventEnding},
		{"end far out is active", datePtr(today.AddDate(0, 0, -70)), datePtr(today.AddDate(0, 0, 70)), schedule.EventActive},
		{"past start no end is active", datePtr(today.AddDate(0, 0, -7)), nil, schedule.EventActive},
		// Future start wins even with a near end date
		{"future start beats approaching end", datePtr(today.AddDate(0, 0, 3)), datePtr(today.AddDate(0, 0, 10)), schedule.EventStarting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := schedule.Event{StartDate: tt.start, EndDate: tt.end}
			e.RecomputeStatus(today)
			assert.Equal(t, tt.want, e.Status)
		})
	}
}

func TestEvent_RecomputeStatus_NoDatesKeepsStatus(t *testing.T) {
	// An event with no start/end bounds matches no branch of the chain;
	// whatever status it carries stays put.
	today := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

	e := schedule.Event{Status: schedule.EventEnding}
	e.RecomputeStatus(today)
	assert.Equal(t, schedule.EventEnding, e.Status)

	blank := schedule.Event{}
	blank.RecomputeStatus(today)
	assert.Empty(t, blank.Status)
}

func TestOccurrence_Predicates_ZoneIndependent(t *testing.T) {
	// Stored dates are naive UTC and the gates compare instants, so the
	// same moment expressed in another zone must give the same answers.
	o := tuesdayOccurrence()
	after := time.Date(2025, time.June, 3, 21, 0, 0, 0, time.UTC)
	elsewhere := after.In(time.FixedZone("UTC-8", -8*60*60))

	assert.True(t, o.HasPassed(after))
	assert.Equal(t, o.HasPassed(after), o.HasPassed(elsewhere))
	assert.Equal(t, o.IsLate(after), o.IsLate(elsewhere))
}

func TestEvent_Validate_DayDateCoincidence(t *testing.T) {
	// GIVEN: an event recurring on Tuesdays
	// WHEN: the start date is a Wednesday
	// THEN: the field error names the day the date actually falls on

	today := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	e := schedule.NewEvent("venue-1", "host-1", calendar.Tuesday)
	e.StartDate = datePtr(time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)) // Wednesday

	err := e.Validate(today)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean Wed?")
}

func TestEvent_Validate_EndBeforeStart(t *testing.T) {
	today := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	e := schedule.NewEvent("venue-1", "host-1", calendar.Tuesday)
	e.StartDate = datePtr(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))
	e.EndDate = datePtr(time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC))

	err := e.Validate(today)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "start date is later than the end date")
}

func TestEvent_Validate_RecomputesStatus(t *testing.T) {
	today := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	e := schedule.NewEvent("venue-1", "host-1", calendar.Tuesday)
	e.StartDate = datePtr(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, e.Validate(today))
	assert.Equal(t, schedule.EventStarting, e.Status)
}

// =============================================================================
// OCCURRENCE PREDICATE TESTS
// =============================================================================

func TestOccurrence_IsComplete(t *testing.T) {
	occ := tuesdayOccurrence()
	assert.False(t, occ.IsComplete(), "bare game night is incomplete")

	occ.TimeStarted = clockPtr(20, 5)
	assert.False(t, occ.IsComplete(), "needs both clock times")
	occ.TimeEnded = clockPtr(22, 0)
	assert.True(t, occ.IsComplete())

	cancelled := tuesdayOccurrence()
	cancelled.Status = schedule.StatusNoGame
	assert.False(t, cancelled.IsComplete(), "no-game needs a reason")
	cancelled.CancellationReason = schedule.ReasonHoliday
	assert.True(t, cancelled.IsComplete())
}

func TestOccurrence_HasPassed(t *testing.T) {
	occ := tuesdayOccurrence()
	start := occ.StartsAt()

	assert.False(t, occ.HasPassed(start.Add(-time.Minute)))
	assert.False(t, occ.HasPassed(start), "exactly at start has not passed")
	assert.True(t, occ.HasPassed(start.Add(time.Minute)))
}

func TestOccurrence_IsLate(t *testing.T) {
	// GIVEN: an incomplete occurrence
	// WHEN: more than 48 hours pass after its scheduled time
	// THEN: it counts as late, until the outcome is recorded

	occ := tuesdayOccurrence()
	start := occ.StartsAt()

	assert.False(t, occ.IsLate(start.Add(47*time.Hour)))
	assert.True(t, occ.IsLate(start.Add(49*time.Hour)))

	occ.TimeStarted = clockPtr(20, 0)
	occ.TimeEnded = clockPtr(22, 0)
	assert.False(t, occ.IsLate(start.Add(49*time.Hour)), "complete is never late")
}

func TestOccurrence_DivergenceFlags(t *testing.T) {
	e := schedule.NewEvent("venue-1", "host-1", calendar.Tuesday)
	occ := tuesdayOccurrence()

	assert.False(t, occ.IsDifferentTime(e))
	assert.False(t, occ.IsDifferentDay(e))
	assert.False(t, occ.IsDifferentHost(e))

	occ.Time = calendar.NewClockTime(19, 30)
	occ.Day = calendar.Wednesday
	occ.HostID = "host-2"
	assert.True(t, occ.IsDifferentTime(e))
	assert.True(t, occ.IsDifferentDay(e))
	assert.True(t, occ.IsDifferentHost(e))
}

func TestOccurrence_GameLength_WrapsMidnight(t *testing.T) {
	occ := tuesdayOccurrence()
	occ.TimeStarted = clockPtr(23, 0)
	occ.TimeEnded = clockPtr(1, 0)

	length, ok := occ.GameLength()
	assert.True(t, ok)
	assert.Equal(t, 2*time.Hour, length)
}

// =============================================================================
// OCCURRENCE UPDATE TESTS
// =============================================================================

func TestOccurrenceUpdate_Validate_GameRequiredFields(t *testing.T) {
	u := schedule.OccurrenceUpdate{Status: schedule.StatusGame}
	err := u.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	u = schedule.OccurrenceUpdate{
		Status:        schedule.StatusGame,
		TimeStarted:   clockPtr(20, 0),
		TimeEnded:     clockPtr(22, 0),
		NumberOfTeams: intPtr(8),
		Scoresheet:    "sheets/2025-06-03.pdf",
	}
	assert.NoError(t, u.Validate())
}

func TestOccurrenceUpdate_Validate_NoGameNeedsReason(t *testing.T) {
	u := schedule.OccurrenceUpdate{Status: schedule.StatusNoGame}
	assert.Error(t, u.Validate())

	u.CancellationReason = schedule.CancellationReason("Hurricane")
	assert.Error(t, u.Validate(), "unknown reason rejected")

	u.CancellationReason = schedule.ReasonInclementWeather
	assert.NoError(t, u.Validate())
}

func TestOccurrenceUpdate_Validate_GameWithReasonRejected(t *testing.T) {
	u := schedule.OccurrenceUpdate{
		Status:             schedule.StatusGame,
		TimeStarted:        clockPtr(20, 0),
		TimeEnded:          clockPtr(22, 0),
		NumberOfTeams:      intPtr(8),
		Scoresheet:         "sheet.pdf",
		CancellationReason: schedule.ReasonOther,
	}
	assert.Error(t, u.Validate())
}

func TestOccurrenceUpdate_Validate_GameLength(t *testing.T) {
	// GIVEN: recorded clock times
	// WHEN: the span exceeds three hours, including spans that cross midnight
	// THEN: the update is rejected as an outlier

	base := schedule.OccurrenceUpdate{
		Status:        schedule.StatusGame,
		NumberOfTeams: intPtr(8),
		Scoresheet:    "sheet.pdf",
	}

	ok := base
	ok.TimeStarted, ok.TimeEnded = clockPtr(20, 0), clockPtr(22, 30)
	assert.NoError(t, ok.Validate())

	tooLong := base
	tooLong.TimeStarted, tooLong.TimeEnded = clockPtr(20, 0), clockPtr(23, 30)
	assert.Error(t, tooLong.Validate())

	crossOK := base
	crossOK.TimeStarted, crossOK.TimeEnded = clockPtr(23, 0), clockPtr(1, 0)
	assert.NoError(t, crossOK.Validate(), "two hours across midnight is fine")

	crossBad := base
	crossBad.TimeStarted, crossBad.TimeEnded = clockPtr(21, 0), clockPtr(3, 0)
	assert.Error(t, crossBad.Validate(), "six hours across midnight is an outlier")
}

func TestOccurrenceUpdate_Apply_ClearsOtherBranch(t *testing.T) {
	occ := tuesdayOccurrence()
	occ.TimeStarted = clockPtr(20, 0)
	occ.TimeEnded = clockPtr(22, 0)
	occ.NumberOfTeams = intPtr(8)
	occ.Scoresheet = "sheet.pdf"

	// Re-reporting the night as cancelled wipes the game fields
	u := schedule.OccurrenceUpdate{
		Status:             schedule.StatusNoGame,
		CancellationReason: schedule.ReasonHoliday,
		Notes:              "venue closed",
	}
	u.Apply(&occ)

	assert.Equal(t, schedule.StatusNoGame, occ.Status)
	assert.Nil(t, occ.TimeStarted)
	assert.Nil(t, occ.TimeEnded)
	assert.Nil(t, occ.NumberOfTeams)
	assert.Empty(t, occ.Scoresheet)
	assert.Equal(t, schedule.ReasonHoliday, occ.CancellationReason)
	assert.Equal(t, "venue closed", occ.Notes)
}
