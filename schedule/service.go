/*
service.go - Scheduling operations

PURPOSE:
  Implements the occurrence lifecycle operations on top of the Store:
  completing a past occurrence, the request-off / pick-up handoff, and
  weekly occurrence generation.

ACCESS RULES:
  Every gate failure is reported as ErrNotFound, not a distinct forbidden
  error. From the caller's perspective an occurrence they cannot act on
  might as well not exist.

CONCURRENCY:
  RequestOff and PickUp re-verify their preconditions inside the store's
  compare-and-set UPDATE. The read-then-check here is only to produce a
  consistent error; the store decides who wins.
*/
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quizworks/league-engine/calendar"
)

// GenerationHorizon is how far ahead occurrences are materialized.
const GenerationHorizon = 8 * 7 * 24 * time.Hour

// Service wires the scheduling state machine to persistence.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService returns a service on a UTC clock. Stored dates and times are
// naive UTC, so date math has to run in the same zone.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// COMPLETION - recording the night's outcome
// =============================================================================

// CompleteOccurrence applies the host's end-of-night report. Allowed only
// for the current host, only after the scheduled time, and never on an
// occurrence that was cancelled ahead.
func (s *Service) CompleteOccurrence(ctx context.Context, occurrenceID, actorID string, u OccurrenceUpdate) (*Occurrence, error) {
	occ, err := s.store.GetOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if occ == nil || occ.HostID != actorID || !occ.HasPassed(now) || occ.CancelledAhead {
		return nil, ErrNotFound
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	u.Apply(occ)
	if err := occ.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveOccurrence(ctx, occ); err != nil {
		return nil, err
	}
	return occ, nil
}

// =============================================================================
// HOST HANDOFF
// =============================================================================

// RequestOff releases a future occurrence for pickup by another host.
func (s *Service) RequestOff(ctx context.Context, occurrenceID, actorID string) (*Occurrence, error) {
	ok, err := s.store.ReleaseOccurrence(ctx, occurrenceID, actorID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.store.GetOccurrence(ctx, occurrenceID)
}

// PickUp claims a released occurrence for the acting user. First to act
// wins; the loser's claim fails the store's compare-and-set and surfaces
// as not-found.
func (s *Service) PickUp(ctx context.Context, occurrenceID, actorID string) (*Occurrence, error) {
	ok, err := s.store.ClaimOccurrence(ctx, occurrenceID, actorID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.store.GetOccurrence(ctx, occurrenceID)
}

// =============================================================================
// EVENT SAVE + OCCURRENCE GENERATION
// =============================================================================

// SaveEvent validates, recomputes the derived status, and persists.
func (s *Service) SaveEvent(ctx context.Context, e *Event) error {
	if err := e.Validate(s.now()); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return s.store.SaveEvent(ctx, e)
}

// GenerateOccurrences materializes weekly occurrences for the event up to
// GenerationHorizon ahead, clamped to the event's start/end bounds. Dates
// that already have a row are skipped, so the generator can run daily.
func (s *Service) GenerateOccurrences(ctx context.Context, eventID string) ([]Occurrence, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	if !e.Day.Valid() || e.Status == EventTerminated {
		return nil, nil
	}

	now := s.now()
	first := nextOnOrAfter(now, e)
	horizon := now.Add(GenerationHorizon)
	if e.EndDate != nil && e.EndDate.Before(horizon) {
		horizon = *e.EndDate
	}

	var created []Occurrence
	for _, date := range weeklyDates(first, horizon) {
		exists, err := s.store.OccurrenceExists(ctx, e.ID, date)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		occ := Occurrence{
			ID:      uuid.NewString(),
			EventID: e.ID,
			Day:     e.Day,
			Time:    e.Time,
			Date:    date,
			HostID:  e.HostID,
			Status:  StatusGame,
		}
		if err := s.store.SaveOccurrence(ctx, &occ); err != nil {
			return nil, err
		}
		created = append(created, occ)
	}
	return created, nil
}

// =============================================================================
// LISTINGS
// =============================================================================

// FutureOccurrences lists upcoming occurrences, optionally for one host.
func (s *Service) FutureOccurrences(ctx context.Context, hostID string) ([]Occurrence, error) {
	from := s.now()
	return s.store.ListOccurrences(ctx, OccurrenceFilter{HostID: hostID, From: &from})
}

// PastOccurrences lists completed or missed occurrences, newest first.
func (s *Service) PastOccurrences(ctx context.Context, hostID string) ([]Occurrence, error) {
	to := s.now()
	return s.store.ListOccurrences(ctx, OccurrenceFilter{HostID: hostID, To: &to, Descending: true})
}

// AvailableOccurrences lists future slots released for pickup.
func (s *Service) AvailableOccurrences(ctx context.Context) ([]Occurrence, error) {
	from := s.now()
	return s.store.ListOccurrences(ctx, OccurrenceFilter{AvailableOnly: true, From: &from})
}

// =============================================================================
// GENERATION HELPERS
// =============================================================================

// nextOnOrAfter finds the first date to generate: the next occurrence of the
// event's weekday, pushed forward to the start date when the event has not
// begun yet.
func nextOnOrAfter(now time.Time, e *Event) time.Time {
	first := calendar.NextWeekday(now, e.Day)
	if e.StartDate != nil && first.Before(*e.StartDate) {
		// StartDate is validated to fall on e.Day, so stepping by weeks
		// from it stays on the recurrence.
		first = calendar.Midnight(*e.StartDate)
	}
	return first
}

func weeklyDates(first, horizon time.Time) []time.Time {
	return calendar.WeeklyDatesUntil(first, horizon)
}
