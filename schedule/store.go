package schedule

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Persistence interface for events and occurrences
// =============================================================================

// OccurrenceFilter narrows occurrence listings. Zero value means everything.
type OccurrenceFilter struct {
	EventID string
	HostID  string // matches occurrence host OR the parent event's host

	From *time.Time // occurrences on/after this datetime
	To   *time.Time // occurrences on/before this datetime

	AvailableOnly bool // only change_host=true rows
	Descending    bool // newest first (past listings)
}

// Store persists events and occurrences. The two Release/Claim operations
// are compare-and-set: the condition is re-verified inside the UPDATE so two
// concurrent hosts cannot both win the same slot.
type Store interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	SaveEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context) ([]Event, error)

	GetOccurrence(ctx context.Context, id string) (*Occurrence, error)
	SaveOccurrence(ctx context.Context, o *Occurrence) error
	ListOccurrences(ctx context.Context, f OccurrenceFilter) ([]Occurrence, error)

	// OccurrenceExists reports whether the event already has a row on date.
	// Used by the generator to keep occurrence creation idempotent.
	OccurrenceExists(ctx context.Context, eventID string, date time.Time) (bool, error)

	// ReleaseOccurrence sets change_host=true iff hostID still hosts the
	// occurrence, it starts after cutoff, is not cancelled ahead, and is not
	// already released. Returns false when any condition fails.
	ReleaseOccurrence(ctx context.Context, occurrenceID, hostID string, cutoff time.Time) (bool, error)

	// ClaimOccurrence reassigns the occurrence to newHostID and clears
	// change_host, iff it is still released, starts after cutoff, and is not
	// cancelled ahead. Returns false when the claim loses the race.
	ClaimOccurrence(ctx context.Context, occurrenceID, newHostID string, cutoff time.Time) (bool, error)
}
