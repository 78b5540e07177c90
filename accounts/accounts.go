/*
Package accounts holds the people side of the league: users with role flags
and the pay-rate profiles the payroll engine reads from.

User management itself (signup, profile editing, addresses) is a conventional
CRUD concern handled elsewhere; this package defines just the records and
validation the scheduling and payroll cores depend on.
*/
package accounts

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// USERS AND ROLES
// =============================================================================

// User is the authenticated identity the core operates on behalf of.
type User struct {
	ID       string
	Username string
	Email    string

	IsRegionalManager bool
	IsHost            bool
	IsVenueManager    bool
}

// Validate enforces that every user carries at least one role.
func (u User) Validate() error {
	if !u.IsRegionalManager && !u.IsHost && !u.IsVenueManager {
		return FieldErrors{"role": "please assign a role"}
	}
	return nil
}

// =============================================================================
// RATE SCHEDULE - per-event host pay inputs
// =============================================================================

// RateSchedule is the team-count pay curve: a flat BaseRate covers up to
// BaseTeams teams, then IncrementalRate is added per team over base.
// IncrementalTeams is the nominal step size; the observed pay math applies
// the increment per single team regardless, so it is carried for the record
// but not used in calculation.
type RateSchedule struct {
	BaseTeams        int
	BaseRate         decimal.Decimal
	IncrementalTeams int
	IncrementalRate  decimal.Decimal
}

// DefaultHostRates is the HostProfile default curve (5 teams / $50 / +$2).
func DefaultHostRates() RateSchedule {
	return RateSchedule{
		BaseTeams:        5,
		BaseRate:         decimal.NewFromInt(50),
		IncrementalTeams: 1,
		IncrementalRate:  decimal.NewFromInt(2),
	}
}

// DefaultEventRates is the per-event default curve (5 teams / $125 / +$5).
func DefaultEventRates() RateSchedule {
	return RateSchedule{
		BaseTeams:        5,
		BaseRate:         decimal.NewFromInt(125),
		IncrementalTeams: 1,
		IncrementalRate:  decimal.NewFromInt(5),
	}
}

// =============================================================================
// PROFILES
// =============================================================================

// HostProfile supplies the rate inputs for a host's occurrence payments.
type HostProfile struct {
	UserID   string
	Bio      string
	HasEvent bool
	Rates    RateSchedule
}

// NewHostProfile returns a profile with the default rate curve, matching the
// get-or-create behavior payroll relies on for hosts without explicit rates.
func NewHostProfile(userID string) HostProfile {
	return HostProfile{UserID: userID, HasEvent: true, Rates: DefaultHostRates()}
}

// RegionalManagerProfile supplies the weekly salary for salaried staff.
type RegionalManagerProfile struct {
	UserID    string
	Region    string
	WeeklyPay decimal.Decimal
}

// Venue is referenced by events with a weak key: deleting a venue nulls the
// reference, never the schedule rows under it.
type Venue struct {
	ID    string
	Name  string
	City  string
	State string
}

// =============================================================================
// FIELD ERRORS
// =============================================================================

// FieldErrors maps field name to a user-correctable message. All validation
// in the core reports through this shape so the API can surface errors
// field-by-field before anything persists.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	for field, msg := range fe {
		return field + ": " + msg
	}
	return "validation failed"
}
