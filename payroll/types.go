/*
Package payroll derives pay stubs from the league's business records.

PURPOSE:
  Three independently-edited payable types (salary payments, per-occurrence
  host payments, reimbursements) funnel into one PayStub per payee per
  payday. The engine keeps the stub totals consistent with the payables
  linked to them, and freezes everything the moment a stub is marked paid.

KEY INVARIANTS:
  - A stub is keyed by (user, pay date); the pair is unique in storage.
  - total_gross_amount always equals the sum over unpaid linked salary and
    occurrence payments; total_reimbursement_amount the sum over unpaid,
    approved linked reimbursements.
  - Once a stub is paid, saves against it and its payables are no-ops.
  - A stub whose totals both compute to zero does not persist.

SEE ALSO:
  - rates.go: the pure amount calculators
  - engine.go: the save protocol and stub recompute
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/accounts"
)

// =============================================================================
// PAY STUB - Aggregation root
// =============================================================================

// PayStub groups one payee's payables for one payday. Totals are
// denormalized caches of the linked payables, maintained by RecomputeStub.
type PayStub struct {
	ID      string
	UserID  string
	PayDate time.Time

	TotalGrossAmount         decimal.Decimal
	TotalReimbursementAmount decimal.Decimal

	Paid bool
}

// Empty reports whether both totals are zero; empty stubs are deleted
// rather than saved.
func (p PayStub) Empty() bool {
	return p.TotalGrossAmount.IsZero() && p.TotalReimbursementAmount.IsZero()
}

// =============================================================================
// SALARY PAYMENT
// =============================================================================

// SalaryPayment pays a regional manager for one worked week. WeekEnd is the
// day after the last day worked (exclusive), matching SalaryPay.
type SalaryPayment struct {
	ID     string
	UserID string

	WeekStart time.Time
	WeekEnd   time.Time

	GrossAmount decimal.Decimal
	PayStubID   string
	Paid        bool
}

const maxWeekSpan = 7 * 24 * time.Hour

// Validate checks a salary payment before the engine touches it.
// isRegionalManager comes from the payee's role flags.
func (sp SalaryPayment) Validate(isRegionalManager bool) error {
	fe := accounts.FieldErrors{}

	if sp.WeekStart.IsZero() {
		fe["week_start"] = "this field is required"
	}
	if sp.WeekEnd.IsZero() {
		fe["week_end"] = "this field is required"
	}
	if sp.UserID == "" {
		fe["user"] = "this field is required"
	} else if !isRegionalManager {
		fe["user"] = "assign a user that is salaried"
	}

	if !sp.WeekStart.IsZero() && !sp.WeekEnd.IsZero() {
		if sp.WeekEnd.Before(sp.WeekStart) {
			fe["week_end"] = "week start must be before week end"
		} else if sp.WeekEnd.Sub(sp.WeekStart) > maxWeekSpan {
			fe["week_end"] = "week start and week end must be no more than 7 days apart"
		}
	}

	if len(fe) > 0 {
		return fe
	}
	return nil
}

// =============================================================================
// EVENT OCCURRENCE PAYMENT
// =============================================================================

type PaymentType string

const (
	PaymentRegular    PaymentType = "regular"
	PaymentPrivate    PaymentType = "private"
	PaymentCorrection PaymentType = "correction"
)

// OccurrencePayment pays a host for one completed occurrence. Regular
// payments are computed from the team count; private events pay the
// configured flat rate; corrections carry a manually entered amount.
type OccurrencePayment struct {
	ID   string
	Type PaymentType

	SubmissionDate time.Time
	OccurrenceID   string
	UserID         string // the payee: the occurrence's host at submission

	GrossAmount decimal.Decimal
	PayStubID   string
	Paid        bool
}

// Validate checks the payment's own fields.
func (op OccurrencePayment) Validate() error {
	fe := accounts.FieldErrors{}
	if op.OccurrenceID == "" {
		fe["event_occurrence"] = "this field is required"
	}
	switch op.Type {
	case PaymentRegular, PaymentPrivate, PaymentCorrection:
	default:
		fe["type"] = "unknown payment type"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// OccurrenceInfo is the snapshot of occurrence state the engine needs to
// price a payment. The caller loads it from the schedule store; payroll
// never reads schedule rows itself.
type OccurrenceInfo struct {
	ID            string
	HostID        string
	NumberOfTeams int
	Complete      bool
	Private       bool
}

// =============================================================================
// REIMBURSEMENT
// =============================================================================

type ReimbursementCategory string

const (
	CategoryFoodOrDrink    ReimbursementCategory = "Food or Drink"
	CategoryGameSupplies   ReimbursementCategory = "Game Supplies"
	CategoryEquipment      ReimbursementCategory = "Equipment"
	CategoryTransportation ReimbursementCategory = "Transportation"
)

// Reimbursement is an expense claim. It only counts toward a stub once
// approved with an approved amount; editing any of the claim fields forces
// re-approval and detaches it from its stub.
type Reimbursement struct {
	ID     string
	UserID string

	SubmissionDate time.Time
	PurchaseDate   time.Time

	Category      ReimbursementCategory
	Description   string
	Amount        decimal.Decimal
	Documentation string // path to the receipt; upload handling is external

	PayStubID      string
	Approved       bool
	ApprovedAmount decimal.Decimal
	Paid           bool
}

// Validate enforces that approval always carries an amount.
func (r Reimbursement) Validate() error {
	fe := accounts.FieldErrors{}
	if r.Approved && r.ApprovedAmount.IsZero() {
		fe["approved_amount"] = "this field is required"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// claimEdited compares the financially-relevant claim fields against the
// persisted row. Any change invalidates a previous approval.
func claimEdited(prior, next Reimbursement) bool {
	return !prior.PurchaseDate.Equal(next.PurchaseDate) ||
		prior.Category != next.Category ||
		prior.Description != next.Description ||
		!prior.Amount.Equal(next.Amount) ||
		prior.Documentation != next.Documentation ||
		prior.UserID != next.UserID
}
