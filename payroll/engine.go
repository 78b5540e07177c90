/*
engine.go - The payroll aggregation engine

PURPOSE:
  Implements the uniform save protocol for all three payable types and the
  pay stub recompute that keeps aggregate totals consistent.

SAVE PROTOCOL (shared by every Upsert*):
  1. A payable whose stub is already paid is immutable: the save is a silent
     no-op (logged, not raised - these saves are often cascade-triggered).
  2. Recompute the amount when the preconditions hold (occurrence complete,
     reimbursement approved, ...).
  3. Compare the financially-relevant fields against the persisted row;
     a change resets the submission date (and for reimbursements revokes
     approval and detaches the claim from its stub).
  4. Resolve the target stub via NextUnpaidPayStub and persist the payable
     with the link in place.
  5. Return the affected stub IDs. Recompute is an explicit second step,
     never a hidden side effect of the save: callers run FinalizeStubs on
     what the upsert returns.

PAYDAY RESOLUTION:
  The pay date is the next payday strictly after the reference date - a
  payment submitted ON payday lands a full week out. If the stub for that
  date is already paid, the search walks forward week by week until it finds
  or creates an unpaid stub. Payables are never attached to a locked stub.

EMPTY STUBS:
  RecomputeStub reports StubEmptied instead of deleting; the caller deletes
  explicitly (FinalizeStub does both). This keeps detached/unapproved
  reimbursements from littering the stub table.
*/
package payroll

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/calendar"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config carries the operational constants. Both are injected; nothing in
// the engine reads package-level mutable state.
type Config struct {
	// Payday is the weekday stubs are dated on.
	Payday calendar.Day

	// PrivateEventRate is the flat gross for a private event, regardless of
	// team count.
	PrivateEventRate decimal.Decimal
}

// DefaultConfig pays out on Fridays and $150 per private event.
func DefaultConfig() Config {
	return Config{
		Payday:           calendar.Friday,
		PrivateEventRate: decimal.NewFromInt(150),
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs the payroll derivation over a Store and ProfileSource.
type Engine struct {
	cfg      Config
	store    Store
	profiles ProfileSource
	now      func() time.Time
}

// NewEngine returns an engine on a UTC clock, matching the zone stored
// dates are read back in.
func NewEngine(cfg Config, store Store, profiles ProfileSource) *Engine {
	return &Engine{cfg: cfg, store: store, profiles: profiles, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the engine clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config returns the engine's operational constants.
func (e *Engine) Config() Config { return e.cfg }

// =============================================================================
// PAY STUB RESOLUTION
// =============================================================================

// NextUnpaidPayStub finds or creates the stub a payable referenced on ref
// should land on: the next payday strictly after ref, advanced week by week
// past any stub that is already paid. Creation races on (user, pay date)
// are absorbed by the store's uniqueness constraint.
func (e *Engine) NextUnpaidPayStub(ctx context.Context, userID string, ref time.Time) (*PayStub, error) {
	payDate := calendar.NextWeekday(ref, e.cfg.Payday)
	for {
		stub, err := e.store.GetOrCreatePayStub(ctx, userID, payDate)
		if err != nil {
			return nil, err
		}
		if !stub.Paid {
			return stub, nil
		}
		payDate = payDate.AddDate(0, 0, 7)
	}
}

// =============================================================================
// SALARY PAYMENTS
// =============================================================================

// UpsertSalaryPayment applies the save protocol to a salary payment and
// returns the stub IDs whose totals are now stale.
func (e *Engine) UpsertSalaryPayment(ctx context.Context, sp *SalaryPayment) ([]string, error) {
	var prior *SalaryPayment
	if sp.ID != "" {
		existing, err := e.store.GetSalaryPayment(ctx, sp.ID)
		if err != nil {
			return nil, err
		}
		prior = existing
	}
	if prior != nil && prior.Paid {
		log.Printf("payroll: salary payment %s is paid; save ignored", sp.ID)
		*sp = *prior
		return nil, nil
	}

	isRM, err := e.profiles.IsRegionalManager(ctx, sp.UserID)
	if err != nil {
		return nil, err
	}
	if err := sp.Validate(isRM); err != nil {
		return nil, err
	}

	weekly, err := e.profiles.WeeklyPay(ctx, sp.UserID)
	if err != nil {
		return nil, err
	}
	sp.GrossAmount = SalaryPay(sp.WeekStart, sp.WeekEnd, weekly)

	stub, err := e.NextUnpaidPayStub(ctx, sp.UserID, sp.WeekEnd)
	if err != nil {
		return nil, err
	}
	sp.PayStubID = stub.ID
	sp.Paid = false
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	if err := e.store.SaveSalaryPayment(ctx, sp); err != nil {
		return nil, err
	}

	return affectedStubs(stub.ID, prior), nil
}

// =============================================================================
// OCCURRENCE PAYMENTS
// =============================================================================

// UpsertOccurrencePayment applies the save protocol to a host's occurrence
// payment. The occurrence snapshot comes from the caller: payroll prices
// what the schedule reports, it does not read schedule rows.
func (e *Engine) UpsertOccurrencePayment(ctx context.Context, op *OccurrencePayment, occ OccurrenceInfo) ([]string, error) {
	var prior *OccurrencePayment
	if op.ID != "" {
		existing, err := e.store.GetOccurrencePayment(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		prior = existing
	}
	if prior != nil && prior.Paid {
		log.Printf("payroll: occurrence payment %s is paid; save ignored", op.ID)
		*op = *prior
		return nil, nil
	}

	op.OccurrenceID = occ.ID
	op.UserID = occ.HostID
	if op.Type == "" {
		op.Type = PaymentRegular
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	// Price the payment. Private overrides everything; a regular payment is
	// only priced once the occurrence is complete; corrections keep their
	// manually entered amount.
	switch {
	case occ.Private:
		op.Type = PaymentPrivate
		op.GrossAmount = e.cfg.PrivateEventRate
	case op.Type == PaymentRegular && occ.Complete:
		rates, err := e.profiles.HostRates(ctx, occ.HostID)
		if err != nil {
			return nil, err
		}
		op.GrossAmount = HostEventPay(occ.NumberOfTeams, rates)
	}

	today := calendar.Midnight(e.now())
	if prior == nil {
		op.SubmissionDate = today
	} else if !prior.GrossAmount.Equal(op.GrossAmount) {
		op.SubmissionDate = today
	} else {
		op.SubmissionDate = prior.SubmissionDate
	}

	stub, err := e.NextUnpaidPayStub(ctx, occ.HostID, op.SubmissionDate)
	if err != nil {
		return nil, err
	}
	op.PayStubID = stub.ID
	op.Paid = false
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if err := e.store.SaveOccurrencePayment(ctx, op); err != nil {
		return nil, err
	}

	return affectedStubs(stub.ID, prior), nil
}

// =============================================================================
// REIMBURSEMENTS
// =============================================================================

// UpsertReimbursement applies the save protocol to an expense claim.
// Editing any claim field on an existing row revokes approval and detaches
// it from its stub; only approved claims carry a stub link.
func (e *Engine) UpsertReimbursement(ctx context.Context, r *Reimbursement) ([]string, error) {
	var prior *Reimbursement
	if r.ID != "" {
		existing, err := e.store.GetReimbursement(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		prior = existing
	}
	if prior != nil && prior.Paid {
		log.Printf("payroll: reimbursement %s is paid; save ignored", r.ID)
		*r = *prior
		return nil, nil
	}

	today := calendar.Midnight(e.now())
	if prior == nil {
		r.SubmissionDate = today
	} else if claimEdited(*prior, *r) {
		r.Approved = false
		r.SubmissionDate = today
	} else {
		r.SubmissionDate = prior.SubmissionDate
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Paid = false

	if r.Approved {
		stub, err := e.NextUnpaidPayStub(ctx, r.UserID, r.SubmissionDate)
		if err != nil {
			return nil, err
		}
		r.PayStubID = stub.ID
		if err := e.store.SaveReimbursement(ctx, r); err != nil {
			return nil, err
		}
		return affectedStubs(stub.ID, prior), nil
	}

	// Unapproved claims carry no amount and no stub. The old stub, if any,
	// is still reported so the caller recomputes it down (possibly to
	// deletion).
	r.ApprovedAmount = decimal.Zero
	var detached string
	if prior != nil {
		detached = prior.PayStubID
	}
	r.PayStubID = ""
	if err := e.store.SaveReimbursement(ctx, r); err != nil {
		return nil, err
	}
	if detached != "" {
		return []string{detached}, nil
	}
	return nil, nil
}

// =============================================================================
// STUB RECOMPUTE
// =============================================================================

// RecomputeResult tells the caller what to do with the stub.
type RecomputeResult int

const (
	// StubUpdated: totals recomputed and persisted.
	StubUpdated RecomputeResult = iota
	// StubEmptied: both totals are zero; the stub was NOT saved and the
	// caller should delete it.
	StubEmptied
)

// RecomputeStub rebuilds the stub's denormalized totals from the payables
// currently linked to it. Recompute is idempotent: running it twice with no
// intervening payable change yields identical totals.
func (e *Engine) RecomputeStub(ctx context.Context, stubID string) (RecomputeResult, error) {
	stub, err := e.store.GetPayStub(ctx, stubID)
	if err != nil {
		return StubUpdated, err
	}
	if stub == nil {
		return StubUpdated, ErrStubNotFound
	}

	totals, err := e.store.SumStubPayables(ctx, stubID)
	if err != nil {
		return StubUpdated, err
	}
	stub.TotalGrossAmount = totals.Gross
	stub.TotalReimbursementAmount = totals.Reimbursement

	if stub.Empty() && !stub.Paid {
		return StubEmptied, nil
	}
	if err := e.store.SavePayStub(ctx, stub); err != nil {
		return StubUpdated, err
	}
	return StubUpdated, nil
}

// FinalizeStub recomputes and performs the explicit delete when the stub
// came back empty.
func (e *Engine) FinalizeStub(ctx context.Context, stubID string) (RecomputeResult, error) {
	res, err := e.RecomputeStub(ctx, stubID)
	if err != nil {
		return res, err
	}
	if res == StubEmptied {
		if err := e.store.DeletePayStub(ctx, stubID); err != nil {
			return res, err
		}
	}
	return res, nil
}

// FinalizeStubs finalizes every affected stub an upsert reported.
func (e *Engine) FinalizeStubs(ctx context.Context, stubIDs []string) error {
	for _, id := range stubIDs {
		if id == "" {
			continue
		}
		if _, err := e.FinalizeStub(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// MARK PAID
// =============================================================================

// MarkStubPaid locks a stub: totals are recomputed one last time, the stub
// is flagged paid, and paid cascades to every linked payable in the same
// store transaction. Calling it on an already-paid stub is a no-op.
func (e *Engine) MarkStubPaid(ctx context.Context, stubID string) (*PayStub, error) {
	stub, err := e.store.GetPayStub(ctx, stubID)
	if err != nil {
		return nil, err
	}
	if stub == nil {
		return nil, ErrStubNotFound
	}
	if stub.Paid {
		return stub, nil
	}

	totals, err := e.store.SumStubPayables(ctx, stubID)
	if err != nil {
		return nil, err
	}
	stub.TotalGrossAmount = totals.Gross
	stub.TotalReimbursementAmount = totals.Reimbursement
	stub.Paid = true

	if err := e.store.MarkStubPaid(ctx, stub); err != nil {
		return nil, err
	}
	return stub, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// stubLinked is implemented by all three payable types.
type stubLinked interface{ stubID() string }

func (sp *SalaryPayment) stubID() string {
	if sp == nil {
		return ""
	}
	return sp.PayStubID
}

func (op *OccurrencePayment) stubID() string {
	if op == nil {
		return ""
	}
	return op.PayStubID
}

func (r *Reimbursement) stubID() string {
	if r == nil {
		return ""
	}
	return r.PayStubID
}

// affectedStubs returns the new stub plus the prior row's stub when the
// payable moved between stubs; both need a recompute.
func affectedStubs(newStubID string, prior stubLinked) []string {
	ids := []string{newStubID}
	if old := prior.stubID(); old != "" && old != newStubID {
		ids = append(ids, old)
	}
	return ids
}
