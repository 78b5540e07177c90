package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/accounts"
)

// =============================================================================
// STORE - Persistence interface for stubs and payables
// =============================================================================

// StubTotals is the aggregate the store computes over a stub's linked
// payables: gross over linked salary + occurrence payments, reimbursement
// over linked approved reimbursements. Missing rows sum to zero.
type StubTotals struct {
	Gross         decimal.Decimal
	Reimbursement decimal.Decimal
}

// StubFilter narrows a stub listing. From and To bound pay_date
// inclusively; set both to the same day for an exact match.
type StubFilter struct {
	UserID     string
	From       *time.Time
	To         *time.Time
	Descending bool
}

// Store persists pay stubs and the three payable types.
//
// GetOrCreatePayStub is the one place concurrency genuinely matters: the
// (user_id, pay_date) pair carries a database uniqueness constraint, and the
// implementation must resolve a lost insert race by returning the winner's
// row rather than erroring.
type Store interface {
	GetOrCreatePayStub(ctx context.Context, userID string, payDate time.Time) (*PayStub, error)
	GetPayStub(ctx context.Context, id string) (*PayStub, error)
	SavePayStub(ctx context.Context, stub *PayStub) error
	// DeletePayStub removes an emptied stub. Payable links are severed, not
	// cascaded: rows pointing at the stub have their reference nulled.
	DeletePayStub(ctx context.Context, id string) error
	ListPayStubs(ctx context.Context, f StubFilter) ([]PayStub, error)

	GetSalaryPayment(ctx context.Context, id string) (*SalaryPayment, error)
	SaveSalaryPayment(ctx context.Context, sp *SalaryPayment) error
	ListSalaryPayments(ctx context.Context, userID string) ([]SalaryPayment, error)

	GetOccurrencePayment(ctx context.Context, id string) (*OccurrencePayment, error)
	SaveOccurrencePayment(ctx context.Context, op *OccurrencePayment) error
	ListOccurrencePayments(ctx context.Context, userID string) ([]OccurrencePayment, error)
	// FindOccurrencePayment locates the existing payment for an occurrence,
	// if any; re-submitting a night's report updates the payment in place.
	FindOccurrencePayment(ctx context.Context, occurrenceID string) (*OccurrencePayment, error)

	GetReimbursement(ctx context.Context, id string) (*Reimbursement, error)
	SaveReimbursement(ctx context.Context, r *Reimbursement) error
	ListReimbursements(ctx context.Context, userID string) ([]Reimbursement, error)

	// SumStubPayables computes the totals over rows currently linked to the
	// stub. It never re-scans the payee's other payables; linkage is the
	// save protocol's responsibility.
	SumStubPayables(ctx context.Context, stubID string) (StubTotals, error)

	// MarkStubPaid persists the stub's totals with paid=true and flips paid
	// on every linked payable, all in one database transaction. The bulk
	// update deliberately bypasses the payables' save protocol: the protocol
	// would reject the write under the very lock this call establishes.
	MarkStubPaid(ctx context.Context, stub *PayStub) error
}

// ProfileSource supplies the rate inputs the engine reads from the accounts
// side. Implemented by the sqlite store.
type ProfileSource interface {
	// HostRates returns the host's rate curve, creating the default profile
	// for hosts that never had one set.
	HostRates(ctx context.Context, userID string) (accounts.RateSchedule, error)

	// WeeklyPay returns the regional manager's weekly salary.
	// Returns ErrProfileNotFound when the user has no manager profile.
	WeeklyPay(ctx context.Context, userID string) (decimal.Decimal, error)

	// IsRegionalManager reports the payee's role flag.
	IsRegionalManager(ctx context.Context, userID string) (bool, error)
}
