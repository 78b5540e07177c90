/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator struct tags; handlers run them through a
  shared validator.Validate before touching domain logic. Domain rules
  (day/date coincidence, game length, per-status required fields) stay in
  the domain packages; the tags here only reject structurally broken input.

DERIVED FIELDS:
  OccurrenceDTO exposes the read-side flags (is_complete, has_passed,
  can_be_edited, is_late, is_different_*) computed at serialization time
  rather than stored, so clients never see a stale flag.

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/types.go, payroll/types.go: Domain types behind the DTOs
*/
package api

import (
	"time"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/calendar"
	"github.com/quizworks/league-engine/payroll"
	"github.com/quizworks/league-engine/schedule"
)

const dateLayout = "2006-01-02"

// =============================================================================
// ACCOUNT TYPES
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	IsRegionalManager bool   `json:"is_regional_manager"`
	IsHost            bool   `json:"is_host"`
	IsVenueManager    bool   `json:"is_venue_manager"`
}

// CreateUserRequest creates a user. At least one role flag must be set;
// the domain check in accounts.User.Validate enforces that.
type CreateUserRequest struct {
	Username          string `json:"username" validate:"required"`
	Email             string `json:"email" validate:"omitempty,email"`
	IsRegionalManager bool   `json:"is_regional_manager"`
	IsHost            bool   `json:"is_host"`
	IsVenueManager    bool   `json:"is_venue_manager"`
}

// VenueDTO represents a venue.
type VenueDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

// CreateVenueRequest creates a venue.
type CreateVenueRequest struct {
	Name  string `json:"name" validate:"required"`
	City  string `json:"city"`
	State string `json:"state"`
}

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventDTO represents a recurring event template.
type EventDTO struct {
	ID                   string  `json:"id"`
	VenueID              string  `json:"venue_id,omitempty"`
	HostID               string  `json:"host_id,omitempty"`
	Day                  string  `json:"day"`
	Time                 string  `json:"time"`
	StartDate            *string `json:"start_date,omitempty"`
	EndDate              *string `json:"end_date,omitempty"`
	FirstPlacePrize      string  `json:"first_place_prize,omitempty"`
	SecondPlacePrize     string  `json:"second_place_prize,omitempty"`
	ThirdPlacePrize      string  `json:"third_place_prize,omitempty"`
	AdditionalPrizeInfo  string  `json:"additional_prize_info,omitempty"`
	Private              bool    `json:"private"`
	BaseTeams            int     `json:"base_teams"`
	BaseRate             string  `json:"base_rate"`
	IncrementalTeams     int     `json:"incremental_teams"`
	IncrementalRate      string  `json:"incremental_rate"`
	Status               string  `json:"status"`
	RequestFutureRestart bool    `json:"request_future_restart"`
}

// SaveEventRequest creates or updates an event template.
type SaveEventRequest struct {
	VenueID              string  `json:"venue_id"`
	HostID               string  `json:"host_id"`
	Day                  string  `json:"day" validate:"required"`
	Time                 string  `json:"time"`
	StartDate            *string `json:"start_date"`
	EndDate              *string `json:"end_date"`
	FirstPlacePrize      string  `json:"first_place_prize"`
	SecondPlacePrize     string  `json:"second_place_prize"`
	ThirdPlacePrize      string  `json:"third_place_prize"`
	AdditionalPrizeInfo  string  `json:"additional_prize_info"`
	Private              bool    `json:"private"`
	BaseTeams            *int    `json:"base_teams"`
	BaseRate             string  `json:"base_rate"`
	IncrementalTeams     *int    `json:"incremental_teams"`
	IncrementalRate      string  `json:"incremental_rate"`
	RequestFutureRestart bool    `json:"request_future_restart"`
}

// =============================================================================
// OCCURRENCE TYPES
// =============================================================================

// OccurrenceDTO represents a dated occurrence with its derived read-side
// flags.
type OccurrenceDTO struct {
	ID      string `json:"id"`
	EventID string `json:"event_id,omitempty"`
	Day     string `json:"day"`
	Time    string `json:"time"`
	Date    string `json:"date"`
	HostID  string `json:"host_id,omitempty"`

	ChangeHost         bool   `json:"change_host"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	CancelledAhead     bool   `json:"cancelled_ahead"`

	TimeStarted   *string `json:"time_started,omitempty"`
	TimeEnded     *string `json:"time_ended,omitempty"`
	NumberOfTeams *int    `json:"number_of_teams,omitempty"`
	Scoresheet    string  `json:"scoresheet,omitempty"`
	Notes         string  `json:"notes,omitempty"`

	IsComplete  bool `json:"is_complete"`
	HasPassed   bool `json:"has_passed"`
	CanBeEdited bool `json:"can_be_edited"`
	IsLate      bool `json:"is_late"`

	IsDifferentTime bool `json:"is_different_time"`
	IsDifferentDay  bool `json:"is_different_day"`
	IsDifferentHost bool `json:"is_different_host"`
}

// CompleteOccurrenceRequest records the outcome of a past occurrence.
type CompleteOccurrenceRequest struct {
	Status             string `json:"status" validate:"required,oneof='Game' 'No Game'"`
	CancellationReason string `json:"cancellation_reason"`
	TimeStarted        string `json:"time_started"`
	TimeEnded          string `json:"time_ended"`
	NumberOfTeams      *int   `json:"number_of_teams"`
	Scoresheet         string `json:"scoresheet"`
	Notes              string `json:"notes"`
}

// =============================================================================
// PAYROLL TYPES
// =============================================================================

// PayStubDTO represents a pay stub with its derived totals.
type PayStubDTO struct {
	ID                       string `json:"id"`
	UserID                   string `json:"user_id"`
	PayDate                  string `json:"pay_date"`
	TotalGrossAmount         string `json:"total_gross_amount"`
	TotalReimbursementAmount string `json:"total_reimbursement_amount"`
	Paid                     bool   `json:"paid"`
}

// SalaryPaymentDTO represents a manager's weekly salary payment.
type SalaryPaymentDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	WeekStart   string `json:"week_start"`
	WeekEnd     string `json:"week_end"`
	GrossAmount string `json:"gross_amount"`
	PayStubID   string `json:"pay_stub_id,omitempty"`
	Paid        bool   `json:"paid"`
}

// UpsertSalaryPaymentRequest creates or edits a salary payment.
type UpsertSalaryPaymentRequest struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id" validate:"required"`
	WeekStart string `json:"week_start" validate:"required"`
	WeekEnd   string `json:"week_end" validate:"required"`
}

// OccurrencePaymentDTO represents a host's per-occurrence payment.
type OccurrencePaymentDTO struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	SubmissionDate string `json:"submission_date"`
	OccurrenceID   string `json:"occurrence_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	GrossAmount    string `json:"gross_amount"`
	PayStubID      string `json:"pay_stub_id,omitempty"`
	Paid           bool   `json:"paid"`
}

// UpsertOccurrencePaymentRequest creates or edits an occurrence payment
// directly. GrossAmount is only honored for corrections; regular and
// private payments are priced by the engine.
type UpsertOccurrencePaymentRequest struct {
	ID           string `json:"id"`
	OccurrenceID string `json:"occurrence_id" validate:"required"`
	Type         string `json:"type" validate:"omitempty,oneof=regular private correction"`
	GrossAmount  string `json:"gross_amount"`
}

// ReimbursementDTO represents an expense claim.
type ReimbursementDTO struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	SubmissionDate string `json:"submission_date"`
	PurchaseDate   string `json:"purchase_date,omitempty"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	Documentation  string `json:"documentation,omitempty"`
	PayStubID      string `json:"pay_stub_id,omitempty"`
	Approved       bool   `json:"approved"`
	ApprovedAmount string `json:"approved_amount"`
	Paid           bool   `json:"paid"`
}

// UpsertReimbursementRequest creates or edits an expense claim.
type UpsertReimbursementRequest struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	PurchaseDate   string `json:"purchase_date" validate:"required"`
	Category       string `json:"category" validate:"required"`
	Description    string `json:"description" validate:"required"`
	Amount         string `json:"amount" validate:"required"`
	Documentation  string `json:"documentation"`
	Approved       bool   `json:"approved"`
	ApprovedAmount string `json:"approved_amount"`
}

// ConfigDTO exposes the payroll configuration the server runs with.
type ConfigDTO struct {
	Payday           string `json:"payday"`
	PrivateEventRate string `json:"private_event_rate"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toUserDTO(u accounts.User) UserDTO {
	return UserDTO{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		IsRegionalManager: u.IsRegionalManager,
		IsHost:            u.IsHost,
		IsVenueManager:    u.IsVenueManager,
	}
}

func toEventDTO(e schedule.Event) EventDTO {
	dto := EventDTO{
		ID:                   e.ID,
		VenueID:              e.VenueID,
		HostID:               e.HostID,
		Day:                  e.Day.String(),
		Time:                 e.Time.String(),
		FirstPlacePrize:      e.FirstPlacePrize,
		SecondPlacePrize:     e.SecondPlacePrize,
		ThirdPlacePrize:      e.ThirdPlacePrize,
		AdditionalPrizeInfo:  e.AdditionalPrizeInfo,
		Private:              e.Private,
		BaseTeams:            e.Rates.BaseTeams,
		BaseRate:             e.Rates.BaseRate.String(),
		IncrementalTeams:     e.Rates.IncrementalTeams,
		IncrementalRate:      e.Rates.IncrementalRate.String(),
		Status:               string(e.Status),
		RequestFutureRestart: e.RequestFutureRestart,
	}
	if e.StartDate != nil {
		s := e.StartDate.Format(dateLayout)
		dto.StartDate = &s
	}
	if e.EndDate != nil {
		s := e.EndDate.Format(dateLayout)
		dto.EndDate = &s
	}
	return dto
}

// toOccurrenceDTO serializes an occurrence, computing the derived flags
// against now and, when the parent event is known, the divergence flags.
func toOccurrenceDTO(o schedule.Occurrence, parent *schedule.Event, now time.Time) OccurrenceDTO {
	dto := OccurrenceDTO{
		ID:                 o.ID,
		EventID:            o.EventID,
		Day:                o.Day.String(),
		Time:               o.Time.String(),
		Date:               o.Date.Format(dateLayout),
		HostID:             o.HostID,
		ChangeHost:         o.ChangeHost,
		Status:             string(o.Status),
		CancellationReason: string(o.CancellationReason),
		CancelledAhead:     o.CancelledAhead,
		NumberOfTeams:      o.NumberOfTeams,
		Scoresheet:         o.Scoresheet,
		Notes:              o.Notes,

		IsComplete:  o.IsComplete(),
		HasPassed:   o.HasPassed(now),
		CanBeEdited: o.CanBeEdited(now),
		IsLate:      o.IsLate(now),
	}
	if o.TimeStarted != nil {
		s := o.TimeStarted.String()
		dto.TimeStarted = &s
	}
	if o.TimeEnded != nil {
		s := o.TimeEnded.String()
		dto.TimeEnded = &s
	}
	if parent != nil {
		dto.IsDifferentTime = o.IsDifferentTime(*parent)
		dto.IsDifferentDay = o.IsDifferentDay(*parent)
		dto.IsDifferentHost = o.IsDifferentHost(*parent)
	}
	return dto
}

func toPayStubDTO(stub payroll.PayStub) PayStubDTO {
	return PayStubDTO{
		ID:                       stub.ID,
		UserID:                   stub.UserID,
		PayDate:                  stub.PayDate.Format(dateLayout),
		TotalGrossAmount:         stub.TotalGrossAmount.String(),
		TotalReimbursementAmount: stub.TotalReimbursementAmount.String(),
		Paid:                     stub.Paid,
	}
}

func toSalaryPaymentDTO(sp payroll.SalaryPayment) SalaryPaymentDTO {
	return SalaryPaymentDTO{
		ID:          sp.ID,
		UserID:      sp.UserID,
		WeekStart:   sp.WeekStart.Format(dateLayout),
		WeekEnd:     sp.WeekEnd.Format(dateLayout),
		GrossAmount: sp.GrossAmount.String(),
		PayStubID:   sp.PayStubID,
		Paid:        sp.Paid,
	}
}

func toOccurrencePaymentDTO(op payroll.OccurrencePayment) OccurrencePaymentDTO {
	return OccurrencePaymentDTO{
		ID:             op.ID,
		Type:           string(op.Type),
		SubmissionDate: op.SubmissionDate.Format(dateLayout),
		OccurrenceID:   op.OccurrenceID,
		UserID:         op.UserID,
		GrossAmount:    op.GrossAmount.String(),
		PayStubID:      op.PayStubID,
		Paid:           op.Paid,
	}
}

func toReimbursementDTO(r payroll.Reimbursement) ReimbursementDTO {
	dto := ReimbursementDTO{
		ID:             r.ID,
		UserID:         r.UserID,
		SubmissionDate: r.SubmissionDate.Format(dateLayout),
		Category:       string(r.Category),
		Description:    r.Description,
		Amount:         r.Amount.String(),
		Documentation:  r.Documentation,
		PayStubID:      r.PayStubID,
		Approved:       r.Approved,
		ApprovedAmount: r.ApprovedAmount.String(),
		Paid:           r.Paid,
	}
	if !r.PurchaseDate.IsZero() {
		dto.PurchaseDate = r.PurchaseDate.Format(dateLayout)
	}
	return dto
}

func parseClock(s string) (*calendar.ClockTime, error) {
	if s == "" {
		return nil, nil
	}
	c, err := calendar.ParseClockTime(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
