/*
handlers.go - HTTP API handlers for the league operations system

PURPOSE:
  Exposes the scheduling and payroll engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Users:
    GET    /api/users                     List users
    POST   /api/users                     Create user
    GET    /api/users/{id}                Get user
    GET    /api/users/{id}/stubs          Pay stub history
    GET    /api/users/{id}/reimbursements Claim history

  Events:
    GET    /api/events                    List event templates
    POST   /api/events                    Create event
    GET    /api/events/{id}               Get event
    PUT    /api/events/{id}               Update event
    POST   /api/events/{id}/generate      Generate upcoming occurrences

  Occurrences:
    GET    /api/occurrences               List (scope=future|past|available)
    GET    /api/occurrences/{id}          Get with derived flags
    POST   /api/occurrences/{id}/complete Record outcome + derive payment
    POST   /api/occurrences/{id}/request-off  Release for pickup
    POST   /api/occurrences/{id}/pick-up      Claim a released occurrence

  Payroll:
    GET    /api/stubs/{id}                Get pay stub
    POST   /api/stubs/{id}/mark-paid      Lock stub, cascade paid
    POST   /api/payroll/salary-payments   Upsert salary payment
    POST   /api/payroll/occurrence-payments  Upsert occurrence payment
    POST   /api/payroll/reimbursements    Upsert expense claim
    GET    /api/config                    Operational constants

IDENTITY:
  The acting user comes from the X-User-ID header. There is no session
  layer here; an upstream gateway is expected to authenticate and set the
  header. Requests without it get 401 on the endpoints that need an actor.

ERROR HANDLING:
  - 400: Structural validation (validator tags) and domain field errors
  - 401: Missing X-User-ID on actor endpoints
  - 404: Unknown resource, and any failed handoff/completion gate. The
         gates deliberately collapse to 404 so a caller cannot distinguish
         "not yours" from "does not exist".
  - 500: Internal errors

REQUEST FLOW (occurrence completion):
  1. schedule.Service.CompleteOccurrence validates and persists the outcome
  2. The handler snapshots the occurrence and hands it to the payroll
     engine, which upserts the host's payment
  3. FinalizeStubs recomputes every stub the upsert reported as stale
  The payroll phase is explicit orchestration: the schedule core never
  calls into payroll behind the caller's back.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/calendar"
	"github.com/quizworks/league-engine/payroll"
	"github.com/quizworks/league-engine/schedule"
	"github.com/quizworks/league-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Schedule *schedule.Service
	Payroll  *payroll.Engine

	validate *validator.Validate
	now      func() time.Time
}

// NewHandler creates a new handler wired to the store and both engines.
func NewHandler(store *sqlite.Store, sched *schedule.Service, pay *payroll.Engine) *Handler {
	return &Handler{
		Store:    store,
		Schedule: sched,
		Payroll:  pay,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler clock. Tests only.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// actorID extracts the acting user from the identity header.
func actorID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// decodeAndValidate decodes the JSON body into dst and runs the validator
// tags. Returns false after writing the error response.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser creates a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	u := accounts.User{
		ID:                uuid.NewString(),
		Username:          req.Username,
		Email:             req.Email,
		IsRegionalManager: req.IsRegionalManager,
		IsHost:            req.IsHost,
		IsVenueManager:    req.IsVenueManager,
	}
	if err := u.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.SaveUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*u))
}

// CreateVenue creates a new venue.
func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req CreateVenueRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	v := accounts.Venue{
		ID:    uuid.NewString(),
		Name:  req.Name,
		City:  req.City,
		State: req.State,
	}
	if err := h.Store.SaveVenue(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create venue", err)
		return
	}
	writeJSON(w, http.StatusCreated, VenueDTO(v))
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns all event templates.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEvent returns a single event.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get event", err)
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "Event not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(*e))
}

// CreateEvent creates a new event template.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, "")
}

// UpdateEvent rewrites an existing event template.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) saveEvent(w http.ResponseWriter, r *http.Request, id string) {
	var req SaveEventRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	day, err := calendar.ParseDay(req.Day)
	if err != nil {
		writeDomainError(w, accounts.FieldErrors{"day": "please specify the day of the week"})
		return
	}

	e := schedule.NewEvent(req.VenueID, req.HostID, day)
	e.ID = id
	if id != "" {
		existing, err := h.Store.GetEvent(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get event", err)
			return
		}
		if existing == nil {
			writeError(w, http.StatusNotFound, "Event not found", nil)
			return
		}
		// A rewrite keeps the persisted rate curve and status unless the
		// request says otherwise.
		e.Rates = existing.Rates
		e.Status = existing.Status
	}
	if req.BaseTeams != nil {
		e.Rates.BaseTeams = *req.BaseTeams
	}
	if req.BaseRate != "" {
		if e.Rates.BaseRate, err = decimal.NewFromString(req.BaseRate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid base_rate", err)
			return
		}
	}
	if req.IncrementalTeams != nil {
		e.Rates.IncrementalTeams = *req.IncrementalTeams
	}
	if req.IncrementalRate != "" {
		if e.Rates.IncrementalRate, err = decimal.NewFromString(req.IncrementalRate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid incremental_rate", err)
			return
		}
	}
	if req.Time != "" {
		t, err := calendar.ParseClockTime(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time format (use HH:MM)", err)
			return
		}
		e.Time = t
	}
	if e.StartDate, err = parseDatePtr(req.StartDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	if e.EndDate, err = parseDatePtr(req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}
	e.FirstPlacePrize = req.FirstPlacePrize
	e.SecondPlacePrize = req.SecondPlacePrize
	e.ThirdPlacePrize = req.ThirdPlacePrize
	e.AdditionalPrizeInfo = req.AdditionalPrizeInfo
	e.Private = req.Private
	e.RequestFutureRestart = req.RequestFutureRestart

	if err := h.Schedule.SaveEvent(r.Context(), &e); err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, toEventDTO(e))
}

// GenerateOccurrences materializes the event's upcoming occurrence rows.
func (h *Handler) GenerateOccurrences(w http.ResponseWriter, r *http.Request) {
	created, err := h.Schedule.GenerateOccurrences(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := h.now()
	dtos := make([]OccurrenceDTO, len(created))
	for i, o := range created {
		dtos[i] = toOccurrenceDTO(o, nil, now)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// OCCURRENCE HANDLERS
// =============================================================================

// ListOccurrences returns occurrences, scoped by query parameters:
//
//	scope=future     upcoming for the acting host (default)
//	scope=past       completed/passed for the acting host, newest first
//	scope=available  released occurrences any host may pick up
//	event_id=...     all occurrences of one event
func (h *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		occurrences []schedule.Occurrence
		err         error
	)
	if eventID := r.URL.Query().Get("event_id"); eventID != "" {
		occurrences, err = h.Store.ListOccurrences(ctx, schedule.OccurrenceFilter{EventID: eventID})
	} else {
		actor := actorID(r)
		switch scope := r.URL.Query().Get("scope"); scope {
		case "available":
			occurrences, err = h.Schedule.AvailableOccurrences(ctx)
		case "past":
			if actor == "" {
				writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
				return
			}
			occurrences, err = h.Schedule.PastOccurrences(ctx, actor)
		default:
			if actor == "" {
				writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
				return
			}
			occurrences, err = h.Schedule.FutureOccurrences(ctx, actor)
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list occurrences", err)
		return
	}

	now := h.now()
	dtos := make([]OccurrenceDTO, len(occurrences))
	for i, o := range occurrences {
		dtos[i] = toOccurrenceDTO(o, nil, now)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOccurrence returns a single occurrence with derived flags, including
// the divergence flags against its parent event.
func (h *Handler) GetOccurrence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.Store.GetOccurrence(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get occurrence", err)
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "Occurrence not found", nil)
		return
	}

	var parent *schedule.Event
	if o.EventID != "" {
		parent, err = h.Store.GetEvent(ctx, o.EventID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get event", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTO(*o, parent, h.now()))
}

// CompleteOccurrence records the outcome of a past occurrence and derives
// the host's payment from it.
func (h *Handler) CompleteOccurrence(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	if actor == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	var req CompleteOccurrenceRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	update := schedule.OccurrenceUpdate{
		Status:             schedule.OccurrenceStatus(req.Status),
		CancellationReason: schedule.CancellationReason(req.CancellationReason),
		NumberOfTeams:      req.NumberOfTeams,
		Scoresheet:         req.Scoresheet,
		Notes:              req.Notes,
	}
	var err error
	if update.TimeStarted, err = parseClock(req.TimeStarted); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time_started format (use HH:MM)", err)
		return
	}
	if update.TimeEnded, err = parseClock(req.TimeEnded); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time_ended format (use HH:MM)", err)
		return
	}

	ctx := r.Context()
	occ, err := h.Schedule.CompleteOccurrence(ctx, chi.URLParam(r, "id"), actor, update)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.deriveOccurrencePayment(r, occ); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to derive payment", err)
		return
	}

	var parent *schedule.Event
	if occ.EventID != "" {
		parent, _ = h.Store.GetEvent(ctx, occ.EventID)
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTO(*occ, parent, h.now()))
}

// deriveOccurrencePayment runs the payroll phase of a completion: snapshot
// the occurrence, upsert the host's payment, recompute the stale stubs.
func (h *Handler) deriveOccurrencePayment(r *http.Request, occ *schedule.Occurrence) error {
	ctx := r.Context()

	info, err := h.occurrenceSnapshot(ctx, occ)
	if err != nil {
		return err
	}

	// Reuse the existing payment row when the occurrence is re-completed.
	op := &payroll.OccurrencePayment{}
	if existing, err := h.Store.FindOccurrencePayment(ctx, occ.ID); err != nil {
		return err
	} else if existing != nil {
		op = existing
	}

	stubs, err := h.Payroll.UpsertOccurrencePayment(ctx, op, info)
	if err != nil {
		return err
	}
	return h.Payroll.FinalizeStubs(ctx, stubs)
}

// occurrenceSnapshot captures the payroll-relevant facts of an occurrence,
// resolving Private from the parent event when one exists.
func (h *Handler) occurrenceSnapshot(ctx context.Context, occ *schedule.Occurrence) (payroll.OccurrenceInfo, error) {
	private := false
	if occ.EventID != "" {
		parent, err := h.Store.GetEvent(ctx, occ.EventID)
		if err != nil {
			return payroll.OccurrenceInfo{}, err
		}
		if parent != nil {
			private = parent.Private
		}
	}

	teams := 0
	if occ.NumberOfTeams != nil {
		teams = *occ.NumberOfTeams
	}
	return payroll.OccurrenceInfo{
		ID:            occ.ID,
		HostID:        occ.HostID,
		NumberOfTeams: teams,
		Complete:      occ.IsComplete(),
		Private:       private,
	}, nil
}

// RequestOff releases the actor's future occurrence for pickup.
func (h *Handler) RequestOff(w http.ResponseWriter, r *http.Request) {
	h.handoff(w, r, h.Schedule.RequestOff)
}

// PickUp claims a released occurrence for the actor.
func (h *Handler) PickUp(w http.ResponseWriter, r *http.Request) {
	h.handoff(w, r, h.Schedule.PickUp)
}

func (h *Handler) handoff(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, occurrenceID, actorID string) (*schedule.Occurrence, error)) {

	actor := actorID(r)
	if actor == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	occ, err := op(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTO(*occ, nil, h.now()))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// ListPayStubs returns a user's stub history. scope=current lists upcoming
// paydays ascending, scope=past lists settled paydays newest first, and
// pay_date=YYYY-MM-DD pins one payday exactly.
func (h *Handler) ListPayStubs(w http.ResponseWriter, r *http.Request) {
	f := payroll.StubFilter{UserID: chi.URLParam(r, "id")}
	switch scope := r.URL.Query().Get("scope"); scope {
	case "":
	case "current":
		// Today's payday has already settled; current starts tomorrow.
		from := calendar.Midnight(h.now()).AddDate(0, 0, 1)
		f.From = &from
	case "past":
		to := calendar.Midnight(h.now())
		f.To = &to
		f.Descending = true
	default:
		writeError(w, http.StatusBadRequest, "Unknown scope (use current or past)", nil)
		return
	}
	if pd := r.URL.Query().Get("pay_date"); pd != "" {
		d, err := time.Parse(dateLayout, pd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid pay_date format (use YYYY-MM-DD)", err)
			return
		}
		f.From, f.To = &d, &d
		f.Descending = false
	}

	stubs, err := h.Store.ListPayStubs(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pay stubs", err)
		return
	}

	dtos := make([]PayStubDTO, len(stubs))
	for i, stub := range stubs {
		dtos[i] = toPayStubDTO(stub)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayStub returns a single stub.
func (h *Handler) GetPayStub(w http.ResponseWriter, r *http.Request) {
	stub, err := h.Store.GetPayStub(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get pay stub", err)
		return
	}
	if stub == nil {
		writeError(w, http.StatusNotFound, "Pay stub not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPayStubDTO(*stub))
}

// MarkStubPaid locks a stub and cascades the paid flag to its payables.
func (h *Handler) MarkStubPaid(w http.ResponseWriter, r *http.Request) {
	stub, err := h.Payroll.MarkStubPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayStubDTO(*stub))
}

// UpsertSalaryPayment creates or edits a manager's weekly salary payment.
func (h *Handler) UpsertSalaryPayment(w http.ResponseWriter, r *http.Request) {
	var req UpsertSalaryPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	weekStart, err := time.Parse(dateLayout, req.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_start format (use YYYY-MM-DD)", err)
		return
	}
	weekEnd, err := time.Parse(dateLayout, req.WeekEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_end format (use YYYY-MM-DD)", err)
		return
	}

	sp := &payroll.SalaryPayment{
		ID:        req.ID,
		UserID:    req.UserID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	}

	ctx := r.Context()
	stubs, err := h.Payroll.UpsertSalaryPayment(ctx, sp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Payroll.FinalizeStubs(ctx, stubs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to recompute pay stubs", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryPaymentDTO(*sp))
}

// ListSalaryPayments returns a user's salary payments.
func (h *Handler) ListSalaryPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListSalaryPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list salary payments", err)
		return
	}

	dtos := make([]SalaryPaymentDTO, len(payments))
	for i, sp := range payments {
		dtos[i] = toSalaryPaymentDTO(sp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListOccurrencePayments returns a user's occurrence payments.
func (h *Handler) ListOccurrencePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListOccurrencePayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list occurrence payments", err)
		return
	}

	dtos := make([]OccurrencePaymentDTO, len(payments))
	for i, op := range payments {
		dtos[i] = toOccurrencePaymentDTO(op)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertOccurrencePayment creates or edits an occurrence payment directly.
// The usual path is completion-driven; this endpoint exists for corrections,
// which keep the manually entered amount instead of being repriced.
func (h *Handler) UpsertOccurrencePayment(w http.ResponseWriter, r *http.Request) {
	var req UpsertOccurrencePaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	occ, err := h.Store.GetOccurrence(ctx, req.OccurrenceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load occurrence", err)
		return
	}
	if occ == nil {
		writeError(w, http.StatusNotFound, "Occurrence not found", nil)
		return
	}

	info, err := h.occurrenceSnapshot(ctx, occ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load event", err)
		return
	}

	op := &payroll.OccurrencePayment{}
	if req.ID != "" {
		if existing, err := h.Store.GetOccurrencePayment(ctx, req.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load payment", err)
			return
		} else if existing != nil {
			op = existing
		}
	}
	if req.Type != "" {
		op.Type = payroll.PaymentType(req.Type)
	}
	if req.GrossAmount != "" {
		amount, err := decimal.NewFromString(req.GrossAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid gross_amount", err)
			return
		}
		op.GrossAmount = amount
	}

	stubs, err := h.Payroll.UpsertOccurrencePayment(ctx, op, info)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Payroll.FinalizeStubs(ctx, stubs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to recompute pay stubs", err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrencePaymentDTO(*op))
}

// UpsertReimbursement creates or edits an expense claim. The submitting
// user defaults to the actor; approval fields are honored as given (an
// approval UI gate belongs upstream).
func (h *Handler) UpsertReimbursement(w http.ResponseWriter, r *http.Request) {
	var req UpsertReimbursementRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = actorID(r)
	}
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	purchase, err := time.Parse(dateLayout, req.PurchaseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase_date format (use YYYY-MM-DD)", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	claim := &payroll.Reimbursement{
		ID:            req.ID,
		UserID:        userID,
		PurchaseDate:  purchase,
		Category:      payroll.ReimbursementCategory(req.Category),
		Description:   req.Description,
		Amount:        amount,
		Documentation: req.Documentation,
		Approved:      req.Approved,
	}
	if req.ApprovedAmount != "" {
		approved, err := decimal.NewFromString(req.ApprovedAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid approved_amount", err)
			return
		}
		claim.ApprovedAmount = approved
	}

	ctx := r.Context()
	stubs, err := h.Payroll.UpsertReimbursement(ctx, claim)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Payroll.FinalizeStubs(ctx, stubs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to recompute pay stubs", err)
		return
	}
	writeJSON(w, http.StatusOK, toReimbursementDTO(*claim))
}

// ListReimbursements returns a user's claims, newest first.
func (h *Handler) ListReimbursements(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Store.ListReimbursements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reimbursements", err)
		return
	}

	dtos := make([]ReimbursementDTO, len(claims))
	for i, claim := range claims {
		dtos[i] = toReimbursementDTO(claim)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetConfig exposes the payroll constants the server runs with.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.Payroll.Config()
	writeJSON(w, http.StatusOK, ConfigDTO{
		Payday:           cfg.Payday.String(),
		PrivateEventRate: cfg.PrivateEventRate.String(),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP statuses: field errors are
// 400 with the per-field messages, not-found (including failed gates) is
// 404, anything else is 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var fields accounts.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}
	if schedule.IsNotFound(err) || payroll.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error", err)
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
