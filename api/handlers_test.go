package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/api"
	"github.com/quizworks/league-engine/calendar"
	"github.com/quizworks/league-engine/payroll"
	"github.com/quizworks/league-engine/schedule"
	"github.com/quizworks/league-engine/store/sqlite"
)

// =============================================================================
// TEST SERVER
// =============================================================================

// apiNow anchors every clock (handler, schedule, payroll) to Monday
// 2025-06-02 12:00 UTC so date assertions are stable.
var apiNow = time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

type testServer struct {
	store  *sqlite.Store
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return apiNow }
	sched := schedule.NewService(store).WithClock(clock)
	pay := payroll.NewEngine(payroll.DefaultConfig(), store, store).WithClock(clock)
	handler := api.NewHandler(store, sched, pay).WithClock(clock)

	return &testServer{store: store, router: api.NewRouter(handler)}
}

// do runs one request through the full router. actor sets the X-User-ID
// header when non-empty.
func (ts *testServer) do(t *testing.T, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-User-ID", actor)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func (ts *testServer) seedUser(t *testing.T, u accounts.User) {
	t.Helper()
	require.NoError(t, ts.store.SaveUser(context.Background(), u))
}

func (ts *testServer) seedHost(t *testing.T, id string) {
	t.Helper()
	ts.seedUser(t, accounts.User{ID: id, Username: id, IsHost: true})
}

// seedPastOccurrence plants a Tuesday occurrence one week back, hosted by
// hostID, ready for completion.
func (ts *testServer) seedPastOccurrence(t *testing.T, hostID string) schedule.Occurrence {
	t.Helper()

	eventTime, err := calendar.ParseClockTime("20:00")
	require.NoError(t, err)
	occ := schedule.Occurrence{
		ID:     "occ-past",
		Day:    calendar.Tuesday,
		Time:   eventTime,
		Date:   time.Date(2025, time.May, 27, 0, 0, 0, 0, time.UTC),
		HostID: hostID,
	}
	require.NoError(t, ts.store.SaveOccurrence(context.Background(), &occ))
	return occ
}

func (ts *testServer) seedFutureOccurrence(t *testing.T, hostID string) schedule.Occurrence {
	t.Helper()

	eventTime, err := calendar.ParseClockTime("20:00")
	require.NoError(t, err)
	occ := schedule.Occurrence{
		ID:     "occ-future",
		Day:    calendar.Tuesday,
		Time:   eventTime,
		Date:   time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC),
		HostID: hostID,
	}
	require.NoError(t, ts.store.SaveOccurrence(context.Background(), &occ))
	return occ
}

// =============================================================================
// USER ENDPOINT TESTS
// =============================================================================

func TestCreateUser_RoundTrip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/users", "", map[string]any{
		"username": "casey",
		"email":    "casey@example.com",
		"is_host":  true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created api.UserDTO
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.IsHost)

	rec = ts.do(t, http.MethodGet, "/api/users/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched api.UserDTO
	decodeBody(t, rec, &fetched)
	assert.Equal(t, "casey", fetched.Username)
}

func TestGetUser_Unknown(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/users/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUser_RequiresUsername(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/users", "", map[string]any{"is_host": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUser_RequiresRole(t *testing.T) {
	// Role-less users are rejected by the domain check, and the response
	// carries the per-field message.
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/users", "", map[string]any{"username": "casey"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Fields, "role")
}

// =============================================================================
// EVENT ENDPOINT TESTS
// =============================================================================

func TestCreateEvent_AndGenerate(t *testing.T) {
	// GIVEN: a new Tuesday event
	// WHEN: occurrences are generated on Monday June 2
	// THEN: eight Tuesdays materialize, starting June 3

	ts := newTestServer(t)
	ts.seedHost(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/events", "", map[string]any{
		"host_id": "host-1",
		"day":     "Tue",
		"time":    "19:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event api.EventDTO
	decodeBody(t, rec, &event)
	require.NotEmpty(t, event.ID)
	assert.Equal(t, "Tue", event.Day)
	assert.Equal(t, "19:30", event.Time)

	rec = ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/generate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var created []api.OccurrenceDTO
	decodeBody(t, rec, &created)
	require.Len(t, created, 8)
	assert.Equal(t, "2025-06-03", created[0].Date)
	assert.Equal(t, "host-1", created[0].HostID)

	// Re-generation is idempotent
	rec = ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/generate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var again []api.OccurrenceDTO
	decodeBody(t, rec, &again)
	assert.Empty(t, again)

	rec = ts.do(t, http.MethodGet, "/api/occurrences?event_id="+event.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []api.OccurrenceDTO
	decodeBody(t, rec, &all)
	assert.Len(t, all, 8)
}

func TestCreateEvent_UnknownDay(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/events", "", map[string]any{"day": "Someday"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Fields, "day")
}

func TestGenerateOccurrences_UnknownEvent(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/events/nope/generate", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvent_RateScheduleRoundTrip(t *testing.T) {
	// GIVEN: an event created with a custom rate curve
	// WHEN: it is later rewritten without naming the rate fields
	// THEN: the stored curve survives the rewrite

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/events", "", map[string]any{
		"day":        "Tue",
		"time":       "19:30",
		"base_teams": 4,
		"base_rate":  "100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var e api.EventDTO
	decodeBody(t, rec, &e)
	assert.Equal(t, 4, e.BaseTeams)
	assert.Equal(t, "100", e.BaseRate)
	assert.Equal(t, "5", e.IncrementalRate, "unnamed fields keep the defaults")

	rec = ts.do(t, http.MethodPut, "/api/events/"+e.ID, "", map[string]any{
		"day":  "Tue",
		"time": "20:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &e)
	assert.Equal(t, "20:00", e.Time)
	assert.Equal(t, 4, e.BaseTeams)
	assert.Equal(t, "100", e.BaseRate)
}

func TestUpdateEvent_UnknownIs404(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPut, "/api/events/nope", "", map[string]any{"day": "Tue"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// OCCURRENCE COMPLETION TESTS
// =============================================================================

func completionBody(teams int) map[string]any {
	return map[string]any{
		"status":          "Game",
		"time_started":    "20:00",
		"time_ended":      "22:00",
		"number_of_teams": teams,
		"scoresheet":      "scores/2025-05-27.csv",
	}
}

func TestCompleteOccurrence_DerivesPayment(t *testing.T) {
	// GIVEN: a passed occurrence hosted by host-1
	// WHEN: the host records a Game outcome with 10 teams
	// THEN: the occurrence reads complete and a pay stub for the default
	//       curve amount (50 + 5*2 = 60) lands on the next Friday

	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	occ := ts.seedPastOccurrence(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/complete", "host-1", completionBody(10))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto api.OccurrenceDTO
	decodeBody(t, rec, &dto)
	assert.True(t, dto.IsComplete)
	assert.False(t, dto.IsLate, "completion clears lateness")

	rec = ts.do(t, http.MethodGet, "/api/users/host-1/stubs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stubs []api.PayStubDTO
	decodeBody(t, rec, &stubs)
	require.Len(t, stubs, 1)
	assert.Equal(t, "2025-06-06", stubs[0].PayDate)
	assert.Equal(t, "60", stubs[0].TotalGrossAmount)
	assert.False(t, stubs[0].Paid)
}

func TestCompleteOccurrence_WrongActorIs404(t *testing.T) {
	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	ts.seedHost(t, "host-2")
	occ := ts.seedPastOccurrence(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/complete", "host-2", completionBody(10))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteOccurrence_MissingActorIs401(t *testing.T) {
	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	occ := ts.seedPastOccurrence(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/complete", "", completionBody(10))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompleteOccurrence_RejectsUnknownStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	occ := ts.seedPastOccurrence(t, "host-1")

	body := completionBody(10)
	body["status"] = "Maybe"
	rec := ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/complete", "host-1", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// HOST HANDOFF TESTS
// =============================================================================

func TestHandoff_RoundTrip(t *testing.T) {
	// GIVEN: host-1's occurrence tomorrow
	// WHEN: host-1 requests off and host-2 picks it up
	// THEN: the occurrence ends up hosted by host-2 and is no longer listed
	//       as available

	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	ts.seedHost(t, "host-2")
	occ := ts.seedFutureOccurrence(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/request-off", "host-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var released api.OccurrenceDTO
	decodeBody(t, rec, &released)
	assert.True(t, released.ChangeHost)

	rec = ts.do(t, http.MethodGet, "/api/occurrences?scope=available", "host-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var available []api.OccurrenceDTO
	decodeBody(t, rec, &available)
	require.Len(t, available, 1)

	rec = ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/pick-up", "host-2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var claimed api.OccurrenceDTO
	decodeBody(t, rec, &claimed)
	assert.Equal(t, "host-2", claimed.HostID)
	assert.False(t, claimed.ChangeHost)

	rec = ts.do(t, http.MethodGet, "/api/occurrences?scope=available", "host-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var left []api.OccurrenceDTO
	decodeBody(t, rec, &left)
	assert.Empty(t, left)
}

func TestRequestOff_NotTheHostIs404(t *testing.T) {
	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	ts.seedHost(t, "host-2")
	occ := ts.seedFutureOccurrence(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/occurrences/"+occ.ID+"/request-off", "host-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOccurrences_MissingActorIs401(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/occurrences", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// PAYROLL ENDPOINT TESTS
// =============================================================================

func (ts *testServer) seedManager(t *testing.T, id string, weekly int64) {
	t.Helper()
	ts.seedUser(t, accounts.User{ID: id, Username: id, IsRegionalManager: true})
	require.NoError(t, ts.store.SaveRegionalManagerProfile(context.Background(),
		accounts.RegionalManagerProfile{UserID: id, WeeklyPay: decimal.NewFromInt(weekly)}))
}

func TestSalaryPaymentAndMarkPaid_Flow(t *testing.T) {
	// GIVEN: a manager on $950/week
	// WHEN: last week's salary is submitted and the stub is marked paid
	// THEN: the stub locks at $950 and reads paid afterwards

	ts := newTestServer(t)
	ts.seedManager(t, "mgr-1", 950)

	rec := ts.do(t, http.MethodPost, "/api/payroll/salary-payments", "mgr-1", map[string]any{
		"user_id":    "mgr-1",
		"week_start": "2025-05-26",
		"week_end":   "2025-05-31",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sp api.SalaryPaymentDTO
	decodeBody(t, rec, &sp)
	assert.Equal(t, "950", sp.GrossAmount)
	require.NotEmpty(t, sp.PayStubID)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/stubs/%s/mark-paid", sp.PayStubID), "mgr-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stub api.PayStubDTO
	decodeBody(t, rec, &stub)
	assert.True(t, stub.Paid)
	assert.Equal(t, "950", stub.TotalGrossAmount)

	rec = ts.do(t, http.MethodGet, "/api/stubs/"+sp.PayStubID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &stub)
	assert.True(t, stub.Paid)
}

func TestListPayStubs_ScopesAndPayDateFilter(t *testing.T) {
	// GIVEN: two settled paydays and one upcoming
	// WHEN: the stub history is listed by scope and by exact pay_date
	// THEN: current shows only the upcoming stub, past lists newest first

	ts := newTestServer(t)
	ts.seedManager(t, "mgr-1", 950)

	ctx := context.Background()
	for _, d := range []time.Time{
		time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC),
	} {
		_, err := ts.store.GetOrCreatePayStub(ctx, "mgr-1", d)
		require.NoError(t, err)
	}

	rec := ts.do(t, http.MethodGet, "/api/users/mgr-1/stubs?scope=current", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stubs []api.PayStubDTO
	decodeBody(t, rec, &stubs)
	require.Len(t, stubs, 1)
	assert.Equal(t, "2025-06-06", stubs[0].PayDate)

	rec = ts.do(t, http.MethodGet, "/api/users/mgr-1/stubs?scope=past", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stubs = nil
	decodeBody(t, rec, &stubs)
	require.Len(t, stubs, 2)
	assert.Equal(t, "2025-05-09", stubs[0].PayDate)
	assert.Equal(t, "2025-05-02", stubs[1].PayDate)

	rec = ts.do(t, http.MethodGet, "/api/users/mgr-1/stubs?pay_date=2025-05-09", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stubs = nil
	decodeBody(t, rec, &stubs)
	require.Len(t, stubs, 1)
	assert.Equal(t, "2025-05-09", stubs[0].PayDate)

	rec = ts.do(t, http.MethodGet, "/api/users/mgr-1/stubs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stubs = nil
	decodeBody(t, rec, &stubs)
	assert.Len(t, stubs, 3)

	rec = ts.do(t, http.MethodGet, "/api/users/mgr-1/stubs?scope=everything", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalaryPayment_NonManagerIs400(t *testing.T) {
	ts := newTestServer(t)
	ts.seedHost(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/payroll/salary-payments", "host-1", map[string]any{
		"user_id":    "host-1",
		"week_start": "2025-05-26",
		"week_end":   "2025-05-31",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Fields, "user")
}

func TestOccurrencePayment_CorrectionKeepsManualAmount(t *testing.T) {
	// GIVEN: an occurrence that was never completed
	// WHEN: a correction is filed against it, then edited
	// THEN: the manual amount sticks both times and the stub tracks it

	ts := newTestServer(t)
	ts.seedHost(t, "host-1")
	ts.seedPastOccurrence(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/payroll/occurrence-payments", "host-1", map[string]any{
		"occurrence_id": "occ-past",
		"type":          "correction",
		"gross_amount":  "25",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var op api.OccurrencePaymentDTO
	decodeBody(t, rec, &op)
	assert.Equal(t, "correction", op.Type)
	assert.Equal(t, "25", op.GrossAmount)
	require.NotEmpty(t, op.PayStubID)

	rec = ts.do(t, http.MethodGet, "/api/stubs/"+op.PayStubID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stub api.PayStubDTO
	decodeBody(t, rec, &stub)
	assert.Equal(t, "2025-06-06", stub.PayDate)
	assert.Equal(t, "25", stub.TotalGrossAmount)

	rec = ts.do(t, http.MethodPost, "/api/payroll/occurrence-payments", "host-1", map[string]any{
		"id":            op.ID,
		"occurrence_id": "occ-past",
		"gross_amount":  "40",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &op)
	assert.Equal(t, "correction", op.Type, "type survives an edit that omits it")
	assert.Equal(t, "40", op.GrossAmount)

	rec = ts.do(t, http.MethodGet, "/api/stubs/"+op.PayStubID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &stub)
	assert.Equal(t, "40", stub.TotalGrossAmount)
}

func TestOccurrencePayment_UnknownOccurrenceIs404(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/payroll/occurrence-payments", "", map[string]any{
		"occurrence_id": "nope",
		"type":          "correction",
		"gross_amount":  "10",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkStubPaid_UnknownIs404(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/stubs/nope/mark-paid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReimbursement_ApprovalFlow(t *testing.T) {
	// GIVEN: a host submits a claim without a user_id (defaults to actor)
	// WHEN: the claim is later approved
	// THEN: only then does a stub appear, carrying the approved amount

	ts := newTestServer(t)
	ts.seedHost(t, "host-1")

	rec := ts.do(t, http.MethodPost, "/api/payroll/reimbursements", "host-1", map[string]any{
		"purchase_date": "2025-05-30",
		"category":      "Game Supplies",
		"description":   "markers and answer sheets",
		"amount":        "23.50",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var claim api.ReimbursementDTO
	decodeBody(t, rec, &claim)
	assert.Equal(t, "host-1", claim.UserID)
	assert.False(t, claim.Approved)
	assert.Empty(t, claim.PayStubID)

	rec = ts.do(t, http.MethodGet, "/api/users/host-1/stubs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stubs []api.PayStubDTO
	decodeBody(t, rec, &stubs)
	assert.Empty(t, stubs, "unapproved claims create no stub")

	rec = ts.do(t, http.MethodPost, "/api/payroll/reimbursements", "host-1", map[string]any{
		"id":              claim.ID,
		"purchase_date":   "2025-05-30",
		"category":        "Game Supplies",
		"description":     "markers and answer sheets",
		"amount":          "23.50",
		"approved":        true,
		"approved_amount": "23.50",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &claim)
	assert.True(t, claim.Approved)
	require.NotEmpty(t, claim.PayStubID)

	rec = ts.do(t, http.MethodGet, "/api/users/host-1/stubs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &stubs)
	require.Len(t, stubs, 1)
	assert.Equal(t, "23.5", stubs[0].TotalReimbursementAmount)
	assert.Equal(t, "2025-06-06", stubs[0].PayDate)
}

func TestReimbursement_MissingActorIs401(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/payroll/reimbursements", "", map[string]any{
		"purchase_date": "2025-05-30",
		"category":      "Game Supplies",
		"description":   "markers",
		"amount":        "10",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// CONFIG ENDPOINT TESTS
// =============================================================================

func TestGetConfig(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg api.ConfigDTO
	decodeBody(t, rec, &cfg)
	assert.Equal(t, "Fri", cfg.Payday)
	assert.Equal(t, "150", cfg.PrivateEventRate)
}
