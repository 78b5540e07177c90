/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements schedule.Store, payroll.Store, and payroll.ProfileSource in one
  Store, plus the accounts records (users, profiles, venues) the cores read
  from. The same SQL applies to PostgreSQL with minor dialect changes.

KEY TABLES:
  users, host_profiles, regional_manager_profiles, venues
  events, event_occurrences
  pay_stubs, salary_payments, event_occurrence_payments, reimbursements

INTEGRITY:
  - pay_stubs carries UNIQUE(user_id, pay_date). Duplicate stub creation
    under concurrent requests is prevented here, not caught after the fact;
    GetOrCreatePayStub resolves a lost insert race by re-reading the
    winner's row.
  - Payable and schedule foreign keys are weak (ON DELETE SET NULL):
    deleting a venue, host, or emptied pay stub nulls references and never
    cascade-deletes business records.
  - The handoff operations (ReleaseOccurrence, ClaimOccurrence) re-verify
    their preconditions inside the UPDATE's WHERE clause, so two hosts
    racing for the same slot resolve to exactly one winner.

AMOUNTS:
  Monetary columns are stored as TEXT and summed in Go with decimal to keep
  cent-exact totals; SQLite's numeric affinity never touches an amount.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/league.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - schedule/store.go: schedule interface definitions
  - payroll/store.go: payroll interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/calendar"
	"github.com/quizworks/league-engine/payroll"
	"github.com/quizworks/league-engine/schedule"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ schedule.Store        = (*Store)(nil)
	_ payroll.Store         = (*Store)(nil)
	_ payroll.ProfileSource = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Users and role flags
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		is_regional_manager INTEGER NOT NULL DEFAULT 0,
		is_host INTEGER NOT NULL DEFAULT 0,
		is_venue_manager INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS host_profiles (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		bio TEXT,
		has_event INTEGER NOT NULL DEFAULT 1,
		base_teams INTEGER NOT NULL,
		base_rate TEXT NOT NULL,
		incremental_teams INTEGER NOT NULL,
		incremental_rate TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS regional_manager_profiles (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		region TEXT,
		weekly_pay TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT,
		state TEXT
	);

	-- Recurring event templates
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		venue_id TEXT REFERENCES venues(id) ON DELETE SET NULL,
		host_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		day INTEGER NOT NULL,
		time TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		first_place_prize TEXT,
		second_place_prize TEXT,
		third_place_prize TEXT,
		additional_prize_info TEXT,
		private INTEGER NOT NULL DEFAULT 0,
		status TEXT,
		request_future_restart INTEGER NOT NULL DEFAULT 0,
		base_teams INTEGER NOT NULL,
		base_rate TEXT NOT NULL,
		incremental_teams INTEGER NOT NULL,
		incremental_rate TEXT NOT NULL
	);

	-- Dated occurrences; one row per event per date
	CREATE TABLE IF NOT EXISTS event_occurrences (
		id TEXT PRIMARY KEY,
		event_id TEXT REFERENCES events(id) ON DELETE SET NULL,
		day INTEGER NOT NULL,
		time TEXT NOT NULL,
		date TEXT NOT NULL,
		host_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		change_host INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Game',
		cancellation_reason TEXT NOT NULL DEFAULT '',
		cancelled_ahead INTEGER NOT NULL DEFAULT 0,
		time_started TEXT,
		time_ended TEXT,
		number_of_teams INTEGER,
		scoresheet TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_occurrences_event_date
		ON event_occurrences(event_id, date);
	CREATE INDEX IF NOT EXISTS idx_occurrences_date
		ON event_occurrences(date);
	CREATE INDEX IF NOT EXISTS idx_occurrences_host
		ON event_occurrences(host_id);

	-- Pay stubs: one per payee per payday.
	-- The (user_id, pay_date) uniqueness is what makes concurrent
	-- find-or-create safe.
	CREATE TABLE IF NOT EXISTS pay_stubs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		pay_date TEXT NOT NULL,
		total_gross_amount TEXT NOT NULL DEFAULT '0',
		total_reimbursement_amount TEXT NOT NULL DEFAULT '0',
		paid INTEGER NOT NULL DEFAULT 0,
		UNIQUE(user_id, pay_date)
	);

	CREATE TABLE IF NOT EXISTS salary_payments (
		id TEXT PRIMARY KEY,
		user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		week_start TEXT NOT NULL,
		week_end TEXT NOT NULL,
		gross_amount TEXT NOT NULL DEFAULT '0',
		pay_stub_id TEXT REFERENCES pay_stubs(id) ON DELETE SET NULL,
		paid INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_salary_payments_stub
		ON salary_payments(pay_stub_id);
	CREATE INDEX IF NOT EXISTS idx_salary_payments_user
		ON salary_payments(user_id, week_end);

	CREATE TABLE IF NOT EXISTS event_occurrence_payments (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL DEFAULT 'regular',
		submission_date TEXT NOT NULL,
		occurrence_id TEXT REFERENCES event_occurrences(id) ON DELETE SET NULL,
		user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		gross_amount TEXT NOT NULL DEFAULT '0',
		pay_stub_id TEXT REFERENCES pay_stubs(id) ON DELETE SET NULL,
		paid INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_occurrence_payments_stub
		ON event_occurrence_payments(pay_stub_id);
	CREATE INDEX IF NOT EXISTS idx_occurrence_payments_occurrence
		ON event_occurrence_payments(occurrence_id);

	CREATE TABLE IF NOT EXISTS reimbursements (
		id TEXT PRIMARY KEY,
		user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		submission_date TEXT NOT NULL,
		purchase_date TEXT,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL DEFAULT '0',
		documentation TEXT NOT NULL DEFAULT '',
		pay_stub_id TEXT REFERENCES pay_stubs(id) ON DELETE SET NULL,
		approved INTEGER NOT NULL DEFAULT 0,
		approved_amount TEXT NOT NULL DEFAULT '0',
		paid INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reimbursements_stub
		ON reimbursements(pay_stub_id);
	CREATE INDEX IF NOT EXISTS idx_reimbursements_user
		ON reimbursements(user_id, submission_date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS AND PROFILES
// =============================================================================

// SaveUser upserts a user record.
func (s *Store) SaveUser(ctx context.Context, u accounts.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id, username, email, is_regional_manager, is_host, is_venue_manager)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			is_regional_manager = excluded.is_regional_manager,
			is_host = excluded.is_host,
			is_venue_manager = excluded.is_venue_manager
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.IsRegionalManager, u.IsHost, u.IsVenueManager)
	return err
}

// GetUser retrieves a user by ID. Returns nil when missing.
func (s *Store) GetUser(ctx context.Context, id string) (*accounts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u accounts.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_regional_manager, is_host, is_venue_manager
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.IsRegionalManager, &u.IsHost, &u.IsVenueManager)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]accounts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, email, is_regional_manager, is_host, is_venue_manager
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []accounts.User
	for rows.Next() {
		var u accounts.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email,
			&u.IsRegionalManager, &u.IsHost, &u.IsVenueManager); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveHostProfile upserts a host's rate profile.
func (s *Store) SaveHostProfile(ctx context.Context, p accounts.HostProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveHostProfile(ctx, p)
}

func (s *Store) saveHostProfile(ctx context.Context, p accounts.HostProfile) error {
	query := `
		INSERT INTO host_profiles (user_id, bio, has_event, base_teams, base_rate, incremental_teams, incremental_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			bio = excluded.bio,
			has_event = excluded.has_event,
			base_teams = excluded.base_teams,
			base_rate = excluded.base_rate,
			incremental_teams = excluded.incremental_teams,
			incremental_rate = excluded.incremental_rate
	`
	_, err := s.db.ExecContext(ctx, query,
		p.UserID, p.Bio, p.HasEvent,
		p.Rates.BaseTeams, p.Rates.BaseRate.String(),
		p.Rates.IncrementalTeams, p.Rates.IncrementalRate.String())
	return err
}

// SaveRegionalManagerProfile upserts a manager's salary profile.
func (s *Store) SaveRegionalManagerProfile(ctx context.Context, p accounts.RegionalManagerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO regional_manager_profiles (user_id, region, weekly_pay)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			region = excluded.region,
			weekly_pay = excluded.weekly_pay
	`
	_, err := s.db.ExecContext(ctx, query, p.UserID, p.Region, p.WeeklyPay.String())
	return err
}

// SaveVenue upserts a venue.
func (s *Store) SaveVenue(ctx context.Context, v accounts.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO venues (id, name, city, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, city = excluded.city, state = excluded.state
	`
	_, err := s.db.ExecContext(ctx, query, v.ID, v.Name, v.City, v.State)
	return err
}

// GetVenue retrieves a venue by ID. Returns nil when missing.
func (s *Store) GetVenue(ctx context.Context, id string) (*accounts.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v accounts.Venue
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, city, state FROM venues WHERE id = ?", id,
	).Scan(&v.ID, &v.Name, &v.City, &v.State)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// =============================================================================
// PROFILE SOURCE (payroll.ProfileSource interface)
// =============================================================================

// HostRates returns the host's rate curve, creating the default profile on
// first use so every host can be paid.
func (s *Store) HostRates(ctx context.Context, userID string) (accounts.RateSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		r                 accounts.RateSchedule
		baseRate, incRate string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT base_teams, base_rate, incremental_teams, incremental_rate
		 FROM host_profiles WHERE user_id = ?`, userID,
	).Scan(&r.BaseTeams, &baseRate, &r.IncrementalTeams, &incRate)

	if err == sql.ErrNoRows {
		p := accounts.NewHostProfile(userID)
		if err := s.saveHostProfile(ctx, p); err != nil {
			return accounts.RateSchedule{}, err
		}
		return p.Rates, nil
	}
	if err != nil {
		return accounts.RateSchedule{}, err
	}

	r.BaseRate = mustDecimal(baseRate)
	r.IncrementalRate = mustDecimal(incRate)
	return r, nil
}

// WeeklyPay returns the manager's weekly salary.
func (s *Store) WeeklyPay(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var weekly string
	err := s.db.QueryRowContext(ctx,
		"SELECT weekly_pay FROM regional_manager_profiles WHERE user_id = ?", userID,
	).Scan(&weekly)

	if err == sql.ErrNoRows {
		return decimal.Zero, payroll.ErrProfileNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return mustDecimal(weekly), nil
}

// IsRegionalManager reports the user's role flag.
func (s *Store) IsRegionalManager(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var flag bool
	err := s.db.QueryRowContext(ctx,
		"SELECT is_regional_manager FROM users WHERE id = ?", userID,
	).Scan(&flag)

	if err == sql.ErrNoRows {
		return false, nil
	}
	return flag, err
}

// =============================================================================
// EVENT STORE (schedule.Store interface)
// =============================================================================

const eventColumns = `id, venue_id, host_id, day, time, start_date, end_date,
	first_place_prize, second_place_prize, third_place_prize, additional_prize_info,
	private, status, request_future_restart,
	base_teams, base_rate, incremental_teams, incremental_rate`

// SaveEvent upserts an event template.
func (s *Store) SaveEvent(ctx context.Context, e *schedule.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO events
		(id, venue_id, host_id, day, time, start_date, end_date,
		 first_place_prize, second_place_prize, third_place_prize, additional_prize_info,
		 private, status, request_future_restart,
		 base_teams, base_rate, incremental_teams, incremental_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			venue_id = excluded.venue_id,
			host_id = excluded.host_id,
			day = excluded.day,
			time = excluded.time,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			first_place_prize = excluded.first_place_prize,
			second_place_prize = excluded.second_place_prize,
			third_place_prize = excluded.third_place_prize,
			additional_prize_info = excluded.additional_prize_info,
			private = excluded.private,
			status = excluded.status,
			request_future_restart = excluded.request_future_restart,
			base_teams = excluded.base_teams,
			base_rate = excluded.base_rate,
			incremental_teams = excluded.incremental_teams,
			incremental_rate = excluded.incremental_rate
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, nullString(e.VenueID), nullString(e.HostID),
		int(e.Day), e.Time.String(),
		nullDate(e.StartDate), nullDate(e.EndDate),
		e.FirstPlacePrize, e.SecondPlacePrize, e.ThirdPlacePrize, e.AdditionalPrizeInfo,
		e.Private, string(e.Status), e.RequestFutureRestart,
		e.Rates.BaseTeams, e.Rates.BaseRate.String(),
		e.Rates.IncrementalTeams, e.Rates.IncrementalRate.String())
	return err
}

// GetEvent retrieves an event by ID. Returns nil when missing.
func (s *Store) GetEvent(ctx context.Context, id string) (*schedule.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEvents returns all events ordered by weekday and start time.
func (s *Store) ListEvents(ctx context.Context) ([]schedule.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events ORDER BY day, time")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []schedule.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*schedule.Event, error) {
	var (
		e                  schedule.Event
		venueID, hostID    sql.NullString
		day                int
		clock              string
		startDate, endDate sql.NullString
		status             sql.NullString
		baseRate, incRate  string
	)
	err := row.Scan(
		&e.ID, &venueID, &hostID, &day, &clock, &startDate, &endDate,
		&e.FirstPlacePrize, &e.SecondPlacePrize, &e.ThirdPlacePrize, &e.AdditionalPrizeInfo,
		&e.Private, &status, &e.RequestFutureRestart,
		&e.Rates.BaseTeams, &baseRate, &e.Rates.IncrementalTeams, &incRate,
	)
	if err != nil {
		return nil, err
	}

	e.VenueID = venueID.String
	e.HostID = hostID.String
	e.Day = calendar.Day(day)
	e.Time, _ = calendar.ParseClockTime(clock)
	e.StartDate = parseNullDate(startDate)
	e.EndDate = parseNullDate(endDate)
	e.Status = schedule.EventStatus(status.String)
	e.Rates.BaseRate = mustDecimal(baseRate)
	e.Rates.IncrementalRate = mustDecimal(incRate)
	return &e, nil
}

// =============================================================================
// OCCURRENCE STORE (schedule.Store interface)
// =============================================================================

const occurrenceColumns = `o.id, o.event_id, o.day, o.time, o.date, o.host_id,
	o.change_host, o.status, o.cancellation_reason, o.cancelled_ahead,
	o.time_started, o.time_ended, o.number_of_teams, o.scoresheet, o.notes`

// SaveOccurrence upserts an occurrence row.
func (s *Store) SaveOccurrence(ctx context.Context, o *schedule.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO event_occurrences
		(id, event_id, day, time, date, host_id, change_host, status,
		 cancellation_reason, cancelled_ahead, time_started, time_ended,
		 number_of_teams, scoresheet, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_id = excluded.event_id,
			day = excluded.day,
			time = excluded.time,
			date = excluded.date,
			host_id = excluded.host_id,
			change_host = excluded.change_host,
			status = excluded.status,
			cancellation_reason = excluded.cancellation_reason,
			cancelled_ahead = excluded.cancelled_ahead,
			time_started = excluded.time_started,
			time_ended = excluded.time_ended,
			number_of_teams = excluded.number_of_teams,
			scoresheet = excluded.scoresheet,
			notes = excluded.notes
	`
	_, err := s.db.ExecContext(ctx, query,
		o.ID, nullString(o.EventID), int(o.Day), o.Time.String(),
		o.Date.Format(dateLayout), nullString(o.HostID), o.ChangeHost,
		string(o.Status), string(o.CancellationReason), o.CancelledAhead,
		nullClock(o.TimeStarted), nullClock(o.TimeEnded),
		nullInt(o.NumberOfTeams), o.Scoresheet, o.Notes)
	return err
}

// GetOccurrence retrieves an occurrence by ID. Returns nil when missing.
func (s *Store) GetOccurrence(ctx context.Context, id string) (*schedule.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+occurrenceColumns+" FROM event_occurrences o WHERE o.id = ?", id)
	o, err := scanOccurrence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOccurrences returns occurrences matching the filter, ordered by
// date and start time.
func (s *Store) ListOccurrences(ctx context.Context, f schedule.OccurrenceFilter) ([]schedule.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if f.EventID != "" {
		where = append(where, "o.event_id = ?")
		args = append(args, f.EventID)
	}
	if f.HostID != "" {
		// A host's schedule includes occurrences they cover directly and
		// occurrences of events they regularly host.
		where = append(where, "(o.host_id = ? OR o.event_id IN (SELECT id FROM events WHERE host_id = ?))")
		args = append(args, f.HostID, f.HostID)
	}
	if f.From != nil {
		where = append(where, "(o.date || ' ' || o.time) >= ?")
		args = append(args, f.From.Format(dateLayout+" "+clockLayout))
	}
	if f.To != nil {
		where = append(where, "(o.date || ' ' || o.time) <= ?")
		args = append(args, f.To.Format(dateLayout+" "+clockLayout))
	}
	if f.AvailableOnly {
		where = append(where, "o.change_host = 1")
	}

	query := "SELECT " + occurrenceColumns + " FROM event_occurrences o"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Descending {
		query += " ORDER BY o.date DESC, o.time DESC"
	} else {
		query += " ORDER BY o.date ASC, o.time ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occurrences []schedule.Occurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, *o)
	}
	return occurrences, rows.Err()
}

// OccurrenceExists reports whether the event already has a row on date.
func (s *Store) OccurrenceExists(ctx context.Context, eventID string, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_occurrences WHERE event_id = ? AND date = ?",
		eventID, date.Format(dateLayout),
	).Scan(&count)
	return count > 0, err
}

// ReleaseOccurrence flags a future occurrence for pickup. The WHERE clause
// is the authorization check: current host, strictly future, not cancelled
// ahead, not already released.
func (s *Store) ReleaseOccurrence(ctx context.Context, occurrenceID, hostID string, cutoff time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE event_occurrences
		SET change_host = 1
		WHERE id = ? AND host_id = ? AND change_host = 0
		  AND cancelled_ahead = 0
		  AND (date || ' ' || time) > ?`,
		occurrenceID, hostID, cutoff.Format(dateLayout+" "+clockLayout))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ClaimOccurrence reassigns a released occurrence to newHostID. Compare-and-
// set on change_host: of two concurrent claims exactly one sees a row with
// change_host still 1.
func (s *Store) ClaimOccurrence(ctx context.Context, occurrenceID, newHostID string, cutoff time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE event_occurrences
		SET change_host = 0, host_id = ?
		WHERE id = ? AND change_host = 1
		  AND cancelled_ahead = 0
		  AND (date || ' ' || time) > ?`,
		newHostID, occurrenceID, cutoff.Format(dateLayout+" "+clockLayout))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanOccurrence(row rowScanner) (*schedule.Occurrence, error) {
	var (
		o               schedule.Occurrence
		eventID, hostID sql.NullString
		day             int
		clock, date     string
		status, reason  string
		started, ended  sql.NullString
		teams           sql.NullInt64
	)
	err := row.Scan(
		&o.ID, &eventID, &day, &clock, &date, &hostID,
		&o.ChangeHost, &status, &reason, &o.CancelledAhead,
		&started, &ended, &teams, &o.Scoresheet, &o.Notes,
	)
	if err != nil {
		return nil, err
	}

	o.EventID = eventID.String
	o.HostID = hostID.String
	o.Day = calendar.Day(day)
	o.Time, _ = calendar.ParseClockTime(clock)
	o.Date, _ = time.Parse(dateLayout, date)
	o.Status = schedule.OccurrenceStatus(status)
	o.CancellationReason = schedule.CancellationReason(reason)
	o.TimeStarted = parseNullClock(started)
	o.TimeEnded = parseNullClock(ended)
	if teams.Valid {
		n := int(teams.Int64)
		o.NumberOfTeams = &n
	}
	return &o, nil
}

// =============================================================================
// PAY STUB STORE (payroll.Store interface)
// =============================================================================

const stubColumns = `id, user_id, pay_date, total_gross_amount, total_reimbursement_amount, paid`

// GetOrCreatePayStub finds or creates the stub for (user, pay date). The
// insert races through the UNIQUE constraint; a loser re-reads the winner's
// row.
func (s *Store) GetOrCreatePayStub(ctx context.Context, userID string, payDate time.Time) (*payroll.PayStub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_stubs (id, user_id, pay_date)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, pay_date) DO NOTHING`,
		uuid.NewString(), userID, payDate.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+stubColumns+" FROM pay_stubs WHERE user_id = ? AND pay_date = ?",
		userID, payDate.Format(dateLayout))
	return scanStub(row)
}

// GetPayStub retrieves a stub by ID. Returns nil when missing.
func (s *Store) GetPayStub(ctx context.Context, id string) (*payroll.PayStub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+stubColumns+" FROM pay_stubs WHERE id = ?", id)
	stub, err := scanStub(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return stub, nil
}

// SavePayStub persists a stub's totals and paid flag.
func (s *Store) SavePayStub(ctx context.Context, stub *payroll.PayStub) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE pay_stubs
		SET total_gross_amount = ?, total_reimbursement_amount = ?, paid = ?
		WHERE id = ?`,
		stub.TotalGrossAmount.String(), stub.TotalReimbursementAmount.String(),
		stub.Paid, stub.ID)
	return err
}

// DeletePayStub removes an emptied stub; payable links null out via the
// weak foreign keys.
func (s *Store) DeletePayStub(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM pay_stubs WHERE id = ?", id)
	return err
}

// ListPayStubs returns stubs matching the filter, ordered by pay date.
func (s *Store) ListPayStubs(ctx context.Context, f payroll.StubFilter) ([]payroll.PayStub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"user_id = ?"}
	args := []any{f.UserID}
	if f.From != nil {
		where = append(where, "pay_date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if f.To != nil {
		where = append(where, "pay_date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}

	query := "SELECT " + stubColumns + " FROM pay_stubs WHERE " + strings.Join(where, " AND ")
	if f.Descending {
		query += " ORDER BY pay_date DESC"
	} else {
		query += " ORDER BY pay_date ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stubs []payroll.PayStub
	for rows.Next() {
		stub, err := scanStub(rows)
		if err != nil {
			return nil, err
		}
		stubs = append(stubs, *stub)
	}
	return stubs, rows.Err()
}

func scanStub(row rowScanner) (*payroll.PayStub, error) {
	var (
		stub         payroll.PayStub
		payDate      string
		gross, reimb string
	)
	err := row.Scan(&stub.ID, &stub.UserID, &payDate, &gross, &reimb, &stub.Paid)
	if err != nil {
		return nil, err
	}
	stub.PayDate, _ = time.Parse(dateLayout, payDate)
	stub.TotalGrossAmount = mustDecimal(gross)
	stub.TotalReimbursementAmount = mustDecimal(reimb)
	return &stub, nil
}

// SumStubPayables computes the stub's totals from its linked rows.
func (s *Store) SumStubPayables(ctx context.Context, stubID string) (payroll.StubTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := payroll.StubTotals{Gross: decimal.Zero, Reimbursement: decimal.Zero}

	grossQueries := []string{
		"SELECT gross_amount FROM salary_payments WHERE pay_stub_id = ?",
		"SELECT gross_amount FROM event_occurrence_payments WHERE pay_stub_id = ?",
	}
	for _, q := range grossQueries {
		sum, err := s.sumAmounts(ctx, q, stubID)
		if err != nil {
			return totals, err
		}
		totals.Gross = totals.Gross.Add(sum)
	}

	reimb, err := s.sumAmounts(ctx,
		"SELECT approved_amount FROM reimbursements WHERE pay_stub_id = ? AND approved = 1",
		stubID)
	if err != nil {
		return totals, err
	}
	totals.Reimbursement = reimb

	return totals, nil
}

func (s *Store) sumAmounts(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(mustDecimal(amount))
	}
	return sum, rows.Err()
}

// MarkStubPaid persists the stub as paid and cascades the flag to every
// linked payable in one transaction. The bulk updates bypass the payables'
// save protocol: the protocol rejects writes to paid rows, which is exactly
// the state this call establishes.
func (s *Store) MarkStubPaid(ctx context.Context, stub *payroll.PayStub) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE pay_stubs
		SET total_gross_amount = ?, total_reimbursement_amount = ?, paid = 1
		WHERE id = ?`,
		stub.TotalGrossAmount.String(), stub.TotalReimbursementAmount.String(), stub.ID); err != nil {
		return err
	}

	cascades := []string{
		"UPDATE salary_payments SET paid = 1 WHERE pay_stub_id = ?",
		"UPDATE event_occurrence_payments SET paid = 1 WHERE pay_stub_id = ?",
		"UPDATE reimbursements SET paid = 1 WHERE pay_stub_id = ?",
	}
	for _, q := range cascades {
		if _, err := tx.ExecContext(ctx, q, stub.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// SALARY PAYMENT STORE
// =============================================================================

const salaryColumns = `id, user_id, week_start, week_end, gross_amount, pay_stub_id, paid`

// SaveSalaryPayment upserts a salary payment.
func (s *Store) SaveSalaryPayment(ctx context.Context, sp *payroll.SalaryPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO salary_payments (id, user_id, week_start, week_end, gross_amount, pay_stub_id, paid)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			week_start = excluded.week_start,
			week_end = excluded.week_end,
			gross_amount = excluded.gross_amount,
			pay_stub_id = excluded.pay_stub_id,
			paid = excluded.paid
	`
	_, err := s.db.ExecContext(ctx, query,
		sp.ID, nullString(sp.UserID),
		sp.WeekStart.Format(dateLayout), sp.WeekEnd.Format(dateLayout),
		sp.GrossAmount.String(), nullString(sp.PayStubID), sp.Paid)
	return err
}

// GetSalaryPayment retrieves a salary payment by ID. Returns nil when missing.
func (s *Store) GetSalaryPayment(ctx context.Context, id string) (*payroll.SalaryPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+salaryColumns+" FROM salary_payments WHERE id = ?", id)
	sp, err := scanSalaryPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// ListSalaryPayments returns the user's salary payments ordered by week end.
func (s *Store) ListSalaryPayments(ctx context.Context, userID string) ([]payroll.SalaryPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+salaryColumns+" FROM salary_payments WHERE user_id = ? ORDER BY week_end",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []payroll.SalaryPayment
	for rows.Next() {
		sp, err := scanSalaryPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *sp)
	}
	return payments, rows.Err()
}

func scanSalaryPayment(row rowScanner) (*payroll.SalaryPayment, error) {
	var (
		sp                 payroll.SalaryPayment
		userID, stubID     sql.NullString
		weekStart, weekEnd string
		gross              string
	)
	err := row.Scan(&sp.ID, &userID, &weekStart, &weekEnd, &gross, &stubID, &sp.Paid)
	if err != nil {
		return nil, err
	}
	sp.UserID = userID.String
	sp.PayStubID = stubID.String
	sp.WeekStart, _ = time.Parse(dateLayout, weekStart)
	sp.WeekEnd, _ = time.Parse(dateLayout, weekEnd)
	sp.GrossAmount = mustDecimal(gross)
	return &sp, nil
}

// =============================================================================
// OCCURRENCE PAYMENT STORE
// =============================================================================

const occPaymentColumns = `id, type, submission_date, occurrence_id, user_id, gross_amount, pay_stub_id, paid`

// SaveOccurrencePayment upserts an occurrence payment.
func (s *Store) SaveOccurrencePayment(ctx context.Context, op *payroll.OccurrencePayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO event_occurrence_payments
		(id, type, submission_date, occurrence_id, user_id, gross_amount, pay_stub_id, paid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			submission_date = excluded.submission_date,
			occurrence_id = excluded.occurrence_id,
			user_id = excluded.user_id,
			gross_amount = excluded.gross_amount,
			pay_stub_id = excluded.pay_stub_id,
			paid = excluded.paid
	`
	_, err := s.db.ExecContext(ctx, query,
		op.ID, string(op.Type), op.SubmissionDate.Format(dateLayout),
		nullString(op.OccurrenceID), nullString(op.UserID),
		op.GrossAmount.String(), nullString(op.PayStubID), op.Paid)
	return err
}

// GetOccurrencePayment retrieves a payment by ID. Returns nil when missing.
func (s *Store) GetOccurrencePayment(ctx context.Context, id string) (*payroll.OccurrencePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+occPaymentColumns+" FROM event_occurrence_payments WHERE id = ?", id)
	op, err := scanOccurrencePayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// FindOccurrencePayment locates the payment for an occurrence, if any.
func (s *Store) FindOccurrencePayment(ctx context.Context, occurrenceID string) (*payroll.OccurrencePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+occPaymentColumns+" FROM event_occurrence_payments WHERE occurrence_id = ? LIMIT 1",
		occurrenceID)
	op, err := scanOccurrencePayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// ListOccurrencePayments returns the user's payments ordered by submission.
func (s *Store) ListOccurrencePayments(ctx context.Context, userID string) ([]payroll.OccurrencePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+occPaymentColumns+" FROM event_occurrence_payments WHERE user_id = ? ORDER BY submission_date",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []payroll.OccurrencePayment
	for rows.Next() {
		op, err := scanOccurrencePayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *op)
	}
	return payments, rows.Err()
}

func scanOccurrencePayment(row rowScanner) (*payroll.OccurrencePayment, error) {
	var (
		op                      payroll.OccurrencePayment
		paymentType, submission string
		occID, userID, stubID   sql.NullString
		gross                   string
	)
	err := row.Scan(&op.ID, &paymentType, &submission, &occID, &userID, &gross, &stubID, &op.Paid)
	if err != nil {
		return nil, err
	}
	op.Type = payroll.PaymentType(paymentType)
	op.SubmissionDate, _ = time.Parse(dateLayout, submission)
	op.OccurrenceID = occID.String
	op.UserID = userID.String
	op.PayStubID = stubID.String
	op.GrossAmount = mustDecimal(gross)
	return &op, nil
}

// =============================================================================
// REIMBURSEMENT STORE
// =============================================================================

const reimbursementColumns = `id, user_id, submission_date, purchase_date, category,
	description, amount, documentation, pay_stub_id, approved, approved_amount, paid`

// SaveReimbursement upserts a reimbursement.
func (s *Store) SaveReimbursement(ctx context.Context, r *payroll.Reimbursement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO reimbursements
		(id, user_id, submission_date, purchase_date, category, description,
		 amount, documentation, pay_stub_id, approved, approved_amount, paid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			submission_date = excluded.submission_date,
			purchase_date = excluded.purchase_date,
			category = excluded.category,
			description = excluded.description,
			amount = excluded.amount,
			documentation = excluded.documentation,
			pay_stub_id = excluded.pay_stub_id,
			approved = excluded.approved,
			approved_amount = excluded.approved_amount,
			paid = excluded.paid
	`
	var purchase any
	if !r.PurchaseDate.IsZero() {
		purchase = r.PurchaseDate.Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx, query,
		r.ID, nullString(r.UserID), r.SubmissionDate.Format(dateLayout), purchase,
		string(r.Category), r.Description, r.Amount.String(), r.Documentation,
		nullString(r.PayStubID), r.Approved, r.ApprovedAmount.String(), r.Paid)
	return err
}

// GetReimbursement retrieves a reimbursement by ID. Returns nil when missing.
func (s *Store) GetReimbursement(ctx context.Context, id string) (*payroll.Reimbursement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reimbursementColumns+" FROM reimbursements WHERE id = ?", id)
	r, err := scanReimbursement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReimbursements returns the user's claims, newest submission first.
func (s *Store) ListReimbursements(ctx context.Context, userID string) ([]payroll.Reimbursement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reimbursementColumns+" FROM reimbursements WHERE user_id = ? ORDER BY submission_date DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []payroll.Reimbursement
	for rows.Next() {
		r, err := scanReimbursement(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *r)
	}
	return claims, rows.Err()
}

func scanReimbursement(row rowScanner) (*payroll.Reimbursement, error) {
	var (
		r                      payroll.Reimbursement
		userID, stubID         sql.NullString
		submission             string
		purchase               sql.NullString
		category               string
		amount, approvedAmount string
	)
	err := row.Scan(&r.ID, &userID, &submission, &purchase, &category,
		&r.Description, &amount, &r.Documentation, &stubID,
		&r.Approved, &approvedAmount, &r.Paid)
	if err != nil {
		return nil, err
	}
	r.UserID = userID.String
	r.PayStubID = stubID.String
	r.SubmissionDate, _ = time.Parse(dateLayout, submission)
	if purchase.Valid {
		r.PurchaseDate, _ = time.Parse(dateLayout, purchase.String)
	}
	r.Category = payroll.ReimbursementCategory(category)
	r.Amount = mustDecimal(amount)
	r.ApprovedAmount = mustDecimal(approvedAmount)
	return &r, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"reimbursements", "event_occurrence_payments", "salary_payments",
		"pay_stubs", "event_occurrences", "events", "venues",
		"regional_manager_profiles", "host_profiles", "users",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseNullDate(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullClock(c *calendar.ClockTime) any {
	if c == nil {
		return nil
	}
	return c.String()
}

func parseNullClock(ns sql.NullString) *calendar.ClockTime {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	c, err := calendar.ParseClockTime(ns.String)
	if err != nil {
		return nil
	}
	return &c
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
