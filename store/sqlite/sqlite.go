/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything the engine reads (policy versions, holidays, employees,
  punch records, approvals) and the stats snapshots it produces. The engine
  itself never touches the database; callers load an input snapshot, compute,
  and optionally save the result here.

INTERFACES IMPLEMENTED:
  policy.Store:             Append-only policy versions + active pointer
  calendar.HolidayStore:    National holiday feed
  attendance.EmployeeStore: Employment windows and departments
  attendance.PunchStore:    Punch feed and manual day replacements
  attendance.ApprovalStore: Local copy of leave/overtime/trip approvals
  attendance.StatsStore:    Computed monthly stats (a cache)

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on policy_versions
  - active_policy is a single row that only points at a version
  - punch_records rows are only deleted by ReplaceDay, inside the same SQL
    transaction that inserts the replacement set

KEY TABLES:
  policy_versions: Immutable policy documents as JSON
  active_policy:   The version computations must use
  punch_records:   One row per punch event, keyed by (employee_id, work_date)
  approvals:       Approval lookups by ID
  stats_snapshots: Last computed stats per employee-month

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers do not block the single writer.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  mgr := policy.NewManager(store)

SEE ALSO:
  - store/memory: In-memory implementation for tests
  - policy/version.go, attendance/store.go: Interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ policy.Store             = (*Store)(nil)
	_ calendar.HolidayStore    = (*Store)(nil)
	_ attendance.PunchStore    = (*Store)(nil)
	_ attendance.ApprovalStore = (*Store)(nil)
	_ attendance.EmployeeStore = (*Store)(nil)
	_ attendance.StatsStore    = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

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
	-- Policy versions (append-only)
	CREATE TABLE IF NOT EXISTS policy_versions (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		document_json TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- Active version pointer (single row)
	CREATE TABLE IF NOT EXISTS active_policy (
		singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
		version_id TEXT NOT NULL REFERENCES policy_versions(id),
		activated_at TEXT NOT NULL
	);

	-- National holiday calendar
	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		holiday BOOLEAN NOT NULL,
		name TEXT NOT NULL,
		wage_multiplier TEXT NOT NULL DEFAULT '0'
	);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department_id TEXT,
		hire_date TEXT,
		termination_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Punch records
	CREATE TABLE IF NOT EXISTS punch_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		check_type TEXT NOT NULL,
		source TEXT NOT NULL,
		user_check_time TEXT,
		base_check_time TEXT,
		time_result TEXT NOT NULL,
		approval_id TEXT,
		validated BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Day-set loads and replacements (hot path)
	CREATE INDEX IF NOT EXISTS idx_punch_records_employee_date
		ON punch_records(employee_id, work_date);

	-- Approvals
	CREATE TABLE IF NOT EXISTS approvals (
		id TEXT PRIMARY KEY,
		employee_id TEXT,
		biz_type TEXT NOT NULL,
		leave_type TEXT,
		start_at TEXT,
		end_at TEXT,
		duration TEXT NOT NULL DEFAULT '0',
		duration_unit TEXT
	);

	-- Stats snapshots (cache of computed results)
	CREATE TABLE IF NOT EXISTS stats_snapshots (
		employee_id TEXT NOT NULL,
		month TEXT NOT NULL,
		policy_version_id TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		stats_json TEXT,
		error TEXT,
		PRIMARY KEY (employee_id, month)
	);

	CREATE INDEX IF NOT EXISTS idx_stats_snapshots_month
		ON stats_snapshots(month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// POLICY VERSION STORE (policy.Store interface)
// =============================================================================

// InsertVersion appends a version. There is no update path.
func (s *Store) InsertVersion(ctx context.Context, v policy.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docJSON, err := json.Marshal(v.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal policy document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO policy_versions (id, number, name, document_json, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		string(v.ID), v.Number, v.Document.Name, string(docJSON),
		nullString(v.CreatedBy), formatTime(v.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("policy version %s already exists: %w", v.ID, err)
		}
		return fmt.Errorf("failed to insert policy version: %w", err)
	}
	return nil
}

func (s *Store) GetVersion(ctx context.Context, id generic.VersionID) (*policy.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, number, document_json, created_by, created_at
		FROM policy_versions WHERE id = ?
	`, string(id))

	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy version: %w", err)
	}
	return v, nil
}

func (s *Store) ListVersions(ctx context.Context) ([]policy.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, document_json, created_by, created_at
		FROM policy_versions ORDER BY number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy versions: %w", err)
	}
	defer rows.Close()

	var versions []policy.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

func (s *Store) ActiveVersionID(ctx context.Context) (generic.VersionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRowContext(ctx, "SELECT version_id FROM active_policy WHERE singleton = 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active policy: %w", err)
	}
	return generic.VersionID(id), nil
}

func (s *Store) SetActiveVersion(ctx context.Context, id generic.VersionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM policy_versions WHERE id = ?", string(id)).Scan(&count); err != nil {
		return fmt.Errorf("failed to check policy version: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_policy (singleton, version_id, activated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			version_id = excluded.version_id,
			activated_at = excluded.activated_at
	`, string(id), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to set active policy: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner) (*policy.Version, error) {
	var (
		v         policy.Version
		id        string
		docJSON   string
		createdBy sql.NullString
		createdAt string
	)
	if err := row.Scan(&id, &v.Number, &docJSON, &createdBy, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(docJSON), &v.Document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy document %s: %w", id, err)
	}
	v.ID = generic.VersionID(id)
	v.CreatedBy = createdBy.String
	v.CreatedAt = parseTime(createdAt)
	return &v, nil
}

// =============================================================================
// HOLIDAY STORE (calendar.HolidayStore interface)
// =============================================================================

func (s *Store) UpsertHolidays(ctx context.Context, entries []calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, h := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holidays (date, holiday, name, wage_multiplier)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				holiday = excluded.holiday,
				name = excluded.name,
				wage_multiplier = excluded.wage_multiplier
		`, h.Date.String(), h.Holiday, h.Name, h.WageMultiplier.String())
		if err != nil {
			return fmt.Errorf("failed to upsert holiday %s: %w", h.Date, err)
		}
	}
	return tx.Commit()
}

func (s *Store) LoadHolidays(ctx context.Context, from, to generic.Date) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, holiday, name, wage_multiplier
		FROM holidays WHERE date >= ? AND date <= ?
		ORDER BY date
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var (
			h          calendar.Holiday
			date, mult string
		)
		if err := rows.Scan(&date, &h.Holiday, &h.Name, &mult); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if h.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		h.WageMultiplier = parseDecimal(mult)
		out = append(out, h)
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE (attendance.EmployeeStore interface)
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var termination sql.NullString
	if emp.TerminationDate != nil {
		termination = sql.NullString{String: emp.TerminationDate.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, department_id, hire_date, termination_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department_id = excluded.department_id,
			hire_date = excluded.hire_date,
			termination_date = excluded.termination_date
	`,
		string(emp.ID), emp.Name, nullString(string(emp.DepartmentID)),
		nullDate(emp.HireDate), termination, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, department_id, hire_date, termination_date
		FROM employees WHERE id = ?
	`, string(id))

	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, department_id, hire_date, termination_date
		FROM employees ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

func scanEmployee(row scanner) (*attendance.Employee, error) {
	var (
		id                    string
		dept, hire, terminate sql.NullString
		emp                   attendance.Employee
	)
	if err := row.Scan(&id, &emp.Name, &dept, &hire, &terminate); err != nil {
		return nil, err
	}
	emp.ID = generic.EmployeeID(id)
	emp.DepartmentID = generic.DepartmentID(dept.String)
	if hire.Valid {
		d, err := generic.ParseDate(hire.String)
		if err != nil {
			return nil, err
		}
		emp.HireDate = d
	}
	if terminate.Valid {
		d, err := generic.ParseDate(terminate.String)
		if err != nil {
			return nil, err
		}
		emp.TerminationDate = &d
	}
	return &emp, nil
}

// =============================================================================
// PUNCH STORE (attendance.PunchStore interface)
// =============================================================================

// AppendPunches ignores records whose ID is already stored so a feed can be
// replayed.
func (s *Store) AppendPunches(ctx context.Context, records []attendance.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record without id", generic.ErrCorruptPunch)
		}
		if err := insertPunch(ctx, tx, r, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceDay deletes the day's records and inserts the replacement set in
// one SQL transaction.
func (s *Store) ReplaceDay(ctx context.Context, employeeID generic.EmployeeID, date generic.Date, records []attendance.PunchRecord) error {
	for _, r := range records {
		if r.EmployeeID != employeeID || r.WorkDate != date {
			return fmt.Errorf("%w: record %s is not for %s on %s", generic.ErrCorruptPunch, r.ID, employeeID, date)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM punch_records WHERE employee_id = ? AND work_date = ?",
		string(employeeID), date.String(),
	); err != nil {
		return fmt.Errorf("failed to clear day: %w", err)
	}
	for _, r := range records {
		if err := insertPunch(ctx, tx, r, false); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertPunch(ctx context.Context, db execer, r attendance.PunchRecord, ignoreDuplicate bool) error {
	verb := "INSERT"
	if ignoreDuplicate {
		verb = "INSERT OR IGNORE"
	}
	_, err := db.ExecContext(ctx, verb+` INTO punch_records
		(id, employee_id, work_date, check_type, source, user_check_time, base_check_time,
		 time_result, approval_id, validated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, string(r.EmployeeID), r.WorkDate.String(), string(r.CheckType), string(r.Source),
		nullTime(r.UserCheckTime), nullTime(r.BaseCheckTime),
		string(r.TimeResult), nullString(r.ApprovalID), r.Validated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert punch record %s: %w", r.ID, err)
	}
	return nil
}

// LoadPunches returns records with from <= work_date <= to, in work date
// then insertion order.
func (s *Store) LoadPunches(ctx context.Context, employeeID generic.EmployeeID, from, to generic.Date) ([]attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, work_date, check_type, source, user_check_time, base_check_time,
		       time_result, approval_id, validated
		FROM punch_records
		WHERE employee_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date, rowid
	`, string(employeeID), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query punch records: %w", err)
	}
	defer rows.Close()

	var out []attendance.PunchRecord
	for rows.Next() {
		var (
			r                      attendance.PunchRecord
			emp, workDate          string
			checkType, source, res string
			userAt, baseAt, apprID sql.NullString
		)
		if err := rows.Scan(&r.ID, &emp, &workDate, &checkType, &source, &userAt, &baseAt, &res, &apprID, &r.Validated); err != nil {
			return nil, fmt.Errorf("failed to scan punch record: %w", err)
		}
		if r.WorkDate, err = generic.ParseDate(workDate); err != nil {
			return nil, err
		}
		r.EmployeeID = generic.EmployeeID(emp)
		r.CheckType = attendance.CheckType(checkType)
		r.Source = attendance.Source(source)
		r.TimeResult = attendance.TimeResult(res)
		r.ApprovalID = apprID.String
		r.UserCheckTime = parseNullTime(userAt)
		r.BaseCheckTime = parseNullTime(baseAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// APPROVAL STORE (attendance.ApprovalStore interface)
// =============================================================================

func (s *Store) UpsertApprovals(ctx context.Context, approvals []attendance.LeaveApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range approvals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO approvals (id, employee_id, biz_type, leave_type, start_at, end_at, duration, duration_unit)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				employee_id = excluded.employee_id,
				biz_type = excluded.biz_type,
				leave_type = excluded.leave_type,
				start_at = excluded.start_at,
				end_at = excluded.end_at,
				duration = excluded.duration,
				duration_unit = excluded.duration_unit
		`,
			a.ID, nullString(string(a.EmployeeID)), string(a.BizType), nullString(string(a.LeaveType)),
			nullTime(a.Start), nullTime(a.End), a.Duration.String(), nullString(string(a.DurationUnit)),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert approval %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// LoadApprovals omits IDs that are not stored.
func (s *Store) LoadApprovals(ctx context.Context, ids []string) (attendance.ApprovalLookup, error) {
	out := make(attendance.ApprovalLookup, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, biz_type, leave_type, start_at, end_at, duration, duration_unit
		FROM approvals WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a                    attendance.LeaveApproval
			bizType, duration    string
			emp, leaveType, unit sql.NullString
			startAt, endAt       sql.NullString
		)
		if err := rows.Scan(&a.ID, &emp, &bizType, &leaveType, &startAt, &endAt, &duration, &unit); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		a.EmployeeID = generic.EmployeeID(emp.String)
		a.BizType = attendance.BizType(bizType)
		a.LeaveType = attendance.LeaveType(leaveType.String)
		a.Start = parseNullTime(startAt)
		a.End = parseNullTime(endAt)
		a.Duration = parseDecimal(duration)
		a.DurationUnit = attendance.DurationUnit(unit.String)
		out[a.ID] = a
	}
	return out, rows.Err()
}

// =============================================================================
// STATS STORE (attendance.StatsStore interface)
// =============================================================================

// SaveSnapshot keeps the latest result per employee-month.
func (s *Store) SaveSnapshot(ctx context.Context, snap attendance.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var statsJSON sql.NullString
	if snap.Stats != nil {
		data, err := json.Marshal(snap.Stats)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		statsJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats_snapshots (employee_id, month, policy_version_id, computed_at, stats_json, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, month) DO UPDATE SET
			policy_version_id = excluded.policy_version_id,
			computed_at = excluded.computed_at,
			stats_json = excluded.stats_json,
			error = excluded.error
	`,
		string(snap.EmployeeID), snap.Month.String(), string(snap.PolicyVersionID),
		formatTime(snap.ComputedAt), statsJSON, nullString(snap.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to save stats snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadSnapshots(ctx context.Context, month generic.Month) ([]attendance.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, policy_version_id, computed_at, stats_json, error
		FROM stats_snapshots WHERE month = ?
		ORDER BY employee_id
	`, month.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query stats snapshots: %w", err)
	}
	defer rows.Close()

	var out []attendance.Snapshot
	for rows.Next() {
		var (
			emp, version, computedAt string
			statsJSON, errMsg        sql.NullString
		)
		if err := rows.Scan(&emp, &version, &computedAt, &statsJSON, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan stats snapshot: %w", err)
		}
		snap := attendance.Snapshot{
			EmployeeID:      generic.EmployeeID(emp),
			Month:           month,
			PolicyVersionID: generic.VersionID(version),
			ComputedAt:      parseTime(computedAt),
			Error:           errMsg.String,
		}
		if statsJSON.Valid {
			var stats attendance.EmployeeStats
			if err := json.Unmarshal([]byte(statsJSON.String), &stats); err != nil {
				return nil, fmt.Errorf("failed to unmarshal stats for %s: %w", emp, err)
			}
			snap.Stats = &stats
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d generic.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseNullTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	return parseTime(s.String)
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
