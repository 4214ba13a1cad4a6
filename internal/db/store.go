// Package db provides the SQL storage implementation for blocks, habits
// and settings. SQLite and PostgreSQL share the same queries.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/lvlup/internal/block"
)

// Driver names a supported database engine.
type Driver string

// Supported drivers.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrUnknownDriver is returned for a driver other than sqlite or postgres.
var ErrUnknownDriver = errors.New("unknown storage driver")

// ParseDriver converts a config value into a Driver.
func ParseDriver(s string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(s))) {
	case DriverSQLite, "sqlite3", "":
		return DriverSQLite, nil
	case DriverPostgres, "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, s)
	}
}

// Store implements block.Repository on database/sql.
type Store struct {
	db     *sql.DB
	driver Driver
	now    func() time.Time
}

var _ block.Repository = (*Store)(nil)

// New opens a SQLite database at path and runs migrations.
func New(path string) (*Store, error) {
	return Open(DriverSQLite, path)
}

// Open connects to the given driver and runs migrations.
// For sqlite the dsn is a file path.
func Open(driver Driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db, driver: driver, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Driver returns the engine backing the store.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListBlocks returns every block scheduled on date, ordered by start time.
func (s *Store) ListBlocks(ctx context.Context, date time.Time) ([]block.Record, error) {
	day := date.Format(block.DateLayout)
	return s.listBlocks(ctx, `
		SELECT id, title, habit_id, date, start_time, end_time, completed
		FROM blocks
		WHERE date = ?
		ORDER BY start_time, id
	`, day)
}

// ListBlocksBetween returns the blocks in [start, end] (inclusive, by day).
func (s *Store) ListBlocksBetween(ctx context.Context, start, end time.Time) ([]block.Record, error) {
	return s.listBlocks(ctx, `
		SELECT id, title, habit_id, date, start_time, end_time, completed
		FROM blocks
		WHERE date >= ? AND date <= ?
		ORDER BY date, start_time, id
	`, start.Format(block.DateLayout), end.Format(block.DateLayout))
}

func (s *Store) listBlocks(ctx context.Context, query string, args ...any) ([]block.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []block.Record
	for rows.Next() {
		var (
			r    block.Record
			date string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.HabitID, &date, &r.StartTime, &r.EndTime, &r.Completed); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		r.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parsing block date: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blocks: %w", err)
	}

	return records, nil
}

// CreateBlock stores a new block and returns its id. An empty id is
// replaced by a generated one. Returns block.ErrOverlap if the block
// intersects another block on the same day.
func (s *Store) CreateBlock(ctx context.Context, rec block.Record) (string, error) {
	if err := checkClock(rec.StartTime, rec.EndTime); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	day := rec.Date.Format(block.DateLayout)
	if err := s.checkOverlap(ctx, tx, day, rec.StartTime, rec.EndTime, ""); err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO blocks (id, title, habit_id, date, start_time, end_time, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`),
		rec.ID,
		rec.Title,
		rec.HabitID,
		day,
		rec.StartTime,
		rec.EndTime,
		rec.Completed,
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting block: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return rec.ID, nil
}

// UpdateCompleted sets the completion status of a block.
func (s *Store) UpdateCompleted(ctx context.Context, id string, completed bool) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`UPDATE blocks SET completed = ? WHERE id = ?`), completed, id)
	if err != nil {
		return fmt.Errorf("updating completion: %w", err)
	}
	return expectRow(result, id)
}

// UpdateTimes rewrites a block's start and end. Returns block.ErrOverlap
// if the new span intersects another block on the same day.
func (s *Store) UpdateTimes(ctx context.Context, id, start, end string) error {
	if err := checkClock(start, end); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var day string
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT date FROM blocks WHERE id = ?`), id).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("querying block: %w", err)
	}
	day = normalizeDay(day)

	if err := s.checkOverlap(ctx, tx, day, start, end, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE blocks SET start_time = ?, end_time = ? WHERE id = ?`), start, end, id); err != nil {
		return fmt.Errorf("updating block times: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteBlock removes a block.
func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM blocks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting block: %w", err)
	}
	return expectRow(result, id)
}

// WeekStats aggregates the seven days ending on today.
func (s *Store) WeekStats(ctx context.Context, today time.Time) (block.WeekStats, error) {
	first := today.AddDate(0, 0, -(block.StatsDays - 1))
	records, err := s.ListBlocksBetween(ctx, first, today)
	if err != nil {
		return block.WeekStats{}, err
	}
	return block.ComputeWeekStats(today, records), nil
}

// checkOverlap looks for a block on day whose span intersects [start, end).
// HH:MM strings compare in time order, so the test runs in SQL.
func (s *Store) checkOverlap(ctx context.Context, tx *sql.Tx, day, start, end, excludeID string) error {
	var (
		id         string
		title      string
		existStart string
		existEnd   string
	)
	err := tx.QueryRowContext(ctx, s.rebind(`
		SELECT id, title, start_time, end_time
		FROM blocks
		WHERE date = ?
		  AND id != ?
		  AND start_time < ?
		  AND end_time > ?
		LIMIT 1
	`), day, excludeID, end, start).Scan(&id, &title, &existStart, &existEnd)

	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}

	return fmt.Errorf("%w: conflicts with %s %q (%s-%s)", block.ErrOverlap, id, title, existStart, existEnd)
}

// rebind rewrites ? placeholders to $1..$n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}
	return nil
}

func checkClock(start, end string) error {
	s, err := block.ParseClock(start)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	e, err := block.ParseClock(end)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if e <= s {
		return fmt.Errorf("%w: end %s is not after start %s", block.ErrValidation, end, start)
	}
	return nil
}

// parseDate parses a date string in the formats the drivers may return.
// Date-only values are parsed as local midnight to match time.Now() based dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(block.DateLayout, normalizeDay(s), time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

// normalizeDay trims a "2006-01-02T00:00:00Z" style value to its date.
func normalizeDay(s string) string {
	if len(s) > len(block.DateLayout) && (s[10] == 'T' || s[10] == ' ') {
		return s[:10]
	}
	return s
}
