package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/kidprint/internal/domain/usage"
)

const lastResetKey = "last_reset"

// SQLiteStore keeps the quota state in two SQLite tables.
// Rows are upserted, never deleted.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// One writer process; a single connection keeps saves serialized.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_usage (
			day TEXT PRIMARY KEY,
			count INTEGER NOT NULL CHECK (count >= 0),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS quota_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Load reads every day row and the last reset marker.
func (s *SQLiteStore) Load(ctx context.Context) (usage.State, error) {
	state := usage.NewState()

	rows, err := s.db.QueryContext(ctx, "SELECT day, count FROM daily_usage")
	if err != nil {
		return usage.State{}, fmt.Errorf("select daily_usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return usage.State{}, fmt.Errorf("scan daily_usage: %w", err)
		}
		state.DailyCounts[day] = count
	}
	if err := rows.Err(); err != nil {
		return usage.State{}, fmt.Errorf("iterate daily_usage: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT value FROM quota_meta WHERE key = ?", lastResetKey).
		Scan(&state.LastReset)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return usage.State{}, fmt.Errorf("select last_reset: %w", err)
	}

	return state, nil
}

// Save upserts every day row and the last reset marker in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, state usage.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for day, count := range state.DailyCounts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO daily_usage (day, count) VALUES (?, ?)
			 ON CONFLICT(day) DO UPDATE SET count = excluded.count, updated_at = CURRENT_TIMESTAMP
			 WHERE daily_usage.count != excluded.count`,
			day, count,
		)
		if err != nil {
			return fmt.Errorf("upsert day %s: %w", day, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quota_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastResetKey, state.LastReset,
	)
	if err != nil {
		return fmt.Errorf("upsert last_reset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
