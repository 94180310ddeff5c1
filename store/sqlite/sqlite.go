/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Persists company configurations, the statutory state snapshot and the
  payroll run ledger for cmd/server.

KEY TABLES:
  companies:      One row per company, switches kept as config_json
  state_snapshot: Single row keyed 'current' with the State as config_json
  payroll_runs:   Append-only ledger of results, grouped by batch_id

APPEND-ONLY ENFORCEMENT:
  payroll_runs is only ever INSERTed. A batch goes in one SQL transaction;
  a duplicate run ID rolls back the whole batch.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode.

USAGE:
  st, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS state_snapshot (
		key TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Append-only
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		employee TEXT NOT NULL,
		month INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_runs_batch
		ON payroll_runs(batch_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COMPANY STORE
// =============================================================================

// SaveCompany inserts or replaces a company configuration.
func (s *Store) SaveCompany(ctx context.Context, c provisions.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode company: %w", err)
	}

	query := `
		INSERT INTO companies (id, name, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, c.ID, c.Name, string(configJSON), now, now)
	return err
}

// GetCompany retrieves a company by ID.
func (s *Store) GetCompany(ctx context.Context, id string) (*provisions.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM companies WHERE id = ?", id,
	).Scan(&configJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c provisions.Company
	if err := json.Unmarshal([]byte(configJSON), &c); err != nil {
		return nil, fmt.Errorf("failed to decode company %s: %w", id, err)
	}
	return &c, nil
}

// ListCompanies returns all companies ordered by name.
func (s *Store) ListCompanies(ctx context.Context) ([]provisions.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, config_json FROM companies ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []provisions.Company
	for rows.Next() {
		var id, configJSON string
		if err := rows.Scan(&id, &configJSON); err != nil {
			return nil, err
		}
		var c provisions.Company
		if err := json.Unmarshal([]byte(configJSON), &c); err != nil {
			return nil, fmt.Errorf("failed to decode company %s: %w", id, err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// DeleteCompany removes a company.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrCompanyNotFound, id)
	}
	return nil
}

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

const currentState = "current"

// SaveState replaces the state in force.
func (s *Store) SaveState(ctx context.Context, st provisions.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	query := `
		INSERT INTO state_snapshot (key, year, config_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			year = excluded.year,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, currentState, st.Year, string(configJSON),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadState returns the state in force, or nil if none was saved.
func (s *Store) LoadState(ctx context.Context) (*provisions.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM state_snapshot WHERE key = ?", currentState,
	).Scan(&configJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st provisions.State
	if err := json.Unmarshal([]byte(configJSON), &st); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &st, nil
}

// =============================================================================
// RUN LEDGER
// =============================================================================

// AppendRuns adds a batch of runs atomically.
func (s *Store) AppendRuns(ctx context.Context, runs []store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payroll_runs (id, batch_id, company_id, employee, month, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, run := range runs {
		resultJSON, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
		}
		createdAt := run.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err = tx.ExecContext(ctx, query,
			run.ID, run.BatchID, run.CompanyID, run.Employee, run.Month,
			string(resultJSON), createdAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s", store.ErrDuplicateRun, run.ID)
			}
			return fmt.Errorf("failed to append run: %w", err)
		}
	}

	return tx.Commit()
}

// LoadRuns returns the runs of a batch in insertion order.
func (s *Store) LoadRuns(ctx context.Context, batchID string) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, batch_id, company_id, employee, month, result_json, created_at
		FROM payroll_runs WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var resultJSON, createdAt string
		if err := rows.Scan(&run.ID, &run.BatchID, &run.CompanyID, &run.Employee,
			&run.Month, &resultJSON, &createdAt); err != nil {
			return nil, err
		}
		run.Result = &payroll.Result{}
		if err := json.Unmarshal([]byte(resultJSON), run.Result); err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", run.ID, err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
