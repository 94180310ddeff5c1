/*
Package store defines persistence for company configurations, the statutory
state snapshot and the payroll run ledger.

PURPOSE:
  The engine itself is pure: it takes provisions and an employee and returns
  a result. This package is where the adapters keep the inputs they hand to
  the engine (per-company switches, the state in force) and the results they
  got back.

IMPLEMENTATIONS:
  store/sqlite: SQLite, used by cmd/server
  store/memory: maps behind a mutex, used by tests

RUN LEDGER:
  Runs are append-only. A batch is written atomically; a run is never updated
  or deleted. Re-running a batch produces a new batch ID.

SEE ALSO:
  - provisions/provisions.go: State and Company
  - payroll/result.go: Result stored per run
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
)

// ErrDuplicateRun is returned when a run ID is already in the ledger.
var ErrDuplicateRun = errors.New("duplicate run id")

// Store is the persistence interface used by the API.
type Store interface {
	CompanyStore
	StateStore
	RunStore
}

// CompanyStore keeps per-company calculation switches.
// GetCompany returns nil, nil when the company does not exist; DeleteCompany
// returns core.ErrCompanyNotFound.
type CompanyStore interface {
	SaveCompany(ctx context.Context, c provisions.Company) error
	GetCompany(ctx context.Context, id string) (*provisions.Company, error)
	ListCompanies(ctx context.Context) ([]provisions.Company, error)
	DeleteCompany(ctx context.Context, id string) error
}

// StateStore keeps the statutory state currently in force.
// LoadState returns nil, nil before any state was saved.
type StateStore interface {
	SaveState(ctx context.Context, s provisions.State) error
	LoadState(ctx context.Context) (*provisions.State, error)
}

// RunStore is the append-only ledger of payroll results.
type RunStore interface {
	AppendRuns(ctx context.Context, runs []Run) error
	LoadRuns(ctx context.Context, batchID string) ([]Run, error)
}

// Run is one stored calculation.
type Run struct {
	ID        string          `json:"id"`
	BatchID   string          `json:"batchId"`
	CompanyID string          `json:"companyId"`
	Employee  string          `json:"employee"`
	Month     int             `json:"month"`
	Result    *payroll.Result `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}
