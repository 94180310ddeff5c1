// Package memory provides an in-memory store.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	companies map[string]provisions.Company
	state     *provisions.State
	runs      map[string][]store.Run
	runIDs    map[string]bool
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		companies: make(map[string]provisions.Company),
		runs:      make(map[string][]store.Run),
		runIDs:    make(map[string]bool),
	}
}

func (m *Memory) SaveCompany(_ context.Context, c provisions.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Holidays = append([]string(nil), c.Holidays...)
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) GetCompany(_ context.Context, id string) (*provisions.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	c.Holidays = append([]string(nil), c.Holidays...)
	return &c, nil
}

// ListCompanies returns companies ordered by name, then ID.
func (m *Memory) ListCompanies(_ context.Context) ([]provisions.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]provisions.Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteCompany(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrCompanyNotFound, id)
	}
	delete(m.companies, id)
	return nil
}

func (m *Memory) SaveState(_ context.Context, s provisions.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &s
	return nil
}

func (m *Memory) LoadState(_ context.Context) (*provisions.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil, nil
	}
	s := *m.state
	return &s, nil
}

// AppendRuns adds a batch atomically. Append-only.
func (m *Memory) AppendRuns(_ context.Context, runs []store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check every ID first so a rejected batch leaves nothing behind
	seen := make(map[string]bool, len(runs))
	for _, r := range runs {
		if m.runIDs[r.ID] || seen[r.ID] {
			return fmt.Errorf("%w: %s", store.ErrDuplicateRun, r.ID)
		}
		seen[r.ID] = true
	}

	now := time.Now()
	for _, r := range runs {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		m.runs[r.BatchID] = append(m.runs[r.BatchID], r)
		m.runIDs[r.ID] = true
	}
	return nil
}

func (m *Memory) LoadRuns(_ context.Context, batchID string) ([]store.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]store.Run(nil), m.runs[batchID]...), nil
}
