/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the calculator over REST. Handles HTTP request/response, JSON
  serialization, company lookup, and delegates to payroll.Calculator.

ENDPOINTS:
  Payroll:
    POST   /api/payroll/calculate      Calculate one employee
    POST   /api/payroll/batch          Calculate many employees, store the run
    GET    /api/payroll/batch/{id}     Stored results of a batch

  Companies:
    GET    /api/companies              List company configurations
    POST   /api/companies              Create or replace a company
    GET    /api/companies/{id}         Get one company
    DELETE /api/companies/{id}         Remove a company

  Provisions:
    GET    /api/provisions/state       Statutory state in force
    PUT    /api/provisions/state       Replace the statutory state

ARCHITECTURE:
  Handler holds the store and a cached copy of the state in force. Each
  calculation builds a Calculator from that state and the request's company;
  nothing is shared between calculations.

BATCHES:
  Employees are calculated concurrently (errgroup, bounded by
  BatchConcurrency). Any failure fails the whole batch and nothing is stored.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid body, unsupported enum value
  - 404: Unknown company or batch
  - 422: Configuration error, rate-table lookup miss
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/store"
)

// DefaultCompanyID is used when a request names no company.
const DefaultCompanyID = "default"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store            store.Store
	Logger           *slog.Logger
	BatchConcurrency int

	mu    sync.RWMutex
	state provisions.State
}

// NewHandler creates a handler serving calculations under the given state.
func NewHandler(st store.Store, state provisions.State, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:            st,
		Logger:           logger,
		BatchConcurrency: 8,
		state:            state,
	}
}

func (h *Handler) currentState() provisions.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// calculator resolves the company and builds a calculator for it.
func (h *Handler) calculator(ctx context.Context, companyID string, inline *provisions.Company) (*payroll.Calculator, error) {
	var company provisions.Company
	if inline != nil {
		company = *inline
	} else {
		if companyID == "" {
			companyID = DefaultCompanyID
		}
		c, err := h.Store.GetCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: %s", core.ErrCompanyNotFound, companyID)
		}
		company = *c
	}
	return payroll.New(provisions.Provisions{State: h.currentState(), Company: company})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// Calculate runs one employee through the engine.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc, err := h.calculator(r.Context(), req.CompanyID, req.Company)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	result, err := calc.Calculate(req.Employee, req.Options)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RunBatch calculates every employee, then appends the results to the run
// ledger under a new batch ID.
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Employees) == 0 {
		writeError(w, http.StatusBadRequest, "employees is required", nil)
		return
	}

	ctx := r.Context()
	calc, err := h.calculator(ctx, req.CompanyID, nil)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	results := make([]*payroll.Result, len(req.Employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.BatchConcurrency, 1))
	for i, emp := range req.Employees {
		i, emp := i, emp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := calc.Calculate(emp, req.Options)
			if err != nil {
				return fmt.Errorf("employee %d (%s): %w", i, emp.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeEngineError(w, err)
		return
	}

	companyID := req.CompanyID
	if companyID == "" {
		companyID = DefaultCompanyID
	}
	resp := BatchResponse{BatchID: uuid.NewString(), Items: make([]BatchItem, len(results))}
	runs := make([]store.Run, len(results))
	now := time.Now().UTC()
	for i, res := range results {
		runID := uuid.NewString()
		resp.Items[i] = BatchItem{RunID: runID, Employee: req.Employees[i].Name, Result: res}
		runs[i] = store.Run{
			ID:        runID,
			BatchID:   resp.BatchID,
			CompanyID: companyID,
			Employee:  req.Employees[i].Name,
			Month:     req.Options.CurrentMonth,
			Result:    res,
			CreatedAt: now,
		}
	}

	if err := h.Store.AppendRuns(ctx, runs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store batch", err)
		return
	}
	h.Logger.InfoContext(ctx, "payroll batch stored",
		slog.String("batchId", resp.BatchID),
		slog.String("companyId", companyID),
		slog.Int("employees", len(runs)),
	)
	writeJSON(w, http.StatusCreated, resp)
}

// GetBatch returns the stored results of a batch.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")

	runs, err := h.Store.LoadRuns(r.Context(), batchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load batch", err)
		return
	}
	if len(runs) == 0 {
		writeError(w, http.StatusNotFound, "Batch not found", nil)
		return
	}

	resp := BatchResponse{BatchID: batchID, Items: make([]BatchItem, len(runs))}
	for i, run := range runs {
		resp.Items[i] = BatchItem{RunID: run.ID, Employee: run.Employee, Result: run.Result}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns all company configurations.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}
	if companies == nil {
		companies = []provisions.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

// GetCompany returns a single company configuration.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get company", err)
		return
	}
	if company == nil {
		writeError(w, http.StatusNotFound, "Company not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// SaveCompany validates and stores a company configuration.
func (h *Handler) SaveCompany(w http.ResponseWriter, r *http.Request) {
	var company provisions.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if company.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	if err := company.Validate(); err != nil {
		writeEngineError(w, err)
		return
	}

	if err := h.Store.SaveCompany(r.Context(), company); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save company", err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

// DeleteCompany removes a company configuration.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROVISIONS HANDLERS
// =============================================================================

// GetState returns the statutory state calculations currently run under.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentState())
}

// ReplaceState validates, persists and activates a new statutory state.
// Calculations already running keep the state they started with.
func (h *Handler) ReplaceState(w http.ResponseWriter, r *http.Request) {
	var state provisions.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := state.Validate(); err != nil {
		writeEngineError(w, err)
		return
	}
	if err := h.Store.SaveState(r.Context(), state); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	h.mu.Lock()
	h.state = state
	h.mu.Unlock()

	h.Logger.InfoContext(r.Context(), "statutory state replaced", slog.Int("year", state.Year))
	writeJSON(w, http.StatusOK, state)
}

// =============================================================================
// HELPERS
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

// writeEngineError maps engine and store errors to a status and code.
func writeEngineError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrCompanyNotFound):
		return http.StatusNotFound, "company_not_found"
	case errors.Is(err, core.ErrUnsupportedCombination):
		return http.StatusBadRequest, "unsupported_combination"
	case errors.Is(err, core.ErrConfiguration):
		return http.StatusUnprocessableEntity, "configuration_error"
	case core.IsLookupMiss(err):
		return http.StatusUnprocessableEntity, "lookup_miss"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
