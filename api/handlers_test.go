/*
handlers_test.go - HTTP tests for the payroll API

Tests for:
- Single calculation and error-to-status mapping
- Batch fan-out, ledger storage and atomic failure
- Company and state management
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/store/memory"
)

type testServer struct {
	router  *chi.Mux
	handler *Handler
	store   *memory.Memory
}

// newTestServer seeds a memory store with the embedded defaults and a
// company with every contribution switched off.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	p, err := provisions.Default()
	require.NoError(t, err)

	st := memory.New()
	ctx := context.Background()
	require.NoError(t, st.SaveCompany(ctx, p.Company))
	require.NoError(t, st.SaveCompany(ctx, provisions.Company{ID: "plain", Name: "Plain"}))

	h := NewHandler(st, p.State, NewLogger(io.Discard, "test", slog.LevelError))
	h.BatchConcurrency = 2
	return &testServer{router: NewRouter(h, RouterOptions{}), handler: h, store: st}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func employee(name string, base int64) payroll.Employee {
	return payroll.Employee{
		Name:      name,
		Permanent: true,
		HasNPWP:   true,
		Earnings:  payroll.Earnings{Base: core.Rupiah(base)},
	}
}

func juneNett() payroll.Options {
	return payroll.Options{
		EmployeeType: core.EmployeePKWTT,
		TaxNumber:    core.Pph21,
		SalaryPeriod: core.PeriodMonthly,
		Method:       core.MethodNett,
		CurrentMonth: 6,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_Success(t *testing.T) {
	// GIVEN: The plain company and a 6,000,000 TK/0 employee
	s := newTestServer(t)

	// WHEN: Posting a calculation
	rec := s.do(t, http.MethodPost, "/api/payroll/calculate", CalculateRequest{
		CompanyID: "plain",
		Employee:  employee("Ani", 6000000),
		Options:   juneNett(),
	})

	// THEN: The result comes back with the TER liability
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res payroll.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.TakeHomePay.Equal(core.Rupiah(6000000)))
	assert.True(t, res.Taxable.Liability.Monthly.Equal(core.Rupiah(45000)))
}

func TestCalculate_InlineCompany(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/payroll/calculate", CalculateRequest{
		Company:  &provisions.Company{ID: "adhoc", JKM: true},
		Employee: employee("Ani", 6000000),
		Options:  juneNett(),
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res payroll.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Company.Get(payroll.LineJKM).Equal(core.Rupiah(18000)))
}

func TestCalculate_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "malformed json",
			body:   `{"employee":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown method",
			body:   `{"companyId":"plain","options":{"employeeType":"PKWTT","taxNumber":21,"salaryPeriod":"MONTHLY","method":"HALF","currentMonth":6}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown company",
			body:   `{"companyId":"nope","options":{"employeeType":"PKWTT","taxNumber":21,"salaryPeriod":"MONTHLY","method":"NETT","currentMonth":6}}`,
			status: http.StatusNotFound,
			code:   "company_not_found",
		},
		{
			name:   "month out of range",
			body:   `{"companyId":"plain","options":{"employeeType":"PKWTT","taxNumber":21,"salaryPeriod":"MONTHLY","method":"NETT","currentMonth":13}}`,
			status: http.StatusUnprocessableEntity,
			code:   "configuration_error",
		},
		{
			name:   "missing risk grade",
			body:   `{"company":{"id":"x","jkk":true,"riskGrade":9},"employee":{"permanentStatus":true,"earnings":{"base":"6000000"}},"options":{"employeeType":"PKWTT","taxNumber":21,"salaryPeriod":"MONTHLY","method":"NETT","currentMonth":6}}`,
			status: http.StatusUnprocessableEntity,
			code:   "lookup_miss",
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/payroll/calculate", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
			}
		})
	}
}

// =============================================================================
// BATCH
// =============================================================================

func TestRunBatch_StoresResultsInOrder(t *testing.T) {
	// GIVEN: Three employees on the default company
	s := newTestServer(t)
	req := BatchRequest{
		Options:   juneNett(),
		Employees: []payroll.Employee{employee("Ani", 6000000), employee("Budi", 8000000), employee("Citra", 12000000)},
	}

	// WHEN: Running the batch
	rec := s.do(t, http.MethodPost, "/api/payroll/batch", req)

	// THEN: Items come back in request order with a batch ID
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.BatchID)
	require.Len(t, resp.Items, 3)
	for i, name := range []string{"Ani", "Budi", "Citra"} {
		assert.Equal(t, name, resp.Items[i].Employee)
		assert.NotEmpty(t, resp.Items[i].RunID)
	}
	assert.True(t, resp.Items[0].Result.Earnings.GrossFirst.Equal(core.Rupiah(6000000)))

	// AND: The ledger holds the same batch
	rec = s.do(t, http.MethodGet, "/api/payroll/batch/"+resp.BatchID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stored BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	require.Len(t, stored.Items, 3)
	assert.Equal(t, resp.Items[2].RunID, stored.Items[2].RunID)

	runs, err := s.store.LoadRuns(context.Background(), resp.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "default", runs[0].CompanyID)
	assert.Equal(t, 6, runs[0].Month)
}

func TestRunBatch_OneFailureFailsAll(t *testing.T) {
	s := newTestServer(t)
	opts := juneNett()
	opts.Method = core.MethodMixed
	opts.MixedSplit = &payroll.MixedSplit{
		PositionTax: provisions.Split{Company: core.Rupiah(80), Employee: core.Rupiah(80)},
		IncomeTax:   provisions.Split{Company: core.Rupiah(50), Employee: core.Rupiah(50)},
	}

	rec := s.do(t, http.MethodPost, "/api/payroll/batch", BatchRequest{
		CompanyID: "plain",
		Options:   opts,
		Employees: []payroll.Employee{employee("Ani", 6000000), employee("Budi", 8000000)},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "configuration_error", decodeError(t, rec).Code)
}

func TestRunBatch_RequiresEmployees(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/payroll/batch", BatchRequest{Options: juneNett()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBatch_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/payroll/batch/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// COMPANIES & STATE
// =============================================================================

func TestCompanies(t *testing.T) {
	s := newTestServer(t)

	// Invalid working week is rejected
	bad := provisions.Company{ID: "bad", Name: "Bad", CalculateOvertime: true, OvertimeByRegulation: true, WorkingDays: 4}
	rec := s.do(t, http.MethodPost, "/api/companies", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/companies", provisions.Company{Name: "No ID"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/companies", provisions.Company{ID: "acme", Name: "Acme", JKM: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/companies/acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got provisions.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.JKM)

	rec = s.do(t, http.MethodGet, "/api/companies", nil)
	var all []provisions.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	rec = s.do(t, http.MethodDelete, "/api/companies/acme", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/companies/acme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/companies/acme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceState(t *testing.T) {
	// GIVEN: The 2024 state with a higher minimum wage
	s := newTestServer(t)
	state := s.handler.currentState()
	state.Year = 2025
	state.ProvinceMinimumWage = core.Rupiah(5396761)

	// WHEN: Replacing the state
	rec := s.do(t, http.MethodPut, "/api/provisions/state", state)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: It is served and persisted
	rec = s.do(t, http.MethodGet, "/api/provisions/state", nil)
	var served provisions.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &served))
	assert.Equal(t, 2025, served.Year)

	saved, err := s.store.LoadState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.ProvinceMinimumWage.Equal(core.Rupiah(5396761)))

	// AND: An invalid state is refused
	state.OvertimeHourlyDivisor = core.Rupiah(0)
	rec = s.do(t, http.MethodPut, "/api/provisions/state", state)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
