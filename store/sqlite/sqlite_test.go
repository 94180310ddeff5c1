package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStore_CompanyLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// GIVEN: The default company saved under a new ID
	p, err := provisions.Default()
	require.NoError(t, err)
	acme := p.Company
	acme.ID = "acme"
	acme.Name = "Acme"
	acme.Holidays = []string{"2024-08-17"}
	require.NoError(t, st.SaveCompany(ctx, acme))

	// WHEN: Reading it back
	got, err := st.GetCompany(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, got)

	// THEN: Every switch survives the JSON column
	assert.Equal(t, acme.Name, got.Name)
	assert.Equal(t, acme.RiskGrade, got.RiskGrade)
	assert.Equal(t, acme.Holidays, got.Holidays)
	assert.True(t, acme.OvertimeRate.Equal(got.OvertimeRate))

	// Upsert keeps one row
	acme.Name = "Acme Indonesia"
	require.NoError(t, st.SaveCompany(ctx, acme))
	all, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Acme Indonesia", all[0].Name)

	require.NoError(t, st.DeleteCompany(ctx, "acme"))
	got, err = st.GetCompany(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = st.DeleteCompany(ctx, "acme")
	assert.ErrorIs(t, err, core.ErrCompanyNotFound)
}

func TestStore_StateSnapshot(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	missing, err := st.LoadState(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	p, err := provisions.Default()
	require.NoError(t, err)
	require.NoError(t, st.SaveState(ctx, p.State))

	got, err := st.LoadState(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NoError(t, got.Validate())

	// THEN: Tables still answer lookups after the round trip
	_, band, err := got.TER.Lookup(provisions.StatusFor(false, 0), core.Rupiah(6000000))
	require.NoError(t, err)
	assert.Equal(t, "0.75", band.Rate.String())
}

func TestStore_AppendRunsIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	result := &payroll.Result{
		EmployeeType: core.EmployeePKWTT,
		TaxNumber:    core.Pph21,
		SalaryPeriod: core.PeriodMonthly,
		Method:       core.MethodNett,
		CurrentMonth: 6,
		TakeHomePay:  core.Rupiah(6000000),
	}
	now := time.Now()
	runs := []store.Run{
		{ID: "r1", BatchID: "b1", CompanyID: "default", Employee: "Ani", Month: 6, Result: result, CreatedAt: now},
		{ID: "r2", BatchID: "b1", CompanyID: "default", Employee: "Budi", Month: 6, Result: result, CreatedAt: now},
	}
	require.NoError(t, st.AppendRuns(ctx, runs))

	// WHEN: A second batch reuses an ID
	err := st.AppendRuns(ctx, []store.Run{
		{ID: "r3", BatchID: "b2", Employee: "Citra", Month: 6, Result: result},
		{ID: "r1", BatchID: "b2", Employee: "Dewi", Month: 6, Result: result},
	})

	// THEN: Nothing from it is stored
	assert.ErrorIs(t, err, store.ErrDuplicateRun)
	b2, err := st.LoadRuns(ctx, "b2")
	require.NoError(t, err)
	assert.Empty(t, b2)

	b1, err := st.LoadRuns(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, b1, 2)
	assert.Equal(t, "Ani", b1[0].Employee)
	assert.Equal(t, "Budi", b1[1].Employee)
	assert.True(t, b1[0].Result.TakeHomePay.Equal(core.Rupiah(6000000)))
}
