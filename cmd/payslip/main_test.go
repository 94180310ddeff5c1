package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/payroll"
)

const aniRequest = `{
  "company": {"id": "plain", "name": "Plain"},
  "employee": {
    "name": "Ani",
    "permanentStatus": true,
    "hasNPWP": true,
    "earnings": {"base": "6000000"},
    "bonus": {"performance": "500000"}
  },
  "options": {
    "employeeType": "PKWTT",
    "taxNumber": 21,
    "salaryPeriod": "BULANAN",
    "method": "GROSS",
    "currentMonth": 6
  }
}`

func TestRun_Text(t *testing.T) {
	// GIVEN: A request on stdin
	var out bytes.Buffer

	// WHEN: Rendering a text payslip
	err := run("-", "", "text", strings.NewReader(aniRequest), &out)
	require.NoError(t, err)

	// THEN: Amounts are formatted as rupiah
	text := out.String()
	assert.Contains(t, text, "Ani")
	assert.Contains(t, text, "Rp 6.000.000")
	assert.Contains(t, text, "pph21Tax")
	assert.Contains(t, text, "Rp 45.000")
	assert.Contains(t, text, "TAKE-HOME PAY")
	assert.Contains(t, text, "Rp 6.455.000")
	assert.NotContains(t, text, "PAID BY COMPANY")
}

func TestRun_JSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ani.json")
	require.NoError(t, os.WriteFile(path, []byte(aniRequest), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(path, "", "json", nil, &out))

	var res payroll.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, core.PeriodMonthly, res.SalaryPeriod)
	assert.True(t, res.TakeHomePay.Equal(core.Rupiah(6455000)))
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run("-", "", "pdf", strings.NewReader(aniRequest), &out)
	assert.ErrorContains(t, err, "unknown format")

	err = run("-", "", "text", strings.NewReader(`{"options":`), &out)
	assert.ErrorContains(t, err, "invalid request")

	bad := strings.Replace(aniRequest, `"currentMonth": 6`, `"currentMonth": 0`, 1)
	err = run("-", "", "text", strings.NewReader(bad), &out)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
