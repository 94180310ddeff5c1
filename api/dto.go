/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON envelopes around the engine types. Employee, Options,
  Company, State and Result are already JSON-shaped, so the DTOs only add
  what a request needs on top: which company to use and batch bookkeeping.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers

VALIDATION:
  Enum fields reject unknown values while decoding. Everything else is
  validated by the engine (payroll.New, Options.Validate).

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/employee.go, payroll/result.go: Engine input and output
*/
package api

import (
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/provisions"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CalculateRequest is the body of POST /api/payroll/calculate.
// Company, when present, is used as-is instead of the stored CompanyID.
type CalculateRequest struct {
	CompanyID string              `json:"companyId,omitempty"`
	Company   *provisions.Company `json:"company,omitempty"`
	Employee  payroll.Employee    `json:"employee"`
	Options   payroll.Options     `json:"options"`
}

// BatchRequest runs one set of options over many employees.
type BatchRequest struct {
	CompanyID string             `json:"companyId,omitempty"`
	Options   payroll.Options    `json:"options"`
	Employees []payroll.Employee `json:"employees"`
}

// BatchResponse lists results in request order.
type BatchResponse struct {
	BatchID string      `json:"batchId"`
	Items   []BatchItem `json:"items"`
}

type BatchItem struct {
	RunID    string          `json:"runId"`
	Employee string          `json:"employee"`
	Result   *payroll.Result `json:"result"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
