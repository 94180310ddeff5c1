/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Calculators return these directly; adapters wrap them with %w.

ERROR CATEGORIES:
  1. Configuration errors - A required policy switch or table entry is
     absent or invalid (working-days rule, mixed split, current month)
  2. Unsupported combinations - An enum value outside the closed sets
  3. Lookup misses - TER, PTKP, risk-grade or bracket table has no row
     for the requested key

ATOMICITY:
  Every error is raised before a Result escapes the calculator. Callers
  receive either a complete Result or (nil, err), never a partial one.

USAGE:
  var miss *core.LookupMissError
  if errors.As(err, &miss) {
      log.Printf("no %s row for %s", miss.Table, miss.Key)
  }

SEE ALSO:
  - provisions/: Raises configuration and lookup errors
  - payroll/calculator.go: Raises unsupported-combination errors
  - api/handlers.go: Maps categories to HTTP status codes
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is returned when provisions or options are incomplete.
	ErrConfiguration = errors.New("invalid payroll configuration")

	// ErrUnsupportedCombination is returned when an enum value is outside
	// its closed set.
	ErrUnsupportedCombination = errors.New("unsupported calculation combination")

	// ErrLookupMiss is returned when a statutory table has no matching row.
	ErrLookupMiss = errors.New("rate table lookup miss")

	// ErrCompanyNotFound is returned by provision stores.
	ErrCompanyNotFound = errors.New("company not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError names the offending field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// UnsupportedCombinationError carries the field and value that fell outside
// the supported set.
type UnsupportedCombinationError struct {
	Field string
	Value string
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("unsupported %s %q", e.Field, e.Value)
}

func (e *UnsupportedCombinationError) Unwrap() error {
	return ErrUnsupportedCombination
}

// LookupMissError identifies the table and the key that missed.
type LookupMissError struct {
	Table string
	Key   string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("no %s entry for %s", e.Table, e.Key)
}

func (e *LookupMissError) Unwrap() error {
	return ErrLookupMiss
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedCombination) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrLookupMiss)
}

func IsLookupMiss(err error) bool {
	return errors.Is(err, ErrLookupMiss)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}
