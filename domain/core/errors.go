package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Chart build errors, fatal to a single chart only
	ErrChartBuild         = errors.New("chart build failed")
	ErrAxisNotFound       = fmt.Errorf("%w: axis not found", ErrChartBuild)
	ErrNonNumericAxis     = fmt.Errorf("%w: column is not numerical", ErrChartBuild)
	ErrEmptyAxisData      = fmt.Errorf("%w: one or more axis values are empty", ErrChartBuild)
	ErrUnknownChartType   = fmt.Errorf("%w: unknown chart type", ErrChartBuild)
	ErrRedirectLimit      = fmt.Errorf("%w: chart type redirect limit exceeded", ErrChartBuild)
	ErrInvalidQueryResult = errors.New("query result is not a valid non-empty table")
	ErrQueryExecution     = errors.New("query execution failed")
	ErrAllZeroAxis        = errors.New("every y-axis column is zero or null")

	// Model output errors, retried by the axis resolver
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrAxisResolution       = errors.New("axis resolution failed")

	// Input errors
	ErrInvalidSummary = errors.New("invalid data summary")
)

// Error constructors with context
func NewAxisNotFoundError(role string) error {
	return fmt.Errorf("%w: %s", ErrAxisNotFound, role)
}

func NewNonNumericAxisError(column string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrNonNumericAxis, column)
	}
	return fmt.Errorf("%w: %s: %w", ErrNonNumericAxis, column, cause)
}

func NewEmptyAxisError(role string) error {
	return fmt.Errorf("%w: %s", ErrEmptyAxisData, role)
}

func NewMalformedOutputError(step string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedModelOutput, step, reason)
}

// NewAxisResolutionError keeps last in the chain, so callers can still test
// for ErrMalformedModelOutput or a context deadline.
func NewAxisResolutionError(chartType string, attempts int, last error) error {
	if last == nil {
		return fmt.Errorf("%w for %s after %d attempts", ErrAxisResolution, chartType, attempts)
	}
	return fmt.Errorf("%w for %s after %d attempts: %w", ErrAxisResolution, chartType, attempts, last)
}

// Error checking helpers
func IsChartError(err error) bool {
	return errors.Is(err, ErrChartBuild)
}

func IsModelOutputError(err error) bool {
	return errors.Is(err, ErrMalformedModelOutput)
}

func IsSkippableResult(err error) bool {
	return errors.Is(err, ErrInvalidQueryResult) || errors.Is(err, ErrAllZeroAxis)
}
