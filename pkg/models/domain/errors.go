package domain

import (
	"errors"
	"fmt"
)

// Causes wrapped by ConfigurationError and AggregationError.
var (
	ErrInvalidYearFilter = errors.New("invalid year filter")
	ErrYearOutOfRange    = errors.New("year out of range")
	ErrSpanTooWide       = errors.New("year range too wide")
	ErrMissingDateColumn = errors.New("filter date column not found")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyInput        = errors.New("input has no header row")
	ErrColumnType        = errors.New("column has wrong declared type")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrUnknownAnalyzer   = errors.New("unknown analyzer")
	ErrNoAnalyzers       = errors.New("no analyzers enabled")
)

// ConfigurationError means the engine cannot run with the given input or settings.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps err with the failing operation.
func NewConfigurationError(op string, err error) error {
	return &ConfigurationError{Op: op, Err: err}
}

// AggregationError means an analyzer faulted internally, as opposed to finding
// defects in the data.
type AggregationError struct {
	Analyzer AnalyzerKind
	Err      error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation error: analyzer %s: %v", e.Analyzer, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsAggregationError reports whether err carries an AggregationError.
func IsAggregationError(err error) bool {
	var ae *AggregationError
	return errors.As(err, &ae)
}
