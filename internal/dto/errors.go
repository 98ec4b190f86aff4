package dto

import "fmt"

// InsufficientDataError reports a windowed computation that has fewer bars
// than its warm-up window. Consumers mark the affected indicator unavailable
// instead of aborting the pipeline.
type InsufficientDataError struct {
	Indicator string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d bars, have %d", e.Indicator, e.Need, e.Have)
}

// InvalidParameterError reports contradictory strategy or risk parameters.
// It aborts the specific computation immediately.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// DataGapError reports non-monotonic or duplicate timestamps in an input
// price series. Series with gaps are rejected at ingestion, never repaired.
type DataGapError struct {
	Index  int
	Reason string
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("price series rejected at bar %d: %s", e.Index, e.Reason)
}
