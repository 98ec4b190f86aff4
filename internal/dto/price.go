package dto

import "time"

// PriceBar is a single OHLCV bar.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// PriceSeries is an ordered sequence of bars with strictly increasing
// timestamps. Call Validate before handing a series to the engine.
type PriceSeries []PriceBar

// Validate rejects non-monotonic or duplicate timestamps with a
// DataGapError. Gaps are never silently repaired.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Timestamp.After(s[i-1].Timestamp) {
			reason := "non-monotonic timestamp"
			if s[i].Timestamp.Equal(s[i-1].Timestamp) {
				reason = "duplicate timestamp"
			}
			return &DataGapError{Index: i, Reason: reason}
		}
	}
	return nil
}

// Closes extracts the closing prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// LastClose returns the most recent closing price, unavailable for an
// empty series.
func (s PriceSeries) LastClose() Float {
	if len(s) == 0 {
		return Undefined()
	}
	return ValidFloat(s[len(s)-1].Close)
}
