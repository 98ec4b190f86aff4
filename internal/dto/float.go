package dto

import "encoding/json"

// Float is a numeric value that may be unavailable. Indicators inside their
// warm-up window and undefined metrics (0/0 win rate, zero-variance Sharpe)
// are represented this way rather than coerced to zero or infinity.
type Float struct {
	Value float64
	Valid bool
}

// ValidFloat wraps a defined value.
func ValidFloat(v float64) Float {
	return Float{Value: v, Valid: true}
}

// Undefined is the zero Float, named for readability at call sites.
func Undefined() Float {
	return Float{}
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}
