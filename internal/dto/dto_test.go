package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat_JSONNull(t *testing.T) {
	type payload struct {
		RSI Float `json:"rsi"`
		ATR Float `json:"atr"`
	}

	out, err := json.Marshal(payload{RSI: ValidFloat(42.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rsi":42.5,"atr":null}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"rsi":null,"atr":1.25}`), &in))
	assert.False(t, in.RSI.Valid)
	assert.True(t, in.ATR.Valid)
	assert.InDelta(t, 1.25, in.ATR.Value, 1e-9)
}

func TestPriceSeries_Validate(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := func(offsets ...int) PriceSeries {
		s := make(PriceSeries, len(offsets))
		for i, off := range offsets {
			s[i] = PriceBar{Timestamp: start.AddDate(0, 0, off), Close: 10}
		}
		return s
	}

	tests := []struct {
		name      string
		series    PriceSeries
		wantIndex int // -1 means valid
	}{
		{"empty series", nil, -1},
		{"single bar", bars(0), -1},
		{"strictly increasing", bars(0, 1, 2, 5), -1},
		{"duplicate timestamp", bars(0, 1, 1), 2},
		{"out of order", bars(0, 3, 2), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantIndex < 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var gap *DataGapError
			require.True(t, errors.As(err, &gap))
			assert.Equal(t, tt.wantIndex, gap.Index)
		})
	}
}

func TestPriceSeries_LastClose(t *testing.T) {
	assert.False(t, PriceSeries{}.LastClose().Valid)

	s := PriceSeries{{Close: 10}, {Close: 12}}
	last := s.LastClose()
	require.True(t, last.Valid)
	assert.InDelta(t, 12, last.Value, 1e-9)
}

func TestStrategyParams_ApplyDefaults(t *testing.T) {
	var p StrategyParams
	p.ApplyDefaults()
	assert.Equal(t, DefaultStrategyParams(), p)

	// Explicit values survive.
	p = StrategyParams{RSIPeriod: 7, MAShort: 10}
	p.ApplyDefaults()
	assert.Equal(t, 7, p.RSIPeriod)
	assert.Equal(t, 10, p.MAShort)
	assert.Equal(t, 50, p.MALong)
}

func TestStrategyParams_Validate(t *testing.T) {
	params := DefaultStrategyParams()
	require.NoError(t, params.Validate())

	params.MAShort = 60
	err := params.Validate()
	require.Error(t, err)

	var invalid *InvalidParameterError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "ma_short", invalid.Field)
	assert.Contains(t, err.Error(), "ma_short")
}

func TestFundamentalSnapshot_Empty(t *testing.T) {
	assert.True(t, FundamentalSnapshot{}.Empty())
	assert.False(t, FundamentalSnapshot{EPSGrowth: ValidFloat(0.1)}.Empty())
}
