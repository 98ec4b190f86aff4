package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/dto"
)

func testParams() dto.StrategyParams {
	return dto.StrategyParams{
		RSIPeriod:      3,
		RSIOversold:    30,
		RSIOverbought:  90,
		MAShort:        2,
		MALong:         3,
		MALongTerm:     4,
		BollingerWin:   3,
		BollingerWidth: 2,
		MACDFast:       2,
		MACDSlow:       3,
		MACDSignal:     2,
		ATRWindow:      2,
		ATRMultiplier:  2,
		StopLossPct:    0.05,
		TakeProfitPct:  0.10,
	}
}

func dailySeries(closes ...float64) dto.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(dto.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = dto.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		}
	}
	return series
}

// A decline into a sharp recovery: the 2-bar MA crosses up through the
// 3-bar MA on bar 4, so the simulator goes long at that close.
func pullbackEntry(tail ...float64) dto.PriceSeries {
	return dailySeries(append([]float64{100, 98, 96, 94, 100}, tail...)...)
}

func TestSimulator_Run_TakeProfitExit(t *testing.T) {
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)

	series := pullbackEntry(104, 108, 112)
	result, err := sim.Run(context.Background(), series)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, dto.SideLong, trade.Side)
	assert.Equal(t, 4, trade.EntryBar)
	assert.InDelta(t, 100, trade.EntryPrice, 1e-9)
	assert.Equal(t, dto.ExitTakeProfit, trade.ExitReason)
	assert.InDelta(t, 110, trade.ExitPrice, 1e-9, "filled at the target, not the bar high")
	assert.InDelta(t, 1000, trade.ProfitLoss, 1e-9)

	assert.InDelta(t, 11_000, result.FinalEquity, 1e-9)
	assert.Len(t, result.EquityCurve, len(series))

	require.True(t, result.Metrics.TotalReturn.Valid)
	assert.InDelta(t, 0.10, result.Metrics.TotalReturn.Value, 1e-9)
	require.True(t, result.Metrics.BuyHoldReturn.Valid)
	assert.InDelta(t, 0.12, result.Metrics.BuyHoldReturn.Value, 1e-9)
}

// When one bar spans both the stop and the target, the stop fills.
func TestSimulator_Run_StopBeatsTargetInsideOneBar(t *testing.T) {
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)

	series := pullbackEntry(95)
	series[5].Low = 94
	series[5].High = 111

	result, err := sim.Run(context.Background(), series)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, dto.ExitStopLoss, trade.ExitReason)
	assert.InDelta(t, 95, trade.ExitPrice, 1e-9)
	assert.InDelta(t, -500, trade.ProfitLoss, 1e-9)
	assert.InDelta(t, 9_500, result.FinalEquity, 1e-9)
}

func TestSimulator_Run_OpenPositionClosedAtEndOfData(t *testing.T) {
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), pullbackEntry(101, 102))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, dto.ExitEndOfData, trade.ExitReason)
	assert.InDelta(t, 102, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 10_200, result.FinalEquity, 1e-9)
}

func TestSimulator_Run_FlatTapeNeverTrades(t *testing.T) {
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)

	result, err := sim.Run(context.Background(), dailySeries(50, 50, 50, 50, 50, 50, 50, 50))
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.InDelta(t, 10_000, result.FinalEquity, 1e-9)
	for _, equity := range result.EquityCurve {
		assert.InDelta(t, 10_000, equity, 1e-9)
	}

	m := result.Metrics
	assert.Equal(t, 0, m.TotalTrades)
	assert.False(t, m.WinRate.Valid, "win rate over zero trades is undefined")
	assert.False(t, m.ProfitFactor.Valid)
	require.True(t, m.MaxDrawdown.Valid)
	assert.InDelta(t, 0, m.MaxDrawdown.Value, 1e-9)
}

func TestSimulator_Run_Deterministic(t *testing.T) {
	series := pullbackEntry(104, 108, 112, 109, 111)

	first, err := mustRun(t, series)
	require.NoError(t, err)
	second, err := mustRun(t, series)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func mustRun(t *testing.T, series dto.PriceSeries) (*dto.BacktestResult, error) {
	t.Helper()
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)
	return sim.Run(context.Background(), series)
}

func TestSimulator_Run_HonorsCancellation(t *testing.T) {
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sim.Run(ctx, pullbackEntry(104, 108))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_Run_RejectsBrokenSeries(t *testing.T) {
	sim, err := NewSimulator(testParams(), 10_000)
	require.NoError(t, err)

	series := pullbackEntry(104)
	series[3].Timestamp = series[2].Timestamp

	_, err = sim.Run(context.Background(), series)
	require.Error(t, err)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name  string
		curve []float64
		want  float64
	}{
		{"recovered dip", []float64{100, 110, 99, 121}, 0.1},
		{"monotonic rise", []float64{100, 105, 110}, 0},
		{"full history low at the end", []float64{100, 120, 90}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maxDrawdown(tt.curve)
			require.True(t, got.Valid)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
		})
	}

	assert.False(t, maxDrawdown(nil).Valid)
}

func TestSharpe(t *testing.T) {
	assert.False(t, sharpe([]float64{0.01}, 252).Valid, "needs at least two returns")
	assert.False(t, sharpe([]float64{0.01, 0.01, 0.01}, 252).Valid, "zero variance is undefined, not infinite")

	got := sharpe([]float64{0.01, -0.005, 0.02, 0.003}, 252)
	require.True(t, got.Valid)
	assert.Greater(t, got.Value, 0.0)
}

func TestAnnualizationFactor(t *testing.T) {
	daily := dailySeries(1, 2, 3, 4)
	assert.InDelta(t, 252, annualizationFactor(daily), 1e-9)

	hourly := make(dto.PriceSeries, 4)
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	for i := range hourly {
		hourly[i] = dto.PriceBar{Timestamp: start.Add(time.Duration(i) * time.Hour), Close: 1}
	}
	assert.InDelta(t, 252*6.5, annualizationFactor(hourly), 1e-9)

	weekly := make(dto.PriceSeries, 4)
	for i := range weekly {
		weekly[i] = dto.PriceBar{Timestamp: start.AddDate(0, 0, i*7), Close: 1}
	}
	assert.InDelta(t, 52, annualizationFactor(weekly), 1e-9)
}
