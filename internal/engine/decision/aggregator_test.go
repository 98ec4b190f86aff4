package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/dto"
)

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(DefaultWeights(), DefaultThresholds())
	require.NoError(t, err)
	return agg
}

func bullishSignals() *dto.IndicatorSignals {
	return &dto.IndicatorSignals{
		RSI:          dto.RSIOversold,
		MACross:      dto.GoldenCross,
		PriceVsShort: dto.ValidFloat(0.02),
		PriceVsLong:  dto.ValidFloat(0.05),
		PriceVsTerm:  dto.ValidFloat(0.10),
		Bollinger:    dto.BandBelow,
		MACD:         dto.BiasBullish,
	}
}

func bearishSignals() *dto.IndicatorSignals {
	return &dto.IndicatorSignals{
		RSI:          dto.RSIOverbought,
		MACross:      dto.DeathCross,
		PriceVsShort: dto.ValidFloat(-0.02),
		PriceVsLong:  dto.ValidFloat(-0.05),
		PriceVsTerm:  dto.ValidFloat(-0.10),
		Bollinger:    dto.BandAbove,
		MACD:         dto.BiasBearish,
	}
}

func TestNewAggregator_Validation(t *testing.T) {
	_, err := NewAggregator(Weights{}, DefaultThresholds())
	require.Error(t, err)

	_, err = NewAggregator(Weights{Technical: -1, Fundamental: 2}, DefaultThresholds())
	require.Error(t, err)

	_, err = NewAggregator(DefaultWeights(), Thresholds{StrongBuy: 0.2, Buy: 0.6, Sell: -0.2, StrongSell: -0.6})
	require.Error(t, err)
}

func TestAggregator_Decide_NothingAvailable(t *testing.T) {
	agg := testAggregator(t)

	rec := agg.Decide("ACME", Inputs{})
	assert.Equal(t, dto.Hold, rec.Action)
	assert.Zero(t, rec.Composite)
	assert.Zero(t, rec.Confidence)
	assert.Empty(t, rec.Components)
}

func TestAggregator_Decide_ActionThresholds(t *testing.T) {
	agg := testAggregator(t)

	// Sentiment as the only available category carries the full weight, so
	// the composite equals the sentiment score.
	tests := []struct {
		name      string
		sentiment float64
		want      dto.Action
	}{
		{"strong buy at the upper threshold", 0.6, dto.StrongBuy},
		{"buy above 0.2", 0.35, dto.Buy},
		{"hold around zero", 0.0, dto.Hold},
		{"hold just below buy", 0.19, dto.Hold},
		{"sell below -0.2", -0.35, dto.Sell},
		{"strong sell at the lower threshold", -0.6, dto.StrongSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := agg.Decide("ACME", Inputs{Sentiment: dto.ValidFloat(tt.sentiment)})
			assert.Equal(t, tt.want, rec.Action)
			assert.InDelta(t, tt.sentiment, rec.Composite, 1e-9)
		})
	}
}

func TestAggregator_Decide_UnanimousSignals(t *testing.T) {
	agg := testAggregator(t)

	t.Run("everything bullish", func(t *testing.T) {
		rec := agg.Decide("ACME", Inputs{
			Technical:   bullishSignals(),
			Fundamental: dto.ValidFloat(95),
			Risk:        &dto.RiskProfile{RiskReward: 3},
			Backtest: &dto.BacktestMetrics{
				TotalTrades: 20,
				SharpeRatio: dto.ValidFloat(2.5),
				WinRate:     dto.ValidFloat(0.8),
			},
			Sentiment: dto.ValidFloat(0.9),
		})

		assert.Equal(t, dto.StrongBuy, rec.Action)
		assert.Greater(t, rec.Composite, 0.6)
		assert.Greater(t, rec.Confidence, 0.8, "unanimous full-coverage inputs are high confidence")
		assert.Len(t, rec.Components, 5)
	})

	t.Run("everything bearish", func(t *testing.T) {
		rec := agg.Decide("ACME", Inputs{
			Technical:   bearishSignals(),
			Fundamental: dto.ValidFloat(5),
			Backtest: &dto.BacktestMetrics{
				TotalTrades: 20,
				SharpeRatio: dto.ValidFloat(-2),
				WinRate:     dto.ValidFloat(0.2),
			},
			Sentiment: dto.ValidFloat(-0.9),
		})

		assert.Equal(t, dto.StrongSell, rec.Action)
		assert.Less(t, rec.Composite, -0.6)
	})
}

func TestAggregator_Decide_MissingCategoriesRenormalize(t *testing.T) {
	agg := testAggregator(t)

	rec := agg.Decide("ACME", Inputs{Fundamental: dto.ValidFloat(100)})

	require.Len(t, rec.Components, 1)
	assert.Equal(t, CategoryFundamental, rec.Components[0].Category)
	assert.InDelta(t, 1.0, rec.Components[0].Weight, 1e-9, "sole category takes the full normalized weight")
	assert.InDelta(t, 1.0, rec.Composite, 1e-9)
	assert.Equal(t, dto.StrongBuy, rec.Action)
}

func TestAggregator_Decide_CoverageDampsConfidence(t *testing.T) {
	agg := testAggregator(t)

	full := agg.Decide("ACME", Inputs{
		Technical:   bullishSignals(),
		Fundamental: dto.ValidFloat(90),
		Risk:        &dto.RiskProfile{RiskReward: 3},
		Backtest: &dto.BacktestMetrics{
			TotalTrades: 10,
			SharpeRatio: dto.ValidFloat(2),
			WinRate:     dto.ValidFloat(0.8),
		},
		Sentiment: dto.ValidFloat(0.8),
	})
	partial := agg.Decide("ACME", Inputs{Fundamental: dto.ValidFloat(90)})

	assert.Less(t, partial.Confidence, full.Confidence)
}

func TestAggregator_Decide_DisagreementLowersConfidence(t *testing.T) {
	agg := testAggregator(t)

	agreeing := agg.Decide("ACME", Inputs{
		Fundamental: dto.ValidFloat(90),
		Sentiment:   dto.ValidFloat(0.8),
	})
	conflicted := agg.Decide("ACME", Inputs{
		Fundamental: dto.ValidFloat(90),
		Sentiment:   dto.ValidFloat(-0.8),
	})

	assert.Less(t, conflicted.Confidence, agreeing.Confidence)
}

func TestAggregator_Decide_ZeroTradeBacktestIsExcluded(t *testing.T) {
	agg := testAggregator(t)

	rec := agg.Decide("ACME", Inputs{
		Fundamental: dto.ValidFloat(80),
		Backtest:    &dto.BacktestMetrics{TotalTrades: 0},
	})

	require.Len(t, rec.Components, 1)
	assert.Equal(t, CategoryFundamental, rec.Components[0].Category)
}

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		name string
		sig  *dto.IndicatorSignals
		want dto.Float
	}{
		{"nil signals", nil, dto.Undefined()},
		{"fully unavailable", &dto.IndicatorSignals{
			RSI:       dto.RSIUnavailable,
			MACross:   dto.NoCross,
			Bollinger: dto.BandUnavailable,
			MACD:      dto.BiasUnavailable,
		}, dto.Undefined()},
		{"all bullish votes", bullishSignals(), dto.ValidFloat(1)},
		{"all bearish votes", bearishSignals(), dto.ValidFloat(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := technicalScore(tt.sig)
			assert.Equal(t, tt.want.Valid, got.Valid)
			if tt.want.Valid {
				assert.InDelta(t, tt.want.Value, got.Value, 1e-9)
			}
		})
	}
}

func TestSubScoresStayBounded(t *testing.T) {
	assert.InDelta(t, 1, fundamentalScore(dto.ValidFloat(150)).Value, 1e-9)
	assert.InDelta(t, -1, fundamentalScore(dto.ValidFloat(-20)).Value, 1e-9)
	assert.InDelta(t, 0, fundamentalScore(dto.ValidFloat(50)).Value, 1e-9)

	assert.InDelta(t, 1, riskScore(&dto.RiskProfile{RiskReward: 10}).Value, 1e-9)
	assert.InDelta(t, -1, riskScore(&dto.RiskProfile{RiskReward: 0.01}).Value, 1e-9)
	assert.False(t, riskScore(nil).Valid)

	assert.InDelta(t, 1, sentimentScore(dto.ValidFloat(5)).Value, 1e-9)
	assert.False(t, sentimentScore(dto.Undefined()).Valid)
}
