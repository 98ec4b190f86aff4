package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/dto"
)

func TestScorer_Score_FullSnapshot(t *testing.T) {
	scorer := NewScorer()

	t.Run("strong company scores 100 across the board", func(t *testing.T) {
		got := scorer.Score(dto.FundamentalSnapshot{
			PERatio:          dto.ValidFloat(10),
			PBRatio:          dto.ValidFloat(1.2),
			EVEBITDA:         dto.ValidFloat(6),
			ROE:              dto.ValidFloat(0.22),
			ROA:              dto.ValidFloat(0.12),
			GrossMargin:      dto.ValidFloat(0.55),
			OperatingMargin:  dto.ValidFloat(0.25),
			DebtToEquity:     dto.ValidFloat(0.1),
			InterestCoverage: dto.ValidFloat(15),
			RevenueGrowth:    dto.ValidFloat(0.20),
			EPSGrowth:        dto.ValidFloat(0.18),
		})

		require.True(t, got.Composite.Valid)
		assert.InDelta(t, 100, got.Composite.Value, 1e-9)
		assert.InDelta(t, 100, got.Valuation.Value, 1e-9)
		assert.InDelta(t, 100, got.Profitability.Value, 1e-9)
		assert.InDelta(t, 100, got.Leverage.Value, 1e-9)
		assert.InDelta(t, 100, got.Growth.Value, 1e-9)
	})

	t.Run("weak company scores 0", func(t *testing.T) {
		got := scorer.Score(dto.FundamentalSnapshot{
			PERatio:          dto.ValidFloat(60),
			PBRatio:          dto.ValidFloat(8),
			EVEBITDA:         dto.ValidFloat(25),
			ROE:              dto.ValidFloat(-0.05),
			ROA:              dto.ValidFloat(0.01),
			GrossMargin:      dto.ValidFloat(0.05),
			OperatingMargin:  dto.ValidFloat(0.01),
			DebtToEquity:     dto.ValidFloat(2.5),
			InterestCoverage: dto.ValidFloat(1),
			RevenueGrowth:    dto.ValidFloat(-0.10),
			EPSGrowth:        dto.ValidFloat(-0.20),
		})

		require.True(t, got.Composite.Valid)
		assert.InDelta(t, 0, got.Composite.Value, 1e-9)
	})
}

func TestScorer_Score_TierBoundaries(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name string
		snap dto.FundamentalSnapshot
		want float64 // valuation sub-score
	}{
		{"P/E below 15 is top tier", dto.FundamentalSnapshot{PERatio: dto.ValidFloat(14.9)}, 100},
		{"P/E of 20 is second tier", dto.FundamentalSnapshot{PERatio: dto.ValidFloat(20)}, 60},
		{"P/E of 30 is third tier", dto.FundamentalSnapshot{PERatio: dto.ValidFloat(30)}, 20},
		{"P/E of 40 is bottom tier", dto.FundamentalSnapshot{PERatio: dto.ValidFloat(40)}, 0},
		{"negative P/E scores 0, not unavailable", dto.FundamentalSnapshot{PERatio: dto.ValidFloat(-8)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.snap)
			require.True(t, got.Valuation.Valid)
			assert.InDelta(t, tt.want, got.Valuation.Value, 1e-9)
		})
	}
}

func TestScorer_Score_ZeroDebtIsBestLeverage(t *testing.T) {
	scorer := NewScorer()

	got := scorer.Score(dto.FundamentalSnapshot{DebtToEquity: dto.ValidFloat(0)})
	require.True(t, got.Leverage.Valid)
	assert.InDelta(t, 100, got.Leverage.Value, 1e-9)
}

func TestScorer_Score_MissingRatiosShrinkTheDenominator(t *testing.T) {
	scorer := NewScorer()

	// Only two profitability ratios present: 100 and 60 average to 80, and
	// the other two must not drag the category toward zero.
	got := scorer.Score(dto.FundamentalSnapshot{
		ROE: dto.ValidFloat(0.20), // 100
		ROA: dto.ValidFloat(0.07), // 60
	})

	require.True(t, got.Profitability.Valid)
	assert.InDelta(t, 80, got.Profitability.Value, 1e-9)

	assert.False(t, got.Valuation.Valid)
	assert.False(t, got.Leverage.Valid)
	assert.False(t, got.Growth.Valid)

	// Composite averages the one available category.
	require.True(t, got.Composite.Valid)
	assert.InDelta(t, 80, got.Composite.Value, 1e-9)
}

func TestScorer_Score_EmptySnapshotIsUnavailable(t *testing.T) {
	scorer := NewScorer()

	got := scorer.Score(dto.FundamentalSnapshot{})
	assert.False(t, got.Composite.Valid)
	assert.False(t, got.Valuation.Valid)
	assert.False(t, got.Profitability.Valid)
	assert.False(t, got.Leverage.Valid)
	assert.False(t, got.Growth.Valid)
}

func TestScorer_Score_CompositeStaysInRange(t *testing.T) {
	scorer := NewScorer()

	snaps := []dto.FundamentalSnapshot{
		{PERatio: dto.ValidFloat(22), ROE: dto.ValidFloat(0.12), DebtToEquity: dto.ValidFloat(0.6)},
		{EVEBITDA: dto.ValidFloat(10), EPSGrowth: dto.ValidFloat(0.12)},
		{InterestCoverage: dto.ValidFloat(3), RevenueGrowth: dto.ValidFloat(0.02)},
	}
	for _, snap := range snaps {
		got := scorer.Score(snap)
		require.True(t, got.Composite.Valid)
		assert.GreaterOrEqual(t, got.Composite.Value, 0.0)
		assert.LessOrEqual(t, got.Composite.Value, 100.0)
	}
}
