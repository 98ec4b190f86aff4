// Package fundamental turns a financial-statement snapshot into a 0-100
// composite quality score. Missing ratios shrink the denominator instead
// of dragging the score down, so partial data still yields a meaningful
// number on the same scale.
package fundamental

import "stock-advisor/internal/dto"

// Thresholds hold the tier boundaries per ratio. Ratios score 100, 60, 20
// or 0 depending on which tier they fall in.
type Thresholds struct {
	PE       [3]float64 // lower is better
	PB       [3]float64
	EVEBITDA [3]float64
	ROE      [3]float64 // higher is better
	ROA      [3]float64
	GrossMgn [3]float64
	OpMargin [3]float64
	DE       [3]float64 // lower is better
	IntCov   [3]float64 // higher is better
	RevGrow  [3]float64
	EPSGrow  [3]float64
}

// DefaultThresholds are the classic value/quality screens: P/E under 15 is
// cheap, ROE above 15% is strong, debt/equity under 0.3 is conservative.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PE:       [3]float64{15, 25, 35},
		PB:       [3]float64{1.5, 3, 5},
		EVEBITDA: [3]float64{8, 12, 18},
		ROE:      [3]float64{0.15, 0.10, 0.05},
		ROA:      [3]float64{0.10, 0.05, 0.02},
		GrossMgn: [3]float64{0.40, 0.20, 0.10},
		OpMargin: [3]float64{0.20, 0.10, 0.05},
		DE:       [3]float64{0.3, 0.5, 0.7},
		IntCov:   [3]float64{10, 5, 2},
		RevGrow:  [3]float64{0.15, 0.10, 0.05},
		EPSGrow:  [3]float64{0.15, 0.10, 0.05},
	}
}

type Scorer struct {
	thresholds Thresholds
}

func NewScorer() *Scorer {
	return &Scorer{thresholds: DefaultThresholds()}
}

func NewScorerWithThresholds(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// Score computes per-category sub-scores and the composite. A category with
// no available ratio at all stays unavailable and is excluded from the
// composite average, keeping the 0-100 range regardless of completeness.
func (s *Scorer) Score(snap dto.FundamentalSnapshot) dto.FundamentalScore {
	t := s.thresholds

	valuation := category(
		lowerBetter(snap.PERatio, t.PE),
		lowerBetter(snap.PBRatio, t.PB),
		lowerBetter(snap.EVEBITDA, t.EVEBITDA),
	)
	profitability := category(
		higherBetter(snap.ROE, t.ROE),
		higherBetter(snap.ROA, t.ROA),
		higherBetter(snap.GrossMargin, t.GrossMgn),
		higherBetter(snap.OperatingMargin, t.OpMargin),
	)
	leverage := category(
		lowerBetterAllowZero(snap.DebtToEquity, t.DE),
		higherBetter(snap.InterestCoverage, t.IntCov),
	)
	growth := category(
		higherBetter(snap.RevenueGrowth, t.RevGrow),
		higherBetter(snap.EPSGrowth, t.EPSGrow),
	)

	return dto.FundamentalScore{
		Composite:     category(valuation, profitability, leverage, growth),
		Valuation:     valuation,
		Profitability: profitability,
		Leverage:      leverage,
		Growth:        growth,
	}
}

// category averages the available members; unavailable when none are.
func category(members ...dto.Float) dto.Float {
	var sum float64
	var n int
	for _, m := range members {
		if m.Valid {
			sum += m.Value
			n++
		}
	}
	if n == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat(sum / float64(n))
}

// lowerBetter scores a ratio where smaller is healthier. Non-positive
// values (e.g. negative earnings behind a P/E) score zero but still count.
func lowerBetter(v dto.Float, tiers [3]float64) dto.Float {
	if !v.Valid {
		return dto.Undefined()
	}
	switch {
	case v.Value <= 0:
		return dto.ValidFloat(0)
	case v.Value < tiers[0]:
		return dto.ValidFloat(100)
	case v.Value < tiers[1]:
		return dto.ValidFloat(60)
	case v.Value < tiers[2]:
		return dto.ValidFloat(20)
	default:
		return dto.ValidFloat(0)
	}
}

// lowerBetterAllowZero is lowerBetter for ratios where zero is the best
// possible reading (an unlevered balance sheet).
func lowerBetterAllowZero(v dto.Float, tiers [3]float64) dto.Float {
	if !v.Valid {
		return dto.Undefined()
	}
	if v.Value < 0 {
		return dto.ValidFloat(0)
	}
	switch {
	case v.Value < tiers[0]:
		return dto.ValidFloat(100)
	case v.Value < tiers[1]:
		return dto.ValidFloat(60)
	case v.Value < tiers[2]:
		return dto.ValidFloat(20)
	default:
		return dto.ValidFloat(0)
	}
}

func higherBetter(v dto.Float, tiers [3]float64) dto.Float {
	if !v.Valid {
		return dto.Undefined()
	}
	switch {
	case v.Value > tiers[0]:
		return dto.ValidFloat(100)
	case v.Value > tiers[1]:
		return dto.ValidFloat(60)
	case v.Value > tiers[2]:
		return dto.ValidFloat(20)
	default:
		return dto.ValidFloat(0)
	}
}
