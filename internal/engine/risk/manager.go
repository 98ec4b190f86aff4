// Package risk sizes positions and places protective levels under a risk
// budget. All sizing is fractional-share; nothing here rounds to lots.
package risk

import (
	"math"

	"stock-advisor/internal/dto"
)

type Manager struct {
	budget dto.RiskBudget
}

// NewManager validates the budget once. Fractions outside (0,1] are
// contradictory and rejected up front.
func NewManager(budget dto.RiskBudget) (*Manager, error) {
	budget.ApplyDefaults()
	if budget.PortfolioValue <= 0 {
		return nil, &dto.InvalidParameterError{Field: "portfolio_value", Reason: "must be positive"}
	}
	if budget.MaxRiskPerTrade <= 0 || budget.MaxRiskPerTrade > 1 {
		return nil, &dto.InvalidParameterError{Field: "max_risk_per_trade", Reason: "must lie in (0,1]"}
	}
	if budget.KellyFractionCap <= 0 || budget.KellyFractionCap > 1 {
		return nil, &dto.InvalidParameterError{Field: "kelly_fraction_cap", Reason: "must lie in (0,1]"}
	}
	return &Manager{budget: budget}, nil
}

func (m *Manager) Budget() dto.RiskBudget {
	return m.budget
}

// PositionSize is the fixed-fraction size: the budgeted risk amount divided
// by the per-share distance to the stop. The stop must sit strictly on the
// loss side of the entry.
func (m *Manager) PositionSize(entry, stop float64, side dto.Side) (float64, error) {
	if entry <= 0 {
		return 0, &dto.InvalidParameterError{Field: "entry", Reason: "must be positive"}
	}
	if err := checkStopSide(entry, stop, side); err != nil {
		return 0, err
	}
	riskPerShare := math.Abs(entry - stop)
	return m.budget.PortfolioValue * m.budget.MaxRiskPerTrade / riskPerShare, nil
}

// KellyFraction computes winRate − (1−winRate)/payoffRatio, floored at 0
// and capped at the budget's Kelly cap. A negative edge never shorts the
// bankroll; it just sizes to zero.
func (m *Manager) KellyFraction(winRate, payoffRatio float64) (float64, error) {
	if winRate < 0 || winRate > 1 {
		return 0, &dto.InvalidParameterError{Field: "win_rate", Reason: "must lie in [0,1]"}
	}
	if payoffRatio <= 0 {
		return 0, &dto.InvalidParameterError{Field: "payoff_ratio", Reason: "must be positive"}
	}
	f := winRate - (1-winRate)/payoffRatio
	if f < 0 {
		f = 0
	}
	if f > m.budget.KellyFractionCap {
		f = m.budget.KellyFractionCap
	}
	return f, nil
}

// KellySize converts a Kelly fraction of the portfolio into shares.
func (m *Manager) KellySize(entry, winRate, payoffRatio float64) (float64, error) {
	if entry <= 0 {
		return 0, &dto.InvalidParameterError{Field: "entry", Reason: "must be positive"}
	}
	f, err := m.KellyFraction(winRate, payoffRatio)
	if err != nil {
		return 0, err
	}
	return m.budget.PortfolioValue * f / entry, nil
}

// StopFromPercent places the stop a fixed fraction away from entry on the
// loss side.
func StopFromPercent(entry, pct float64, side dto.Side) (float64, error) {
	if pct <= 0 || pct >= 1 {
		return 0, &dto.InvalidParameterError{Field: "stop_loss_pct", Reason: "must lie in (0,1)"}
	}
	if side == dto.SideShort {
		return entry * (1 + pct), nil
	}
	return entry * (1 - pct), nil
}

// StopFromATR places the stop a multiple of the average true range away
// from entry. An unavailable ATR means the window never filled; that is an
// insufficient-data condition, not a zero-distance stop.
func StopFromATR(entry float64, atr dto.Float, multiplier float64, side dto.Side) (float64, error) {
	if multiplier <= 0 {
		return 0, &dto.InvalidParameterError{Field: "atr_multiplier", Reason: "must be positive"}
	}
	if !atr.Valid {
		return 0, &dto.InsufficientDataError{Indicator: "atr", Need: 1, Have: 0}
	}
	distance := atr.Value * multiplier
	if distance >= entry && side == dto.SideLong {
		return 0, &dto.InvalidParameterError{Field: "atr_multiplier", Reason: "stop distance exceeds entry price"}
	}
	if side == dto.SideShort {
		return entry + distance, nil
	}
	return entry - distance, nil
}

// TakeProfit applies the risk-reward ratio to the stop distance on the
// profit side of the entry.
func TakeProfit(entry, stop, riskReward float64, side dto.Side) (float64, error) {
	if riskReward <= 0 {
		return 0, &dto.InvalidParameterError{Field: "risk_reward", Reason: "must be positive"}
	}
	if err := checkStopSide(entry, stop, side); err != nil {
		return 0, err
	}
	reward := math.Abs(entry-stop) * riskReward
	if side == dto.SideShort {
		return entry - reward, nil
	}
	return entry + reward, nil
}

// BuildPosition assembles a fully sized position and enforces the level
// invariant (stop < entry < target for longs, reversed for shorts).
func (m *Manager) BuildPosition(entry, stop, riskReward float64, side dto.Side) (dto.Position, error) {
	size, err := m.PositionSize(entry, stop, side)
	if err != nil {
		return dto.Position{}, err
	}
	target, err := TakeProfit(entry, stop, riskReward, side)
	if err != nil {
		return dto.Position{}, err
	}

	pos := dto.Position{
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
		Size:       size,
	}
	if side == dto.SideLong && !(pos.StopLoss < entry && entry < pos.TakeProfit) {
		return dto.Position{}, &dto.InvalidParameterError{Field: "stop", Reason: "long levels must satisfy stop < entry < target"}
	}
	if side == dto.SideShort && !(pos.TakeProfit < entry && entry < pos.StopLoss) {
		return dto.Position{}, &dto.InvalidParameterError{Field: "stop", Reason: "short levels must satisfy target < entry < stop"}
	}
	return pos, nil
}

// Profile derives the risk numbers the aggregator consumes: the absolute
// amount at risk, the plan's risk-reward ratio, and a 95% one-day VaR
// estimate from the recent return series (undefined without enough
// history).
func (m *Manager) Profile(pos dto.Position, kelly dto.Float, recentReturns []float64) dto.RiskProfile {
	riskPerShare := math.Abs(pos.EntryPrice - pos.StopLoss)
	rewardPerShare := math.Abs(pos.TakeProfit - pos.EntryPrice)

	profile := dto.RiskProfile{
		Position:      pos,
		RiskAmount:    riskPerShare * pos.Size,
		KellyFraction: kelly,
	}
	if riskPerShare > 0 {
		profile.RiskReward = rewardPerShare / riskPerShare
	}

	if len(recentReturns) >= 2 {
		sd := stddev(recentReturns)
		positionValue := pos.EntryPrice * pos.Size
		profile.VaR95 = dto.ValidFloat(positionValue * sd * 1.645)
	}
	return profile
}

func checkStopSide(entry, stop float64, side dto.Side) error {
	if side == dto.SideShort {
		if stop <= entry {
			return &dto.InvalidParameterError{Field: "stop", Reason: "must be above entry for a short position"}
		}
		return nil
	}
	if stop >= entry || stop < 0 {
		return &dto.InvalidParameterError{Field: "stop", Reason: "must be below entry for a long position"}
	}
	return nil
}

func stddev(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
