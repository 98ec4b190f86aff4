package backtest

import (
	"math"
	"time"

	"stock-advisor/internal/dto"
)

// computeMetrics derives the performance numbers from the finished run.
// Every division-by-zero condition is reported as an undefined value, so
// a zero-trade or zero-variance run never yields 0 or Inf.
func computeMetrics(result *dto.BacktestResult, series dto.PriceSeries) dto.BacktestMetrics {
	m := dto.BacktestMetrics{TotalTrades: len(result.Trades)}

	var grossProfit, grossLoss float64
	for _, trade := range result.Trades {
		if trade.ProfitLoss > 0 {
			m.WinningTrades++
			grossProfit += trade.ProfitLoss
		} else {
			m.LosingTrades++
			grossLoss -= trade.ProfitLoss
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = dto.ValidFloat(float64(m.WinningTrades) / float64(m.TotalTrades))
	}
	if grossLoss > 0 {
		m.ProfitFactor = dto.ValidFloat(grossProfit / grossLoss)
	}

	if result.InitialCapital > 0 {
		m.TotalReturn = dto.ValidFloat((result.FinalEquity - result.InitialCapital) / result.InitialCapital)
	}
	if len(series) > 1 && series[0].Close > 0 {
		first, last := series[0].Close, series[len(series)-1].Close
		m.BuyHoldReturn = dto.ValidFloat((last - first) / first)
	}

	returns := barReturns(result.EquityCurve)
	m.SharpeRatio = sharpe(returns, annualizationFactor(series))
	m.MaxDrawdown = maxDrawdown(result.EquityCurve)

	return m
}

func barReturns(curve []float64) []float64 {
	var returns []float64
	for i := 1; i < len(curve); i++ {
		if curve[i-1] == 0 {
			continue
		}
		returns = append(returns, (curve[i]-curve[i-1])/curve[i-1])
	}
	return returns
}

// sharpe is mean(returns)/stddev(returns) scaled by the square root of the
// annualization factor. Zero variance means the ratio is undefined, not
// infinite.
func sharpe(returns []float64, factor float64) dto.Float {
	if len(returns) < 2 {
		return dto.Undefined()
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	sd := math.Sqrt(variance)
	if sd == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat(mean / sd * math.Sqrt(factor))
}

// maxDrawdown is the largest peak-to-trough fractional decline of the
// equity curve.
func maxDrawdown(curve []float64) dto.Float {
	if len(curve) == 0 {
		return dto.Undefined()
	}
	peak := curve[0]
	var worst float64
	for _, equity := range curve {
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return dto.ValidFloat(worst)
}

// annualizationFactor infers periods-per-year from the average bar
// spacing: hourly, daily, weekly or monthly data.
func annualizationFactor(series dto.PriceSeries) float64 {
	if len(series) < 2 {
		return 252
	}
	span := series[len(series)-1].Timestamp.Sub(series[0].Timestamp)
	avg := span / time.Duration(len(series)-1)

	switch hours := avg.Hours(); {
	case hours <= 1:
		return 252 * 6.5
	case hours <= 24:
		return 252
	case hours <= 24*7:
		return 52
	default:
		return 12
	}
}
