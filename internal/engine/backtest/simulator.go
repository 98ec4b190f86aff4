// Package backtest replays a strategy bar-by-bar over historical data.
// The simulator is a strictly sequential state machine: a decision at bar
// i only ever reads indicator values whose warm-up window ended at or
// before i, so no fill can depend on data from the future.
package backtest

import (
	"context"

	"stock-advisor/internal/dto"
	"stock-advisor/internal/engine/indicator"
)

type state int

const (
	flat state = iota
	long
	short
)

const DefaultInitialCapital = 10_000

type Simulator struct {
	engine  *indicator.Engine
	params  dto.StrategyParams
	capital float64
}

// NewSimulator validates the strategy parameters and fixes the starting
// capital for the equity curve.
func NewSimulator(params dto.StrategyParams, initialCapital float64) (*Simulator, error) {
	if initialCapital <= 0 {
		initialCapital = DefaultInitialCapital
	}
	eng, err := indicator.NewEngine(params)
	if err != nil {
		return nil, err
	}
	return &Simulator{engine: eng, params: eng.Params(), capital: initialCapital}, nil
}

// Run simulates the configured strategy over the series. The context is
// checked between bars so a large replay can be cancelled mid-flight.
// Identical inputs always produce an identical trade log and equity curve.
func (s *Simulator) Run(ctx context.Context, series dto.PriceSeries) (*dto.BacktestResult, error) {
	set, err := s.engine.Compute(series)
	if err != nil {
		return nil, err
	}

	var (
		st       = flat
		cash     = s.capital
		size     float64
		entry    float64
		entryBar int
		trades   []dto.TradeLog
		curve    = make([]float64, len(series))
	)

	closeTrade := func(i int, price float64, reason dto.ExitReason) {
		side := dto.SideLong
		pnl := size * (price - entry)
		if st == short {
			side = dto.SideShort
			pnl = size * (entry - price)
		}
		cash += size*entry + pnl
		trades = append(trades, dto.TradeLog{
			Side:       side,
			EntryBar:   entryBar,
			EntryDate:  series[entryBar].Timestamp,
			EntryPrice: entry,
			ExitBar:    i,
			ExitDate:   series[i].Timestamp,
			ExitPrice:  price,
			ExitReason: reason,
			ProfitLoss: pnl,
		})
		st, size, entry = flat, 0, 0
	}

	for i := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := series[i]

		if st != flat {
			stop, target := s.levels(entry, st)
			// Conservative intrabar fill: if both levels are inside the
			// bar's range, assume the stop was touched first.
			switch st {
			case long:
				if bar.Low <= stop {
					closeTrade(i, stop, dto.ExitStopLoss)
				} else if bar.High >= target {
					closeTrade(i, target, dto.ExitTakeProfit)
				}
			case short:
				if bar.High >= stop {
					closeTrade(i, stop, dto.ExitStopLoss)
				} else if bar.Low <= target {
					closeTrade(i, target, dto.ExitTakeProfit)
				}
			}
		}

		sig := s.engine.SignalsAt(set, series, i)

		switch st {
		case long:
			if s.exitLong(sig) {
				closeTrade(i, bar.Close, dto.ExitSignal)
			}
		case short:
			if s.exitShort(sig) {
				closeTrade(i, bar.Close, dto.ExitSignal)
			}
		case flat:
			if enterLong := s.enterLong(set, i, sig); enterLong || (s.params.AllowShort && s.enterShort(set, i, sig)) {
				st = long
				if !enterLong {
					st = short
				}
				entry = bar.Close
				entryBar = i
				size = cash / entry
				cash = 0
			}
		}

		curve[i] = s.markToMarket(cash, st, size, entry, bar.Close)
	}

	// An open position at the end of data is closed at the final bar so
	// the trade log accounts for every entry.
	if st != flat {
		last := len(series) - 1
		closeTrade(last, series[last].Close, dto.ExitEndOfData)
		curve[last] = cash
	}

	result := &dto.BacktestResult{
		InitialCapital: s.capital,
		Trades:         trades,
		EquityCurve:    curve,
	}
	if len(curve) > 0 {
		result.FinalEquity = curve[len(curve)-1]
	} else {
		result.FinalEquity = s.capital
	}
	result.Metrics = computeMetrics(result, series)
	return result, nil
}

func (s *Simulator) levels(entry float64, st state) (stop, target float64) {
	if st == short {
		return entry * (1 + s.params.StopLossPct), entry * (1 - s.params.TakeProfitPct)
	}
	return entry * (1 - s.params.StopLossPct), entry * (1 + s.params.TakeProfitPct)
}

// enterLong fires on a golden cross or on RSI recovering up through the
// oversold threshold between the prior and current bar.
func (s *Simulator) enterLong(set *dto.IndicatorSet, i int, sig dto.IndicatorSignals) bool {
	if sig.MACross == dto.GoldenCross {
		return true
	}
	return crossedUp(set.RSI, i, s.params.RSIOversold)
}

func (s *Simulator) enterShort(set *dto.IndicatorSet, i int, sig dto.IndicatorSignals) bool {
	if sig.MACross == dto.DeathCross {
		return true
	}
	return crossedDown(set.RSI, i, s.params.RSIOverbought)
}

func (s *Simulator) exitLong(sig dto.IndicatorSignals) bool {
	return sig.MACross == dto.DeathCross || sig.RSI == dto.RSIOverbought
}

func (s *Simulator) exitShort(sig dto.IndicatorSignals) bool {
	return sig.MACross == dto.GoldenCross || sig.RSI == dto.RSIOversold
}

func (s *Simulator) markToMarket(cash float64, st state, size, entry, close float64) float64 {
	switch st {
	case long:
		return cash + size*entry + size*(close-entry)
	case short:
		return cash + size*entry + size*(entry-close)
	default:
		return cash
	}
}

func crossedUp(series dto.Series, i int, threshold float64) bool {
	prev, cur := series.At(i-1), series.At(i)
	return prev.Valid && cur.Valid && prev.Value < threshold && cur.Value >= threshold
}

func crossedDown(series dto.Series, i int, threshold float64) bool {
	prev, cur := series.At(i-1), series.At(i)
	return prev.Valid && cur.Valid && prev.Value > threshold && cur.Value <= threshold
}
