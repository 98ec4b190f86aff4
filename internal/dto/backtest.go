package dto

import "time"

// ExitReason records why a simulated position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitSignal     ExitReason = "opposing_signal"
	ExitEndOfData  ExitReason = "end_of_data"
)

// TradeLog records one completed round trip of the simulator.
type TradeLog struct {
	Side       Side       `json:"side"`
	EntryBar   int        `json:"entry_bar"`
	EntryDate  time.Time  `json:"entry_date"`
	EntryPrice float64    `json:"entry_price"`
	ExitBar    int        `json:"exit_bar"`
	ExitDate   time.Time  `json:"exit_date"`
	ExitPrice  float64    `json:"exit_price"`
	ExitReason ExitReason `json:"exit_reason"`
	ProfitLoss float64    `json:"profit_loss"`
}

// BacktestMetrics are the derived performance numbers. Division-by-zero
// conditions (zero trades, zero variance) yield undefined values, never 0
// or infinity.
type BacktestMetrics struct {
	TotalTrades   int   `json:"total_trades"`
	WinningTrades int   `json:"winning_trades"`
	LosingTrades  int   `json:"losing_trades"`
	WinRate       Float `json:"win_rate"`
	ProfitFactor  Float `json:"profit_factor"`
	SharpeRatio   Float `json:"sharpe_ratio"`
	MaxDrawdown   Float `json:"max_drawdown"`
	TotalReturn   Float `json:"total_return"`
	BuyHoldReturn Float `json:"buy_hold_return"`
}

// BacktestResult is the complete output of one simulation run: the ordered
// trade log, the equity curve aligned bar-for-bar to the input series, and
// the derived metrics.
type BacktestResult struct {
	InitialCapital float64         `json:"initial_capital"`
	FinalEquity    float64         `json:"final_equity"`
	Trades         []TradeLog      `json:"trades"`
	EquityCurve    []float64       `json:"equity_curve"`
	Metrics        BacktestMetrics `json:"metrics"`
}
