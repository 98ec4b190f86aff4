package dto

// AnalyzeRequest asks for full analyses of one or more tickers.
type AnalyzeRequest struct {
	Tickers  []string `json:"tickers" validate:"required,min=1,max=20,dive,required"`
	Range    string   `json:"range,omitempty"`
	Interval string   `json:"interval,omitempty"`
}

// BacktestRequest runs the simulator standalone, optionally overriding the
// configured strategy parameters.
type BacktestRequest struct {
	Ticker         string          `json:"ticker" validate:"required"`
	Range          string          `json:"range,omitempty"`
	Interval       string          `json:"interval,omitempty"`
	InitialCapital float64         `json:"initial_capital,omitempty" validate:"omitempty,gt=0"`
	Params         *StrategyParams `json:"params,omitempty"`
}
