package dto

// StrategyParams is the typed strategy configuration record. Fields left
// at zero take the documented defaults; Validate runs once at entry and
// rejects contradictory combinations.
type StrategyParams struct {
	RSIPeriod      int     `json:"rsi_period"`
	RSIOversold    float64 `json:"rsi_oversold"`
	RSIOverbought  float64 `json:"rsi_overbought"`
	MAShort        int     `json:"ma_short"`
	MALong         int     `json:"ma_long"`
	MALongTerm     int     `json:"ma_long_term"`
	BollingerWin   int     `json:"bollinger_window"`
	BollingerWidth float64 `json:"bollinger_width"`
	MACDFast       int     `json:"macd_fast"`
	MACDSlow       int     `json:"macd_slow"`
	MACDSignal     int     `json:"macd_signal"`
	ATRWindow      int     `json:"atr_window"`
	ATRMultiplier  float64 `json:"atr_multiplier"`
	StopLossPct    float64 `json:"stop_loss_pct"`
	TakeProfitPct  float64 `json:"take_profit_pct"`
	AllowShort     bool    `json:"allow_short"`

	MaxRiskPerTrade  float64 `json:"max_risk_per_trade"`
	KellyFractionCap float64 `json:"kelly_fraction_cap"`
}

// DefaultStrategyParams mirrors the classic RSI(14) / MA(20,50,200) /
// MACD(12,26,9) setup with a 5% stop and 10% target.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		RSIPeriod:        14,
		RSIOversold:      30,
		RSIOverbought:    70,
		MAShort:          20,
		MALong:           50,
		MALongTerm:       200,
		BollingerWin:     20,
		BollingerWidth:   2,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		ATRWindow:        14,
		ATRMultiplier:    2,
		StopLossPct:      0.05,
		TakeProfitPct:    0.10,
		MaxRiskPerTrade:  DefaultMaxRiskPerTrade,
		KellyFractionCap: DefaultKellyFractionCap,
	}
}

// ApplyDefaults fills every unset field from DefaultStrategyParams.
func (p *StrategyParams) ApplyDefaults() {
	def := DefaultStrategyParams()
	if p.RSIPeriod == 0 {
		p.RSIPeriod = def.RSIPeriod
	}
	if p.RSIOversold == 0 {
		p.RSIOversold = def.RSIOversold
	}
	if p.RSIOverbought == 0 {
		p.RSIOverbought = def.RSIOverbought
	}
	if p.MAShort == 0 {
		p.MAShort = def.MAShort
	}
	if p.MALong == 0 {
		p.MALong = def.MALong
	}
	if p.MALongTerm == 0 {
		p.MALongTerm = def.MALongTerm
	}
	if p.BollingerWin == 0 {
		p.BollingerWin = def.BollingerWin
	}
	if p.BollingerWidth == 0 {
		p.BollingerWidth = def.BollingerWidth
	}
	if p.MACDFast == 0 {
		p.MACDFast = def.MACDFast
	}
	if p.MACDSlow == 0 {
		p.MACDSlow = def.MACDSlow
	}
	if p.MACDSignal == 0 {
		p.MACDSignal = def.MACDSignal
	}
	if p.ATRWindow == 0 {
		p.ATRWindow = def.ATRWindow
	}
	if p.ATRMultiplier == 0 {
		p.ATRMultiplier = def.ATRMultiplier
	}
	if p.StopLossPct == 0 {
		p.StopLossPct = def.StopLossPct
	}
	if p.TakeProfitPct == 0 {
		p.TakeProfitPct = def.TakeProfitPct
	}
	if p.MaxRiskPerTrade == 0 {
		p.MaxRiskPerTrade = def.MaxRiskPerTrade
	}
	if p.KellyFractionCap == 0 {
		p.KellyFractionCap = def.KellyFractionCap
	}
}

// Validate rejects contradictory parameters with InvalidParameterError.
func (p StrategyParams) Validate() error {
	if p.RSIPeriod <= 0 {
		return &InvalidParameterError{Field: "rsi_period", Reason: "must be positive"}
	}
	if p.RSIOversold >= p.RSIOverbought {
		return &InvalidParameterError{Field: "rsi_oversold", Reason: "must be below rsi_overbought"}
	}
	if p.RSIOversold < 0 || p.RSIOverbought > 100 {
		return &InvalidParameterError{Field: "rsi_overbought", Reason: "thresholds must lie in [0,100]"}
	}
	if p.MAShort <= 0 || p.MALong <= 0 || p.MALongTerm <= 0 {
		return &InvalidParameterError{Field: "ma_short", Reason: "moving average periods must be positive"}
	}
	if p.MAShort >= p.MALong {
		return &InvalidParameterError{Field: "ma_short", Reason: "must be below ma_long"}
	}
	if p.MALong >= p.MALongTerm {
		return &InvalidParameterError{Field: "ma_long", Reason: "must be below ma_long_term"}
	}
	if p.BollingerWin <= 1 {
		return &InvalidParameterError{Field: "bollinger_window", Reason: "must be greater than 1"}
	}
	if p.BollingerWidth <= 0 {
		return &InvalidParameterError{Field: "bollinger_width", Reason: "must be positive"}
	}
	if p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 {
		return &InvalidParameterError{Field: "macd_fast", Reason: "MACD periods must be positive"}
	}
	if p.MACDFast >= p.MACDSlow {
		return &InvalidParameterError{Field: "macd_fast", Reason: "must be below macd_slow"}
	}
	if p.ATRWindow <= 0 {
		return &InvalidParameterError{Field: "atr_window", Reason: "must be positive"}
	}
	if p.ATRMultiplier <= 0 {
		return &InvalidParameterError{Field: "atr_multiplier", Reason: "must be positive"}
	}
	if p.StopLossPct <= 0 || p.StopLossPct >= 1 {
		return &InvalidParameterError{Field: "stop_loss_pct", Reason: "must lie in (0,1)"}
	}
	if p.TakeProfitPct <= 0 || p.TakeProfitPct >= 1 {
		return &InvalidParameterError{Field: "take_profit_pct", Reason: "must lie in (0,1)"}
	}
	if p.MaxRiskPerTrade <= 0 || p.MaxRiskPerTrade > 1 {
		return &InvalidParameterError{Field: "max_risk_per_trade", Reason: "must lie in (0,1]"}
	}
	if p.KellyFractionCap <= 0 || p.KellyFractionCap > 1 {
		return &InvalidParameterError{Field: "kelly_fraction_cap", Reason: "must lie in (0,1]"}
	}
	return nil
}
