package dto

// Action is the final recommendation category.
type Action string

const (
	StrongBuy  Action = "STRONG_BUY"
	Buy        Action = "BUY"
	Hold       Action = "HOLD"
	Sell       Action = "SELL"
	StrongSell Action = "STRONG_SELL"
)

// ComponentScore is one category's bounded contribution to the composite,
// kept on the recommendation for auditability.
type ComponentScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`  // in [-1, 1]
	Weight   float64 `json:"weight"` // normalized weight actually applied
}

// Recommendation is the fused output of the decision aggregator.
type Recommendation struct {
	Ticker     string           `json:"ticker"`
	Action     Action           `json:"action"`
	Composite  float64          `json:"composite"`  // in [-1, 1]
	Confidence float64          `json:"confidence"` // in [0, 1]
	Components []ComponentScore `json:"components"`
}

// AnalysisResult bundles the recommendation with every intermediate
// product so the caller can display or store them.
type AnalysisResult struct {
	Ticker           string               `json:"ticker"`
	Recommendation   Recommendation       `json:"recommendation"`
	Indicators       *IndicatorSet        `json:"indicators,omitempty"`
	Signals          *IndicatorSignals    `json:"signals,omitempty"`
	Fundamentals     *FundamentalSnapshot `json:"fundamentals,omitempty"`
	FundamentalScore *FundamentalScore    `json:"fundamental_score,omitempty"`
	RiskProfile      *RiskProfile         `json:"risk_profile,omitempty"`
	Backtest         *BacktestResult      `json:"backtest,omitempty"`
}
