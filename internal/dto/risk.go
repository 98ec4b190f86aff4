package dto

// RiskBudget bounds the capital put at risk on a single trade.
type RiskBudget struct {
	PortfolioValue   float64 `json:"portfolio_value" validate:"gt=0"`
	MaxRiskPerTrade  float64 `json:"max_risk_per_trade"`
	KellyFractionCap float64 `json:"kelly_fraction_cap"`
}

const (
	DefaultMaxRiskPerTrade  = 0.02
	DefaultKellyFractionCap = 0.25
)

// ApplyDefaults fills unset fractions with the standard budget.
func (b *RiskBudget) ApplyDefaults() {
	if b.MaxRiskPerTrade == 0 {
		b.MaxRiskPerTrade = DefaultMaxRiskPerTrade
	}
	if b.KellyFractionCap == 0 {
		b.KellyFractionCap = DefaultKellyFractionCap
	}
}

// Side is the direction of a position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Position is a sized trade with protective levels. For a long position
// stop-loss < entry < take-profit; reversed for a short.
type Position struct {
	Side       Side    `json:"side"`
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Size       float64 `json:"size"` // shares, fractional allowed
}

// RiskProfile is the risk manager's full output for one candidate trade.
type RiskProfile struct {
	Position      Position `json:"position"`
	RiskAmount    float64  `json:"risk_amount"`
	RiskReward    float64  `json:"risk_reward"`
	KellyFraction Float    `json:"kelly_fraction"`
	VaR95         Float    `json:"var_95"`
}
