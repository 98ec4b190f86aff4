// Package decision fuses the engine outputs into one categorical
// recommendation. Each contributing category is reduced to a bounded score
// in [-1,1]; categories whose inputs are entirely unavailable drop out of
// both the composite and the weight normalization, so thin data degrades
// confidence instead of failing the analysis.
package decision

import (
	"math"
	"sort"

	"stock-advisor/internal/dto"
)

const (
	CategoryTechnical   = "technical"
	CategoryFundamental = "fundamental"
	CategoryRisk        = "risk"
	CategoryBacktest    = "backtest"
	CategorySentiment   = "sentiment"
)

// Weights are the relative category weights before normalization.
type Weights struct {
	Technical   float64 `mapstructure:"technical"`
	Fundamental float64 `mapstructure:"fundamental"`
	Risk        float64 `mapstructure:"risk"`
	Backtest    float64 `mapstructure:"backtest"`
	Sentiment   float64 `mapstructure:"sentiment"`
}

func DefaultWeights() Weights {
	return Weights{Technical: 0.35, Fundamental: 0.25, Risk: 0.10, Backtest: 0.25, Sentiment: 0.05}
}

// Thresholds map the composite score to a category.
type Thresholds struct {
	StrongBuy  float64 `mapstructure:"strong_buy"`
	Buy        float64 `mapstructure:"buy"`
	Sell       float64 `mapstructure:"sell"`
	StrongSell float64 `mapstructure:"strong_sell"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{StrongBuy: 0.6, Buy: 0.2, Sell: -0.2, StrongSell: -0.6}
}

type Aggregator struct {
	weights    Weights
	thresholds Thresholds
}

func NewAggregator(w Weights, t Thresholds) (*Aggregator, error) {
	total := w.Technical + w.Fundamental + w.Risk + w.Backtest + w.Sentiment
	if total <= 0 {
		return nil, &dto.InvalidParameterError{Field: "weights", Reason: "must sum to a positive value"}
	}
	if w.Technical < 0 || w.Fundamental < 0 || w.Risk < 0 || w.Backtest < 0 || w.Sentiment < 0 {
		return nil, &dto.InvalidParameterError{Field: "weights", Reason: "must be non-negative"}
	}
	if !(t.StrongSell < t.Sell && t.Sell < t.Buy && t.Buy < t.StrongBuy) {
		return nil, &dto.InvalidParameterError{Field: "thresholds", Reason: "must be strictly ordered"}
	}
	return &Aggregator{weights: w, thresholds: t}, nil
}

// Inputs are the candidate contributions. Nil or undefined members are
// excluded, never treated as zero.
type Inputs struct {
	Technical   *dto.IndicatorSignals
	Fundamental dto.Float // composite quality score, 0-100
	Risk        *dto.RiskProfile
	Backtest    *dto.BacktestMetrics
	Sentiment   dto.Float // already bounded in [-1,1]
}

// Decide computes the weighted composite over the available categories and
// maps it to a recommendation. Confidence reflects both how much the
// sub-scores agree and how many categories actually contributed.
func (a *Aggregator) Decide(ticker string, in Inputs) dto.Recommendation {
	type candidate struct {
		category string
		weight   float64
		score    dto.Float
	}
	candidates := []candidate{
		{CategoryTechnical, a.weights.Technical, technicalScore(in.Technical)},
		{CategoryFundamental, a.weights.Fundamental, fundamentalScore(in.Fundamental)},
		{CategoryRisk, a.weights.Risk, riskScore(in.Risk)},
		{CategoryBacktest, a.weights.Backtest, backtestScore(in.Backtest)},
		{CategorySentiment, a.weights.Sentiment, sentimentScore(in.Sentiment)},
	}

	var totalWeight, availableWeight float64
	for _, c := range candidates {
		totalWeight += c.weight
		if c.score.Valid && c.weight > 0 {
			availableWeight += c.weight
		}
	}

	rec := dto.Recommendation{Ticker: ticker, Action: dto.Hold}
	if availableWeight == 0 {
		return rec
	}

	var composite float64
	var scores []float64
	for _, c := range candidates {
		if !c.score.Valid || c.weight == 0 {
			continue
		}
		normalized := c.weight / availableWeight
		composite += normalized * c.score.Value
		scores = append(scores, c.score.Value)
		rec.Components = append(rec.Components, dto.ComponentScore{
			Category: c.category,
			Score:    c.score.Value,
			Weight:   normalized,
		})
	}
	sort.Slice(rec.Components, func(i, j int) bool {
		return rec.Components[i].Category < rec.Components[j].Category
	})

	rec.Composite = clamp(composite, -1, 1)
	rec.Action = a.categorize(rec.Composite)
	rec.Confidence = confidence(scores, availableWeight/totalWeight)
	return rec
}

func (a *Aggregator) categorize(composite float64) dto.Action {
	switch {
	case composite >= a.thresholds.StrongBuy:
		return dto.StrongBuy
	case composite >= a.thresholds.Buy:
		return dto.Buy
	case composite > a.thresholds.Sell:
		return dto.Hold
	case composite > a.thresholds.StrongSell:
		return dto.Sell
	default:
		return dto.StrongSell
	}
}

// confidence is agreement across sub-scores (low dispersion scores high)
// damped by the fraction of category weight that was actually available.
func confidence(scores []float64, coverage float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	agreement := 1.0
	if len(scores) > 1 {
		var mean float64
		for _, s := range scores {
			mean += s
		}
		mean /= float64(len(scores))

		var variance float64
		for _, s := range scores {
			d := s - mean
			variance += d * d
		}
		variance /= float64(len(scores))
		agreement = 1 - math.Sqrt(variance)
	}
	return clamp(agreement*coverage, 0, 1)
}

// technicalScore is the mean vote of the individual indicator signals,
// each in {-1,0,+1}. Unavailable indicators cast no vote; a fully
// unavailable signal set excludes the category.
func technicalScore(sig *dto.IndicatorSignals) dto.Float {
	if sig == nil || !sig.Available() {
		return dto.Undefined()
	}

	var sum float64
	var votes int
	add := func(v float64) {
		sum += v
		votes++
	}

	switch sig.RSI {
	case dto.RSIOversold:
		add(1)
	case dto.RSIOverbought:
		add(-1)
	case dto.RSINeutral:
		add(0)
	}
	switch sig.MACross {
	case dto.GoldenCross:
		add(1)
	case dto.DeathCross:
		add(-1)
	}
	for _, rel := range []dto.Float{sig.PriceVsShort, sig.PriceVsLong, sig.PriceVsTerm} {
		if !rel.Valid {
			continue
		}
		switch {
		case rel.Value > 0:
			add(1)
		case rel.Value < 0:
			add(-1)
		default:
			add(0)
		}
	}
	switch sig.Bollinger {
	case dto.BandBelow:
		add(1)
	case dto.BandAbove:
		add(-1)
	case dto.BandInside:
		add(0)
	}
	switch sig.MACD {
	case dto.BiasBullish:
		add(1)
	case dto.BiasBearish:
		add(-1)
	}

	if votes == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat(sum / float64(votes))
}

// fundamentalScore recenters the 0-100 quality composite onto [-1,1].
func fundamentalScore(composite dto.Float) dto.Float {
	if !composite.Valid {
		return dto.Undefined()
	}
	return dto.ValidFloat(clamp((composite.Value-50)/50, -1, 1))
}

// riskScore rates the trade plan's risk-reward ratio: 1.5:1 is neutral,
// 3:1 or better fully favorable.
func riskScore(profile *dto.RiskProfile) dto.Float {
	if profile == nil || profile.RiskReward == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat(clamp((profile.RiskReward-1.5)/1.5, -1, 1))
}

// backtestScore blends the Sharpe ratio (a Sharpe of 2 is fully favorable)
// with the win rate when each is defined. A run with no defined metric
// excludes the category.
func backtestScore(m *dto.BacktestMetrics) dto.Float {
	if m == nil || m.TotalTrades == 0 {
		return dto.Undefined()
	}

	var sum float64
	var n int
	if m.SharpeRatio.Valid {
		sum += clamp(m.SharpeRatio.Value/2, -1, 1)
		n++
	}
	if m.WinRate.Valid {
		sum += clamp((m.WinRate.Value-0.5)*2, -1, 1)
		n++
	}
	if n == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat(sum / float64(n))
}

func sentimentScore(s dto.Float) dto.Float {
	if !s.Valid {
		return dto.Undefined()
	}
	return dto.ValidFloat(clamp(s.Value, -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
