package dto

// Series is a per-bar indicator sequence aligned to a PriceSeries. Entries
// inside the warm-up window are unavailable.
type Series []Float

// At returns the value at bar i, unavailable when out of range.
func (s Series) At(i int) Float {
	if i < 0 || i >= len(s) {
		return Undefined()
	}
	return s[i]
}

// Last returns the value at the final bar.
func (s Series) Last() Float {
	return s.At(len(s) - 1)
}

// IndicatorSet holds every derived indicator series, all aligned to the
// source PriceSeries.
type IndicatorSet struct {
	RSI        Series `json:"rsi"`
	MAShort    Series `json:"ma_short"`
	MALong     Series `json:"ma_long"`
	MALongTerm Series `json:"ma_long_term"`
	BBMid      Series `json:"bb_mid"`
	BBUpper    Series `json:"bb_upper"`
	BBLower    Series `json:"bb_lower"`
	MACDLine   Series `json:"macd_line"`
	MACDSignal Series `json:"macd_signal"`
	MACDHist   Series `json:"macd_histogram"`
	ATR        Series `json:"atr"`
}

// RSIZone classifies an RSI reading.
type RSIZone string

const (
	RSIOversold    RSIZone = "oversold"
	RSINeutral     RSIZone = "neutral"
	RSIOverbought  RSIZone = "overbought"
	RSIUnavailable RSIZone = "unavailable"
)

// CrossSignal is a moving-average crossover event. It fires only on the bar
// where the short MA crosses the long MA relative to the prior bar, never
// from a single-bar level comparison.
type CrossSignal string

const (
	GoldenCross CrossSignal = "golden_cross"
	DeathCross  CrossSignal = "death_cross"
	NoCross     CrossSignal = "none"
)

// BandZone classifies the close against the Bollinger bands.
type BandZone string

const (
	BandAbove       BandZone = "above_upper"
	BandInside      BandZone = "inside"
	BandBelow       BandZone = "below_lower"
	BandUnavailable BandZone = "unavailable"
)

// TrendBias is the MACD line/signal relationship.
type TrendBias string

const (
	BiasBullish     TrendBias = "bullish"
	BiasBearish     TrendBias = "bearish"
	BiasUnavailable TrendBias = "unavailable"
)

// IndicatorSignals are the discrete per-indicator signals at one bar.
type IndicatorSignals struct {
	RSI          RSIZone     `json:"rsi"`
	MACross      CrossSignal `json:"ma_cross"`
	PriceVsShort Float       `json:"price_vs_ma_short"`
	PriceVsLong  Float       `json:"price_vs_ma_long"`
	PriceVsTerm  Float       `json:"price_vs_ma_long_term"`
	Bollinger    BandZone    `json:"bollinger"`
	MACD         TrendBias   `json:"macd"`
}

// Available reports whether any indicator produced a usable signal at this
// bar. A fully unavailable signal set is excluded from aggregation.
func (s IndicatorSignals) Available() bool {
	return s.RSI != RSIUnavailable ||
		s.Bollinger != BandUnavailable ||
		s.MACD != BiasUnavailable ||
		s.PriceVsShort.Valid || s.PriceVsLong.Valid || s.PriceVsTerm.Valid
}
