// Package indicator derives technical indicator series from price history.
// Every indicator is a per-bar sequence aligned to the input series, with
// leading unavailable entries until its warm-up window fills. Nothing here
// extrapolates: too little history yields unavailable values, never zeros.
package indicator

import (
	"math"

	"stock-advisor/internal/dto"
)

type Engine struct {
	params dto.StrategyParams
}

// NewEngine validates the strategy parameters once; every later call works
// with the validated record.
func NewEngine(params dto.StrategyParams) (*Engine, error) {
	params.ApplyDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

func (e *Engine) Params() dto.StrategyParams {
	return e.params
}

// Compute derives the full indicator set for the series. The series itself
// is validated first; a short series is not an error, the affected
// indicators simply stay unavailable.
func (e *Engine) Compute(series dto.PriceSeries) (*dto.IndicatorSet, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	p := e.params

	set := &dto.IndicatorSet{
		RSI:        rsi(closes, p.RSIPeriod),
		MAShort:    sma(closes, p.MAShort),
		MALong:     sma(closes, p.MALong),
		MALongTerm: sma(closes, p.MALongTerm),
		ATR:        atr(series, p.ATRWindow),
	}

	set.BBMid, set.BBUpper, set.BBLower = bollinger(closes, p.BollingerWin, p.BollingerWidth)
	set.MACDLine, set.MACDSignal, set.MACDHist = macd(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)

	return set, nil
}

// SignalsAt reads the discrete signals at bar i using only values defined
// at or before i, so the simulator can call it bar-by-bar without
// lookahead.
func (e *Engine) SignalsAt(set *dto.IndicatorSet, series dto.PriceSeries, i int) dto.IndicatorSignals {
	sig := dto.IndicatorSignals{
		RSI:       e.rsiZone(set.RSI.At(i)),
		MACross:   CrossAt(set.MAShort, set.MALong, i),
		Bollinger: dto.BandUnavailable,
		MACD:      dto.BiasUnavailable,
	}

	if i < 0 || i >= len(series) {
		return sig
	}
	closePrice := series[i].Close

	sig.PriceVsShort = relativeTo(closePrice, set.MAShort.At(i))
	sig.PriceVsLong = relativeTo(closePrice, set.MALong.At(i))
	sig.PriceVsTerm = relativeTo(closePrice, set.MALongTerm.At(i))

	upper, lower := set.BBUpper.At(i), set.BBLower.At(i)
	if upper.Valid && lower.Valid {
		switch {
		case closePrice > upper.Value:
			sig.Bollinger = dto.BandAbove
		case closePrice < lower.Value:
			sig.Bollinger = dto.BandBelow
		default:
			sig.Bollinger = dto.BandInside
		}
	}

	line, signalLine := set.MACDLine.At(i), set.MACDSignal.At(i)
	if line.Valid && signalLine.Valid {
		if line.Value > signalLine.Value {
			sig.MACD = dto.BiasBullish
		} else {
			sig.MACD = dto.BiasBearish
		}
	}

	return sig
}

func (e *Engine) rsiZone(v dto.Float) dto.RSIZone {
	switch {
	case !v.Valid:
		return dto.RSIUnavailable
	case v.Value < e.params.RSIOversold:
		return dto.RSIOversold
	case v.Value > e.params.RSIOverbought:
		return dto.RSIOverbought
	default:
		return dto.RSINeutral
	}
}

// CrossAt detects a crossover event between the short and long series at
// bar i. It fires only when both series are defined at i-1 and i and the
// short series crosses the long one between those bars.
func CrossAt(short, long dto.Series, i int) dto.CrossSignal {
	prevS, prevL := short.At(i - 1), long.At(i - 1)
	curS, curL := short.At(i), long.At(i)
	if !prevS.Valid || !prevL.Valid || !curS.Valid || !curL.Valid {
		return dto.NoCross
	}
	if prevS.Value <= prevL.Value && curS.Value > curL.Value {
		return dto.GoldenCross
	}
	if prevS.Value >= prevL.Value && curS.Value < curL.Value {
		return dto.DeathCross
	}
	return dto.NoCross
}

func relativeTo(price float64, ma dto.Float) dto.Float {
	if !ma.Valid || ma.Value == 0 {
		return dto.Undefined()
	}
	return dto.ValidFloat((price - ma.Value) / ma.Value)
}

// sma is the simple arithmetic mean over a trailing window, defined from
// bar window-1 onwards.
func sma(values []float64, window int) dto.Series {
	out := make(dto.Series, len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = dto.ValidFloat(sum / float64(window))
		}
	}
	return out
}

// rsi uses Wilder's smoothing over average gains and losses. The first
// period bars are unavailable; defined values are clamped to [0,100].
func rsi(values []float64, period int) dto.Series {
	out := make(dto.Series, len(values))
	if len(values) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) dto.Float {
	if avgLoss == 0 {
		return dto.ValidFloat(100)
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return dto.ValidFloat(math.Max(0, math.Min(100, v)))
}

// bollinger returns mid, upper and lower bands: SMA(window) ± width times
// the population standard deviation of the closing price.
func bollinger(values []float64, window int, width float64) (mid, upper, lower dto.Series) {
	mid = sma(values, window)
	upper = make(dto.Series, len(values))
	lower = make(dto.Series, len(values))

	for i := window - 1; i < len(values); i++ {
		m := mid[i]
		if !m.Valid {
			continue
		}
		var variance float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - m.Value
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(window))
		upper[i] = dto.ValidFloat(m.Value + width*sd)
		lower[i] = dto.ValidFloat(m.Value - width*sd)
	}
	return mid, upper, lower
}

// ema seeds with the SMA of the first period values, so it is defined from
// bar period-1 onwards.
func ema(values []float64, period int) dto.Series {
	out := make(dto.Series, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	cur := sum / float64(period)
	out[period-1] = dto.ValidFloat(cur)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		cur = (values[i]-cur)*k + cur
		out[i] = dto.ValidFloat(cur)
	}
	return out
}

// macd computes line = EMA(fast) − EMA(slow), signal = EMA(signalPeriod)
// of the line, histogram = line − signal. The line is defined from bar
// slow-1, the signal and histogram signalPeriod-1 bars later.
func macd(values []float64, fast, slow, signalPeriod int) (line, signal, hist dto.Series) {
	line = make(dto.Series, len(values))
	signal = make(dto.Series, len(values))
	hist = make(dto.Series, len(values))

	fastEMA := ema(values, fast)
	slowEMA := ema(values, slow)
	start := slow - 1
	if start >= len(values) {
		return line, signal, hist
	}

	lineValues := make([]float64, 0, len(values)-start)
	for i := start; i < len(values); i++ {
		f, s := fastEMA[i], slowEMA[i]
		if !f.Valid || !s.Valid {
			continue
		}
		v := f.Value - s.Value
		line[i] = dto.ValidFloat(v)
		lineValues = append(lineValues, v)
	}

	signalCompact := ema(lineValues, signalPeriod)
	for j, v := range signalCompact {
		if !v.Valid {
			continue
		}
		i := start + j
		signal[i] = v
		hist[i] = dto.ValidFloat(line[i].Value - v.Value)
	}
	return line, signal, hist
}

// atr is Wilder's average true range: the first value at bar window is the
// mean of the first window true ranges, smoothed thereafter.
func atr(series dto.PriceSeries, window int) dto.Series {
	out := make(dto.Series, len(series))
	if len(series) < window+1 {
		return out
	}

	trueRange := func(i int) float64 {
		high, low, prevClose := series[i].High, series[i].Low, series[i-1].Close
		tr := high - low
		if d := math.Abs(high - prevClose); d > tr {
			tr = d
		}
		if d := math.Abs(low - prevClose); d > tr {
			tr = d
		}
		return tr
	}

	var sum float64
	for i := 1; i <= window; i++ {
		sum += trueRange(i)
	}
	cur := sum / float64(window)
	out[window] = dto.ValidFloat(cur)

	for i := window + 1; i < len(series); i++ {
		cur = (cur*float64(window-1) + trueRange(i)) / float64(window)
		out[i] = dto.ValidFloat(cur)
	}
	return out
}
