package service

import (
	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/internal/engine/decision"
	"stock-advisor/internal/repository"
	"stock-advisor/pkg/logger"
)

type Service struct {
	AnalysisService  AnalysisService
	BacktestService  BacktestService
	WatchlistService *WatchlistService
}

func NewService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) (*Service, error) {
	analysisService, err := NewAnalysisService(cfg, log, repo)
	if err != nil {
		return nil, err
	}

	return &Service{
		AnalysisService:  analysisService,
		BacktestService:  NewBacktestService(cfg, log, repo),
		WatchlistService: NewWatchlistService(cfg, log, analysisService),
	}, nil
}

// StrategyParamsFromConfig maps the configuration record onto the typed
// engine parameters; zero values take the engine defaults.
func StrategyParamsFromConfig(engine config.Engine) dto.StrategyParams {
	s := engine.Strategy
	return dto.StrategyParams{
		RSIPeriod:        s.RSIPeriod,
		RSIOversold:      s.RSIOversold,
		RSIOverbought:    s.RSIOverbought,
		MAShort:          s.MAShort,
		MALong:           s.MALong,
		MALongTerm:       s.MALongTerm,
		BollingerWin:     s.BollingerWin,
		BollingerWidth:   s.BollingerWidth,
		MACDFast:         s.MACDFast,
		MACDSlow:         s.MACDSlow,
		MACDSignal:       s.MACDSignal,
		ATRWindow:        s.ATRWindow,
		ATRMultiplier:    s.ATRMultiplier,
		StopLossPct:      s.StopLossPct,
		TakeProfitPct:    s.TakeProfitPct,
		AllowShort:       s.AllowShort,
		MaxRiskPerTrade:  engine.Risk.MaxRiskPerTrade,
		KellyFractionCap: engine.Risk.KellyFractionCap,
	}
}

func riskBudgetFromConfig(engine config.Engine) dto.RiskBudget {
	return dto.RiskBudget{
		PortfolioValue:   engine.Risk.PortfolioValue,
		MaxRiskPerTrade:  engine.Risk.MaxRiskPerTrade,
		KellyFractionCap: engine.Risk.KellyFractionCap,
	}
}

func weightsFromConfig(engine config.Engine) decision.Weights {
	w := engine.Weights
	if w.Technical == 0 && w.Fundamental == 0 && w.Risk == 0 && w.Backtest == 0 && w.Sentiment == 0 {
		return decision.DefaultWeights()
	}
	return decision.Weights{
		Technical:   w.Technical,
		Fundamental: w.Fundamental,
		Risk:        w.Risk,
		Backtest:    w.Backtest,
		Sentiment:   w.Sentiment,
	}
}

func thresholdsFromConfig(engine config.Engine) decision.Thresholds {
	t := engine.Thresholds
	if t.StrongBuy == 0 && t.Buy == 0 && t.Sell == 0 && t.StrongSell == 0 {
		return decision.DefaultThresholds()
	}
	return decision.Thresholds{
		StrongBuy:  t.StrongBuy,
		Buy:        t.Buy,
		Sell:       t.Sell,
		StrongSell: t.StrongSell,
	}
}
