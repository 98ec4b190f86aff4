package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"stock-advisor/config"
	"stock-advisor/internal/dto"
	"stock-advisor/pkg/logger"
	"stock-advisor/pkg/utils"
)

// WatchlistService analyzes the configured tickers on a cron schedule and
// persists the results through the analysis pipeline.
type WatchlistService struct {
	cfg      *config.Config
	log      *logger.Logger
	analysis AnalysisService
	cron     *cron.Cron
}

func NewWatchlistService(cfg *config.Config, log *logger.Logger, analysis AnalysisService) *WatchlistService {
	return &WatchlistService{
		cfg:      cfg,
		log:      log,
		analysis: analysis,
		cron:     cron.New(),
	}
}

// Start schedules the periodic run. An empty watchlist disables the
// scheduler without error.
func (w *WatchlistService) Start(ctx context.Context) error {
	if len(w.cfg.Watchlist.Tickers) == 0 {
		w.log.Info("Watchlist empty, scheduler disabled")
		return nil
	}

	_, err := w.cron.AddFunc(w.cfg.Watchlist.CronSpec, func() {
		w.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid watchlist cron spec %q: %w", w.cfg.Watchlist.CronSpec, err)
	}

	w.cron.Start()
	w.log.Info("Watchlist scheduler started",
		logger.StringField("cron_spec", w.cfg.Watchlist.CronSpec),
		logger.IntField("tickers", len(w.cfg.Watchlist.Tickers)))
	return nil
}

// RunOnce analyzes the whole watchlist under the configured timeout.
func (w *WatchlistService) RunOnce(ctx context.Context) {
	if !utils.ShouldContinue(ctx, w.log) {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.Watchlist.Timeout)
	defer cancel()

	results, err := w.analysis.AnalyzeMany(runCtx, dto.AnalyzeRequest{Tickers: w.cfg.Watchlist.Tickers})
	if err != nil {
		w.log.ErrorContext(runCtx, "Watchlist run failed", logger.ErrorField(err))
		return
	}

	for _, result := range results {
		w.log.InfoContext(runCtx, "Watchlist recommendation",
			logger.StringField("ticker", result.Ticker),
			logger.StringField("action", string(result.Recommendation.Action)),
			logger.Float64Field("composite", result.Recommendation.Composite),
			logger.Float64Field("confidence", result.Recommendation.Confidence))
	}

	w.log.InfoContext(runCtx, "Watchlist run completed",
		logger.IntField("analyzed", len(results)),
		logger.IntField("requested", len(w.cfg.Watchlist.Tickers)))
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (w *WatchlistService) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.log.Info("Watchlist scheduler stopped")
}
