package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	ucport "apivro/internal/domain/ports/usecase"
	"apivro/internal/infra/metrics"
)

const reconcileBatch = 200

// PaymentReconciler periodically re-reads pending payments whose callback
// never arrived and applies whatever status the gateway now reports.
type PaymentReconciler struct {
	syncer     ucport.PaymentSyncer
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(syncer ucport.PaymentSyncer, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	l := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{syncer: syncer, interval: interval, staleAfter: staleAfter, log: &l}
}

// Run blocks until ctx is cancelled.
func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("stale_after", w.staleAfter).Msg("Starting payment reconciler")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconciler")
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	n, err := w.syncer.SyncStale(runCtx, w.staleAfter, reconcileBatch)
	if err != nil {
		metrics.IncBackgroundTask("payment_reconcile", "error")
		w.log.Error().Err(err).Msg("payment reconcile failed")
		return
	}
	metrics.IncBackgroundTask("payment_reconcile", "ok")
	if n > 0 {
		w.log.Info().Int("count", n).Msg("stale payments reconciled")
	}
}
