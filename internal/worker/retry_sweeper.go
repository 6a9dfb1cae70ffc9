package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/service"
)

const sweepBatchSize = 50

// RetrySweeper periodically re-attempts fulfillment entries whose
// retry delay has elapsed
type RetrySweeper struct {
	fulfillment *service.FulfillmentService
	interval    time.Duration
	logger      *zap.Logger
}

// NewRetrySweeper creates a new retry sweeper
func NewRetrySweeper(fulfillment *service.FulfillmentService, interval time.Duration, logger *zap.Logger) *RetrySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RetrySweeper{
		fulfillment: fulfillment,
		interval:    interval,
		logger:      logger,
	}
}

// Run sweeps on a ticker until the context is cancelled
func (w *RetrySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Retry sweeper started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Retry sweeper stopped")
			return
		case <-ticker.C:
			processed, err := w.fulfillment.ProcessDueRetries(ctx, sweepBatchSize)
			if err != nil {
				w.logger.Error("Retry sweep failed", zap.Error(err))
				continue
			}
			if processed > 0 {
				w.logger.Info("Retry sweep completed", zap.Int("processed", processed))
			}
		}
	}
}
