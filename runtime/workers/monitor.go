package workers

import (
	"context"
	"log/slog"
	"time"

	"price-pact/observability"
)

// MonitorWorker refreshes the observability snapshot on a fixed
// interval so the debug endpoints always serve a recent picture
// without computing process metrics on every request.
type MonitorWorker struct {
	log      *slog.Logger
	stats    *observability.Manager
	interval time.Duration
}

func NewMonitorWorker(log *slog.Logger, stats *observability.Manager, interval time.Duration) *MonitorWorker {
	return &MonitorWorker{log: log, stats: stats, interval: interval}
}

func (w *MonitorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping monitor")
			return nil
		case <-ticker.C:
			w.stats.Refresh()
			w.log.Debug("Stats refreshed")
		}
	}
}
