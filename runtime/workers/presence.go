package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-hub/runtime"
)

// PresenceWorker periodically samples the live subscription registry and logs
// how many rooms currently have an audience. Sampling reads map sizes under a
// read lock, so it never delays publishing.
type PresenceWorker struct {
	log      *slog.Logger
	registry *runtime.Registry
	interval time.Duration
}

func NewPresenceWorker(log *slog.Logger, registry *runtime.Registry, interval time.Duration) *PresenceWorker {
	return &PresenceWorker{log: log, registry: registry, interval: interval}
}

func (w *PresenceWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping presence sampling")
			return nil
		case <-ticker.C:
			rooms, subscribers := w.registry.Stats()
			w.log.Debug("Live presence", "rooms", rooms, "subscribers", subscribers)
		}
	}
}
