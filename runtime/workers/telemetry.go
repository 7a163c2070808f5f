package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically samples the server's own CPU and memory usage.
// Purely observational; it never influences the message path.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			cpu, err := proc.CPUPercent()
			if err != nil {
				w.log.Debug("Error while reading cpu usage", "err", err)
				continue
			}
			ram, err := proc.MemoryPercent()
			if err != nil {
				w.log.Debug("Error while reading ram usage", "err", err)
				continue
			}
			w.log.Debug("Process telemetry", "cpu_percent", cpu, "ram_percent", ram)
		}
	}
}
