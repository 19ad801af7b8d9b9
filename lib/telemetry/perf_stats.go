package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var perfMeter = otel.Meter("go.perf_stats")

const perfStatsInterval = 30 * time.Second

// InstrumentPerfStats emits process gauges (cpu, heap, goroutines) on
// a fixed interval until ctx is cancelled. Long crawls are the main
// consumer; a runaway page walk shows up here before it shows up as
// an OOM.
func InstrumentPerfStats(ctx context.Context) {
	cpuGauge, _ := perfMeter.Float64Gauge("cpu_usage")
	heapGauge, _ := perfMeter.Int64Gauge("allocated_mb")
	objectsGauge, _ := perfMeter.Int64Gauge("live_objects")
	goroutineGauge, _ := perfMeter.Int64Gauge("goroutine_count")

	go func() {
		ticker := time.NewTicker(perfStatsInterval)
		defer ticker.Stop()

		var memStats runtime.MemStats
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			runtime.ReadMemStats(&memStats)
			heapGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
			objectsGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
			goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))

			usage, err := cpu.Percent(time.Minute, false)
			if err != nil {
				slog.Warn("failed to read cpu usage", "err", err)
				continue
			}
			cpuGauge.Record(ctx, usage[0])
		}
	}()
}
