package pipeline

import (
	"context"
	"time"

	"github.com/obswatch/lenswatch/internal/report"
)

// progressLogger is the periodic progress task named in spec.md §5
// ("hosts the Ticker, the Detector, the progress logger ... as
// concurrent tasks"). It reports throughput at a fixed interval until
// ctx is cancelled.
func progressLogger(ctx context.Context, interval time.Duration, table *starTable, detector *Detector, logger *report.Logger) {
	var ticker = time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if logger != nil {
				logger.Infof("progress: ticks=%d stars_tracked=%d", detector.Tick(), table.size())
			}
		}
	}
}
