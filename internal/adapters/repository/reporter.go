package repository

import (
	"context"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/metrics"
)

type counter interface {
	Count(ctx context.Context, tag model.TypeTag) (int, error)
}

// reportCounts publishes the per-tag record count until ctx is done.
func reportCounts(ctx context.Context, c counter, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				updateCounts(ctx, c)
			}
		}
	}()
}

func updateCounts(ctx context.Context, c counter) {
	for _, tag := range model.Tags() {
		n, err := c.Count(ctx, tag)
		if err != nil {
			metrics.RecordErrorByType("store_count", "low")
			continue
		}
		metrics.UpdateRecords(tag.String(), n)
	}
}
