// Package worker runs background jobs beside the API server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
)

// Refreshable is satisfied by service.OverviewService.
type Refreshable interface {
	Refresh(ctx context.Context) (domain.TripOverviewListVM, overview.Report)
}

// Refresher re-runs the trip overview fetch on a fixed interval.
type Refresher struct {
	target   Refreshable
	interval time.Duration
}

func NewRefresher(target Refreshable, interval time.Duration) *Refresher {
	return &Refresher{target: target, interval: interval}
}

// Run refreshes once immediately and then every interval until ctx is done.
// It always returns nil so it can sit in an errgroup next to the server.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "trip refresher started", "interval", r.interval.String())
	r.target.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "trip refresher stopped")
			return nil
		case <-ticker.C:
			r.target.Refresh(ctx)
		}
	}
}
