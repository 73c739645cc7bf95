package trading

import (
	"context"
	"log/slog"
	"time"

	"github.com/starlitcards/trade-core/tradecore/database/repositories"
)

// Sweeper periodically cancels accepted trades whose confirmation window
// lapsed without anyone calling Complete. It reuses the same expiry path
// as the lazy check, so running it is optional: correctness never depends
// on the sweep, it only frees reservations held by abandoned trades.
type Sweeper struct {
	trades   repositories.TradeRepository
	window   time.Duration
	interval time.Duration
}

func NewSweeper(trades repositories.TradeRepository, window, interval time.Duration) *Sweeper {
	return &Sweeper{trades: trades, window: window, interval: interval}
}

// Run blocks, sweeping every interval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Trade expiry sweeper started",
		slog.String("type", "sys"),
		slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			expired, err := s.trades.ExpireStaleAccepted(ctx, s.window)
			if err != nil {
				slog.Error("Trade expiry sweep failed",
					slog.String("type", "sys"),
					slog.Any("error", err))
				continue
			}
			if expired > 0 {
				slog.Info("Expired stale trades",
					slog.String("type", "sys"),
					slog.Int("count", expired))
			}
		}
	}
}
