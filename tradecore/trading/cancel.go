package trading

import (
	"context"
	"log/slog"
	"time"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// CancelTrade lets either party withdraw a proposed or accepted trade,
// releasing every reserved card. Canceling a trade that already reached a
// terminal state is an InvalidState error, not an idempotent success, so
// duplicate cancel requests get a deterministic answer.
func (s *Service) CancelTrade(ctx context.Context, tradeID, callerID string) (*models.Trade, error) {
	trade, err := s.getTradeForCaller(ctx, tradeID, callerID)
	if err != nil {
		return nil, err
	}
	if !trade.Status.IsActive() || !trade.Status.CanTransitionTo(models.TradeStatusCanceled) {
		return nil, ErrInvalidState
	}

	updated, err := s.trades.Cancel(ctx, trade.ID, time.Now())
	if err != nil {
		return nil, mapRepoError(err)
	}

	slog.Info("Trade canceled",
		slog.String("trade_id", updated.TradeID),
		slog.String("canceled_by", callerID))
	return updated, nil
}
