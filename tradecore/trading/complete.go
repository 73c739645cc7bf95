package trading

import (
	"context"
	"log/slog"
	"time"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// CompleteTrade records the caller's completion confirmation. The lapsed
// confirmation window is checked first: an expired trade is canceled as a
// committed side effect and the call fails with ErrTradeExpired, which
// keeps the window self-healing without a scheduler. Re-confirming an
// already-confirmed side is a no-op. Once both sides have confirmed, the
// completed transition and every card ownership swap commit as one
// transaction.
func (s *Service) CompleteTrade(ctx context.Context, tradeID, callerID string) (*models.Trade, error) {
	trade, err := s.getTradeForCaller(ctx, tradeID, callerID)
	if err != nil {
		return nil, err
	}
	side, _ := trade.SideOf(callerID)
	if trade.Status != models.TradeStatusAccepted {
		return nil, ErrInvalidState
	}

	updated, expired, err := s.trades.Complete(ctx, trade.ID, side, time.Now(), s.cfg.ConfirmationWindow)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if expired {
		slog.Info("Trade expired on access",
			slog.String("trade_id", updated.TradeID),
			slog.String("caller_id", callerID))
		return nil, ErrTradeExpired
	}

	if updated.Status != models.TradeStatusCompleted {
		slog.Info("Trade confirmation recorded",
			slog.String("trade_id", updated.TradeID),
			slog.String("confirmed_by", callerID))
	}
	return updated, nil
}
