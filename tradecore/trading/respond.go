package trading

import (
	"context"
	"log/slog"
	"time"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// AcceptTrade moves a proposed trade to accepted and starts the
// confirmation clock. Only the responder may accept.
func (s *Service) AcceptTrade(ctx context.Context, tradeID, callerID string) (*models.Trade, error) {
	trade, err := s.getTradeForCaller(ctx, tradeID, callerID)
	if err != nil {
		return nil, err
	}
	if callerID != trade.ResponderID {
		return nil, ErrForbidden
	}
	if trade.Status != models.TradeStatusProposed || !trade.Status.CanTransitionTo(models.TradeStatusAccepted) {
		return nil, ErrInvalidState
	}

	updated, err := s.trades.Accept(ctx, trade.ID, time.Now())
	if err != nil {
		return nil, mapRepoError(err)
	}

	slog.Info("Trade accepted",
		slog.String("trade_id", updated.TradeID),
		slog.String("responder_id", callerID))
	return updated, nil
}

// RejectTrade moves a proposed trade to rejected and releases every
// reserved card. Only the responder may reject.
func (s *Service) RejectTrade(ctx context.Context, tradeID, callerID string) (*models.Trade, error) {
	trade, err := s.getTradeForCaller(ctx, tradeID, callerID)
	if err != nil {
		return nil, err
	}
	if callerID != trade.ResponderID {
		return nil, ErrForbidden
	}
	if trade.Status != models.TradeStatusProposed || !trade.Status.CanTransitionTo(models.TradeStatusRejected) {
		return nil, ErrInvalidState
	}

	updated, err := s.trades.Reject(ctx, trade.ID, time.Now())
	if err != nil {
		return nil, mapRepoError(err)
	}

	slog.Info("Trade rejected",
		slog.String("trade_id", updated.TradeID),
		slog.String("responder_id", callerID))
	return updated, nil
}

func (s *Service) getTradeForCaller(ctx context.Context, tradeID, callerID string) (*models.Trade, error) {
	trade, err := s.trades.GetByTradeID(ctx, tradeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, ok := trade.SideOf(callerID); !ok {
		return nil, ErrForbidden
	}
	return trade, nil
}
