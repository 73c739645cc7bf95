package trading

import (
	"context"

	"github.com/starlitcards/trade-core/tradecore/config"
	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// GetTradeHistory returns every trade the user participated in, newest
// first, paginated by limit/offset. Pure read; item cards are decorated
// with their immutable attributes through the card cache.
func (s *Service) GetTradeHistory(ctx context.Context, userID string, limit, offset int) ([]*models.Trade, error) {
	if offset < 0 {
		return nil, &ValidationError{Message: "offset must not be negative"}
	}
	if limit <= 0 {
		limit = config.DefaultHistoryPageSize
	}
	if limit > config.MaxHistoryPageSize {
		limit = config.MaxHistoryPageSize
	}

	trades, err := s.trades.GetUserTrades(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	for _, trade := range trades {
		for _, item := range trade.Items {
			card, err := s.cardInfo.get(ctx, item.CardID)
			if err != nil {
				// Decoration only; the history itself is still valid.
				continue
			}
			item.Card = card
		}
	}
	return trades, nil
}
