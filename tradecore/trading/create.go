package trading

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// CreateTradeProposal validates every precondition, then persists the
// trade, its items, and the card reservations in one transaction. All
// checks fail before any write; a reservation lost to a concurrent
// proposal rolls the whole creation back.
func (s *Service) CreateTradeProposal(ctx context.Context, initiatorID, responderID string, initiatorCardIDs, responderCardIDs []int64) (*models.Trade, error) {
	if initiatorID == responderID {
		return nil, &ValidationError{Message: "cannot trade with yourself"}
	}
	if len(initiatorCardIDs) == 0 && len(responderCardIDs) == 0 {
		return nil, &ValidationError{Message: "at least one card must be offered"}
	}
	if hasDuplicates(initiatorCardIDs, responderCardIDs) {
		return nil, &ValidationError{Message: "duplicate card in proposal"}
	}

	friends, err := s.social.AreFriends(ctx, initiatorID, responderID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.social.IsBlocked(ctx, initiatorID, responderID)
	if err != nil {
		return nil, err
	}
	if !friends || blocked {
		return nil, ErrNotFriendsOrBlocked
	}

	if err := s.checkCardsAvailable(ctx, initiatorID, initiatorCardIDs); err != nil {
		return nil, err
	}
	if err := s.checkCardsAvailable(ctx, responderID, responderCardIDs); err != nil {
		return nil, err
	}

	active, err := s.trades.CountActiveTradesBetweenUsers(ctx, initiatorID, responderID)
	if err != nil {
		return nil, err
	}
	if active >= s.cfg.MaxActivePerPair {
		return nil, ErrTooManyActiveTrades
	}

	trade := &models.Trade{
		TradeID:     uuid.NewString(),
		InitiatorID: initiatorID,
		ResponderID: responderID,
		Status:      models.TradeStatusProposed,
	}
	items := make([]*models.TradeItem, 0, len(initiatorCardIDs)+len(responderCardIDs))
	for _, cardID := range initiatorCardIDs {
		items = append(items, &models.TradeItem{CardID: cardID, OwnerSide: models.SideInitiator})
	}
	for _, cardID := range responderCardIDs {
		items = append(items, &models.TradeItem{CardID: cardID, OwnerSide: models.SideResponder})
	}

	if err := s.trades.CreateWithReservations(ctx, trade, items); err != nil {
		return nil, mapRepoError(err)
	}
	trade.Items = items

	slog.Info("Trade proposed",
		slog.String("trade_id", trade.TradeID),
		slog.String("initiator_id", initiatorID),
		slog.String("responder_id", responderID),
		slog.Int("cards", len(items)))
	return trade, nil
}

// checkCardsAvailable is the fast-fail precondition; the authoritative
// check is the guarded reservation flip inside the create transaction.
func (s *Service) checkCardsAvailable(ctx context.Context, ownerID string, cardIDs []int64) error {
	if len(cardIDs) == 0 {
		return nil
	}
	cards, err := s.cards.GetByIDs(ctx, cardIDs)
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}
	for _, id := range cardIDs {
		card, ok := byID[id]
		if !ok || card.OwnerID != ownerID || card.Status != models.CardStatusAvailable {
			return ErrCardNotAvailable
		}
	}
	return nil
}

func hasDuplicates(lists ...[]int64) bool {
	seen := map[int64]struct{}{}
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				return true
			}
			seen[id] = struct{}{}
		}
	}
	return false
}
