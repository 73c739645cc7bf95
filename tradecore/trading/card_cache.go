package trading

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/starlitcards/trade-core/tradecore/config"
	"github.com/starlitcards/trade-core/tradecore/database/models"
	"github.com/starlitcards/trade-core/tradecore/database/repositories"
)

// cardCache caches the immutable card attributes used to decorate trade
// history. Owner and status are deliberately not cached; they change with
// every completed trade.
type cardCache struct {
	cache *lru.Cache
	cards repositories.CardRepository
}

type cardInfo struct {
	name  string
	colID string
	level int
}

func newCardCache(cards repositories.CardRepository) *cardCache {
	cache, _ := lru.New(config.CardCacheSize)
	return &cardCache{cache: cache, cards: cards}
}

func (c *cardCache) get(ctx context.Context, cardID int64) (*models.Card, error) {
	if v, ok := c.cache.Get(cardID); ok {
		info := v.(cardInfo)
		return &models.Card{ID: cardID, Name: info.name, ColID: info.colID, Level: info.level}, nil
	}

	card, err := c.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cardID, cardInfo{name: card.Name, colID: card.ColID, level: card.Level})
	return &models.Card{ID: cardID, Name: card.Name, ColID: card.ColID, Level: card.Level}, nil
}
