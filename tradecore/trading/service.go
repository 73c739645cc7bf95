package trading

import (
	"context"
	"errors"
	"time"

	"github.com/starlitcards/trade-core/tradecore/config"
	"github.com/starlitcards/trade-core/tradecore/database/repositories"
)

// SocialGraph is the friendship/blocking collaborator consumed by the
// trade use cases. Friend-graph management itself lives outside this
// service.
type SocialGraph interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	IsBlocked(ctx context.Context, userID, otherID string) (bool, error)
}

type Config struct {
	// ConfirmationWindow bounds the time between acceptance and the second
	// confirmation. Zero means the default 48h.
	ConfirmationWindow time.Duration
	// MaxActivePerPair caps simultaneous proposed/accepted trades between
	// one user pair. Zero means the default of 3.
	MaxActivePerPair int
}

// Service implements the trade use cases. Every operation runs inside one
// request-scoped storage transaction; correctness under concurrency is
// delegated to the storage layer's guarded conditional writes, so the
// service holds no locks of its own.
type Service struct {
	trades   repositories.TradeRepository
	cards    repositories.CardRepository
	social   SocialGraph
	cfg      Config
	cardInfo *cardCache
}

func NewService(trades repositories.TradeRepository, cards repositories.CardRepository, social SocialGraph, cfg Config) *Service {
	if cfg.ConfirmationWindow <= 0 {
		cfg.ConfirmationWindow = config.DefaultConfirmationWindow
	}
	if cfg.MaxActivePerPair <= 0 {
		cfg.MaxActivePerPair = config.DefaultMaxActiveTradesPerPair
	}
	return &Service{
		trades:   trades,
		cards:    cards,
		social:   social,
		cfg:      cfg,
		cardInfo: newCardCache(cards),
	}
}

func mapRepoError(err error) error {
	var nfe *repositories.NotFoundError
	switch {
	case errors.As(err, &nfe):
		return ErrNotFound
	case errors.Is(err, repositories.ErrCardUnavailable):
		return ErrCardNotAvailable
	case errors.Is(err, repositories.ErrStaleTransition):
		return ErrInvalidState
	}
	return err
}
