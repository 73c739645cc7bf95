package tradecore

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starlitcards/trade-core/tradecore/database"
	"github.com/starlitcards/trade-core/tradecore/database/repositories"
	"github.com/starlitcards/trade-core/tradecore/handlers"
	"github.com/starlitcards/trade-core/tradecore/trading"
)

// App wires the repositories, the trade service, and the HTTP router.
type App struct {
	Cfg *Config
	DB  *database.DB

	TradeRepo      repositories.TradeRepository
	CardRepo       repositories.CardRepository
	FriendshipRepo repositories.FriendshipRepository
	TradeService   *trading.Service
}

func New(cfg *Config, db *database.DB) *App {
	bunDB := db.BunDB()

	cardRepo := repositories.NewCardRepository(bunDB)
	tradeRepo := repositories.NewTradeRepository(bunDB, cardRepo)
	friendshipRepo := repositories.NewFriendshipRepository(bunDB)

	svc := trading.NewService(tradeRepo, cardRepo, friendshipRepo, trading.Config{
		ConfirmationWindow: time.Duration(cfg.Trading.ConfirmationWindowHours) * time.Hour,
		MaxActivePerPair:   cfg.Trading.MaxActiveTradesPerPair,
	})

	return &App{
		Cfg:            cfg,
		DB:             db,
		TradeRepo:      tradeRepo,
		CardRepo:       cardRepo,
		FriendshipRepo: friendshipRepo,
		TradeService:   svc,
	}
}

// Router builds the HTTP surface for the trade operations.
func (a *App) Router() chi.Router {
	return handlers.NewRouter(handlers.NewTradeHandler(a.TradeService))
}

// Sweeper returns the optional expiry sweeper, or nil when disabled.
func (a *App) Sweeper() *trading.Sweeper {
	if a.Cfg.Trading.SweepIntervalMinutes <= 0 {
		return nil
	}
	window := time.Duration(a.Cfg.Trading.ConfirmationWindowHours) * time.Hour
	if window <= 0 {
		window = 48 * time.Hour
	}
	interval := time.Duration(a.Cfg.Trading.SweepIntervalMinutes) * time.Minute
	return trading.NewSweeper(a.TradeRepo, window, interval)
}

func (a *App) Close() {
	a.DB.Close()
}
