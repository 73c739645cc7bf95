package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// ErrStaleTransition is returned when a guarded status update matched zero
// rows: another request already moved the trade out of the expected status.
var ErrStaleTransition = errors.New("trade status changed concurrently")

type TradeRepository interface {
	// CreateWithReservations inserts the trade plus its items and reserves
	// every referenced card in one transaction. Any failed reservation
	// rolls back the whole creation (ErrCardUnavailable).
	CreateWithReservations(ctx context.Context, trade *models.Trade, items []*models.TradeItem) error

	GetByTradeID(ctx context.Context, tradeID string) (*models.Trade, error)
	GetItemsByTradeID(ctx context.Context, id int64) ([]*models.TradeItem, error)

	// Accept, Reject and Cancel perform guarded transitions. Reject and
	// Cancel also release every reserved card in the same transaction.
	Accept(ctx context.Context, id int64, now time.Time) (*models.Trade, error)
	Reject(ctx context.Context, id int64, now time.Time) (*models.Trade, error)
	Cancel(ctx context.Context, id int64, now time.Time) (*models.Trade, error)

	// Complete runs the confirmation algorithm for one side: lazy expiry
	// first (the expiry write commits and expired=true is returned), then
	// an idempotent confirmation write, then — once both sides have
	// confirmed — the completed transition plus every card ownership swap,
	// all in one transaction.
	Complete(ctx context.Context, id int64, side models.OwnerSide, now time.Time, window time.Duration) (trade *models.Trade, expired bool, err error)

	CountActiveTradesBetweenUsers(ctx context.Context, userID, otherID string) (int, error)
	GetUserTrades(ctx context.Context, userID string, limit, offset int) ([]*models.Trade, error)

	// ExpireStaleAccepted cancels every accepted trade whose confirmation
	// window has lapsed, releasing its reservations. Used by the optional
	// sweeper; the lazy check inside Complete never depends on it.
	ExpireStaleAccepted(ctx context.Context, window time.Duration) (int, error)
}

type tradeRepository struct {
	db    *bun.DB
	cards CardRepository
	*BaseRepository
}

func NewTradeRepository(db *bun.DB, cards CardRepository) TradeRepository {
	return &tradeRepository{db: db, cards: cards, BaseRepository: NewBaseRepository(db)}
}

func (r *tradeRepository) CreateWithReservations(ctx context.Context, trade *models.Trade, items []*models.TradeItem) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	trade.CreatedAt = now
	trade.UpdatedAt = now

	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(trade).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create trade: %w", err)
		}

		for _, item := range items {
			item.TradeID = trade.ID
			item.CreatedAt = now
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create trade items: %w", err)
		}

		for _, item := range items {
			owner := trade.UserOnSide(item.OwnerSide)
			if err := r.cards.Reserve(ctx, tx, item.CardID, owner); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *tradeRepository) GetByTradeID(ctx context.Context, tradeID string) (*models.Trade, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	trade := new(models.Trade)
	err := r.db.NewSelect().
		Model(trade).
		Where("t.trade_id = ?", tradeID).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("get", "trade", tradeID, err)
	}
	return trade, nil
}

func (r *tradeRepository) GetItemsByTradeID(ctx context.Context, id int64) ([]*models.TradeItem, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var items []*models.TradeItem
	err := r.db.NewSelect().
		Model(&items).
		Where("ti.trade_id = ?", id).
		Order("ti.id ASC").
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("list items", "trade", id, err)
	}
	return items, nil
}

func (r *tradeRepository) Accept(ctx context.Context, id int64, now time.Time) (*models.Trade, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewUpdate().
		Model((*models.Trade)(nil)).
		Set("status = ?", models.TradeStatusAccepted).
		Set("accepted_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ? AND status = ?", id, models.TradeStatusProposed).
		Exec(ctx)

	if err := checkTransition("accept", res, err); err != nil {
		return nil, err
	}
	return r.getByID(ctx, r.db, id)
}

func (r *tradeRepository) Reject(ctx context.Context, id int64, now time.Time) (*models.Trade, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Trade)(nil)).
			Set("status = ?", models.TradeStatusRejected).
			Set("updated_at = ?", now).
			Where("id = ? AND status = ?", id, models.TradeStatusProposed).
			Exec(ctx)
		if err := checkTransition("reject", res, err); err != nil {
			return err
		}
		return r.releaseItems(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, r.db, id)
}

func (r *tradeRepository) Cancel(ctx context.Context, id int64, now time.Time) (*models.Trade, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Trade)(nil)).
			Set("status = ?", models.TradeStatusCanceled).
			Set("canceled_at = ?", now).
			Set("updated_at = ?", now).
			Where("id = ? AND status IN (?)", id, bun.In(models.ActiveTradeStatuses)).
			Exec(ctx)
		if err := checkTransition("cancel", res, err); err != nil {
			return err
		}
		return r.releaseItems(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, r.db, id)
}

func (r *tradeRepository) Complete(ctx context.Context, id int64, side models.OwnerSide, now time.Time, window time.Duration) (*models.Trade, bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	// The store keeps microsecond precision; truncate before writing so the
	// returned struct matches what a later re-read yields.
	now = now.Truncate(time.Microsecond)

	var (
		out     *models.Trade
		expired bool
	)

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		trade := new(models.Trade)
		q := tx.NewSelect().Model(trade).Where("t.id = ?", id)
		if r.db.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			return r.HandleErrorWithID("complete", "trade", id, err)
		}

		if trade.Status != models.TradeStatusAccepted {
			return ErrStaleTransition
		}

		// Timeout check always comes first. The cancellation commits even
		// though the caller's completion fails: first access self-heals
		// the lapsed window.
		if now.Sub(trade.AcceptedAt) > window {
			if err := r.expireInTx(ctx, tx, trade, now); err != nil {
				return err
			}
			expired = true
			out = trade
			return nil
		}

		confirmCol := "initiator_confirmed_at"
		if side == models.SideResponder {
			confirmCol = "responder_confirmed_at"
		}
		if !trade.ConfirmedBy(side) {
			if _, err := tx.NewUpdate().
				Model((*models.Trade)(nil)).
				Set(confirmCol+" = ?", now).
				Set("updated_at = ?", now).
				Where("id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to record confirmation: %w", err)
			}
			if side == models.SideInitiator {
				trade.InitiatorConfirmedAt = now
			} else {
				trade.ResponderConfirmedAt = now
			}
			trade.UpdatedAt = now
		}

		if trade.ConfirmedBy(models.SideInitiator) && trade.ConfirmedBy(models.SideResponder) {
			res, err := tx.NewUpdate().
				Model((*models.Trade)(nil)).
				Set("status = ?", models.TradeStatusCompleted).
				Set("completed_at = ?", now).
				Set("updated_at = ?", now).
				Where("id = ? AND status = ?", id, models.TradeStatusAccepted).
				Exec(ctx)
			if err := checkTransition("complete", res, err); err != nil {
				return err
			}

			items, err := r.itemsInTx(ctx, tx, id)
			if err != nil {
				return err
			}
			for _, item := range items {
				newOwner := trade.UserOnSide(item.OwnerSide.Other())
				if err := r.cards.Transfer(ctx, tx, item.CardID, newOwner); err != nil {
					return err
				}
			}
			trade.Status = models.TradeStatusCompleted
			trade.CompletedAt = now
		}

		out = trade
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if out.Status == models.TradeStatusCompleted {
		slog.Info("Trade completed",
			slog.String("type", "db"),
			slog.String("trade_id", out.TradeID),
			slog.String("initiator_id", out.InitiatorID),
			slog.String("responder_id", out.ResponderID))
	}
	return out, expired, nil
}

func (r *tradeRepository) CountActiveTradesBetweenUsers(ctx context.Context, userID, otherID string) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Trade)(nil)).
		Where("((initiator_id = ? AND responder_id = ?) OR (initiator_id = ? AND responder_id = ?)) AND status IN (?)",
			userID, otherID, otherID, userID, bun.In(models.ActiveTradeStatuses)).
		Count(ctx)

	if err != nil {
		return 0, r.HandleError("count active", "trade", err)
	}
	return count, nil
}

func (r *tradeRepository) GetUserTrades(ctx context.Context, userID string, limit, offset int) ([]*models.Trade, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var trades []*models.Trade
	err := r.db.NewSelect().
		Model(&trades).
		Relation("Items").
		Where("initiator_id = ? OR responder_id = ?", userID, userID).
		Order("t.created_at DESC", "t.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleError("list", "trade", err)
	}
	return trades, nil
}

func (r *tradeRepository) ExpireStaleAccepted(ctx context.Context, window time.Duration) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now().Truncate(time.Microsecond)
	cutoff := now.Add(-window)

	var stale []*models.Trade
	err := r.db.NewSelect().
		Model(&stale).
		Column("t.id", "t.trade_id").
		Where("t.status = ? AND t.accepted_at < ?", models.TradeStatusAccepted, cutoff).
		Scan(ctx)
	if err != nil {
		return 0, r.HandleError("list stale", "trade", err)
	}

	expired := 0
	for _, trade := range stale {
		trade := trade
		err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			return r.expireInTx(ctx, tx, trade, now)
		})
		switch {
		case errors.Is(err, ErrStaleTransition):
			// Raced with a Complete or Cancel; nothing left to do.
		case err != nil:
			return expired, err
		default:
			expired++
		}
	}
	return expired, nil
}

// expireInTx performs the implicit canceled transition for a lapsed
// accepted trade: guarded status flip plus reservation release.
func (r *tradeRepository) expireInTx(ctx context.Context, tx bun.Tx, trade *models.Trade, now time.Time) error {
	res, err := tx.NewUpdate().
		Model((*models.Trade)(nil)).
		Set("status = ?", models.TradeStatusCanceled).
		Set("canceled_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ? AND status = ?", trade.ID, models.TradeStatusAccepted).
		Exec(ctx)
	if err := checkTransition("expire", res, err); err != nil {
		return err
	}
	if err := r.releaseItems(ctx, tx, trade.ID); err != nil {
		return err
	}
	trade.Status = models.TradeStatusCanceled
	trade.CanceledAt = now
	trade.UpdatedAt = now
	return nil
}

func (r *tradeRepository) releaseItems(ctx context.Context, tx bun.Tx, tradeID int64) error {
	items, err := r.itemsInTx(ctx, tx, tradeID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := r.cards.Release(ctx, tx, item.CardID); err != nil {
			return err
		}
	}
	return nil
}

func (r *tradeRepository) itemsInTx(ctx context.Context, tx bun.Tx, tradeID int64) ([]*models.TradeItem, error) {
	var items []*models.TradeItem
	err := tx.NewSelect().
		Model(&items).
		Where("ti.trade_id = ?", tradeID).
		Order("ti.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trade items: %w", err)
	}
	return items, nil
}

func (r *tradeRepository) getByID(ctx context.Context, idb bun.IDB, id int64) (*models.Trade, error) {
	trade := new(models.Trade)
	err := idb.NewSelect().
		Model(trade).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "trade", id, err)
	}
	return trade, nil
}

func checkTransition(op string, res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("failed to %s trade: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s trade: %w", op, err)
	}
	if affected == 0 {
		return ErrStaleTransition
	}
	return nil
}
