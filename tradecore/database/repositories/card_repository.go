package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

// ErrCardUnavailable is returned when a conditional card update matched
// zero rows: the card is missing, not in the expected status, or owned by
// someone else. Callers must treat it as "grabbed concurrently" and abort.
var ErrCardUnavailable = errors.New("card not available")

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Card, error)

	// Reserve flips available -> reserved for a card owned by ownerID.
	// Release flips reserved -> available. Transfer hands the card to
	// newOwnerID and flips reserved -> available in one write. All three
	// are guarded conditional updates: zero affected rows yields
	// ErrCardUnavailable. They accept a bun.IDB so trade transactions can
	// run them inside their own tx.
	Reserve(ctx context.Context, idb bun.IDB, cardID int64, ownerID string) error
	Release(ctx context.Context, idb bun.IDB, cardID int64) error
	Transfer(ctx context.Context, idb bun.IDB, cardID int64, newOwnerID string) error
}

type cardRepository struct {
	db *bun.DB
	*BaseRepository
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{db: db, BaseRepository: NewBaseRepository(db)}
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now
	if card.Status == "" {
		card.Status = models.CardStatusAvailable
	}

	_, err := r.db.NewInsert().Model(card).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("c.id = ?", id).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("get", "card", id, err)
	}
	return card, nil
}

func (r *cardRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("c.id IN (?)", bun.In(ids)).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleError("list", "card", err)
	}
	return cards, nil
}

func (r *cardRepository) Reserve(ctx context.Context, idb bun.IDB, cardID int64, ownerID string) error {
	res, err := idb.NewUpdate().
		Model((*models.Card)(nil)).
		Set("status = ?", models.CardStatusReserved).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND owner_id = ? AND status = ?", cardID, ownerID, models.CardStatusAvailable).
		Exec(ctx)

	return r.checkGuarded("reserve", cardID, res, err)
}

func (r *cardRepository) Release(ctx context.Context, idb bun.IDB, cardID int64) error {
	res, err := idb.NewUpdate().
		Model((*models.Card)(nil)).
		Set("status = ?", models.CardStatusAvailable).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND status = ?", cardID, models.CardStatusReserved).
		Exec(ctx)

	return r.checkGuarded("release", cardID, res, err)
}

func (r *cardRepository) Transfer(ctx context.Context, idb bun.IDB, cardID int64, newOwnerID string) error {
	res, err := idb.NewUpdate().
		Model((*models.Card)(nil)).
		Set("owner_id = ?", newOwnerID).
		Set("status = ?", models.CardStatusAvailable).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND status = ?", cardID, models.CardStatusReserved).
		Exec(ctx)

	return r.checkGuarded("transfer", cardID, res, err)
}

func (r *cardRepository) checkGuarded(op string, cardID int64, res sql.Result, err error) error {
	if err != nil {
		return &RepositoryError{Operation: op, Entity: "card", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &RepositoryError{Operation: op, Entity: "card", Err: err}
	}
	if affected == 0 {
		return fmt.Errorf("%s card %d: %w", op, cardID, ErrCardUnavailable)
	}
	return nil
}
