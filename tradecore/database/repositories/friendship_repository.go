package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/starlitcards/trade-core/tradecore/database/models"
)

type FriendshipRepository interface {
	// AreFriends reports whether an unblocked edge exists between the two
	// users in either direction.
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	// IsBlocked reports whether either user has blocked the other.
	IsBlocked(ctx context.Context, userID, otherID string) (bool, error)
	// SetFriendship upserts one directed edge.
	SetFriendship(ctx context.Context, userID, friendID string, blocked bool) error
}

type friendshipRepository struct {
	db *bun.DB
	*BaseRepository
}

func NewFriendshipRepository(db *bun.DB) FriendshipRepository {
	return &friendshipRepository{db: db, BaseRepository: NewBaseRepository(db)}
}

func (r *friendshipRepository) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.db.NewSelect().
		Model((*models.Friendship)(nil)).
		Where("((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)) AND blocked = ?",
			userID, otherID, otherID, userID, false).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("query", "friendship", err)
	}
	return exists, nil
}

func (r *friendshipRepository) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.db.NewSelect().
		Model((*models.Friendship)(nil)).
		Where("((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)) AND blocked = ?",
			userID, otherID, otherID, userID, true).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("query", "friendship", err)
	}
	return exists, nil
}

func (r *friendshipRepository) SetFriendship(ctx context.Context, userID, friendID string, blocked bool) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	edge := &models.Friendship{
		UserID:    userID,
		FriendID:  friendID,
		Blocked:   blocked,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(edge).
		On("CONFLICT (user_id, friend_id) DO UPDATE").
		Set("blocked = EXCLUDED.blocked").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert friendship: %w", err)
	}
	return nil
}
