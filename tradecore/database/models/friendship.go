package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Friendship is one directed edge of the social graph. Two users are
// friends when an unblocked edge exists in either direction; a block in
// either direction vetoes trading between the pair.
type Friendship struct {
	bun.BaseModel `bun:"table:friendships,alias:f"`

	ID       int64  `bun:"id,pk,autoincrement"`
	UserID   string `bun:"user_id,notnull,unique:friendships_pair"`
	FriendID string `bun:"friend_id,notnull,unique:friendships_pair"`
	Blocked  bool   `bun:"blocked,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
