package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OwnerSide marks which party of a trade contributed a card.
type OwnerSide string

const (
	SideInitiator OwnerSide = "initiator"
	SideResponder OwnerSide = "responder"
)

// Other returns the opposite side.
func (s OwnerSide) Other() OwnerSide {
	if s == SideInitiator {
		return SideResponder
	}
	return SideInitiator
}

// TradeItem is one card contributed by one side of a trade. Rows are
// written together with their parent trade and never mutated afterwards.
type TradeItem struct {
	bun.BaseModel `bun:"table:trade_items,alias:ti"`

	ID        int64     `bun:"id,pk,autoincrement"`
	TradeID   int64     `bun:"trade_id,notnull"`
	CardID    int64     `bun:"card_id,notnull"`
	OwnerSide OwnerSide `bun:"owner_side,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Card *Card `bun:"rel:belongs-to,join:card_id=id"`
}
