package models

import (
	"time"

	"github.com/uptrace/bun"
)

type CardStatus string

const (
	CardStatusAvailable CardStatus = "available"
	CardStatusReserved  CardStatus = "reserved"
	CardStatusTraded    CardStatus = "traded"
)

// Card is a uniquely-owned collectible. Status is the only state shared
// across trades: a card may be reserved by at most one active trade, and
// ownership changes only when a trade completes.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID      int64      `bun:"id,pk,autoincrement"`
	OwnerID string     `bun:"owner_id,notnull"`
	Name    string     `bun:"name,notnull"`
	ColID   string     `bun:"col_id"`
	Level   int        `bun:"level,notnull,default:1"`
	Status  CardStatus `bun:"status,notnull,default:'available'"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
