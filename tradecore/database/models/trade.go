package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TradeStatus string

const (
	TradeStatusDraft     TradeStatus = "draft"
	TradeStatusProposed  TradeStatus = "proposed"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusCompleted TradeStatus = "completed"
	TradeStatusRejected  TradeStatus = "rejected"
	TradeStatusCanceled  TradeStatus = "canceled"
)

// tradeTransitions is the single authority on which status changes are
// legal. Terminal states have no outgoing edges. Repository writes guard
// the same transitions again in SQL so concurrent callers can't bypass it.
var tradeTransitions = map[TradeStatus][]TradeStatus{
	TradeStatusDraft:     {TradeStatusProposed, TradeStatusCanceled},
	TradeStatusProposed:  {TradeStatusAccepted, TradeStatusRejected, TradeStatusCanceled},
	TradeStatusAccepted:  {TradeStatusCompleted, TradeStatusCanceled},
	TradeStatusCompleted: {},
	TradeStatusRejected:  {},
	TradeStatusCanceled:  {},
}

// CanTransitionTo reports whether moving from s to target is a legal
// status change.
func (s TradeStatus) CanTransitionTo(target TradeStatus) bool {
	for _, next := range tradeTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is a final outcome (completed, rejected
// or canceled). A terminal trade never changes status again.
func (s TradeStatus) IsTerminal() bool {
	switch s {
	case TradeStatusCompleted, TradeStatusRejected, TradeStatusCanceled:
		return true
	}
	return false
}

// IsActive reports whether s holds card reservations (proposed or accepted).
func (s TradeStatus) IsActive() bool {
	return s == TradeStatusProposed || s == TradeStatusAccepted
}

// IsValid reports whether s is a member of the closed status set.
func (s TradeStatus) IsValid() bool {
	_, ok := tradeTransitions[s]
	return ok
}

// ActiveTradeStatuses are the statuses counted against the per-pair
// negotiation cap.
var ActiveTradeStatuses = []TradeStatus{TradeStatusProposed, TradeStatusAccepted}

type Trade struct {
	bun.BaseModel `bun:"table:trades,alias:t"`

	ID          int64       `bun:"id,pk,autoincrement"`
	TradeID     string      `bun:"trade_id,notnull,unique"`
	InitiatorID string      `bun:"initiator_id,notnull"`
	ResponderID string      `bun:"responder_id,notnull"`
	Status      TradeStatus `bun:"status,notnull"`

	AcceptedAt           time.Time `bun:"accepted_at,nullzero"`
	InitiatorConfirmedAt time.Time `bun:"initiator_confirmed_at,nullzero"`
	ResponderConfirmedAt time.Time `bun:"responder_confirmed_at,nullzero"`
	CompletedAt          time.Time `bun:"completed_at,nullzero"`
	CanceledAt           time.Time `bun:"canceled_at,nullzero"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Items []*TradeItem `bun:"rel:has-many,join:id=trade_id"`
}

// SideOf returns which side of the trade userID is on, or false if the
// user is not a party to it.
func (t *Trade) SideOf(userID string) (OwnerSide, bool) {
	switch userID {
	case t.InitiatorID:
		return SideInitiator, true
	case t.ResponderID:
		return SideResponder, true
	}
	return "", false
}

// UserOnSide returns the user id owning the given side.
func (t *Trade) UserOnSide(side OwnerSide) string {
	if side == SideInitiator {
		return t.InitiatorID
	}
	return t.ResponderID
}

// ConfirmedBy reports whether the given side has already confirmed
// completion.
func (t *Trade) ConfirmedBy(side OwnerSide) bool {
	if side == SideInitiator {
		return !t.InitiatorConfirmedAt.IsZero()
	}
	return !t.ResponderConfirmedAt.IsZero()
}
