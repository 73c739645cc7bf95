package trading

import "errors"

// Sentinel errors for the trade use cases. The error text doubles as the
// stable client-facing code; the handler layer maps each to an HTTP
// status. Every error except ErrTradeExpired is raised before any
// mutation, so retrying after one is always safe. ErrTradeExpired is the
// deliberate fail-with-side-effect case: the expiry cancellation has
// already committed when it is returned, and clients must re-fetch.
var (
	ErrNotFound            = errors.New("trade_not_found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidState        = errors.New("invalid_state")
	ErrNotFriendsOrBlocked = errors.New("not_friends_or_blocked")
	ErrCardNotAvailable    = errors.New("card_not_available")
	ErrTooManyActiveTrades = errors.New("too_many_active_trades")
	ErrTradeExpired        = errors.New("trade_expired")
)

// ValidationError represents a malformed request (self-trade, empty card
// lists, duplicate cards, bad pagination).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
