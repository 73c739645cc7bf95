package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/starlitcards/trade-core/tradecore/trading"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body as JSON into v, rejecting unknown
// fields and non-JSON content types.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("request body must be JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("request body must be valid JSON")
	}
	return nil
}

// WriteTradeError maps a use-case error onto a distinct client-facing
// code and HTTP status. Each taxonomy member keeps a stable code so
// clients can branch on it.
func WriteTradeError(w http.ResponseWriter, err error) {
	var ve *trading.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, "validation_failed", ve.Message)
		return
	}

	switch {
	case errors.Is(err, trading.ErrNotFound):
		WriteError(w, http.StatusNotFound, trading.ErrNotFound.Error(), "trade not found")
	case errors.Is(err, trading.ErrForbidden):
		WriteError(w, http.StatusForbidden, trading.ErrForbidden.Error(), "caller is not allowed to perform this action")
	case errors.Is(err, trading.ErrNotFriendsOrBlocked):
		WriteError(w, http.StatusForbidden, trading.ErrNotFriendsOrBlocked.Error(), "users must be friends and not blocked")
	case errors.Is(err, trading.ErrInvalidState):
		WriteError(w, http.StatusConflict, trading.ErrInvalidState.Error(), "trade status does not permit this action")
	case errors.Is(err, trading.ErrCardNotAvailable):
		WriteError(w, http.StatusConflict, trading.ErrCardNotAvailable.Error(), "a referenced card is missing, not available, or not owned by the offering side")
	case errors.Is(err, trading.ErrTooManyActiveTrades):
		WriteError(w, http.StatusConflict, trading.ErrTooManyActiveTrades.Error(), "too many active trades between these users")
	case errors.Is(err, trading.ErrTradeExpired):
		// The expiry cancellation already committed; tell the client to
		// re-fetch the trade.
		WriteError(w, http.StatusGone, trading.ErrTradeExpired.Error(), "the confirmation window has lapsed and the trade was canceled")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}
