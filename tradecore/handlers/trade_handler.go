package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starlitcards/trade-core/tradecore/database/models"
	"github.com/starlitcards/trade-core/tradecore/trading"
)

type TradeHandler struct {
	svc *trading.Service
}

func NewTradeHandler(svc *trading.Service) *TradeHandler {
	return &TradeHandler{svc: svc}
}

type createTradeRequest struct {
	InitiatorID      string  `json:"initiator_id"`
	ResponderID      string  `json:"responder_id"`
	InitiatorCardIDs []int64 `json:"initiator_card_ids"`
	ResponderCardIDs []int64 `json:"responder_card_ids"`
}

type tradeActionRequest struct {
	CallerID string `json:"caller_id"`
}

type tradeItemResponse struct {
	CardID    int64  `json:"card_id"`
	OwnerSide string `json:"owner_side"`
	CardName  string `json:"card_name,omitempty"`
}

type tradeResponse struct {
	TradeID              string              `json:"trade_id"`
	InitiatorID          string              `json:"initiator_id"`
	ResponderID          string              `json:"responder_id"`
	Status               string              `json:"status"`
	AcceptedAt           *time.Time          `json:"accepted_at,omitempty"`
	InitiatorConfirmedAt *time.Time          `json:"initiator_confirmed_at,omitempty"`
	ResponderConfirmedAt *time.Time          `json:"responder_confirmed_at,omitempty"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	CanceledAt           *time.Time          `json:"canceled_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	Items                []tradeItemResponse `json:"items,omitempty"`
}

func toTradeResponse(t *models.Trade) tradeResponse {
	resp := tradeResponse{
		TradeID:              t.TradeID,
		InitiatorID:          t.InitiatorID,
		ResponderID:          t.ResponderID,
		Status:               string(t.Status),
		AcceptedAt:           nullableTime(t.AcceptedAt),
		InitiatorConfirmedAt: nullableTime(t.InitiatorConfirmedAt),
		ResponderConfirmedAt: nullableTime(t.ResponderConfirmedAt),
		CompletedAt:          nullableTime(t.CompletedAt),
		CanceledAt:           nullableTime(t.CanceledAt),
		CreatedAt:            t.CreatedAt,
	}
	for _, item := range t.Items {
		ir := tradeItemResponse{CardID: item.CardID, OwnerSide: string(item.OwnerSide)}
		if item.Card != nil {
			ir.CardName = item.Card.Name
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (h *TradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	trade, err := h.svc.CreateTradeProposal(r.Context(), req.InitiatorID, req.ResponderID, req.InitiatorCardIDs, req.ResponderCardIDs)
	if err != nil {
		WriteTradeError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toTradeResponse(trade))
}

func (h *TradeHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.svc.AcceptTrade)
}

func (h *TradeHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.svc.RejectTrade)
}

func (h *TradeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.svc.CancelTrade)
}

func (h *TradeHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.svc.CompleteTrade)
}

func (h *TradeHandler) action(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tradeID, callerID string) (*models.Trade, error)) {
	var req tradeActionRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if req.CallerID == "" {
		WriteError(w, http.StatusBadRequest, "validation_failed", "caller_id is required")
		return
	}

	trade, err := fn(r.Context(), chi.URLParam(r, "trade_id"), req.CallerID)
	if err != nil {
		WriteTradeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponse(trade))
}

func (h *TradeHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	trades, err := h.svc.GetTradeHistory(r.Context(), userID, limit, offset)
	if err != nil {
		WriteTradeError(w, err)
		return
	}

	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	WriteJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
