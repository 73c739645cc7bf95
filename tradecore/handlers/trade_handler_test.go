package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starlitcards/trade-core/tradecore/database"
	"github.com/starlitcards/trade-core/tradecore/database/models"
	"github.com/starlitcards/trade-core/tradecore/database/repositories"
	"github.com/starlitcards/trade-core/tradecore/handlers"
	"github.com/starlitcards/trade-core/tradecore/trading"
)

type apiFixture struct {
	ctx    context.Context
	db     *database.DB
	cards  repositories.CardRepository
	router chi.Router
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) +
		"?mode=memory&cache=shared"
	db, err := database.New(ctx, database.DBConfig{Driver: "sqlite", Path: dsn})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.InitializeSchema(ctx); err != nil {
		t.Fatalf("initialize schema: %v", err)
	}

	cards := repositories.NewCardRepository(db.BunDB())
	trades := repositories.NewTradeRepository(db.BunDB(), cards)
	friends := repositories.NewFriendshipRepository(db.BunDB())

	if err := friends.SetFriendship(ctx, "alice", "bob", false); err != nil {
		t.Fatalf("seed friendship: %v", err)
	}

	svc := trading.NewService(trades, cards, friends, trading.Config{})
	return &apiFixture{
		ctx:    ctx,
		db:     db,
		cards:  cards,
		router: handlers.NewRouter(handlers.NewTradeHandler(svc)),
	}
}

func (f *apiFixture) seedCard(t *testing.T, ownerID, name string) *models.Card {
	t.Helper()
	card := &models.Card{OwnerID: ownerID, Name: name, Level: 1}
	if err := f.cards.Create(f.ctx, card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (f *apiFixture) propose(t *testing.T, give, want []int64) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/trades", map[string]any{
		"initiator_id":       "alice",
		"responder_id":       "bob",
		"initiator_card_ids": give,
		"responder_card_ids": want,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create trade: status %d body %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["trade_id"].(string)
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCreateTrade(t *testing.T) {
	f := newAPIFixture(t)
	give := f.seedCard(t, "alice", "Blue Dragon")
	want := f.seedCard(t, "bob", "Red Phoenix")

	rec := f.do(t, http.MethodPost, "/trades", map[string]any{
		"initiator_id":       "alice",
		"responder_id":       "bob",
		"initiator_card_ids": []int64{give.ID},
		"responder_card_ids": []int64{want.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "proposed" {
		t.Errorf("status field = %v, want proposed", body["status"])
	}
	if body["trade_id"] == "" {
		t.Error("trade_id missing")
	}
	if items, ok := body["items"].([]any); !ok || len(items) != 2 {
		t.Errorf("items = %v, want 2 entries", body["items"])
	}
}

func TestCreateTrade_BadRequests(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("no content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/trades", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("self trade", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/trades", map[string]any{
			"initiator_id":       "alice",
			"responder_id":       "alice",
			"initiator_card_ids": []int64{1},
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "validation_failed" {
			t.Errorf("error code = %v, want validation_failed", got)
		}
	})

	t.Run("strangers", func(t *testing.T) {
		card := f.seedCard(t, "alice", "Blue Dragon")
		rec := f.do(t, http.MethodPost, "/trades", map[string]any{
			"initiator_id":       "alice",
			"responder_id":       "mallory",
			"initiator_card_ids": []int64{card.ID},
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "not_friends_or_blocked" {
			t.Errorf("error code = %v", got)
		}
	})
}

func TestTradeActions(t *testing.T) {
	f := newAPIFixture(t)
	give := f.seedCard(t, "alice", "Blue Dragon")
	want := f.seedCard(t, "bob", "Red Phoenix")
	tradeID := f.propose(t, []int64{give.ID}, []int64{want.ID})

	t.Run("accept by initiator forbidden", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/trades/"+tradeID+"/accept", map[string]any{"caller_id": "alice"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("missing caller_id", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/trades/"+tradeID+"/accept", map[string]any{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown trade", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/trades/deadbeef/accept", map[string]any{"caller_id": "bob"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "trade_not_found" {
			t.Errorf("error code = %v", got)
		}
	})

	t.Run("accept then double accept", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/trades/"+tradeID+"/accept", map[string]any{"caller_id": "bob"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["status"] != "accepted" {
			t.Errorf("status field = %v, want accepted", body["status"])
		}
		if body["accepted_at"] == nil {
			t.Error("accepted_at missing")
		}

		rec = f.do(t, http.MethodPost, "/trades/"+tradeID+"/accept", map[string]any{"caller_id": "bob"})
		if rec.Code != http.StatusConflict {
			t.Fatalf("double accept: status = %d, want 409", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "invalid_state" {
			t.Errorf("error code = %v", got)
		}
	})

	t.Run("dual confirmation completes", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/trades/"+tradeID+"/complete", map[string]any{"caller_id": "alice"})
		if rec.Code != http.StatusOK {
			t.Fatalf("first confirm: status = %d body %s", rec.Code, rec.Body.String())
		}
		if got := decodeBody(t, rec)["status"]; got != "accepted" {
			t.Errorf("status after one confirm = %v, want accepted", got)
		}

		rec = f.do(t, http.MethodPost, "/trades/"+tradeID+"/complete", map[string]any{"caller_id": "bob"})
		if rec.Code != http.StatusOK {
			t.Fatalf("second confirm: status = %d body %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["status"] != "completed" {
			t.Errorf("status = %v, want completed", body["status"])
		}
		if body["completed_at"] == nil {
			t.Error("completed_at missing")
		}
	})
}

func TestCompleteExpired(t *testing.T) {
	f := newAPIFixture(t)
	card := f.seedCard(t, "alice", "Blue Dragon")
	tradeID := f.propose(t, []int64{card.ID}, nil)

	rec := f.do(t, http.MethodPost, "/trades/"+tradeID+"/accept", map[string]any{"caller_id": "bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status = %d", rec.Code)
	}

	_, err := f.db.BunDB().NewUpdate().
		Model((*models.Trade)(nil)).
		Set("accepted_at = ?", time.Now().Add(-49*time.Hour)).
		Where("trade_id = ?", tradeID).
		Exec(f.ctx)
	if err != nil {
		t.Fatalf("backdate accepted_at: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/trades/"+tradeID+"/complete", map[string]any{"caller_id": "alice"})
	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "trade_expired" {
		t.Errorf("error code = %v", got)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	card := f.seedCard(t, "alice", "Blue Dragon")
	tradeID := f.propose(t, []int64{card.ID}, nil)

	rec := f.do(t, http.MethodPost, "/trades/"+tradeID+"/cancel", map[string]any{"caller_id": "alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/users/alice/trades", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	var trades []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &trades); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	if trades[0]["status"] != "canceled" {
		t.Errorf("status = %v, want canceled", trades[0]["status"])
	}

	rec = f.do(t, http.MethodGet, "/users/alice/trades?offset=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative offset: status = %d, want 400", rec.Code)
	}
}
