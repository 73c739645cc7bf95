package repositories_test

import (
	"errors"
	"testing"

	"github.com/starlitcards/trade-core/tradecore/database/models"
	"github.com/starlitcards/trade-core/tradecore/database/repositories"
)

func TestCardReserve(t *testing.T) {
	f := newRepoFixture(t)
	card := f.seedCard(t, "alice", "Blue Dragon")

	if err := f.cards.Reserve(f.ctx, f.db.BunDB(), card.ID, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := f.cardStatus(t, card.ID); got != models.CardStatusReserved {
		t.Errorf("status = %q, want reserved", got)
	}

	// Reserving a reserved card matches zero rows.
	if err := f.cards.Reserve(f.ctx, f.db.BunDB(), card.ID, "alice"); !errors.Is(err, repositories.ErrCardUnavailable) {
		t.Fatalf("double reserve: got %v, want ErrCardUnavailable", err)
	}
}

func TestCardReserve_WrongOwner(t *testing.T) {
	f := newRepoFixture(t)
	card := f.seedCard(t, "alice", "Blue Dragon")

	err := f.cards.Reserve(f.ctx, f.db.BunDB(), card.ID, "bob")
	if !errors.Is(err, repositories.ErrCardUnavailable) {
		t.Fatalf("got %v, want ErrCardUnavailable", err)
	}
	if got := f.cardStatus(t, card.ID); got != models.CardStatusAvailable {
		t.Errorf("status = %q, want available", got)
	}
}

func TestCardReserve_MissingCard(t *testing.T) {
	f := newRepoFixture(t)

	err := f.cards.Reserve(f.ctx, f.db.BunDB(), 404, "alice")
	if !errors.Is(err, repositories.ErrCardUnavailable) {
		t.Fatalf("got %v, want ErrCardUnavailable", err)
	}
}

func TestCardRelease(t *testing.T) {
	f := newRepoFixture(t)
	card := f.seedCard(t, "alice", "Blue Dragon")

	// Releasing an unreserved card is a guard violation, not a no-op.
	if err := f.cards.Release(f.ctx, f.db.BunDB(), card.ID); !errors.Is(err, repositories.ErrCardUnavailable) {
		t.Fatalf("release available: got %v, want ErrCardUnavailable", err)
	}

	if err := f.cards.Reserve(f.ctx, f.db.BunDB(), card.ID, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := f.cards.Release(f.ctx, f.db.BunDB(), card.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := f.cardStatus(t, card.ID); got != models.CardStatusAvailable {
		t.Errorf("status = %q, want available", got)
	}
}

func TestCardTransfer(t *testing.T) {
	f := newRepoFixture(t)
	card := f.seedCard(t, "alice", "Blue Dragon")

	// Transfer requires a live reservation.
	if err := f.cards.Transfer(f.ctx, f.db.BunDB(), card.ID, "bob"); !errors.Is(err, repositories.ErrCardUnavailable) {
		t.Fatalf("transfer available: got %v, want ErrCardUnavailable", err)
	}

	if err := f.cards.Reserve(f.ctx, f.db.BunDB(), card.ID, "alice"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := f.cards.Transfer(f.ctx, f.db.BunDB(), card.ID, "bob"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	got, err := f.cards.GetByID(f.ctx, card.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != "bob" || got.Status != models.CardStatusAvailable {
		t.Errorf("owner=%q status=%q, want bob/available", got.OwnerID, got.Status)
	}
}

func TestCardGetByIDs(t *testing.T) {
	f := newRepoFixture(t)
	a := f.seedCard(t, "alice", "One")
	b := f.seedCard(t, "alice", "Two")

	cards, err := f.cards.GetByIDs(f.ctx, []int64{a.ID, b.ID, 404})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("cards = %d, want 2 (missing ids are skipped)", len(cards))
	}

	cards, err = f.cards.GetByIDs(f.ctx, nil)
	if err != nil || cards != nil {
		t.Errorf("empty input: cards=%v err=%v, want nil/nil", cards, err)
	}
}
