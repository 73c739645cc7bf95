package repositories_test

import (
	"testing"

	"github.com/starlitcards/trade-core/tradecore/database/repositories"
)

func TestFriendship(t *testing.T) {
	f := newRepoFixture(t)
	friends := repositories.NewFriendshipRepository(f.db.BunDB())

	ok, err := friends.AreFriends(f.ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if ok {
		t.Error("strangers reported as friends")
	}

	if err := friends.SetFriendship(f.ctx, "alice", "bob", false); err != nil {
		t.Fatalf("set: %v", err)
	}

	// One directed edge is enough, in either lookup direction.
	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		ok, err := friends.AreFriends(f.ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if !ok {
			t.Errorf("AreFriends(%s, %s) = false", pair[0], pair[1])
		}
	}

	blocked, err := friends.IsBlocked(f.ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if blocked {
		t.Error("unblocked pair reported blocked")
	}
}

func TestFriendship_BlockUpsert(t *testing.T) {
	f := newRepoFixture(t)
	friends := repositories.NewFriendshipRepository(f.db.BunDB())

	if err := friends.SetFriendship(f.ctx, "alice", "bob", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Same edge flipped to blocked: the upsert must update, not duplicate.
	if err := friends.SetFriendship(f.ctx, "alice", "bob", true); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	blocked, err := friends.IsBlocked(f.ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !blocked {
		t.Error("blocked edge not visible in reverse direction")
	}

	ok, err := friends.AreFriends(f.ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if ok {
		t.Error("blocked edge still counts as friendship")
	}
}
