package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

func likeEvent(op domain.ChangeOp, userID string, cheatID int64) domain.ChangeEvent {
	return domain.ChangeEvent{Relation: domain.RelationLikes, Op: op, UserID: userID, CheatID: cheatID, At: time.Now()}
}

func receive(t *testing.T, view *FavoritesView) FavoritesSnapshot {
	t.Helper()
	select {
	case snap, ok := <-view.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
	return FavoritesSnapshot{}
}

func TestFavoritesView_InitialSnapshotAndScopedSubscription(t *testing.T) {
	store, _, favorites := newFavoritesFixture()
	store.seedLikes("u1", 2)
	feed := newStubFeed()

	view := NewFavoritesView(favorites, feed, "u1", discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()

	snap := receive(t, view)
	if snap.Count != 2 || len(snap.Cheats) != 2 || snap.Version != 1 {
		t.Errorf("unexpected initial snapshot: %+v", snap)
	}
	filter := feed.lastFilter()
	if filter == nil || filter.Column != "user_id" || filter.Value != "u1" {
		t.Errorf("subscription must be scoped to the user, got %+v", filter)
	}
}

func TestFavoritesView_RefreshesOnChange(t *testing.T) {
	store, _, favorites := newFavoritesFixture()
	feed := newStubFeed()

	view := NewFavoritesView(favorites, feed, "u1", discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()
	_ = receive(t, view)

	_ = store.Insert(context.Background(), &domain.Like{UserID: "u1", CheatID: 4})
	feed.publish(likeEvent(domain.OpInsert, "u1", 4))

	snap := receive(t, view)
	if snap.Count != 1 || snap.Cheats[0].ID != 4 {
		t.Errorf("expected cheat 4 after insert, got %+v", snap)
	}

	_, _ = store.Delete(context.Background(), "u1", 4)
	feed.publish(likeEvent(domain.OpDelete, "u1", 4))

	snap = receive(t, view)
	if snap.Count != 0 || len(snap.Cheats) != 0 {
		t.Errorf("expected empty favorites after delete, got %+v", snap)
	}
	if snap.Version != 3 {
		t.Errorf("expected version 3, got %d", snap.Version)
	}
}

func TestFavoritesView_IgnoresOtherUsers(t *testing.T) {
	_, _, favorites := newFavoritesFixture()
	feed := newStubFeed()

	view := NewFavoritesView(favorites, feed, "u1", discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()
	_ = receive(t, view)

	feed.publish(likeEvent(domain.OpInsert, "u2", 1))

	select {
	case snap := <-view.Updates():
		t.Fatalf("unexpected snapshot for another user's change: %+v", snap)
	default:
	}
}

func TestFavoritesView_StopReleasesSubscription(t *testing.T) {
	_, _, favorites := newFavoritesFixture()
	feed := newStubFeed()

	view := NewFavoritesView(favorites, feed, "u1", discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if feed.active() != 1 {
		t.Fatalf("expected 1 subscription, got %d", feed.active())
	}

	view.Stop()
	view.Stop()

	if feed.active() != 0 {
		t.Errorf("expected subscription released, got %d", feed.active())
	}
	// Drain the buffered snapshot then expect the channel closed.
	for range view.Updates() {
	}
}

func TestFavoritesView_Anonymous(t *testing.T) {
	_, _, favorites := newFavoritesFixture()
	feed := newStubFeed()

	view := NewFavoritesView(favorites, feed, "", discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()

	snap := receive(t, view)
	if snap.Count != 0 || snap.Cheats == nil || len(snap.Cheats) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if feed.active() != 0 {
		t.Error("anonymous views must not subscribe")
	}
}

func TestFavoritesView_StartFailureReleases(t *testing.T) {
	store, _, favorites := newFavoritesFixture()
	store.err = errors.New("read timeout")
	feed := newStubFeed()

	view := NewFavoritesView(favorites, feed, "u1", discardLogger)
	if err := view.Start(context.Background()); !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	if feed.active() != 0 {
		t.Errorf("failed start must release the subscription, got %d", feed.active())
	}

	subErr := newStubFeed()
	subErr.err = errors.New("channel error")
	other := NewFavoritesView(favorites, subErr, "u1", discardLogger)
	if err := other.Start(context.Background()); !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected remote failure on subscribe, got %v", err)
	}
}

func TestFavoritesView_StaleReadDiscarded(t *testing.T) {
	_, _, favorites := newFavoritesFixture()
	view := NewFavoritesView(favorites, newStubFeed(), "u1", discardLogger)

	older := view.nextGeneration()
	newer := view.nextGeneration()

	view.apply(newer, []domain.Cheat{{ID: 2}}, 1)
	snap := view.apply(older, []domain.Cheat{}, 0)

	if snap.Count != 1 || snap.Version != 1 {
		t.Errorf("older read must not overwrite newer, got %+v", snap)
	}
}

func TestFavoritesView_Refresh(t *testing.T) {
	store, _, favorites := newFavoritesFixture()
	view := NewFavoritesView(favorites, newStubFeed(), "u1", discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()

	store.seedLikes("u1", 4)
	snap, err := view.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.Count != 4 {
		t.Errorf("expected 4 after refresh, got %d", snap.Count)
	}
	if got := view.Snapshot(); got.Version != snap.Version {
		t.Errorf("Snapshot and Refresh disagree: %d vs %d", got.Version, snap.Version)
	}
}
