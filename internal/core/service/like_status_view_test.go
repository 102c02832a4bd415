package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

func receiveStatus(t *testing.T, view *LikeStatusView) LikeStatusSnapshot {
	t.Helper()
	select {
	case snap, ok := <-view.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("no like status published")
	}
	return LikeStatusSnapshot{}
}

func TestLikeStatusView_InitialReadingAndScopedSubscription(t *testing.T) {
	f := newLikeFixture(t)
	f.store.seedLikes("u1", 7)
	f.store.seedLikes("u2", 7)
	feed := newStubFeed()

	view := NewLikeStatusView(f.svc, feed, "u1", 7, discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()

	snap := receiveStatus(t, view)
	if snap.CheatID != 7 || !snap.IsLiked || snap.LikesCount != 2 || snap.Version != 1 {
		t.Errorf("unexpected first reading: %+v", snap)
	}
	filter := feed.lastFilter()
	if filter == nil || filter.Column != "cheat_id" || filter.Value != "7" {
		t.Errorf("subscription must be scoped to the cheat, got %+v", filter)
	}
}

func TestLikeStatusView_CounterFollowsOtherUsers(t *testing.T) {
	f := newLikeFixture(t)
	feed := newStubFeed()

	view := NewLikeStatusView(f.svc, feed, "", 3, discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()
	if snap := receiveStatus(t, view); snap.LikesCount != 0 || snap.IsLiked {
		t.Fatalf("unexpected first reading: %+v", snap)
	}

	if _, err := f.svc.ToggleLike(context.Background(), "u2", 3); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	feed.publish(likeEvent(domain.OpInsert, "u2", 3))

	snap := receiveStatus(t, view)
	if snap.LikesCount != 1 || snap.IsLiked || snap.Version != 2 {
		t.Errorf("expected counter 1 for an anonymous viewer, got %+v", snap)
	}

	if _, err := f.svc.ToggleLike(context.Background(), "u2", 3); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	feed.publish(likeEvent(domain.OpDelete, "u2", 3))

	if snap := receiveStatus(t, view); snap.LikesCount != 0 {
		t.Errorf("expected counter back to 0, got %+v", snap)
	}
}

func TestLikeStatusView_IgnoresOtherCheats(t *testing.T) {
	f := newLikeFixture(t)
	feed := newStubFeed()

	view := NewLikeStatusView(f.svc, feed, "u1", 3, discardLogger)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer view.Stop()
	_ = receiveStatus(t, view)

	feed.publish(likeEvent(domain.OpInsert, "u1", 4))

	select {
	case snap := <-view.Updates():
		t.Fatalf("unexpected reading for another cheat: %+v", snap)
	default:
	}
}

func TestLikeStatusView_StopReleasesSubscription(t *testing.T) {
	f := newLikeFixture(t)
	feed := newStubFeed()

	view := NewLikeStatusView(f.svc, feed, "u1", 3, discardLogger)
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
	for range view.Updates() {
	}
}

func TestLikeStatusView_StartFailureReleases(t *testing.T) {
	f := newLikeFixture(t)
	feed := newStubFeed()
	f.store.err = errors.New("connection reset")

	view := NewLikeStatusView(f.svc, feed, "u1", 3, discardLogger)
	if err := view.Start(context.Background()); !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	if feed.active() != 0 {
		t.Errorf("failed start must release the subscription, got %d", feed.active())
	}

	subErr := newStubFeed()
	subErr.err = errors.New("feed down")
	other := NewLikeStatusView(f.svc, subErr, "u1", 3, discardLogger)
	if err := other.Start(context.Background()); !errors.Is(err, domain.ErrRemoteFailure) {
		t.Fatalf("expected remote failure on subscribe, got %v", err)
	}
}
