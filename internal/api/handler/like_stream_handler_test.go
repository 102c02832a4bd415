package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/service"
)

// stubStatusStream is a LikeStatusStream driven by the test through push.
type stubStatusStream struct {
	mu      sync.Mutex
	updates chan service.LikeStatusSnapshot
	started chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newStubStatusStream() *stubStatusStream {
	return &stubStatusStream{
		updates: make(chan service.LikeStatusSnapshot, 4),
		started: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *stubStatusStream) Start(ctx context.Context) error {
	close(s.started)
	return nil
}

func (s *stubStatusStream) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		close(s.updates)
		s.mu.Unlock()
		close(s.stopped)
	})
}

func (s *stubStatusStream) Updates() <-chan service.LikeStatusSnapshot { return s.updates }

func (s *stubStatusStream) push(snap service.LikeStatusSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopped:
	default:
		s.updates <- snap
	}
}

func knownCheats(ids ...int64) *stubCheatService {
	return &stubCheatService{getFn: func(ctx context.Context, id int64) (*domain.Cheat, error) {
		for _, known := range ids {
			if id == known {
				return &domain.Cheat{ID: id, Name: "Jetpack", Code: "ROCKETMAN"}, nil
			}
		}
		return nil, domain.ErrCheatNotFound
	}}
}

func TestLikeStreamHandler_RejectsBeforeUpgrade(t *testing.T) {
	handler := NewLikeStreamHandler(context.Background(), knownCheats(5), func(string, int64) LikeStatusStream {
		t.Fatalf("stream must not be created")
		return nil
	}, nil, zerolog.Nop())

	c, _ := newContext(http.MethodGet, "/v1/cheats/abc/like/stream", "", "")
	err := handler.Stream(withParam(c, "id", "abc"))
	if httpStatus(t, err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %v", err)
	}

	c, _ = newContext(http.MethodGet, "/v1/cheats/9/like/stream", "", "")
	if err := handler.Stream(withParam(c, "id", "9")); !errors.Is(err, domain.ErrCheatNotFound) {
		t.Fatalf("expected ErrCheatNotFound, got %v", err)
	}
}

func TestLikeStreamHandler_PushesCounter(t *testing.T) {
	stream := newStubStatusStream()
	var gotUser string
	var gotCheat int64
	handler := NewLikeStreamHandler(context.Background(), knownCheats(5), func(userID string, cheatID int64) LikeStatusStream {
		gotUser, gotCheat = userID, cheatID
		return stream
	}, nil, zerolog.Nop())

	e := echo.New()
	e.GET("/cheats/:id/like/stream", handler.Stream)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/cheats/5/like/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	select {
	case <-stream.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("stream not started")
	}
	if gotUser != "" || gotCheat != 5 {
		t.Fatalf("stream built for (%q, %d), want anonymous viewer of cheat 5", gotUser, gotCheat)
	}

	stream.push(service.LikeStatusSnapshot{CheatID: 5, LikesCount: 3, Version: 1})
	stream.push(service.LikeStatusSnapshot{CheatID: 5, LikesCount: 4, Version: 2})

	for want := int64(3); want <= 4; want++ {
		var msg likeStatusMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type != "like_status" || msg.CheatID != 5 || msg.LikesCount != want || msg.IsLiked {
			t.Fatalf("unexpected message: %+v", msg)
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")

	select {
	case <-stream.stopped:
	case <-time.After(5 * time.Second):
		t.Fatalf("stream not stopped after client disconnect")
	}
}
