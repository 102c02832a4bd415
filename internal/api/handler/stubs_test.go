package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/api/middleware"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/core/service"
)

// newContext builds an echo context for a single handler call. userID is
// set as the authenticated identity when non-empty.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, domain.RoleUser)
	}
	return c, rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

type stubLikeService struct {
	toggleFn func(ctx context.Context, userID string, cheatID int64) (*ports.ToggleLikeResult, error)
	statusFn func(ctx context.Context, userID string, cheatID int64) (*ports.LikeStatus, error)
}

func (s *stubLikeService) ToggleLike(ctx context.Context, userID string, cheatID int64) (*ports.ToggleLikeResult, error) {
	return s.toggleFn(ctx, userID, cheatID)
}

func (s *stubLikeService) LikeStatus(ctx context.Context, userID string, cheatID int64) (*ports.LikeStatus, error) {
	return s.statusFn(ctx, userID, cheatID)
}

type stubCheatService struct {
	listFn func(ctx context.Context, in ports.ListCheatsInput) (*ports.ListCheatsResult, error)
	getFn  func(ctx context.Context, id int64) (*domain.Cheat, error)
}

func (s *stubCheatService) List(ctx context.Context, in ports.ListCheatsInput) (*ports.ListCheatsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubCheatService) Get(ctx context.Context, id int64) (*domain.Cheat, error) {
	return s.getFn(ctx, id)
}

type stubFavoritesService struct {
	summary *ports.FavoritesSummary
	err     error
	gotUser string
}

func (s *stubFavoritesService) ListLiked(ctx context.Context, userID string) ([]domain.Cheat, error) {
	return s.summary.Cheats, s.err
}

func (s *stubFavoritesService) Count(ctx context.Context, userID string) (int64, error) {
	return s.summary.Count, s.err
}

func (s *stubFavoritesService) Summary(ctx context.Context, userID string) (*ports.FavoritesSummary, error) {
	s.gotUser = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

type stubBadgeService struct {
	owned   []domain.Badge
	views   []ports.BadgeView
	gotUser string
}

func (s *stubBadgeService) CheckAndAward(ctx context.Context, userID string, trigger domain.TriggerType, value *int64) (*domain.Badge, error) {
	return nil, nil
}

func (s *stubBadgeService) UserBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	s.gotUser = userID
	return s.owned, nil
}

func (s *stubBadgeService) Catalog(ctx context.Context, userID string) ([]ports.BadgeView, error) {
	s.gotUser = userID
	return s.views, nil
}

type stubPremiumService struct {
	premium  bool
	setUser  string
	setValue bool
	setUntil *time.Time
}

func (s *stubPremiumService) IsPremium(ctx context.Context, userID string) (bool, error) {
	return s.premium, nil
}

func (s *stubPremiumService) SetPremium(ctx context.Context, userID string, premium bool, until *time.Time) (*domain.Subscription, error) {
	s.setUser, s.setValue, s.setUntil = userID, premium, until
	return &domain.Subscription{UserID: userID, IsPremium: premium, PremiumUntil: until}, nil
}

type stubAuditor struct {
	report *ports.QuotaReport
	err    error
}

func (s *stubAuditor) Audit(ctx context.Context) (*ports.QuotaReport, error) {
	return s.report, s.err
}

// stubStream is a FavoritesStream driven by the test through push.
type stubStream struct {
	mu       sync.Mutex
	updates  chan service.FavoritesSnapshot
	started  chan struct{}
	stopped  chan struct{}
	startErr error
	once     sync.Once
}

func newStubStream() *stubStream {
	return &stubStream{
		updates: make(chan service.FavoritesSnapshot, 4),
		started: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *stubStream) Start(ctx context.Context) error {
	close(s.started)
	return s.startErr
}

func (s *stubStream) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		close(s.updates)
		s.mu.Unlock()
		close(s.stopped)
	})
}

func (s *stubStream) Updates() <-chan service.FavoritesSnapshot { return s.updates }

func (s *stubStream) push(snap service.FavoritesSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopped:
	default:
		s.updates <- snap
	}
}
