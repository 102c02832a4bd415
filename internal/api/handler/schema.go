package handler

import (
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/core/service"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Limit int64  `json:"limit,omitempty"`
}

// --- Request types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type listCheatsQuery struct {
	Game     string `query:"game"`
	Platform string `query:"platform"`
	Category string `query:"category"`
}

type setSubscriptionRequest struct {
	IsPremium    *bool      `json:"is_premium"    validate:"required"`
	PremiumUntil *time.Time `json:"premium_until"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract does not follow
// internal service changes.

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type cheatResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Game     string `json:"game"`
	Platform string `json:"platform"`
}

type listCheatsResponse struct {
	Data       []cheatResponse `json:"data"`
	Categories []string        `json:"categories"`
}

type badgeResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon,omitempty"`
	TriggerType  string     `json:"trigger_type"`
	TriggerValue *int64     `json:"trigger_value,omitempty"`
	Unlocked     bool       `json:"unlocked"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
}

type likeStatusResponse struct {
	CheatID    int64 `json:"cheat_id"`
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

type toggleLikeResponse struct {
	CheatID    int64           `json:"cheat_id"`
	IsLiked    bool            `json:"is_liked"`
	LikesCount int64           `json:"likes_count"`
	UserLikes  int64           `json:"user_likes"`
	Limit      int64           `json:"limit"`
	NewBadges  []badgeResponse `json:"new_badges"`
}

type favoritesResponse struct {
	Data       []cheatResponse `json:"data"`
	Count      int64           `json:"count"`
	Limit      int64           `json:"limit"`
	IsPremium  bool            `json:"is_premium"`
	Categories []string        `json:"categories"`
}

type streamMessage struct {
	Type        string          `json:"type"`
	Data        []cheatResponse `json:"data"`
	Count       int64           `json:"count"`
	Version     uint64          `json:"version"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// likeStatusMessage is pushed on the like counter stream.
type likeStatusMessage struct {
	Type        string    `json:"type"`
	CheatID     int64     `json:"cheat_id"`
	IsLiked     bool      `json:"is_liked"`
	LikesCount  int64     `json:"likes_count"`
	Version     uint64    `json:"version"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type premiumResponse struct {
	UserID        string `json:"user_id"`
	IsPremium     bool   `json:"is_premium"`
	FreeLikeLimit int64  `json:"free_like_limit"`
}

type subscriptionResponse struct {
	UserID       string     `json:"user_id"`
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type quotaViolationResponse struct {
	UserID string `json:"user_id"`
	Likes  int64  `json:"likes"`
}

type quotaReportResponse struct {
	Limit      int64                    `json:"limit"`
	Violations []quotaViolationResponse `json:"violations"`
	CheckedAt  time.Time                `json:"checked_at"`
}

// --- Mappers ---

func toCheatResponse(c domain.Cheat) cheatResponse {
	return cheatResponse{
		ID:       c.ID,
		Name:     c.Name,
		Code:     c.Code,
		Category: c.Category,
		Game:     c.Game,
		Platform: c.Platform,
	}
}

func toCheatResponses(cheats []domain.Cheat) []cheatResponse {
	out := make([]cheatResponse, 0, len(cheats))
	for _, c := range cheats {
		out = append(out, toCheatResponse(c))
	}
	return out
}

func toBadgeResponse(b domain.Badge) badgeResponse {
	return badgeResponse{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		Icon:         b.Icon,
		TriggerType:  string(b.Trigger),
		TriggerValue: b.Threshold,
	}
}

func toUnlockedBadges(badges []domain.Badge) []badgeResponse {
	out := make([]badgeResponse, 0, len(badges))
	for _, b := range badges {
		r := toBadgeResponse(b)
		r.Unlocked = true
		out = append(out, r)
	}
	return out
}

func toBadgeViews(views []ports.BadgeView) []badgeResponse {
	out := make([]badgeResponse, 0, len(views))
	for _, v := range views {
		r := toBadgeResponse(v.Badge)
		r.Unlocked = v.Unlocked
		r.UnlockedAt = v.UnlockedAt
		out = append(out, r)
	}
	return out
}

func toStreamMessage(s service.FavoritesSnapshot) streamMessage {
	return streamMessage{
		Type:        "snapshot",
		Data:        toCheatResponses(s.Cheats),
		Count:       s.Count,
		Version:     s.Version,
		RefreshedAt: s.RefreshedAt,
	}
}

func toLikeStatusMessage(s service.LikeStatusSnapshot) likeStatusMessage {
	return likeStatusMessage{
		Type:        "like_status",
		CheatID:     s.CheatID,
		IsLiked:     s.IsLiked,
		LikesCount:  s.LikesCount,
		Version:     s.Version,
		RefreshedAt: s.RefreshedAt,
	}
}

func toQuotaReportResponse(r *ports.QuotaReport) quotaReportResponse {
	out := quotaReportResponse{
		Limit:      r.Limit,
		Violations: make([]quotaViolationResponse, 0, len(r.Violations)),
		CheckedAt:  r.CheckedAt,
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, quotaViolationResponse{UserID: v.UserID, Likes: v.Count})
	}
	return out
}
