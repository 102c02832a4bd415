package domain

import "time"

// Subscription is the premium entitlement of a user.
type Subscription struct {
	UserID       string     `json:"user_id"`
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Active reports whether the entitlement lifts the free-tier limit at now.
func (s *Subscription) Active(now time.Time) bool {
	if s == nil || !s.IsPremium {
		return false
	}
	return s.PremiumUntil == nil || s.PremiumUntil.After(now)
}
