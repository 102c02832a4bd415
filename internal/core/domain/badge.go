package domain

import (
	"sort"
	"time"
)

// TriggerType is the category of activity that can unlock a badge.
type TriggerType string

const (
	TriggerFirstLike TriggerType = "first_like"
	TriggerLikeCount TriggerType = "like_count"
	TriggerLikeLimit TriggerType = "like_limit"
)

// Valid reports whether t is a known trigger.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerFirstLike, TriggerLikeCount, TriggerLikeLimit:
		return true
	}
	return false
}

// Badge is static reference data describing an achievement.
// A nil Threshold means the badge qualifies as soon as its trigger fires.
type Badge struct {
	ID          int64       `json:"id"                  validate:"required,gt=0"`
	Name        string      `json:"name"                validate:"required"`
	Description string      `json:"description"`
	Icon        string      `json:"icon,omitempty"`
	Trigger     TriggerType `json:"trigger_type"        validate:"required"`
	Threshold   *int64      `json:"trigger_value,omitempty"`
}

// ThresholdValue returns the threshold, treating a missing one as 0.
func (b Badge) ThresholdValue() int64 {
	if b.Threshold == nil {
		return 0
	}
	return *b.Threshold
}

// Qualifies reports whether value satisfies the badge threshold. Badges
// without a threshold always qualify; thresholded badges never qualify
// without a value.
func (b Badge) Qualifies(value *int64) bool {
	if b.Threshold == nil {
		return true
	}
	if value == nil {
		return false
	}
	return *value >= *b.Threshold
}

// SortByThreshold orders badges ascending by threshold, badges without a
// threshold first. The sort is stable so storage order breaks ties.
func SortByThreshold(badges []Badge) {
	sort.SliceStable(badges, func(i, j int) bool {
		return badges[i].ThresholdValue() < badges[j].ThresholdValue()
	})
}

// UserBadge records that a user unlocked a badge. Rows are never removed.
type UserBadge struct {
	UserID     string    `json:"user_id"`
	BadgeID    int64     `json:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UserBadgeKey is the natural identifier of an unlock, "<user>:<badge>".
func UserBadgeKey(userID string, badgeID int64) string {
	return pairKey(userID, badgeID)
}

// ParseUserBadgeKey is the inverse of UserBadgeKey.
func ParseUserBadgeKey(key string) (userID string, badgeID int64, err error) {
	return parsePairKey(key)
}

func threshold(v int64) *int64 { return &v }

// DefaultBadges is the seed catalog installed by every store. The like_limit
// badge unlocks when a free user reaches freeLimit.
func DefaultBadges(freeLimit int64) []Badge {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeLikeLimit
	}
	return []Badge{
		{ID: 1, Name: "Premier coup de cœur", Description: "Ajoutez votre premier code en favori.", Icon: "heart-outline", Trigger: TriggerFirstLike},
		{ID: 2, Name: "Collectionneur", Description: "Gardez 5 codes en favoris.", Icon: "fire", Trigger: TriggerLikeCount, Threshold: threshold(5)},
		{ID: 3, Name: "Accro aux codes", Description: "Gardez 10 codes en favoris.", Icon: "fire", Trigger: TriggerLikeCount, Threshold: threshold(10)},
		{ID: 4, Name: "Encyclopédie", Description: "Gardez 25 codes en favoris.", Icon: "fire", Trigger: TriggerLikeCount, Threshold: threshold(25)},
		{ID: 5, Name: "Au maximum", Description: "Atteignez la limite de favoris de la version gratuite.", Icon: "lock-alert", Trigger: TriggerLikeLimit, Threshold: threshold(freeLimit)},
	}
}
