package domain

import (
	"strconv"
	"time"
)

// Relation names a table/collection exposed by the data gateway.
type Relation string

const (
	RelationCheats        Relation = "cheats"
	RelationLikes         Relation = "likes"
	RelationBadges        Relation = "badges"
	RelationUserBadges    Relation = "user_badges"
	RelationSubscriptions Relation = "user_subscriptions"
	RelationUsers         Relation = "users"
)

// ChangeOp is the kind of mutation carried by a ChangeEvent.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent is a notification that a row of Relation changed.
// Only the columns relevant to the relation are populated.
type ChangeEvent struct {
	Relation Relation  `json:"relation"`
	Op       ChangeOp  `json:"op"`
	UserID   string    `json:"user_id,omitempty"`
	CheatID  int64     `json:"cheat_id,omitempty"`
	BadgeID  int64     `json:"badge_id,omitempty"`
	At       time.Time `json:"at"`
}

// ChangeFilter is an equality predicate on one column of a change event.
type ChangeFilter struct {
	Column string
	Value  string
}

// UserFilter scopes a subscription to the rows of one user.
func UserFilter(userID string) *ChangeFilter {
	return &ChangeFilter{Column: "user_id", Value: userID}
}

// CheatFilter scopes a subscription to the rows of one cheat.
func CheatFilter(cheatID int64) *ChangeFilter {
	return &ChangeFilter{Column: "cheat_id", Value: strconv.FormatInt(cheatID, 10)}
}

// Matches reports whether evt satisfies the predicate. A nil filter matches
// everything; unknown columns match nothing.
func (f *ChangeFilter) Matches(evt ChangeEvent) bool {
	if f == nil {
		return true
	}
	switch f.Column {
	case "user_id":
		return evt.UserID == f.Value
	case "cheat_id":
		return strconv.FormatInt(evt.CheatID, 10) == f.Value
	case "badge_id":
		return strconv.FormatInt(evt.BadgeID, 10) == f.Value
	}
	return false
}
