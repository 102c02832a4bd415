package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultFreeLikeLimit is the number of likes a non-premium user may hold.
const DefaultFreeLikeLimit = 10

// Like marks a cheat as a favorite of a user. At most one Like exists per
// (user, cheat) pair.
type Like struct {
	UserID    string    `json:"user_id"`
	CheatID   int64     `json:"cheat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Key is the natural identifier of the like, "<user>:<cheat>".
func (l Like) Key() string {
	return LikeKey(l.UserID, l.CheatID)
}

// LikeKey builds the natural identifier of a (user, cheat) pair.
func LikeKey(userID string, cheatID int64) string {
	return pairKey(userID, cheatID)
}

// ParseLikeKey is the inverse of LikeKey.
func ParseLikeKey(key string) (userID string, cheatID int64, err error) {
	return parsePairKey(key)
}

func pairKey(userID string, id int64) string {
	return userID + ":" + strconv.FormatInt(id, 10)
}

// parsePairKey splits "<user>:<id>". User ids may contain ':' so the id is
// taken after the last separator.
func parsePairKey(key string) (string, int64, error) {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 || i == len(key)-1 {
		return "", 0, fmt.Errorf("malformed key %q", key)
	}
	id, err := strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed key %q: %w", key, err)
	}
	return key[:i], id, nil
}

// UserLikeCount is the quota figure for one user.
type UserLikeCount struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}
