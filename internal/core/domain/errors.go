package domain

import (
	"errors"
	"fmt"
)

// Expected outcomes. The transport layer turns these into prompts (sign-up,
// upsell) and does not log them as failures.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrQuotaExceeded   = errors.New("free-tier like limit reached")
)

var (
	ErrCheatNotFound        = errors.New("cheat not found")
	ErrAlreadyLiked         = errors.New("cheat already liked")
	ErrBadgeAlreadyUnlocked = errors.New("badge already unlocked")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrBusy                 = errors.New("another like operation is in progress")
	ErrInvalidTrigger       = errors.New("unknown badge trigger")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("access forbidden")
)

// ErrRemoteFailure is matched by every RemoteError via errors.Is.
var ErrRemoteFailure = errors.New("remote data gateway failure")

// RemoteError wraps a network or storage error returned by the data gateway.
// The cause is kept for logging; callers only see a generic failure.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteFailure }

// Remote wraps err as a RemoteError unless it is nil or already a domain
// outcome that callers are expected to branch on.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
