package ports

import (
	"context"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// ChangeHandler is invoked for every change event matching a subscription.
type ChangeHandler func(evt domain.ChangeEvent)

// ChangeSubscription is the handle returned by ChangeFeed.Subscribe. Its
// owner must call Unsubscribe on every exit path; after Unsubscribe returns
// the handler is never invoked again. Unsubscribe is idempotent.
type ChangeSubscription interface {
	Unsubscribe()
}

// ChangeFeed delivers insert/update/delete notifications for a relation,
// optionally narrowed by an equality predicate.
type ChangeFeed interface {
	Subscribe(ctx context.Context, relation domain.Relation, filter *domain.ChangeFilter, handler ChangeHandler) (ChangeSubscription, error)
}

// UserLocker serialises mutations issued on behalf of one user.
type UserLocker interface {
	// Lock blocks until the user's lock is held or ctx is done. It returns
	// domain.ErrBusy when the lock could not be acquired in time.
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// LeaseLocker is a UserLocker whose locks lapse on their own. Work done under
// the lock must finish within HoldLimit or another caller may take it over.
type LeaseLocker interface {
	UserLocker
	HoldLimit() time.Duration
}
