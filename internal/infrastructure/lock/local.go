// Package lock provides the in-process ports.UserLocker used when Redis is
// disabled. It serialises users within one replica only.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

const defaultWait = 3 * time.Second

type entry struct {
	sem  chan struct{}
	refs int
}

// Local is a keyed mutex. Entries are dropped once no caller holds or waits
// for them.
type Local struct {
	mu   sync.Mutex
	keys map[string]*entry
	wait time.Duration
}

// NewLocal returns a Local that gives up after wait. A non-positive wait
// falls back to three seconds.
func NewLocal(wait time.Duration) *Local {
	if wait <= 0 {
		wait = defaultWait
	}
	return &Local{keys: make(map[string]*entry), wait: wait}
}

// Lock acquires userID's lock. It returns domain.ErrBusy when the wait budget
// runs out and ctx.Err() when ctx is done first.
func (l *Local) Lock(ctx context.Context, userID string) (func(), error) {
	e := l.acquire(userID)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
	case <-timer.C:
		l.release(userID)
		return nil, domain.ErrBusy
	case <-ctx.Done():
		l.release(userID)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(userID)
		})
	}, nil
}

func (l *Local) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.keys[key] = e
	}
	e.refs++
	return e
}

func (l *Local) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.keys[key]
	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
}

func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
