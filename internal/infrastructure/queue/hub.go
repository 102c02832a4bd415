package queue

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/api/metrics"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type delivery struct {
	sub *subscription
	evt domain.ChangeEvent
}

// Hub fans change events out to subscribers. Deliveries are routed to a
// fixed set of workers by subscription id, so each subscriber sees events in
// publish order and a slow handler only delays subscribers on its shard.
//
// Hub implements ports.ChangeFeed.
type Hub struct {
	workers []chan delivery
	log     zerolog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[domain.Relation]map[uint64]*subscription

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewHub creates a Hub with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHub(numWorkers int, log zerolog.Logger) *Hub {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	h := &Hub{
		workers: make([]chan delivery, numWorkers),
		log:     log,
		subs:    make(map[domain.Relation]map[uint64]*subscription),
		done:    make(chan struct{}),
	}
	for i := range h.workers {
		h.workers[i] = make(chan delivery, channelBuffer)
	}
	return h
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or Close is called.
func (h *Hub) Start(ctx context.Context) {
	for i, ch := range h.workers {
		h.wg.Add(1)
		go h.runWorker(ctx, i, ch)
	}
}

// Close stops the workers and waits for in-flight handlers to return.
// Pending deliveries are dropped.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
	h.wg.Wait()
}

// Subscribe registers handler for changes to relation matching filter. The
// subscription is released when ctx is done or Unsubscribe is called.
func (h *Hub) Subscribe(ctx context.Context, relation domain.Relation, filter *domain.ChangeFilter, handler ports.ChangeHandler) (ports.ChangeSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.nextID++
	sub := &subscription{
		id:       h.nextID,
		hub:      h,
		relation: relation,
		filter:   filter,
		handler:  handler,
	}
	if h.subs[relation] == nil {
		h.subs[relation] = make(map[uint64]*subscription)
	}
	h.subs[relation][sub.id] = sub
	h.mu.Unlock()

	metrics.ChangeSubscriptions.Inc()
	stop := context.AfterFunc(ctx, sub.Unsubscribe)
	sub.mu.Lock()
	sub.stop = stop
	sub.mu.Unlock()
	return sub, nil
}

// Publish routes evt to every matching subscriber. It blocks when a target
// worker's buffer is full and gives up once the hub is closed.
func (h *Hub) Publish(evt domain.ChangeEvent) {
	metrics.ChangeEventsTotal.WithLabelValues(string(evt.Relation), string(evt.Op)).Inc()

	h.mu.RLock()
	targets := make([]*subscription, 0, len(h.subs[evt.Relation]))
	for _, sub := range h.subs[evt.Relation] {
		if sub.filter.Matches(evt) {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		idx := h.shardIndex(sub.id)
		select {
		case h.workers[idx] <- delivery{sub: sub, evt: evt}:
			metrics.ChangeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(h.workers[idx])))
		case <-h.done:
			return
		}
	}
}

// Subscribers returns the number of live subscriptions on relation.
func (h *Hub) Subscribers(relation domain.Relation) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[relation])
}

// shardIndex maps a subscription deterministically to a worker index.
func (h *Hub) shardIndex(id uint64) int {
	return int(id % uint64(len(h.workers)))
}

func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.subs[sub.relation]; m != nil {
		delete(m, sub.id)
		if len(m) == 0 {
			delete(h.subs, sub.relation)
		}
	}
}

func (h *Hub) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	defer h.wg.Done()
	depth := metrics.ChangeQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case d := <-ch:
			depth.Set(float64(len(ch)))
			h.deliver(id, d)
		}
	}
}

func (h *Hub) deliver(worker int, d delivery) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().
				Interface("panic", r).
				Str("relation", string(d.evt.Relation)).
				Int("worker_id", worker).
				Msg("change handler panicked")
		}
	}()
	d.sub.invoke(d.evt)
}

// subscription is the ports.ChangeSubscription handed out by Hub.
type subscription struct {
	id       uint64
	hub      *Hub
	relation domain.Relation
	filter   *domain.ChangeFilter
	handler  ports.ChangeHandler
	stop     func() bool

	// mu is held while the handler runs so Unsubscribe waits for an
	// in-flight delivery.
	mu     sync.Mutex
	closed bool
}

func (s *subscription) invoke(evt domain.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handler(evt)
}

// Unsubscribe must not be called from within the subscription's own handler.
func (s *subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.hub.remove(s)
	metrics.ChangeSubscriptions.Dec()
}
