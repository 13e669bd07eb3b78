package core

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	"github.com/smallnest/chanx"
)

// Events is the subscription surface accumulators and discovery depend on.
// Every callback is invoked on the hub's single event loop.
type Events interface {
	TrackState(entityIDs []string, fn func(api.StateChanged)) func()
	TrackRegistry(fn func(api.RegistryUpdated)) func()
	Listen(event string, fn func(any)) func()
	TrackInterval(d time.Duration, fn func(time.Time)) func()
}

var _ Events = (*Hub)(nil)

// Hub serialises host bus events and timer ticks onto a single event loop
type Hub struct {
	log   *util.Logger
	clock clock.Clock
	bus   EventBus.Bus
	inbox *chanx.UnboundedChan[func()]

	mu        sync.Mutex
	seq       int
	topics    map[string]bool
	states    map[string]map[int]func(api.StateChanged)
	registry  map[int]func(api.RegistryUpdated)
	listeners map[string]map[int]func(any)
}

// NewHub creates a hub consuming events from bus
func NewHub(bus EventBus.Bus, clock clock.Clock) *Hub {
	h := &Hub{
		log:       util.NewLogger("hub"),
		clock:     clock,
		bus:       bus,
		inbox:     chanx.NewUnboundedChan[func()](context.Background(), 16),
		topics:    make(map[string]bool),
		states:    make(map[string]map[int]func(api.StateChanged)),
		registry:  make(map[int]func(api.RegistryUpdated)),
		listeners: make(map[string]map[int]func(any)),
	}

	h.subscribe(api.TopicStateChanged)
	h.subscribe(api.TopicRegistryUpdated)

	return h
}

// subscribe attaches one enqueueing handler per bus topic.
// Bus handlers run while the bus holds its lock and must not call back into the bus.
func (h *Hub) subscribe(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] {
		return
	}
	h.topics[topic] = true

	if err := h.bus.Subscribe(topic, func(ev any) {
		h.Do(func() { h.deliver(topic, ev) })
	}); err != nil {
		h.log.ERROR.Printf("subscribe %s: %v", topic, err)
	}
}

// Run drains the event loop until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-h.inbox.Out:
			fn()
		}
	}
}

// Do enqueues fn for execution on the event loop
func (h *Hub) Do(fn func()) {
	h.inbox.In <- fn
}

// Call executes fn on the event loop and waits for its result
func (h *Hub) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	h.Do(func() { done <- fn() })

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// deliver dispatches a bus event to the registered handlers
func (h *Hub) deliver(topic string, ev any) {
	switch topic {
	case api.TopicStateChanged:
		sc, err := decodeEvent[api.StateChanged](ev)
		if err != nil {
			h.log.WARN.Printf("%s: %v", topic, err)
			return
		}
		for _, fn := range h.stateHandlers(sc.EntityID) {
			fn(sc)
		}

	case api.TopicRegistryUpdated:
		ru, err := decodeEvent[api.RegistryUpdated](ev)
		if err != nil {
			h.log.WARN.Printf("%s: %v", topic, err)
			return
		}
		for _, fn := range h.registryHandlers() {
			fn(ru)
		}

	default:
		for _, fn := range h.listenerHandlers(topic) {
			fn(ev)
		}
	}
}

func (h *Hub) stateHandlers(entityID string) []func(api.StateChanged) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res := make([]func(api.StateChanged), 0, len(h.states[entityID]))
	for _, id := range sortedKeys(h.states[entityID]) {
		res = append(res, h.states[entityID][id])
	}
	return res
}

func (h *Hub) registryHandlers() []func(api.RegistryUpdated) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res := make([]func(api.RegistryUpdated), 0, len(h.registry))
	for _, id := range sortedKeys(h.registry) {
		res = append(res, h.registry[id])
	}
	return res
}

func (h *Hub) listenerHandlers(event string) []func(any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res := make([]func(any), 0, len(h.listeners[event]))
	for _, id := range sortedKeys(h.listeners[event]) {
		res = append(res, h.listeners[event][id])
	}
	return res
}

// TrackState calls fn for every state change of the given entities
func (h *Hub) TrackState(entityIDs []string, fn func(api.StateChanged)) func() {
	h.mu.Lock()
	h.seq++
	id := h.seq
	for _, entityID := range entityIDs {
		if h.states[entityID] == nil {
			h.states[entityID] = make(map[int]func(api.StateChanged))
		}
		h.states[entityID][id] = fn
	}
	h.mu.Unlock()

	return h.cancel(func() {
		for _, entityID := range entityIDs {
			delete(h.states[entityID], id)
			if len(h.states[entityID]) == 0 {
				delete(h.states, entityID)
			}
		}
	})
}

// TrackRegistry calls fn for every entity registry update
func (h *Hub) TrackRegistry(fn func(api.RegistryUpdated)) func() {
	h.mu.Lock()
	h.seq++
	id := h.seq
	h.registry[id] = fn
	h.mu.Unlock()

	return h.cancel(func() {
		delete(h.registry, id)
	})
}

// Listen calls fn for every occurrence of the named event
func (h *Hub) Listen(event string, fn func(any)) func() {
	h.subscribe(event)

	h.mu.Lock()
	h.seq++
	id := h.seq
	if h.listeners[event] == nil {
		h.listeners[event] = make(map[int]func(any))
	}
	h.listeners[event][id] = fn
	h.mu.Unlock()

	return h.cancel(func() {
		delete(h.listeners[event], id)
	})
}

// TrackInterval calls fn on the event loop every d
func (h *Hub) TrackInterval(d time.Duration, fn func(time.Time)) func() {
	var (
		mu      sync.Mutex
		stopped bool
	)

	ticker := h.clock.Ticker(d)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case ts := <-ticker.C:
				h.Do(func() {
					mu.Lock()
					s := stopped
					mu.Unlock()
					if !s {
						fn(ts)
					}
				})
			}
		}
	}()

	return h.cancel(func() {
		mu.Lock()
		stopped = true
		mu.Unlock()

		ticker.Stop()
		close(done)
	})
}

// cancel wraps an unsubscribe func so that repeated calls are no-ops
func (h *Hub) cancel(fn func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			fn()
		})
	}
}
