package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Registry is an in-memory entity/device registry and state cache publishing its changes on the bus
type Registry struct {
	log   *util.Logger
	bus   EventBus.Bus
	clock clock.Clock

	mu      sync.RWMutex
	entries map[string]api.Entry
	devices map[string]api.Device
	states  map[string]api.State
}

var (
	_ api.Registry = (*Registry)(nil)
	_ api.States   = (*Registry)(nil)
)

// New creates an empty registry
func New(bus EventBus.Bus, clock clock.Clock) *Registry {
	return &Registry{
		log:     util.NewLogger("registry"),
		bus:     bus,
		clock:   clock,
		entries: make(map[string]api.Entry),
		devices: make(map[string]api.Device),
		states:  make(map[string]api.State),
	}
}

// Load seeds the registry from a snapshot without publishing events
func (r *Registry) Load(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range snap.Devices {
		r.devices[d.ID] = d
	}

	for _, e := range snap.Entities {
		r.entries[e.EntityID] = e
	}

	now := r.clock.Now()
	for id, v := range snap.States {
		r.states[id] = api.State{EntityID: id, Value: v, LastUpdated: now}
	}

	r.log.DEBUG.Printf("loaded %d devices, %d entities, %d states", len(snap.Devices), len(snap.Entities), len(snap.States))
}

// Entries returns all entries sorted by entity id
func (r *Registry) Entries() []api.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := lo.Values(r.entries)
	slices.SortFunc(res, func(a, b api.Entry) int {
		return strings.Compare(a.EntityID, b.EntityID)
	})

	return res
}

// Entry returns the entry with the given entity id
func (r *Registry) Entry(entityID string) (api.Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entityID]
	return e, ok
}

// Devices returns all devices sorted by id
func (r *Registry) Devices() []api.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := lo.Values(r.devices)
	slices.SortFunc(res, func(a, b api.Device) int {
		return strings.Compare(a.ID, b.ID)
	})

	return res
}

// Device returns the device with the given id
func (r *Registry) Device(id string) (api.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	return d, ok
}

// SetDevice links an entity to a device. Unknown entities are registered as own entities.
func (r *Registry) SetDevice(entityID, deviceID string) error {
	if _, ok := r.Device(deviceID); !ok {
		return fmt.Errorf("device %s: %w", deviceID, api.ErrNotFound)
	}

	e, ok := r.Entry(entityID)
	if !ok {
		return r.Create(api.Entry{
			EntityID: entityID,
			UniqueID: entityID,
			Platform: api.Namespace,
			DeviceID: deviceID,
		})
	}

	e.DeviceID = deviceID
	return r.Update(e)
}

// Create adds an entry and publishes a create event
func (r *Registry) Create(e api.Entry) error {
	r.mu.Lock()
	if _, ok := r.entries[e.EntityID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("entity %s already exists", e.EntityID)
	}
	r.entries[e.EntityID] = e
	r.mu.Unlock()

	r.publish(api.RegistryUpdated{Action: api.ActionCreate, EntityID: e.EntityID})

	return nil
}

// Update replaces an entry and publishes the previous values of changed fields
func (r *Registry) Update(e api.Entry) error {
	r.mu.Lock()
	old, ok := r.entries[e.EntityID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("entity %s: %w", e.EntityID, api.ErrNotFound)
	}
	r.entries[e.EntityID] = e
	r.mu.Unlock()

	changes, err := diff(old, e)
	if err != nil {
		return err
	}

	if len(changes) > 0 {
		r.publish(api.RegistryUpdated{Action: api.ActionUpdate, EntityID: e.EntityID, Changes: changes})
	}

	return nil
}

// Remove deletes an entry and its state and publishes a remove event
func (r *Registry) Remove(entityID string) error {
	r.mu.Lock()
	if _, ok := r.entries[entityID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("entity %s: %w", entityID, api.ErrNotFound)
	}
	delete(r.entries, entityID)
	delete(r.states, entityID)
	r.mu.Unlock()

	r.publish(api.RegistryUpdated{Action: api.ActionRemove, EntityID: entityID})

	return nil
}

// State returns the last known state of an entity
func (r *Registry) State(entityID string) (api.State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.states[entityID]
	return s, ok
}

// SetState stores a new state and publishes a state change
func (r *Registry) SetState(entityID, value string) {
	now := r.clock.Now()
	s := api.State{EntityID: entityID, Value: value, LastUpdated: now}

	r.mu.Lock()
	r.states[entityID] = s
	r.mu.Unlock()

	r.log.TRACE.Printf("%s: %s", entityID, value)
	r.bus.Publish(api.TopicStateChanged, api.StateChanged{EntityID: entityID, State: &s, Time: now})
}

func (r *Registry) publish(ev api.RegistryUpdated) {
	r.log.DEBUG.Printf("%s %s", ev.Action, ev.EntityID)
	r.bus.Publish(api.TopicRegistryUpdated, ev)
}

// diff returns the previous values of all fields that differ
func diff(old, updated api.Entry) (map[string]any, error) {
	var o, n map[string]any
	if err := mapstructure.Decode(old, &o); err != nil {
		return nil, err
	}
	if err := mapstructure.Decode(updated, &n); err != nil {
		return nil, err
	}

	res := make(map[string]any)
	for k, v := range o {
		if n[k] != v {
			res[k] = v
		}
	}

	return res, nil
}
