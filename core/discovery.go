package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	"github.com/samber/lo"
)

// DiscoveryConfig configures source discovery
type DiscoveryConfig struct {
	Platform string               `mapstructure:"platform" validate:"required"`
	Strategy api.SamplingStrategy `mapstructure:"strategy"`
	Interval time.Duration        `mapstructure:"interval" validate:"gte=0"`
}

// Discovery binds qualifying power sources to accumulators and reset controllers.
// All methods must be called from the hub's event loop.
type Discovery struct {
	log      *util.Logger
	clock    clock.Clock
	registry api.Registry
	states   api.States
	store    api.Store
	events   Events
	uiChan   chan<- util.Param
	config   DiscoveryConfig

	claimed      map[string]string           // source entity id -> accumulator entity id
	accumulators map[string]*Accumulator     // by entity id, closed ones stay until released
	controllers  map[string]*ResetController // by accumulator entity id
	used         map[string]bool             // allocated entity ids
	unsubscribe  []func()
}

// NewDiscovery creates source discovery
func NewDiscovery(registry api.Registry, states api.States, store api.Store, events Events, clock clock.Clock, config DiscoveryConfig) *Discovery {
	if config.Platform == "" {
		config.Platform = api.Upstream
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	return &Discovery{
		log:          util.NewLogger("discovery"),
		clock:        clock,
		registry:     registry,
		states:       states,
		store:        store,
		events:       events,
		config:       config,
		claimed:      make(map[string]string),
		accumulators: make(map[string]*Accumulator),
		controllers:  make(map[string]*ResetController),
		used:         make(map[string]bool),
	}
}

// Sources returns the qualifying power sources of the given platform sorted by entity id
func Sources(entries []api.Entry, platform string) []api.Entry {
	res := lo.Filter(entries, func(e api.Entry, _ int) bool {
		return IsPowerSource(e, platform)
	})

	slices.SortFunc(res, func(a, b api.Entry) int {
		return strings.Compare(a.EntityID, b.EntityID)
	})

	return res
}

// Start scans the registry and subscribes to registry updates and reset requests
func (d *Discovery) Start() {
	if n := d.Scan(); n == 0 && len(d.accumulators) == 0 {
		d.log.WARN.Printf("no %s power sources found", d.config.Platform)
	} else if n > 0 {
		d.log.INFO.Printf("added %d energy accumulators", n)
	}

	if d.unsubscribe == nil {
		d.unsubscribe = []func(){
			d.events.TrackRegistry(d.onRegistry),
			d.events.Listen(api.EventResetEnergy, d.onReset),
		}
	}
}

// Scan binds all unclaimed qualifying sources and returns the number of accumulators created
func (d *Discovery) Scan() int {
	sources := lo.Filter(Sources(d.registry.Entries(), d.config.Platform), func(e api.Entry, _ int) bool {
		_, ok := d.claimed[e.EntityID]
		return !ok
	})

	var created int

	if d.config.Strategy == api.StrategyPoll {
		devices := lo.GroupBy(sources, func(e api.Entry) string { return e.DeviceID })

		keys := lo.Keys(devices)
		slices.Sort(keys)

		for _, device := range keys {
			if d.aggregate(device) != nil {
				continue
			}
			d.createAggregate(device, devices[device])
			created++
		}

		return created
	}

	for _, e := range sources {
		d.log.DEBUG.Printf("found power source: %s (device: %s)", e.EntityID, e.DeviceID)
		d.createSingle(e)
		created++
	}

	return created
}

// aggregate returns the aggregate accumulator of a device
func (d *Discovery) aggregate(device string) *Accumulator {
	for _, acc := range d.accumulators {
		if acc.Strategy == api.StrategyPoll && acc.DeviceID == device {
			return acc
		}
	}
	return nil
}

func (d *Discovery) createSingle(e api.Entry) {
	acc := NewAccumulator(util.NewLogger("energy"), d.clock, d.states, api.StrategyEvent, e.EntityID)
	acc.UniqueID = SingleUniqueID(e)
	acc.Name = EnergyName(SourceName(e))
	acc.DeviceID = e.DeviceID
	acc.EntityID = d.entityID("sensor", acc.Name)

	d.log.INFO.Printf("creating energy accumulator %s for %s", acc.EntityID, e.EntityID)

	d.claimed[e.EntityID] = acc.EntityID
	d.add(acc, d.restore(acc.UniqueID))
}

func (d *Discovery) createAggregate(device string, sources []api.Entry) {
	ids := lo.Map(sources, func(e api.Entry, _ int) string { return e.EntityID })

	dev, _ := d.registry.Device(device)

	acc := NewAccumulator(util.NewLogger("energy"), d.clock, d.states, api.StrategyPoll, ids...)
	acc.UniqueID = AggregateUniqueID(device)
	acc.Name = AggregateName(DeviceName(dev, device))
	acc.DeviceID = device
	acc.Interval = d.config.Interval
	acc.EntityID = d.entityID("sensor", acc.Name)

	d.log.INFO.Printf("creating aggregate accumulator %s for %d sources", acc.EntityID, len(ids))

	for _, id := range ids {
		d.claimed[id] = acc.EntityID
	}
	d.add(acc, d.restore(acc.UniqueID))
}

// add initializes and starts the accumulator and creates its reset controller
func (d *Discovery) add(acc *Accumulator, restored any) {
	acc.Prepare(d.uiChan)
	acc.Initialize(restored)
	d.link(acc.EntityID, acc.DeviceID)
	acc.Start(d.events)

	d.accumulators[acc.EntityID] = acc

	if ctrl, ok := d.controllers[acc.EntityID]; ok {
		ctrl.target = acc
		return
	}

	ctrl := NewResetController(util.NewLogger("reset"), acc)
	ctrl.EntityID = d.entityID("button", ctrl.Name)
	d.link(ctrl.EntityID, ctrl.DeviceID)

	d.controllers[acc.EntityID] = ctrl
}

// link attaches an own entity to the source's device
func (d *Discovery) link(entityID, deviceID string) {
	if err := d.registry.SetDevice(entityID, deviceID); err != nil {
		d.log.WARN.Printf("link %s to device %s: %v", entityID, deviceID, err)
		return
	}
	d.log.DEBUG.Printf("linked %s to device %s", entityID, deviceID)
}

// restore returns the persisted total or nil if there is none
func (d *Discovery) restore(uniqueID string) any {
	if d.store == nil {
		return nil
	}

	val, err := d.store.Restore(uniqueID)
	switch {
	case err == nil:
		return val
	case errors.Is(err, api.ErrNotFound):
		return nil
	default:
		d.log.WARN.Printf("restore %s: %v", uniqueID, err)
		return nil
	}
}

// entityID allocates a unique entity id for the given domain and name
func (d *Discovery) entityID(domain, name string) string {
	base := domain + "." + Slugify(name)

	id := base
	for i := 2; d.taken(id); i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}

	d.used[id] = true
	return id
}

func (d *Discovery) taken(id string) bool {
	if d.used[id] {
		return true
	}
	e, ok := d.registry.Entry(id)
	return ok && e.Platform != api.Namespace
}

func (d *Discovery) onRegistry(ev api.RegistryUpdated) {
	switch ev.Action {
	case api.ActionCreate:
		d.onCreate(ev.EntityID)

	case api.ActionUpdate:
		if ev.Changed("disabled_by") {
			d.onDisabledChange(ev.EntityID)
		}
		if ev.Changed("name") || ev.Changed("original_name") {
			d.onRename(ev.EntityID)
		}

	case api.ActionRemove:
		if _, ok := d.accumulators[ev.EntityID]; ok {
			d.log.INFO.Printf("%s removed", ev.EntityID)
			d.teardown(ev.EntityID)
			return
		}
		d.release(ev.EntityID)
	}
}

// onReset routes a broadcast reset request through the target's reset controller
func (d *Discovery) onReset(ev any) {
	req, err := decodeEvent[api.ResetEnergy](ev)
	if err != nil {
		d.log.WARN.Printf("reset event: %v", err)
		return
	}

	ctrl, ok := d.controllers[req.EntityID]
	if !ok {
		d.log.DEBUG.Printf("reset %s: %v", req.EntityID, api.ErrNotFound)
		return
	}

	ctrl.Press()
}

func (d *Discovery) onCreate(entityID string) {
	e, ok := d.registry.Entry(entityID)
	if !ok || !IsPowerSource(e, d.config.Platform) {
		return
	}

	if _, ok := d.claimed[entityID]; ok {
		return
	}

	d.log.INFO.Printf("detected new power source: %s", entityID)

	if d.config.Strategy == api.StrategyPoll {
		if acc := d.aggregate(e.DeviceID); acc != nil {
			d.log.INFO.Printf("device %s already aggregated by %s", e.DeviceID, acc.EntityID)
			return
		}
		d.createAggregate(e.DeviceID, []api.Entry{e})
		return
	}

	d.createSingle(e)
}

func (d *Discovery) onDisabledChange(entityID string) {
	e, ok := d.registry.Entry(entityID)
	if !ok {
		return
	}

	// own energy entity
	if acc, ok := d.accumulators[entityID]; ok {
		switch {
		case e.Disabled() && !acc.Closed():
			d.log.INFO.Printf("%s disabled", entityID)
			acc.Close()
		case !e.Disabled() && acc.Closed():
			d.log.INFO.Printf("%s enabled", entityID)
			d.revive(acc)
		}
		return
	}

	if !e.Disabled() {
		d.onCreate(entityID)
		return
	}

	if d.config.Strategy != api.StrategyPoll {
		d.release(entityID)
	}
}

// revive replaces a closed accumulator with a fresh one continuing from its total
func (d *Discovery) revive(old *Accumulator) {
	acc := NewAccumulator(old.log, d.clock, d.states, old.Strategy, old.Sources...)
	acc.EntityID = old.EntityID
	acc.UniqueID = old.UniqueID
	acc.Name = old.Name
	acc.DeviceID = old.DeviceID
	acc.Interval = old.Interval

	d.add(acc, old.Total())
}

// release tears down the accumulator bound to a removed or disabled source
func (d *Discovery) release(source string) {
	accID, ok := d.claimed[source]
	if !ok {
		return
	}

	if d.accumulators[accID].Strategy == api.StrategyPoll {
		// aggregate keeps running on its remaining sources
		d.log.INFO.Printf("%s: source %s removed", accID, source)
		return
	}

	d.log.INFO.Printf("removing %s for %s", accID, source)
	d.teardown(accID)
}

// teardown closes an accumulator and frees its claims, reset controller and entity ids
func (d *Discovery) teardown(accID string) {
	acc := d.accumulators[accID]
	acc.Close()

	for _, id := range acc.Sources {
		if d.claimed[id] == accID {
			delete(d.claimed, id)
		}
	}

	if ctrl, ok := d.controllers[accID]; ok {
		delete(d.used, ctrl.EntityID)
		delete(d.controllers, accID)
	}

	delete(d.used, accID)
	delete(d.accumulators, accID)
}

func (d *Discovery) onRename(entityID string) {
	if d.config.Strategy == api.StrategyPoll {
		return
	}

	accID, ok := d.claimed[entityID]
	if !ok {
		return
	}

	e, ok := d.registry.Entry(entityID)
	if !ok {
		return
	}

	acc := d.accumulators[accID]
	name := EnergyName(SourceName(e))
	if name == acc.Name {
		return
	}

	acc.Rename(name)
	if ctrl, ok := d.controllers[accID]; ok {
		ctrl.Rename(name)
	}
}

// Shutdown closes all accumulators and stops listening to registry updates
func (d *Discovery) Shutdown() {
	for _, unsub := range d.unsubscribe {
		unsub()
	}
	d.unsubscribe = nil

	for _, id := range d.sortedIDs() {
		d.accumulators[id].Close()
	}
}

func (d *Discovery) sortedIDs() []string {
	keys := lo.Keys(d.accumulators)
	slices.Sort(keys)
	return keys
}

// Accumulators returns the active accumulators sorted by entity id
func (d *Discovery) Accumulators() []*Accumulator {
	res := make([]*Accumulator, 0, len(d.accumulators))
	for _, id := range d.sortedIDs() {
		if acc := d.accumulators[id]; !acc.Closed() {
			res = append(res, acc)
		}
	}
	return res
}

// Accumulator returns the accumulator with the given entity id, including closed ones
func (d *Discovery) Accumulator(entityID string) (*Accumulator, bool) {
	acc, ok := d.accumulators[entityID]
	return acc, ok
}

// Controllers returns all reset controllers sorted by their accumulator's entity id
func (d *Discovery) Controllers() []*ResetController {
	keys := lo.Keys(d.controllers)
	slices.Sort(keys)
	return lo.Map(keys, func(k string, _ int) *ResetController { return d.controllers[k] })
}

// Controller returns the reset controller with the given entity id
func (d *Discovery) Controller(entityID string) (*ResetController, bool) {
	return lo.Find(lo.Values(d.controllers), func(c *ResetController) bool {
		return c.EntityID == entityID
	})
}

// Claimed returns the accumulator entity id a source is bound to
func (d *Discovery) Claimed(source string) (string, bool) {
	id, ok := d.claimed[source]
	return id, ok
}

// set the UI channel to publish information
func (d *Discovery) Prepare(uiChan chan<- util.Param) {
	d.uiChan = uiChan
}
