package core

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	"github.com/spf13/cast"
)

const (
	secondsToHours   = 1.0 / 3600
	wattsToKilowatts = 0.001

	// DefaultInterval is the default poll interval of aggregate accumulators
	DefaultInterval = 60 * time.Second

	// EnergyKey is the publish key of energy values
	EnergyKey = "energy"
)

// Resetter is implemented by everything a reset controller can reset
type Resetter interface {
	Reset() error
}

// Accumulator integrates the power of its bound sources into energy using a left Riemann sum.
// All methods must be called from the hub's event loop.
type Accumulator struct {
	log    *util.Logger
	clock  clock.Clock
	uiChan chan<- util.Param
	meter  *VMeter

	EntityID string
	UniqueID string
	Name     string
	DeviceID string
	Sources  []string
	Strategy api.SamplingStrategy
	Interval time.Duration

	total     float64   // unrounded kWh
	updated   time.Time // last sample or tick, zero if absent
	lastPower *float64  // W, single source or aggregate

	closed      bool
	unsubscribe []func()
}

var _ Resetter = (*Accumulator)(nil)

// NewAccumulator creates an accumulator bound to the given source entity ids
func NewAccumulator(log *util.Logger, clock clock.Clock, states api.States, strategy api.SamplingStrategy, sources ...string) *Accumulator {
	meter := NewVMeter(sources[0], log)
	for _, id := range sources {
		meter.AddSource(&statePower{states: states, entityID: id})
	}

	return &Accumulator{
		log:      log,
		clock:    clock,
		meter:    meter,
		Sources:  sources,
		Strategy: strategy,
		Interval: DefaultInterval,
	}
}

// Initialize restores the persisted total and seeds the last power from the current source states
func (a *Accumulator) Initialize(restored any) {
	if restored != nil {
		if total, err := cast.ToFloat64E(restored); err != nil || math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
			a.log.WARN.Printf("%s: could not restore energy from %v, starting from 0", a.EntityID, restored)
		} else {
			a.total = total
			a.log.INFO.Printf("%s: restored energy: %.3fkWh", a.EntityID, a.total)
		}
	}

	if power, valid := a.meter.CurrentPower(); valid > 0 {
		a.lastPower = &power
		a.updated = a.clock.Now()
		a.log.DEBUG.Printf("%s: initialized at %.2fW", a.EntityID, power)
	} else {
		a.log.DEBUG.Printf("%s: no valid power reading yet", a.EntityID)
	}

	a.publish()
}

// accumulate adds the last power for the time elapsed since the last update
func (a *Accumulator) accumulate(power float64, ts time.Time) {
	if a.updated.IsZero() {
		return
	}

	dt := ts.Sub(a.updated).Seconds()
	if dt <= 0 {
		a.log.TRACE.Printf("%s: skip non-positive interval %.1fs", a.EntityID, dt)
		return
	}

	inc := power * dt * secondsToHours * wattsToKilowatts
	a.total += inc

	a.log.DEBUG.Printf("%s: power=%.2fW, delta=%.1fs, increment=%.6fkWh, total=%.3fkWh", a.EntityID, power, dt, inc, a.total)
}

// Sample processes a state change of the bound source
func (a *Accumulator) Sample(value string, ts time.Time) {
	power, err := parsePower(value)
	if err != nil {
		a.log.DEBUG.Printf("%s: discarding sample %q: %v", a.EntityID, value, err)
		return
	}

	if a.lastPower != nil {
		a.accumulate(*a.lastPower, ts)
	}

	a.lastPower = &power
	a.updated = ts

	a.publish()
}

// Tick processes a poll interval. The first tick only records the baseline.
func (a *Accumulator) Tick(now time.Time) {
	if a.updated.IsZero() {
		a.updated = now
		a.publish()
		return
	}

	if power, valid := a.meter.CurrentPower(); valid > 0 {
		a.accumulate(power, now)
		a.lastPower = &power
	} else {
		a.log.DEBUG.Printf("%s: no valid source", a.EntityID)
	}

	a.updated = now
	a.publish()
}

// Reset sets the total to zero while keeping the last power reading
func (a *Accumulator) Reset() error {
	if a.closed {
		return api.ErrRemoved
	}

	a.log.INFO.Printf("%s: reset energy from %.3fkWh to 0", a.EntityID, a.total)

	a.total = 0
	a.updated = a.clock.Now()
	a.publish()

	return nil
}

// Finalize accumulates up to now using the last power reading and publishes the terminal value
func (a *Accumulator) Finalize() {
	now := a.clock.Now()

	if a.lastPower != nil && !a.updated.IsZero() {
		a.accumulate(*a.lastPower, now)
		if now.After(a.updated) {
			a.updated = now
		}
		a.log.INFO.Printf("%s: final energy: %.3fkWh", a.EntityID, a.total)
	}

	a.publish()
}

// Close finalizes the accumulator and cancels its subscriptions. Repeated calls are no-ops.
func (a *Accumulator) Close() {
	if a.closed {
		return
	}

	a.Finalize()
	a.closed = true

	for _, unsub := range a.unsubscribe {
		unsub()
	}
	a.unsubscribe = nil
}

// Closed reports if the accumulator was torn down
func (a *Accumulator) Closed() bool {
	return a.closed
}

// Start subscribes to source changes or poll ticks
func (a *Accumulator) Start(events Events) {
	switch a.Strategy {
	case api.StrategyPoll:
		a.unsubscribe = append(a.unsubscribe, events.TrackInterval(a.Interval, a.Tick))

	default:
		a.unsubscribe = append(a.unsubscribe, events.TrackState(a.Sources, func(ev api.StateChanged) {
			if ev.State == nil {
				return
			}

			ts := ev.Time
			if ts.IsZero() {
				ts = a.clock.Now()
			}

			a.Sample(ev.State.Value, ts)
		}))
	}
}

// Rename updates the display name
func (a *Accumulator) Rename(name string) {
	a.log.INFO.Printf("%s: renamed from %q to %q", a.EntityID, a.Name, name)
	a.Name = name
	a.publish()
}

// Total returns the unrounded energy total in kWh
func (a *Accumulator) Total() float64 {
	return a.total
}

// Value returns the energy total rounded for display
func (a *Accumulator) Value() float64 {
	return math.Round(a.total*1000) / 1000
}

// State returns the current energy state
func (a *Accumulator) State() api.EnergyState {
	res := api.EnergyState{
		EntityID:       a.EntityID,
		UniqueID:       a.UniqueID,
		Name:           a.Name,
		DeviceID:       a.DeviceID,
		Total:          a.total,
		Value:          a.Value(),
		Unit:           api.UnitKiloWattHour,
		DeviceClass:    api.DeviceClassEnergy,
		StateClass:     api.StateClassTotalIncreasing,
		EntityCategory: api.EntityCategoryDiagnostic,
		Attributes: api.EnergyAttributes{
			Sources: append([]string(nil), a.Sources...),
		},
	}

	if !a.updated.IsZero() {
		ts := a.updated
		res.Attributes.LastUpdate = &ts
	}

	if a.lastPower != nil {
		power := *a.lastPower
		if a.Strategy == api.StrategyPoll {
			res.Attributes.LastAggregatePower = &power
		} else {
			res.Attributes.LastPower = &power
		}
	}

	return res
}

// publish sends the energy state to UI and databases
func (a *Accumulator) publish() {
	// test helper
	if a.uiChan == nil {
		return
	}

	id := a.EntityID
	a.uiChan <- util.Param{
		Entity: &id,
		Key:    EnergyKey,
		Val:    a.State(),
	}
}

// set the UI channel to publish information
func (a *Accumulator) Prepare(uiChan chan<- util.Param) {
	a.uiChan = uiChan
}
