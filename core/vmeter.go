// virtual meter which evaluates aggregate power based on bound power sources
package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	"github.com/spf13/cast"
)

var errUnavailable = errors.New("unavailable")

// PowerSource provides the current power reading of a bound source
type PowerSource interface {
	CurrentPower() (float64, error)
}

// statePower reads a source's power from the host's state cache
type statePower struct {
	states   api.States
	entityID string
}

var _ PowerSource = (*statePower)(nil)

// implements PowerSource
func (s *statePower) CurrentPower() (float64, error) {
	state, ok := s.states.State(s.entityID)
	if !ok {
		return 0, fmt.Errorf("%s: %w", s.entityID, api.ErrNotFound)
	}

	power, err := parsePower(state.Value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.entityID, err)
	}

	return power, nil
}

// parsePower converts a state value into watts. Sentinels and non-finite values are rejected.
func parsePower(value string) (float64, error) {
	if value == api.StateUnavailable || value == api.StateUnknown {
		return 0, errUnavailable
	}

	power, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(power) || math.IsInf(power, 0) {
		return 0, fmt.Errorf("invalid power: %s", value)
	}

	return power, nil
}

type VMeter struct {
	log *util.Logger

	Name    string
	Sources []PowerSource // all sources under management
}

// creates a new vmeter
func NewVMeter(n string, log *util.Logger) *VMeter {
	return &VMeter{
		Name: n,
		log:  log,
	}
}

func (vm *VMeter) AddSource(s PowerSource) {
	vm.Sources = append(vm.Sources, s)
}

// CurrentPower sums the power of all sources reporting a valid reading.
// Invalid sources are excluded from the sum, valid reports how many contributed.
func (vm *VMeter) CurrentPower() (total float64, valid int) {
	vm.log.TRACE.Printf("%s: get power from %d sources", vm.Name, len(vm.Sources))

	for _, s := range vm.Sources {
		power, err := s.CurrentPower()
		if err != nil {
			vm.log.TRACE.Printf("%s: skip source: %v", vm.Name, err)
			continue
		}

		vm.log.TRACE.Printf("%s: add %.1fW from source", vm.Name, power)
		total += power
		valid++
	}

	return total, valid
}
