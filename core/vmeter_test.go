package core

import (
	"errors"
	"testing"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	"github.com/stretchr/testify/assert"
)

type testSource struct {
	power float64
	err   error
}

// interface PowerSource
func (s *testSource) CurrentPower() (float64, error) {
	return s.power, s.err
}

func TestVMeterSumsValidSources(t *testing.T) {
	vm := NewVMeter("test", util.NewLogger("test"))
	assert.NotNilf(t, vm, "vmeter not created")

	var sources []*testSource
	for i := 0; i < 3; i++ {
		s := &testSource{power: float64(5 * (i + 1))}
		sources = append(sources, s)
		vm.AddSource(s)
	}

	power, valid := vm.CurrentPower()
	assert.Equal(t, 30.0, power)
	assert.Equal(t, 3, valid)

	// failing source is excluded, not counted as zero
	sources[1].err = errors.New("unavailable")
	power, valid = vm.CurrentPower()
	assert.Equal(t, 20.0, power)
	assert.Equal(t, 2, valid)

	for _, s := range sources {
		s.err = errUnavailable
	}
	power, valid = vm.CurrentPower()
	assert.Equal(t, 0.0, power)
	assert.Equal(t, 0, valid)
}

func TestVMeterNoSources(t *testing.T) {
	vm := NewVMeter("empty", util.NewLogger("test"))

	power, valid := vm.CurrentPower()
	assert.Equal(t, 0.0, power)
	assert.Equal(t, 0, valid)
}

func TestStatePower(t *testing.T) {
	states := testStates{
		"sensor.a": "12.5",
		"sensor.b": api.StateUnavailable,
		"sensor.c": api.StateUnknown,
		"sensor.d": "n/a",
	}

	power, err := (&statePower{states: states, entityID: "sensor.a"}).CurrentPower()
	assert.NoError(t, err)
	assert.Equal(t, 12.5, power)

	_, err = (&statePower{states: states, entityID: "sensor.b"}).CurrentPower()
	assert.ErrorIs(t, err, errUnavailable)

	_, err = (&statePower{states: states, entityID: "sensor.c"}).CurrentPower()
	assert.ErrorIs(t, err, errUnavailable)

	_, err = (&statePower{states: states, entityID: "sensor.d"}).CurrentPower()
	assert.Error(t, err)

	_, err = (&statePower{states: states, entityID: "sensor.missing"}).CurrentPower()
	assert.ErrorIs(t, err, api.ErrNotFound)
}
