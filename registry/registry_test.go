package registry

import (
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRegistry(t *testing.T) (*Registry, EventBus.Bus) {
	t.Helper()

	snap, err := LoadFile("../testdata/registry.yaml")
	require.NoError(t, err)

	bus := EventBus.New()
	r := New(bus, clock.NewMock())
	r.Load(snap)

	return r, bus
}

func TestLoadFile(t *testing.T) {
	snap, err := LoadFile("../testdata/registry.yaml")
	require.NoError(t, err)

	assert.Len(t, snap.Devices, 2)
	assert.Len(t, snap.Entities, 5)
	assert.Equal(t, "Rack Switch", snap.Devices[0].NameByUser)
	assert.Equal(t, api.UnitWatt, snap.Entities[0].Unit)
	assert.Equal(t, "integration", snap.Entities[2].DisabledBy)
	assert.Equal(t, "4.52", snap.States["sensor.rack_switch_port_1_poe_power"])

	_, err = LoadFile("../testdata/missing.yaml")
	assert.Error(t, err)
}

func TestSnapshotSources(t *testing.T) {
	r, _ := loadTestRegistry(t)

	sources := core.Sources(r.Entries(), api.Upstream)
	require.Len(t, sources, 3)
	assert.Equal(t, "sensor.rack_switch_port_1_poe_power", sources[0].EntityID)
	assert.Equal(t, "sensor.usp_pdu_pro_outlet_1_outlet_power", sources[2].EntityID)
}

func TestSetState(t *testing.T) {
	r, bus := loadTestRegistry(t)

	var got []api.StateChanged
	require.NoError(t, bus.Subscribe(api.TopicStateChanged, func(ev api.StateChanged) {
		got = append(got, ev)
	}))

	s, ok := r.State("sensor.rack_switch_port_1_poe_power")
	require.True(t, ok)
	assert.Equal(t, "4.52", s.Value)

	r.SetState("sensor.rack_switch_port_1_poe_power", "5.1")

	s, _ = r.State("sensor.rack_switch_port_1_poe_power")
	assert.Equal(t, "5.1", s.Value)

	require.Len(t, got, 1)
	assert.Equal(t, "sensor.rack_switch_port_1_poe_power", got[0].EntityID)
	assert.Equal(t, "5.1", got[0].State.Value)
}

func TestRegistryUpdates(t *testing.T) {
	r, bus := loadTestRegistry(t)

	var got []api.RegistryUpdated
	require.NoError(t, bus.Subscribe(api.TopicRegistryUpdated, func(ev api.RegistryUpdated) {
		got = append(got, ev)
	}))

	e, ok := r.Entry("sensor.rack_switch_port_3_poe_power")
	require.True(t, ok)

	e.DisabledBy = ""
	e.Name = "Camera"
	require.NoError(t, r.Update(e))

	require.Len(t, got, 1)
	assert.Equal(t, api.ActionUpdate, got[0].Action)
	assert.Equal(t, map[string]any{"disabled_by": "integration", "name": ""}, got[0].Changes)

	// no changes, no event
	require.NoError(t, r.Update(e))
	assert.Len(t, got, 1)

	require.NoError(t, r.Remove(e.EntityID))
	assert.Equal(t, api.ActionRemove, got[1].Action)
	assert.ErrorIs(t, r.Remove(e.EntityID), api.ErrNotFound)
	assert.ErrorIs(t, r.Update(e), api.ErrNotFound)

	require.NoError(t, r.Create(e))
	assert.Equal(t, api.ActionCreate, got[2].Action)
	assert.Error(t, r.Create(e))
}

func TestSetDevice(t *testing.T) {
	r, _ := loadTestRegistry(t)

	require.NoError(t, r.SetDevice("sensor.port_1_poe_energy", "6f1c0c9e2b7a4d3e"))

	e, ok := r.Entry("sensor.port_1_poe_energy")
	require.True(t, ok)
	assert.Equal(t, api.Namespace, e.Platform)
	assert.Equal(t, "6f1c0c9e2b7a4d3e", e.DeviceID)

	assert.ErrorIs(t, r.SetDevice("sensor.port_1_poe_energy", "unknown"), api.ErrNotFound)

	devices := r.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "0a9d44f1c2e3b4a5", devices[0].ID)
}
