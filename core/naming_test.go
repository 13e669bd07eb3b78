package core

import (
	"testing"

	"github.com/hoermto/unifi-energy/api"
	"github.com/stretchr/testify/assert"
)

func powerEntry(entityID string) api.Entry {
	return api.Entry{
		EntityID:    entityID,
		UniqueID:    "unique-" + entityID,
		Platform:    api.Upstream,
		DeviceID:    "dev1",
		Unit:        api.UnitWatt,
		DeviceClass: api.DeviceClassPower,
	}
}

func TestIsPowerSource(t *testing.T) {
	tc := []struct {
		name     string
		mod      func(*api.Entry)
		expected bool
	}{
		{"qualifying", func(*api.Entry) {}, true},
		{"other platform", func(e *api.Entry) { e.Platform = "shelly" }, false},
		{"other domain", func(e *api.Entry) { e.EntityID = "switch.port_1_poe" }, false},
		{"no device", func(e *api.Entry) { e.DeviceID = "" }, false},
		{"kilowatts", func(e *api.Entry) { e.Unit = "kW" }, false},
		{"current", func(e *api.Entry) { e.DeviceClass = "current" }, false},
		{"disabled", func(e *api.Entry) { e.DisabledBy = "user" }, false},
		{"no vocabulary", func(e *api.Entry) { e.EntityID, e.UniqueID = "sensor.udm_cpu_power", "cpu" }, false},
		{"vocabulary in unique id", func(e *api.Entry) { e.EntityID, e.UniqueID = "sensor.usw_power_1", "PoE-1" }, true},
		{"outlet", func(e *api.Entry) { e.EntityID = "sensor.usp_outlet_2_power" }, true},
		{"pdu uppercase", func(e *api.Entry) { e.EntityID, e.UniqueID = "sensor.rack_PDU_power", "x" }, true},
		// substring match is approximate
		{"support", func(e *api.Entry) { e.EntityID, e.UniqueID = "sensor.support_power", "x" }, true},
	}

	for _, tc := range tc {
		e := powerEntry("sensor.usw_port_1_poe_power")
		tc.mod(&e)
		assert.Equal(t, tc.expected, IsPowerSource(e, api.Upstream), tc.name)
	}
}

func TestSourceName(t *testing.T) {
	e := powerEntry("sensor.usw_pro_port_1_poe_power")
	assert.Equal(t, "Usw Pro Port 1 Poe Power", SourceName(e))

	e.OriginalName = "Port 1 PoE Power"
	assert.Equal(t, "Port 1 PoE Power", SourceName(e))

	e.Name = "Camera Power"
	assert.Equal(t, "Camera Power", SourceName(e))
}

func TestEnergyName(t *testing.T) {
	tc := []struct {
		in, out string
	}{
		{"Port 1 PoE Power", "Port 1 PoE Energy"},
		{"Power Port Power", "Energy Port Energy"},
		{"port 1 power", "port 1 Energy"},
		{"Port 1 POWER", "Port 1 Energy"},
		{"Port 1", "Port 1 Energy"},
		{"Outlet 3 Outlet Power", "Outlet 3 Energy"},
		{"PDU Outlet 2 Outlet Power", "PDU Outlet 2 Energy"},
		{"Outlet 3 Port Power", "Outlet 3 Port Energy"},
		{"Port 4 port", "Port 4 Energy"},
		{"PoE Port 1 PoE Power", "PoE Port 1 Energy"},
		{"Port 1 PoE Port Power", "Port 1 PoE Energy"},
	}

	for _, tc := range tc {
		assert.Equal(t, tc.out, EnergyName(tc.in), tc.in)
	}
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "Rack Switch", DeviceName(api.Device{Name: "USW-Pro-24", NameByUser: "Rack Switch"}, "abcdef1234"))
	assert.Equal(t, "USW-Pro-24", DeviceName(api.Device{Name: "USW-Pro-24"}, "abcdef1234"))
	assert.Equal(t, "UniFi Device abcdef12", DeviceName(api.Device{}, "abcdef1234"))
	assert.Equal(t, "UniFi Device abc", DeviceName(api.Device{}, "abc"))

	assert.Equal(t, "Rack Switch PoE Energy", AggregateName("Rack Switch"))
}

func TestResetName(t *testing.T) {
	assert.Equal(t, "Port 1 Reset Energy", ResetName("Port 1 Energy"))
	assert.Equal(t, "Port Energy Reset Energy", ResetName("Port Energy Energy"))
	assert.Equal(t, "Energy Meter Reset", ResetName("Energy Meter"))
	assert.Equal(t, "Port 1Energy Reset", ResetName("Port 1Energy"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "port_1_poe_energy", Slugify("Port 1 PoE Energy"))
	assert.Equal(t, "cafe_outlet_2", Slugify("Café  Outlet #2"))
	assert.Equal(t, "unknown", Slugify("!!!"))
}

func TestUniqueIDs(t *testing.T) {
	e := powerEntry("sensor.port_1_poe_power")
	assert.Equal(t, "unique-sensor.port_1_poe_power_energy", SingleUniqueID(e))

	e.UniqueID = ""
	assert.Equal(t, "sensor.port_1_poe_power_energy", SingleUniqueID(e))

	assert.Equal(t, "dev1_poe_energy", AggregateUniqueID("dev1"))
	assert.Equal(t, "dev1_poe_energy_reset", ResetUniqueID("dev1_poe_energy"))
}
