package api

import (
	"errors"
	"time"
)

//go:generate mockgen -package api -destination mock.go github.com/hoermto/unifi-energy/api Registry,States,Store

// Namespace is the integration's own namespace
const Namespace = "unifi_helper"

// Upstream is the default upstream integration providing the power sources
const Upstream = "unifi"

// state sentinels
const (
	StateUnavailable = "unavailable"
	StateUnknown     = "unknown"
)

// units and classes
const (
	UnitWatt         = "W"
	UnitKiloWattHour = "kWh"

	DeviceClassPower  = "power"
	DeviceClassEnergy = "energy"

	StateClassTotalIncreasing = "total_increasing"
	EntityCategoryDiagnostic  = "diagnostic"
)

var (
	ErrNotFound = errors.New("not found")
	ErrRemoved  = errors.New("removed")
)

// Entry is an entity registry entry
type Entry struct {
	EntityID     string `json:"entity_id" yaml:"entity_id" mapstructure:"entity_id"`
	UniqueID     string `json:"unique_id" yaml:"unique_id" mapstructure:"unique_id"`
	Platform     string `json:"platform" yaml:"platform" mapstructure:"platform"`
	DeviceID     string `json:"device_id" yaml:"device_id" mapstructure:"device_id"`
	Name         string `json:"name,omitempty" yaml:"name" mapstructure:"name"`
	OriginalName string `json:"original_name,omitempty" yaml:"original_name" mapstructure:"original_name"`
	Unit         string `json:"unit_of_measurement" yaml:"unit_of_measurement" mapstructure:"unit_of_measurement"`
	DeviceClass  string `json:"device_class" yaml:"device_class" mapstructure:"device_class"`
	DisabledBy   string `json:"disabled_by,omitempty" yaml:"disabled_by" mapstructure:"disabled_by"`
}

// Disabled reports if the entry is disabled
func (e Entry) Disabled() bool {
	return e.DisabledBy != ""
}

// DisplayName returns the user assigned name, falling back to the integration provided one
func (e Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.OriginalName
}

// Device is a device registry entry
type Device struct {
	ID         string `json:"id" yaml:"id" mapstructure:"id"`
	Name       string `json:"name" yaml:"name" mapstructure:"name"`
	NameByUser string `json:"name_by_user,omitempty" yaml:"name_by_user" mapstructure:"name_by_user"`
}

// State is the last known state of an entity
type State struct {
	EntityID    string    `json:"entity_id" mapstructure:"entity_id"`
	Value       string    `json:"state" mapstructure:"state"`
	LastUpdated time.Time `json:"last_updated" mapstructure:"last_updated"`
}

// Registry is the host's entity and device registry
type Registry interface {
	Entries() []Entry
	Entry(entityID string) (Entry, bool)
	Device(id string) (Device, bool)
	SetDevice(entityID, deviceID string) error
}

// States provides non-blocking access to the last known entity states
type States interface {
	State(entityID string) (State, bool)
}

// Store restores persisted accumulator values. Restore returns ErrNotFound if nothing was persisted.
type Store interface {
	Restore(uniqueID string) (string, error)
}

// EnergyAttributes are the auxiliary attributes of an energy state
type EnergyAttributes struct {
	Sources            []string   `json:"bound_source_ids"`
	LastUpdate         *time.Time `json:"last_update"`
	LastPower          *float64   `json:"last_power_watts,omitempty"`
	LastAggregatePower *float64   `json:"last_aggregate_power_watts,omitempty"`
}

// EnergyState is the emitted value of an energy accumulator
type EnergyState struct {
	EntityID       string           `json:"entity_id"`
	UniqueID       string           `json:"unique_id"`
	Name           string           `json:"name"`
	DeviceID       string           `json:"device_id"`
	Total          float64          `json:"-"`
	Value          float64          `json:"state"`
	Unit           string           `json:"unit_of_measurement"`
	DeviceClass    string           `json:"device_class"`
	StateClass     string           `json:"state_class"`
	EntityCategory string           `json:"entity_category"`
	Attributes     EnergyAttributes `json:"attributes"`
}
