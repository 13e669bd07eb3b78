package api

import "time"

// bus topics
const (
	TopicStateChanged    = "state_changed"
	TopicRegistryUpdated = "entity_registry_updated"
)

// EventResetEnergy is the named broadcast event requesting an accumulator reset
const EventResetEnergy = Namespace + "_reset_energy"

// registry actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionRemove = "remove"
)

// StateChanged is published when an entity's state changes. A nil State means the entity was removed.
type StateChanged struct {
	EntityID string    `mapstructure:"entity_id"`
	State    *State    `mapstructure:"new_state"`
	Time     time.Time `mapstructure:"time_fired"`
}

// RegistryUpdated is published when the entity registry changes. Changes holds the previous values of changed fields.
type RegistryUpdated struct {
	Action   string         `mapstructure:"action"`
	EntityID string         `mapstructure:"entity_id"`
	Changes  map[string]any `mapstructure:"changes"`
}

// Changed reports if field was changed by the update
func (e RegistryUpdated) Changed(field string) bool {
	_, ok := e.Changes[field]
	return ok
}

// ResetEnergy requests the accumulator with the given entity id to reset
type ResetEnergy struct {
	EntityID string `mapstructure:"entity_id" json:"entity_id"`
}
