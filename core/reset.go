package core

import (
	"errors"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
)

// ResetController exposes a reset action for exactly one accumulator
type ResetController struct {
	log    *util.Logger
	target Resetter

	EntityID string
	UniqueID string
	Name     string
	DeviceID string
	Target   string // accumulator entity id
}

// NewResetController creates a reset controller for the given accumulator
func NewResetController(log *util.Logger, acc *Accumulator) *ResetController {
	return &ResetController{
		log:      log,
		target:   acc,
		UniqueID: ResetUniqueID(acc.UniqueID),
		Name:     ResetName(acc.Name),
		DeviceID: acc.DeviceID,
		Target:   acc.EntityID,
	}
}

// Press resets the bound accumulator. Failures are logged and never returned.
func (c *ResetController) Press() {
	if err := c.target.Reset(); err != nil {
		if errors.Is(err, api.ErrRemoved) {
			c.log.ERROR.Printf("%s: accumulator %s no longer exists", c.EntityID, c.Target)
		} else {
			c.log.ERROR.Printf("%s: reset %s: %v", c.EntityID, c.Target, err)
		}
		return
	}

	c.log.INFO.Printf("%s: reset %s", c.EntityID, c.Target)
}

// Rename follows the accumulator's new name
func (c *ResetController) Rename(accumulator string) {
	c.Name = ResetName(accumulator)
}
