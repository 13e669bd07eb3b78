package cmd

import (
	"testing"
	"time"

	"github.com/hoermto/unifi-energy/util"
	"github.com/stretchr/testify/assert"
)

func TestFanOutWaitsForConsumers(t *testing.T) {
	in := make(chan util.Param)

	var fast, slow []util.Param
	flushed := fanOut(in,
		func(recv <-chan util.Param) {
			for p := range recv {
				fast = append(fast, p)
			}
		},
		func(recv <-chan util.Param) {
			for p := range recv {
				// final value still being written when the input closes
				time.Sleep(50 * time.Millisecond)
				slow = append(slow, p)
			}
		},
	)

	entity := "sensor.port_1_poe_energy"
	in <- util.Param{Entity: &entity, Key: "energy", Val: 1.0}
	in <- util.Param{Entity: &entity, Key: "energy", Val: 2.0}
	close(in)

	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("consumers not flushed")
	}

	assert.Len(t, fast, 2)
	assert.Len(t, slow, 2)
	assert.Equal(t, 2.0, slow[1].Val)
}
