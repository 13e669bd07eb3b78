package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeeCache(t *testing.T) {
	entity := "sensor.a"

	tee := new(Tee)
	cache := NewCache()

	cacheCh, recvCh := tee.Attach(), tee.Attach()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		cache.Run(cacheCh)
		wg.Done()
	}()

	var received []Param
	go func() {
		for p := range recvCh {
			received = append(received, p)
		}
		wg.Done()
	}()

	in := make(chan Param)
	go tee.Run(in)

	in <- Param{Entity: &entity, Key: "energy", Val: 1.0}
	in <- Param{Entity: &entity, Key: "energy", Val: 2.0}
	in <- Param{Key: "status", Val: "ok"}
	close(in)

	// receivers are closed once the input is drained
	wg.Wait()

	assert.Len(t, received, 3)
	assert.Len(t, cache.All(), 2)
	state := cache.State()
	assert.Equal(t, 2.0, state["sensor.a.energy"].Val)
	assert.Equal(t, "ok", state["status"].Val)
}
