package core

import (
	"bytes"
	"io"
	"time"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/util"
	jww "github.com/spf13/jwalterweatherman"
)

// testLogger returns a logger writing errors to buf
func testLogger(buf *bytes.Buffer) *util.Logger {
	return &util.Logger{Notepad: jww.NewNotepad(jww.LevelError, jww.LevelError, buf, io.Discard, "", 0)}
}

type testStates map[string]string

// interface States
func (s testStates) State(entityID string) (api.State, bool) {
	v, ok := s[entityID]
	return api.State{EntityID: entityID, Value: v}, ok
}

// testEvents records subscriptions and lets tests fire them synchronously
type testEvents struct {
	states    map[string][]func(api.StateChanged)
	registry  []func(api.RegistryUpdated)
	listeners map[string][]func(any)
	intervals []func(time.Time)
	cancelled int
}

func newTestEvents() *testEvents {
	return &testEvents{
		states:    make(map[string][]func(api.StateChanged)),
		listeners: make(map[string][]func(any)),
	}
}

func (e *testEvents) cancel() func() {
	return func() { e.cancelled++ }
}

func (e *testEvents) TrackState(entityIDs []string, fn func(api.StateChanged)) func() {
	for _, id := range entityIDs {
		e.states[id] = append(e.states[id], fn)
	}
	return e.cancel()
}

func (e *testEvents) TrackRegistry(fn func(api.RegistryUpdated)) func() {
	e.registry = append(e.registry, fn)
	return e.cancel()
}

func (e *testEvents) Listen(event string, fn func(any)) func() {
	e.listeners[event] = append(e.listeners[event], fn)
	return e.cancel()
}

func (e *testEvents) TrackInterval(_ time.Duration, fn func(time.Time)) func() {
	e.intervals = append(e.intervals, fn)
	return e.cancel()
}

func (e *testEvents) fireState(entityID, value string, ts time.Time) {
	for _, fn := range e.states[entityID] {
		fn(api.StateChanged{EntityID: entityID, State: &api.State{EntityID: entityID, Value: value}, Time: ts})
	}
}

func (e *testEvents) fireRegistry(ev api.RegistryUpdated) {
	for _, fn := range e.registry {
		fn(ev)
	}
}

func (e *testEvents) fire(event string, payload any) {
	for _, fn := range e.listeners[event] {
		fn(payload)
	}
}
