package server

import (
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testToken struct{}

func (testToken) Wait() bool                     { return true }
func (testToken) WaitTimeout(time.Duration) bool { return true }
func (testToken) Done() <-chan struct{}          { return nil }
func (testToken) Error() error                   { return nil }

type testMessage struct {
	topic    string
	retained bool
	payload  interface{}
}

// testClient records published messages
type testClient struct {
	paho.Client
	published []testMessage
}

func (c *testClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho.Token {
	c.published = append(c.published, testMessage{topic, retained, payload})
	return testToken{}
}

type testStateSetter map[string]string

func (s testStateSetter) SetState(entityID, value string) {
	s[entityID] = value
}

func newTestMQTT(states StateSetter, bus EventBus.Bus) (*MQTT, *testClient) {
	m := NewMQTT(MqttConfig{Broker: "tcp://localhost:1883"}, states, bus)
	client := new(testClient)
	m.client = client
	return m, client
}

func TestMqttOnState(t *testing.T) {
	states := testStateSetter{}
	m, _ := newTestMQTT(states, EventBus.New())

	assert.Equal(t, "unifi/sensor/+/state", m.stateTopic())

	m.onState("unifi/sensor/rack_switch_port_1_poe_power/state", []byte(" 4.52\n"))
	m.onState("state", []byte("1"))

	assert.Equal(t, testStateSetter{"sensor.rack_switch_port_1_poe_power": "4.52"}, states)
}

func TestMqttOnReset(t *testing.T) {
	bus := EventBus.New()
	m, _ := newTestMQTT(testStateSetter{}, bus)

	assert.Equal(t, "unifi_helper/+/reset", m.resetTopic())

	var got []api.ResetEnergy
	require.NoError(t, bus.Subscribe(api.EventResetEnergy, func(ev api.ResetEnergy) {
		got = append(got, ev)
	}))

	m.onReset("unifi_helper/port_1_poe_energy/reset", nil)
	assert.Equal(t, []api.ResetEnergy{{EntityID: "sensor.port_1_poe_energy"}}, got)
}

func TestMqttRun(t *testing.T) {
	m, client := newTestMQTT(testStateSetter{}, EventBus.New())

	power := 20.0
	entity := "sensor.port_1_poe_energy"

	in := make(chan util.Param, 2)
	in <- util.Param{Entity: &entity, Key: core.EnergyKey, Val: api.EnergyState{
		EntityID:   entity,
		Value:      0.01,
		Attributes: api.EnergyAttributes{Sources: []string{"sensor.port_1_poe_power"}, LastPower: &power},
	}}
	in <- util.Param{Key: "other", Val: 1}
	close(in)

	m.Run(in)

	require.Len(t, client.published, 2)
	assert.Equal(t, testMessage{"unifi_helper/port_1_poe_energy/state", true, "0.01"}, client.published[0])
	assert.Equal(t, "unifi_helper/port_1_poe_energy/attributes", client.published[1].topic)
	assert.JSONEq(t, `{"bound_source_ids":["sensor.port_1_poe_power"],"last_update":null,"last_power_watts":20}`,
		string(client.published[1].payload.([]byte)))
}
