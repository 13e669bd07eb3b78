package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/util"
)

// MqttConfig is the broker configuration
type MqttConfig struct {
	Broker   string        `mapstructure:"broker" validate:"required"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	ClientID string        `mapstructure:"clientid"`
	Source   string        `mapstructure:"source"` // topic root of the upstream power states
	Topic    string        `mapstructure:"topic"`  // topic root of published energy values
	Qos      byte          `mapstructure:"qos" validate:"lte=2"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StateSetter receives upstream power states
type StateSetter interface {
	SetState(entityID, value string)
}

// MQTT bridges upstream power states in and energy values out
type MQTT struct {
	log    *util.Logger
	client paho.Client
	config MqttConfig
	states StateSetter
	bus    EventBus.Bus
}

// NewMQTT creates the MQTT adapter. Call Connect to establish the connection.
func NewMQTT(config MqttConfig, states StateSetter, bus EventBus.Bus) *MQTT {
	if config.Source == "" {
		config.Source = api.Upstream
	}
	if config.Topic == "" {
		config.Topic = api.Namespace
	}
	if config.ClientID == "" {
		config.ClientID = fmt.Sprintf("%s-%s", api.Namespace, uuid.NewString()[:8])
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	m := &MQTT{
		log:    util.NewLogger("mqtt"),
		config: config,
		states: states,
		bus:    bus,
	}

	opts := paho.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(config.ClientID).
		SetUsername(config.User).
		SetPassword(config.Password).
		SetAutoReconnect(true).
		SetOnConnectHandler(m.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			m.log.WARN.Printf("connection lost: %v", err)
		})

	m.client = paho.NewClient(opts)

	return m
}

// Connect connects to the broker, retrying with exponential backoff
func (m *MQTT) Connect() error {
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)

	return backoff.Retry(func() error {
		token := m.client.Connect()
		if !token.WaitTimeout(m.config.Timeout) {
			return errors.New("connect timeout")
		}
		if err := token.Error(); err != nil {
			m.log.WARN.Printf("connect %s: %v", m.config.Broker, err)
			return err
		}
		return nil
	}, bo)
}

// Disconnect closes the broker connection
func (m *MQTT) Disconnect() {
	m.client.Disconnect(250)
}

func (m *MQTT) stateTopic() string {
	return fmt.Sprintf("%s/sensor/+/state", m.config.Source)
}

func (m *MQTT) resetTopic() string {
	return fmt.Sprintf("%s/+/reset", m.config.Topic)
}

func (m *MQTT) onConnect(client paho.Client) {
	m.log.INFO.Printf("connected to %s", m.config.Broker)

	subscriptions := map[string]paho.MessageHandler{
		m.stateTopic(): func(_ paho.Client, msg paho.Message) { m.onState(msg.Topic(), msg.Payload()) },
		m.resetTopic(): func(_ paho.Client, msg paho.Message) { m.onReset(msg.Topic(), msg.Payload()) },
	}

	for topic, handler := range subscriptions {
		token := client.Subscribe(topic, m.config.Qos, handler)
		if token.WaitTimeout(m.config.Timeout) && token.Error() != nil {
			m.log.ERROR.Printf("subscribe %s: %v", topic, token.Error())
		}
	}
}

// object returns the object id of a <root>/.../<object>/<suffix> topic
func object(topic string) string {
	segments := strings.Split(topic, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[len(segments)-2]
}

// onState receives an upstream power state
func (m *MQTT) onState(topic string, payload []byte) {
	obj := object(topic)
	if obj == "" {
		return
	}

	m.states.SetState("sensor."+obj, strings.TrimSpace(string(payload)))
}

// onReset receives a reset command for an energy entity
func (m *MQTT) onReset(topic string, payload []byte) {
	obj := object(topic)
	if obj == "" {
		return
	}

	req := api.ResetEnergy{EntityID: "sensor." + obj}
	m.log.DEBUG.Printf("reset %s", req.EntityID)

	m.bus.Publish(api.EventResetEnergy, req)
}

// publish sends a message and waits for delivery
func (m *MQTT) publish(topic string, retained bool, payload interface{}) error {
	token := m.client.Publish(topic, m.config.Qos, retained, payload)
	if !token.WaitTimeout(m.config.Timeout) {
		return fmt.Errorf("%s: publish timeout", topic)
	}
	return token.Error()
}

// Publish sends an energy state as retained state and attributes messages
func (m *MQTT) Publish(state api.EnergyState) error {
	_, obj, _ := strings.Cut(state.EntityID, ".")
	root := fmt.Sprintf("%s/%s", m.config.Topic, obj)

	if err := m.publish(root+"/state", true, util.FormatFloat(state.Value)); err != nil {
		return err
	}

	attrs, err := json.Marshal(state.Attributes)
	if err != nil {
		return err
	}

	return m.publish(root+"/attributes", true, attrs)
}

// Run publishes energy values received from the publish channel
func (m *MQTT) Run(in <-chan util.Param) {
	for p := range in {
		state, ok := p.Val.(api.EnergyState)
		if !ok || p.Key != core.EnergyKey {
			continue
		}

		if err := m.Publish(state); err != nil {
			m.log.ERROR.Printf("publish %s: %v", state.EntityID, err)
		}
	}
}
