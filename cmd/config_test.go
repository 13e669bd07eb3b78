package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/hoermto/unifi-energy/api"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViper(t *testing.T, config string) *viper.Viper {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(config)))

	return v
}

func TestConfigDefaults(t *testing.T) {
	conf, err := decodeConfig(testViper(t, `registry: registry.yaml`))
	require.NoError(t, err)

	assert.Equal(t, "info", conf.Log)
	assert.Equal(t, ":7071", conf.Network.Addr)
	assert.Equal(t, api.Upstream, conf.Discovery.Platform)
	assert.Equal(t, api.StrategyEvent, conf.Discovery.Strategy)
	assert.Equal(t, time.Minute, conf.Discovery.Interval)
	assert.Nil(t, conf.MQTT)
}

func TestConfigDecode(t *testing.T) {
	conf, err := decodeConfig(testViper(t, `
log: debug
levels:
  discovery: trace
registry: /etc/unifi-energy/registry.yaml
database: /tmp/energy.db
network:
  addr: 127.0.0.1:8080
discovery:
  platform: unifi
  strategy: poll
  interval: 30s
mqtt:
  broker: tcp://localhost:1883
  topic: energy
  qos: 1
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.Log)
	assert.Equal(t, map[string]string{"discovery": "trace"}, conf.Levels)
	assert.Equal(t, "127.0.0.1:8080", conf.Network.Addr)
	assert.Equal(t, api.StrategyPoll, conf.Discovery.Strategy)
	assert.Equal(t, 30*time.Second, conf.Discovery.Interval)

	require.NotNil(t, conf.MQTT)
	assert.Equal(t, "tcp://localhost:1883", conf.MQTT.Broker)
	assert.Equal(t, "energy", conf.MQTT.Topic)
	assert.Equal(t, byte(1), conf.MQTT.Qos)
}

func TestConfigInvalid(t *testing.T) {
	for _, tc := range []struct {
		name, config string
	}{
		{"missing registry", `log: info`},
		{"unknown key", "registry: r.yaml\nfoo: bar"},
		{"invalid strategy", "registry: r.yaml\ndiscovery:\n  strategy: sometimes"},
		{"invalid interval", "registry: r.yaml\ndiscovery:\n  interval: 100ms"},
		{"mqtt without broker", "registry: r.yaml\nmqtt:\n  topic: energy"},
		{"invalid log level", "registry: r.yaml\nlog: verbose"},
		{"invalid area log level", "registry: r.yaml\nlevels:\n  discovery: verbose"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeConfig(testViper(t, tc.config))
			assert.Error(t, err)
		})
	}
}
